package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"activitypass/internal/adapters/authapi"
	"activitypass/internal/adapters/present"
	"activitypass/internal/adapters/storage"
	deviceStore "activitypass/internal/adapters/storage/device"
	prefsStore "activitypass/internal/adapters/storage/prefs"
	tokenStore "activitypass/internal/adapters/storage/token"
	"activitypass/internal/application/orchestrators"
	"activitypass/internal/application/prefstore"
	"activitypass/internal/application/session"
	"activitypass/internal/domain/prefs"
	"activitypass/internal/domain/route"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Local overrides for development; absence is not an error.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dbPath := envOrDefault("ACTIVITYPASS_DB", "activitypass.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	ctx := context.Background()

	devices := deviceStore.NewSQLiteStore(db)
	installID, err := devices.GetOrCreateInstallID(ctx)
	if err != nil {
		log.Fatalf("failed to resolve install id: %v", err)
	}

	sealer, err := storage.NewSealer(envOrDefault("ACTIVITYPASS_SEAL_SECRET", "activitypass-client"), installID)
	if err != nil {
		log.Fatalf("failed to initialize token sealing: %v", err)
	}

	apiBase := envOrDefault("ACTIVITYPASS_API_BASE", "http://localhost:8000/api")
	api := authapi.NewClient(apiBase, 15*time.Second)

	sessions := session.NewStore(api, tokenStore.NewSQLiteStore(db, sealer))

	defaults := prefs.Preferences{
		Language: prefs.DetectLanguage(envOrDefault("ACTIVITYPASS_LOCALE", os.Getenv("LANG"))),
		Theme:    prefs.DetectTheme(os.Getenv("ACTIVITYPASS_COLOR_SCHEME")),
	}
	localizer := present.NewLocalizationEngine(defaults.Language)
	presenter := present.NewThemeApplier(present.NoopDocument{})
	preferences := prefstore.NewStore(prefsStore.NewSQLiteStore(db), localizer, presenter, defaults)

	result, err := orchestrators.ExecuteStartup(ctx, orchestrators.StartupDeps{
		Sessions: sessions,
		Prefs:    preferences,
		Device:   devices,
	})
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	slog.Info("startup_event", "event", "ready",
		"version", version,
		"install_id", result.InstallID,
		"api_base", apiBase,
		"language", preferences.Current().Language,
		"theme", preferences.Current().Theme,
	)

	// Evaluate the entry navigation; the shell re-runs this on every route
	// change and session commit.
	navDeps := orchestrators.NavigateDeps{
		Sessions: sessions,
		Prefs:    preferences,
		Guard:    route.NewGuard(route.DefaultRules()),
	}
	view := orchestrators.ExecuteNavigate(ctx, orchestrators.NavigateInput{Path: route.RootPath, Now: time.Now()}, navDeps)
	slog.Info("nav_event", "event", "entry_evaluated", "state", view.Decision.State, "redirect", view.Decision.Redirect)

	// The shell runs until interrupted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("startup_event", "event", "shutdown")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
