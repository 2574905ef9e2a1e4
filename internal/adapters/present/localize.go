package present

import (
	"log/slog"
	"sync"

	"activitypass/internal/domain/prefs"
)

// catalog maps message keys to one language's copy.
type catalog map[string]string

var catalogs = map[string]catalog{
	prefs.LanguageEnglish: {
		"nav.dashboard":       "Dashboard",
		"nav.adminDashboard":  "Dashboard",
		"nav.staffDashboard":  "Dashboard",
		"nav.studentHome":     "Today",
		"nav.studentCalendar": "Calendar",
		"admin.studentsTab":   "Students",
		"admin.facultyTab":    "Faculty",
		"admin.staffTab":      "Staff",
		"admin.coursesTab":    "Courses",
		"admin.activitiesTab": "Activities",
		"auth.signIn":         "Sign in",
		"auth.signOut":        "Sign out",
		"greeting.morning":    "Good morning",
		"greeting.afternoon":  "Good afternoon",
		"greeting.evening":    "Good evening",
		"greeting.night":      "Good night",
	},
	prefs.LanguageChinese: {
		"nav.dashboard":       "仪表盘",
		"nav.adminDashboard":  "仪表盘",
		"nav.staffDashboard":  "仪表盘",
		"nav.studentHome":     "今日",
		"nav.studentCalendar": "日历",
		"admin.studentsTab":   "学生",
		"admin.facultyTab":    "教师",
		"admin.staffTab":      "员工",
		"admin.coursesTab":    "课程",
		"admin.activitiesTab": "活动",
		"auth.signIn":         "登录",
		"auth.signOut":        "退出登录",
		"greeting.morning":    "早上好",
		"greeting.afternoon":  "下午好",
		"greeting.evening":    "晚上好",
		"greeting.night":      "晚安",
	},
}

// LocalizationEngine resolves message keys against the active language.
// It implements the prefstore.Localizer port. Safe for concurrent use.
type LocalizationEngine struct {
	mu       sync.RWMutex
	language string
}

// NewLocalizationEngine creates an engine starting in the given language.
func NewLocalizationEngine(language string) *LocalizationEngine {
	if !prefs.ValidLanguage(language) {
		language = prefs.LanguageEnglish
	}
	return &LocalizationEngine{language: language}
}

// SetLanguage swaps the active catalog. Invalid codes are ignored.
func (e *LocalizationEngine) SetLanguage(code string) {
	if !prefs.ValidLanguage(code) {
		return
	}
	e.mu.Lock()
	e.language = code
	e.mu.Unlock()
	slog.Debug("present_event", "event", "language_applied", "language", code)
}

// Language returns the active language code.
func (e *LocalizationEngine) Language() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.language
}

// T resolves a message key: the active catalog first, the English catalog
// as fallback, and the key itself when no catalog knows it.
func (e *LocalizationEngine) T(key string) string {
	e.mu.RLock()
	language := e.language
	e.mu.RUnlock()

	if msg, ok := catalogs[language][key]; ok {
		return msg
	}
	if msg, ok := catalogs[prefs.LanguageEnglish][key]; ok {
		return msg
	}
	return key
}
