package prefs

import (
	"strings"

	"golang.org/x/text/language"
)

// Language constants — the closed set of UI languages.
const (
	LanguageEnglish = "en"
	LanguageChinese = "zh"
)

// Theme constants — the closed set of visual themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidLanguages contains all valid language codes.
var ValidLanguages = []string{LanguageEnglish, LanguageChinese}

// ValidThemes contains all valid theme modes.
var ValidThemes = []string{ThemeLight, ThemeDark}

// Preferences holds the fully resolved per-user visual/locale settings.
// Both fields are always set after resolution.
type Preferences struct {
	Language string
	Theme    string
}

// Record is a partially stored preference record for one storage scope.
// An empty field means "not set in this scope" and must not erase the
// resolution of that field from lower-precedence layers.
type Record struct {
	Language string `json:"language,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// ValidLanguage checks membership in the closed language enumeration.
func ValidLanguage(code string) bool {
	for _, l := range ValidLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// ValidTheme checks membership in the closed theme enumeration.
func ValidTheme(mode string) bool {
	for _, m := range ValidThemes {
		if m == mode {
			return true
		}
	}
	return false
}

// Empty reports whether the record sets neither field.
// INVARIANT: Record fields are not mutated
func (r Record) Empty() bool {
	return r.Language == "" && r.Theme == ""
}

// Overlay applies the record's set-and-valid fields on top of base.
// PRE: base has both fields resolved
// POST: Returns base with each valid record field overriding; unset or
// invalid fields leave the base value untouched
func (r Record) Overlay(base Preferences) Preferences {
	out := base
	if ValidLanguage(r.Language) {
		out.Language = r.Language
	}
	if ValidTheme(r.Theme) {
		out.Theme = r.Theme
	}
	return out
}

// RecordOf converts resolved preferences into a fully populated record,
// used when persisting the current state to a storage scope.
func RecordOf(p Preferences) Record {
	return Record{Language: p.Language, Theme: p.Theme}
}

// Resolve computes the effective preferences for one owning identity.
//
// Precedence, lowest to highest: system defaults, the anonymous/global
// record, the identity-scoped record. A partial record only overrides the
// fields it sets. The legacy last-language marker is honored only when no
// stored record exists at all, for compatibility with earlier anonymous
// sessions on the same device.
// PRE: defaults has both fields set
// POST: Returns preferences with both fields set
func Resolve(defaults Preferences, identityRec, globalRec *Record, legacyLanguage string) Preferences {
	out := defaults
	if identityRec == nil && globalRec == nil {
		if ValidLanguage(legacyLanguage) {
			out.Language = legacyLanguage
		}
		return out
	}
	if globalRec != nil {
		out = globalRec.Overlay(out)
	}
	if identityRec != nil {
		out = identityRec.Overlay(out)
	}
	return out
}

var languageMatcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Chinese,
})

// DetectLanguage sniffs the system locale string (e.g. "zh_CN.UTF-8",
// "en-US") and maps it onto the closed language set. Unparseable or
// unsupported locales fall back to English.
func DetectLanguage(locale string) string {
	raw := strings.TrimSpace(locale)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" {
		return LanguageEnglish
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return LanguageEnglish
	}
	_, index, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return LanguageEnglish
	}
	if index == 1 {
		return LanguageChinese
	}
	return LanguageEnglish
}

// DetectTheme maps the OS color-scheme query result onto the closed theme
// set. Anything other than an explicit dark preference resolves light.
func DetectTheme(colorScheme string) string {
	if strings.EqualFold(strings.TrimSpace(colorScheme), ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}
