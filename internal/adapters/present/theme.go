// Package present applies resolved preferences to the rendered document:
// theme switching without transition flicker, and message catalog lookup.
package present

import "log/slog"

const (
	themeAttribute = "data-theme"
	suppressClass  = "theme-switching"
)

// Document is the minimal surface of the rendered page the theme applier
// needs. Implementations bridge to the embedded webview.
type Document interface {
	SetAttribute(name, value string)
	AddClass(name string)
	RemoveClass(name string)
	// ForceReflow flushes pending style work so the attribute change lands
	// while transitions are still suppressed.
	ForceReflow()
}

// ThemeApplier switches the document theme. It implements the
// prefstore.Presenter port.
type ThemeApplier struct {
	doc Document
}

// NewThemeApplier creates an applier over the given document.
func NewThemeApplier(doc Document) *ThemeApplier {
	return &ThemeApplier{doc: doc}
}

// ApplyTheme swaps the theme with transitions suppressed for the duration
// of the swap. The ordering is load-bearing: suppress, swap, flush, then
// release — releasing before the flush would animate every themed property
// at once.
func (a *ThemeApplier) ApplyTheme(theme string) {
	a.doc.AddClass(suppressClass)
	a.doc.SetAttribute(themeAttribute, theme)
	a.doc.ForceReflow()
	a.doc.RemoveClass(suppressClass)
	slog.Debug("present_event", "event", "theme_applied", "theme", theme)
}

// NoopDocument satisfies Document for headless runs and tests that do not
// care about presentation.
type NoopDocument struct{}

func (NoopDocument) SetAttribute(name, value string) {}
func (NoopDocument) AddClass(name string)            {}
func (NoopDocument) RemoveClass(name string)         {}
func (NoopDocument) ForceReflow()                    {}
