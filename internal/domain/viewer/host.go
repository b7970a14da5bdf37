package viewer

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Panel is a dockable panel the peer can toggle
type Panel string

const (
	PanelTOC       Panel = "toc"
	PanelBookmarks Panel = "bookmarks"
	PanelInspector Panel = "inspector"
	PanelLookup    Panel = "lookup"
)

// Host receives everything the surface asks of the embedding application
type Host interface {
	ReloadBook()
	TogglePanel(panel Panel)
	ToggleFullScreen()
	TOCNodesChanged(families, parents json.RawMessage)
	PositionChanged(cfi string)
	SelectionChanged(text string)
	OpenRequested(path string)
	CopySelection(text string)
	ViewImage(name string)
	OpenExternal(url string)
	FontSettingsChanged(sessionData map[string]interface{})
	ShowError(title, message string)
}

// NopHost ignores everything
type NopHost struct{}

func (NopHost) ReloadBook() {}
func (NopHost) TogglePanel(Panel) {}
func (NopHost) ToggleFullScreen() {}
func (NopHost) TOCNodesChanged(json.RawMessage, json.RawMessage) {}
func (NopHost) PositionChanged(string) {}
func (NopHost) SelectionChanged(string) {}
func (NopHost) OpenRequested(string) {}
func (NopHost) CopySelection(string) {}
func (NopHost) ViewImage(string) {}
func (NopHost) OpenExternal(string) {}
func (NopHost) FontSettingsChanged(map[string]interface{}) {}
func (NopHost) ShowError(string, string) {}

// LogHost records every request at info level. It stands in for window
// chrome when the process runs headless.
type LogHost struct {
	Logger *zap.Logger
}

func (h LogHost) log(msg string, fields ...zap.Field) {
	if h.Logger != nil {
		h.Logger.Info(msg, fields...)
	}
}

func (h LogHost) ReloadBook() { h.log("Reload requested") }

func (h LogHost) TogglePanel(panel Panel) {
	h.log("Panel toggled", zap.String("panel", string(panel)))
}

func (h LogHost) ToggleFullScreen() { h.log("Full screen toggled") }

func (h LogHost) TOCNodesChanged(families, parents json.RawMessage) {
	h.log("Current table of contents nodes changed", zap.Int("families_bytes", len(families)), zap.Int("parents_bytes", len(parents)))
}

func (h LogHost) PositionChanged(cfi string) {
	h.log("Position changed", zap.String("cfi", cfi))
}

func (h LogHost) SelectionChanged(text string) {
	h.log("Selection changed", zap.Int("length", len(text)))
}

func (h LogHost) OpenRequested(path string) {
	h.log("Open requested", zap.String("path", path))
}

func (h LogHost) CopySelection(text string) {
	h.log("Copy requested", zap.Int("length", len(text)))
}

func (h LogHost) ViewImage(name string) {
	h.log("Image view requested", zap.String("name", name))
}

func (h LogHost) OpenExternal(url string) {
	h.log("External link", zap.String("url", url))
}

func (h LogHost) FontSettingsChanged(map[string]interface{}) {
	h.log("Font settings changed")
}

func (h LogHost) ShowError(title, message string) {
	if h.Logger != nil {
		h.Logger.Error(title, zap.String("message", message))
	}
}
