package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// FileName is the default store file name
const FileName = "viewer-webengine.json"

// ResetKey resets all session data when sent with a null value
const ResetKey = "*"

// Session data keys that affect font rendering
const (
	KeyFontSettings = "standalone_font_settings"
	KeyBaseFontSize = "base_font_size"
)

// State is the persisted document
type State struct {
	SessionData        map[string]interface{} `json:"session_data"`
	MainWindowState    interface{}            `json:"main_window_state"`
	MainWindowGeometry interface{}            `json:"main_window_geometry"`
	OldPrefsMigrated   bool                   `json:"old_prefs_migrated"`
}

// DefaultState returns the state of a fresh store
func DefaultState() State {
	return State{SessionData: map[string]interface{}{}}
}

// Change describes the effect of one SetSessionData call
type Change struct {
	// Applied is false when the call was ignored
	Applied bool
	// Reset is true when all session data was cleared
	Reset bool
	// FontsChanged is true when font rendering must be refreshed
	FontsChanged bool
}

// Store is the preference store. An empty path keeps it in memory only.
type Store struct {
	path      string
	mu        sync.RWMutex
	state     State
	lastSaved *time.Time
}

// Open reads the store at path, falling back to defaults when the file does
// not exist yet
func Open(path string) (*Store, error) {
	s := &Store{path: path, state: DefaultState()}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	state := DefaultState()
	if err := sonic.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if state.SessionData == nil {
		state.SessionData = map[string]interface{}{}
	}
	s.state = state
	return s, nil
}

// NewMemory creates a store that is never written to disk
func NewMemory() *Store {
	s, _ := Open("")
	return s
}

// Path returns the backing file, or "" for a memory store
func (s *Store) Path() string {
	return s.path
}

// SessionData returns a shallow copy of the session data
func (s *Store) SessionData() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.state.SessionData))
	for k, v := range s.state.SessionData {
		out[k] = v
	}
	return out
}

// Get returns one session data value
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.SessionData[key]
	return v, ok
}

// DefaultPrefGroup is the session data group preferences live in
const DefaultPrefGroup = "standalone_misc_settings"

// Pref reads name from the session data group. An empty group reads the top
// level. Missing values, and groups that are not objects, yield def.
func (s *Store) Pref(name string, def interface{}, group string) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := s.state.SessionData
	if group != "" {
		g, ok := s.state.SessionData[group].(map[string]interface{})
		if !ok {
			return def
		}
		values = g
	}
	if v, ok := values[name]; ok {
		return v
	}
	return def
}

// SetSessionData applies one update from the peer and persists the store.
// A (ResetKey, nil) pair clears everything; ResetKey with any other value
// is ignored.
func (s *Store) SetSessionData(key string, value interface{}) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var change Change
	if key == ResetKey {
		if value != nil {
			return change, nil
		}
		s.state.SessionData = map[string]interface{}{}
		change = Change{Applied: true, Reset: true, FontsChanged: true}
	} else {
		s.state.SessionData[key] = value
		change = Change{
			Applied:      true,
			FontsChanged: key == KeyFontSettings || key == KeyBaseFontSize,
		}
	}

	return change, s.saveLocked()
}

// State returns a copy of the whole document
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.SessionData = make(map[string]interface{}, len(s.state.SessionData))
	for k, v := range s.state.SessionData {
		st.SessionData[k] = v
	}
	return st
}

// SetWindow records the main window state and geometry
func (s *Store) SetWindow(state, geometry interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MainWindowState = state
	s.state.MainWindowGeometry = geometry
	return s.saveLocked()
}

// MarkMigrated records that old preferences were migrated
func (s *Store) MarkMigrated() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.OldPrefsMigrated {
		return nil
	}
	s.state.OldPrefsMigrated = true
	return s.saveLocked()
}

// LastSaved returns when the store was last written, or nil
func (s *Store) LastSaved() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSaved
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := sonic.ConfigStd.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary preferences file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}

	now := time.Now()
	s.lastSaved = &now
	return nil
}
