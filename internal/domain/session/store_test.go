package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), s.State())
	assert.Nil(t, s.LastSaved())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "opening must not create the file")
}

func TestOpenMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"session_data":`), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestSetSessionDataPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", FileName)
	s, err := Open(path)
	require.NoError(t, err)

	change, err := s.SetSessionData("current_color_scheme", "dark")
	require.NoError(t, err)
	assert.Equal(t, Change{Applied: true}, change)
	assert.NotNil(t, s.LastSaved())

	reopened, err := Open(path)
	require.NoError(t, err)
	v, ok := reopened.Get("current_color_scheme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	var onDisk map[string]interface{}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(data, &onDisk))
	assert.Contains(t, onDisk, "main_window_state")
	assert.Contains(t, onDisk, "main_window_geometry")
	assert.Equal(t, false, onDisk["old_prefs_migrated"])

	// No temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSetSessionDataFonts(t *testing.T) {
	s := NewMemory()

	change, err := s.SetSessionData(KeyBaseFontSize, 18)
	require.NoError(t, err)
	assert.True(t, change.FontsChanged)

	change, err = s.SetSessionData(KeyFontSettings, map[string]interface{}{"serif_family": "Georgia"})
	require.NoError(t, err)
	assert.True(t, change.FontsChanged)

	change, err = s.SetSessionData("controls_help_shown_count", 2)
	require.NoError(t, err)
	assert.False(t, change.FontsChanged)
}

func TestSetSessionDataReset(t *testing.T) {
	s := NewMemory()
	_, err := s.SetSessionData("a", 1)
	require.NoError(t, err)

	// Non-null value under the reset key is ignored
	change, err := s.SetSessionData(ResetKey, "everything")
	require.NoError(t, err)
	assert.False(t, change.Applied)
	assert.Len(t, s.SessionData(), 1)

	change, err = s.SetSessionData(ResetKey, nil)
	require.NoError(t, err)
	assert.Equal(t, Change{Applied: true, Reset: true, FontsChanged: true}, change)
	assert.Empty(t, s.SessionData())
}

func TestPref(t *testing.T) {
	s := NewMemory()
	_, err := s.SetSessionData(DefaultPrefGroup, map[string]interface{}{"singleinstance": true})
	require.NoError(t, err)
	_, err = s.SetSessionData("flat", "top")
	require.NoError(t, err)

	assert.Equal(t, true, s.Pref("singleinstance", false, DefaultPrefGroup))
	assert.Equal(t, "fallback", s.Pref("missing", "fallback", DefaultPrefGroup))
	assert.Equal(t, "top", s.Pref("flat", nil, ""))
	assert.Equal(t, 1, s.Pref("x", 1, "flat"))
	assert.Equal(t, 2, s.Pref("x", 2, "no_such_group"))
}

func TestSessionDataIsCopied(t *testing.T) {
	s := NewMemory()
	_, err := s.SetSessionData("a", 1)
	require.NoError(t, err)

	data := s.SessionData()
	data["b"] = 2
	_, ok := s.Get("b")
	assert.False(t, ok)
}

func TestWindowAndMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetWindow("AAAA", "BBBB"))
	require.NoError(t, s.MarkMigrated())
	require.NoError(t, s.MarkMigrated())

	reopened, err := Open(path)
	require.NoError(t, err)
	st := reopened.State()
	assert.Equal(t, "AAAA", st.MainWindowState)
	assert.Equal(t, "BBBB", st.MainWindowGeometry)
	assert.True(t, st.OldPrefsMigrated)
}
