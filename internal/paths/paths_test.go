package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHome points the platform lookups at home for the test.
func fakeHome(t *testing.T, home string) {
	t.Helper()
	saved := platformDir
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return filepath.Join(home, "AppData"), nil }
	t.Cleanup(func() { platformDir = saved })
}

func TestDefaultDirs_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG variables when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/cafememo", got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/cafememo", got)
	})

	t.Run("falls back to the home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_DATA_HOME", "")
		fakeHome(t, "/home/tester")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/tester/.config/cafememo", got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/tester/.local/share/cafememo", got)
	})
}

func TestDefaultDirs_Other(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("non-linux test")
	}
	fakeHome(t, "/users/tester")

	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/users/tester", "AppData", "cafememo"), got)

	got, err = DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/users/tester", "AppData", "cafememo", "data"), got)
}

func TestResolveConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	def, err := DefaultConfigDir()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{name: "flag wins over env", flag: "/flag/config", envVal: "/env/config", want: "/flag/config"},
		{name: "env when no flag", envVal: "/env/config", want: "/env/config"},
		{name: "platform default otherwise", want: def},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	def, err := DefaultDataDir()
	require.NoError(t, err)

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{name: "flag wins", flag: "/flag/data", configValue: "/cfg/data", envVal: "/env/data", want: "/flag/data"},
		{name: "config value over env", configValue: "/cfg/data", envVal: "/env/data", want: "/cfg/data"},
		{name: "env when nothing else", envVal: "/env/data", want: "/env/data"},
		{name: "platform default otherwise", want: def},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelativePathsBecomeAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "relative/env")

	got, err := ResolveConfigDir("relative/path")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = ResolveDataDir("", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}
