package envutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvMissingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEAVEDESK_TEST_A=file\nLEAVEDESK_TEST_B=file\n"), 0o600))
	t.Setenv("LEAVEDESK_TEST_A", "process")
	t.Setenv("LEAVEDESK_TEST_B", "")
	require.NoError(t, os.Unsetenv("LEAVEDESK_TEST_B"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "process", os.Getenv("LEAVEDESK_TEST_A"))
	require.Equal(t, "file", os.Getenv("LEAVEDESK_TEST_B"))
}

func TestWriteDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	values := map[string]string{"API_BASE_URL": "http://localhost:8080", "LEAVEDESK_ADDR": ":3000"}
	require.NoError(t, WriteDotEnv(path, values, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.Error(t, WriteDotEnv(path, values, false))
	require.NoError(t, WriteDotEnv(path, values, true))
}

func TestTypedLookups(t *testing.T) {
	t.Setenv("LEAVEDESK_TEST_DUR", "250ms")
	t.Setenv("LEAVEDESK_TEST_BAD", "soon")
	t.Setenv("LEAVEDESK_TEST_INT", "42")

	require.Equal(t, 250*time.Millisecond, Duration("LEAVEDESK_TEST_DUR", time.Second))
	require.Equal(t, time.Second, Duration("LEAVEDESK_TEST_BAD", time.Second))
	require.Equal(t, int64(42), Int64("LEAVEDESK_TEST_INT", 1))
	require.Equal(t, "x", String("LEAVEDESK_TEST_UNSET", "x"))
}
