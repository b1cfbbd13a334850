package runfile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRemovePID(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WritePID(dir, "convertd"))

	pid, err := ReadPID(dir, "convertd")
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, Alive(pid))

	RemovePID(dir, "convertd")
	_, err = ReadPID(dir, "convertd")
	assert.True(t, os.IsNotExist(err))
}

func TestWritePIDRejectsLiveDuplicate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WritePID(dir, "convertd"))

	// The current process holds the pidfile and is clearly alive.
	err := WritePID(dir, "convertd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestWritePIDReplacesStalePidfile(t *testing.T) {
	dir := t.TempDir()
	// An absurdly high pid that cannot be a live process.
	require.NoError(t, os.WriteFile(PIDPath(dir, "convertd"), []byte("99999999\n"), 0o644))

	assert.NoError(t, WritePID(dir, "convertd"))
}

func TestReadPIDCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PIDPath(dir, "convertd"), []byte("not-a-pid\n"), 0o644))

	_, err := ReadPID(dir, "convertd")
	assert.Error(t, err)
}

func TestOpenLogAppends(t *testing.T) {
	dir := t.TempDir()

	f, err := OpenLog(dir, "convertd")
	require.NoError(t, err)
	_, err = f.WriteString("line one\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = OpenLog(dir, "convertd")
	require.NoError(t, err)
	_, err = f.WriteString("line two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(LogPath(dir, "convertd"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}
