// Package runfile manages the pidfiles and run logs shared between the
// worker daemons and workerctl.
package runfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

func PIDPath(dir, name string) string {
	return filepath.Join(dir, name+".pid")
}

func LogPath(dir, name string) string {
	return filepath.Join(dir, name+".log")
}

// WritePID records the current process. Fails if another live instance
// already holds the pidfile.
func WritePID(dir, name string) error {
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return err
	}
	path := PIDPath(dir, name)

	if pid, err := ReadPID(dir, name); err == nil && Alive(pid) {
		return fmt.Errorf("%s already running with pid %d", name, pid)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

func RemovePID(dir, name string) {
	os.Remove(PIDPath(dir, name))
}

func ReadPID(dir, name string) (int, error) {
	raw, err := os.ReadFile(PIDPath(dir, name))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("corrupt pidfile for %s: %w", name, err)
	}
	return pid, nil
}

// Alive reports whether the pid refers to a signalable process.
func Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// OpenLog opens the worker's append-only run log.
func OpenLog(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return nil, err
	}
	return os.OpenFile(LogPath(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
