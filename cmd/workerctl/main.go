// workerctl manages the three pipeline daemons: start, stop, status and
// run-log tailing, using the pidfiles under run.dir and the logs under
// logging.dir.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/securitycam/central/internal/config"
	"github.com/securitycam/central/internal/runfile"
)

var workers = []string{"convertd", "optimized", "aiprocd"}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	command := args[0]

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	var targets []string
	if len(args) > 1 {
		name := args[1]
		if !known(name) {
			fmt.Fprintf(os.Stderr, "unknown worker %q (expected one of %v)\n", name, workers)
			os.Exit(2)
		}
		targets = []string{name}
	} else {
		targets = workers
	}

	var failed bool
	switch command {
	case "start":
		for _, name := range targets {
			if err := start(cfg, *configPath, name); err != nil {
				fmt.Fprintf(os.Stderr, "start %s: %v\n", name, err)
				failed = true
			}
		}
	case "stop":
		for _, name := range targets {
			if err := stop(cfg, name); err != nil {
				fmt.Fprintf(os.Stderr, "stop %s: %v\n", name, err)
				failed = true
			}
		}
	case "status":
		for _, name := range targets {
			status(cfg, name)
		}
	case "tail":
		if len(targets) != 1 {
			fmt.Fprintln(os.Stderr, "tail requires a worker name")
			os.Exit(2)
		}
		if err := tail(cfg, targets[0]); err != nil {
			fmt.Fprintf(os.Stderr, "tail %s: %v\n", targets[0], err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
	if failed {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: workerctl [-config file] {start|stop|status|tail} [worker]")
	fmt.Fprintf(os.Stderr, "workers: %v\n", workers)
}

func known(name string) bool {
	for _, w := range workers {
		if w == name {
			return true
		}
	}
	return false
}

// start launches the daemon binary, looked up next to workerctl itself and
// then on PATH. The daemon writes its own pidfile.
func start(cfg *config.Config, configPath, name string) error {
	if pid, err := runfile.ReadPID(cfg.Run.Dir, name); err == nil && runfile.Alive(pid) {
		fmt.Printf("%s: already running (pid %d)\n", name, pid)
		return nil
	}

	binary, err := findBinary(name)
	if err != nil {
		return err
	}

	cmd := exec.Command(binary, "-config", configPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	// Detach; the daemon outlives workerctl.
	go cmd.Wait()

	fmt.Printf("%s: started (pid %d)\n", name, cmd.Process.Pid)
	return nil
}

func findBinary(name string) (string, error) {
	if self, err := os.Executable(); err == nil {
		local := filepath.Join(filepath.Dir(self), name)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}
	return exec.LookPath(name)
}

func stop(cfg *config.Config, name string) error {
	pid, err := runfile.ReadPID(cfg.Run.Dir, name)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("%s: not running\n", name)
			return nil
		}
		return err
	}
	if !runfile.Alive(pid) {
		fmt.Printf("%s: not running (stale pidfile)\n", name)
		runfile.RemovePID(cfg.Run.Dir, name)
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return err
	}

	// Give the worker its shutdown grace before reporting.
	for i := 0; i < 50; i++ {
		if !runfile.Alive(pid) {
			fmt.Printf("%s: stopped\n", name)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("pid %d still running after SIGTERM", pid)
}

func status(cfg *config.Config, name string) {
	pid, err := runfile.ReadPID(cfg.Run.Dir, name)
	if err != nil || !runfile.Alive(pid) {
		fmt.Printf("%s: stopped\n", name)
		return
	}
	fmt.Printf("%s: running (pid %d)\n", name, pid)
}

// tail prints the end of the worker's run log and follows new output until
// interrupted.
func tail(cfg *config.Config, name string) error {
	path := runfile.LogPath(cfg.Logging.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	// Show roughly the last 4KB rather than the whole history.
	const tailBytes = 4096
	if info.Size() > tailBytes {
		if _, err := f.Seek(-tailBytes, io.SeekEnd); err != nil {
			return err
		}
	}

	for {
		if _, err := io.Copy(os.Stdout, f); err != nil {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}
