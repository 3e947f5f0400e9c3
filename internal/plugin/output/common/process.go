package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-ps"
)

// ProcessRunner abstracts the external processes integrations start, so
// tests can run without touching the desktop.
type ProcessRunner interface {
	// Run executes a command and waits for it, returning stdout and stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// Start launches a detached command with extra environment entries.
	Start(path string, args []string, env []string) error

	// LookPath searches PATH for an executable.
	LookPath(file string) (string, error)

	// Find returns the PIDs of running processes with the executable name.
	Find(name string) ([]int, error)

	// Terminate asks a process to exit.
	Terminate(pid int) error
}

// RealProcessRunner implements ProcessRunner using os/exec and the process table.
type RealProcessRunner struct{}

// NewRealProcessRunner creates a new real process runner.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}

// Run executes a real external process.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 - integration commands
	cmd.Stdin = stdin

	stdout, err := cmd.Output()
	if err != nil {
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) {
			return stdout, exitErr.Stderr, err
		}
		return stdout, nil, err
	}
	return stdout, nil, nil
}

// Start launches a process without waiting for it. Its output is discarded.
func (r *RealProcessRunner) Start(path string, args []string, env []string) error {
	cmd := exec.Command(path, args...) // #nosec G204 - configured restart command
	cmd.Env = append(os.Environ(), env...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// LookPath implements ProcessRunner.
func (r *RealProcessRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Find implements ProcessRunner by scanning the process table.
func (r *RealProcessRunner) Find(name string) ([]int, error) {
	processes, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to get process list: %w", err)
	}

	var pids []int
	for _, p := range processes {
		if p.Executable() == name {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}

// Terminate sends SIGTERM to pid.
func (r *RealProcessRunner) Terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

// Command is a parsed command line.
type Command struct {
	Env  []string
	Path string
	Args []string
}

// ParseCommand splits a shell-style command line. Leading NAME=value words
// become environment entries for the command.
func ParseCommand(line string) (Command, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return Command{}, fmt.Errorf("invalid command %q: %w", line, err)
	}

	var cmd Command
	for len(words) > 0 && isEnvAssignment(words[0]) {
		cmd.Env = append(cmd.Env, words[0])
		words = words[1:]
	}
	if len(words) == 0 {
		return Command{}, fmt.Errorf("invalid command %q: no program", line)
	}
	cmd.Path = words[0]
	cmd.Args = words[1:]
	return cmd, nil
}

func isEnvAssignment(word string) bool {
	name, _, ok := strings.Cut(word, "=")
	if !ok || name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Restart stops every running instance of the command's program and starts
// it again. When onlyIfRunning is set and nothing is running, nothing is started.
func Restart(runner ProcessRunner, line string, onlyIfRunning bool) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}

	name := cmd.Path[strings.LastIndex(cmd.Path, "/")+1:]
	pids, err := runner.Find(name)
	if err != nil {
		return err
	}
	if onlyIfRunning && len(pids) == 0 {
		return nil
	}
	for _, pid := range pids {
		if err := runner.Terminate(pid); err != nil {
			return fmt.Errorf("failed to stop %s (PID %d): %w", name, pid, err)
		}
	}

	if err := runner.Start(cmd.Path, cmd.Args, cmd.Env); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}
