package common

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"slices"
	"strings"
	"sync"
)

// Call records one command seen by MockProcessRunner.
type Call struct {
	Path string
	Args []string
	Env  []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.Join(append(append(slices.Clone(c.Env), c.Path), c.Args...), " ")
}

// MockProcessRunner is a ProcessRunner for tests. It records every call and
// never touches real processes.
type MockProcessRunner struct {
	mu sync.Mutex

	// RunFunc allows tests to provide custom Run behaviour.
	RunFunc func(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// StartErr is returned by Start.
	StartErr error

	// Installed lists executables LookPath finds.
	Installed []string

	// Running maps executable names to running PIDs.
	Running map[string][]int

	Runs       []Call
	Starts     []Call
	Terminated []int
}

// NewMockProcessRunner creates a mock where the given executables are installed.
func NewMockProcessRunner(installed ...string) *MockProcessRunner {
	return &MockProcessRunner{Installed: installed, Running: make(map[string][]int)}
}

// NewErrorMockProcessRunner creates a mock whose Run fails with errMsg on stderr.
func NewErrorMockProcessRunner(errMsg string, installed ...string) *MockProcessRunner {
	m := NewMockProcessRunner(installed...)
	m.RunFunc = func(context.Context, string, []string, io.Reader) ([]byte, []byte, error) {
		return nil, []byte(errMsg), errors.New("exit status 1")
	}
	return m
}

// Run records the call and runs RunFunc, succeeding silently by default.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.mu.Lock()
	m.Runs = append(m.Runs, Call{Path: path, Args: args})
	fn := m.RunFunc
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if fn != nil {
		return fn(ctx, path, args, stdin)
	}
	return nil, nil, nil
}

// Start records the call.
func (m *MockProcessRunner) Start(path string, args []string, env []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Starts = append(m.Starts, Call{Path: path, Args: args, Env: env})
	return m.StartErr
}

// LookPath finds executables listed in Installed.
func (m *MockProcessRunner) LookPath(file string) (string, error) {
	if slices.Contains(m.Installed, file) {
		return "/usr/bin/" + file, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// Find returns the PIDs configured in Running.
func (m *MockProcessRunner) Find(name string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Running[name]), nil
}

// Terminate records the PID.
func (m *MockProcessRunner) Terminate(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Terminated = append(m.Terminated, pid)
	return nil
}

// LastRun returns the most recent Run call.
func (m *MockProcessRunner) LastRun() (Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Runs) == 0 {
		return Call{}, false
	}
	return m.Runs[len(m.Runs)-1], true
}
