package source

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/opsdeck/opsdeck/server/internal/runner"
)

// fakeRunner answers commands by their joined argument list.
type fakeRunner struct {
	mu    sync.Mutex
	out   map[string]string
	err   map[string]error
	calls []runner.Command
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{out: map[string]string{}, err: map[string]error{}}
}

func key(args ...string) string { return strings.Join(args, " ") }

func (f *fakeRunner) on(out string, args ...string) *fakeRunner {
	f.out[key(args...)] = out
	return f
}

func (f *fakeRunner) fail(err error, args ...string) *fakeRunner {
	f.err[key(args...)] = err
	return f
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	k := key(cmd.Args...)
	if err, ok := f.err[k]; ok {
		return "", err
	}
	if out, ok := f.out[k]; ok {
		return out, nil
	}
	return "", errors.New("fake runner: no script for " + k)
}

func (f *fakeRunner) called(args ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(args...)
	for _, c := range f.calls {
		if key(c.Args...) == k {
			return true
		}
	}
	return false
}

func rt(f *fakeRunner) Runtime { return Runtime{Runner: f, Binary: "docker"} }
