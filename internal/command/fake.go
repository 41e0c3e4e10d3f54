package command

import (
	"context"
	"io"
	"strings"
)

// Call records one invocation seen by a FakeRunner.
type Call struct {
	Name  string
	Args  []string
	Stdin []byte
}

// FakeRunner is a scripted Runner used by package tests across the module.
// Responses are keyed by program name.
type FakeRunner struct {
	Outputs map[string][]byte
	Errors  map[string]error
	Calls   []Call
}

// Run records the call and returns the scripted output for name.
func (f *FakeRunner) Run(_ context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		call.Stdin = data
	}
	f.Calls = append(f.Calls, call)
	return f.Outputs[name], f.Errors[name]
}

// Called reports whether name was invoked at least once.
func (f *FakeRunner) Called(name string) bool {
	for _, c := range f.Calls {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CommandLine renders the i-th call for assertions.
func (f *FakeRunner) CommandLine(i int) string {
	c := f.Calls[i]
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}
