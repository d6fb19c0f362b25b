// Package shell implements the interactive command shell that runs
// over one connection: a byte-at-a-time line editor with history and
// ANSI cursor handling, a quoting tokenizer, a command registry with
// shadowing, and the session controller that ties them together.
package shell

import (
	"io"

	"shelld/internal/metrics"
)

// Fallback sizes used when a Session is built without explicit values.
const (
	DefaultBufferSize  = 128
	DefaultHistorySize = 8
	DefaultMaxArgs     = 16
)

// Handler executes one command invocation.  args holds only the
// command's own arguments — never the command name itself.
type Handler func(env *Env, args []string) Status

// Command describes one invocable shell command.
type Command struct {
	Name  string
	Usage string
	Run   Handler

	next *Command
}

// Env is the execution environment a handler sees: the session's
// output sink, its working directory, and the process metrics.
type Env struct {
	Out     io.Writer
	Dir     *Workdir
	Metrics *metrics.Collector
}

// Registry is the set of registered commands.  Registration pushes
// onto the head of a singly linked list and lookup walks head to tail,
// so registering an existing name again shadows the earlier command.
//
// The registry is populated at startup and read-only afterwards; it is
// shared across sessions without locking.
type Registry struct {
	head *Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds cmd at the head of the registry.  Commands with an
// empty name are ignored.
func (r *Registry) Register(cmd *Command) {
	if cmd == nil || cmd.Name == "" {
		return
	}
	cmd.next = r.head
	r.head = cmd
}

// Lookup returns the first command whose name matches, or nil.
func (r *Registry) Lookup(name string) *Command {
	for c := r.head; c != nil; c = c.next {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk visits every command head to tail until fn returns false.
func (r *Registry) Walk(fn func(*Command) bool) {
	for c := r.head; c != nil; c = c.next {
		if !fn(c) {
			return
		}
	}
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	n := 0
	for c := r.head; c != nil; c = c.next {
		n++
	}
	return n
}
