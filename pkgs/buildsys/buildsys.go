// Package buildsys runs the external tools a native build is made of.
//
// Every tool (compiler, linker, archiver, packager) is an opaque program
// identified by path. It receives an ordered argument list and reports a
// process exit status; nothing else about it is interpreted.
package buildsys

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Status is the exit status of one tool invocation.
type Status int

const (
	// Success is the only status treated as success.
	Success Status = 0

	// StatusSignaled is reported when the tool was terminated by a signal.
	StatusSignaled Status = 128
	// StatusInvalid is reported when a command is rejected before it runs.
	StatusInvalid Status = 126
	// StatusNotFound is reported when the tool cannot be started.
	StatusNotFound Status = 127
)

// Command is one tool invocation: a binary and its ordered arguments.
type Command struct {
	Bin  string
	Args []string
}

// Cmd is a shorthand for building a Command.
func Cmd(bin string, args ...string) Command {
	return Command{Bin: bin, Args: args}
}

// Validate rejects commands that cannot be passed to the OS intact.
func (c Command) Validate() error {
	if c.Bin == "" {
		return errors.New("buildsys: empty binary path")
	}
	if strings.IndexByte(c.Bin, 0) >= 0 {
		return fmt.Errorf("buildsys: NUL byte in binary path %q", c.Bin)
	}
	for i, arg := range c.Args {
		if strings.IndexByte(arg, 0) >= 0 {
			return fmt.Errorf("buildsys: NUL byte in argument %d of %s", i, filepath.Base(c.Bin))
		}
	}
	return nil
}

// String renders the command as a shell-quoted line, for display only.
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(quote(c.Bin))
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(quote(arg))
	}
	return sb.String()
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\n\"'\\$`;&|<>*?()") {
		return strconv.Quote(s)
	}
	return s
}

// Invoker runs a command to completion and returns its exit status.
type Invoker interface {
	Invoke(cmd Command) Status
}

// ExitError reports a tool that finished with a non-success status.
type ExitError struct {
	Cmd    Command
	Status Status
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", filepath.Base(e.Cmd.Bin), e.Status)
}

// Run invokes cmd through inv and converts a non-success status into an
// *ExitError.
func Run(inv Invoker, cmd Command) error {
	if st := inv.Invoke(cmd); st != Success {
		return &ExitError{Cmd: cmd, Status: st}
	}
	return nil
}

// StatusOf returns the status carried by err: Success for nil, the tool
// status for an *ExitError anywhere in the chain, and 1 otherwise.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Status
	}
	return 1
}
