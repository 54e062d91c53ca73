package buildsys

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/qiniu/x/log"
	"golang.org/x/sys/execabs"
)

// Exec is the Invoker backed by real processes. The child inherits the
// caller's standard streams unless Stdout/Stderr are set.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer

	// Env overrides variables of the inherited environment.
	Env map[string]string
}

var _ Invoker = (*Exec)(nil)

// Invoke runs cmd synchronously. There is no timeout: a hung tool hangs the
// caller.
func (e *Exec) Invoke(cmd Command) Status {
	if err := cmd.Validate(); err != nil {
		log.Error(err)
		return StatusInvalid
	}
	log.Infof("Invoking %s", cmd)

	c := execabs.Command(cmd.Bin, cmd.Args...)
	c.Stdin = os.Stdin
	c.Stdout = writerOr(e.Stdout, os.Stdout)
	c.Stderr = writerOr(e.Stderr, os.Stderr)
	if len(e.Env) > 0 {
		c.Env = mergeEnv(os.Environ(), e.Env)
	}
	return statusOf(c.Run())
}

func statusOf(err error) Status {
	if err == nil {
		return Success
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return Status(code)
		}
		return StatusSignaled
	}
	log.Errorf("failed to start: %v", err)
	return StatusNotFound
}

func writerOr(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
