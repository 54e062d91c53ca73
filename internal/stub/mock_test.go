package stub

import (
	"github.com/openal-orbis/oobuild/pkgs/buildsys"
)

// fakeInvoker records commands; status decides each command's result and
// defaults to success.
type fakeInvoker struct {
	calls  []buildsys.Command
	status func(cmd buildsys.Command) buildsys.Status
}

func (f *fakeInvoker) Invoke(cmd buildsys.Command) buildsys.Status {
	f.calls = append(f.calls, cmd)
	if f.status == nil {
		return buildsys.Success
	}
	return f.status(cmd)
}

func hasArg(cmd buildsys.Command, arg string) bool {
	for _, a := range cmd.Args {
		if a == arg {
			return true
		}
	}
	return false
}
