package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openal-orbis/oobuild/internal/artifact"
	"github.com/openal-orbis/oobuild/pkgs/buildsys"
	"github.com/openal-orbis/oobuild/pkgs/buildsys/llvm"
)

// fakeInvoker records commands instead of running them; status decides each
// command's result and defaults to success.
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

// tools returns the binary base names of the recorded commands.
func (f *fakeInvoker) tools() []string {
	var names []string
	for _, c := range f.calls {
		names = append(names, filepath.Base(c.Bin))
	}
	return names
}

// failTool fails every command run by the named tool.
func failTool(name string, st buildsys.Status) func(buildsys.Command) buildsys.Status {
	return func(cmd buildsys.Command) buildsys.Status {
		if filepath.Base(cmd.Bin) == name {
			return st
		}
		return buildsys.Success
	}
}

const testHeader = "AL_API void AL_APIENTRY alEnable(int);\n" +
	"ALC_API void ALC_APIENTRY alcProcessContext(ALCcontext *context);\n"

// newTestPipeline lays out a project with the given sources and one public
// header, and returns a pipeline over it.
func newTestPipeline(t *testing.T, inv buildsys.Invoker, header string, sources ...string) *Pipeline {
	t.Helper()
	root := t.TempDir()
	hdr := filepath.Join(root, "include", "AL", "al.h")
	if err := os.MkdirAll(filepath.Dir(hdr), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(hdr, []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}
	return &Pipeline{
		Name:       "libtest",
		Sources:    sources,
		Headers:    []string{"include/AL/al.h"},
		StubSource: "stub.c",
		Resolver:   artifact.New(root, "build"),
		Toolchain: &llvm.Toolchain{
			BinDir:     "/llvm/bin",
			SDK:        "/oo",
			Target:     "x86_64-pc-freebsd12-elf",
			Warnings:   []string{"-Werror"},
			Libs:       []string{"c", "kernel"},
			PAID:       "0x3800000000000011",
			StubTarget: "x86_64-pc-linux-gnu",
		},
		Invoker: inv,
	}
}
