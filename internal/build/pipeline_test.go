package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/openal-orbis/oobuild/internal/manifest"
	"github.com/openal-orbis/oobuild/internal/stub"
	"github.com/openal-orbis/oobuild/pkgs/buildsys"
)

func TestRunSuccess(t *testing.T) {
	inv := &fakeInvoker{}
	p := newTestPipeline(t, inv, testHeader, "a.cpp", "b.cpp")

	res, err := p.Run()
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if got := ExitStatus(err); got != 0 {
		t.Errorf("ExitStatus = %d, want 0", got)
	}

	build := p.Resolver.BuildDir
	wantObjs := []string{filepath.Join(build, "a.cpp.o"), filepath.Join(build, "b.cpp.o")}
	if got := res.Objects.Paths(); !reflect.DeepEqual(got, wantObjs) {
		t.Fatalf("Objects = %q, want %q", got, wantObjs)
	}

	wantTools := []string{"clang++", "clang++", "ld.lld", "create-fself", "llvm-ar", "clang", "clang"}
	if got := inv.tools(); !reflect.DeepEqual(got, wantTools) {
		t.Fatalf("tools = %q, want %q", got, wantTools)
	}

	link := inv.calls[2]
	if got := link.Args[len(link.Args)-2:]; !reflect.DeepEqual(got, wantObjs) {
		t.Errorf("link objects = %q, want %q", got, wantObjs)
	}
	ar := inv.calls[4]
	if got := ar.Args; !reflect.DeepEqual(got, append([]string{"rc", res.Artifacts.Archive}, wantObjs...)) {
		t.Errorf("archive args = %q", got)
	}

	wantTrail := []State{Clean, Compiling, Linking, Packaging, Archiving, StubBuilding, Done}
	if got := p.Trail(); !reflect.DeepEqual(got, wantTrail) {
		t.Errorf("Trail = %v, want %v", got, wantTrail)
	}
	if p.State() != Done {
		t.Errorf("State = %v, want done", p.State())
	}

	if got := strings.Join(res.Symbols.Names(), " "); got != "alEnable alcProcessContext" {
		t.Errorf("Symbols = %q", got)
	}
	rec, err := LoadRecord(build)
	if err != nil {
		t.Fatalf("LoadRecord() returned error: %v", err)
	}
	if rec.Name != "libtest" || len(rec.Objects) != 2 {
		t.Errorf("record = %+v", rec)
	}
}

func TestRunManifestMatchesSources(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			var sources []string
			for i := 0; i < n; i++ {
				sources = append(sources, fmt.Sprintf("dir%d/src%d.cpp", i%2, i))
			}
			p := newTestPipeline(t, &fakeInvoker{}, testHeader, sources...)
			res, err := p.Run()
			if err != nil {
				t.Fatalf("Run() returned error: %v", err)
			}
			got := res.Objects.Paths()
			if len(got) != n {
				t.Fatalf("len(Objects) = %d, want %d", len(got), n)
			}
			for i, src := range sources {
				want := filepath.Join(p.Resolver.BuildDir, filepath.FromSlash(src)+".o")
				if got[i] != want {
					t.Errorf("Objects[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestRunCompileFailureShortCircuits(t *testing.T) {
	sources := []string{"a.cpp", "b.cpp", "c.cpp", "d.cpp"}
	for k := range sources {
		t.Run(sources[k], func(t *testing.T) {
			want := buildsys.Status(10 + k)
			var p *Pipeline
			inv := &fakeInvoker{}
			inv.status = func(cmd buildsys.Command) buildsys.Status {
				if cmd.Args[len(cmd.Args)-1] == p.Resolver.Source(sources[k]) {
					return want
				}
				return buildsys.Success
			}
			p = newTestPipeline(t, inv, testHeader, sources...)

			res, err := p.Run()
			if res != nil {
				t.Fatalf("Run() result = %+v, want nil", res)
			}
			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("Run() error = %v, want *StageError", err)
			}
			if stageErr.Stage != Compiling || stageErr.Source != sources[k] {
				t.Errorf("StageError at %v %q, want compiling %q", stageErr.Stage, stageErr.Source, sources[k])
			}
			if got := ExitStatus(err); got != int(want) {
				t.Errorf("ExitStatus = %d, want %d", got, want)
			}
			for _, tool := range inv.tools() {
				if tool != "clang++" {
					t.Errorf("%s ran after a compile failure", tool)
				}
			}
			if got := len(inv.calls); got != k+1 {
				t.Errorf("compiled %d sources, want %d", got, k+1)
			}
			if p.State() != Failed {
				t.Errorf("State = %v, want failed", p.State())
			}
			if _, err := LoadRecord(p.Resolver.BuildDir); err == nil {
				t.Error("build record written for a failed build")
			}
		})
	}
}

func TestRunFirstSourceFails(t *testing.T) {
	var p *Pipeline
	inv := &fakeInvoker{}
	inv.status = func(cmd buildsys.Command) buildsys.Status {
		if cmd.Args[len(cmd.Args)-1] == p.Resolver.Source("a.cpp") {
			return 1
		}
		return buildsys.Success
	}
	p = newTestPipeline(t, inv, testHeader, "a.cpp", "b.cpp")

	_, err := p.Run()
	if got := ExitStatus(err); got != 1 {
		t.Fatalf("ExitStatus = %d, want 1", got)
	}
	if len(inv.calls) != 1 {
		t.Fatalf("got %d invocations, want only the failing compile", len(inv.calls))
	}
	if _, statErr := os.Stat(filepath.Join(p.Resolver.BuildDir, "b.cpp.o")); statErr == nil {
		t.Error("b.cpp was compiled")
	}
}

func TestRunStageFailures(t *testing.T) {
	tests := []struct {
		tool      string
		stage     State
		wantTools []string
	}{
		{"ld.lld", Linking, []string{"clang++", "ld.lld"}},
		{"create-fself", Packaging, []string{"clang++", "ld.lld", "create-fself"}},
		{"llvm-ar", Archiving, []string{"clang++", "ld.lld", "create-fself", "llvm-ar"}},
		{"clang", StubBuilding, []string{"clang++", "ld.lld", "create-fself", "llvm-ar", "clang"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			inv := &fakeInvoker{status: failTool(tt.tool, 42)}
			p := newTestPipeline(t, inv, testHeader, "a.cpp")

			var seen []State
			p.OnTransition = func(from, to State) { seen = append(seen, to) }

			_, err := p.Run()
			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("Run() error = %v, want *StageError", err)
			}
			if stageErr.Stage != tt.stage {
				t.Errorf("Stage = %v, want %v", stageErr.Stage, tt.stage)
			}
			if stageErr.Status() != 42 || ExitStatus(err) != 42 {
				t.Errorf("status = %d / %d, want 42", stageErr.Status(), ExitStatus(err))
			}
			if got := inv.tools(); !reflect.DeepEqual(got, tt.wantTools) {
				t.Errorf("tools = %q, want %q", got, tt.wantTools)
			}
			if len(seen) == 0 || seen[len(seen)-1] != Failed || seen[len(seen)-2] != tt.stage {
				t.Errorf("transitions = %v, want ... %v failed", seen, tt.stage)
			}
		})
	}
}

func TestRunStubExtractError(t *testing.T) {
	inv := &fakeInvoker{}
	p := newTestPipeline(t, inv, "AL_API void AL_APIENTRY alEnable;\n", "a.cpp")

	_, err := p.Run()
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StubBuilding {
		t.Fatalf("Run() error = %v, want stub stage error", err)
	}
	var extractErr *stub.ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("Run() error = %v, want *stub.ExtractError in chain", err)
	}
	if got := ExitStatus(err); got != 1 {
		t.Errorf("ExitStatus = %d, want 1", got)
	}
	for _, tool := range inv.tools() {
		if tool == "clang" {
			t.Error("stub compiled despite extraction error")
		}
	}
}

func TestRunResetsBuildDir(t *testing.T) {
	p := newTestPipeline(t, &fakeInvoker{}, testHeader, "a.cpp")
	stale := filepath.Join(p.Resolver.BuildDir, "stale", "old.o")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale object survived the build: %v", err)
	}
}

func TestNew(t *testing.T) {
	m := manifest.Default()
	p := New(m, nil, nil, &fakeInvoker{})
	if p.Name != m.Name || len(p.Sources) != len(m.Sources) || p.StubSource != m.Stub.Source {
		t.Errorf("New() = %+v", p)
	}
	if p.State() != Clean {
		t.Errorf("State = %v, want clean", p.State())
	}
}
