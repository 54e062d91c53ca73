package stub

import (
	"fmt"
	"os"

	"github.com/qiniu/x/log"

	"github.com/openal-orbis/oobuild/internal/artifact"
	"github.com/openal-orbis/oobuild/pkgs/buildsys"
	"github.com/openal-orbis/oobuild/pkgs/buildsys/llvm"
)

// Generator writes, compiles and links the stub library.
type Generator struct {
	// Headers are scanned in order; paths are absolute.
	Headers   []string
	Toolchain *llvm.Toolchain
	Invoker   buildsys.Invoker
}

// Source scans the headers and renders the stub source.
func (g *Generator) Source() ([]byte, *Symbols, error) {
	syms, err := ScanFiles(g.Headers)
	if err != nil {
		return nil, nil, err
	}
	return Render(syms), syms, nil
}

// Generate produces set.StubSource, set.StubObject and set.Stub. The first
// failing step aborts generation and its error is returned.
func (g *Generator) Generate(set artifact.Set) (*Symbols, error) {
	src, syms, err := g.Source()
	if err != nil {
		return nil, err
	}
	log.Infof("> Stub exports %d symbols", syms.Len())

	if err := os.WriteFile(set.StubSource, src, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write stub source: %w", err)
	}
	if err := buildsys.Run(g.Invoker, g.Toolchain.CompileStub(set.StubSource, set.StubObject)); err != nil {
		return nil, fmt.Errorf("failed to compile stub: %w", err)
	}
	if err := buildsys.Run(g.Invoker, g.Toolchain.LinkStub(set.StubObject, set.Stub)); err != nil {
		return nil, fmt.Errorf("failed to link stub: %w", err)
	}
	return syms, nil
}
