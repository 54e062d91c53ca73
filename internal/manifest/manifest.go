// Package manifest loads the build manifest: the hand-maintained list of
// translation units, public headers and target parameters of one library.
package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"golang.org/x/mod/semver"

	"github.com/openal-orbis/oobuild/internal/env"
	"github.com/openal-orbis/oobuild/pkgs/buildsys/llvm"
)

// SchemaMajor is the only manifest schema major version understood.
const SchemaMajor = "v1"

//go:embed default.toml
var defaultManifest []byte

// Manifest describes one library build.
type Manifest struct {
	Schema   string   `toml:"schema"`
	Name     string   `toml:"name"`
	BuildDir string   `toml:"build_dir"`
	Sources  []string `toml:"sources"`
	Target   Target   `toml:"target"`
	Stub     Stub     `toml:"stub"`
}

// Target holds the main build's compiler and linker parameters.
type Target struct {
	Triple   string   `toml:"triple"`
	Flags    []string `toml:"flags"`
	Warnings []string `toml:"warnings"`
	Features []string `toml:"features"`
	Includes []string `toml:"includes"`
	Defines  []string `toml:"defines"`
	Libs     []string `toml:"libs"`
	PAID     string   `toml:"paid"`
}

// Stub holds the stub library parameters.
type Stub struct {
	Triple  string   `toml:"triple"`
	Source  string   `toml:"source"`
	Headers []string `toml:"headers"`
}

// Default returns the built-in manifest.
func Default() *Manifest {
	m, err := Parse(defaultManifest)
	if err != nil {
		panic("manifest: invalid built-in manifest: " + err.Error())
	}
	return m
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a TOML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest before any build step runs.
func (m *Manifest) Validate() error {
	if !semver.IsValid(m.Schema) {
		return fmt.Errorf("manifest: invalid schema version %q", m.Schema)
	}
	if major := semver.Major(m.Schema); major != SchemaMajor {
		return fmt.Errorf("manifest: unsupported schema %s, want %s", major, SchemaMajor)
	}
	// the packaging tool derives the module name from the file name
	if !strings.HasPrefix(m.Name, "lib") || strings.ContainsAny(m.Name, `/\`) {
		return fmt.Errorf("manifest: name %q must start with \"lib\" and contain no path separators", m.Name)
	}
	if m.BuildDir == "" || !filepath.IsLocal(m.BuildDir) {
		return fmt.Errorf("manifest: build_dir %q must be a relative path inside the project", m.BuildDir)
	}
	if len(m.Sources) == 0 {
		return errors.New("manifest: no sources")
	}
	seen := make(map[string]bool, len(m.Sources))
	for _, src := range m.Sources {
		if !filepath.IsLocal(src) {
			return fmt.Errorf("manifest: source %q must be a relative path inside the project", src)
		}
		if seen[src] {
			return fmt.Errorf("manifest: duplicate source %q", src)
		}
		seen[src] = true
	}
	if m.Target.Triple == "" {
		return errors.New("manifest: target.triple is required")
	}
	if m.Target.PAID == "" {
		return errors.New("manifest: target.paid is required")
	}
	if m.Stub.Triple == "" {
		return errors.New("manifest: stub.triple is required")
	}
	if m.Stub.Source == "" || strings.ContainsAny(m.Stub.Source, `/\`) {
		return fmt.Errorf("manifest: stub.source %q must be a bare file name", m.Stub.Source)
	}
	if len(m.Stub.Headers) == 0 {
		return errors.New("manifest: stub.headers is empty")
	}
	for _, hdr := range m.Stub.Headers {
		if !filepath.IsLocal(hdr) {
			return fmt.Errorf("manifest: header %q must be a relative path inside the project", hdr)
		}
	}
	return nil
}

// Toolchain binds the manifest's target parameters to the configured
// toolchain location. Include directories are resolved against root.
func (m *Manifest) Toolchain(cfg *env.Config, root string) *llvm.Toolchain {
	includes := make([]string, len(m.Target.Includes))
	for i, dir := range m.Target.Includes {
		includes[i] = filepath.Join(root, filepath.FromSlash(dir))
	}
	return &llvm.Toolchain{
		BinDir:     cfg.BinDir,
		SDK:        cfg.SDK,
		Target:     m.Target.Triple,
		Flags:      m.Target.Flags,
		Warnings:   m.Target.Warnings,
		Features:   m.Target.Features,
		Includes:   includes,
		Defines:    m.Target.Defines,
		Libs:       m.Target.Libs,
		PAID:       m.Target.PAID,
		StubTarget: m.Stub.Triple,
	}
}
