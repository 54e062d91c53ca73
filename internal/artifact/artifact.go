// Package artifact computes where every build output lands.
//
// Object files mirror the source tree under the build directory, so
// "a/b.cpp" compiles to "<build>/a/b.cpp.o". The final artifacts all share
// one base name.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjExt is appended to a source file name to form its object name.
const ObjExt = ".o"

// Set is the fixed set of named outputs of one build.
type Set struct {
	ELF        string `json:"elf"`
	OELF       string `json:"oelf"`
	PRX        string `json:"prx"`
	Archive    string `json:"archive"`
	Stub       string `json:"stub"`
	StubSource string `json:"stub_source"`
	StubObject string `json:"stub_object"`
}

// Resolver maps project-relative paths to absolute input and output paths.
type Resolver struct {
	Root     string
	BuildDir string
}

// New returns a Resolver for the project at root writing into buildDir,
// which is taken relative to root unless already absolute.
func New(root, buildDir string) *Resolver {
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(root, filepath.FromSlash(buildDir))
	}
	return &Resolver{Root: root, BuildDir: buildDir}
}

// Source returns the absolute path of a project-relative file.
func (r *Resolver) Source(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// ObjectPath returns the object path for the source rel and makes sure its
// directory exists.
func (r *Resolver) ObjectPath(rel string) (string, error) {
	obj, err := r.objectPath(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
		return "", err
	}
	return obj, nil
}

func (r *Resolver) objectPath(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("artifact: source %q is outside the project", rel)
	}
	return filepath.Join(r.BuildDir, local+ObjExt), nil
}

// Reset deletes the build directory and creates it again, empty.
func (r *Resolver) Reset() error {
	if err := os.RemoveAll(r.BuildDir); err != nil {
		return err
	}
	return os.MkdirAll(r.BuildDir, 0o755)
}

// Set returns the artifact set for the final name and the stub source file
// name.
func (r *Resolver) Set(name, stubSource string) Set {
	base := filepath.Join(r.BuildDir, name)
	src := filepath.Join(r.BuildDir, stubSource)
	return Set{
		ELF:        base + ".elf",
		OELF:       base + ".oelf",
		PRX:        base + ".prx",
		Archive:    base + ".a",
		Stub:       base + ".so",
		StubSource: src,
		StubObject: strings.TrimSuffix(src, filepath.Ext(src)) + ObjExt,
	}
}
