// Package llvm builds the command lines of an LLVM cross toolchain paired
// with the OpenOrbis SDK.
package llvm

import (
	"path/filepath"
	"runtime"

	"github.com/openal-orbis/oobuild/pkgs/buildsys"
)

// Toolchain holds the parameters every command line is built from.
type Toolchain struct {
	// BinDir contains clang, clang++, ld.lld and llvm-ar.
	BinDir string
	// SDK is the OpenOrbis toolchain root.
	SDK string

	// Target is the triple of the main build.
	Target   string
	Flags    []string
	Warnings []string
	Features []string
	// Includes are project include directories, already absolute.
	Includes []string
	// Defines are NAME or NAME=VALUE preprocessor definitions.
	Defines []string
	// Libs are library names linked into both the image and the stub.
	Libs []string

	// PAID is the program authority id stamped by the packaging tool.
	PAID string

	// StubTarget is the triple the stub library is built for.
	StubTarget string
}

// CXX returns the C++ compiler path.
func (t *Toolchain) CXX() string { return filepath.Join(t.BinDir, "clang++") }

// CC returns the C compiler path.
func (t *Toolchain) CC() string { return filepath.Join(t.BinDir, "clang") }

// LD returns the linker path.
func (t *Toolchain) LD() string { return filepath.Join(t.BinDir, "ld.lld") }

// AR returns the archiver path.
func (t *Toolchain) AR() string { return filepath.Join(t.BinDir, "llvm-ar") }

// FSelf returns the path of the SDK's packaging tool for the host OS.
func (t *Toolchain) FSelf() string {
	return filepath.Join(t.SDK, "bin", hostDir(runtime.GOOS), "create-fself")
}

func hostDir(goos string) string {
	switch goos {
	case "windows":
		return "windows"
	case "darwin":
		return "macos"
	}
	return "linux"
}

// CompileFlags returns the fixed flag set shared by every translation unit.
func (t *Toolchain) CompileFlags() []string {
	args := []string{"--target=" + t.Target}
	args = append(args, t.Flags...)
	args = append(args, t.Warnings...)
	args = append(args, t.Features...)
	args = append(args, "-c",
		"-isysroot", t.SDK,
		"-isystem", filepath.Join(t.SDK, "include", "c++", "v1"),
		"-isystem", filepath.Join(t.SDK, "include"),
	)
	for _, dir := range t.Includes {
		args = append(args, "-I"+dir)
	}
	for _, def := range t.Defines {
		args = append(args, "-D"+def)
	}
	return args
}

// Compile compiles one source file into obj.
func (t *Toolchain) Compile(src, obj string) buildsys.Command {
	args := append(t.CompileFlags(), "-o", obj, src)
	return buildsys.Cmd(t.CXX(), args...)
}

// Link links objs into the executable image elf using the SDK's PRX link
// script.
func (t *Toolchain) Link(objs []string, elf string) buildsys.Command {
	args := []string{
		"-m", "elf_x86_64",
		"-pie",
		"--script", filepath.Join(t.SDK, "link.x"),
		"--eh-frame-hdr",
		"--verbose",
		"-L" + filepath.Join(t.SDK, "lib"),
	}
	args = append(args, t.libFlags()...)
	args = append(args, "-o", elf)
	args = append(args, objs...)
	return buildsys.Cmd(t.LD(), args...)
}

// Package converts elf into the signed oelf and the loadable prx.
func (t *Toolchain) Package(elf, oelf, prx string) buildsys.Command {
	return buildsys.Cmd(t.FSelf(),
		"--paid", t.PAID,
		"--in", elf,
		"--out", oelf,
		"--lib", prx,
	)
}

// Archive bundles objs into the static library lib.
func (t *Toolchain) Archive(objs []string, lib string) buildsys.Command {
	args := append([]string{"rc", lib}, objs...)
	return buildsys.Cmd(t.AR(), args...)
}

// CompileStub compiles the generated stub source without any standard
// library.
func (t *Toolchain) CompileStub(src, obj string) buildsys.Command {
	args := append(t.stubFlags(), "-c", src, "-o", obj)
	return buildsys.Cmd(t.CC(), args...)
}

// LinkStub links the stub object into a shared library against the same
// system libraries as the main image.
func (t *Toolchain) LinkStub(obj, so string) buildsys.Command {
	args := []string{"-target", t.StubTarget, "-shared", "-fuse-ld=lld"}
	args = append(args, t.stubFlags()[2:]...)
	args = append(args, "-L"+filepath.Join(t.SDK, "lib"))
	args = append(args, t.libFlags()...)
	args = append(args, obj, "-o", so)
	return buildsys.Cmd(t.CC(), args...)
}

func (t *Toolchain) stubFlags() []string {
	return []string{"-target", t.StubTarget, "-ffreestanding", "-nostdlib", "-fno-builtin", "-fPIC"}
}

func (t *Toolchain) libFlags() []string {
	flags := make([]string, len(t.Libs))
	for i, lib := range t.Libs {
		flags[i] = "-l" + lib
	}
	return flags
}
