package internal

import (
	"io"

	"github.com/openal-orbis/oobuild/internal/artifact"
	"github.com/openal-orbis/oobuild/internal/build"
	"github.com/openal-orbis/oobuild/internal/env"
	"github.com/openal-orbis/oobuild/internal/manifest"
	"github.com/openal-orbis/oobuild/pkgs/buildsys"
)

// project is everything a command needs to act on one checkout.
type project struct {
	root     string
	cfg      *env.Config
	manifest *manifest.Manifest
	resolver *artifact.Resolver
}

// loadProject resolves the project root and manifest. The toolchain
// configuration is read only when withSDK is set, and its absence is
// reported before anything else is loaded.
func loadProject(withSDK bool) (*project, error) {
	proj := &project{}
	if withSDK {
		cfg, err := env.Load()
		if err != nil {
			return nil, err
		}
		proj.cfg = cfg
	}
	root, err := env.ProjectRoot(rootDir)
	if err != nil {
		return nil, err
	}
	proj.root = root

	if manifestPath != "" {
		proj.manifest, err = manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
	} else {
		proj.manifest = manifest.Default()
	}
	proj.resolver = artifact.New(root, proj.manifest.BuildDir)
	return proj, nil
}

func (p *project) invoker() buildsys.Invoker {
	inv := &buildsys.Exec{Env: toolEnv}
	if quiet {
		inv.Stdout, inv.Stderr = io.Discard, io.Discard
	}
	return inv
}

// pipeline returns the build pipeline for the project. The project must have
// been loaded with the SDK.
func (p *project) pipeline() *build.Pipeline {
	tc := p.manifest.Toolchain(p.cfg, p.root)
	return build.New(p.manifest, p.resolver, tc, p.invoker())
}
