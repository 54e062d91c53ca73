package build

import (
	"errors"
	"fmt"
	"time"

	"github.com/qiniu/x/log"

	"github.com/openal-orbis/oobuild/internal/artifact"
	"github.com/openal-orbis/oobuild/internal/manifest"
	"github.com/openal-orbis/oobuild/internal/stub"
	"github.com/openal-orbis/oobuild/pkgs/buildsys"
	"github.com/openal-orbis/oobuild/pkgs/buildsys/llvm"
)

// Pipeline builds one library from scratch: compile, link, package,
// archive, then the stub library. It is single use per Run and strictly
// sequential.
type Pipeline struct {
	// Name is the base name of every final artifact.
	Name string
	// Sources are compiled in order; paths are project relative.
	Sources []string
	// Headers are scanned for the stub; paths are project relative.
	Headers    []string
	StubSource string

	Resolver  *artifact.Resolver
	Toolchain *llvm.Toolchain
	Invoker   buildsys.Invoker

	// OnTransition, if set, observes every state change.
	OnTransition func(from, to State)

	state State
	trail []State
}

// Result describes a successful build.
type Result struct {
	Artifacts artifact.Set
	Objects   *Objects
	Symbols   *stub.Symbols
}

// New returns a pipeline for the manifest m.
func New(m *manifest.Manifest, r *artifact.Resolver, tc *llvm.Toolchain, inv buildsys.Invoker) *Pipeline {
	return &Pipeline{
		Name:       m.Name,
		Sources:    m.Sources,
		Headers:    m.Stub.Headers,
		StubSource: m.Stub.Source,
		Resolver:   r,
		Toolchain:  tc,
		Invoker:    inv,
	}
}

// State returns the current state.
func (p *Pipeline) State() State { return p.state }

// Trail returns every state entered by the last Run, in order.
func (p *Pipeline) Trail() []State {
	return append([]State(nil), p.trail...)
}

type stage struct {
	state State
	run   func() error
}

// Run executes the pipeline. The first failing stage moves the pipeline to
// Failed and its error, a *StageError, is returned; no later stage runs and
// nothing already produced is removed.
func (p *Pipeline) Run() (*Result, error) {
	p.state, p.trail = Clean, []State{Clean}
	start := time.Now()

	if err := p.Resolver.Reset(); err != nil {
		return nil, p.fail(Clean, fmt.Errorf("failed to reset %s: %w", p.Resolver.BuildDir, err))
	}

	res := &Result{Artifacts: p.Resolver.Set(p.Name, p.StubSource)}
	stages := []stage{
		{Compiling, func() (err error) {
			res.Objects, err = p.compile()
			return
		}},
		{Linking, func() error { return p.link(res.Objects, res.Artifacts) }},
		{Packaging, func() error { return p.pack(res.Artifacts) }},
		{Archiving, func() error { return p.archive(res.Objects, res.Artifacts) }},
		{StubBuilding, func() (err error) {
			res.Symbols, err = p.buildStub(res.Artifacts)
			return
		}},
	}
	for _, s := range stages {
		p.transition(s.state)
		if err := s.run(); err != nil {
			return nil, p.fail(s.state, err)
		}
	}
	p.transition(Done)

	rec := &Record{
		Name:      p.Name,
		Artifacts: res.Artifacts,
		Objects:   res.Objects.Paths(),
		Symbols:   res.Symbols.Names(),
		StartTime: start,
		BuildTime: time.Now(),
	}
	if err := SaveRecord(p.Resolver.BuildDir, rec); err != nil {
		log.Warnf("failed to save build record: %v", err)
	}
	return res, nil
}

func (p *Pipeline) transition(to State) {
	from := p.state
	if !allowed(from, to) {
		panic(fmt.Sprintf("build: illegal transition %s -> %s", from, to))
	}
	p.state = to
	p.trail = append(p.trail, to)
	log.Debugf("state %s -> %s", from, to)
	if p.OnTransition != nil {
		p.OnTransition(from, to)
	}
}

func (p *Pipeline) fail(at State, err error) error {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		err = &StageError{Stage: at, Err: err}
	}
	p.transition(Failed)
	return err
}

// compile builds every source in order and returns the objects produced.
// It stops at the first failing source.
func (p *Pipeline) compile() (*Objects, error) {
	log.Infof("> Compiling %d sources", len(p.Sources))
	objs := &Objects{}
	for _, rel := range p.Sources {
		obj, err := p.Resolver.ObjectPath(rel)
		if err != nil {
			return nil, &StageError{Stage: Compiling, Source: rel, Err: err}
		}
		cmd := p.Toolchain.Compile(p.Resolver.Source(rel), obj)
		if err := buildsys.Run(p.Invoker, cmd); err != nil {
			return nil, &StageError{Stage: Compiling, Source: rel, Err: err}
		}
		objs.add(obj)
		log.Debugf("compiled %s -> %s", rel, obj)
	}
	return objs, nil
}

func (p *Pipeline) checkObjects(objs *Objects) error {
	if objs.Len() != len(p.Sources) {
		return fmt.Errorf("%d objects for %d sources", objs.Len(), len(p.Sources))
	}
	return nil
}

func (p *Pipeline) link(objs *Objects, set artifact.Set) error {
	if err := p.checkObjects(objs); err != nil {
		return err
	}
	log.Infof("> Linking %s", set.ELF)
	return buildsys.Run(p.Invoker, p.Toolchain.Link(objs.Paths(), set.ELF))
}

func (p *Pipeline) pack(set artifact.Set) error {
	log.Infof("> Packaging %s", set.PRX)
	return buildsys.Run(p.Invoker, p.Toolchain.Package(set.ELF, set.OELF, set.PRX))
}

func (p *Pipeline) archive(objs *Objects, set artifact.Set) error {
	if err := p.checkObjects(objs); err != nil {
		return err
	}
	log.Infof("> Archiving %s", set.Archive)
	return buildsys.Run(p.Invoker, p.Toolchain.Archive(objs.Paths(), set.Archive))
}

func (p *Pipeline) buildStub(set artifact.Set) (*stub.Symbols, error) {
	log.Infof("> Generating stub %s", set.Stub)
	return p.StubGenerator().Generate(set)
}

// StubGenerator returns the stub generator bound to this pipeline's headers
// and toolchain.
func (p *Pipeline) StubGenerator() *stub.Generator {
	headers := make([]string, len(p.Headers))
	for i, hdr := range p.Headers {
		headers[i] = p.Resolver.Source(hdr)
	}
	return &stub.Generator{
		Headers:   headers,
		Toolchain: p.Toolchain,
		Invoker:   p.Invoker,
	}
}
