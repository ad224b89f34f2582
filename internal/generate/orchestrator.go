// Package generate drives client generation for every descriptor and flavor
// of a session and records the outcome of each unit.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/swagger-cli/internal/catalog"
	"github.com/mark3labs/swagger-cli/internal/codegen"
	"github.com/mark3labs/swagger-cli/internal/logging"
	"github.com/mark3labs/swagger-cli/internal/naming"
	"github.com/mark3labs/swagger-cli/internal/project"
	"github.com/mark3labs/swagger-cli/internal/resolver"
	"github.com/mark3labs/swagger-cli/internal/spec"
	"github.com/mark3labs/swagger-cli/internal/writer"
	"golang.org/x/sync/errgroup"
)

// Options wires the orchestrator's collaborators.
type Options struct {
	Project *project.Context
	Writer  *writer.Writer
	Front   codegen.FrontEngine
	Runner  codegen.Runner

	Jar         string
	Java        string
	TemplateDir string

	// TempRoot holds per-session back-end workspaces.
	TempRoot string
	// Concurrency bounds parallel units; 1 or less runs them in order.
	Concurrency int
	// Timeout bounds each external call (spec fetch, generator run).
	Timeout time.Duration

	SpecOptions []spec.Option
	Logger      *slog.Logger
}

// Orchestrator runs generation sessions.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts and fills defaults.
func New(opts Options) (*Orchestrator, error) {
	if opts.Project == nil {
		return nil, errors.New("generate: project context is required")
	}
	if opts.Writer == nil {
		return nil, errors.New("generate: writer is required")
	}
	if opts.Front == nil {
		opts.Front = codegen.NewAngularEngine()
	}
	if opts.Runner == nil {
		opts.Runner = codegen.ExecRunner{Dir: opts.Project.Root}
	}
	// The generator runs inside the project root, so local paths given
	// relative to the caller's directory are pinned first.
	paths := []*string{&opts.Jar, &opts.TemplateDir}
	if strings.ContainsRune(opts.Java, '/') || strings.ContainsRune(opts.Java, filepath.Separator) {
		paths = append(paths, &opts.Java)
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, fmt.Errorf("generate: resolve %s: %w", *p, err)
		}
		*p = abs
	}
	if opts.TempRoot == "" {
		opts.TempRoot = filepath.Join(os.TempDir(), "swagger-cli")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Orchestrator{opts: opts, logger: logger}, nil
}

// UnitResult is the outcome of one descriptor and flavor.
type UnitResult struct {
	Name   string
	Flavor catalog.Flavor
	Files  []string
	Err    error

	// ModuleName is the AngularJS module to register (front only).
	ModuleName string
	// IndexScript must be added to the index page on legacy hosts (front only).
	IndexScript string
}

// OK reports whether the unit succeeded.
func (u UnitResult) OK() bool { return u.Err == nil }

// DescriptorResult aggregates the units of one descriptor.
type DescriptorResult struct {
	Name           string
	Descriptor     catalog.Descriptor
	FrontGenerated bool
	BackGenerated  bool
	Units          []UnitResult
}

// Report is the outcome of one session.
type Report struct {
	SessionID    string
	Results      []DescriptorResult
	Dependencies []project.Dependency
}

// Failures returns every failed unit in order.
func (r *Report) Failures() []UnitResult {
	var out []UnitResult
	for _, d := range r.Results {
		for _, u := range d.Units {
			if !u.OK() {
				out = append(out, u)
			}
		}
	}
	return out
}

type unit struct {
	entry  resolver.Entry
	flavor catalog.Flavor
}

// Run generates every unit of s. Failed units are recorded in the report and
// never stop their siblings.
func (o *Orchestrator) Run(ctx context.Context, s *resolver.Session) *Report {
	report := &Report{SessionID: s.ID.String()}
	var units []unit
	for _, e := range s.Entries {
		for _, f := range e.Descriptor.Flavors {
			units = append(units, unit{entry: e, flavor: f})
		}
	}

	sessionDir := filepath.Join(o.opts.TempRoot, report.SessionID)
	defer func() { _ = os.RemoveAll(sessionDir) }()

	results := make([]UnitResult, len(units))
	var g errgroup.Group
	limit := o.opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, u := range units {
		g.Go(func() error {
			results[i] = o.runUnit(ctx, sessionDir, u)
			return nil
		})
	}
	_ = g.Wait()

	next := 0
	backDone := false
	for _, e := range s.Entries {
		dr := DescriptorResult{Name: e.Name, Descriptor: e.Descriptor}
		for range e.Descriptor.Flavors {
			r := results[next]
			next++
			dr.Units = append(dr.Units, r)
			if !r.OK() {
				continue
			}
			switch r.Flavor {
			case catalog.Front:
				dr.FrontGenerated = true
			case catalog.Back:
				dr.BackGenerated = true
				backDone = true
			}
		}
		report.Results = append(report.Results, dr)
	}
	if backDone {
		report.Dependencies = o.opts.Project.RequiredDependencies()
	}
	return report
}

func (o *Orchestrator) runUnit(ctx context.Context, sessionDir string, u unit) UnitResult {
	o.logger.Info("generating client", "name", u.entry.Name, "flavor", u.flavor, "spec", u.entry.Descriptor.Spec)
	var res UnitResult
	switch u.flavor {
	case catalog.Front:
		res = o.front(ctx, u.entry)
	case catalog.Back:
		res = o.back(ctx, sessionDir, u.entry)
	default:
		res = UnitResult{Err: fmt.Errorf("unknown client type %q", u.flavor)}
	}
	res.Name = u.entry.Name
	res.Flavor = u.flavor
	if res.Err != nil {
		var f *Failure
		if !errors.As(res.Err, &f) {
			res.Err = &Failure{Kind: GenerationFailure, Name: u.entry.Name, Flavor: u.flavor, Err: res.Err}
		}
		o.logger.Warn("client generation failed", "name", u.entry.Name, "flavor", u.flavor, "err", res.Err)
	}
	return res
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opts.Timeout > 0 {
		return context.WithTimeout(ctx, o.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) front(ctx context.Context, e resolver.Entry) UnitResult {
	fail := func(kind Kind, err error) UnitResult {
		return UnitResult{Err: &Failure{Kind: kind, Name: e.Name, Flavor: catalog.Front, Err: err}}
	}
	location := e.Descriptor.Spec
	o.logger.Debug("retrieving spec", "name", e.Name, "location", location, "kind", spec.Classify(location))

	callCtx, cancel := o.callContext(ctx)
	raw, err := spec.Fetch(callCtx, location, o.opts.SpecOptions...)
	cancel()
	if err != nil {
		return fail(RetrievalFailure, err)
	}
	doc, err := spec.Parse(ctx, raw, location, o.opts.SpecOptions...)
	if err != nil {
		return fail(RetrievalFailure, err)
	}

	moduleName := naming.Camelize(e.Name)
	src, err := o.opts.Front.Render(ctx, codegen.FrontRequest{
		ClassName:  naming.Classify(e.Name),
		ModuleName: moduleName,
		Doc:        doc,
		Model:      spec.BuildServiceModel(doc),
	})
	if err != nil {
		return fail(GenerationFailure, err)
	}

	file := naming.FileName(e.Name) + ".module.js"
	path := filepath.Join(o.opts.Project.WebappDir(), o.opts.Project.ScriptPath(file))
	if err := o.opts.Writer.Write(path, []byte(src)); err != nil {
		return fail(GenerationFailure, err)
	}
	res := UnitResult{Files: []string{path}, ModuleName: moduleName}
	if o.opts.Project.Legacy {
		res.IndexScript = "components/api-clients/" + file
	}
	return res
}

// apiName is the package segment for back-end output; manually entered
// descriptors fall back to the lower-cased client name.
func apiName(e resolver.Entry) string {
	if e.Descriptor.APIName != "" {
		return e.Descriptor.APIName
	}
	return strings.ToLower(e.Name)
}

func (o *Orchestrator) back(ctx context.Context, sessionDir string, e resolver.Entry) UnitResult {
	fail := func(err error) UnitResult {
		return UnitResult{Err: &Failure{Kind: GenerationFailure, Name: e.Name, Flavor: catalog.Back, Err: err}}
	}
	p := o.opts.Project
	if o.opts.Jar == "" {
		return fail(errors.New("no code generator jar configured (codegenJar)"))
	}
	if p.PackageName == "" {
		return fail(errors.New("host project has no packageName"))
	}

	api := apiName(e)
	tmp := filepath.Join(sessionDir, e.Name, api)
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			o.logger.Warn("remove temp workspace", "dir", tmp, "err", err)
		}
	}()
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fail(fmt.Errorf("create temp workspace: %w", err))
	}

	specLoc := e.Descriptor.Spec
	if spec.Classify(specLoc) == spec.Local {
		abs, err := filepath.Abs(specLoc)
		if err != nil {
			return fail(fmt.Errorf("resolve spec path: %w", err))
		}
		specLoc = abs
	}
	req := codegen.BackRequest{
		Java:        o.opts.Java,
		Jar:         o.opts.Jar,
		TemplateDir: o.opts.TemplateDir,
		Spec:        specLoc,
		Name:        e.Name,
		APIName:     api,
		PackageName: p.PackageName,
		OutputDir:   tmp,
	}
	argv := codegen.BackCommand(req)
	o.logger.Debug("running code generator", "argv", strings.Join(argv, " "))

	callCtx, cancel := o.callContext(ctx)
	_, err := o.opts.Runner.Run(callCtx, argv)
	cancel()
	if err != nil {
		return fail(err)
	}

	javaDir := filepath.Join("client", api)
	srcDir := filepath.Join(tmp, p.JavaDir(), javaDir)
	destDir := filepath.Join(p.Root, p.JavaDir(), javaDir)
	artifact := req.ArtifactID()

	var files []string
	copies := []struct{ src, dest string }{
		{filepath.Join(srcDir, "api", "ApiApiClient.java"), filepath.Join(destDir, artifact+"Client.java")},
		{filepath.Join(srcDir, "api", "ApiApi.java"), filepath.Join(destDir, "api", artifact+".java")},
	}
	for _, c := range copies {
		out, err := o.opts.Writer.Copy(c.src, c.dest)
		if err != nil {
			return fail(fmt.Errorf("malformed generator output: %w", err))
		}
		files = append(files, out...)
	}
	models, err := o.opts.Writer.Copy(filepath.Join(srcDir, "model", "*.java"), filepath.Join(destDir, "model"))
	switch {
	case errors.Is(err, writer.ErrNoMatch):
		o.logger.Debug("no model classes generated", "name", e.Name)
	case err != nil:
		return fail(fmt.Errorf("copy models: %w", err))
	}
	files = append(files, models...)
	return UnitResult{Files: files}
}
