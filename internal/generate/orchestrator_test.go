package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/swagger-cli/internal/catalog"
	"github.com/mark3labs/swagger-cli/internal/codegen"
	"github.com/mark3labs/swagger-cli/internal/project"
	"github.com/mark3labs/swagger-cli/internal/resolver"
	"github.com/mark3labs/swagger-cli/internal/spec"
	"github.com/mark3labs/swagger-cli/internal/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstore = `{
  "swagger": "2.0",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "host": "petstore.swagger.io",
  "basePath": "/v2",
  "paths": {
    "/pet/{petId}": {
      "get": {
        "operationId": "getPetById",
        "parameters": [{"name": "petId", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

type fixture struct {
	root     string
	tempRoot string
	specPath string
	project  *project.Context
}

func newFixture(t *testing.T, legacy bool) *fixture {
	t.Helper()
	root := t.TempDir()
	specPath := filepath.Join(t.TempDir(), "petstore.json")
	require.NoError(t, os.WriteFile(specPath, []byte(petstore), 0o644))
	return &fixture{
		root:     root,
		tempRoot: t.TempDir(),
		specPath: specPath,
		project: &project.Context{
			Root:            root,
			PackageName:     "com.acme.shop",
			PackageFolder:   "com/acme/shop",
			ApplicationType: "monolith",
			BuildTool:       "maven",
			Legacy:          legacy,
		},
	}
}

func (f *fixture) orchestrator(t *testing.T, runner codegen.Runner, opts ...writer.Option) (*Orchestrator, *writer.Writer) {
	t.Helper()
	w := writer.New(f.root, opts...)
	o, err := New(Options{
		Project:     f.project,
		Writer:      w,
		Runner:      runner,
		Jar:         "swagger-codegen-cli.jar",
		TempRoot:    f.tempRoot,
		SpecOptions: []spec.Option{spec.WithMaxRetries(1)},
	})
	require.NoError(t, err)
	return o, w
}

func session(entries ...resolver.Entry) *resolver.Session {
	return &resolver.Session{ID: uuid.New(), Action: resolver.ActionAll, Entries: entries}
}

func entry(name, specLoc string, flavors ...catalog.Flavor) resolver.Entry {
	return resolver.Entry{Name: name, Descriptor: catalog.Descriptor{Spec: specLoc, Flavors: flavors}}
}

func argValue(argv []string, flag string) string {
	for i, a := range argv {
		if a == flag && i+1 < len(argv) {
			return argv[i+1]
		}
	}
	return ""
}

// fakeCodegen writes the files the Spring Cloud generator would produce.
func fakeCodegen(javaDir string, calls *atomic.Int32) codegen.Runner {
	return codegen.RunnerFunc(func(_ context.Context, argv []string) ([]byte, error) {
		calls.Add(1)
		out := argValue(argv, "--output")
		pkg := argValue(argv, "--api-package")
		apiName := strings.TrimSuffix(strings.TrimPrefix(pkg, "com.acme.shop.client."), ".api")
		base := filepath.Join(out, javaDir, "client", apiName)
		for _, f := range []string{"api/ApiApiClient.java", "api/ApiApi.java", "model/Pet.java", "model/Order.java"} {
			p := filepath.Join(base, filepath.FromSlash(f))
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(p, []byte("// "+f), 0o644); err != nil {
				return nil, err
			}
		}
		return []byte("done"), nil
	})
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary workspace must be removed")
}

func TestRun_FrontIsolatesRetrievalFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	o, _ := f.orchestrator(t, nil)

	report := o.Run(context.Background(), session(
		entry("broken", filepath.Join(t.TempDir(), "does", "not", "exist.json"), catalog.Front),
		entry("pet_store", f.specPath, catalog.Front),
	))
	require.Len(t, report.Results, 2)

	broken := report.Results[0]
	assert.False(t, broken.FrontGenerated)
	require.Len(t, broken.Units, 1)
	assert.True(t, errors.Is(broken.Units[0].Err, ErrRetrieval))
	var se *spec.SpecError
	assert.True(t, errors.As(broken.Units[0].Err, &se))

	ok := report.Results[1]
	assert.True(t, ok.FrontGenerated)
	assert.Equal(t, "petStore", ok.Units[0].ModuleName)
	assert.Empty(t, ok.Units[0].IndexScript)

	out := filepath.Join(f.root, "src", "main", "webapp", "app", "components", "api-clients", "pet-store.module.js")
	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "angular.module('petStore', [])")
	assert.Contains(t, string(src), "PetStore.prototype.getPetById")

	assert.Len(t, report.Failures(), 1)
	assert.Empty(t, report.Dependencies)
}

func TestRun_FrontLegacyHost(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	o, _ := f.orchestrator(t, nil)

	report := o.Run(context.Background(), session(entry("Petstore", f.specPath, catalog.Front)))
	u := report.Results[0].Units[0]
	require.NoError(t, u.Err)
	assert.Equal(t, "components/api-clients/petstore.module.js", u.IndexScript)
	assert.FileExists(t, filepath.Join(f.root, "src", "main", "webapp", "scripts", "components", "api-clients", "petstore.module.js"))
}

func TestRun_Back(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	var calls atomic.Int32
	o, _ := f.orchestrator(t, fakeCodegen(f.project.JavaDir(), &calls))

	e := entry("billing", "http://gw/billing/v2/api-docs", catalog.Back)
	e.Descriptor.APIName = "billingapi"
	report := o.Run(context.Background(), session(e))

	r := report.Results[0]
	require.NoError(t, r.Units[0].Err)
	assert.True(t, r.BackGenerated)
	assert.False(t, r.FrontGenerated)
	assert.Equal(t, int32(1), calls.Load())

	client := filepath.Join(f.root, "src", "main", "java", "com", "acme", "shop", "client", "billingapi")
	assert.FileExists(t, filepath.Join(client, "billingClient.java"))
	assert.FileExists(t, filepath.Join(client, "api", "billing.java"))
	assert.FileExists(t, filepath.Join(client, "model", "Pet.java"))
	assert.FileExists(t, filepath.Join(client, "model", "Order.java"))
	assert.Len(t, r.Units[0].Files, 4)

	assert.Len(t, report.Dependencies, 5)
	assertEmptyDir(t, f.tempRoot)
}

func TestRun_BackFailuresCleanUp(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	var workspaces []string
	failing := codegen.RunnerFunc(func(_ context.Context, argv []string) ([]byte, error) {
		workspaces = append(workspaces, argValue(argv, "--output"))
		return nil, errors.New("exit status 1")
	})
	o, _ := f.orchestrator(t, failing)

	report := o.Run(context.Background(), session(
		entry("billing", "http://gw/billing/v2/api-docs", catalog.Back),
		entry("store", f.specPath, catalog.Front),
	))
	assert.True(t, errors.Is(report.Results[0].Units[0].Err, ErrGeneration))
	assert.False(t, report.Results[0].BackGenerated)
	assert.True(t, report.Results[1].FrontGenerated, "siblings still generate")
	require.Len(t, workspaces, 1)
	assert.Equal(t, "billing", filepath.Base(workspaces[0]), "apiName defaults to the lower-cased name")
	assert.Empty(t, report.Dependencies)
	assertEmptyDir(t, f.tempRoot)
}

func TestRun_BackMalformedOutput(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	silent := codegen.RunnerFunc(func(context.Context, []string) ([]byte, error) { return nil, nil })
	o, _ := f.orchestrator(t, silent)

	report := o.Run(context.Background(), session(entry("billing", "spec.json", catalog.Back)))
	err := report.Results[0].Units[0].Err
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeneration))
	assert.Contains(t, err.Error(), "malformed generator output")
	assertEmptyDir(t, f.tempRoot)
}

func TestRun_BackNeedsJar(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	o, err := New(Options{Project: f.project, Writer: writer.New(f.root), TempRoot: f.tempRoot})
	require.NoError(t, err)

	report := o.Run(context.Background(), session(entry("billing", "spec.json", catalog.Back)))
	assert.True(t, errors.Is(report.Results[0].Units[0].Err, ErrGeneration))
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	var calls atomic.Int32
	o, _ := f.orchestrator(t, fakeCodegen(f.project.JavaDir(), &calls))
	s := session(
		entry("missing", "./nope.json", catalog.Front, catalog.Back),
		entry("petstore", f.specPath, catalog.Front),
	)

	flags := func(r *Report) [][2]bool {
		var out [][2]bool
		for _, d := range r.Results {
			out = append(out, [2]bool{d.FrontGenerated, d.BackGenerated})
		}
		return out
	}
	first := flags(o.Run(context.Background(), s))
	second := flags(o.Run(context.Background(), s))
	assert.Equal(t, first, second)
	assert.Equal(t, [][2]bool{{false, true}, {true, false}}, first)
}

func TestRun_ConcurrentKeepsOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	var calls atomic.Int32
	w := writer.New(f.root)
	o, err := New(Options{
		Project:     f.project,
		Writer:      w,
		Runner:      fakeCodegen(f.project.JavaDir(), &calls),
		Jar:         "c.jar",
		TempRoot:    f.tempRoot,
		Concurrency: 4,
	})
	require.NoError(t, err)

	names := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	var entries []resolver.Entry
	for _, n := range names {
		entries = append(entries, entry(n, f.specPath, catalog.Front, catalog.Back))
	}
	report := o.Run(context.Background(), session(entries...))
	require.Len(t, report.Results, len(names))
	for i, d := range report.Results {
		assert.Equal(t, names[i], d.Name)
		require.Len(t, d.Units, 2)
		assert.Equal(t, catalog.Front, d.Units[0].Flavor)
		assert.Equal(t, catalog.Back, d.Units[1].Flavor)
		assert.True(t, d.FrontGenerated && d.BackGenerated, d.Name)
	}
	assert.Equal(t, int32(len(names)), calls.Load())
	assertEmptyDir(t, f.tempRoot)
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	o, w := f.orchestrator(t, nil, writer.WithDryRun(true))

	report := o.Run(context.Background(), session(entry("petstore", f.specPath, catalog.Front)))
	assert.True(t, report.Results[0].FrontGenerated)
	_, err := os.Stat(filepath.Join(f.root, "src"))
	assert.True(t, os.IsNotExist(err))
	planned := w.Planned()
	require.Len(t, planned, 1)
	assert.Equal(t, "src/main/webapp/app/components/api-clients/petstore.module.js", planned[0].Path)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()
	_, err := New(Options{Writer: writer.New(t.TempDir())})
	assert.Error(t, err)
	_, err = New(Options{Project: &project.Context{}})
	assert.Error(t, err)
}

// fakeJava stands in for the java executable: it checks that the spec and
// jar it receives exist from its own working directory, then writes the
// two API classes.
const fakeJava = `#!/bin/sh
prev=""
for a in "$@"; do
  case "$prev" in
    -jar) jar="$a" ;;
    --output) out="$a" ;;
    --input-spec) spec="$a" ;;
  esac
  prev="$a"
done
[ -f "$spec" ] || { echo "spec $spec not found from $(pwd)"; exit 3; }
[ -f "$jar" ] || { echo "jar $jar not found from $(pwd)"; exit 4; }
dir="$out/src/main/java/com/acme/shop/client/petstore/api"
mkdir -p "$dir"
echo client > "$dir/ApiApiClient.java"
echo api > "$dir/ApiApi.java"
`

func TestRun_RelativePathsResolveLikeTheFrontEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stands in for java")
	}
	f := newFixture(t, false)
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "petstore.json"), []byte(petstore), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "codegen.jar"), []byte("jar"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "java.sh"), []byte(fakeJava), 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	o, err := New(Options{
		Project:  f.project,
		Writer:   writer.New(f.root),
		Java:     "./java.sh",
		Jar:      "./codegen.jar",
		TempRoot: f.tempRoot,
	})
	require.NoError(t, err)

	report := o.Run(context.Background(), session(entry("petstore", "./petstore.json", catalog.Front, catalog.Back)))
	r := report.Results[0]
	for _, u := range r.Units {
		require.NoError(t, u.Err, string(u.Flavor))
	}
	assert.True(t, r.FrontGenerated)
	assert.True(t, r.BackGenerated)
	assert.FileExists(t, filepath.Join(f.root, "src", "main", "java", "com", "acme", "shop", "client", "petstore", "petstoreClient.java"))
	assertEmptyDir(t, f.tempRoot)
}
