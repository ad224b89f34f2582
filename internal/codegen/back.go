package codegen

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mark3labs/swagger-cli/internal/naming"
)

// BackRequest holds everything the back-end generator command needs.
type BackRequest struct {
	Java        string // java executable; "java" when empty
	Jar         string // swagger-codegen-cli jar
	TemplateDir string // optional custom templates
	Spec        string // passed through unresolved
	Name        string // client name
	APIName     string // package segment under <PackageName>.client
	PackageName string // host base package
	OutputDir   string
}

// ArtifactID is the camelized client name used for the artifact and class names.
func (r BackRequest) ArtifactID() string { return naming.Camelize(r.Name) }

// ClientPackage is <PackageName>.client.<APIName>.
func (r BackRequest) ClientPackage() string {
	return r.PackageName + ".client." + r.APIName
}

// BackCommand returns the argv of a Spring Cloud Feign client generation.
func BackCommand(r BackRequest) []string {
	java := r.Java
	if java == "" {
		java = "java"
	}
	artifact := r.ArtifactID()
	pkg := r.ClientPackage()
	argv := []string{
		java, "-Dmodels", "-Dapis", "-jar", r.Jar,
		"generate",
		"--lang", "spring",
		"--library", "spring-cloud",
		"--output", r.OutputDir,
	}
	if r.TemplateDir != "" {
		argv = append(argv, "--template-dir", r.TemplateDir)
	}
	return append(argv,
		"--input-spec", r.Spec,
		"--artifact-id", artifact,
		"--api-package", pkg+".api",
		"--model-package", pkg+".model",
		"--additional-properties", fmt.Sprintf("dateLibrary=custom,apiClassname=%s,baseName=%s", artifact, r.APIName),
		"--type-mappings", "DateTime=ZonedDateTime",
		"--import-mappings", "ZonedDateTime=java.time.ZonedDateTime",
		"-DbasePackage="+r.PackageName+".client",
	)
}

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec and returns combined output.
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("codegen: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w%s", argv[0], err, tail(out))
	}
	return out, nil
}

// tail keeps the last lines of command output for error messages.
func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return ": " + strings.Join(lines, " | ")
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, argv []string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, argv []string) ([]byte, error) { return f(ctx, argv) }
