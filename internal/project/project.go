// Package project reads the host application's generator settings from
// .yo-rc.json and derives where generated clients are placed.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// ConfigFile is the host generator's configuration file.
const ConfigFile = ".yo-rc.json"

// hostNamespace is the .yo-rc.json section written by the host generator.
const hostNamespace = "generator-jhipster"

// ErrNotProject is returned when dir has no host generator configuration.
var ErrNotProject = errors.New("not a JHipster project")

// Context is the read-only view of the host project.
type Context struct {
	Root            string `json:"-"`
	PackageName     string `json:"packageName"`
	PackageFolder   string `json:"packageFolder"`
	BaseName        string `json:"baseName"`
	ApplicationType string `json:"applicationType"`
	BuildTool       string `json:"buildTool"`
	JHipsterVersion string `json:"jhipsterVersion"`

	// Legacy is set for host generators older than 3.0.0, or with no version.
	Legacy bool `json:"-"`
}

// Load reads <dir>/.yo-rc.json.
func Load(dir string) (*Context, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not found", ErrNotProject, path)
		}
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	raw, ok := doc[hostNamespace]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %q section", ErrNotProject, path, hostNamespace)
	}
	ctx := &Context{}
	if err := json.Unmarshal(raw, ctx); err != nil {
		return nil, fmt.Errorf("parse %s section %q: %w", path, hostNamespace, err)
	}
	ctx.Root = root
	if ctx.PackageFolder == "" && ctx.PackageName != "" {
		ctx.PackageFolder = strings.ReplaceAll(ctx.PackageName, ".", "/")
	}
	ctx.Legacy = IsLegacy(ctx.JHipsterVersion)
	return ctx, nil
}

// IsLegacy reports whether version predates 3.0.0. A missing version counts
// as legacy; a version that is not semver does not.
func IsLegacy(version string) bool {
	version = strings.TrimSpace(version)
	if version == "" {
		return true
	}
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, "v3.0.0") < 0
}

// WebappDir is the absolute web application source directory.
func (c *Context) WebappDir() string {
	return filepath.Join(c.Root, "src", "main", "webapp")
}

// JavaDir is the Java source directory of the base package, relative to Root.
func (c *Context) JavaDir() string {
	return filepath.Join("src", "main", "java", filepath.FromSlash(c.PackageFolder))
}

// ScriptPath is where a front-end client module lives, relative to WebappDir.
// Legacy hosts keep scripts under scripts/, newer ones under app/.
func (c *Context) ScriptPath(file string) string {
	dir := "app"
	if c.Legacy {
		dir = "scripts"
	}
	return filepath.Join(dir, "components", "api-clients", file)
}
