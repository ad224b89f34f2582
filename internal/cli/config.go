package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mark3labs/swagger-cli/internal/catalog"
	"github.com/mark3labs/swagger-cli/internal/resolver"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces environment overrides, e.g. SWAGGER_CLI_INPUT.
const envPrefix = "SWAGGER_CLI_"

// GenerateConfig captures all inputs that influence generation and discovery
// after merging defaults, the config file, environment variables, and flags.
type GenerateConfig struct {
	Input   string   `env:"INPUT"`
	Name    string   `env:"NAME"`
	Types   []string `env:"TYPES"`
	Action  string   `env:"ACTION"`
	Select  []string `env:"SELECT"`
	Save    bool     `env:"SAVE"`
	APIName string   `env:"API_NAME"`

	RegistryURL string `env:"REGISTRY_URL"`
	GatewayName string `env:"GATEWAY_NAME"`
	GatewayURL  string `env:"GATEWAY_URL"`
	Doc         string `env:"DOC"`

	Project     string        `env:"PROJECT"`
	CodegenJar  string        `env:"CODEGEN_JAR"`
	Java        string        `env:"JAVA"`
	TemplateDir string        `env:"TEMPLATE_DIR"`
	Concurrency int           `env:"CONCURRENCY"`
	Timeout     time.Duration `env:"TIMEOUT"`

	DryRun  bool   `env:"DRY_RUN"`
	Verbose bool   `env:"VERBOSE"`
	LogFile string `env:"LOG_FILE"`

	ConfigPath string

	flavors   []catalog.Flavor
	action    resolver.Action
	selectSet bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		GatewayName: "gateway",
		Project:     ".",
		Java:        "java",
		Concurrency: 1,
		Timeout:     time.Minute,
	}
}

func defaultEnvironment() map[string]string { return env.ToMap(os.Environ()) }

// environment returns the variables env overrides are read from.
var environment = defaultEnvironment

func resolveGenerateConfig(flags *pflag.FlagSet) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateEnv(&cfg); err != nil {
		return nil, err
	}

	if err := applyGenerateFlagOverrides(flags, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateEnv(cfg *GenerateConfig) error {
	vars := environment()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix, Environment: vars}); err != nil {
		return newUsageError(fmt.Sprintf("environment: %v", err))
	}
	if _, ok := vars[envPrefix+"SELECT"]; ok {
		cfg.selectSet = true
	}
	return nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := map[string]*string{
		"input":        &cfg.Input,
		"name":         &cfg.Name,
		"action":       &cfg.Action,
		"api-name":     &cfg.APIName,
		"registry-url": &cfg.RegistryURL,
		"gateway-name": &cfg.GatewayName,
		"gateway-url":  &cfg.GatewayURL,
		"doc":          &cfg.Doc,
		"project":      &cfg.Project,
		"codegen-jar":  &cfg.CodegenJar,
		"java":         &cfg.Java,
		"template-dir": &cfg.TemplateDir,
		"log-file":     &cfg.LogFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	boolFlags := map[string]*bool{
		"save":    &cfg.Save,
		"dry-run": &cfg.DryRun,
		"verbose": &cfg.Verbose,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("types") {
		value, err := flags.GetStringSlice("types")
		if err != nil {
			return err
		}
		cfg.Types = sanitizeList(value)
	}
	if flags.Changed("select") {
		value, err := flags.GetStringSlice("select")
		if err != nil {
			return err
		}
		cfg.Select = sanitizeList(value)
		cfg.selectSet = true
	}
	if flags.Changed("concurrency") {
		value, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = value
	}
	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Name = strings.TrimSpace(c.Name)
	c.Action = strings.ToLower(strings.TrimSpace(c.Action))
	c.APIName = strings.TrimSpace(c.APIName)
	c.RegistryURL = strings.TrimSpace(c.RegistryURL)
	c.GatewayName = strings.TrimSpace(c.GatewayName)
	c.GatewayURL = strings.TrimSpace(c.GatewayURL)
	c.Doc = strings.TrimSpace(c.Doc)
	c.Project = strings.TrimSpace(c.Project)
	if c.Project == "" {
		c.Project = "."
	}
	c.Types = sanitizeList(c.Types)
	c.Select = sanitizeList(c.Select)
}

func (c *GenerateConfig) validate() error {
	action, err := resolver.ParseAction(c.Action)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	c.action = action

	c.flavors = nil
	for _, t := range c.Types {
		f, err := catalog.ParseFlavor(t)
		if err != nil {
			return newUsageError(fmt.Sprintf("generate: --types: %v", err))
		}
		c.flavors = append(c.flavors, f)
	}

	if c.Name != "" {
		if err := resolver.ValidateName(c.Name); err != nil {
			return newUsageError(fmt.Sprintf("generate: %v", err))
		}
	}
	if c.Concurrency < 0 {
		return newUsageError(fmt.Sprintf("generate: --concurrency must not be negative (got %d)", c.Concurrency))
	}
	if c.Timeout < 0 {
		return newUsageError(fmt.Sprintf("generate: --timeout must not be negative (got %s)", c.Timeout))
	}
	return nil
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	stringFields := map[string]*string{
		"input":       &cfg.Input,
		"name":        &cfg.Name,
		"action":      &cfg.Action,
		"apiname":     &cfg.APIName,
		"registryurl": &cfg.RegistryURL,
		"gatewayname": &cfg.GatewayName,
		"gatewayurl":  &cfg.GatewayURL,
		"doc":         &cfg.Doc,
		"project":     &cfg.Project,
		"codegenjar":  &cfg.CodegenJar,
		"java":        &cfg.Java,
		"templatedir": &cfg.TemplateDir,
		"logfile":     &cfg.LogFile,
	}
	boolFields := map[string]*bool{
		"save":    &cfg.Save,
		"dryrun":  &cfg.DryRun,
		"verbose": &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := stringFields[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := boolFields[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		switch normalized {
		case "types":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Types = list
		case "select":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Select = list
			cfg.selectSet = true
		case "concurrency":
			n, ok := value.(int)
			if !ok {
				return newUsageError(fmt.Sprintf("config field %q: expected integer, got %T", key, value))
			}
			cfg.Concurrency = n
		case "timeout":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			d, err := time.ParseDuration(str)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Timeout = d
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
