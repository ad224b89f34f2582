package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Key is the configuration key the catalog is stored under.
const Key = "apis"

// ErrInvalidCatalog marks a stored catalog that does not match the expected shape.
var ErrInvalidCatalog = errors.New("invalid stored catalog")

// ErrInvalidEntry marks a single stored descriptor that was skipped on load.
var ErrInvalidEntry = errors.New("invalid stored client")

// InvalidEntry is a stored descriptor that failed validation.
type InvalidEntry struct {
	Name string
	Err  error
}

func (e InvalidEntry) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }
func (e InvalidEntry) Unwrap() error { return e.Err }

// Backend is a key-value view of project configuration.
type Backend interface {
	Get(key string) (json.RawMessage, bool, error)
	Set(key string, value json.RawMessage) error
}

// Store loads and saves the Catalog through a Backend. Entries skipped by
// Load are kept as stored and written back by Save unless replaced.
type Store struct {
	backend Backend

	mu      sync.Mutex
	invalid map[string]json.RawMessage
	report  []InvalidEntry
}

// NewStore returns a Store over backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the valid persisted descriptors, or an empty catalog when
// nothing is stored. Descriptors that fail validation are left out and
// reported by Invalid; only a stored value that is not an object fails Load.
func (s *Store) Load() (Catalog, error) {
	raw, ok, err := s.backend.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", Key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalid, s.report = nil, nil
	if !ok || len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return Catalog{}, nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c := Catalog{}
	for name, entry := range entries {
		d, err := decodeEntry(name, entry)
		if err != nil {
			if s.invalid == nil {
				s.invalid = map[string]json.RawMessage{}
			}
			s.invalid[name] = entry
			s.report = append(s.report, InvalidEntry{Name: name, Err: err})
			continue
		}
		c[name] = d
	}
	sort.Slice(s.report, func(i, j int) bool { return s.report[i].Name < s.report[j].Name })
	return c, nil
}

// Invalid lists the descriptors the last Load skipped, sorted by name.
func (s *Store) Invalid() []InvalidEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]InvalidEntry(nil), s.report...)
}

// Save replaces the persisted catalog with c.
func (s *Store) Save(c Catalog) error {
	out := make(map[string]json.RawMessage, len(c))
	s.mu.Lock()
	for name, entry := range s.invalid {
		out[name] = entry
	}
	s.mu.Unlock()
	for name, d := range c {
		entry, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("catalog: encode %s: %w", name, err)
		}
		out[name] = entry
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("catalog: encode: %w", err)
	}
	if err := s.backend.Set(Key, raw); err != nil {
		return fmt.Errorf("catalog: write %q: %w", Key, err)
	}
	return nil
}

func decodeEntry(name string, raw json.RawMessage) (Descriptor, error) {
	if err := validate(name, raw); err != nil {
		return Descriptor{}, err
	}
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return d, nil
}

const schemaURL = "https://swagger-cli.local/schemas/catalog.json"

const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "propertyNames": {"pattern": "^[A-Za-z0-9_]+$"},
  "additionalProperties": {
    "type": "object",
    "required": ["spec", "cliTypes"],
    "properties": {
      "spec": {"type": "string", "minLength": 1},
      "cliTypes": {
        "type": "array",
        "minItems": 1,
        "items": {"enum": ["front", "back"]}
      },
      "apiName": {"type": ["string", "null"]}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, strings.NewReader(catalogSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// validate checks one entry against the catalog schema as a single-key object,
// so the name pattern applies too.
func validate(name string, raw json.RawMessage) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("catalog: compile schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if err := sch.Validate(map[string]any{name: v}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}
