package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultNamespace is the section of .yo-rc.json owned by this tool.
const DefaultNamespace = "generator-jhipster-swagger-cli"

// FileBackend stores keys inside one namespace object of a JSON document such
// as .yo-rc.json. Other namespaces in the document are preserved on write.
type FileBackend struct {
	path      string
	namespace string
	mu        sync.Mutex
}

// NewFileBackend returns a backend over the JSON file at path.
func NewFileBackend(path, namespace string) *FileBackend {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &FileBackend{path: path, namespace: namespace}
}

// Path returns the backing file path.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}
	return doc, nil
}

func (b *FileBackend) section(doc map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	sec := map[string]json.RawMessage{}
	raw, ok := doc[b.namespace]
	if !ok || string(raw) == "null" {
		return sec, nil
	}
	if err := json.Unmarshal(raw, &sec); err != nil {
		return nil, fmt.Errorf("parse %s section %q: %w", b.path, b.namespace, err)
	}
	return sec, nil
}

// Get returns the raw value stored under key.
func (b *FileBackend) Get(key string) (json.RawMessage, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.readDocument()
	if err != nil {
		return nil, false, err
	}
	sec, err := b.section(doc)
	if err != nil {
		return nil, false, err
	}
	v, ok := sec[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the file atomically.
func (b *FileBackend) Set(key string, value json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.readDocument()
	if err != nil {
		return err
	}
	sec, err := b.section(doc)
	if err != nil {
		return err
	}
	sec[key] = value
	rawSec, err := json.Marshal(sec)
	if err != nil {
		return err
	}
	doc[b.namespace] = rawSec
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(b.path, append(out, '\n'))
}

// writeAtomic writes through a temp file in the target directory, fsyncs,
// and renames over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".yo-rc-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("fsync config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
