// Package resolver turns the caller's chosen action into the working set of
// descriptors for one generation session.
package resolver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/swagger-cli/internal/catalog"
)

// Action selects where the working set comes from.
type Action string

const (
	ActionNew    Action = "new"
	ActionAll    Action = "all"
	ActionSelect Action = "select"
)

// ParseAction accepts new, all and select; the empty string stays unset.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case "", ActionNew, ActionAll, ActionSelect:
		return a, nil
	default:
		return "", &ValidationError{Field: "action", Value: s, Message: "must be one of new, all, select"}
	}
}

// ErrValidation matches every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports malformed input detected before any generation.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// ValidateName checks a client name: non-empty, letters, digits and '_' only.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return &ValidationError{Field: "name", Value: name, Message: "your API client name cannot contain special characters or a blank space"}
	}
	if name == "" {
		return &ValidationError{Field: "name", Message: "your API client name cannot be empty"}
	}
	return nil
}

// Valid reports whether name passes ValidateName.
func Valid(name string) bool { return ValidateName(name) == nil }

// Request carries the caller's answers.
type Request struct {
	Action Action

	// new
	Name    string
	Spec    string
	Flavors []catalog.Flavor
	APIName string
	Save    bool

	// select
	Selected []string
}

// Entry is one named descriptor in the working set.
type Entry struct {
	Name       string
	Descriptor catalog.Descriptor
}

// Session is the transient working set of one invocation. It holds copies of
// catalog entries and never mutates the catalog it was resolved from.
type Session struct {
	ID      uuid.UUID
	Action  Action
	Entries []Entry
	Save    bool

	// Rejected lists selected names left out of Entries.
	Rejected []*ValidationError
}

// Resolve builds the session for req. An empty catalog always means "new".
func Resolve(c catalog.Catalog, req Request) (*Session, error) {
	action := req.Action
	if len(c) == 0 {
		action = ActionNew
	}
	s := &Session{ID: uuid.New(), Action: action}

	switch action {
	case ActionNew:
		entry, err := newEntry(req)
		if err != nil {
			return nil, err
		}
		s.Entries = []Entry{entry}
		s.Save = req.Save
	case ActionAll:
		for _, name := range c.Names() {
			s.Entries = append(s.Entries, Entry{Name: name, Descriptor: c[name].Clone()})
		}
	case ActionSelect:
		seen := map[string]bool{}
		for _, name := range req.Selected {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			d, ok := c[name]
			if !ok {
				s.Rejected = append(s.Rejected, &ValidationError{Field: "select", Value: name, Message: "no stored API client with this name"})
				continue
			}
			s.Entries = append(s.Entries, Entry{Name: name, Descriptor: d.Clone()})
		}
	case "":
		return nil, &ValidationError{Field: "action", Message: "required when stored API clients exist (new, all, select)"}
	default:
		return nil, &ValidationError{Field: "action", Value: string(action), Message: "must be one of new, all, select"}
	}
	return s, nil
}

func newEntry(req Request) (Entry, error) {
	if err := ValidateName(req.Name); err != nil {
		return Entry{}, err
	}
	spec := strings.TrimSpace(req.Spec)
	if spec == "" {
		return Entry{}, &ValidationError{Field: "input", Message: "a Swagger/OpenAPI spec URL or path is required"}
	}
	flavors, err := normalizeFlavors(req.Flavors)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Name: req.Name,
		Descriptor: catalog.Descriptor{
			Spec:    spec,
			Flavors: flavors,
			APIName: strings.TrimSpace(req.APIName),
		},
	}, nil
}

func normalizeFlavors(in []catalog.Flavor) ([]catalog.Flavor, error) {
	var out []catalog.Flavor
	seen := map[catalog.Flavor]bool{}
	for _, f := range in {
		if f != catalog.Front && f != catalog.Back {
			return nil, &ValidationError{Field: "types", Value: string(f), Message: "must be front or back"}
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, &ValidationError{Field: "types", Message: "select at least one client type (front, back)"}
	}
	return out, nil
}

// Persist returns c with the session's new descriptor stored under its name,
// replacing any previous entry. It reports false, and returns c untouched,
// when the session did not opt in to saving.
func (s *Session) Persist(c catalog.Catalog) (catalog.Catalog, bool) {
	if !s.Save || s.Action != ActionNew || len(s.Entries) != 1 {
		return c, false
	}
	out := c.Clone()
	e := s.Entries[0]
	out[e.Name] = e.Descriptor.Clone()
	return out, true
}
