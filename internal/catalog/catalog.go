// Package catalog persists API descriptors across sessions under the "apis"
// key of the project configuration.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Flavor is a generation target.
type Flavor string

const (
	Front Flavor = "front"
	Back  Flavor = "back"
)

// ParseFlavor accepts "front"/"back" and the long forms "front-end"/"back-end".
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front", "front-end", "frontend":
		return Front, nil
	case "back", "back-end", "backend":
		return Back, nil
	default:
		return "", fmt.Errorf("unknown client type %q (allowed: front, back)", s)
	}
}

// Descriptor identifies one API client to generate. The JSON shape matches
// what earlier versions of the tool stored in .yo-rc.json.
type Descriptor struct {
	Spec    string   `json:"spec"`
	Flavors []Flavor `json:"cliTypes"`
	APIName string   `json:"apiName,omitempty"`
}

// Has reports whether d requests flavor f.
func (d Descriptor) Has(f Flavor) bool {
	for _, have := range d.Flavors {
		if have == f {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with d.
func (d Descriptor) Clone() Descriptor {
	d.Flavors = append([]Flavor(nil), d.Flavors...)
	return d
}

// Catalog maps client names to descriptors.
type Catalog map[string]Descriptor

// Names returns the catalog keys in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of c.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for name, d := range c {
		out[name] = d.Clone()
	}
	return out
}

// Label renders a one-line summary: "name (spec - front,back)".
func Label(name string, d Descriptor) string {
	flavors := make([]string, len(d.Flavors))
	for i, f := range d.Flavors {
		flavors[i] = string(f)
	}
	return fmt.Sprintf("%s (%s - %s)", name, d.Spec, strings.Join(flavors, ","))
}
