package generate

import (
	"errors"
	"fmt"

	"github.com/mark3labs/swagger-cli/internal/catalog"
)

// Kind classifies a failed unit.
type Kind string

const (
	// RetrievalFailure: the spec could not be read or parsed.
	RetrievalFailure Kind = "RetrievalFailure"
	// GenerationFailure: the engine failed or produced unusable output.
	GenerationFailure Kind = "GenerationFailure"
)

var (
	ErrRetrieval  = errors.New("spec retrieval failed")
	ErrGeneration = errors.New("client generation failed")
)

// Failure is the error recorded for one descriptor and flavor.
type Failure struct {
	Kind   Kind
	Name   string
	Flavor catalog.Flavor
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s client %q: %v", f.Kind, f.Flavor, f.Name, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches ErrRetrieval and ErrGeneration by kind.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrRetrieval:
		return f.Kind == RetrievalFailure
	case ErrGeneration:
		return f.Kind == GenerationFailure
	}
	return false
}
