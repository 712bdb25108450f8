package blueprint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a render failure.
type ErrorKind string

const (
	UnboundPlaceholder ErrorKind = "UnboundPlaceholder"
	FragmentCycle      ErrorKind = "FragmentCycle"
	UnknownBlueprint   ErrorKind = "UnknownBlueprint"
	// InvalidBinding reports a bound value whose shape the declared kind cannot render,
	// such as an object bound to a scalar marker.
	InvalidBinding ErrorKind = "InvalidBinding"
)

var (
	ErrUnboundPlaceholder = errors.New("unbound placeholder")
	ErrFragmentCycle      = errors.New("fragment cycle")
	ErrUnknownBlueprint   = errors.New("unknown blueprint")
	ErrInvalidBinding     = errors.New("invalid binding")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case UnboundPlaceholder:
		return ErrUnboundPlaceholder
	case FragmentCycle:
		return ErrFragmentCycle
	case UnknownBlueprint:
		return ErrUnknownBlueprint
	case InvalidBinding:
		return ErrInvalidBinding
	}
	return nil
}

// ErrorRecord describes one failure found while rendering a blueprint instance.
type ErrorRecord struct {
	Placeholder string    `json:"placeholder,omitempty"`
	Blueprint   string    `json:"blueprint"`
	Kind        ErrorKind `json:"kind"`
	Detail      string    `json:"detail,omitempty"`
}

func (e ErrorRecord) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": blueprint ")
	b.WriteString(fmt.Sprintf("%q", e.Blueprint))
	if e.Placeholder != "" {
		b.WriteString(fmt.Sprintf(" placeholder %q", e.Placeholder))
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// Is lets errors.Is match a record against the sentinel of its kind.
func (e ErrorRecord) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Errors is the ordered error set returned by a render.
type Errors []ErrorRecord

// Err folds the set into a single error, or nil when empty.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Has reports whether any record is of kind k.
func (es Errors) Has(k ErrorKind) bool {
	for _, e := range es {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// UnknownBlueprintError is returned by Catalog.Get for ids that were never loaded.
type UnknownBlueprintError struct {
	ID string
}

func (e *UnknownBlueprintError) Error() string {
	return fmt.Sprintf("unknown blueprint %q", e.ID)
}

func (e *UnknownBlueprintError) Is(target error) bool { return target == ErrUnknownBlueprint }

// SyntaxError reports a blueprint body that cannot be scanned into a contract.
type SyntaxError struct {
	Blueprint string
	Offset    int
	Message   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("blueprint %q: %s at offset %d", e.Blueprint, e.Message, e.Offset)
}
