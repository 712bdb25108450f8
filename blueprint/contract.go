package blueprint

import (
	"fmt"
	"strings"
)

// Kind is the declared rendering mode of a placeholder.
type Kind int

const (
	KindScalar Kind = iota
	KindRaw
	KindList
	KindFragment
)

// DefaultSeparator joins list items and fragment segments unless a contract says otherwise.
const DefaultSeparator = "\n"

var kindNames = map[Kind]string{
	KindScalar:   "scalar",
	KindRaw:      "raw",
	KindList:     "list",
	KindFragment: "fragment",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names produced by Kind.String, case-insensitively.
// "raw-block" and "fragment-ref" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return KindScalar, nil
	case "raw", "raw-block":
		return KindRaw, nil
	case "list":
		return KindList, nil
	case "fragment", "fragment-ref":
		return KindFragment, nil
	}
	return 0, fmt.Errorf("unknown placeholder kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Placeholder is one entry of a blueprint's contract.
type Placeholder struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Required  bool   `json:"required"`
	Separator string `json:"separator"`
	// Prefix is written before a non-empty list or fragment expansion only.
	Prefix string `json:"prefix,omitempty"`
	Sort   bool   `json:"sort,omitempty"`
	// Item names the blueprint each list item is rendered through.
	Item string `json:"item,omitempty"`

	declared bool
}

// PlaceholderSpec is a declared override for a discovered placeholder. Zero fields keep
// what the marker syntax implies.
type PlaceholderSpec struct {
	Kind      string
	Required  *bool
	Separator *string
	Prefix    string
	Sort      bool
	Item      string
}

func (s PlaceholderSpec) apply(ph *Placeholder) error {
	if s.Kind != "" {
		k, err := ParseKind(s.Kind)
		if err != nil {
			return err
		}
		ph.Kind = k
		ph.declared = true
	}
	if s.Item != "" {
		ph.Item = s.Item
		if s.Kind == "" {
			ph.Kind = KindList
			ph.declared = true
		}
	}
	if s.Required != nil {
		ph.Required = *s.Required
	}
	if s.Separator != nil {
		ph.Separator = *s.Separator
	}
	if s.Prefix != "" {
		ph.Prefix = s.Prefix
	}
	if s.Sort {
		ph.Sort = true
	}
	return nil
}
