package openapi

import "fmt"

// RequestDefinitions returns the schemas used as JSON request bodies, in path and verb
// order, each followed by the schemas it references transitively.
func (d *Document) RequestDefinitions() []string { return append([]string(nil), d.requests...) }

// ResponseDefinitions is RequestDefinitions for JSON responses of any status code.
func (d *Document) ResponseDefinitions() []string { return append([]string(nil), d.responses...) }

func (d *Document) discover() error {
	reqSeen := make(map[string]struct{})
	respSeen := make(map[string]struct{})
	for _, op := range d.Operations {
		if op.RequestRef != "" {
			if err := d.collect(op.RequestRef, reqSeen, &d.requests); err != nil {
				return fmt.Errorf("%s %s request: %w", op.Method, op.Path, err)
			}
		}
		for _, r := range op.ResponseRefs {
			if err := d.collect(r.Schema, respSeen, &d.responses); err != nil {
				return fmt.Errorf("%s %s response %s: %w", op.Method, op.Path, r.Code, err)
			}
		}
	}
	return nil
}

// collect appends name and then, depth first, every schema its properties reference
// through "$ref" or array "items.$ref".
func (d *Document) collect(name string, seen map[string]struct{}, out *[]string) error {
	if _, ok := seen[name]; ok {
		return nil
	}
	s, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownSchema, name)
	}
	seen[name] = struct{}{}
	*out = append(*out, name)
	for _, p := range s.Properties {
		ref := p.Schema.Ref
		if p.Schema.Type == "array" && p.Schema.Items != nil {
			ref = p.Schema.Items.Ref
		}
		if ref == "" {
			continue
		}
		if err := d.collect(RefName(ref), seen, out); err != nil {
			return fmt.Errorf("%s.%s: %w", name, p.Name, err)
		}
	}
	return nil
}
