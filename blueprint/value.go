package blueprint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind is the shape of a context value.
type ValueKind int

const (
	StringValue ValueKind = iota
	ListValue
	FragmentsValue
	ObjectValue
)

func (k ValueKind) String() string {
	switch k {
	case StringValue:
		return "string"
	case ListValue:
		return "list"
	case FragmentsValue:
		return "fragments"
	case ObjectValue:
		return "object"
	}
	return "unknown"
}

// Value is a context binding: a string, an ordered list of strings, an ordered list of
// fragment references, or a nested context addressed through dotted names.
type Value struct {
	kind  ValueKind
	str   string
	list  []string
	frags []FragmentRef
	obj   Context
}

// FragmentRef pairs a child blueprint id with the context it is rendered against.
type FragmentRef struct {
	Blueprint string
	Context   Context
}

// Context maps placeholder names to values for one render.
type Context map[string]Value

func String(s string) Value { return Value{kind: StringValue, str: s} }

func List(items ...string) Value {
	return Value{kind: ListValue, list: append([]string(nil), items...)}
}

func Fragments(refs ...FragmentRef) Value {
	return Value{kind: FragmentsValue, frags: append([]FragmentRef(nil), refs...)}
}

// Object copies ctx, so later changes to the caller's map do not reach the value.
func Object(ctx Context) Value { return Value{kind: ObjectValue, obj: copyContext(ctx)} }

// Fragment is shorthand for a single FragmentRef.
func Fragment(id string, ctx Context) FragmentRef {
	return FragmentRef{Blueprint: id, Context: ctx}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Str() string { return v.str }

func (v Value) Items() []string { return append([]string(nil), v.list...) }

func (v Value) Refs() []FragmentRef { return append([]FragmentRef(nil), v.frags...) }

// Fields returns a shallow copy of an Object's fields.
func (v Value) Fields() Context { return copyContext(v.obj) }

func copyContext(c Context) Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Lookup resolves a dotted path against the context.
func (c Context) Lookup(path string) (Value, bool) {
	segs := strings.Split(path, ".")
	v, ok := c[segs[0]]
	if !ok {
		return Value{}, false
	}
	return descend(v, segs[1:])
}

func descend(v Value, segs []string) (Value, bool) {
	for _, s := range segs {
		if v.kind != ObjectValue {
			return Value{}, false
		}
		next, ok := v.obj[s]
		if !ok {
			return Value{}, false
		}
		v = next
	}
	return v, true
}

// FromMap converts decoded document data (YAML, JSON, TOML) into a Context.
//
// Strings, numbers and booleans become String values, sequences of scalars become List,
// nested maps become Object. A map carrying a "blueprint" key inside a sequence becomes
// a fragment reference whose remaining keys (or its "context" map) form the child
// context, so a sequence of such maps becomes Fragments.
func FromMap(m map[string]any) (Context, error) {
	ctx := make(Context, len(m))
	for k, raw := range m {
		v, err := fromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		ctx[k] = v
	}
	return ctx, nil
}

func fromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case nil:
		return String(""), nil
	case bool:
		return String(strconv.FormatBool(t)), nil
	case int:
		return String(strconv.Itoa(t)), nil
	case int64:
		return String(strconv.FormatInt(t, 10)), nil
	case uint64:
		return String(strconv.FormatUint(t, 10)), nil
	case float64:
		return String(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case []string:
		return List(t...), nil
	case []FragmentRef:
		return Fragments(t...), nil
	case map[string]any:
		child, err := FromMap(t)
		if err != nil {
			return Value{}, err
		}
		return Object(child), nil
	case map[any]any:
		conv := make(map[string]any, len(t))
		for k, v := range t {
			conv[fmt.Sprint(k)] = v
		}
		return fromAny(conv)
	case []any:
		return fromSlice(t)
	case []map[string]any:
		items := make([]any, len(t))
		for i, m := range t {
			items[i] = m
		}
		return fromSlice(items)
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}

func fromSlice(items []any) (Value, error) {
	if len(items) == 0 {
		return List(), nil
	}
	if _, isMap := items[0].(map[string]any); isMap {
		refs := make([]FragmentRef, 0, len(items))
		for i, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				return Value{}, fmt.Errorf("item %d: mixed fragment and scalar items", i)
			}
			ref, err := refFromMap(m)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			refs = append(refs, ref)
		}
		return Fragments(refs...), nil
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		v, err := fromAny(it)
		if err != nil {
			return Value{}, fmt.Errorf("item %d: %w", i, err)
		}
		if v.kind != StringValue {
			return Value{}, fmt.Errorf("item %d: expected scalar, got %s", i, v.kind)
		}
		out = append(out, v.str)
	}
	return List(out...), nil
}

func refFromMap(m map[string]any) (FragmentRef, error) {
	id, ok := m["blueprint"].(string)
	if !ok || id == "" {
		return FragmentRef{}, fmt.Errorf("fragment item needs a \"blueprint\" string")
	}
	child, nested := m["context"].(map[string]any)
	if !nested {
		child = make(map[string]any, len(m))
		for k, v := range m {
			if k != "blueprint" {
				child[k] = v
			}
		}
	}
	ctx, err := FromMap(child)
	if err != nil {
		return FragmentRef{}, err
	}
	return FragmentRef{Blueprint: id, Context: ctx}, nil
}

// Keys returns the context's names in ascending order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scope is one frame of the lookup chain. Child frames shadow their parents.
type scope struct {
	vars   Context
	item   *string
	parent *scope
}

func newScope(vars Context) *scope { return &scope{vars: vars} }

func (s *scope) child(vars Context) *scope { return &scope{vars: vars, parent: s} }

func (s *scope) withItem(item string) *scope {
	return &scope{vars: Context{"item": String(item)}, item: &item, parent: s}
}

func (s *scope) lookup(path string) (Value, bool) {
	if path == "." {
		for f := s; f != nil; f = f.parent {
			if f.item != nil {
				return String(*f.item), true
			}
		}
		return Value{}, false
	}
	head, rest, _ := strings.Cut(path, ".")
	for f := s; f != nil; f = f.parent {
		v, ok := f.vars[head]
		if !ok {
			continue
		}
		if rest == "" {
			return v, true
		}
		return descend(v, strings.Split(rest, "."))
	}
	return Value{}, false
}
