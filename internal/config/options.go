package config

import "strconv"

// Options is an immutable snapshot of the effective scalar options for one
// node in the report tree: the union of all ancestor scalars with nearer
// ancestors winning. Merging produces a new snapshot, so sibling branches
// never observe each other's overrides.
type Options struct {
	m map[string]string
}

// NewOptions creates an option snapshot from a plain map.
func NewOptions(values map[string]string) Options {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Options{m: m}
}

// Merge returns a new snapshot with the node's own scalars overlaid on top
// of the receiver. The receiver is left untouched.
func (o Options) Merge(node *Node) Options {
	m := make(map[string]string, len(o.m)+4)
	for k, v := range o.m {
		m[k] = v
	}
	node.scalars(func(key, value string) {
		m[key] = value
	})
	return Options{m: m}
}

// With returns a new snapshot with one additional option set.
func (o Options) With(key, value string) Options {
	m := make(map[string]string, len(o.m)+1)
	for k, v := range o.m {
		m[k] = v
	}
	m[key] = value
	return Options{m: m}
}

// Get returns the option value for key, if set.
func (o Options) Get(key string) (string, bool) {
	v, ok := o.m[key]
	return v, ok
}

// String returns the option value for key, or def when unset.
func (o Options) String(key, def string) string {
	if v, ok := o.m[key]; ok {
		return v
	}
	return def
}

// Int64 returns the option parsed as an integer. Unset or unparsable values
// return def.
func (o Options) Int64(key string, def int64) int64 {
	v, ok := o.m[key]
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
