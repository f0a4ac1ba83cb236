package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Node is one section of the hierarchical report configuration: an ordered
// mapping of option name to either a scalar value or a nested section.
// Document order is preserved so that reports generate in the order they
// are configured.
type Node struct {
	entries []entry
}

type entry struct {
	key    string
	scalar string
	child  *Node
}

// UnmarshalYAML decodes a YAML mapping while preserving key order. Scalar
// values keep their literal text form; nested mappings become child nodes.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: report section must be a mapping", value.Line)
	}
	n.entries = n.entries[:0]
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		switch valNode.Kind {
		case yaml.ScalarNode:
			n.entries = append(n.entries, entry{key: keyNode.Value, scalar: valNode.Value})
		case yaml.MappingNode:
			child := &Node{}
			if err := child.UnmarshalYAML(valNode); err != nil {
				return err
			}
			n.entries = append(n.entries, entry{key: keyNode.Value, child: child})
		default:
			return fmt.Errorf("line %d: option %q must be a scalar or a section", valNode.Line, keyNode.Value)
		}
	}
	return nil
}

// Scalar returns the scalar option value for key, if present.
func (n *Node) Scalar(key string) (string, bool) {
	for _, e := range n.entries {
		if e.child == nil && e.key == key {
			return e.scalar, true
		}
	}
	return "", false
}

// HasScalar reports whether key is set as a scalar option on this node.
func (n *Node) HasScalar(key string) bool {
	_, ok := n.Scalar(key)
	return ok
}

// Sections calls fn for each child section in document order.
func (n *Node) Sections(fn func(name string, child *Node)) {
	for _, e := range n.entries {
		if e.child != nil {
			fn(e.key, e.child)
		}
	}
}

// scalars calls fn for each scalar option in document order.
func (n *Node) scalars(fn func(key, value string)) {
	for _, e := range n.entries {
		if e.child == nil {
			fn(e.key, e.scalar)
		}
	}
}

// IsZero reports whether the node has no entries at all.
func (n *Node) IsZero() bool { return len(n.entries) == 0 }
