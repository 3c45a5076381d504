// Package hwdesc holds the board hardware description: a flat list of named
// nodes with string properties. A property value of the form "&label" is a
// reference (phandle) to the node carrying that label.
//
//	nodes:
//	  - name: sound
//	    compatible: zybo-ssm2602-snd
//	    properties:
//	      audio-codec: "&ssm2602"
//	      cpu-dai: "&i2s0"
//	  - name: ssm2602@1a
//	    label: ssm2602
//	    compatible: adi,ssm2602
package hwdesc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed hardware description.
type Document struct {
	Nodes []*Node `yaml:"nodes"`

	byLabel map[string]*Node
}

// Node is one hardware block.
type Node struct {
	Name       string            `yaml:"name"`
	Label      string            `yaml:"label,omitempty"`
	Compatible string            `yaml:"compatible,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`

	doc *Document
}

var (
	ErrEmptyName      = errors.New("hwdesc: node without name")
	ErrDuplicateLabel = errors.New("hwdesc: duplicate label")
)

// Parse decodes and indexes a YAML document.
func Parse(b []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("hwdesc: parse: %w", err)
	}
	d.byLabel = make(map[string]*Node, len(d.Nodes))
	for _, n := range d.Nodes {
		if n == nil || n.Name == "" {
			return nil, ErrEmptyName
		}
		n.doc = &d
		if n.Label == "" {
			continue
		}
		if _, dup := d.byLabel[n.Label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, n.Label)
		}
		d.byLabel[n.Label] = n
	}
	return &d, nil
}

// Load reads and parses a document from disk.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hwdesc: %w", err)
	}
	return Parse(b)
}

// Lookup returns the node with the given name.
func (d *Document) Lookup(name string) (*Node, bool) {
	for _, n := range d.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// FindCompatible returns every node matching a compatible string, in
// document order. One physical device instance per node.
func (d *Document) FindCompatible(compatible string) []*Node {
	var out []*Node
	for _, n := range d.Nodes {
		if n.Compatible == compatible {
			out = append(out, n)
		}
	}
	return out
}

// Prop returns a raw property value.
func (n *Node) Prop(key string) (string, bool) {
	v, ok := n.Properties[key]
	return v, ok
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}

// Resolver turns a reference property of a node into the node it points at.
// It reports false for absent or malformed entries.
type Resolver interface {
	ResolveReference(n *Node, key string) (*Node, bool)
}

// Phandles is the default Resolver: "&label" values looked up in the node's
// own document.
type Phandles struct{}

func (Phandles) ResolveReference(n *Node, key string) (*Node, bool) {
	if n == nil || n.doc == nil {
		return nil, false
	}
	v, ok := n.Prop(key)
	if !ok {
		return nil, false
	}
	label, ok := strings.CutPrefix(strings.TrimSpace(v), "&")
	if !ok || label == "" {
		return nil, false
	}
	target, ok := n.doc.byLabel[label]
	return target, ok
}
