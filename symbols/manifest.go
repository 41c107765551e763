package symbols

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/jni-bridge/descriptor"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/foreign"
)

// CallableKind selects the host lookup used for a callable.
type CallableKind string

const (
	KindMethod      CallableKind = "method"
	KindStatic      CallableKind = "static"
	KindConstructor CallableKind = "constructor"
)

// ConstructorName is the member name of every constructor.
const ConstructorName = "<init>"

// ClassDecl declares one class slot.
type ClassDecl struct {
	// Slot names the entry, e.g. "Object".
	Slot string `yaml:"slot"`
	// Name is the qualified class name, dotted or slashed.
	Name string `yaml:"name"`
}

// CallableDecl declares one method or constructor slot.
type CallableDecl struct {
	Slot      string       `yaml:"slot"`
	Class     string       `yaml:"class"`
	Kind      CallableKind `yaml:"kind,omitempty"`
	Name      string       `yaml:"name,omitempty"`
	Signature string       `yaml:"signature"`
}

// Manifest is the fixed list of symbols a cache resolves on every attach.
type Manifest struct {
	Classes   []ClassDecl    `yaml:"classes"`
	Callables []CallableDecl `yaml:"callables"`
}

// Len returns the total number of slots.
func (m *Manifest) Len() int {
	return len(m.Classes) + len(m.Callables)
}

// ParseManifest decodes a YAML manifest and validates it.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.ParseFailed(errors.PhaseManifest, "manifest", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindNotFound, err, "read "+path)
	}
	return ParseManifest(data)
}

// Validate checks slot names, owners and descriptors.
func (m *Manifest) Validate() error {
	_, err := compile(m)
	return err
}

// plan is a validated manifest with everything Initialize needs precomputed.
type plan struct {
	classes       []classPlan
	callables     []callablePlan
	classSlots    map[string]int
	callableSlots map[string]int
}

type classPlan struct {
	slot     string
	internal string
}

type callablePlan struct {
	slot  string
	owner int
	kind  foreign.Kind
	name  string
	sig   string
}

func compile(m *Manifest) (*plan, error) {
	if m == nil || m.Len() == 0 {
		return nil, errors.InvalidManifest(nil, "manifest declares no symbols")
	}

	p := &plan{
		classes:       make([]classPlan, 0, len(m.Classes)),
		callables:     make([]callablePlan, 0, len(m.Callables)),
		classSlots:    make(map[string]int, len(m.Classes)),
		callableSlots: make(map[string]int, len(m.Callables)),
	}

	for i, c := range m.Classes {
		path := []string{"classes", fmt.Sprint(i)}
		if c.Slot == "" {
			return nil, errors.InvalidManifest(path, "missing slot name")
		}
		if _, dup := p.classSlots[c.Slot]; dup {
			return nil, errors.Duplicate(errors.PhaseManifest, "class slot", c.Slot)
		}
		if err := descriptor.ValidateClassName(c.Name); err != nil {
			return nil, errors.New(errors.PhaseManifest, errors.KindInvalidManifest).
				Path(append(path, c.Slot)...).
				Class(c.Name).
				Cause(err).
				Build()
		}
		p.classSlots[c.Slot] = i
		p.classes = append(p.classes, classPlan{slot: c.Slot, internal: descriptor.InternalName(c.Name)})
	}

	for i, c := range m.Callables {
		path := []string{"callables", fmt.Sprint(i)}
		if c.Slot == "" {
			return nil, errors.InvalidManifest(path, "missing slot name")
		}
		path = append(path, c.Slot)
		if _, dup := p.callableSlots[c.Slot]; dup {
			return nil, errors.Duplicate(errors.PhaseManifest, "callable slot", c.Slot)
		}
		owner, ok := p.classSlots[c.Class]
		if !ok {
			return nil, errors.InvalidManifest(path, fmt.Sprintf("unknown owner class slot %q", c.Class))
		}

		kind, name, err := callableKind(c)
		if err != nil {
			return nil, errors.InvalidManifest(path, err.Error())
		}
		md, err := descriptor.Parse(c.Signature)
		if err != nil {
			return nil, errors.New(errors.PhaseManifest, errors.KindInvalidManifest).
				Path(path...).
				Member(name, c.Signature).
				Cause(err).
				Build()
		}
		if kind == foreign.KindConstructor && !md.ReturnsVoid() {
			return nil, errors.InvalidManifest(path, "constructor descriptor must return V")
		}

		p.callableSlots[c.Slot] = i
		p.callables = append(p.callables, callablePlan{
			slot:  c.Slot,
			owner: owner,
			kind:  kind,
			name:  name,
			sig:   c.Signature,
		})
	}

	return p, nil
}

func callableKind(c CallableDecl) (foreign.Kind, string, error) {
	switch c.Kind {
	case "", KindMethod:
		if c.Name == "" || c.Name == ConstructorName {
			return 0, "", fmt.Errorf("method needs a name other than %s", ConstructorName)
		}
		return foreign.KindMethod, c.Name, nil
	case KindStatic:
		if c.Name == "" || c.Name == ConstructorName {
			return 0, "", fmt.Errorf("static method needs a name other than %s", ConstructorName)
		}
		return foreign.KindStaticMethod, c.Name, nil
	case KindConstructor:
		if c.Name != "" && c.Name != ConstructorName {
			return 0, "", fmt.Errorf("constructor must be named %s, got %q", ConstructorName, c.Name)
		}
		return foreign.KindConstructor, ConstructorName, nil
	default:
		return 0, "", fmt.Errorf("unknown callable kind %q", c.Kind)
	}
}
