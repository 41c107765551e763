package hostsim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/jni-bridge/descriptor"
	"github.com/wippyai/jni-bridge/errors"
)

// MemberKind distinguishes the three ways a member is looked up.
type MemberKind uint8

const (
	Method MemberKind = iota
	Static
	Constructor
)

// ClassDef is one loadable class.
type ClassDef struct {
	members map[string]MemberKind
	Name    string
	Super   string
}

func memberKey(name, sig string) string {
	return name + sig
}

// Method declares an instance method.
func (c *ClassDef) Method(name, sig string) *ClassDef {
	c.members[memberKey(name, sig)] = Method
	return c
}

// StaticMethod declares a static method.
func (c *ClassDef) StaticMethod(name, sig string) *ClassDef {
	c.members[memberKey(name, sig)] = Static
	return c
}

// Constructor declares a constructor.
func (c *ClassDef) Constructor(sig string) *ClassDef {
	c.members[memberKey("<init>", sig)] = Constructor
	return c
}

// Universe is the set of classes a VM can find.
type Universe struct {
	classes map[string]*ClassDef
	mu      sync.RWMutex
}

// NewUniverse returns an empty universe.
func NewUniverse() *Universe {
	return &Universe{classes: make(map[string]*ClassDef)}
}

// Define adds or returns the class named name. Names may be dotted.
// Classes other than java/lang/Object extend Object unless Extends says otherwise.
func (u *Universe) Define(name string) *ClassDef {
	name = descriptor.InternalName(name)
	u.mu.Lock()
	defer u.mu.Unlock()
	if c, ok := u.classes[name]; ok {
		return c
	}
	c := &ClassDef{Name: name, members: make(map[string]MemberKind)}
	if name != objectClass {
		c.Super = objectClass
	}
	u.classes[name] = c
	return c
}

// Extends sets the superclass of c.
func (c *ClassDef) Extends(super string) *ClassDef {
	c.Super = descriptor.InternalName(super)
	return c
}

// Remove drops a class, as if it were missing from the class path.
func (u *Universe) Remove(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.classes, descriptor.InternalName(name))
}

// Lookup returns the class named name.
func (u *Universe) Lookup(name string) (*ClassDef, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	c, ok := u.classes[name]
	return c, ok
}

// Names returns every class name in sorted order.
func (u *Universe) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	names := make([]string, 0, len(u.classes))
	for n := range u.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// findMember walks the superclass chain. Constructors are not inherited.
func (u *Universe) findMember(class, name, sig string, kind MemberKind) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	key := memberKey(name, sig)
	for depth := 0; class != "" && depth < 64; depth++ {
		c, ok := u.classes[class]
		if !ok {
			return false
		}
		if k, ok := c.members[key]; ok && k == kind {
			return true
		}
		if kind == Constructor {
			return false
		}
		class = c.Super
	}
	return false
}

const objectClass = "java/lang/Object"

// AndroidUniverse returns the core language classes and the UI classes used
// to query display metrics.
func AndroidUniverse() *Universe {
	u := NewUniverse()
	u.Define(objectClass).
		Constructor("()V").
		Method("hashCode", "()I").
		Method("toString", "()Ljava/lang/String;").
		Method("equals", "(Ljava/lang/Object;)Z").
		Method("getClass", "()Ljava/lang/Class;").
		Method("notify", "()V").
		Method("notifyAll", "()V").
		Method("wait", "()V").
		Method("wait", "(J)V").
		Method("wait", "(JI)V")
	u.Define("java/lang/Class").
		Method("getName", "()Ljava/lang/String;").
		StaticMethod("forName", "(Ljava/lang/String;)Ljava/lang/Class;")
	u.Define("java/lang/String").
		Constructor("()V").
		Constructor("([B)V").
		Constructor("([BLjava/lang/String;)V").
		Method("length", "()I").
		Method("getBytes", "()[B").
		StaticMethod("valueOf", "(I)Ljava/lang/String;")
	u.Define("android/content/Context")
	u.Define("android/app/Activity").
		Extends("android/content/Context").
		Method("getWindowManager", "()Landroid/view/WindowManager;")
	u.Define("android/view/WindowManager").
		Method("getDefaultDisplay", "()Landroid/view/Display;")
	u.Define("android/view/Display").
		Method("getHeight", "()I").
		Method("getWidth", "()I").
		Method("getSize", "(Landroid/graphics/Point;)V")
	u.Define("android/graphics/Point").
		Constructor("()V").
		Constructor("(II)V")
	return u
}

// universeFile is the YAML form of a universe:
//
//	classes:
//	  - name: android.graphics.Point
//	    constructors: ["(II)V"]
//	    methods: ["equals(II)Z"]
type universeFile struct {
	Classes []struct {
		Name         string   `yaml:"name"`
		Super        string   `yaml:"super"`
		Methods      []string `yaml:"methods"`
		Static       []string `yaml:"static"`
		Constructors []string `yaml:"constructors"`
	} `yaml:"classes"`
}

// ParseUniverse decodes a YAML universe.
func ParseUniverse(data []byte) (*Universe, error) {
	var f universeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.ParseFailed(errors.PhaseHost, "universe", err)
	}
	u := NewUniverse()
	for _, c := range f.Classes {
		if err := descriptor.ValidateClassName(c.Name); err != nil {
			return nil, err
		}
		def := u.Define(c.Name)
		if c.Super != "" {
			def.Extends(c.Super)
		}
		for _, m := range c.Methods {
			name, sig, err := splitMember(m)
			if err != nil {
				return nil, err
			}
			def.Method(name, sig)
		}
		for _, m := range c.Static {
			name, sig, err := splitMember(m)
			if err != nil {
				return nil, err
			}
			def.StaticMethod(name, sig)
		}
		for _, sig := range c.Constructors {
			if _, err := descriptor.Parse(sig); err != nil {
				return nil, err
			}
			def.Constructor(sig)
		}
	}
	return u, nil
}

// LoadUniverse reads a YAML universe file.
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindNotFound, err, "read "+path)
	}
	return ParseUniverse(data)
}

// splitMember splits "wait(JI)V" into "wait" and "(JI)V".
func splitMember(s string) (string, string, error) {
	i := strings.IndexByte(s, '(')
	if i <= 0 {
		return "", "", errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("member %q has no name or descriptor", s))
	}
	if _, err := descriptor.Parse(s[i:]); err != nil {
		return "", "", err
	}
	return s[:i], s[i:], nil
}
