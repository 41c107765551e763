// Package descriptor parses the type descriptors used to name host methods.
//
// A method descriptor lists parameter types in parentheses followed by the
// return type:
//
//	()V                       void f()
//	(II)V                     void f(int, int)
//	(JI)V                     void f(long, int)
//	([B)V                     void f(byte[])
//	()Ljava/lang/String;      String f()
//	()Landroid/view/Display;  Display f()
package descriptor

import (
	"strings"

	"github.com/wippyai/jni-bridge/errors"
)

// Base is the first character of a field descriptor.
type Base byte

const (
	Boolean Base = 'Z'
	Byte    Base = 'B'
	Char    Base = 'C'
	Short   Base = 'S'
	Int     Base = 'I'
	Long    Base = 'J'
	Float   Base = 'F'
	Double  Base = 'D'
	Void    Base = 'V'
	Object  Base = 'L'
	Array   Base = '['
)

// Type is a single parsed field type.
type Type struct {
	Base Base
	// Class is the internal name for Object types.
	Class string
	// Elem is the element type for Array types.
	Elem *Type
}

// IsPrimitive reports whether t is neither an object nor an array.
func (t Type) IsPrimitive() bool {
	return t.Base != Object && t.Base != Array
}

// IsReference reports whether t is an object or array reference.
func (t Type) IsReference() bool {
	return !t.IsPrimitive()
}

func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	switch t.Base {
	case Object:
		b.WriteByte('L')
		b.WriteString(t.Class)
		b.WriteByte(';')
	case Array:
		b.WriteByte('[')
		t.Elem.write(b)
	default:
		b.WriteByte(byte(t.Base))
	}
}

// Method is a parsed method descriptor.
type Method struct {
	Params []Type
	Return Type
}

func (m Method) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range m.Params {
		p.write(&b)
	}
	b.WriteByte(')')
	m.Return.write(&b)
	return b.String()
}

// ReturnsVoid reports whether the method has no result.
func (m Method) ReturnsVoid() bool {
	return m.Return.Base == Void
}

// Parse parses a method descriptor.
func Parse(sig string) (Method, error) {
	if len(sig) == 0 || sig[0] != '(' {
		return Method{}, errors.InvalidDescriptor(sig, 0, "expected '('")
	}
	p := parser{src: sig, pos: 1}
	var m Method
	for {
		if p.pos >= len(sig) {
			return Method{}, errors.InvalidDescriptor(sig, p.pos, "unterminated parameter list")
		}
		if sig[p.pos] == ')' {
			p.pos++
			break
		}
		t, err := p.field(false)
		if err != nil {
			return Method{}, err
		}
		m.Params = append(m.Params, t)
	}
	ret, err := p.field(true)
	if err != nil {
		return Method{}, err
	}
	if p.pos != len(sig) {
		return Method{}, errors.InvalidDescriptor(sig, p.pos, "trailing characters after return type")
	}
	m.Return = ret
	return m, nil
}

// ParseField parses a single field descriptor such as "I" or "[Ljava/lang/String;".
func ParseField(sig string) (Type, error) {
	p := parser{src: sig}
	t, err := p.field(false)
	if err != nil {
		return Type{}, err
	}
	if p.pos != len(sig) {
		return Type{}, errors.InvalidDescriptor(sig, p.pos, "trailing characters after type")
	}
	return t, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) field(allowVoid bool) (Type, error) {
	if p.pos >= len(p.src) {
		return Type{}, errors.InvalidDescriptor(p.src, p.pos, "missing type")
	}
	c := Base(p.src[p.pos])
	switch c {
	case Boolean, Byte, Char, Short, Int, Long, Float, Double:
		p.pos++
		return Type{Base: c}, nil
	case Void:
		if !allowVoid {
			return Type{}, errors.InvalidDescriptor(p.src, p.pos, "void is only valid as a return type")
		}
		p.pos++
		return Type{Base: Void}, nil
	case Object:
		end := strings.IndexByte(p.src[p.pos:], ';')
		if end < 0 {
			return Type{}, errors.InvalidDescriptor(p.src, p.pos, "unterminated class name")
		}
		name := p.src[p.pos+1 : p.pos+end]
		if err := checkInternalName(name); err != "" {
			return Type{}, errors.InvalidDescriptor(p.src, p.pos+1, err)
		}
		p.pos += end + 1
		return Type{Base: Object, Class: name}, nil
	case Array:
		p.pos++
		elem, err := p.field(false)
		if err != nil {
			return Type{}, err
		}
		return Type{Base: Array, Elem: &elem}, nil
	default:
		return Type{}, errors.InvalidDescriptor(p.src, p.pos, "unknown type character "+string(rune(c)))
	}
}

func checkInternalName(name string) string {
	if name == "" {
		return "empty class name"
	}
	if strings.ContainsAny(name, ".;[()") {
		return "class name must use '/' separators"
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "//") {
		return "empty package segment"
	}
	return ""
}

// InternalName normalizes "java.lang.Object" to "java/lang/Object".
func InternalName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), ".", "/")
}

// ValidateClassName checks a class name after normalization.
func ValidateClassName(name string) error {
	internal := InternalName(name)
	if msg := checkInternalName(internal); msg != "" {
		return errors.New(errors.PhaseParse, errors.KindInvalidDescriptor).
			Class(name).
			Detail("%s", msg).
			Build()
	}
	return nil
}
