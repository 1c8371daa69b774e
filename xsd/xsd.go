// Package xsd builds a queryable registry of the types declared in XML
// Schema documents.
//
// A Registry ingests schema documents, following their imports and
// includes, and records the named simple and complex types, elements,
// attributes, attribute groups and model groups they declare. Every
// declaration is keyed by a string of the form prefix:local, where the
// prefix is the one the Registry chose for the declaring document's
// target namespace. The built-in types of the XML Schema namespace are
// always present under the prefix "xs".
//
// Once built, the registry answers derivation questions: whether one type
// derives from another, which built-in primitive underlies a user
// defined type, whether a type is numeric, and which elements belong to
// a substitution group. The xsd package does not validate schema
// documents, nor instance documents against them.
package xsd // import "github.com/CognitoIQ/xsdtypes/xsd"

import (
	"strings"

	"github.com/CognitoIQ/xsdtypes/qname"
)

const (
	schemaNS         = qname.SchemaNS
	schemaInstanceNS = qname.SchemaInstanceNS

	// SchemaPrefix is the prefix the built-in types are registered
	// under, whatever prefix a schema document uses for the XML Schema
	// namespace.
	SchemaPrefix = qname.SchemaPrefix
)

// A Key identifies a declaration in a Registry. It has the form
// prefix:local.
type Key string

// MakeKey returns the Key for local in the namespace registered under
// prefix.
func MakeKey(prefix, local string) Key {
	return Key(prefix + ":" + local)
}

// Prefix returns the part of k before the last colon.
func (k Key) Prefix() string {
	prefix, _ := qname.SplitPrefixed(string(k))
	return prefix
}

// Local returns the part of k after the last colon.
func (k Key) Local() string {
	_, local := qname.SplitPrefixed(string(k))
	return local
}

func (k Key) String() string { return string(k) }

// Class distinguishes types with simple content from types with complex
// content.
type Class string

const (
	Simple  Class = "simple"
	Complex Class = "complex"
)

// ContentType records how a type was derived from its parent.
type ContentType string

const (
	Extension   ContentType = "extension"
	Restriction ContentType = "restriction"
	// Types synthesized for attribute declarations have this content
	// type. Their parent is the attribute's declared type.
	AttributeContent ContentType = "attribute"
)

// Variety is set on simple types that are not atomic.
type Variety string

const (
	Union Variety = "union"
	List  Variety = "list"
)

// Use is the value of the use attribute of an attribute declaration.
type Use string

const (
	Optional   Use = "optional"
	Required   Use = "required"
	Prohibited Use = "prohibited"
)

// A Type is a named or anonymous simple or complex type. The zero
// value of a field means the schema did not say.
//
// https://www.w3.org/TR/xmlschema-1/#Type_Definitions
type Type struct {
	// The local name of the type. Empty for anonymous types.
	Name string `json:"name,omitempty"`
	// The prefix of the registered namespace the type belongs to.
	Prefix string `json:"prefix,omitempty"`
	// The key of the type this type is derived from. Only the two
	// roots, xs:anyType and xs:anySimpleType, and union types have
	// no parent.
	Parent Key `json:"parent,omitempty"`
	// Simple or complex.
	Class Class `json:"class,omitempty"`
	// How the type was derived from Parent.
	ContentType ContentType `json:"contentType,omitempty"`
	// Set for union and list types.
	Variety Variety `json:"variety,omitempty"`
	// True if the type derives from xs:decimal, xs:double or xs:float.
	Numeric bool `json:"numeric"`
	// True if character data may appear between child elements.
	Mixed bool `json:"mixed,omitempty"`
	// Value of the id attribute of the declaration, if any.
	ID string `json:"id,omitempty"`
	// Member types of a union.
	Members []TypeRef `json:"types,omitempty"`
	// Item type of a list.
	ItemType *TypeRef `json:"itemType,omitempty"`
	// Constraining facets from a restriction.
	Facets *Facets `json:"facets,omitempty"`
	// Attributes declared by the type or its derivation, in document
	// order.
	Attributes []*Attribute `json:"attributes,omitempty"`
	// Keys of the attribute groups the type refers to.
	AttributeGroups []Key `json:"attributeGroups,omitempty"`
	// True if the type allows attributes not declared by the schema.
	AnyAttribute bool `json:"anyAttribute,omitempty"`
	// The element content model of a complex type.
	Content *Model `json:"content,omitempty"`
}

// Key returns the registry key of a named type.
func (t *Type) Key() Key { return MakeKey(t.Prefix, t.Name) }

// IsUnion reports whether t is a union type.
func (t *Type) IsUnion() bool { return t.Variety == Union }

// A TypeRef is one candidate type of an element or attribute, a member
// of a union or the item type of a list. Exactly one of Ref or Inline
// is set.
type TypeRef struct {
	// Key of a named type.
	Ref Key `json:"ref,omitempty"`
	// An anonymous type declared in place.
	Inline *Type `json:"inline,omitempty"`
}

// Key returns the key of the named type t refers to. For anonymous
// types, the key of the anonymous type's parent is returned instead.
func (t TypeRef) Key() Key {
	if t.Inline != nil {
		return t.Inline.Parent
	}
	return t.Ref
}

// Facets are the constraining facets of a simple type restriction.
// Patterns and enumerations accumulate; the other facets hold the
// last value seen.
//
// https://www.w3.org/TR/xmlschema-2/#rf-facets
type Facets struct {
	Length         string        `json:"length,omitempty"`
	MinLength      string        `json:"minLength,omitempty"`
	MaxLength      string        `json:"maxLength,omitempty"`
	Patterns       []string      `json:"patterns,omitempty"`
	Enumerations   []Enumeration `json:"enumerations,omitempty"`
	WhiteSpace     string        `json:"whiteSpace,omitempty"`
	MinInclusive   string        `json:"minInclusive,omitempty"`
	MaxInclusive   string        `json:"maxInclusive,omitempty"`
	MinExclusive   string        `json:"minExclusive,omitempty"`
	MaxExclusive   string        `json:"maxExclusive,omitempty"`
	TotalDigits    string        `json:"totalDigits,omitempty"`
	FractionDigits string        `json:"fractionDigits,omitempty"`
}

// An Enumeration is one allowed value of a restricted simple type. An
// enumeration value with an id attribute is given a type of its own,
// so that it can be found with Registry.TypeByID.
type Enumeration struct {
	Value string `json:"value"`
	ID    string `json:"id,omitempty"`
	Type  Key    `json:"type,omitempty"`
}

// An Element is an element declaration. Global declarations are
// registered once; reference occurrences are copies carrying the
// minOccurs and maxOccurs of the referencing particle.
//
// https://www.w3.org/TR/xmlschema-1/#cElement_Declarations
type Element struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	// An abstract element does not appear in the xml document, but
	// is "implemented" by other elements in its substitution group.
	Abstract bool `json:"abstract"`
	// True for top-level declarations.
	Global   bool   `json:"global"`
	Nillable bool   `json:"nillable,omitempty"`
	Default  string `json:"default,omitempty"`
	Fixed    string `json:"fixed,omitempty"`
	ID       string `json:"id,omitempty"`
	// Key of the head of the element's substitution group.
	SubstitutionGroup Key `json:"substitutionGroup,omitempty"`
	// Candidate content types, in declaration order.
	Types []TypeRef `json:"types,omitempty"`
	// Occurrence constraints of a referencing particle. Empty on
	// registered declarations.
	MinOccurs string `json:"minOccurs,omitempty"`
	MaxOccurs string `json:"maxOccurs,omitempty"`
}

// Key returns the registry key of e.
func (e *Element) Key() Key { return MakeKey(e.Prefix, e.Name) }

// An Attribute is an attribute declaration.
//
// https://www.w3.org/TR/xmlschema-1/#cAttribute_Declarations
type Attribute struct {
	Name    string    `json:"name"`
	Prefix  string    `json:"prefix"`
	Types   []TypeRef `json:"types,omitempty"`
	Use     Use       `json:"use"`
	Default string    `json:"default,omitempty"`
	Fixed   string    `json:"fixed,omitempty"`
	Form    string    `json:"form,omitempty"`
	ID      string    `json:"id,omitempty"`
}

// Key returns the registry key of a.
func (a *Attribute) Key() Key { return MakeKey(a.Prefix, a.Name) }

// An AttributeGroup is a named set of attribute declarations, with the
// attributes of any groups it refers to merged in.
type AttributeGroup struct {
	Name         string       `json:"name"`
	Prefix       string       `json:"prefix"`
	Attributes   []*Attribute `json:"attributes,omitempty"`
	AnyAttribute bool         `json:"anyAttribute,omitempty"`
}

// Key returns the registry key of g.
func (g *AttributeGroup) Key() Key { return MakeKey(g.Prefix, g.Name) }

// merge adds attrs to g. An attribute already in g with the same key
// is replaced.
func (g *AttributeGroup) merge(attrs ...*Attribute) {
	for _, a := range attrs {
		replaced := false
		for i, have := range g.Attributes {
			if have.Key() == a.Key() {
				g.Attributes[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			g.Attributes = append(g.Attributes, a)
		}
	}
}

// A Group is a named model group. A group is always abstract; it only
// appears in instance documents through the particles that refer to
// it.
type Group struct {
	Name     string `json:"name"`
	Prefix   string `json:"prefix"`
	Abstract bool   `json:"abstract"`
	Model    *Model `json:"model,omitempty"`
	// Occurrence constraints of a referencing particle.
	MinOccurs string `json:"minOccurs,omitempty"`
	MaxOccurs string `json:"maxOccurs,omitempty"`
}

// Key returns the registry key of g.
func (g *Group) Key() Key { return MakeKey(g.Prefix, g.Name) }

// Compositor is the kind of a Model.
type Compositor string

const (
	Sequence Compositor = "sequence"
	Choice   Compositor = "choice"
	All      Compositor = "all"
)

// A Model is a sequence, choice or all group of particles.
type Model struct {
	Compositor Compositor `json:"compositor"`
	MinOccurs  string     `json:"minOccurs,omitempty"`
	MaxOccurs  string     `json:"maxOccurs,omitempty"`
	Particles  []Particle `json:"particles,omitempty"`
}

// A Particle is one term of a Model. Exactly one of Element, Ref,
// Group, Model or Any is set. References are stored by key, so that a
// type may contain itself.
type Particle struct {
	// A local element declaration.
	Element *Element `json:"element,omitempty"`
	// Key of a global element.
	Ref Key `json:"ref,omitempty"`
	// Key of a model group.
	Group Key `json:"group,omitempty"`
	// A nested sequence, choice or all.
	Model *Model `json:"model,omitempty"`
	// An element wildcard.
	Any       bool   `json:"any,omitempty"`
	MinOccurs string `json:"minOccurs,omitempty"`
	MaxOccurs string `json:"maxOccurs,omitempty"`
}

// A TypeID records which declaration an id attribute belongs to.
type TypeID struct {
	Name   Key  `json:"name"`
	IsType bool `json:"istype"`
}

func isPrefixed(s string) bool {
	return strings.Contains(s, ":")
}
