package xsd

import (
	"fmt"

	"github.com/CognitoIQ/xsdtypes/internal/ordered"
	"github.com/CognitoIQ/xsdtypes/qname"
)

// xs:anyAtomicType is an alias of xs:anySimpleType.
const anyAtomicType = Key(SchemaPrefix + ":anyAtomicType")

// Names given to the query methods may be in clark notation,
// prefix:local form using a registered prefix, or unprefixed, which
// names a built-in type. See Registry.Key.

// Type returns the registered type called name.
func (r *Registry) Type(name string) (*Type, bool) {
	t, ok := r.types[r.Key(name)]
	return t, ok
}

// HasType reports whether a type called name is registered.
func (r *Registry) HasType(name string) bool {
	_, ok := r.Type(name)
	return ok
}

// Element returns the registered element called name.
func (r *Registry) Element(name string) (*Element, bool) {
	e, ok := r.elements[r.Key(name)]
	return e, ok
}

// HasElement reports whether an element called name is registered.
func (r *Registry) HasElement(name string) bool {
	_, ok := r.Element(name)
	return ok
}

// Attribute returns the registered attribute called name. If there is
// none, the attribute group of that name is returned instead.
func (r *Registry) Attribute(name string) (*Attribute, *AttributeGroup, bool) {
	key := r.Key(name)
	if a, ok := r.attributes[key]; ok {
		return a, nil, true
	}
	if g, ok := r.attributeGroups[key]; ok {
		return nil, g, true
	}
	return nil, nil, false
}

// HasAttribute reports whether an attribute called name is registered.
// Attribute groups are not considered.
func (r *Registry) HasAttribute(name string) bool {
	_, ok := r.attributes[r.Key(name)]
	return ok
}

// AttributeGroup returns the registered attribute group called name.
func (r *Registry) AttributeGroup(name string) (*AttributeGroup, bool) {
	g, ok := r.attributeGroups[r.Key(name)]
	return g, ok
}

// HasAttributeGroup reports whether an attribute group called name is
// registered.
func (r *Registry) HasAttributeGroup(name string) bool {
	_, ok := r.AttributeGroup(name)
	return ok
}

// Group returns the registered model group called name.
func (r *Registry) Group(name string) (*Group, bool) {
	g, ok := r.groups[r.Key(name)]
	return g, ok
}

// HasGroup reports whether a model group called name is registered.
func (r *Registry) HasGroup(name string) bool {
	_, ok := r.Group(name)
	return ok
}

// ResolveParticle returns the element declaration of an element
// particle, carrying the particle's occurrence constraints.
func (r *Registry) ResolveParticle(p Particle) (*Element, bool) {
	var base *Element
	switch {
	case p.Element != nil:
		base = p.Element
	case p.Ref != "":
		e, ok := r.elements[p.Ref]
		if !ok {
			return nil, false
		}
		base = e
	default:
		return nil, false
	}
	e := *base
	e.MinOccurs, e.MaxOccurs = p.MinOccurs, p.MaxOccurs
	return &e, true
}

// ResolveGroup returns the model group a group particle refers to,
// carrying the particle's occurrence constraints.
func (r *Registry) ResolveGroup(p Particle) (*Group, bool) {
	base, ok := r.groups[p.Group]
	if !ok {
		return nil, false
	}
	g := *base
	g.MinOccurs, g.MaxOccurs = p.MinOccurs, p.MaxOccurs
	return &g, true
}

// ID returns what the id attribute id was declared on.
func (r *Registry) ID(id string) (TypeID, bool) {
	tid, ok := r.typeIDs[id]
	return tid, ok
}

// TypeByID returns the type whose declaration carries the given id.
func (r *Registry) TypeByID(id string) (*Type, bool) {
	tid, ok := r.typeIDs[id]
	if !ok || !tid.IsType {
		return nil, false
	}
	t, ok := r.types[tid.Name]
	return t, ok
}

// ElementByID returns the element whose declaration carries the given
// id.
func (r *Registry) ElementByID(id string) (*Element, bool) {
	tid, ok := r.typeIDs[id]
	if !ok || tid.IsType {
		return nil, false
	}
	e, ok := r.elements[tid.Name]
	return e, ok
}

// ResolvesToBaseType reports whether the type called name is one of
// candidates or is derived from one of them. A union type is not
// looked into; if the walk up from name reaches a union with no
// parent, the result is allowUnion. False is returned for unknown
// types and cyclic derivations.
func (r *Registry) ResolvesToBaseType(name string, candidates []string, allowUnion bool) bool {
	ok, _ := r.ResolvesToBaseTypeErr(name, candidates, allowUnion)
	return ok
}

// ResolvesToBaseTypeErr is like ResolvesToBaseType, but returns an
// error wrapping ErrCyclicDerivation if the parents of name form a
// cycle.
func (r *Registry) ResolvesToBaseTypeErr(name string, candidates []string, allowUnion bool) (bool, error) {
	if len(candidates) == 0 {
		return false, nil
	}
	set := make(map[Key]bool, len(candidates))
	for _, c := range candidates {
		set[r.Key(c)] = true
	}
	return r.resolvesTo(r.Key(name), set, allowUnion)
}

func (r *Registry) resolvesTo(key Key, candidates map[Key]bool, allowUnion bool) (bool, error) {
	seen := make(map[Key]bool)
	for {
		if candidates[key] {
			return true, nil
		}
		if seen[key] {
			return false, fmt.Errorf("%w: %s", ErrCyclicDerivation, key)
		}
		seen[key] = true
		t, ok := r.types[key]
		if !ok {
			return false, nil
		}
		if t.Parent == "" {
			return allowUnion && t.Class == Simple && t.IsUnion(), nil
		}
		key = t.Parent
	}
}

var numericBase = map[Key]bool{
	Decimal.Key(): true,
	Double.Key():  true,
	Float.Key():   true,
}

// IsNumeric reports whether the type called name is xs:decimal,
// xs:double or xs:float or is derived from one of them. As with
// ResolvesToBaseType, a union type counts as numeric.
func (r *Registry) IsNumeric(name string) bool {
	ok, _ := r.resolvesTo(r.Key(name), numericBase, true)
	return ok
}

// refreshNumeric recomputes the Numeric field of every registered
// type. A type may be registered before its base, so the flag copied
// from the base at ingestion time is not final.
func (r *Registry) refreshNumeric() {
	for key, t := range r.types {
		if t.Prefix == SchemaPrefix && r.atomic[key] {
			continue
		}
		t.Numeric, _ = r.resolvesTo(key, numericBase, false)
	}
}

// AtomicType returns the built-in type the type called name is
// derived from. xs:anyType is its own atomic type; xs:anyComplexType
// has none.
func (r *Registry) AtomicType(name string) (Key, bool) {
	key, err := r.AtomicTypeErr(name)
	return key, err == nil
}

// AtomicTypeErr is like AtomicType, but returns an error wrapping
// ErrNotFound when there is no atomic type, or ErrCyclicDerivation
// when the parents of name form a cycle.
func (r *Registry) AtomicTypeErr(name string) (Key, error) {
	key := r.Key(name)
	seen := make(map[Key]bool)
	for {
		switch key {
		case AnyType.Key():
			return key, nil
		case AnyComplexType.Key():
			return "", fmt.Errorf("%w: %s has no atomic type", ErrNotFound, key)
		case anyAtomicType:
			key = AnySimpleType.Key()
		}
		if r.atomic[key] {
			return key, nil
		}
		if seen[key] {
			return "", fmt.Errorf("%w: %s", ErrCyclicDerivation, key)
		}
		seen[key] = true
		t, ok := r.types[key]
		if !ok {
			return "", fmt.Errorf("%w: type %s", ErrNotFound, key)
		}
		if t.Parent == "" {
			return "", fmt.Errorf("%w: %s has no atomic type", ErrNotFound, key)
		}
		key = t.Parent
	}
}

// IsSubstitutable reports whether the element called name is one of
// heads, or is in the substitution group of one of them, directly or
// through the substitution group of its head.
func (r *Registry) IsSubstitutable(name string, heads ...string) bool {
	if len(heads) == 0 {
		return false
	}
	set := make(map[Key]bool, len(heads))
	for _, h := range heads {
		set[r.Key(h)] = true
	}
	return r.substitutable(r.Key(name), set)
}

func (r *Registry) substitutable(key Key, heads map[Key]bool) bool {
	seen := make(map[Key]bool)
	for !seen[key] {
		if heads[key] {
			return true
		}
		seen[key] = true
		e, ok := r.elements[key]
		if !ok || e.SubstitutionGroup == "" {
			return false
		}
		key = e.SubstitutionGroup
	}
	return false
}

// SubstitutionGroupMembers returns the names of the elements that may
// appear in place of head, sorted by key. If head is an element it is
// the first member. The second return value is false if head is
// neither an element nor a type.
func (r *Registry) SubstitutionGroupMembers(head string) ([]qname.Name, bool) {
	key := r.Key(head)
	var members []qname.Name
	if _, ok := r.elements[key]; ok {
		members = append(members, r.nameOf(key))
	} else if _, ok := r.types[key]; !ok {
		return nil, false
	}
	heads := map[Key]bool{key: true}
	ordered.Range(r.elements, func(k Key, e *Element) {
		if e.SubstitutionGroup != "" && r.substitutable(e.SubstitutionGroup, heads) {
			members = append(members, r.nameOf(k))
		}
	})
	return members, true
}

// nameOf converts key to a qualified name. A key whose prefix is not
// registered gets no namespace.
func (r *Registry) nameOf(key Key) qname.Name {
	if n, ok := r.QName(key); ok {
		return n
	}
	return qname.New(key.Prefix(), "", key.Local())
}

// IsUnion reports whether the type called name, or its parent, is a
// union.
func (r *Registry) IsUnion(name string) bool {
	t, ok := r.Type(name)
	if !ok {
		return false
	}
	if t.IsUnion() {
		return true
	}
	p, ok := r.types[t.Parent]
	return ok && p.IsUnion()
}

// UnionMembers returns the member types of the first union found
// walking up from the type called name.
func (r *Registry) UnionMembers(name string) []TypeRef {
	key := r.Key(name)
	seen := make(map[Key]bool)
	for !seen[key] {
		seen[key] = true
		t, ok := r.types[key]
		if !ok {
			return nil
		}
		if t.IsUnion() {
			return t.Members
		}
		if t.Parent == "" {
			return nil
		}
		key = t.Parent
	}
	return nil
}

// ElementsOfType returns the element declarations in the content model
// of the type called name, including those of the model groups it
// refers to. Elements are keyed by their registry key. Nested
// elements' own content is not descended into.
func (r *Registry) ElementsOfType(name string) (map[Key]*Element, bool) {
	t, ok := r.Type(name)
	if !ok {
		return nil, false
	}
	elements := make(map[Key]*Element)
	r.gatherElements(t.Content, elements, make(map[Key]bool))
	return elements, true
}

func (r *Registry) gatherElements(m *Model, into map[Key]*Element, groups map[Key]bool) {
	if m == nil {
		return
	}
	for _, p := range m.Particles {
		switch {
		case p.Element != nil:
			into[p.Element.Key()] = p.Element
		case p.Ref != "":
			if e, ok := r.elements[p.Ref]; ok {
				into[p.Ref] = e
			}
		case p.Group != "":
			if groups[p.Group] {
				continue
			}
			groups[p.Group] = true
			if g, ok := r.groups[p.Group]; ok {
				r.gatherElements(g.Model, into, groups)
			}
		case p.Model != nil:
			r.gatherElements(p.Model, into, groups)
		}
	}
}

// AddSimpleType registers a simple type derived from parent, which
// defaults to xs:anySimpleType. A type added under the xs prefix is
// treated as built-in by AtomicType. AddSimpleType returns false if
// the type is already registered.
func (r *Registry) AddSimpleType(prefix, local, parent string, numeric bool) bool {
	key := MakeKey(prefix, local)
	if _, ok := r.types[key]; ok {
		return false
	}
	parentKey := AnySimpleType.Key()
	if parent != "" {
		parentKey = r.Key(parent)
	}
	r.types[key] = &Type{
		Name:    local,
		Prefix:  prefix,
		Parent:  parentKey,
		Class:   Simple,
		Numeric: numeric,
	}
	if prefix == SchemaPrefix {
		r.atomic[key] = true
	}
	return true
}

// AddAttribute registers an optional attribute of type parentType,
// which defaults to xs:anySimpleType. It returns false if parentType
// is not a registered type.
func (r *Registry) AddAttribute(prefix, name, parentType string) (*Attribute, bool) {
	parentKey := AnySimpleType.Key()
	if parentType != "" {
		parentKey = r.Key(parentType)
	}
	if _, ok := r.types[parentKey]; !ok {
		return nil, false
	}
	a := &Attribute{
		Name:   name,
		Prefix: prefix,
		Use:    Optional,
		Types:  []TypeRef{{Ref: parentKey}},
	}
	r.attributes[a.Key()] = a
	return a, true
}

// ClearElements removes every registered element.
func (r *Registry) ClearElements() {
	r.elements = make(map[Key]*Element)
}

// Stats counts the declarations in a Registry.
type Stats struct {
	Types, Elements, Attributes, AttributeGroups, Groups, Namespaces int
}

// Stats returns the number of declarations of each kind registered,
// built-in types included.
func (r *Registry) Stats() Stats {
	return Stats{
		Types:           len(r.types),
		Elements:        len(r.elements),
		Attributes:      len(r.attributes),
		AttributeGroups: len(r.attributeGroups),
		Groups:          len(r.groups),
		Namespaces:      len(r.processed),
	}
}

// TypeNames returns the keys of the registered types, sorted.
func (r *Registry) TypeNames() []Key { return ordered.Keys(r.types) }

// ElementNames returns the keys of the registered elements, sorted.
func (r *Registry) ElementNames() []Key { return ordered.Keys(r.elements) }

// IngestionOrder returns the locations of every schema document
// ingested, each after the documents it imports or includes.
func (r *Registry) IngestionOrder() []string {
	var order []string
	r.imports.Flatten(func(loc string) {
		order = append(order, loc)
	})
	return order
}
