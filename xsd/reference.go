package xsd

import (
	"strings"

	"github.com/CognitoIQ/xsdtypes/xmltree"
)

// elementParticle reads an element inside a model group. A local
// declaration is kept in the particle; a reference is kept by key.
func (d *document) elementParticle(el *xmltree.Element) (Particle, bool) {
	var p Particle
	p.MinOccurs, p.MaxOccurs = occurs(el)
	if ref, ok := el.LookupAttr("", "ref"); ok {
		e, ok := d.elementRef(el, ref)
		if !ok {
			return Particle{}, false
		}
		p.Ref = e.Key()
		return p, true
	}
	p.Element = d.element(el, false)
	return p, true
}

// element builds and registers an element declaration. A global
// declaration replaces a local one registered under the same key; a
// local declaration is only registered if the key is free.
func (d *document) element(el *xmltree.Element, global bool) *Element {
	name := requiredName(el)
	key := MakeKey(d.prefix, name)
	if global {
		if e, ok := d.s.building[key]; ok {
			return e
		}
		if e, ok := d.r.elements[key]; ok && e.Global {
			return e
		}
	}
	e := &Element{
		Name:     name,
		Prefix:   d.prefix,
		Global:   global,
		Abstract: parseBool(el, "abstract"),
		Nillable: parseBool(el, "nillable"),
		Default:  el.Attr("", "default"),
		Fixed:    el.Attr("", "fixed"),
	}
	if global {
		d.s.building[key] = e
		defer delete(d.s.building, key)
	}
	if id := strings.TrimSpace(el.Attr("", "id")); id != "" {
		e.ID = id
		d.r.typeIDs[id] = TypeID{Name: key}
	}
	if sg := strings.TrimSpace(el.Attr("", "substitutionGroup")); sg != "" {
		if head, ok := d.resolve(el, sg, "element"); ok {
			e.SubstitutionGroup = head
		}
	}
	if typ := strings.TrimSpace(el.Attr("", "type")); typ != "" {
		if key, ok := d.resolve(el, typ, "complexType"); ok {
			d.expectType(el, key)
			e.Types = append(e.Types, TypeRef{Ref: key})
		}
	} else {
		walk(el, func(c *xmltree.Element) {
			if isType(c) && len(e.Types) == 0 {
				e.Types = append(e.Types, TypeRef{Inline: d.buildType(c)})
			}
		})
	}
	if len(e.Types) == 0 && e.SubstitutionGroup == "" {
		e.Types = append(e.Types, TypeRef{Ref: AnyType.Key()})
	}
	if _, ok := d.r.elements[key]; global || !ok {
		d.r.elements[key] = e
		d.r.metrics.declaration("element")
	}
	return e
}

// elementRef finds the global element ref names. It returns a copy
// carrying the occurrence constraints of el.
func (d *document) elementRef(el *xmltree.Element, ref string) (*Element, bool) {
	key, ok := d.resolve(el, ref, "element")
	if !ok {
		return nil, false
	}
	base, ok := d.s.building[key]
	if !ok {
		if e, found := d.r.elements[key]; found && e.Global {
			base, ok = e, true
		}
	}
	if !ok && key.Prefix() == d.prefix {
		if decl, found := d.idx.lookahead("element", key.Local()); found {
			d.isolated(decl, func() {
				base, ok = d.element(decl, true), true
			})
		}
	}
	if !ok {
		if e, found := d.r.elements[key]; found {
			base, ok = e, true
		}
	}
	if !ok {
		d.diagnose(UnresolvedReference, ref, el, "element not found")
		return nil, false
	}
	e := *base
	e.MinOccurs, e.MaxOccurs = occurs(el)
	return &e, true
}

// groupParticle reads a reference to a model group.
func (d *document) groupParticle(el *xmltree.Element) (Particle, bool) {
	ref := strings.TrimSpace(el.Attr("", "ref"))
	if ref == "" {
		stop(el, "", "group reference has no ref")
	}
	key, ok := d.resolve(el, ref, "group")
	if !ok {
		return Particle{}, false
	}
	_, found := d.s.buildingGroups[key]
	if !found {
		_, found = d.r.groups[key]
	}
	if !found && key.Prefix() == d.prefix {
		if decl, ok := d.idx.lookahead("group", key.Local()); ok {
			found = d.isolated(decl, func() { d.group(decl) })
		}
	}
	if !found {
		d.diagnose(UnresolvedReference, ref, el, "group not found")
		return Particle{}, false
	}
	p := Particle{Group: key}
	p.MinOccurs, p.MaxOccurs = occurs(el)
	return p, true
}

// attribute reads an attribute declaration or reference inside a type
// or attribute group. Local declarations are registered if no
// attribute of the same name is. A reference yields a copy of the
// global declaration with the attributes of el applied on top.
func (d *document) attribute(el *xmltree.Element) (*Attribute, bool) {
	ref, isRef := el.LookupAttr("", "ref")
	if !isRef {
		a := d.attributeDecl(el)
		d.r.registerAttribute(a, false)
		return a, true
	}
	key, ok := d.resolve(el, ref, "attribute")
	if !ok {
		return nil, false
	}
	base, found := d.r.attributes[key]
	if !found && key.Prefix() == d.prefix {
		if decl, ok := d.idx.lookahead("attribute", key.Local()); ok {
			d.isolated(decl, func() { d.topAttribute(decl) })
			base, found = d.r.attributes[key]
		}
	}
	if !found {
		d.diagnose(UnresolvedReference, ref, el, "attribute not found")
		return nil, false
	}
	a := *base
	for _, attr := range el.Attrs() {
		if attr.Name.Space != "" || attr.Value == "" {
			continue
		}
		switch attr.Name.Local {
		case "use":
			a.Use = Use(strings.TrimSpace(attr.Value))
		case "default":
			a.Default = attr.Value
		case "fixed":
			a.Fixed = attr.Value
		case "form":
			a.Form = attr.Value
		case "id":
			a.ID = attr.Value
		}
	}
	return &a, true
}

// attributeDecl builds an attribute declaration. An attribute with no
// type may hold any simple value.
func (d *document) attributeDecl(el *xmltree.Element) *Attribute {
	a := &Attribute{
		Name:    requiredName(el),
		Prefix:  d.prefix,
		Use:     Optional,
		Default: el.Attr("", "default"),
		Fixed:   el.Attr("", "fixed"),
		Form:    el.Attr("", "form"),
		ID:      el.Attr("", "id"),
	}
	if use := strings.TrimSpace(el.Attr("", "use")); use != "" {
		a.Use = Use(use)
	}
	if typ := strings.TrimSpace(el.Attr("", "type")); typ != "" {
		if key, ok := d.resolve(el, typ, "complexType"); ok {
			d.expectType(el, key)
			a.Types = append(a.Types, TypeRef{Ref: key})
		}
	} else {
		walk(el, func(c *xmltree.Element) {
			if c.Name.Local == "simpleType" && len(a.Types) == 0 {
				a.Types = append(a.Types, TypeRef{Inline: d.simpleType(c)})
			}
		})
	}
	if len(a.Types) == 0 {
		a.Types = append(a.Types, TypeRef{Ref: AnySimpleType.Key()})
	}
	return a
}

// attributeGroupRef finds the attribute group el refers to.
func (d *document) attributeGroupRef(el *xmltree.Element) (*AttributeGroup, bool) {
	ref := strings.TrimSpace(el.Attr("", "ref"))
	if ref == "" {
		stop(el, "", "attributeGroup reference has no ref")
	}
	key, ok := d.resolve(el, ref, "attributeGroup")
	if !ok {
		return nil, false
	}
	if g, ok := d.s.buildingAttrGroups[key]; ok {
		return g, true
	}
	if g, ok := d.r.attributeGroups[key]; ok {
		return g, true
	}
	if key.Prefix() == d.prefix {
		if decl, ok := d.idx.lookahead("attributeGroup", key.Local()); ok {
			var g *AttributeGroup
			if d.isolated(decl, func() { g = d.attributeGroup(decl) }) {
				return g, true
			}
		}
	}
	d.diagnose(UnresolvedReference, ref, el, "attribute group not found")
	return nil, false
}
