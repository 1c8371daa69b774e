package xsd

import (
	"strings"

	"github.com/google/uuid"

	"github.com/CognitoIQ/xsdtypes/xmltree"
)

// buildType builds the type defined by a simpleType or complexType
// element. The caller names it.
func (d *document) buildType(el *xmltree.Element) *Type {
	switch el.Name.Local {
	case "simpleType":
		return d.simpleType(el)
	case "complexType":
		return d.complexType(el)
	}
	stop(el, el.Name.Local, "not a type definition")
	return nil
}

func (d *document) simpleType(el *xmltree.Element) *Type {
	t := d.derivedContent(el)
	t.Class = Simple
	return t
}

func (d *document) complexType(el *xmltree.Element) *Type {
	var t *Type
	if cc, ok := firstChild(el, isElem(schemaNS, "complexContent")); ok {
		t = d.derivedContent(cc)
		t.Class = Complex
		t.Mixed = parseBool(cc, "mixed")
	} else if sc, ok := firstChild(el, isElem(schemaNS, "simpleContent")); ok {
		t = d.derivedContent(sc)
		t.Class = Simple
	} else {
		t = &Type{Class: Complex}
		walk(el, func(c *xmltree.Element) { d.content(t, c) })
	}
	if parseBool(el, "mixed") {
		t.Mixed = true
	}
	return t
}

// derivedContent reads the restriction or extension inside el. If
// there is none, the content of el itself is read.
func (d *document) derivedContent(el *xmltree.Element) *Type {
	t := &Type{}
	der, ok := firstChild(el, isDerivation)
	if !ok {
		walk(el, func(c *xmltree.Element) { d.content(t, c) })
		return t
	}
	walk(el, func(c *xmltree.Element) {
		if c == der {
			d.derivation(t, der)
		}
	})
	return t
}

func (d *document) derivation(t *Type, der *xmltree.Element) {
	t.ContentType = ContentType(der.Name.Local)
	if base := strings.TrimSpace(der.Attr("", "base")); base != "" {
		if key, ok := d.resolve(der, base, "complexType"); ok {
			t.Parent = key
			d.expectType(der, key)
			if p, ok := d.r.types[key]; ok {
				t.Numeric = p.Numeric
			}
		}
	} else if inline, ok := firstChild(der, isElem(schemaNS, "simpleType")); ok {
		// Restriction of an anonymous simple type; the new type
		// takes the place of the anonymous one in the hierarchy.
		var base *Type
		walk(der, func(c *xmltree.Element) {
			if c == inline {
				base = d.simpleType(c)
			}
		})
		t.Parent = base.Parent
		t.Numeric = base.Numeric
		t.Variety = base.Variety
		t.Members = base.Members
		t.ItemType = base.ItemType
		if t.Parent == "" && t.Variety != Union {
			t.Parent = AnySimpleType.Key()
		}
	} else {
		stop(der, "", "%s has no base type", der.Name.Local)
	}
	walk(der, func(c *xmltree.Element) { d.content(t, c) })
}

// content reads one child of a type definition or derivation into t.
func (d *document) content(t *Type, el *xmltree.Element) {
	switch el.Name.Local {
	case "annotation", "simpleType":
		// The anonymous base of a restriction is read by derivation.
	case "attribute":
		if a, ok := d.attribute(el); ok {
			t.Attributes = append(t.Attributes, a)
		}
	case "attributeGroup":
		if g, ok := d.attributeGroupRef(el); ok {
			t.AttributeGroups = append(t.AttributeGroups, g.Key())
		}
	case "anyAttribute":
		t.AnyAttribute = true
	case "sequence", "choice", "all":
		m := d.model(el)
		if t.Content == nil {
			t.Content = m
		} else {
			t.Content = &Model{
				Compositor: Sequence,
				Particles:  []Particle{{Model: t.Content}, {Model: m}},
			}
		}
	case "group":
		if p, ok := d.groupParticle(el); ok {
			t.Content = &Model{Compositor: Sequence, Particles: []Particle{p}}
		}
	case "union":
		d.union(t, el)
	case "list":
		d.list(t, el)
	default:
		if !d.facet(t, el) {
			d.r.log.Debug().
				Str("location", d.location).
				Str("node", el.Name.Local).
				Msg("ignoring schema construct")
		}
	}
}

func (d *document) union(t *Type, el *xmltree.Element) {
	t.Variety = Union
	for _, member := range strings.Fields(el.Attr("", "memberTypes")) {
		key, ok := d.resolve(el, member, "complexType")
		if !ok {
			continue
		}
		d.expectType(el, key)
		t.Members = append(t.Members, TypeRef{Ref: key})
	}
	walk(el, func(c *xmltree.Element) {
		if c.Name.Local == "simpleType" {
			t.Members = append(t.Members, TypeRef{Inline: d.simpleType(c)})
		}
	})
}

func (d *document) list(t *Type, el *xmltree.Element) {
	t.Variety = List
	if t.Parent == "" {
		t.Parent = AnySimpleType.Key()
	}
	if item := strings.TrimSpace(el.Attr("", "itemType")); item != "" {
		if key, ok := d.resolve(el, item, "complexType"); ok {
			d.expectType(el, key)
			t.ItemType = &TypeRef{Ref: key}
		}
		return
	}
	walk(el, func(c *xmltree.Element) {
		if c.Name.Local == "simpleType" && t.ItemType == nil {
			t.ItemType = &TypeRef{Inline: d.simpleType(c)}
		}
	})
}

// facet records the constraining facet el in t, and reports whether
// el is a facet.
func (d *document) facet(t *Type, el *xmltree.Element) bool {
	f := t.Facets
	if f == nil {
		f = new(Facets)
	}
	v := el.Attr("", "value")
	switch el.Name.Local {
	case "length":
		f.Length = v
	case "minLength":
		f.MinLength = v
	case "maxLength":
		f.MaxLength = v
	case "pattern":
		f.Patterns = append(f.Patterns, v)
	case "enumeration":
		f.Enumerations = append(f.Enumerations, d.enumeration(el))
	case "whiteSpace":
		f.WhiteSpace = v
	case "minInclusive":
		f.MinInclusive = v
	case "maxInclusive":
		f.MaxInclusive = v
	case "minExclusive":
		f.MinExclusive = v
	case "maxExclusive":
		f.MaxExclusive = v
	case "totalDigits":
		f.TotalDigits = v
	case "fractionDigits":
		f.FractionDigits = v
	default:
		return false
	}
	t.Facets = f
	return true
}

// enumeration reads an enumeration facet. An enumeration value with an
// id is registered as a simple type of its own, under a generated
// name.
func (d *document) enumeration(el *xmltree.Element) Enumeration {
	e := Enumeration{Value: el.Attr("", "value")}
	id := strings.TrimSpace(el.Attr("", "id"))
	if id == "" {
		return e
	}
	name := strings.ToUpper(uuid.NewString())
	d.r.AddSimpleType(d.prefix, name, "", false)
	e.ID = id
	e.Type = MakeKey(d.prefix, name)
	d.r.typeIDs[id] = TypeID{Name: e.Type, IsType: true}
	return e
}

// model reads a sequence, choice or all.
func (d *document) model(el *xmltree.Element) *Model {
	m := &Model{Compositor: Compositor(el.Name.Local)}
	m.MinOccurs, m.MaxOccurs = occurs(el)
	walk(el, func(c *xmltree.Element) {
		switch c.Name.Local {
		case "element":
			if p, ok := d.elementParticle(c); ok {
				m.Particles = append(m.Particles, p)
			}
		case "group":
			if p, ok := d.groupParticle(c); ok {
				m.Particles = append(m.Particles, p)
			}
		case "sequence", "choice", "all":
			m.Particles = append(m.Particles, Particle{Model: d.model(c)})
		case "any":
			p := Particle{Any: true}
			p.MinOccurs, p.MaxOccurs = occurs(c)
			m.Particles = append(m.Particles, p)
		}
	})
	return m
}
