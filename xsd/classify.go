package xsd

import (
	"strings"

	"github.com/CognitoIQ/xsdtypes/xmltree"
)

// processNode registers one top-level child of a schema element.
func (d *document) processNode(el *xmltree.Element) {
	if d.s.built[el] {
		return
	}
	switch el.Name.Local {
	case "simpleType", "complexType":
		d.namedType(el)
	case "attributeGroup":
		d.attributeGroup(el)
	case "attribute":
		d.topAttribute(el)
	case "group":
		d.group(el)
	case "element":
		if d.s.includeElements {
			d.element(el, true)
		}
	case "annotation", "import", "include", "redefine":
	default:
		d.diagnose(UnsupportedNode, el.Name.Local, el, "unsupported top-level node")
	}
}

// namedType registers a top-level simple or complex type.
func (d *document) namedType(el *xmltree.Element) {
	name := requiredName(el)
	t := d.buildType(el)
	t.Name, t.Prefix = name, d.prefix
	key := t.Key()
	if id := strings.TrimSpace(el.Attr("", "id")); id != "" {
		t.ID = id
		d.r.typeIDs[id] = TypeID{Name: key, IsType: true}
	}
	d.r.types[key] = t
	d.r.metrics.declaration("type")
}

// attributeGroup registers a top-level attribute group. Attributes of
// the groups it refers to are merged into it. Declaring a group that
// is already registered adds to it.
func (d *document) attributeGroup(el *xmltree.Element) *AttributeGroup {
	name := requiredName(el)
	key := MakeKey(d.prefix, name)
	if g, ok := d.s.buildingAttrGroups[key]; ok {
		return g
	}
	d.s.built[el] = true
	g := &AttributeGroup{Name: name, Prefix: d.prefix}
	d.s.buildingAttrGroups[key] = g
	defer delete(d.s.buildingAttrGroups, key)

	walk(el, func(c *xmltree.Element) {
		switch c.Name.Local {
		case "attribute":
			if a, ok := d.attribute(c); ok {
				g.merge(a)
			}
		case "attributeGroup":
			if ref, ok := d.attributeGroupRef(c); ok && ref != g {
				g.merge(ref.Attributes...)
				g.AnyAttribute = g.AnyAttribute || ref.AnyAttribute
			}
		case "anyAttribute":
			g.AnyAttribute = true
		}
	})
	if have, ok := d.r.attributeGroups[key]; ok {
		have.merge(g.Attributes...)
		have.AnyAttribute = have.AnyAttribute || g.AnyAttribute
		return have
	}
	d.r.attributeGroups[key] = g
	d.r.metrics.declaration("attributeGroup")
	return g
}

// group registers a top-level model group.
func (d *document) group(el *xmltree.Element) *Group {
	name := requiredName(el)
	key := MakeKey(d.prefix, name)
	if g, ok := d.s.buildingGroups[key]; ok {
		return g
	}
	d.s.built[el] = true
	g := &Group{Name: name, Prefix: d.prefix, Abstract: true}
	d.s.buildingGroups[key] = g
	defer delete(d.s.buildingGroups, key)

	walk(el, func(c *xmltree.Element) {
		if isModel(c) && g.Model == nil {
			g.Model = d.model(c)
		}
	})
	d.r.groups[key] = g
	d.r.metrics.declaration("group")
	return g
}

// topAttribute registers a top-level attribute declaration.
func (d *document) topAttribute(el *xmltree.Element) {
	d.s.built[el] = true
	d.r.registerAttribute(d.attributeDecl(el), true)
	d.r.metrics.declaration("attribute")
}

// registerAttribute adds a to the registry, along with a simple type
// of the same name derived from the attribute's type, unless a type by
// that name is already registered. An attribute already registered is
// only replaced if overwrite is true.
func (r *Registry) registerAttribute(a *Attribute, overwrite bool) {
	key := a.Key()
	if _, ok := r.attributes[key]; ok && !overwrite {
		return
	}
	r.attributes[key] = a
	if _, ok := r.types[key]; ok {
		return
	}
	t := &Type{
		Name:        a.Name,
		Prefix:      a.Prefix,
		Class:       Simple,
		ContentType: AttributeContent,
		Parent:      AnySimpleType.Key(),
	}
	if len(a.Types) > 0 && a.Types[0].Key() != "" {
		t.Parent = a.Types[0].Key()
	}
	if p, ok := r.types[t.Parent]; ok {
		t.Numeric = p.Numeric
	}
	r.types[key] = t
}

func requiredName(el *xmltree.Element) string {
	name := strings.TrimSpace(el.Attr("", "name"))
	if name == "" {
		stop(el, "", "%s has no name", el.Name.Local)
	}
	return name
}

func occurs(el *xmltree.Element) (min, max string) {
	return strings.TrimSpace(el.Attr("", "minOccurs")), strings.TrimSpace(el.Attr("", "maxOccurs"))
}

// parseBool reads the boolean attribute attr of el, which is false if
// absent.
func parseBool(el *xmltree.Element, attr string) bool {
	v, ok := el.LookupAttr("", attr)
	if !ok {
		return false
	}
	switch strings.TrimSpace(v) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	stop(el, attr, "invalid boolean %q", v)
	return false
}
