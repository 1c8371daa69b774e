package xsd

import "github.com/CognitoIQ/xsdtypes/xmltree"

// Search predicates for the xmltree.Element.Search method
type predicate func(el *xmltree.Element) bool

func and(fns ...predicate) predicate {
	return func(el *xmltree.Element) bool {
		for _, f := range fns {
			if !f(el) {
				return false
			}
		}
		return true
	}
}

func or(fns ...predicate) predicate {
	return func(el *xmltree.Element) bool {
		for _, f := range fns {
			if f(el) {
				return true
			}
		}
		return false
	}
}

func isElem(space, local string) predicate {
	return func(el *xmltree.Element) bool {
		if el.Name.Local != local {
			return false
		}
		return space == "" || el.Name.Space == space
	}
}

// isSchemaElem matches elements in the XML Schema namespace with any of
// the local names given.
func isSchemaElem(local ...string) predicate {
	fns := make([]predicate, len(local))
	for i, l := range local {
		fns[i] = isElem(schemaNS, l)
	}
	return or(fns...)
}

func hasAttr(space, local string) predicate {
	return func(el *xmltree.Element) bool {
		_, ok := el.LookupAttr(space, local)
		return ok
	}
}

// firstChild returns the first direct child of el matching fn.
func firstChild(el *xmltree.Element, fn predicate) (*xmltree.Element, bool) {
	for i := range el.Children {
		if fn(&el.Children[i]) {
			return &el.Children[i], true
		}
	}
	return nil, false
}

var (
	isType        = isSchemaElem("complexType", "simpleType")
	isDerivation  = isSchemaElem("restriction", "extension")
	isModel       = isSchemaElem("sequence", "choice", "all")
	isSchema      = isElem(schemaNS, "schema")
	isDeclaration = and(isSchemaElem("complexType", "simpleType", "element",
		"attribute", "attributeGroup", "group"), hasAttr("", "name"))
)
