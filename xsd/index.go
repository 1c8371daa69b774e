package xsd

import (
	"fmt"

	"github.com/antchfx/xpath"

	"github.com/CognitoIQ/xsdtypes/xmltree"
)

type declKey struct {
	kind, name string
}

// A schemaIndex records the top-level declarations of one schema
// document, so that names can be checked before the declarations they
// refer to have been processed.
type schemaIndex struct {
	root  *xmltree.Element
	decls map[declKey]*xmltree.Element
}

func indexSchema(root *xmltree.Element) *schemaIndex {
	idx := &schemaIndex{
		root:  root,
		decls: make(map[declKey]*xmltree.Element),
	}
	for i := range root.Children {
		el := &root.Children[i]
		if !isDeclaration(el) {
			continue
		}
		kind := el.Name.Local
		if kind == "simpleType" {
			kind = "complexType"
		}
		key := declKey{kind, el.Attr("", "name")}
		if _, ok := idx.decls[key]; !ok {
			idx.decls[key] = el
		}
	}
	return idx
}

// declares reports whether the document declares a top-level kind
// named name. Simple and complex types share a symbol space, so either
// may be given for kind.
func (idx *schemaIndex) declares(kind, name string) bool {
	if kind == "simpleType" {
		kind = "complexType"
	}
	_, ok := idx.decls[declKey{kind, name}]
	return ok
}

// lookahead finds the top-level declaration of the given kind and name
// with an XPath query against the schema document. It is used to build
// declarations that are referred to before they appear.
func (idx *schemaIndex) lookahead(kind, name string) (*xmltree.Element, bool) {
	expr, err := lookaheadExpr(kind, name)
	if err != nil {
		return nil, false
	}
	for _, el := range xmltree.Select(idx.root, expr) {
		if el.Name.Space == schemaNS {
			return el, true
		}
	}
	return nil, false
}

// Schema documents may bind the XML Schema namespace to any prefix,
// so the query matches local names and the namespace is checked by
// the caller.
func lookaheadExpr(kind, name string) (*xpath.Expr, error) {
	return xpath.Compile(fmt.Sprintf(
		"/*[local-name()='schema']/*[local-name()=%s][@name=%s]",
		xpathLiteral(kind), xpathLiteral(name)))
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no
// escapes; a value containing both quote characters cannot be
// expressed, and no NCName contains either.
func xpathLiteral(s string) string {
	for _, r := range s {
		if r == '\'' {
			return `"` + s + `"`
		}
	}
	return "'" + s + "'"
}
