package xsd

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/CognitoIQ/xsdtypes/location"
)

// TypeForNode returns the key of the declared simple type of a node in
// an instance document. Elements and attributes are looked up by name;
// their first candidate type that is not complex is returned, or the
// base of an anonymous restriction or extension. Text and comment
// nodes are xs:string.
func (r *Registry) TypeForNode(n *xmlquery.Node) (Key, error) {
	var (
		key   Key
		types []TypeRef
	)
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode, xmlquery.CommentNode:
		return String.Key(), nil
	case xmlquery.ElementNode:
		k, err := r.nodeKey(n, elementNamespace(n))
		if err != nil {
			return "", err
		}
		e, ok := r.elements[k]
		if !ok {
			return "", fmt.Errorf("%w: element %s", ErrNotFound, k)
		}
		key, types = k, e.Types
	case xmlquery.AttributeNode:
		ns := n.NamespaceURI
		if ns == "" && n.Parent != nil {
			ns = n.Parent.NamespaceURI
		}
		k, err := r.nodeKey(n, ns)
		if err != nil {
			return "", err
		}
		a, ok := r.attributes[k]
		if !ok {
			return "", fmt.Errorf("%w: attribute %s", ErrNotFound, k)
		}
		key, types = k, a.Types
	default:
		return "", fmt.Errorf("xsd: cannot find the type of a %s node", nodeKind(n.Type))
	}
	for _, t := range types {
		if t.Inline == nil {
			return t.Ref, nil
		}
		if t.Inline.Class == Complex || t.Inline.Parent == "" {
			continue
		}
		return t.Inline.Parent, nil
	}
	return "", fmt.Errorf("%w: %s has no simple type", ErrNotFound, key)
}

func (r *Registry) nodeKey(n *xmlquery.Node, ns string) (Key, error) {
	prefix, ok := r.PrefixForNamespace(ns)
	if !ok {
		return "", fmt.Errorf("%w: namespace %q of %s is not registered", ErrNotFound, ns, n.Data)
	}
	return MakeKey(prefix, n.Data), nil
}

// elementNamespace returns the namespace of an element. An element in
// no namespace takes the default namespace declared on the document
// element.
func elementNamespace(n *xmlquery.Node) string {
	if n.NamespaceURI != "" {
		return n.NamespaceURI
	}
	root := n
	for root.Parent != nil && root.Parent.Type == xmlquery.ElementNode {
		root = root.Parent
	}
	for _, a := range root.Attr {
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			return a.Value
		}
	}
	return ""
}

func nodeKind(t xmlquery.NodeType) string {
	switch t {
	case xmlquery.DocumentNode:
		return "document"
	case xmlquery.DeclarationNode:
		return "processing instruction"
	}
	return fmt.Sprintf("NodeType(%d)", t)
}

// ImportForDocument reads the instance document at loc and ingests,
// with their elements, the schema documents named by the
// xsi:schemaLocation and xsi:noNamespaceSchemaLocation attributes of
// its document element. Schema locations are resolved relative to
// loc. An error wrapping ErrNoSchemaLocation is returned if the
// document names no schema.
func (r *Registry) ImportForDocument(ctx context.Context, loc string) (Diagnostics, error) {
	data, err := r.loader.Load(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("xsd: read %s: %w", loc, err)
	}
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrParse, loc, err)
	}
	root := documentElement(doc)
	if root == nil {
		return nil, fmt.Errorf("%w %s: no document element", ErrParse, loc)
	}
	var schemas []string
	if v, ok := xsiAttr(root, "schemaLocation"); ok {
		fields := strings.Fields(v)
		for i := 1; i < len(fields); i += 2 {
			schemas = append(schemas, fields[i])
		}
	}
	if v, ok := xsiAttr(root, "noNamespaceSchemaLocation"); ok && strings.TrimSpace(v) != "" {
		schemas = append(schemas, strings.TrimSpace(v))
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSchemaLocation, loc)
	}
	var diags Diagnostics
	for _, s := range schemas {
		d, err := r.ProcessSchema(ctx, location.Resolve(loc, s), true)
		diags = append(diags, d...)
		if err != nil {
			return diags, err
		}
	}
	return diags, nil
}

func documentElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// xsiAttr looks up an attribute in the XML Schema instance namespace.
// Depending on how the document was parsed, the namespace of an
// attribute is found in NamespaceURI, or its prefix is left in
// Name.Space, so both are checked.
func xsiAttr(n *xmlquery.Node, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local != local {
			continue
		}
		if a.NamespaceURI == schemaInstanceNS || a.Name.Space == schemaInstanceNS {
			return a.Value, true
		}
		if a.Name.Space != "" && lookupPrefix(n, a.Name.Space) == schemaInstanceNS {
			return a.Value, true
		}
	}
	return "", false
}

// lookupPrefix finds the namespace bound to prefix at n.
func lookupPrefix(n *xmlquery.Node, prefix string) string {
	for ; n != nil; n = n.Parent {
		for _, a := range n.Attr {
			if a.Name.Space == "xmlns" && a.Name.Local == prefix {
				return a.Value
			}
		}
	}
	return ""
}
