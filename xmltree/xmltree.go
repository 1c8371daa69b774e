// Package xmltree converts XML documents to a tree of Go structs.
//
// The xmltree package provides routines for accessing an XML document
// as a tree, along with functionality to resolve namespace-prefixed
// strings at any point in the tree. Schema documents put QNames in
// attribute values, so every Element remembers the namespace
// declarations in scope where it appears.
package xmltree // import "github.com/CognitoIQ/xsdtypes/xmltree"

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/CognitoIQ/xsdtypes/qname"
)

const recursionLimit = 3000

var errDeepXML = errors.New("xmltree: xml document too deeply nested")

// An Element represents a single element in an XML document. Elements
// may have zero or more children. The byte array used by the Content
// field is shared among all elements in the document, and should not
// be modified. An Element also captures xml namespace prefixes, so
// that arbitrary QNames in attribute values can be resolved.
type Element struct {
	xml.StartElement
	Content  []byte
	Children []Element
	// A list of defined XML namespace prefixes, from least specific to
	// most specific. The Space field is the canonical xml namespace,
	// and the Local field is the prefix.
	Scope []xml.Name
}

// Attr gets the value of the first attribute whose name matches the
// space and local arguments. If space is the empty string, only
// attributes' local names are considered when looking for a match.
// If an attribute could not be found, the empty string is returned.
func (el *Element) Attr(space, local string) string {
	v, _ := el.LookupAttr(space, local)
	return v
}

// LookupAttr is like Attr, but also reports whether the attribute is
// present, so that an attribute set to the empty string can be told
// apart from a missing one.
func (el *Element) LookupAttr(space, local string) (string, bool) {
	for _, v := range el.StartElement.Attr {
		if v.Name.Local != local || isNSDecl(v) {
			continue
		}
		if space == "" || space == v.Name.Space {
			return v.Value, true
		}
	}
	return "", false
}

// Attrs returns the element's attributes, excluding namespace
// declarations.
func (el *Element) Attrs() []xml.Attr {
	attrs := make([]xml.Attr, 0, len(el.StartElement.Attr))
	for _, a := range el.StartElement.Attr {
		if !isNSDecl(a) {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

func isNSDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// Resolve translates an XML QName (namespace-prefixed string) to an
// xml.Name with a canonicalized namespace in its Space field.  This can
// be used when working with XSD documents, which put QNames in attribute
// values. If qname does not have a prefix, the default namespace is used.If
// a namespace prefix cannot be resolved, the returned value's Space field
// will be the unresolved prefix. Use the ResolveNS function to detect when
// a namespace prefix cannot be resolved.
func (el *Element) Resolve(qname string) xml.Name {
	name, _ := el.ResolveNS(qname)
	return name
}

// The ResolveNS method is like Resolve, but returns false for its second
// return value if a namespace prefix cannot be resolved.
func (el *Element) ResolveNS(qname string) (xml.Name, bool) {
	prefix, local, ok := strings.Cut(qname, ":")
	if !ok {
		prefix, local = "", qname
	}
	if space, ok := el.LookupNamespace(prefix); ok {
		return xml.Name{Space: space, Local: local}, true
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// ResolveDefault is like Resolve, but allows for the default namespace to
// be overridden. The namespace of strings without a namespace prefix
// (known as an NCName in XML terminology) will be defaultns.
func (el *Element) ResolveDefault(qname, defaultns string) xml.Name {
	if defaultns == "" || strings.Contains(qname, ":") {
		return el.Resolve(qname)
	}
	return xml.Name{Space: defaultns, Local: qname}
}

// LookupNamespace returns the namespace bound to prefix at el. The
// empty prefix looks up the default namespace. The xml prefix is
// always bound. LookupNamespace makes *Element a qname.Resolver.
func (el *Element) LookupNamespace(prefix string) (string, bool) {
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Local == prefix {
			return el.Scope[i].Space, el.Scope[i].Space != ""
		}
	}
	if prefix == qname.XMLPrefix {
		return qname.XMLNS, true
	}
	return "", false
}

// Prefix is the inverse of Resolve. It uses the closest prefix
// defined for a namespace to create a string of the form
// prefix:local. If the namespace cannot be found, an empty string
// is returned.
func (el *Element) Prefix(name xml.Name) (qname string) {
	prefix, ok := el.PrefixFor(name.Space)
	if !ok {
		return ""
	}
	if prefix == "" {
		return name.Local
	}
	return prefix + ":" + name.Local
}

// PrefixFor returns the closest prefix bound to namespace. The empty
// string is returned with true when namespace is the default namespace.
func (el *Element) PrefixFor(namespace string) (string, bool) {
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Space != namespace {
			continue
		}
		// a closer declaration may have rebound the prefix
		if ns, _ := el.LookupNamespace(el.Scope[i].Local); ns == namespace {
			return el.Scope[i].Local, true
		}
	}
	return "", false
}

// Namespaces returns the namespace declarations in scope at el, keyed
// by prefix. Later declarations of a prefix shadow earlier ones.
func (el *Element) Namespaces() qname.Namespaces {
	ns := make(qname.Namespaces, len(el.Scope))
	for _, decl := range el.Scope {
		ns[decl.Local] = decl.Space
	}
	return ns
}

// Text returns the character data contained in el and its
// descendants.
func (el *Element) Text() string {
	var buf strings.Builder
	d := xml.NewDecoder(bytes.NewReader(el.Content))
	d.Strict = false
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		if cdata, ok := tok.(xml.CharData); ok {
			buf.Write(cdata)
		}
	}
	return buf.String()
}

func (el *Element) pushNS(tag xml.StartElement) {
	var scope []xml.Name
	for _, attr := range tag.Attr {
		if attr.Name.Space == "xmlns" {
			scope = append(scope, xml.Name{Space: attr.Value, Local: attr.Name.Local})
		} else if attr.Name.Local == "xmlns" {
			scope = append(scope, xml.Name{Space: attr.Value})
		}
	}
	if len(scope) > 0 {
		el.Scope = append(el.Scope, scope...)
		// Ensure that future additions to the scope create
		// a new backing array. This prevents the scope from
		// being clobbered during parsing.
		el.Scope = el.Scope[:len(el.Scope):len(el.Scope)]
	}
}

// Save some typing when scanning xml
type scanner struct {
	*xml.Decoder
	tok xml.Token
	err error
}

func (s *scanner) scan() bool {
	if s.err != nil {
		return false
	}
	s.tok, s.err = s.Token()
	return s.err == nil
}

// Parse builds a tree of Elements by reading an XML document.  The
// byte slice passed to Parse is expected to be a valid XML document
// with a single root element. Documents declaring an encoding other
// than UTF-8 are transcoded as they are read.
func Parse(doc []byte) (*Element, error) {
	if enc := declaredEncoding(doc); enc != "" && !isUTF8(enc) {
		r, err := charset.NewReaderLabel(enc, bytes.NewReader(doc))
		if err != nil {
			return nil, fmt.Errorf("xmltree: %w", err)
		}
		if doc, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("xmltree: %w", err)
		}
	}
	d := xml.NewDecoder(bytes.NewReader(doc))
	// The document has already been transcoded; the declaration
	// still names the original encoding.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	scanner := scanner{Decoder: d}
	root := new(Element)

	for scanner.scan() {
		if start, ok := scanner.tok.(xml.StartElement); ok {
			root.StartElement = start
			break
		}
	}
	if scanner.err != nil {
		return nil, scanner.err
	}
	if err := root.parse(&scanner, doc, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func declaredEncoding(doc []byte) string {
	if !bytes.HasPrefix(bytes.TrimLeft(doc, "\xef\xbb\xbf \t\r\n"), []byte("<?xml")) {
		return ""
	}
	end := bytes.Index(doc, []byte("?>"))
	if end < 0 {
		return ""
	}
	decl := string(doc[:end])
	i := strings.Index(decl, "encoding=")
	if i < 0 {
		return ""
	}
	rest := decl[i+len("encoding="):]
	if rest == "" {
		return ""
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	rest = rest[1:]
	if j := strings.IndexByte(rest, quote); j >= 0 {
		return rest[:j]
	}
	return ""
}

func isUTF8(enc string) bool {
	enc = strings.ToLower(enc)
	return enc == "utf-8" || enc == "utf8"
}

func (el *Element) parse(scanner *scanner, data []byte, depth int) error {
	if depth > recursionLimit {
		return errDeepXML
	}
	el.pushNS(el.StartElement)

	begin := scanner.InputOffset()
	end := begin
walk:
	for scanner.scan() {
		switch tok := scanner.tok.(type) {
		case xml.StartElement:
			child := Element{StartElement: tok.Copy(), Scope: el.Scope}
			if err := child.parse(scanner, data, depth+1); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case xml.EndElement:
			if tok.Name != el.Name {
				return fmt.Errorf("Expecting </%s>, got </%s>", el.Prefix(el.Name), el.Prefix(tok.Name))
			}
			el.Content = data[int(begin):int(end)]
			break walk
		}
		end = scanner.InputOffset()
	}
	if scanner.err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return scanner.err
}

// The walk method calls the walkFunc for each of the Element's children.
func (el *Element) walk(fn walkFunc) {
	for i := 0; i < len(el.Children); i++ {
		fn(&el.Children[i])
	}
}

// SetAttr adds an XML attribute to an Element's existing Attributes.
// If the attribute already exists, it is replaced.
func (el *Element) SetAttr(space, local, value string) {
	for i, a := range el.StartElement.Attr {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space {
			el.StartElement.Attr[i].Value = value
			return
		}
	}
	el.StartElement.Attr = append(el.StartElement.Attr, xml.Attr{
		Name:  xml.Name{Space: space, Local: local},
		Value: value,
	})
}

// walkFunc is the type of the function called for each of an Element's
// children.
type walkFunc func(*Element)

// SearchFunc traverses the Element tree in depth-first order and returns
// a slice of Elements for which the function fn returns true. Note that
// SearchFunc does not search the children of Elements that match the search;
// there is no parent-child relationship between the Elements returned in
// the result.
func (root *Element) SearchFunc(fn func(*Element) bool) []*Element {
	var results []*Element
	var search func(el *Element)

	search = func(el *Element) {
		if fn(el) {
			results = append(results, el)
			return
		}
		el.walk(search)
	}
	root.walk(search)
	return results
}

// Search searches the Element tree for Elements with an xml tag
// matching the name and xml namespace. If space is the empty string,
// any namespace is matched.
func (root *Element) Search(space, local string) []*Element {
	return root.SearchFunc(func(el *Element) bool {
		if local != el.Name.Local {
			return false
		}
		return space == "" || space == el.Name.Space
	})
}

// ChildrenIn returns the direct children of el in the given namespace,
// in document order.
func (el *Element) ChildrenIn(space string) []*Element {
	var result []*Element
	for i := range el.Children {
		if el.Children[i].Name.Space == space {
			result = append(result, &el.Children[i])
		}
	}
	return result
}

// Child returns the first direct child of el with the given name.
func (el *Element) Child(space, local string) (*Element, bool) {
	for i := range el.Children {
		c := &el.Children[i]
		if c.Name.Local == local && (space == "" || c.Name.Space == space) {
			return c, true
		}
	}
	return nil, false
}
