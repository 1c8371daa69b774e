package xmltree

import (
	"encoding/xml"

	"github.com/antchfx/xpath"
)

// A Navigator walks an Element tree for XPath evaluation. It
// implements xpath.NodeNavigator. The root Element is presented as
// the single child of a document node, so absolute paths such as
// /schema/element select from the root as expected. Character data
// is not modelled as separate nodes; an element's value is its Text.
type Navigator struct {
	root *Element
	// path from the root element to the current element; empty at the
	// document node.
	path []*Element
	// index of each element in path within its parent's Children.
	index []int
	// current attribute index, or -1
	attr int
}

var _ xpath.NodeNavigator = (*Navigator)(nil)

// NewNavigator returns a Navigator positioned at the document node
// above root.
func NewNavigator(root *Element) *Navigator {
	return &Navigator{root: root, attr: -1}
}

// Current returns the element the navigator is on, or the element
// owning the current attribute. It returns nil at the document node.
func (n *Navigator) Current() *Element {
	if len(n.path) == 0 {
		return nil
	}
	return n.path[len(n.path)-1]
}

func (n *Navigator) currentAttr() (xml.Attr, bool) {
	el := n.Current()
	if el == nil || n.attr < 0 || n.attr >= len(el.StartElement.Attr) {
		return xml.Attr{}, false
	}
	return el.StartElement.Attr[n.attr], true
}

func (n *Navigator) NodeType() xpath.NodeType {
	switch {
	case len(n.path) == 0:
		return xpath.RootNode
	case n.attr >= 0:
		return xpath.AttributeNode
	}
	return xpath.ElementNode
}

func (n *Navigator) LocalName() string {
	if a, ok := n.currentAttr(); ok {
		return a.Name.Local
	}
	if el := n.Current(); el != nil {
		return el.Name.Local
	}
	return ""
}

func (n *Navigator) Prefix() string {
	el := n.Current()
	if el == nil {
		return ""
	}
	space := el.Name.Space
	if a, ok := n.currentAttr(); ok {
		if a.Name.Space == "" {
			return ""
		}
		space = a.Name.Space
	}
	prefix, _ := el.PrefixFor(space)
	return prefix
}

// NamespaceURL returns the namespace of the current node.
func (n *Navigator) NamespaceURL() string {
	if a, ok := n.currentAttr(); ok {
		return a.Name.Space
	}
	if el := n.Current(); el != nil {
		return el.Name.Space
	}
	return ""
}

func (n *Navigator) Value() string {
	if a, ok := n.currentAttr(); ok {
		return a.Value
	}
	if len(n.path) == 0 {
		return n.root.Text()
	}
	return n.Current().Text()
}

func (n *Navigator) Copy() xpath.NodeNavigator {
	c := *n
	c.path = append([]*Element(nil), n.path...)
	c.index = append([]int(nil), n.index...)
	return &c
}

func (n *Navigator) MoveToRoot() {
	n.path, n.index, n.attr = n.path[:0], n.index[:0], -1
}

func (n *Navigator) MoveToParent() bool {
	if n.attr >= 0 {
		n.attr = -1
		return true
	}
	if len(n.path) == 0 {
		return false
	}
	n.path, n.index = n.path[:len(n.path)-1], n.index[:len(n.index)-1]
	return true
}

func (n *Navigator) MoveToNextAttribute() bool {
	el := n.Current()
	if el == nil {
		return false
	}
	for i := n.attr + 1; i < len(el.StartElement.Attr); i++ {
		if !isNSDecl(el.StartElement.Attr[i]) {
			n.attr = i
			return true
		}
	}
	return false
}

func (n *Navigator) MoveToChild() bool {
	if n.attr >= 0 {
		return false
	}
	if len(n.path) == 0 {
		n.path, n.index = append(n.path, n.root), append(n.index, 0)
		return true
	}
	el := n.Current()
	if len(el.Children) == 0 {
		return false
	}
	n.path, n.index = append(n.path, &el.Children[0]), append(n.index, 0)
	return true
}

func (n *Navigator) moveToSibling(i int) bool {
	if n.attr >= 0 || len(n.path) < 2 {
		return false
	}
	parent := n.path[len(n.path)-2]
	if i < 0 || i >= len(parent.Children) {
		return false
	}
	n.path[len(n.path)-1] = &parent.Children[i]
	n.index[len(n.index)-1] = i
	return true
}

func (n *Navigator) MoveToFirst() bool {
	return n.moveToSibling(0)
}

func (n *Navigator) MoveToNext() bool {
	if len(n.index) == 0 {
		return false
	}
	return n.moveToSibling(n.index[len(n.index)-1] + 1)
}

func (n *Navigator) MoveToPrevious() bool {
	if len(n.index) == 0 {
		return false
	}
	return n.moveToSibling(n.index[len(n.index)-1] - 1)
}

func (n *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || o.root != n.root {
		return false
	}
	n.path = append(n.path[:0], o.path...)
	n.index = append(n.index[:0], o.index...)
	n.attr = o.attr
	return true
}

// Select evaluates the XPath expression expr against the tree rooted
// at root and returns the matching elements in document order.
// Matches that are not elements, such as attributes, yield the
// element that owns them.
func Select(root *Element, expr *xpath.Expr) []*Element {
	var result []*Element
	seen := make(map[*Element]bool)
	iter := expr.Select(NewNavigator(root))
	for iter.MoveNext() {
		nav, ok := iter.Current().(*Navigator)
		if !ok {
			continue
		}
		if el := nav.Current(); el != nil && !seen[el] {
			seen[el] = true
			result = append(result, el)
		}
	}
	return result
}
