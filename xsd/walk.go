package xsd

import (
	"fmt"
	"strings"

	"github.com/CognitoIQ/xsdtypes/xmltree"
)

// When working with an xml tree structure, we naturally have some
// pretty deep function calls.  To save some typing, we use panic/recover
// to bubble the errors up to the top-level declaration being
// processed, which is then skipped. These panics are not exposed to the
// user.
type parseError struct {
	message string
	name    string
	path    []*xmltree.Element
}

func (err parseError) Error() string {
	return "Error at " + err.breadcrumbs() + ": " + err.message
}

func (err parseError) breadcrumbs() string {
	return breadcrumbs(err.path)
}

// breadcrumbs renders path, innermost element last, as
// kind(name)>kind(name).
func breadcrumbs(path []*xmltree.Element) string {
	crumbs := make([]string, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		piece := path[i].Name.Local
		if name := path[i].Attr("", "name"); name != "" {
			piece = fmt.Sprintf("%s(%s)", piece, name)
		} else if ref := path[i].Attr("", "ref"); ref != "" {
			piece = fmt.Sprintf("%s(ref=%s)", piece, ref)
		}
		crumbs = append(crumbs, piece)
	}
	return strings.Join(crumbs, ">")
}

// stop abandons the declaration being processed because of a problem
// with el.
func stop(el *xmltree.Element, name, format string, args ...interface{}) {
	panic(parseError{
		name:    name,
		message: fmt.Sprintf(format, args...),
		path:    []*xmltree.Element{el},
	})
}

// walk calls fn on each child of root in the XML Schema namespace.
// If fn stops, root is added to the breadcrumbs of the error.
func walk(root *xmltree.Element, fn func(*xmltree.Element)) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(parseError); ok {
				err.path = append(err.path, root)
				panic(err)
			} else {
				panic(r)
			}
		}
	}()
	for i := 0; i < len(root.Children); i++ {
		// We don't care about elements outside of the
		// XML schema namespace
		if root.Children[i].Name.Space != schemaNS {
			continue
		}
		fn(&root.Children[i])
	}
}

// defer catchParseError(&err)
func catchParseError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(parseError)
		if !ok {
			panic(r)
		}
		*err = perr
	}
}
