package xsd

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse is returned when a schema document is not well-formed
	// XML, or does not contain a schema element.
	ErrParse = errors.New("xsd: cannot parse schema document")
	// ErrUnresolvedReference is reported when a ref, base, type or
	// substitutionGroup names a declaration that cannot be found.
	ErrUnresolvedReference = errors.New("xsd: unresolved reference")
	// ErrUnsupportedNode is reported for top-level schema constructs
	// the registry does not model.
	ErrUnsupportedNode = errors.New("xsd: unsupported node")
	// ErrMissingNamespace is reported when a prefixed name uses a
	// prefix with no namespace declaration in scope.
	ErrMissingNamespace = errors.New("xsd: missing namespace")
	// ErrCyclicDerivation is returned when following the parent of a
	// type, or the substitution group of an element, arrives back
	// where it started.
	ErrCyclicDerivation = errors.New("xsd: cyclic derivation")
	// ErrNotFound is returned when a named declaration is not in the
	// registry.
	ErrNotFound = errors.New("xsd: not found")
	// ErrNoSchemaLocation is returned when an instance document has no
	// xsi:schemaLocation or xsi:noNamespaceSchemaLocation attribute.
	ErrNoSchemaLocation = errors.New("xsd: no schema location")
	// ErrImport is reported when an imported or included document
	// cannot be read.
	ErrImport = errors.New("xsd: cannot read imported schema")
	// ErrInvalid is reported for declarations the registry could not
	// make sense of, such as an element without a name.
	ErrInvalid = errors.New("xsd: invalid declaration")
)

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind string

const (
	UnresolvedReference DiagnosticKind = "unresolved-reference"
	UnsupportedNode     DiagnosticKind = "unsupported-node"
	MissingNamespace    DiagnosticKind = "missing-namespace"
	UnreadableImport    DiagnosticKind = "unreadable-import"
	InvalidDeclaration  DiagnosticKind = "invalid-declaration"
)

var diagnosticErrors = map[DiagnosticKind]error{
	UnresolvedReference: ErrUnresolvedReference,
	UnsupportedNode:     ErrUnsupportedNode,
	MissingNamespace:    ErrMissingNamespace,
	UnreadableImport:    ErrImport,
	InvalidDeclaration:  ErrInvalid,
}

// A Diagnostic is a problem found while ingesting a schema document
// that did not stop ingestion. The declaration it concerns, or the
// single node it concerns, was skipped or recorded incompletely.
type Diagnostic struct {
	Kind DiagnosticKind
	// The name that could not be resolved, or the local name of the
	// unsupported node.
	Name string
	// Location of the schema document.
	Location string
	// Breadcrumbs from the top-level declaration to the node at
	// fault, such as complexType(Order)>sequence>element(item).
	Path    string
	Message string
}

func (d Diagnostic) Error() string {
	var buf strings.Builder
	buf.WriteString(d.Location)
	if d.Path != "" {
		buf.WriteString(": ")
		buf.WriteString(d.Path)
	}
	buf.WriteString(": ")
	buf.WriteString(string(d.Kind))
	if d.Name != "" {
		fmt.Fprintf(&buf, " %q", d.Name)
	}
	if d.Message != "" {
		buf.WriteString(": ")
		buf.WriteString(d.Message)
	}
	return buf.String()
}

// Unwrap returns the sentinel error matching the diagnostic's kind.
func (d Diagnostic) Unwrap() error {
	return diagnosticErrors[d.Kind]
}

// Diagnostics is the list of problems found during one call to
// ProcessSchema.
type Diagnostics []Diagnostic

// Err returns nil if ds is empty, and an error joining every
// diagnostic otherwise.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Filter returns the diagnostics of the given kind.
func (ds Diagnostics) Filter(kind DiagnosticKind) Diagnostics {
	var result Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			result = append(result, d)
		}
	}
	return result
}

// Names returns the Name of each diagnostic, in order.
func (ds Diagnostics) Names() []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}
