package xsd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xsdtypes/location"
	"github.com/CognitoIQ/xsdtypes/qname"
	"github.com/CognitoIQ/xsdtypes/xmltree"
)

// A session holds the state of one call to ProcessSchema, shared by
// every document it ingests.
type session struct {
	ctx             context.Context
	includeElements bool
	diags           Diagnostics
	// type references checked once every document is registered
	pending []pendingRef
	// declarations under construction, so that references back to
	// them do not recurse
	building           map[Key]*Element
	buildingGroups     map[Key]*Group
	buildingAttrGroups map[Key]*AttributeGroup
	// top-level declarations already built, by lookahead or in
	// document order
	built map[*xmltree.Element]bool
}

type pendingRef struct {
	key  Key
	diag Diagnostic
}

// A document is one schema document being ingested.
type document struct {
	r        *Registry
	s        *session
	location string
	root     *xmltree.Element
	idx      *schemaIndex
	// target namespace the declarations are registered in, and the
	// one the document itself declares. They differ for documents
	// included into another namespace.
	targetNS, declaredNS string
	prefix               string
	// top-level declaration being processed
	top *xmltree.Element
}

// ProcessSchema reads the schema document at loc and registers its
// declarations, after first ingesting every document it imports.
// Locations of imported documents are resolved relative to loc. Top
// level element declarations are only registered if includeElements
// is true.
//
// A document whose target namespace is already registered is not
// processed again. ProcessSchema returns an error if the document at
// loc cannot be read or is not a schema document; nothing is
// registered in that case. Problems with individual declarations,
// references or imported documents are returned as Diagnostics, and
// the rest of the document is still processed.
func (r *Registry) ProcessSchema(ctx context.Context, loc string, includeElements bool) (Diagnostics, error) {
	s := &session{
		ctx:                ctx,
		includeElements:    includeElements,
		building:           make(map[Key]*Element),
		buildingGroups:     make(map[Key]*Group),
		buildingAttrGroups: make(map[Key]*AttributeGroup),
		built:              make(map[*xmltree.Element]bool),
	}
	if err := r.processSchema(s, loc); err != nil {
		r.metrics.document("failed")
		return s.diags, err
	}
	for _, p := range s.pending {
		if _, ok := r.types[p.key]; !ok {
			r.report(s, p.diag)
		}
	}
	r.refreshNumeric()
	r.log.Info().
		Str("location", loc).
		Int("types", len(r.types)).
		Int("elements", len(r.elements)).
		Int("diagnostics", len(s.diags)).
		Msg("schema ingested")
	return s.diags, nil
}

func (r *Registry) processSchema(s *session, loc string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if r.inProgress[loc] {
		r.log.Debug().Str("location", loc).Msg("import cycle, document already being ingested")
		return nil
	}
	schema, err := r.readSchema(s.ctx, loc)
	if err != nil {
		return err
	}
	r.inProgress[loc] = true
	defer delete(r.inProgress, loc)
	r.imports.Add(loc)

	if err := r.importAll(s, loc, schema); err != nil {
		return err
	}

	targetNS := strings.TrimSpace(schema.Attr("", "targetNamespace"))
	if _, ok := r.PrefixForNamespace(targetNS); ok {
		r.log.Debug().Str("location", loc).Str("namespace", targetNS).Msg("namespace already processed")
		r.metrics.document("skipped")
		return nil
	}

	d := r.newDocument(s, loc, schema, targetNS)
	d.prefix = r.choosePrefix(schema, targetNS)
	r.processed[d.prefix] = targetNS
	r.log.Debug().
		Str("location", loc).
		Str("namespace", targetNS).
		Str("prefix", d.prefix).
		Msg("ingesting schema")

	d.mapPrefixes()
	if err := d.includeAll(); err != nil {
		return err
	}
	d.processAll()
	r.metrics.document("ingested")
	return nil
}

func (r *Registry) newDocument(s *session, loc string, schema *xmltree.Element, targetNS string) *document {
	declared := strings.TrimSpace(schema.Attr("", "targetNamespace"))
	return &document{
		r:          r,
		s:          s,
		location:   loc,
		root:       schema,
		idx:        indexSchema(schema),
		targetNS:   targetNS,
		declaredNS: declared,
	}
}

// readSchema loads and parses the document at loc and returns its
// schema element. The schema element may be the document element, or
// nested inside another document, such as a WSDL definition.
func (r *Registry) readSchema(ctx context.Context, loc string) (*xmltree.Element, error) {
	data, err := r.loader.Load(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("xsd: read %s: %w", loc, err)
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrParse, loc, err)
	}
	if isSchema(root) {
		return root, nil
	}
	if found := root.Search(schemaNS, "schema"); len(found) > 0 {
		return found[0], nil
	}
	return nil, fmt.Errorf("%w %s: no <schema> element", ErrParse, loc)
}

// importAll ingests the documents imported by schema. A document that
// cannot be read is reported and skipped.
func (r *Registry) importAll(s *session, loc string, schema *xmltree.Element) error {
	for _, imp := range schema.ChildrenIn(schemaNS) {
		if imp.Name.Local != "import" {
			continue
		}
		target := strings.TrimSpace(imp.Attr("", "schemaLocation"))
		if target == "" {
			r.log.Debug().
				Str("location", loc).
				Str("namespace", imp.Attr("", "namespace")).
				Msg("import without schemaLocation")
			continue
		}
		next := location.Resolve(loc, target)
		if err := r.processSchema(s, next); err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.report(s, Diagnostic{
				Kind:     UnreadableImport,
				Name:     next,
				Location: loc,
				Path:     breadcrumbs([]*xmltree.Element{imp}),
				Message:  err.Error(),
			})
			continue
		}
		r.imports.Add(loc, next)
	}
	return nil
}

// choosePrefix picks the prefix a target namespace is registered
// under: the prefix the schema document binds to it, unless that
// prefix is already taken by another namespace, or a generated one.
func (r *Registry) choosePrefix(schema *xmltree.Element, targetNS string) string {
	if targetNS == schemaNS {
		return SchemaPrefix
	}
	available := func(p string) bool {
		if p == SchemaPrefix {
			return false
		}
		ns, used := r.processed[p]
		return !used || ns == targetNS
	}
	if targetNS != "" {
		for _, decl := range schema.Scope {
			if decl.Local != "" && decl.Space == targetNS && available(decl.Local) {
				return decl.Local
			}
		}
	}
	for i := 0; ; i++ {
		p := r.prefixFunc()
		if i >= 16 {
			p += strconv.Itoa(i)
		}
		if p != "" && available(p) {
			return p
		}
	}
}

// mapPrefixes records, for each prefix the document binds to an
// already registered namespace, the prefix that namespace is
// registered under. Prefixes that are themselves registered keep
// naming their own namespace.
func (d *document) mapPrefixes() {
	for prefix, ns := range d.root.Namespaces() {
		if prefix == "" || prefix == d.prefix || ns == d.targetNS {
			continue
		}
		if _, registered := d.r.processed[prefix]; registered || prefix == SchemaPrefix {
			continue
		}
		canonical, ok := d.r.PrefixForNamespace(ns)
		if !ok || canonical == prefix {
			continue
		}
		d.r.prefixMap[prefix] = canonical
	}
}

// includeAll ingests the documents included by d. Their declarations
// are registered in d's target namespace.
func (d *document) includeAll() error {
	for _, inc := range d.root.ChildrenIn(schemaNS) {
		if inc.Name.Local != "include" {
			continue
		}
		target := strings.TrimSpace(inc.Attr("", "schemaLocation"))
		if target == "" {
			d.diagnose(InvalidDeclaration, "", inc, "include without schemaLocation")
			continue
		}
		next := location.Resolve(d.location, target)
		if d.r.inProgress[next] {
			continue
		}
		schema, err := d.r.readSchema(d.s.ctx, next)
		if err != nil {
			if ctxErr := d.s.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			d.diagnose(UnreadableImport, next, inc, err.Error())
			continue
		}
		if err := d.include(next, schema); err != nil {
			return err
		}
	}
	return nil
}

func (d *document) include(loc string, schema *xmltree.Element) error {
	r := d.r
	r.inProgress[loc] = true
	defer delete(r.inProgress, loc)
	r.imports.Add(d.location, loc)
	if err := r.importAll(d.s, loc, schema); err != nil {
		return err
	}
	inc := r.newDocument(d.s, loc, schema, d.targetNS)
	inc.prefix = d.prefix
	r.log.Debug().
		Str("location", loc).
		Str("namespace", d.targetNS).
		Str("prefix", d.prefix).
		Msg("ingesting included schema")
	inc.mapPrefixes()
	if err := inc.includeAll(); err != nil {
		return err
	}
	inc.processAll()
	return nil
}

// processAll registers the top-level declarations of d in document
// order. A declaration that cannot be processed is reported and
// skipped.
func (d *document) processAll() {
	for _, el := range d.root.ChildrenIn(schemaNS) {
		d.top = el
		d.isolated(el, func() { d.processNode(el) })
	}
	d.top = nil
}

// isolated runs fn, turning a parseError raised by fn into a
// diagnostic. It reports whether fn completed.
func (d *document) isolated(el *xmltree.Element, fn func()) bool {
	var err error
	func() {
		defer catchParseError(&err)
		fn()
	}()
	if err == nil {
		return true
	}
	var perr parseError
	if !errors.As(err, &perr) {
		d.diagnose(InvalidDeclaration, "", el, err.Error())
		return false
	}
	path := perr.path
	if d.top != nil && (len(path) == 0 || path[len(path)-1] != d.top) {
		path = append(path, d.top)
	}
	d.r.report(d.s, Diagnostic{
		Kind:     InvalidDeclaration,
		Name:     perr.name,
		Location: d.location,
		Path:     breadcrumbs(path),
		Message:  perr.message,
	})
	return false
}

// diagnose records a problem with el.
func (d *document) diagnose(kind DiagnosticKind, name string, el *xmltree.Element, msg string) {
	path := []*xmltree.Element{el}
	if d.top != nil && d.top != el {
		path = append(path, d.top)
	}
	d.r.report(d.s, Diagnostic{
		Kind:     kind,
		Name:     name,
		Location: d.location,
		Path:     breadcrumbs(path),
		Message:  msg,
	})
}

func (r *Registry) report(s *session, diag Diagnostic) {
	s.diags = append(s.diags, diag)
	r.metrics.diagnostic(diag.Kind)
	r.log.Warn().
		Str("kind", string(diag.Kind)).
		Str("name", diag.Name).
		Str("location", diag.Location).
		Str("path", diag.Path).
		Msg(diag.Message)
}

// resolve converts the QName-valued attribute value found on el to a
// registry key. Kind is the kind of declaration the name refers to;
// it decides how an unprefixed name with no namespace is treated. A
// name whose prefix is not declared is reported, and false returned.
func (d *document) resolve(el *xmltree.Element, value, kind string) (Key, bool) {
	value = strings.TrimSpace(value)
	n, err := qname.Resolve(value, el)
	if err != nil {
		kind := MissingNamespace
		if errors.Is(err, qname.ErrInvalidName) {
			kind = InvalidDeclaration
		}
		d.diagnose(kind, value, el, err.Error())
		return "", false
	}
	local := n.Local()
	switch ns := n.Namespace(); {
	case ns == schemaNS:
		return MakeKey(SchemaPrefix, local), true
	case ns == "":
		// Unqualified names are taken to be built-in types, unless the
		// document has no namespace of its own and declares the name.
		if d.declaredNS == "" && d.idx.declares(kind, local) {
			return MakeKey(d.prefix, local), true
		}
		return MakeKey(SchemaPrefix, local), true
	case ns == d.targetNS:
		return MakeKey(d.prefix, local), true
	default:
		if prefix, ok := d.r.PrefixForNamespace(ns); ok {
			return MakeKey(prefix, local), true
		}
		return Key(d.r.NormalizePrefix(n.Prefix() + ":" + local)), true
	}
}

// expectType checks, once ingestion is complete, that key names a
// registered type.
func (d *document) expectType(el *xmltree.Element, key Key) {
	if _, ok := d.r.types[key]; ok {
		return
	}
	path := []*xmltree.Element{el}
	if d.top != nil && d.top != el {
		path = append(path, d.top)
	}
	d.s.pending = append(d.s.pending, pendingRef{
		key: key,
		diag: Diagnostic{
			Kind:     UnresolvedReference,
			Name:     string(key),
			Location: d.location,
			Path:     breadcrumbs(path),
			Message:  "type not found",
		},
	})
}
