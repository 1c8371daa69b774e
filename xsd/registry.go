package xsd

import (
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/CognitoIQ/xsdtypes/internal/dependency"
	"github.com/CognitoIQ/xsdtypes/internal/ordered"
	"github.com/CognitoIQ/xsdtypes/qname"
)

// A Registry holds the declarations of every schema document it has
// ingested. A Registry is meant to be built by a single goroutine and
// queried afterwards; callers that ingest while other goroutines query
// must provide their own locking.
type Registry struct {
	log        zerolog.Logger
	loader     Loader
	metrics    *Metrics
	prefixFunc func() string

	types           map[Key]*Type
	attributes      map[Key]*Attribute
	attributeGroups map[Key]*AttributeGroup
	groups          map[Key]*Group
	elements        map[Key]*Element
	// prefix -> target namespace, one entry per ingested namespace
	processed map[string]string
	// reverse of processed, rebuilt when the sizes disagree
	byNamespace map[string]string
	// a document's own prefix -> the prefix its namespace was first
	// registered under
	prefixMap map[string]string
	typeIDs   map[string]TypeID
	// keys of the types treated as built-in by AtomicType
	atomic map[Key]bool

	imports dependency.Graph
	// locations currently being ingested
	inProgress map[string]bool
}

// An Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report ingestion progress and
// diagnostics. The default discards all output.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithLoader sets how schema documents are read.
func WithLoader(l Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithHTTPClient sets the client the default loader uses for http and
// https locations.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.loader = NewLoader(c) }
}

// WithMetrics records ingestion counters in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithPrefixGenerator sets the function used to invent a prefix for a
// target namespace that the document declaring it does not bind to a
// prefix. The default returns 8 random lowercase letters.
func WithPrefixGenerator(fn func() string) Option {
	return func(r *Registry) { r.prefixFunc = fn }
}

// New returns a Registry containing the built-in types.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:        zerolog.Nop(),
		loader:     NewLoader(nil),
		prefixFunc: randomPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// Reset discards everything ingested, leaving only the built-in types.
// Options given to New are kept.
func (r *Registry) Reset() {
	r.types = builtinTypes()
	r.attributes = make(map[Key]*Attribute)
	r.attributeGroups = make(map[Key]*AttributeGroup)
	r.groups = make(map[Key]*Group)
	r.elements = make(map[Key]*Element)
	r.processed = make(map[string]string)
	r.byNamespace = nil
	r.prefixMap = make(map[string]string)
	r.typeIDs = make(map[string]TypeID)
	r.atomic = make(map[Key]bool, numBuiltins)
	for b := AnyType; b < numBuiltins; b++ {
		r.atomic[b.Key()] = true
	}
	r.imports.Reset()
	r.inProgress = make(map[string]bool)
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns a process-wide Registry, creating it on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = New()
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide Registry. The next call to
// Default creates a new one.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}

const prefixLetters = "abcdefghijklmnopqrstuvwxyz"

func randomPrefix() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = prefixLetters[rand.IntN(len(prefixLetters))]
	}
	return string(b)
}

// ProcessedSchemas returns a copy of the prefix to target namespace
// map of the ingested namespaces.
func (r *Registry) ProcessedSchemas() map[string]string {
	m := make(map[string]string, len(r.processed))
	for k, v := range r.processed {
		m[k] = v
	}
	return m
}

// HasProcessedSchema reports whether a namespace is registered under
// prefix.
func (r *Registry) HasProcessedSchema(prefix string) bool {
	_, ok := r.processed[prefix]
	return ok
}

// SetProcessedSchema registers namespace under prefix.
func (r *Registry) SetProcessedSchema(prefix, namespace string) {
	r.processed[prefix] = namespace
}

// PrefixForNamespace returns the prefix namespace is registered under.
// The XML Schema namespace is always registered under "xs".
func (r *Registry) PrefixForNamespace(namespace string) (string, bool) {
	if namespace == schemaNS {
		return SchemaPrefix, true
	}
	if r.byNamespace == nil || len(r.byNamespace) != len(r.processed) {
		r.byNamespace = make(map[string]string, len(r.processed))
		// When two prefixes share a namespace, the first in sorted
		// order wins.
		keys := ordered.Keys(r.processed)
		for i := len(keys) - 1; i >= 0; i-- {
			r.byNamespace[r.processed[keys[i]]] = keys[i]
		}
	}
	prefix, ok := r.byNamespace[namespace]
	return prefix, ok
}

// NamespaceForPrefix returns the namespace registered under prefix.
func (r *Registry) NamespaceForPrefix(prefix string) (string, bool) {
	if prefix == SchemaPrefix {
		return schemaNS, true
	}
	ns, ok := r.processed[prefix]
	return ns, ok
}

// NormalizePrefix replaces the prefix of a prefix:local name with the
// prefix its namespace was first registered under, if the two differ.
// A name whose prefix is registered is returned unchanged.
func (r *Registry) NormalizePrefix(name string) string {
	prefix, local := qname.SplitPrefixed(name)
	if prefix == "" {
		return name
	}
	if _, registered := r.processed[prefix]; registered || prefix == SchemaPrefix {
		return name
	}
	if canonical, ok := r.prefixMap[prefix]; ok {
		return canonical + ":" + local
	}
	return name
}

// QName converts a registry key to a qualified name, using the
// namespace registered under the key's prefix.
func (r *Registry) QName(key Key) (qname.Name, bool) {
	ns, ok := r.NamespaceForPrefix(key.Prefix())
	if !ok {
		return qname.Name{}, false
	}
	return qname.New(key.Prefix(), ns, key.Local()), true
}

// KeyOf converts a qualified name to a registry key, using the prefix
// its namespace is registered under.
func (r *Registry) KeyOf(n qname.Name) (Key, bool) {
	if n.Namespace() == "" {
		if prefix, ok := r.PrefixForNamespace(""); ok {
			return MakeKey(prefix, n.Local()), true
		}
		return "", false
	}
	prefix, ok := r.PrefixForNamespace(n.Namespace())
	if !ok {
		return "", false
	}
	return MakeKey(prefix, n.Local()), true
}

// Key normalizes a name given to a query method. Names may be in clark
// notation, prefixed with a registered prefix, or unprefixed, in which
// case they name a built-in type.
func (r *Registry) Key(name string) Key {
	if len(name) > 0 && name[0] == '{' {
		if k, ok := r.KeyOf(qname.ParseClark(name)); ok {
			return k
		}
		return Key(name)
	}
	if !isPrefixed(name) {
		return MakeKey(SchemaPrefix, name)
	}
	return Key(r.NormalizePrefix(name))
}
