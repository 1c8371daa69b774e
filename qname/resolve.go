package qname

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrefixNotFound is returned when a prefixed name uses a prefix
	// that no namespace declaration binds.
	ErrPrefixNotFound = errors.New("qname: prefix not found")
	// ErrInvalidName is returned for empty or structurally invalid input.
	ErrInvalidName = errors.New("qname: invalid name")
)

// A Resolver maps namespace prefixes to namespace URIs. The empty
// prefix names the default namespace. *xmltree.Element implements
// Resolver using the declarations in scope at that element.
type Resolver interface {
	LookupNamespace(prefix string) (string, bool)
}

// Namespaces is a Resolver backed by a prefix to namespace map. The
// xml prefix is always bound, whether or not the map declares it.
type Namespaces map[string]string

func (ns Namespaces) LookupNamespace(prefix string) (string, bool) {
	if uri, ok := ns[prefix]; ok && uri != "" {
		return uri, true
	}
	if prefix == XMLPrefix {
		return XMLNS, true
	}
	return "", false
}

// LookupPrefix returns the first prefix, in sorted order, bound to
// namespace. The default namespace is only returned if no named prefix
// is bound.
func (ns Namespaces) LookupPrefix(namespace string) (string, bool) {
	var (
		best  string
		found bool
	)
	for prefix, uri := range ns {
		if uri != namespace {
			continue
		}
		if !found || (best == "" && prefix != "") || (prefix != "" && prefix < best) {
			best, found = prefix, true
		}
	}
	return best, found
}

type options struct {
	noPrefixIsNoNamespace bool
}

// An Option alters how Resolve treats its input.
type Option func(*options)

// NoPrefixIsNoNamespace makes unprefixed names resolve to no namespace
// instead of the default namespace. This is the rule for attribute
// names.
func NoPrefixIsNoNamespace() Option {
	return func(o *options) { o.noPrefixIsNoNamespace = true }
}

// ParseClark parses {namespace}local or {namespace}prefix:local. Input
// that does not start with '{' is taken as a bare local name with no
// namespace.
func ParseClark(s string) Name {
	if !strings.HasPrefix(s, "{") {
		return New("", "", s)
	}
	end := strings.LastIndex(s, "}")
	if end < 0 {
		return New("", "", s)
	}
	prefix, local := splitPrefixed(s[end+1:])
	return New(prefix, s[1:end], local)
}

// Resolve converts value to a Name. Value may be in clark notation,
// in which case the namespace is taken from the braces and r is only
// consulted to recover a display prefix, or a possibly prefixed name
// whose prefix is looked up in r. The xml prefix always resolves.
//
// If the prefix of a prefixed name is not bound, Resolve returns an
// error wrapping ErrPrefixNotFound. An unprefixed name with no default
// namespace in r has no namespace.
func Resolve(value string, r Resolver, opts ...Option) (Name, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Name{}, ErrInvalidName
	}
	if value[0] == '{' {
		n := ParseClark(value)
		if n.prefix == "" && n.space != "" {
			if pl, ok := r.(interface {
				LookupPrefix(string) (string, bool)
			}); ok {
				if prefix, ok := pl.LookupPrefix(n.space); ok {
					n = n.WithPrefix(prefix)
				}
			}
		}
		return n, nil
	}

	prefix, local := splitPrefixed(value)
	if local == "" {
		return Name{}, fmt.Errorf("%w: %q", ErrInvalidName, value)
	}
	if prefix == "" && o.noPrefixIsNoNamespace {
		return New("", "", local), nil
	}
	var namespace string
	if r != nil {
		namespace, _ = r.LookupNamespace(prefix)
	}
	if namespace == "" && prefix == XMLPrefix {
		namespace = XMLNS
	}
	if namespace == "" && prefix != "" {
		return Name{}, fmt.Errorf("%w: %q in %q", ErrPrefixNotFound, prefix, value)
	}
	return New(prefix, namespace, local), nil
}

// MustResolve is like Resolve but panics on error. It is intended
// for names known at compile time.
func MustResolve(value string, r Resolver, opts ...Option) Name {
	n, err := Resolve(value, r, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// SplitPrefixed splits prefix:local. A name without a colon has an
// empty prefix.
func SplitPrefixed(name string) (prefix, local string) {
	return splitPrefixed(name)
}

func splitPrefixed(name string) (prefix, local string) {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
