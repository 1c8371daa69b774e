// Package qname implements qualified XML names.
//
// A Name is a namespace URI and a local name, optionally carrying the
// prefix it was written with. The prefix is kept for display only; two
// Names are the same name when their namespaces and local names match.
//
// The package also converts lexical forms into Names: prefixed names
// ("xs:string"), clark notation ("{http://www.w3.org/2001/XMLSchema}string")
// and structured records, resolving prefixes through any source of
// namespace declarations.
package qname // import "github.com/CognitoIQ/xsdtypes/qname"

import (
	"encoding/xml"
	"strings"

	"github.com/zeebo/blake3"
)

// Well-known namespaces and the prefixes conventionally bound to them.
const (
	SchemaNS         = "http://www.w3.org/2001/XMLSchema"
	SchemaInstanceNS = "http://www.w3.org/2001/XMLSchema-instance"
	XMLNS            = "http://www.w3.org/XML/1998/namespace"

	SchemaPrefix            = "xs"
	SchemaPrefixAlternative = "xsd"
	SchemaInstancePrefix    = "xsi"
	XMLPrefix               = "xml"
)

// A Name is an immutable qualified name. The zero value is the empty
// name. Names should be compared with Equal rather than ==, since ==
// also compares the display prefix.
type Name struct {
	prefix string
	space  string
	local  string
	hash   [32]byte
}

// New creates a Name. The content hash of (namespace, local) is
// computed once here.
func New(prefix, namespace, local string) Name {
	return Name{
		prefix: prefix,
		space:  namespace,
		local:  local,
		hash:   contentHash(namespace, local),
	}
}

// FromNSLocal creates a Name without a prefix. The local name is used
// verbatim; it is not split on ':'.
func FromNSLocal(namespace, local string) Name {
	return New("", namespace, local)
}

// FromXMLName converts an encoding/xml name.
func FromXMLName(name xml.Name) Name {
	return New("", name.Space, name.Local)
}

func contentHash(namespace, local string) [32]byte {
	h := blake3.New()
	h.WriteString(namespace)
	h.Write([]byte{0})
	h.WriteString(local)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Prefix returns the display prefix, which may be empty.
func (n Name) Prefix() string { return n.prefix }

// Namespace returns the namespace URI, which may be empty.
func (n Name) Namespace() string { return n.space }

// Local returns the local part of the name.
func (n Name) Local() string { return n.local }

// Hash returns the content hash of the namespace and local name.
func (n Name) Hash() [32]byte {
	if n.hash == ([32]byte{}) {
		return contentHash(n.space, n.local)
	}
	return n.hash
}

// XMLName converts n to an encoding/xml name, dropping the prefix.
func (n Name) XMLName() xml.Name {
	return xml.Name{Space: n.space, Local: n.local}
}

// WithPrefix returns a copy of n displayed with a different prefix.
func (n Name) WithPrefix(prefix string) Name {
	n.prefix = prefix
	return n
}

// Equal reports whether n and other have the same namespace and local
// name. Prefixes are ignored.
func (n Name) Equal(other Name) bool {
	if n.Hash() == other.Hash() {
		return true
	}
	return n.local == other.local && n.space == other.space
}

// Compare orders names. A name without a namespace sorts before any
// name with one; otherwise namespaces are compared, then local names.
func Compare(a, b Name) int {
	switch {
	case a.space == b.space:
		return strings.Compare(a.local, b.local)
	case a.space == "":
		return -1
	case b.space == "":
		return 1
	}
	return strings.Compare(a.space, b.space)
}

func (n Name) Less(other Name) bool           { return Compare(n, other) < 0 }
func (n Name) LessOrEqual(other Name) bool    { return Compare(n, other) <= 0 }
func (n Name) Greater(other Name) bool        { return Compare(n, other) > 0 }
func (n Name) GreaterOrEqual(other Name) bool { return Compare(n, other) >= 0 }

// IsValid reports whether the name has a local part. A namespace on
// its own does not make a valid name.
func (n Name) IsValid() bool { return n.local != "" }

// IsEmpty reports whether both the namespace and the local name are
// empty.
func (n Name) IsEmpty() bool { return n.local == "" && n.space == "" }

// Clark returns the name in clark notation, {namespace}local. Names
// without a namespace are returned as the bare local name.
func (n Name) Clark() string {
	if n.space == "" {
		return n.local
	}
	return "{" + n.space + "}" + n.local
}

func (n Name) String() string { return n.Clark() }

// Key returns the name in prefix:local form, or the local name when
// there is no prefix.
func (n Name) Key() string {
	if n.prefix == "" {
		return n.local
	}
	return n.prefix + ":" + n.local
}

// Map returns the structured record form of a Name. The localname
// entry is always present; prefix and namespace only when set.
func (n Name) Map() map[string]string {
	m := map[string]string{"localname": n.local}
	if n.prefix != "" {
		m["prefix"] = n.prefix
	}
	if n.space != "" {
		m["namespace"] = n.space
	}
	return m
}

// FromMap is the inverse of Map. It returns ErrInvalidName if the
// record has no localname entry.
func FromMap(m map[string]string) (Name, error) {
	local, ok := m["localname"]
	if !ok {
		return Name{}, ErrInvalidName
	}
	return New(m["prefix"], m["namespace"], local), nil
}

// MarshalText encodes the name in clark notation, keeping the prefix
// on the local part so it survives a round trip.
func (n Name) MarshalText() ([]byte, error) {
	if n.space == "" {
		return []byte(n.local), nil
	}
	local := n.local
	if n.prefix != "" {
		local = n.prefix + ":" + local
	}
	return []byte("{" + n.space + "}" + local), nil
}

func (n *Name) UnmarshalText(text []byte) error {
	*n = ParseClark(string(text))
	return nil
}
