package xsd

import (
	"fmt"

	"github.com/CognitoIQ/xsdtypes/qname"
)

// A Builtin represents one of the built-in xml schema types, as
// defined in the W3C specification, "XML Schema Part 2: Datatypes",
// along with a few names the XPath 2.0 data model adds to the lattice.
//
// http://www.w3.org/TR/xmlschema-2/#built-in-datatypes
type Builtin int

const (
	AnyType Builtin = iota
	AnySimpleType
	String
	Boolean
	Decimal
	Double
	Float
	Duration
	DateTime
	Time
	Date
	GYearMonth
	GYear
	GMonthDay // ISO 8601 format: --MM-DD
	GDay
	GMonth
	HexBinary
	Base64Binary
	AnyURI
	QName
	NOTATION
	NormalizedString
	Token
	Name
	NCName
	NMTOKEN
	NMTOKENS
	Language
	ID
	IDREF
	ENTITY
	IDREFS
	ENTITIES
	Integer
	NonPositiveInteger
	Long
	NonNegativeInteger
	NegativeInteger
	Int
	Short
	Byte
	PositiveInteger
	UnsignedLong
	UnsignedInt
	UnsignedShort
	UnsignedByte
	AnyComplexType
	UntypedAtomic
	// UNION is the parent given to union types that need one in
	// order to take part in derivation queries.
	UNION
	YearMonthDuration
	DayTimeDuration

	numBuiltins
)

var builtinNames = [numBuiltins]string{
	"anyType", "anySimpleType", "string", "boolean", "decimal", "double", "float",
	"duration", "dateTime", "time", "date", "gYearMonth", "gYear", "gMonthDay",
	"gDay", "gMonth", "hexBinary", "base64Binary", "anyURI", "QName", "NOTATION",
	"normalizedString", "token", "Name", "NCName", "NMTOKEN", "NMTOKENS", "language",
	"ID", "IDREF", "ENTITY", "IDREFS", "ENTITIES", "integer", "nonPositiveInteger",
	"long", "nonNegativeInteger", "negativeInteger", "int", "short", "byte",
	"positiveInteger", "unsignedLong", "unsignedInt", "unsignedShort", "unsignedByte",
	"anyComplexType", "untypedAtomic", "UNION", "yearMonthDuration", "dayTimeDuration",
}

// The ancestor of each built-in. The table follows the derivation
// hierarchy of the datatypes recommendation, except that list types
// derive from their item types.
var builtinParents = [numBuiltins]Builtin{
	AnyType:            -1,
	AnySimpleType:      AnyType,
	String:             AnySimpleType,
	Boolean:            AnySimpleType,
	Decimal:            AnySimpleType,
	Double:             AnySimpleType,
	Float:              AnySimpleType,
	Duration:           AnySimpleType,
	DateTime:           AnySimpleType,
	Time:               AnySimpleType,
	Date:               AnySimpleType,
	GYearMonth:         AnySimpleType,
	GYear:              AnySimpleType,
	GMonthDay:          AnySimpleType,
	GDay:               AnySimpleType,
	GMonth:             AnySimpleType,
	HexBinary:          AnySimpleType,
	Base64Binary:       AnySimpleType,
	AnyURI:             AnySimpleType,
	QName:              AnySimpleType,
	NOTATION:           AnySimpleType,
	NormalizedString:   String,
	Token:              NormalizedString,
	Name:               Token,
	NCName:             Name,
	NMTOKEN:            Token,
	NMTOKENS:           NMTOKEN,
	Language:           Token,
	ID:                 NCName,
	IDREF:              NCName,
	ENTITY:             NCName,
	IDREFS:             IDREF,
	ENTITIES:           ENTITY,
	Integer:            Decimal,
	NonPositiveInteger: Integer,
	Long:               Integer,
	NonNegativeInteger: Integer,
	NegativeInteger:    NonPositiveInteger,
	Int:                Long,
	Short:              Int,
	Byte:               Short,
	PositiveInteger:    NonNegativeInteger,
	UnsignedLong:       NonNegativeInteger,
	UnsignedInt:        UnsignedLong,
	UnsignedShort:      UnsignedInt,
	UnsignedByte:       UnsignedShort,
	AnyComplexType:     AnyType,
	UntypedAtomic:      AnySimpleType,
	UNION:              AnySimpleType,
	YearMonthDuration:  Duration,
	DayTimeDuration:    Duration,
}

func (b Builtin) valid() bool { return b >= 0 && b < numBuiltins }

// String returns the local name of the built-in type.
func (b Builtin) String() string {
	if !b.valid() {
		return fmt.Sprintf("Builtin(%d)", int(b))
	}
	return builtinNames[b]
}

// Name returns the canonical name of the built-in type. All built-in
// types are in the standard XML schema namespace,
// http://www.w3.org/2001/XMLSchema.
func (b Builtin) Name() qname.Name {
	return qname.New(SchemaPrefix, schemaNS, b.String())
}

// Key returns the registry key of the built-in type.
func (b Builtin) Key() Key {
	return MakeKey(SchemaPrefix, b.String())
}

// Parent returns the built-in type b is derived from. The second
// return value is false for xs:anyType, the root of the hierarchy.
func (b Builtin) Parent() (Builtin, bool) {
	if !b.valid() || b == AnyType {
		return -1, false
	}
	return builtinParents[b], true
}

// Numeric reports whether b is xs:decimal, xs:double, xs:float or is
// derived from one of them.
func (b Builtin) Numeric() bool {
	for t, ok := b, true; ok; t, ok = t.Parent() {
		switch t {
		case Decimal, Double, Float:
			return true
		}
	}
	return false
}

// ParseBuiltin looks up a Builtin by its local name. If local does not
// name a built-in type, ParseBuiltin returns a non-nil error.
func ParseBuiltin(local string) (Builtin, error) {
	for i := AnyType; i < numBuiltins; i++ {
		if builtinNames[i] == local {
			return i, nil
		}
	}
	return -1, fmt.Errorf("xs:%s is not a built-in", local)
}

// builtinTypes returns the registry entries of the built-in types.
func builtinTypes() map[Key]*Type {
	types := make(map[Key]*Type, numBuiltins)
	for b := AnyType; b < numBuiltins; b++ {
		t := &Type{
			Name:    b.String(),
			Prefix:  SchemaPrefix,
			Numeric: b.Numeric(),
		}
		if p, ok := b.Parent(); ok {
			t.Parent = p.Key()
		}
		types[b.Key()] = t
	}
	return types
}
