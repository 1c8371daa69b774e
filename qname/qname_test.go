package qname

import (
	"errors"
	"sort"
	"testing"
)

func TestEqualIgnoresPrefix(t *testing.T) {
	a := New("a", "NS", "Foo")
	b := New("b", "NS", "Foo")
	if !a.Equal(b) {
		t.Errorf("%s (prefix %q) != %s (prefix %q), wanted equal", a, a.Prefix(), b, b.Prefix())
	}
	if a.Hash() != b.Hash() {
		t.Errorf("hash differs for names that differ only by prefix")
	}
	if a.Equal(New("a", "NS2", "Foo")) {
		t.Errorf("names in different namespaces compared equal")
	}
	if a.Equal(New("a", "NS", "Bar")) {
		t.Errorf("names with different local parts compared equal")
	}
}

func TestZeroValueEqual(t *testing.T) {
	var zero Name
	if !zero.Equal(New("", "", "")) {
		t.Error("zero Name not equal to New(\"\", \"\", \"\")")
	}
	if !zero.IsEmpty() || zero.IsValid() {
		t.Errorf("zero Name: IsEmpty=%v IsValid=%v, wanted true, false", zero.IsEmpty(), zero.IsValid())
	}
}

func TestValidEmpty(t *testing.T) {
	tests := [...]struct {
		name         Name
		valid, empty bool
	}{
		{New("", "", ""), false, true},
		{New("", "NS", ""), false, false},
		{New("", "", "a"), true, false},
		{New("p", "NS", "a"), true, false},
	}
	for _, tt := range tests {
		if got := tt.name.IsValid(); got != tt.valid {
			t.Errorf("%q IsValid() = %v, wanted %v", tt.name.Clark(), got, tt.valid)
		}
		if got := tt.name.IsEmpty(); got != tt.empty {
			t.Errorf("%q IsEmpty() = %v, wanted %v", tt.name.Clark(), got, tt.empty)
		}
	}
}

func TestOrdering(t *testing.T) {
	names := []Name{
		New("", "urn:b", "a"),
		New("", "urn:a", "z"),
		New("", "", "zz"),
		New("", "urn:a", "b"),
		New("", "", "aa"),
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
	want := []string{"aa", "zz", "{urn:a}b", "{urn:a}z", "{urn:b}a"}
	for i, n := range names {
		if n.Clark() != want[i] {
			t.Errorf("position %d: got %s, wanted %s", i, n.Clark(), want[i])
		}
	}

	a, b := New("", "", "x"), New("", "urn:x", "a")
	if !a.Less(b) || !b.Greater(a) || !a.LessOrEqual(a) || !a.GreaterOrEqual(a) {
		t.Error("absent namespace must sort before a present namespace")
	}
}

func TestClarkRoundTrip(t *testing.T) {
	for _, s := range []string{"{NS}Foo", "Foo", "{http://www.w3.org/2001/XMLSchema}string"} {
		n := ParseClark(s)
		if n.Clark() != s {
			t.Errorf("ParseClark(%q).Clark() = %q", s, n.Clark())
		}
		back := ParseClark(n.Clark())
		if !back.Equal(n) {
			t.Errorf("%q did not round-trip through clark notation", s)
		}
	}

	n := ParseClark("{NS}p:Foo")
	if n.Prefix() != "p" || n.Local() != "Foo" || n.Namespace() != "NS" {
		t.Errorf("ParseClark({NS}p:Foo) = (%q, %q, %q)", n.Prefix(), n.Namespace(), n.Local())
	}
}

func TestResolve(t *testing.T) {
	ns := Namespaces{
		"":   "urn:default",
		"xs": SchemaNS,
		"t":  "urn:t",
	}
	tests := [...]struct {
		value      string
		noPrefixNS bool
		space      string
		prefix     string
		local      string
		err        error
	}{
		{value: "xs:string", space: SchemaNS, prefix: "xs", local: "string"},
		{value: "t:foo", space: "urn:t", prefix: "t", local: "foo"},
		{value: "foo", space: "urn:default", local: "foo"},
		{value: "foo", noPrefixNS: true, space: "", local: "foo"},
		{value: "xml:lang", space: XMLNS, prefix: "xml", local: "lang"},
		{value: "{urn:t}foo", space: "urn:t", prefix: "t", local: "foo"},
		{value: "{urn:x}y:foo", space: "urn:x", prefix: "y", local: "foo"},
		{value: "missing:foo", err: ErrPrefixNotFound},
		{value: "", err: ErrInvalidName},
	}
	for _, tt := range tests {
		var opts []Option
		if tt.noPrefixNS {
			opts = append(opts, NoPrefixIsNoNamespace())
		}
		n, err := Resolve(tt.value, ns, opts...)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("Resolve(%q): got error %v, wanted %v", tt.value, err, tt.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.value, err)
			continue
		}
		if n.Namespace() != tt.space || n.Prefix() != tt.prefix || n.Local() != tt.local {
			t.Errorf("Resolve(%q) = (%q, %q, %q), wanted (%q, %q, %q)", tt.value,
				n.Prefix(), n.Namespace(), n.Local(), tt.prefix, tt.space, tt.local)
		}
	}
}

func TestResolveNilResolver(t *testing.T) {
	n, err := Resolve("xml:space", nil)
	if err != nil || n.Namespace() != XMLNS {
		t.Errorf("xml prefix must resolve without declarations, got %v %v", n, err)
	}
	if _, err := Resolve("p:x", nil); !errors.Is(err, ErrPrefixNotFound) {
		t.Errorf("got %v, wanted ErrPrefixNotFound", err)
	}
}

func TestMapRoundTrip(t *testing.T) {
	n := New("p", "urn:p", "local")
	back, err := FromMap(n.Map())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(n) || back.Prefix() != "p" {
		t.Errorf("got %#v, wanted %#v", back.Map(), n.Map())
	}
	if _, err := FromMap(map[string]string{"prefix": "p"}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("record without localname: got %v, wanted ErrInvalidName", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	n := New("p", "urn:p", "local")
	text, err := n.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Name
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(n) || back.Prefix() != n.Prefix() {
		t.Errorf("%s did not survive MarshalText/UnmarshalText, got %s (prefix %q)", n, back, back.Prefix())
	}
}
