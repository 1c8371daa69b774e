package xmltree

import (
	"encoding/xml"
	"testing"
)

var orderSchema = []byte(`<?xml version="1.0" encoding="utf-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
    xmlns="urn:orders" xmlns:ord="urn:orders" xmlns:cmn="urn:common"
    targetNamespace="urn:orders" elementFormDefault="qualified">
  <xs:import namespace="urn:common" schemaLocation="common.xsd"/>
  <xs:element name="order" type="ord:OrderType"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="id" type="xs:string" minOccurs=""/>
      <xs:element name="total" type="cmn:Money"/>
    </xs:sequence>
    <xs:attribute name="status" type="StatusType"/>
  </xs:complexType>
  <xs:simpleType name="StatusType" xmlns="urn:override">
    <xs:annotation><xs:documentation>Order <b>status</b> code.</xs:documentation></xs:annotation>
    <xs:restriction base="xs:token">
      <xs:enumeration value="open"/>
      <xs:enumeration value="closed"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`)

const xsdNS = "http://www.w3.org/2001/XMLSchema"

func parseDoc(t *testing.T, document []byte) *Element {
	root, err := Parse(document)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestSearch(t *testing.T) {
	root := parseDoc(t, orderSchema)

	if result := root.Search(xsdNS, "enumeration"); len(result) != 2 {
		t.Errorf("Search(%q, \"enumeration\") returned %d results, wanted 2", xsdNS, len(result))
	}
	// matches are not descended into
	if result := root.Search("", "element"); len(result) != 3 {
		t.Errorf("Search(\"\", \"element\") returned %d results, wanted 3", len(result))
	}
}

func TestNSResolution(t *testing.T) {
	root := parseDoc(t, orderSchema)

	for _, prefix := range []string{"xs", "ord", "cmn", "xml"} {
		if _, ok := root.ResolveNS(prefix + ":foo"); !ok {
			t.Errorf("Failed to resolve %s: prefix at <%s>", prefix, root.Name.Local)
		}
	}
	if name, ok := root.ResolveNS("nope:foo"); ok || name.Space != "nope" {
		t.Errorf("ResolveNS(nope:foo) = %v, %v; wanted unresolved prefix in Space", name, ok)
	}

	simple := root.SearchFunc(func(el *Element) bool {
		return el.Name == xml.Name{Space: xsdNS, Local: "simpleType"}
	})[0]
	if name := simple.Resolve("foo"); name.Space != "urn:override" {
		t.Errorf("Resolve default namespace at <%s name=%q>: wanted %q, got %q",
			simple.Prefix(simple.Name), simple.Attr("", "name"), "urn:override", name.Space)
	}
	if name := root.Resolve("foo"); name.Space != "urn:orders" {
		t.Errorf("Resolve default namespace at root: got %q", name.Space)
	}
	if name := simple.ResolveDefault("foo", "urn:forced"); name.Space != "urn:forced" {
		t.Errorf("ResolveDefault: got %q", name.Space)
	}
}

func TestLookupNamespace(t *testing.T) {
	root := parseDoc(t, []byte(`<a xmlns:p="urn:p"><b xmlns:p=""><c/></b></a>`))
	c := &root.Children[0].Children[0]
	if ns, ok := root.LookupNamespace("p"); !ok || ns != "urn:p" {
		t.Errorf("LookupNamespace(p) at <a> = %q, %v", ns, ok)
	}
	if ns, ok := c.LookupNamespace("p"); ok {
		t.Errorf("undeclared prefix p resolved to %q at <c>", ns)
	}
	if _, ok := c.LookupNamespace(""); ok {
		t.Error("no default namespace is declared, but one was found")
	}
}

func TestPrefixFor(t *testing.T) {
	root := parseDoc(t, orderSchema)
	tests := [...]struct {
		space, want string
		ok          bool
	}{
		{xsdNS, "xs", true},
		{"urn:common", "cmn", true},
		{"urn:missing", "", false},
	}
	for _, tt := range tests {
		got, ok := root.PrefixFor(tt.space)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PrefixFor(%q) = %q, %v; wanted %q, %v", tt.space, got, ok, tt.want, tt.ok)
		}
	}
	if got := root.Prefix(xml.Name{Space: "urn:common", Local: "Money"}); got != "cmn:Money" {
		t.Errorf("Prefix(urn:common Money) = %q", got)
	}
}

func TestLookupAttr(t *testing.T) {
	root := parseDoc(t, orderSchema)
	id := root.Search(xsdNS, "element")[1]
	if v, ok := id.LookupAttr("", "minOccurs"); !ok || v != "" {
		t.Errorf("LookupAttr(minOccurs) = %q, %v; wanted empty but present", v, ok)
	}
	if _, ok := id.LookupAttr("", "maxOccurs"); ok {
		t.Error("maxOccurs reported present")
	}
	for _, a := range root.Attrs() {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			t.Errorf("Attrs returned namespace declaration %v", a.Name)
		}
	}
	id.SetAttr("", "maxOccurs", "3")
	if v := id.Attr("", "maxOccurs"); v != "3" {
		t.Errorf("SetAttr did not add attribute, got %q", v)
	}
}

func TestNamespaces(t *testing.T) {
	root := parseDoc(t, orderSchema)
	ns := root.Namespaces()
	want := map[string]string{"xs": xsdNS, "": "urn:orders", "ord": "urn:orders", "cmn": "urn:common"}
	for prefix, uri := range want {
		if ns[prefix] != uri {
			t.Errorf("Namespaces()[%q] = %q, wanted %q", prefix, ns[prefix], uri)
		}
	}
}

func TestText(t *testing.T) {
	root := parseDoc(t, orderSchema)
	doc := root.Search(xsdNS, "documentation")[0]
	if got := doc.Text(); got != "Order status code." {
		t.Errorf("Text() = %q", got)
	}
}

func TestParseCharset(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<r name=\"caf\xe9\"/>")
	root := parseDoc(t, doc)
	if got := root.Attr("", "name"); got != "café" {
		t.Errorf("latin-1 attribute decoded to %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		`<a><b></a>`,
		`<a>`,
		``,
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("Parse(%q) succeeded, wanted error", doc)
		}
	}
}
