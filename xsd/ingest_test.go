package xsd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xsdtypes/internal/testutil"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func readTestdata(name string) ([]byte, error) {
	return os.ReadFile(testdata(name))
}

// load ingests a schema from the testdata directory, failing the test
// on a hard error.
func load(t *testing.T, r *Registry, name string, includeElements bool) Diagnostics {
	t.Helper()
	diags, err := r.ProcessSchema(context.Background(), testdata(name), includeElements)
	require.NoError(t, err)
	return diags
}

func TestProcessSchema(t *testing.T) {
	r := New()
	diags := load(t, r, "numeric.xsd", false)
	assert.Empty(t, diags)

	prefix, ok := r.PrefixForNamespace("urn:example:numeric")
	require.True(t, ok)
	assert.Equal(t, "num", prefix)
	assert.True(t, r.HasProcessedSchema("num"))

	price, ok := r.Type("num:price")
	require.True(t, ok)
	assert.Equal(t, Key("xs:decimal"), price.Parent)
	assert.Equal(t, Simple, price.Class)
	assert.Equal(t, Restriction, price.ContentType)
	assert.True(t, price.Numeric)
	require.NotNil(t, price.Facets)
	assert.Equal(t, "0", price.Facets.MinInclusive)
	assert.Equal(t, "2", price.Facets.FractionDigits)

	label, ok := r.Type("num:label")
	require.True(t, ok)
	assert.False(t, label.Numeric)
	require.NotNil(t, label.Facets)
	assert.Equal(t, "32", label.Facets.MaxLength)
	assert.Equal(t, []string{"[a-z]+"}, label.Facets.Patterns)
	require.Len(t, label.Facets.Enumerations, 2)
	assert.Equal(t, "red", label.Facets.Enumerations[0].Value)
	assert.Equal(t, "green", label.Facets.Enumerations[1].Value)
	assert.Empty(t, label.Facets.Enumerations[1].Type)

	codes, ok := r.Type("num:codes")
	require.True(t, ok)
	assert.Equal(t, List, codes.Variety)
	assert.Equal(t, AnySimpleType.Key(), codes.Parent)
	require.NotNil(t, codes.ItemType)
	assert.Equal(t, Key("xs:token"), codes.ItemType.Ref)
}

func TestForwardBaseIsNumeric(t *testing.T) {
	r := New()
	load(t, r, "numeric.xsd", false)

	quantity, ok := r.Type("num:quantity")
	require.True(t, ok)
	assert.Equal(t, Key("num:count"), quantity.Parent)
	assert.True(t, quantity.Numeric, "numeric flag of a type declared before its base")
}

func TestComplexSimpleContent(t *testing.T) {
	r := New()
	load(t, r, "numeric.xsd", false)

	amount, ok := r.Type("num:amount")
	require.True(t, ok)
	assert.Equal(t, Simple, amount.Class)
	assert.Equal(t, Extension, amount.ContentType)
	assert.Equal(t, Key("num:price"), amount.Parent)
	assert.True(t, amount.Numeric)
	require.Len(t, amount.Attributes, 1)
	assert.Equal(t, "currency", amount.Attributes[0].Name)
	assert.Equal(t, Required, amount.Attributes[0].Use)
	assert.Equal(t, []Key{"num:common"}, amount.AttributeGroups)

	// local attributes are registered globally, with a type of their own
	assert.True(t, r.HasAttribute("num:currency"))
	currency, ok := r.Type("num:currency")
	require.True(t, ok)
	assert.Equal(t, AttributeContent, currency.ContentType)
	assert.Equal(t, Key("xs:string"), currency.Parent)
}

func TestAttributeGroups(t *testing.T) {
	r := New()
	load(t, r, "numeric.xsd", false)

	common, ok := r.AttributeGroup("num:common")
	require.True(t, ok)
	var names []string
	for _, a := range common.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"unit", "lang", "note"}, names)
	assert.True(t, common.AnyAttribute, "merged from a referenced group")

	// the reference carries its own use; the global declaration does not
	assert.Equal(t, Required, common.Attributes[0].Use)
	unit, group, ok := r.Attribute("num:unit")
	require.True(t, ok)
	assert.Nil(t, group)
	assert.Equal(t, Optional, unit.Use)

	a, group, ok := r.Attribute("num:common")
	require.True(t, ok, "attribute lookup falls back to attribute groups")
	assert.Nil(t, a)
	assert.Same(t, common, group)
	assert.False(t, r.HasAttribute("num:common"))
}

func TestAttributeTypes(t *testing.T) {
	r := New()
	load(t, r, "numeric.xsd", false)

	scale, ok := r.Type("num:scale")
	require.True(t, ok)
	assert.Equal(t, Key("xs:double"), scale.Parent, "parent taken from the anonymous type's base")
	assert.True(t, scale.Numeric)

	unit, ok := r.Type("num:unit")
	require.True(t, ok)
	assert.Equal(t, Key("xs:token"), unit.Parent)
}

func TestReingestIsNoop(t *testing.T) {
	r := New()
	load(t, r, "numeric.xsd", false)
	before := r.Stats()
	snapshot := r.ToSnapshot()

	diags, err := r.ProcessSchema(context.Background(), testdata("numeric.xsd"), false)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, before, r.Stats())
	assert.Equal(t, snapshot.ProcessedSchemas, r.ProcessedSchemas())
}

func TestSelfReference(t *testing.T) {
	r := New()
	diags := load(t, r, "tree.xsd", true)
	assert.Empty(t, diags)

	node, ok := r.Element("t:node")
	require.True(t, ok)
	assert.True(t, node.Global)
	require.Len(t, node.Types, 1)
	assert.Equal(t, Key("t:nodeType"), node.Types[0].Ref)

	nodeType, ok := r.Type("t:nodeType")
	require.True(t, ok)
	require.NotNil(t, nodeType.Content)
	particles := nodeType.Content.Particles
	require.Len(t, particles, 3)
	assert.Equal(t, "label", particles[0].Element.Name)
	assert.Equal(t, Key("t:node"), particles[1].Ref)
	assert.Equal(t, Key("t:meta"), particles[2].Group)

	nested, ok := r.ResolveParticle(particles[1])
	require.True(t, ok)
	assert.Equal(t, node.Key(), nested.Key())
	assert.Equal(t, node.Types, nested.Types)
	assert.Equal(t, "0", nested.MinOccurs)
	assert.Equal(t, "unbounded", nested.MaxOccurs)
	assert.Empty(t, node.MinOccurs, "global declaration is not annotated")

	// an element whose anonymous type refers to the element itself
	folder, ok := r.Element("t:folder")
	require.True(t, ok)
	require.Len(t, folder.Types, 1)
	inline := folder.Types[0].Inline
	require.NotNil(t, inline)
	assert.Equal(t, Complex, inline.Class)
	require.NotNil(t, inline.Content)
	assert.Equal(t, Key("t:folder"), inline.Content.Particles[0].Ref)
}

func TestForwardGroupReference(t *testing.T) {
	r := New()
	load(t, r, "tree.xsd", true)

	meta, ok := r.Group("t:meta")
	require.True(t, ok)
	assert.True(t, meta.Abstract)
	require.NotNil(t, meta.Model)
	assert.Equal(t, Sequence, meta.Model.Compositor)

	weight, ok := r.Element("t:weight")
	require.True(t, ok, "element built by lookahead from inside a group")
	assert.True(t, weight.Global)
	require.Len(t, weight.Types, 1)
	assert.Equal(t, Key("xs:float"), weight.Types[0].Key())

	nodeType, _ := r.Type("t:nodeType")
	g, ok := r.ResolveGroup(nodeType.Content.Particles[2])
	require.True(t, ok)
	assert.Equal(t, "0", g.MinOccurs)
	assert.Empty(t, meta.MinOccurs)
}

func TestElementsOptional(t *testing.T) {
	r := New()
	load(t, r, "tree.xsd", false)

	assert.True(t, r.HasType("t:nodeType"))
	assert.False(t, r.HasElement("t:leaf"), "top-level elements are skipped")
	assert.True(t, r.HasElement("t:node"), "referenced elements are still built")
}

func TestPrefixNormalization(t *testing.T) {
	r := New()
	diags := load(t, r, "app.xsd", false)
	assert.Empty(t, diags)

	prefix, ok := r.PrefixForNamespace("urn:example:common")
	require.True(t, ok)
	assert.Equal(t, "c", prefix)

	appCode, ok := r.Type("app:appCode")
	require.True(t, ok)
	assert.Equal(t, Key("c:code"), appCode.Parent)
	assert.Equal(t, "c:code", r.NormalizePrefix("cmn:code"))
	assert.Equal(t, Key("c:code"), r.Key("cmn:code"))
	assert.Equal(t, Key("xs:token"), r.Key("xsd:token"))
	assert.Equal(t, Key("c:code"), r.Key("{urn:example:common}code"))

	code, ok := r.Type("c:code")
	require.True(t, ok)
	assert.Equal(t, Key("xs:token"), code.Parent, "schema prefix of the document mapped to xs")

	order, ok := r.Type("app:order")
	require.True(t, ok)
	assert.Equal(t, Key("c:code"), order.Content.Particles[0].Element.Types[0].Ref)
}

func TestRegisteredPrefixNotRemapped(t *testing.T) {
	r := New()
	assert.Empty(t, load(t, r, "rebind-alpha.xsd", false))
	assert.Empty(t, load(t, r, "rebind.xsd", false))

	prefix, ok := r.PrefixForNamespace("urn:example:gamma")
	require.True(t, ok)
	assert.Equal(t, "c", prefix)

	assert.Equal(t, Key("a:t"), r.Key("a:t"))
	assert.True(t, r.HasType("a:t"))
	assert.True(t, r.IsNumeric("a:t"))
	assert.True(t, r.ResolvesToBaseType("a:t", []string{"xs:int"}, false))
	atomic, ok := r.AtomicType("a:t")
	require.True(t, ok)
	assert.Equal(t, Key("xs:int"), atomic)
	assert.Equal(t, Key("xs:int"), r.Key("xs:int"))

	// the document's own bindings still resolve to the namespace it meant
	w, ok := r.Type("r:w")
	require.True(t, ok)
	assert.Equal(t, Key("c:u"), w.Parent)
	z, ok := r.Type("r:z")
	require.True(t, ok)
	assert.Equal(t, Key("c:u"), z.Parent)
}

func TestImportCycle(t *testing.T) {
	r := New()
	diags := load(t, r, "cycle-a.xsd", false)
	assert.Empty(t, diags)

	alpha, ok := r.Type("a:alpha")
	require.True(t, ok)
	assert.Equal(t, Key("b:beta"), alpha.Parent)
	assert.True(t, alpha.Numeric)

	order := r.IngestionOrder()
	assert.Equal(t, []string{testdata("cycle-b.xsd"), testdata("cycle-a.xsd")}, order)
}

func TestInclude(t *testing.T) {
	r := New()
	diags := load(t, r, "main.xsd", false)
	assert.Empty(t, diags)

	for _, name := range []string{"i:partCode", "i:partRef", "i:useCode"} {
		assert.True(t, r.HasType(name), name)
	}
	partRef, _ := r.Type("i:partRef")
	assert.Equal(t, Key("i:partCode"), partRef.Parent)
	atomic, ok := r.AtomicType("i:useCode")
	require.True(t, ok)
	assert.Equal(t, Key("xs:string"), atomic)
	assert.Contains(t, r.IngestionOrder(), testdata("parts/part.xsd"))
}

func TestGeneratedPrefix(t *testing.T) {
	r := New(WithPrefixGenerator(func() string { return "anon" }))
	load(t, r, "anonymous.xsd", false)

	prefix, ok := r.PrefixForNamespace("urn:example:anonymous")
	require.True(t, ok)
	assert.Equal(t, "anon", prefix)
	flag, ok := r.Type("anon:flag")
	require.True(t, ok)
	assert.Equal(t, Key("xs:boolean"), flag.Parent, "default namespace bound to XML Schema")
}

func TestPrefixCollision(t *testing.T) {
	r := New(WithPrefixGenerator(func() string { return "other" }))
	r.SetProcessedSchema("num", "urn:example:elsewhere")
	load(t, r, "numeric.xsd", false)

	prefix, ok := r.PrefixForNamespace("urn:example:numeric")
	require.True(t, ok)
	assert.Equal(t, "other", prefix)
	assert.True(t, r.HasType("other:price"))
	assert.True(t, r.IsNumeric("other:quantity"))
}

func TestDiagnostics(t *testing.T) {
	r := New()
	diags := load(t, r, "broken.xsd", false)

	assert.True(t, r.HasType("b:good"), "declarations after a failure are processed")
	ghost, ok := r.Type("b:ghost")
	require.True(t, ok, "registered despite its unknown base")
	assert.Equal(t, Key("b:phantom"), ghost.Parent)
	_, err := r.AtomicTypeErr("b:ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	imports := diags.Filter(UnreadableImport)
	require.Len(t, imports, 1)
	assert.Equal(t, testdata("does-not-exist.xsd"), imports[0].Name)
	assert.ErrorIs(t, imports[0], ErrImport)

	missing := diags.Filter(MissingNamespace)
	require.Len(t, missing, 1)
	assert.Equal(t, "missing:thing", missing[0].Name)
	assert.Equal(t, "complexType(badPrefix)>element(thing)", missing[0].Path)

	unresolved := diags.Filter(UnresolvedReference)
	assert.ElementsMatch(t, []string{"b:nowhere", "b:phantom"}, unresolved.Names())
	for _, d := range unresolved {
		assert.ErrorIs(t, d, ErrUnresolvedReference)
		assert.Equal(t, testdata("broken.xsd"), d.Location)
	}

	invalid := diags.Filter(InvalidDeclaration)
	require.Len(t, invalid, 1)
	assert.Equal(t, "simpleType", invalid[0].Path)

	unsupported := diags.Filter(UnsupportedNode)
	require.Len(t, unsupported, 1)
	assert.Equal(t, "notation", unsupported[0].Name)

	err = diags.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedNode))
	assert.Nil(t, Diagnostics(nil).Err())
}

func TestParseFailure(t *testing.T) {
	r := New()
	before := r.ToSnapshot()

	_, err := r.ProcessSchema(context.Background(), testdata("malformed.xsd"), false)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, before, r.ToSnapshot(), "nothing registered")

	_, err = r.ProcessSchema(context.Background(), testdata("absent.xsd"), false)
	assert.Error(t, err)
	assert.Empty(t, r.ProcessedSchemas())
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ProcessSchema(ctx, testdata("numeric.xsd"), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteSchema(t *testing.T) {
	pages := make(map[string][]byte)
	for _, name := range []string{"app.xsd", "common.xsd"} {
		data, err := readTestdata(name)
		require.NoError(t, err)
		pages["http://schemas.example.com/v1/"+name] = data
	}
	r := New(WithHTTPClient(testutil.FakeClient(pages)))
	diags, err := r.ProcessSchema(context.Background(), "http://schemas.example.com/v1/app.xsd", false)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.True(t, r.HasType("c:code"))
	assert.True(t, r.ResolvesToBaseType("app:appCode", []string{"xs:token"}, false))

	_, err = r.ProcessSchema(context.Background(), "http://schemas.example.com/v1/missing.xsd", false)
	assert.Error(t, err)
}

func TestWithLoader(t *testing.T) {
	var loaded []string
	fs := NewLoader(nil)
	r := New(WithLoader(LoaderFunc(func(ctx context.Context, loc string) ([]byte, error) {
		loaded = append(loaded, loc)
		return fs.Load(ctx, loc)
	})))
	load(t, r, "app.xsd", false)
	assert.Equal(t, []string{testdata("app.xsd"), testdata("common.xsd")}, loaded)
}
