package dependency

import (
	"fmt"
	"reflect"
	"testing"
)

var flattenTests = [...]struct {
	edges   []string
	ordered []string
}{
	{
		edges: []string{
			"orders.xsd -> common.xsd",
			"common.xsd -> units.xsd",
			"invoice.xsd -> orders.xsd",
			"invoice.xsd -> party.xsd",
			"party.xsd -> common.xsd",
		},
		ordered: []string{
			"units.xsd",
			"common.xsd",
			"orders.xsd",
			"party.xsd",
			"invoice.xsd",
		},
	},
	{
		// Order shouldn't matter
		edges: []string{
			"party.xsd -> common.xsd",
			"invoice.xsd -> party.xsd",
			"common.xsd -> units.xsd",
			"invoice.xsd -> orders.xsd",
			"orders.xsd -> common.xsd",
		},
		ordered: []string{
			"units.xsd",
			"common.xsd",
			"orders.xsd",
			"party.xsd",
			"invoice.xsd",
		},
	},
	{
		// Import cycles are not followed
		edges: []string{
			"a.xsd -> b.xsd",
			"b.xsd -> c.xsd",
			"c.xsd -> a.xsd",
			"d.xsd -> c.xsd",
		},
		ordered: []string{
			"c.xsd",
			"b.xsd",
			"a.xsd",
			"d.xsd",
		},
	},
}

func TestFlatten(t *testing.T) {
	for _, tt := range flattenTests {
		var graph Graph
		for _, edge := range tt.edges {
			var target string
			var dep string
			if _, err := fmt.Sscanf(edge, "%s -> %s", &target, &dep); err != nil {
				panic("bad test edge " + edge)
			}
			graph.Add(target, dep)
		}
		var got []string
		graph.Flatten(func(vertex string) {
			got = append(got, vertex)
		})
		if !reflect.DeepEqual(got, tt.ordered) {
			t.Errorf("got %q, wanted %q", got, tt.ordered)
		}
	}
}

func TestIsolatedVertex(t *testing.T) {
	var graph Graph
	graph.Add("standalone.xsd")
	graph.Add("b.xsd", "a.xsd")
	if graph.Len() != 2 {
		t.Errorf("Len() = %d, wanted 2", graph.Len())
	}
	var got []string
	graph.Flatten(func(v string) { got = append(got, v) })
	want := []string{"a.xsd", "b.xsd", "standalone.xsd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, wanted %q", got, want)
	}
	if deps := graph.Dependencies("b.xsd"); !reflect.DeepEqual(deps, []string{"a.xsd"}) {
		t.Errorf("Dependencies(b.xsd) = %q", deps)
	}
	graph.Reset()
	if graph.Len() != 0 {
		t.Errorf("Len() after Reset = %d", graph.Len())
	}
}
