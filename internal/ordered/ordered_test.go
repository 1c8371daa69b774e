package ordered

import (
	"reflect"
	"testing"
)

type key string

func TestKeys(t *testing.T) {
	m := map[key]int{"xs:string": 1, "a:b": 2, "xs:anyType": 3}
	want := []key{"a:b", "xs:anyType", "xs:string"}
	if got := Keys(m); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, wanted %q", got, want)
	}
	if got := Keys(map[string]bool(nil)); len(got) != 0 {
		t.Errorf("Keys(nil) = %q", got)
	}
}

func TestRange(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	var sum, last int
	Range(m, func(k string, v int) {
		if v < last {
			t.Errorf("%s visited out of order", k)
		}
		last = v
		sum += v
	})
	if sum != 6 {
		t.Errorf("sum = %d, wanted 6", sum)
	}
}
