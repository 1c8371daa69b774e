package xsd

import "testing"

func TestBuiltinParentChain(t *testing.T) {
	var chain []Builtin
	for b, ok := Int, true; ok; b, ok = b.Parent() {
		chain = append(chain, b)
	}
	want := []Builtin{Int, Long, Integer, Decimal, AnySimpleType, AnyType}
	if len(chain) != len(want) {
		t.Fatalf("chain from xs:int is %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("chain[%d] = %s, want %s", i, chain[i], want[i])
		}
	}
}

func TestBuiltinTerminates(t *testing.T) {
	for b := AnyType; b < numBuiltins; b++ {
		steps := 0
		cur, ok := b, true
		for ; ok; cur, ok = cur.Parent() {
			if steps++; steps > int(numBuiltins) {
				t.Fatalf("%s: parent chain does not terminate", b)
			}
		}
	}
}

func TestBuiltinNumeric(t *testing.T) {
	tests := []struct {
		b    Builtin
		want bool
	}{
		{Decimal, true},
		{Double, true},
		{Float, true},
		{UnsignedByte, true},
		{NegativeInteger, true},
		{String, false},
		{Boolean, false},
		{Duration, false},
		{AnyType, false},
	}
	for _, tt := range tests {
		if got := tt.b.Numeric(); got != tt.want {
			t.Errorf("%s.Numeric() = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestParseBuiltin(t *testing.T) {
	for b := AnyType; b < numBuiltins; b++ {
		got, err := ParseBuiltin(b.String())
		if err != nil {
			t.Errorf("ParseBuiltin(%q): %v", b.String(), err)
		} else if got != b {
			t.Errorf("ParseBuiltin(%q) = %s", b.String(), got)
		}
	}
	if _, err := ParseBuiltin("notAType"); err == nil {
		t.Error("ParseBuiltin accepted an unknown name")
	}
}

func TestBuiltinName(t *testing.T) {
	n := Token.Name()
	if n.Namespace() != schemaNS || n.Local() != "token" {
		t.Errorf("Token.Name() = %s", n)
	}
	if k := Token.Key(); k != "xs:token" {
		t.Errorf("Token.Key() = %s", k)
	}
}
