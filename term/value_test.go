package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// termComparer lets cmp.Diff walk *Term trees using semantic Equal
// instead of comparing the unexported Location pointer field.
var termComparer = cmp.Comparer(func(a, b *Term) bool { return a.Equal(b) })

func TestTerm_Equal(t *testing.T) {
	cases := []struct {
		name     string
		a, b     *Term
		wantSame bool
	}{
		{"equal integers", NewTerm(Integer(1)), NewTerm(Integer(1)), true},
		{"different integers", NewTerm(Integer(1)), NewTerm(Integer(2)), false},
		{"integer vs string", NewTerm(Integer(1)), NewTerm(String("1")), false},
		{
			"dictionaries ignore field order",
			NewTerm(Dictionary{{Key: "a", Value: NewTerm(Integer(1))}, {Key: "b", Value: NewTerm(Integer(2))}}),
			NewTerm(Dictionary{{Key: "b", Value: NewTerm(Integer(2))}, {Key: "a", Value: NewTerm(Integer(1))}}),
			true,
		},
		{
			"dictionaries with differing keys",
			NewTerm(Dictionary{{Key: "a", Value: NewTerm(Integer(1))}}),
			NewTerm(Dictionary{{Key: "b", Value: NewTerm(Integer(1))}}),
			false,
		},
		{
			"lists compare element-wise",
			NewTerm(List{NewTerm(Integer(1)), NewTerm(Integer(2))}),
			NewTerm(List{NewTerm(Integer(1)), NewTerm(Integer(2))}),
			true,
		},
		{
			"calls compare name and args",
			NewTerm(&Call{Name: "f", Args: []*Term{NewTerm(Integer(1))}}),
			NewTerm(&Call{Name: "f", Args: []*Term{NewTerm(Integer(1))}}),
			true,
		},
		{
			"external instances compare by id only",
			NewTerm(&ExternalInstance{ID: 7}),
			NewTerm(&ExternalInstance{ID: 7, Literal: &InstanceLiteral{Tag: "Foo"}}),
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cmp.Equal(tc.a, tc.b, termComparer); got != tc.wantSame {
				t.Errorf("cmp.Equal(%s, %s) = %v, want %v\ndiff: %s", tc.a, tc.b, got, tc.wantSame, cmp.Diff(tc.a, tc.b, termComparer))
			}
		})
	}
}

func TestSymbol_IsGround(t *testing.T) {
	if Symbol("x").IsGround() {
		t.Error("a bare Symbol must never report IsGround")
	}
}

func TestDictionary_Get(t *testing.T) {
	d := Dictionary{{Key: "a", Value: NewTerm(Integer(1))}}
	if v, ok := d.Get("a"); !ok || !v.Equal(NewTerm(Integer(1))) {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := d.Get("missing"); ok {
		t.Fatal("Get(missing) reported found")
	}
}

func TestHash_DistinguishesTypesWithSimilarEncodings(t *testing.T) {
	if Integer(1).Hash() == String("1").Hash() {
		t.Error("Integer(1) and String(\"1\") must not collide")
	}
}

func TestDictionary_HashIsOrderInsensitive(t *testing.T) {
	a := Dictionary{{Key: "a", Value: NewTerm(Integer(1))}, {Key: "b", Value: NewTerm(Integer(2))}}
	b := Dictionary{{Key: "b", Value: NewTerm(Integer(2))}, {Key: "a", Value: NewTerm(Integer(1))}}
	if a.Hash() != b.Hash() {
		t.Error("dictionary hash must not depend on insertion order")
	}
}
