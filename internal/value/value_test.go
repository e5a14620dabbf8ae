package value

import (
	"reflect"
	"testing"
)

func TestIsZero(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want bool
	}{
		{"invalid", Value{}, true},
		{"false", Bool(false), true},
		{"true", Bool(true), false},
		{"zero int", Int(0), true},
		{"int", Int(3), false},
		{"empty string", String(""), true},
		{"string", String("x"), false},
		{"empty list", List(), true},
		{"list", List("a"), false},
		{"empty table", Table(nil), true},
	}
	for _, tc := range cases {
		if got := tc.in.IsZero(); got != tc.want {
			t.Fatalf("%s: IsZero() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEqualComparesKind(t *testing.T) {
	if Int(1).Equal(Float(1)) {
		t.Fatalf("int and float should differ")
	}
	if !List("a", "b").Equal(List("a", "b")) {
		t.Fatalf("lists should be equal")
	}
	if Table(map[string]string{"a": "1"}).Equal(Table(map[string]string{"a": "2"})) {
		t.Fatalf("tables should differ")
	}
}

func TestCloneDetachesList(t *testing.T) {
	src := []string{"a", "b"}
	v := List(src...)
	src[0] = "changed"
	if v.List()[0] != "a" {
		t.Fatalf("List() = %v, want detached copy", v.List())
	}
	got := v.List()
	got[1] = "x"
	if v.List()[1] != "b" {
		t.Fatalf("List() should return a copy")
	}
}

func TestFromAny(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{true, Bool(true)},
		{42, Int(42)},
		{int64(7), Int(7)},
		{uint32(9), Int(9)},
		{1.5, Float(1.5)},
		{"hi", String("hi")},
		{[]any{"a", 2}, List("a", "2")},
		{map[string]any{"copy": "<Control>c"}, Table(map[string]string{"copy": "<Control>c"})},
	}
	for _, tc := range cases {
		got, err := FromAny(tc.in)
		if err != nil {
			t.Fatalf("FromAny(%#v) error: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("FromAny(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
	if _, err := FromAny(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
	if _, err := FromAny(struct{}{}); err == nil {
		t.Fatalf("expected error for struct")
	}
}

func TestAnyRoundTrip(t *testing.T) {
	for _, v := range []Value{Bool(true), Int(-3), Float(0.25), String("x"), List("a", "b c")} {
		got, err := FromAny(v.Any())
		if err != nil {
			t.Fatalf("FromAny(%#v.Any()) error: %v", v, err)
		}
		if !got.Equal(v) {
			t.Fatalf("round trip = %#v, want %#v", got, v)
		}
	}
}

func TestParseAs(t *testing.T) {
	b, err := ParseAs(KindBool, "yes")
	if err != nil || !b.Bool() {
		t.Fatalf("ParseAs(bool, yes) = %#v, %v", b, err)
	}
	if _, err := ParseAs(KindBool, "maybe"); err == nil {
		t.Fatalf("expected bool parse error")
	}
	n, err := ParseAs(KindInt, " 500 ")
	if err != nil || n.Int() != 500 {
		t.Fatalf("ParseAs(int) = %#v, %v", n, err)
	}
	l, err := ParseAs(KindList, `one "two three"`)
	if err != nil {
		t.Fatalf("ParseAs(list) error: %v", err)
	}
	if !reflect.DeepEqual(l.List(), []string{"one", "two three"}) {
		t.Fatalf("ParseAs(list) = %v", l.List())
	}
	tbl, err := ParseAs(KindTable, "copy=<Control>c paste=<Control>v")
	if err != nil {
		t.Fatalf("ParseAs(table) error: %v", err)
	}
	if tbl.Table()["paste"] != "<Control>v" {
		t.Fatalf("ParseAs(table) = %v", tbl.Table())
	}
	if _, err := ParseAs(KindTable, "novalue"); err == nil {
		t.Fatalf("expected table parse error")
	}
}

func TestGuess(t *testing.T) {
	cases := map[string]Kind{
		"true":  KindBool,
		"12":    KindInt,
		"0.8":   KindFloat,
		"click": KindString,
	}
	for in, want := range cases {
		if got := Guess(in).Kind(); got != want {
			t.Fatalf("Guess(%q).Kind() = %v, want %v", in, got, want)
		}
	}
}

func TestFromMapCollectsErrors(t *testing.T) {
	m, errs := FromMap(map[string]any{"ok": 1, "bad": nil})
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1", errs)
	}
	if _, ok := m["ok"]; !ok {
		t.Fatalf("expected ok key to survive")
	}
}
