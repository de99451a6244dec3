package values

import (
	"reflect"
	"testing"
)

func TestListBasic(t *testing.T) {
	got := List(`a,b\,c,d`)
	want := []string{"a", "b,c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestListEmpty(t *testing.T) {
	got := List("")
	if len(got) != 0 {
		t.Fatalf("List(\"\") = %v, want empty", got)
	}
}

func TestWriteListRoundTrip(t *testing.T) {
	in := []string{"a", "b,c", "d\\e"}
	s := WriteList(in)
	got := List(s)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip = %v, want %v (via %q)", got, in, s)
	}
}

func TestSemiStructuredWithLimit(t *testing.T) {
	got := SemiStructured("a;b;c;d", 2)
	want := []string{"a", "b;c;d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SemiStructured = %v, want %v", got, want)
	}
}

func TestSemiStructuredNoLimit(t *testing.T) {
	got := SemiStructured(`a;b\;c;d`, 0)
	want := []string{"a", "b;c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SemiStructured = %v, want %v", got, want)
	}
}

func TestStructuredEmptyComponent(t *testing.T) {
	got := Structured("a,b;;c")
	want := [][]string{{"a", "b"}, {}, {"c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Structured = %v, want %v", got, want)
	}
}

func strp(s string) *string { return &s }

func TestWriteStructuredTrimsTrailingEmpty(t *testing.T) {
	got := WriteStructured([][]*string{{strp("a")}, {}, {}}, true)
	if got != "a" {
		t.Fatalf("WriteStructured = %q, want %q", got, "a")
	}
	got = WriteStructured([][]*string{{strp("a")}, {}, {}}, false)
	if got != "a;;" {
		t.Fatalf("WriteStructured(no trim) = %q, want %q", got, "a;;")
	}
}

func TestWriteStructuredNullSubValue(t *testing.T) {
	got := WriteStructured([][]*string{{strp("a"), nil}}, false)
	if got != "a,null" {
		t.Fatalf("WriteStructured = %q, want %q", got, "a,null")
	}
}

func TestMultimap(t *testing.T) {
	got := Multimap("TYPE=home,voice;PREF")
	want := []MultimapEntry{
		{Key: "TYPE", Values: []string{"home", "voice"}},
		{Key: "PREF", Values: []string{""}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Multimap = %+v, want %+v", got, want)
	}
}

func TestMultimapRepeatedKeysAccumulate(t *testing.T) {
	got := Multimap("TYPE=home;TYPE=voice")
	want := []MultimapEntry{
		{Key: "TYPE", Values: []string{"home", "voice"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Multimap = %+v, want %+v", got, want)
	}
}

func TestMultimapSkipsEmptyKeys(t *testing.T) {
	got := Multimap("=val;TYPE=home")
	want := []MultimapEntry{{Key: "TYPE", Values: []string{"home"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Multimap = %+v, want %+v", got, want)
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	s := "a\\b;c,d\ne"
	esc := Escape(s, true)
	got := Unescape(esc)
	if got != s {
		t.Fatalf("round trip = %q, want %q (via %q)", got, s, esc)
	}
}
