package reader

import (
	"strings"
	"testing"

	"github.com/bfix/vobject/dialect"
	"github.com/bfix/vobject/property"
	"github.com/bfix/vobject/rules"
)

// recorder is a Listener that records every event in order, used to
// assert the exact callback sequence the spec's concrete scenarios
// describe.
type recorder struct {
	events []string
	props  []*property.Property
	warns  []Warning
}

func (r *recorder) OnBegin(component string, ctx *Context) {
	r.events = append(r.events, "begin:"+component)
}
func (r *recorder) OnEnd(component string, ctx *Context) {
	r.events = append(r.events, "end:"+component)
}
func (r *recorder) OnVersion(component, version string, d dialect.Dialect, ctx *Context) {
	r.events = append(r.events, "version:"+component+":"+version)
}
func (r *recorder) OnProperty(p *property.Property, ctx *Context) {
	r.events = append(r.events, "property:"+p.Name)
	r.props = append(r.props, p)
}
func (r *recorder) OnWarning(w Warning, ctx *Context) {
	r.events = append(r.events, "warning:"+w.Kind.String())
	r.warns = append(r.warns, w)
}

func parseAll(t *testing.T, input string, opts Options) *recorder {
	t.Helper()
	rec := &recorder{}
	rd := New(strings.NewReader(input), rec, opts)
	if err := rd.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return rec
}

func TestQuotedPrintableDecode(t *testing.T) {
	input := "NOTE;ENCODING=QUOTED-PRINTABLE;CHARSET=UTF-8:=C2=A1Hola, mundo!\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	if len(rec.props) != 1 {
		t.Fatalf("expected 1 property, got %d (events %v)", len(rec.props), rec.events)
	}
	p := rec.props[0]
	if p.Name != "NOTE" {
		t.Fatalf("Name = %q", p.Name)
	}
	if want := "¡Hola, mundo!"; p.Value != want {
		t.Fatalf("Value = %q, want %q", p.Value, want)
	}
}

func TestQuotedPrintableDecodeFailure(t *testing.T) {
	input := "NOTE;ENCODING=QUOTED-PRINTABLE;CHARSET=UTF-8:=ZZ invalid\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	foundWarning := false
	for _, w := range rec.warns {
		if w.Kind == QuotedPrintableError {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected QUOTED_PRINTABLE_ERROR warning, got %v", rec.events)
	}
	if len(rec.props) != 1 || rec.props[0].Value != "=ZZ invalid" {
		t.Fatalf("expected raw value retained, got %+v", rec.props)
	}
}

func TestCaretDecoding(t *testing.T) {
	input := "NOTE;X-AUTHOR=Fox ^'Spooky^' Mulder:The truth is out there.\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New, Caret: true})
	if len(rec.props) != 1 {
		t.Fatalf("expected 1 property, got %d", len(rec.props))
	}
	got, ok := rec.props[0].Parameters.First("X-AUTHOR")
	if !ok {
		t.Fatal("X-AUTHOR parameter missing")
	}
	if want := `Fox "Spooky" Mulder`; got != want {
		t.Fatalf("X-AUTHOR = %q, want %q", got, want)
	}
}

func TestLineFolding(t *testing.T) {
	input := "NOTE:Lorem ipsum dolor sit amet\\, consectetur adipiscing elit. Vestibulum u\r\n ltricies tempor orci ac dignissim.\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	if len(rec.props) != 1 {
		t.Fatalf("expected 1 property, got %d", len(rec.props))
	}
	if !strings.HasSuffix(rec.props[0].Value, "Vestibulum ultricies tempor orci ac dignissim.") {
		t.Fatalf("Value = %q", rec.props[0].Value)
	}
}

// TestQuotedPrintableSoftBreakThenFoldedContinuation covers an OLD
// quoted-printable soft line break (trailing '=') immediately followed
// by an indented (folded) continuation line: foldedQP must not survive
// past the fold it describes, or the next property's terminator is
// missed and its first character is glued onto this value.
func TestQuotedPrintableSoftBreakThenFoldedContinuation(t *testing.T) {
	input := "NOTE;ENCODING=QUOTED-PRINTABLE;CHARSET=UTF-8:one=\r\n two\r\nFN:Jane Doe\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.Old})
	if len(rec.props) != 2 {
		t.Fatalf("expected 2 properties, got %d (events %v)", len(rec.props), rec.events)
	}
	if want := "onetwo"; rec.props[0].Value != want {
		t.Fatalf("NOTE value = %q, want %q", rec.props[0].Value, want)
	}
	if rec.props[1].Name != "FN" || rec.props[1].Value != "Jane Doe" {
		t.Fatalf("second property = %+v", rec.props[1])
	}
}

func TestOutOfOrderEnd(t *testing.T) {
	input := "BEGIN:A\r\nBEGIN:B\r\nBEGIN:C\r\nEND:A\r\nEND:C\r\nEND:B\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	want := []string{
		"begin:A", "begin:B", "begin:C",
		"end:C", "end:B", "end:A",
		"warning:UNMATCHED_END", "warning:UNMATCHED_END",
	}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", rec.events, want)
		}
	}
}

func TestMalformedLineDiscarded(t *testing.T) {
	input := "THIS HAS NO COLON\r\nNOTE:ok\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	if len(rec.warns) != 1 || rec.warns[0].Kind != MalformedLine {
		t.Fatalf("expected a single MALFORMED_LINE warning, got %v", rec.events)
	}
	if len(rec.props) != 1 || rec.props[0].Name != "NOTE" {
		t.Fatalf("expected the following well-formed property to still parse, got %+v", rec.props)
	}
}

func TestEmptyBeginEndWarnings(t *testing.T) {
	input := "BEGIN:\r\nEND:\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	want := []string{"warning:EMPTY_BEGIN", "warning:EMPTY_END"}
	if len(rec.events) != len(want) || rec.events[0] != want[0] || rec.events[1] != want[1] {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
}

func TestVersionSwitchesDialect(t *testing.T) {
	input := "BEGIN:VCARD\r\nVERSION:2.1\r\nNOTE:hi\r\nEND:VCARD\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New, Rules: rules.NewVCardRules()})
	foundVersion := false
	for _, e := range rec.events {
		if e == "version:VCARD:2.1" {
			foundVersion = true
		}
	}
	if !foundVersion {
		t.Fatalf("expected a version event, got %v", rec.events)
	}
}

func TestUnknownVersionWarns(t *testing.T) {
	input := "BEGIN:VCARD\r\nVERSION:9.9\r\nEND:VCARD\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New, Rules: rules.NewVCardRules()})
	found := false
	for _, w := range rec.warns {
		if w.Kind == UnknownVersion {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UNKNOWN_VERSION warning, got %v", rec.events)
	}
	// falls through and still delivers VERSION as an ordinary property.
	sawProperty := false
	for _, p := range rec.props {
		if p.Name == "VERSION" {
			sawProperty = true
		}
	}
	if !sawProperty {
		t.Fatal("expected VERSION to be delivered as an ordinary property")
	}
}

func TestUnterminatedFinalRecord(t *testing.T) {
	input := "NOTE:no trailing CRLF"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	if len(rec.props) != 1 || rec.props[0].Value != "no trailing CRLF" {
		t.Fatalf("expected the final unterminated record to parse, got %+v", rec.props)
	}
}

func TestStopSuspendsAndResumes(t *testing.T) {
	input := "NOTE:first\r\nNOTE:second\r\n"
	var rec stoppingRecorder
	rd := New(strings.NewReader(input), &rec, Options{Dialect: dialect.New})
	if err := rd.Parse(); err != nil {
		t.Fatal(err)
	}
	if len(rec.props) != 1 || rec.props[0].Value != "first" {
		t.Fatalf("expected parsing to stop after the first property, got %+v", rec.props)
	}
	if err := rd.Parse(); err != nil {
		t.Fatal(err)
	}
	if len(rec.props) != 2 || rec.props[1].Value != "second" {
		t.Fatalf("expected resumed parse to deliver the second property, got %+v", rec.props)
	}
}

type stoppingRecorder struct {
	props []*property.Property
}

func (s *stoppingRecorder) OnBegin(string, *Context)                            {}
func (s *stoppingRecorder) OnEnd(string, *Context)                              {}
func (s *stoppingRecorder) OnVersion(string, string, dialect.Dialect, *Context) {}
func (s *stoppingRecorder) OnProperty(p *property.Property, ctx *Context) {
	s.props = append(s.props, p)
	ctx.Stop()
}
func (s *stoppingRecorder) OnWarning(Warning, *Context) {}

func TestGroupAndParameterMultiValue(t *testing.T) {
	input := "home.TEL;TYPE=work,voice:+1-555-0100\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.New})
	p := rec.props[0]
	if !p.HasGroup || p.Group != "home" {
		t.Fatalf("Group = %q, %v", p.Group, p.HasGroup)
	}
	vals, _ := p.Parameters.Values("TYPE")
	want := []string{"work", "voice"}
	if len(vals) != 2 || vals[0] != want[0] || vals[1] != want[1] {
		t.Fatalf("TYPE values = %v, want %v", vals, want)
	}
}

func TestOldDialectRepeatedParamSegments(t *testing.T) {
	input := "TEL;WORK;VOICE:+1-555-0100\r\n"
	rec := parseAll(t, input, Options{Dialect: dialect.Old})
	p := rec.props[0]
	// Legacy OLD value-only parameters land under the nameless key.
	vals, ok := p.Parameters.Values(property.NullKey)
	if !ok || len(vals) != 2 {
		t.Fatalf("nameless parameter values = %v, %v", vals, ok)
	}
}
