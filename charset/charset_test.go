package charset

import (
	"errors"
	"testing"
)

func TestLookupKnownNames(t *testing.T) {
	for _, name := range []string{"ISO-8859-1", "Windows-1252", "UTF-8", "US-ASCII"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) = %v, want nil error", name, err)
		}
	}
}

func TestLookupIllegalName(t *testing.T) {
	_, err := Lookup("not a charset!")
	if !errors.Is(err, ErrIllegalName) {
		t.Fatalf("Lookup(illegal) = %v, want ErrIllegalName", err)
	}
}

func TestLookupUnsupportedName(t *testing.T) {
	_, err := Lookup("X-MADE-UP-CHARSET-9000")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Lookup(made-up) = %v, want ErrUnsupported", err)
	}
}

func TestIsUTF8OrASCII(t *testing.T) {
	cases := map[string]bool{
		"":          true,
		"UTF-8":     true,
		"utf-8":     true,
		"US-ASCII":  true,
		"ASCII":     true,
		"ISO-8859-1": false,
	}
	for name, want := range cases {
		if got := IsUTF8OrASCII(name); got != want {
			t.Errorf("IsUTF8OrASCII(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestStdCodecDecodeUTF8(t *testing.T) {
	var c StdCodec
	// "¡Hola, mundo!" quoted-printable encoded (UTF-8 bytes for the
	// inverted exclamation mark).
	got, err := c.Decode([]byte("=C2=A1Hola, mundo!"), "UTF-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := "¡Hola, mundo!"; got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

func TestStdCodecDecodeFailureReturnsError(t *testing.T) {
	var c StdCodec
	_, err := c.Decode([]byte("=ZZ invalid"), "UTF-8")
	if err == nil {
		t.Fatal("expected a decode error for malformed QP escape")
	}
}

func TestStdCodecEncodeDecodeRoundTrip(t *testing.T) {
	var c StdCodec
	text := "line one\r\nline two with = sign"
	enc, err := c.Encode(text, "UTF-8")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(enc, "UTF-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != text {
		t.Fatalf("round trip = %q, want %q", got, text)
	}
}

func TestStdCodecEncodeEscapesEmbeddedNewline(t *testing.T) {
	var c StdCodec
	got, err := c.Encode("one\r\ntwo", "UTF-8")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := "one=0D=0Atwo"; string(got) != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestStdCodecEncodeUnknownCharset(t *testing.T) {
	var c StdCodec
	if _, err := c.Encode("hello", "NOT-A-REAL-CHARSET"); err == nil {
		t.Fatal("expected an error encoding to an unknown charset")
	}
}
