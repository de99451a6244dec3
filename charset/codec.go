/*
 * Codec: the quoted-printable bridge (spec §4.2), a thin contract
 * over an external codec that the reader treats as a warning source
 * and the writer treats as a fatal I/O error on failure.
 */

package charset

import (
	"bytes"
	"fmt"
	"io"
	"mime/quotedprintable"
)

// Codec is the quoted-printable bridge spec §1 and §4.2 describe as
// an external collaborator: decode(ascii, charsetName) -> text, or
// encode(text, charsetName) -> ascii. Both operations resolve
// charsetName themselves so callers never handle encoding.Encoding
// directly.
type Codec interface {
	// Decode turns quoted-printable ASCII bytes into text, resolving
	// charsetName (UTF-8 if empty) and transcoding to UTF-8 as needed.
	Decode(ascii []byte, charsetName string) (string, error)
	// Encode turns text (always valid UTF-8, as Go strings are) into
	// quoted-printable ASCII bytes in the named charset.
	Encode(text string, charsetName string) ([]byte, error)
}

// StdCodec implements Codec on top of the standard library's
// mime/quotedprintable, which is the natural default body for this
// narrowly-scoped, explicitly out-of-scope assumption: no pack
// example ships a quoted-printable implementation of its own to
// prefer over the standard one (see DESIGN.md).
type StdCodec struct{}

// Decode implements Codec.
func (StdCodec) Decode(ascii []byte, charsetName string) (string, error) {
	// The standard reader passes a malformed "=XY" through as literal
	// text; reject it here so the caller sees a decode failure. A '='
	// at the very end or before a line break is a soft break.
	isHex := func(b byte) bool {
		return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
	}
	for i := 0; i < len(ascii); i++ {
		if ascii[i] != '=' || i+1 == len(ascii) || ascii[i+1] == '\r' || ascii[i+1] == '\n' {
			continue
		}
		if i+2 >= len(ascii) || !isHex(ascii[i+1]) || !isHex(ascii[i+2]) {
			return "", fmt.Errorf("quotedprintable: invalid escape at offset %d", i)
		}
		i += 2
	}
	raw, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(ascii)))
	if err != nil {
		return "", err
	}
	if IsUTF8OrASCII(charsetName) {
		return string(raw), nil
	}
	enc, err := Lookup(charsetName)
	if err != nil {
		// Charset resolution failure is distinct from a QP decode
		// failure; the reader maps this to UNKNOWN_CHARSET and keeps
		// the QP-decoded-but-untranscoded bytes.
		return string(raw), err
	}
	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), err
	}
	return string(text), nil
}

// Encode implements Codec. It hex-escapes every byte outside the safe
// printable range, always including CR and LF: mime/quotedprintable's
// own Writer passes a literal CRLF through as a soft line break and
// imposes its own 76-column wrapping, both of which conflict with
// this library's fold.Emitter owning all line-wrapping decisions (see
// DESIGN.md). Decode has no such conflict and keeps using the
// standard library's reader.
func (StdCodec) Encode(text string, charsetName string) ([]byte, error) {
	payload := []byte(text)
	if !IsUTF8OrASCII(charsetName) {
		enc, err := Lookup(charsetName)
		if err != nil {
			return nil, err
		}
		if payload, err = enc.NewEncoder().Bytes(payload); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	for _, b := range payload {
		if b == '=' || b == '\r' || b == '\n' || b < 0x20 || b > 0x7e {
			fmt.Fprintf(&buf, "=%02X", b)
			continue
		}
		buf.WriteByte(b)
	}
	return buf.Bytes(), nil
}
