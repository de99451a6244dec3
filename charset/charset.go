/*
 * Charset: charset-name resolution, the "character-set lookup"
 * external collaborator named in spec §1.
 *
 * (c) 2012 Bernd Fix   >Y<
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or (at
 * your option) any later version.
 *
 * This program is distributed in the hope that it will be useful, but
 * WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package charset resolves CHARSET parameter names to encodings (via
// golang.org/x/text) and bridges the reader/writer to the quoted-
// printable codec, both treated as external collaborators by spec §1.
package charset

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	verrors "github.com/bfix/vobject/errors"
)

// Sentinel errors distinguished by Parameters.charset's contract
// (spec §3): a syntactically malformed name vs. a well-formed one
// with no known encoding.
var (
	// ErrIllegalName is returned when the charset token itself is
	// not a valid MIME charset name (empty, or containing characters
	// no registered charset name ever uses).
	ErrIllegalName = newSentinel("illegal charset name")
	// ErrUnsupported is returned when the name is well-formed but no
	// known encoding registry recognizes it.
	ErrUnsupported = newSentinel("unsupported charset")
)

type sentinel string

func newSentinel(s string) error { return sentinel(s) }
func (s sentinel) Error() string { return string(s) }

// IsUTF8OrASCII reports whether name denotes UTF-8 or US-ASCII, the
// two charsets that never require transcoding on this platform (Go
// strings are already UTF-8, and US-ASCII is a strict subset).
func IsUTF8OrASCII(name string) bool {
	if name == "" {
		return true
	}
	return strings.EqualFold(name, "UTF-8") || strings.EqualFold(name, "US-ASCII") || strings.EqualFold(name, "ASCII")
}

// Lookup resolves name to an encoding.Encoding, trying the HTML
// living-standard index first (covers the aliases browsers actually
// use, e.g. "ISO-8859-1", "Windows-1252") and falling back to the
// IANA MIME registry. It returns a *verrors.Error wrapping
// ErrIllegalName or ErrUnsupported on failure, per spec §3's "fails
// distinguishably" contract.
func Lookup(name string) (encoding.Encoding, error) {
	if !validToken(name) {
		return nil, verrors.New(ErrIllegalName, "CHARSET", "%q", name)
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.MIME.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, verrors.New(ErrUnsupported, "CHARSET", "%q", name)
}

// validToken reports whether name has the lexical shape of a charset
// token (RFC 2978): letters, digits, and a small set of punctuation,
// non-empty. This is purely a syntax check; recognition is Lookup's job.
func validToken(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '-' || r == '_' || r == '.' || r == ':' || r == '+':
		default:
			return false
		}
	}
	return true
}
