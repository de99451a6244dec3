/*
 * Fold: the folded-line emitter (spec component D), wrapping a sink
 * with CRLF line folding, QP soft-breaks, and escape/rune integrity.
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

// Package fold implements the folded-line emitter: it writes a
// character stream to a sink, inserting CRLF plus a fold indent
// whenever the current visible line would exceed a configured column
// limit, while protecting quoted-printable escape triples, trailing
// whitespace, and embedded newlines from being split across folds.
package fold

import (
	"errors"
	"io"
	"unicode/utf8"
)

// DefaultLimit is the default fold column, matching the 75-column
// convention both vCard and iCalendar inherit from RFC 2425/2445.
const DefaultLimit = 75

// ErrInvalidIndent is returned by New when the configured indent is
// empty or contains characters other than SPACE or TAB.
var ErrInvalidIndent = errors.New("fold: indent must be a non-empty run of SPACE/TAB")

// Emitter is the folded-line writer. It is not safe for concurrent
// use; a single Emitter is owned by exactly one Property Emitter
// instance for the lifetime of one output stream (spec §5).
type Emitter struct {
	w      io.Writer
	limit  int // <= 0 disables folding
	indent string
	col    int
	scratch [utf8.UTFMax]byte
}

// New creates an Emitter writing to w. limit <= 0 disables folding
// entirely (the emitter then writes one unbroken logical line).
// indent must be non-empty and consist only of SPACE/TAB; dialect-
// specific indent-length rules (NEW requires exactly one character)
// are enforced by the caller, not by this package.
func New(w io.Writer, limit int, indent string) (*Emitter, error) {
	if indent == "" {
		return nil, ErrInvalidIndent
	}
	for _, r := range indent {
		if r != ' ' && r != '\t' {
			return nil, ErrInvalidIndent
		}
	}
	return &Emitter{w: w, limit: limit, indent: indent}, nil
}

// Write emits text, folding as needed. quotedPrintable selects QP
// soft-break mode: non-final folds write a trailing '=' instead of an
// indent, and '=XX' escape triples are kept atomic. charset is
// accepted for parity with the property emitter's write(text,
// quotedPrintable?, charset?) contract; by the time text reaches this
// package it is already charset-resolved, so charset itself is unused
// here.
func (e *Emitter) Write(text string, quotedPrintable bool, charset string) error {
	_ = charset
	runes := []rune(text)
	effLimit := e.limit
	if quotedPrintable && effLimit > 0 {
		effLimit-- // room for the soft-break '='
	}
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == '\r' || r == '\n' {
			n, err := e.writeNewline(runes, i)
			if err != nil {
				return err
			}
			i += n
			e.col = 0
			continue
		}

		unit := runes[i : i+1]
		if quotedPrintable && r == '=' && i+2 < len(runes) &&
			isHexDigit(runes[i+1]) && isHexDigit(runes[i+2]) {
			unit = runes[i : i+3] // keep the QP escape triple atomic
		}

		if e.limit > 0 && e.col > 0 && e.col+len(unit) > effLimit {
			if len(unit) == 1 && (r == ' ' || r == '\t') {
				// Trailing-whitespace protection: don't fold right
				// before a whitespace run, since unfolding strips
				// leading whitespace on the continuation line and
				// would eat real data along with the fold indent.
				// Write through, over the limit, and fold after it.
			} else if err := e.fold(quotedPrintable); err != nil {
				return err
			}
		}

		if err := e.writeRunes(unit); err != nil {
			return err
		}
		e.col += len(unit)
		i += len(unit)
	}
	return nil
}

// writeNewline writes the embedded raw newline at runes[i] through
// verbatim (CRLF as a pair, bare CR or LF alone) and reports how many
// runes it consumed.
func (e *Emitter) writeNewline(runes []rune, i int) (int, error) {
	if runes[i] == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
		return 2, e.writeRunes(runes[i : i+2])
	}
	return 1, e.writeRunes(runes[i : i+1])
}

// fold inserts a CRLF break: a bare soft-break '=' with no indent in
// QP mode, or CRLF followed by the configured indent otherwise.
func (e *Emitter) fold(quotedPrintable bool) error {
	if quotedPrintable {
		if err := e.writeString("=\r\n"); err != nil {
			return err
		}
		e.col = 0
		return nil
	}
	if err := e.writeString("\r\n" + e.indent); err != nil {
		return err
	}
	e.col = utf8.RuneCountInString(e.indent)
	return nil
}

// Writeln terminates the current logical line with a bare CRLF (no
// fold indent) and resets the column counter.
func (e *Emitter) Writeln() error {
	if err := e.writeString("\r\n"); err != nil {
		return err
	}
	e.col = 0
	return nil
}

// Flush flushes the underlying sink if it implements an explicit
// Flush method (e.g. *bufio.Writer); otherwise it is a no-op.
func (e *Emitter) Flush() error {
	if f, ok := e.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close releases the underlying sink if it implements io.Closer;
// otherwise it is a no-op. Per the resource policy, callers must call
// this along every exit path, including after a panic recovery.
func (e *Emitter) Close() error {
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Emitter) writeRunes(rs []rune) error {
	for _, r := range rs {
		n := utf8.EncodeRune(e.scratch[:], r)
		if _, err := e.w.Write(e.scratch[:n]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) writeString(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
