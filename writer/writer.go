/*
 * Writer: the property emitter (spec component F, §4.5). Validates a
 * Property against the allowed-character tables, prepares its value
 * for the target dialect (quoted-printable wrapping, newline
 * escaping), serializes group/name/parameters, and writes the result
 * through a folded-line emitter.
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

// Package writer implements the property emitter: preflight
// validation against the allowed-character tables, value preparation
// (quoted-printable wrapping, newline escaping) and serialization
// through the folded-line emitter.
package writer

import (
	"errors"
	"io"
	"strings"

	"github.com/bfix/vobject/charset"
	"github.com/bfix/vobject/dialect"
	verrors "github.com/bfix/vobject/errors"
	"github.com/bfix/vobject/fold"
	"github.com/bfix/vobject/logger"
	"github.com/bfix/vobject/property"
	"github.com/bfix/vobject/table"
)

// Preflight validation sentinels (tier 2, spec §7): each is wrapped in
// a *errors.Error naming the offending field and value.
var (
	ErrInvalidGroup                  = errors.New("writer: illegal character in group, or group starts with whitespace")
	ErrInvalidName                   = errors.New("writer: empty name, illegal character in name, or name starts with whitespace")
	ErrInvalidParamName              = errors.New("writer: illegal character in parameter name")
	ErrInvalidParamValue             = errors.New("writer: illegal character in parameter value")
	ErrNamelessParameterInNewDialect = errors.New("writer: NEW dialect forbids nameless parameters")
)

// newlineEscape replaces CR, LF and CRLF with the two literal
// characters `\n`, longest match first so a CRLF pair is not split
// into two escapes.
var newlineEscape = strings.NewReplacer("\r\n", `\n`, "\r", `\n`, "\n", `\n`)

// Options configures a Writer.
type Options struct {
	Dialect dialect.Dialect
	// Strict selects the strict allowed-character tables (spec §4.1);
	// false uses the permissive tables.
	Strict bool
	// Caret enables NEW-dialect caret-escaping of parameter values.
	Caret bool
	// Codec performs quoted-printable encoding; StdCodec{} if nil.
	Codec charset.Codec
	// FoldLimit is the column at which lines wrap; 0 selects
	// fold.DefaultLimit, negative disables folding entirely.
	FoldLimit int
	// Indent is the whitespace written at the start of a folded
	// continuation line; " " (a single space) if empty.
	Indent string
}

// Writer is the property emitter, owning one folded-line emitter for
// the lifetime of one output stream (spec §5).
type Writer struct {
	fe   *fold.Emitter
	opts Options
}

// New creates a Writer writing to sink.
func New(sink io.Writer, opts Options) (*Writer, error) {
	if opts.Codec == nil {
		opts.Codec = charset.StdCodec{}
	}
	limit := opts.FoldLimit
	if limit == 0 {
		limit = fold.DefaultLimit
	}
	indent := opts.Indent
	if indent == "" {
		indent = " "
	}
	if opts.Dialect == dialect.New && len(indent) != 1 {
		return nil, errors.New("writer: NEW dialect requires a single-character fold indent")
	}
	fe, err := fold.New(sink, limit, indent)
	if err != nil {
		return nil, err
	}
	return &Writer{fe: fe, opts: opts}, nil
}

// WriteProperty validates, prepares and serializes p, writing exactly
// one logical line (folded as needed) terminated by CRLF. No output
// is written if validation fails.
func (w *Writer) WriteProperty(p *property.Property) error {
	d := w.opts.Dialect
	if err := w.validate(p, d); err != nil {
		logger.Printf(logger.WARN, "[writer] rejected property %q: %s\n", p.Name, err.Error())
		return err
	}

	params := p.Parameters
	value := p.Value
	isQP := params.IsQuotedPrintable()

	switch d {
	case dialect.Old:
		if !isQP && strings.ContainsAny(value, "\r\n") {
			params = params.Clone()
			params.Set("ENCODING", []string{"QUOTED-PRINTABLE"})
			isQP = true
		}
	default: // New
		value = newlineEscape.Replace(value)
	}

	resolvedCharset := ""
	if isQP {
		name, has := params.CharsetName()
		switch {
		case !has:
			params = params.Clone()
			params.Set("CHARSET", []string{"UTF-8"})
			resolvedCharset = "UTF-8"
		case charset.IsUTF8OrASCII(name):
			resolvedCharset = name
		default:
			if _, err := charset.Lookup(name); err != nil {
				params = params.Clone()
				params.Set("CHARSET", []string{"UTF-8"})
				resolvedCharset = "UTF-8"
			} else {
				resolvedCharset = name
			}
		}
		encoded, err := w.opts.Codec.Encode(value, resolvedCharset)
		if err != nil {
			return err
		}
		value = string(encoded)
	}

	prefix := w.serializePrefix(p, params, d)
	if err := w.fe.Write(prefix, false, ""); err != nil {
		return err
	}
	if err := w.fe.Write(value, isQP, resolvedCharset); err != nil {
		return err
	}
	return w.fe.Writeln()
}

// Flush flushes the underlying sink, if it supports it.
func (w *Writer) Flush() error { return w.fe.Flush() }

// Close releases the underlying sink, if it supports it.
func (w *Writer) Close() error { return w.fe.Close() }

func (w *Writer) validate(p *property.Property, d dialect.Dialect) error {
	nameTable := table.GroupOrName(d, w.opts.Strict)

	if p.HasGroup {
		if p.Group == "" || !nameTable.AllowsString(p.Group) || startsWithFoldWhitespace(p.Group) {
			return verrors.New(ErrInvalidGroup, "group", "%q", p.Group)
		}
	}
	if p.Name == "" || !nameTable.AllowsString(p.Name) || startsWithFoldWhitespace(p.Name) {
		return verrors.New(ErrInvalidName, "name", "%q", p.Name)
	}

	paramNameTable := table.ParamName(d, w.opts.Strict)
	paramValueTable := table.ParamValue(d, w.opts.Strict, w.opts.Caret)
	for _, key := range p.Parameters.Keys() {
		if key == property.NullKey {
			if d == dialect.New {
				return verrors.New(ErrNamelessParameterInNewDialect, "parameter", "%q", p.Name)
			}
		} else if !paramNameTable.AllowsString(key) {
			return verrors.New(ErrInvalidParamName, "parameter-name", "%q", key)
		}
		vals, _ := p.Parameters.Values(key)
		for _, v := range vals {
			if !paramValueTable.AllowsString(v) {
				return verrors.New(ErrInvalidParamValue, "parameter-value", "%q", v)
			}
		}
	}
	return nil
}

func startsWithFoldWhitespace(s string) bool {
	return strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\t")
}

func (w *Writer) serializePrefix(p *property.Property, params *property.Parameters, d dialect.Dialect) string {
	var b strings.Builder
	if p.HasGroup {
		b.WriteString(p.Group)
		b.WriteByte('.')
	}
	b.WriteString(p.Name)
	if d == dialect.Old {
		writeOldParams(&b, params)
	} else {
		writeNewParams(&b, params, w.opts.Caret)
	}
	b.WriteByte(':')
	return b.String()
}

// writeOldParams emits one ';'[NAME=]VALUE segment per value, in key
// and value order, escaping '\' and ';' (spec §4.5, OLD).
func writeOldParams(b *strings.Builder, params *property.Parameters) {
	for _, key := range params.Keys() {
		vals, _ := params.Values(key)
		for _, v := range vals {
			b.WriteByte(';')
			if key != property.NullKey {
				b.WriteString(key)
				b.WriteByte('=')
			}
			b.WriteString(escapeOldParamValue(v))
		}
	}
}

func escapeOldParamValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// writeNewParams emits one ';'NAME=V1,V2,... segment per key, caret-
// escaping each value if caret is enabled and quoting any value that
// contains ',', ';' or ':' (spec §4.5, NEW).
func writeNewParams(b *strings.Builder, params *property.Parameters, caret bool) {
	for _, key := range params.Keys() {
		vals, _ := params.Values(key)
		if len(vals) == 0 {
			// A key with no values is logically absent at emit time
			// (spec §3) and must not be serialized.
			continue
		}
		b.WriteByte(';')
		b.WriteString(key)
		b.WriteByte('=')
		for i, v := range vals {
			if i > 0 {
				b.WriteByte(',')
			}
			formatted := v
			if caret {
				formatted = caretEscape(formatted)
			}
			if strings.ContainsAny(formatted, ",;:") {
				b.WriteByte('"')
				b.WriteString(formatted)
				b.WriteByte('"')
			} else {
				b.WriteString(formatted)
			}
		}
	}
}

// caretEscape applies the NEW-dialect caret escapes: '^' -> "^^",
// '"' -> `^'`, and any CR, LF or CRLF -> "^n".
func caretEscape(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '^':
			b.WriteString("^^")
		case '"':
			b.WriteString(`^'`)
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			b.WriteString("^n")
		case '\n':
			b.WriteString("^n")
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
