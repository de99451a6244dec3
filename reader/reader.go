/*
 * Reader: the tokenizing reader (spec component E), a per-character
 * state machine that unfolds lines, decodes parameter escapes and
 * quoted-printable values, and emits component/property/warning
 * events to a listener.
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

// Package reader implements the tokenizing reader: it drives a
// character-by-character state machine over an io.Reader, unfolding
// lines, decoding parameter escapes and quoted-printable values, and
// delivering component/property/warning events to a Listener.
package reader

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/bfix/vobject/charset"
	"github.com/bfix/vobject/dialect"
	"github.com/bfix/vobject/logger"
	"github.com/bfix/vobject/property"
	"github.com/bfix/vobject/rules"
)

// WarningKind is the closed set of non-fatal conditions the reader
// reports through the listener instead of aborting.
type WarningKind int

const (
	MalformedLine WarningKind = iota
	EmptyBegin
	EmptyEnd
	UnmatchedEnd
	UnknownVersion
	UnknownCharset
	QuotedPrintableError
)

func (k WarningKind) String() string {
	switch k {
	case MalformedLine:
		return "MALFORMED_LINE"
	case EmptyBegin:
		return "EMPTY_BEGIN"
	case EmptyEnd:
		return "EMPTY_END"
	case UnmatchedEnd:
		return "UNMATCHED_END"
	case UnknownVersion:
		return "UNKNOWN_VERSION"
	case UnknownCharset:
		return "UNKNOWN_CHARSET"
	case QuotedPrintableError:
		return "QUOTED_PRINTABLE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Warning carries a non-fatal condition: the kind, the property it
// concerns (nil when the line was discarded before a Property could
// be built), and the underlying cause when one exists.
type Warning struct {
	Kind     WarningKind
	Property *property.Property
	Cause    error
}

// Context is the immutable-view record passed to every listener
// event: the component path at the time of the event, the raw
// unfolded logical line, and the physical line number the logical
// line started on. Stop raises the mutable stop flag the listener may
// set to suspend parsing after the current property.
type Context struct {
	Path       []string
	Line       string
	LineNumber int
	stopped    *bool
}

// Stop requests that parsing suspend after the event currently being
// delivered returns. A subsequent call to Reader.Parse resumes from
// the next character.
func (c *Context) Stop() {
	*c.stopped = true
}

// Listener receives the five events the reader emits, in strict
// document order (spec §5).
type Listener interface {
	OnBegin(component string, ctx *Context)
	OnEnd(component string, ctx *Context)
	OnVersion(component, version string, d dialect.Dialect, ctx *Context)
	OnProperty(p *property.Property, ctx *Context)
	OnWarning(w Warning, ctx *Context)
}

// Options configures a Reader.
type Options struct {
	// Dialect is used for properties outside any open component.
	Dialect dialect.Dialect
	// Rules drives mid-stream dialect switching on VERSION; nil means
	// no component ever switches dialect (VERSION is always an
	// ordinary property).
	Rules *rules.Table
	// Codec performs quoted-printable decode/encode; defaults to
	// charset.StdCodec{} when nil.
	Codec charset.Codec
	// Caret enables NEW-dialect caret-escape decoding in parameter
	// values.
	Caret bool
	// Newline is substituted for `\n`/`^n` escapes; defaults to "\n".
	Newline string
}

type phase int

const (
	phaseNameOrGroup phase = iota
	phaseParamName
	phaseParamValue
	phaseValue
)

// Reader is a resumable tokenizing reader over one io.Reader. It is
// not safe for concurrent use; see batch.ParseAll for running several
// independent Readers concurrently (spec §5).
type Reader struct {
	src      *bufio.Reader
	listener Listener
	opts     Options
	stack    *rules.Stack

	prev     rune
	havePrev bool
	stopped  bool

	phase         phase
	buffer        strings.Builder
	rawLine       strings.Builder
	lineHasContent bool
	lineNumber    int
	lineStart     int

	group    string
	hasGroup bool
	name     string

	params        *property.Parameters
	curParamName  string
	inQuotes      bool
	pendingEscape bool
	foldedQP      bool
	inFoldWS      bool
}

// New creates a Reader over src with the given listener and options.
func New(src io.Reader, listener Listener, opts Options) *Reader {
	if opts.Codec == nil {
		opts.Codec = charset.StdCodec{}
	}
	if opts.Newline == "" {
		opts.Newline = "\n"
	}
	r := &Reader{
		src:        bufio.NewReader(src),
		listener:   listener,
		opts:       opts,
		stack:      rules.NewStack(opts.Dialect),
		lineNumber: 1,
	}
	r.resetProperty()
	return r
}

func (r *Reader) resetProperty() {
	r.phase = phaseNameOrGroup
	r.buffer.Reset()
	r.rawLine.Reset()
	r.lineHasContent = false
	r.group = ""
	r.hasGroup = false
	r.name = ""
	r.params = property.NewParameters()
	r.curParamName = ""
	r.inQuotes = false
	r.pendingEscape = false
	r.foldedQP = false
	r.lineStart = r.lineNumber
}

// Parse drives the state machine until the listener raises stop,
// end-of-stream is reached, or the source reports an error.
// Cancellation is cooperative: stop is only observed between complete
// properties (spec §5), and a later call to Parse resumes exactly
// where the previous one left off, since all state lives in the
// Reader instance.
func (r *Reader) Parse() error {
	r.stopped = false
	for !r.stopped {
		ch, _, err := r.src.ReadRune()
		if err != nil {
			if err == io.EOF {
				return r.finalizeProperty()
			}
			return err
		}
		if err := r.consume(ch); err != nil {
			return err
		}
	}
	return nil
}

// consume implements the priority-ordered transition rules, one
// character at a time.
func (r *Reader) consume(ch rune) error {
	if r.inFoldWS {
		if ch == ' ' || ch == '\t' {
			return nil // OLD: consume the whole fold-indent run
		}
		r.inFoldWS = false
		// fall through: ch is the first payload character.
	} else {
		// Rule 1: CRLF collapse.
		if r.havePrev && r.prev == '\r' && ch == '\n' {
			r.prev = ch
			return nil
		}
		// Rule 2: line break.
		if ch == '\r' || ch == '\n' {
			if r.phase == phaseValue && r.params.IsQuotedPrintable() && r.lastBufferedIsEquals() {
				r.dropTrailingEquals()
				r.foldedQP = true
			}
			r.lineNumber++
			r.prev = ch
			r.havePrev = true
			return nil
		}
		// Rule 3: post-newline dispatch.
		if r.havePrev && (r.prev == '\r' || r.prev == '\n') {
			if ch == ' ' || ch == '\t' {
				return r.consumeFoldWhitespace(ch)
			}
			if r.foldedQP {
				r.foldedQP = false
				// fall through: ch is the continuation payload.
			} else {
				if err := r.finalizeProperty(); err != nil {
					return err
				}
				if r.stopped {
					return r.src.UnreadRune()
				}
				r.prev = 0
				r.havePrev = false
				return r.consume(ch)
			}
		}
	}

	r.prev = ch
	r.havePrev = true
	return r.apply(ch)
}

func (r *Reader) consumeFoldWhitespace(ch rune) error {
	if r.stack.Current() == dialect.Old {
		r.inFoldWS = true
	}
	// The QP soft-break this whitespace continues from is fully
	// consumed here; leaving foldedQP set would make the *next*
	// line break (the one ending this property) look like another
	// soft-break continuation and swallow its terminator.
	r.foldedQP = false
	r.prev = ch
	r.havePrev = true
	return nil
}

func (r *Reader) lastBufferedIsEquals() bool {
	s := r.buffer.String()
	return len(s) > 0 && s[len(s)-1] == '='
}

func (r *Reader) dropTrailingEquals() {
	s := r.buffer.String()
	r.buffer.Reset()
	r.buffer.WriteString(s[:len(s)-1])
	raw := r.rawLine.String()
	if len(raw) > 0 && raw[len(raw)-1] == '=' {
		r.rawLine.Reset()
		r.rawLine.WriteString(raw[:len(raw)-1])
	}
}

// apply implements rules 5, and 7 through 13, dispatched on the
// current phase (rule 6, escape-pending, is checked first within the
// param-value phase since it overrides the rest).
func (r *Reader) apply(ch rune) error {
	r.lineHasContent = true
	r.rawLine.WriteRune(ch)

	switch r.phase {
	case phaseValue:
		// Rule 5.
		r.buffer.WriteRune(ch)
		return nil

	case phaseParamValue:
		d := r.stack.Current()
		// Rule 6: escape-pending.
		if r.pendingEscape {
			r.pendingEscape = false
			if d == dialect.Old {
				switch ch {
				case '\\':
					r.buffer.WriteRune('\\')
				case ';':
					r.buffer.WriteRune(';')
				default:
					r.buffer.WriteRune('\\')
					r.buffer.WriteRune(ch)
				}
			} else {
				switch ch {
				case '^':
					r.buffer.WriteRune('^')
				case 'n':
					r.buffer.WriteString(r.opts.Newline)
				case '\'':
					r.buffer.WriteRune('"')
				default:
					r.buffer.WriteRune('^')
					r.buffer.WriteRune(ch)
				}
			}
			return nil
		}
		// Rule 7: escape-initiation.
		if d == dialect.Old && ch == '\\' {
			r.pendingEscape = true
			return nil
		}
		if d == dialect.New && r.opts.Caret && ch == '^' {
			r.pendingEscape = true
			return nil
		}
		// Rule 9: delimiter (not inside quotes).
		if !r.inQuotes && (ch == ';' || ch == ':') {
			r.commitParamValue(d, true)
			if ch == ':' {
				r.phase = phaseValue
			} else {
				r.phase = phaseParamName
			}
			return nil
		}
		// Rule 10: NEW parameter-value comma.
		if d == dialect.New && ch == ',' && !r.inQuotes {
			r.commitParamValue(d, false)
			return nil
		}
		// Rule 12: double quote (NEW only).
		if d == dialect.New && ch == '"' {
			r.inQuotes = !r.inQuotes
			return nil
		}
		// Rule 13: default.
		r.buffer.WriteRune(ch)
		return nil

	case phaseParamName:
		// Rule 9: delimiter — no '=' seen, so this is a legacy
		// nameless (value-only) parameter.
		if ch == ';' || ch == ':' {
			r.commitNamelessParamValue(r.stack.Current())
			if ch == ':' {
				r.phase = phaseValue
			} else {
				r.phase = phaseParamName
			}
			return nil
		}
		// Rule 11: '=' commits the parameter name.
		if ch == '=' {
			r.curParamName = canonicalizeParamName(r.buffer.String(), r.stack.Current())
			r.buffer.Reset()
			r.phase = phaseParamValue
			return nil
		}
		// Rule 13: default.
		r.buffer.WriteRune(ch)
		return nil

	default: // phaseNameOrGroup
		// Rule 8: group boundary.
		if ch == '.' && !r.hasGroup && r.name == "" {
			r.group = r.buffer.String()
			r.hasGroup = true
			r.buffer.Reset()
			return nil
		}
		// Rule 9: delimiter commits the property name.
		if ch == ';' || ch == ':' {
			r.name = r.buffer.String()
			r.buffer.Reset()
			if ch == ':' {
				r.phase = phaseValue
			} else {
				r.phase = phaseParamName
			}
			return nil
		}
		// Rule 13: default.
		r.buffer.WriteRune(ch)
		return nil
	}
}

func canonicalizeParamName(s string, d dialect.Dialect) string {
	if d == dialect.Old {
		s = strings.TrimRight(s, " \t")
	}
	return strings.ToUpper(s)
}

// commitParamValue commits the buffer as a value under curParamName.
// final is true for ';'/':' (clears curParamName and in-quotes state
// for the next parameter), false for NEW's ',' (keeps accumulating
// under the same key).
func (r *Reader) commitParamValue(d dialect.Dialect, final bool) {
	val := r.buffer.String()
	if d == dialect.Old {
		val = strings.TrimLeft(val, " \t")
	}
	r.params.Add(r.curParamName, val)
	r.buffer.Reset()
	if final {
		r.curParamName = ""
		r.inQuotes = false
	}
}

func (r *Reader) commitNamelessParamValue(d dialect.Dialect) {
	val := r.buffer.String()
	if d == dialect.Old {
		val = strings.TrimLeft(val, " \t")
	}
	r.params.Add(property.NullKey, val)
	r.buffer.Reset()
}

// finalizeProperty completes the in-progress logical line: either it
// never reached ':' (discarded with a MALFORMED_LINE warning), or its
// value is complete and is dispatched as BEGIN/END/VERSION/property.
// Called both mid-stream (rule 3) and at end-of-stream, since the
// final record's terminator is optional (spec §6).
func (r *Reader) finalizeProperty() error {
	defer r.resetProperty()

	if !r.lineHasContent {
		return nil
	}
	if r.phase != phaseValue {
		r.emitWarning(MalformedLine, nil, nil)
		return nil
	}

	raw := r.buffer.String()
	p := &property.Property{
		Group:      r.group,
		HasGroup:   r.hasGroup,
		Name:       r.name,
		Parameters: r.params,
		Value:      raw,
	}

	if p.Parameters.IsQuotedPrintable() {
		charsetName, _ := p.Parameters.CharsetName()
		decoded, err := r.opts.Codec.Decode([]byte(raw), charsetName)
		if err != nil {
			kind := QuotedPrintableError
			if errors.Is(err, charset.ErrIllegalName) || errors.Is(err, charset.ErrUnsupported) {
				kind = UnknownCharset
				p.Value = decoded
			}
			r.emitWarning(kind, p, err)
		} else {
			p.Value = decoded
		}
	}

	r.dispatchProperty(p)
	return nil
}

func (r *Reader) dispatchProperty(p *property.Property) {
	switch strings.ToUpper(p.Name) {
	case "BEGIN":
		comp := strings.TrimSpace(p.Value)
		if comp == "" {
			r.emitWarning(EmptyBegin, p, nil)
			return
		}
		r.stack.Begin(comp)
		logger.Printf(logger.DBG, "[reader] BEGIN:%s (depth=%d)\n", comp, r.stack.Depth())
		r.listener.OnBegin(comp, r.context())
	case "END":
		comp := strings.TrimSpace(p.Value)
		if comp == "" {
			r.emitWarning(EmptyEnd, p, nil)
			return
		}
		closed, ok := r.stack.End(comp)
		if !ok {
			r.emitWarning(UnmatchedEnd, p, nil)
			return
		}
		ctx := r.context()
		for _, f := range closed {
			logger.Printf(logger.DBG, "[reader] END:%s\n", f.Component)
			r.listener.OnEnd(f.Component, ctx)
		}
	case "VERSION":
		current := r.currentComponent()
		if r.opts.Rules != nil && r.opts.Rules.Ruled(current) {
			version := strings.TrimSpace(p.Value)
			if d, ok := r.opts.Rules.Lookup(current, version); ok {
				r.stack.SetCurrentDialect(d)
				r.listener.OnVersion(current, version, d, r.context())
				return
			}
			r.emitWarning(UnknownVersion, p, nil)
		}
		r.listener.OnProperty(p, r.context())
	default:
		r.listener.OnProperty(p, r.context())
	}
}

func (r *Reader) currentComponent() string {
	path := r.stack.Path()
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func (r *Reader) context() *Context {
	return &Context{
		Path:       r.stack.Path(),
		Line:       r.rawLine.String(),
		LineNumber: r.lineStart,
		stopped:    &r.stopped,
	}
}

func (r *Reader) emitWarning(kind WarningKind, p *property.Property, cause error) {
	if cause != nil {
		logger.Printf(logger.WARN, "[reader] %s at line %d: %s\n", kind, r.lineStart, cause.Error())
	} else {
		logger.Printf(logger.WARN, "[reader] %s at line %d\n", kind, r.lineStart)
	}
	r.listener.OnWarning(Warning{Kind: kind, Property: p, Cause: cause}, r.context())
}
