/*
 * Values: the value-codec helpers (spec component G) for the four
 * composite value shapes vCard/iCalendar properties use, all sharing
 * one backslash-escape convention.
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

// Package values implements the List, Semi-structured, Structured and
// Multimap value codecs, orthogonal to line framing, all sharing the
// `\`-escape convention: `\\`->`\`, `\;`->`;`, `\,`->`,`, `\n`/`\N`->
// newline; any other escape passes both characters through verbatim.
package values

import "strings"

// Unescape reverses the shared backslash-escape convention.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case '\\':
				b.WriteRune('\\')
				i++
				continue
			case ';':
				b.WriteRune(';')
				i++
				continue
			case ',':
				b.WriteRune(',')
				i++
				continue
			case 'n', 'N':
				b.WriteRune('\n')
				i++
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// Escape applies the shared backslash-escape convention. escapeCommas
// controls whether ',' is escaped; '\\' and ';' are always escaped,
// and newlines always become the two-character sequence `\n`.
func Escape(s string, escapeCommas bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			if escapeCommas {
				b.WriteString(`\,`)
			} else {
				b.WriteRune(',')
			}
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// A lone CR is folded into the same literal `\n` escape;
			// callers normalize CRLF to "\n" before reaching here.
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitUnescaped splits s on unescaped occurrences of sep, honoring
// backslash escaping so `\;` or `\,` inside a field never splits it.
// limit <= 0 means unlimited; limit > 0 stops after limit-1 splits,
// leaving the remainder (sep included) as the final piece.
func splitUnescaped(s string, sep rune, limit int) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(s)
	escaped := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if escaped {
			cur.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			cur.WriteRune(r)
			escaped = true
			continue
		}
		if r == sep && (limit <= 0 || len(out) < limit-1) {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	out = append(out, cur.String())
	return out
}

// List splits input on unescaped commas, unescaping each piece. Empty
// input yields an empty (non-nil) sequence.
func List(input string) []string {
	if input == "" {
		return []string{}
	}
	parts := splitUnescaped(input, ',', 0)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Unescape(p)
	}
	return out
}

// WriteList joins items with ',', escaping each per the shared
// convention (commas are always escaped here, since comma is the
// list's own separator).
func WriteList(items []string) string {
	escaped := make([]string, len(items))
	for i, it := range items {
		escaped[i] = Escape(it, true)
	}
	return strings.Join(escaped, ",")
}

// SemiStructured splits input on unescaped semicolons. When limit > 0,
// splitting stops after limit-1 cuts so the final piece retains any
// remaining (unescaped) semicolons verbatim. Each returned piece is
// unescaped.
func SemiStructured(input string, limit int) []string {
	parts := splitUnescaped(input, ';', limit)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Unescape(p)
	}
	return out
}

// WriteSemiStructured joins fields with ';'. escapeCommas selects
// whether ',' is escaped in each field (OLD historically does not
// escape commas in semi-structured values); includeTrailingSemicolons
// keeps trailing empty fields instead of trimming them.
func WriteSemiStructured(fields []string, escapeCommas, includeTrailingSemicolons bool) string {
	fs := fields
	if !includeTrailingSemicolons {
		end := len(fs)
		for end > 0 && fs[end-1] == "" {
			end--
		}
		fs = fs[:end]
	}
	escaped := make([]string, len(fs))
	for i, f := range fs {
		escaped[i] = Escape(f, escapeCommas)
	}
	return strings.Join(escaped, ";")
}

// Structured parses a ';'-separated sequence of components, each
// itself a ','-separated sequence of sub-values. A component whose
// only sub-value is empty is represented as an empty component (a
// zero-length []string), never as a component holding one empty
// string.
func Structured(input string) [][]string {
	comps := splitUnescaped(input, ';', 0)
	out := make([][]string, len(comps))
	for i, c := range comps {
		if c == "" {
			out[i] = []string{}
			continue
		}
		subs := splitUnescaped(c, ',', 0)
		vals := make([]string, len(subs))
		for j, s := range subs {
			vals[j] = Unescape(s)
		}
		out[i] = vals
	}
	return out
}

// WriteStructured serializes a structured value. Each component is a
// sequence of sub-value slots: a nil slot (as opposed to a slot
// pointing at an empty string) emits the literal text "null"; trailing
// empty components may be trimmed via trimTrailingEmpty.
func WriteStructured(components [][]*string, trimTrailingEmpty bool) string {
	comps := components
	if trimTrailingEmpty {
		end := len(comps)
		for end > 0 && len(comps[end-1]) == 0 {
			end--
		}
		comps = comps[:end]
	}
	parts := make([]string, len(comps))
	for i, comp := range comps {
		subs := make([]string, len(comp))
		for j, v := range comp {
			if v == nil {
				subs[j] = "null"
				continue
			}
			subs[j] = Escape(*v, true)
		}
		parts[i] = strings.Join(subs, ",")
	}
	return strings.Join(parts, ";")
}

// MultimapEntry is one KEY=val1,val2 pair of a Multimap value.
type MultimapEntry struct {
	Key    string
	Values []string
}

// Multimap parses a ';'-separated sequence of KEY=val1,val2 pairs.
// Keys are canonicalized to upper-case ASCII; a key with no '=' is
// stored with a single empty value; empty keys are skipped; repeated
// keys accumulate into one entry in order of first appearance.
func Multimap(input string) []MultimapEntry {
	var out []MultimapEntry
	index := make(map[string]int)
	for _, pair := range splitUnescaped(input, ';', 0) {
		if pair == "" {
			continue
		}
		key, rest, hasEq := cutUnescaped(pair, '=')
		key = strings.ToUpper(Unescape(key))
		if key == "" {
			continue
		}
		var vals []string
		if hasEq {
			for _, v := range splitUnescaped(rest, ',', 0) {
				vals = append(vals, Unescape(v))
			}
		} else {
			vals = []string{""}
		}
		if i, ok := index[key]; ok {
			out[i].Values = append(out[i].Values, vals...)
			continue
		}
		index[key] = len(out)
		out = append(out, MultimapEntry{Key: key, Values: vals})
	}
	return out
}

// WriteMultimap serializes entries back into KEY=val1,val2;... form.
func WriteMultimap(entries []MultimapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		vals := make([]string, len(e.Values))
		for j, v := range e.Values {
			vals[j] = Escape(v, true)
		}
		parts[i] = e.Key + "=" + strings.Join(vals, ",")
	}
	return strings.Join(parts, ";")
}

// cutUnescaped is strings.Cut with escape-awareness for '='.
func cutUnescaped(s string, sep rune) (before, after string, found bool) {
	runes := []rune(s)
	escaped := false
	for i, r := range runes {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == sep {
			return string(runes[:i]), string(runes[i+1:]), true
		}
	}
	return s, "", false
}
