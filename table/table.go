/*
 * Table: allowed-character tables for each lexical position.
 *
 * Built once as immutable data rather than scattered code, the way
 * gospel's bitcoin/ecc curve parameter tables are computed once at
 * package init and shared by every caller.
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

// Package table implements the allowed-character tables of spec
// §4.1: a 128-bit mask over 7-bit ASCII plus a "non-ASCII allowed"
// flag, indexed by lexical position, dialect, strictness and (for
// parameter values) caret mode.
package table

import "github.com/bfix/vobject/dialect"

// Table answers "is this character legal here?" for one lexical
// position under one (dialect, strict[, caret]) combination.
type Table struct {
	mask     [128]bool
	nonASCII bool
}

// Allows reports whether r is legal at this table's position.
func (t *Table) Allows(r rune) bool {
	if r < 0 {
		return false
	}
	if r > 127 {
		return t.nonASCII
	}
	return t.mask[r]
}

// AllowsString reports whether every rune of s is legal.
func (t *Table) AllowsString(s string) bool {
	for _, r := range s {
		if !t.Allows(r) {
			return false
		}
	}
	return true
}

// Flip returns the complement table: legal becomes illegal and vice
// versa. Used to build "here is what you may NOT use" messages.
func (t *Table) Flip() *Table {
	out := &Table{nonASCII: !t.nonASCII}
	for i := range t.mask {
		out.mask[i] = !t.mask[i]
	}
	return out
}

///////////////////////////////////////////////////////////////////////
// Mask construction helpers.

func maskRange(lo, hi byte) [128]bool {
	var m [128]bool
	for i := int(lo); i <= int(hi) && i < 128; i++ {
		m[i] = true
	}
	return m
}

func maskAll() [128]bool {
	return maskRange(0, 127)
}

func maskOr(ms ...[128]bool) [128]bool {
	var m [128]bool
	for _, in := range ms {
		for i, v := range in {
			if v {
				m[i] = true
			}
		}
	}
	return m
}

func maskSet(m [128]bool, chars string, v bool) [128]bool {
	for _, c := range chars {
		if c < 128 {
			m[byte(c)] = v
		}
	}
	return m
}

func maskAllExcept(exclude string) [128]bool {
	return maskSet(maskAll(), exclude, false)
}

func printableASCII() [128]bool {
	return maskRange(0x20, 0x7e)
}

func printableExcept(exclude string) [128]bool {
	return maskSet(printableASCII(), exclude, false)
}

// alnumDash is A-Z a-z 0-9 '-', the NEW-dialect strict identifier
// alphabet shared by group, property name and parameter name.
func alnumDash() [128]bool {
	return maskOr(maskRange('A', 'Z'), maskRange('a', 'z'), maskRange('0', '9'), maskSet([128]bool{}, "-", true))
}

const (
	cr  = "\r"
	lf  = "\n"
	tab = "\t"
)

///////////////////////////////////////////////////////////////////////
// Group / property name (spec §4.1, first bullet).

// GroupOrName returns the table shared by both group and property
// name positions -- the spec treats them identically.
func GroupOrName(d dialect.Dialect, strict bool) *Table {
	if !strict {
		// OLD and NEW non-strict are identical.
		return &Table{mask: maskAllExcept(cr + lf + ":.;"), nonASCII: true}
	}
	if d == dialect.Old {
		return &Table{mask: printableExcept("[]=:.,;"), nonASCII: false}
	}
	return &Table{mask: alnumDash(), nonASCII: false}
}

///////////////////////////////////////////////////////////////////////
// Parameter name.

// ParamName returns the allowed-character table for a parameter name.
// The non-strict rule is shared by both dialects; the strict rule
// matches the strict property-name alphabet in both dialects.
func ParamName(d dialect.Dialect, strict bool) *Table {
	if strict {
		return GroupOrName(d, true)
	}
	return &Table{mask: maskAllExcept(cr + lf + ":;="), nonASCII: true}
}

///////////////////////////////////////////////////////////////////////
// Parameter value.

// ParamValue returns the allowed-character table for a parameter
// value. caret is ignored for the OLD dialect (it has no effect
// there); for NEW it selects whether caret-decoding is enabled.
func ParamValue(d dialect.Dialect, strict bool, caret bool) *Table {
	if d == dialect.Old {
		if !strict {
			return &Table{mask: maskAllExcept(cr + lf + ":"), nonASCII: true}
		}
		return &Table{mask: maskSet(alnumDash(), ";", true), nonASCII: false}
	}
	// NEW dialect.
	if !caret {
		if !strict {
			return &Table{mask: maskAllExcept(cr + lf + "\""), nonASCII: true}
		}
		return &Table{mask: maskSet(printableExcept("\""), tab, true), nonASCII: true}
	}
	// Caret decoding enabled.
	if !strict {
		return &Table{mask: maskAll(), nonASCII: true}
	}
	return &Table{mask: maskSet(printableASCII(), tab+cr+lf, true), nonASCII: true}
}
