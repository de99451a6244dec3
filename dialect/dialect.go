/*
 * Dialect: the two vobject syntax styles, OLD and NEW.
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

// Package dialect holds the two-variant syntax-style enum shared by
// every other vobject package: OLD (vCard 2.1 / iCalendar 1.0) and
// NEW (vCard 3.0+ / iCalendar 2.0).
package dialect

// Dialect distinguishes the legacy and modern vobject syntaxes. It is
// modeled as a sum type (two named values), not a boolean, so call
// sites read as "Old"/"New" rather than an unexplained true/false.
type Dialect int

const (
	// Old is vCard 2.1 / iCalendar 1.0: backslash parameter escaping,
	// repeated-segment multi-valued parameters, multi-char fold
	// whitespace.
	Old Dialect = iota
	// New is vCard 3.0+ / iCalendar 2.0: optional caret parameter
	// escaping, comma-joined multi-valued parameters, quoted
	// parameter values, single-char fold whitespace.
	New
)

// String renders the dialect name for log and error messages.
func (d Dialect) String() string {
	switch d {
	case Old:
		return "OLD"
	case New:
		return "NEW"
	default:
		return "UNKNOWN"
	}
}
