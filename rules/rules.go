/*
 * Rules: the syntax rule table and component stack (spec component H),
 * driving mid-stream dialect switching and BEGIN/END nesting.
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

// Package rules holds the two-level syntax rule table (component name
// and version string to dialect) and the nested component/dialect
// stack the reader and writer maintain while walking BEGIN/END pairs.
package rules

import (
	"strings"

	"github.com/bfix/vobject/data"
	"github.com/bfix/vobject/dialect"
)

// Rule pairs a ruled component's name with the version string that
// selects a dialect for it, e.g. {"VCARD", "3.0"}.
type Rule struct {
	Component string
	Version   string
	Dialect   dialect.Dialect
}

// Table maps component name (upper-cased; empty string means "the
// top-level stream itself") to version string to dialect. Only
// components present in the table participate in VERSION-triggered
// mid-stream dialect switching (spec §4.3); unlisted components
// inherit their parent's dialect unconditionally.
type Table struct {
	rules map[string]map[string]dialect.Dialect
}

// NewTable builds a Table from an explicit rule list.
func NewTable(rules []Rule) *Table {
	t := &Table{rules: make(map[string]map[string]dialect.Dialect)}
	for _, r := range rules {
		comp := strings.ToUpper(r.Component)
		versions, ok := t.rules[comp]
		if !ok {
			versions = make(map[string]dialect.Dialect)
			t.rules[comp] = versions
		}
		versions[r.Version] = r.Dialect
	}
	return t
}

// NewVCardRules builds the standard vCard version table: 2.1 selects
// the OLD dialect, 3.0 and 4.0 select NEW.
func NewVCardRules() *Table {
	return NewTable([]Rule{
		{Component: "VCARD", Version: "2.1", Dialect: dialect.Old},
		{Component: "VCARD", Version: "3.0", Dialect: dialect.New},
		{Component: "VCARD", Version: "4.0", Dialect: dialect.New},
	})
}

// NewICalendarRules builds the standard iCalendar version table: 1.0
// selects OLD, 2.0 selects NEW.
func NewICalendarRules() *Table {
	return NewTable([]Rule{
		{Component: "VCALENDAR", Version: "1.0", Dialect: dialect.Old},
		{Component: "VCALENDAR", Version: "2.0", Dialect: dialect.New},
	})
}

// Lookup reports the dialect a VERSION value selects for component,
// and whether the component is ruled at all. An unruled component (or
// an unrecognized version under a ruled component) reports ok=false;
// the caller should keep the inherited dialect and, for the latter
// case, emit an UNKNOWN_VERSION warning.
func (t *Table) Lookup(component, version string) (d dialect.Dialect, ok bool) {
	versions, ruled := t.rules[strings.ToUpper(component)]
	if !ruled {
		return dialect.Old, false
	}
	d, ok = versions[version]
	return d, ok
}

// Ruled reports whether component participates in dialect switching
// at all, independent of whether a specific version is recognized.
func (t *Table) Ruled(component string) bool {
	_, ok := t.rules[strings.ToUpper(component)]
	return ok
}

// Frame is one entry of the component stack: the component name as it
// appeared on BEGIN, and the dialect in effect inside it.
type Frame struct {
	Component string
	Dialect   dialect.Dialect
}

// Stack is the nested component/dialect stack spec §3 describes: an
// ordered sequence of open component names with a parallel dialect
// sequence, plus one extra slot at the bottom holding the default
// dialect used for properties outside any component.
type Stack struct {
	def    dialect.Dialect
	frames *data.Stack[Frame]
}

// NewStack creates an empty component stack with def as the dialect
// for properties seen before any BEGIN (or after the last END).
func NewStack(def dialect.Dialect) *Stack {
	return &Stack{def: def, frames: data.NewStack[Frame]()}
}

// Push opens a new component, inheriting d as its dialect (callers
// pass the dialect the parent is currently using, later possibly
// overridden by a VERSION property inside the new component).
func (s *Stack) Push(component string, d dialect.Dialect) {
	s.frames.Push(Frame{Component: component, Dialect: d})
}

// Current returns the dialect in effect for the innermost open
// component, or the stack's default dialect when nothing is open.
func (s *Stack) Current() dialect.Dialect {
	if top, ok := s.frames.Peek(); ok {
		return top.Dialect
	}
	return s.def
}

// SetCurrentDialect overwrites the dialect of the innermost open
// component (used when a VERSION property inside it selects a new
// dialect per the rule table), or the stack's default dialect when
// nothing is open.
func (s *Stack) SetCurrentDialect(d dialect.Dialect) {
	if n := s.frames.Len(); n > 0 {
		if top, ok := s.frames.At(n - 1); ok {
			top.Dialect = d
			s.replace(n-1, top)
			return
		}
	}
	s.def = d
}

func (s *Stack) replace(i int, f Frame) {
	// data.Stack has no direct mutate-at-index; truncate above i and
	// push the replacement back, since component nesting depth is
	// small and this only runs on an explicit VERSION property, not
	// per character.
	s.frames.Truncate(i)
	s.frames.Push(f)
}

// Depth reports the number of currently open components.
func (s *Stack) Depth() int {
	return s.frames.Len()
}

// Path returns the open component names, outermost first.
func (s *Stack) Path() []string {
	n := s.frames.Len()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		f, _ := s.frames.At(i)
		out[i] = f.Component
	}
	return out
}

// Begin pushes a new frame for component, inheriting the current
// dialect (spec §4.7: "the stack pushes the current dialect on BEGIN
// so nested components inherit their parent's dialect").
func (s *Stack) Begin(component string) {
	s.Push(component, s.Current())
}

// End implements the BEGIN/END matching policy of spec §4.3/§6:
// search the stack top-down for the most recent open component named
// name (case-insensitive); if found, pop it and every frame opened
// after it (force-closing intervening components), returning the
// popped frames in close order (innermost first) with matched=true.
// If no open component has that name, returns matched=false and the
// stack is left untouched.
func (s *Stack) End(name string) (closed []Frame, matched bool) {
	n := s.frames.Len()
	idx := -1
	for i := n - 1; i >= 0; i-- {
		f, _ := s.frames.At(i)
		if strings.EqualFold(f.Component, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	closed = make([]Frame, 0, n-idx)
	for s.frames.Len() > idx {
		closed = append(closed, s.frames.Pop())
	}
	return closed, true
}

// Empty reports whether no component is currently open.
func (s *Stack) Empty() bool {
	return s.frames.Len() == 0
}
