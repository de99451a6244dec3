/*
 * Property: the in-memory group/name/parameters/value record (spec
 * component C) and its case-insensitive, order-preserving Parameters
 * multimap.
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

// Package property holds the vobject data model: Property (group,
// name, parameters, value) and Parameters, the ordered, case-
// insensitive parameter multimap shared by the reader and writer.
package property

import (
	"strings"

	"github.com/bfix/vobject/data"
)

// NullKey is the internal canonical form of the "nameless" legacy
// parameter (e.g. the bare ";QUOTED-PRINTABLE" form). It is never a
// legal canonicalized real parameter name, since canonicalization
// upper-cases non-empty input.
const NullKey = ""

// Parameters is an ordered, case-insensitive multimap from parameter
// name to a sequence of values. Keys are canonicalized to upper-case
// ASCII; the empty string represents the nameless/legacy parameter.
type Parameters struct {
	m *data.OrderedMap[string, []string]
}

// NewParameters creates an empty Parameters multimap.
func NewParameters() *Parameters {
	return &Parameters{m: data.NewOrderedMap[string, []string]()}
}

func canonical(key string) string {
	return strings.ToUpper(key)
}

// Add appends value to the sequence stored under key, creating the
// key (at the end of the key order) if it is new.
func (p *Parameters) Add(key, value string) {
	k := canonical(key)
	vals, _ := p.m.Get(k)
	p.m.Set(k, append(vals, value))
}

// Set replaces the entire value sequence for key. An empty slice
// keeps the key present but logically absent at emit time (spec
// §3: "per-key sequence may be empty").
func (p *Parameters) Set(key string, values []string) {
	p.m.Set(canonical(key), values)
}

// Values returns the value sequence stored under key, and whether
// the key is present at all (even with zero values).
func (p *Parameters) Values(key string) ([]string, bool) {
	return p.m.Get(canonical(key))
}

// First returns the first value under key, or ok=false if the key is
// absent or its sequence is empty.
func (p *Parameters) First(key string) (value string, ok bool) {
	vals, present := p.m.Get(canonical(key))
	if !present || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Delete removes key entirely.
func (p *Parameters) Delete(key string) {
	p.m.Delete(canonical(key))
}

// Keys returns the parameter names in insertion order (canonicalized,
// upper-case ASCII; NullKey for the nameless parameter).
func (p *Parameters) Keys() []string {
	return p.m.Keys()
}

// Len returns the number of distinct parameter names, including any
// whose value sequence is currently empty.
func (p *Parameters) Len() int {
	return p.m.Len()
}

// Clone performs a deep copy, used by the writer's copy-on-write
// injection of ENCODING/CHARSET so the caller's original Parameters
// is never mutated (spec §4.5).
func (p *Parameters) Clone() *Parameters {
	out := NewParameters()
	for _, k := range p.m.Keys() {
		vals, _ := p.m.Get(k)
		cp := make([]string, len(vals))
		copy(cp, vals)
		out.m.Set(k, cp)
	}
	return out
}

// IsQuotedPrintable reports whether any value under ENCODING or the
// nameless key equals QUOTED-PRINTABLE, case-insensitively.
func (p *Parameters) IsQuotedPrintable() bool {
	for _, key := range []string{"ENCODING", NullKey} {
		vals, ok := p.m.Get(canonical(key))
		if !ok {
			continue
		}
		for _, v := range vals {
			if strings.EqualFold(v, "QUOTED-PRINTABLE") {
				return true
			}
		}
	}
	return false
}

// CharsetName returns the raw text of the first CHARSET value. Name
// resolution to an encoding.Encoding (and "illegal" vs "unsupported"
// diagnosis) lives in package charset, not here.
func (p *Parameters) CharsetName() (string, bool) {
	return p.First("CHARSET")
}

// Equal reports structural equality: same keys in the same order,
// each with an identical value sequence.
func (p *Parameters) Equal(o *Parameters) bool {
	if p == nil || o == nil {
		return p == o
	}
	ak, bk := p.Keys(), o.Keys()
	if len(ak) != len(bk) {
		return false
	}
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
		av, _ := p.Values(ak[i])
		bv, _ := o.Values(bk[i])
		if len(av) != len(bv) {
			return false
		}
		for j := range av {
			if av[j] != bv[j] {
				return false
			}
		}
	}
	return true
}

// Property is a single vobject record: optional group, name,
// parameters and value (spec §3).
type Property struct {
	Group      string // zero value with HasGroup=false means "absent"
	HasGroup   bool
	Name       string
	Parameters *Parameters
	Value      string
}

// New creates a Property with no group and an empty Parameters map.
func New(name, value string) *Property {
	return &Property{
		Name:       name,
		Parameters: NewParameters(),
		Value:      value,
	}
}

// Equal reports structural equality across all four fields.
func (p *Property) Equal(o *Property) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Group == o.Group &&
		p.HasGroup == o.HasGroup &&
		p.Name == o.Name &&
		p.Value == o.Value &&
		p.Parameters.Equal(o.Parameters)
}
