//----------------------------------------------------------------------
// This file is part of Gospel.
// Copyright (C) 2011-2023 Bernd Fix  >Y<
//
// Gospel is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// Gospel is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later
//----------------------------------------------------------------------

// Package errors wraps vobject's write-side validation failures (tier 2
// of the error model) in a single type that still satisfies errors.Is
// against a package-level sentinel.
package errors

import "fmt"

// Error wraps a sentinel base error with the field and value that
// triggered it, so a caller can both errors.Is(err, writer.ErrInvalidName)
// and print a message naming the offending data.
type Error struct {
	Err   error  // base error (for errors.Is() and errors.As() calls)
	Field string // name of the offending field (group, name, parameter, value, ...)
	Ctx   string // free-form context, usually the rejected text
}

// Unwrap returns the wrapped sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Error returns a human-readable description naming the field.
func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s [%s]", e.Err.Error(), e.Ctx)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Err.Error(), e.Field, e.Ctx)
}

// New creates an Error wrapping err, naming the offending field and
// carrying free-form context (commonly the rejected text, quoted).
func New(err error, field string, format string, args ...interface{}) *Error {
	return &Error{
		Err:   err,
		Field: field,
		Ctx:   fmt.Sprintf(format, args...),
	}
}
