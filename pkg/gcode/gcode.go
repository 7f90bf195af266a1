// This file may be distributed under the terms of the GNU GPLv3 license.

// Package gcode provides parsing and rendering of line-oriented G-code.
//
// A line has the form "CMD ARG1 ARG2 ... ;comment" where each arg token is a
// single letter immediately followed by its value. Parsing never fails and
// never drops input: unrecognized commands and arg letters are carried
// opaquely and render back unchanged.
package gcode

import (
	"strconv"
	"strings"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
)

// Record is one parsed G-code line. Cmd may be empty for comment-only or
// blank lines. Argument values are kept as raw strings so that untouched
// records render back byte-for-byte (modulo whitespace normalization).
type Record struct {
	Cmd     string
	Comment string

	args map[string]string
	keys []string // render order: first-seen order of arg letters
}

// NewRecord creates an empty Record with the given command.
func NewRecord(cmd string) *Record {
	return &Record{Cmd: cmd, args: make(map[string]string)}
}

// NewComment creates a comment-only Record.
func NewComment(text string) *Record {
	r := NewRecord("")
	r.Comment = text
	return r
}

// Set stores a raw argument value for a letter, preserving first-seen order.
func (r *Record) Set(letter, value string) *Record {
	if r.args == nil {
		r.args = make(map[string]string)
	}
	if _, ok := r.args[letter]; !ok {
		r.keys = append(r.keys, letter)
	}
	r.args[letter] = value
	return r
}

// SetFloat stores a numeric argument, formatted with the shortest
// representation that round-trips.
func (r *Record) SetFloat(letter string, v float64) *Record {
	return r.Set(letter, strconv.FormatFloat(v, 'f', -1, 64))
}

// Arg returns the raw value for a letter.
func (r *Record) Arg(letter string) (string, bool) {
	v, ok := r.args[letter]
	return v, ok
}

// Has reports whether the letter is present.
func (r *Record) Has(letter string) bool {
	_, ok := r.args[letter]
	return ok
}

// Float parses the value for a letter as a float64. A missing letter or an
// unparseable value yields a MISSING_COORDINATE error.
func (r *Record) Float(letter string) (float64, error) {
	v, ok := r.args[letter]
	if !ok {
		return 0, errors.MissingCoordinateError(r.Cmd, letter)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.MissingCoordinateError(r.Cmd, letter)
	}
	return f, nil
}

// Letters returns the argument letters in render order.
func (r *Record) Letters() []string {
	return r.keys
}

// NumArgs returns the number of arguments.
func (r *Record) NumArgs() int {
	return len(r.args)
}

// IsComment reports whether this is a comment-only Record.
func (r *Record) IsComment() bool {
	return r.Cmd == "" && len(r.args) == 0
}

// Parse converts one line of text into a Record. It never fails: each arg
// token's first character is taken as the letter and the rest as its raw
// value, whatever the character.
func Parse(line string) *Record {
	code := line
	comment := ""
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		code = line[:idx]
		comment = strings.TrimRight(line[idx+1:], " \t\r\n")
	}

	rec := NewRecord("")
	rec.Comment = comment

	fields := strings.Fields(code)
	if len(fields) == 0 {
		return rec
	}
	rec.Cmd = fields[0]
	for _, f := range fields[1:] {
		rec.Set(f[:1], f[1:])
	}
	return rec
}

// String renders the Record back into a single line: command, arguments in
// render order, then ";comment", joined with single spaces.
func (r *Record) String() string {
	var parts []string
	if r.Cmd != "" {
		parts = append(parts, r.Cmd)
	}
	for _, k := range r.keys {
		parts = append(parts, k+r.args[k])
	}
	if r.Comment != "" {
		parts = append(parts, ";"+r.Comment)
	}
	return strings.Join(parts, " ")
}
