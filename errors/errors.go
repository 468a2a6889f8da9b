/*
 * MIT License
 *
 * Copyright (c) 2026 Axion Dark Matter Experiment Collaboration
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package errors gives every package of the daemon a small, shared error
// type: a numeric CodeError (HTTP-status flavored), an optional parent
// chain, and a registry that maps codes back to human messages. It is a
// condensed sibling of the error package daemons in this codebase family
// have always used - callers get a stable code to switch on instead of
// string-matching messages.
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// CodeError is a small numeric classification for an Error, analogous to
// an HTTP status code. Each package reserves a range of 50 starting at
// its MinPkgXxx constant in modules.go.
type CodeError uint16

const (
	UnknownError   CodeError = 0
	UnknownMessage           = "unknown error"
	NullMessage              = ""
)

// Message renders a CodeError into a human string. Registered per package
// via RegisterIdFctMessage.
type Message func(code CodeError) string

var idMsgFct = make(map[CodeError]Message)

// RegisterIdFctMessage registers the message function covering every code
// at or above minCode, until the next registered range starts. Packages
// call this from an init() guarded by ExistInMapMessage to catch code
// collisions at process start rather than at first use.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	idMsgFct[minCode] = fct
}

// ExistInMapMessage reports whether the message function registered for
// the range covering code already resolves code to a message, i.e.
// whether code is already claimed by a registered package.
func ExistInMapMessage(code CodeError) bool {
	if f, ok := idMsgFct[findRange(code)]; ok {
		return f(code) != NullMessage
	}
	return false
}

func findRange(code CodeError) CodeError {
	keys := make([]int, 0, len(idMsgFct))
	for k := range idMsgFct {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	var best CodeError
	for _, k := range keys {
		if CodeError(k) <= code {
			best = CodeError(k)
		}
	}
	return best
}

// Message resolves the human text for a code, or UnknownMessage.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}
	if f, ok := idMsgFct[findRange(c)]; ok {
		if m := f(c); m != NullMessage {
			return m
		}
	}
	return UnknownMessage
}

// Error builds a new Error carrying this code, with optional parents.
func (c CodeError) Error(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// ErrorParent is an alias of Error kept for readability at call sites that
// exist purely to attach a lower-level cause.
func (c CodeError) ErrorParent(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// Errorf builds a new Error with a formatted message, keeping the code's
// registered message as a prefix when one is registered.
func (c CodeError) Errorf(format string, args ...interface{}) Error {
	msg := fmt.Sprintf(format, args...)
	if m := c.Message(); m != UnknownMessage && m != NullMessage {
		msg = m + ": " + msg
	}
	return New(c, msg)
}

// Error is the daemon-wide error type: a plain error plus a code and an
// optional chain of parent causes.
type Error interface {
	error

	Code() CodeError
	IsCode(code CodeError) bool
	HasCode(code CodeError) bool

	AddParent(parent ...error)
	HasParent() bool
	Parents() []error

	Is(err error) bool
	Unwrap() error
}

type ers struct {
	code CodeError
	msg  string
	p    []error
}

// New builds an Error with the given code, message, and parents.
func New(code CodeError, message string, parent ...error) Error {
	p := make([]error, 0, len(parent))
	for _, e := range parent {
		if e != nil {
			p = append(p, e)
		}
	}
	return &ers{code: code, msg: message, p: p}
}

// Newf builds an Error carrying code with a formatted message; unlike
// CodeError.Errorf it does not prefix the code's registered message.
func Newf(code CodeError, format string, args ...interface{}) Error {
	return New(code, fmt.Sprintf(format, args...))
}

func (e *ers) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.code.Message()
}

func (e *ers) Code() CodeError { return e.code }

func (e *ers) IsCode(code CodeError) bool { return e.code == code }

func (e *ers) HasCode(code CodeError) bool {
	if e.code == code {
		return true
	}
	for _, p := range e.p {
		if Has(p, code) {
			return true
		}
	}
	return false
}

func (e *ers) AddParent(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.p = append(e.p, p)
		}
	}
}

func (e *ers) HasParent() bool { return len(e.p) > 0 }

func (e *ers) Parents() []error { return e.p }

func (e *ers) Is(err error) bool {
	other, ok := err.(*ers)
	if !ok {
		return false
	}
	return e.code != UnknownError && e.code == other.code
}

func (e *ers) Unwrap() error {
	if len(e.p) == 0 {
		return nil
	}
	return e.p[0]
}

// Get extracts the Error interface out of a standard error, if present.
func Get(e error) Error {
	var err Error
	if errors.As(e, &err) {
		return err
	}
	return nil
}

// Is reports whether e carries our Error type.
func Is(e error) bool {
	return Get(e) != nil
}

// Has reports whether e, or any of its parents, carries the given code.
func Has(e error, code CodeError) bool {
	if e == nil {
		return false
	}
	if err := Get(e); err != nil {
		return err.HasCode(code)
	}
	return false
}

// Make wraps a plain error into our Error type with an unknown code, or
// returns it unchanged if it already is one.
func Make(e error) Error {
	if e == nil {
		return nil
	}
	if err := Get(e); err != nil {
		return err
	}
	return New(UnknownError, e.Error())
}
