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

package graphrt

import (
	"fmt"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

const (
	ErrorAlreadyHeld liberr.CodeError = iota + liberr.MinPkgGraphRT
	ErrorNotHeld
	ErrorInvalidStart
	ErrorInvalidStop
)

func init() {
	if liberr.ExistInMapMessage(ErrorAlreadyHeld) {
		panic(fmt.Errorf("error code collision with package graphrt"))
	}
	liberr.RegisterIdFctMessage(ErrorAlreadyHeld, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorAlreadyHeld:
		return "graph runtime ticket already held"
	case ErrorNotHeld:
		return "graph runtime ticket not held by the given handle"
	case ErrorInvalidStart:
		return "invalid start function"
	case ErrorInvalidStop:
		return "invalid stop function"
	}
	return liberr.NullMessage
}
