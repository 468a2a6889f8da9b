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

package daqctl

import (
	"fmt"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

const (
	ErrorStatus liberr.CodeError = iota + liberr.MinPkgDaqControl
	ErrorNoBindings
	ErrorDeviceError
	ErrorOutOfRange
	ErrorInvalidDuration
)

func init() {
	if liberr.ExistInMapMessage(ErrorStatus) {
		panic(fmt.Errorf("error code collision with package daqctl"))
	}
	liberr.RegisterIdFctMessage(ErrorStatus, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorStatus:
		return "operation not valid in the controller's current status"
	case ErrorNoBindings:
		return "node bindings aren't available"
	case ErrorDeviceError:
		return "device error"
	case ErrorOutOfRange:
		return "index out of range of the currently configured file set"
	case ErrorInvalidDuration:
		return "run duration must be non-zero"
	}
	return liberr.NullMessage
}
