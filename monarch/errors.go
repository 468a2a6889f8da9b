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

package monarch

import (
	"fmt"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

const (
	ErrorBadStage liberr.CodeError = iota + liberr.MinPkgMonarch
	ErrorHeaderHeld
	ErrorStreamBusy
	ErrorStorage
)

func init() {
	if liberr.ExistInMapMessage(ErrorBadStage) {
		panic(fmt.Errorf("error code collision with package monarch"))
	}
	liberr.RegisterIdFctMessage(ErrorBadStage, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorBadStage:
		return "operation not valid in the file's current stage"
	case ErrorHeaderHeld:
		return "header guard already held"
	case ErrorStreamBusy:
		return "stream already held by another caller"
	case ErrorStorage:
		return "underlying storage error"
	}
	return liberr.NullMessage
}
