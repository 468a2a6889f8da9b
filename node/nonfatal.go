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

package node

import "errors"

// NonFatalError marks a node failure that should send the controller
// through a do-restart rather than its normal error path: the node
// itself is unwell, but the surrounding graph and process are not.
type NonFatalError struct {
	Cause error
}

func (e *NonFatalError) Error() string {
	if e.Cause == nil {
		return "nonfatal node error"
	}
	return "nonfatal node error: " + e.Cause.Error()
}

func (e *NonFatalError) Unwrap() error { return e.Cause }

// IsNonFatal reports whether err is, or wraps, a NonFatalError.
func IsNonFatal(err error) bool {
	var nf *NonFatalError
	return errors.As(err, &nf)
}
