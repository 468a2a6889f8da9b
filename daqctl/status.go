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

// Status is the controller's position in the central state machine
// (spec §4.5). Every observed transition follows the activate/start-run
// diagram; states outside {activated, running} reject online
// reconfiguration and run control.
type Status int

const (
	Deactivated Status = iota
	Activating
	Activated
	Running
	Deactivating
	Canceled
	DoRestart
	Done
	Error
)

func (s Status) String() string {
	switch s {
	case Deactivated:
		return "deactivated"
	case Activating:
		return "activating"
	case Activated:
		return "activated"
	case Running:
		return "running"
	case Deactivating:
		return "deactivating"
	case Canceled:
		return "canceled"
	case DoRestart:
		return "do-restart"
	case Done:
		return "done"
	case Error:
		return "error"
	}
	return "unknown"
}
