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

// Package batch runs an ordered list of requests at startup, exactly as
// if each had arrived over the request bus, discarding every reply
// (spec §4.6). It exists so an unattended daemon can be told, at launch,
// to "activate, start a run for 200 ms into these two files, then quit"
// without coupling the core to any particular transport.
package batch

import (
	"time"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	"github.com/axiondarkmatterexperiment/psyllid/request"
)

const defaultSleepFor = 500 * time.Millisecond

// Action is one entry of a batch script.
type Action struct {
	Type     request.Kind
	Keys     string
	Payload  map[string]interface{}
	SleepFor *time.Duration
}

// Run submits every action in order to d, sleeping SleepFor (or the
// 500ms default) after each, and discards replies other than logging
// non-success outcomes. It stops at the first action whose type or key
// path is malformed; everything it already submitted has taken effect.
func Run(d request.Dispatcher, actions []Action, log logger.Logger) liberr.Error {
	for i, a := range actions {
		if a.Type == "" || a.Keys == "" {
			return ErrorBadAction.Errorf("action %d", i)
		}

		reply := d.Dispatch(request.Request{
			Kind:    a.Type,
			Keys:    request.ParseKeys(a.Keys),
			Payload: a.Payload,
		})
		if log != nil && reply.Code != request.Success {
			log.WithField("action", a.Keys).WithField("code", string(reply.Code)).Warn("batch action did not succeed")
		}

		wait := defaultSleepFor
		if a.SleepFor != nil {
			wait = *a.SleepFor
		}
		time.Sleep(wait)
	}
	return nil
}
