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

// Package request defines the transport-agnostic request surface (spec
// §6): an operation kind, a routing-key path split into tokens, and an
// optional payload tree, plus the Dispatcher boundary that a transport
// binding (NATS, AMQP, an HTTP shim, a batch script) submits requests
// through. Nothing in this package knows about wire formats; a binding
// translates its own envelope into a Request and a Reply back out.
package request

import "strings"

// Kind is the request's verb.
type Kind string

const (
	KindCmd Kind = "cmd"
	KindSet Kind = "set"
	KindGet Kind = "get"
)

// ReturnCode is the outcome a Reply carries, matching spec §6's table.
type ReturnCode string

const (
	Success                   ReturnCode = "success"
	DeviceError               ReturnCode = "device-error"
	MessageErrorBadPayload    ReturnCode = "message-error-bad-payload"
	MessageErrorInvalidKey    ReturnCode = "message-error-invalid-key"
	MessageErrorInvalidMethod ReturnCode = "message-error-invalid-method"
)

// Request is one inbound operation, already parsed out of its transport
// envelope.
type Request struct {
	Kind    Kind
	Keys    []string
	Payload map[string]interface{}
}

// ParseKeys splits a routing-key path on '.' into its token list, the
// form every pattern in spec §6's table is matched against.
func ParseKeys(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Reply is what a Dispatcher hands back. Payload is nil for requests
// that produce no data (most cmd and set requests).
type Reply struct {
	Code    ReturnCode
	Payload map[string]interface{}
	Message string
}

// Dispatcher is the boundary a transport binding submits parsed requests
// through. Implementations must be safe for concurrent use; request
// handler threads may call Dispatch concurrently with each other and
// with the controller's own background work (spec §5).
type Dispatcher interface {
	Dispatch(req Request) Reply
}
