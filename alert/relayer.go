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

// Package alert is the chat-alert relay the DAQ controller publishes
// severity notices to (spec §7, "every transition into error and every
// run-start/stop additionally publishes a chat alert"). The transport is
// an external collaborator; this package only defines the contract and a
// NATS-backed implementation, mirroring how the rest of this codebase
// treats messaging as a component behind a small interface rather than a
// hard dependency threaded through business logic.
package alert

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Severity classifies an alert the way the original relay does.
type Severity string

const (
	Notice   Severity = "notice"
	Warning  Severity = "warning"
	SevError Severity = "error"
	Critical Severity = "critical"
)

// Relayer publishes a one-line status alert to whatever chat-bridge is
// listening. Implementations must be safe for concurrent use: the DAQ
// controller, the run loop, and request handlers may all alert at once.
type Relayer interface {
	Alert(sev Severity, message string) error
}

// Noop discards every alert; useful for tests and for daemons started
// without a configured chat relay.
type Noop struct{}

func (Noop) Alert(Severity, string) error { return nil }

type natsRelayer struct {
	mu      sync.Mutex
	conn    *nats.Conn
	subject string
}

// NewNats builds a Relayer that publishes JSON-free, single-line text
// alerts to subject on the given NATS connection. The caller owns the
// connection's lifecycle (connect/close); this relayer never reconnects
// on its own.
func NewNats(conn *nats.Conn, subject string) Relayer {
	return &natsRelayer{conn: conn, subject: subject}
}

func (r *natsRelayer) Alert(sev Severity, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || !r.conn.IsConnected() {
		return ErrorNotConnected.Error()
	}

	payload := fmt.Sprintf("[%s] %s", sev, message)
	if err := r.conn.Publish(r.subject, []byte(payload)); err != nil {
		return ErrorPublishFailed.Error(err)
	}
	return nil
}
