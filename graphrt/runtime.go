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

// Package graphrt hands out the exclusive right to drive a node graph.
// At most one Handle may be outstanding per Runtime at a time (spec
// §4.3): a stream manager acquires one to start/pause/resume/cancel the
// graph it owns, and must release it before a new one can be acquired.
// The lifecycle bookkeeping (uptime, captured errors, panic recovery) is
// modelled on the run/stop pattern of a start-stop service runner.
package graphrt

import (
	"context"
	"fmt"
	"sync"
	"time"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

// StartFunc begins graph execution. It is expected to block until ctx is
// done (it owns the node goroutines for the duration of the run).
type StartFunc func(ctx context.Context) error

// StopFunc tears the graph down after Start's context has been cancelled.
type StopFunc func(ctx context.Context) error

// PauseFunc and ResumeFunc toggle whether a running graph's nodes are
// actively processing data, without tearing the graph down.
type PauseFunc func() error
type ResumeFunc func() error

// Callbacks are the four hooks a concrete graph wires a Runtime to.
type Callbacks struct {
	Start  StartFunc
	Pause  PauseFunc
	Resume ResumeFunc
	Stop   StopFunc
}

// Handle is the exclusive ticket returned by Runtime.Acquire. Only the
// holder of a Handle may drive the graph. It carries node.Execution's
// start/pause/resume/cancel verbs, but its Start takes a context, so a
// Handle does not itself satisfy node.Execution.
type Handle interface {
	Start(ctx context.Context) error
	Pause() error
	Resume() error
	Cancel()

	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

// Runtime grants at most one Handle at a time over a fixed set of
// callbacks.
type Runtime struct {
	mu  sync.Mutex
	cb  Callbacks
	cur *handle
}

// New builds a Runtime around cb. cb.Start/cb.Stop are invoked for every
// acquired handle; a nil Start or Stop surfaces as ErrorInvalidStart /
// ErrorInvalidStop the first time the handle is driven, rather than at
// construction time, matching how a misconfigured node reports at run
// time instead of at registration.
func New(cb Callbacks) *Runtime {
	return &Runtime{cb: cb}
}

// Acquire hands out the single outstanding Handle, failing with
// ErrorAlreadyHeld if one is already checked out.
func (r *Runtime) Acquire() (Handle, liberr.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cur != nil {
		return nil, ErrorAlreadyHeld.Error(nil)
	}

	h := &handle{cb: r.cb}
	r.cur = h
	return h, nil
}

// Release returns h to the Runtime, failing with ErrorNotHeld if h is not
// the currently outstanding handle (including a stale handle from a
// previous acquire/release cycle).
func (r *Runtime) Release(h Handle) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	concrete, ok := h.(*handle)
	if !ok || r.cur != concrete {
		return ErrorNotHeld.Error(nil)
	}
	r.cur = nil
	return nil
}

// Held reports whether a handle is currently checked out.
func (r *Runtime) Held() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur != nil
}

type handle struct {
	cb Callbacks

	mu      sync.Mutex
	running bool
	start   time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	errs    []error
}

func (h *handle) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		<-h.done
	}

	cctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})
	h.running = true
	h.start = time.Now()

	go h.run(cctx)
	return nil
}

func (h *handle) run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		if rec := recover(); rec != nil {
			h.recordError(fmt.Errorf("recovered panic in graph runtime: %v", rec))
		}
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	start := h.cb.Start
	if start == nil {
		h.recordError(ErrorInvalidStart.Error(nil))
		return
	}
	if err := start(ctx); err != nil {
		h.recordError(err)
	}
}

func (h *handle) Pause() error {
	if h.cb.Pause == nil {
		return nil
	}
	if err := h.cb.Pause(); err != nil {
		h.recordError(err)
		return err
	}
	return nil
}

func (h *handle) Resume() error {
	if h.cb.Resume == nil {
		return nil
	}
	if err := h.cb.Resume(); err != nil {
		h.recordError(err)
		return err
	}
	return nil
}

func (h *handle) Cancel() {
	h.mu.Lock()
	cancel := h.cancel
	done := h.done
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	stop := h.cb.Stop
	if stop == nil {
		h.recordError(ErrorInvalidStop.Error(nil))
		return
	}
	if err := stop(context.Background()); err != nil {
		h.recordError(err)
	}
}

func (h *handle) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *handle) Uptime() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return 0
	}
	return time.Since(h.start)
}

func (h *handle) recordError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *handle) ErrorsLast() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.errs) == 0 {
		return nil
	}
	return h.errs[len(h.errs)-1]
}

func (h *handle) ErrorsList() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]error, len(h.errs))
	copy(out, h.errs)
	return out
}
