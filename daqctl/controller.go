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

// Package daqctl is the DAQ controller: the central state machine that
// owns activation, run control, online reconfiguration, and failure
// handling for the active graph (spec §4.5). It drives a streammgr
// Manager's graph-runtime handle and a filehouse Coordinator's declared
// files, and reports every state change and run boundary through an
// alert relayer.
package daqctl

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"

	"github.com/axiondarkmatterexperiment/psyllid/alert"
	"github.com/axiondarkmatterexperiment/psyllid/filehouse"
	"github.com/axiondarkmatterexperiment/psyllid/graphrt"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	"github.com/axiondarkmatterexperiment/psyllid/monarch"
	"github.com/axiondarkmatterexperiment/psyllid/node"
	"github.com/axiondarkmatterexperiment/psyllid/streammgr"
)

const (
	defaultDurationMS = uint64(1000)
	subInterval       = 500 * time.Millisecond
	restartDelay      = 500 * time.Millisecond
)

// FileSpec is one entry of the controller's per-run file properties:
// filename and description, settable ahead of a run by positional index.
type FileSpec struct {
	Filename    string
	Description string
}

// RunOptions carries start-run's optional payload fields (spec §6): a
// duration override, and either a single filename/description or arrays
// of them, overwriting the leading entries of the controller's file set
// when present (entries past the given array keep their values).
type RunOptions struct {
	DurationMS   *uint64
	Filenames    []string
	Descriptions []string
}

type runState struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// Controller is the DAQ controller. Construct one per daemon instance
// with New; it is safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	status Status

	sm    *streammgr.Manager
	fh    *filehouse.Coordinator
	relay alert.Relayer
	log   logger.Logger
	sig   func()

	handle graphrt.Handle
	run    *runState

	duration    uint64
	useMonarch  bool
	files       []FileSpec
	writerCount int // 0 means unbounded

	canceled bool
}

// New builds a Controller in status Deactivated. A nil relay falls back
// to alert.Noop{}; a nil log falls back to the process-wide default; a
// nil sig falls back to sending SIGINT to the current process.
func New(sm *streammgr.Manager, fh *filehouse.Coordinator, relay alert.Relayer, log logger.Logger, sig func()) *Controller {
	if relay == nil {
		relay = alert.Noop{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	if sig == nil {
		sig = defaultSigint
	}
	return &Controller{
		sm:       sm,
		fh:       fh,
		relay:    relay,
		log:      log,
		sig:      sig,
		duration: defaultDurationMS,
	}
}

func defaultSigint() {
	if p, err := os.FindProcess(os.Getpid()); err == nil {
		_ = p.Signal(os.Interrupt)
	}
}

// SetWriterCount bounds how many positional file-set entries are
// accepted before failing with ErrorOutOfRange, mirroring the declared
// writer count of the active preset. Zero (the default) leaves the file
// set unbounded.
func (c *Controller) SetWriterCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writerCount = n
}

// Status reports the controller's current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Activate transitions deactivated (or do-restart, for the scheduled
// re-activation) -> activating -> activated: it resets the graph runtime
// if it was consumed by a prior activation, acquires the exclusive
// handle, starts the graph, and publishes bindings.
func (c *Controller) Activate(ctx context.Context) liberr.Error {
	c.mu.Lock()
	if c.status != Deactivated && c.status != DoRestart {
		status := c.status
		c.mu.Unlock()
		return ErrorStatus.Errorf("activate from status %s", status)
	}
	c.status = Activating
	c.mu.Unlock()

	if c.sm.MustReset() {
		if err := c.sm.Reset(); err != nil {
			c.enterError(err, nil)
			return err
		}
	}

	h, err := c.sm.AcquireRuntime()
	if err != nil {
		c.enterError(err, nil)
		return err
	}

	if serr := h.Start(ctx); serr != nil {
		e := liberr.Make(serr)
		c.enterError(e, h)
		return e
	}

	c.mu.Lock()
	c.handle = h
	c.status = Activated
	c.mu.Unlock()

	c.relay.Alert(alert.Notice, "daq activated")
	return nil
}

// Deactivate transitions activated -> deactivating -> deactivated,
// stopping the graph and releasing the runtime handle.
func (c *Controller) Deactivate() liberr.Error {
	c.mu.Lock()
	if c.status != Activated {
		status := c.status
		c.mu.Unlock()
		return ErrorStatus.Errorf("deactivate from status %s", status)
	}
	c.status = Deactivating
	h := c.handle
	c.mu.Unlock()

	if h != nil {
		h.Cancel()
		_ = c.sm.ReleaseRuntime(h)
	}

	c.mu.Lock()
	c.handle = nil
	c.status = Deactivated
	c.mu.Unlock()

	c.relay.Alert(alert.Notice, "daq deactivated")
	return nil
}

// Reactivate deactivates, waits a short delay, then activates again.
func (c *Controller) Reactivate(ctx context.Context) liberr.Error {
	if err := c.Deactivate(); err != nil {
		return err
	}
	time.Sleep(restartDelay)
	return c.Activate(ctx)
}

// StartRun begins do_run (spec §4.5 step 1-2): it declares and prepares
// files when use-monarch is set, resumes the graph, and moves status to
// running. The run itself proceeds on a background goroutine; StartRun
// returns once it has been launched, not once it has finished.
func (c *Controller) StartRun(opts RunOptions) liberr.Error {
	c.mu.Lock()
	if c.status != Activated {
		status := c.status
		c.mu.Unlock()
		return ErrorStatus.Errorf("start-run from status %s", status)
	}

	if opts.DurationMS != nil {
		c.duration = *opts.DurationMS
	}
	if opts.Filenames != nil {
		if err := c.setFilenamesLocked(opts.Filenames); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	if opts.Descriptions != nil {
		if err := c.setDescriptionsLocked(opts.Descriptions); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	duration := c.duration
	useMonarch := c.useMonarch
	files := append([]FileSpec(nil), c.files...)
	h := c.handle

	rs := &runState{stopCh: make(chan struct{}), done: make(chan struct{})}
	c.run = rs
	c.mu.Unlock()

	go c.doRun(rs, h, duration, useMonarch, files)
	return nil
}

// StopRun sets the break flag for the in-progress run. Fails with
// ErrorStatus when no run is in progress.
func (c *Controller) StopRun() liberr.Error {
	c.mu.Lock()
	if c.status != Running || c.run == nil {
		status := c.status
		c.mu.Unlock()
		return ErrorStatus.Errorf("stop-run from status %s", status)
	}
	rs := c.run
	c.mu.Unlock()

	rs.stopOnce.Do(func() { close(rs.stopCh) })
	return nil
}

func (c *Controller) doRun(rs *runState, h graphrt.Handle, durationMS uint64, useMonarch bool, files []FileSpec) {
	defer close(rs.done)

	if useMonarch {
		streams := make(map[string]filehouse.StreamSpec, len(files))
		for i, fs := range files {
			if _, err := c.fh.Declare(fs.Filename); err != nil {
				c.failRun(err, h)
				return
			}
			_ = c.fh.SetDescription(i, fs.Description)
			streams[fs.Filename] = filehouse.StreamSpec{0: monarch.ChannelMeta{}}
		}
		if err := c.fh.PrepareAll(durationMS, streams); err != nil {
			c.failRun(err, h)
			return
		}
	}

	if err := h.Resume(); err != nil {
		c.failRun(err, h)
		return
	}

	c.mu.Lock()
	c.status = Running
	c.mu.Unlock()
	c.relay.Alert(alert.Notice, "run started")

	start := time.Now()
runLoop:
	for {
		wait := subInterval
		if durationMS > 0 {
			remaining := time.Duration(durationMS)*time.Millisecond - time.Since(start)
			if remaining <= 0 {
				break runLoop
			}
			if remaining < wait {
				wait = remaining
			}
		}

		select {
		case <-rs.stopCh:
			break runLoop
		case <-time.After(wait):
			if durationMS > 0 && time.Since(start) >= time.Duration(durationMS)*time.Millisecond {
				break runLoop
			}
		}
	}

	if err := h.Pause(); err != nil {
		c.failRun(err, h)
		return
	}

	c.mu.Lock()
	c.status = Activated
	c.mu.Unlock()
	c.relay.Alert(alert.Notice, "run stopped")

	if useMonarch {
		if err := c.fh.FinishAll(); err != nil {
			c.failRun(err, h)
			return
		}
	}
}

// Cancel transitions any state to canceled, then done. Idempotent: a
// repeated call after the first observes the same outcome. An
// in-progress run is stopped first (its run loop pauses the graph), then
// the runtime is cancelled and the handle released.
func (c *Controller) Cancel() liberr.Error {
	c.mu.Lock()
	if c.canceled {
		c.mu.Unlock()
		return nil
	}
	c.canceled = true
	status := c.status
	rs := c.run
	h := c.handle
	c.mu.Unlock()

	if rs != nil && status == Running {
		rs.stopOnce.Do(func() { close(rs.stopCh) })
		<-rs.done
	}

	if h != nil {
		h.Cancel()
		_ = c.sm.ReleaseRuntime(h)
	}

	c.mu.Lock()
	c.handle = nil
	c.status = Canceled
	c.mu.Unlock()
	c.relay.Alert(alert.Warning, "daq cancelled")

	c.mu.Lock()
	c.status = Done
	c.mu.Unlock()
	return nil
}

func (c *Controller) failRun(rawErr error, h graphrt.Handle) {
	if node.IsNonFatal(rawErr) {
		c.teardownHandle(h)
		c.scheduleRestart()
		return
	}
	c.enterError(rawErr, h)
}

func (c *Controller) enterError(rawErr error, h graphrt.Handle) {
	c.teardownHandle(h)
	c.mu.Lock()
	c.status = Error
	c.mu.Unlock()
	c.relay.Alert(alert.Critical, fmt.Sprintf("daq entered error: %s", rawErr.Error()))
	c.sig()
}

func (c *Controller) scheduleRestart() {
	c.mu.Lock()
	c.status = DoRestart
	c.mu.Unlock()
	c.relay.Alert(alert.Warning, "nonfatal node error, scheduling restart")

	go func() {
		time.Sleep(restartDelay)
		_ = c.Activate(context.Background())
	}()
}

func (c *Controller) teardownHandle(h graphrt.Handle) {
	if h == nil {
		return
	}
	h.Cancel()
	_ = c.sm.ReleaseRuntime(h)
	c.mu.Lock()
	c.handle = nil
	c.mu.Unlock()
}

// ApplyConfig merges cfg into the named node's live configuration.
// Requires status activated or running.
func (c *Controller) ApplyConfig(nodeName string, cfg map[string]interface{}) liberr.Error {
	b, err := c.binding(nodeName)
	if err != nil {
		return err
	}
	if e := b.Binder.ApplyConfig(cfg); e != nil {
		return ErrorDeviceError.Error(e)
	}
	return nil
}

// DumpConfig returns the named node's current configuration. Requires
// status activated or running.
func (c *Controller) DumpConfig(nodeName string) (map[string]interface{}, liberr.Error) {
	b, err := c.binding(nodeName)
	if err != nil {
		return nil, err
	}
	return b.Binder.DumpConfig(), nil
}

// RunCommand forwards cmd to the named node. A false return means the
// node did not recognise cmd (method-not-found); an error means the node
// raised a device error. Requires status activated or running.
func (c *Controller) RunCommand(nodeName, cmd string, args map[string]interface{}) (bool, liberr.Error) {
	b, err := c.binding(nodeName)
	if err != nil {
		return false, err
	}
	ok, e := b.Binder.RunCommand(cmd, args)
	if e != nil {
		return false, ErrorDeviceError.Error(e)
	}
	return ok, nil
}

func (c *Controller) binding(nodeName string) (node.Binding, liberr.Error) {
	c.mu.Lock()
	status := c.status
	c.mu.Unlock()

	if status != Activated && status != Running {
		return node.Binding{}, ErrorNoBindings.Error(nil)
	}

	b, ok := c.sm.Bindings()[nodeName]
	if !ok {
		return node.Binding{}, ErrorNoBindings.Errorf("unknown node %q", nodeName)
	}
	return b, nil
}

// Duration returns the configured run duration in milliseconds.
func (c *Controller) Duration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// SetDuration sets the run duration in milliseconds. Zero is rejected;
// permitted in any status, taking effect at the next run.
func (c *Controller) SetDuration(ms uint64) liberr.Error {
	if ms == 0 {
		return ErrorInvalidDuration.Error(nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = ms
	return nil
}

// UseMonarch reports whether runs declare and finalise files.
func (c *Controller) UseMonarch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.useMonarch
}

// SetUseMonarch toggles whether runs declare and finalise files.
// Permitted in any status, taking effect at the next run.
func (c *Controller) SetUseMonarch(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useMonarch = v
}

// Filename returns the filename at the given positional index.
func (c *Controller) Filename(index int) (string, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.files) {
		return "", ErrorOutOfRange.Errorf("index %d", index)
	}
	return c.files[index].Filename, nil
}

// SetFilename sets the filename at the given positional index, growing
// the file set as needed (bounded by SetWriterCount, if set).
func (c *Controller) SetFilename(index int, name string) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.growFilesLocked(index); err != nil {
		return err
	}
	c.files[index].Filename = name
	return nil
}

// Description returns the description at the given positional index.
func (c *Controller) Description(index int) (string, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.files) {
		return "", ErrorOutOfRange.Errorf("index %d", index)
	}
	return c.files[index].Description, nil
}

// SetDescription sets the description at the given positional index; it
// never touches the filename.
func (c *Controller) SetDescription(index int, description string) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.growFilesLocked(index); err != nil {
		return err
	}
	c.files[index].Description = description
	return nil
}

func (c *Controller) growFilesLocked(index int) liberr.Error {
	if index < 0 {
		return ErrorOutOfRange.Errorf("index %d", index)
	}
	if c.writerCount > 0 && index >= c.writerCount {
		return ErrorOutOfRange.Errorf("index %d exceeds writer count %d", index, c.writerCount)
	}
	for len(c.files) <= index {
		c.files = append(c.files, FileSpec{})
	}
	return nil
}

func (c *Controller) setFilenamesLocked(names []string) liberr.Error {
	limit := len(names)
	if c.writerCount > 0 && limit > c.writerCount {
		limit = c.writerCount
	}
	for i := 0; i < limit; i++ {
		if err := c.growFilesLocked(i); err != nil {
			return err
		}
		c.files[i].Filename = names[i]
	}
	if limit < len(names) {
		return ErrorOutOfRange.Errorf("%d filenames exceed writer count %d", len(names), c.writerCount)
	}
	return nil
}

func (c *Controller) setDescriptionsLocked(descriptions []string) liberr.Error {
	limit := len(descriptions)
	if c.writerCount > 0 && limit > c.writerCount {
		limit = c.writerCount
	}
	for i := 0; i < limit; i++ {
		if err := c.growFilesLocked(i); err != nil {
			return err
		}
		c.files[i].Description = descriptions[i]
	}
	if limit < len(descriptions) {
		return ErrorOutOfRange.Errorf("%d descriptions exceed writer count %d", len(descriptions), c.writerCount)
	}
	return nil
}
