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

package daqctl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutsdb/nutsdb"

	"github.com/axiondarkmatterexperiment/psyllid/daqctl"
	"github.com/axiondarkmatterexperiment/psyllid/filehouse"
	"github.com/axiondarkmatterexperiment/psyllid/node"
	"github.com/axiondarkmatterexperiment/psyllid/preset"
	"github.com/axiondarkmatterexperiment/psyllid/streammgr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDaqCtl(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "daqctl suite")
}

type fakeNode struct {
	typ       string
	cfg       map[string]interface{}
	failStart bool
	nonfatal  bool
}

func (f *fakeNode) Start() error {
	if f.failStart {
		if f.nonfatal {
			return &node.NonFatalError{Cause: errors.New("boom")}
		}
		return errors.New("device on fire")
	}
	return nil
}
func (f *fakeNode) Pause() error  { return nil }
func (f *fakeNode) Resume() error { return nil }
func (f *fakeNode) Cancel()       {}
func (f *fakeNode) Type() string  { return f.typ }
func (f *fakeNode) ApplyConfig(cfg map[string]interface{}) error {
	f.cfg = cfg
	return nil
}
func (f *fakeNode) DumpConfig() map[string]interface{} { return f.cfg }
func (f *fakeNode) RunCommand(cmd string, _ map[string]interface{}) (bool, error) {
	return cmd == "known", nil
}

func newRegistry(failStart, nonfatal bool) *node.Registry {
	r := node.NewRegistry()
	for _, typ := range []string{"tf-roach-receiver", "terminator-time-data"} {
		t := typ
		r.Register(t, func(cfg map[string]interface{}) (node.Node, error) {
			return &fakeNode{typ: t, cfg: cfg, failStart: failStart, nonfatal: nonfatal}, nil
		})
	}
	return r
}

func simplePreset() *preset.Preset {
	return &preset.Preset{
		Name: "simple",
		Nodes: map[string]string{
			"recv": "tf-roach-receiver",
			"term": "terminator-time-data",
		},
		Connections: []string{"recv.out_0:term.in_0"},
	}
}

func newController(failStart, nonfatal bool) (*daqctl.Controller, *streammgr.Manager, func() bool) {
	sm := streammgr.New(newRegistry(failStart, nonfatal), nil)
	Expect(sm.Configure(simplePreset(), nil)).To(BeNil())

	sigCalled := false
	c := daqctl.New(sm, nil, nil, nil, func() { sigCalled = true })
	return c, sm, func() bool { return sigCalled }
}

func openCoordinator() *filehouse.Coordinator {
	db, err := nutsdb.Open(nutsdb.DefaultOptions, nutsdb.WithDir(GinkgoT().TempDir()))
	Expect(err).To(BeNil())
	return filehouse.New(db, nil)
}

var _ = Describe("Controller", func() {
	It("activates and deactivates", func() {
		c, _, _ := newController(false, false)
		Expect(c.Status()).To(Equal(daqctl.Deactivated))

		Expect(c.Activate(context.Background())).To(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Activated))

		Expect(c.Deactivate()).To(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Deactivated))
	})

	It("rejects activation from the wrong status", func() {
		c, _, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())

		err := c.Activate(context.Background())
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(daqctl.ErrorStatus)).To(BeTrue())
	})

	It("reactivates by deactivating then activating again", func() {
		c, _, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())
		Expect(c.Reactivate(context.Background())).To(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Activated))
	})

	It("runs a timed run end to end and returns to activated", func() {
		c, _, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())

		ms := uint64(50)
		Expect(c.StartRun(daqctl.RunOptions{DurationMS: &ms})).To(BeNil())

		Eventually(c.Status).Should(Equal(daqctl.Running))
		Eventually(c.Status, "2s", "10ms").Should(Equal(daqctl.Activated))
	})

	It("stops an untimed run on request", func() {
		c, _, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())

		untimed := uint64(0)
		Expect(c.StartRun(daqctl.RunOptions{DurationMS: &untimed})).To(BeNil())
		Eventually(c.Status).Should(Equal(daqctl.Running))

		time.Sleep(20 * time.Millisecond)
		Expect(c.StopRun()).To(BeNil())
		Eventually(c.Status, "2s", "10ms").Should(Equal(daqctl.Activated))
	})

	It("rejects start-run outside activated", func() {
		c, _, _ := newController(false, false)
		err := c.StartRun(daqctl.RunOptions{})
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(daqctl.ErrorStatus)).To(BeTrue())
	})

	It("is idempotent under repeated cancellation", func() {
		c, _, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())

		Expect(c.Cancel()).To(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Done))

		Expect(c.Cancel()).To(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Done))
	})

	It("cancels a running graph cleanly", func() {
		c, _, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())
		Expect(c.StartRun(daqctl.RunOptions{})).To(BeNil())
		Eventually(c.Status).Should(Equal(daqctl.Running))

		Expect(c.Cancel()).To(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Done))
	})

	It("allows online reconfiguration while activated", func() {
		c, sm, _ := newController(false, false)
		Expect(c.Activate(context.Background())).To(BeNil())

		Expect(c.ApplyConfig("recv", map[string]interface{}{"gain": 3})).To(BeNil())

		cfg, err := c.DumpConfig("recv")
		Expect(err).To(BeNil())
		Expect(cfg["gain"]).To(Equal(3))

		ok, err := c.RunCommand("recv", "known", nil)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		_ = sm
	})

	It("rejects online reconfiguration outside activated/running", func() {
		c, _, _ := newController(false, false)
		err := c.ApplyConfig("recv", nil)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(daqctl.ErrorNoBindings)).To(BeTrue())
	})

	It("gets and sets per-file properties positionally", func() {
		c, _, _ := newController(false, false)
		Expect(c.SetFilename(0, "run0.egg")).To(BeNil())
		Expect(c.SetDescription(0, "first light")).To(BeNil())

		name, err := c.Filename(0)
		Expect(err).To(BeNil())
		Expect(name).To(Equal("run0.egg"))

		desc, err := c.Description(0)
		Expect(err).To(BeNil())
		Expect(desc).To(Equal("first light"))
	})

	It("rejects a zero-valued duration", func() {
		c, _, _ := newController(false, false)
		err := c.SetDuration(0)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(daqctl.ErrorInvalidDuration)).To(BeTrue())
	})

	It("enters do-restart on a nonfatal node error and re-activates", func() {
		c, _, sigCalled := newController(true, true)
		Expect(c.Activate(context.Background())).To(BeNil())
		Expect(c.StartRun(daqctl.RunOptions{})).To(BeNil())

		Eventually(c.Status, "2s", "10ms").Should(Equal(daqctl.Activated))
		Expect(sigCalled()).To(BeFalse())
	})

	It("enters error and signals on a fatal device error", func() {
		c, _, sigCalled := newController(true, false)
		err := c.Activate(context.Background())
		Expect(err).ToNot(BeNil())
		Expect(c.Status()).To(Equal(daqctl.Error))
		Expect(sigCalled()).To(BeTrue())
	})

	It("declares and prepares files through the coordinator on a monarch run", func() {
		fh := openCoordinator()
		sm := streammgr.New(newRegistry(false, false), nil)
		Expect(sm.Configure(simplePreset(), nil)).To(BeNil())

		c := daqctl.New(sm, fh, nil, nil, func() {})
		c.SetUseMonarch(true)
		Expect(c.SetFilename(0, "run.egg")).To(BeNil())

		Expect(c.Activate(context.Background())).To(BeNil())
		ms := uint64(30)
		Expect(c.StartRun(daqctl.RunOptions{DurationMS: &ms})).To(BeNil())

		Eventually(c.Status, "2s", "10ms").Should(Equal(daqctl.Activated))
		Expect(fh.Count()).To(Equal(1))
	})
})
