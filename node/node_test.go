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

package node_test

import (
	"testing"

	"github.com/axiondarkmatterexperiment/psyllid/node"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNode(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "node suite")
}

type fakeNode struct {
	typ string
	cfg map[string]interface{}
}

func (f *fakeNode) Start() error  { return nil }
func (f *fakeNode) Pause() error  { return nil }
func (f *fakeNode) Resume() error { return nil }
func (f *fakeNode) Cancel()       {}
func (f *fakeNode) Type() string  { return f.typ }

func (f *fakeNode) ApplyConfig(cfg map[string]interface{}) error {
	if f.cfg == nil {
		f.cfg = map[string]interface{}{}
	}
	for k, v := range cfg {
		f.cfg[k] = v
	}
	return nil
}

func (f *fakeNode) DumpConfig() map[string]interface{} { return f.cfg }

func (f *fakeNode) RunCommand(cmd string, args map[string]interface{}) (bool, error) {
	return cmd == "reset", nil
}

var _ = Describe("Registry", func() {
	It("builds a registered node type", func() {
		r := node.NewRegistry()
		r.Register("terminator-time-data", func(cfg map[string]interface{}) (node.Node, error) {
			n := &fakeNode{typ: "terminator-time-data"}
			_ = n.ApplyConfig(cfg)
			return n, nil
		})

		n, err := r.Build("terminator-time-data", map[string]interface{}{"verbosity": 1})
		Expect(err).To(BeNil())
		Expect(n.Type()).To(Equal("terminator-time-data"))
		Expect(n.DumpConfig()).To(HaveKeyWithValue("verbosity", 1))
	})

	It("fails on unknown node type", func() {
		r := node.NewRegistry()
		_, err := r.Build("missing", nil)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(node.ErrorUnknownNodeType)).To(BeTrue())
	})

	It("apply_config/dump_config round-trips every accepted key", func() {
		n := &fakeNode{typ: "freq-transform"}
		Expect(n.ApplyConfig(map[string]interface{}{"fft-size": 4096})).To(Succeed())
		Expect(n.DumpConfig()).To(HaveKeyWithValue("fft-size", 4096))
	})

	It("reports method-not-found via a false return, not an error", func() {
		n := &fakeNode{typ: "freq-transform"}
		ok, err := n.RunCommand("unsupported-cmd", nil)
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("EventStreak", func() {
	It("marks only the first packet of a triggered streak as new", func() {
		s := &node.EventStreak{}
		Expect(s.Next(true)).To(BeTrue())
		Expect(s.Next(true)).To(BeFalse())
		Expect(s.Next(true)).To(BeFalse())
	})

	It("restarts the streak on any untriggered packet", func() {
		s := &node.EventStreak{}
		Expect(s.Next(true)).To(BeTrue())
		Expect(s.Next(false)).To(BeFalse())
		Expect(s.Next(true)).To(BeTrue())
	})
})
