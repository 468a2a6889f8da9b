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

package preset_test

import (
	"testing"

	"github.com/axiondarkmatterexperiment/psyllid/preset"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPreset(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "preset suite")
}

func streamingPreset() map[string]interface{} {
	return map[string]interface{}{
		"name": "streaming",
		"nodes": []interface{}{
			map[string]interface{}{"type": "tf-roach-receiver", "name": "recv"},
			map[string]interface{}{"type": "terminator-time-data", "name": "term"},
		},
		"connections": []interface{}{"recv.out_0:term.in_0"},
	}
}

var _ = Describe("Registry", func() {
	It("registers and retrieves a valid preset", func() {
		r := preset.NewRegistry(nil)
		Expect(r.Register(streamingPreset())).To(BeNil())

		p, err := r.Get("streaming")
		Expect(err).To(BeNil())
		Expect(p.Nodes).To(HaveKeyWithValue("recv", "tf-roach-receiver"))
		Expect(p.Connections).To(ConsistOf("recv.out_0:term.in_0"))
	})

	It("defaults a node's logical name to its type", func() {
		r := preset.NewRegistry(nil)
		tree := map[string]interface{}{
			"name": "bare",
			"nodes": []interface{}{
				map[string]interface{}{"type": "tf-roach-receiver"},
			},
		}
		Expect(r.Register(tree)).To(BeNil())

		p, err := r.Get("bare")
		Expect(err).To(BeNil())
		Expect(p.Nodes).To(HaveKeyWithValue("tf-roach-receiver", "tf-roach-receiver"))
	})

	It("fails with not-found for an unregistered name", func() {
		r := preset.NewRegistry(nil)
		_, err := r.Get("nope")
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(preset.ErrorNotFound)).To(BeTrue())
	})

	It("fails on duplicate logical node names", func() {
		r := preset.NewRegistry(nil)
		tree := map[string]interface{}{
			"name": "dup",
			"nodes": []interface{}{
				map[string]interface{}{"type": "a", "name": "x"},
				map[string]interface{}{"type": "b", "name": "x"},
			},
		}
		err := r.Register(tree)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(preset.ErrorDuplicateNode)).To(BeTrue())
	})

	It("fails when a connection references an undeclared node", func() {
		r := preset.NewRegistry(nil)
		tree := map[string]interface{}{
			"name": "bad-conn",
			"nodes": []interface{}{
				map[string]interface{}{"type": "a", "name": "x"},
			},
			"connections": []interface{}{"x.out_0:missing.in_0"},
		}
		err := r.Register(tree)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(preset.ErrorBadConnection)).To(BeTrue())
	})

	It("is idempotent on identical contents", func() {
		r := preset.NewRegistry(nil)
		Expect(r.Register(streamingPreset())).To(BeNil())
		Expect(r.Register(streamingPreset())).To(BeNil())

		p, _ := r.Get("streaming")
		Expect(p.Nodes).To(HaveLen(2))
	})

	It("allows replacing a preset with different contents", func() {
		r := preset.NewRegistry(nil)
		Expect(r.Register(streamingPreset())).To(BeNil())

		replacement := map[string]interface{}{
			"name": "streaming",
			"nodes": []interface{}{
				map[string]interface{}{"type": "tf-roach-receiver", "name": "recv"},
			},
		}
		Expect(r.Register(replacement)).To(BeNil())

		p, _ := r.Get("streaming")
		Expect(p.Nodes).To(HaveLen(1))
	})
})
