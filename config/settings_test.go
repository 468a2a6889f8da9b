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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/axiondarkmatterexperiment/psyllid/config"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "config suite")
}

var _ = Describe("Load", func() {
	It("applies defaults with no config file", func() {
		s, err := config.Load("")
		Expect(err).To(BeNil())
		Expect(s.RunDuration).To(Equal(uint64(1000)))
		Expect(s.Monarch.DataDir).To(Equal("./data"))
	})

	It("merges a yaml file over the defaults", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "psyllid.yaml")
		Expect(os.WriteFile(path, []byte("active-preset: streaming\nrun-duration-ms: 500\n"), 0o644)).To(Succeed())

		s, err := config.Load(path)
		Expect(err).To(BeNil())
		Expect(s.ActivePreset).To(Equal("streaming"))
		Expect(s.RunDuration).To(Equal(uint64(500)))
	})

	It("fails on a missing config file", func() {
		_, err := config.Load("/nonexistent/psyllid.yaml")
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(config.ErrorLoad)).To(BeTrue())
	})
})

type fakeComponent struct {
	name                        string
	started, reloaded, stopped bool
	failStart                  bool
}

func (f *fakeComponent) Type() string                             { return f.name }
func (f *fakeComponent) Init(*viper.Viper, logger.Logger)          {}
func (f *fakeComponent) DefaultConfig(string) []byte               { return nil }
func (f *fakeComponent) Start() error {
	f.started = true
	if f.failStart {
		return errNotImplemented
	}
	return nil
}
func (f *fakeComponent) Reload() error { f.reloaded = true; return nil }
func (f *fakeComponent) Stop()         { f.stopped = true }

var errNotImplemented = &stubErr{"component unavailable"}

type stubErr struct{ msg string }

func (e *stubErr) Error() string { return e.msg }

var _ = Describe("Registry", func() {
	It("registers, starts, reloads and stops components in order", func() {
		r := config.NewRegistry(viper.New(), nil)
		a := &fakeComponent{name: "a"}
		b := &fakeComponent{name: "b"}

		Expect(r.Register("a", a)).To(BeNil())
		Expect(r.Register("b", b)).To(BeNil())

		Expect(r.Start()).To(BeNil())
		Expect(a.started).To(BeTrue())
		Expect(b.started).To(BeTrue())

		Expect(r.Reload()).To(BeNil())
		Expect(a.reloaded).To(BeTrue())

		r.Stop()
		Expect(a.stopped).To(BeTrue())
		Expect(b.stopped).To(BeTrue())
	})

	It("rejects a duplicate component key", func() {
		r := config.NewRegistry(viper.New(), nil)
		Expect(r.Register("a", &fakeComponent{name: "a"})).To(BeNil())

		err := r.Register("a", &fakeComponent{name: "a2"})
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(config.ErrorDuplicateComponent)).To(BeTrue())
	})

	It("surfaces a component start failure", func() {
		r := config.NewRegistry(viper.New(), nil)
		Expect(r.Register("a", &fakeComponent{name: "a", failStart: true})).To(BeNil())

		err := r.Start()
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(config.ErrorComponentStart)).To(BeTrue())
	})
})
