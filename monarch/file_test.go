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

package monarch_test

import (
	"testing"

	"github.com/nutsdb/nutsdb"

	"github.com/axiondarkmatterexperiment/psyllid/monarch"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMonarch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "monarch suite")
}

func openDB() *nutsdb.DB {
	db, err := nutsdb.Open(nutsdb.DefaultOptions, nutsdb.WithDir(GinkgoT().TempDir()))
	Expect(err).To(BeNil())
	return db
}

var _ = Describe("File", func() {
	It("walks the stage machine in order", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0001")
		Expect(f.Stage()).To(Equal(monarch.Initialized))

		Expect(f.Prepare()).To(BeNil())
		Expect(f.Stage()).To(Equal(monarch.Preparing))

		Expect(f.InstallStreams(1000, 0, "test run", map[int]monarch.ChannelMeta{
			0: {VoltageOffset: 0, VoltageRange: 0.5, DACGain: 1.0, BitDepth: 8},
		})).To(BeNil())
		Expect(f.Stage()).To(Equal(monarch.Writing))

		Expect(f.FinishStream(0, true)).To(BeNil())
		Expect(f.Stage()).To(Equal(monarch.Finished))
	})

	It("rejects header access outside preparing", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0002")

		_, err := f.Header()
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(monarch.ErrorBadStage)).To(BeTrue())
	})

	It("grants only one header guard at a time", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0003")
		Expect(f.Prepare()).To(BeNil())

		g1, err := f.Header()
		Expect(err).To(BeNil())

		_, err = f.Header()
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(monarch.ErrorHeaderHeld)).To(BeTrue())

		g1.Release()

		g2, err := f.Header()
		Expect(err).To(BeNil())
		Expect(g2.Set("note", "ok")).To(BeNil())

		v, ok := g2.Get("note")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("ok"))
	})

	It("rejects stream access outside writing", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0004")

		_, err := f.Stream(0)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(monarch.ErrorBadStage)).To(BeTrue())
	})

	It("does not serialise access across distinct streams", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0005")
		Expect(f.Prepare()).To(BeNil())
		Expect(f.InstallStreams(1000, 0, "multi-channel", map[int]monarch.ChannelMeta{
			0: {BitDepth: 8},
			1: {BitDepth: 8},
		})).To(BeNil())

		s0, err := f.Stream(0)
		Expect(err).To(BeNil())
		s1, err := f.Stream(1)
		Expect(err).To(BeNil())

		Expect(s0.Append([]byte("k0"), []byte("v0"))).To(BeNil())
		Expect(s1.Append([]byte("k1"), []byte("v1"))).To(BeNil())
	})

	It("rejects a second concurrent holder of the same stream", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0006")
		Expect(f.Prepare()).To(BeNil())
		Expect(f.InstallStreams(1000, 0, "desc", map[int]monarch.ChannelMeta{0: {}})).To(BeNil())

		_, err := f.Stream(0)
		Expect(err).To(BeNil())

		_, err = f.Stream(0)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(monarch.ErrorStreamBusy)).To(BeTrue())
	})

	It("makes finish-file idempotent", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0007")
		Expect(f.Prepare()).To(BeNil())
		Expect(f.InstallStreams(1000, 0, "desc", map[int]monarch.ChannelMeta{0: {}})).To(BeNil())
		Expect(f.FinishStream(0, true)).To(BeNil())

		Expect(f.FinishFile()).To(BeNil())
		Expect(f.FinishFile()).To(BeNil())
		Expect(f.Stage()).To(Equal(monarch.Finished))
	})

	It("only finishes the file once every stream is released", func() {
		db := openDB()
		f := monarch.NewFile(db, "run-0008")
		Expect(f.Prepare()).To(BeNil())
		Expect(f.InstallStreams(1000, 0, "desc", map[int]monarch.ChannelMeta{
			0: {}, 1: {},
		})).To(BeNil())

		Expect(f.FinishStream(0, true)).To(BeNil())
		Expect(f.Stage()).To(Equal(monarch.Writing))

		Expect(f.FinishStream(1, true)).To(BeNil())
		Expect(f.Stage()).To(Equal(monarch.Finished))
	})
})
