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

package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/axiondarkmatterexperiment/psyllid/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "logger suite")
}

var _ = Describe("Logger", func() {
	It("filters by level", func() {
		buf := &bytes.Buffer{}
		l := logger.New(buf)
		l.SetLevel(logger.ErrorLevel)
		Expect(l.GetLevel()).To(Equal(logger.ErrorLevel))

		l.Info("should not appear")
		Expect(buf.String()).To(BeEmpty())

		l.Error("should appear")
		Expect(buf.String()).To(ContainSubstring("should appear"))
	})

	It("carries structured fields", func() {
		buf := &bytes.Buffer{}
		l := logger.New(buf)
		l.SetLevel(logger.DebugLevel)

		l.WithField("node", "recv").Info("started")
		Expect(strings.Contains(buf.String(), "node=recv")).To(BeTrue())
	})

	It("has a process default", func() {
		buf := &bytes.Buffer{}
		l := logger.New(buf)
		logger.SetDefault(l)
		Expect(logger.GetDefault()).To(Equal(l))
	})
})
