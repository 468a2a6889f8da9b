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

package monarch

import (
	"sync"

	"github.com/nutsdb/nutsdb"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

// HeaderGuard is the exclusive scoped handle File.Header hands out. Only
// one is ever outstanding per file; Release must be called before another
// caller can acquire one.
type HeaderGuard struct {
	f        *File
	once     sync.Once
	released bool
}

// Set writes a header field.
func (g *HeaderGuard) Set(key, value string) liberr.Error {
	if err := g.f.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(g.f.headerBucket(), []byte(key), []byte(value), 0)
	}); err != nil {
		return ErrorStorage.Error(err)
	}
	return nil
}

// Get reads a header field, reporting whether it was present.
func (g *HeaderGuard) Get(key string) (string, bool) {
	var value string
	var found bool
	_ = g.f.db.View(func(tx *nutsdb.Tx) error {
		e, err := tx.Get(g.f.headerBucket(), []byte(key))
		if err != nil || e == nil {
			return nil
		}
		value = string(e.Value)
		found = true
		return nil
	})
	return value, found
}

// Release returns the guard. Safe to call more than once.
func (g *HeaderGuard) Release() {
	g.once.Do(func() {
		g.f.releaseHeader()
		g.released = true
	})
}

// Stream is the per-stream handle File.Stream hands out. The wrapper does
// not serialise record writes against this handle - the caller owns
// single-threaded access to a given stream index.
type Stream struct {
	f     *File
	index int
}

// Append writes one record payload to the stream's record log.
func (s *Stream) Append(key []byte, payload []byte) liberr.Error {
	if err := s.f.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(s.f.streamBucket(s.index), key, payload, 0)
	}); err != nil {
		return ErrorStorage.Error(err)
	}
	return nil
}

// Index reports the stream's position within the file.
func (s *Stream) Index() int {
	return s.index
}
