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

// Package filehouse is the process-wide arbitrator of the files writer
// nodes share (spec §4.3, the "butterfly house"): it hands out reference
// counted declarations, drives every declared file through prepare and
// finish as a batch, and exposes the per-file properties the DAQ
// controller mutates by positional index. Stage transitions take a
// coordinator-wide lock; the record I/O itself is left to the monarch
// file's own locking.
package filehouse

import (
	"sync"
	"time"

	"github.com/nutsdb/nutsdb"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	"github.com/axiondarkmatterexperiment/psyllid/monarch"
)

type record struct {
	filename    string
	description string
	file        *monarch.File
	refCount    int
}

// Coordinator is the process-wide singleton arbitrating shared output
// files. Construct one per daemon instance.
type Coordinator struct {
	mu    sync.Mutex
	db    *nutsdb.DB
	order []string
	recs  map[string]*record
	log   logger.Logger
}

// New builds an empty Coordinator backed by db. A nil log falls back to
// the process-wide default.
func New(db *nutsdb.DB, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Coordinator{db: db, recs: map[string]*record{}, log: log}
}

// Declare announces intent to use filename. A new name creates a record
// at stage Initialized; an existing, still-open name is reference
// counted and its wrapper returned as-is. Fails with ErrorFinishedFile if
// the record is already finished.
func (c *Coordinator) Declare(filename string) (*monarch.File, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.recs[filename]; ok {
		if r.file.Stage() == monarch.Finished {
			return nil, ErrorFinishedFile.Errorf("filename %q", filename)
		}
		r.refCount++
		return r.file, nil
	}

	f := monarch.NewFile(c.db, filename)
	c.recs[filename] = &record{filename: filename, file: f, refCount: 1}
	c.order = append(c.order, filename)
	return f, nil
}

// StreamSpec pairs the streams installed on a declared file's per-file
// channel metadata, keyed by stream index.
type StreamSpec map[int]monarch.ChannelMeta

// PrepareAll transitions every Initialized record to Preparing and then
// Writing: the header (duration, timestamp, description) is written and
// the given per-file streams are installed. streams is keyed by filename;
// a file with no entry is installed with no streams.
func (c *Coordinator) PrepareAll(durationMS uint64, streams map[string]StreamSpec) liberr.Error {
	c.mu.Lock()
	toPrepare := make([]*record, 0, len(c.order))
	for _, name := range c.order {
		r := c.recs[name]
		if r.file.Stage() == monarch.Initialized {
			toPrepare = append(toPrepare, r)
		}
	}
	c.mu.Unlock()

	now := time.Now().UnixNano()
	for _, r := range toPrepare {
		if err := r.file.Prepare(); err != nil {
			return err
		}
		spec := streams[r.filename]
		if err := r.file.InstallStreams(durationMS, now, r.description, spec); err != nil {
			return err
		}
	}
	return nil
}

// Finish transitions filename's record from Writing to Finished.
// Idempotent: finishing an already-finished file is a no-op.
func (c *Coordinator) Finish(filename string) liberr.Error {
	c.mu.Lock()
	r, ok := c.recs[filename]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return r.file.FinishFile()
}

// FinishAll finishes every currently declared record.
func (c *Coordinator) FinishAll() liberr.Error {
	c.mu.Lock()
	names := make([]string, len(c.order))
	copy(names, c.order)
	c.mu.Unlock()

	for _, name := range names {
		if err := c.Finish(name); err != nil {
			return err
		}
	}
	return nil
}

// Count reports how many files are currently declared.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Filename returns the name at the given positional index into the
// currently declared set.
func (c *Coordinator) Filename(index int) (string, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.order) {
		return "", ErrorOutOfRange.Errorf("index %d", index)
	}
	return c.order[index], nil
}

// SetFilename renames the record at index. The rename only relabels the
// coordinator's bookkeeping; the underlying file's bucket name is fixed
// at declare time.
func (c *Coordinator) SetFilename(index int, name string) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.order) {
		return ErrorOutOfRange.Errorf("index %d", index)
	}
	old := c.order[index]
	r := c.recs[old]
	delete(c.recs, old)
	r.filename = name
	c.recs[name] = r
	c.order[index] = name
	return nil
}

// Description returns the description at the given positional index.
func (c *Coordinator) Description(index int) (string, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.order) {
		return "", ErrorOutOfRange.Errorf("index %d", index)
	}
	return c.recs[c.order[index]].description, nil
}

// SetDescription sets the description at the given positional index;
// it never touches the file's name.
func (c *Coordinator) SetDescription(index int, description string) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.order) {
		return ErrorOutOfRange.Errorf("index %d", index)
	}
	c.recs[c.order[index]].description = description
	return nil
}
