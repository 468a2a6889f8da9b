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

// Package monarch is the thread-safety facade over the daemon's on-disk
// record container (spec §4.4): header access is a scoped exclusive
// guard, per-stream access is handed out but not itself serialised (the
// caller promises single-threaded use of a given stream), and the whole
// file advances through a strictly monotonic stage machine. The original
// daemon backs this with an HDF5 container; this module backs it with an
// embedded nutsdb store, one bucket per file for the header and one per
// stream for its record log.
package monarch

import (
	"fmt"
	"sync"

	"github.com/nutsdb/nutsdb"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

// Stage is a file's position in its strictly monotonic lifecycle.
type Stage int

const (
	Initialized Stage = iota
	Preparing
	Writing
	Finished
)

func (s Stage) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Preparing:
		return "preparing"
	case Writing:
		return "writing"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// ChannelMeta is the per-stream channel metadata written at prepare time.
type ChannelMeta struct {
	VoltageOffset float64
	VoltageRange  float64
	DACGain       float64
	BitDepth      int
}

type streamState struct {
	open     bool
	released bool
}

// File is a single on-disk record container: one header bucket plus one
// bucket per installed stream, all within a shared nutsdb store.
type File struct {
	db     *nutsdb.DB
	bucket string

	mu         sync.Mutex
	stage      Stage
	headerHeld bool
	streams    map[int]*streamState
}

// NewFile wraps bucket (a name unique among files sharing db) at stage
// Initialized.
func NewFile(db *nutsdb.DB, bucket string) *File {
	return &File{db: db, bucket: bucket, stage: Initialized, streams: map[int]*streamState{}}
}

// Stage reports the file's current stage.
func (f *File) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// Prepare advances initialized -> preparing.
func (f *File) Prepare() liberr.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != Initialized {
		return ErrorBadStage.Errorf("prepare from stage %s", f.stage)
	}
	f.stage = Preparing
	return nil
}

// InstallStreams advances preparing -> writing, recording one bucket per
// index in metas. The header bucket is written with the given run
// duration, timestamp, and description before streams are installed,
// matching the original prepare step's ordering.
func (f *File) InstallStreams(durationMS uint64, timestampUnixNano int64, description string, metas map[int]ChannelMeta) liberr.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != Preparing {
		return ErrorBadStage.Errorf("install streams from stage %s", f.stage)
	}

	if err := f.db.Update(func(tx *nutsdb.Tx) error {
		hdr := f.headerBucket()
		if e := tx.Put(hdr, []byte("duration_ms"), []byte(fmt.Sprintf("%d", durationMS)), 0); e != nil {
			return e
		}
		if e := tx.Put(hdr, []byte("timestamp"), []byte(fmt.Sprintf("%d", timestampUnixNano)), 0); e != nil {
			return e
		}
		return tx.Put(hdr, []byte("description"), []byte(description), 0)
	}); err != nil {
		return ErrorStorage.Error(err)
	}

	for i, meta := range metas {
		f.streams[i] = &streamState{}
		if err := f.db.Update(func(tx *nutsdb.Tx) error {
			b := f.streamBucket(i)
			if e := tx.Put(b, []byte("voltage_offset"), []byte(fmt.Sprintf("%f", meta.VoltageOffset)), 0); e != nil {
				return e
			}
			if e := tx.Put(b, []byte("voltage_range"), []byte(fmt.Sprintf("%f", meta.VoltageRange)), 0); e != nil {
				return e
			}
			if e := tx.Put(b, []byte("dac_gain"), []byte(fmt.Sprintf("%f", meta.DACGain)), 0); e != nil {
				return e
			}
			return tx.Put(b, []byte("bit_depth"), []byte(fmt.Sprintf("%d", meta.BitDepth)), 0)
		}); err != nil {
			return ErrorStorage.Error(err)
		}
	}

	f.stage = Writing
	return nil
}

// Header returns a scoped exclusive guard over the file's header
// metadata. Only valid while the file is Preparing; Release must be
// called to allow a subsequent Header call.
func (f *File) Header() (*HeaderGuard, liberr.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != Preparing {
		return nil, ErrorBadStage.Errorf("header access from stage %s", f.stage)
	}
	if f.headerHeld {
		return nil, ErrorHeaderHeld.Error(nil)
	}
	f.headerHeld = true
	return &HeaderGuard{f: f}, nil
}

func (f *File) releaseHeader() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headerHeld = false
}

// Stream returns the per-stream handle for index i. Only valid while the
// file is Writing; the wrapper does not serialise access to the returned
// Stream beyond tracking that it is currently held.
func (f *File) Stream(i int) (*Stream, liberr.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != Writing {
		return nil, ErrorBadStage.Errorf("stream access from stage %s", f.stage)
	}
	st, ok := f.streams[i]
	if !ok {
		return nil, ErrorBadStage.Errorf("stream %d was not installed", i)
	}
	if st.open {
		return nil, ErrorStreamBusy.Errorf("stream %d", i)
	}
	st.open = true
	return &Stream{f: f, index: i}, nil
}

// FinishStream releases stream i. If finishFileIfLast is set and every
// installed stream has now been released, the file is finished as a
// side effect.
func (f *File) FinishStream(i int, finishFileIfLast bool) liberr.Error {
	f.mu.Lock()
	st, ok := f.streams[i]
	if !ok {
		f.mu.Unlock()
		return ErrorBadStage.Errorf("stream %d was not installed", i)
	}
	st.open = false
	st.released = true

	allReleased := true
	for _, s := range f.streams {
		if !s.released {
			allReleased = false
			break
		}
	}
	f.mu.Unlock()

	if finishFileIfLast && allReleased {
		return f.FinishFile()
	}
	return nil
}

// FinishFile transitions writing -> finished. Idempotent: calling it
// again, or calling it on a file that never reached writing (but is
// already finished), is a no-op.
func (f *File) FinishFile() liberr.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage == Finished {
		return nil
	}
	if f.stage != Writing {
		return ErrorBadStage.Errorf("finish from stage %s", f.stage)
	}
	f.stage = Finished
	return nil
}

func (f *File) headerBucket() string {
	return f.bucket + "::header"
}

func (f *File) streamBucket(i int) string {
	return fmt.Sprintf("%s::stream:%d", f.bucket, i)
}
