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

package node

// Command tags a Datum traveling along a stream connection.
type Command uint8

const (
	CmdNone Command = iota
	CmdStart
	CmdRun
	CmdStop
	CmdExit
	CmdError
)

func (c Command) String() string {
	switch c {
	case CmdStart:
		return "start"
	case CmdRun:
		return "run"
	case CmdStop:
		return "stop"
	case CmdExit:
		return "exit"
	case CmdError:
		return "error"
	default:
		return "none"
	}
}

// Record is the payload carried by a `run` Datum. Concrete node algorithms
// (UDP reception, FFT, trigger, writers) are out of this module's scope;
// these four record shapes are the stream contract they must agree on.
type Record interface {
	isRecord()
}

// RawBlock is an unparsed block of memory straight off the wire, as
// delivered by the UDP receiver before ROACH demultiplexing.
type RawBlock struct {
	Data []byte
}

func (RawBlock) isRecord() {}

// TimeRecord is one time-domain packet out of the ROACH demultiplexer.
// PktInBatch/PktInSession are the counters the original implementation
// uses to keep the time and frequency streams aligned at a writer.
type TimeRecord struct {
	PktInBatch   uint64
	PktInSession uint64
	Samples      []int16
}

func (TimeRecord) isRecord() {}

// FreqRecord is one frequency-domain packet, either straight off the
// digitizer or produced by an in-graph FFT node.
type FreqRecord struct {
	PktInBatch   uint64
	PktInSession uint64
	Bins         []complex64
}

func (FreqRecord) isRecord() {}

// TriggerFlag is a trigger node's verdict on whether a given packet
// should be persisted by the writer it feeds.
type TriggerFlag struct {
	PktInBatch   uint64
	PktInSession uint64
	Triggered    bool
}

func (TriggerFlag) isRecord() {}

// Datum is the conceptual unit traveling a connection: a Command and,
// only for CmdRun, a typed Record payload.
type Datum struct {
	Cmd     Command
	Payload Record
}

// EventStreak tracks the is-new-event bit a writer attaches to triggered
// packets (spec invariant 5): true on the first triggered packet of a
// streak, false on every one after, restarting on any untriggered packet.
type EventStreak struct {
	inStreak bool
}

// Next folds in the next TriggerFlag's verdict and reports whether this
// packet starts a new event.
func (e *EventStreak) Next(triggered bool) bool {
	if !triggered {
		e.inStreak = false
		return false
	}
	if e.inStreak {
		return false
	}
	e.inStreak = true
	return true
}
