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

// Package node holds the two orthogonal capabilities a DAQ node exposes to
// the control plane - execution (start/pause/resume/cancel, owned by the
// graph runtime) and configuration (apply/dump/command, owned by the
// binder) - plus the stream-datum and record types that travel a graph's
// connections, and the builder registry presets are instantiated from.
package node

import (
	"sync"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

// Execution is the capability the graph runtime drives a node through.
// Concrete node algorithms (UDP reception, FFT, trigger, writers) are out
// of this module's scope; this is the contract they implement.
type Execution interface {
	Start() error
	Pause() error
	Resume() error
	Cancel()
}

// Binder is the capability the control plane drives a node's configuration
// through, independent of whether the graph is running.
type Binder interface {
	// ApplyConfig merges cfg into the node's live configuration. Unknown
	// keys are left at their default per spec §4.2.
	ApplyConfig(cfg map[string]interface{}) error

	// DumpConfig returns the node's current configuration.
	DumpConfig() map[string]interface{}

	// RunCommand forwards a named command to the node. A false return
	// means the node did not recognise cmd (reported as method-not-found
	// by the caller); an error means the node raised a device error.
	RunCommand(cmd string, args map[string]interface{}) (bool, error)
}

// Node is a concrete, tagged instance: execution plus configuration.
type Node interface {
	Execution
	Binder
	Type() string
}

// Binding is an active instance in a graph: logical name, node object, and
// its binder (here the same object, since Node already implements both
// capabilities, kept as separate accessors so callers depend on only the
// capability they need).
type Binding struct {
	Type   string
	Name   string
	Node   Node
	Binder Binder
}

// Builder instantiates a Node of a given type from a configuration map.
type Builder func(cfg map[string]interface{}) (Node, error)

// Registry is a process-wide type -> Builder table. Stream managers look
// nodes up here when materialising a preset (spec §4.2).
type Registry struct {
	mu sync.RWMutex
	b  map[string]Builder
}

// NewRegistry builds an empty builder registry.
func NewRegistry() *Registry {
	return &Registry{b: make(map[string]Builder)}
}

// Register adds a builder for nodeType. Re-registering the same type with
// a different builder is allowed (mirrors preset.Register's replace
// semantics) and is not treated as an error.
func (r *Registry) Register(nodeType string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.b[nodeType] = b
}

// Build instantiates nodeType with cfg, failing with ErrorUnknownNodeType
// if no builder is registered.
func (r *Registry) Build(nodeType string, cfg map[string]interface{}) (Node, liberr.Error) {
	r.mu.RLock()
	b, ok := r.b[nodeType]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrorUnknownNodeType.Errorf("type %q", nodeType)
	}

	n, err := b(cfg)
	if err != nil {
		return nil, ErrorDeviceError.Error(err)
	}
	return n, nil
}

// Has reports whether nodeType has a registered builder.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.b[nodeType]
	return ok
}
