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

package config

import (
	"sync"

	"github.com/spf13/viper"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
)

// Component is a subsystem psyllidd owns and drives through a lifecycle:
// the preset-backed stream graph and the chat-alert relay are the two
// concrete components this daemon registers (trimmed from the teacher's
// fuller Component, which also carries CLI-flag and monitor-pool
// registration this daemon has no use for - see DESIGN.md).
type Component interface {
	// Type identifies the component for logging and DefaultConfig.
	Type() string

	// Init hands the component its shared viper and logger handles. It
	// must not start any background work.
	Init(vpr *viper.Viper, log logger.Logger)

	// DefaultConfig returns this component's default configuration block.
	DefaultConfig(indent string) []byte

	// Start begins the component's work.
	Start() error

	// Reload re-reads configuration and applies it without a full restart
	// where possible.
	Reload() error

	// Stop shuts the component down. Best-effort; does not return an error.
	Stop()
}

// Registry holds the daemon's components and drives them through Init,
// Start, Reload and Stop in registration order (reverse order for Stop),
// mirroring the teacher's config.Component lifecycle.
type Registry struct {
	mu    sync.Mutex
	vpr   *viper.Viper
	log   logger.Logger
	order []string
	cpts  map[string]Component
}

// NewRegistry builds an empty Registry bound to vpr and log.
func NewRegistry(vpr *viper.Viper, log logger.Logger) *Registry {
	return &Registry{vpr: vpr, log: log, cpts: make(map[string]Component)}
}

// Register adds a component under key and calls its Init immediately.
func (r *Registry) Register(key string, cpt Component) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cpts[key]; exists {
		return ErrorDuplicateComponent.Errorf("key %q", key)
	}

	cpt.Init(r.vpr, r.log)
	r.cpts[key] = cpt
	r.order = append(r.order, key)
	return nil
}

// Start calls Start on every registered component in registration order,
// stopping at the first failure.
func (r *Registry) Start() liberr.Error {
	r.mu.Lock()
	order := append([]string(nil), r.order...)
	r.mu.Unlock()

	for _, key := range order {
		if err := r.cpts[key].Start(); err != nil {
			return ErrorComponentStart.Errorf("%s: %s", key, err.Error())
		}
	}
	return nil
}

// Reload calls Reload on every registered component in registration order.
func (r *Registry) Reload() liberr.Error {
	r.mu.Lock()
	order := append([]string(nil), r.order...)
	r.mu.Unlock()

	for _, key := range order {
		if err := r.cpts[key].Reload(); err != nil {
			return ErrorComponentStart.Errorf("%s reload: %s", key, err.Error())
		}
	}
	return nil
}

// Stop calls Stop on every registered component in reverse registration
// order, best-effort.
func (r *Registry) Stop() {
	r.mu.Lock()
	order := append([]string(nil), r.order...)
	r.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		r.cpts[order[i]].Stop()
	}
}

// Get returns the component registered under key, or nil.
func (r *Registry) Get(key string) Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cpts[key]
}
