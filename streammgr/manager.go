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

// Package streammgr builds, owns, and dismantles the active node graph
// (spec §4.2): it instantiates nodes from a preset through the node
// builder registry, hands out the exclusive graph-runtime ticket, and
// exposes the live binder/node view online reconfiguration goes through.
package streammgr

import (
	"context"
	"sort"
	"strings"
	"sync"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
	"github.com/axiondarkmatterexperiment/psyllid/graphrt"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	"github.com/axiondarkmatterexperiment/psyllid/node"
	"github.com/axiondarkmatterexperiment/psyllid/preset"
)

// Manager owns at most one live graph at a time, built from a preset.
type Manager struct {
	mu sync.RWMutex

	nodeReg *node.Registry
	log     logger.Logger

	presetName  string
	bindings    map[string]node.Binding
	connections []string
	runString   string

	rt       *graphrt.Runtime
	consumed bool
}

// New builds an empty Manager. nodeReg supplies the type -> builder table
// configure() instantiates nodes from; a nil log falls back to the
// process-wide default.
func New(nodeReg *node.Registry, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Manager{nodeReg: nodeReg, log: log}
}

// Configure instantiates p's nodes, applying perNodeConfigs by logical
// name (missing entries leave a node at its defaults), and materialises
// p's connections. It is only callable when no graph is live.
func (m *Manager) Configure(p *preset.Preset, perNodeConfigs map[string]map[string]interface{}) liberr.Error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bindings != nil {
		return ErrorGraphLive.Error(nil)
	}

	bindings := make(map[string]node.Binding, len(p.Nodes))
	for name, typ := range p.Nodes {
		n, err := m.nodeReg.Build(typ, perNodeConfigs[name])
		if err != nil {
			return err
		}
		bindings[name] = node.Binding{Type: typ, Name: name, Node: n, Binder: n}
	}

	runString, err := runString(p.Nodes, p.Connections)
	if err != nil {
		return err
	}

	m.presetName = p.Name
	m.bindings = bindings
	m.connections = p.Connections
	m.runString = runString
	m.rt = graphrt.New(graphrt.Callbacks{
		Start: m.startGraph,
		Pause: m.pauseGraph,
		Resume: m.resumeGraph,
		Stop:  m.stopGraph,
	})
	m.consumed = false

	return nil
}

// MustReset reports whether the underlying graph runtime was already
// consumed by a prior activation and needs rebuilding before it can be
// acquired again.
func (m *Manager) MustReset() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consumed
}

// Reset rebuilds the graph runtime ticket around the currently configured
// graph, without re-instantiating nodes or re-applying configuration.
func (m *Manager) Reset() liberr.Error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bindings == nil {
		return ErrorNoGraph.Error(nil)
	}

	m.rt = graphrt.New(graphrt.Callbacks{
		Start:  m.startGraph,
		Pause:  m.pauseGraph,
		Resume: m.resumeGraph,
		Stop:   m.stopGraph,
	})
	m.consumed = false
	return nil
}

// AcquireRuntime yields the exclusive ticket to run the graph.
func (m *Manager) AcquireRuntime() (graphrt.Handle, liberr.Error) {
	m.mu.Lock()
	rt := m.rt
	m.mu.Unlock()

	if rt == nil {
		return nil, ErrorNoGraph.Error(nil)
	}

	h, err := rt.Acquire()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.consumed = true
	m.mu.Unlock()

	return h, nil
}

// ReleaseRuntime returns h to the graph runtime.
func (m *Manager) ReleaseRuntime(h graphrt.Handle) liberr.Error {
	m.mu.RLock()
	rt := m.rt
	m.mu.RUnlock()

	if rt == nil {
		return ErrorNoGraph.Error(nil)
	}
	return rt.Release(h)
}

// Bindings returns the live logical-name -> binding view. The caller owns
// synchronisation with any in-flight graph run, per spec §5.
func (m *Manager) Bindings() map[string]node.Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]node.Binding, len(m.bindings))
	for k, v := range m.bindings {
		out[k] = v
	}
	return out
}

// RunString returns the serialised, dependency-ordered node execution
// order computed at configure time.
func (m *Manager) RunString() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runString
}

func (m *Manager) startGraph(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (m *Manager) pauseGraph() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bindings {
		if err := b.Node.Pause(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) resumeGraph() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bindings {
		if err := b.Node.Resume(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) stopGraph(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bindings {
		b.Node.Cancel()
	}
	return nil
}

// runString computes a deterministic, topologically sorted textual
// execution order from a preset's nodes and connections: "src.port:dst.port"
// makes dst depend on src. Ties are broken lexically for reproducibility.
func runString(nodes map[string]string, connections []string) (string, liberr.Error) {
	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)

	deps := make(map[string]map[string]struct{}, len(names))
	for _, n := range names {
		deps[n] = map[string]struct{}{}
	}

	for _, conn := range connections {
		parts := strings.SplitN(conn, ":", 2)
		if len(parts) != 2 {
			continue
		}
		src, _, ok1 := splitEndpoint(parts[0])
		dst, _, ok2 := splitEndpoint(parts[1])
		if !ok1 || !ok2 {
			continue
		}
		deps[dst][src] = struct{}{}
	}

	var order []string
	visited := make(map[string]int) // 0=unvisited, 1=visiting, 2=done
	var visit func(n string) liberr.Error
	visit = func(n string) liberr.Error {
		switch visited[n] {
		case 2:
			return nil
		case 1:
			return ErrorCycle.Errorf("node %q", n)
		}
		visited[n] = 1

		depNames := make([]string, 0, len(deps[n]))
		for d := range deps[n] {
			depNames = append(depNames, d)
		}
		sort.Strings(depNames)

		for _, d := range depNames {
			if err := visit(d); err != nil {
				return err
			}
		}
		visited[n] = 2
		order = append(order, n)
		return nil
	}

	for _, n := range names {
		if err := visit(n); err != nil {
			return "", err
		}
	}

	return strings.Join(order, ","), nil
}

func splitEndpoint(endpoint string) (nodeName, port string, ok bool) {
	idx := strings.LastIndex(endpoint, ".")
	if idx <= 0 || idx == len(endpoint)-1 {
		return "", "", false
	}
	return endpoint[:idx], endpoint[idx+1:], true
}
