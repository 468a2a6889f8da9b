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

// Package preset is the named-template registry a stream manager
// instantiates a node graph from (spec §4.1): a map of logical name to
// node type, plus a set of connection strings, decoupling graph shape
// from the DAQ controller.
package preset

import (
	"reflect"
	"strings"
	"sync"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
)

// Preset is an immutable, named graph template. Callers only ever see a
// copy returned by Get - the registry keeps the authoritative instance.
type Preset struct {
	Name        string
	Nodes       map[string]string // logical name -> node type
	Connections []string          // "src-node.out_i:dst-node.in_j"
}

func (p *Preset) clone() *Preset {
	nodes := make(map[string]string, len(p.Nodes))
	for k, v := range p.Nodes {
		nodes[k] = v
	}
	conns := make([]string, len(p.Connections))
	copy(conns, p.Connections)
	return &Preset{Name: p.Name, Nodes: nodes, Connections: conns}
}

func (p *Preset) equal(other *Preset) bool {
	return reflect.DeepEqual(p.Nodes, other.Nodes) && reflect.DeepEqual(p.Connections, other.Connections)
}

// Registry is the process-wide preset lookup table.
type Registry struct {
	mu  sync.RWMutex
	set map[string]*Preset
	log logger.Logger
}

// NewRegistry builds an empty registry. A nil log falls back to the
// process-wide default logger.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Registry{set: make(map[string]*Preset), log: log}
}

// Register validates and stores the preset described by tree. tree must
// have a string "name", an array "nodes" of objects with at least "type"
// (and an optional "name" defaulting to "type"), and an optional array of
// connection strings "connections". Registering a preset whose contents
// exactly match an already-registered preset of the same name is a no-op;
// registering different contents under an existing name replaces it and
// logs the replacement.
func (r *Registry) Register(tree map[string]interface{}) liberr.Error {
	p, err := parse(tree)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.set[p.Name]; ok {
		if existing.equal(p) {
			return nil
		}
		r.log.WithField("preset", p.Name).Info("replacing preset with different contents")
	}

	r.set[p.Name] = p
	return nil
}

// Get returns a read-only copy of the named preset, failing with
// ErrorNotFound if it was never registered.
func (r *Registry) Get(name string) (*Preset, liberr.Error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.set[name]
	if !ok {
		return nil, ErrorNotFound.Errorf("preset %q", name)
	}
	return p.clone(), nil
}

func parse(tree map[string]interface{}) (*Preset, liberr.Error) {
	name, ok := tree["name"].(string)
	if !ok || name == "" {
		return nil, ErrorInvalidConfig.Errorf("missing required key %q", "name")
	}

	rawNodes, ok := tree["nodes"].([]interface{})
	if !ok || len(rawNodes) == 0 {
		return nil, ErrorInvalidConfig.Errorf("missing required array %q", "nodes")
	}

	nodes := make(map[string]string, len(rawNodes))
	for _, rn := range rawNodes {
		obj, ok := rn.(map[string]interface{})
		if !ok {
			return nil, ErrorInvalidConfig.Errorf("node entry must be an object")
		}

		typ, ok := obj["type"].(string)
		if !ok || typ == "" {
			return nil, ErrorInvalidConfig.Errorf("node entry missing required key %q", "type")
		}

		logicalName := typ
		if n, ok := obj["name"].(string); ok && n != "" {
			logicalName = n
		}

		if _, dup := nodes[logicalName]; dup {
			return nil, ErrorDuplicateNode.Errorf("name %q", logicalName)
		}
		nodes[logicalName] = typ
	}

	var conns []string
	if rawConns, ok := tree["connections"].([]interface{}); ok {
		conns = make([]string, 0, len(rawConns))
		for _, rc := range rawConns {
			cs, ok := rc.(string)
			if !ok {
				return nil, ErrorInvalidConfig.Errorf("connection entry must be a string")
			}
			if err := validateConnection(cs, nodes); err != nil {
				return nil, err
			}
			conns = append(conns, cs)
		}
	}

	return &Preset{Name: name, Nodes: nodes, Connections: conns}, nil
}

func validateConnection(conn string, nodes map[string]string) liberr.Error {
	parts := strings.SplitN(conn, ":", 2)
	if len(parts) != 2 {
		return ErrorBadConnection.Errorf("malformed connection %q", conn)
	}

	for _, endpoint := range parts {
		nodeName, _, ok := splitEndpoint(endpoint)
		if !ok {
			return ErrorBadConnection.Errorf("malformed endpoint %q in connection %q", endpoint, conn)
		}
		if _, declared := nodes[nodeName]; !declared {
			return ErrorBadConnection.Errorf("endpoint %q references undeclared node in connection %q", endpoint, conn)
		}
	}
	return nil
}

// splitEndpoint splits "node-name.port" into its node and port parts.
func splitEndpoint(endpoint string) (nodeName, port string, ok bool) {
	idx := strings.LastIndex(endpoint, ".")
	if idx <= 0 || idx == len(endpoint)-1 {
		return "", "", false
	}
	return endpoint[:idx], endpoint[idx+1:], true
}
