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

// Package stream is the config.Component wrapping the preset registry
// and stream manager: on Start it registers every configured preset and
// configures the stream manager with the active one, the way the
// teacher's database/cache components open their client on Start and
// close it on Stop.
package stream

import (
	"encoding/json"

	"github.com/spf13/viper"

	"github.com/axiondarkmatterexperiment/psyllid/config"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	"github.com/axiondarkmatterexperiment/psyllid/node"
	"github.com/axiondarkmatterexperiment/psyllid/preset"
	"github.com/axiondarkmatterexperiment/psyllid/streammgr"
)

// Component owns the preset registry and the stream manager built on top
// of a node.Registry the caller supplies (node builders are part of the
// graph-node implementations, out of this module's scope per spec §3).
type Component struct {
	nodeReg *node.Registry

	vpr *viper.Viper
	log logger.Logger

	presets    *preset.Registry
	activeName string
	manager    *streammgr.Manager
}

// New builds a stream Component driving nodes built from nodeReg.
func New(nodeReg *node.Registry) *Component {
	return &Component{nodeReg: nodeReg}
}

func (c *Component) Type() string { return "stream" }

func (c *Component) Init(vpr *viper.Viper, log logger.Logger) {
	c.vpr = vpr
	c.log = log
	c.presets = preset.NewRegistry(log)
	c.manager = streammgr.New(c.nodeReg, log)
}

func (c *Component) DefaultConfig(indent string) []byte {
	b, _ := json.MarshalIndent(map[string]interface{}{
		"active-preset": "",
		"presets":       []interface{}{},
	}, "", indent)
	return b
}

// Start registers every preset named in config.Settings.Presets and
// configures the manager with the active one.
func (c *Component) Start() error {
	var presets []config.PresetConfig
	if err := c.vpr.UnmarshalKey("presets", &presets); err != nil {
		return err
	}
	c.activeName = c.vpr.GetString("active-preset")

	for _, p := range presets {
		if err := c.presets.Register(presetTree(p)); err != nil {
			return err
		}
	}

	if c.activeName == "" {
		return nil
	}
	return c.activate()
}

func presetTree(p config.PresetConfig) map[string]interface{} {
	nodes := make([]interface{}, 0, len(p.Nodes))
	for name, typ := range p.Nodes {
		nodes = append(nodes, map[string]interface{}{"name": name, "type": typ})
	}

	conns := make([]interface{}, 0, len(p.Connections))
	for _, c := range p.Connections {
		conns = append(conns, c)
	}

	return map[string]interface{}{
		"name":        p.Name,
		"nodes":       nodes,
		"connections": conns,
	}
}

func (c *Component) activate() error {
	p, err := c.presets.Get(c.activeName)
	if err != nil {
		return err
	}
	return c.manager.Configure(p, nil)
}

// Reload re-registers presets and, if the manager holds no configured
// graph yet, configures it with the active preset; a manager that already
// holds a graph is left as it is.
func (c *Component) Reload() error {
	if len(c.manager.Bindings()) == 0 {
		return c.Start()
	}
	var presets []config.PresetConfig
	if err := c.vpr.UnmarshalKey("presets", &presets); err != nil {
		return err
	}
	for _, p := range presets {
		if err := c.presets.Register(presetTree(p)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Component) Stop() {}

// Manager exposes the configured streammgr.Manager to the rest of the
// daemon's wiring.
func (c *Component) Manager() *streammgr.Manager { return c.manager }

// Presets exposes the preset registry, e.g. for an online "load preset"
// request extension.
func (c *Component) Presets() *preset.Registry { return c.presets }

var _ config.Component = (*Component)(nil)
