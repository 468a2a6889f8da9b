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

// Package alert is the config.Component wrapping the chat-alert relay:
// on Start it opens a NATS connection (when enabled) the way the
// teacher's natsServer component dials its server/connection on Start
// and drains it on Stop; when disabled it falls back to a no-op relay so
// the rest of the daemon never needs a nil check.
package alert

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"

	libalert "github.com/axiondarkmatterexperiment/psyllid/alert"
	"github.com/axiondarkmatterexperiment/psyllid/config"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
)

// Component owns the chat-alert relay's connection lifecycle.
type Component struct {
	vpr *viper.Viper
	log logger.Logger

	conn  *nats.Conn
	relay libalert.Relayer
}

// New builds an alert Component.
func New() *Component { return &Component{} }

func (c *Component) Type() string { return "alert" }

func (c *Component) Init(vpr *viper.Viper, log logger.Logger) {
	c.vpr = vpr
	c.log = log
	c.relay = libalert.Noop{}
}

func (c *Component) DefaultConfig(indent string) []byte {
	b, _ := json.MarshalIndent(map[string]interface{}{
		"enabled":  false,
		"nats-url": nats.DefaultURL,
		"subject":  "psyllid.alerts",
	}, "", indent)
	return b
}

func (c *Component) Start() error {
	if !c.vpr.GetBool("alert.enabled") {
		return nil
	}

	url := c.vpr.GetString("alert.nats-url")
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return err
	}

	c.conn = conn
	c.relay = libalert.NewNats(conn, c.vpr.GetString("alert.subject"))
	return nil
}

func (c *Component) Reload() error {
	c.Stop()
	return c.Start()
}

func (c *Component) Stop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.relay = libalert.Noop{}
}

// Relayer exposes the active relay to the rest of the daemon's wiring.
func (c *Component) Relayer() libalert.Relayer { return c.relay }

var _ config.Component = (*Component)(nil)
