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

// Package config loads the daemon's configuration with viper and exposes
// it to the small set of components psyllidd owns, following the
// teacher's component-registry shape: components are registered under a
// key, initialised with the shared viper/logger handles, and started in
// registration order.
package config

import (
	"time"

	"github.com/spf13/viper"

	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

// PresetConfig names one entry of the preset registry loaded at startup.
type PresetConfig struct {
	Name        string            `mapstructure:"name"`
	Nodes       map[string]string `mapstructure:"nodes"`
	Connections []string          `mapstructure:"connections"`
}

// AlertConfig configures the chat-alert relay.
type AlertConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	NatsURL string `mapstructure:"nats-url"`
	Subject string `mapstructure:"subject"`
}

// MonarchConfig configures the nutsdb-backed file store.
type MonarchConfig struct {
	DataDir string `mapstructure:"data-dir"`
}

// BatchAction mirrors batch.Action in a viper-friendly shape (Action's
// SleepFor is a *time.Duration, which viper cannot populate directly).
type BatchAction struct {
	Type       string                 `mapstructure:"type"`
	Keys       string                 `mapstructure:"rks"`
	Payload    map[string]interface{} `mapstructure:"payload"`
	SleepForMS int                    `mapstructure:"sleep-for"`
}

// Settings is the daemon's full configuration tree.
type Settings struct {
	ActivePreset string         `mapstructure:"active-preset"`
	Presets      []PresetConfig `mapstructure:"presets"`
	Alert        AlertConfig    `mapstructure:"alert"`
	Monarch      MonarchConfig  `mapstructure:"monarch"`
	Batch        []BatchAction  `mapstructure:"batch"`
	RunDuration  uint64         `mapstructure:"run-duration-ms"`
	UseMonarch   bool           `mapstructure:"use-monarch"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("active-preset", "")
	v.SetDefault("alert.enabled", false)
	v.SetDefault("alert.subject", "psyllid.alerts")
	v.SetDefault("monarch.data-dir", "./data")
	v.SetDefault("run-duration-ms", 1000)
	v.SetDefault("use-monarch", false)
}

// Load reads configuration from path (any format viper supports: yaml,
// json, toml) merged over the daemon's defaults.
func Load(path string) (*Settings, liberr.Error) {
	v := viper.New()
	defaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ErrorLoad.Error(err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, ErrorLoad.Error(err)
	}
	return &s, nil
}

// SleepFor renders the action's configured sleep interval, falling back
// to batch's own 500ms default when unset.
func (a BatchAction) SleepFor() *time.Duration {
	if a.SleepForMS <= 0 {
		return nil
	}
	d := time.Duration(a.SleepForMS) * time.Millisecond
	return &d
}
