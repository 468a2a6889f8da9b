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

// Command psyllidd is the DAQ control daemon: it loads configuration,
// wires the preset-backed stream graph and the chat-alert relay, builds
// the DAQ controller and file coordinator on top of them, replays any
// configured startup batch script, then blocks until signalled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nutsdb/nutsdb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/axiondarkmatterexperiment/psyllid/batch"
	"github.com/axiondarkmatterexperiment/psyllid/config"
	cfgalert "github.com/axiondarkmatterexperiment/psyllid/config/components/alert"
	cfgstream "github.com/axiondarkmatterexperiment/psyllid/config/components/stream"
	"github.com/axiondarkmatterexperiment/psyllid/daqctl"
	"github.com/axiondarkmatterexperiment/psyllid/filehouse"
	"github.com/axiondarkmatterexperiment/psyllid/logger"
	"github.com/axiondarkmatterexperiment/psyllid/node"
	"github.com/axiondarkmatterexperiment/psyllid/request"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "psyllidd",
		Short: "psyllid DAQ control daemon",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the daemon's configuration file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.New(os.Stdout)
	logger.SetDefault(log)

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	vpr := viper.New()
	vpr.Set("presets", settings.Presets)
	vpr.Set("active-preset", settings.ActivePreset)
	vpr.Set("alert.enabled", settings.Alert.Enabled)
	vpr.Set("alert.nats-url", settings.Alert.NatsURL)
	vpr.Set("alert.subject", settings.Alert.Subject)

	registry := config.NewRegistry(vpr, log)

	streamCpt := cfgstream.New(node.NewRegistry())
	alertCpt := cfgalert.New()

	if err := registry.Register("stream", streamCpt); err != nil {
		return err
	}
	if err := registry.Register("alert", alertCpt); err != nil {
		return err
	}
	if err := registry.Start(); err != nil {
		return err
	}
	defer registry.Stop()

	db, derr := nutsdb.Open(nutsdb.DefaultOptions, nutsdb.WithDir(settings.Monarch.DataDir))
	if derr != nil {
		return derr
	}
	defer db.Close()

	fh := filehouse.New(db, log)
	ctl := daqctl.New(streamCpt.Manager(), fh, alertCpt.Relayer(), log, nil)
	ctl.SetUseMonarch(settings.UseMonarch)
	if err := ctl.SetDuration(settings.RunDuration); err != nil {
		log.Warn("ignoring invalid configured run duration: ", err.Error())
	}

	router := request.NewRouter(ctl)

	if len(settings.Batch) > 0 {
		actions := make([]batch.Action, 0, len(settings.Batch))
		for _, a := range settings.Batch {
			actions = append(actions, batch.Action{
				Type:     request.Kind(a.Type),
				Keys:     a.Keys,
				Payload:  a.Payload,
				SleepFor: a.SleepFor(),
			})
		}
		if berr := batch.Run(router, actions, log); berr != nil {
			return berr
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	log.Info("psyllidd shutting down")
	return ctl.Cancel()
}
