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

package request

import (
	"context"
	"strconv"

	"github.com/axiondarkmatterexperiment/psyllid/daqctl"
	liberr "github.com/axiondarkmatterexperiment/psyllid/errors"
)

// Router is the reference Dispatcher: it matches the routing-key
// patterns of spec §6's table against a single daqctl.Controller.
type Router struct {
	Ctl *daqctl.Controller
}

// NewRouter builds a Router bound to ctl.
func NewRouter(ctl *daqctl.Controller) *Router {
	return &Router{Ctl: ctl}
}

func (r *Router) Dispatch(req Request) Reply {
	if len(req.Keys) == 0 {
		return Reply{Code: MessageErrorInvalidKey, Message: "empty key path"}
	}

	switch req.Keys[0] {
	case "activate-daq":
		return r.cmdNoArg(r.Ctl.Activate)
	case "deactivate-daq":
		return r.noCtx(r.Ctl.Deactivate)
	case "reactivate-daq":
		return r.cmdNoArg(r.Ctl.Reactivate)
	case "start-run":
		return r.startRun(req)
	case "stop-run":
		return r.noCtx(r.Ctl.StopRun)
	case "active-config":
		return r.activeConfig(req)
	case "run-command":
		return r.runCommand(req)
	case "filename":
		return r.fileProperty(req, true)
	case "description":
		return r.fileProperty(req, false)
	case "duration":
		return r.duration(req)
	case "use-monarch":
		return r.useMonarch(req)
	case "daq-status":
		return r.daqStatus(req)
	}

	return Reply{Code: MessageErrorInvalidKey, Message: "unrecognised key path"}
}

func (r *Router) cmdNoArg(fn func(context.Context) liberr.Error) Reply {
	if err := fn(context.Background()); err != nil {
		return Reply{Code: DeviceError, Message: err.Error()}
	}
	return Reply{Code: Success}
}

func (r *Router) noCtx(fn func() liberr.Error) Reply {
	if err := fn(); err != nil {
		return Reply{Code: DeviceError, Message: err.Error()}
	}
	return Reply{Code: Success}
}

func (r *Router) startRun(req Request) Reply {
	opts := daqctl.RunOptions{}

	if v, ok := req.Payload["duration"]; ok {
		ms, ok := asUint64(v)
		if !ok {
			return Reply{Code: MessageErrorBadPayload, Message: "duration must be numeric"}
		}
		opts.DurationMS = &ms
	}
	if v, ok := req.Payload["filename"]; ok {
		if s, ok := v.(string); ok {
			opts.Filenames = []string{s}
		} else {
			return Reply{Code: MessageErrorBadPayload, Message: "filename must be a string"}
		}
	}
	if v, ok := req.Payload["filenames"]; ok {
		names, ok := asStringSlice(v)
		if !ok {
			return Reply{Code: MessageErrorBadPayload, Message: "filenames must be a string array"}
		}
		opts.Filenames = names
	}
	if v, ok := req.Payload["description"]; ok {
		if s, ok := v.(string); ok {
			opts.Descriptions = []string{s}
		} else {
			return Reply{Code: MessageErrorBadPayload, Message: "description must be a string"}
		}
	}
	if v, ok := req.Payload["descriptions"]; ok {
		descs, ok := asStringSlice(v)
		if !ok {
			return Reply{Code: MessageErrorBadPayload, Message: "descriptions must be a string array"}
		}
		opts.Descriptions = descs
	}

	if err := r.Ctl.StartRun(opts); err != nil {
		if err.IsCode(daqctl.ErrorOutOfRange) {
			return Reply{Code: MessageErrorBadPayload, Message: err.Error()}
		}
		return Reply{Code: DeviceError, Message: err.Error()}
	}
	return Reply{Code: Success}
}

func (r *Router) activeConfig(req Request) Reply {
	if len(req.Keys) < 3 {
		return Reply{Code: MessageErrorInvalidKey, Message: "active-config requires stream and node"}
	}
	node := req.Keys[2]

	switch req.Kind {
	case KindGet:
		cfg, err := r.Ctl.DumpConfig(node)
		if err != nil {
			return Reply{Code: DeviceError, Message: err.Error()}
		}
		if len(req.Keys) >= 4 {
			param := req.Keys[3]
			v, ok := cfg[param]
			if !ok {
				return Reply{Code: MessageErrorInvalidKey, Message: "unknown parameter " + param}
			}
			return Reply{Code: Success, Payload: map[string]interface{}{param: v}}
		}
		return Reply{Code: Success, Payload: cfg}

	case KindSet:
		cfg := req.Payload
		if len(req.Keys) >= 4 {
			values, ok := req.Payload["values"].([]interface{})
			if !ok || len(values) == 0 {
				return Reply{Code: MessageErrorBadPayload, Message: "expected {values:[v]}"}
			}
			cfg = map[string]interface{}{req.Keys[3]: values[0]}
		}
		if err := r.Ctl.ApplyConfig(node, cfg); err != nil {
			return Reply{Code: DeviceError, Message: err.Error()}
		}
		return Reply{Code: Success}
	}

	return Reply{Code: MessageErrorInvalidMethod}
}

func (r *Router) runCommand(req Request) Reply {
	if len(req.Keys) < 4 {
		return Reply{Code: MessageErrorInvalidKey, Message: "run-command requires stream, node and command"}
	}
	node, cmd := req.Keys[2], req.Keys[3]

	ok, err := r.Ctl.RunCommand(node, cmd, req.Payload)
	if err != nil {
		return Reply{Code: DeviceError, Message: err.Error()}
	}
	if !ok {
		return Reply{Code: MessageErrorInvalidMethod, Message: "node does not recognise command " + cmd}
	}
	return Reply{Code: Success}
}

func (r *Router) fileProperty(req Request, isFilename bool) Reply {
	idx := 0
	if len(req.Keys) >= 2 {
		n, err := strconv.Atoi(req.Keys[1])
		if err != nil {
			return Reply{Code: MessageErrorInvalidKey, Message: "index must be numeric"}
		}
		idx = n
	}

	switch req.Kind {
	case KindGet:
		var v string
		var err error
		if isFilename {
			v, err = r.Ctl.Filename(idx)
		} else {
			v, err = r.Ctl.Description(idx)
		}
		if err != nil {
			return Reply{Code: MessageErrorInvalidKey, Message: err.Error()}
		}
		return Reply{Code: Success, Payload: map[string]interface{}{"values": []interface{}{v}}}

	case KindSet:
		values, ok := req.Payload["values"].([]interface{})
		if !ok || len(values) == 0 {
			return Reply{Code: MessageErrorBadPayload, Message: "expected {values:[v]}"}
		}
		s, ok := values[0].(string)
		if !ok {
			return Reply{Code: MessageErrorBadPayload, Message: "value must be a string"}
		}

		var err error
		if isFilename {
			err = r.Ctl.SetFilename(idx, s)
		} else {
			err = r.Ctl.SetDescription(idx, s)
		}
		if err != nil {
			return Reply{Code: MessageErrorBadPayload, Message: err.Error()}
		}
		return Reply{Code: Success}
	}

	return Reply{Code: MessageErrorInvalidMethod}
}

func (r *Router) duration(req Request) Reply {
	switch req.Kind {
	case KindGet:
		return Reply{Code: Success, Payload: map[string]interface{}{"values": []interface{}{r.Ctl.Duration()}}}
	case KindSet:
		values, ok := req.Payload["values"].([]interface{})
		if !ok || len(values) == 0 {
			return Reply{Code: MessageErrorBadPayload, Message: "expected {values:[v]}"}
		}
		ms, ok := asUint64(values[0])
		if !ok {
			return Reply{Code: MessageErrorBadPayload, Message: "duration must be numeric"}
		}
		if err := r.Ctl.SetDuration(ms); err != nil {
			return Reply{Code: MessageErrorBadPayload, Message: err.Error()}
		}
		return Reply{Code: Success}
	}
	return Reply{Code: MessageErrorInvalidMethod}
}

func (r *Router) useMonarch(req Request) Reply {
	switch req.Kind {
	case KindGet:
		return Reply{Code: Success, Payload: map[string]interface{}{"values": []interface{}{r.Ctl.UseMonarch()}}}
	case KindSet:
		values, ok := req.Payload["values"].([]interface{})
		if !ok || len(values) == 0 {
			return Reply{Code: MessageErrorBadPayload, Message: "expected {values:[v]}"}
		}
		b, ok := values[0].(bool)
		if !ok {
			return Reply{Code: MessageErrorBadPayload, Message: "value must be a boolean"}
		}
		r.Ctl.SetUseMonarch(b)
		return Reply{Code: Success}
	}
	return Reply{Code: MessageErrorInvalidMethod}
}

func (r *Router) daqStatus(req Request) Reply {
	if req.Kind != KindGet {
		return Reply{Code: MessageErrorInvalidMethod}
	}
	status := r.Ctl.Status()
	return Reply{Code: Success, Payload: map[string]interface{}{
		"server": map[string]interface{}{
			"status":       status.String(),
			"status-value": int(status),
		},
	}}
}

func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func asStringSlice(v interface{}) ([]string, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
