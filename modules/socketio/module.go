package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/runner"
)

const defaultTimeout = 10 * time.Second

// Module implements the runner.Module interface for this package.
type Module struct{}

// Input defines the params of a socketio node. With OnEvent empty the node
// succeeds as soon as EmitEvent has been sent.
type Input struct {
	URL                string         `json:"url" validate:"required,url"`
	Namespace          string         `json:"namespace"`
	EmitEvent          string         `json:"emit_event" validate:"required_without=OnEvent"`
	EmitData           map[string]any `json:"emit_data"`
	OnEvent            string         `json:"on_event"`
	Timeout            string         `json:"timeout"`
	InsecureSkipVerify bool           `json:"insecure_skip_verify"`
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	err error
}

// Run connects, emits and optionally waits for the reply event.
func (m *Module) Run(ctx context.Context, node graph.Node) error {
	var input Input
	if err := runner.DecodeParams(node, &input); err != nil {
		return err
	}
	if input.Namespace == "" {
		input.Namespace = "/"
	}

	logger := ctxlog.FromContext(ctx).With("runner", catalog.SocketIO, "url", input.URL, "onEvent", input.OnEvent, "emitEvent", input.EmitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	timeout := defaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default.", "inputTimeout", input.Timeout, "default", defaultTimeout, "error", err)
		} else {
			timeout = d
		}
	}

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(res opResult) {
		select {
		case done <- res:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected.", "namespace", input.Namespace, "sid", io.Id())
		if input.EmitEvent != "" {
			jsonData, _ := json.Marshal(input.EmitData)
			logger.Info("Emitting event.", "event", input.EmitEvent, "data", string(jsonData))
			io.Emit(input.EmitEvent, input.EmitData)
		}
		if input.OnEvent == "" {
			finish(opResult{})
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("connection failed: %w", e)
			}
		}
		finish(opResult{err: err})
	})

	if input.OnEvent != "" {
		io.On(types.EventName(input.OnEvent), func(data ...any) {
			logger.Info("Received reply event.", "event", input.OnEvent, "args", len(data))
			finish(opResult{})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for event '%s'", input.OnEvent)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		return res.err
	}
}

// Register registers the runner with the registry.
func (m *Module) Register(r *runner.Registry) {
	r.Register(catalog.SocketIO, m)
}
