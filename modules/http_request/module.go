package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/runner"
)

const maxErrorBody = 512

// Module implements the runner.Module interface for this package.
type Module struct {
	// Client performs the requests. Defaults to a client with a 30s timeout.
	Client *http.Client
}

// Input defines the params of an http_request node.
type Input struct {
	URL     string            `json:"url" validate:"required,http_url"`
	Method  string            `json:"method" validate:"omitempty,oneof=GET POST PUT PATCH DELETE HEAD"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

var defaultClient = &http.Client{Timeout: 30 * time.Second}

// Run performs the request. Any status outside 2xx fails the node.
func (m *Module) Run(ctx context.Context, node graph.Node) error {
	var input Input
	if err := runner.DecodeParams(node, &input); err != nil {
		return err
	}
	if input.Method == "" {
		input.Method = http.MethodGet
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request.", "method", input.Method, "url", input.URL)

	client := m.Client
	if client == nil {
		client = defaultClient
	}

	var body io.Reader
	if input.Body != "" {
		body = strings.NewReader(input.Body)
	}
	req, err := http.NewRequestWithContext(ctx, input.Method, input.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range input.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response.", "status", resp.Status)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		return fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *runner.Registry) {
	r.Register(catalog.HTTPRequest, m)
}
