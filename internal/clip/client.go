package clip

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerrad567/huelink-core/internal/infrastructure/config"
	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
)

// appKeyHeader carries the per-installation key on every v2 call.
const appKeyHeader = "hue-application-key"

// Client talks to the bridge's REST surface: the version probe, the
// full resource listing, the event stream, and command dispatch.
//
// The bridge serves a self-signed certificate on the LAN, so
// certificate verification is skipped; trust is the local network
// segment, same as the pairing model.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	baseURL string
	appKey  string
	log     *logging.Logger

	// http carries request/response calls under a timeout. stream has
	// no timeout; the event stream holds its connection open for hours.
	http   *http.Client
	stream *http.Client
}

// NewClient creates a bridge client from configuration.
//
// Parameters:
//   - cfg: Bridge address, application key, and timeouts
//   - log: Logger for command-dispatch failures
//
// Returns:
//   - *Client: Ready client; no connection is made yet
func NewClient(cfg config.BridgeConfig, log *logging.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // LAN-local bridge, self-signed cert
		},
	}
	return &Client{
		baseURL: "https://" + strings.TrimSuffix(cfg.Address, "/"),
		appKey:  cfg.ApplicationKey,
		log:     log,
		http: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.HTTPTimeout) * time.Second,
		},
		stream: &http.Client{
			Transport: transport,
		},
	}
}

// GetConfig probes the bridge's configuration endpoint. This is the
// only unauthenticated call; it exists to read the software version
// before anything else is attempted.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - *BridgeInfo: Name, id, and version fields
//   - error: Transport, status, or decode failure
func (c *Client) GetConfig(ctx context.Context) (*BridgeInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, fmt.Errorf("building config request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting bridge config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET /api/config returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var info BridgeInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding bridge config: %w", err)
	}
	return &info, nil
}

// ListResources fetches the complete resource listing.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []map[string]any: Every resource payload the bridge holds
//   - error: Transport, status, envelope, or decode failure
func (c *Client) ListResources(ctx context.Context) ([]map[string]any, error) {
	env, err := c.getEnvelope(ctx, "/clip/v2/resource")
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetResource fetches one resource by kind and id.
func (c *Client) GetResource(ctx context.Context, kind, id string) (map[string]any, error) {
	env, err := c.getEnvelope(ctx, fmt.Sprintf("/clip/v2/resource/%s/%s", kind, id))
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: empty data for %s/%s", ErrBridgeError, kind, id)
	}
	return env.Data[0], nil
}

// Put dispatches a command payload to a resource path, fire-and-forget.
// Failures are logged, never returned: the bridge applies commands
// asynchronously and the mirror learns the outcome from the event
// stream, not from the PUT response.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - path: Resource command path (/clip/v2/resource/{kind}/{id})
//   - body: Command JSON body
func (c *Client) Put(ctx context.Context, path string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Error("encoding command body", "path", path, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("building command request", "path", path, "error", err)
		return
	}
	req.Header.Set(appKeyHeader, c.appKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("dispatching command", "path", path, "error", err)
		return
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("command rejected", "path", path, "status", resp.StatusCode)
		return
	}
	c.log.Debug("command dispatched", "path", path)
}

// OpenStream opens the long-lived event feed. The caller owns the
// returned body and must close it; the reported content type selects
// the wire framing.
//
// Parameters:
//   - ctx: Context governing the whole stream lifetime
//
// Returns:
//   - io.ReadCloser: The open stream body
//   - string: Response Content-Type, used as the framing probe
//   - error: Transport or status failure
func (c *Client) OpenStream(ctx context.Context) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/eventstream/clip/v2", nil)
	if err != nil {
		return nil, "", fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set(appKeyHeader, c.appKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("opening event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: GET /eventstream/clip/v2 returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// getEnvelope performs an authenticated GET and unwraps the v2
// response envelope.
func (c *Client) getEnvelope(ctx context.Context, path string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set(appKeyHeader, c.appKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response for %s: %w", path, err)
	}
	if len(env.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBridgeError, env.Errors[0].Description)
	}
	return &env, nil
}
