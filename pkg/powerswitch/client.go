package powerswitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Environment variables read by FromEnv.
const (
	EnvHost     = "POWER_SWITCH_HOST"
	EnvUsername = "POWER_SWITCH_USERNAME"
	EnvPassword = "POWER_SWITCH_PASSWORD" //nolint:gosec // env var name, not a secret
	EnvUseHTTPS = "POWER_SWITCH_USE_HTTPS"
)

// DefaultUsername is used when no username is configured.
const DefaultUsername = "admin"

// Config holds the connection settings for a Power Switch Pro device.
type Config struct {
	Host     string
	Username string // defaults to DefaultUsername
	Password string
	UseHTTPS bool

	// HTTPClient overrides the transport, mainly for tests. When set, digest
	// authentication is layered on top of its transport.
	HTTPClient *http.Client
}

// Client is an authenticated session with one device. A Client is safe for
// concurrent use; the zero value is not usable, construct it with New or
// FromEnv.
type Client struct {
	base *url.URL
	http *http.Client

	Outlets  *OutletService
	Meters   *MeterService
	AutoPing *AutoPingService
}

// New creates a Client from cfg. Host and Password are mandatory; everything
// else has defaults. No network traffic happens here.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" || cfg.Password == "" {
		return nil, fmt.Errorf("powerswitch: host and password must be set")
	}

	username := cfg.Username
	if username == "" {
		username = DefaultUsername
	}

	scheme := "http"
	if cfg.UseHTTPS {
		scheme = "https"
	}

	base, err := url.Parse(scheme + "://" + cfg.Host + "/restapi/")
	if err != nil {
		return nil, fmt.Errorf("powerswitch: parse host %q: %w", cfg.Host, err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}

	// Wrap the transport so every request carries digest credentials.
	authed := *hc
	authed.Transport = newDigestTransport(username, cfg.Password, hc.Transport)

	c := &Client{base: base, http: &authed}
	c.Outlets = &OutletService{client: c}
	c.Meters = &MeterService{client: c}
	c.AutoPing = &AutoPingService{client: c}

	return c, nil
}

// FromEnv builds a Client from the POWER_SWITCH_* environment variables.
// Missing host or password is a configuration error reported before any
// network call is attempted.
func FromEnv() (*Client, error) {
	host := os.Getenv(EnvHost)
	password := os.Getenv(EnvPassword)
	if host == "" || password == "" {
		return nil, fmt.Errorf("powerswitch: %s and %s environment variables must be set", EnvHost, EnvPassword)
	}

	return New(Config{
		Host:     host,
		Username: os.Getenv(EnvUsername),
		Password: password,
		UseHTTPS: strings.EqualFold(os.Getenv(EnvUseHTTPS), "true"),
	})
}

// Verify probes the device by fetching its config tree. It returns nil when
// the device is reachable and the credentials are accepted.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.Info(ctx)
	return err
}

// Info returns the device's identity block (serial number, firmware version,
// hostname and friends) exactly as the device reports it.
func (c *Client) Info(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := c.get(ctx, "config/", &info); err != nil {
		return nil, err
	}
	return info, nil
}

// get issues a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// put issues a PUT with a JSON body. The device treats PUT as "replace value".
func (c *Client) put(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// post issues a POST with a JSON body, decoding any JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// patch issues a PATCH with a JSON body of only the fields to change.
func (c *Client) patch(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// delete issues a DELETE.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	// url.JoinPath escapes the matrix-parameter semicolons the bulk
	// endpoints rely on, so splice the path manually.
	u := *c.base
	u.Path = c.base.Path + path

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("powerswitch: encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("powerswitch: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		// The REST layer rejects mutating requests without this header.
		req.Header.Set("X-CSRF", "x")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("%s %s: %v", method, path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: readErrorMessage(resp, method, path)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s %s: decode response: %v", method, path, err)}
	}

	return nil
}

// readErrorMessage extracts a human-readable message from an error response.
// The device answers either with {"error": "..."} or a plain-text line.
func readErrorMessage(resp *http.Response, method, path string) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return fmt.Sprintf("%s %s: %s", method, path, http.StatusText(resp.StatusCode))
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}

	return strings.TrimSpace(string(data))
}
