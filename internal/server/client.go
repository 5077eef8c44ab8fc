package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vrcctl/vrcctl/internal/engine"
)

// Client is the typed API client the CLI commands use to talk to a running
// serve process.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets the serve process listening on addr (host:port).
func NewClient(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Launch(ctx context.Context, profile engine.Profile) (engine.LaunchResult, error) {
	var result engine.LaunchResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/profiles/%d/launch", profile), &result)
	return result, err
}

func (c *Client) Stop(ctx context.Context, profile engine.Profile) (engine.StopResult, error) {
	var result engine.StopResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/profiles/%d/stop", profile), &result)
	return result, err
}

func (c *Client) ListBound(ctx context.Context) (map[engine.Profile]int32, error) {
	var result ProfilesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/profiles", &result); err != nil {
		return nil, err
	}
	return result.Profiles, nil
}

func (c *Client) Processes(ctx context.Context) ([]string, error) {
	var result ProcessesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/processes", &result); err != nil {
		return nil, err
	}
	return result.Lines, nil
}

func (c *Client) IsLauncherRunning(ctx context.Context) (bool, error) {
	var result LauncherResponse
	if err := c.do(ctx, http.MethodGet, "/v1/launcher", &result); err != nil {
		return false, err
	}
	return result.Running, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is %q running? request failed: %w", "vrcctl serve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
