package vrfctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edvin/routemanager/internal/model"
)

const apiPrefix = "/api/v1"

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// APIError is returned for any response with status >= 400.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status of the *APIError in err's chain, or 0
// for transport failures.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Delete sends an optional JSON body; prefix removal needs one.
func (c *Client) Delete(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(respBody),
	}

	if resp.StatusCode >= 400 {
		return r, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	return r, nil
}

// errorMessage pulls "error" out of a JSON error body, falling back to the
// raw text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// ---------- typed helpers ----------

// Health checks that the API answers on its root path.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Get(ctx, "/")
	return err
}

func (c *Client) CreateVRF(ctx context.Context, name, namespace, rd string) (*model.VRFRecord, error) {
	resp, err := c.Post(ctx, apiPrefix+"/vrfs/", map[string]string{
		"name":      name,
		"namespace": namespace,
		"rd":        rd,
	})
	if err != nil {
		return nil, err
	}
	var rec model.VRFRecord
	if err := json.Unmarshal(resp.Body, &rec); err != nil {
		return nil, fmt.Errorf("parse vrf: %w", err)
	}
	return &rec, nil
}

func (c *Client) GetVRF(ctx context.Context, namespace, name string) (*model.VRFRecord, error) {
	resp, err := c.Get(ctx, vrfPath(namespace, name))
	if err != nil {
		return nil, err
	}
	var rec model.VRFRecord
	if err := json.Unmarshal(resp.Body, &rec); err != nil {
		return nil, fmt.Errorf("parse vrf: %w", err)
	}
	return &rec, nil
}

func (c *Client) ListVRFs(ctx context.Context, namespace string) ([]model.VRFRecord, error) {
	path := apiPrefix + "/vrfs/"
	if namespace != "" {
		path += "?namespace=" + url.QueryEscape(namespace)
	}
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var recs []model.VRFRecord
	if err := json.Unmarshal(resp.Body, &recs); err != nil {
		return nil, fmt.Errorf("parse vrf list: %w", err)
	}
	return recs, nil
}

func (c *Client) DeleteVRF(ctx context.Context, namespace, name string) error {
	_, err := c.Delete(ctx, vrfPath(namespace, name), nil)
	return err
}

// AddRouteTarget attaches rt in the given direction ("import" or "export").
func (c *Client) AddRouteTarget(ctx context.Context, namespace, name, direction, rt string) error {
	_, err := c.Post(ctx, vrfPath(namespace, name)+"/targets/"+direction, map[string]string{"rt": rt})
	return err
}

func (c *Client) RemoveRouteTarget(ctx context.Context, namespace, name, direction, rt string) error {
	_, err := c.Delete(ctx, vrfPath(namespace, name)+"/targets/"+direction+"/"+url.PathEscape(rt), nil)
	return err
}

func (c *Client) AddPrefix(ctx context.Context, namespace, name, cidr string) error {
	_, err := c.Post(ctx, vrfPath(namespace, name)+"/prefixes", map[string]string{"cidr": cidr})
	return err
}

func (c *Client) RemovePrefix(ctx context.Context, namespace, name, cidr string) error {
	_, err := c.Delete(ctx, vrfPath(namespace, name)+"/prefixes", map[string]string{"cidr": cidr})
	return err
}

func vrfPath(namespace, name string) string {
	return apiPrefix + "/vrfs/" + url.PathEscape(namespace) + "/" + url.PathEscape(name)
}
