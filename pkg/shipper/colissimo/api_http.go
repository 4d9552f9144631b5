package colissimo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

// Default service endpoints.
const (
	DefaultLabelURL = "https://ws.colissimo.fr/sls-ws/SlsServiceWSRest/2.0"
	DefaultRelayURL = "https://ws.colissimo.fr/pointretrait-ws-cxf/PointRetraitServiceWS/2.0"
)

// Service operations.
//
// Label service: generateLabel announces a parcel and returns its documents,
// checkGenerateLabel validates a request without announcing it.
// Relay service: findRDVPointRetraitAcheminement returns the points closest to
// an address, findPointRetraitAcheminementByID returns the detail of one point.
const (
	opGenerateLabel   = "generateLabel"
	opFindRelayPoints = "findRDVPointRetraitAcheminement"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	labelURL   string
	relayURL   string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	LabelURL string
	RelayURL string
	Timeout  time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	labelURL := cfg.LabelURL
	if labelURL == "" {
		labelURL = DefaultLabelURL
	}
	relayURL := cfg.RelayURL
	if relayURL == "" {
		relayURL = DefaultRelayURL
	}

	return &HTTPAPIClient{
		labelURL: strings.TrimSuffix(labelURL, "/"),
		relayURL: strings.TrimSuffix(relayURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateLabel posts the payload as JSON. Error statuses are returned as a
// RawResponse, not as an error.
func (c *HTTPAPIClient) GenerateLabel(ctx context.Context, payload *LabelPayload) (*RawResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.labelURL + "/" + opGenerateLabel
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// FindRelayPoints issues the relay point lookup as a GET request.
func (c *HTTPAPIClient) FindRelayPoints(ctx context.Context, q *RelayPointQuery) (*RawResponse, error) {
	values, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	url := c.relayURL + "/" + opFindRelayPoints + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	return c.do(req)
}

func (c *HTTPAPIClient) do(req *http.Request) (*RawResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

var _ APIClient = (*HTTPAPIClient)(nil)
