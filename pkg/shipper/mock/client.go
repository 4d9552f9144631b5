// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tournevent/colissimo/pkg/shipper"
)

// Client is a mock shipper for testing. It records the requests it receives.
type Client struct {
	name string

	OnGenerateLabel   func(ctx context.Context, req *shipper.LabelRequest) (*shipper.LabelResult, error)
	OnFindRelayPoints func(ctx context.Context, req *shipper.RelayPointRequest) ([]shipper.RelayPoint, error)

	mu            sync.Mutex
	labelRequests []*shipper.LabelRequest
	relayRequests []*shipper.RelayPointRequest
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GenerateLabel returns a mock label result.
func (c *Client) GenerateLabel(ctx context.Context, req *shipper.LabelRequest) (*shipper.LabelResult, error) {
	c.mu.Lock()
	c.labelRequests = append(c.labelRequests, req)
	c.mu.Unlock()

	if c.OnGenerateLabel != nil {
		return c.OnGenerateLabel(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	base := req.Filename
	if base == "" {
		base = fmt.Sprintf("%s-%d", c.name, time.Now().UnixNano())
	}

	result := &shipper.LabelResult{
		ParcelNumber:  fmt.Sprintf("6A%011d", time.Now().UnixNano()%100000000000),
		LabelLocation: fmt.Sprintf("memory://%s.%s", base, req.Shipment.OutputFormat.FileExtension()),
	}
	if req.Customs != nil {
		result.CustomsLocation = fmt.Sprintf("memory://%s-customs.pdf", base)
	}
	return result, nil
}

// FindRelayPoints returns a single mock relay point in the requested city.
func (c *Client) FindRelayPoints(ctx context.Context, req *shipper.RelayPointRequest) ([]shipper.RelayPoint, error) {
	c.mu.Lock()
	c.relayRequests = append(c.relayRequests, req)
	c.mu.Unlock()

	if c.OnFindRelayPoints != nil {
		return c.OnFindRelayPoints(ctx, req)
	}

	return []shipper.RelayPoint{
		{
			ID:          "000001",
			Name:        fmt.Sprintf("%s relay", c.name),
			Type:        "BPR",
			Address:     "1 PLACE DE LA MAIRIE",
			PostalCode:  req.PostalCode,
			City:        strings.ToUpper(req.City),
			Country:     "FRANCE",
			CountryCode: strings.ToUpper(req.CountryCode),
			Distance:    100,
			MaxWeight:   30000,
			Parking:     true,
		},
	}, nil
}

// LabelRequests returns the label requests received so far.
func (c *Client) LabelRequests() []*shipper.LabelRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*shipper.LabelRequest(nil), c.labelRequests...)
}

// RelayRequests returns the relay point requests received so far.
func (c *Client) RelayRequests() []*shipper.RelayPointRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*shipper.RelayPointRequest(nil), c.relayRequests...)
}

var _ shipper.Shipper = (*Client)(nil)
