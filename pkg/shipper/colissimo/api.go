package colissimo

import (
	"context"
)

// APIClient defines the interface for Colissimo web service operations.
// Implementations return the raw carrier response: interpreting status codes
// and bodies is left to the Client.
type APIClient interface {
	// GenerateLabel posts a label payload to the generateLabel service.
	GenerateLabel(ctx context.Context, payload *LabelPayload) (*RawResponse, error)

	// FindRelayPoints queries the findRDVPointRetraitAcheminement service.
	FindRelayPoints(ctx context.Context, query *RelayPointQuery) (*RawResponse, error)
}

// RawResponse is an HTTP exchange result as returned by the carrier.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// RelayPointQuery is the query string of a relay point lookup. Absent values
// are omitted from the request.
type RelayPointQuery struct {
	AccountNumber string `url:"accountNumber,omitempty"`
	Password      string `url:"password,omitempty"`
	Address       string `url:"address,omitempty"`
	ZipCode       string `url:"zipCode,omitempty"`
	City          string `url:"city,omitempty"`
	CountryCode   string `url:"countryCode,omitempty"`
	ShippingDate  string `url:"shippingDate,omitempty"` // dd/mm/yyyy
	Weight        int    `url:"weight,omitempty"`       // Grams
}
