// Package shipper provides the models and interface of the label and
// relay-point carrier integration.
package shipper

import (
	"context"
)

// Shipper defines the operations a label carrier exposes.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "colissimo").
	Name() string

	// GenerateLabel announces a parcel to the carrier and stores the returned
	// label (and customs declaration when required).
	GenerateLabel(ctx context.Context, req *LabelRequest) (*LabelResult, error)

	// FindRelayPoints returns the pickup points closest to an address.
	FindRelayPoints(ctx context.Context, req *RelayPointRequest) ([]RelayPoint, error)
}
