// Package colissimo provides integration with the Colissimo label and relay
// point web services.
package colissimo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/colissimo/pkg/shipper"
	"github.com/tournevent/colissimo/pkg/storage"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName = "colissimo"

	// DefaultCustomsSuffix names the customs document <filename>-customs.pdf.
	DefaultCustomsSuffix = "customs"

	shippingDateLayout = "02/01/2006"
)

// Config holds Colissimo configuration.
type Config struct {
	ContractNumber string
	Password       string
	LabelURL       string
	RelayURL       string
	Timeout        time.Duration
	UseMock        bool

	// Policy holds the per-country rules. The zero value means DefaultPolicy.
	Policy Policy

	// CustomsSuffix is appended to the filename of the customs document.
	CustomsSuffix string

	// SkipDocumentsOnError disables document writes when the carrier answer is
	// an error. By default the documents present in the response are written
	// before the error is returned.
	SkipDocumentsOnError bool
}

// Client is the Colissimo shipper client.
type Client struct {
	config    Config
	apiClient APIClient
	builder   *Builder
	store     storage.Store
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Colissimo client writing documents to store.
func New(cfg Config, store storage.Store, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			LabelURL: cfg.LabelURL,
			RelayURL: cfg.RelayURL,
			Timeout:  cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, store, logger, tracer)
}

// NewWithAPIClient creates a new Colissimo client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, store storage.Store, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.Policy.SignatureCountries == nil && cfg.Policy.CustomsCountries == nil {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.CustomsSuffix == "" {
		cfg.CustomsSuffix = DefaultCustomsSuffix
	}
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/colissimo/pkg/shipper/colissimo")
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		builder:   NewBuilder(cfg.ContractNumber, cfg.Password, cfg.Policy),
		store:     store,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GenerateLabel announces the parcel and stores its label, plus the customs
// declaration when one is required.
func (c *Client) GenerateLabel(ctx context.Context, req *shipper.LabelRequest) (*shipper.LabelResult, error) {
	ctx, span := c.tracer.Start(ctx, "colissimo.GenerateLabel")
	defer span.End()

	payload, requiresCustoms, err := c.builder.Build(req)
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(
		attribute.String("colissimo.destination", req.Shipment.DestinationCountry),
		attribute.String("colissimo.product_code", payload.Letter.Service.ProductCode),
		attribute.Bool("colissimo.customs", requiresCustoms),
	)

	log := c.logger.Ctx(ctx)
	log.Info("Generating Colissimo label",
		zap.String("destination", req.Shipment.DestinationCountry),
		zap.String("product_code", payload.Letter.Service.ProductCode),
		zap.String("output_format", payload.OutputFormat.OutputPrintingType),
		zap.Bool("customs", requiresCustoms),
	)

	raw, err := c.apiClient.GenerateLabel(ctx, payload)
	if err != nil {
		log.Error("Colissimo API error", zap.Error(err))
		return nil, fail(span, shipper.NewCarrierError(carrierName, shipper.CodeTransport, "generateLabel request failed").
			WithCause(err).
			WithRetryable(true))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", raw.StatusCode))

	resp := ParseLabelResponse(raw.StatusCode, raw.Body)
	checkErr := resp.Check(requiresCustoms)

	result := &shipper.LabelResult{ParcelNumber: resp.ParcelNumber}
	if checkErr == nil || !c.config.SkipDocumentsOnError {
		if err := c.storeDocuments(ctx, req, resp, requiresCustoms, result); err != nil {
			if checkErr == nil {
				log.Error("Failed to store Colissimo documents", zap.Error(err))
				return nil, fail(span, err)
			}
			log.Warn("Failed to store documents of rejected label", zap.Error(err))
		}
	}

	if checkErr != nil {
		log.Error("Colissimo label request failed",
			zap.Int("status", raw.StatusCode),
			zap.Error(checkErr),
		)
		return nil, fail(span, checkErr)
	}

	log.Info("Colissimo label generated",
		zap.String("parcel_number", result.ParcelNumber),
		zap.String("label", result.LabelLocation),
		zap.String("customs", result.CustomsLocation),
	)
	return result, nil
}

// FindRelayPoints returns the relay points closest to the requested address.
func (c *Client) FindRelayPoints(ctx context.Context, req *shipper.RelayPointRequest) ([]shipper.RelayPoint, error) {
	ctx, span := c.tracer.Start(ctx, "colissimo.FindRelayPoints")
	defer span.End()

	log := c.logger.Ctx(ctx)
	log.Info("Finding Colissimo relay points",
		zap.String("postal_code", req.PostalCode),
		zap.String("city", req.City),
		zap.String("country", req.CountryCode),
	)

	q := &RelayPointQuery{
		AccountNumber: c.config.ContractNumber,
		Password:      c.config.Password,
		Address:       strings.TrimSpace(req.Address),
		ZipCode:       strings.TrimSpace(req.PostalCode),
		City:          strings.TrimSpace(req.City),
		CountryCode:   normalizeCountry(req.CountryCode),
		Weight:        req.Weight,
	}
	if !req.ShippingDate.IsZero() {
		q.ShippingDate = req.ShippingDate.Format(shippingDateLayout)
	}

	raw, err := c.apiClient.FindRelayPoints(ctx, q)
	if err != nil {
		log.Error("Colissimo API error", zap.Error(err))
		return nil, fail(span, shipper.NewCarrierError(carrierName, shipper.CodeTransport, "relay point request failed").
			WithCause(err).
			WithRetryable(true))
	}

	if raw.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw.Body))
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d %s", raw.StatusCode, http.StatusText(raw.StatusCode))
		}
		return nil, fail(span, shipper.NewCarrierError(carrierName, shipper.CodeRelayLookup, msg).
			WithStatusCode(raw.StatusCode).
			WithRetryable(raw.StatusCode == http.StatusServiceUnavailable))
	}

	parsed, err := ParseRelayPoints(raw.Body)
	if err != nil {
		return nil, fail(span, shipper.NewCarrierError(carrierName, shipper.CodeMalformedResponse, "invalid relay point response").
			WithCause(err).
			WithStatusCode(raw.StatusCode))
	}
	if err := parsed.Err(); err != nil {
		log.Error("Colissimo relay lookup rejected", zap.Error(err))
		return nil, fail(span, err)
	}

	points := parsed.Points
	if points == nil {
		points = []shipper.RelayPoint{}
	}
	span.SetAttributes(attribute.Int("colissimo.relay_points", len(points)))
	return points, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (c *Client) storeDocuments(ctx context.Context, req *shipper.LabelRequest, resp *LabelResponse, requiresCustoms bool, result *shipper.LabelResult) error {
	base := strings.TrimSpace(req.Filename)
	if base == "" {
		base = uuid.NewString()
	}

	if label := resp.Label(); len(label) > 0 {
		name := base + "." + req.Shipment.OutputFormat.FileExtension()
		loc, err := c.store.Put(ctx, name, label)
		if err != nil {
			return fmt.Errorf("storing label: %w", err)
		}
		result.LabelLocation = loc
	}

	if !requiresCustoms {
		return nil
	}
	if customs := resp.Customs(); len(customs) > 0 {
		name := base + "-" + c.config.CustomsSuffix + ".pdf"
		loc, err := c.store.Put(ctx, name, customs)
		if err != nil {
			return fmt.Errorf("storing customs declaration: %w", err)
		}
		result.CustomsLocation = loc
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

var _ shipper.Shipper = (*Client)(nil)
