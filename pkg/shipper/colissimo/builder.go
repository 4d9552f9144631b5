package colissimo

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/tournevent/colissimo/pkg/shipper"
)

// Product codes.
const (
	// ProductDOM is Colissimo France and International without signature.
	ProductDOM = "DOM"
	// ProductDOS is Colissimo France and International with signature.
	ProductDOS = "DOS"
	// ProductBPR is Colissimo pickup in post office.
	ProductBPR = "BPR"
)

// DefaultWeight is sent when no weight is known. The carrier weighs every
// parcel itself, so the value is a placeholder.
const DefaultWeight = 0.1

const eoriFieldKey = "EORI"

// Policy holds the carrier rules that depend on the destination country.
type Policy struct {
	// SignatureCountries always ship with signature (DOS).
	SignatureCountries []string
	// CustomsCountries always require a customs declaration.
	CustomsCountries []string
}

// DefaultPolicy returns the current carrier rules.
func DefaultPolicy() Policy {
	return Policy{
		SignatureCountries: []string{"DE", "IT", "ES", "GB", "LU", "NL", "DK", "AT", "SE"},
		CustomsCountries:   []string{"CH", "NO", "US", "GB"},
	}
}

// ProductCode derives the carrier product code of a shipment.
func (p Policy) ProductCode(s *shipper.ShipmentRequest) string {
	if code := strings.TrimSpace(s.ProductCode); code != "" {
		return code
	}

	country := normalizeCountry(s.DestinationCountry)
	switch {
	case containsCountry(p.SignatureCountries, country):
		return ProductDOS
	case strings.TrimSpace(s.PickupLocationID) != "" && country == "FR":
		if pickupType := strings.TrimSpace(s.PickupType); pickupType != "" {
			return pickupType
		}
		return ProductBPR
	case s.SignatureRequired:
		return ProductDOS
	default:
		return ProductDOM
	}
}

// RequiresCustoms reports whether a customs declaration must be sent.
func (p Policy) RequiresCustoms(req *shipper.LabelRequest) bool {
	if req.Customs != nil && len(req.Customs.Articles) > 0 {
		return true
	}
	return containsCountry(p.CustomsCountries, normalizeCountry(req.Shipment.DestinationCountry))
}

// Builder constructs generateLabel payloads. It performs no I/O.
type Builder struct {
	contractNumber string
	password       string
	policy         Policy
	now            func() time.Time
}

// NewBuilder creates a payload builder.
func NewBuilder(contractNumber, password string, policy Policy) *Builder {
	return &Builder{
		contractNumber: contractNumber,
		password:       password,
		policy:         policy,
		now:            time.Now,
	}
}

// WithClock sets the clock used for the default deposit date.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates req and returns its payload and whether a customs
// declaration is part of it.
func (b *Builder) Build(req *shipper.LabelRequest) (*LabelPayload, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	s := req.Shipment
	requiresCustoms := b.policy.RequiresCustoms(req)

	depositDate := s.DepositDate
	if depositDate.IsZero() {
		depositDate = b.now()
	}

	payload := &LabelPayload{
		ContractNumber: b.contractNumber,
		Password:       b.password,
		OutputFormat: OutputFormat{
			X:                  0,
			Y:                  0,
			OutputPrintingType: string(s.OutputFormat.OrDefault()),
		},
		Letter: Letter{
			Service: Service{
				CommercialName:   strings.TrimSpace(s.CommercialName),
				ProductCode:      b.policy.ProductCode(&s),
				DepositDate:      depositDate.Format(time.DateOnly),
				TotalAmount:      toCents(s.ShippingFee),
				ReturnTypeChoice: strings.TrimSpace(s.ReturnTypeChoice),
				OrderNumber:      strings.TrimSpace(s.OrderID),
			},
			Parcel: Parcel{
				Weight:           selectWeight(req, requiresCustoms),
				PickupLocationID: strings.TrimSpace(s.PickupLocationID),
				InsuranceValue:   toCents(s.InsuranceValue),
			},
			Sender: Sender{
				SenderParcelRef: strings.TrimSpace(s.SenderRef),
				Address:         formatAddress(req.Sender),
			},
			Addressee: Addressee{
				AddresseeParcelRef: strings.TrimSpace(s.AddresseeRef),
				Address:            formatAddress(req.Addressee),
			},
		},
	}

	if requiresCustoms {
		payload.Letter.CustomsDeclarations = formatCustoms(req.Customs)
		if req.Customs != nil {
			if eori := strings.TrimSpace(req.Customs.EORI); eori != "" {
				payload.Fields = &CustomFields{
					CustomField: []CustomField{{Key: eoriFieldKey, Value: eori}},
				}
			}
		}
	}

	return payload, requiresCustoms, nil
}

// ============================================================================
// Formatting helpers
// ============================================================================

// selectWeight returns the declared customs weight for customs shipments,
// otherwise the caller weight. DefaultWeight fills in when neither rounds to
// a positive value.
func selectWeight(req *shipper.LabelRequest, requiresCustoms bool) float64 {
	if requiresCustoms {
		if w := round2(req.Customs.DeclaredWeight()); w > 0 {
			return w
		}
	}
	if w := round2(req.Shipment.Weight); w > 0 {
		return w
	}
	return DefaultWeight
}

func formatAddress(a shipper.PartyAddress) Address {
	return Address{
		CompanyName:  strings.TrimSpace(a.CompanyName),
		LastName:     strings.TrimSpace(a.LastName),
		FirstName:    strings.TrimSpace(a.FirstName),
		Line0:        strings.TrimSpace(a.Line0),
		Line1:        strings.TrimSpace(a.Line1),
		Line2:        strings.TrimSpace(a.Line2),
		Line3:        strings.TrimSpace(a.Line3),
		CountryCode:  normalizeCountry(a.CountryCode),
		City:         strings.TrimSpace(a.City),
		ZipCode:      strings.TrimSpace(a.PostalCode),
		PhoneNumber:  strings.TrimSpace(a.Phone),
		MobileNumber: strings.TrimSpace(a.Mobile),
		DoorCode1:    strings.TrimSpace(a.DoorCode1),
		DoorCode2:    strings.TrimSpace(a.DoorCode2),
		Email:        strings.TrimSpace(a.Email),
		Intercom:     strings.TrimSpace(a.Intercom),
	}
}

func formatCustoms(d *shipper.CustomsDeclaration) *CustomsDeclarations {
	decl := &CustomsDeclarations{
		IncludeCustomsDeclarations: 1,
		Contents: Contents{
			Category: Category{Value: int(shipper.CustomsCommercial)},
		},
	}
	if d == nil {
		return decl
	}

	decl.ImportersReference = strings.TrimSpace(d.VATReference)
	if d.Category != 0 {
		decl.Contents.Category.Value = int(d.Category)
	}
	for _, a := range d.Articles {
		decl.Contents.Article = append(decl.Contents.Article, Article{
			Description:   strings.TrimSpace(a.Description),
			Quantity:      a.Quantity,
			Weight:        round2(a.Weight),
			Value:         round2(a.Value),
			OriginCountry: normalizeCountry(a.OriginCountry),
			Currency:      strings.ToUpper(strings.TrimSpace(a.Currency)),
			HSCode:        strings.TrimSpace(a.HSCode),
		})
	}
	return decl
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// containsCountry reports whether code is in codes. Entries are trimmed and
// compared case-insensitively.
func containsCountry(codes []string, code string) bool {
	if code == "" {
		return false
	}
	return slices.ContainsFunc(codes, func(c string) bool {
		return normalizeCountry(c) == code
	})
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
