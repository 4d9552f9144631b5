package shipper

import (
	"fmt"
	"strings"
	"time"
)

// OutputFormat is the printing format requested for the label.
type OutputFormat string

const (
	FormatPDFA4       OutputFormat = "PDF_A4_300dpi"
	FormatPDF10x15    OutputFormat = "PDF_10x15_300dpi"
	FormatZPL10x15300 OutputFormat = "ZPL_10x15_300dpi"
	FormatZPL10x15203 OutputFormat = "ZPL_10x15_203dpi"
	FormatDPL10x15300 OutputFormat = "DPL_10x15_300dpi"
	FormatDPL10x15203 OutputFormat = "DPL_10x15_203dpi"

	// DefaultOutputFormat is used when no format is requested.
	DefaultOutputFormat = FormatPDF10x15
)

// FileExtension returns the extension of the document produced for the format.
// Unrecognized formats fall back to "pdf".
func (f OutputFormat) FileExtension() string {
	switch f {
	case FormatZPL10x15300, FormatZPL10x15203:
		return "zpl"
	case FormatDPL10x15300, FormatDPL10x15203:
		return "dpl"
	default:
		return "pdf"
	}
}

// OrDefault returns the format, or DefaultOutputFormat when empty.
func (f OutputFormat) OrDefault() OutputFormat {
	if f == "" {
		return DefaultOutputFormat
	}
	return f
}

// CustomsCategory is the nature of a shipment declared to customs.
type CustomsCategory int

const (
	CustomsGift             CustomsCategory = 1
	CustomsCommercialSample CustomsCategory = 2
	CustomsCommercial       CustomsCategory = 3
	CustomsDocument         CustomsCategory = 4
	CustomsOther            CustomsCategory = 5
	CustomsReturnedGoods    CustomsCategory = 6
)

// Valid reports whether the category is one of the carrier's codes.
func (c CustomsCategory) Valid() bool {
	return c >= CustomsGift && c <= CustomsReturnedGoods
}

// PartyAddress is the postal identity of a sender or addressee.
type PartyAddress struct {
	CompanyName string
	LastName    string
	FirstName   string
	Line0       string // Floor, hallway, staircase, apartment
	Line1       string // Entrance, building, residence
	Line2       string // Street number and name
	Line3       string // Locality or other mention
	PostalCode  string
	City        string
	CountryCode string // ISO 3166-1 alpha-2
	Phone       string
	Mobile      string
	DoorCode1   string
	DoorCode2   string
	Email       string
	Intercom    string
}

// ShipmentRequest carries the parcel and service options of a label request.
type ShipmentRequest struct {
	DestinationCountry string
	ShippingFee        float64 // Currency units, e.g. 10.50
	Weight             float64 // kg, 0 when unknown
	OutputFormat       OutputFormat
	PickupLocationID   string
	PickupType         string // e.g. "BPR", "A2P"
	InsuranceValue     float64
	OrderID            string
	SenderRef          string
	AddresseeRef       string
	SignatureRequired  bool
	ProductCode        string // Overrides the derived product code
	CommercialName     string
	ReturnTypeChoice   string
	DepositDate        time.Time // Zero means today
}

// CustomsLineItem is one article of a customs declaration.
type CustomsLineItem struct {
	Description   string
	Quantity      int
	Weight        float64 // Unit weight, kg
	Value         float64 // Unit value
	OriginCountry string
	Currency      string
	HSCode        string
}

// CustomsDeclaration is the CN23 content sent for cross-border parcels.
type CustomsDeclaration struct {
	Category     CustomsCategory
	VATReference string
	EORI         string
	TotalWeight  float64 // kg, computed from articles when 0
	Articles     []CustomsLineItem
}

// DeclaredWeight returns the total weight declared to customs.
func (d *CustomsDeclaration) DeclaredWeight() float64 {
	if d == nil {
		return 0
	}
	if d.TotalWeight > 0 {
		return d.TotalWeight
	}
	var total float64
	for _, a := range d.Articles {
		total += float64(a.Quantity) * a.Weight
	}
	return total
}

// LabelRequest is the request for generating a shipping label.
type LabelRequest struct {
	Filename  string // Base name of the stored documents
	Shipment  ShipmentRequest
	Sender    PartyAddress
	Addressee PartyAddress
	Customs   *CustomsDeclaration
}

// Validate checks the invariants of the request.
func (r *LabelRequest) Validate() error {
	s := r.Shipment
	if strings.TrimSpace(s.DestinationCountry) == "" {
		return fmt.Errorf("%w: destination country is required", ErrInvalidShipment)
	}
	if s.ShippingFee < 0 {
		return fmt.Errorf("%w: shipping fee must not be negative", ErrInvalidShipment)
	}
	if s.Weight < 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidShipment)
	}
	if s.InsuranceValue < 0 {
		return fmt.Errorf("%w: insurance value must not be negative", ErrInvalidShipment)
	}
	if r.Customs != nil {
		if r.Customs.Category != 0 && !r.Customs.Category.Valid() {
			return fmt.Errorf("%w: unknown customs category %d", ErrInvalidShipment, r.Customs.Category)
		}
		for i, a := range r.Customs.Articles {
			if a.Quantity < 0 || a.Weight < 0 || a.Value < 0 {
				return fmt.Errorf("%w: customs article %d has negative values", ErrInvalidShipment, i)
			}
		}
	}
	return nil
}

// LabelResult is the outcome of a successful label generation.
type LabelResult struct {
	ParcelNumber    string
	LabelLocation   string
	CustomsLocation string // Empty when no customs declaration was required
}

// RelayPointRequest is the request for finding relay points near an address.
type RelayPointRequest struct {
	Address      string
	PostalCode   string
	City         string
	CountryCode  string
	ShippingDate time.Time // Estimated deposit date, zero when unknown
	Weight       int       // Grams, 0 when unknown
}

// BusinessHours holds the free-text opening schedule of each weekday.
type BusinessHours struct {
	Monday    string
	Tuesday   string
	Wednesday string
	Thursday  string
	Friday    string
	Saturday  string
	Sunday    string
}

// RelayPoint is a pickup or drop-off location.
type RelayPoint struct {
	ID            string
	Name          string
	Type          string
	Address       string
	PostalCode    string
	City          string
	Country       string
	CountryCode   string
	Latitude      float64
	Longitude     float64
	Distance      int // Meters
	MaxWeight     int
	Parking       bool
	BusinessHours BusinessHours
}
