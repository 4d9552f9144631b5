package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tournevent/colissimo/pkg/shipper"
)

// ============================================================================
// Request DTOs
// ============================================================================

type labelRequestDTO struct {
	Filename  string      `json:"filename"`
	Shipment  shipmentDTO `json:"shipment"`
	Sender    addressDTO  `json:"sender"`
	Addressee addressDTO  `json:"addressee"`
	Customs   *customsDTO `json:"customs,omitempty"`
}

type shipmentDTO struct {
	DestinationCountry string  `json:"destinationCountry"`
	ShippingFee        float64 `json:"shippingFee"`
	Weight             float64 `json:"weight"`
	OutputFormat       string  `json:"outputFormat"`
	PickupLocationID   string  `json:"pickupLocationId"`
	PickupType         string  `json:"pickupType"`
	InsuranceValue     float64 `json:"insuranceValue"`
	OrderID            string  `json:"orderId"`
	SenderRef          string  `json:"senderRef"`
	AddresseeRef       string  `json:"addresseeRef"`
	SignatureRequired  bool    `json:"signatureRequired"`
	ProductCode        string  `json:"productCode"`
	CommercialName     string  `json:"commercialName"`
	ReturnTypeChoice   string  `json:"returnTypeChoice"`
	DepositDate        string  `json:"depositDate"` // YYYY-MM-DD
}

type addressDTO struct {
	CompanyName string `json:"companyName"`
	LastName    string `json:"lastName"`
	FirstName   string `json:"firstName"`
	Line0       string `json:"line0"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	Line3       string `json:"line3"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
	Mobile      string `json:"mobile"`
	DoorCode1   string `json:"doorCode1"`
	DoorCode2   string `json:"doorCode2"`
	Email       string `json:"email"`
	Intercom    string `json:"intercom"`
}

type customsDTO struct {
	Category     int          `json:"category"`
	VATReference string       `json:"vatReference"`
	EORI         string       `json:"eori"`
	TotalWeight  float64      `json:"totalWeight"`
	Articles     []articleDTO `json:"articles"`
}

type articleDTO struct {
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity"`
	Weight        float64 `json:"weight"`
	Value         float64 `json:"value"`
	OriginCountry string  `json:"originCountry"`
	Currency      string  `json:"currency"`
	HSCode        string  `json:"hsCode"`
}

// DecodeLabelRequest reads a JSON label request. Article quantities are
// truncated to integers.
func DecodeLabelRequest(r io.Reader) (*shipper.LabelRequest, error) {
	var dto labelRequestDTO
	if err := json.NewDecoder(r).Decode(&dto); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", shipper.ErrInvalidShipment, err)
	}

	req := &shipper.LabelRequest{
		Filename: strings.TrimSpace(dto.Filename),
		Shipment: shipper.ShipmentRequest{
			DestinationCountry: dto.Shipment.DestinationCountry,
			ShippingFee:        dto.Shipment.ShippingFee,
			Weight:             dto.Shipment.Weight,
			OutputFormat:       shipper.OutputFormat(dto.Shipment.OutputFormat),
			PickupLocationID:   dto.Shipment.PickupLocationID,
			PickupType:         dto.Shipment.PickupType,
			InsuranceValue:     dto.Shipment.InsuranceValue,
			OrderID:            dto.Shipment.OrderID,
			SenderRef:          dto.Shipment.SenderRef,
			AddresseeRef:       dto.Shipment.AddresseeRef,
			SignatureRequired:  dto.Shipment.SignatureRequired,
			ProductCode:        dto.Shipment.ProductCode,
			CommercialName:     dto.Shipment.CommercialName,
			ReturnTypeChoice:   dto.Shipment.ReturnTypeChoice,
		},
		Sender:    dto.Sender.toShipper(),
		Addressee: dto.Addressee.toShipper(),
	}

	if d := strings.TrimSpace(dto.Shipment.DepositDate); d != "" {
		date, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid deposit date %q", shipper.ErrInvalidShipment, d)
		}
		req.Shipment.DepositDate = date
	}

	if dto.Customs != nil {
		customs := &shipper.CustomsDeclaration{
			Category:     shipper.CustomsCategory(dto.Customs.Category),
			VATReference: dto.Customs.VATReference,
			EORI:         dto.Customs.EORI,
			TotalWeight:  dto.Customs.TotalWeight,
		}
		for _, a := range dto.Customs.Articles {
			customs.Articles = append(customs.Articles, shipper.CustomsLineItem{
				Description:   a.Description,
				Quantity:      int(a.Quantity),
				Weight:        a.Weight,
				Value:         a.Value,
				OriginCountry: a.OriginCountry,
				Currency:      a.Currency,
				HSCode:        a.HSCode,
			})
		}
		req.Customs = customs
	}

	return req, nil
}

func (a addressDTO) toShipper() shipper.PartyAddress {
	return shipper.PartyAddress{
		CompanyName: a.CompanyName,
		LastName:    a.LastName,
		FirstName:   a.FirstName,
		Line0:       a.Line0,
		Line1:       a.Line1,
		Line2:       a.Line2,
		Line3:       a.Line3,
		PostalCode:  a.PostalCode,
		City:        a.City,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
		Mobile:      a.Mobile,
		DoorCode1:   a.DoorCode1,
		DoorCode2:   a.DoorCode2,
		Email:       a.Email,
		Intercom:    a.Intercom,
	}
}

// ParseRelayPointQuery reads a relay point request from query parameters:
// address, zipCode, city, countryCode, shippingDate (YYYY-MM-DD) and weight
// in grams.
func ParseRelayPointQuery(values url.Values) (*shipper.RelayPointRequest, error) {
	req := &shipper.RelayPointRequest{
		Address:     values.Get("address"),
		PostalCode:  values.Get("zipCode"),
		City:        values.Get("city"),
		CountryCode: values.Get("countryCode"),
	}
	if req.PostalCode == "" {
		return nil, fmt.Errorf("%w: zipCode is required", shipper.ErrInvalidShipment)
	}

	if d := values.Get("shippingDate"); d != "" {
		date, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid shipping date %q", shipper.ErrInvalidShipment, d)
		}
		req.ShippingDate = date
	}
	if w := values.Get("weight"); w != "" {
		weight, err := strconv.Atoi(w)
		if err != nil || weight < 0 {
			return nil, fmt.Errorf("%w: invalid weight %q", shipper.ErrInvalidShipment, w)
		}
		req.Weight = weight
	}
	return req, nil
}

// ============================================================================
// Response DTOs
// ============================================================================

type labelResultDTO struct {
	ParcelNumber    string `json:"parcelNumber"`
	LabelLocation   string `json:"labelLocation"`
	CustomsLocation string `json:"customsLocation,omitempty"`
}

type businessHoursDTO struct {
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
	Saturday  string `json:"saturday"`
	Sunday    string `json:"sunday"`
}

type relayPointDTO struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Type          string           `json:"type,omitempty"`
	Address       string           `json:"address"`
	PostalCode    string           `json:"postalCode"`
	City          string           `json:"city"`
	Country       string           `json:"country"`
	CountryCode   string           `json:"countryCode"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	Distance      int              `json:"distance"`
	MaxWeight     int              `json:"maxWeight"`
	Parking       bool             `json:"parking"`
	BusinessHours businessHoursDTO `json:"businessHours"`
}

type errorDTO struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func toLabelResultDTO(r *shipper.LabelResult) labelResultDTO {
	return labelResultDTO{
		ParcelNumber:    r.ParcelNumber,
		LabelLocation:   r.LabelLocation,
		CustomsLocation: r.CustomsLocation,
	}
}

func toRelayPointDTOs(points []shipper.RelayPoint) []relayPointDTO {
	out := make([]relayPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, relayPointDTO{
			ID:          p.ID,
			Name:        p.Name,
			Type:        p.Type,
			Address:     p.Address,
			PostalCode:  p.PostalCode,
			City:        p.City,
			Country:     p.Country,
			CountryCode: p.CountryCode,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Distance:    p.Distance,
			MaxWeight:   p.MaxWeight,
			Parking:     p.Parking,
			BusinessHours: businessHoursDTO{
				Monday:    p.BusinessHours.Monday,
				Tuesday:   p.BusinessHours.Tuesday,
				Wednesday: p.BusinessHours.Wednesday,
				Thursday:  p.BusinessHours.Thursday,
				Friday:    p.BusinessHours.Friday,
				Saturday:  p.BusinessHours.Saturday,
				Sunday:    p.BusinessHours.Sunday,
			},
		})
	}
	return out
}
