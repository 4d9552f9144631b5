package colissimo_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/colissimo/pkg/shipper"
	"github.com/tournevent/colissimo/pkg/shipper/colissimo"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestBuilder() *colissimo.Builder {
	return colissimo.NewBuilder("123456", "secret", colissimo.DefaultPolicy()).
		WithClock(func() time.Time { return fixedNow })
}

func nationalRequest() *shipper.LabelRequest {
	return &shipper.LabelRequest{
		Filename: "national_label",
		Shipment: shipper.ShipmentRequest{
			DestinationCountry: "FR",
			ShippingFee:        10,
		},
		Sender: shipper.PartyAddress{
			CompanyName: "MyCompany",
			Line2:       "Rue de Rivoli",
			City:        "Paris",
			PostalCode:  "75001",
			CountryCode: "FR",
		},
		Addressee: shipper.PartyAddress{
			LastName:    "addressee last name",
			FirstName:   "addressee first name",
			Line2:       "Rue de la paix",
			City:        "Paris",
			PostalCode:  "75001",
			CountryCode: "FR",
			Phone:       "0100000000",
			Mobile:      "0600000000",
			Email:       "addressee@email.com",
		},
	}
}

func foreignRequest(country string) *shipper.LabelRequest {
	req := nationalRequest()
	req.Filename = "foreign_label"
	req.Shipment.DestinationCountry = country
	req.Addressee.Line2 = "Pont du Mont-Blanc"
	req.Addressee.City = "Genève"
	req.Addressee.PostalCode = "1207"
	req.Addressee.CountryCode = country
	return req
}

func TestBuilder_Build_National(t *testing.T) {
	payload, requiresCustoms, err := newTestBuilder().Build(nationalRequest())

	require.NoError(t, err)
	assert.False(t, requiresCustoms)
	assert.Equal(t, "123456", payload.ContractNumber)
	assert.Equal(t, "secret", payload.Password)
	assert.Equal(t, "PDF_10x15_300dpi", payload.OutputFormat.OutputPrintingType)
	assert.Equal(t, colissimo.ProductDOM, payload.Letter.Service.ProductCode)
	assert.Equal(t, "2024-03-15", payload.Letter.Service.DepositDate)
	assert.Equal(t, int64(1000), payload.Letter.Service.TotalAmount)
	assert.Equal(t, colissimo.DefaultWeight, payload.Letter.Parcel.Weight)
	assert.Nil(t, payload.Letter.CustomsDeclarations)
	assert.Nil(t, payload.Fields)
}

func TestBuilder_Build_SignatureCountries(t *testing.T) {
	for _, country := range []string{"DE", "IT", "ES", "GB", "LU", "NL", "DK", "AT", "SE"} {
		t.Run(country, func(t *testing.T) {
			req := foreignRequest(country)
			req.Shipment.PickupLocationID = "987654"
			req.Shipment.PickupType = "A2P"
			req.Shipment.SignatureRequired = false

			payload, _, err := newTestBuilder().Build(req)
			require.NoError(t, err)
			assert.Equal(t, colissimo.ProductDOS, payload.Letter.Service.ProductCode)
		})
	}
}

func TestBuilder_ProductCode(t *testing.T) {
	policy := colissimo.DefaultPolicy()

	tests := []struct {
		name     string
		shipment shipper.ShipmentRequest
		want     string
	}{
		{"FR pickup without type", shipper.ShipmentRequest{DestinationCountry: "FR", PickupLocationID: "987654"}, "BPR"},
		{"FR pickup with type", shipper.ShipmentRequest{DestinationCountry: "FR", PickupLocationID: "987654", PickupType: "A2P"}, "A2P"},
		{"pickup outside FR", shipper.ShipmentRequest{DestinationCountry: "BE", PickupLocationID: "987654"}, "DOM"},
		{"signature requested", shipper.ShipmentRequest{DestinationCountry: "FR", SignatureRequired: true}, "DOS"},
		{"pickup wins over signature", shipper.ShipmentRequest{DestinationCountry: "FR", PickupLocationID: "1", SignatureRequired: true}, "BPR"},
		{"lowercase signature country", shipper.ShipmentRequest{DestinationCountry: "de"}, "DOS"},
		{"default", shipper.ShipmentRequest{DestinationCountry: "BE"}, "DOM"},
		{"override", shipper.ShipmentRequest{DestinationCountry: "DE", ProductCode: "CORE"}, "CORE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.ProductCode(&tt.shipment))
		})
	}
}

func TestBuilder_RequiresCustoms(t *testing.T) {
	policy := colissimo.DefaultPolicy()

	for _, country := range []string{"CH", "NO", "US", "GB"} {
		t.Run(country, func(t *testing.T) {
			assert.True(t, policy.RequiresCustoms(foreignRequest(country)))
		})
	}

	t.Run("FR without articles", func(t *testing.T) {
		assert.False(t, policy.RequiresCustoms(nationalRequest()))
	})

	t.Run("FR with articles", func(t *testing.T) {
		req := nationalRequest()
		req.Customs = &shipper.CustomsDeclaration{
			Articles: []shipper.CustomsLineItem{{Description: "Book", Quantity: 1}},
		}
		assert.True(t, policy.RequiresCustoms(req))
	})

	t.Run("custom policy", func(t *testing.T) {
		custom := colissimo.Policy{CustomsCountries: []string{"CH"}}
		assert.False(t, custom.RequiresCustoms(foreignRequest("US")))
		assert.True(t, custom.RequiresCustoms(foreignRequest("CH")))
	})
}

func TestBuilder_Build_Customs(t *testing.T) {
	req := foreignRequest("CH")
	req.Shipment.Weight = 5
	req.Customs = &shipper.CustomsDeclaration{
		Category:     shipper.CustomsGift,
		VATReference: "FR12345678901",
		EORI:         " FR1234567890123 ",
		TotalWeight:  2,
		Articles: []shipper.CustomsLineItem{
			{
				Description:   "Product description",
				Quantity:      1,
				Weight:        2.006,
				Value:         99.999,
				OriginCountry: "fr",
				Currency:      "eur",
				HSCode:        "85250800",
			},
		},
	}

	payload, requiresCustoms, err := newTestBuilder().Build(req)
	require.NoError(t, err)
	require.True(t, requiresCustoms)

	assert.Equal(t, 2.0, payload.Letter.Parcel.Weight, "customs weight wins over caller weight")

	decl := payload.Letter.CustomsDeclarations
	require.NotNil(t, decl)
	assert.Equal(t, 1, decl.IncludeCustomsDeclarations)
	assert.Equal(t, "FR12345678901", decl.ImportersReference)
	assert.Equal(t, 1, decl.Contents.Category.Value)
	require.Len(t, decl.Contents.Article, 1)

	article := decl.Contents.Article[0]
	assert.Equal(t, 1, article.Quantity)
	assert.Equal(t, 2.01, article.Weight)
	assert.Equal(t, 100.0, article.Value)
	assert.Equal(t, "FR", article.OriginCountry)
	assert.Equal(t, "EUR", article.Currency)
	assert.Equal(t, "85250800", article.HSCode)

	require.NotNil(t, payload.Fields)
	assert.Equal(t, []colissimo.CustomField{{Key: "EORI", Value: "FR1234567890123"}}, payload.Fields.CustomField)
}

func TestBuilder_Build_CustomsWeightFromArticles(t *testing.T) {
	req := foreignRequest("US")
	req.Customs = &shipper.CustomsDeclaration{
		Articles: []shipper.CustomsLineItem{
			{Quantity: 3, Weight: 0.25},
			{Quantity: 1, Weight: 1},
		},
	}

	payload, _, err := newTestBuilder().Build(req)
	require.NoError(t, err)
	assert.Equal(t, 1.75, payload.Letter.Parcel.Weight)
	assert.Equal(t, int(shipper.CustomsCommercial), payload.Letter.CustomsDeclarations.Contents.Category.Value)
}

func TestBuilder_Build_CustomsCountryWithoutDeclaration(t *testing.T) {
	req := foreignRequest("NO")
	req.Shipment.Weight = 1.5

	payload, requiresCustoms, err := newTestBuilder().Build(req)
	require.NoError(t, err)
	assert.True(t, requiresCustoms)
	require.NotNil(t, payload.Letter.CustomsDeclarations)
	assert.Empty(t, payload.Letter.CustomsDeclarations.Contents.Article)
	assert.Equal(t, 1.5, payload.Letter.Parcel.Weight)
	assert.Nil(t, payload.Fields)
}

func TestBuilder_Build_EORIIgnoredWithoutCustoms(t *testing.T) {
	req := nationalRequest()
	req.Customs = &shipper.CustomsDeclaration{EORI: "FR1234567890123"}

	payload, requiresCustoms, err := newTestBuilder().Build(req)
	require.NoError(t, err)
	assert.False(t, requiresCustoms)
	assert.Nil(t, payload.Fields)
	assert.Nil(t, payload.Letter.CustomsDeclarations)
}

func TestBuilder_Build_WeightAndAmounts(t *testing.T) {
	req := nationalRequest()
	req.Shipment.ShippingFee = 10.1
	req.Shipment.Weight = 1.234
	req.Shipment.InsuranceValue = 150.5
	req.Shipment.DepositDate = time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)

	payload, _, err := newTestBuilder().Build(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1010), payload.Letter.Service.TotalAmount)
	assert.Equal(t, 1.23, payload.Letter.Parcel.Weight)
	assert.Equal(t, int64(15050), payload.Letter.Parcel.InsuranceValue)
	assert.Equal(t, "2024-12-24", payload.Letter.Service.DepositDate)
}

func TestBuilder_Build_OptionalFields(t *testing.T) {
	req := nationalRequest()
	req.Shipment.OutputFormat = shipper.FormatZPL10x15203
	req.Shipment.PickupLocationID = " 987654 "
	req.Shipment.OrderID = "ORDER-42"
	req.Shipment.SenderRef = "S-1"
	req.Shipment.AddresseeRef = "A-1"
	req.Shipment.CommercialName = "MyShop"
	req.Shipment.ReturnTypeChoice = "3"

	payload, _, err := newTestBuilder().Build(req)
	require.NoError(t, err)
	assert.Equal(t, "ZPL_10x15_203dpi", payload.OutputFormat.OutputPrintingType)
	assert.Equal(t, "987654", payload.Letter.Parcel.PickupLocationID)
	assert.Equal(t, "BPR", payload.Letter.Service.ProductCode)
	assert.Equal(t, "ORDER-42", payload.Letter.Service.OrderNumber)
	assert.Equal(t, "MyShop", payload.Letter.Service.CommercialName)
	assert.Equal(t, "3", payload.Letter.Service.ReturnTypeChoice)
	assert.Equal(t, "S-1", payload.Letter.Sender.SenderParcelRef)
	assert.Equal(t, "A-1", payload.Letter.Addressee.AddresseeParcelRef)
}

func TestBuilder_Build_TrimsAndOmitsAddressFields(t *testing.T) {
	req := nationalRequest()
	req.Addressee = shipper.PartyAddress{
		LastName:    "  Dupont ",
		FirstName:   "\tMarie\n",
		Line2:       " 1 rue de la Paix ",
		Line3:       "   ",
		City:        " Paris",
		PostalCode:  "75002 ",
		CountryCode: " fr ",
		Email:       " marie@example.com ",
	}

	payload, _, err := newTestBuilder().Build(req)
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	letter := doc["letter"].(map[string]any)
	addressee := letter["addressee"].(map[string]any)
	addr := addressee["address"].(map[string]any)

	assert.Equal(t, map[string]any{
		"lastName":    "Dupont",
		"firstName":   "Marie",
		"line2":       "1 rue de la Paix",
		"city":        "Paris",
		"zipCode":     "75002",
		"countryCode": "FR",
		"email":       "marie@example.com",
	}, addr)
	assert.NotContains(t, addressee, "addresseeParcelRef")

	service := letter["service"].(map[string]any)
	assert.NotContains(t, service, "orderNumber")
	assert.NotContains(t, service, "commercialName")
	assert.NotContains(t, service, "returnTypeChoice")

	parcel := letter["parcel"].(map[string]any)
	assert.NotContains(t, parcel, "pickupLocationId")
	assert.NotContains(t, parcel, "insuranceValue")

	assert.NotContains(t, letter, "customsDeclarations")
	assert.NotContains(t, doc, "fields")

	outputFormat := doc["outputFormat"].(map[string]any)
	assert.Equal(t, float64(0), outputFormat["x"])
	assert.Equal(t, float64(0), outputFormat["y"])
}

func TestBuilder_Build_Invalid(t *testing.T) {
	req := nationalRequest()
	req.Shipment.ShippingFee = -1

	_, _, err := newTestBuilder().Build(req)
	assert.True(t, errors.Is(err, shipper.ErrInvalidShipment))
}

func TestBuilder_Build_TinyWeightFallsBackToDefault(t *testing.T) {
	t.Run("caller weight", func(t *testing.T) {
		req := nationalRequest()
		req.Shipment.Weight = 0.004

		payload, _, err := newTestBuilder().Build(req)
		require.NoError(t, err)
		assert.Equal(t, colissimo.DefaultWeight, payload.Letter.Parcel.Weight)
	})

	t.Run("customs total", func(t *testing.T) {
		req := foreignRequest("CH")
		req.Shipment.Weight = 0.004
		req.Customs = &shipper.CustomsDeclaration{
			Articles: []shipper.CustomsLineItem{{Description: "Sticker", Quantity: 1, Weight: 0.003, Value: 1}},
		}

		payload, requiresCustoms, err := newTestBuilder().Build(req)
		require.NoError(t, err)
		assert.True(t, requiresCustoms)
		assert.Equal(t, colissimo.DefaultWeight, payload.Letter.Parcel.Weight)
	})

	t.Run("customs total with caller weight", func(t *testing.T) {
		req := foreignRequest("CH")
		req.Shipment.Weight = 0.8
		req.Customs = &shipper.CustomsDeclaration{TotalWeight: 0.001}

		payload, _, err := newTestBuilder().Build(req)
		require.NoError(t, err)
		assert.Equal(t, 0.8, payload.Letter.Parcel.Weight)
	})
}

func TestPolicy_ConfiguredCountriesAreNormalized(t *testing.T) {
	policy := colissimo.Policy{
		SignatureCountries: []string{"DE", " it", "es "},
		CustomsCountries:   []string{"CH", " NO", " us", " "},
	}

	for _, country := range []string{"CH", "NO", "US", "us"} {
		assert.True(t, policy.RequiresCustoms(foreignRequest(country)), country)
	}
	assert.False(t, policy.RequiresCustoms(foreignRequest("BE")))

	assert.Equal(t, colissimo.ProductDOS, policy.ProductCode(&shipper.ShipmentRequest{DestinationCountry: "IT"}))
	assert.Equal(t, colissimo.ProductDOS, policy.ProductCode(&shipper.ShipmentRequest{DestinationCountry: "ES"}))
	assert.Equal(t, colissimo.ProductDOM, policy.ProductCode(&shipper.ShipmentRequest{DestinationCountry: "BE"}))

	req := foreignRequest("NO")
	payload, requiresCustoms, err := colissimo.NewBuilder("123456", "secret", policy).
		WithClock(func() time.Time { return fixedNow }).
		Build(req)
	require.NoError(t, err)
	assert.True(t, requiresCustoms)
	assert.NotNil(t, payload.Letter.CustomsDeclarations)
}
