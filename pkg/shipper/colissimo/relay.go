package colissimo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tournevent/colissimo/pkg/shipper"
)

const relayPointElement = "listePointRetraitAcheminement"

// relayPointXML is a listePointRetraitAcheminement node. Numeric values are
// kept as text and parsed leniently.
type relayPointXML struct {
	ID          string `xml:"identifiant"`
	Name        string `xml:"nom"`
	Type        string `xml:"typeDePoint"`
	Address1    string `xml:"adresse1"`
	Address2    string `xml:"adresse2"`
	Address3    string `xml:"adresse3"`
	PostalCode  string `xml:"codePostal"`
	City        string `xml:"localite"`
	Country     string `xml:"libellePays"`
	CountryCode string `xml:"codePays"`
	Latitude    string `xml:"coordGeolocalisationLatitude"`
	Longitude   string `xml:"coordGeolocalisationLongitude"`
	Distance    string `xml:"distanceEnMetre"`
	MaxWeight   string `xml:"poidsMaxi"`
	Parking     string `xml:"parking"`
	Monday      string `xml:"horairesOuvertureLundi"`
	Tuesday     string `xml:"horairesOuvertureMardi"`
	Wednesday   string `xml:"horairesOuvertureMercredi"`
	Thursday    string `xml:"horairesOuvertureJeudi"`
	Friday      string `xml:"horairesOuvertureVendredi"`
	Saturday    string `xml:"horairesOuvertureSamedi"`
	Sunday      string `xml:"horairesOuvertureDimanche"`
}

// RelayPointsResponse is a decoded findRDVPointRetraitAcheminement response.
type RelayPointsResponse struct {
	ErrorCode    string
	ErrorMessage string
	Points       []shipper.RelayPoint
}

// ParseRelayPoints decodes a relay point response. Elements are matched by
// local name at any depth, so both the SOAP envelope and a bare return
// element are accepted.
func ParseRelayPoints(body []byte) (*RelayPointsResponse, error) {
	resp := &RelayPointsResponse{}
	dec := xml.NewDecoder(bytes.NewReader(body))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode relay points: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "errorCode":
			if err := dec.DecodeElement(&resp.ErrorCode, &start); err != nil {
				return nil, fmt.Errorf("failed to decode errorCode: %w", err)
			}
		case "errorMessage":
			if err := dec.DecodeElement(&resp.ErrorMessage, &start); err != nil {
				return nil, fmt.Errorf("failed to decode errorMessage: %w", err)
			}
		case relayPointElement:
			var point relayPointXML
			if err := dec.DecodeElement(&point, &start); err != nil {
				return nil, fmt.Errorf("failed to decode relay point: %w", err)
			}
			resp.Points = append(resp.Points, point.toShipper())
		}
	}

	resp.ErrorCode = strings.TrimSpace(resp.ErrorCode)
	resp.ErrorMessage = strings.TrimSpace(resp.ErrorMessage)
	return resp, nil
}

// Err returns a relay lookup error when the embedded error code is not "0".
func (r *RelayPointsResponse) Err() error {
	if r.ErrorCode == "0" {
		return nil
	}
	msg := r.ErrorMessage
	if msg == "" {
		msg = "error code " + r.ErrorCode
	}
	return shipper.NewCarrierError(carrierName, shipper.CodeRelayLookup, msg)
}

func (p relayPointXML) toShipper() shipper.RelayPoint {
	return shipper.RelayPoint{
		ID:          strings.TrimSpace(p.ID),
		Name:        strings.TrimSpace(p.Name),
		Type:        strings.TrimSpace(p.Type),
		Address:     joinNonBlank(p.Address1, p.Address2, p.Address3),
		PostalCode:  strings.TrimSpace(p.PostalCode),
		City:        strings.TrimSpace(p.City),
		Country:     strings.TrimSpace(p.Country),
		CountryCode: strings.TrimSpace(p.CountryCode),
		Latitude:    parseFloat(p.Latitude),
		Longitude:   parseFloat(p.Longitude),
		Distance:    parseInt(p.Distance),
		MaxWeight:   parseInt(p.MaxWeight),
		Parking:     parseBool(p.Parking),
		BusinessHours: shipper.BusinessHours{
			Monday:    p.Monday,
			Tuesday:   p.Tuesday,
			Wednesday: p.Wednesday,
			Thursday:  p.Thursday,
			Friday:    p.Friday,
			Saturday:  p.Saturday,
			Sunday:    p.Sunday,
		},
	}
}

func joinNonBlank(lines ...string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// Some values come back as decimals ("20.0").
	return int(parseFloat(s))
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}
