package colissimo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGenerateLabel   func(ctx context.Context, payload *LabelPayload) (*RawResponse, error)
	OnFindRelayPoints func(ctx context.Context, query *RelayPointQuery) (*RawResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GenerateLabel returns a multipart response with a placeholder label, and a
// customs document when the payload declares one.
func (m *MockAPIClient) GenerateLabel(ctx context.Context, payload *LabelPayload) (*RawResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return &RawResponse{
			StatusCode: http.StatusBadRequest,
			Body:       MultipartBody(`{"messages":[{"id":"30000","type":"ERROR","messageContent":"Simulated API error"}]}`),
		}, nil
	}

	if m.OnGenerateLabel != nil {
		return m.OnGenerateLabel(ctx, payload)
	}

	parcelNumber := fmt.Sprintf("6A%011d", time.Now().UnixNano()%100000000000)
	info := fmt.Sprintf(`{"messages":[{"id":"0","type":"INFOS","messageContent":"La requête a été traitée avec succès"}],"labelV2Response":{"parcelNumber":"%s","parcelNumberPartner":"","fields":null}}`, parcelNumber)

	docs := [][]byte{[]byte("%PDF-1.4 mock label " + uuid.NewString())}
	if payload.Letter.CustomsDeclarations != nil {
		docs = append(docs, []byte("%PDF-1.4 mock CN23 "+uuid.NewString()))
	}

	return &RawResponse{
		StatusCode: http.StatusOK,
		Body:       MultipartBody(info, docs...),
	}, nil
}

// FindRelayPoints returns two mock relay points.
func (m *MockAPIClient) FindRelayPoints(ctx context.Context, query *RelayPointQuery) (*RawResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return &RawResponse{
			StatusCode: http.StatusOK,
			Body:       []byte(`<return><errorCode>120</errorCode><errorMessage>Simulated API error</errorMessage></return>`),
		}, nil
	}

	if m.OnFindRelayPoints != nil {
		return m.OnFindRelayPoints(ctx, query)
	}

	return &RawResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(fmt.Sprintf(mockRelayPointsXML, query.ZipCode, query.City, query.ZipCode, query.City)),
	}, nil
}

// MultipartBody builds a response body shaped like the generateLabel service
// output: a JSON information part followed by one part per document.
func MultipartBody(info string, docs ...[]byte) []byte {
	const boundary = "--uuid:6b6ea3a4-9d8e-4c1d-9c0b-5a0b4a1c3e7f"

	var buf bytes.Buffer
	buf.WriteString(boundary + "\r\n")
	buf.WriteString("Content-Type: application/json;charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: binary\r\n")
	buf.WriteString(partMarker + "<jsonInfos>\r\n\r\n")
	buf.WriteString(info + "\r\n")

	for i, doc := range docs {
		buf.WriteString(boundary + "\r\n")
		buf.WriteString("Content-Type: application/octet-stream\r\n")
		buf.WriteString("Content-Transfer-Encoding: binary\r\n")
		if i == 0 {
			buf.WriteString(partMarker + "<label>\r\n\r\n")
		} else {
			buf.WriteString(partMarker + "<cn23>\r\n\r\n")
		}
		buf.Write(doc)
		buf.WriteString("\r\n")
	}

	buf.WriteString(boundary + "--\r\n")
	return buf.Bytes()
}

const mockRelayPointsXML = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<ns2:findRDVPointRetraitAcheminementResponse xmlns:ns2="http://v2.pointretrait.geopost.com/">
<return>
<errorCode>0</errorCode>
<errorMessage>Code retour OK</errorMessage>
<listePointRetraitAcheminement>
<identifiant>987654</identifiant>
<nom>BUREAU DE POSTE MOCK</nom>
<typeDePoint>BPR</typeDePoint>
<adresse1>12 RUE DE LA POSTE</adresse1>
<adresse2></adresse2>
<adresse3></adresse3>
<codePostal>%s</codePostal>
<localite>%s</localite>
<libellePays>FRANCE</libellePays>
<codePays>FR</codePays>
<coordGeolocalisationLatitude>48.8566</coordGeolocalisationLatitude>
<coordGeolocalisationLongitude>2.3522</coordGeolocalisationLongitude>
<distanceEnMetre>350</distanceEnMetre>
<poidsMaxi>30000</poidsMaxi>
<parking>true</parking>
<horairesOuvertureLundi>09:00-12:00 14:00-18:00</horairesOuvertureLundi>
<horairesOuvertureMardi>09:00-12:00 14:00-18:00</horairesOuvertureMardi>
<horairesOuvertureMercredi>09:00-12:00 14:00-18:00</horairesOuvertureMercredi>
<horairesOuvertureJeudi>09:00-12:00 14:00-18:00</horairesOuvertureJeudi>
<horairesOuvertureVendredi>09:00-12:00 14:00-18:00</horairesOuvertureVendredi>
<horairesOuvertureSamedi>09:00-12:00 00:00-00:00</horairesOuvertureSamedi>
<horairesOuvertureDimanche>00:00-00:00 00:00-00:00</horairesOuvertureDimanche>
</listePointRetraitAcheminement>
<listePointRetraitAcheminement>
<identifiant>123456</identifiant>
<nom>RELAIS PICKUP MOCK</nom>
<typeDePoint>A2P</typeDePoint>
<adresse1>3 AVENUE DU COMMERCE</adresse1>
<adresse2>GALERIE MARCHANDE</adresse2>
<adresse3></adresse3>
<codePostal>%s</codePostal>
<localite>%s</localite>
<libellePays>FRANCE</libellePays>
<codePays>FR</codePays>
<coordGeolocalisationLatitude>48.8570</coordGeolocalisationLatitude>
<coordGeolocalisationLongitude>2.3600</coordGeolocalisationLongitude>
<distanceEnMetre>820</distanceEnMetre>
<poidsMaxi>20000</poidsMaxi>
<parking>false</parking>
<horairesOuvertureLundi>10:00-19:00 00:00-00:00</horairesOuvertureLundi>
<horairesOuvertureMardi>10:00-19:00 00:00-00:00</horairesOuvertureMardi>
<horairesOuvertureMercredi>10:00-19:00 00:00-00:00</horairesOuvertureMercredi>
<horairesOuvertureJeudi>10:00-19:00 00:00-00:00</horairesOuvertureJeudi>
<horairesOuvertureVendredi>10:00-19:00 00:00-00:00</horairesOuvertureVendredi>
<horairesOuvertureSamedi>10:00-19:00 00:00-00:00</horairesOuvertureSamedi>
<horairesOuvertureDimanche>00:00-00:00 00:00-00:00</horairesOuvertureDimanche>
</listePointRetraitAcheminement>
</return>
</ns2:findRDVPointRetraitAcheminementResponse>
</soap:Body>
</soap:Envelope>`

var _ APIClient = (*MockAPIClient)(nil)
