package colissimo

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/tournevent/colissimo/pkg/shipper"
)

// The generateLabel response is a multipart body whose JSON part is not
// always valid JSON. Parts are addressed by position after splitting on the
// Content-ID header, and fields are read with patterns instead of a decoder.
const partMarker = "Content-ID: "

const (
	labelPartIndex   = 2
	customsPartIndex = 3
)

var (
	parcelNumberPattern   = regexp.MustCompile(`"parcelNumber":"(.*?)"`)
	messageContentPattern = regexp.MustCompile(`"messageContent":"(.*?)"`)
)

// LabelResponse is a decoded generateLabel response.
type LabelResponse struct {
	StatusCode   int
	ParcelNumber string
	Message      string
	Parts        [][]byte
}

// ParseLabelResponse splits the multipart body and scans it for the parcel
// number and carrier message.
func ParseLabelResponse(statusCode int, body []byte) *LabelResponse {
	resp := &LabelResponse{
		StatusCode: statusCode,
		Parts:      bytes.Split(body, []byte(partMarker)),
	}

	text := strings.ToValidUTF8(string(body), "")
	resp.ParcelNumber = lastMatch(parcelNumberPattern, text)
	resp.Message = lastMatch(messageContentPattern, text)
	return resp
}

// Label returns the label document, or nil when the part is absent.
func (r *LabelResponse) Label() []byte {
	return r.part(labelPartIndex)
}

// Customs returns the customs declaration document, or nil when absent.
func (r *LabelResponse) Customs() []byte {
	return r.part(customsPartIndex)
}

// Err applies the carrier status policy to the response.
func (r *LabelResponse) Err() error {
	switch {
	case r.StatusCode == http.StatusServiceUnavailable:
		return shipper.NewCarrierError(carrierName, shipper.CodeServiceUnavailable, "service unavailable").
			WithStatusCode(r.StatusCode).
			WithRetryable(true)
	case r.StatusCode >= http.StatusBadRequest:
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d %s", r.StatusCode, http.StatusText(r.StatusCode))
		}
		return shipper.NewCarrierError(carrierName, shipper.CodeCarrierRejected, msg).
			WithStatusCode(r.StatusCode)
	case r.ParcelNumber != "":
		return nil
	case r.Message != "":
		return shipper.NewCarrierError(carrierName, shipper.CodeCarrierRejected, r.Message).
			WithStatusCode(r.StatusCode)
	default:
		return shipper.NewCarrierError(carrierName, shipper.CodeMalformedResponse, "no parcel number nor message in response").
			WithStatusCode(r.StatusCode)
	}
}

// Check returns Err, or a malformed response error when a successful
// response lacks one of the expected documents.
func (r *LabelResponse) Check(requiresCustoms bool) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Label()) == 0 {
		return shipper.NewCarrierError(carrierName, shipper.CodeMalformedResponse, "label document missing").
			WithStatusCode(r.StatusCode)
	}
	if requiresCustoms && len(r.Customs()) == 0 {
		return shipper.NewCarrierError(carrierName, shipper.CodeMalformedResponse, "customs document missing").
			WithStatusCode(r.StatusCode)
	}
	return nil
}

func (r *LabelResponse) part(i int) []byte {
	if i >= len(r.Parts) {
		return nil
	}
	return partContent(r.Parts[i])
}

// partContent strips the rest of the part headers (the Content-ID value and
// the blank line) and the boundary that opens the next part.
func partContent(raw []byte) []byte {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		raw = raw[i+4:]
	} else if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		raw = raw[i+2:]
	}

	if i := bytes.LastIndex(raw, []byte("\r\n--")); i >= 0 {
		raw = raw[:i]
	} else if i := bytes.LastIndex(raw, []byte("\n--")); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func lastMatch(re *regexp.Regexp, text string) string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}
