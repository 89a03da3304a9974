package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/shared"
)

const quotesServiceName = "QuotesClient"

// flexNumber accepts a JSON string or a JSON number and keeps its text.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*n = flexNumber(text)
		return nil
	}
	*n = flexNumber(data)
	return nil
}

// rawMover is one entry of top_gainers / top_losers as sent upstream.
type rawMover struct {
	Ticker           string     `json:"ticker"`
	Price            flexNumber `json:"price"`
	ChangeAmount     flexNumber `json:"change_amount"`
	ChangePercentage flexNumber `json:"change_percentage"`
	Volume           flexNumber `json:"volume"`
}

type quotesPayloadKind int

const (
	payloadMovers quotesPayloadKind = iota
	payloadRejected
	payloadUnexpectedShape
)

func (k quotesPayloadKind) String() string {
	switch k {
	case payloadMovers:
		return "movers"
	case payloadRejected:
		return "rejected"
	default:
		return "unexpected_shape"
	}
}

// decodedQuotes is the tagged result of decoding a top movers response body.
type decodedQuotes struct {
	Kind        quotesPayloadKind
	Message     string
	LastUpdated string
	Gainers     []rawMover
	Losers      []rawMover
}

// upstream error fields, checked in this order
var rejectionFields = []string{"Error Message", "Note", "Information"}

func decodeTopMoversPayload(body []byte) (decodedQuotes, error) {
	if !json.Valid(body) {
		return decodedQuotes{}, shared.NewServiceError(
			shared.ErrorCategoryParse,
			"INVALID_JSON",
			"quotes API returned a body that is not valid JSON",
			quotesServiceName,
			"decode",
			false,
			nil,
		)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Valid JSON that is not an object
		return decodedQuotes{Kind: payloadUnexpectedShape}, nil
	}

	for _, name := range rejectionFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		return decodedQuotes{Kind: payloadRejected, Message: rawText(raw)}, nil
	}

	gainersRaw, gainersOK := arrayField(fields, "top_gainers")
	losersRaw, losersOK := arrayField(fields, "top_losers")
	if !gainersOK || !losersOK {
		return decodedQuotes{Kind: payloadUnexpectedShape}, nil
	}

	decoded := decodedQuotes{Kind: payloadMovers}
	if raw, ok := fields["last_updated"]; ok {
		decoded.LastUpdated = rawText(raw)
	}
	if err := json.Unmarshal(gainersRaw, &decoded.Gainers); err != nil {
		return decodedQuotes{}, malformedEntryError("top_gainers", err)
	}
	if err := json.Unmarshal(losersRaw, &decoded.Losers); err != nil {
		return decodedQuotes{}, malformedEntryError("top_losers", err)
	}
	return decoded, nil
}

func arrayField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	return raw, len(raw) > 0 && raw[0] == '['
}

func rawText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(raw))
}

func malformedEntryError(field string, cause error) error {
	return shared.NewServiceError(
		shared.ErrorCategoryParse,
		"MALFORMED_ENTRY",
		fmt.Sprintf("quotes API returned malformed %s entries", field),
		quotesServiceName,
		"decode",
		false,
		cause,
	)
}

// normalizeMovers converts decoded entries into records, keeping upstream order.
func normalizeMovers(raw []rawMover) ([]models.MoverRecord, error) {
	records := make([]models.MoverRecord, 0, len(raw))
	for _, entry := range raw {
		record, err := normalizeMover(entry)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func normalizeMover(entry rawMover) (models.MoverRecord, error) {
	price, err := FormatTwoDecimals(string(entry.Price))
	if err != nil {
		return models.MoverRecord{}, fieldParseError(entry.Ticker, "price", string(entry.Price), err)
	}

	change, err := FormatTwoDecimals(strings.TrimSuffix(strings.TrimSpace(string(entry.ChangePercentage)), "%"))
	if err != nil {
		return models.MoverRecord{}, fieldParseError(entry.Ticker, "change_percentage", string(entry.ChangePercentage), err)
	}

	return models.MoverRecord{
		Symbol:        entry.Ticker,
		Price:         price,
		ChangePercent: change,
	}, nil
}

// FormatTwoDecimals parses text as a float and formats it with exactly two
// fractional digits. Non-finite values are rejected.
func FormatTwoDecimals(text string) (string, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return "", err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", fmt.Errorf("non-finite value %q", text)
	}
	return formatCents(value), nil
}

// formatCents rounds the exact binary value of v to cents, taking the larger
// magnitude when it lies exactly halfway between two cents.
func formatCents(v float64) string {
	cents := new(big.Rat).SetFloat64(math.Abs(v))
	cents.Mul(cents, big.NewRat(100, 1))

	whole, remainder := new(big.Int).QuoRem(cents.Num(), cents.Denom(), new(big.Int))
	if remainder.Lsh(remainder, 1).Cmp(cents.Denom()) >= 0 {
		whole.Add(whole, big.NewInt(1))
	}

	digits := whole.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}

	sign := ""
	if v < 0 {
		sign = "-"
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

func fieldParseError(ticker, field, value string, cause error) error {
	return shared.NewServiceError(
		shared.ErrorCategoryParse,
		"INVALID_NUMBER",
		fmt.Sprintf("invalid %s %q for %s", field, value, ticker),
		quotesServiceName,
		"normalize",
		false,
		cause,
	).WithDetails(map[string]string{"ticker": ticker, "field": field})
}
