package proposal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// ErrNoProposal is returned when no JSON object can be found in the input
var ErrNoProposal = errors.New("no proposal object found")

var fence = regexp.MustCompile("```(?:json)?\\s*|\\s*```")

// Parse extracts a proposal from free text. The first '{' through the
// last '}' is decoded, after removing markdown code fences.
//
// Fields are untrusted: each move is coerced field by field and a field
// of the wrong type becomes its zero value, so the move later fails
// validation instead of failing the whole proposal. Only text without a
// decodable object, or a "moves" value that is not a list, is an error.
func Parse(data []byte) (*dto.Proposal, error) {
	cleaned := fence.ReplaceAll(bytes.TrimSpace(data), nil)
	start := bytes.IndexByte(cleaned, '{')
	end := bytes.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return nil, ErrNoProposal
	}

	decoder := json.NewDecoder(bytes.NewReader(cleaned[start : end+1]))
	decoder.UseNumber()

	var envelope map[string]interface{}
	if err := decoder.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProposal, err)
	}

	proposal := &dto.Proposal{
		Strategy:    coerceString(envelope["strategy"]),
		Explanation: coerceString(envelope["explanation"]),
	}

	raw, present := envelope["moves"]
	if !present || raw == nil {
		return proposal, nil
	}
	moves, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("proposal moves must be a list, got %T", raw)
	}

	for _, m := range moves {
		proposal.Moves = append(proposal.Moves, coerceCandidate(m))
	}
	return proposal, nil
}

func coerceCandidate(raw interface{}) entities.Candidate {
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return entities.Candidate{}
	}

	qty, present := fields["qty"]
	if !present {
		qty = fields["quantity"]
	}

	return entities.Candidate{
		Item:     strings.TrimSpace(coerceString(fields["item"])),
		Quantity: coerceQuantity(qty),
		From:     strings.TrimSpace(coerceString(fields["from"])),
		To:       strings.TrimSpace(coerceString(fields["to"])),
		Reason:   coerceString(fields["reason"]),
	}
}

func coerceString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// coerceQuantity accepts integers, integral decimals and numeric strings
// with thousands separators. Anything else is 0.
func coerceQuantity(v interface{}) entities.Quantity {
	switch value := v.(type) {
	case json.Number:
		return quantityFromText(value.String())
	case string:
		cleaned := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(value))
		return quantityFromText(cleaned)
	case float64:
		return quantityFromFloat(value)
	default:
		return 0
	}
}

func quantityFromText(s string) entities.Quantity {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return entities.Quantity(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return quantityFromFloat(f)
}

func quantityFromFloat(f float64) entities.Quantity {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0
	}
	return entities.Quantity(f)
}
