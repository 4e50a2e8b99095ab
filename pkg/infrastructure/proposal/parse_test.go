package proposal

import (
	"errors"
	"testing"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

func TestParse_FencedText(t *testing.T) {
	input := "Here is the plan:\n```json\n" + `{
  "strategy": "spread to line 2",
  "explanation": "line 2 has room",
  "moves": [
    {"item": "WL-LHD", "qty": 200, "plt": 4, "from": "2026-01-21_LINE1", "to": "2026-01-21_LINE2", "reason": "room"},
    {"item": "T6-ALPHA", "qty": "1,200", "from": " 2026-01-21_LINE1 ", "to": "2026-01-22_LINE1"}
  ]
}` + "\n```\nLet me know."

	p, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Strategy != "spread to line 2" || p.Explanation != "line 2 has room" {
		t.Errorf("Unexpected strategy fields: %q / %q", p.Strategy, p.Explanation)
	}
	if len(p.Moves) != 2 {
		t.Fatalf("Expected 2 moves, got %d", len(p.Moves))
	}

	first := p.Moves[0]
	if first.Item != "WL-LHD" || first.Quantity != 200 || first.From != "2026-01-21_LINE1" || first.To != "2026-01-21_LINE2" || first.Reason != "room" {
		t.Errorf("Unexpected first move: %+v", first)
	}
	if p.Moves[1].Quantity != 1200 || p.Moves[1].From != "2026-01-21_LINE1" {
		t.Errorf("Expected thousands separator and whitespace handled, got %+v", p.Moves[1])
	}
}

func TestParse_CoercesBadFields(t *testing.T) {
	input := `{"moves": [
		{"item": 42, "qty": 100, "from": "2026-01-21_LINE1", "to": "2026-01-21_LINE2"},
		{"item": "A", "qty": 150.0, "from": null, "to": ["x"]},
		{"item": "B", "qty": 12.5},
		{"item": "C", "qty": "lots"},
		{"item": "D", "quantity": 50},
		{"item": "E", "qty": true},
		"not an object"
	]}`

	p, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := []entities.Candidate{
		{Item: "", Quantity: 100, From: "2026-01-21_LINE1", To: "2026-01-21_LINE2"},
		{Item: "A", Quantity: 150},
		{Item: "B", Quantity: 0},
		{Item: "C", Quantity: 0},
		{Item: "D", Quantity: 50},
		{Item: "E", Quantity: 0},
		{},
	}
	if len(p.Moves) != len(expected) {
		t.Fatalf("Expected %d moves, got %d", len(expected), len(p.Moves))
	}
	for i, want := range expected {
		if p.Moves[i] != want {
			t.Errorf("Move %d: expected %+v, got %+v", i, want, p.Moves[i])
		}
	}
}

func TestParse_Envelope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		moves   int
		wantErr bool
	}{
		{"no object", "I could not find a plan.", 0, true},
		{"broken json", `{"moves": [`, 0, true},
		{"moves not a list", `{"moves": {"item": "A"}}`, 0, true},
		{"no moves", `{"strategy": "nothing to do"}`, 0, false},
		{"null moves", `{"moves": null}`, 0, false},
		{"empty moves", `{"moves": []}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(p.Moves) != tt.moves {
				t.Errorf("Expected %d moves, got %d", tt.moves, len(p.Moves))
			}
		})
	}

	if _, err := Parse([]byte("nothing")); !errors.Is(err, ErrNoProposal) {
		t.Errorf("Expected ErrNoProposal, got %v", err)
	}
}
