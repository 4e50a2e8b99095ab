package services

import (
	"testing"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

func TestMobilityClassifier_Classify(t *testing.T) {
	lines := []entities.LineID{"LINE1", "LINE2", "LINE3"}
	classifier := NewMobilityClassifier([]MobilityRule{
		{Marker: "t6", Class: entities.MultiLineFlexible},
		{Marker: "A2XX", Class: entities.RestrictedPair, Lines: []entities.LineID{"LINE1", "LINE2"}, ExcludedLines: []entities.LineID{"LINE3"}},
		{Marker: "BERGSTROM", Class: entities.FixedLine},
	}, lines)

	tests := []struct {
		name        string
		item        entities.ItemName
		source      entities.LineID
		expectClass entities.MobilityClass
		expectCross []entities.LineID
	}{
		{"flexible case-insensitive", "HVAC-T6-STD", "LINE1", entities.MultiLineFlexible, []entities.LineID{"LINE2", "LINE3"}},
		{"restricted from line1", "A2XX-LHD", "LINE1", entities.RestrictedPair, []entities.LineID{"LINE2"}},
		{"restricted from line3", "A2XX-LHD", "LINE3", entities.RestrictedPair, []entities.LineID{"LINE1", "LINE2"}},
		{"explicit fixed", "BERGSTROM-9", "LINE2", entities.FixedLine, nil},
		{"unrecognized defaults to fixed", "WL-LHD", "LINE1", entities.FixedLine, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := classifier.Classify(tt.item, tt.source)
			if m.Class != tt.expectClass {
				t.Errorf("Expected class %s, got %s", tt.expectClass, m.Class)
			}
			if len(m.CrossLines) != len(tt.expectCross) {
				t.Fatalf("Expected cross lines %v, got %v", tt.expectCross, m.CrossLines)
			}
			for i, line := range tt.expectCross {
				if m.CrossLines[i] != line {
					t.Errorf("Expected cross lines %v, got %v", tt.expectCross, m.CrossLines)
				}
			}
			if m.AllowsLine(tt.source) {
				t.Error("Source line must never be a cross-line destination")
			}
		})
	}
}

func TestMobilityClassifier_FirstRuleWins(t *testing.T) {
	classifier := NewMobilityClassifier([]MobilityRule{
		{Marker: "T6", Class: entities.MultiLineFlexible},
		{Marker: "T6-SPECIAL", Class: entities.FixedLine},
	}, []entities.LineID{"LINE1", "LINE2"})

	if got := classifier.Classify("T6-SPECIAL", "LINE1").Class; got != entities.MultiLineFlexible {
		t.Errorf("Expected first matching rule to win, got %s", got)
	}
}
