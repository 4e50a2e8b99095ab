package services

import (
	"strings"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// MobilityRule maps items whose name contains Marker to a mobility class.
// Lines limits the cross-line destinations (empty means every line) and
// ExcludedLines removes lines the item must never run on.
type MobilityRule struct {
	Marker        string
	Class         entities.MobilityClass
	Lines         []entities.LineID
	ExcludedLines []entities.LineID
}

// MobilityClassifier resolves items to their mobility from a rule table
type MobilityClassifier struct {
	rules []MobilityRule
	lines []entities.LineID
}

// NewMobilityClassifier creates a classifier over the given rules and lines.
// Rules are tried in order and the first match wins.
func NewMobilityClassifier(rules []MobilityRule, lines []entities.LineID) *MobilityClassifier {
	return &MobilityClassifier{
		rules: rules,
		lines: lines,
	}
}

// Classify returns the mobility of an item planned on sourceLine.
// Items no rule recognizes are FixedLine.
func (c *MobilityClassifier) Classify(item entities.ItemName, sourceLine entities.LineID) entities.Mobility {
	rule, ok := c.match(item)
	if !ok || rule.Class == entities.FixedLine {
		return entities.Mobility{Class: entities.FixedLine}
	}

	eligible := rule.Lines
	if len(eligible) == 0 {
		eligible = c.lines
	}

	excluded := make(map[entities.LineID]bool, len(rule.ExcludedLines)+1)
	for _, line := range rule.ExcludedLines {
		excluded[line] = true
	}
	excluded[sourceLine] = true

	cross := make([]entities.LineID, 0, len(eligible))
	for _, line := range eligible {
		if !excluded[line] {
			cross = append(cross, line)
		}
	}

	return entities.Mobility{Class: rule.Class, CrossLines: cross}
}

func (c *MobilityClassifier) match(item entities.ItemName) (MobilityRule, bool) {
	name := strings.ToUpper(string(item))
	for _, rule := range c.rules {
		if rule.Marker == "" {
			continue
		}
		if strings.Contains(name, strings.ToUpper(rule.Marker)) {
			return rule, true
		}
	}
	return MobilityRule{}, false
}
