package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// Plan CSV columns. Column order is free; is_workday is optional.
const (
	colPlanDate  = "plan_date"
	colLine      = "line"
	colItem      = "product_name"
	colDemandQty = "qty_0"
	colActualQty = "qty_1"
	colPallet    = "plt"
	colWorkday   = "is_workday"
)

var requiredColumns = []string{colPlanDate, colLine, colItem, colDemandQty, colActualQty, colPallet}

// Plan exports often carry a suffix on the quantity columns
var columnAliases = map[string]string{
	"qty_0차": colDemandQty,
	"qty_1차": colActualQty,
	"date":   colPlanDate,
	"item":   colItem,
	"pallet": colPallet,
}

// Loader handles loading production plans from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadPlan loads plan entries from a CSV file
func (l *Loader) LoadPlan(filename string) ([]*entities.PlanEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadPlan(file)
}

// ReadPlan parses plan entries from CSV content
func (l *Loader) ReadPlan(r io.Reader) ([]*entities.PlanEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read plan CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("plan CSV must have header and at least one data row")
	}

	columns, err := indexHeader(records[0])
	if err != nil {
		return nil, err
	}

	entries := make([]*entities.PlanEntry, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(records[0]) {
			return nil, fmt.Errorf("plan CSV row %d: expected %d columns, got %d", i+2, len(records[0]), len(record))
		}

		entry, err := parsePlanEntry(record, columns)
		if err != nil {
			return nil, fmt.Errorf("plan CSV row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Helper functions for parsing CSV records

func indexHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		columns[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("plan CSV header missing columns %v. Expected: %v, Got: %v", missing, requiredColumns, header)
	}
	return columns, nil
}

func parsePlanEntry(record []string, columns map[string]int) (*entities.PlanEntry, error) {
	field := func(name string) string {
		if i, ok := columns[name]; ok {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	date, err := entities.ParseDate(field(colPlanDate))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", colPlanDate, err)
	}

	demand, err := parseQuantity(field(colDemandQty))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", colDemandQty, err)
	}

	actual, err := parseQuantity(field(colActualQty))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", colActualQty, err)
	}

	pallet, err := parseQuantity(field(colPallet))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", colPallet, err)
	}
	if pallet == 0 {
		pallet = 1
	}

	workday, err := parseWorkdayFlag(field(colWorkday))
	if err != nil {
		return nil, err
	}

	return entities.NewPlanEntry(
		date,
		entities.LineID(field(colLine)),
		entities.ItemName(field(colItem)),
		demand, actual, pallet,
		workday,
	)
}

// parseQuantity accepts thousands separators and integral decimals;
// an empty cell is zero
func parseQuantity(s string) (entities.Quantity, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return entities.Quantity(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer quantity: %q", s)
	}
	return entities.Quantity(int64(f)), nil
}

func parseWorkdayFlag(s string) (entities.WorkdayFlag, error) {
	switch strings.ToLower(s) {
	case "":
		return entities.WorkdayUnknown, nil
	case "true", "t", "1", "y", "yes":
		return entities.Workday, nil
	case "false", "f", "0", "n", "no":
		return entities.NonWorkday, nil
	default:
		return entities.WorkdayUnknown, fmt.Errorf("invalid %s: %s (expected true/false or empty)", colWorkday, s)
	}
}
