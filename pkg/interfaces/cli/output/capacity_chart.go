package output

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// CapacityChart lays out line-day loads as a grid: one row per line,
// one column per date
type CapacityChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	ColumnWidth  int

	dates []time.Time
	lines []entities.LineID
	cells map[string]chartCell
}

// chartCell is one slot's load before and after the accepted moves
type chartCell struct {
	Location entities.Location
	Before   entities.Quantity
	After    entities.Quantity
	Max      entities.Quantity
	Target   bool
}

func (c chartCell) usage() float64 {
	if c.Max <= 0 {
		return 0
	}
	return float64(c.After) / float64(c.Max)
}

// NewCapacityChart builds a chart of the report's surveyed slots plus
// the target slot
func NewCapacityChart(report *dto.ReallocationReport) *CapacityChart {
	cc := &CapacityChart{
		MarginLeft:   110,
		MarginTop:    60,
		MarginRight:  30,
		MarginBottom: 70,
		RowHeight:    40,
		ColumnWidth:  90,
		cells:        make(map[string]chartCell),
	}

	for _, slot := range report.Slots {
		used := slot.Max - slot.Remaining
		added := used - entities.MinQuantity(slot.CurrentLoad, slot.Max)
		if added < 0 {
			added = 0
		}
		cc.add(chartCell{
			Location: slot.Location,
			Before:   slot.CurrentLoad,
			After:    slot.CurrentLoad + added,
			Max:      slot.Max,
		})
	}

	// The target row shows the requested change even when the target is
	// not itself a destination
	cc.add(chartCell{
		Location: report.Target,
		Before:   report.CurrentLoad,
		After:    report.FinalLoad(),
		Max:      report.Capacity,
		Target:   true,
	})

	sort.Slice(cc.dates, func(i, j int) bool { return cc.dates[i].Before(cc.dates[j]) })
	sort.Slice(cc.lines, func(i, j int) bool { return cc.lines[i] < cc.lines[j] })

	cc.Width = cc.MarginLeft + cc.MarginRight + max(len(cc.dates), 4)*cc.ColumnWidth
	cc.Height = cc.MarginTop + cc.MarginBottom + len(cc.lines)*cc.RowHeight
	return cc
}

func (cc *CapacityChart) add(cell chartCell) {
	key := cell.Location.String()
	if _, exists := cc.cells[key]; !exists {
		if !containsDate(cc.dates, cell.Location.Date) {
			cc.dates = append(cc.dates, cell.Location.Date)
		}
		if !containsLine(cc.lines, cell.Location.Line) {
			cc.lines = append(cc.lines, cell.Location.Line)
		}
	}
	cc.cells[key] = cell
}

// GenerateSVG renders the chart
func (cc *CapacityChart) GenerateSVG(report *dto.ReallocationReport) string {
	var svg strings.Builder

	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, cc.Width, cc.Height)
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.line-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.date-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.cell-text { font-family: Arial, sans-serif; font-size: 9px; fill: #222; }`)
	svg.WriteString(`</style></defs>`)

	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, cc.Width, cc.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title">Capacity %s %d at %s (%s)</text>`,
		cc.MarginLeft, strings.ToLower(report.Direction.String()), report.Requested,
		html.EscapeString(report.Target.String()), report.Status)

	cc.drawGrid(&svg)
	cc.drawCells(&svg)
	cc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (cc *CapacityChart) drawGrid(svg *strings.Builder) {
	bottom := cc.Height - cc.MarginBottom
	for i, date := range cc.dates {
		x := cc.MarginLeft + i*cc.ColumnWidth
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, cc.MarginTop, x, bottom)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="date-label" text-anchor="middle">%s</text>`,
			x+cc.ColumnWidth/2, bottom+15, date.Format("Jan 2"))
	}
	for i, line := range cc.lines {
		y := cc.MarginTop + i*cc.RowHeight
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			cc.MarginLeft, y, cc.Width-cc.MarginRight, y)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="line-label" text-anchor="end">%s</text>`,
			cc.MarginLeft-10, y+cc.RowHeight/2+4, html.EscapeString(string(line)))
	}
}

func (cc *CapacityChart) drawCells(svg *strings.Builder) {
	barMax := cc.ColumnWidth - 10
	barHeight := cc.RowHeight - 16

	for row, line := range cc.lines {
		for col, date := range cc.dates {
			cell, ok := cc.cells[entities.NewLocation(date, line).String()]
			if !ok {
				continue
			}
			x := cc.MarginLeft + col*cc.ColumnWidth + 5
			y := cc.MarginTop + row*cc.RowHeight + 8

			scale := func(q entities.Quantity) int {
				if cell.Max <= 0 {
					return 0
				}
				return min(barMax, int(float64(q)/float64(cell.Max)*float64(barMax)))
			}

			fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="#f5f5f5" stroke="#ccc"/>`, x, y, barMax, barHeight)
			fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
				x, y, scale(cell.After), barHeight, cc.usageColor(cell.usage()))
			if cell.Before != cell.After {
				fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#333" stroke-dasharray="2,2"/>`,
					x+scale(cell.Before), y, x+scale(cell.Before), y+barHeight)
			}
			if cell.Target {
				fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#1565C0" stroke-width="2"/>`,
					x-2, y-2, barMax+4, barHeight+4)
			}
			fmt.Fprintf(svg, `<text x="%d" y="%d" class="cell-text">%d/%d</text>`, x+3, y+barHeight/2+3, cell.After, cell.Max)
		}
	}
}

func (cc *CapacityChart) drawLegend(svg *strings.Builder) {
	legendY := cc.Height - cc.MarginBottom + 30

	items := []struct {
		color string
		label string
	}{
		{"#4CAF50", "< 80%"},
		{"#FF9800", "80-95%"},
		{"#F44336", ">= 95%"},
	}

	for i, item := range items {
		x := cc.MarginLeft + i*90
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, x, legendY, item.color)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="date-label">%s</text>`, x+18, legendY+8, item.label)
	}
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="date-label">dashed: load before moves</text>`, cc.MarginLeft+3*90, legendY+8)
}

// usageColor returns the bar color for a usage fraction
func (cc *CapacityChart) usageColor(usage float64) string {
	switch {
	case usage >= 0.95:
		return "#F44336"
	case usage >= 0.8:
		return "#FF9800"
	default:
		return "#4CAF50"
	}
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, existing := range dates {
		if existing.Equal(d) {
			return true
		}
	}
	return false
}

func containsLine(lines []entities.LineID, l entities.LineID) bool {
	for _, existing := range lines {
		if existing == l {
			return true
		}
	}
	return false
}

// generateSVGOutput writes the capacity chart to the output directory,
// or to the console without one
func generateSVGOutput(report *dto.ReallocationReport, config Config) error {
	svg := NewCapacityChart(report).GenerateSVG(report)

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.out(), svg)
		return err
	}

	filename, err := saveFile(config.OutputDir, "capacity_chart.svg", []byte(svg))
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "📊 Capacity chart saved to: %s\n", filename)
	}
	return nil
}
