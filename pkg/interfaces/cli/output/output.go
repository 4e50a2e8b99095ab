package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/application/services/reallocation"
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	okColor      = color.New(color.FgGreen, color.Bold)
	partialColor = color.New(color.FgYellow, color.Bold)
	warningColor = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
	// Out receives console output; nil means os.Stdout
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Generate creates output in the specified format
func Generate(report *dto.ReallocationReport, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	case "svg":
		return generateSVGOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateFacts prints a fact sheet as text or JSON
func GenerateFacts(facts *dto.FactSheet, config Config) error {
	switch config.Format {
	case "text", "":
		return reallocation.WriteFactSheet(config.out(), facts)
	case "json":
		data, err := json.MarshalIndent(facts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(config.out(), string(data))
		return err
	default:
		return fmt.Errorf("unsupported facts format: %s (expected: text or json)", config.Format)
	}
}

// generateTextOutput prints a human-readable report and, with an output
// directory, saves an uncolored copy
func generateTextOutput(report *dto.ReallocationReport, config Config) error {
	if err := writeText(config.out(), report, config, true); err != nil {
		return err
	}

	if config.OutputDir == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := writeText(&buf, report, config, false); err != nil {
		return err
	}
	filename, err := saveFile(config.OutputDir, "reallocation_report.txt", buf.Bytes())
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Report saved to: %s\n", filename)
	}
	return nil
}

func writeText(w io.Writer, report *dto.ReallocationReport, config Config, colored bool) error {
	paint := func(c *color.Color, format string, args ...interface{}) string {
		if !colored {
			return fmt.Sprintf(format, args...)
		}
		return c.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(paint(headerColor, "📊 Reallocation Summary") + "\n")
	b.WriteString("=======================\n\n")

	fmt.Fprintf(&b, "Target:      %s\n", report.Target)
	fmt.Fprintf(&b, "Request:     %s %d\n", strings.ToLower(report.Direction.String()), report.Requested)
	fmt.Fprintf(&b, "Target Load: %d", report.TargetLoad)
	if report.TargetUtilizationPct.Valid {
		fmt.Fprintf(&b, " (%s%% CAPA)", report.TargetUtilizationPct.Decimal.String())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Load:        %d -> %d of %d\n", report.CurrentLoad, report.FinalLoad(), report.Capacity)
	fmt.Fprintf(&b, "Achieved:    %d (%s%%)\n", report.Achieved, report.AchievementPct.StringFixed(1))

	status := paint(okColor, "%s", report.Status)
	if report.Status != entities.StatusOK {
		status = paint(partialColor, "%s", report.Status)
	}
	fmt.Fprintf(&b, "Status:      %s\n", status)
	fmt.Fprintf(&b, "Strategy:    %s", report.StrategySource)
	if report.Strategy != "" {
		fmt.Fprintf(&b, " (%s)", report.Strategy)
	}
	b.WriteString("\n")
	if report.Proposed > 0 {
		fmt.Fprintf(&b, "Proposed:    %d candidates, %d accepted\n", report.Proposed, len(report.Accepted))
	}
	if config.Elapsed > 0 {
		fmt.Fprintf(&b, "Run Time:    %v\n", config.Elapsed)
	}
	b.WriteString("\n")

	if report.Explanation != "" {
		fmt.Fprintf(&b, "%s\n\n", paint(dimColor, "%s", report.Explanation))
	}

	if len(report.Moves) > 0 {
		b.WriteString(paint(headerColor, "📋 Moves:") + "\n")
		fmt.Fprintf(&b, "%-20s %-8s %-5s %-22s %-22s %s\n", "Item", "Qty", "PLT", "From", "To", "Reason")
		fmt.Fprintf(&b, "%-20s %-8s %-5s %-22s %-22s %s\n",
			"--------------------", "--------", "-----", "----------------------", "----------------------", "------")
		for _, m := range report.Moves {
			reason := m.Reason
			if m.Adjusted {
				reason += paint(warningColor, " [adjusted from %d]", m.OriginalQuantity)
			}
			fmt.Fprintf(&b, "%-20s %-8d %-5d %-22s %-22s %s\n", m.Item, m.Quantity, m.Pallets, m.From, m.To, reason)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No moves accepted.\n\n")
	}

	if len(report.Diagnostics) > 0 {
		b.WriteString(paint(headerColor, "⚠️  Diagnostics:") + "\n")
		for _, d := range report.Diagnostics {
			fmt.Fprintf(&b, "  %-22s %s\n", d.Kind, d)
		}
		b.WriteString("\n")
	}

	if config.Verbose && len(report.Slots) > 0 {
		b.WriteString(paint(headerColor, "🏭 Destination Capacity:") + "\n")
		fmt.Fprintf(&b, "%-22s %-10s %-10s %-10s %s\n", "Slot", "Load", "Remaining", "Max", "Usage")
		for _, s := range report.Slots {
			fmt.Fprintf(&b, "%-22s %-10d %-10d %-10d %s%%\n", s.Location, s.CurrentLoad, s.Remaining, s.Max, s.UsageRate.StringFixed(1))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// generateJSONOutput creates JSON output
func generateJSONOutput(report *dto.ReallocationReport, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(config.out(), string(jsonData))
		return err
	}

	filename, err := saveFile(config.OutputDir, "reallocation_report.json", jsonData)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes moves, diagnostics and slots as CSV files.
// Without an output directory only the moves are printed.
func generateCSVOutput(report *dto.ReallocationReport, config Config) error {
	if config.OutputDir == "" {
		return writeMovesCSV(config.out(), report.Moves)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"moves.csv", func(w io.Writer) error { return writeMovesCSV(w, report.Moves) }},
		{"diagnostics.csv", func(w io.Writer) error { return writeDiagnosticsCSV(w, report.Diagnostics) }},
		{"slots.csv", func(w io.Writer) error { return writeSlotsCSV(w, report.Slots) }},
	}

	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		filename, err := saveFile(config.OutputDir, f.name, buf.Bytes())
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(config.out(), "💾 CSV saved to: %s\n", filename)
		}
	}
	return nil
}

func writeMovesCSV(w io.Writer, moves []entities.Move) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"item", "qty", "plt", "from", "to", "reason", "adjusted", "original_qty"})
	for _, m := range moves {
		original := ""
		if m.Adjusted {
			original = strconv.FormatInt(int64(m.OriginalQuantity), 10)
		}
		_ = cw.Write([]string{
			string(m.Item),
			strconv.FormatInt(int64(m.Quantity), 10),
			strconv.FormatInt(m.Pallets, 10),
			m.From.String(),
			m.To.String(),
			m.Reason,
			strconv.FormatBool(m.Adjusted),
			original,
		})
	}
	cw.Flush()
	return cw.Error()
}

func writeDiagnosticsCSV(w io.Writer, diags []dto.Diagnostic) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"kind", "stage", "index", "item", "message"})
	for _, d := range diags {
		index := ""
		if d.Index >= 0 {
			index = strconv.Itoa(d.Index + 1)
		}
		_ = cw.Write([]string{d.Kind.String(), d.Stage, index, d.Item, d.Message})
	}
	cw.Flush()
	return cw.Error()
}

func writeSlotsCSV(w io.Writer, slots []dto.FactSlot) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"slot", "current_load", "remaining", "max", "usage_pct"})
	for _, s := range slots {
		_ = cw.Write([]string{
			s.Location.String(),
			strconv.FormatInt(int64(s.CurrentLoad), 10),
			strconv.FormatInt(int64(s.Remaining), 10),
			strconv.FormatInt(int64(s.Max), 10),
			s.UsageRate.StringFixed(1),
		})
	}
	cw.Flush()
	return cw.Error()
}

func saveFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}
