package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/infrastructure/config"
)

// GenerateConfig holds configuration for synthetic plan generation
type GenerateConfig struct {
	Start        string  // First plan date (YYYY-MM-DD)
	Days         int     // Calendar days to generate
	ItemsPerLine int     // Distinct items planned per line and workday
	Load         float64 // Target load as a fraction of line capacity
	DemandShare  float64 // Fraction of rows carrying a due quantity
	Output       string  // Output CSV path
	Seed         int64   // Random seed for reproducible generation
	Verbose      bool
}

// GenerateCommand writes a synthetic production plan for the configured plant
type GenerateCommand struct {
	config GenerateConfig
	plant  *config.Config
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(cfg GenerateConfig, plant *config.Config, out io.Writer) *GenerateCommand {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: cfg,
		plant:  plant,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

type generatedItem struct {
	name   string
	pallet entities.Quantity
}

// Execute generates the plan and writes it as CSV
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Days <= 0 || cmd.config.ItemsPerLine <= 0 {
		return fmt.Errorf("--days and --items must be positive")
	}
	if cmd.config.Load <= 0 || cmd.config.Load > 1.5 {
		return fmt.Errorf("--load must be in (0, 1.5], got %g", cmd.config.Load)
	}
	start, err := entities.ParseDate(cmd.config.Start)
	if err != nil {
		return err
	}

	progress(cmd.out, cmd.config.Verbose, "🔧 Generating %d days for %d lines, %d items per line at %.0f%% load",
		cmd.config.Days, len(cmd.plant.Lines), cmd.config.ItemsPerLine, cmd.config.Load*100)

	entries, err := cmd.generatePlan(ctx, start)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cmd.config.Output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(cmd.config.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cmd.config.Output, err)
	}
	defer file.Close()

	if err := writePlanCSV(file, entries); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}

	_, _ = successColor.Fprintf(cmd.out, "✓ Generated %d plan rows in %s\n", len(entries), cmd.config.Output)
	return nil
}

// generatePlan fills every workday of every line close to the target
// load. Weekends get one closed zero-quantity row per line so the
// calendar stays authoritative.
func (cmd *GenerateCommand) generatePlan(ctx context.Context, start time.Time) ([]*entities.PlanEntry, error) {
	lines := cmd.plant.Capacities().Lines()
	catalog := cmd.generateCatalog(lines)

	var entries []*entities.PlanEntry
	for d := 0; d < cmd.config.Days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := start.AddDate(0, 0, d)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday

		for _, line := range lines {
			if weekend {
				entry, err := entities.NewPlanEntry(date, line, entities.ItemName(catalog[line][0].name), 0, 0, catalog[line][0].pallet, entities.NonWorkday)
				if err != nil {
					return nil, err
				}
				entries = append(entries, entry)
				continue
			}

			dayEntries, err := cmd.generateDay(date, line, catalog[line])
			if err != nil {
				return nil, err
			}
			entries = append(entries, dayEntries...)
		}
	}
	return entries, nil
}

func (cmd *GenerateCommand) generateDay(date time.Time, line entities.LineID, items []generatedItem) ([]*entities.PlanEntry, error) {
	capacity := entities.Quantity(cmd.plant.Lines[string(line)])
	jitter := 0.9 + cmd.rand.Float64()*0.2
	budget := entities.Quantity(float64(capacity) * cmd.config.Load * jitter)

	picked := cmd.rand.Perm(len(items))[:min(cmd.config.ItemsPerLine, len(items))]
	sort.Ints(picked)

	var entries []*entities.PlanEntry
	for i, idx := range picked {
		item := items[idx]
		share := budget / entities.Quantity(len(picked)-i)
		qty := share.FloorToPallet(item.pallet)
		if qty <= 0 {
			continue
		}
		budget -= qty

		var demand entities.Quantity
		if cmd.rand.Float64() < cmd.config.DemandShare {
			demand = qty
		}

		entry, err := entities.NewPlanEntry(date, line, entities.ItemName(item.name), demand, qty, item.pallet, entities.Workday)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// generateCatalog names items per line with the configured mobility
// markers so every class appears in the generated plan
func (cmd *GenerateCommand) generateCatalog(lines []entities.LineID) map[entities.LineID][]generatedItem {
	pallets := []entities.Quantity{10, 20, 25, 50, 100}
	markers := []string{"FIX"}
	for _, rule := range cmd.plant.MobilityRules {
		markers = append(markers, rule.Marker)
	}

	catalog := make(map[entities.LineID][]generatedItem, len(lines))
	for li, line := range lines {
		n := max(cmd.config.ItemsPerLine*2, len(markers))
		items := make([]generatedItem, n)
		for i := range items {
			items[i] = generatedItem{
				name:   fmt.Sprintf("%s-%c%03d", markers[i%len(markers)], 'A'+li%26, i+1),
				pallet: pallets[cmd.rand.Intn(len(pallets))],
			}
		}
		catalog[line] = items
	}
	return catalog
}

func writePlanCSV(w io.Writer, entries []*entities.PlanEntry) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"plan_date", "line", "product_name", "qty_0", "qty_1", "plt", "is_workday"})
	for _, e := range entries {
		_ = cw.Write([]string{
			e.Date.Format(entities.DateLayout),
			string(e.Line),
			string(e.Item),
			strconv.FormatInt(int64(e.DemandQty), 10),
			strconv.FormatInt(int64(e.ActualQty), 10),
			strconv.FormatInt(int64(e.PalletSize), 10),
			strconv.FormatBool(e.Workday == entities.Workday),
		})
	}
	cw.Flush()
	return cw.Error()
}

func newGenerateCmd(global *globalOptions) *cobra.Command {
	var cfg GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic plan CSV for the configured lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plant, err := config.Load(global.configFile)
			if err != nil {
				return err
			}
			cfg.Verbose = global.verbose
			return NewGenerateCommand(cfg, plant, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cfg.Start, "start", time.Now().Format(entities.DateLayout), "First plan date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&cfg.Days, "days", 14, "Calendar days to generate")
	cmd.Flags().IntVar(&cfg.ItemsPerLine, "items", 6, "Items planned per line and workday")
	cmd.Flags().Float64Var(&cfg.Load, "load", 0.85, "Target load as a fraction of capacity")
	cmd.Flags().Float64Var(&cfg.DemandShare, "demand-share", 0.3, "Fraction of rows with a due quantity")
	cmd.Flags().StringVar(&cfg.Output, "output", "plan.csv", "Output CSV path")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "Random seed (0 = time based)")
	return cmd
}
