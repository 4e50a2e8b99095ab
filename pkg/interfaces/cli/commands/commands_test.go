package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `lines:
  LINE1: 3300
  LINE2: 3700
  LINE3: 3600
mobility_rules:
  - marker: T6
    class: MultiLineFlexible
`

const testPlan = `plan_date,line,product_name,qty_0,qty_1,plt,is_workday
2026-01-21,LINE1,FIX-GAMMA,0,1000,50,true
2026-01-21,LINE1,T6-ALPHA,0,400,50,true
2026-01-21,LINE1,T6-BETA,0,300,50,true
2026-01-21,LINE2,FILLER-B,0,3400,100,true
2026-01-21,LINE3,FILLER-C,0,3200,100,true
2026-01-23,LINE1,T6-BETA,300,300,50,true
`

type fixture struct {
	dir    string
	config string
	plan   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "rebalance.yaml"),
		plan:   filepath.Join(dir, "plan.csv"),
	}
	if err := os.WriteFile(f.config, []byte(testConfig), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if err := os.WriteFile(f.plan, []byte(testPlan), 0o644); err != nil {
		t.Fatalf("Failed to write plan: %v", err)
	}
	return f
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeReport(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var report map[string]interface{}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not a JSON report: %v\n%s", err, out)
	}
	return report
}

func TestRootCommand_Help(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"rebalance", "reallocate", "facts", "import"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %q", out)
	}
}

func TestReallocate_FromCSV(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "reallocate", "--config", f.config, "--plan", f.plan,
		"--date", "2026-01-21", "--line", "LINE1", "--delta=-500", "--format", "json")
	if err != nil {
		t.Fatalf("reallocate failed: %v", err)
	}

	report := decodeReport(t, out)
	if report["achieved"] != float64(500) || report["status"] != "OK" {
		t.Errorf("Expected 500 OK, got %v %v", report["achieved"], report["status"])
	}
	if report["strategy_source"] != "fallback" {
		t.Errorf("Expected fallback strategy, got %v", report["strategy_source"])
	}
	if moves, _ := report["moves"].([]interface{}); len(moves) == 0 {
		t.Error("Expected moves in report")
	}
}

func TestReallocate_WithProposalFile(t *testing.T) {
	f := newFixture(t)
	proposalPath := filepath.Join(f.dir, "proposal.json")
	proposal := `{"strategy": "split", "moves": [
		{"item": "T6-ALPHA", "qty": 200, "from": "2026-01-21_LINE1", "to": "2026-01-21_LINE2", "reason": "flexible"},
		{"item": "FIX-GAMMA", "qty": 100, "from": "2026-01-21_LINE1", "to": "2026-01-21_LINE3", "reason": "fixed item"}
	]}`
	if err := os.WriteFile(proposalPath, []byte(proposal), 0o644); err != nil {
		t.Fatalf("Failed to write proposal: %v", err)
	}

	out, err := run(t, "reallocate", "--config", f.config, "--plan", f.plan,
		"--date", "2026-01-21", "--line", "LINE1", "--delta=-300",
		"--proposal", proposalPath, "--format", "json")
	if err != nil {
		t.Fatalf("reallocate failed: %v", err)
	}

	report := decodeReport(t, out)
	if report["achieved"] != float64(300) {
		t.Errorf("Expected 300 achieved, got %v", report["achieved"])
	}
	if report["strategy"] != "split" || !strings.HasPrefix(report["strategy_source"].(string), "file:") {
		t.Errorf("Expected file strategy, got %v from %v", report["strategy"], report["strategy_source"])
	}

	diags, _ := report["diagnostics"].([]interface{})
	found := false
	for _, d := range diags {
		if d.(map[string]interface{})["kind"] == "ProposalInvalid" {
			found = true
		}
	}
	if !found {
		t.Error("Expected the fixed-line candidate to be reported invalid")
	}
}

func TestImportThenReallocateFromDB(t *testing.T) {
	f := newFixture(t)
	db := filepath.Join(f.dir, "plan.db")

	out, err := run(t, "import", "--plan", f.plan, "--db", db)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 6 rows") {
		t.Errorf("Expected import summary, got %q", out)
	}

	out, err = run(t, "reallocate", "--config", f.config, "--db", db,
		"--date", "2026-01-21", "--line", "LINE1", "--delta=-500", "--format", "json")
	if err != nil {
		t.Fatalf("reallocate failed: %v", err)
	}
	if report := decodeReport(t, out); report["achieved"] != float64(500) {
		t.Errorf("Expected 500 achieved from database, got %v", report["achieved"])
	}
}

func TestFacts(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "facts", "--config", f.config, "--plan", f.plan,
		"--date", "2026-01-21", "--line", "LINE1", "--delta=-500")
	if err != nil {
		t.Fatalf("facts failed: %v", err)
	}
	for _, want := range []string{"Target: 2026-01-21_LINE1", "T6-ALPHA", "Destination capacity:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected facts to contain %q\n%s", want, out)
		}
	}
}

func TestReallocate_InputErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"reallocate", "--date", "2026-01-21", "--line", "LINE1", "--delta=-5"}},
		{"both sources", []string{"reallocate", "--plan", f.plan, "--db", "x.db", "--date", "2026-01-21", "--line", "LINE1"}},
		{"missing date", []string{"reallocate", "--plan", f.plan, "--line", "LINE1"}},
		{"bad date", []string{"reallocate", "--config", f.config, "--plan", f.plan, "--date", "21-01-2026", "--line", "LINE1"}},
		{"delta and utilization", []string{"reallocate", "--plan", f.plan, "--date", "2026-01-21", "--line", "LINE1", "--delta=5", "--utilization", "80"}},
		{"unknown line", []string{"reallocate", "--config", f.config, "--plan", f.plan, "--date", "2026-01-21", "--line", "LINE9", "--delta=-5"}},
		{"bad format", []string{"reallocate", "--config", f.config, "--plan", f.plan, "--date", "2026-01-21", "--line", "LINE1", "--delta=-50", "--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
