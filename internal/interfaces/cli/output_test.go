package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

type fakeTable struct {
	Name string `json:"name"`
}

func (fakeTable) TableHeaders() []string { return []string{"NAME", "SEATS"} }
func (fakeTable) TableRows() [][]string {
	return [][]string{{"PVV", "37"}, {"GL/PvdA", "25"}}
}
func (fakeTable) Summary() string { return "two parties" }

func commandWithFormat(format string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, &CLIContext{
		OutputFormat: format,
		NoColor:      true,
	}))
	return cmd, &buf
}

func TestFormatTable(t *testing.T) {
	out := RenderTable([]string{"A", "LONGER"}, [][]string{{"xyz", "1"}, {"q"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "A    LONGER" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "---  ------" {
		t.Errorf("unexpected separator %q", lines[1])
	}
	if lines[2] != "xyz  1"+strings.Repeat(" ", 5) {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "q"+strings.Repeat(" ", 10) {
		t.Errorf("short rows should be padded, got %q", lines[3])
	}

	if RenderTable(nil, nil) != "" {
		t.Error("no headers should render nothing")
	}
}

func TestPrintResult_Table(t *testing.T) {
	cmd, buf := commandWithFormat(FormatTable)
	if err := PrintResult(cmd, fakeTable{}); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"two parties", "NAME", "GL/PvdA", "37"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResult_CSV(t *testing.T) {
	cmd, buf := commandWithFormat(FormatCSV)
	if err := PrintResult(cmd, fakeTable{}); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	want := "NAME,SEATS\nPVV,37\nGL/PvdA,25\n"
	if buf.String() != want {
		t.Errorf("csv output = %q, want %q", buf.String(), want)
	}
}

func TestPrintResult_CSVRequiresTable(t *testing.T) {
	cmd, _ := commandWithFormat(FormatCSV)
	err := PrintResult(cmd, map[string]int{"x": 1})
	if !errors.IsCode(err, errors.CodeInvalidParam) {
		t.Errorf("expected CodeInvalidParam, got %v", err)
	}
}

func TestPrintResult_JSON(t *testing.T) {
	cmd, buf := commandWithFormat(FormatJSON)
	if err := PrintResult(cmd, fakeTable{Name: "x"}); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "{\n  \"name\": \"x\"\n}" {
		t.Errorf("unexpected json %q", buf.String())
	}
}

func TestPrintResult_NoContextFallsBackToJSON(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	if err := PrintResult(cmd, []int{1, 2}); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Errorf("expected json array, got %q", buf.String())
	}
}

func TestPrintResult_TextFallback(t *testing.T) {
	cmd, buf := commandWithFormat(FormatTable)
	if err := PrintResult(cmd, "plain message"); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	if buf.String() != "plain message\n" {
		t.Errorf("unexpected text output %q", buf.String())
	}
}

func TestIsTerminal_Buffer(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is never a terminal")
	}
}
