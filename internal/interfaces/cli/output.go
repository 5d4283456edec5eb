package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

func parseOutputFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", errors.InvalidParam(fmt.Sprintf("unsupported output format %q (want table, json or csv)", s))
	}
}

// tableProvider is implemented by results that render as rows.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// summarizer adds a heading line above a table.
type summarizer interface {
	Summary() string
}

// styles holds the lipgloss styles of the table renderer. The zero value
// renders plain text.
type styles struct {
	header  lipgloss.Style
	summary lipgloss.Style
	err     lipgloss.Style
	ok      lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{header: plain, summary: plain, err: plain, ok: plain}
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		summary: lipgloss.NewStyle().Faint(true),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		// Fallback to JSON if context unavailable.
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case FormatJSON:
		return printJSON(cmd, data)
	case FormatCSV:
		return printCSV(cmd, data)
	default:
		return printTable(cmd, data, newStyles(cliCtx.NoColor))
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode json output")
	}
	return nil
}

// printCSV writes the header and rows of a tableProvider as CSV.
func printCSV(cmd *cobra.Command, data interface{}) error {
	tp, ok := data.(tableProvider)
	if !ok {
		return errors.InvalidParam("result cannot be rendered as csv")
	}
	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write(tp.TableHeaders()); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write csv header")
	}
	if err := w.WriteAll(tp.TableRows()); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write csv rows")
	}
	return nil
}

// printTable outputs data as a table if it implements tableProvider,
// otherwise falls back to text.
func printTable(cmd *cobra.Command, data interface{}, st styles) error {
	out := cmd.OutOrStdout()
	if s, ok := data.(summarizer); ok {
		if line := s.Summary(); line != "" {
			fmt.Fprintln(out, st.summary.Render(line))
		}
	}

	tp, ok := data.(tableProvider)
	if !ok {
		return printText(cmd, data)
	}

	table := RenderTable(tp.TableHeaders(), tp.TableRows())
	header, body, _ := strings.Cut(table, "\n")
	fmt.Fprintln(out, st.header.Render(header))
	fmt.Fprint(out, body)
	return nil
}

// printText outputs data as a simple string representation to stdout.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	st := newStyles(!isTerminal(cmd.ErrOrStderr()))
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", st.err.Render("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	noColor := true
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		noColor = cliCtx.NoColor
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", newStyles(noColor).ok.Render("OK:"), msg)
}

// RenderTable renders headers and rows as an aligned ASCII table.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if w := lipgloss.Width(row[i]); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	var sb strings.Builder

	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(padRight(h, colWidths[i]))
	}
	sb.WriteString("\n")

	for i, w := range colWidths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < len(headers); i++ {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

//Personal.AI order the ending
