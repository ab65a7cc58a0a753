package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"

	"github.com/idelchi/largest/internal/config"
	"github.com/idelchi/largest/internal/scan"
)

// Render writes result in the given format. Colour is only used when
// colored is set and the terminal supports it.
func Render(w io.Writer, format config.Format, result *scan.Result, colored bool) error {
	switch format {
	case config.FormatJSON:
		return PrintJSON(result, w)
	case config.FormatPlain:
		return PrintPlain(result, w)
	case config.FormatTable:
		return PrintTable(result, w, colored)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// PrintJSON outputs the result in JSON format.
func PrintJSON(result *scan.Result, writer io.Writer) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPlain outputs one "size<TAB>path" line per entry, largest first.
func PrintPlain(result *scan.Result, writer io.Writer) error {
	for _, e := range result.Entries {
		if _, err := fmt.Fprintf(writer, "%s\t%s\n", humanize.IBytes(e.Size), e.Path); err != nil {
			return err
		}
	}

	return nil
}

// PrintTable outputs the ranked entries in human-readable table format.
func PrintTable(result *scan.Result, writer io.Writer, colored bool) error {
	summary := fmt.Sprintf("%d files searched, %d matched (%s) in %v",
		result.Counts.Visited,
		result.Counts.Matched,
		humanize.IBytes(result.Counts.Bytes),
		result.Elapsed.Round(time.Millisecond))

	if result.Counts.Errors > 0 {
		summary += fmt.Sprintf(", %d unreadable", result.Counts.Errors)
	}

	faint := color.New(color.Faint)
	if !colored {
		faint.DisableColor()
	}

	if _, err := faint.Fprintln(writer, summary); err != nil {
		return err
	}

	if len(result.Entries) == 0 {
		_, err := fmt.Fprintln(writer, "No matches")

		return err
	}

	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Rank", "Size", "Path"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for i, e := range result.Entries {
		table.Append([]string{strconv.Itoa(i + 1), humanize.IBytes(e.Size), e.Path})
	}

	table.Render()

	return nil
}

// PrintHeader writes the run header used for saved reports.
func PrintHeader(writer io.Writer, result *scan.Result, invoked, version string) error {
	_, err := fmt.Fprintf(writer,
		"Invocation: %s\nVersion:    %s\nStarted:    %s\nFinished:   %s\n\n",
		invoked,
		version,
		result.Start.Format(time.RFC3339),
		result.End.Format(time.RFC3339))

	return err
}
