// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/novelist-almanac/internal/library"
	"github.com/pdiddy/novelist-almanac/internal/render"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse and export saved searches",
	Long: `Library manages the local SQLite database that "search --save" writes to.
Use subcommands to list saved novelists, see which dates were saved, or
export entries to YAML or JSON.`,
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List saved novelists, optionally filtered",
	Long: `List prints saved novelists in calendar order. A query matches any part
of the name or description; --month and --day restrict the dates.`,
	RunE: runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Query(cmd.Context(), queryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatListOutput(cmd.OutOrStdout(), entries, jsonOutput)
}

func formatListOutput(w io.Writer, entries []library.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved novelists found.")
		return nil
	}

	cards := make([]types.Card, len(entries))
	for i, e := range entries {
		cards[i] = e.Card
	}
	render.CardTable(w, cards)
	fmt.Fprintf(w, "\n%d results\n", len(entries))
	return nil
}

// --- dates subcommand ---

var libraryDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the dates saved in the library",
	Args:  cobra.NoArgs,
	RunE:  runLibraryDates,
}

func runLibraryDates(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	dates, err := store.Dates(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dates)
	}

	if len(dates) == 0 {
		fmt.Fprintln(w, "No saved dates.")
		return nil
	}
	fmt.Fprintf(w, "%-6s  %-9s  %-5s  %s\n", "Date", "Extracted", "Saved", "Fetched")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	for _, d := range dates {
		fmt.Fprintf(w, "%-6s  %-9d  %-5d  %s\n",
			d.Date, d.Extracted, d.Saved, d.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export saved novelists to YAML or JSON",
	Long: `Export writes saved novelists (or a filtered subset) to
<library-dir>/export.yaml or export.json, or to --output. Supports the same
filters as list.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts, output)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts, output)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openLibrary() (*library.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return library.Open(cfg.Library)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) library.QueryOptions {
	month, _ := cmd.Flags().GetInt("month")
	day, _ := cmd.Flags().GetInt("day")
	limit, _ := cmd.Flags().GetInt("limit")

	return library.QueryOptions{
		Query:      strings.Join(args, " "),
		Month:      month,
		Day:        day,
		MaxResults: limit,
	}
}

func init() {
	for _, c := range []*cobra.Command{libraryListCmd, libraryExportCmd} {
		c.Flags().Int("month", 0, "filter by birth month")
		c.Flags().Int("day", 0, "filter by birth day")
	}

	// List flags.
	libraryListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	libraryListCmd.Flags().Bool("json", false, "output results as JSON")

	// Dates flags.
	libraryDatesCmd.Flags().Bool("json", false, "output dates as JSON")

	// Export flags.
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	libraryExportCmd.Flags().String("output", "", "export file (default <library-dir>/export.<format>)")

	// Wire subcommands.
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryDatesCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
