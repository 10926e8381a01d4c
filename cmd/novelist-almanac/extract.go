// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/novelist-almanac/internal/extract"
	"github.com/pdiddy/novelist-almanac/internal/render"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract people from a saved births-section HTML fragment",
	Long: `Extract runs the person extractor on local HTML, such as a births section
saved from Wikipedia, without any network access. Input is read from the
named file, or from stdin when the argument is "-" or omitted.

By default only people whose description contains the search keyword are
shown, capped at the search maximum. Use --all to list every record.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	html, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	records := extract.Extract(html)
	if all, _ := cmd.Flags().GetBool("all"); !all {
		keyword := cfg.Search.Keyword
		if k, _ := cmd.Flags().GetString("keyword"); k != "" {
			keyword = k
		}
		records = extract.FilterByKeyword(records, keyword, cfg.Search.MaxResults)
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	}
	render.Records(out, records)
	return nil
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func init() {
	extractCmd.Flags().Bool("all", false, "list every extracted person, not only novelists")
	extractCmd.Flags().String("keyword", "", "description keyword to match (default from config)")
	extractCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(extractCmd)
}
