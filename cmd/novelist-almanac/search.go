// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/novelist-almanac/internal/library"
	"github.com/pdiddy/novelist-almanac/internal/render"
	"github.com/pdiddy/novelist-almanac/internal/search"
	"github.com/pdiddy/novelist-almanac/internal/wiki"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List novelists born on a given month and day",
	Long: `Search fetches the births section (誕生日) of the Japanese Wikipedia page
for a month and day, keeps the people whose description mentions the
keyword (小説家 by default), and looks up a thumbnail for each.

Without --month and --day the current date is used. A page with no births
section or no matching people is reported in the output, not as an error.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	date, err := dateFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := wiki.NewClient(cfg.Wiki, logger)

	res, err := search.Search(ctx, client, date, cfg.Search, logger, cmd.ErrOrStderr())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), render.ErrorMessage)
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveResult(cmd, cfg.Library, res); err != nil {
			return err
		}
	}

	output, _ := cmd.Flags().GetString("output")
	return writeResult(cmd.OutOrStdout(), output, res, cfg.Render)
}

// dateFromFlags resolves --today, --month, and --day. With none set the
// date is taken from now.
func dateFromFlags(cmd *cobra.Command, now time.Time) (types.BirthDate, error) {
	today, _ := cmd.Flags().GetBool("today")
	month, _ := cmd.Flags().GetInt("month")
	day, _ := cmd.Flags().GetInt("day")
	monthSet := cmd.Flags().Changed("month")
	daySet := cmd.Flags().Changed("day")

	switch {
	case today && (monthSet || daySet):
		return types.BirthDate{}, errors.New("--today cannot be combined with --month or --day")
	case monthSet != daySet:
		return types.BirthDate{}, errors.New("--month and --day must be given together")
	case monthSet:
		return search.NewDate(month, day)
	default:
		return search.Today(now), nil
	}
}

func saveResult(cmd *cobra.Command, cfg types.LibraryConfig, res search.Result) error {
	store, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(cmd.Context(), res.Date, res.Extracted, res.Cards); err != nil {
		return fmt.Errorf("saving %s: %w", res.Date, err)
	}
	logger.Info("saved search",
		zap.Stringer("date", res.Date),
		zap.Int("cards", len(res.Cards)),
		zap.String("library", store.Dir()))
	fmt.Fprintf(cmd.ErrOrStderr(), "saved %d cards to %s\n", len(res.Cards), store.Dir())
	return nil
}

// writeResult renders res to stdout, or to path when one is given.
func writeResult(stdout io.Writer, path string, res search.Result, cfg types.RenderConfig) error {
	if path == "" {
		return render.Write(stdout, res, cfg)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := render.Write(f, res, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	searchCmd.Flags().Int("month", 0, "birth month (1-12)")
	searchCmd.Flags().Int("day", 0, "birth day (1-31)")
	searchCmd.Flags().Bool("today", false, "search today's date")
	searchCmd.Flags().String("format", string(types.FormatCards), "output format: cards, table, json, or html")
	searchCmd.Flags().String("keyword", "", "description keyword to match (default 小説家)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of cards (default 30)")
	searchCmd.Flags().Int("thumbnail-size", 0, "thumbnail width in pixels (default 96)")
	searchCmd.Flags().Int("concurrency", 0, "parallel thumbnail lookups (default 4)")
	searchCmd.Flags().String("placeholder", "", "image shown for cards without a thumbnail")
	searchCmd.Flags().Bool("save", false, "save the result to the library")
	searchCmd.Flags().String("output", "", "write the rendered result to a file instead of stdout")

	bindFlag("render.format", searchCmd.Flags().Lookup("format"))
	bindFlag("search.keyword", searchCmd.Flags().Lookup("keyword"))
	bindFlag("search.max_results", searchCmd.Flags().Lookup("max-results"))
	bindFlag("search.thumbnail_size", searchCmd.Flags().Lookup("thumbnail-size"))
	bindFlag("search.concurrency", searchCmd.Flags().Lookup("concurrency"))
	bindFlag("render.placeholder_image", searchCmd.Flags().Lookup("placeholder"))

	rootCmd.AddCommand(searchCmd)
}
