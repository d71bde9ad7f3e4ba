package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/csheth/cardscout/internal/format"
	"github.com/csheth/cardscout/internal/margins"
	"github.com/csheth/cardscout/internal/stock"
)

func newLookupCmd() *cobra.Command {
	var pick int
	var listOnly bool
	cmd := &cobra.Command{
		Use:   "lookup <card name>",
		Short: "Search once and print seller stock as tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			candidates, err := a.client.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}
			if len(candidates) == 0 {
				fmt.Fprintf(out, "No cards found for %q.\n", query)
				return nil
			}
			renderCandidates(out, candidates)
			if listOnly {
				return nil
			}
			if pick < 0 || pick >= len(candidates) {
				return fmt.Errorf("--pick %d out of range, %d candidates", pick, len(candidates))
			}

			chosen := candidates[pick]
			fmt.Fprintf(out, "\nChecking sellers for %s (%s)\n", chosen.Name, chosen.CardID)
			var listings []margins.Listing
			summary := a.stock.Run(cmd.Context(), chosen.CardID, func(event stock.Event) bool {
				switch event.Kind {
				case stock.EventListing:
					listings = append(listings, *event.Listing)
				case stock.EventOutOfStock:
					fmt.Fprintln(out, format.OutOfStockNotice(event.ScraperID))
				}
				return true
			})
			if err := cmd.Context().Err(); errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, "Task was cancelled")
				return nil
			}
			renderListings(out, listings)
			fmt.Fprintf(out, "Checked %d sellers: %d in stock, %d out of stock.\n", summary.Checked, summary.InStock, summary.OutOfStock)
			return nil
		},
	}
	cmd.Flags().IntVar(&pick, "pick", 0, "index of the candidate to check stock for")
	cmd.Flags().BoolVar(&listOnly, "list", false, "only print the matching cards")
	return cmd
}

func renderCandidates(out io.Writer, candidates []margins.Candidate) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Card", "Released", "Card ID"})
	for i, c := range candidates {
		t.AppendRow(table.Row{i, c.Name, c.ReleasedAt, c.CardID})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderListings(out io.Writer, listings []margins.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(out, "No seller has this card in stock.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{format.FieldScraperID, format.FieldName, format.FieldSetName, format.FieldPrice, format.FieldStock, format.FieldCondition, format.FieldFoil, format.FieldURL})
	for _, l := range listings {
		t.AppendRow(table.Row{l.ScraperID, l.Name, l.SetName, format.Price(l), l.Stock, l.Condition, l.Foil, l.URL})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: format.FieldPrice, Align: text.AlignRight},
		{Name: format.FieldStock, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
