package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"franchise-engine/internal/catalog"
	"franchise-engine/internal/page"
	"franchise-engine/internal/worker"
)

var searchOpts struct {
	catalog  string
	q        string
	industry string
	category string
	order    string
	page     int
	size     int
	timeout  time.Duration
	inline   bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter, sort and page the catalog once and print a table",
	Long: `Runs the search page pipeline against a catalog document and prints
one page of results.

Example:
  engine search --catalog franchises.json --industry food --order min-low
  engine search --catalog https://example.com/franchises.json --q pizza --page 2`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchOpts.catalog, "catalog", "franchises.json", "Catalog file path or http(s) URL")
	f.StringVar(&searchOpts.q, "q", "", "Search term")
	f.StringVar(&searchOpts.industry, "industry", "", "Industry filter (substring of category or industry)")
	f.StringVar(&searchOpts.category, "category", "", "Alias for --industry that wins when both are set")
	f.StringVar(&searchOpts.order, "order", "", "Sort key: min-low, max-high, outlets or alpha")
	f.IntVar(&searchOpts.page, "page", 1, "Page number")
	f.IntVar(&searchOpts.size, "size", 8, "Page size")
	f.DurationVar(&searchOpts.timeout, "timeout", 10*time.Second, "Catalog fetch timeout")
	f.BoolVar(&searchOpts.inline, "inline", false, "Filter on the calling goroutine instead of the worker")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchOpts.size <= 0 {
		return fmt.Errorf("--size must be positive, got %d", searchOpts.size)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), searchOpts.timeout)
	defer cancel()

	listings, err := catalog.NewLoader(searchOpts.catalog, searchOpts.timeout).Load(ctx)
	if err != nil {
		return fmt.Errorf("%w\n%s", err, catalog.UnavailableHint)
	}

	opts := page.Options{PageSize: searchOpts.size, Log: logger}
	if !searchOpts.inline {
		opts.NewWorker = func() *worker.Client { return worker.NewClient(1) }
	}
	c := page.New(page.Search, opts)
	defer c.Close()
	if err := c.Load(ctx, listings); err != nil {
		return err
	}
	if err := c.Apply(ctx, page.ResolveQuery(searchParams(cmd), nil)); err != nil {
		return err
	}

	v := c.View()
	if searchOpts.page != 1 && !c.ChangePage(searchOpts.page) {
		return fmt.Errorf("page %d is out of range (1..%d)", searchOpts.page, max(v.TotalPages, 1))
	}
	v = c.View()
	if logger != nil {
		logger.Debug("search",
			zap.String("q", v.Query.SearchTerm),
			zap.String("industry", v.Query.Industry),
			zap.String("order", string(v.Query.Order)),
			zap.Int("total", v.Total),
		)
	}
	return printView(cmd.OutOrStdout(), v, searchOpts.size)
}

// searchParams turns the flags the user actually set into URL parameters so
// the CLI resolves queries the same way the search page does.
func searchParams(cmd *cobra.Command) url.Values {
	v := url.Values{}
	for flag, val := range map[string]string{
		"q":        searchOpts.q,
		"industry": searchOpts.industry,
		"category": searchOpts.category,
		"order":    searchOpts.order,
	} {
		if cmd.Flags().Changed(flag) {
			v.Set(flag, val)
		}
	}
	return v
}

func printView(w io.Writer, v page.View, size int) error {
	if v.Empty {
		_, err := fmt.Fprintln(w, "No franchises match your search.")
		return err
	}

	data := pterm.TableData{{"#", "Name", "Category", "Min. investment", "Avg. investment", "Outlets"}}
	first := (v.Page-1)*size + 1
	for i, l := range v.Items {
		data = append(data, []string{
			strconv.Itoa(first + i),
			l.Name,
			l.Category,
			string(l.MinInvestment),
			string(l.AvgInvestment),
			string(l.Outlets),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\nPage %d of %d, %s %s\n", table, v.Page, v.TotalPages,
		humanize.Comma(int64(v.Total)), plural(v.Total, "franchise", "franchises"))
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
