package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/logger"
)

var (
	searchMode      string
	searchPage      int
	searchJSON      bool
	searchDebug     bool
	searchNoReindex bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches tweets, Spaces and Discord messages.

Every search first ensures the index and re-writes each stored document so
that none is missed. On large stores pass --no-reindex to skip that pass
once the index is known to be current.

Query modes:
  weighted - match the text in every field; username, handle, title and
             author count most, links least (default)
  raw      - pass the text to RediSearch as a query expression
  fuzzy    - substring match with special characters escaped`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "query mode: weighted, raw or fuzzy")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "1-based results page")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "print the compiled query expression")
	searchCmd.Flags().BoolVar(&searchNoReindex, "no-reindex", false, "skip the reindex pass; the index must already exist and match the schema")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := services(cmd)
	if err != nil {
		return err
	}
	if svc.Search == nil || svc.Index == nil {
		return errors.New("search service not configured")
	}

	var mode domain.QueryMode
	if searchMode != "" {
		if mode, err = domain.ParseQueryMode(searchMode); err != nil {
			return err
		}
	}

	ctx := commandContext(cmd)
	ensure := svc.Index.EnsureIndexReady
	if searchNoReindex {
		ensure = svc.Index.CheckIndexReady
	}
	if _, err := ensure(ctx); err != nil {
		return fmt.Errorf("index not ready: %w", err)
	}

	if searchDebug {
		q, err := svc.Search.Compile(args[0], mode)
		if err != nil {
			return err
		}
		cmd.Printf("Query (%s): %s\n", q.Mode, q.Expression)
	}

	page, err := svc.Search.Search(ctx, args[0], mode, searchPage)
	if err != nil {
		return describeSearchError(err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, page)
	}
	outputSearchText(cmd, page)
	return nil
}

// describeSearchError adds a hint for the failures a user can act on.
func describeSearchError(err error) error {
	var serr *domain.SearchError
	if !errors.As(err, &serr) {
		return fmt.Errorf("search failed: %w", err)
	}
	switch serr.Kind {
	case domain.SearchQueryRejected:
		return fmt.Errorf("%w (check the query syntax or use --mode fuzzy)", err)
	case domain.SearchIndexMissing:
		return fmt.Errorf("%w (run 'searchdash index ensure')", err)
	default:
		if serr.Kind.Retryable() {
			return fmt.Errorf("%w (try again)", err)
		}
		return err
	}
}

type resultJSON struct {
	Key    string            `json:"key"`
	Shape  string            `json:"shape"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
}

type pageJSON struct {
	Query      string       `json:"query"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageCount  int          `json:"page_count"`
	NextOffset int          `json:"next_offset"`
	Results    []resultJSON `json:"results"`
}

func outputSearchJSON(cmd *cobra.Command, page *domain.ResultPage) error {
	out := pageJSON{
		Query:      page.Query,
		Total:      page.Total,
		Page:       page.Page,
		PageCount:  page.PageCount,
		NextOffset: page.NextOffset,
		Results:    make([]resultJSON, 0, len(page.Items)),
	}
	for _, item := range page.Items {
		out.Results = append(out.Results, resultJSON{
			Key:    item.Key,
			Shape:  item.Shape.String(),
			Score:  item.Score,
			Fields: item.Fields,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, page *domain.ResultPage) {
	if len(page.Items) == 0 {
		if page.Total > 0 {
			cmd.Printf("No results on page %d of %d.\n", page.Page, page.PageCount)
			return
		}
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Results (page %d of %d, %d total):\n", page.Page, page.PageCount, page.Total)
	cmd.Println()
	for i, item := range page.Items {
		cmd.Printf("  [%d] %s: %s (%.2f)\n", page.Offset+i+1, item.Shape, item.Headline(), item.Score)
		for _, name := range detailFields(item) {
			if v, ok := item.Get(name); ok && v != "" {
				cmd.Printf("      %s: %s\n", name, v)
			}
		}
		cmd.Printf("      key: %s\n", item.Key)
		cmd.Println()
	}

	if page.HasMore() {
		cmd.Printf("More results: --page %d\n", page.Page+1)
	}
	logger.Debug("Rendered %d results", len(page.Items))
}

// detailFields lists the fields shown under the headline for each shape.
// Unknown shapes show every field.
func detailFields(item domain.ResultItem) []string {
	switch item.Shape {
	case domain.ShapeTweet, domain.ShapeSpace:
		return []string{"username", "handle", "source"}
	case domain.ShapeDiscordMessage:
		return []string{"author", "guild", "channel", "message_link"}
	default:
		names := make([]string, 0, len(item.Fields))
		for name := range item.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}
}
