package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pangolin/pkg/icon"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		matchTags  bool
		matchTitle bool
		manifest   string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search icons by tag or id",
		Long: `Search matches the query case-insensitively as a substring. With --tags an
icon matches when any of its tags contains the query; otherwise --title
matches against the icon id. Without either flag no search is run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.loadRegistry(cmd.Context(), cfg, manifest)
			if err != nil {
				return err
			}

			results := reg.Search(args[0], icon.SearchOptions{
				MatchTags:  matchTags,
				MatchTitle: matchTitle,
				Logger:     loggerFromContext(cmd.Context()),
			})
			return writeResults(cmd.OutOrStdout(), args[0], results)
		},
	}

	cmd.Flags().BoolVar(&matchTags, "tags", false, "match against tags")
	cmd.Flags().BoolVar(&matchTitle, "title", false, "match against icon ids")
	cmd.Flags().StringVar(&manifest, "manifest", "", "icons.json to search (default: <output>/icons.json)")

	return cmd
}

func writeResults(w io.Writer, query string, results []icon.Record) error {
	if len(results) == 1 && results[0].IsDiagnostic() {
		printWarning("%s (use --tags or --title)", results[0].Diagnostic)
		return nil
	}
	if len(results) == 0 {
		printInfo("No icons match %q", query)
		return nil
	}
	_, err := fmt.Fprintln(w, resultsTable(results).Render())
	return err
}

// resultsTable lays out records as id, tags and path size.
func resultsTable(results []icon.Record) *table.Table {
	rows := make([][]string, len(results))
	for i, rec := range results {
		rows[i] = []string{rec.ID, formatTags(rec.Tags), fmt.Sprintf("%d B", len(rec.PathData))}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Icon", "Tags", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 2:
				return StyleDim
			}
			return StyleTag
		})
}
