package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/sitesearch/index"
	"github.com/jonwraymond/sitesearch/server"
)

var queryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Run a one-off search against the content directory",
	Long: `Query builds the index from the content directory, runs one search and
prints the ranked results. Body text is never printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntP("limit", "n", 0, "maximum results (default from config, 8)")
	queryCmd.Flags().StringP("type", "t", "", "restrict to one content type: blog or projects")
	queryCmd.Flags().Bool("scores", false, "include ranking scores")
	queryCmd.Flags().Bool("json", false, "print JSON instead of a table")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	rawType, _ := cmd.Flags().GetString("type")
	withScores, _ := cmd.Flags().GetBool("scores")
	asJSON, _ := cmd.Flags().GetBool("json")

	if limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	t := index.Type(rawType)
	if t != "" && !t.Valid() {
		return fmt.Errorf("unknown type %q (want blog or projects)", rawType)
	}

	a := newApp(cfg, os.Stderr)
	if _, err := a.engine.Rebuild(cmd.Context(), a.source); err != nil {
		return err
	}
	srv, err := a.server()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	resp := server.NewSearchResponse(query, t, srv.Search(query, limit, t), withScores)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return printResults(cmd.OutOrStdout(), resp)
}

func printResults(w io.Writer, resp server.SearchResponse) error {
	if resp.Count == 0 {
		_, err := color.New(color.FgYellow).Fprintf(w, "No results for %q\n", resp.Query)
		return err
	}

	header := []string{"ID", "TITLE", "TAGS"}
	if resp.Scores != nil {
		header = append(header, "SCORE")
	}
	rows := make([][]string, 0, len(resp.Results))
	for i, r := range resp.Results {
		row := []string{r.ID, r.Title, strings.Join(r.Tags, ", ")}
		if resp.Scores != nil {
			row = append(row, strconv.FormatFloat(resp.Scores[i], 'f', 3, 64))
		}
		rows = append(rows, row)
	}

	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}
