package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/alexballas/xexplorer/cache"
	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/internal/logging"
	"github.com/alexballas/xexplorer/query"
)

var resolvePath string

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE...",
	Short: "Ingest JSON pages in order and print the resolved items",
	Long: `Each FILE holds one page: {"items": [...], "nodes": [...]}. Nodes are
merged into one normalized cache in file order, so later pages may reference
nodes of earlier ones. --path selects the page inside a larger document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := readPages(args, resolvePath)
		if err != nil {
			return err
		}
		return resolvePages(cmd.Context(), cmd.OutOrStdout(), pages)
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&resolvePath, "path", "p", "", "JSONPath of the page object, e.g. $.data.page")
	rootCmd.AddCommand(resolveCmd)
}

func readPages(files []string, path string) ([]query.Page, error) {
	var expr jp.Expr
	if path != "" {
		var err error
		if expr, err = jp.ParseString(path); err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
		}
	}

	pages := make([]query.Page, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		doc, err := oj.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if expr != nil {
			if doc = expr.First(doc); doc == nil {
				return nil, fmt.Errorf("%s: nothing at %s", file, path)
			}
		}
		page, err := query.PageOf(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// resolvePages runs pages through the same query pipeline the explorer uses
// and prints one line per item.
func resolvePages(ctx context.Context, out io.Writer, pages []query.Page) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c := cache.New()
	q := query.NewInfinite(query.Options{
		Cache:  c,
		Source: &query.StaticSource{Pages: pages},
		Logger: logging.Named("resolve"),
	})

	for q.HasNextPage() {
		q.FetchNextPage(ctx)
		q.Wait()
		if err := q.Err(); err != nil {
			return fmt.Errorf("page %d: %w", q.PageCount()+1, err)
		}
	}

	for i, item := range q.Items() {
		d := entity.DataOf(item)
		fmt.Fprintf(out, "%d\t%s\t%s\t%s", i, item.Kind(), entity.IdentityOf(item), d.FullName())
		if d.Path != "" {
			fmt.Fprintf(out, "\t%s", d.Path)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d items, %d nodes (%s)\n", len(q.Items()), c.Len(), strings.Join(c.Types(), ", "))
	return nil
}
