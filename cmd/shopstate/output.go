package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/CreativeUnicorns/shopstate"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func printProducts(w io.Writer, products []shopstate.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSLUG\tNAME\tPRICE\tRATING")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f (%d)\n", p.ID, p.Slug, p.Name, formatPrice(p.Price()), p.Rating, p.ReviewCount)
	}
	return tw.Flush()
}

// resolveProduct looks ref up as a numeric id, or as a slug otherwise.
func (a *app) resolveProduct(ctx context.Context, ref string) (shopstate.Product, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.source.Product(ctx, id)
	}
	return a.source.ProductBySlug(ctx, ref)
}
