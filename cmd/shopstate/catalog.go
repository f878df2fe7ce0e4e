package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/shopstate/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newCatalogSearchCmd(a))
	cmd.AddCommand(newCatalogCategoryCmd(a))
	return cmd
}

// searchFetchLimit bounds the result set that search sorts locally.
const searchFetchLimit = 1000

type listFlags struct {
	sort  string
	page  int
	limit int
}

func (f *listFlags) register(cmd *cobra.Command, defaultSort catalog.SortKey) {
	cmd.Flags().StringVar(&f.sort, "sort", string(defaultSort), "relevant, popular, priceLowToHigh, priceHighToLow, rating or newest")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.limit, "limit", catalog.DefaultPageSize, "products per page")
}

func newCatalogSearchCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Search products by name, description or brand",
		Long: `Search matches products containing any of the terms.

Example:
  shopstate catalog search fıstık
  shopstate catalog search bal kaymak --sort priceLowToHigh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sortKey, err := catalog.ParseSortKey(f.sort)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			// sort the whole result set before paging
			page, err := a.source.Search(cmd.Context(), query, catalog.SearchQuery{Limit: searchFetchLimit})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			result := catalog.Paginate(catalog.SortProducts(page.Products, sortKey), f.page, f.limit)
			return a.printPage(cmd, result)
		},
	}
	f.register(cmd, catalog.SortRelevant)
	return cmd
}

func newCatalogCategoryCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "category <slug>",
		Short: "List the products of a category and its direct subcategories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sortKey, err := catalog.ParseSortKey(f.sort)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			category, err := a.source.CategoryBySlug(ctx, args[0])
			if err != nil {
				return fmt.Errorf("category %q: %w", args[0], err)
			}
			page, err := a.source.Products(ctx, catalog.ProductQuery{
				Page:       f.page,
				Limit:      f.limit,
				CategoryID: category.ID,
				SortBy:     sortKey,
			})
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}

			if !a.jsonMode {
				trail := category.Name
				if tree, err := a.source.Categories(ctx); err == nil {
					if parent, ok := catalog.ParentCategory(tree, category.ID); ok {
						trail = parent.Name + " / " + trail
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), trail)
			}
			return a.printPage(cmd, page)
		},
	}
	f.register(cmd, catalog.SortNewest)
	return cmd
}

func (a *app) printPage(cmd *cobra.Command, page catalog.ProductPage) error {
	out := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(out, page)
	}
	if err := printProducts(out, page.Products); err != nil {
		return err
	}
	if page.TotalPages > 1 {
		_, err := fmt.Fprintf(out, "page %d of %d (%d products)\n", page.Page, page.TotalPages, page.Total)
		return err
	}
	return nil
}
