package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/shopstate"
)

func newFavoritesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage the favorites list",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id|slug>",
		Short: "Add a product to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.resolveProduct(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve product: %w", err)
			}
			a.session.Favorites().AddToFavorites(product)
			return a.printFavorites(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Favorites().RemoveFromFavorites(args[0])
			return a.printFavorites(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <product-id|slug>",
		Short: "Add a product to favorites, or remove it if already there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.resolveProduct(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve product: %w", err)
			}
			added := a.session.Favorites().ToggleFavorite(product)

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, map[string]any{"productId": product.ID, "favorite": added})
			}
			if added {
				_, err = fmt.Fprintf(out, "Added %s to favorites.\n", product.Name)
			} else {
				_, err = fmt.Fprintf(out, "Removed %s from favorites.\n", product.Name)
			}
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show favorites in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printFavorites(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the favorites list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Favorites().ClearFavorites()
			return a.printFavorites(cmd)
		},
	})
	return cmd
}

func (a *app) printFavorites(cmd *cobra.Command) error {
	favorites := a.session.Favorites().Favorites()
	if favorites == nil {
		favorites = []shopstate.Product{}
	}

	out := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(out, favorites)
	}
	if len(favorites) == 0 {
		_, err := fmt.Fprintln(out, "No favorites.")
		return err
	}
	return printProducts(out, favorites)
}
