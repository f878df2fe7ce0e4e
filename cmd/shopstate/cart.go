package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/shopstate"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart",
	}
	cmd.AddCommand(newCartAddCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Cart().RemoveFromCart(args[0])
			return a.printCart(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "update <item-id> <quantity>",
		Short: "Set the quantity of a cart line; 0 or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			a.session.Cart().UpdateQuantity(args[0], qty)
			return a.printCart(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Cart().ClearCart()
			return a.printCart(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printCart(cmd)
		},
	})
	return cmd
}

func newCartAddCmd(a *app) *cobra.Command {
	var (
		quantity  int
		variantID int64
	)
	cmd := &cobra.Command{
		Use:   "add <product-id|slug>",
		Short: "Add a product to the cart",
		Long: `Add puts a product into the cart. Without --variant the product's first
variant is used. Adding the same variant again increases its quantity.

Example:
  shopstate cart add 42
  shopstate cart add antep-fistigi --qty 2 --variant 51`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.resolveProduct(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve product: %w", err)
			}
			if variantID != 0 {
				if _, ok := product.Variant(variantID); !ok {
					return fmt.Errorf("product %d has no variant %d", product.ID, variantID)
				}
			} else if _, ok := product.DefaultVariant(); !ok {
				return fmt.Errorf("product %d has no variants", product.ID)
			}

			a.session.Cart().AddToCart(product, quantity, variantID)
			return a.printCart(cmd)
		},
	}
	cmd.Flags().IntVar(&quantity, "qty", 1, "quantity to add")
	cmd.Flags().Int64Var(&variantID, "variant", 0, "variant id (default: first variant)")
	return cmd
}

type cartView struct {
	Items     []shopstate.CartLineItem `json:"items"`
	ItemCount int                      `json:"itemCount"`
	Subtotal  float64                  `json:"subtotal"`
}

func (a *app) printCart(cmd *cobra.Command) error {
	c := a.session.Cart()
	view := cartView{Items: c.Items(), ItemCount: c.ItemCount(), Subtotal: c.Subtotal()}
	if view.Items == nil {
		view.Items = []shopstate.CartLineItem{}
	}

	out := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(out, view)
	}
	if len(view.Items) == 0 {
		_, err := fmt.Fprintln(out, "Cart is empty.")
		return err
	}

	tw := newTable(out)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tPRICE\tQTY\tTOTAL")
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", item.ID, item.Product.Name,
			formatPrice(item.Variant.Price), item.Quantity, formatPrice(item.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%s\n", view.ItemCount, formatPrice(view.Subtotal))
	return tw.Flush()
}
