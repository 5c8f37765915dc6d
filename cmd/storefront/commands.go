package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/checkout"
)

func registerCommands() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	productsCmd.Flags().StringVar(&productSearch, "search", "", "search query")
	productsCmd.Flags().StringVar(&productCategory, "category", "", "category filter")
	productsCmd.Flags().IntVar(&productLimit, "limit", 20, "maximum results")

	checkoutCmd.Flags().StringVar(&shipName, "name", "", "recipient name")
	checkoutCmd.Flags().StringVar(&shipPhone, "phone", "", "contact phone")
	checkoutCmd.Flags().StringVar(&shipEmail, "email", "", "contact email")
	checkoutCmd.Flags().StringVar(&shipAddress, "address", "", "street address")
	checkoutCmd.Flags().StringVar(&shipArea, "area", "", "area")
	checkoutCmd.Flags().StringVar(&shipCity, "city", "", "city")
	checkoutCmd.Flags().StringVar(&shipNotes, "notes", "", "delivery notes")
	checkoutCmd.Flags().StringVar(&payMethod, "payment", "cod", "payment method (cod, bkash, card)")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartUpdateCmd, cartClearCmd)
	wishlistCmd.AddCommand(wishlistShowCmd, wishlistToggleCmd, wishlistClearCmd)
	compareCmd.AddCommand(compareShowCmd, compareAddCmd, compareRemoveCmd)
	voucherCmd.AddCommand(voucherApplyCmd, voucherRemoveCmd)

	rootCmd.AddCommand(loginCmd, logoutCmd, syncCmd, productsCmd,
		cartCmd, wishlistCmd, compareCmd, voucherCmd, checkoutCmd)
}

var (
	loginEmail    string
	loginPassword string

	productSearch   string
	productCategory string
	productLimit    int

	shipName    string
	shipPhone   string
	shipEmail   string
	shipAddress string
	shipArea    string
	shipCity    string
	shipNotes   string
	payMethod   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		tok, err := a.client.Auth().Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return fmt.Errorf("login failed: %s", api.ErrorDetail(err, err.Error()))
		}
		// Triggers the aggregates' login resync.
		a.session.SetToken(tok.AccessToken)
		if err := saveToken(tok.AccessToken); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}
		fmt.Printf("Logged in. Cart: %d items, wishlist: %d items.\n",
			a.cart.ItemCount(), a.wishlist.Count())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		a.session.Clear()
		dropToken()
		fmt.Println("Logged out.")
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh cart and wishlist from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return a.cart.Fetch(ctx) })
		g.Go(func() error { return a.wishlist.Fetch(ctx) })
		if err := g.Wait(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("Cart: %d items (total %.2f), wishlist: %d items.\n",
			a.cart.ItemCount(), a.cart.Total(), a.wishlist.Count())
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		products, err := a.client.Products().List(cmd.Context(), api.ListParams{
			Search:   productSearch,
			Category: productCategory,
			Limit:    productLimit,
		})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tCATEGORY")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.Price, p.Stock, p.Category)
		}
		return w.Flush()
	},
}

var cartCmd = &cobra.Command{Use: "cart", Short: "Manage the cart"}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the server-confirmed cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY")
		for _, item := range a.cart.Items() {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\n", item.ProductID, item.Name, item.UnitPrice, item.Quantity)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("Subtotal: %.2f  Shipping: %.2f  Total: %.2f\n",
			a.cart.Subtotal(), a.cart.ShippingCost(), a.cart.Total())
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		quantity := 1
		if len(args) == 2 {
			if quantity, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}
		if err := a.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		return a.cart.Add(cmd.Context(), productID, quantity)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		if err := a.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		return a.cart.Remove(cmd.Context(), productID)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if err := a.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		return a.cart.UpdateQuantity(cmd.Context(), productID, quantity)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().cart.Clear(cmd.Context())
	},
}

var wishlistCmd = &cobra.Command{Use: "wishlist", Short: "Manage the wishlist"}

var wishlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the server-confirmed wishlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.wishlist.Fetch(cmd.Context()); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tBRAND")
		for _, e := range a.wishlist.Entries() {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", e.ProductID, e.Name, e.Price, e.Brand)
		}
		return w.Flush()
	},
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add or remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		if err := a.wishlist.Fetch(cmd.Context()); err != nil {
			return err
		}
		return a.wishlist.Toggle(cmd.Context(), productID)
	},
}

var wishlistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every wishlist entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.wishlist.Fetch(cmd.Context()); err != nil {
			return err
		}
		result := a.wishlist.Clear(cmd.Context())
		if len(result.Failures) > 0 {
			return fmt.Errorf("%d entries could not be removed", len(result.Failures))
		}
		return nil
	},
}

var compareCmd = &cobra.Command{Use: "compare", Short: "Manage the compare list"}

var compareShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the compare list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tCATEGORY")
		for _, e := range a.compare.Items() {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", e.ProductID, e.Name, e.Price, e.Category)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !a.compare.CanCompare() {
			fmt.Println("Add at least 2 products to compare.")
		}
		return nil
	},
}

var compareAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the compare list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		product, err := a.client.Products().Get(cmd.Context(), productID)
		if err != nil {
			return err
		}
		a.compare.Add(*product)
		return nil
	},
}

var compareRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the compare list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		a.compare.Remove(productID)
		return nil
	},
}

var voucherCmd = &cobra.Command{Use: "voucher", Short: "Manage the applied voucher"}

var voucherApplyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Apply a voucher code against the current cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		result := a.voucher.Apply(cmd.Context(), args[0])
		if !result.OK {
			return fmt.Errorf("%s", result.Message)
		}
		applied := a.voucher.Active()
		fmt.Printf("Applied %s (%s): -%.2f\n", applied.Code, applied.Name, applied.DiscountAmount)
		return nil
	},
}

var voucherRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the applied voucher",
	RunE: func(cmd *cobra.Command, args []string) error {
		newApp().voucher.Remove()
		fmt.Println("Voucher removed.")
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the current cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		summary := a.checkout.Summary()
		fmt.Printf("Subtotal: %.2f  Shipping: %.2f  Discount: %.2f  Payable: %.2f\n",
			summary.Subtotal, summary.Shipping, summary.Discount, summary.Payable)

		orderNumber, err := a.checkout.PlaceOrder(cmd.Context(), checkout.ShippingInfo{
			Name:    shipName,
			Phone:   shipPhone,
			Email:   shipEmail,
			Address: shipAddress,
			Area:    shipArea,
			City:    shipCity,
			Notes:   shipNotes,
		}, checkout.PaymentMethod(payMethod))
		if err != nil {
			return err
		}
		fmt.Println("Order number:", orderNumber)
		return nil
	},
}
