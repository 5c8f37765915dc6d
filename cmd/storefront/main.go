package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/cart"
	"github.com/example/storefront-client/internal/checkout"
	"github.com/example/storefront-client/internal/compare"
	"github.com/example/storefront-client/internal/notify"
	"github.com/example/storefront-client/internal/session"
	"github.com/example/storefront-client/internal/voucher"
	"github.com/example/storefront-client/internal/wishlist"
)

var (
	apiURL  string
	verbose bool

	logger *zap.Logger
)

// app bundles the aggregates the way the storefront pages consume them.
type app struct {
	session  *session.Session
	client   *api.Client
	notices  *notify.Channel
	cart     *cart.Aggregate
	wishlist *wishlist.Aggregate
	compare  *compare.Aggregate
	voucher  *voucher.Overlay
	checkout *checkout.Service
}

func newApp() *app {
	a := &app{}
	a.session = session.New(logger)
	if tok := loadToken(); tok != "" {
		// Restore before the aggregates subscribe so startup stays offline;
		// commands fetch what they need explicitly.
		a.session.SetToken(tok)
	}

	a.client = api.NewClient(apiURL, a.session, api.WithLogger(logger))
	a.notices = notify.NewChannel()
	a.notices.Subscribe(func(n notify.Notification) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Severity, n.Message)
	})

	a.cart = cart.New(a.client.Cart(), a.session, a.notices, logger)
	a.wishlist = wishlist.New(a.client.Wishlist(), a.session, a.notices, logger)
	a.compare = compare.New(a.notices)
	a.voucher = voucher.NewOverlay(a.client.Vouchers(), a.cart.Subtotal, logger)
	a.checkout = checkout.NewService(a.client.Orders(), a.cart, a.voucher, a.session, a.notices, logger)
	return a
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Headless storefront client",
	Long: `storefront is a terminal client for the storefront backend.

It keeps the cart, wishlist and compare list in sync with the remote API:
every mutation is confirmed by refetching the authoritative server state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".storefront", "token")
}

func loadToken() string {
	path := tokenPath()
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func saveToken(token string) error {
	path := tokenPath()
	if path == "" {
		return fmt.Errorf("cannot resolve home directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func dropToken() {
	if path := tokenPath(); path != "" {
		_ = os.Remove(path)
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url",
		envOr("STOREFRONT_API_URL", "http://127.0.0.1:8000/api/v1"), "storefront API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	registerCommands()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
