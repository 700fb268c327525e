package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/orderdesk/internal/config"
	"github.com/muurk/orderdesk/internal/discovery"
	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/order"
	"github.com/muurk/orderdesk/internal/platform"
	"github.com/muurk/orderdesk/internal/record"
	"github.com/muurk/orderdesk/internal/ui"
	"github.com/muurk/orderdesk/internal/wizard/tui"
)

// Platform command flags
var (
	baseURL        string
	timeoutSeconds int
	pageSize       int
	dateLayout     string

	settings *config.Settings
)

// Subcommand flags
var (
	printRecord    bool
	category       string
	page           int
	assumeYes      bool
	scanTimeout    int
	saveDiscovered bool
)

func init() {
	// Common flags for platform commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "Platform base URL (default from config file)")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 0, "Request timeout in seconds (default from config file)")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 0, "Products per page (default from config file)")
	rootCmd.PersistentFlags().StringVar(&dateLayout, "date-layout", "", "Go date layout for record dates (default from config file)")

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
	orderCmd.AddCommand(orderCreateCmd)
}

// loadSettings reads the settings file and applies flag overrides
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}

	s, err := config.Load()
	if err != nil {
		return err
	}
	if baseURL != "" {
		s.Platform.BaseURL = baseURL
	}
	if timeoutSeconds > 0 {
		s.Platform.TimeoutSeconds = timeoutSeconds
	}
	if pageSize > 0 {
		s.Wizard.PageSize = pageSize
	}
	if dateLayout != "" {
		s.Viewer.DateLayout = dateLayout
	}
	settings = s
	return nil
}

func newClient() *platform.Client {
	client := platform.NewClient(settings.Platform.BaseURL)
	client.SetTimeout(settings.Timeout())
	client.SetToken(config.Token())
	return client
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), settings.Timeout())
}

// saveRecent records a used parent. Failures only cost the history entry.
func saveRecent(id, label string) {
	settings.TouchParent(id, label)
	if err := settings.Save(); err != nil {
		logging.Warn("Failed to save recent records", zap.Error(err))
	}
}

// initTUILogging keeps log output away from the full-screen UI
func initTUILogging() error {
	if os.Getenv(logging.LogLevelEnvVar) == "" || os.Getenv(logging.LogFileEnvVar) != "" {
		return logging.InitializeFromEnv()
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return logging.InitializeWithOutput("", filepath.Join(dir, "orderdesk.log"))
}

func runProgram(cfg tui.Config) error {
	if err := initTUILogging(); err != nil {
		return err
	}
	defer logging.Sync()

	cfg.OnOrderCreated = func(parentID, label string, res *order.Result) {
		logging.Info("Order created from wizard",
			zap.String("parent_id", parentID),
			zap.String("order_number", res.OrderNumber),
		)
		saveRecent(parentID, label)
	}

	p := tea.NewProgram(tui.NewAppModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}
	return nil
}

func tuiConfig(client *platform.Client) tui.Config {
	return tui.Config{
		Fetcher:    client,
		Catalog:    client,
		PageSize:   settings.Wizard.PageSize,
		DateLayout: settings.Viewer.DateLayout,
		Timeout:    settings.Timeout(),
	}
}

// wizardCmd launches the interactive order wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard [parent-id]",
	Short: "Launch the interactive order wizard",
	Long: `Launch an interactive TUI wizard that creates an order for a parent record.

The wizard provides:
- Product search by name or code with a category filter
- Paged results with selections kept across pages and searches
- In-place quantity editing
- A review step before the order is created

Without a parent id the most recently used record is taken.`,
	Example: `  # Create an order for a record
  orderdesk wizard 00Q5e00000A1

  # Reuse the most recent record (wizard is the default)
  orderdesk

  # Smaller pages against a specific backend
  orderdesk wizard 00Q5e00000A1 --page-size 5 --url https://platform.local:8443`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	parentID := ""
	if len(args) == 1 {
		parentID = args[0]
	} else if ids := settings.RecentParentIDs(); len(ids) > 0 {
		parentID = ids[0]
	}
	if parentID == "" {
		return errors.New("no parent record given and no recent records. Use 'orderdesk wizard <parent-id>'")
	}

	cfg := tuiConfig(newClient())
	cfg.ParentID = parentID
	return runProgram(cfg)
}

// recordCmd shows a record
var recordCmd = &cobra.Command{
	Use:   "record <id>",
	Short: "Show a record",
	Long: `Display a record grouped into Person, Company and System fields.

The interactive view lets you start an order for the record with 'o'.
Use --print for plain output suitable for scripts and pipes.`,
	Example: `  # Interactive record view
  orderdesk record 00Q5e00000A1

  # Print the record and exit
  orderdesk record 00Q5e00000A1 --print`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().BoolVar(&printRecord, "print", false, "Print the record instead of opening the interactive view")
}

func runRecord(cmd *cobra.Command, args []string) error {
	client := newClient()
	if !printRecord {
		cfg := tuiConfig(client)
		cfg.RecordID = args[0]
		return runProgram(cfg)
	}

	viewer := record.NewViewer(client, args[0], record.LeadLayout(), record.NewFormatter(settings.Viewer.DateLayout))
	ctx, cancel := requestContext()
	defer cancel()

	printer := ui.NewPrinter(os.Stdout)
	if err := viewer.Load(ctx); err != nil {
		printer.PrintError("Failed to load record "+args[0], errors.New(platform.ShortMessage(err)),
			strings.Split(platform.TroubleshootingHint(err), "\n"))
		return err
	}

	h := viewer.Header()
	printer.PrintHeader(h.Name, "orderdesk record "+args[0], map[string]string{
		"Company": h.Company,
		"Status":  h.Status,
		"Rating":  h.Rating,
	})
	for _, g := range viewer.Groups() {
		fields := make([]ui.KeyValue, 0, len(g.Fields))
		for _, f := range g.Fields {
			fields = append(fields, ui.KeyValue{Key: f.Label, Value: f.Value.Text, Target: f.Value.Target})
		}
		printer.PrintSection(g.Name, fields)
	}
	return nil
}

// productsCmd searches the catalog
var productsCmd = &cobra.Command{
	Use:   "products [term]",
	Short: "Search the product catalog",
	Long: `Search products by name or product code.

Results are paged with the configured page size.`,
	Example: `  # First page of all products
  orderdesk products

  # Search within a category
  orderdesk products cable --category Hardware

  # Third page
  orderdesk products --page 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProducts,
}

func init() {
	productsCmd.Flags().StringVar(&category, "category", "", "Only list products of this category")
	productsCmd.Flags().IntVar(&page, "page", 1, "Page to show")
}

func runProducts(cmd *cobra.Command, args []string) error {
	term := ""
	if len(args) == 1 {
		term = args[0]
	}

	client := newClient()
	ctx, cancel := requestContext()
	defer cancel()

	pager := order.NewPager(settings.Wizard.PageSize)
	total, err := client.CountProducts(ctx, term, category)
	if err != nil {
		return fmt.Errorf("failed to count products: %s", platform.ShortMessage(err))
	}
	pager.TotalRecords = total
	if page > pager.TotalPages() && total > 0 {
		return fmt.Errorf("page %d out of range (%d pages)", page, pager.TotalPages())
	}
	pager.Page = page

	products, err := client.SearchProducts(ctx, term, category, pager.Offset(page), pager.PageSize)
	if err != nil {
		return fmt.Errorf("failed to search products: %s", platform.ShortMessage(err))
	}

	printer := ui.NewPrinter(os.Stdout)
	if len(products) == 0 {
		printer.Println("No products found.")
		return nil
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Name, p.Code, p.Category})
	}
	printer.PrintTable([]string{"ID", "Name", "Code", "Category"}, rows)
	printer.Println(fmt.Sprintf("Page %d of %d · %d products", pager.Page, pager.TotalPages(), total))
	return nil
}

// categoriesCmd lists product categories
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()

		categories, err := newClient().ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to list categories: %s", platform.ShortMessage(err))
		}
		for _, c := range categories {
			fmt.Println(c)
		}
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
}

// orderCreateCmd creates an order without the wizard
var orderCreateCmd = &cobra.Command{
	Use:   "create <parent-id> <product-id[:quantity]>...",
	Short: "Create an order directly",
	Long: `Create an order for a parent record without using the wizard.

Each product is given as its id, optionally followed by ':' and a quantity.
A missing, zero, negative or non-numeric quantity is ordered as 1.`,
	Example: `  # One product, quantity 1
  orderdesk order create 00Q5e00000A1 01t000000000001

  # Several products with quantities, no confirmation prompt
  orderdesk order create 00Q5e00000A1 01t000000000001:5 01t000000000002 --yes`,
	Args: cobra.MinimumNArgs(2),
	RunE: runOrderCreate,
}

func init() {
	orderCreateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// parseLines converts product arguments into order lines. Repeated products
// keep their first position and the last quantity given.
func parseLines(args []string) ([]order.Line, []string) {
	set := order.NewSelectionSet()
	var warnings []string
	for _, arg := range args {
		id, raw, hasQty := strings.Cut(arg, ":")
		qty := order.DefaultQuantity
		if hasQty {
			var ok bool
			qty, ok = order.ParseQuantity(raw)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("quantity %q for %s is not a positive whole number, using %d", raw, id, qty))
			}
		}
		if !set.Add(order.Entry{ID: id, Quantity: qty}) {
			set.SetQuantity(id, qty)
		}
	}
	return set.Lines(), warnings
}

func runOrderCreate(cmd *cobra.Command, args []string) error {
	parentID := args[0]
	lines, warnings := parseLines(args[1:])
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	if !assumeYes {
		items := make([]string, 0, len(lines))
		for _, l := range lines {
			items = append(items, fmt.Sprintf("%s × %d", l.ProductID, l.Quantity))
		}
		if !ui.Confirm(os.Stdin, os.Stdout, "Create an order for "+parentID+"?", items) {
			return nil
		}
	}

	client := newClient()
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Order Creation",
		Command: "orderdesk order create",
		Params: map[string]string{
			"Parent":   parentID,
			"Products": strconv.Itoa(len(lines)),
			"Platform": client.BaseURL,
		},
		StepNames: []string{"Reach platform", "Create order"},
		Troubleshooting: []string{
			"Check the product ids with 'orderdesk products'",
			"Verify ORDERDESK_TOKEN and --url",
		},
	})

	_, err := runner.Run(context.Background(), func(ctx context.Context, onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, "", ui.StepRunning, "")
		pingCtx, cancel := context.WithTimeout(ctx, settings.Timeout())
		err := client.Ping(pingCtx)
		cancel()
		if err != nil {
			onStep(1, "", ui.StepFailed, platform.ShortMessage(err))
			return nil, err
		}
		onStep(1, "", ui.StepComplete, client.BaseURL)

		onStep(2, "", ui.StepRunning, "")
		createCtx, cancel := context.WithTimeout(ctx, settings.Timeout())
		defer cancel()
		res, err := client.CreateOrder(createCtx, parentID, lines)
		if err != nil {
			onStep(2, "", ui.StepFailed, platform.ShortMessage(err))
			return nil, err
		}
		onStep(2, "", ui.StepComplete, res.OrderNumber)

		saveRecent(parentID, "")
		details := map[string]string{"Order number": res.OrderNumber}
		if res.OrderID != "" {
			details["Order id"] = res.OrderID
		}
		return details, nil
	})
	return err
}

// recentCmd lists recently used parent records
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently used records",
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(os.Stdout)
		if len(settings.Recent) == 0 {
			printer.Println("No recent records.")
			return nil
		}
		rows := make([][]string, 0, len(settings.Recent))
		for _, r := range settings.Recent {
			rows = append(rows, []string{r.ID, r.Label, r.LastUsed.Local().Format(time.DateTime)})
		}
		printer.PrintTable([]string{"ID", "Label", "Last used"}, rows)
		return nil
	},
}

// discoverCmd finds backends on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover platform backends on the network",
	Long: `Discover platform backends that advertise themselves over mDNS/DNS-SD.

With --save and exactly one backend found, its URL is written to the
settings file.`,
	Example: `  # Scan for 5 seconds (default)
  orderdesk discover

  # Longer scan and remember the backend
  orderdesk discover --timeout-scan 15 --save`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout-scan", 5, "Scan timeout in seconds")
	discoverCmd.Flags().BoolVar(&saveDiscovered, "save", false, "Save the discovered backend URL to the settings file")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for backends (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	backends, err := scanner.ScanForBackends(context.Background())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printer := ui.NewPrinter(os.Stdout)
	if len(backends) == 0 {
		printer.PrintWarning("No backends found", map[string]string{
			"Service": discovery.ServiceType,
			"Hint":    "Start one with 'orderdesk-server serve --advertise'",
		})
		return nil
	}

	sort.Slice(backends, func(i, j int) bool { return backends[i].Name < backends[j].Name })
	rows := make([][]string, 0, len(backends))
	for _, b := range backends {
		auth := "none"
		if b.RequiresToken() {
			auth = "token"
		}
		rows = append(rows, []string{b.Name, b.BaseURL(), b.GetMetadata("version"), auth})
	}
	printer.PrintTable([]string{"Name", "URL", "Version", "Auth"}, rows)

	if saveDiscovered {
		if len(backends) > 1 {
			return errors.New("multiple backends found. Use --url to pick one")
		}
		settings.Platform.BaseURL = backends[0].BaseURL()
		if err := settings.Save(); err != nil {
			return err
		}
		printer.Println("Saved " + settings.Platform.BaseURL + " as the platform URL")
	}
	return nil
}

// watchCmd follows the order event feed
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow newly created orders",
	Long: `Subscribe to the platform's order event feed and print every order as it
is created. Stop with Ctrl+C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient()
	fmt.Printf("Watching orders on %s (Ctrl+C to stop)...\n", client.BaseURL)

	return client.WatchEvents(ctx, func(ev order.Event) {
		items := 0
		for _, l := range ev.Lines {
			items += l.Quantity
		}
		fmt.Printf("%s  %s  parent=%s  lines=%d  items=%d\n",
			ev.CreatedAt.Local().Format(time.DateTime), ev.OrderNumber, ev.ParentID, len(ev.Lines), items)
	})
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	fmt.Print(string(data))
	if config.Token() != "" {
		fmt.Printf("# token: set via %s\n", config.TokenEnvVar)
	} else {
		fmt.Printf("# token: not set (%s)\n", config.TokenEnvVar)
	}
	return nil
}
