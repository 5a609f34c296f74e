package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-crm/internal/crm/leads"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/opportunities"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/products"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/vendors"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/listview/client"
	"github.com/odyssey-erp/odyssey-crm/internal/listview/storage"
)

// Row is one record as decoded from the API.
type Row = map[string]any

type viewDef struct {
	path     string
	columns  []listview.Column
	defaults listview.Defaults
}

var views = map[string]viewDef{
	"leads":         {path: "/api/leads", columns: leads.Columns, defaults: leads.ListSpec.Defaults},
	"opportunities": {path: "/api/opportunities", columns: opportunities.Columns, defaults: opportunities.ListSpec.Defaults},
	"vendors":       {path: "/api/vendors", columns: vendors.Columns, defaults: vendors.ListSpec.Defaults},
	"products":      {path: "/api/products", columns: products.Columns, defaults: products.ListSpec.Defaults},
}

func viewNames() []string {
	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type rootOptions struct {
	baseURL   string
	stateFile string
	timeout   time.Duration
	noColor   bool
	verbose   bool
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "crmctl", "state.json")
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Browse Odyssey CRM list views",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	baseURL := os.Getenv("CRM_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "api", baseURL, "CRM base URL (env CRM_API_URL)")
	flags.StringVar(&opts.stateFile, "state-file", defaultStateFile(), "file that keeps filter state between runs")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log persistence and fetch details")

	root.AddCommand(newListCmd(opts), newViewsCmd(), newStatusCmd(opts))
	return root
}

func newViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the available views",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range viewNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the API and show which views have saved state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, root)
		},
	}
}

func runStatus(cmd *cobra.Command, root *rootOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
	defer cancel()
	out := cmd.OutOrStdout()

	pingErr := client.New(root.baseURL).Ping(ctx)
	health := color.GreenString("ok")
	if pingErr != nil {
		health = color.RedString("unreachable")
	}
	fmt.Fprintf(out, "api    %s %s\n", root.baseURL, health)

	file := storage.NewFile(root.stateFile)
	fmt.Fprintf(out, "state  %s\n", file.Path())
	var saved []string
	for _, name := range viewNames() {
		_, err := file.Load(ctx, name)
		switch {
		case err == nil:
			saved = append(saved, name)
		case !errors.Is(err, listview.ErrStateNotFound):
			return fmt.Errorf("read state: %w", err)
		}
	}
	if len(saved) == 0 {
		saved = []string{"none"}
	}
	fmt.Fprintf(out, "saved  %s\n", strings.Join(saved, ", "))
	return pingErr
}

type listOptions struct {
	page     int
	pageSize int
	sort     string
	search   string
	from     string
	to       string
	filters  []string
	clear    bool
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:       "list <view>",
		Short:     "Show one page of a view",
		Long:      "Show one page of a view. Flags change the persisted filter state; without flags the last state is shown again.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: viewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runList(cmd, root, opts, args[0])
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.page, "page", 0, "page number")
	f.IntVar(&opts.pageSize, "page-size", 0, "rows per page")
	f.StringVar(&opts.sort, "sort", "", "sort column, prefix with - for descending; \"none\" clears it")
	f.StringVar(&opts.search, "search", "", "search text; \"\" with --search= clears it")
	f.StringVar(&opts.from, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&opts.to, "to", "", "last day, YYYY-MM-DD")
	f.StringArrayVar(&opts.filters, "filter", nil, "extra filter key=value; key= removes it")
	f.BoolVar(&opts.clear, "clear", false, "reset every filter before applying the other flags")
	return cmd
}

func runList(cmd *cobra.Command, root *rootOptions, opts *listOptions, name string) error {
	def, ok := views[name]
	if !ok {
		return fmt.Errorf("unknown view %q (try: %s)", name, strings.Join(viewNames(), ", "))
	}

	logLevel := slog.LevelError
	if root.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
	defer cancel()

	api := client.New(root.baseURL)
	v := listview.NewView(ctx, listview.ViewConfig[Row]{
		ID:        name,
		Columns:   def.columns,
		Defaults:  def.defaults,
		Fetcher:   client.Fetcher[Row](api, def.path),
		Persister: storage.NewFile(root.stateFile),
		Logger:    logger,
	})
	defer v.Close()

	state, changed, err := opts.apply(cmd, v.State(), def.defaults)
	if err != nil {
		return err
	}
	if changed {
		v.Apply(ctx, state)
	} else {
		v.Refresh(ctx)
	}
	v.Wait()

	m := v.Model()
	if m.Status == listview.StatusError {
		return m.Err
	}
	render(cmd.OutOrStdout(), name, m)
	return nil
}

// apply folds the flags into s in a fixed order: clear, page size, sort,
// search, dates, filters, page. The page comes last because every other
// change returns to the first page.
func (o *listOptions) apply(cmd *cobra.Command, s listview.FilterState, d listview.Defaults) (listview.FilterState, bool, error) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	dirty := false

	if o.clear {
		s = d.State()
		dirty = true
	}
	if changed("page-size") {
		s = s.SetPageSize(o.pageSize)
		dirty = true
	}
	if changed("sort") {
		switch col := strings.TrimSpace(o.sort); {
		case col == "none":
			s = s.SetSort("", "")
		case strings.HasPrefix(col, "-"):
			s = s.SetSort(strings.TrimPrefix(col, "-"), listview.SortDesc)
		default:
			s = s.SetSort(col, listview.SortAsc)
		}
		dirty = true
	}
	if changed("search") {
		s = s.SetSearch(o.search)
		dirty = true
	}
	if changed("from") || changed("to") {
		r, err := parseRange(o.from, o.to)
		if err != nil {
			return s, false, err
		}
		s = s.SetDateRange(r)
		dirty = true
	}
	for _, kv := range o.filters {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return s, false, fmt.Errorf("--filter %q: want key=value", kv)
		}
		s = s.SetExtraFilter(key, value)
		dirty = true
	}
	if changed("page") {
		s = s.SetPage(o.page)
		dirty = true
	}
	return s, dirty, nil
}

func parseRange(from, to string) (*listview.DateRange, error) {
	var r listview.DateRange
	for _, p := range []struct {
		raw string
		dst *time.Time
	}{{from, &r.From}, {to, &r.To}} {
		if p.raw == "" {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, p.raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", p.raw)
		}
		*p.dst = t
	}
	if r.From.IsZero() && r.To.IsZero() {
		return nil, nil
	}
	return &r, nil
}
