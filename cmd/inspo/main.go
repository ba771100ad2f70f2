package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbaille/inspo/internal/api"
	"github.com/pbaille/inspo/internal/catalog"
	"github.com/pbaille/inspo/internal/config"
	"github.com/pbaille/inspo/internal/facet"
	"github.com/pbaille/inspo/internal/filter"
	"github.com/pbaille/inspo/internal/logging"
	"github.com/pbaille/inspo/internal/render"
	"github.com/pbaille/inspo/internal/store"
)

func main() {
	if err := newRootCmd(config.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "inspo",
		Short:        "Indian micro brand inspiration index",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(config.KeyCatalog, "", "YAML catalog to load instead of the bundled one")
	rootCmd.PersistentFlags().Bool(config.KeyDebug, false, "enable debug logging")
	rootCmd.PersistentFlags().String(config.KeyDB, "", "swipe-file database path (default ~/.inspo/swipe.db)")
	bindFlag(v, rootCmd, config.KeyCatalog)
	bindFlag(v, rootCmd, config.KeyDebug)
	bindFlag(v, rootCmd, config.KeyDB)

	rootCmd.AddCommand(serveCmd(v))
	rootCmd.AddCommand(listCmd(v))
	rootCmd.AddCommand(showCmd(v))
	rootCmd.AddCommand(facetsCmd(v))
	rootCmd.AddCommand(exportCmd(v))
	rootCmd.AddCommand(exportsCmd(v))

	return rootCmd
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key string) {
	flag := cmd.Flags().Lookup(key)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(key)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func loadCatalog(v *viper.Viper) (*catalog.Catalog, error) {
	cfg := config.Load(v)
	if cfg.Catalog != "" {
		return catalog.LoadFile(cfg.Catalog)
	}
	return catalog.Default()
}

// filterFlags collects the query and facet selections accepted by list and export
type filterFlags struct {
	query   string
	formats []string
	niches  []string
	tags    []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "free-text search")
	cmd.Flags().StringArrayVar(&f.formats, "format", nil, "post format to include (repeatable)")
	cmd.Flags().StringArrayVar(&f.niches, "niche", nil, "niche to include (repeatable)")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "tag to include (repeatable)")
}

func (f *filterFlags) state() *filter.State {
	s := filter.New()
	s.SetQuery(f.query)
	toggle := func(fc filter.Facet, values []string) {
		for _, v := range values {
			if !s.IsSelected(fc, v) {
				s.Toggle(fc, v)
			}
		}
	}
	toggle(filter.FacetFormat, f.formats)
	toggle(filter.FacetNiche, f.niches)
	toggle(filter.FacetTag, f.tags)
	return s
}

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gallery server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)

			log, err := logging.New(cfg.Debug)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			c, err := loadCatalog(v)
			if err != nil {
				return err
			}

			server, err := api.New(c, cfg.Addr, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx)
		},
	}

	cmd.Flags().StringP(config.KeyAddr, "a", ":8080", "server address")
	bindFlag(v, cmd, config.KeyAddr)
	return cmd
}

func listCmd(v *viper.Viper) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records matching the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			matched := filter.Apply(c.Records(), ff.state())

			if len(matched) == 0 {
				fmt.Fprintln(out, "No matches yet. Try clearing a filter or using a broader search term.")
				return nil
			}

			for _, r := range matched {
				fmt.Fprintf(out, "%-32s  %-12s  %-11s  %s\n", r.ID, r.Niche, r.PostFormat, truncate(r.Brand, 40))
			}
			fmt.Fprintf(out, "\nShowing %d of %d inspiration drops.\n", len(matched), c.Len())

			return nil
		},
	}

	ff.register(cmd)
	return cmd
}

func showCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show record details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(v)
			if err != nil {
				return err
			}

			r, err := c.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s · %s)\n", r.Brand, r.Location, r.Niche)
			fmt.Fprintf(out, "%s\n\n", r.BrandOneLiner)
			fmt.Fprintf(out, "Platform: %s  Format: %s\n", r.Platform, r.PostFormat)
			if r.PostLabel != "" {
				fmt.Fprintf(out, "Label:    %s\n", r.PostLabel)
			}
			if d := render.FormatDate(r.PostedOn); d != "" {
				fmt.Fprintf(out, "Posted:   %s\n", d)
			}
			fmt.Fprintf(out, "\nWhy it works: %s\n", r.StandoutIdea)

			printList(out, "Visual hooks", r.VisualHooks)
			printList(out, "Swipe structure", r.SwipeNotes)

			fmt.Fprintf(out, "\nBrand: %s\nPost:  %s\n", r.BrandURL, r.PostURL)
			if len(r.Tags) > 0 {
				fmt.Fprintf(out, "Tags:  %s\n", strings.Join(r.Tags, ", "))
			}

			return nil
		},
	}
}

func facetsCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "List the available filter values",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(v)
			if err != nil {
				return err
			}

			f := facet.Extract(c.Records())
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(f)
			}

			printList(out, "Format", f.Formats)
			printList(out, "Niche", f.Niches)
			printList(out, "Tags", f.Tags)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func exportCmd(v *viper.Viper) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write matching records to a SQLite swipe-file database",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(v)
			if err != nil {
				return err
			}

			s, dbPath, err := openStore(v)
			if err != nil {
				return err
			}
			defer s.Close()

			state := ff.state()
			exp, err := s.Export(filter.Apply(c.Records(), state), state)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s (export %s)\n", exp.RecordCount, dbPath, exp.ID[:8])
			return nil
		},
	}

	ff.register(cmd)
	return cmd
}

func openStore(v *viper.Viper) (*store.Store, string, error) {
	dbPath := config.Load(v).DB
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, "", fmt.Errorf("create db dir: %w", err)
	}
	s, err := store.New(dbPath)
	if err != nil {
		return nil, "", err
	}
	return s, dbPath, nil
}

func exportsCmd(v *viper.Viper) *cobra.Command {
	var (
		records bool
		tags    bool
	)

	cmd := &cobra.Command{
		Use:   "exports [id]",
		Short: "List swipe-file exports, or the records of one export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(v)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()

			if tags {
				names, err := s.ListTags()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintln(out, "No tags exported yet.")
					return nil
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			if records {
				return printExportRecords(out, s, args)
			}

			exports, err := s.ListExports()
			if err != nil {
				return err
			}
			if len(exports) == 0 {
				fmt.Fprintln(out, "No exports yet. Use 'inspo export' to create one.")
				return nil
			}
			for _, e := range exports {
				filters := e.Filters
				if filters == "" {
					filters = "(all)"
				}
				fmt.Fprintf(out, "%s  %s  %3d  %s\n", e.ID[:8], e.CreatedAt.Format("2006-01-02 15:04:05"), e.RecordCount, filters)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&records, "records", false, "print the records of the given export (latest when no id is given)")
	cmd.Flags().BoolVar(&tags, "tags", false, "print every exported tag")
	cmd.MarkFlagsMutuallyExclusive("records", "tags")
	return cmd
}

func printExportRecords(out io.Writer, s *store.Store, args []string) error {
	var exportID string
	if len(args) == 1 {
		exp, err := s.FindExport(args[0])
		if err != nil {
			return err
		}
		exportID = exp.ID
	} else {
		exports, err := s.ListExports()
		if err != nil {
			return err
		}
		if len(exports) == 0 {
			fmt.Fprintln(out, "No exports yet. Use 'inspo export' to create one.")
			return nil
		}
		exportID = exports[0].ID
	}

	records, err := s.ListRecords(exportID)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(out, "%-32s  %-12s  %-11s  %s\n", r.ID, r.Niche, r.PostFormat, truncate(r.Brand, 40))
	}
	fmt.Fprintf(out, "\n%d records in export %s\n", len(records), exportID[:8])
	return nil
}

func printList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
