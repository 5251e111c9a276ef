package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Horse-MA00/portfolio/internal/layout"
	"github.com/Horse-MA00/portfolio/internal/rotation"
)

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		envFile string
	)

	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio page with a rotating identity card and scattered info cards",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			level, err := logLevel(verbose)
			if err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newRotateCmd())
	return root
}

// logLevel honours --verbose first, then LOG_LEVEL.
func logLevel(verbose bool) (log.Level, error) {
	if verbose {
		return log.DebugLevel, nil
	}
	v := os.Getenv("LOG_LEVEL")
	if v == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(v))
	if err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			content, err := LoadContent(cfg.ContentFile)
			if err != nil {
				return err
			}

			store, err := OpenStore(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if n, err := store.Purge(ctx, time.Now().Add(-cfg.Retention)); err != nil {
				logger.Error("Error cleaning up old layouts", "err", err)
			} else if n > 0 {
				logger.Info("Privacy cleanup", "removed", n)
			}

			srv, err := newServer(cfg, content, store, logger)
			if err != nil {
				return err
			}
			return srv.serve(ctx, ":"+cfg.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func newLayoutCmd() *cobra.Command {
	var (
		cards   int
		seed    uint64
		asJSON  bool
		columns int
		rows    int
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Generate one card layout and preview it in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			content, err := LoadContent(cfg.ContentFile)
			if err != nil {
				return err
			}

			if columns < 1 || rows < 1 {
				return fmt.Errorf("--columns and --rows must be positive, got %dx%d", columns, rows)
			}

			n := len(content.Cards)
			if cmd.Flags().Changed("cards") {
				if cards < 0 || cards > maxCards {
					return fmt.Errorf("--cards must be between 0 and %d", maxCards)
				}
				n = cards
			}

			var sampler layout.Sampler
			if seed != 0 {
				sampler = layout.NewSeededSampler(seed)
			}
			gen, err := layout.NewGenerator(layout.DefaultConfig(), sampler)
			if err != nil {
				return err
			}

			result := gen.Place(n)
			logger.Debug("Generated layout", "cards", n, "fallbacks", result.Fallbacks())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(out, styleTitle.Render(fmt.Sprintf("%d cards, %d from fallback", n, result.Fallbacks())))
			fmt.Fprintln(out, renderLayoutMap(gen.Config(), result, columns, rows))
			fmt.Fprintln(out, renderPlacementTable(content.Cards, result))
			return nil
		},
	}

	cmd.Flags().IntVarP(&cards, "cards", "n", 0, "number of cards (default: one per content card)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks a fresh one)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print placements as JSON")
	cmd.Flags().IntVar(&columns, "columns", 80, "map width in characters")
	cmd.Flags().IntVar(&rows, "rows", 24, "map height in characters")
	return cmd
}

func newRotateCmd() *cobra.Command {
	var period, delay time.Duration

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Run the rotating identity text in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			content, err := LoadContent(cfg.ContentFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("period") {
				period = cfg.RotationPeriod
			}
			if !cmd.Flags().Changed("delay") {
				delay = cfg.RotationDelay
			}

			rot, err := rotation.New(content.Texts, rotation.WithPeriod(period), rotation.WithDelay(delay))
			if err != nil {
				return err
			}
			updates, cancel := rot.Subscribe()
			defer cancel()
			rot.Start()
			defer rot.Stop()

			model := newRotateModel(content.Name, updates, rot.State())
			p := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&period, "period", rotation.DefaultPeriod, "time between text changes")
	cmd.Flags().DurationVar(&delay, "delay", rotation.DefaultDelay, "length of the fade between texts")
	return cmd
}
