package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/j-veylop/manx-utilities-tui/internal/api"
	"github.com/j-veylop/manx-utilities-tui/internal/app"
	"github.com/j-veylop/manx-utilities-tui/internal/config"
	"github.com/j-veylop/manx-utilities-tui/internal/logger"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services"
	"github.com/j-veylop/manx-utilities-tui/internal/services/meter"
	"github.com/j-veylop/manx-utilities-tui/internal/services/sensor"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/tabs/history"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/tabs/info"
	"github.com/j-veylop/manx-utilities-tui/internal/version"
)

const (
	debugFlag = "debug"
	addrFlag  = "addr"

	defaultServeAddr = ":8080"
)

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:            version.Name,
		Usage:           "Poll a Manx Utilities smart meter",
		Description:     "Fetches half-hourly cost and energy readings and keeps day, week and month totals.",
		Version:         version.GetVersion(),
		HideHelpCommand: true,
		DefaultCommand:  "run",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			checkCommand(),
			pollCommand(),
			versionCommand(),
		},
	}
}

// loadConfig loads configuration and applies global flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Bool(debugFlag) {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Start the terminal dashboard",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// The TUI owns the terminal, so logs go to a file.
			var out io.Writer = io.Discard
			if cfg.LogFile != "" {
				f, err := logger.OpenFile(cfg.LogFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			log := logger.New(out, logger.ParseLevel(cfg.LogLevel))

			return runTUI(ctx, cfg, log)
		},
	}
}

func runTUI(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	mgr, err := services.NewManager(cfg, services.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			log.Warn("error closing services", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.HTTPAddr != "" {
		srv := api.New(cfg.HTTPAddr, mgr, log.With("component", "api"))
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error("http api stopped", "error", err)
			}
		}()
	}

	state := app.NewState()
	state.SetConfig(cfg)
	model := app.NewModel(mgr, state)
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		history.New(state),
		info.New(state),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	mgr.Start()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Poll in the background and serve the HTTP status API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  addrFlag,
				Usage: "Listen address (defaults to HTTP_ADDR or " + defaultServeAddr + ")",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))

			addr := cmd.String(addrFlag)
			if addr == "" {
				addr = cfg.HTTPAddr
			}
			if addr == "" {
				addr = defaultServeAddr
			}

			mgr, err := services.NewManager(cfg, services.WithLogger(log))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer func() {
				if closeErr := mgr.Close(); closeErr != nil {
					log.Warn("error closing services", "error", closeErr)
				}
			}()

			mgr.Start()
			return api.New(addr, mgr, log.With("component", "api")).Run(ctx)
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:     "check",
		Usage:    "Validate the configured credentials",
		Category: "Utilities",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := newClient(cfg)
			defer client.Close()

			if err := client.Authenticate(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "Credentials for %s are valid.\n", cfg.Username)
			return nil
		},
	}
}

func pollCommand() *cli.Command {
	return &cli.Command{
		Name:     "poll",
		Usage:    "Fetch the latest cost and energy readings once and print them as JSON",
		Category: "Utilities",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := newClient(cfg)
			defer client.Close()

			results, err := pollOnce(ctx, client)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, version.Info())
			return nil
		},
	}
}

func newClient(cfg *config.Config) *meter.Client {
	log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))
	return meter.NewClient(cfg.MeterConfig(), meter.WithLogger(log.With("component", "meter")))
}

// polledReading is one reading as printed by the poll command.
type polledReading struct {
	Time        string  `json:"time"`
	Unit        string  `json:"unit"`
	Timestamp   int64   `json:"timestamp"`
	Value       float64 `json:"value"`
	NativeValue float64 `json:"native_value"`
}

// pollOnce fetches every reading type. A type with no published reading
// maps to nil.
func pollOnce(ctx context.Context, source sensor.ReadingSource) (map[string]*polledReading, error) {
	results := make(map[string]*polledReading, len(models.ReadingTypes))
	for _, t := range models.ReadingTypes {
		reading, err := source.GetReading(ctx, t)
		if err != nil {
			return nil, err
		}
		if reading == nil {
			results[t.String()] = nil
			continue
		}
		profile := models.ProfileFor(t)
		results[t.String()] = &polledReading{
			Time:        reading.Time().UTC().Format(time.RFC3339),
			Unit:        profile.Unit,
			Timestamp:   reading.Timestamp,
			Value:       reading.Value,
			NativeValue: profile.Convert(reading.Value),
		}
	}
	return results, nil
}
