package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-declaration"
	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/wizard"
)

// cliConfig mirrors the optional --config file. Flags win over file values.
type cliConfig struct {
	Schema      string         `yaml:"schema"`
	Draft       string         `yaml:"draft"`
	Output      string         `yaml:"output"`
	Template    string         `yaml:"template"`
	HTTPTimeout time.Duration  `yaml:"http_timeout"`
	Extras      map[string]any `yaml:"extras"`
}

var (
	configPath  string
	verbose     bool
	schemaPath  string
	draftPath   string
	outputFlag  string
	templateArg string

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	config cliConfig
)

var rootCmd = &cobra.Command{
	Use:   "declaration-cli",
	Short: "Fill in, check and summarize declaration wizards",
	Long: `Drive a declaration wizard schema from the terminal.

Answers are kept in a draft file (JSON or YAML) that is rewritten after every
change, so an interrupted session can be resumed with the same --draft.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if configPath != "" {
			cfg, err := readConfig(configPath)
			if err != nil {
				return err
			}
			config = cfg
		}
		if cmd.Flags().Changed("schema") || config.Schema == "" {
			config.Schema = schemaPath
		}
		if cmd.Flags().Changed("draft") || config.Draft == "" {
			config.Draft = draftPath
		}
		if strings.TrimSpace(config.Schema) == "" {
			return fmt.Errorf("a schema is required (--schema or schema: in --config)")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with default settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "Declaration schema path or URL (JSON or YAML)")
	rootCmd.PersistentFlags().StringVarP(&draftPath, "draft", "d", "", "Draft file holding the answers (JSON or YAML)")

	rootCmd.AddCommand(runCmd, checkCmd, reportCmd)
}

func readConfig(path string) (cliConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cliConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg cliConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Schema != "" && !filepath.IsAbs(cfg.Schema) && !strings.Contains(cfg.Schema, "://") {
		cfg.Schema = filepath.Join(filepath.Dir(path), cfg.Schema)
	}
	if cfg.Draft != "" && !filepath.IsAbs(cfg.Draft) {
		cfg.Draft = filepath.Join(filepath.Dir(path), cfg.Draft)
	}
	return cfg, nil
}

// session bundles an opened wizard with its provider.
type session struct {
	wizard *wizard.Declaration
	file   *storage.File
}

func openSession(ctx context.Context) (*session, error) {
	src, err := schema.ParseSource(config.Schema)
	if err != nil {
		return nil, err
	}
	timeout := config.HTTPTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	decl, err := declaration.LoadSchema(ctx, src, declaration.WithHTTPFallback(timeout))
	if err != nil {
		return nil, err
	}

	var (
		provider storage.Provider
		file     *storage.File
		initial  storage.Snapshot
	)
	stats := storage.WithStatistics(moneyTotals(decl))
	if config.Draft != "" {
		file, err = storage.OpenFile(config.Draft, stats)
		if err != nil {
			return nil, err
		}
		provider = file
		initial = file.Snapshot()
		logger.Debug("draft opened", "path", file.Path(), "draft_id", file.DraftID())
	} else {
		provider = storage.NewMemory(stats)
	}

	d := wizard.New(decl, initial, provider,
		wizard.WithLogger(logger),
		wizard.WithExtras(config.Extras),
	)
	return &session{wizard: d, file: file}, nil
}

func (s *session) close() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Err(); err != nil {
		return fmt.Errorf("draft not fully saved: %w", err)
	}
	return nil
}
