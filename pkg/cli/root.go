// Package cli implements hrctl, the operator command line for the approval
// store: migrations, directory imports, balance expiry, and read-only lookups.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hr-approvals/internal/app"
	"hr-approvals/internal/config"
	"hr-approvals/internal/db"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if getOutputFormat(rootCmd) == "json" {
			_ = printJSON(os.Stdout, map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// storeFlags are the persistent flags that select the store.
type storeFlags struct {
	driver     string
	path       string
	url        string
	policyFile string
}

func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.driver, "db-driver", "", "Store driver: sqlite3 or postgres (env DB_DRIVER)")
	fs.StringVar(&f.path, "db-path", "", "SQLite file (env DB_PATH)")
	fs.StringVar(&f.url, "database-url", "", "Postgres DSN (env DATABASE_URL)")
	fs.StringVar(&f.policyFile, "policy", "", "Policy YAML with tenure table and role aliases (env POLICY_FILE)")
}

// session carries the resolved configuration shared by all subcommands.
type session struct {
	flags    storeFlags
	output   string
	profile  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

// resolve applies flag > env > profile > default precedence on top of the
// environment configuration.
func (s *session) resolve(fs *pflag.FlagSet) error {
	uc, err := LoadUserConfig()
	if err != nil {
		// Config file is optional
		uc = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
	}
	p, err := uc.ActiveProfile(s.profile)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	pick := func(flag, env, prof string, target *string, value string) {
		switch {
		case fs.Changed(flag):
			*target = value
		case os.Getenv(env) != "":
			// already applied by LoadFromEnv
		case prof != "":
			*target = prof
		}
	}
	pick("db-driver", "DB_DRIVER", p.DBDriver, &cfg.DBDriver, s.flags.driver)
	pick("db-path", "DB_PATH", p.DBPath, &cfg.DBPath, s.flags.path)
	pick("database-url", "DATABASE_URL", p.DatabaseURL, &cfg.DatabaseURL, s.flags.url)
	pick("policy", "POLICY_FILE", p.PolicyFile, &cfg.PolicyFile, s.flags.policyFile)
	if !fs.Changed("output") {
		if v := os.Getenv("HRCTL_OUTPUT"); v != "" {
			s.output = v
		} else if p.Output != "" {
			s.output = p.Output
		}
	}
	if err := validateOutputFormat(s.output); err != nil {
		return err
	}

	switch strings.ToLower(cfg.DBDriver) {
	case "", "sqlite", config.DriverSQLite:
		cfg.DBDriver = config.DriverSQLite
	case "postgresql", "pgx", config.DriverPostgres:
		cfg.DBDriver = config.DriverPostgres
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--database-url is required with the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}

	s.cfg = cfg
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

// openStore opens and migrates the configured store.
func (s *session) openStore(ctx context.Context) (*db.Pools, error) {
	opts := db.Options{SQLitePath: s.cfg.DBPath, MaxConns: s.cfg.DBMaxConns}
	if s.cfg.DBDriver == config.DriverPostgres {
		opts.PostgresDSN = s.cfg.DatabaseURL
	}
	return db.Open(ctx, opts)
}

// withApp opens the store, wires the engine, and runs fn.
func (s *session) withApp(ctx context.Context, fn func(a *app.App, pools *db.Pools) error) error {
	pools, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	defer pools.Close()

	a, err := app.New(app.Deps{Cfg: s.cfg, Pools: pools, Logger: s.logger})
	if err != nil {
		return err
	}
	return fn(a, pools)
}

func (s *session) json() bool { return s.output == "json" }

func newRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "HR approvals operator CLI",
		Long:          "Command-line tools for the leave approval store: migrations, directory imports, balance expiry and lookups.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.resolve(cmd.Flags())
		},
	}

	pf := rootCmd.PersistentFlags()
	s.flags.register(pf)
	pf.StringVarP(&s.output, "output", "o", "table", "Output format (table, json)")
	pf.StringVarP(&s.profile, "profile", "p", "", "Config profile to use")
	pf.StringVar(&s.logLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")

	rootCmd.AddCommand(newVersionCmd(s))
	rootCmd.AddCommand(newMigrateCmd(s))
	rootCmd.AddCommand(newImportCmd(s))
	rootCmd.AddCommand(newExpireCmd(s))
	rootCmd.AddCommand(newBalanceCmd(s))
	rootCmd.AddCommand(newApproversCmd(s))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
