package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/journalmap/internal/config"
	"github.com/yndnr/journalmap/internal/infra/buildinfo"
	"github.com/yndnr/journalmap/internal/infra/confloader"
	"github.com/yndnr/journalmap/internal/telemetry/logger"
	"github.com/yndnr/journalmap/internal/telemetry/metric"
)

const sessionKey = "session"

// App creates the CLI application.
func App() *cli.App {
	commands := make([]*cli.Command, 0, len(mapOps)+5)
	for _, o := range mapOps {
		commands = append(commands, o.command())
	}
	commands = append(commands,
		ShellCommand(),
		ConfigCommand(),
		VersionCommand(),
		SaltCommand(),
	)

	return &cli.App{
		Name:                 "jmapctl",
		Usage:                "Inspect and edit a journaled map on disk",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands,
		Metadata:             map[string]any{},
		EnableBashCompletion: true,
		Before:               before,
		After:                after,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"JMAPCTL_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "snapshot",
			Usage: "snapshot file path",
		},
		&cli.StringFlag{
			Name:  "journal",
			Usage: "journal file path",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:  "flush-on-mutation",
			Usage: "append every mutation to the journal as it happens",
		},
		&cli.BoolFlag{
			Name:  "retain-journal",
			Usage: "rewrite the journal from unsaved mutations on save instead of deleting it",
		},
		&cli.BoolFlag{
			Name:  "sync-writes",
			Usage: "fsync the journal after every append",
		},
		&cli.BoolFlag{
			Name:  "strict-tail",
			Usage: "fail on a torn journal tail instead of truncating it",
		},
		&cli.Int64Flag{
			Name:  "auto-compact",
			Usage: "save automatically once the journal exceeds this many bytes (0 disables)",
		},
		&cli.StringFlag{
			Name:  "value-codec",
			Usage: "value encoding: string, json, proto",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write Prometheus metrics to this file on exit",
		},
	}
}

// flagOverrides maps explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	set := func(flag, key string, value any) {
		if c.IsSet(flag) {
			overrides[key] = value
		}
	}

	set("snapshot", "map.snapshot", c.String("snapshot"))
	set("journal", "map.journal", c.String("journal"))
	set("output", "output", c.String("output"))
	set("flush-on-mutation", "policy.flush_on_mutation", c.Bool("flush-on-mutation"))
	set("retain-journal", "policy.retain_journal_on_save", c.Bool("retain-journal"))
	set("sync-writes", "policy.sync_writes", c.Bool("sync-writes"))
	set("auto-compact", "policy.auto_compact_bytes", c.Int64("auto-compact"))
	set("value-codec", "codec.value", c.String("value-codec"))
	set("log-level", "log.level", c.String("log-level"))
	set("metrics-file", "metrics.file", c.String("metrics-file"))
	if c.IsSet("strict-tail") {
		policy := "truncate"
		if c.Bool("strict-tail") {
			policy = "strict"
		}
		overrides["policy.tail_policy"] = policy
	}
	return overrides
}

// loadConfig builds the effective configuration: defaults, then the file,
// the JMAP_ environment and finally the flags.
func loadConfig(path string, overrides map[string]any) (*config.Config, error) {
	cfg := config.Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func before(c *cli.Context) error {
	path := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(path, overrides)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	s := &session{
		cfg:        cfg,
		configPath: path,
		overrides:  overrides,
		log:        log,
		metrics:    metric.NewRegistry(),
		out:        c.App.Writer,
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	c.App.Metadata[sessionKey] = s
	return nil
}

func after(c *cli.Context) error {
	s, ok := c.App.Metadata[sessionKey].(*session)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, sessionKey)

	err := s.close()
	if file := s.cfg.Metrics.File; file != "" {
		if werr := s.metrics.WriteToTextfile(file); werr != nil {
			err = errors.Join(err, fmt.Errorf("write metrics: %w", werr))
		}
	}
	return err
}

// sessionFrom retrieves the session set up by the Before hook.
func sessionFrom(c *cli.Context) (*session, error) {
	if s, ok := c.App.Metadata[sessionKey].(*session); ok {
		return s, nil
	}
	return nil, errors.New("command: session not initialized")
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
