package command

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/journalmap/internal/cli/repl"
	"github.com/yndnr/journalmap/internal/infra/confloader"
	"github.com/yndnr/journalmap/internal/infra/shutdown"
	"github.com/yndnr/journalmap/internal/telemetry/logger"
)

const shutdownTimeout = 5 * time.Second

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive session on the map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "history file (empty keeps history in memory)",
				Value: repl.DefaultHistoryFile(),
			},
			&cli.BoolFlag{
				Name:  "save-on-exit",
				Usage: "save the map when the shell ends",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "reload policies and log level when the config file changes",
				Value: true,
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if _, err := s.openMap(); err != nil {
		return err
	}

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()
	ctx = logger.WithLogger(ctx, s.log)

	// Hooks run in reverse: the watcher stops before the final save.
	h := shutdown.NewHandler(shutdownTimeout)
	if c.Bool("save-on-exit") {
		h.OnShutdown(func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			_, err := s.m.Save()
			return err
		})
	}
	if c.Bool("watch") && s.configPath != "" {
		w, err := watchConfig(s)
		if err != nil {
			s.log.Warn("config watch disabled", "path", s.configPath, "error", err)
		} else {
			h.OnShutdown(func(context.Context) error { return w.Stop() })
		}
	}

	handle := func(ctx context.Context, args []string) error {
		logger.FromContext(ctx).Debug("shell command", "command", args[0], "argc", len(args)-1)
		s.mu.Lock()
		defer s.mu.Unlock()
		return dispatch(mapOps, s, args)
	}
	r := repl.New(handle,
		repl.WithIO(c.App.Reader, s.out),
		repl.WithCommands(opNames(mapOps)...),
		repl.WithHistory(repl.NewHistory(c.String("history"))),
	)

	runErr := r.Run(ctx)
	return errors.Join(runErr, h.Shutdown())
}

// watchConfig reloads the session configuration whenever the config file
// changes. A bad edit is logged and the previous settings stay in force.
func watchConfig(s *session) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(s.log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(s.configPath); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(path string) {
		if err := s.reloadConfig(); err != nil {
			s.log.Warn("config reload failed", "path", path, "error", err)
		}
	})
	w.StartAsync()
	return w, nil
}
