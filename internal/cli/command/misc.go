package command

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/journalmap/internal/cli/output"
	"github.com/yndnr/journalmap/internal/config"
	"github.com/yndnr/journalmap/internal/infra/buildinfo"
	"github.com/yndnr/journalmap/pkg/crypto/adaptive"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			s, err := sessionFrom(c)
			if err != nil {
				return err
			}
			return s.print(buildinfo.Get())
		},
	}
}

// SaltCommand returns the salt command.
func SaltCommand() *cli.Command {
	return &cli.Command{
		Name:  "salt",
		Usage: "Generate a random salt for encryption.salt",
		Action: func(c *cli.Context) error {
			s, err := sessionFrom(c)
			if err != nil {
				return err
			}
			salt, err := adaptive.NewSalt()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(s.out, hex.EncodeToString(salt))
			return err
		},
	}
}

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration with secrets masked",
				Action: func(c *cli.Context) error {
					s, err := sessionFrom(c)
					if err != nil {
						return err
					}
					cfg := config.Sanitize(s.cfg)
					if s.format() == output.FormatTable {
						return output.NewFormatter(output.FormatYAML, false).Format(s.out, cfg)
					}
					return s.print(cfg)
				},
			},
		},
	}
}
