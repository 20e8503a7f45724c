package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/savevault-go/pkg/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reveal",
						Usage: "Show the passphrase and salt unmasked",
					},
				},
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration",
				Action: configValidate,
			},
			{
				Name:   "reset",
				Usage:  "Overwrite the configuration file with defaults",
				Action: configReset,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := effectiveConfig(c)
	if !c.Bool("reveal") {
		cfg = config.Sanitize(cfg)
	}
	return render(c, cfg)
}

func configValidate(c *cli.Context) error {
	mgr := configManager(c)
	if err := mgr.Load(); err != nil {
		return err
	}

	err := config.Validate(effectiveConfig(c))
	if err == nil {
		fmt.Fprintf(c.App.Writer, "Configuration is valid: %s\n", mgr.Path())
		return nil
	}

	fmt.Fprintf(c.App.Writer, "Configuration has problems: %s\n", mgr.Path())
	problems := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		problems = joined.Unwrap()
	}
	for _, p := range problems {
		fmt.Fprintf(c.App.Writer, "  - %v\n", p)
	}
	return errors.New("validation failed")
}

func configReset(c *cli.Context) error {
	mgr := configManager(c)
	if err := mgr.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Configuration reset to defaults: %s\n", mgr.Path())
	return nil
}

func configPath(c *cli.Context) error {
	_, err := fmt.Fprintln(c.App.Writer, configManager(c).Path())
	return err
}
