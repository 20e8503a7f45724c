package command

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/savevault-go/internal/cli/output"
	"github.com/yndnr/savevault-go/internal/infra/buildinfo"
	"github.com/yndnr/savevault-go/internal/storage"
	"github.com/yndnr/savevault-go/internal/telemetry/logger"
	"github.com/yndnr/savevault-go/pkg/config"
)

// metaConfig is the App.Metadata key of the Manager chosen by the Before
// hook. The logger travels in the command context.
const metaConfig = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "savevault",
		Usage:   "Inspect and manage a SaveVault save directory",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			KeysCommand(),
			ShowCommand(),
			VerifyCommand(),
			DeleteCommand(),
			RestoreCommand(),
			BackupsCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: before,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default: <user config dir>/savevault/config.yaml)",
			EnvVars: []string{"SAVEVAULT_CONFIG_FILE"},
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Save directory, overriding storage.dir",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config  string
	Dir     string
	Output  string
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:  c.String("config"),
		Dir:     c.String("dir"),
		Output:  c.String("output"),
		Verbose: c.Bool("verbose"),
	}
}

func before(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if _, err := output.ParseFormat(flags.Output); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:   "warn",
		Format:  "text",
		Verbose: flags.Verbose,
		Output:  c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	mgr := config.Global()
	if flags.Config != "" {
		mgr = config.NewManager(config.WithPath(flags.Config), config.WithLogger(log))
	}

	c.App.Metadata[metaConfig] = mgr
	c.Context = logger.WithLogger(c.Context, log)
	return nil
}

// configManager returns the Manager chosen by the Before hook.
func configManager(c *cli.Context) *config.Manager {
	if mgr, ok := c.App.Metadata[metaConfig].(*config.Manager); ok {
		return mgr
	}
	return config.Global()
}

func cliLogger(c *cli.Context) *slog.Logger {
	return logger.FromContext(c.Context)
}

// effectiveConfig loads the configuration and applies flag overrides.
func effectiveConfig(c *cli.Context) *config.Config {
	cfg := configManager(c).Get()
	if dir := ParseGlobalFlags(c).Dir; dir != "" {
		cfg.Storage.Dir = dir
	}
	return cfg
}

// openProvider opens the save directory described by the configuration.
// The caller closes it.
func openProvider(c *cli.Context) (*storage.FileProvider, error) {
	p, err := storage.Open(effectiveConfig(c), cliLogger(c), nil)
	if err != nil {
		return nil, fmt.Errorf("open save directory: %w", err)
	}
	return p, nil
}

// render writes data in the format chosen by --output.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return render(c, buildinfo.Get())
		},
	}
}
