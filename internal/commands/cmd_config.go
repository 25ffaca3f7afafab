package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskcal/internal/core/config"
	"github.com/colonyops/taskcal/internal/core/styles"
	"github.com/colonyops/taskcal/pkg/iojson"
)

// ConfigCommandName is the command the root Before hook opens no storage for,
// so an invalid config can still be inspected.
const ConfigCommandName = "config"

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  ConfigCommandName,
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "taskcal config validate [options]",
				Description: "Validates the configuration file and reports every invalid field.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:      "show",
				Usage:     "Print the effective configuration",
				UsageText: "taskcal config show",
				Action:    cmd.runShow,
			},
		},
	})

	return app
}

type fieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	_, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)

	var problems []fieldProblem
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			problems = append(problems, fieldProblem{Field: fe.Field, Message: fe.Err.Error()})
		}
	default:
		problems = append(problems, fieldProblem{Field: "file", Message: err.Error()})
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		if err := iojson.WriteLine(w, struct {
			Valid  bool           `json:"valid"`
			Errors []fieldProblem `json:"errors,omitempty"`
		}{Valid: len(problems) == 0, Errors: problems}); err != nil {
			return err
		}
	} else {
		for _, p := range problems {
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.ErrorStyle.Render("✗"), p.Field, p.Message)
		}
		if len(problems) == 0 {
			_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("✓")+" configuration is valid")
		}
	}

	if len(problems) > 0 {
		return cli.Exit(fmt.Sprintf("%d error(s) found", len(problems)), 1)
	}
	return nil
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(cfg)
}
