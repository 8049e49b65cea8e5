package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/ops"
	"github.com/hpungsan/tagdrop/internal/web"
)

// maxStdinBytes bounds descriptions read from stdin.
const maxStdinBytes = 1 << 20

// env holds what the commands run against.
type env struct {
	db  *sql.DB
	cfg *config.Config
	svc *dropdown.Service
	log *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "tagdrop",
		Usage:   "Taxonomy dropdown widgets",
		Version: Version,
		Commands: []*cli.Command{
			renderCmd(e),
			legacyCmd(e),
			taxonomyCmd(e),
			termCmd(e),
			widgetCmd(e),
			seedCmd(e),
			optionCmd(e),
			lifecycleCmd(e, "activate", "Run activation cleanup of legacy stored settings", ops.Activate),
			lifecycleCmd(e, "deactivate", "Run deactivation cleanup of legacy stored settings", ops.Deactivate),
			serveCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// settingsFlags are shared by commands that take a raw options bag.
func settingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "options", Usage: "Options bag as a JSON object"},
		&cli.StringSliceFlag{Name: "set", Aliases: []string{"s"}, Usage: "Option as key=value (repeatable)"},
	}
}

// renderCmd creates the render command.
func renderCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render a dropdown from an options bag",
		Flags: append(settingsFlags(),
			&cli.StringFlag{Name: "id", Usage: "Instance id: number or slug"},
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
		),
		Action: func(c *cli.Context) error {
			raw, err := parseSettings(c.String("options"), c.StringSlice("set"))
			if err != nil {
				return outputError(err)
			}

			input := ops.RenderDropdownInput{Options: raw}
			if c.IsSet("id") {
				input.ID = c.String("id")
			}

			output, err := ops.RenderDropdown(c.Context, e.svc, input)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(c, output)
			}
			return outputMarkup(c, output.Markup)
		},
	}
}

// legacyCmd creates the legacy command.
func legacyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "legacy",
		Usage:     "Render through a deprecated entry point (" + strings.Join(ops.ShimNames(), ", ") + ")",
		ArgsUsage: "<shim>",
		Flags: append(settingsFlags(),
			&cli.StringFlag{Name: "limit", Usage: "Maximum name length (tdw_direct, make_tag_dropdown)"},
			&cli.BoolFlag{Name: "count", Usage: "Show post counts (tdw_direct)"},
			&cli.StringFlag{Name: "exclude", Usage: "Comma-separated term ids to exclude (tdw_direct)"},
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one shim name is required"))
			}

			args, err := parseSettings(c.String("options"), c.StringSlice("set"))
			if err != nil {
				return outputError(err)
			}
			if c.IsSet("limit") {
				args["limit"] = c.String("limit")
			}
			if c.IsSet("count") {
				args["count"] = c.Bool("count")
			}
			if c.IsSet("exclude") {
				args["exclude"] = c.String("exclude")
			}

			output, err := ops.RenderLegacy(c.Context, e.svc, ops.RenderLegacyInput{
				Shim: c.Args().First(),
				Args: args,
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(c, output)
			}
			return outputMarkup(c, output.Markup)
		},
	}
}

// taxonomyCmd creates the taxonomy command group.
func taxonomyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "taxonomy",
		Usage: "Manage taxonomies",
		Subcommands: []*cli.Command{
			{
				Name:      "register",
				Usage:     "Register or update a taxonomy",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Display label (defaults to name)"},
					&cli.BoolFlag{Name: "private", Usage: "Register as non-public"},
					&cli.BoolFlag{Name: "hierarchical", Usage: "Register as hierarchical"},
				},
				Action: func(c *cli.Context) error {
					public := !c.Bool("private")
					output, err := ops.RegisterTaxonomy(c.Context, e.db, ops.RegisterTaxonomyInput{
						Name:         c.Args().First(),
						Label:        c.String("label"),
						Public:       &public,
						Hierarchical: c.Bool("hierarchical"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "list",
				Usage: "List taxonomies a dropdown may use",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include private, hierarchical and reserved taxonomies"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListTaxonomies(c.Context, e.db, ops.ListTaxonomiesInput{All: c.Bool("all")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// termFlags address a term by taxonomy and slug when no id is given.
func termFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "taxonomy", Aliases: []string{"t"}, Usage: "Taxonomy (default: post_tag)"},
		&cli.StringFlag{Name: "slug", Usage: "Term slug"},
	}
}

// termCmd creates the term command group.
func termCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "term",
		Usage: "Manage terms",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a term (description \"-\" reads stdin)",
				ArgsUsage: "<name>",
				Flags: append(termFlags(),
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Markdown description"},
					&cli.IntFlag{Name: "count", Aliases: []string{"c"}, Usage: "Number of objects the term is assigned to"},
				),
				Action: func(c *cli.Context) error {
					description := c.String("description")
					if description == "-" {
						text, err := readStdin(maxStdinBytes)
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
						description = text
					}

					output, err := ops.AddTerm(c.Context, e.db, e.cfg, ops.AddTermInput{
						Taxonomy:    c.String("taxonomy"),
						Name:        strings.Join(c.Args().Slice(), " "),
						Slug:        c.String("slug"),
						Description: description,
						Count:       c.Int("count"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "list",
				Usage: "List the terms of a taxonomy",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "taxonomy", Aliases: []string{"t"}, Usage: "Taxonomy (default: post_tag)"},
					&cli.StringFlag{Name: "orderby", Usage: "Sort field: name|count"},
					&cli.StringFlag{Name: "order", Usage: "Sort direction: ASC|DESC"},
					&cli.BoolFlag{Name: "hide-empty", Usage: "Skip terms with a zero count"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
					&cli.IntFlag{Name: "offset", Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListTerms(c.Context, e.db, ops.ListTermsInput{
						Taxonomy:  c.String("taxonomy"),
						OrderBy:   c.String("orderby"),
						Order:     strings.ToUpper(c.String("order")),
						HideEmpty: c.Bool("hide-empty"),
						Limit:     c.Int("limit"),
						Offset:    c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "fetch",
				Usage:     "Fetch a term by id or by taxonomy and slug",
				ArgsUsage: "[id]",
				Flags:     termFlags(),
				Action: func(c *cli.Context) error {
					id, err := optionalIDArg(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.FetchTerm(c.Context, e.db, e.cfg, ops.FetchTermInput{
						ID:       id,
						Taxonomy: c.String("taxonomy"),
						Slug:     c.String("slug"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "count",
				Usage:     "Set how many objects a term is assigned to",
				ArgsUsage: "<id> <count>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return outputError(errors.NewInvalidRequest("id and count are required"))
					}
					id, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
					if err != nil {
						return outputError(errors.NewInvalidRequest("id must be an integer"))
					}
					count, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return outputError(errors.NewInvalidRequest("count must be an integer"))
					}
					output, err := ops.SetTermCount(c.Context, e.db, e.cfg, ops.SetTermCountInput{ID: id, Count: count})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a term by id or by taxonomy and slug",
				ArgsUsage: "[id]",
				Flags:     termFlags(),
				Action: func(c *cli.Context) error {
					id, err := optionalIDArg(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.DeleteTerm(c.Context, e.db, ops.DeleteTermInput{
						ID:       id,
						Taxonomy: c.String("taxonomy"),
						Slug:     c.String("slug"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// widgetFlags address a widget by number when no id is given.
func widgetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "number", Aliases: []string{"n"}, Usage: "Widget number"},
	}
}

// widgetCmd creates the widget command group.
func widgetCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "widget",
		Usage: "Manage dropdown widgets",
		Subcommands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Create or update a widget; settings replace the stored ones",
				ArgsUsage: "[id]",
				Flags:     append(widgetFlags(), settingsFlags()...),
				Action: func(c *cli.Context) error {
					settings, err := parseSettings(c.String("options"), c.StringSlice("set"))
					if err != nil {
						return outputError(err)
					}
					output, err := ops.SaveWidget(c.Context, e.db, e.svc, ops.SaveWidgetInput{
						ID:       c.Args().First(),
						Number:   c.Int64("number"),
						Settings: settings,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "fetch",
				Usage:     "Fetch a widget by id or number",
				ArgsUsage: "[id]",
				Flags:     widgetFlags(),
				Action: func(c *cli.Context) error {
					output, err := ops.FetchWidget(c.Context, e.db, ops.FetchWidgetInput{
						ID:     c.Args().First(),
						Number: c.Int64("number"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "list",
				Usage: "List widgets",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
					&cli.IntFlag{Name: "offset", Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListWidgets(c.Context, e.db, ops.ListWidgetsInput{
						Limit:  c.Int("limit"),
						Offset: c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a widget by id or number",
				ArgsUsage: "[id]",
				Flags:     widgetFlags(),
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteWidget(c.Context, e.db, ops.DeleteWidgetInput{
						ID:     c.Args().First(),
						Number: c.Int64("number"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "display",
				Usage:     "Render a widget with its sidebar wrapper",
				ArgsUsage: "[id]",
				Flags: append(widgetFlags(),
					&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
				),
				Action: func(c *cli.Context) error {
					output, err := ops.DisplayWidget(c.Context, e.db, e.svc, ops.DisplayWidgetInput{
						ID:     c.Args().First(),
						Number: c.Int64("number"),
					})
					if err != nil {
						return outputError(err)
					}
					if c.Bool("json") {
						return outputJSON(c, output)
					}
					return outputMarkup(c, output.Markup)
				},
			},
		},
	}
}

// seedCmd creates the seed command.
func seedCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Import taxonomies, terms, widgets and options from a YAML file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.ImportModeReplace), Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one seed file path is required"))
			}
			output, err := ops.ImportSeed(c.Context, e.db, e.svc, ops.ImportSeedInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// optionCmd creates the option command group for host settings.
func optionCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "option",
		Usage: "Read and write stored host settings",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print a stored setting",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("exactly one key is required"))
					}
					output, err := ops.FetchOption(c.Context, e.db, ops.FetchOptionInput{Key: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "set",
				Usage:     "Store a setting; the value is JSON, or a plain string",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return outputError(errors.NewInvalidRequest("key and value are required"))
					}
					var value any
					if err := json.Unmarshal([]byte(c.Args().Get(1)), &value); err != nil {
						value = c.Args().Get(1)
					}
					output, err := ops.SetOption(c.Context, e.db, ops.SetOptionInput{Key: c.Args().First(), Value: value})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// lifecycleCmd creates the activate and deactivate commands.
func lifecycleCmd(e *env, name, usage string, fn func(context.Context, *sql.DB) (*ops.CleanupOutput, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			output, err := fn(c.Context, e.db)
			if err != nil {
				return outputError(err)
			}
			if len(output.Removed) > 0 {
				e.log.Info("legacy options removed", zap.Strings("keys", output.Removed))
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the host pages and the dropdown helper over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(e.db, e.cfg, e.svc, e.log, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv, e.log); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON writes result to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputMarkup writes rendered markup followed by a newline. Empty markup
// (no terms to show) prints nothing.
func outputMarkup(c *cli.Context, markup string) error {
	if markup == "" {
		return nil
	}
	_, err := fmt.Fprintln(c.App.Writer, markup)
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	tErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
}

// optionalIDArg parses a positional numeric id, or 0 when absent.
func optionalIDArg(c *cli.Context) (int64, error) {
	if c.NArg() == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("id must be an integer")
	}
	return id, nil
}

// parseSettings builds a raw options bag from a JSON object and key=value
// pairs. Pairs override JSON keys; a key given more than once becomes a list.
func parseSettings(jsonObj string, pairs []string) (map[string]any, error) {
	raw := make(map[string]any)
	if strings.TrimSpace(jsonObj) != "" {
		if err := json.Unmarshal([]byte(jsonObj), &raw); err != nil {
			return nil, errors.NewInvalidRequest("options must be a JSON object")
		}
		if raw == nil {
			raw = make(map[string]any)
		}
	}

	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid option %q: want key=value", pair))
		}
		if !seen[key] {
			seen[key] = true
			raw[key] = value
			continue
		}
		switch prev := raw[key].(type) {
		case []string:
			raw[key] = append(prev, value)
		case string:
			raw[key] = []string{prev, value}
		}
	}
	return raw, nil
}

// readStdin reads all content from stdin up to limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
