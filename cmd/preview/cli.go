package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/ops"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/web"
)

// clipboard is the destination of the copy command; tests swap it for a fake.
var clipboard ops.Clipboard = ops.SystemClipboard

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "preview",
		Usage:   "Self-contained previews of HTML creative bundles",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(db, cfg),
			listCmd(db),
			searchCmd(db),
			showCmd(db),
			selectCmd(db),
			selectedCmd(db),
			deleteCmd(db),
			clearCmd(db),
			exportCmd(db, cfg),
			copyCmd(db),
			inferCmd(cfg),
			uiCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ingestCmd creates the ingest command.
func ingestCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Add one or more .zip bundles to the collection",
		ArgsUsage: "<archive.zip>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one archive path is required"))
			}

			// A single archive fails loudly; a batch reports per item
			if c.NArg() == 1 {
				output, err := ops.Ingest(c.Context, db, cfg, ops.IngestInput{Path: c.Args().First()})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			output, err := ops.IngestBatch(c.Context, db, cfg, ops.IngestBatchInput{Paths: c.Args().Slice()})
			if err != nil {
				return outputError(err)
			}
			if err := outputJSON(output); err != nil {
				return err
			}
			if output.Ingested == 0 {
				return cli.Exit(fmt.Sprintf("no archive was ingested (%d failed)", output.Failed), 1)
			}
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List bundles in ingestion order",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Fuzzy-search bundles by name",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum items to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a bundle (defaults to the selected one)",
		ArgsUsage: "[--no-html] [id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-html", Usage: "Exclude the document from output"},
		},
		Action: func(c *cli.Context) error {
			id, err := optionalArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			input := ops.FetchInput{ID: id}
			if c.Bool("no-html") {
				includeHTML := false
				input.IncludeHTML = &includeHTML
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// selectCmd creates the select command.
func selectCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "select",
		Usage:     "Make a bundle the selected one",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Select(c.Context, db, ops.SelectInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// selectedCmd creates the selected command.
func selectedCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "selected",
		Usage: "Show which bundle is selected",
		Action: func(c *cli.Context) error {
			output, err := ops.Selected(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently remove a bundle",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every bundle",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm removal"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("clear removes every bundle; pass --yes to confirm"))
			}
			output, err := ops.Clear(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a bundle's document to <name>.html",
		ArgsUsage: "[--path P] [id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.preview/exports/<name>.html)"},
		},
		Action: func(c *cli.Context) error {
			id, err := optionalArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				ID:   id,
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// copyCmd creates the copy command.
func copyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy a bundle's document to the clipboard",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			output, err := ops.Copy(c.Context, db, clipboard, ops.CopyInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// inferCmd creates the infer command.
func inferCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "infer",
		Usage:     "Infer name and size of an .html document or .zip bundle without storing it (reads HTML from stdin when no path is given)",
		ArgsUsage: "[--filename F] [file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filename", Aliases: []string{"f"}, Usage: "Filename hint for HTML read from stdin"},
		},
		Action: func(c *cli.Context) error {
			path, err := optionalArg(c, "file")
			if err != nil {
				return outputError(err)
			}
			input := ops.InferInput{
				Path:     path,
				Filename: c.String("filename"),
			}
			if input.Path == "" && stdinHasData() {
				html, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.HTML = html
			}

			output, err := ops.Infer(c.Context, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8040, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port: %d", port)))
			}
			srv, err := web.NewServer(db, cfg, Version, c.String("bind"), port)
			if err != nil {
				return outputError(err)
			}
			return web.Run(c.Context, srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if perr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", perr.Code, perr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// optionalArg returns the single optional positional argument. Flags must precede it:
// urfave/cli stops flag parsing at the first positional, so "export <id> --path x"
// would otherwise drop --path silently.
func optionalArg(c *cli.Context, name string) (string, error) {
	if c.NArg() > 1 {
		return "", errors.NewInvalidRequest(fmt.Sprintf(
			"expected at most one %s, got %q (put flags before the %s)", name, c.Args().Slice(), name))
	}
	return c.Args().First(), nil
}
