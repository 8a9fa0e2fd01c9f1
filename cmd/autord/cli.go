package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/autord/internal/db"
	"github.com/hpungsan/autord/internal/editor"
	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/metrics"
	"github.com/hpungsan/autord/internal/ops"
	"github.com/hpungsan/autord/internal/slide"
	"github.com/hpungsan/autord/internal/web"
)

// maxStdinBytes caps piped input. Slide documents with embedded images
// are the largest thing read.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all commands. e is nil when
// only help or version output is needed.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "autord",
		Usage:   "Slide templates, brief conversion and pptx export",
		Version: Version,
		Commands: []*cli.Command{
			templateCmd(e),
			exportCmd(e),
			briefCmd(e),
			inspectCmd(),
			serveCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// templateCmd groups the template store commands.
func templateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Manage saved slide templates",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user template (optionally reads SlideData JSON from stdin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Template name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Template description (markdown)"},
					&cli.StringFlag{Name: "format", Usage: "Format JSON, e.g. {\"layout\":\"comparison\",\"numPoints\":4}"},
					&cli.StringFlag{Name: "variables", Usage: "Variables JSON array"},
				},
				Action: func(c *cli.Context) error {
					input := ops.CreateInput{
						Name:        c.String("name"),
						Description: c.String("description"),
					}
					if err := decodeFlag(c, "format", &input.Format); err != nil {
						return outputError(err)
					}
					if err := decodeFlag(c, "variables", &input.Variables); err != nil {
						return outputError(err)
					}
					sd, err := readSlideData(c, false)
					if err != nil {
						return outputError(err)
					}
					input.SlideData = sd

					output, err := e.svc.Create(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output.Summary())
				},
			},
			{
				Name:  "list",
				Usage: "List templates, built-ins first",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "builtin", Value: true, Usage: "Include built-in templates"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := e.svc.List(c.Context, ops.ListInput{
						IncludeBuiltin: c.Bool("builtin"),
						Limit:          c.Int("limit"),
						Offset:         c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a template",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "include-pptx", Usage: "Include the stored pptx data URI"},
				},
				Action: func(c *cli.Context) error {
					t, err := e.svc.Get(c.Context, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					if c.Bool("include-pptx") {
						return outputJSON(c, t)
					}
					return outputJSON(c, t.Summary())
				},
			},
			{
				Name:      "update",
				Usage:     "Update a user template (optionally reads replacement SlideData JSON from stdin)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
					&cli.StringFlag{Name: "format", Usage: "Replacement format JSON"},
					&cli.StringFlag{Name: "variables", Usage: "Replacement variables JSON array"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateInput{ID: c.Args().First()}
					if c.IsSet("name") {
						name := c.String("name")
						input.Name = &name
					}
					if c.IsSet("description") {
						desc := c.String("description")
						input.Description = &desc
					}
					if err := decodeFlag(c, "format", &input.Format); err != nil {
						return outputError(err)
					}
					if err := decodeFlag(c, "variables", &input.Variables); err != nil {
						return outputError(err)
					}
					sd, err := readSlideData(c, false)
					if err != nil {
						return outputError(err)
					}
					input.SlideData = sd

					output, err := e.svc.Update(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output.Summary())
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a user template",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := e.svc.Delete(c.Context, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "select",
				Usage:     "Select the template generators should follow (no id: show the selection)",
				ArgsUsage: "[id]",
				Action: func(c *cli.Context) error {
					var (
						t   *ops.Template
						err error
					)
					if c.NArg() > 0 {
						t, err = e.svc.Select(c.Context, c.Args().First())
					} else {
						t, err = e.svc.Selected(c.Context)
					}
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, t.Summary())
				},
			},
			{
				Name:  "save-slide",
				Usage: "Export SlideData JSON from stdin and store it on a template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Existing user template to overwrite"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Template name (default: slide title)"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Template description"},
					&cli.StringFlag{Name: "ops", Usage: "Edit operations JSON array applied first"},
				},
				Action: func(c *cli.Context) error {
					s, err := editSession(c)
					if err != nil {
						return outputError(err)
					}
					output, err := e.svc.SaveSlide(c.Context, ops.SaveSlideInput{
						ID:          c.String("id"),
						Name:        c.String("name"),
						Description: c.String("description"),
						SlideData:   s.Document(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output.Summary())
				},
			},
		},
	}
}

// ExportOutput describes a written presentation.
type ExportOutput struct {
	Path     string `json:"path,omitempty"`
	FileName string `json:"file_name"`
	Size     int    `json:"size"`
	DataURI  string `json:"data_uri,omitempty"`
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export SlideData JSON from stdin to a .pptx file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path in ~/.autord/exports or allowed_paths (default: ~/.autord/exports/<title>.pptx)"},
			&cli.StringFlag{Name: "ops", Usage: "Edit operations JSON array applied before export"},
			&cli.BoolFlag{Name: "data-uri", Usage: "Print a data URI instead of writing a file"},
		},
		Action: func(c *cli.Context) error {
			s, err := editSession(c)
			if err != nil {
				return outputError(err)
			}
			if err := s.Document().Validate(); err != nil {
				return outputError(err)
			}

			var out ExportOutput
			save := func(_ context.Context, _ slide.SlideData, a *export.Artifact) error {
				var derr error
				out, derr = e.deliver(c, a)
				return derr
			}
			if err := s.Save(c.Context, e.exp, save); err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// briefCmd groups the generator-output commands.
func briefCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "brief",
		Usage: "Turn generated brief text into slides",
		Subcommands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "Extract a brief JSON object from text on stdin",
				Action: func(c *cli.Context) error {
					text, err := requireStdin(c, "brief text")
					if err != nil {
						return outputError(err)
					}
					b, ok := slide.ParseBrief(text)
					metrics.RecordBrief(slide.SourceJSON, ok)
					if !ok {
						return outputError(errors.NewUnparseable("brief JSON"))
					}
					return outputJSON(c, b)
				},
			},
			{
				Name:  "convert",
				Usage: "Convert markdown prose on stdin into a brief and slide",
				Action: func(c *cli.Context) error {
					md, err := requireStdin(c, "markdown")
					if err != nil {
						return outputError(err)
					}
					b, ok := slide.FromMarkdown(md, e.cfg.Thresholds())
					metrics.RecordBrief(slide.SourceMarkdown, ok)
					if !ok {
						return outputError(errors.NewUnparseable("markdown"))
					}
					return outputJSON(c, map[string]any{
						"brief":      b,
						"slide_data": b.SlideData(),
					})
				},
			},
			{
				Name:  "export",
				Usage: "Export a brief (JSON or markdown on stdin) to a .pptx file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path in ~/.autord/exports or allowed_paths (default: ~/.autord/exports/<title>.pptx)"},
					&cli.BoolFlag{Name: "data-uri", Usage: "Print a data URI instead of writing a file"},
				},
				Action: func(c *cli.Context) error {
					text, err := readStdin(c, maxStdinBytes)
					if err != nil {
						return outputError(err)
					}
					b, source, err := slide.ResolveBrief(nil, text, e.cfg.Thresholds())
					if source != "" {
						metrics.RecordBrief(source, err == nil)
					}
					if err != nil {
						return outputError(err)
					}
					a, err := e.exp.ExportBrief(c.Context, b)
					if err != nil {
						return outputError(err)
					}
					out, err := e.deliver(c, a)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// inspectCmd creates the inspect command.
func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the text of each slide in a .pptx file",
		ArgsUsage: "<file.pptx>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return outputError(errors.NewInvalidRequest("a .pptx path is required"))
			}
			sum, err := export.InspectFile(path)
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot read %s: %v", path, err)))
			}
			return outputJSON(c, sum)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8314, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(web.Deps{
				Templates: e.svc,
				Exporter:  e.exp,
				Config:    e.cfg,
				Log:       e.log,
			}, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv, e.log)
		},
	}
}

// deliver writes a to the --output path, the exports directory, or stdout
// as a data URI.
func (e *env) deliver(c *cli.Context, a *export.Artifact) (ExportOutput, error) {
	out := ExportOutput{FileName: a.FileName, Size: len(a.Bytes)}
	if c.Bool("data-uri") {
		out.DataURI = a.DataURI()
		return out, nil
	}

	exportsDir := db.ExportsDir(e.baseDir)
	path := c.String("output")
	if path == "" {
		path = filepath.Join(exportsDir, a.FileName)
	}
	written, err := ops.WriteFile(path, exportsDir, a.Bytes, e.cfg)
	if err != nil {
		return out, err
	}
	out.Path = written
	return out, nil
}

// Helper functions

// editSession reads SlideData from stdin and applies the --ops flag.
func editSession(c *cli.Context) (*editor.Session, error) {
	sd, err := readSlideData(c, true)
	if err != nil {
		return nil, err
	}
	s := editor.NewSession(*sd)
	if raw := c.String("ops"); raw != "" {
		edits, err := editor.ParseOps([]byte(raw))
		if err != nil {
			return nil, err
		}
		if _, err := s.ApplyAll(edits); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// readSlideData decodes SlideData JSON from stdin. Without piped input it
// returns nil, or an error when required.
func readSlideData(c *cli.Context, required bool) (*slide.SlideData, error) {
	if !stdinHasData(c) {
		if required {
			return nil, errors.NewInvalidRequest("SlideData JSON must be piped via stdin")
		}
		return nil, nil
	}
	text, err := readStdin(c, maxStdinBytes)
	if err != nil {
		return nil, err
	}
	if text == "" {
		if required {
			return nil, errors.NewInvalidRequest("SlideData JSON is required")
		}
		return nil, nil
	}
	var sd slide.SlideData
	if err := json.Unmarshal([]byte(text), &sd); err != nil {
		return nil, errors.NewInvalidRequest("stdin must be a SlideData JSON document: " + err.Error())
	}
	return &sd, nil
}

// requireStdin reads non-empty piped input.
func requireStdin(c *cli.Context, what string) (string, error) {
	if !stdinHasData(c) {
		return "", errors.NewInvalidRequest(what + " must be piped via stdin")
	}
	text, err := readStdin(c, maxStdinBytes)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.NewInvalidRequest(what + " is required")
	}
	return text, nil
}

// decodeFlag unmarshals a JSON-valued flag into dst when the flag is set.
func decodeFlag(c *cli.Context, name string, dst any) error {
	raw := c.String(name)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("--%s must be valid JSON: %v", name, err))
	}
	return nil
}

// outputJSON marshals result to the app's writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var codeColor = color.New(color.FgRed, color.Bold)

// outputError formats error for CLI.
func outputError(err error) error {
	e := errors.As(err)
	msg := e.Message
	if e.Code == errors.ErrInternal {
		if cause, ok := e.Details["internal_error"].(string); ok {
			msg = cause
		}
	}
	return cli.Exit(fmt.Sprintf("%s %s", codeColor.Sprintf("[%s]", e.Code), msg), 1)
}

// stdinHasData returns true if the app reader has piped data (not a terminal).
func stdinHasData(c *cli.Context) bool {
	f, ok := c.App.Reader.(*os.File)
	if !ok {
		return c.App.Reader != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes of piped input.
func readStdin(c *cli.Context, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(c.App.Reader, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}
