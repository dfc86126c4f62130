package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darianmavgo/mktransfer/config"
	"github.com/darianmavgo/mktransfer/converters"
	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/darianmavgo/mktransfer/dbconn"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func init() {
	// -v is taken by --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "Print the version",
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	tableFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "format",
			Aliases:  []string{"f"},
			Required: true,
			Usage:    "Document format (see the formats command)",
		},
		&cli.StringFlag{
			Name:     "table",
			Aliases:  []string{"t"},
			Required: true,
			Usage:    "Table name",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Value: true,
			Usage: "Show a row counter on stderr",
		},
	}

	return &cli.App{
		Name:    "mktransfer",
		Usage:   "Move tables between a database and CSV, SQL, XML, JSON and report formats",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an HCL or YAML configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Export a table to a document",
				Flags: append(tableFlags, &cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "Output path, - for stdout (default: <export_dir>/<table>.<ext>)",
				}),
				Action: runExport,
			},
			{
				Name:  "import",
				Usage: "Import a document into a table",
				Flags: append(tableFlags, &cli.StringFlag{
					Name:    "in",
					Aliases: []string{"i"},
					Usage:   "Input path, - for stdin (default: <import_dir>/<table>.<ext>)",
				}),
				Action: runImport,
			},
			{
				Name:   "formats",
				Usage:  "List supported formats",
				Action: listFormats,
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write the default configuration",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "out",
								Value: "transfer.hcl",
								Usage: "Destination file",
							},
						},
						Action: initConfig,
					},
				},
			},
		},
	}
}

// session bundles what export and import share.
type session struct {
	pool     *dbconn.Pool
	transfer *converters.Transfer
	format   common.Format
	table    string
	bar      *progressbar.ProgressBar
	errOut   io.Writer
}

func (s *session) Close() {
	if s.bar != nil {
		s.bar.Finish()
		fmt.Fprintln(s.errOut)
	}
	s.pool.Close()
}

func openSession(c *cli.Context, verb string) (*session, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: c.App.ErrWriter, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	format, err := common.ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	pool, err := dbconn.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	s := &session{pool: pool, format: format, table: c.String("table"), errOut: c.App.ErrWriter}
	opts := []converters.TransferOption{converters.WithLogger(logger)}
	if c.Bool("progress") {
		s.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(c.App.ErrWriter),
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", verb, s.table)),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("rows"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSpinnerType(14),
		)
		opts = append(opts, converters.WithProgress(func(n int) { s.bar.Set(n) }))
	}
	s.transfer = converters.NewTransfer(cfg, pool, opts...)
	return s, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func resultError(res common.Result) error {
	if !res.Succeeded {
		return errors.New(res.ErrorDetail)
	}
	return nil
}

func runExport(c *cli.Context) error {
	s, err := openSession(c, "exporting")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	switch out := c.String("out"); out {
	case "":
		return resultError(s.transfer.ExportToFile(ctx, s.format, s.table))
	case "-":
		return resultError(s.transfer.ExportToWriter(ctx, s.format, s.table, c.App.Writer))
	default:
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		res := s.transfer.ExportToWriter(ctx, s.format, s.table, f)
		if cerr := f.Close(); cerr != nil && res.Succeeded {
			res = common.Failed(fmt.Errorf("failed to close output file: %w", cerr))
		}
		if !res.Succeeded {
			os.Remove(out)
		}
		return resultError(res)
	}
}

func runImport(c *cli.Context) error {
	s, err := openSession(c, "importing")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var in io.Reader
	switch path := c.String("in"); path {
	case "":
		return resultError(s.transfer.ImportFromFile(ctx, s.format, s.table))
	case "-":
		in = os.Stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	return resultError(s.transfer.ImportFromReader(ctx, s.format, s.table, in))
}

func listFormats(c *cli.Context) error {
	w := c.App.Writer
	fmt.Fprintf(w, "%-10s %-6s %-6s %s\n", "FORMAT", "EXPORT", "IMPORT", "EXTENSION")
	for _, f := range common.Formats() {
		imp := "no"
		if converters.CanImport(f) {
			imp = "yes"
		}
		fmt.Fprintf(w, "%-10s %-6s %-6s .%s\n", f, "yes", imp, f.Extension())
	}
	return nil
}

func initConfig(c *cli.Context) error {
	out := c.String("out")
	if err := config.Export(out, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", out)
	return nil
}
