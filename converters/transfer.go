package converters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darianmavgo/mktransfer/config"
	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/darianmavgo/mktransfer/dbconn"

	"github.com/rs/zerolog"
)

// Transfer exports tables to external formats and imports them back. Every
// operation checks out its own connection and returns a common.Result; no
// error or panic escapes it.
type Transfer struct {
	cfg      *config.Config
	provider dbconn.Provider
	logger   zerolog.Logger
	progress func(rows int)
	clock    func() time.Time
}

// TransferOption configures a Transfer.
type TransferOption func(*Transfer)

// WithLogger sets the logger receiving one terminal event per operation.
func WithLogger(l zerolog.Logger) TransferOption {
	return func(t *Transfer) { t.logger = l }
}

// WithProgress registers a hook called with the running row count.
func WithProgress(fn func(rows int)) TransferOption {
	return func(t *Transfer) { t.progress = fn }
}

// WithClock overrides the export timestamp source.
func WithClock(clock func() time.Time) TransferOption {
	return func(t *Transfer) { t.clock = clock }
}

// NewTransfer creates a Transfer. A nil cfg uses config.DefaultConfig.
func NewTransfer(cfg *config.Config, provider dbconn.Provider, opts ...TransferOption) *Transfer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	t := &Transfer{
		cfg:      cfg,
		provider: provider,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Transfer) options() common.Options {
	opts := t.cfg.Options(t.provider.Dialect())
	opts.Clock = t.clock
	return opts
}

// ExportPath is where ExportToFile writes table in format.
func (t *Transfer) ExportPath(format common.Format, table string) string {
	return filepath.Join(t.cfg.ExportDir, table+"."+format.Extension())
}

// ImportPath is where ImportFromFile reads table in format.
func (t *Transfer) ImportPath(format common.Format, table string) string {
	return filepath.Join(t.cfg.ImportDir, table+"."+format.Extension())
}

// ExportToFile writes table to the export directory. A failed export
// leaves no file behind.
func (t *Transfer) ExportToFile(ctx context.Context, format common.Format, table string) common.Result {
	return t.run("export", format, table, func() (int, error) {
		if err := common.ValidateIdentifier(table); err != nil {
			return 0, common.Malformed(err, "bad table")
		}
		path := t.ExportPath(format, table)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return 0, fmt.Errorf("failed to create export directory: %w", err)
		}

		tmp, err := os.CreateTemp(filepath.Dir(path), "."+table+"-*.tmp")
		if err != nil {
			return 0, fmt.Errorf("failed to create temp file: %w", err)
		}
		committed := false
		defer func() {
			if !committed {
				tmp.Close()
				os.Remove(tmp.Name())
			}
		}()

		n, err := t.export(ctx, format, table, tmp)
		if err != nil {
			return 0, err
		}
		if err := tmp.Chmod(0644); err != nil {
			return 0, fmt.Errorf("failed to set file mode: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return 0, fmt.Errorf("failed to close temp file: %w", err)
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			return 0, fmt.Errorf("failed to move export into place: %w", err)
		}
		committed = true
		t.logger.Debug().Str("path", path).Msg("export written")
		return n, nil
	})
}

// ExportToWriter streams table to w. On failure w may hold a partial
// document.
func (t *Transfer) ExportToWriter(ctx context.Context, format common.Format, table string, w io.Writer) common.Result {
	return t.run("export", format, table, func() (int, error) {
		return t.export(ctx, format, table, w)
	})
}

// ExportToString renders table in memory. The text is empty on failure.
func (t *Transfer) ExportToString(ctx context.Context, format common.Format, table string) (string, common.Result) {
	var buf bytes.Buffer
	res := t.run("export", format, table, func() (int, error) {
		return t.export(ctx, format, table, &buf)
	})
	if !res.Succeeded {
		return "", res
	}
	return buf.String(), res
}

// ImportFromFile loads <import_dir>/<table>.<ext> into table.
func (t *Transfer) ImportFromFile(ctx context.Context, format common.Format, table string) common.Result {
	return t.run("import", format, table, func() (int, error) {
		if err := common.ValidateIdentifier(table); err != nil {
			return 0, common.Malformed(err, "bad table")
		}
		f, err := os.Open(t.ImportPath(format, table))
		if err != nil {
			return 0, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		return t.load(ctx, format, table, f)
	})
}

// ImportFromReader loads the document read from r into table.
func (t *Transfer) ImportFromReader(ctx context.Context, format common.Format, table string, r io.Reader) common.Result {
	return t.run("import", format, table, func() (int, error) {
		return t.load(ctx, format, table, r)
	})
}

// ImportFromString loads an in-memory document into table.
func (t *Transfer) ImportFromString(ctx context.Context, format common.Format, table, s string) common.Result {
	return t.ImportFromReader(ctx, format, table, strings.NewReader(s))
}

func (t *Transfer) export(ctx context.Context, format common.Format, table string, w io.Writer) (int, error) {
	if err := common.ValidateIdentifier(table); err != nil {
		return 0, common.Malformed(err, "bad table")
	}
	g, err := NewGenerator(format, t.options())
	if err != nil {
		return 0, err
	}

	conn, err := t.provider.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return 0, common.Connectivity(err, "failed to query %s", table)
	}
	defer rows.Close()

	rc, err := common.NewRowsCursor(rows)
	if err != nil {
		return 0, common.Connectivity(err, "failed to describe %s", table)
	}
	cur := &countingCursor{Cursor: rc, progress: t.progress}
	if err := g.Generate(cur, w, table); err != nil {
		return 0, err
	}
	return cur.rows, nil
}

func (t *Transfer) load(ctx context.Context, format common.Format, table string, r io.Reader) (int, error) {
	if err := common.ValidateIdentifier(table); err != nil {
		return 0, common.Malformed(err, "bad table")
	}
	opts := t.options()
	p, err := NewParser(format, opts)
	if err != nil {
		return 0, err
	}
	plan, err := p.Parse(r, table)
	if err != nil {
		return 0, err
	}

	conn, err := t.provider.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	n, err := NewLoader(conn, opts.Dialect, t.logger).Load(ctx, plan)
	if err != nil {
		return 0, err
	}
	if t.progress != nil {
		t.progress(n)
	}
	return n, nil
}

// run executes one operation and logs its single terminal event.
func (t *Transfer) run(op string, format common.Format, table string, fn func() (int, error)) (res common.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s panicked: %v", op, r)
			t.logger.Error().Err(err).Str("op", op).Str("format", format.String()).Str("table", table).Msg("transfer failed")
			res = common.Failed(err)
		}
	}()

	n, err := fn()
	if err != nil {
		t.logger.Error().
			Err(err).
			Str("kind", common.ErrorKind(err)).
			Str("op", op).
			Str("format", format.String()).
			Str("table", table).
			Msg("transfer failed")
		return common.Failed(err)
	}

	t.logger.Info().
		Str("op", op).
		Str("format", format.String()).
		Str("table", table).
		Int("rows", n).
		Dur("duration", time.Since(start)).
		Msg("transfer completed")
	return common.Succeeded(n)
}

// countingCursor counts rows as a generator consumes them.
type countingCursor struct {
	common.Cursor
	rows     int
	progress func(rows int)
}

func (c *countingCursor) Next() bool {
	if !c.Cursor.Next() {
		return false
	}
	c.rows++
	if c.progress != nil {
		c.progress(c.rows)
	}
	return true
}
