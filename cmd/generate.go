package cmd

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/config"
	"github.com/seedkit-dev/seedkit/internal/distribution"
	"github.com/seedkit-dev/seedkit/internal/generate"
	"github.com/seedkit-dev/seedkit/internal/graph"
	"github.com/seedkit-dev/seedkit/internal/introspect"
	"github.com/seedkit-dev/seedkit/internal/lockfile"
	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
	"github.com/seedkit-dev/seedkit/internal/sink"
)

var (
	genRows     int
	genSeed     int64
	genFormat   string
	genOut      string
	genInclude  []string
	genExclude  []string
	genFromLock bool
	genForce    bool
	genSubset   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate seed data honoring the target schema's constraints",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genRows, "rows", 0, "default row count per table (overrides generate.rows)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "deterministic PRNG seed (overrides generate.seed)")
	generateCmd.Flags().StringVar(&genFormat, "format", "", "output format: sql|copy|json|csv|direct (overrides generate.format)")
	generateCmd.Flags().StringVar(&genOut, "out", "", "output path (file for sql/copy/json, directory for csv)")
	generateCmd.Flags().StringSliceVar(&genInclude, "include", nil, "only generate these tables")
	generateCmd.Flags().StringSliceVar(&genExclude, "exclude", nil, "skip these tables")
	generateCmd.Flags().BoolVar(&genFromLock, "from-lock", false, "reuse seed/row-counts/classification from seedkit.lock")
	generateCmd.Flags().BoolVar(&genForce, "force", false, "proceed even if the live schema drifted from the lock")
	generateCmd.Flags().StringVar(&genSubset, "subset", "", "distribution profile JSON from `seedkit sample`")
}

func runGenerate(c *cobra.Command, args []string) error {
	ctx := context.Background()
	dsn := resolveDBURL(c)
	dialect := dialectFromURL(dsn)

	ins, err := introspect.New(dialect, dsn)
	if err != nil {
		return err
	}
	s, err := ins.Introspect(ctx)
	if err != nil {
		return err
	}

	params := generate.DefaultParams(uint64(effectiveSeed()))
	var classification map[schema.ColumnKey]classify.Classification
	var cycleBreaks []string
	var oracleCache *classify.OracleCache

	lockPath := lockfile.DefaultFilename
	useFromLock := genFromLock || cfg.Generate.FromLock

	if useFromLock {
		lf, err := lockfile.Read(lockPath)
		if err != nil {
			return err
		}
		if err := lockfile.Check(s, lf); err != nil {
			if !genForce && !cfg.Generate.Force {
				return err
			}
			color.Yellow("warning: %v (continuing, --force set)", err)
		}
		classification = lf.ToClassification()
		for t, n := range lf.ToRowCounts() {
			params.RowsPerTable[t] = n
		}
		params.Seed = lf.Seed
		cycleBreaks = lf.CycleBreaks
	} else {
		oracleCache = classify.NewOracleCache(s.Fingerprint)
		classification = classify.Classify(s, nil, oracleCache)
		cycleBreaks = cfg.Graph.BreakCycleAt
	}

	for table, tc := range cfg.Tables {
		if tc.Rows > 0 && !useFromLock {
			params.RowsPerTable[table] = tc.Rows
		}
	}
	if genRows > 0 {
		params.RowsDefault = genRows
	} else if cfg.Generate.Rows > 0 {
		params.RowsDefault = cfg.Generate.Rows
	}
	params.Overrides = buildOverrides(cfg, effectiveSubset())
	params.BreakCycleAt = cycleBreaks

	plan, err := graph.Plan(s, cycleBreaks)
	if err != nil {
		return err
	}

	engine := generate.NewEngine(s, plan, classification, params)
	batches, errs := engine.Generate(ctx)

	format := effectiveFormat()
	includeSet := toSet(orDefault(genInclude, cfg.Generate.Include))
	excludeSet := toSet(orDefault(genExclude, cfg.Generate.Exclude))

	run, err := newSinkRunner(format, dialect, genOut, dsn)
	if err != nil {
		return err
	}
	defer run.close()

	tablesWritten := map[string]bool{}
	for batch := range batches {
		if !passesFilter(batch.Table, includeSet, excludeSet) {
			continue
		}
		tablesWritten[batch.Table] = true
		var writeErr error
		switch batch.Kind {
		case generate.TableBatch:
			writeErr = run.sink.WriteTableBatch(batch)
		case generate.UpdateBatch:
			writeErr = run.sink.WriteDeferredUpdate(batch)
		}
		if writeErr != nil {
			return &seedkiterr.OutputFailed{Sink: format, Err: writeErr}
		}
	}

	if err := <-errs; err != nil {
		return err
	}
	if err := run.sink.Finalize(); err != nil {
		return &seedkiterr.OutputFailed{Sink: format, Err: err}
	}

	if !useFromLock {
		rowCounts := make(map[string]int, len(s.TableOrder))
		for _, name := range s.TableOrder {
			rowCounts[name] = params.RowCount(name)
		}
		lf := lockfile.Build(s, params.Seed, rowCounts, classification, cycleBreaks, oracleCache, configSnapshot())
		if err := lockfile.Write(lockPath, lf); err != nil {
			return err
		}
	}

	color.Green("generated %d tables -> %s", len(tablesWritten), describeOutput(genOut))
	return nil
}

func effectiveSeed() int64 {
	if genSeed != 0 {
		return genSeed
	}
	if cfg.Generate.Seed != 0 {
		return cfg.Generate.Seed
	}
	return 42
}

func effectiveFormat() string {
	if genFormat != "" {
		return genFormat
	}
	if cfg.Generate.Format != "" {
		return cfg.Generate.Format
	}
	return "sql"
}

func effectiveSubset() string {
	if genSubset != "" {
		return genSubset
	}
	return cfg.Generate.Subset
}

func orDefault(flagVal, cfgVal []string) []string {
	if len(flagVal) > 0 {
		return flagVal
	}
	return cfgVal
}

func toSet(xs []string) map[string]bool {
	m := map[string]bool{}
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func passesFilter(table string, include, exclude map[string]bool) bool {
	if len(include) > 0 && !include[table] {
		return false
	}
	if exclude[table] {
		return false
	}
	return true
}

// buildOverrides resolves SPEC_FULL.md §5.3's documented decision for Open
// Question 1: an explicit config.columns.*.values override always wins
// over a --subset distribution profile's sampled weights for the same
// column, because a user-authored override is a stronger signal of
// intent than a sampled production profile.
func buildOverrides(c *config.Config, subsetPath string) map[schema.ColumnKey]generate.ColumnOverride {
	out := map[schema.ColumnKey]generate.ColumnOverride{}

	if subsetPath != "" {
		if profile, err := distribution.Load(subsetPath); err == nil {
			for key, col := range profile.Columns {
				if col.Kind != "categorical" || len(col.Values) == 0 {
					continue
				}
				table, column, ok := splitTableColumn(key)
				if !ok {
					continue
				}
				out[schema.ColumnKey{Table: table, Column: column}] = generate.ColumnOverride{
					Values:  col.Values,
					Weights: col.Weights,
				}
			}
		}
	}

	for key, oc := range c.Columns {
		table, column, ok := splitTableColumn(key)
		if !ok || len(oc.Values) == 0 {
			continue
		}
		out[schema.ColumnKey{Table: table, Column: column}] = generate.ColumnOverride{
			Values:  oc.Values,
			Weights: oc.Weights,
		}
	}

	return out
}

func splitTableColumn(key string) (string, string, bool) {
	i := strings.LastIndex(key, ".")
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

func describeOutput(out string) string {
	if out == "" {
		return "stdout"
	}
	return out
}

func configSnapshot() map[string]interface{} {
	return map[string]interface{}{
		"generate.format": effectiveFormat(),
		"generate.rows":   cfg.Generate.Rows,
	}
}

// sinkRunner owns whatever underlying resource (file, DB connection) the
// chosen sink writes through, so callers have a single close() regardless
// of format.
type sinkRunner struct {
	sink  sink.Sink
	close func() error
}

func newSinkRunner(format, dialect, out, dsn string) (*sinkRunner, error) {
	sd := toSinkDialect(dialect)

	switch format {
	case "", "sql":
		w, closeFn, err := openWriter(out)
		if err != nil {
			return nil, err
		}
		bw := bufio.NewWriter(w)
		return &sinkRunner{
			sink: sink.NewSQLInsertSink(bw, sd),
			close: func() error {
				bw.Flush()
				return closeFn()
			},
		}, nil

	case "copy":
		w, closeFn, err := openWriter(out)
		if err != nil {
			return nil, err
		}
		bw := bufio.NewWriter(w)
		return &sinkRunner{
			sink: sink.NewSQLCopySink(bw, sd),
			close: func() error {
				bw.Flush()
				return closeFn()
			},
		}, nil

	case "json":
		w, closeFn, err := openWriter(out)
		if err != nil {
			return nil, err
		}
		return &sinkRunner{sink: sink.NewJSONSink(w), close: closeFn}, nil

	case "csv":
		dir := out
		if dir == "" {
			dir = "."
		}
		return &sinkRunner{sink: sink.NewCSVSink(dir), close: func() error { return nil }}, nil

	case "direct":
		db, err := sql.Open(driverNameFor(dialect), dsn)
		if err != nil {
			return nil, fmt.Errorf("open database for direct sink: %w", err)
		}
		return &sinkRunner{
			sink:  sink.NewDirectSink(context.Background(), db, sd, 500),
			close: db.Close,
		}, nil

	default:
		return nil, &seedkiterr.ConfigInvalid{Field: "generate.format", Err: fmt.Errorf("unknown format %q", format)}
	}
}

func toSinkDialect(dialect string) sink.Dialect {
	switch dialect {
	case "mysql":
		return sink.DialectMySQL
	case "sqlite":
		return sink.DialectSQLite
	default:
		return sink.DialectPostgres
	}
}

func driverNameFor(dialect string) string {
	switch dialect {
	case "mysql":
		return "mysql"
	case "sqlite":
		return "sqlite3"
	default:
		return "pgx"
	}
}

func openWriter(out string) (*os.File, func() error, error) {
	if out == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file %s: %w", out, err)
	}
	return f, f.Close, nil
}
