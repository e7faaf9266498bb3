package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/distribution"
	"github.com/seedkit-dev/seedkit/internal/introspect"
	"github.com/seedkit-dev/seedkit/internal/schema"
)

var sampleOut string

const sampleRowLimit = 500
const sampleMaxCategories = 50

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Build a distribution profile from a live database, for use with generate --subset",
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().StringVar(&sampleOut, "out", "distribution.json", "output path for the distribution profile")
}

func runSample(c *cobra.Command, args []string) error {
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
	classification := classify.Classify(s, nil, nil)

	db, err := sql.Open(driverNameFor(dialect), dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	profile := distribution.NewProfile()
	for _, t := range s.SortedTables() {
		if err := sampleTable(ctx, db, dialect, t, classification, profile); err != nil {
			color.Yellow("warning: sampling %s: %v", t.Name, err)
			continue
		}
		if err := sampleFKRatios(ctx, db, t, profile); err != nil {
			color.Yellow("warning: sampling FK ratios for %s: %v", t.Name, err)
		}
	}

	if err := distribution.Save(sampleOut, profile); err != nil {
		return err
	}
	color.Green("wrote distribution profile with %d column entries -> %s", len(profile.Columns), sampleOut)
	return nil
}

func sampleTable(ctx context.Context, db *sql.DB, dialect string, t *schema.Table, classification map[schema.ColumnKey]classify.Classification, profile *distribution.Profile) error {
	colNames := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		colNames[i] = col.Name
	}

	query := buildSelectQuery(dialect, t.Name, colNames, sampleRowLimit)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query %s: %w", t.Name, err)
	}
	defer rows.Close()

	raw := make([]sql.RawBytes, len(colNames))
	scanDest := make([]interface{}, len(colNames))
	for i := range raw {
		scanDest[i] = &raw[i]
	}

	collected := make([][]string, len(colNames))
	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			return fmt.Errorf("scan %s: %w", t.Name, err)
		}
		for i, b := range raw {
			if b == nil {
				continue
			}
			collected[i] = append(collected[i], string(b))
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i, col := range t.Columns {
		key := t.Name + "." + col.Name
		kind := classification[schema.ColumnKey{Table: t.Name, Column: col.Name}].Kind

		if isNumericType(col.Type) {
			profile.Columns[key] = numericProfile(collected[i])
		} else {
			profile.Columns[key] = categoricalProfile(collected[i], classify.PIIKinds[kind])
		}
	}
	return nil
}

func buildSelectQuery(dialect, table string, cols []string, limit int) string {
	quote := func(s string) string {
		if dialect == "mysql" {
			return "`" + s + "`"
		}
		return `"` + s + `"`
	}
	q := "SELECT "
	for i, c := range cols {
		if i > 0 {
			q += ", "
		}
		q += quote(c)
	}
	q += fmt.Sprintf(" FROM %s LIMIT %d", quote(table), limit)
	return q
}

func isNumericType(t schema.LogicalType) bool {
	switch t.(type) {
	case schema.IntegerType, schema.DecimalType, schema.FloatType:
		return true
	default:
		return false
	}
}

func numericProfile(values []string) distribution.ColumnProfile {
	var nums []float64
	for _, v := range values {
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return distribution.ColumnProfile{Kind: "numeric"}
	}

	min, max, sum := nums[0], nums[0], 0.0
	for _, n := range nums {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
		sum += n
	}
	mean := sum / float64(len(nums))

	var variance float64
	for _, n := range nums {
		variance += (n - mean) * (n - mean)
	}
	variance /= float64(len(nums))
	stddev := math.Sqrt(variance)

	return distribution.ColumnProfile{Kind: "numeric", Min: &min, Max: &max, Mean: &mean, Stddev: &stddev}
}

func categoricalProfile(values []string, pii bool) distribution.ColumnProfile {
	counts := map[string]int{}
	for _, v := range values {
		counts[v]++
	}

	type vc struct {
		value string
		count int
	}
	var sorted []vc
	for v, c := range counts {
		sorted = append(sorted, vc{v, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].value < sorted[j].value
	})
	if len(sorted) > sampleMaxCategories {
		sorted = sorted[:sampleMaxCategories]
	}

	total := 0
	for _, e := range sorted {
		total += e.count
	}

	out := distribution.ColumnProfile{Kind: "categorical"}
	for _, e := range sorted {
		v := e.value
		if pii {
			v = distribution.Mask(v)
		}
		out.Values = append(out.Values, v)
		weight := 0.0
		if total > 0 {
			weight = float64(e.count) / float64(total)
		}
		out.Weights = append(out.Weights, weight)
	}
	return out
}

// sampleFKRatios computes the observed children-per-referenced-parent-key
// ratio for each single-column foreign key, per spec.md §6's FK
// distribution profile format, and stores it in the profile. generate
// --subset does not read these ratios: its FK sampling stays uniform.
func sampleFKRatios(ctx context.Context, db *sql.DB, t *schema.Table, profile *distribution.Profile) error {
	for _, fk := range t.ForeignKeys {
		if len(fk.LocalColumns) != 1 {
			continue
		}
		col := fk.LocalColumns[0]
		query := fmt.Sprintf(
			`SELECT COUNT(*) AS total, COUNT(DISTINCT %q) AS distinct_parents FROM %q WHERE %q IS NOT NULL`,
			col, t.Name, col,
		)
		var total, distinctParents int
		if err := db.QueryRowContext(ctx, query).Scan(&total, &distinctParents); err != nil {
			continue // dialect quoting mismatch or empty table; skip this FK rather than fail the whole sample
		}
		if distinctParents == 0 {
			continue
		}
		key := t.Name + "." + col
		profile.FKs[key] = distribution.FKProfile{Ratio: float64(total) / float64(distinctParents)}
	}
	return nil
}
