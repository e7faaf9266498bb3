package sink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// sqlLiteral renders v as a SQL literal, grounded on the teacher's
// internal/seeder/seeder.go formatValue, generalized to the wider set of
// Go dynamic types the generator produces (time.Time, []byte).
func sqlLiteral(v generate.Value) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + x.Format(time.RFC3339) + "'"
	case []byte:
		return "'\\x" + fmt.Sprintf("%x", x) + "'"
	case []generate.Value:
		// composite key rendered as a row literal, used only in debug paths
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = sqlLiteral(p)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "'" + fmt.Sprintf("%v", x) + "'"
	}
}

// copyField renders v for SQL-COPY's tab-separated format, with \N as the
// canonical NULL marker (spec.md §6).
func copyField(v generate.Value) string {
	switch x := v.(type) {
	case nil:
		return `\N`
	case string:
		s := strings.ReplaceAll(x, `\`, `\\`)
		s = strings.ReplaceAll(s, "\t", `\t`)
		s = strings.ReplaceAll(s, "\n", `\n`)
		return s
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "t"
		}
		return "f"
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return fmt.Sprintf("\\\\x%x", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// jsonScalar normalizes v into a value encoding/json can marshal as-is.
func jsonScalar(v generate.Value) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("%x", b)
	}
	return v
}

// csvField renders v for CSV output (quoting handled by encoding/csv).
func csvField(v generate.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return fmt.Sprintf("%x", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
