package schema

import (
	"regexp"
	"strings"
)

// ParseCheckExpr parses the bounded sublanguage of check-constraint
// expressions spec.md §3 narrows over: conjunctions/disjunctions of
// `col OP literal`, `col BETWEEN a AND b`, `col IN (...)`, and
// `col IS NOT NULL`. Anything outside that grammar (function calls,
// subqueries, cross-column comparisons) returns nil, which
// internal/generate/check.go treats as an opaque predicate handled by
// rejection sampling instead of a-priori bounds narrowing. Grounded on
// original_source/crates/seedkit-core/src/schema/check_parser.rs, which
// does the same best-effort recursive-descent-or-bail parse.
func ParseCheckExpr(raw string) Predicate {
	p := strings.TrimSpace(raw)
	pred, rest := parseOr(p)
	if pred == nil || strings.TrimSpace(rest) != "" {
		return nil
	}
	return pred
}

func parseOr(s string) (Predicate, string) {
	terms, rest := splitTopLevel(s, " or ", " OR ")
	if len(terms) < 2 {
		return parseAnd(s)
	}
	var preds []Predicate
	for _, t := range terms {
		pr, r := parseAnd(t)
		if pr == nil || strings.TrimSpace(r) != "" {
			return nil, s
		}
		preds = append(preds, pr)
	}
	return Or{Terms: preds}, rest
}

func parseAnd(s string) (Predicate, string) {
	terms, rest := splitTopLevel(s, " and ", " AND ")
	if len(terms) < 2 {
		return parseAtom(s)
	}
	var preds []Predicate
	for _, t := range terms {
		pr, r := parseAtom(t)
		if pr == nil || strings.TrimSpace(r) != "" {
			return nil, s
		}
		preds = append(preds, pr)
	}
	return And{Terms: preds}, rest
}

// splitTopLevel splits s on sep (tried in both given case variants) at
// paren-depth 0 only, so "(a > 0) AND (b < (c + 1))" splits correctly.
func splitTopLevel(s string, seps ...string) ([]string, string) {
	depth := 0
	var parts []string
	start := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case '(':
			depth++
			i++
			continue
		case ')':
			depth--
			i++
			continue
		}
		if depth == 0 {
			matched := false
			for _, sep := range seps {
				if strings.HasPrefix(s[i:], sep) {
					parts = append(parts, s[start:i])
					i += len(sep)
					start = i
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		i++
	}
	parts = append(parts, s[start:])
	return parts, ""
}

var (
	reBetween = regexp.MustCompile(`(?i)^\(?\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\)?\s+BETWEEN\s+(\S+)\s+AND\s+(\S+?)\)?$`)
	reIn      = regexp.MustCompile(`(?i)^\(?\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\)?\s*=\s*ANY\s*\(\s*ARRAY\[(.*)\]\s*\)\)?$`)
	reInPlain = regexp.MustCompile(`(?i)^\(?\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\)?\s+IN\s*\((.*)\)\)?$`)
	reNotNull = regexp.MustCompile(`(?i)^\(?\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\)?\s+IS\s+NOT\s+NULL\)?$`)
	reCompare = regexp.MustCompile(`^\(*\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\)?\s*(<=|>=|<>|!=|=|<|>)\s*\(?\s*(.+?)\)*$`)
	reColRef  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func parseAtom(s string) (Predicate, string) {
	s = strings.TrimSpace(s)
	s = unwrapParens(s)

	if m := reBetween.FindStringSubmatch(s); m != nil {
		return Between{Column: m[1], Low: unquote(m[2]), High: unquote(m[3])}, ""
	}
	if m := reIn.FindStringSubmatch(s); m != nil {
		return In{Column: m[1], Values: splitValues(m[2])}, ""
	}
	if m := reInPlain.FindStringSubmatch(s); m != nil {
		return In{Column: m[1], Values: splitValues(m[2])}, ""
	}
	if m := reNotNull.FindStringSubmatch(s); m != nil {
		return NotNull{Column: m[1]}, ""
	}
	if m := reCompare.FindStringSubmatch(s); m != nil {
		lit := strings.TrimSpace(m[3])
		if reColRef.MatchString(lit) && !strings.EqualFold(lit, "true") && !strings.EqualFold(lit, "false") {
			// the right-hand side names another column: cross-column, opaque
			return nil, s
		}
		op := CompareOp(m[2])
		if op == "<>" {
			op = OpNE
		}
		return Compare{Column: m[1], Op: op, Literal: unquote(lit)}, ""
	}
	return nil, s
}

func unwrapParens(s string) string {
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		depth := 0
		balanced := true
		for i, c := range s {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 && i != len(s)-1 {
				balanced = false
				break
			}
		}
		if !balanced {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "::numeric")
	s = strings.TrimSuffix(s, "::text")
	s = strings.TrimSuffix(s, "::integer")
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func splitValues(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, unquote(strings.TrimSpace(p)))
	}
	return out
}
