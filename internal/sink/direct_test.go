package sink

import "testing"

// DirectSink's WriteTableBatch/WriteDeferredUpdate require a live
// *sql.DB and are exercised by the integration suite, not here (see
// DESIGN.md). placeholder and quoteIdent are pure enough to unit test
// directly.
func TestDirectSinkPlaceholderDialectStyle(t *testing.T) {
	pg := &DirectSink{dialect: DialectPostgres}
	if got := pg.placeholder(3); got != "$3" {
		t.Fatalf("got %q, want $3", got)
	}

	my := &DirectSink{dialect: DialectMySQL}
	if got := my.placeholder(3); got != "?" {
		t.Fatalf("got %q, want ?", got)
	}

	lite := &DirectSink{dialect: DialectSQLite}
	if got := lite.placeholder(1); got != "?" {
		t.Fatalf("got %q, want ?", got)
	}
}

func TestNewDirectSinkDefaultsBatchSize(t *testing.T) {
	s := NewDirectSink(nil, nil, DialectPostgres, 0)
	if s.batchSize != 500 {
		t.Fatalf("expected default batch size 500, got %d", s.batchSize)
	}
	s2 := NewDirectSink(nil, nil, DialectPostgres, 50)
	if s2.batchSize != 50 {
		t.Fatalf("expected explicit batch size to be preserved, got %d", s2.batchSize)
	}
}
