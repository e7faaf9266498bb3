package graph

import (
	"testing"

	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

func selfRefSchema() *schema.Schema {
	return &schema.Schema{
		TableOrder: []string{"employees"},
		Tables: map[string]*schema.Table{
			"employees": {
				Name: "employees",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "manager_id", Type: schema.IntegerType{Width: 64, Signed: true}, Nullable: true},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "employees_manager_id_fkey", LocalColumns: []string{"manager_id"}, RefTable: "employees", RefColumns: []string{"id"}},
				},
			},
		},
	}
}

func TestBreakCyclesSelfReferenceNullable(t *testing.T) {
	g := Build(selfRefSchema())
	deferred, err := BreakCycles(g, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deferred) != 1 {
		t.Fatalf("expected exactly one deferred edge, got %d", len(deferred))
	}
	if deferred[0].Edge.QualifiedColumn() != "employees.manager_id" {
		t.Fatalf("unexpected deferred edge: %s", deferred[0].Edge.QualifiedColumn())
	}
}

func TestBreakCyclesSelfReferenceNonNullableUnbreakable(t *testing.T) {
	s := selfRefSchema()
	s.Tables["employees"].Columns[1].Nullable = false
	g := Build(s)

	_, err := BreakCycles(g, nil)
	if err == nil {
		t.Fatalf("expected CycleUnbreakable for a non-nullable self-reference")
	}
	if _, ok := err.(*seedkiterr.CycleUnbreakable); !ok {
		t.Fatalf("expected *seedkiterr.CycleUnbreakable, got %T", err)
	}
}

func TestBreakCyclesNonNullableBreakableViaExplicitOverride(t *testing.T) {
	s := selfRefSchema()
	s.Tables["employees"].Columns[1].Nullable = false
	g := Build(s)

	deferred, err := BreakCycles(g, []string{"employees.manager_id"})
	if err != nil {
		t.Fatalf("unexpected error with explicit break_cycle_at override: %v", err)
	}
	if len(deferred) != 1 {
		t.Fatalf("expected one deferred edge, got %d", len(deferred))
	}
}

func twoTableCycleSchema() *schema.Schema {
	return &schema.Schema{
		TableOrder: []string{"a", "b"},
		Tables: map[string]*schema.Table{
			"a": {
				Name: "a",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "b_id", Type: schema.IntegerType{Width: 64, Signed: true}, Nullable: true},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "a_b_id_fkey", LocalColumns: []string{"b_id"}, RefTable: "b", RefColumns: []string{"id"}},
				},
			},
			"b": {
				Name: "b",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "a_id", Type: schema.IntegerType{Width: 64, Signed: true}, Nullable: false},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "b_a_id_fkey", LocalColumns: []string{"a_id"}, RefTable: "a", RefColumns: []string{"id"}},
				},
			},
		},
	}
}

func TestBreakCyclesPrefersNullableEdge(t *testing.T) {
	g := Build(twoTableCycleSchema())
	deferred, err := BreakCycles(g, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deferred) != 1 {
		t.Fatalf("expected one deferred edge, got %d", len(deferred))
	}
	if deferred[0].Edge.QualifiedColumn() != "a.b_id" {
		t.Fatalf("expected the nullable a.b_id edge to be broken, got %s", deferred[0].Edge.QualifiedColumn())
	}
}

func TestBreakCyclesNoCycleNoDeferrals(t *testing.T) {
	s := &schema.Schema{
		TableOrder: []string{"parent", "child"},
		Tables: map[string]*schema.Table{
			"parent": {Name: "parent", Columns: []schema.Column{{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}}}, PrimaryKey: []string{"id"}},
			"child": {
				Name:    "child",
				Columns: []schema.Column{{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}}, {Name: "parent_id", Type: schema.IntegerType{Width: 64, Signed: true}}},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "child_parent_id_fkey", LocalColumns: []string{"parent_id"}, RefTable: "parent", RefColumns: []string{"id"}},
				},
			},
		},
	}
	g := Build(s)
	deferred, err := BreakCycles(g, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deferred) != 0 {
		t.Fatalf("expected no deferred edges for an acyclic schema, got %d", len(deferred))
	}
}
