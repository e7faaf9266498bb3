package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/graph"
	"github.com/seedkit-dev/seedkit/internal/schema"
)

// drain runs the engine to completion and returns every batch in channel
// order, failing the test on any reported error.
func drain(t *testing.T, e *Engine) []Batch {
	t.Helper()
	out, errs := e.Generate(context.Background())
	var batches []Batch
	for b := range out {
		batches = append(batches, b)
	}
	if err := <-errs; err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}
	return batches
}

func buildEngine(t *testing.T, s *schema.Schema, params Params) *Engine {
	t.Helper()
	s.ComputeFingerprint()
	plan, err := graph.Plan(s, params.BreakCycleAt)
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	classification := classify.Classify(s, nil, nil)
	return NewEngine(s, plan, classification, params)
}

func ecomSchema() *schema.Schema {
	return &schema.Schema{
		TableOrder: []string{"customers", "order_items", "orders", "products"},
		Tables: map[string]*schema.Table{
			"customers": {
				Name: "customers",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "email", Type: schema.TextType{}},
				},
				PrimaryKey: []string{"id"},
				Unique:     []schema.UniqueConstraint{{Name: "customers_email_key", Columns: []string{"email"}}},
			},
			"products": {
				Name: "products",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "price", Type: schema.FloatType{Width: 64}},
				},
				PrimaryKey: []string{"id"},
				Checks: []schema.CheckConstraint{
					{Name: "products_price_check", Raw: "(price > 0)", Predicate: schema.ParseCheckExpr("(price > 0)")},
				},
			},
			"orders": {
				Name: "orders",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "customer_id", Type: schema.IntegerType{Width: 64, Signed: true}},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "orders_customer_id_fkey", LocalColumns: []string{"customer_id"}, RefTable: "customers", RefColumns: []string{"id"}},
				},
			},
			"order_items": {
				Name: "order_items",
				Columns: []schema.Column{
					{Name: "order_id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "product_id", Type: schema.IntegerType{Width: 64, Signed: true}},
				},
				PrimaryKey: []string{"order_id", "product_id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "order_items_order_id_fkey", LocalColumns: []string{"order_id"}, RefTable: "orders", RefColumns: []string{"id"}},
					{Name: "order_items_product_id_fkey", LocalColumns: []string{"product_id"}, RefTable: "products", RefColumns: []string{"id"}},
				},
			},
		},
	}
}

// Ecommerce scenario: FKs resolve to rows that were actually generated for
// the parent table, and the unique customers.email constraint never
// collides across the whole run.
func TestScenarioEcommerceFKsResolveToGeneratedParents(t *testing.T) {
	params := DefaultParams(1)
	params.RowsPerTable = map[string]int{"customers": 5, "products": 5, "orders": 10, "order_items": 10}
	e := buildEngine(t, ecomSchema(), params)
	batches := drain(t, e)

	customerIDs := map[int64]bool{}
	productIDs := map[int64]bool{}
	var ordersBatch, orderItemsBatch Batch
	for _, b := range batches {
		switch b.Table {
		case "customers":
			idIdx := colIndex(b.Columns, "id")
			for _, row := range b.Rows {
				customerIDs[row[idIdx].(int64)] = true
			}
		case "products":
			idIdx := colIndex(b.Columns, "id")
			for _, row := range b.Rows {
				productIDs[row[idIdx].(int64)] = true
			}
		case "orders":
			ordersBatch = b
		case "order_items":
			orderItemsBatch = b
		}
	}

	for id := int64(1); id <= 5; id++ {
		if !customerIDs[id] {
			t.Fatalf("expected customers.id to be sequential {1..5}, missing %d (got %v)", id, customerIDs)
		}
	}
	for id := int64(1); id <= 5; id++ {
		if !productIDs[id] {
			t.Fatalf("expected products.id to be sequential {1..5}, missing %d (got %v)", id, productIDs)
		}
	}

	custIdx := colIndex(ordersBatch.Columns, "customer_id")
	for _, row := range ordersBatch.Rows {
		v := row[custIdx]
		if v == nil {
			continue
		}
		id := v.(int64)
		if id < 1 || id > 5 {
			t.Fatalf("orders.customer_id %d outside the generated customer range {1..5}", id)
		}
		if !customerIDs[id] {
			t.Fatalf("orders.customer_id %v does not reference a generated customer", v)
		}
	}

	prodIdx := colIndex(orderItemsBatch.Columns, "product_id")
	for _, row := range orderItemsBatch.Rows {
		v := row[prodIdx]
		if v == nil {
			continue
		}
		id := v.(int64)
		if id < 1 || id > 5 {
			t.Fatalf("order_items.product_id %d outside the generated product range {1..5}", id)
		}
		if !productIDs[id] {
			t.Fatalf("order_items.product_id %v does not reference a generated product", v)
		}
	}
}

func TestScenarioEcommerceCheckConstraintAlwaysPositivePrice(t *testing.T) {
	params := DefaultParams(2)
	params.RowsPerTable = map[string]int{"customers": 1, "products": 20, "orders": 1, "order_items": 1}
	e := buildEngine(t, ecomSchema(), params)
	batches := drain(t, e)

	for _, b := range batches {
		if b.Table != "products" {
			continue
		}
		priceIdx := colIndex(b.Columns, "price")
		for _, row := range b.Rows {
			price := row[priceIdx].(float64)
			if price <= 0 {
				t.Fatalf("expected every products.price to be > 0 per the check constraint, got %v", price)
			}
		}
	}
}

func TestScenarioEcommerceUniqueEmailNeverCollides(t *testing.T) {
	params := DefaultParams(3)
	params.RowsPerTable = map[string]int{"customers": 50, "products": 1, "orders": 1, "order_items": 1}
	e := buildEngine(t, ecomSchema(), params)
	batches := drain(t, e)

	seen := map[string]bool{}
	for _, b := range batches {
		if b.Table != "customers" {
			continue
		}
		emailIdx := colIndex(b.Columns, "email")
		for _, row := range b.Rows {
			email := row[emailIdx].(string)
			if seen[email] {
				t.Fatalf("duplicate customers.email generated: %s", email)
			}
			seen[email] = true
		}
	}
}

// Self-reference scenario: employees.manager_id resolves via deferred
// updates that only ever reference an id that was actually generated for
// the table, and never every row gets assigned a manager (index 0 can't).
func TestScenarioSelfReferenceManagerChain(t *testing.T) {
	s := selfRefSchemaForGenerate()
	params := DefaultParams(4)
	params.RowsPerTable = map[string]int{"employees": 20}
	e := buildEngine(t, s, params)
	batches := drain(t, e)

	employeeIDs := map[int64]bool{}
	var updateCount int
	for _, b := range batches {
		if b.Table != "employees" {
			continue
		}
		switch b.Kind {
		case TableBatch:
			idIdx := colIndex(b.Columns, "id")
			for _, row := range b.Rows {
				employeeIDs[row[idIdx].(int64)] = true
			}
		case UpdateBatch:
			updateCount++
			mgr, ok := b.Assignments["manager_id"].(int64)
			if !ok {
				t.Fatalf("expected manager_id assignment to be an int64, got %T", b.Assignments["manager_id"])
			}
			if !employeeIDs[mgr] {
				t.Fatalf("manager_id %d does not reference a generated employee", mgr)
			}
		}
	}

	if updateCount == 0 {
		t.Fatalf("expected at least one deferred manager_id update")
	}
	if updateCount >= len(employeeIDs) {
		t.Fatalf("expected fewer manager_id updates than rows (the first generated row never gets one), got %d updates for %d rows", updateCount, len(employeeIDs))
	}
}

func selfRefSchemaForGenerate() *schema.Schema {
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

// Determinism: two runs with the identical (schema, config, seed) produce
// byte-identical row output, per spec.md §8.
func TestScenarioDeterministicAcrossRuns(t *testing.T) {
	params := DefaultParams(99)
	params.RowsPerTable = map[string]int{"customers": 10, "products": 10, "orders": 10, "order_items": 10}

	e1 := buildEngine(t, ecomSchema(), params)
	b1 := drain(t, e1)

	e2 := buildEngine(t, ecomSchema(), params)
	b2 := drain(t, e2)

	if len(b1) != len(b2) {
		t.Fatalf("expected the same number of batches across runs, got %d vs %d", len(b1), len(b2))
	}
	for i := range b1 {
		if b1[i].Table != b2[i].Table || len(b1[i].Rows) != len(b2[i].Rows) {
			t.Fatalf("batch %d diverged: %+v vs %+v", i, b1[i], b2[i])
		}
		for r := range b1[i].Rows {
			for c := range b1[i].Rows[r] {
				if b1[i].Rows[r][c] != b2[i].Rows[r][c] {
					t.Fatalf("row %d col %d diverged: %v vs %v", r, c, b1[i].Rows[r][c], b2[i].Rows[r][c])
				}
			}
		}
	}
}

// Circular scenario: a mutual FK cycle (a.b_id nullable -> b, b.a_id
// non-nullable -> a) gets broken on the nullable edge, and the full
// pipeline still produces rows for both tables with the deferred a.b_id
// update resolving to a generated b row.
func TestScenarioCircularMutualFKBreaksOnNullableEdge(t *testing.T) {
	s := &schema.Schema{
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
					{Name: "a_id", Type: schema.IntegerType{Width: 64, Signed: true}},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "b_a_id_fkey", LocalColumns: []string{"a_id"}, RefTable: "a", RefColumns: []string{"id"}},
				},
			},
		},
	}
	params := DefaultParams(5)
	params.RowsPerTable = map[string]int{"a": 8, "b": 8}
	e := buildEngine(t, s, params)
	batches := drain(t, e)

	aIDs := map[int64]bool{}
	bIDs := map[int64]bool{}
	var updateCount int
	for _, b := range batches {
		switch {
		case b.Table == "a" && b.Kind == TableBatch:
			idIdx := colIndex(b.Columns, "id")
			for _, row := range b.Rows {
				aIDs[row[idIdx].(int64)] = true
			}
		case b.Table == "b" && b.Kind == TableBatch:
			idIdx := colIndex(b.Columns, "id")
			for _, row := range b.Rows {
				bIDs[row[idIdx].(int64)] = true
			}
		case b.Table == "a" && b.Kind == UpdateBatch:
			updateCount++
			v, ok := b.Assignments["b_id"].(int64)
			if !ok {
				t.Fatalf("expected a deferred b_id assignment to be an int64, got %T", b.Assignments["b_id"])
			}
			if !bIDs[v] {
				t.Fatalf("deferred a.b_id %d does not reference a generated b row", v)
			}
		}
	}
	if len(aIDs) != 8 || len(bIDs) != 8 {
		t.Fatalf("expected 8 rows in each table, got a=%d b=%d", len(aIDs), len(bIDs))
	}
	if updateCount == 0 {
		t.Fatalf("expected the nullable a.b_id edge to be broken and deferred")
	}
}

// Correlated scenario: forcing first_name/last_name via a column override
// still yields a consistent full_name/email built from those forced
// values, per spec.md §8.
func TestScenarioCorrelatedPersonGroupHonorsForcedNames(t *testing.T) {
	s := &schema.Schema{
		TableOrder: []string{"people"},
		Tables: map[string]*schema.Table{
			"people": {
				Name: "people",
				Columns: []schema.Column{
					{Name: "id", Type: schema.IntegerType{Width: 64, Signed: true}},
					{Name: "first_name", Type: schema.TextType{}},
					{Name: "last_name", Type: schema.TextType{}},
					{Name: "full_name", Type: schema.TextType{}},
					{Name: "email", Type: schema.TextType{}},
					{Name: "username", Type: schema.TextType{}},
				},
				PrimaryKey: []string{"id"},
			},
		},
	}
	params := DefaultParams(7)
	params.RowsPerTable = map[string]int{"people": 5}
	params.Overrides = map[schema.ColumnKey]ColumnOverride{
		{Table: "people", Column: "first_name"}: {Values: []string{"Ada"}},
		{Table: "people", Column: "last_name"}:  {Values: []string{"Lovelace"}},
	}
	e := buildEngine(t, s, params)
	batches := drain(t, e)

	fnIdx, lnIdx, fullIdx, emailIdx := -1, -1, -1, -1
	for _, b := range batches {
		if b.Table != "people" {
			continue
		}
		fnIdx = colIndex(b.Columns, "first_name")
		lnIdx = colIndex(b.Columns, "last_name")
		fullIdx = colIndex(b.Columns, "full_name")
		emailIdx = colIndex(b.Columns, "email")
		for _, row := range b.Rows {
			if row[fnIdx] != "Ada" || row[lnIdx] != "Lovelace" {
				t.Fatalf("expected forced names to win, got first=%v last=%v", row[fnIdx], row[lnIdx])
			}
			if row[fullIdx] != "Ada Lovelace" {
				t.Fatalf("expected full_name to be built from the forced names, got %v", row[fullIdx])
			}
			email, ok := row[emailIdx].(string)
			if !ok || !strings.Contains(email, "ada.lovelace@") {
				t.Fatalf("expected email to be built from the forced names, got %v", row[emailIdx])
			}
		}
	}
}

func colIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
