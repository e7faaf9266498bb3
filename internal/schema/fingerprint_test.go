package schema

import "testing"

func sampleSchema() *Schema {
	return &Schema{
		Tables: map[string]*Table{
			"users": {
				Name: "users",
				Columns: []Column{
					{Name: "id", Type: IntegerType{Width: 64, Signed: true}, Default: DefaultAutoIncrement{}},
					{Name: "email", Type: TextType{}, Nullable: false},
				},
				PrimaryKey: []string{"id"},
				Unique:     []UniqueConstraint{{Name: "users_email_key", Columns: []string{"email"}}},
			},
			"orders": {
				Name: "orders",
				Columns: []Column{
					{Name: "id", Type: IntegerType{Width: 64, Signed: true}, Default: DefaultAutoIncrement{}},
					{Name: "user_id", Type: IntegerType{Width: 64, Signed: true}},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Name: "orders_user_id_fkey", LocalColumns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}, OnDelete: ActionCascade},
				},
			},
		},
		TableOrder: []string{"orders", "users"},
	}
}

func TestFingerprintDeterministicAcrossMapOrder(t *testing.T) {
	s1 := sampleSchema()
	s2 := sampleSchema()
	s2.TableOrder = []string{"users", "orders"} // different iteration order recorded

	fp1 := s1.ComputeFingerprint()
	fp2 := s2.ComputeFingerprint()
	if fp1 != fp2 {
		t.Fatalf("fingerprints differ despite identical table content: %s vs %s", fp1, fp2)
	}
	if len(fp1) != 64 {
		t.Fatalf("expected a 64-char hex sha256 digest, got %d chars", len(fp1))
	}
}

func TestFingerprintChangesWithSchema(t *testing.T) {
	s1 := sampleSchema()
	fp1 := s1.ComputeFingerprint()

	s2 := sampleSchema()
	s2.Tables["users"].Columns = append(s2.Tables["users"].Columns, Column{Name: "phone", Type: TextType{}, Nullable: true})
	fp2 := s2.ComputeFingerprint()

	if fp1 == fp2 {
		t.Fatalf("expected fingerprint to change after adding a column")
	}
}

func TestFingerprintStableAcrossUnorderedSlices(t *testing.T) {
	s1 := sampleSchema()
	s1.Tables["users"].Unique = []UniqueConstraint{
		{Columns: []string{"email"}},
		{Columns: []string{"id", "email"}},
	}
	fp1 := s1.ComputeFingerprint()

	s2 := sampleSchema()
	s2.Tables["users"].Unique = []UniqueConstraint{
		{Columns: []string{"email", "id"}},
		{Columns: []string{"email"}},
	}
	fp2 := s2.ComputeFingerprint()

	if fp1 != fp2 {
		t.Fatalf("expected fingerprint to be stable regardless of unique-constraint slice order (column sets match once sorted)")
	}
}
