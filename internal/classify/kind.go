// Package classify assigns a SemanticKind to every column of a schema,
// driving which value generator package generate dispatches to for that
// column.
package classify

// SemanticKind is the closed tagged union from spec.md §3, expanded per
// SPEC_FULL.md §5.2 to the ~50 variants the original Rust classifier
// (classify/rules.rs) carries. It is represented as a string enum rather
// than an interface-of-structs because every variant is parameterless
// except Fk and EnumOf, which carry their target/name inline in the
// Classification struct rather than in the kind itself — this keeps
// SemanticKind comparable and usable as a plain map value and switch tag.
type SemanticKind string

const (
	// structural — assigned from schema metadata, before rule matching
	KindPk      SemanticKind = "pk"
	KindFk      SemanticKind = "fk"
	KindBoolean SemanticKind = "boolean"
	KindJSON    SemanticKind = "json"
	KindUUID    SemanticKind = "uuid"
	KindEnumOf  SemanticKind = "enum_of"
	KindUnknown SemanticKind = "unknown"

	// identity
	KindEmail            SemanticKind = "email"
	KindFirstName        SemanticKind = "first_name"
	KindLastName         SemanticKind = "last_name"
	KindFullName         SemanticKind = "full_name"
	KindUsername         SemanticKind = "username"
	KindPhone            SemanticKind = "phone"
	KindPhoneCountryCode SemanticKind = "phone_country_code"
	KindJobTitle         SemanticKind = "job_title"
	KindCompanyName      SemanticKind = "company_name"
	KindDepartment       SemanticKind = "department"

	// address
	KindStreet      SemanticKind = "street"
	KindCity        SemanticKind = "city"
	KindState       SemanticKind = "state"
	KindZip         SemanticKind = "zip"
	KindCountry     SemanticKind = "country"
	KindCountryCode SemanticKind = "country_code"
	KindLatitude    SemanticKind = "latitude"
	KindLongitude   SemanticKind = "longitude"

	// temporal
	KindCreatedAt SemanticKind = "created_at"
	KindUpdatedAt SemanticKind = "updated_at"
	KindDeletedAt SemanticKind = "deleted_at"
	KindBirthdate SemanticKind = "birthdate"
	KindEventTime SemanticKind = "event_time"
	KindStartDate SemanticKind = "start_date"
	KindEndDate   SemanticKind = "end_date"

	// numeric
	KindPrice        SemanticKind = "price"
	KindQuantity     SemanticKind = "quantity"
	KindPercentage   SemanticKind = "percentage"
	KindAge          SemanticKind = "age"
	KindRating       SemanticKind = "rating"
	KindCurrency     SemanticKind = "currency"
	KindCurrencyCode SemanticKind = "currency_code"

	// text
	KindSlug        SemanticKind = "slug"
	KindTitle       SemanticKind = "title"
	KindDescription SemanticKind = "description"
	KindURL         SemanticKind = "url"
	KindHex         SemanticKind = "hex"
	KindToken       SemanticKind = "token"
	KindHash        SemanticKind = "hash"
	KindIP          SemanticKind = "ip"
	KindMAC         SemanticKind = "mac"
	KindUserAgent   SemanticKind = "user_agent"
	KindBio         SemanticKind = "bio"
	KindParagraph   SemanticKind = "paragraph"
	KindSku         SemanticKind = "sku"
	KindOrderNumber SemanticKind = "order_number"
)

// PIIKinds lists the SemanticKind values treated as personally-identifying
// for the purposes of distribution-profile masking (spec.md §6). Grounded
// on original_source/crates/seedkit-core/src/sample/mask.rs's PII_PATTERNS,
// narrowed to the kinds this classifier actually assigns.
var PIIKinds = map[SemanticKind]bool{
	KindEmail:     true,
	KindPhone:     true,
	KindFirstName: true,
	KindLastName:  true,
	KindFullName:  true,
	KindStreet:    true,
	KindToken:     true,
	KindHash:      true,
	KindUsername:  true,
}

// Classification is the result of classifying one column: the kind plus
// any kind-specific parameter (Fk's target table, EnumOf's enum name).
type Classification struct {
	Kind      SemanticKind
	FkTarget  string // only meaningful when Kind == KindFk
	EnumName  string // only meaningful when Kind == KindEnumOf
}
