package classify

import "regexp"

// rule mirrors classify::rules::ClassificationRule from
// original_source/crates/seedkit-core/src/classify/rules.rs: a compiled
// regex over the normalized column name, an optional table-name regex, and
// the kind to assign on first match.
type rule struct {
	namePattern  *regexp.Regexp
	tablePattern *regexp.Regexp // nil matches any table
	kind         SemanticKind
}

func nameRe(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?i)^(" + pattern + ")$")
}

func tableRe(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + pattern)
}

// tableContextRules are checked before generalRules, matching both the
// column name and the owning table's name — e.g. "name" in a "companies"
// table should classify as CompanyName, not FullName.
var tableContextRules = []rule{
	{nameRe("name"), tableRe(`compan(y|ies)|organi[sz]ation|vendor|merchant`), KindCompanyName},
	{nameRe("name"), tableRe(`categor(y|ies)|tag|label`), KindTitle},
	{nameRe("title"), tableRe(`job|position|role`), KindJobTitle},
	{nameRe("code"), tableRe(`currenc`), KindCurrencyCode},
	{nameRe("code"), tableRe(`countr`), KindCountryCode},
}

// generalRules are checked after tableContextRules, matching on column
// name alone. Ordered roughly by specificity: more specific patterns
// (full_name before name, created_at before _at-stripped "created") sit
// earlier so first-match-wins doesn't let a broad pattern shadow a
// narrower one.
var generalRules = []rule{
	// identity
	{nameRe(`email(_address)?`), nil, KindEmail},
	{nameRe(`first_?name|given_?name|fname`), nil, KindFirstName},
	{nameRe(`last_?name|surname|family_?name|lname`), nil, KindLastName},
	{nameRe(`full_?name|display_?name|contact_?name`), nil, KindFullName},
	{nameRe(`name`), nil, KindFullName},
	{nameRe(`user_?name|login`), nil, KindUsername},
	{nameRe(`phone(_number)?|mobile|telephone`), nil, KindPhone},
	{nameRe(`phone_?country_?code|dial_?code`), nil, KindPhoneCountryCode},
	{nameRe(`job_?title|position_?title`), nil, KindJobTitle},
	{nameRe(`compan(y|ies)_?name|employer`), nil, KindCompanyName},
	{nameRe(`department|dept`), nil, KindDepartment},

	// address
	{nameRe(`street(_address)?|address_?line_?1|addr1`), nil, KindStreet},
	{nameRe(`city|town`), nil, KindCity},
	{nameRe(`state|province|region`), nil, KindState},
	{nameRe(`zip(_?code)?|postal_?code|postcode`), nil, KindZip},
	{nameRe(`country_?code`), nil, KindCountryCode},
	{nameRe(`country|nation`), nil, KindCountry},
	{nameRe(`lat(itude)?`), nil, KindLatitude},
	{nameRe(`lon(g|gitude)?|lng`), nil, KindLongitude},

	// temporal
	{nameRe(`created_?at|created_?on|create_?time|inserted_?at`), nil, KindCreatedAt},
	{nameRe(`updated_?at|updated_?on|modified_?at|update_?time`), nil, KindUpdatedAt},
	{nameRe(`deleted_?at|removed_?at`), nil, KindDeletedAt},
	{nameRe(`birth_?date|dob|date_?of_?birth`), nil, KindBirthdate},
	{nameRe(`event_?time|occurred_?at|happened_?at`), nil, KindEventTime},
	{nameRe(`start_?date|start_?at|begins?_?at|from_?date`), nil, KindStartDate},
	{nameRe(`end_?date|end_?at|expires?_?at|to_?date|due_?date`), nil, KindEndDate},

	// numeric
	{nameRe(`price|amount|cost|total|subtotal|fee`), nil, KindPrice},
	{nameRe(`qty|quantity|count|stock|inventory`), nil, KindQuantity},
	{nameRe(`percent(age)?|pct|rate`), nil, KindPercentage},
	{nameRe(`age`), nil, KindAge},
	{nameRe(`rating|score|stars`), nil, KindRating},
	{nameRe(`currency_?code`), nil, KindCurrencyCode},
	{nameRe(`currency`), nil, KindCurrency},

	// text
	{nameRe(`slug|permalink`), nil, KindSlug},
	{nameRe(`title|headline|subject`), nil, KindTitle},
	{nameRe(`description|summary|details|notes|comment`), nil, KindDescription},
	{nameRe(`url|link|href|website|site`), nil, KindURL},
	{nameRe(`hex_?color|color_?hex`), nil, KindHex},
	{nameRe(`token|api_?key|access_?token|secret_?key|session_?id`), nil, KindToken},
	{nameRe(`hash|checksum|digest|password_?hash`), nil, KindHash},
	{nameRe(`ip_?address|ip_?addr|ipv4|ipv6`), nil, KindIP},
	{nameRe(`mac_?address|mac_?addr`), nil, KindMAC},
	{nameRe(`user_?agent|ua`), nil, KindUserAgent},
	{nameRe(`bio|about|biography`), nil, KindBio},
	{nameRe(`body|content|paragraph|article`), nil, KindParagraph},
	{nameRe(`sku|item_?code|product_?code`), nil, KindSku},
	{nameRe(`order_?number|order_?ref|invoice_?number|tracking_?number`), nil, KindOrderNumber},
}
