package pii

import "strings"

// Classification precedence is fixed: direct identifiers win over sensitive
// attributes, which win over quasi-identifiers, then contact info, then
// household info. A field like "ssnVerificationNotes" is a direct identifier
// even though it also matches the generic notes fallthrough.
var classifierRules = []struct {
	category   Category
	substrings []string
}{
	{CategoryDirectIdentifier, []string{
		"ssn", "socialsecurity", "firstname", "lastname", "fullname", "legalname",
	}},
	{CategorySensitiveAttribute, []string{
		"medical", "financial", "income", "disability", "diagnosis", "treatment",
	}},
	{CategoryQuasiIdentifier, []string{
		"birth", "dob", "age", "address", "zip", "race", "ethnicity",
	}},
	{CategoryContactInfo, []string{
		"email", "phone", "contact", "mobile", "telephone",
	}},
	{CategoryHouseholdInfo, []string{
		"household", "family", "dependent", "children",
	}},
}

// Classify maps a field's semantic name to its sensitivity category.
// Pure and total: the same label always yields the same category, and
// unmatched labels default to CategoryServiceData.
func Classify(fieldLabel string) Category {
	lower := strings.ToLower(fieldLabel)
	for _, rule := range classifierRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.category
			}
		}
	}
	return CategoryServiceData
}
