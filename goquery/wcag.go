package goquery

// wcagCriteria maps rule IDs to the WCAG success criterion they test.
var wcagCriteria = map[string]string{
	"aria-allowed-attr":          "4.1.2 - Level A",
	"aria-hidden-body":           "4.1.2 - Level A",
	"aria-hidden-focus":          "4.1.2 - Level A",
	"aria-input-field-name":      "4.1.2 - Level A",
	"aria-required-attr":         "4.1.2 - Level A",
	"aria-required-children":     "4.1.1 - Level A",
	"aria-required-parent":       "4.1.1 - Level A",
	"aria-roles":                 "4.1.2 - Level A",
	"aria-valid-attr":            "4.1.2 - Level A",
	"aria-valid-attr-value":      "4.1.2 - Level A",
	"button-name":                "4.1.2 - Level A",
	"bypass":                     "2.4.1 - Level A",
	"color-contrast":             "1.4.3 - Level AA",
	"document-title":             "2.4.2 - Level A",
	"duplicate-id-active":        "4.1.1 - Level A",
	"duplicate-id-aria":          "4.1.1 - Level A",
	"form-field-multiple-labels": "3.3.2 - Level A",
	"frame-title":                "4.1.2 - Level A",
	"heading-order":              "1.3.1 - Level A",
	"html-has-lang":              "3.1.1 - Level A",
	"html-lang-valid":            "3.1.1 - Level A",
	"image-alt":                  "1.1.1 - Level A",
	"input-image-alt":            "1.1.1 - Level A",
	"label":                      "1.3.1 - Level A",
	"landmark-one-main":          "1.3.6 - Level AAA",
	"link-name":                  "4.1.2 - Level A",
	"list":                       "1.3.1 - Level A",
	"listitem":                   "1.3.1 - Level A",
	"meta-refresh":               "2.2.1 - Level A",
	"meta-viewport":              "1.4.4 - Level AA",
	"object-alt":                 "1.1.1 - Level A",
	"tabindex":                   "2.4.3 - Level A",
	"td-headers-attr":            "1.3.1 - Level A",
	"th-has-data-cells":          "1.3.1 - Level A",
	"valid-lang":                 "3.1.2 - Level AA",
}

// WCAGCriteria returns the WCAG criterion for a rule, or the general
// Level A criterion for unmapped accessibility rules.
func WCAGCriteria(ruleID string) string {
	if c, ok := wcagCriteria[ruleID]; ok {
		return c
	}
	return "General - Level A"
}
