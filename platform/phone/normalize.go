// Package phone normalizes visitor phone numbers so the same contact always
// lands on the same E.164 string.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion applies to numbers written without a country code.
const DefaultRegion = "US"

// Normalizer parses numbers relative to one home region.
type Normalizer struct {
	region string
}

// NewNormalizer falls back to DefaultRegion when region is not one
// libphonenumber knows.
func NewNormalizer(region string) Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if !isSupportedRegion(region) {
		region = DefaultRegion
	}
	return Normalizer{region: region}
}

func (n Normalizer) Region() string {
	if n.region == "" {
		return DefaultRegion
	}
	return n.region
}

// E164 returns the canonical form, or the trimmed input when it does not
// parse as a valid number. Keeping unparseable input lets the visitor's
// entry reach the agent instead of vanishing.
func (n Normalizer) E164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	number, ok := n.parse(trimmed)
	if !ok {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Valid reports whether input is a dialable number in any region.
func (n Normalizer) Valid(input string) bool {
	_, ok := n.parse(strings.TrimSpace(input))
	return ok
}

func (n Normalizer) parse(input string) (*phonenumbers.PhoneNumber, bool) {
	if input == "" {
		return nil, false
	}
	number, err := phonenumbers.Parse(input, n.Region())
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return nil, false
	}
	return number, true
}

// Display renders a stored E.164 number in international format for emails
// and the dashboard. Anything else is returned unchanged.
func Display(e164 string) string {
	if !strings.HasPrefix(e164, "+") {
		return e164
	}
	number, err := phonenumbers.Parse(e164, "")
	if err != nil {
		return e164
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

func isSupportedRegion(region string) bool {
	if region == "" {
		return false
	}
	_, ok := phonenumbers.GetSupportedRegions()[region]
	return ok
}
