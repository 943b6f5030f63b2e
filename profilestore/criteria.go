package profilestore

import (
	"strings"

	"github.com/lithictech/go-profiles/profile"
	"github.com/lithictech/go-profiles/stringutil"
)

// Criteria filters profiles for Search.
// Nil and empty fields do not filter; set fields must all match.
type Criteria struct {
	// MinAge and MaxAge are inclusive.
	MinAge *int
	MaxAge *int
	// Skills matches profiles that have at least one of these skills.
	// Comparison is exact, and stored skills are lowercase.
	Skills []string
	// City matches the address city ignoring case.
	// Profiles without an address never match.
	City     *string
	IsActive *bool
	// Gender never matches profiles without a gender.
	Gender *profile.Gender
}

// Matches is true if p satisfies every set criterion.
func (c Criteria) Matches(p profile.Profile) bool {
	if c.MinAge != nil && p.Age < *c.MinAge {
		return false
	}
	if c.MaxAge != nil && p.Age > *c.MaxAge {
		return false
	}
	if len(c.Skills) > 0 && !stringutil.ContainsAny(p.Skills, c.Skills) {
		return false
	}
	if c.City != nil && (p.Address == nil || !strings.EqualFold(p.Address.City, *c.City)) {
		return false
	}
	if c.IsActive != nil && p.IsActive != *c.IsActive {
		return false
	}
	if c.Gender != nil && (!p.HasGender() || p.Gender != *c.Gender) {
		return false
	}
	return true
}
