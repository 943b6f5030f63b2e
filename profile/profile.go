// Package profile defines the user profile record
// and the Validator that turns raw field data into one.
package profile

import (
	"time"
)

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
	// GenderUnknown is never stored; it is how an absent gender is counted.
	GenderUnknown Gender = "unknown"
)

type Address struct {
	Street     string `json:"street" validate:"length=5|200"`
	City       string `json:"city" validate:"length=2|100"`
	State      string `json:"state,omitempty" validate:"length=2|100|opt"`
	Country    string `json:"country" validate:"length=2|100"`
	PostalCode string `json:"postal_code" validate:"postalcode"`
}

type SocialMedia struct {
	LinkedIn string `json:"linkedin,omitempty" validate:"urlhost=linkedin.com|opt"`
	Twitter  string `json:"twitter,omitempty" validate:"urlhost=twitter.com|opt"`
	GitHub   string `json:"github,omitempty" validate:"urlhost=github.com|opt"`
	Website  string `json:"website,omitempty" validate:"urlhost=*|opt"`
}

// Profile is a fully validated user profile.
// Only a Validator should construct one from outside input.
type Profile struct {
	UserID      int          `json:"user_id" validate:"min=1"`
	Username    string       `json:"username" validate:"length=3|30,username"`
	Email       string       `json:"email" validate:"email"`
	FirstName   string       `json:"first_name" validate:"length=1|50"`
	LastName    string       `json:"last_name" validate:"length=1|50"`
	Age         int          `json:"age" validate:"min=13,max=120"`
	Gender      Gender       `json:"gender,omitempty" validate:"cenum=male|female|other|prefer_not_to_say|opt"`
	DateOfBirth *time.Time   `json:"date_of_birth,omitempty" validate:"comparenow=lte|day"`
	Bio         string       `json:"bio,omitempty" validate:"length=0|500|opt,excludes=badword1|badword2"`
	Skills      []string     `json:"skills" validate:"max=20"`
	Address     *Address     `json:"address,omitempty"`
	SocialMedia *SocialMedia `json:"social_media,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// HasGender is false when the profile did not specify a gender.
func (p Profile) HasGender() bool {
	return p.Gender != ""
}

// GenderOrUnknown returns the gender, or GenderUnknown if there is none.
func (p Profile) GenderOrUnknown() Gender {
	if p.HasGender() {
		return p.Gender
	}
	return GenderUnknown
}

// Clone returns a deep copy, so the result shares no memory with p.
func (p Profile) Clone() Profile {
	c := p
	if p.Skills != nil {
		c.Skills = append(make([]string, 0, len(p.Skills)), p.Skills...)
	}
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		c.DateOfBirth = &dob
	}
	if p.UpdatedAt != nil {
		ua := *p.UpdatedAt
		c.UpdatedAt = &ua
	}
	if p.Address != nil {
		a := *p.Address
		c.Address = &a
	}
	if p.SocialMedia != nil {
		sm := *p.SocialMedia
		c.SocialMedia = &sm
	}
	return c
}
