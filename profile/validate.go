package profile

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/lithictech/go-profiles/convext"
	"github.com/lithictech/go-profiles/kronos"
	"github.com/lithictech/go-profiles/stringutil"
	"github.com/lithictech/go-profiles/validator"
)

// Validator turns raw field data into a Profile.
// On failure the error is a *ValidationError.
type Validator interface {
	Validate(raw map[string]interface{}) (Profile, error)
}

// AgeTolerance is how far a given age may be from the age
// calculated from the date of birth.
const AgeTolerance = 1

// StructValidator is the default Validator.
// It decodes raw input, fills defaults, normalizes text fields,
// and runs the `validate` struct tags on Profile and its nested types.
type StructValidator struct {
	now      func() time.Time
	registry *validator.Registry
}

var _ Validator = &StructValidator{}

// NewValidator returns a StructValidator that uses now
// for created_at defaults and date checks. Nil means time.Now.
func NewValidator(now func() time.Time) *StructValidator {
	if now == nil {
		now = time.Now
	}
	return &StructValidator{now: now, registry: validator.NewRegistry(now)}
}

type addressInput struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	Country    *string `json:"country"`
	PostalCode *string `json:"postal_code"`
}

// input mirrors Profile, but with pointers so we can tell
// a missing field from a zero one, and strings for times so
// a bad date is reported at its field.
type input struct {
	UserID      *int          `json:"user_id"`
	Username    *string       `json:"username"`
	Email       *string       `json:"email"`
	FirstName   *string       `json:"first_name"`
	LastName    *string       `json:"last_name"`
	Age         *int          `json:"age"`
	Gender      *string       `json:"gender"`
	DateOfBirth *string       `json:"date_of_birth"`
	Bio         *string       `json:"bio"`
	Skills      []string      `json:"skills"`
	Address     *addressInput `json:"address"`
	SocialMedia *SocialMedia  `json:"social_media"`
	IsActive    *bool         `json:"is_active"`
	CreatedAt   *string       `json:"created_at"`
	UpdatedAt   *string       `json:"updated_at"`
}

type errorList struct {
	errs    []FieldError
	flagged map[string]bool
}

func (l *errorList) add(loc, msg string) {
	if l.flagged == nil {
		l.flagged = map[string]bool{}
	}
	l.errs = append(l.errs, FieldError{Location: loc, Message: msg})
	l.flagged[loc] = true
}

func (l *errorList) has(loc string) bool {
	return l.flagged[loc]
}

func (l *errorList) err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: l.errs}
}

func (v *StructValidator) Validate(raw map[string]interface{}) (Profile, error) {
	var in input
	if err := convext.FromObject(raw, &in); err != nil {
		return Profile{}, decodeError(err)
	}
	errs := &errorList{}
	now := v.now()

	requireInt(errs, "user_id", in.UserID)
	requireStr(errs, "username", in.Username)
	requireStr(errs, "email", in.Email)
	requireStr(errs, "first_name", in.FirstName)
	requireStr(errs, "last_name", in.LastName)
	requireInt(errs, "age", in.Age)

	p := Profile{
		UserID:    derefInt(in.UserID),
		Username:  derefStr(in.Username),
		Email:     derefStr(in.Email),
		FirstName: strings.TrimSpace(derefStr(in.FirstName)),
		LastName:  strings.TrimSpace(derefStr(in.LastName)),
		Age:       derefInt(in.Age),
		Gender:    Gender(derefStr(in.Gender)),
		Bio:       strings.TrimSpace(derefStr(in.Bio)),
		Skills:    normalizeSkills(in.Skills),
		IsActive:  true,
		CreatedAt: now,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.DateOfBirth != nil && *in.DateOfBirth != "" {
		dob, err := kronos.ParseDate(*in.DateOfBirth, time.UTC)
		if err != nil {
			errs.add("date_of_birth", "invalid date, expected YYYY-MM-DD")
		} else {
			p.DateOfBirth = &dob
		}
	}
	if in.CreatedAt != nil && *in.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, *in.CreatedAt); err != nil {
			errs.add("created_at", "invalid timestamp, expected RFC3339")
		} else {
			p.CreatedAt = t
		}
	}
	if in.UpdatedAt != nil && *in.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, *in.UpdatedAt); err != nil {
			errs.add("updated_at", "invalid timestamp, expected RFC3339")
		} else {
			p.UpdatedAt = &t
		}
	}
	if in.Address != nil {
		p.Address = buildAddress(errs, in.Address)
	}
	if in.SocialMedia != nil {
		sm := *in.SocialMedia
		p.SocialMedia = &sm
	}

	if err := v.registry.Validate(&p); err != nil {
		addTagErrors(errs, err)
	}

	if p.DateOfBirth != nil && !errs.has("age") && !errs.has("date_of_birth") {
		calculated := kronos.YearsBetween(*p.DateOfBirth, now)
		if diff := calculated - p.Age; diff > AgeTolerance || diff < -AgeTolerance {
			errs.add("", fmt.Sprintf("age %d does not match date of birth (calculated: %d)", p.Age, calculated))
		}
	}

	if err := errs.err(); err != nil {
		return Profile{}, err
	}
	p.Username = strings.ToLower(p.Username)
	return p, nil
}

func buildAddress(errs *errorList, in *addressInput) *Address {
	requireStr(errs, "address.street", in.Street)
	requireStr(errs, "address.city", in.City)
	requireStr(errs, "address.country", in.Country)
	requireStr(errs, "address.postal_code", in.PostalCode)
	return &Address{
		Street:     derefStr(in.Street),
		City:       derefStr(in.City),
		State:      derefStr(in.State),
		Country:    derefStr(in.Country),
		PostalCode: strings.TrimSpace(derefStr(in.PostalCode)),
	}
}

// normalizeSkills trims, lowercases, drops empties,
// and removes duplicates keeping the first.
func normalizeSkills(skills []string) []string {
	return stringutil.Uniq(stringutil.Map(stringutil.Compact(skills), strings.ToLower))
}

func requireStr(errs *errorList, loc string, s *string) {
	if s == nil {
		errs.add(loc, "field required")
	}
}

func requireInt(errs *errorList, loc string, i *int) {
	if i == nil {
		errs.add(loc, "field required")
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// addTagErrors adds the struct tag errors, with their Go field paths
// converted into json locations. Fields already flagged
// (usually because they are missing) are not reported twice.
func addTagErrors(errs *errorList, err error) {
	errMap, ok := err.(validator.ErrorMap)
	if !ok {
		errs.add("", err.Error())
		return
	}
	type located struct {
		loc  string
		errs validator.ErrorArray
	}
	all := make([]located, 0, len(errMap))
	for goPath, arr := range errMap {
		all = append(all, located{jsonPath(reflect.TypeOf(Profile{}), goPath), arr})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].loc < all[j].loc })
	for _, l := range all {
		if errs.has(l.loc) {
			continue
		}
		for _, e := range l.errs {
			errs.add(l.loc, e.Error())
		}
	}
}

// jsonPath converts a Go field path like "Address.PostalCode"
// to the json path "address.postal_code" by walking the struct tags of t.
func jsonPath(t reflect.Type, goPath string) string {
	parts := strings.Split(goPath, ".")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			result = append(result, strings.ToLower(part))
			t = nil
			continue
		}
		f, ok := t.FieldByName(part)
		if !ok {
			result = append(result, strings.ToLower(part))
			t = nil
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" {
			name = strings.ToLower(part)
		}
		result = append(result, name)
		t = f.Type
	}
	return strings.Join(result, ".")
}

func decodeError(err error) *ValidationError {
	if te, ok := err.(*json.UnmarshalTypeError); ok {
		return NewValidationError(te.Field, "must be "+describeKind(te.Type))
	}
	return NewValidationError("", "invalid input: "+err.Error())
}

func describeKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a " + t.Kind().String()
}
