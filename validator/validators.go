package validator

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lithictech/go-profiles/kronos"
	"github.com/lithictech/go-profiles/stringutil"
	"github.com/rgalanakis/validator"
)

func newError(s string) validator.TextErr {
	return validator.TextErr{Err: errors.New(s)}
}

var (
	// ErrInvalidUsername is the error returned when a string has characters other than letters, digits and underscores.
	ErrInvalidUsername = newError("can only contain letters, numbers, and underscores")
	// ErrInvalidEmail is the error returned when a string does not look like an email address.
	ErrInvalidEmail = newError("not a valid email address")
	// ErrInvalidPostalCode is the error returned when a string does not look like a postal code.
	ErrInvalidPostalCode = newError("not a valid postal code")
	// ErrInvalidURL is the error returned when a string is not an http(s) url for the expected host.
	ErrInvalidURL = newError("not a valid url")
	// ErrBlockedContent is the error returned when a string contains a blocked word.
	ErrBlockedContent = newError("contains inappropriate content")
)

const optional = "opt"

// Split the param string on |,
// and return a type of (other args, if param ends in |opt, error in the case of empty args).
// Examples:
//
//	"a|b" -> (["a", "b"], false, nil)
//	"a|opt" -> (["a"], true, nil)
//	"|opt" -> ([], false, <error>)
func splitOptionalVal(param string) ([]string, bool, error) {
	params := strings.Split(param, "|")
	if len(params) == 0 {
		return nil, false, validator.ErrBadParameter
	}
	optional := params[len(params)-1] == optional
	if optional {
		params = params[:len(params)-1]
	}
	if len(params) == 0 {
		return nil, false, validator.ErrBadParameter
	}
	return params, optional, nil
}

// NOTE ON POINTER FIELDS
// The underlying validator dereferences a non-nil pointer field before calling a validation func,
// so validation funcs only ever see a pointer when it is nil.
// A nil pointer is treated as "not provided", which is valid.
//
// asString returns the string value of v, for strings and named string types
// (like an enum type). isNil is true if v is a nil pointer to one of those.
func asString(v interface{}) (s string, isNil bool, ok bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() && rv.Type().Elem().Kind() == reflect.String {
			return "", true, true
		}
		return "", false, false
	}
	if rv.Kind() != reflect.String {
		return "", false, false
	}
	return rv.String(), false, true
}

func validateCaseInsensitiveEnum(v interface{}, param string) error {
	return validateEnumImpl(v, param, strings.ToLower)
}

func validateCaseSensitiveEnum(v interface{}, param string) error {
	return validateEnumImpl(v, param, nil)
}

func validateEnumImpl(v interface{}, param string, mapper func(string) string) error {
	choices, optional, err := splitOptionalVal(param)
	if err != nil {
		return err
	}
	if mapper != nil {
		choices = stringutil.Map(choices, mapper)
	}

	if s, isNil, ok := asString(v); ok {
		if isNil {
			return nil
		}
		if mapper != nil {
			s = mapper(s)
		}
		return validateEnumImplStr(s, choices, optional)
	}

	if ss, ok := v.([]string); ok {
		if optional {
			return validator.ErrBadParameter
		}
		if mapper != nil {
			ss = stringutil.Map(ss, mapper)
		}
		return validateEnumImplSlice(ss, choices)
	}

	if ptr, ok := v.(*[]string); ok && ptr == nil {
		return nil
	}

	return validator.ErrUnsupported
}

func validateEnumImplStr(s string, choices []string, optional bool) error {
	if s == "" {
		if optional {
			return nil
		}
		return newError("empty string")
	}
	for _, choice := range choices {
		if choice == s {
			return nil
		}
	}
	return newError("is not one of " + strings.Join(choices, "|"))
}

func validateEnumImplSlice(ss []string, choices []string) error {
	for _, s := range ss {
		if !stringutil.Contains(choices, s) {
			return newError("element not one of " + strings.Join(choices, "|"))
		}
	}
	return nil
}

// validateLength checks the character (not byte) count of a string.
// Usage: length=min|max or length=min|max|opt
func validateLength(v interface{}, param string) error {
	params, optional, err := splitOptionalVal(param)
	if err != nil {
		return err
	}
	if len(params) != 2 {
		return validator.ErrBadParameter
	}
	min, err := strconv.Atoi(params[0])
	if err != nil {
		return validator.ErrBadParameter
	}
	max, err := strconv.Atoi(params[1])
	if err != nil {
		return validator.ErrBadParameter
	}
	s, isNil, ok := asString(v)
	if !ok {
		return validator.ErrUnsupported
	}
	if isNil || (s == "" && optional) {
		return nil
	}
	n := utf8.RuneCountInString(s)
	if n < min {
		return newError("shorter than " + params[0] + " characters")
	}
	if n > max {
		return newError("longer than " + params[1] + " characters")
	}
	return nil
}

func makeStringValidator(malformed error, validate func(string) bool) validator.ValidationFunc {
	return func(v interface{}, param string) error {
		s, isNil, ok := asString(v)
		if !ok {
			return validator.ErrUnsupported
		}
		if isNil {
			return nil
		}
		if s == "" {
			if param == optional {
				return nil
			}
			return malformed
		}
		if !validate(s) {
			return malformed
		}
		return nil
	}
}

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validateUsername = makeStringValidator(ErrInvalidUsername, usernameRegexp.MatchString)

// Deliberately loose; this is a shape check, not an address grammar.
var emailRegexp = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)

var validateEmail = makeStringValidator(ErrInvalidEmail, emailRegexp.MatchString)

var postalCodeRegexp = regexp.MustCompile(`^[\w\s-]{3,12}$`)

var validatePostalCode = makeStringValidator(ErrInvalidPostalCode, postalCodeRegexp.MatchString)

// validateURLHost checks for an absolute http(s) url.
// The first param is the required host (a "www." prefix is also accepted),
// in which case the url must also have a path;
// or "*" for any host that has a dot in it.
// Usage: urlhost=github.com urlhost=*|opt
func validateURLHost(v interface{}, param string) error {
	params, optional, err := splitOptionalVal(param)
	if err != nil {
		return err
	}
	host := params[0]
	s, isNil, ok := asString(v)
	if !ok {
		return validator.ErrUnsupported
	}
	if isNil || (s == "" && optional) {
		return nil
	}
	// using url.Parse is worthless, it treats almost anything as valid
	u, err := url.ParseRequestURI(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	if host == "*" {
		if !strings.Contains(u.Host, ".") {
			return ErrInvalidURL
		}
		return nil
	}
	if u.Host != host && u.Host != "www."+host {
		return newError("not a " + host + " url")
	}
	if strings.Trim(u.Path, "/") == "" {
		return newError("not a " + host + " url")
	}
	return nil
}

// validateExcludes fails if the string contains any of the pipe-delimited words,
// compared case-insensitively.
// Usage: excludes=badword1|badword2
func validateExcludes(v interface{}, param string) error {
	words, _, err := splitOptionalVal(param)
	if err != nil {
		return err
	}
	s, isNil, ok := asString(v)
	if !ok {
		return validator.ErrUnsupported
	}
	if isNil {
		return nil
	}
	lower := strings.ToLower(s)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return ErrBlockedContent
		}
	}
	return nil
}

// makeValidateCompareNow validates a time.Time against the current moment.
// The first param is the operator (gt, gte, lt, lte),
// an optional second param is the kronos.Unit both times are truncated to.
// Usage: comparenow=lte comparenow=lte|day comparenow=gt|hour|opt
func makeValidateCompareNow(getNow nowSource) validator.ValidationFunc {
	return func(v interface{}, param string) error {
		validating, ok := v.(time.Time)
		if !ok {
			if ptr, ok := v.(*time.Time); ok && ptr == nil {
				return nil
			}
			return validator.ErrUnsupported
		}
		params, optional, err := splitOptionalVal(param)
		if err != nil {
			return err
		}
		unit := kronos.Instant
		if len(params) > 1 {
			unit = kronos.Unit(params[1])
		}

		var msg = ""
		c := kronos.Compare(validating, getNow(), unit)
		switch params[0] {
		case "gte":
			if c < 0 {
				msg = "before"
			}
		case "gt":
			if c <= 0 {
				msg = "before or at"
			}
		case "lte":
			if c > 0 {
				msg = "after"
			}
		case "lt":
			if c >= 0 {
				msg = "after or at"
			}
		default:
			return validator.ErrBadParameter
		}
		if msg == "" {
			return nil
		}
		if optional && validating.IsZero() {
			return nil
		}
		return newError(msg + " now")
	}
}
