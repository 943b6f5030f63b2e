/*
Package validator provides a number of validations useful to building APIs.
It is built on https://github.com/rgalanakis/validator
(a fork of https://github.com/go-validator/validator),
though it does not expose it. See that package for more info
and on building custom validators.

Available validators include:

	len
		For numeric numbers, len will simply make sure that the
		value is equal to the parameter given. For strings, it
		checks that the string length is exactly that number of
		characters. For slices,	arrays, and maps, validates the
		number of items. (Usage: len=10)

	max
		For numeric numbers, max will simply make sure that the
		value is lesser or equal to the parameter given. For strings,
		it checks that the string length is at most that number of
		characters. For slices,	arrays, and maps, validates the
		number of items. (Usage: max=10)

	min
		For numeric numbers, min will simply make sure that the value
		is greater or equal to the parameter given. For strings, it
		checks that the string length is at least that number of
		characters. For slices, arrays, and maps, validates the
		number of items. (Usage: min=10)

	nonzero
		This validates that the value is not zero. The appropriate
		zero value is given by the Go spec (e.g. for int it's 0, for
		string it's "", for pointers is nil, etc.) For structs, it
		will not check to see if the struct itself has all zero
		values, instead use a pointer or put nonzero on the struct's
		keys that you care about. (Usage: nonzero)

	regexp
		Only valid for string types, it will validator that the
		value matches the regular expression provided as parameter.
		(Usage: regexp=^a.*b$)

	length
		For string types (including named string types), validate the
		character count is between the two given bounds, inclusive.
		Counts runes, not bytes.
		If "|opt" is the trailing argument, an empty string is valid.
		(Usage: length=3|30 length=2|100|opt)

	username
		For string types, validate that the string contains only
		ASCII letters, digits and underscores.
		If "opt" is specified, an empty string is accepted.
		(Usage: username username=opt)

	email
		For string types, validate that the string has the shape of
		an email address (local@domain.tld). This is not a full grammar check.
		(Usage: email email=opt)

	postalcode
		For string types, validate that the string is 3 to 12 letters,
		digits, spaces or dashes.
		(Usage: postalcode postalcode=opt)

	urlhost
		For string types, validate that the string is an absolute http or https
		url. If a host is given, the url's host must be that host
		(or "www." and that host) and the url must have a path.
		If "*" is given, any host with a dot in it is accepted.
		(Usage: urlhost=github.com|opt urlhost=*|opt)

	excludes
		For string types, validate that the string does not contain any of the
		pipe-delimited words, compared case-insensitively.
		(Usage: excludes=badword1|badword2)

	enum
		For string types, validate that the string is one of the specified choices.
		Choices should be pipe-delimited. Matching is case-insensitive.
		If "|opt" is the trailing argument, treat the value as optional
		(an empty string is valid).

		For string slices, validate that each member is one of the specified choices.
		"|opt" cannot be used for string slices, since it is ambiguous in two ways.
		First, an empty slice is valid because it does not contain any invalid elements;
		use min=1 to require at least one element.
		Second, an empty string is generally an invalid element value;
		if this is not desired, use an empty enum (enum=a||b).
		(Usage: enum=bird|shark|whale enum=bird|shark|whale|opt)

	cenum
		Same as enum validator, but comparison is case-sensitive.
		(Usage: cenum=bird|shark|whale cenum=bird|shark|whale|opt)

	comparenow
		For time.Time types, validate the time relative to now.
		Specify whether the field must be after now ("gt"),
		now or after ("gte"), now or before ("lte"),
		or before now ("lt"), and optionally a kronos unit
		(second, minute, hour, day) that both times are truncated to
		before comparing. Now comes from the registry's now source,
		which is time.Now for the global registry.
		Provide a trailing "|opt" if the value is optional
		(validation will only be done if a value is provided).
		(Usage: comparenow=lte comparenow=lte|day comparenow=gt|hour|opt)

# Optional validations

Most validators support a way to specify they are optional.
Usually that is something like providing "opt" as a value, like `username=opt`,
or specifying "|opt" as a trailing value, like `enum=a|b|c|opt`.
See example usages for details.

Nil pointers are generally considered valid. See Pointers section for more details.

# Pointers

If validator is validating a pointer field, it will generally validate the underlying type the same
as non-pointer fields. The only real difference is that a nil pointer will be considered valid,
because pointer fields generally specify a value is optional.

If a nil pointer isn't valid for a pointer field, you can use the "nonzero" validation.
For example, a nil pointer is acceptable here, even though there is no trailing "|opt" flag:

	type d struct {
	    D *time.Time `json:"d" validate:"comparenow=lte|day"`
	}

However, a nil pointer is not acceptable here, because of the "nonzero" validation:

	type d struct {
	    D *time.Time `json:"d" validate:"comparenow=lte|day,nonzero"`
	}
*/
package validator
