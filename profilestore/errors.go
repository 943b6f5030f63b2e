package profilestore

import "github.com/pkg/errors"

var (
	// ErrDuplicateIdentifier is returned when creating a profile whose user_id is taken.
	ErrDuplicateIdentifier = errors.New("user_id already exists")
	// ErrDuplicateKey is returned when a username is taken (case-insensitively)
	// by another profile.
	ErrDuplicateKey = errors.New("username already exists")
	ErrNotFound     = errors.New("profile not found")
)
