package beams

import (
	"regexp"
	"unicode/utf16"
)

// Limits enforced by the remote service.
const (
	MaxUserIDLength   = 164
	MaxInterestLength = 164
	MaxInterests      = 100
	MaxUsers          = 1000
)

// interestPattern is anchored; the empty string matches.
var interestPattern = regexp.MustCompile(`^(_|\-|=|@|,|\.|;|[A-Z]|[a-z]|[0-9])*$`)

// ValidateTokenUserID applies the user ID rules used for token issuance.
// v is typically a string; nil means the argument was not supplied.
func ValidateTokenUserID(v any) (string, error) {
	if v == nil {
		return "", NewError(ErrMissingArgument, "userId argument is required")
	}
	if s, ok := v.(string); ok && s == "" {
		return "", NewError(ErrEmptyIdentifier, "userId cannot be the empty string")
	}
	s, ok := v.(string)
	if !ok {
		return "", NewError(ErrInvalidType, "userId must be a string")
	}
	if length(s) > MaxUserIDLength {
		return "", NewError(ErrTooLong, "userId is longer than the maximum length of %d", MaxUserIDLength)
	}
	return s, nil
}

// ValidateUserID applies the user ID rules used for user deletion. Unlike
// ValidateTokenUserID it does not reject the empty string.
func ValidateUserID(v any) (string, error) {
	if v == nil {
		return "", NewError(ErrMissingArgument, "User ID argument is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", NewError(ErrInvalidType, "User ID argument must be a string")
	}
	if length(s) > MaxUserIDLength {
		return "", NewError(ErrTooLong, "User ID argument is too long")
	}
	return s, nil
}

// ValidateInterests checks an interest set. v may be a []string or, when it
// comes from decoded JSON, a []any whose elements must all be strings. A nil
// slice counts as a missing argument.
func ValidateInterests(v any) ([]string, error) {
	items, err := collection("interests", "interest", v, MaxInterests)
	if err != nil {
		return nil, err
	}
	interests := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, NewError(ErrInvalidType, "interest %v is not a string", item)
		}
		if length(s) > MaxInterestLength {
			return nil, NewError(ErrTooLong,
				"interest %s is longer than the maximum of %d characters", s, MaxInterestLength)
		}
		if !interestPattern.MatchString(s) {
			return nil, NewError(ErrForbiddenCharacter,
				"interest %q contains a forbidden character. Allowed characters are: "+
					"ASCII upper/lower-case letters, numbers or one of _-=@,.;", s)
		}
		interests[i] = s
	}
	return interests, nil
}

// ValidateUsers checks a user set. It accepts the same shapes as
// ValidateInterests but has no character restriction.
func ValidateUsers(v any) ([]string, error) {
	items, err := collection("users", "user", v, MaxUsers)
	if err != nil {
		return nil, err
	}
	users := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, NewError(ErrInvalidType, "user %v is not a string", item)
		}
		if length(s) > MaxUserIDLength {
			return nil, NewError(ErrTooLong,
				"user %s is longer than the maximum of %d characters", s, MaxUserIDLength)
		}
		users[i] = s
	}
	return users, nil
}

// ValidatePublishRequest rejects a missing payload. Its contents are not
// inspected.
func ValidatePublishRequest(req PublishRequest) error {
	if req == nil {
		return NewError(ErrMissingArgument, "publishRequest argument is required")
	}
	return nil
}

// length counts s in UTF-16 code units, the unit the service measures
// identifiers in. Characters outside the Basic Multilingual Plane count twice.
func length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// collection runs the presence, type and size rules shared by interest and
// user sets and returns the elements for per-element checks.
func collection(name, element string, v any, limit int) ([]any, error) {
	var items []any
	switch c := v.(type) {
	case nil:
		return nil, NewError(ErrMissingArgument, "%s argument is required", name)
	case []string:
		if c == nil {
			return nil, NewError(ErrMissingArgument, "%s argument is required", name)
		}
		items = make([]any, len(c))
		for i, s := range c {
			items[i] = s
		}
	case []any:
		if c == nil {
			return nil, NewError(ErrMissingArgument, "%s argument is required", name)
		}
		items = c
	default:
		return nil, NewError(ErrInvalidType, "%s argument must be an array", name)
	}

	if len(items) < 1 {
		return nil, NewError(ErrEmptyCollection,
			"Publish requests must target at least one %s to be delivered", element)
	}
	if len(items) > limit {
		return nil, NewError(ErrTooManyElements,
			"Number of %s (%d) exceeds maximum of %d.", name, len(items), limit)
	}
	return items, nil
}
