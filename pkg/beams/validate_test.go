package beams_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmerrifield20/beams/pkg/beams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertKind(t *testing.T, err error, kind beams.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "want kind %q, got %v", kind, err)
	if msg != "" {
		assert.Equal(t, msg, err.Error())
	}
	var be *beams.Error
	require.True(t, errors.As(err, &be))
	assert.True(t, be.IsValidation())
}

func repeatSlice(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestValidateTokenUserID(t *testing.T) {
	cases := []struct {
		name string
		in   any
		kind beams.Kind
		msg  string
	}{
		{"nil", nil, beams.ErrMissingArgument, "userId argument is required"},
		{"empty", "", beams.ErrEmptyIdentifier, "userId cannot be the empty string"},
		{"not a string", false, beams.ErrInvalidType, "userId must be a string"},
		{"number", 42.0, beams.ErrInvalidType, "userId must be a string"},
		{"too long", strings.Repeat("a", 165), beams.ErrTooLong, "userId is longer than the maximum length of 164"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := beams.ValidateTokenUserID(tc.in)
			assertKind(t, err, tc.kind, tc.msg)
		})
	}

	id, err := beams.ValidateTokenUserID(strings.Repeat("a", 164))
	require.NoError(t, err)
	assert.Len(t, id, 164)
}

func TestLengthCountsUTF16Units(t *testing.T) {
	// "é" is one unit; "😀" is a surrogate pair and counts as two.
	_, err := beams.ValidateTokenUserID(strings.Repeat("é", 164))
	assert.NoError(t, err)

	_, err = beams.ValidateTokenUserID(strings.Repeat("😀", 82))
	assert.NoError(t, err)
	_, err = beams.ValidateTokenUserID(strings.Repeat("😀", 82) + "a")
	assertKind(t, err, beams.ErrTooLong, "userId is longer than the maximum length of 164")

	_, err = beams.ValidateUserID(strings.Repeat("😀", 100))
	assertKind(t, err, beams.ErrTooLong, "User ID argument is too long")

	_, err = beams.ValidateUsers([]string{strings.Repeat("😀", 83)})
	assert.True(t, errors.Is(err, beams.ErrTooLong), "got %v", err)

	_, err = beams.ValidateUsers([]string{strings.Repeat("😀", 82)})
	assert.NoError(t, err)
}

func TestValidateUserID(t *testing.T) {
	_, err := beams.ValidateUserID(nil)
	assertKind(t, err, beams.ErrMissingArgument, "User ID argument is required")

	_, err = beams.ValidateUserID(7)
	assertKind(t, err, beams.ErrInvalidType, "User ID argument must be a string")

	_, err = beams.ValidateUserID(strings.Repeat("a", 165))
	assertKind(t, err, beams.ErrTooLong, "User ID argument is too long")

	// Deletion does not special-case the empty string.
	id, err := beams.ValidateUserID("")
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestValidateInterests(t *testing.T) {
	var nilSlice []string
	cases := []struct {
		name string
		in   any
		kind beams.Kind
		msg  string
	}{
		{"nil", nil, beams.ErrMissingArgument, "interests argument is required"},
		{"nil slice", nilSlice, beams.ErrMissingArgument, "interests argument is required"},
		{"not an array", "donuts", beams.ErrInvalidType, "interests argument must be an array"},
		{"empty", []string{}, beams.ErrEmptyCollection,
			"Publish requests must target at least one interest to be delivered"},
		{"too many", repeatSlice("a", 101), beams.ErrTooManyElements,
			"Number of interests (101) exceeds maximum of 100."},
		{"non-string element", []any{"donuts", 12.0}, beams.ErrInvalidType, "interest 12 is not a string"},
		{"element too long", []string{strings.Repeat("a", 165)}, beams.ErrTooLong,
			"interest " + strings.Repeat("a", 165) + " is longer than the maximum of 164 characters"},
		{"forbidden character", []string{"good", "bad|interest"}, beams.ErrForbiddenCharacter,
			`interest "bad|interest" contains a forbidden character. Allowed characters are: ` +
				"ASCII upper/lower-case letters, numbers or one of _-=@,.;"},
		{"space", []string{"a b"}, beams.ErrForbiddenCharacter, ""},
		{"non-ascii letter", []string{"café"}, beams.ErrForbiddenCharacter, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := beams.ValidateInterests(tc.in)
			assertKind(t, err, tc.kind, tc.msg)
		})
	}
}

func TestValidateInterests_accepts(t *testing.T) {
	got, err := beams.ValidateInterests([]any{"donuts", "A-z_0=9@,.;"})
	require.NoError(t, err)
	assert.Equal(t, []string{"donuts", "A-z_0=9@,.;"}, got)

	got, err = beams.ValidateInterests(repeatSlice("x", 100))
	require.NoError(t, err)
	assert.Len(t, got, 100)

	_, err = beams.ValidateInterests([]string{strings.Repeat("a", 164)})
	assert.NoError(t, err)

	// The empty interest matches the character rule.
	_, err = beams.ValidateInterests([]string{""})
	assert.NoError(t, err)
}

func TestValidateUsers(t *testing.T) {
	_, err := beams.ValidateUsers(nil)
	assertKind(t, err, beams.ErrMissingArgument, "users argument is required")

	_, err = beams.ValidateUsers(map[string]any{})
	assertKind(t, err, beams.ErrInvalidType, "users argument must be an array")

	_, err = beams.ValidateUsers([]string{})
	assertKind(t, err, beams.ErrEmptyCollection, "Publish requests must target at least one user to be delivered")

	_, err = beams.ValidateUsers(repeatSlice("u", 1001))
	assertKind(t, err, beams.ErrTooManyElements, "Number of users (1001) exceeds maximum of 1000.")

	_, err = beams.ValidateUsers([]any{true})
	assertKind(t, err, beams.ErrInvalidType, "user true is not a string")

	_, err = beams.ValidateUsers([]string{strings.Repeat("u", 165)})
	assertKind(t, err, beams.ErrTooLong, "")

	got, err := beams.ValidateUsers(repeatSlice("user|with spaces", 1000))
	require.NoError(t, err, "users have no character restriction")
	assert.Len(t, got, 1000)
}

func TestValidatePublishRequest(t *testing.T) {
	err := beams.ValidatePublishRequest(nil)
	assertKind(t, err, beams.ErrMissingArgument, "publishRequest argument is required")

	assert.NoError(t, beams.ValidatePublishRequest(beams.PublishRequest{}))
}

func TestValidation_firstFailureWins(t *testing.T) {
	// Size is checked before element contents.
	in := append(repeatSlice("bad char", 100), "x")
	_, err := beams.ValidateInterests(in)
	assertKind(t, err, beams.ErrTooManyElements, "")

	// Element type is checked before the element's length and characters.
	_, err = beams.ValidateInterests([]any{1.0, strings.Repeat("!", 200)})
	assertKind(t, err, beams.ErrInvalidType, "")
}
