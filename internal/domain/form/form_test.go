package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsSortedAndErr(t *testing.T) {
	e := New()
	require.NoError(t, e.Err())

	e.Add("pan_card", "PAN Card number must be exactly 10 characters long.")
	e.Add("email", "This email is already registered.")
	e.Add("aadhar_card", "Aadhar Card number must be exactly 12 digits.")
	e.Add("ignored", "  ")

	err := e.Err()
	require.Error(t, err)
	var fe *Errors
	require.True(t, errors.As(err, &fe))
	issues := fe.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, "aadhar_card", issues[0].Field)
	assert.Equal(t, "email", issues[1].Field)
	assert.Equal(t, "pan_card", issues[2].Field)
	assert.Contains(t, err.Error(), "email: This email is already registered.")
	assert.True(t, fe.Has("email"))
	assert.False(t, fe.Has("gender"))
}

func TestRequiredAndEnum(t *testing.T) {
	e := New()
	assert.False(t, e.Required("first_name", "  ", "This field is required."))
	assert.True(t, e.Required("last_name", "Rao", "This field is required."))
	e.Enum("gender", "X", []string{"M", "F"}, "Select a valid choice.")
	e.Enum("gender", "", []string{"M", "F"}, "Select a valid choice.")
	e.Enum("gender", "F", []string{"M", "F"}, "Select a valid choice.")
	assert.Len(t, e.Issues(), 2)
}

func TestDate(t *testing.T) {
	e := New()
	d, ok := e.Date("start_date", "2024-06-03")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d)

	d, ok = e.Date("end_date", "2024-06-03T15:04:05+05:30")
	require.True(t, ok)
	assert.Equal(t, 3, d.Day())

	_, ok = e.Date("bond_start", "03/06/2024")
	assert.False(t, ok)
	_, ok = e.Date("bond_end", "")
	assert.False(t, ok)
	assert.Len(t, e.Issues(), 2)
}

func TestCharacterClasses(t *testing.T) {
	assert.True(t, AllDigits("123456789012"))
	assert.False(t, AllDigits("12345678901a"))
	assert.False(t, AllDigits(""))
	assert.True(t, Alphanumeric("ABCDE1234F"))
	assert.False(t, Alphanumeric("ABCDE-234F"))
	assert.False(t, Alphanumeric("ÄBCDE1234F"))
}
