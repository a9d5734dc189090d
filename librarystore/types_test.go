package librarystore_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysvc/librarystore"
)

func Test_ParseDate_AcceptsCalendarDays(t *testing.T) {
	// act
	date, err := librarystore.ParseDate("2026-09-15")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", date.String())
}

func Test_ParseDate_RejectsOtherFormats(t *testing.T) {
	for _, value := range []string{"15.09.2026", "2026-9-15", "2026-09-15T10:00:00Z", "tomorrow", ""} {
		_, err := librarystore.ParseDate(value)

		assert.ErrorIs(t, err, librarystore.ErrInvalidDate, "value: %q", value)
	}
}

func Test_NewDate_TruncatesToUTCDay(t *testing.T) {
	// arrange
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	instant := time.Date(2026, time.September, 15, 23, 45, 0, 0, berlin)

	// act
	date := librarystore.NewDate(instant)

	// assert
	assert.Equal(t, "2026-09-15", date.String())
	assert.Equal(t, time.UTC, date.Location())
}

func Test_Date_JSONRoundTrip(t *testing.T) {
	// arrange
	original, err := librarystore.ParseDate("2026-09-15")
	require.NoError(t, err)

	// act
	encoded, marshalErr := json.Marshal(original)
	require.NoError(t, marshalErr)

	var decoded librarystore.Date
	unmarshalErr := json.Unmarshal(encoded, &decoded)

	// assert
	require.NoError(t, unmarshalErr)
	assert.Equal(t, `"2026-09-15"`, string(encoded))
	assert.True(t, original.Equal(decoded.Time))
}

func Test_Date_UnmarshalRejectsMalformedInput(t *testing.T) {
	var date librarystore.Date

	err := json.Unmarshal([]byte(`"not-a-date"`), &date)

	assert.ErrorIs(t, err, librarystore.ErrInvalidDate)
}
