package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(i int) *int { return &i }

func TestYearRangeNormalized(t *testing.T) {
	inverted := YearRange{MinYear: intp(2015), MaxYear: intp(2010)}
	assert.True(t, inverted.Inverted())

	norm := inverted.Normalized()
	assert.Equal(t, 2010, *norm.MinYear)
	assert.Equal(t, 2015, *norm.MaxYear)

	// Already ordered ranges pass through unchanged.
	ordered := YearRange{MinYear: intp(2008), MaxYear: intp(2012)}
	assert.False(t, ordered.Inverted())
	assert.Equal(t, ordered, ordered.Normalized())

	// Single open bounds can never be inverted.
	assert.False(t, YearRange{MinYear: intp(2015)}.Inverted())
	assert.False(t, YearRange{MaxYear: intp(2010)}.Inverted())
	assert.False(t, YearRange{}.Inverted())
}

func TestYearRangeContains(t *testing.T) {
	yr := YearRange{MinYear: intp(2008), MaxYear: intp(2012)}
	assert.True(t, yr.Contains(2008))
	assert.True(t, yr.Contains(2012))
	assert.False(t, yr.Contains(2007))
	assert.False(t, yr.Contains(2013))

	open := YearRange{MinYear: intp(2008)}
	assert.True(t, open.Contains(2999))
	assert.False(t, open.Contains(2007))

	assert.True(t, YearRange{}.Contains(1901))
}

func TestYearRangeString(t *testing.T) {
	assert.Equal(t, "2008-2012", YearRange{MinYear: intp(2008), MaxYear: intp(2012)}.String())
	assert.Equal(t, "2010", YearRange{MinYear: intp(2010), MaxYear: intp(2010)}.String())
	assert.Equal(t, "2008+", YearRange{MinYear: intp(2008)}.String())
	assert.Equal(t, "up to 2012", YearRange{MaxYear: intp(2012)}.String())
	assert.Equal(t, "", YearRange{}.String())
}

func TestRowKey(t *testing.T) {
	row := InventoryRow{YardID: "1010", YardName: "North Yard", Year: 2010, Make: "TOYOTA", Model: "PRIUS", Row: "3"}
	assert.Equal(t, "1010|2010|TOYOTA|PRIUS|3", row.Key())

	renamed := row
	renamed.YardName = "Renamed Yard"
	assert.Equal(t, row.Key(), renamed.Key())
}

func TestSavedSearchDescription(t *testing.T) {
	ss := SavedSearch{Make: "TOYOTA", Model: "PRIUS", YearRange: YearRange{MinYear: intp(2008), MaxYear: intp(2012)}}
	assert.Equal(t, "TOYOTA PRIUS (2008-2012)", ss.Description())

	assert.Equal(t, "TOYOTA", SavedSearch{Make: "TOYOTA"}.Description())
	assert.Equal(t, "TOYOTA (2008+)", SavedSearch{Make: "TOYOTA", YearRange: YearRange{MinYear: intp(2008)}}.Description())
}

func TestRedactedHidesPushCredentials(t *testing.T) {
	ss := SavedSearch{
		ID:       "id-1",
		OwnerKey: "owner-secret",
		Make:     "TOYOTA",
		Push:     PushSubscription{Endpoint: "https://push.example/e", Auth: "a", P256dh: "p"},
		LastSnapshot: []InventoryRow{
			{YardID: "1010", Year: 2010, Make: "TOYOTA", Model: "PRIUS", Row: "3"},
		},
	}
	rs := ss.Redacted()
	assert.True(t, rs.HasPush)
	assert.Equal(t, 1, rs.SnapshotSize)

	// The projection type has no credential or owner fields at all; spot
	// check the values that do cross the boundary.
	assert.Equal(t, "id-1", rs.ID)
	assert.Equal(t, "TOYOTA", rs.Make)

	incomplete := ss
	incomplete.Push = PushSubscription{Endpoint: "https://push.example/e"}
	assert.False(t, incomplete.Redacted().HasPush)
}
