package model

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxMakeLen  = 48
	MaxModelLen = 64

	MinSearchYear = 1900
	MaxSearchYear = 2100
)

// YearRange bounds a saved search to model years. A nil bound is open on
// that side; both nil means all years; a single target year has
// MinYear == MaxYear.
type YearRange struct {
	MinYear *int `bson:"min_year,omitempty" json:"minYear,omitempty"`
	MaxYear *int `bson:"max_year,omitempty" json:"maxYear,omitempty"`
}

func (yr YearRange) IsZero() bool {
	return yr.MinYear == nil && yr.MaxYear == nil
}

// Inverted reports whether both bounds are present and out of order.
// The creation path rejects inverted ranges outright; Normalized is the
// lenient read-back path and swaps them instead.
func (yr YearRange) Inverted() bool {
	return yr.MinYear != nil && yr.MaxYear != nil && *yr.MinYear > *yr.MaxYear
}

// Normalized returns the range with inverted bounds swapped into order.
// Used when re-deriving the filter from a stored record, which may predate
// strict validation.
func (yr YearRange) Normalized() YearRange {
	if yr.Inverted() {
		return YearRange{MinYear: yr.MaxYear, MaxYear: yr.MinYear}
	}
	return yr
}

// Contains reports whether year falls inside the inclusive bounds.
func (yr YearRange) Contains(year int) bool {
	if yr.MinYear != nil && year < *yr.MinYear {
		return false
	}
	if yr.MaxYear != nil && year > *yr.MaxYear {
		return false
	}
	return true
}

// String renders the range for notification text, e.g. "2008-2012",
// "2008+", "up to 2012" or "".
func (yr YearRange) String() string {
	switch {
	case yr.MinYear != nil && yr.MaxYear != nil:
		if *yr.MinYear == *yr.MaxYear {
			return fmt.Sprintf("%d", *yr.MinYear)
		}
		return fmt.Sprintf("%d-%d", *yr.MinYear, *yr.MaxYear)
	case yr.MinYear != nil:
		return fmt.Sprintf("%d+", *yr.MinYear)
	case yr.MaxYear != nil:
		return fmt.Sprintf("up to %d", *yr.MaxYear)
	}
	return ""
}

// PushSubscription is the browser push credential triple. All three fields
// are required together; a search without a complete triple cannot be
// notified and is rejected at creation.
type PushSubscription struct {
	Endpoint string `bson:"endpoint" json:"endpoint"`
	Auth     string `bson:"auth" json:"auth"`
	P256dh   string `bson:"p256dh" json:"p256dh"`
}

func (ps PushSubscription) Complete() bool {
	return ps.Endpoint != "" && ps.Auth != "" && ps.P256dh != ""
}

// SavedSearch is a persisted make/model/year query plus push credentials,
// owned by a derived pseudo-identity and re-evaluated by the daily sweep.
type SavedSearch struct {
	ID        string             `bson:"id"`
	OwnerKey  string             `bson:"owner_key"`
	CreatedAt primitive.DateTime `bson:"created_at"`

	Make      string    `bson:"make"`
	Model     string    `bson:"model,omitempty"`
	YearRange YearRange `bson:"year_range,omitempty"`

	Push PushSubscription `bson:"push"`

	LastSnapshot []InventoryRow `bson:"last_snapshot"`

	LastNotifiedAt          primitive.DateTime `bson:"last_notified_at,omitempty"`
	LastNotificationStatus  string             `bson:"last_notification_status,omitempty"`
	LastNotificationPayload string             `bson:"last_notification_payload,omitempty"`
}

// Description renders the query for humans, e.g. "TOYOTA PRIUS (2008-2012)".
func (ss SavedSearch) Description() string {
	var b strings.Builder
	b.WriteString(ss.Make)
	if ss.Model != "" {
		b.WriteString(" " + ss.Model)
	}
	if yrs := ss.YearRange.String(); yrs != "" {
		b.WriteString(" (" + yrs + ")")
	}
	return b.String()
}

// RedactedSearch is the owner-facing projection of a SavedSearch. Push
// credentials never leave the server; only their presence is exposed.
type RedactedSearch struct {
	ID                     string    `json:"id"`
	CreatedAt              string    `json:"createdAt"`
	Make                   string    `json:"make"`
	Model                  string    `json:"model,omitempty"`
	YearRange              YearRange `json:"yearRange,omitempty"`
	HasPush                bool      `json:"hasPush"`
	SnapshotSize           int       `json:"snapshotSize"`
	LastNotifiedAt         string    `json:"lastNotifiedAt,omitempty"`
	LastNotificationStatus string    `json:"lastNotificationStatus,omitempty"`
}

func (ss SavedSearch) Redacted() RedactedSearch {
	rs := RedactedSearch{
		ID:                     ss.ID,
		CreatedAt:              ss.CreatedAt.Time().UTC().Format(time.RFC3339),
		Make:                   ss.Make,
		Model:                  ss.Model,
		YearRange:              ss.YearRange,
		HasPush:                ss.Push.Complete(),
		SnapshotSize:           len(ss.LastSnapshot),
		LastNotificationStatus: ss.LastNotificationStatus,
	}
	if ss.LastNotifiedAt != 0 {
		rs.LastNotifiedAt = ss.LastNotifiedAt.Time().UTC().Format(time.RFC3339)
	}
	return rs
}
