package alert

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"yardwatch/internal/model"
)

const (
	MaxSearchesTotal    = 500
	MaxSearchesPerOwner = 25
)

// Store is the durable saved-search collection. Mutations are
// read-modify-write over the whole list; see internal/database for the
// consistency consequences.
type Store interface {
	SearchesReadAll(ctx context.Context) ([]model.SavedSearch, error)
	SearchesWriteAll(ctx context.Context, records []model.SavedSearch) error
}

// Searcher is the inventory aggregator.
type Searcher interface {
	Search(ctx context.Context, makeName string, modelName string) ([]model.InventoryRow, error)
}

// Pusher wakes a push endpoint with an opaque payload.
type Pusher interface {
	WebPushSend(ctx context.Context, sub model.PushSubscription, payload []byte) error
}

type logger interface {
	Info(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// Engine owns the saved-search lifecycle and the daily sweep.
type Engine struct {
	Store    Store
	Searcher Searcher
	Pusher   Pusher
	Logger   logger

	// SweepTrigger is the only trigger identity Sweep accepts; anything
	// else is ignored as a stray or duplicate invocation.
	SweepTrigger string
}

// CreateInput carries the create payload. The push subscription may come
// nested (browser PushSubscription.toJSON shape) or as flat fields; the
// nested form wins when both are present.
type CreateInput struct {
	Make    string
	Model   string
	Year    *int
	MinYear *int
	MaxYear *int

	Subscription *model.PushSubscription
	Endpoint     string
	Auth         string
	P256dh       string
}

func (in CreateInput) push() model.PushSubscription {
	if in.Subscription != nil {
		return *in.Subscription
	}
	return model.PushSubscription{Endpoint: in.Endpoint, Auth: in.Auth, P256dh: in.P256dh}
}

// yearRange resolves the single-year shorthand: year means minYear ==
// maxYear == year and overrides explicit bounds.
func (in CreateInput) yearRange() model.YearRange {
	if in.Year != nil {
		y := *in.Year
		return model.YearRange{MinYear: &y, MaxYear: &y}
	}
	return model.YearRange{MinYear: in.MinYear, MaxYear: in.MaxYear}
}

// List returns the owner's saved searches as redacted projections.
func (e Engine) List(ctx context.Context, ownerKey string) ([]model.RedactedSearch, error) {
	records, err := e.Store.SearchesReadAll(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrDependency, "error reading saved searches, err: %v", err)
	}
	out := []model.RedactedSearch{}
	for _, ss := range records {
		if ss.OwnerKey == ownerKey {
			out = append(out, ss.Redacted())
		}
	}
	return out, nil
}

// Create validates, deduplicates and quota-checks the payload, prefetches
// a best-effort snapshot, appends the record and returns its redacted
// projection.
func (e Engine) Create(ctx context.Context, ownerKey string, in CreateInput) (model.RedactedSearch, error) {
	var zero model.RedactedSearch

	makeName := strings.TrimSpace(in.Make)
	if makeName == "" {
		return zero, errors.Wrap(ErrValidation, "make is required")
	}
	if len(makeName) > model.MaxMakeLen {
		return zero, errors.Wrapf(ErrValidation, "make is longer than %d characters", model.MaxMakeLen)
	}
	modelName := strings.TrimSpace(in.Model)
	if len(modelName) > model.MaxModelLen {
		return zero, errors.Wrapf(ErrValidation, "model is longer than %d characters", model.MaxModelLen)
	}

	yr := in.yearRange()
	for _, bound := range []*int{yr.MinYear, yr.MaxYear} {
		if bound != nil && (*bound < model.MinSearchYear || *bound > model.MaxSearchYear) {
			return zero, errors.Wrapf(ErrValidation, "year %d is outside [%d, %d]", *bound, model.MinSearchYear, model.MaxSearchYear)
		}
	}
	// Strict path: an inverted range is rejected here, never repaired.
	if yr.Inverted() {
		return zero, errors.Wrap(ErrValidation, "minYear is greater than maxYear")
	}

	push := in.push()
	if !push.Complete() {
		return zero, errors.Wrap(ErrValidation, "push subscription requires endpoint, auth and p256dh")
	}

	records, err := e.Store.SearchesReadAll(ctx)
	if err != nil {
		return zero, errors.Wrapf(ErrDependency, "error reading saved searches, err: %v", err)
	}
	if len(records) >= MaxSearchesTotal {
		return zero, errors.Wrapf(ErrQuota, "total saved searches are limited to %d", MaxSearchesTotal)
	}
	ownerCount := 0
	for _, ss := range records {
		if ss.OwnerKey == ownerKey {
			ownerCount++
			if strings.EqualFold(ss.Make, makeName) &&
				strings.EqualFold(ss.Model, modelName) &&
				sameYearRange(ss.YearRange, yr) &&
				ss.Push.Endpoint == push.Endpoint {
				return zero, errors.Wrap(ErrConflict, "an identical saved search already exists")
			}
		}
	}
	if ownerCount >= MaxSearchesPerOwner {
		return zero, errors.Wrapf(ErrQuota, "saved searches are limited to %d for each owner", MaxSearchesPerOwner)
	}

	ss := model.SavedSearch{
		ID:           uuid.NewString(),
		OwnerKey:     ownerKey,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
		Make:         makeName,
		Model:        modelName,
		YearRange:    yr,
		Push:         push,
		LastSnapshot: []model.InventoryRow{},
	}

	// Best-effort prefetch so the first sweep diffs against real data
	// instead of reporting the whole result set as new. Failure is
	// informational, never a creation error.
	if rows, err := e.Searcher.Search(ctx, makeName, modelName); err != nil {
		e.Logger.Errorf("Create: Error prefetching snapshot for search %s (%s), err: %v", ss.ID, ss.Description(), err)
		ss.LastNotificationStatus = "snapshot prefetch failed, first sweep may over-report"
	} else {
		ss.LastSnapshot = filterByYearRange(rows, ss.YearRange)
	}

	records = append(records, ss)
	if err := e.Store.SearchesWriteAll(ctx, records); err != nil {
		return zero, errors.Wrapf(ErrDependency, "error writing saved searches, err: %v", err)
	}
	e.Logger.Infof("Create: Saved search %s (%s) created, owner has %d", ss.ID, ss.Description(), ownerCount+1)
	return ss.Redacted(), nil
}

// Delete removes the record matching both id and ownerKey. A foreign or
// unknown id is not-found either way, so existence of other owners'
// records never leaks.
func (e Engine) Delete(ctx context.Context, ownerKey string, id string) error {
	records, err := e.Store.SearchesReadAll(ctx)
	if err != nil {
		return errors.Wrapf(ErrDependency, "error reading saved searches, err: %v", err)
	}
	idx := -1
	for i, ss := range records {
		if ss.ID == id && ss.OwnerKey == ownerKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Wrapf(ErrNotFound, "id: %s", id)
	}
	records = append(records[:idx], records[idx+1:]...)
	if err := e.Store.SearchesWriteAll(ctx, records); err != nil {
		return errors.Wrapf(ErrDependency, "error writing saved searches, err: %v", err)
	}
	e.Logger.Infof("Delete: Saved search %s deleted", id)
	return nil
}

// NotificationResult is the stored outcome of the most recent delivery
// attempt for a search, fetched by the browser after a bare push wake-up.
type NotificationResult struct {
	Payload    string
	NotifiedAt time.Time
	Status     string
}

// PollNotification returns the latest notification for the first search
// registered to endpoint, or nil when none matches or none has fired.
func (e Engine) PollNotification(ctx context.Context, endpoint string) (*NotificationResult, error) {
	records, err := e.Store.SearchesReadAll(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrDependency, "error reading saved searches, err: %v", err)
	}
	for _, ss := range records {
		if ss.Push.Endpoint != endpoint {
			continue
		}
		if ss.LastNotificationPayload == "" {
			return nil, nil
		}
		return &NotificationResult{
			Payload:    ss.LastNotificationPayload,
			NotifiedAt: ss.LastNotifiedAt.Time().UTC(),
			Status:     ss.LastNotificationStatus,
		}, nil
	}
	return nil, nil
}

func sameYearRange(a, b model.YearRange) bool {
	return sameBound(a.MinYear, b.MinYear) && sameBound(a.MaxYear, b.MaxYear)
}

func sameBound(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// filterByYearRange applies the range as an inclusive post-filter. The
// lenient path: a stored inverted range is swapped into order here rather
// than rejected.
func filterByYearRange(rows []model.InventoryRow, yr model.YearRange) []model.InventoryRow {
	if yr.IsZero() {
		if rows == nil {
			return []model.InventoryRow{}
		}
		return rows
	}
	norm := yr.Normalized()
	out := []model.InventoryRow{}
	for _, r := range rows {
		if norm.Contains(r.Year) {
			out = append(out, r)
		}
	}
	return out
}
