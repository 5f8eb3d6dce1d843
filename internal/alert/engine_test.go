package alert

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yardwatch/internal/model"
)

// --- fakes ---

type fakeStore struct {
	records  []model.SavedSearch
	readErr  error
	writeErr error
	writes   int
}

func (f *fakeStore) SearchesReadAll(_ context.Context) ([]model.SavedSearch, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]model.SavedSearch{}, f.records...), nil
}

func (f *fakeStore) SearchesWriteAll(_ context.Context, records []model.SavedSearch) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records = records
	f.writes++
	return nil
}

type fakeSearcher struct {
	rows []model.InventoryRow
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ string) ([]model.InventoryRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.InventoryRow{}, f.rows...), nil
}

type fakePusher struct {
	sent []string
	err  error
}

func (f *fakePusher) WebPushSend(_ context.Context, _ model.PushSubscription, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, string(payload))
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(...any)           {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

func newTestEngine(store *fakeStore, searcher *fakeSearcher, pusher *fakePusher) Engine {
	return Engine{
		Store:        store,
		Searcher:     searcher,
		Pusher:       pusher,
		Logger:       nopLogger{},
		SweepTrigger: "09:00",
	}
}

func intp(i int) *int { return &i }

func validInput() CreateInput {
	return CreateInput{
		Make:     "TOYOTA",
		Model:    "PRIUS",
		MinYear:  intp(2008),
		MaxYear:  intp(2012),
		Endpoint: "https://push.example/sub-1",
		Auth:     "auth-secret",
		P256dh:   "p256dh-key",
	}
}

// --- tests ---

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CreateInput)
	}{
		{"empty make", func(in *CreateInput) { in.Make = "  " }},
		{"make too long", func(in *CreateInput) { in.Make = strings.Repeat("A", model.MaxMakeLen+1) }},
		{"model too long", func(in *CreateInput) { in.Model = strings.Repeat("B", model.MaxModelLen+1) }},
		{"inverted year range", func(in *CreateInput) {
			in.MinYear = intp(2015)
			in.MaxYear = intp(2010)
		}},
		{"year below range", func(in *CreateInput) { in.MinYear = intp(1899) }},
		{"year above range", func(in *CreateInput) { in.MaxYear = intp(2101) }},
		{"missing endpoint", func(in *CreateInput) { in.Endpoint = "" }},
		{"missing auth", func(in *CreateInput) { in.Auth = "" }},
		{"missing p256dh", func(in *CreateInput) { in.P256dh = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})
			in := validInput()
			tt.modify(&in)

			_, err := e.Create(context.Background(), "owner-a", in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "want ErrValidation, got: %v", err)
			assert.Zero(t, store.writes)
		})
	}
}

func TestCreatePopulatesSnapshot(t *testing.T) {
	searcher := &fakeSearcher{rows: []model.InventoryRow{
		{YardID: "1010", YardName: "North Yard", Year: 2010, Make: "TOYOTA", Model: "PRIUS", Row: "3"},
		{YardID: "1010", YardName: "North Yard", Year: 2005, Make: "TOYOTA", Model: "PRIUS", Row: "7"},
	}}
	store := &fakeStore{}
	e := newTestEngine(store, searcher, &fakePusher{})

	created, err := e.Create(context.Background(), "owner-a", validInput())
	require.NoError(t, err)
	assert.True(t, created.HasPush)
	assert.Equal(t, "TOYOTA", created.Make)

	require.Len(t, store.records, 1)
	ss := store.records[0]
	// The 2005 row falls outside 2008-2012 and must not be snapshotted.
	require.Len(t, ss.LastSnapshot, 1)
	assert.Equal(t, 2010, ss.LastSnapshot[0].Year)
	assert.Empty(t, ss.LastNotificationStatus)
}

func TestCreatePrefetchFailureIsInformational(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{err: errors.New("upstream down")}, &fakePusher{})

	_, err := e.Create(context.Background(), "owner-a", validInput())
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.Empty(t, store.records[0].LastSnapshot)
	assert.Contains(t, store.records[0].LastNotificationStatus, "snapshot prefetch failed")
}

func TestCreateRedactsPushCredentials(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})

	created, err := e.Create(context.Background(), "owner-a", validInput())
	require.NoError(t, err)
	assert.True(t, created.HasPush)

	list, err := e.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].HasPush)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateNestedSubscriptionWins(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})

	in := validInput()
	in.Subscription = &model.PushSubscription{
		Endpoint: "https://push.example/nested",
		Auth:     "nested-auth",
		P256dh:   "nested-p256dh",
	}
	_, err := e.Create(context.Background(), "owner-a", in)
	require.NoError(t, err)
	require.Len(t, store.records, 1)
	assert.Equal(t, "https://push.example/nested", store.records[0].Push.Endpoint)
}

func TestCreateSingleYearShorthand(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})

	in := validInput()
	in.MinYear = nil
	in.MaxYear = nil
	in.Year = intp(2010)
	_, err := e.Create(context.Background(), "owner-a", in)
	require.NoError(t, err)
	require.Len(t, store.records, 1)
	yr := store.records[0].YearRange
	require.NotNil(t, yr.MinYear)
	require.NotNil(t, yr.MaxYear)
	assert.Equal(t, 2010, *yr.MinYear)
	assert.Equal(t, 2010, *yr.MaxYear)
}

func TestCreateDeduplication(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})
	ctx := context.Background()

	_, err := e.Create(ctx, "owner-a", validInput())
	require.NoError(t, err)

	// Identical search for the same owner conflicts, case-insensitively.
	dup := validInput()
	dup.Make = "toyota"
	dup.Model = "Prius"
	_, err = e.Create(ctx, "owner-a", dup)
	assert.True(t, errors.Is(err, ErrConflict), "want ErrConflict, got: %v", err)

	// Changing any one field allows creation.
	otherModel := validInput()
	otherModel.Model = "COROLLA"
	_, err = e.Create(ctx, "owner-a", otherModel)
	assert.NoError(t, err)

	otherYears := validInput()
	otherYears.MaxYear = intp(2013)
	_, err = e.Create(ctx, "owner-a", otherYears)
	assert.NoError(t, err)

	otherEndpoint := validInput()
	otherEndpoint.Endpoint = "https://push.example/sub-2"
	_, err = e.Create(ctx, "owner-a", otherEndpoint)
	assert.NoError(t, err)

	// Same search under a different owner is fine.
	_, err = e.Create(ctx, "owner-b", validInput())
	assert.NoError(t, err)
}

func TestCreateOwnerQuota(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})
	ctx := context.Background()

	for i := 0; i < MaxSearchesPerOwner; i++ {
		in := validInput()
		in.Make = fmt.Sprintf("MAKE%d", i)
		_, err := e.Create(ctx, "owner-a", in)
		require.NoError(t, err, "create %d should succeed", i+1)
	}

	in := validInput()
	in.Make = "ONEMORE"
	_, err := e.Create(ctx, "owner-a", in)
	assert.True(t, errors.Is(err, ErrQuota), "want ErrQuota, got: %v", err)

	// A different owner is unaffected by the per-owner cap.
	_, err = e.Create(ctx, "owner-b", in)
	assert.NoError(t, err)
}

func TestCreateTotalQuota(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < MaxSearchesTotal; i++ {
		store.records = append(store.records, model.SavedSearch{
			ID:       fmt.Sprintf("id-%d", i),
			OwnerKey: fmt.Sprintf("owner-%d", i),
			Make:     "FORD",
		})
	}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})

	_, err := e.Create(context.Background(), "owner-new", validInput())
	assert.True(t, errors.Is(err, ErrQuota), "want ErrQuota, got: %v", err)
}

func TestListScopedToOwner(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})
	ctx := context.Background()

	_, err := e.Create(ctx, "owner-a", validInput())
	require.NoError(t, err)
	inB := validInput()
	inB.Make = "HONDA"
	_, err = e.Create(ctx, "owner-b", inB)
	require.NoError(t, err)

	listA, err := e.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, "TOYOTA", listA[0].Make)

	listC, err := e.List(ctx, "owner-c")
	require.NoError(t, err)
	assert.Empty(t, listC)
}

func TestDeleteOwnershipScoping(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})
	ctx := context.Background()

	created, err := e.Create(ctx, "owner-b", validInput())
	require.NoError(t, err)

	// Another owner deleting the record is not-found, never success.
	err = e.Delete(ctx, "owner-a", created.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got: %v", err)
	require.Len(t, store.records, 1)

	err = e.Delete(ctx, "owner-b", "no-such-id")
	assert.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got: %v", err)

	err = e.Delete(ctx, "owner-b", created.ID)
	require.NoError(t, err)
	assert.Empty(t, store.records)
}

func TestStoreUnavailable(t *testing.T) {
	e := newTestEngine(&fakeStore{readErr: errors.New("db down")}, &fakeSearcher{}, &fakePusher{})
	ctx := context.Background()

	_, err := e.Create(ctx, "owner-a", validInput())
	assert.True(t, errors.Is(err, ErrDependency), "want ErrDependency, got: %v", err)

	_, err = e.List(ctx, "owner-a")
	assert.True(t, errors.Is(err, ErrDependency))

	err = e.Delete(ctx, "owner-a", "id")
	assert.True(t, errors.Is(err, ErrDependency))
}

func TestPollNotification(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, &fakeSearcher{}, &fakePusher{})
	ctx := context.Background()

	created, err := e.Create(ctx, "owner-a", validInput())
	require.NoError(t, err)

	// Nothing has fired yet.
	result, err := e.PollNotification(ctx, "https://push.example/sub-1")
	require.NoError(t, err)
	assert.Nil(t, result)

	// Unknown endpoint matches nothing.
	result, err = e.PollNotification(ctx, "https://push.example/unknown")
	require.NoError(t, err)
	assert.Nil(t, result)

	for i := range store.records {
		if store.records[i].ID == created.ID {
			store.records[i].LastNotificationPayload = `{"title":"t","body":"b"}`
			store.records[i].LastNotificationStatus = "delivered"
		}
	}
	result, err = e.PollNotification(ctx, "https://push.example/sub-1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, `{"title":"t","body":"b"}`, result.Payload)
	assert.Equal(t, "delivered", result.Status)
}
