package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"yardwatch/internal/model"
)

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sweep re-runs every saved search, diffs the fresh results against the
// last snapshot and pushes a notification for newly seen vehicles.
// Searches are processed sequentially; a failing upstream or a failed
// delivery degrades that one search and never aborts the sweep. All
// records are written back in one bulk replace at the end.
func (e Engine) Sweep(ctx context.Context, trigger string) error {
	if trigger != e.SweepTrigger {
		e.Logger.Infof("Sweep: Ignoring invocation with unexpected trigger: %q, want: %q", trigger, e.SweepTrigger)
		return nil
	}

	e.Logger.Info("Sweep: Starting to re-evaluate all saved searches")
	records, err := e.Store.SearchesReadAll(ctx)
	if err != nil {
		return errors.Wrapf(ErrDependency, "error reading saved searches, err: %v", err)
	}
	e.Logger.Infof("Sweep: Retrieved %d saved search(es)", len(records))

	notified := 0
	for i := range records {
		if e.sweepOne(ctx, &records[i]) {
			notified++
		}
	}

	if err := e.Store.SearchesWriteAll(ctx, records); err != nil {
		return errors.Wrapf(ErrDependency, "error writing saved searches after sweep, err: %v", err)
	}
	e.Logger.Infof("Sweep: Finished re-evaluating %d saved search(es), %d notification(s) attempted", len(records), notified)
	return nil
}

// sweepOne re-evaluates a single search in place and reports whether a
// delivery was attempted.
func (e Engine) sweepOne(ctx context.Context, ss *model.SavedSearch) bool {
	desc := ss.Description()
	e.Logger.Debugf("sweepOne: Re-running search %s (%s)", ss.ID, desc)

	rows, err := e.Searcher.Search(ctx, ss.Make, ss.Model)
	if err != nil {
		// Aggregation only fails outright on bad stored input; leave the
		// snapshot untouched so the next sweep diffs against real data.
		e.Logger.Errorf("sweepOne: Error aggregating for search %s (%s), err: %v", ss.ID, desc, err)
		return false
	}
	current := filterByYearRange(rows, ss.YearRange)

	fresh := diffNew(current, ss.LastSnapshot)
	ss.LastSnapshot = current
	if len(fresh) == 0 {
		e.Logger.Debugf("sweepOne: No new vehicles for search %s (%s), %d row(s) unchanged", ss.ID, desc, len(current))
		return false
	}
	e.Logger.Infof("sweepOne: %d new vehicle(s) for search %s (%s)", len(fresh), ss.ID, desc)

	payload := pushPayload{
		Title: "New vehicles for your saved search",
		Body:  fmt.Sprintf("%d new %s at %s", len(fresh), desc, strings.Join(yardNames(fresh), ", ")),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		e.Logger.Errorf("sweepOne: Error marshalling payload for search %s, err: %v", ss.ID, err)
		return false
	}

	ss.LastNotificationPayload = string(payloadJSON)
	ss.LastNotifiedAt = primitive.NewDateTimeFromTime(time.Now())
	if err := e.Pusher.WebPushSend(ctx, ss.Push, payloadJSON); err != nil {
		// Best effort, at most once per day: record the failure and move on.
		e.Logger.Errorf("sweepOne: Error delivering push for search %s (%s), err: %v", ss.ID, desc, err)
		ss.LastNotificationStatus = fmt.Sprintf("delivery failed: %v", err)
		return true
	}
	ss.LastNotificationStatus = "delivered"
	return true
}

// yardNames lists the distinct yard names contributing rows, sorted.
func yardNames(rows []model.InventoryRow) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range rows {
		if !seen[r.YardName] {
			seen[r.YardName] = true
			names = append(names, r.YardName)
		}
	}
	sort.Strings(names)
	return names
}
