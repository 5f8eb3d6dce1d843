package model

import "fmt"

// InventoryRow is one vehicle listing at one yard. Rows are transient
// aggregation output; they are only persisted as part of a SavedSearch
// snapshot.
type InventoryRow struct {
	YardID   string `bson:"yard_id" json:"yardId"`
	YardName string `bson:"yard_name" json:"yardName"`
	Year     int    `bson:"year" json:"year"`
	Make     string `bson:"make" json:"make"`
	Model    string `bson:"model" json:"model"`
	Row      string `bson:"row" json:"row"`
}

// Key is the identity of a row for diffing purposes. Two rows describe the
// same vehicle iff their keys match exactly. YardName is deliberately not
// part of the key: a yard renaming itself must not re-trigger alerts.
func (r InventoryRow) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", r.YardID, r.Year, r.Make, r.Model, r.Row)
}
