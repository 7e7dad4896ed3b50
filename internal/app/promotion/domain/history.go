package domain

import (
	"strconv"
	"strings"
	"time"
)

// HistoryAction is the lifecycle event recorded in the audit trail.
type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionEdited      HistoryAction = "edited"
	ActionDeactivated HistoryAction = "deactivated"
	ActionDeleted     HistoryAction = "deleted"
)

// FieldChange is one entry of a field-level diff.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// HistoryEntry is an append-only audit record.
type HistoryEntry struct {
	ID          string
	PromotionID string
	Action      HistoryAction
	ActorID     string
	Before      *PromotionSnapshot
	Changes     []FieldChange
	Timestamp   time.Time
}

// Diff compares two snapshots field by field. Bookkeeping fields
// (version, code, actors) are not reported.
func Diff(before, after PromotionSnapshot) []FieldChange {
	var changes []FieldChange
	add := func(field, oldV, newV string) {
		if oldV != newV {
			changes = append(changes, FieldChange{Field: field, OldValue: oldV, NewValue: newV})
		}
	}

	add(FieldName, before.Name, after.Name)
	add(FieldDescription, before.Description, after.Description)
	add(FieldKind, string(before.Kind), string(after.Kind))
	if !before.Value.Equal(after.Value) {
		changes = append(changes, FieldChange{Field: FieldValue, OldValue: before.Value.String(), NewValue: after.Value.String()})
	}
	add("scope.kind", string(before.Scope.Kind()), string(after.Scope.Kind()))
	add("scope.categories", joinList(before.Scope.categories), joinList(after.Scope.categories))
	add("scope.brands", joinList(before.Scope.brands), joinList(after.Scope.brands))
	add("scope.skus", joinList(before.Scope.skus), joinList(after.Scope.skus))
	if !before.StartDate.Equal(after.StartDate) {
		changes = append(changes, FieldChange{Field: FieldStartDate, OldValue: formatTime(before.StartDate), NewValue: formatTime(after.StartDate)})
	}
	if !before.EndDate.Equal(after.EndDate) {
		changes = append(changes, FieldChange{Field: FieldEndDate, OldValue: formatTime(before.EndDate), NewValue: formatTime(after.EndDate)})
	}
	add(FieldActive, strconv.FormatBool(before.Active), strconv.FormatBool(after.Active))

	return changes
}

func joinList(v []string) string { return strings.Join(v, ",") }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }
