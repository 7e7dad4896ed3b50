package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/light-bringer/promo-engine/internal/pkg/clock"
)

// Field names for change tracking and diffs.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldKind        = "kind"
	FieldValue       = "value"
	FieldScope       = "scope"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldActive      = "active"
)

const (
	minDuration   = 24 * time.Hour
	maxDuration   = 365 * 24 * time.Hour
	maxNameLength = 200
)

// NewPromotionParams carries everything needed to create a promotion.
type NewPromotionParams struct {
	ID          string
	Name        string
	Description string
	Kind        DiscountKind
	Value       decimal.Decimal
	Scope       Scope
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
	CreatedBy   string
}

// Promotion is the aggregate root for discount rules.
type Promotion struct {
	id          string
	code        string
	name        string
	description string
	kind        DiscountKind
	value       decimal.Decimal
	scope       Scope
	startDate   time.Time
	endDate     time.Time
	active      bool
	version     int64
	createdBy   string
	updatedBy   string
	createdAt   time.Time
	updatedAt   time.Time

	changes *ChangeTracker
	events  []DomainEvent
}

// NewPromotion validates params and creates a promotion at version 1.
// The start date may not precede the current UTC day.
func NewPromotion(p NewPromotionParams, clk clock.Clock) (*Promotion, error) {
	now := clk.Now()

	name, err := validateName(p.Name)
	if err != nil {
		return nil, err
	}
	if err := ValidateDiscount(p.Kind, p.Value); err != nil {
		return nil, err
	}
	if p.Scope.Kind() == "" {
		return nil, ErrInvalidScopeKind
	}
	if p.Scope.MatchesNothing() {
		return nil, ErrEmptyScope
	}

	start, end := p.StartDate.UTC(), p.EndDate.UTC()
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}
	if start.Before(clock.StartOfDay(now)) {
		return nil, ErrStartInPast
	}

	promo := &Promotion{
		id:          p.ID,
		code:        DeriveCode(name, now),
		name:        name,
		description: strings.TrimSpace(p.Description),
		kind:        p.Kind,
		value:       p.Value,
		scope:       p.Scope,
		startDate:   start,
		endDate:     end,
		active:      p.Active,
		version:     1,
		createdBy:   p.CreatedBy,
		updatedBy:   p.CreatedBy,
		createdAt:   now,
		updatedAt:   now,
		changes:     NewChangeTracker(),
		events:      make([]DomainEvent, 0),
	}

	promo.changes.MarkDirty(FieldName, FieldDescription, FieldKind, FieldValue, FieldScope, FieldStartDate, FieldEndDate, FieldActive)
	promo.recordEvent(&PromotionCreatedEvent{
		PromotionID: promo.id,
		Snapshot:    promo.Snapshot(),
		CreatedAt:   now,
	})

	return promo, nil
}

// ReconstructPromotion rebuilds a stored promotion without validation.
func ReconstructPromotion(
	id, code, name, description string,
	kind DiscountKind,
	value decimal.Decimal,
	scope Scope,
	startDate, endDate time.Time,
	active bool,
	version int64,
	createdBy, updatedBy string,
	createdAt, updatedAt time.Time,
) *Promotion {
	return &Promotion{
		id:          id,
		code:        code,
		name:        name,
		description: description,
		kind:        kind,
		value:       value,
		scope:       scope,
		startDate:   startDate.UTC(),
		endDate:     endDate.UTC(),
		active:      active,
		version:     version,
		createdBy:   createdBy,
		updatedBy:   updatedBy,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		changes:     NewChangeTracker(),
		events:      make([]DomainEvent, 0),
	}
}

// Getters
func (p *Promotion) ID() string                  { return p.id }
func (p *Promotion) Code() string                { return p.code }
func (p *Promotion) Name() string                { return p.name }
func (p *Promotion) Description() string         { return p.description }
func (p *Promotion) Kind() DiscountKind          { return p.kind }
func (p *Promotion) Value() decimal.Decimal      { return p.value }
func (p *Promotion) Scope() Scope                { return p.scope }
func (p *Promotion) StartDate() time.Time        { return p.startDate }
func (p *Promotion) EndDate() time.Time          { return p.endDate }
func (p *Promotion) IsActive() bool              { return p.active }
func (p *Promotion) Version() int64              { return p.version }
func (p *Promotion) CreatedBy() string           { return p.createdBy }
func (p *Promotion) UpdatedBy() string           { return p.updatedBy }
func (p *Promotion) CreatedAt() time.Time        { return p.createdAt }
func (p *Promotion) UpdatedAt() time.Time        { return p.updatedAt }
func (p *Promotion) Changes() *ChangeTracker     { return p.changes }
func (p *Promotion) DomainEvents() []DomainEvent { return p.events }

// IsEligibleAt reports active && start <= t < end.
func (p *Promotion) IsEligibleAt(t time.Time) bool {
	return p.Snapshot().IsEligibleAt(t)
}

// Snapshot copies the current state.
func (p *Promotion) Snapshot() PromotionSnapshot {
	return PromotionSnapshot{
		ID:          p.id,
		Code:        p.code,
		Name:        p.name,
		Description: p.description,
		Kind:        p.kind,
		Value:       p.value,
		Scope:       p.scope,
		StartDate:   p.startDate,
		EndDate:     p.endDate,
		Active:      p.active,
		Version:     p.version,
		CreatedBy:   p.createdBy,
		UpdatedBy:   p.updatedBy,
	}
}

// Rename sets a new name. Uniqueness is checked by the caller.
func (p *Promotion) Rename(name string) error {
	n, err := validateName(name)
	if err != nil {
		return err
	}
	if n == p.name {
		return nil
	}
	p.name = n
	p.changes.MarkDirty(FieldName)
	return nil
}

// SetDescription replaces the description.
func (p *Promotion) SetDescription(description string) {
	d := strings.TrimSpace(description)
	if d == p.description {
		return
	}
	p.description = d
	p.changes.MarkDirty(FieldDescription)
}

// ChangeDiscount updates kind and/or value. A nil argument keeps the current
// one; the resulting pair is validated together, so switching to percentage
// with an old fixed amount above 100 is rejected.
func (p *Promotion) ChangeDiscount(kind *DiscountKind, value *decimal.Decimal) error {
	newKind, newValue := p.kind, p.value
	if kind != nil {
		newKind = *kind
	}
	if value != nil {
		newValue = *value
	}
	if err := ValidateDiscount(newKind, newValue); err != nil {
		return err
	}
	if newKind != p.kind {
		p.kind = newKind
		p.changes.MarkDirty(FieldKind)
	}
	if !newValue.Equal(p.value) {
		p.value = newValue
		p.changes.MarkDirty(FieldValue)
	}
	return nil
}

// ChangeScope replaces the scope.
func (p *Promotion) ChangeScope(scope Scope) error {
	if scope.Kind() == "" {
		return ErrInvalidScopeKind
	}
	if scope.MatchesNothing() {
		return ErrEmptyScope
	}
	if scope.Equal(p.scope) {
		return nil
	}
	p.scope = scope
	p.changes.MarkDirty(FieldScope)
	return nil
}

// Reschedule moves the window. Nil keeps the current bound. The start-date
// floor only applies at creation, so an already running promotion can be edited.
func (p *Promotion) Reschedule(start, end *time.Time) error {
	newStart, newEnd := p.startDate, p.endDate
	if start != nil {
		newStart = start.UTC()
	}
	if end != nil {
		newEnd = end.UTC()
	}
	if err := ValidateWindow(newStart, newEnd); err != nil {
		return err
	}
	if !newStart.Equal(p.startDate) {
		p.startDate = newStart
		p.changes.MarkDirty(FieldStartDate)
	}
	if !newEnd.Equal(p.endDate) {
		p.endDate = newEnd
		p.changes.MarkDirty(FieldEndDate)
	}
	return nil
}

// SetActive toggles the active flag.
func (p *Promotion) SetActive(active bool, now time.Time) {
	if active == p.active {
		return
	}
	p.active = active
	p.changes.MarkDirty(FieldActive)
	if !active {
		p.recordEvent(&PromotionDeactivatedEvent{PromotionID: p.id, Timestamp: now})
	}
}

// MarkUpdated bumps the version and records a single update event for all
// pending changes. It is a no-op when nothing changed.
func (p *Promotion) MarkUpdated(actor string, now time.Time) {
	if !p.changes.HasChanges() {
		return
	}
	p.version++
	p.updatedBy = actor
	p.updatedAt = now
	p.recordEvent(&PromotionUpdatedEvent{
		PromotionID:   p.id,
		Version:       p.version,
		ChangedFields: p.changes.DirtyFields(),
		UpdatedBy:     actor,
		UpdatedAt:     now,
	})
}

// MarkDeleted records the deletion event.
func (p *Promotion) MarkDeleted(actor string, now time.Time) {
	p.recordEvent(&PromotionDeletedEvent{PromotionID: p.id, DeletedBy: actor, DeletedAt: now})
}

// ValidateWindow checks end > start and a duration of 1 to 365 days.
func ValidateWindow(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidPromotionWindow
	}
	if d := end.Sub(start); d < minDuration || d > maxDuration {
		return ErrInvalidDuration
	}
	return nil
}

func validateName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ErrEmptyName
	}
	if len([]rune(n)) > maxNameLength {
		return "", ErrNameTooLong
	}
	return n, nil
}

func (p *Promotion) recordEvent(event DomainEvent) {
	p.events = append(p.events, event)
}

// ClearEvents clears recorded domain events after they are written to the outbox.
func (p *Promotion) ClearEvents() {
	p.events = make([]DomainEvent, 0)
}
