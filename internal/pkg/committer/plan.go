// Package committer collects Spanner mutations produced by repositories and
// applies them in one commit.
//
// Repositories never write on their own; they return *spanner.Mutation values.
// A use case gathers the promotion row, its outbox events and anything else
// that must land together into a CommitPlan and hands it to a Committer:
//
//	plan := committer.NewPlan()
//	plan.Add(promoRepo.InsertMut(promo))
//	for _, event := range promo.DomainEvents() {
//	    plan.Add(outboxRepo.InsertMut(outboxRepo.EnrichEvent(event, payload)))
//	}
//	return committer.Apply(ctx, plan)
//
// The recalculation engine uses the same type for its snapshot batches.
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

var (
	// ErrVersionConflict is returned when the stored version differs from the expected one.
	ErrVersionConflict = errors.New("optimistic lock conflict")
	// ErrRowNotFound is returned when the versioned row no longer exists.
	ErrRowNotFound = errors.New("versioned row not found")
)

// CommitPlan is a typed wrapper around Spanner mutations.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan. Nil mutations are ignored.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// VersionCheck names the row whose version column guards a plan.
type VersionCheck struct {
	Table           string
	Key             spanner.Key
	Column          string
	ExpectedVersion int64
}

// Committer applies CommitPlans against a Spanner client.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply executes the CommitPlan atomically.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}

	return nil
}

// ApplyWithReadWriteTransaction runs fn inside a read-write transaction.
func (c *Committer) ApplyWithReadWriteTransaction(ctx context.Context, fn func(context.Context, *spanner.ReadWriteTransaction) error) error {
	_, err := c.client.ReadWriteTransaction(ctx, fn)
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// ApplyWithVersionCheck applies the plan only if the guarded row still carries
// the expected version. It returns ErrVersionConflict or ErrRowNotFound otherwise.
func (c *Committer) ApplyWithVersionCheck(ctx context.Context, check VersionCheck, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	column := check.Column
	if column == "" {
		column = "version"
	}

	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, check.Table, check.Key, []string{column})
		if err != nil {
			if spanner.ErrCode(err) == codes.NotFound {
				return ErrRowNotFound
			}
			return fmt.Errorf("failed to read %s version: %w", check.Table, err)
		}

		var current int64
		if err := row.Column(0, &current); err != nil {
			return fmt.Errorf("failed to parse version: %w", err)
		}

		if current != check.ExpectedVersion {
			return fmt.Errorf("%w: expected %d, got %d", ErrVersionConflict, check.ExpectedVersion, current)
		}

		return txn.BufferWrite(plan.Mutations())
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrRowNotFound) {
			return err
		}
		return fmt.Errorf("failed to apply commit plan with version check: %w", err)
	}

	return nil
}

// IsAlreadyExists reports whether a commit failed on a primary key or
// unique index clash.
func IsAlreadyExists(err error) bool {
	return err != nil && spanner.ErrCode(err) == codes.AlreadyExists
}
