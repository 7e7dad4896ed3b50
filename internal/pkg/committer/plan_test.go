package committer

import (
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCommitPlan(t *testing.T) {
	t.Run("empty plan", func(t *testing.T) {
		plan := NewPlan()
		assert.True(t, plan.IsEmpty())
		assert.Equal(t, 0, plan.Count())
	})

	t.Run("nil mutations are ignored", func(t *testing.T) {
		plan := NewPlan()
		plan.Add(nil)
		plan.AddMultiple([]*spanner.Mutation{nil, nil})
		assert.True(t, plan.IsEmpty())
	})

	t.Run("collects mutations in order", func(t *testing.T) {
		first := spanner.Delete("promotions", spanner.Key{"a"})
		second := spanner.Delete("promotions", spanner.Key{"b"})

		plan := NewPlan()
		plan.Add(first)
		plan.AddMultiple([]*spanner.Mutation{second})

		assert.Equal(t, 2, plan.Count())
		assert.Same(t, first, plan.Mutations()[0])
		assert.Same(t, second, plan.Mutations()[1])
	})
}

func TestIsAlreadyExists(t *testing.T) {
	dup := status.Error(codes.AlreadyExists, "unique index violation on promotions_by_name")

	assert.True(t, IsAlreadyExists(dup))
	assert.True(t, IsAlreadyExists(fmt.Errorf("failed to apply commit plan: %w", dup)))
	assert.False(t, IsAlreadyExists(status.Error(codes.Aborted, "aborted")))
	assert.False(t, IsAlreadyExists(errors.New("boom")))
	assert.False(t, IsAlreadyExists(nil))
}
