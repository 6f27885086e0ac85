package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinctTags_Global(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateComic(t, s, makeTestComic("A", "usr-alice", "action", "action", "sci-fi"))
	mustCreateComic(t, s, makeTestComic("B", "usr-bob", "drama", "action"))

	got, err := s.DistinctTags(ctx, "")
	require.NoError(t, err)

	// The result is a set: duplicates across (and within) comics collapse.
	assert.ElementsMatch(t, []string{"action", "drama", "sci-fi"}, got)
}

func TestDistinctTags_OwnerScope(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateComic(t, s, makeTestComic("A", "usr-alice", "action", "sci-fi"))
	mustCreateComic(t, s, makeTestComic("B", "usr-bob", "drama"))

	got, err := s.DistinctTags(ctx, "usr-alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"action", "sci-fi"}, got)
}

func TestDistinctTags_Empty(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.DistinctTags(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
