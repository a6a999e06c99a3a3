package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	id := NewRunID(at)

	assert.Equal(t, "run-20260825-100000", id)
	assert.True(t, ValidRunID(id))
}

func TestNewRunIDUsesUTC(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	at := time.Date(2026, 8, 25, 10, 0, 0, 0, loc)
	assert.Equal(t, "run-20260825-140000", NewRunID(at))
}

func TestUniquifyRunID(t *testing.T) {
	t.Parallel()

	base := NewRunID(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC))
	unique := UniquifyRunID(base)

	assert.NotEqual(t, base, unique)
	assert.True(t, ValidRunID(unique), "uniquified ID should stay well-formed: %s", unique)
	assert.NotEqual(t, unique, UniquifyRunID(base))
}

func TestValidRunID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "plain ID", id: "run-20260825-100000", valid: true},
		{name: "uniquified ID", id: "run-20260825-100000-1a2b3c4d", valid: true},
		{name: "empty", id: "", valid: false},
		{name: "missing prefix", id: "20260825-100000", valid: false},
		{name: "wrong prefix", id: "task-20260825-100000", valid: false},
		{name: "truncated timestamp", id: "run-20260825-1000", valid: false},
		{name: "path traversal", id: "run-20260825-100000/../other", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, ValidRunID(tt.id))
		})
	}
}
