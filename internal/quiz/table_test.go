package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollTable_RegisterResolveRemove(t *testing.T) {
	table := NewPollTable()
	options := []string{"pan", "gato", "perro"}

	table.Register("poll-1", "gato", 42, options)
	options[0] = "mutated"

	p, ok := table.Resolve("poll-1")
	assert.True(t, ok)
	assert.Equal(t, "gato", p.CorrectWord)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, []string{"pan", "gato", "perro"}, p.Options)
	assert.Equal(t, 1, p.CorrectIndex())

	table.Remove("poll-1")
	_, ok = table.Resolve("poll-1")
	assert.False(t, ok)

	// removing an unknown id is harmless
	table.Remove("poll-unknown")
	assert.Equal(t, 0, table.Len())
}

func TestPollTable_RegisterOverwrites(t *testing.T) {
	table := NewPollTable()

	table.Register("poll-1", "gato", 1, []string{"gato", "pan"})
	table.Register("poll-1", "perro", 2, []string{"perro", "pan"})

	p, ok := table.Resolve("poll-1")
	assert.True(t, ok)
	assert.Equal(t, "perro", p.CorrectWord)
	assert.Equal(t, int64(2), p.UserID)
	assert.Equal(t, 1, table.Len())
}

func TestPollTable_TakeIsSingleUse(t *testing.T) {
	table := NewPollTable()
	table.Register("poll-1", "gato", 1, []string{"gato", "pan"})

	_, ok := table.Take("poll-1")
	assert.True(t, ok)

	_, ok = table.Take("poll-1")
	assert.False(t, ok)
}

func TestPollTable_Sweep(t *testing.T) {
	table := NewPollTable()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	table.now = func() time.Time { return now.Add(-48 * time.Hour) }
	table.Register("old", "gato", 1, []string{"gato", "pan"})

	table.now = func() time.Time { return now.Add(-time.Hour) }
	table.Register("fresh", "pan", 1, []string{"gato", "pan"})

	table.now = func() time.Time { return now }
	removed := table.Sweep(24 * time.Hour)

	assert.Equal(t, 1, removed)
	_, ok := table.Resolve("old")
	assert.False(t, ok)
	_, ok = table.Resolve("fresh")
	assert.True(t, ok)
}
