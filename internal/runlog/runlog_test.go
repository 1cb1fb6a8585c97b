package runlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderKeepsInsertionOrder(t *testing.T) {
	rec := NewRecorder()
	rec.Record("first", map[string]any{"k": 1})
	rec.Record("second", nil)
	rec.Record("third", "payload")

	obs := rec.Observations()
	assert.Len(t, obs, 3)
	assert.Equal(t, "first", obs[0].Description)
	assert.Equal(t, "second", obs[1].Description)
	assert.Nil(t, obs[1].Data)
	assert.Equal(t, "third", obs[2].Description)
}

func TestFreshRecorderStartsEmpty(t *testing.T) {
	rec := NewRecorder()
	rec.Record("only", nil)

	// A second execution gets its own recorder and must not see prior trace.
	next := NewRecorder()
	assert.Empty(t, next.Observations())
	assert.Len(t, rec.Observations(), 1)
}
