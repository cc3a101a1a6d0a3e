package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchSession_Record(t *testing.T) {
	s := &SearchSession{ID: "s1"}

	_, ok := s.Total()
	assert.False(t, ok)

	assert.Equal(t, 15, s.Record(15, false))
	assert.Equal(t, 15, s.Record(35, false))

	total, ok := s.Total()
	assert.True(t, ok)
	assert.Equal(t, 15, total)

	assert.Equal(t, 35, s.Record(35, true))
}
