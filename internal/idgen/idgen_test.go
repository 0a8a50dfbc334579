package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRunID(t *testing.T) {
	previous := NewFunc
	defer func() { NewFunc = previous }()
	NewFunc = func() string { return "42" }

	assert.Equal(t, "sim_42", NewRunID("sim"))
	assert.Equal(t, "42", NewRunID(""))

	NewFunc = previous
	id := NewRunID("sim")
	assert.True(t, strings.HasPrefix(id, "sim_"))
	assert.NotEqual(t, id, NewRunID("sim"))
}
