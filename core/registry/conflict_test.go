package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveConflict(t *testing.T) {
	t.Run("Identical values average confidence", func(t *testing.T) {
		resolved, confidence, resolution := ResolveConflict("zhang san", "zhang san", 0.8, 0.6)

		assert.Equal(t, "zhang san", resolved)
		assert.InDelta(t, 0.7, confidence, 1e-9)
		assert.Equal(t, ResolutionIdentical, resolution)
	})

	t.Run("Empty existing value yields incoming", func(t *testing.T) {
		resolved, confidence, resolution := ResolveConflict("", "13800138000", 0.9, 0.6)

		assert.Equal(t, "13800138000", resolved)
		assert.Equal(t, 0.6, confidence)
		assert.Equal(t, ResolutionNewValue, resolution)
	})

	t.Run("Empty incoming value yields existing", func(t *testing.T) {
		resolved, confidence, resolution := ResolveConflict("13800138000", "", 0.9, 0.6)

		assert.Equal(t, "13800138000", resolved)
		assert.Equal(t, 0.9, confidence)
		assert.Equal(t, ResolutionExistingValue, resolution)
	})

	t.Run("Nil existing value yields incoming", func(t *testing.T) {
		resolved, _, resolution := ResolveConflict(nil, "zhang san", 1.0, 0.5)

		assert.Equal(t, "zhang san", resolved)
		assert.Equal(t, ResolutionNewValue, resolution)
	})

	t.Run("Higher incoming confidence wins", func(t *testing.T) {
		resolved, confidence, resolution := ResolveConflict("zhang san", "zhang shan", 0.5, 0.9)

		assert.Equal(t, "zhang shan", resolved)
		assert.Equal(t, 0.9, confidence)
		assert.Equal(t, ResolutionConfidenceBased, resolution)
	})

	t.Run("Ties keep the existing value", func(t *testing.T) {
		resolved, confidence, resolution := ResolveConflict("zhang san", "zhang shan", 0.8, 0.8)

		assert.Equal(t, "zhang san", resolved)
		assert.Equal(t, 0.8, confidence)
		assert.Equal(t, ResolutionConfidenceBased, resolution)
	})
}

func TestIsEmptyValue(t *testing.T) {
	t.Run("Nil and empty string are empty", func(t *testing.T) {
		assert.True(t, isEmptyValue(nil))
		assert.True(t, isEmptyValue(""))
	})

	t.Run("Empty collections are empty", func(t *testing.T) {
		assert.True(t, isEmptyValue([]string{}))
		assert.True(t, isEmptyValue(map[string]interface{}{}))
	})

	t.Run("Non-empty values are not empty", func(t *testing.T) {
		assert.False(t, isEmptyValue("zhang san"))
		assert.False(t, isEmptyValue(42))
		assert.False(t, isEmptyValue([]string{"a"}))
	})
}
