package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDistinguishesAbsentNullValue(t *testing.T) {
	type payload struct {
		Notes Optional[string] `json:"notes"`
	}

	t.Run("absent", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Notes.Set)
		assert.False(t, p.Notes.Valid)
	})

	t.Run("explicit null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"notes":null}`), &p))
		assert.True(t, p.Notes.Set)
		assert.False(t, p.Notes.Valid)
		assert.Nil(t, p.Notes.Ptr())
	})

	t.Run("value", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"notes":"worn tires"}`), &p))
		assert.True(t, p.Notes.Set)
		assert.True(t, p.Notes.Valid)
		require.NotNil(t, p.Notes.Ptr())
		assert.Equal(t, "worn tires", *p.Notes.Ptr())
	})

	t.Run("wrong type", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"notes":42}`), &p))
	})
}

func TestOptionalMarshal(t *testing.T) {
	b, err := json.Marshal(Optional[string]{Set: true, Valid: true, Value: "x"})
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(b))

	b, err = json.Marshal(Optional[string]{Set: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
