package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_MarkDeleted_IsTerminal(t *testing.T) {
	msg := &Message{ID: 1, Content: "hello"}

	require.NoError(t, msg.MarkDeleted(7, time.Now()))
	assert.True(t, msg.IsDeleted)
	require.NotNil(t, msg.DeletedBy)
	assert.Equal(t, uint(7), *msg.DeletedBy)

	// Every further transition is rejected.
	assert.ErrorIs(t, msg.MarkDeleted(7, time.Now()), ErrMessageDeleted)
	assert.ErrorIs(t, msg.MarkEdited("resurrect", time.Now()), ErrMessageDeleted)
	_, err := msg.AddReaction("👍", 7)
	assert.ErrorIs(t, err, ErrMessageDeleted)
	_, err = msg.RemoveReaction("👍", 7)
	assert.ErrorIs(t, err, ErrMessageDeleted)

	assert.Equal(t, "hello", msg.Content, "soft delete does not blank the row")
}

func TestMessage_MarkEdited_StampsEveryEdit(t *testing.T) {
	msg := &Message{ID: 1, Content: "v1"}

	first := time.Now()
	require.NoError(t, msg.MarkEdited("v2", first))
	require.NotNil(t, msg.EditedAt)
	assert.Equal(t, first, *msg.EditedAt)

	second := first.Add(time.Minute)
	require.NoError(t, msg.MarkEdited("v3", second))
	assert.Equal(t, second, *msg.EditedAt, "only the latest edit time is kept")
	assert.Equal(t, "v3", msg.Content)
}

func TestMessage_Reactions_SetSemantics(t *testing.T) {
	msg := &Message{ID: 1}

	changed, err := msg.AddReaction("👍", 3)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = msg.AddReaction("👍", 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []uint{1, 3}, msg.Reactions["👍"], "user sets stay sorted")

	changed, err = msg.AddReaction("👍", 3)
	require.NoError(t, err)
	assert.False(t, changed, "duplicate reaction is a no-op")

	changed, err = msg.RemoveReaction("👍", 2)
	require.NoError(t, err)
	assert.False(t, changed, "removing an absent reaction is a no-op")

	changed, err = msg.RemoveReaction("👍", 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []uint{3}, msg.Reactions["👍"])

	changed, err = msg.RemoveReaction("👍", 3)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotContains(t, msg.Reactions, "👍", "empty emoji keys are pruned")
}

func TestReactionMap_ValueAndScan(t *testing.T) {
	m := ReactionMap{"🎉": {1, 2}}
	v, err := m.Value()
	require.NoError(t, err)

	var out ReactionMap
	require.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)

	var empty ReactionMap
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
