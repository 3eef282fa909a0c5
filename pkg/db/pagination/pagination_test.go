package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "1234567890", CreatedAt: "2026-08-30T10:00:00Z"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", decoded.ID)
	assert.Equal(t, "2026-08-30T10:00:00Z", decoded.CreatedAt)
}

func TestDecodeCursor_BadToken(t *testing.T) {
	_, err := DecodeCursor("not base64!!")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(v *int) string { return "after" }

	info := BuildCursorPageInfo(nil, 2, extract)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	one, two, three := 1, 2, 3

	info = BuildCursorPageInfo([]*int{&one, &two}, 2, extract)
	assert.False(t, info.HasMore)
	assert.Equal(t, "after", info.NextPageToken)

	// limit+1 rows means another page exists.
	info = BuildCursorPageInfo([]*int{&one, &two, &three}, 2, extract)
	assert.True(t, info.HasMore)
	assert.Equal(t, "after", info.NextPageToken)
}
