package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoomList(t *testing.T) {
	bare := []byte(`[{"name":"Room A","capacity":30},{"name":"Room B"}]`)
	rooms, err := decodeRoomList(bare)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room A", rooms[0].Name)
	assert.Equal(t, 30, rooms[0].Capacity)

	wrapped := []byte(`{"rooms":[{"name":"Room C"}]}`)
	rooms, err = decodeRoomList(wrapped)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Room C", rooms[0].Name)

	_, err = decodeRoomList([]byte(`"not a list"`))
	assert.Error(t, err)
}

func TestNormalizeRoomFields(t *testing.T) {
	assert.Equal(t, "computer", normalizeRoomCategory(" Computer "))
	assert.Equal(t, "self_study", normalizeRoomCategory("lounge"))
	assert.Equal(t, "maintenance", normalizeRoomStatus("MAINTENANCE"))
	assert.Equal(t, "available", normalizeRoomStatus(""))
}
