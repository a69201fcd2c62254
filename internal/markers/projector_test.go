package markers

import (
	"testing"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedMemory(connType models.ConnectionType) *models.MemoryWithConnection {
	connID := "conn-1"
	return &models.MemoryWithConnection{
		Memory: models.Memory{
			ID:           "mem-1",
			ConnectionID: &connID,
			Title:        "Picnic",
			LocationName: "Hyde Park",
			Latitude:     51.5073,
			Longitude:    -0.1657,
			CreatedBy:    "alice-id",
			CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Connection: &models.ConnectionWithUsers{
			Connection: models.Connection{
				ID:             connID,
				User1ID:        "alice-id",
				User2ID:        "bob-id",
				ConnectionType: connType,
				Status:         models.ConnectionAccepted,
			},
			User1: models.User{ID: "alice-id", Name: "Alice", Email: "alice@example.com"},
			User2: models.User{ID: "bob-id", Name: "Bob", Email: "bob@example.com"},
		},
	}
}

func TestProjectIconAndColorByType(t *testing.T) {
	tests := []struct {
		connType models.ConnectionType
		icon     Icon
		color    string
	}{
		{models.ConnectionCouple, IconHeart, ColorCouple},
		{models.ConnectionFriend, IconUsers, ColorFriend},
		{models.ConnectionGroup, IconUsers, ColorGroup},
	}

	for _, tt := range tests {
		t.Run(string(tt.connType), func(t *testing.T) {
			marker := Project(sharedMemory(tt.connType))
			assert.Equal(t, tt.icon, marker.Icon)
			assert.Equal(t, tt.color, marker.Color)
			assert.False(t, marker.IsPersonal)
			require.NotNil(t, marker.Connection)
			assert.Equal(t, "Alice", marker.Connection.User1Name)
			assert.Equal(t, "Bob", marker.Connection.User2Name)
		})
	}
}

func TestProjectPersonalMemory(t *testing.T) {
	m := &models.MemoryWithConnection{
		Memory: models.Memory{
			ID:           "mem-2",
			Title:        "Solo hike",
			LocationName: "Vitosha",
			Latitude:     42.55,
			Longitude:    23.28,
			CreatedBy:    "alice-id",
		},
	}

	marker := Project(m)
	assert.Equal(t, IconMapPin, marker.Icon)
	assert.Equal(t, ColorPersonal, marker.Color)
	assert.True(t, marker.IsPersonal)
	assert.Nil(t, marker.Connection)
	assert.Nil(t, marker.ConnectionType)
}

func TestProjectPositionIsLngLat(t *testing.T) {
	marker := Project(sharedMemory(models.ConnectionCouple))
	assert.Equal(t, [2]float64{-0.1657, 51.5073}, marker.Position)
}

func TestProjectUntitledFallback(t *testing.T) {
	m := sharedMemory(models.ConnectionFriend)
	m.Title = ""
	marker := Project(m)
	assert.Equal(t, "Untitled Memory", marker.Title)
}

func TestProjectDeterministic(t *testing.T) {
	m := sharedMemory(models.ConnectionGroup)
	assert.Equal(t, Project(m), Project(m))
}

func TestProjectAllPreservesOrder(t *testing.T) {
	a := sharedMemory(models.ConnectionCouple)
	b := sharedMemory(models.ConnectionFriend)
	b.ID = "mem-9"

	out := ProjectAll([]*models.MemoryWithConnection{a, b})
	require.Len(t, out, 2)
	assert.Equal(t, "mem-1", out[0].ID)
	assert.Equal(t, "mem-9", out[1].ID)

	assert.Empty(t, ProjectAll(nil))
}
