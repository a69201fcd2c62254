// Package markers projects memory records onto map-displayable
// marker values. The projection is pure and deterministic: the map
// layer diffs markers by identity, so the same record must always
// project to the same marker.
package markers

import (
	"time"

	"github.com/StiliyanIliev27/Memora/internal/models"
)

// Icon is the glyph rendered for a marker.
type Icon string

const (
	IconHeart  Icon = "heart"
	IconUsers  Icon = "users"
	IconMapPin Icon = "mappin"
)

// Marker colors per scope.
const (
	ColorCouple   = "#ef4444"
	ColorFriend   = "#f59e0b"
	ColorGroup    = "#3b82f6"
	ColorPersonal = "#6b7280"
)

// ConnectionSummary is the slice of connection data a marker popup
// needs.
type ConnectionSummary struct {
	User1Name      string                `json:"user1_name"`
	User1Email     string                `json:"user1_email"`
	User2Name      string                `json:"user2_name"`
	User2Email     string                `json:"user2_email"`
	ConnectionType models.ConnectionType `json:"connection_type"`
}

// Marker is the map-displayable projection of a memory.
type Marker struct {
	ID             string                 `json:"id"`
	Position       [2]float64             `json:"position"` // [longitude, latitude]
	Icon           Icon                   `json:"icon"`
	Color          string                 `json:"color"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Location       string                 `json:"location"`
	Date           time.Time              `json:"date"`
	CreatedBy      string                 `json:"created_by"`
	ConnectionID   *string                `json:"connection_id,omitempty"`
	ConnectionType *models.ConnectionType `json:"connection_type,omitempty"`
	IsPersonal     bool                   `json:"is_personal"`
	Connection     *ConnectionSummary     `json:"connection,omitempty"`
}

// Project maps a memory record to its marker.
func Project(m *models.MemoryWithConnection) Marker {
	marker := Marker{
		ID:           m.ID,
		Position:     [2]float64{m.Longitude, m.Latitude},
		Icon:         IconMapPin,
		Color:        ColorPersonal,
		Title:        m.Title,
		Location:     m.LocationName,
		Date:         m.CreatedAt,
		CreatedBy:    m.CreatedBy,
		ConnectionID: m.ConnectionID,
		IsPersonal:   m.IsPersonal(),
	}
	if m.Title == "" {
		marker.Title = "Untitled Memory"
	}
	if m.Description != nil {
		marker.Description = *m.Description
	}

	if m.Connection != nil {
		connType := m.Connection.ConnectionType
		marker.ConnectionType = &connType
		marker.Connection = &ConnectionSummary{
			User1Name:      m.Connection.User1.Name,
			User1Email:     m.Connection.User1.Email,
			User2Name:      m.Connection.User2.Name,
			User2Email:     m.Connection.User2.Email,
			ConnectionType: connType,
		}

		switch connType {
		case models.ConnectionCouple:
			marker.Icon = IconHeart
			marker.Color = ColorCouple
		case models.ConnectionFriend:
			marker.Icon = IconUsers
			marker.Color = ColorFriend
		case models.ConnectionGroup:
			marker.Icon = IconUsers
			marker.Color = ColorGroup
		}
	}

	return marker
}

// ProjectAll maps a memory list to its markers, preserving order.
func ProjectAll(memories []*models.MemoryWithConnection) []Marker {
	result := make([]Marker, 0, len(memories))
	for _, m := range memories {
		result = append(result, Project(m))
	}
	return result
}
