package models

import "time"

// ConnectionType classifies the relationship between two users.
type ConnectionType string

const (
	ConnectionCouple ConnectionType = "couple"
	ConnectionFriend ConnectionType = "friend"
	ConnectionGroup  ConnectionType = "group"
)

// ValidConnectionType reports whether t is a known connection type.
func ValidConnectionType(t ConnectionType) bool {
	switch t {
	case ConnectionCouple, ConnectionFriend, ConnectionGroup:
		return true
	}
	return false
}

// ConnectionStatus is the lifecycle state of a connection.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// MemoryType classifies a memory and its attachments.
type MemoryType string

const (
	MemoryPhoto MemoryType = "photo"
	MemoryVideo MemoryType = "video"
	MemoryNote  MemoryType = "note"
)

// ValidMemoryType reports whether t is a known memory type.
func ValidMemoryType(t MemoryType) bool {
	switch t {
	case MemoryPhoto, MemoryVideo, MemoryNote:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of a deletion request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RequestType tags which kind of target a deletion request points at.
type RequestType string

const (
	RequestMemory RequestType = "memory"
	RequestFile   RequestType = "file"
)

// User represents an account. Users are never hard-deleted.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Gender       *string   `json:"gender,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Connection represents a pairwise relationship between two users.
// The pair is ordered in storage: user1 is the initiating side.
type Connection struct {
	ID             string           `json:"id"`
	User1ID        string           `json:"user1_id"`
	User2ID        string           `json:"user2_id"`
	ConnectionType ConnectionType   `json:"connection_type"`
	Status         ConnectionStatus `json:"status"`
	Message        *string          `json:"message,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// OtherUserID returns the member of the pair that is not userID,
// or an empty string if userID is not a member.
func (c *Connection) OtherUserID(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

// HasMember reports whether userID is a party to the connection.
func (c *Connection) HasMember(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ConnectionWithUsers is a connection with both user records joined inline.
type ConnectionWithUsers struct {
	Connection
	User1 User `json:"user1"`
	User2 User `json:"user2"`
}

// Memory is a moment pinned to a geographic location. A nil
// ConnectionID means the memory is personal and visible only to its
// creator; otherwise it is shared with both connection members.
type Memory struct {
	ID           string     `json:"id"`
	ConnectionID *string    `json:"connection_id,omitempty"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	LocationName string     `json:"location_name"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	MemoryType   MemoryType `json:"memory_type"`
	FileURL      *string    `json:"file_url,omitempty"`
	CreatedBy    string     `json:"created_by"`
	PlaceID      *string    `json:"place_id,omitempty"`
	City         *string    `json:"city,omitempty"`
	Country      *string    `json:"country,omitempty"`
	State        *string    `json:"state,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsPersonal reports whether the memory has no connection scope.
func (m *Memory) IsPersonal() bool {
	return m.ConnectionID == nil
}

// MemoryWithConnection is a memory with its connection (if any) and
// creator joined inline, the shape consumed by the marker projector.
type MemoryWithConnection struct {
	Memory
	Connection    *ConnectionWithUsers `json:"connection,omitempty"`
	CreatedByUser User                 `json:"created_by_user"`
}

// MemoryFile is an attachment stored in object storage, many-to-one
// with Memory.
type MemoryFile struct {
	ID        string     `json:"id"`
	MemoryID  string     `json:"memory_id"`
	FileURL   string     `json:"file_url"`
	FileName  string     `json:"file_name"`
	FileType  MemoryType `json:"file_type"`
	FileSize  int64      `json:"file_size"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// DeletionRequest is a consent record gating removal of shared
// content. Exactly one of MemoryID/FileID is set, tagged by
// RequestType. MemoryTitle, FileName and RequesterName are read-side
// denormalizations for display.
type DeletionRequest struct {
	ID          string        `json:"id"`
	MemoryID    *string       `json:"memory_id,omitempty"`
	FileID      *string       `json:"file_id,omitempty"`
	RequestType RequestType   `json:"request_type"`
	RequesterID string        `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	Message     *string       `json:"message,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
	ResponderID *string       `json:"responder_id,omitempty"`

	MemoryTitle   *string `json:"memory_title,omitempty"`
	FileName      *string `json:"file_name,omitempty"`
	RequesterName string  `json:"requester_name,omitempty"`
}
