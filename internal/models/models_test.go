package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionOtherUserID(t *testing.T) {
	conn := &Connection{User1ID: "user-1", User2ID: "user-2"}

	assert.Equal(t, "user-2", conn.OtherUserID("user-1"))
	assert.Equal(t, "user-1", conn.OtherUserID("user-2"))
	assert.Equal(t, "", conn.OtherUserID("stranger"))
}

func TestConnectionHasMember(t *testing.T) {
	conn := &Connection{User1ID: "user-1", User2ID: "user-2"}

	assert.True(t, conn.HasMember("user-1"))
	assert.True(t, conn.HasMember("user-2"))
	assert.False(t, conn.HasMember("stranger"))
}
