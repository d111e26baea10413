package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const roomIDLength = 6

// GenerateUserID - returns a new unique user id.
func GenerateUserID() string {
	return uuid.NewString()
}

// GenerateSessionID - returns a new unique connection id.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateRoomID - returns a short room code players can type.
func GenerateRoomID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:roomIDLength])
}
