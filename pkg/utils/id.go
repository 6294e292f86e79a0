package utils

import "github.com/google/uuid"

// GenerateID mints the random UUID used as the primary key for users,
// contracts and offers.
func GenerateID() string {
	return uuid.New().String()
}

// IsValidUUID reports whether id parses as a UUID. Handlers use it to
// reject malformed path ids before hitting the database.
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
