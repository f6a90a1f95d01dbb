package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixUser is the prefix of every per-user key
	KeyPrefixUser = "serene:user:"
	// KeyPrefixAccount is the prefix for account records
	KeyPrefixAccount = "serene:account:"
	// KeyPrefixEmail is the prefix of the email -> account id index
	KeyPrefixEmail = "serene:account:email:"
	// KeyPrefixRevoked is the prefix for revoked token ids
	KeyPrefixRevoked = "serene:revoked:"
	// KeyPrefixReset is the prefix for password reset tokens
	KeyPrefixReset = "serene:reset:"

	logSegment = ":habitlog:"
)

func userKey(userID string) string {
	return KeyPrefixUser + userID
}

// EntryKey returns the key of one journal entry
func EntryKey(userID, id string) string {
	return userKey(userID) + ":entry:" + id
}

// EntriesKey returns the set of the user's entry ids
func EntriesKey(userID string) string {
	return userKey(userID) + ":entries"
}

// HabitKey returns the key of one habit definition
func HabitKey(userID, id string) string {
	return userKey(userID) + ":habit:" + id
}

// HabitsKey returns the set of the user's habit ids
func HabitsKey(userID string) string {
	return userKey(userID) + ":habits"
}

// LogKey returns the key of the completion record for one date
func LogKey(userID, date string) string {
	return userKey(userID) + logSegment + date
}

// LogDatesKey returns the set of dates that have a completion record
func LogDatesKey(userID string) string {
	return userKey(userID) + ":habitlogs"
}

// SeededKey returns the marker written by the starter-data seeding
func SeededKey(userID string) string {
	return userKey(userID) + ":seeded"
}

// AccountKey returns the key of an account record
func AccountKey(id string) string {
	return KeyPrefixAccount + id
}

// EmailKey returns the index key for a normalized email
func EmailKey(email string) string {
	return KeyPrefixEmail + email
}

// RevokedKey returns the key marking a token id as revoked
func RevokedKey(tokenID string) string {
	return KeyPrefixRevoked + tokenID
}

// ResetKey returns the key holding a password reset token
func ResetKey(token string) string {
	return KeyPrefixReset + token
}

// logKeyPattern matches every completion record of every user
const logKeyPattern = KeyPrefixUser + "*" + logSegment + "*"

// ParseLogKey extracts the user id and date from a completion record key
func ParseLogKey(key string) (userID, date string, err error) {
	rest, ok := strings.CutPrefix(key, KeyPrefixUser)
	if !ok {
		return "", "", fmt.Errorf("invalid habit log key: %s", key)
	}
	i := strings.LastIndex(rest, logSegment)
	if i <= 0 || i+len(logSegment) == len(rest) {
		return "", "", fmt.Errorf("invalid habit log key: %s", key)
	}
	return rest[:i], rest[i+len(logSegment):], nil
}
