// Package uuid issues the local identifiers given to records the budget
// service has not confirmed yet.
package uuid

import (
	"encoding/binary"
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string. Server ids are 24-char hex object
// ids, so a UUID can never collide with one.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to a random UUIDv4 if the v7 clock source fails
		return googleuuid.NewString()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// IssuedAt returns the creation time embedded in a UUIDv7.
// The second result is false for anything that is not a v7 UUID.
func IssuedAt(s string) (time.Time, bool) {
	id, err := googleuuid.Parse(s)
	if err != nil || id.Version() != 7 {
		return time.Time{}, false
	}
	var buf [8]byte
	copy(buf[2:], id[0:6])
	ms := binary.BigEndian.Uint64(buf[:])
	return time.UnixMilli(int64(ms)), true
}
