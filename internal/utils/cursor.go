package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// keyset is the (timestamp, id) pair DESC listings page after.
type keyset struct {
	At time.Time `json:"at"`
	ID string    `json:"id"`
}

type OrderCursor struct {
	CreatedAt time.Time
	ID        string
}

type JobCursor struct {
	UpdatedAt time.Time
	ID        string
}

// First-page sentinel for DESC keyset scans: far future + max UUID.
var (
	MaxCursorTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	MaxCursorID   = "ffffffff-ffff-ffff-ffff-ffffffffffff"
)

func encodeKeyset(at time.Time, id string) (string, error) {
	b, err := json.Marshal(keyset{At: at, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeKeyset(cursor string) (keyset, error) {
	if cursor == "" {
		return keyset{}, ErrInvalidCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return keyset{}, ErrInvalidCursor
	}

	var k keyset
	if err := json.Unmarshal(raw, &k); err != nil {
		return keyset{}, ErrInvalidCursor
	}
	id, ok := CanonicalUUID(k.ID)
	if !ok || k.At.IsZero() {
		return keyset{}, ErrInvalidCursor
	}
	k.ID = id
	return k, nil
}

func EncodeOrderCursor(createdAt time.Time, id string) (string, error) {
	return encodeKeyset(createdAt, id)
}

func DecodeOrderCursor(cursor string) (OrderCursor, error) {
	k, err := decodeKeyset(cursor)
	if err != nil {
		return OrderCursor{}, err
	}
	return OrderCursor{CreatedAt: k.At, ID: k.ID}, nil
}

func EncodeJobCursor(updatedAt time.Time, id string) (string, error) {
	return encodeKeyset(updatedAt, id)
}

func DecodeJobCursor(cursor string) (JobCursor, error) {
	k, err := decodeKeyset(cursor)
	if err != nil {
		return JobCursor{}, err
	}
	return JobCursor{UpdatedAt: k.At, ID: k.ID}, nil
}
