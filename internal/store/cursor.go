package store

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursors are opaque keyset positions over (created_at, id), not offsets, so
// pagination stays correct under concurrent inserts.

// EncodeCursor returns the opaque cursor pointing just before the given
// message position.
func EncodeCursor(createdAt time.Time, id uint) string {
	raw := fmt.Sprintf("%d.%d", createdAt.UnixNano(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor back into its ordering key. A
// malformed cursor fails with ErrInvalidArgument.
func DecodeCursor(cursor string) (time.Time, uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("store: decode cursor: %w", ErrInvalidArgument)
	}
	parts := strings.SplitN(string(raw), ".", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("store: decode cursor: %w", ErrInvalidArgument)
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("store: decode cursor timestamp: %w", ErrInvalidArgument)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("store: decode cursor id: %w", ErrInvalidArgument)
	}
	return time.Unix(0, nanos), uint(id), nil
}
