package cache

import (
	"encoding/binary"
	"errors"
	"time"
)

// ErrCorruptEntry is returned when a stored blob is not a validly framed
// cache entry. Unlike storage failures, which are absorbed and reported
// as misses, corruption indicates a codec mismatch or damaged object and
// is surfaced to the caller.
var ErrCorruptEntry = errors.New("cache: corrupt entry")

// entryHeaderSize is the size of the expiry header that prefixes every
// stored entry: a big-endian unix timestamp in seconds.
const entryHeaderSize = 8

// encodeEntry frames a payload with its absolute expiry time, computed as
// now + timeout. A non-positive timeout encodes an already-expired entry.
// The expiry is written first so readers can check it without touching
// the payload.
func encodeEntry(payload []byte, timeout time.Duration, now time.Time) []byte {
	expiresAt := now.Add(timeout)
	if timeout <= 0 {
		expiresAt = now.Add(-time.Second)
	}

	blob := make([]byte, entryHeaderSize+len(payload))
	binary.BigEndian.PutUint64(blob, uint64(expiresAt.Unix()))
	copy(blob[entryHeaderSize:], payload)
	return blob
}

// decodeEntry extracts the payload from a framed entry.
func decodeEntry(blob []byte) ([]byte, error) {
	if len(blob) < entryHeaderSize {
		return nil, ErrCorruptEntry
	}
	return blob[entryHeaderSize:], nil
}

// entryExpiresAt reads the expiry timestamp without decoding the payload.
func entryExpiresAt(blob []byte) (time.Time, error) {
	if len(blob) < entryHeaderSize {
		return time.Time{}, ErrCorruptEntry
	}
	return time.Unix(int64(binary.BigEndian.Uint64(blob)), 0), nil
}

// entryExpired reports whether the framed entry is expired at the given
// instant. The boundary is inclusive: an entry expires the moment the
// clock reaches its expiry timestamp.
func entryExpired(blob []byte, now time.Time) (bool, error) {
	expiresAt, err := entryExpiresAt(blob)
	if err != nil {
		return false, err
	}
	return !now.Before(expiresAt), nil
}
