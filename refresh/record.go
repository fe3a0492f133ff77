package refresh

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	recordFormatVersionCurrent = 1
	recordEncodedSize          = 1 + sha256.Size + 8 + 8
)

// Record is the persisted state of a refresh window.
type Record struct {
	SessionID string
	AckHash   [32]byte
	CreatedAt int64
	ExpiresAt int64
}

// HashAck returns the digest stored in place of the acknowledgement secret.
func HashAck(ack string) [32]byte {
	return sha256.Sum256([]byte(ack))
}

// Encode serializes r into the current binary record format.
func Encode(r *Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil record")
	}

	var buf bytes.Buffer
	buf.Grow(recordEncodedSize)
	buf.WriteByte(recordFormatVersionCurrent)
	buf.Write(r.AckHash[:])

	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a binary record. SessionID is left empty; the caller knows the key.
func Decode(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, ErrRecordCorrupt
	}
	if data[0] != recordFormatVersionCurrent {
		return nil, fmt.Errorf("%w: unsupported record version %d", ErrRecordCorrupt, data[0])
	}
	if len(data) != recordEncodedSize {
		return nil, fmt.Errorf("%w: unexpected record size %d", ErrRecordCorrupt, len(data))
	}

	r := &Record{}
	copy(r.AckHash[:], data[1:1+sha256.Size])
	offset := 1 + sha256.Size
	r.CreatedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	r.ExpiresAt = int64(binary.BigEndian.Uint64(data[offset+8 : offset+16]))

	return r, nil
}
