package credstore

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	recordSchemaVersion byte = 1
	recordSize               = 53
)

// Record is the decoded credential record for one user.
type Record struct {
	TokenVersion uint32
	RefreshHash  [32]byte
	RotatedAt    int64
	ExpiresAt    int64
}

// Encode serializes r into the fixed 53-byte wire format.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(recordSize)

	buf.WriteByte(recordSchemaVersion)
	if err := binary.Write(&buf, binary.BigEndian, r.TokenVersion); err != nil {
		return nil, err
	}
	buf.Write(r.RefreshHash[:])
	if err := binary.Write(&buf, binary.BigEndian, r.RotatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses the fixed wire format back into a Record.
func Decode(data []byte) (*Record, error) {
	if len(data) != recordSize {
		return nil, errors.New("invalid record size")
	}
	if data[0] != recordSchemaVersion {
		return nil, errors.New("invalid record schema version")
	}

	r := &Record{}
	r.TokenVersion = binary.BigEndian.Uint32(data[1:5])
	copy(r.RefreshHash[:], data[5:37])
	r.RotatedAt = int64(binary.BigEndian.Uint64(data[37:45]))
	r.ExpiresAt = int64(binary.BigEndian.Uint64(data[45:53]))

	return r, nil
}
