package credstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRecordNotFound is returned when no credential record exists for the
// user: never logged in, logged out, or the record expired away.
var ErrRecordNotFound = errors.New("credential record not found")

// ErrRecordExpired is returned when the record exists but its embedded
// expiry has passed; the script deletes it as a side effect.
var ErrRecordExpired = errors.New("credential record expired")

// ErrHashMismatch is returned when the presented refresh-token hash lost
// the compare-and-swap. This is the reuse-detection signal.
var ErrHashMismatch = errors.New("refresh token hash mismatch")

// ErrRecordCorrupt is returned for undecodable record blobs.
var ErrRecordCorrupt = errors.New("credential record corrupt")

// ErrRedisUnavailable marks transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	rotateStatusNotFound    int64 = 0
	rotateStatusExpired     int64 = 1
	rotateStatusMismatch    int64 = 2
	rotateStatusRotated     int64 = 3
	rotateStatusInvalidBlob int64 = 4
)

const rotateScript = `
local function read_be32(s, i)
  local b1, b2, b3, b4 = string.byte(s, i, i + 3)
  if not b4 then
    return nil
  end
  return ((b1 * 256 + b2) * 256 + b3) * 256 + b4
end

local function read_be64(s, i)
  local hi = read_be32(s, i)
  local lo = read_be32(s, i + 4)
  if not hi or not lo then
    return nil
  end
  return hi * 4294967296 + lo
end

local function write_be32(v)
  return string.char(
    math.floor(v / 16777216) % 256,
    math.floor(v / 65536) % 256,
    math.floor(v / 256) % 256,
    v % 256)
end

local key = KEYS[1]
local provided_hash = ARGV[1]
local next_hash = ARGV[2]
local now_unix = tonumber(ARGV[3])
local new_tail = ARGV[4]
local clear_on_mismatch = ARGV[5]
local ttl_ms = ARGV[6]

local data = redis.call("GET", key)
if not data then
  return {0}
end
if #data ~= 53 or string.byte(data, 1) ~= 1 then
  return {4}
end

local expires_at = read_be64(data, 46)
if not expires_at or expires_at <= now_unix then
  redis.call("DEL", key)
  return {1}
end

if string.sub(data, 6, 37) ~= provided_hash then
  if clear_on_mismatch == "1" then
    redis.call("DEL", key)
  end
  return {2}
end

local version = (read_be32(data, 2) + 1) % 4294967296
local updated = string.sub(data, 1, 1) .. write_be32(version) .. next_hash .. new_tail
redis.call("SET", key, updated, "PX", ttl_ms)
return {3, updated}
`

var rotateLua = redis.NewScript(rotateScript)

const putScript = `
local key = KEYS[1]
local record = ARGV[1]
local ttl_ms = ARGV[2]

local existing = redis.call("GET", key)
if existing and #existing == 53 and string.byte(existing, 1) == 1 then
  local b1, b2, b3, b4 = string.byte(existing, 2, 5)
  local version = (((b1 * 256 + b2) * 256 + b3) * 256 + b4 + 1) % 4294967296
  record = string.sub(record, 1, 1) .. string.char(
    math.floor(version / 16777216) % 256,
    math.floor(version / 65536) % 256,
    math.floor(version / 256) % 256,
    version % 256) .. string.sub(record, 6)
end
redis.call("SET", key, record, "PX", ttl_ms)
return record
`

var putLua = redis.NewScript(putScript)

// Store is the Redis-backed credential record store.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store backed by the given Redis client. prefix
// namespaces the keys.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":cred:" + userID
}

// Put unconditionally installs a new refresh-token hash for the user,
// replacing any prior record. The rotation version continues from the old
// record when one exists, so supersession is still observable. Used by
// login, which always starts a fresh lineage.
//
//	Performance: 1 Lua EVALSHA.
func (s *Store) Put(ctx context.Context, userID string, hash [32]byte, ttl time.Duration) (*Record, error) {
	now := time.Now()
	record := &Record{
		TokenVersion: 1,
		RefreshHash:  hash,
		RotatedAt:    now.Unix(),
		ExpiresAt:    now.Add(ttl).Unix(),
	}
	encoded, err := Encode(record)
	if err != nil {
		return nil, err
	}

	result, err := putLua.Run(ctx, s.redis, []string{s.key(userID)}, encoded, ttl.Milliseconds()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	blob, err := blobFromResult(result)
	if err != nil {
		return nil, err
	}
	stored, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	return stored, nil
}

// Rotate atomically swaps the stored refresh-token hash using a Lua
// compare-and-swap. It succeeds only when the stored hash still equals
// providedHash; concurrent calls presenting the same token therefore
// produce exactly one success. On mismatch the record is left untouched
// unless clearOnMismatch is set, in which case it is deleted to force a
// full re-login.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
func (s *Store) Rotate(
	ctx context.Context,
	userID string,
	providedHash [32]byte,
	nextHash [32]byte,
	ttl time.Duration,
	clearOnMismatch bool,
) (*Record, error) {
	now := time.Now()

	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], uint64(now.Unix()))
	binary.BigEndian.PutUint64(tail[8:], uint64(now.Add(ttl).Unix()))

	clearFlag := "0"
	if clearOnMismatch {
		clearFlag = "1"
	}

	result, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.key(userID)},
		providedHash[:],
		nextHash[:],
		now.Unix(),
		tail[:],
		clearFlag,
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return nil, fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}
	code, ok := parts[0].(int64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid rotate script status", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusNotFound:
		return nil, ErrRecordNotFound
	case rotateStatusExpired:
		return nil, ErrRecordExpired
	case rotateStatusMismatch:
		return nil, ErrHashMismatch
	case rotateStatusInvalidBlob:
		return nil, ErrRecordCorrupt
	case rotateStatusRotated:
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: missing updated record payload", ErrRedisUnavailable)
		}
		blob, err := blobFromResult(parts[1])
		if err != nil {
			return nil, err
		}
		updated, err := Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
		}
		return updated, nil
	default:
		return nil, fmt.Errorf("%w: unknown rotate script status %d", ErrRedisUnavailable, code)
	}
}

// Clear deletes the user's credential record. Idempotent: clearing an
// absent record is not an error.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get fetches and decodes the user's record without mutating any state.
func (s *Store) Get(ctx context.Context, userID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	if time.Now().Unix() >= record.ExpiresAt {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// Ping returns a point-in-time Redis availability check and its latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func blobFromResult(result interface{}) ([]byte, error) {
	switch v := result.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: invalid record payload", ErrRedisUnavailable)
	}
}
