package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates the two credential types carried in the knd claim.
type Kind string

const (
	// KindAccess marks a short-lived request credential.
	KindAccess Kind = "access"
	// KindRefresh marks a rotating renewal credential.
	KindRefresh Kind = "refresh"
)

// SigningMethod selects the signature algorithm.
type SigningMethod string

const (
	// MethodHS256 signs with per-kind symmetric keys.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 key pair shared by both kinds;
	// the kind claim keeps the token spaces disjoint.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrMalformed reports a token that does not decode as a JWT at all.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid reports a decodable token whose signature does not
	// verify: tampering or a foreign key.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired reports a well-signed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrKindMismatch reports an access token presented where a refresh
	// token is required, or vice versa.
	ErrKindMismatch = errors.New("token kind mismatch")
	// ErrClaimsInvalid reports structurally valid tokens with unusable
	// claims (missing subject, bad issuer, iat in the future).
	ErrClaimsInvalid = errors.New("token claims invalid")
)

// Config holds the codec's immutable signing material and TTLs. Keys are
// loaded once at process start; rotating them invalidates all outstanding
// tokens.
type Config struct {
	SigningMethod SigningMethod

	// HS256: independent secrets per kind, mirroring the usual
	// ACCESS_TOKEN_SECRET / REFRESH_TOKEN_SECRET deployment split.
	AccessKey  []byte
	RefreshKey []byte

	// Ed25519: one key pair for both kinds (raw seed-format or PEM).
	PrivateKey []byte
	PublicKey  []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
}

// Claims is the verified content of a minted token.
type Claims struct {
	UserID string `json:"uid"`
	Kind   Kind   `json:"knd"`
	jwt.RegisteredClaims
}

// Codec mints and verifies tokens. Immutable after construction and safe
// for unsynchronized concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.AccessKey) == 0 || len(cfg.RefreshKey) == 0 {
			return nil, errors.New("hs256 requires access and refresh keys")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	return &Codec{config: cfg}, nil
}

// Mint serializes and signs a claim set for userID with the given kind and
// that kind's TTL. The token ID (jti) is a fresh UUID.
func (c *Codec) Mint(userID string, kind Kind) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("empty subject")
	}

	ttl := c.config.AccessTTL
	if kind == KindRefresh {
		ttl = c.config.RefreshTTL
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(c.method(), claims)
	key, err := c.signKey(kind)
	if err != nil {
		return "", err
	}
	return tok.SignedString(key)
}

// Verify checks encoding, signature, expiry, and kind, in that order of
// reporting precedence. It is side-effect free and never consults a store.
func (c *Codec) Verify(tokenStr string, expected Kind) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.verifyKey(expected)
	})
	if err != nil {
		classified := classifyParseError(err)
		// With per-kind HS256 keys a wrong-kind token fails the signature
		// check before its kind claim is ever read. Re-verify against the
		// other kind's key so the caller sees the real reason.
		if errors.Is(classified, ErrSignatureInvalid) && c.config.SigningMethod == MethodHS256 && c.signedAsOtherKind(tokenStr, expected) {
			return nil, fmt.Errorf("%w: want %q", ErrKindMismatch, expected)
		}
		return nil, classified
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrClaimsInvalid
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrClaimsInvalid)
	}
	if claims.Kind != expected {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrKindMismatch, claims.Kind, expected)
	}
	return claims, nil
}

func (c *Codec) signedAsOtherKind(tokenStr string, expected Kind) bool {
	other := KindAccess
	if expected == KindAccess {
		other = KindRefresh
	}
	key, err := c.verifyKey(other)
	if err != nil {
		return false
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return false
	}
	claims, ok := tok.Claims.(*Claims)
	return ok && claims.Kind == other
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrClaimsInvalid, err)
	}
}

func (c *Codec) method() jwt.SigningMethod {
	if c.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (c *Codec) signKey(kind Kind) (interface{}, error) {
	if c.config.SigningMethod == MethodEd25519 {
		return parseEdPrivateKey(c.config.PrivateKey)
	}
	if kind == KindRefresh {
		return c.config.RefreshKey, nil
	}
	return c.config.AccessKey, nil
}

func (c *Codec) verifyKey(kind Kind) (interface{}, error) {
	if c.config.SigningMethod == MethodEd25519 {
		return parseEdPublicKey(c.config.PublicKey)
	}
	if kind == KindRefresh {
		return c.config.RefreshKey, nil
	}
	return c.config.AccessKey, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
