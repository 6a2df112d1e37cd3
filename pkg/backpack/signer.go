package backpack

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the signature validity window in milliseconds.
const DefaultWindow = "5000"

// Auth header names.
const (
	HeaderAPIKey    = "X-API-KEY"
	HeaderTimestamp = "X-TIMESTAMP"
	HeaderWindow    = "X-WINDOW"
	HeaderSignature = "X-SIGNATURE"
)

// Signer 持有 Ed25519 密钥对并生成私有接口的认证头
type Signer struct {
	privateKey      ed25519.PrivateKey
	verifyingKeyB64 string
	now             func() time.Time
}

// NewSigner builds a Signer from a base64-encoded 32-byte Ed25519 seed.
func NewSigner(secretB64 string) (*Signer, error) {
	seed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secretB64))
	if err != nil {
		return nil, fmt.Errorf("%w: api secret is not valid base64: %v", ErrConfiguration, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: api secret must decode to %d bytes, got %d", ErrConfiguration, ed25519.SeedSize, len(seed))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)

	return &Signer{
		privateKey:      privateKey,
		verifyingKeyB64: base64.StdEncoding.EncodeToString(publicKey),
		now:             time.Now,
	}, nil
}

// VerifyingKey returns the base64 public key sent as X-API-KEY.
func (s *Signer) VerifyingKey() string {
	return s.verifyingKeyB64
}

// Sign 使用当前时间签名
func (s *Signer) Sign(instruction string, params Params) http.Header {
	return s.SignAt(instruction, params, s.now())
}

// SignAt signs instruction and params with the given timestamp.
func (s *Signer) SignAt(instruction string, params Params, ts time.Time) http.Header {
	timestamp := strconv.FormatInt(ts.UnixMilli(), 10)
	window := DefaultWindow

	message := CanonicalMessage(instruction, params, timestamp, window)
	signature := ed25519.Sign(s.privateKey, []byte(message))

	h := http.Header{}
	h.Set(HeaderAPIKey, s.verifyingKeyB64)
	h.Set(HeaderTimestamp, timestamp)
	h.Set(HeaderWindow, window)
	h.Set("Content-Type", "application/json")
	h.Set(HeaderSignature, base64.StdEncoding.EncodeToString(signature))
	return h
}

// CanonicalMessage builds the signing string:
//
//	instruction=<i>&<sorted params>&timestamp=<ms>&window=<w>
//
// Params with nil values are skipped.
func CanonicalMessage(instruction string, params Params, timestamp, window string) string {
	compacted := params.compact()
	keys := make([]string, 0, len(compacted))
	for k := range compacted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	writePair(&b, "instruction", instruction)
	for _, k := range keys {
		writePair(&b, k, formatValue(compacted[k]))
	}
	writePair(&b, "timestamp", timestamp)
	writePair(&b, "window", window)
	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
