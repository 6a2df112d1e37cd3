package backpack

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func testSecret() string {
	return base64.StdEncoding.EncodeToString(testSeed())
}

func TestCanonicalMessageOrdering(t *testing.T) {
	msg := CanonicalMessage("balanceQuery", Params{"offset": 0, "limit": 100}, "1700000000000", DefaultWindow)
	assert.Equal(t, "instruction=balanceQuery&limit=100&offset=0&timestamp=1700000000000&window=5000", msg)
}

func TestCanonicalMessageWithoutParams(t *testing.T) {
	msg := CanonicalMessage("balanceQuery", nil, "1", "5000")
	assert.Equal(t, "instruction=balanceQuery&timestamp=1&window=5000", msg)
}

func TestCanonicalMessageDropsNil(t *testing.T) {
	params := Params{
		"symbol":   "SOL_USDC",
		"clientId": (*uint32)(nil),
		"price":    (*decimal.Decimal)(nil),
		"orderId":  nil,
	}
	msg := CanonicalMessage("orderQuery", params, "1", "5000")
	assert.Equal(t, "instruction=orderQuery&symbol=SOL_USDC&timestamp=1&window=5000", msg)
}

func TestCanonicalMessageFormEncodesValues(t *testing.T) {
	params := Params{
		"address":  "a b&c=d",
		"postOnly": true,
		"price":    decimal.RequireFromString("0.0000130"),
		"clientId": Ptr(uint32(42)),
	}
	msg := CanonicalMessage("orderExecute", params, "1", "5000")
	assert.Equal(t, "instruction=orderExecute&address=a+b%26c%3Dd&clientId=42&postOnly=true&price=0.000013&timestamp=1&window=5000", msg)
}

func TestSignerHeaders(t *testing.T) {
	s, err := NewSigner(testSecret())
	require.NoError(t, err)

	ts := time.UnixMilli(1700000000000)
	h := s.SignAt("balanceQuery", Params{"limit": 100, "offset": 0}, ts)

	pub := ed25519.NewKeyFromSeed(testSeed()).Public().(ed25519.PublicKey)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pub), h.Get(HeaderAPIKey))
	assert.Equal(t, s.VerifyingKey(), h.Get(HeaderAPIKey))
	assert.Equal(t, "1700000000000", h.Get(HeaderTimestamp))
	assert.Equal(t, "5000", h.Get(HeaderWindow))
	assert.Equal(t, "application/json", h.Get("Content-Type"))

	sig, err := base64.StdEncoding.DecodeString(h.Get(HeaderSignature))
	require.NoError(t, err)
	msg := "instruction=balanceQuery&limit=100&offset=0&timestamp=1700000000000&window=5000"
	assert.True(t, ed25519.Verify(pub, []byte(msg), sig))
}

func TestSignerDeterministic(t *testing.T) {
	s, err := NewSigner(testSecret())
	require.NoError(t, err)

	params := Params{"symbol": "SOL_USDC"}
	ts := time.UnixMilli(1700000000000)

	first := s.SignAt("orderQueryAll", params, ts)
	second := s.SignAt("orderQueryAll", params, ts)
	assert.Equal(t, first.Get(HeaderSignature), second.Get(HeaderSignature))

	later := s.SignAt("orderQueryAll", params, ts.Add(time.Millisecond))
	assert.NotEqual(t, first.Get(HeaderSignature), later.Get(HeaderSignature))
	assert.NotEqual(t, first.Get(HeaderTimestamp), later.Get(HeaderTimestamp))
}

func TestSignerUsesClock(t *testing.T) {
	s, err := NewSigner(testSecret())
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(42) }

	h := s.Sign("balanceQuery", nil)
	assert.Equal(t, "42", h.Get(HeaderTimestamp))
}

func TestNewSignerRejectsBadSecret(t *testing.T) {
	_, err := NewSigner("not base64!!")
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewSigner(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"limit":    "Limit",
		"bid":      "Bid",
		"ethereum": "Ethereum",
		"Ask":      "Ask",
		"mArKeT":   "MArKeT",
		"":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Capitalize(in), in)
	}
}

func TestParamsValues(t *testing.T) {
	vals := Params{
		"symbol":  "SOL_USDC",
		"limit":   100,
		"orderId": (*string)(nil),
	}.Values()
	assert.Equal(t, "limit=100&symbol=SOL_USDC", vals.Encode())
}
