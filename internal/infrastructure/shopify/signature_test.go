package shopify

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "hush"

func signedQuery(params map[string]string, secret string) url.Values {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("hmac", Sign(params, secret))
	return q
}

func TestSignGoldenValue(t *testing.T) {
	params := map[string]string{
		"shop":      "x.myshopify.com",
		"code":      "abc",
		"timestamp": "1000000000",
	}

	assert.Equal(t, "code=abc&shop=x.myshopify.com&timestamp=1000000000", SignedMessage(params))
	assert.Equal(t, "a0c0d2da9ecaca8b55e42a0f2d5ec7c7d9985063dd97deedff033dff2509eff0", Sign(params, testSecret))
}

func TestSignIsDeterministic(t *testing.T) {
	params := map[string]string{"shop": "x.myshopify.com", "code": "abc", "timestamp": "1", "state": "s"}
	first := Sign(params, testSecret)
	second := Sign(params, testSecret)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", first)
}

func TestSignIgnoresHMACKey(t *testing.T) {
	params := map[string]string{"shop": "x.myshopify.com", "timestamp": "1"}
	withHMAC := map[string]string{"shop": "x.myshopify.com", "timestamp": "1", "hmac": "whatever"}

	assert.Equal(t, Sign(params, testSecret), Sign(withHMAC, testSecret))
}

func TestSignedMessageEscaping(t *testing.T) {
	t.Run("keys escape ampersand, equals and percent", func(t *testing.T) {
		msg := SignedMessage(map[string]string{"a&b=c%d": "v"})
		assert.Equal(t, "a%26b%3Dc%25d=v", msg)
	})

	t.Run("values escape ampersand and percent but keep equals", func(t *testing.T) {
		msg := SignedMessage(map[string]string{"k": "x=y&z%"})
		assert.Equal(t, "k=x=y%26z%25", msg)
	})

	t.Run("other characters pass through", func(t *testing.T) {
		msg := SignedMessage(map[string]string{"k": "a b/c?é"})
		assert.Equal(t, "k=a b/c?é", msg)
	})
}

func TestSignedMessageSortsWholePairs(t *testing.T) {
	// '-' sorts before '=', so "a-b=1" precedes "a=2" even though key "a" < "a-b".
	msg := SignedMessage(map[string]string{"a": "2", "a-b": "1"})
	assert.Equal(t, "a-b=1&a=2", msg)
}

func TestLiteralVerifier(t *testing.T) {
	now := time.Unix(1700000000, 0)
	verifier := LiteralVerifier{Secret: testSecret}
	ts := strconv.FormatInt(now.Unix(), 10)
	base := map[string]string{"shop": "x.myshopify.com", "code": "abc", "timestamp": ts}

	t.Run("accepts a correctly signed fresh callback", func(t *testing.T) {
		assert.True(t, verifier.Verify(signedQuery(base, testSecret), now))
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		assert.False(t, verifier.Verify(signedQuery(base, "other"), now))
	})

	t.Run("rejects any tampered value", func(t *testing.T) {
		for key := range base {
			q := signedQuery(base, testSecret)
			q.Set(key, q.Get(key)+"0")
			assert.False(t, verifier.Verify(q, now), "tampered %s", key)
		}
	})

	t.Run("rejects an added parameter", func(t *testing.T) {
		q := signedQuery(base, testSecret)
		q.Set("extra", "1")
		assert.False(t, verifier.Verify(q, now))
	})

	t.Run("rejects missing hmac", func(t *testing.T) {
		q := signedQuery(base, testSecret)
		q.Del("hmac")
		assert.False(t, verifier.Verify(q, now))
	})

	t.Run("rejects missing timestamp", func(t *testing.T) {
		params := map[string]string{"shop": "x.myshopify.com", "code": "abc"}
		assert.False(t, verifier.Verify(signedQuery(params, testSecret), now))
	})

	t.Run("rejects a non-integer timestamp", func(t *testing.T) {
		params := map[string]string{"shop": "x.myshopify.com", "timestamp": ts + "abc"}
		assert.False(t, verifier.Verify(signedQuery(params, testSecret), now))
	})

	t.Run("rejects uppercase hex", func(t *testing.T) {
		q := signedQuery(base, testSecret)
		upper := []byte(q.Get("hmac"))
		for i, c := range upper {
			if c >= 'a' && c <= 'f' {
				upper[i] = c - 'a' + 'A'
			}
		}
		q.Set("hmac", string(upper))
		assert.False(t, verifier.Verify(q, now))
	})
}

func TestLiteralVerifierFreshnessBoundary(t *testing.T) {
	now := time.Unix(1700000000, 0)
	verifier := LiteralVerifier{Secret: testSecret}

	sign := func(age int64) url.Values {
		return signedQuery(map[string]string{
			"shop":      "x.myshopify.com",
			"code":      "abc",
			"timestamp": strconv.FormatInt(now.Unix()-age, 10),
		}, testSecret)
	}

	assert.False(t, verifier.Verify(sign(600), now), "exactly 600s old must fail")
	assert.True(t, verifier.Verify(sign(599), now), "599s old must pass")
	assert.False(t, verifier.Verify(sign(3600), now))
	assert.True(t, verifier.Verify(sign(-30), now), "future timestamps are accepted")
}

func TestLiteralVerifierLastValueWins(t *testing.T) {
	now := time.Unix(1700000000, 0)
	params := map[string]string{"shop": "x.myshopify.com", "timestamp": strconv.FormatInt(now.Unix(), 10)}
	q := signedQuery(params, testSecret)
	q.Set("shop", "first.myshopify.com")
	q.Add("shop", "x.myshopify.com")

	assert.True(t, LiteralVerifier{Secret: testSecret}.Verify(q, now))
}

func TestDocumentedVerifier(t *testing.T) {
	now := time.Unix(1700000000, 0)
	verifier, err := NewSignatureVerifier(SchemeDocumented, testSecret)
	require.NoError(t, err)

	params := map[string]string{"shop": "x.myshopify.com", "code": "abc", "timestamp": strconv.FormatInt(now.Unix(), 10)}

	// With plain values both schemes sign the same message.
	assert.True(t, verifier.Verify(signedQuery(params, testSecret), now))

	stale := map[string]string{"shop": "x.myshopify.com", "code": "abc", "timestamp": strconv.FormatInt(now.Unix()-600, 10)}
	assert.False(t, verifier.Verify(signedQuery(stale, testSecret), now))

	tampered := signedQuery(params, testSecret)
	tampered.Set("code", "abd")
	assert.False(t, verifier.Verify(tampered, now))
}

func TestNewSignatureVerifier(t *testing.T) {
	v, err := NewSignatureVerifier("", testSecret)
	require.NoError(t, err)
	assert.IsType(t, LiteralVerifier{}, v)

	v, err = NewSignatureVerifier(SchemeLiteral, testSecret)
	require.NoError(t, err)
	assert.IsType(t, LiteralVerifier{}, v)

	_, err = NewSignatureVerifier("sha1", testSecret)
	assert.Error(t, err)
}
