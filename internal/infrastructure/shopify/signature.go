package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"shopify-oauth-app/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// MaxCallbackAge is the freshness window for signed callbacks.
const MaxCallbackAge = 600 * time.Second

// Signature schemes accepted by NewSignatureVerifier.
const (
	SchemeLiteral    = "literal"
	SchemeDocumented = "documented"
)

// Characters escaped in keys and values when building the signed message.
// '=' is left alone in values.
const (
	keyEscapeSet   = "&=%"
	valueEscapeSet = "&%"
)

// NewSignatureVerifier returns the verifier for scheme
func NewSignatureVerifier(scheme, secret string) (ports.SignatureVerifier, error) {
	switch scheme {
	case SchemeLiteral, "":
		return LiteralVerifier{Secret: secret}, nil
	case SchemeDocumented:
		return DocumentedVerifier{app: goshopify.App{ApiSecret: secret}}, nil
	default:
		return nil, fmt.Errorf("unknown signature scheme %q", scheme)
	}
}

// LiteralVerifier signs the escaped key=value pairs sorted as whole strings.
type LiteralVerifier struct {
	Secret string
}

// Verify checks presence, freshness and the HMAC of the callback query.
func (v LiteralVerifier) Verify(query url.Values, now time.Time) bool {
	params := Flatten(query)
	signature, ok := params["hmac"]
	if !ok || !fresh(params, now) {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(Sign(params, v.Secret)))
}

// DocumentedVerifier delegates the HMAC to go-shopify, which sorts by key.
type DocumentedVerifier struct {
	app goshopify.App
}

func (v DocumentedVerifier) Verify(query url.Values, now time.Time) bool {
	params := Flatten(query)
	if _, ok := params["hmac"]; !ok || !fresh(params, now) {
		return false
	}
	ok, err := v.app.VerifyAuthorizationURL(&url.URL{RawQuery: query.Encode()})
	return err == nil && ok
}

// Flatten keeps the last value of every key.
func Flatten(query url.Values) map[string]string {
	params := make(map[string]string, len(query))
	for k, vs := range query {
		if len(vs) > 0 {
			params[k] = vs[len(vs)-1]
		}
	}
	return params
}

// Sign computes the lowercase hex HMAC-SHA256 of params, ignoring "hmac".
func Sign(params map[string]string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(SignedMessage(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedMessage builds the string that Sign authenticates.
func SignedMessage(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if k == "hmac" {
			continue
		}
		pairs = append(pairs, escapeOnly(k, keyEscapeSet)+"="+escapeOnly(v, valueEscapeSet))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

func fresh(params map[string]string, now time.Time) bool {
	raw, ok := params["timestamp"]
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return ts > now.Add(-MaxCallbackAge).Unix()
}

// escapeOnly percent-encodes the bytes of s that appear in set.
func escapeOnly(s, set string) string {
	if !strings.ContainsAny(s, set) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(set, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
