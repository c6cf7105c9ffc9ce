package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// The identity provider delivers through a svix-compatible relay: a delivery
// id, a unix timestamp and a signature list, signed over "<id>.<ts>.<body>".
const (
	SvixIDHeader        = "Svix-Id"
	SvixTimestampHeader = "Svix-Timestamp"
	SvixSignatureHeader = "Svix-Signature"

	svixSecretPrefix = "whsec_"
)

// SvixVerifier checks identity provider webhooks. The signing secret is the
// provider-issued "whsec_" string; the part after the prefix is base64.
type SvixVerifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, svixSecretPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	return &SvixVerifier{
		key:       key,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}, nil
}

func (v *SvixVerifier) Verify(headers http.Header, body []byte) error {
	id := headers.Get(SvixIDHeader)
	ts := headers.Get(SvixTimestampHeader)
	sig := headers.Get(SvixSignatureHeader)
	if id == "" || ts == "" || sig == "" {
		return ErrMissingHeader
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	if !withinTolerance(v.now(), time.Unix(sec, 0), v.tolerance) {
		return ErrTimestampExpired
	}

	want := v.digest(id, ts, body)
	// The header holds space-separated "<version>,<base64>" entries; any
	// matching v1 entry authenticates the delivery.
	for _, entry := range strings.Fields(sig) {
		version, encoded, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		if hmac.Equal(got, want) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign produces a header value Verify accepts for the given delivery id.
func (v *SvixVerifier) Sign(id string, at time.Time, body []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "v1," + base64.StdEncoding.EncodeToString(v.digest(id, ts, body))
}

func (v *SvixVerifier) digest(id, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", id, ts)
	mac.Write(body)
	return mac.Sum(nil)
}
