package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MuxSignatureHeader carries the media provider's signature in the form
// "t=<unix>,v1=<hex>"; multiple v1 entries may appear during secret rotation.
const MuxSignatureHeader = "Mux-Signature"

// MuxVerifier checks media provider webhooks: HMAC-SHA256 over
// "<timestamp>.<rawBody>" keyed with the shared signing secret.
type MuxVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewMuxVerifier(secret string) *MuxVerifier {
	return &MuxVerifier{
		secret:    []byte(secret),
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
}

func (v *MuxVerifier) Verify(headers http.Header, body []byte) error {
	raw := headers.Get(MuxSignatureHeader)
	if raw == "" {
		return ErrMissingSignature
	}

	var ts string
	var sigs []string
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts = val
		case "v1":
			sigs = append(sigs, val)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	if !withinTolerance(v.now(), time.Unix(sec, 0), v.tolerance) {
		return ErrTimestampExpired
	}

	want := v.digest(ts, body)
	for _, s := range sigs {
		got, err := hex.DecodeString(s)
		if err != nil {
			continue
		}
		if hmac.Equal(got, want) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign produces a header value Verify accepts; used by tests and local
// delivery tooling.
func (v *MuxVerifier) Sign(body []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(v.digest(ts, body)))
}

func (v *MuxVerifier) digest(ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}
