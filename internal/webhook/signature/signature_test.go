package signature

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMuxVerifier_RoundTrip(t *testing.T) {
	v := NewMuxVerifier("secret")
	body := []byte(`{"type":"video.asset.ready"}`)

	h := http.Header{}
	h.Set(MuxSignatureHeader, v.Sign(body, time.Now()))

	require.NoError(t, v.Verify(h, body))
}

func TestMuxVerifier_MissingHeader(t *testing.T) {
	v := NewMuxVerifier("secret")

	err := v.Verify(http.Header{}, []byte("{}"))
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestMuxVerifier_WrongSecret(t *testing.T) {
	signer := NewMuxVerifier("secret-a")
	verifier := NewMuxVerifier("secret-b")
	body := []byte("{}")

	h := http.Header{}
	h.Set(MuxSignatureHeader, signer.Sign(body, time.Now()))

	require.ErrorIs(t, verifier.Verify(h, body), ErrInvalidSignature)
}

func TestMuxVerifier_TamperedBody(t *testing.T) {
	v := NewMuxVerifier("secret")

	h := http.Header{}
	h.Set(MuxSignatureHeader, v.Sign([]byte(`{"a":1}`), time.Now()))

	require.ErrorIs(t, v.Verify(h, []byte(`{"a":2}`)), ErrInvalidSignature)
}

func TestMuxVerifier_ExpiredTimestamp(t *testing.T) {
	v := NewMuxVerifier("secret")
	body := []byte("{}")

	h := http.Header{}
	h.Set(MuxSignatureHeader, v.Sign(body, time.Now().Add(-DefaultTolerance-time.Minute)))

	require.ErrorIs(t, v.Verify(h, body), ErrTimestampExpired)
}

func TestMuxVerifier_SecretRotation(t *testing.T) {
	oldSigner := NewMuxVerifier("old-secret")
	v := NewMuxVerifier("new-secret")
	body := []byte("{}")

	now := time.Now()
	prefix := "t=" + strconv.FormatInt(now.Unix(), 10) + ",v1="

	// During rotation the provider signs with both secrets; either v1 entry
	// must authenticate.
	oldHex := strings.TrimPrefix(oldSigner.Sign(body, now), prefix)
	newHex := strings.TrimPrefix(v.Sign(body, now), prefix)

	h := http.Header{}
	h.Set(MuxSignatureHeader, prefix+oldHex+",v1="+newHex)

	require.NoError(t, v.Verify(h, body))
}

func TestMuxVerifier_GarbageTimestamp(t *testing.T) {
	v := NewMuxVerifier("secret")

	h := http.Header{}
	h.Set(MuxSignatureHeader, "t=notanumber,v1=deadbeef")

	require.ErrorIs(t, v.Verify(h, []byte("{}")), ErrInvalidTimestamp)
}

func testSvixSecret(t *testing.T) string {
	t.Helper()
	return "whsec_" + base64.StdEncoding.EncodeToString([]byte("signing-key"))
}

func svixHeaders(id string, at time.Time, sig string) http.Header {
	h := http.Header{}
	h.Set(SvixIDHeader, id)
	h.Set(SvixTimestampHeader, strconv.FormatInt(at.Unix(), 10))
	h.Set(SvixSignatureHeader, sig)
	return h
}

func TestSvixVerifier_RoundTrip(t *testing.T) {
	v, err := NewSvixVerifier(testSvixSecret(t))
	require.NoError(t, err)

	body := []byte(`{"type":"user.created"}`)
	now := time.Now()
	h := svixHeaders("msg_1", now, v.Sign("msg_1", now, body))

	require.NoError(t, v.Verify(h, body))
}

func TestSvixVerifier_BadSecretEncoding(t *testing.T) {
	_, err := NewSvixVerifier("whsec_%%%not-base64%%%")
	require.Error(t, err)
}

func TestSvixVerifier_MissingHeaders(t *testing.T) {
	v, err := NewSvixVerifier(testSvixSecret(t))
	require.NoError(t, err)

	cases := []struct {
		name string
		drop string
	}{
		{name: "no id", drop: SvixIDHeader},
		{name: "no timestamp", drop: SvixTimestampHeader},
		{name: "no signature", drop: SvixSignatureHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := []byte("{}")
			now := time.Now()
			h := svixHeaders("msg_1", now, v.Sign("msg_1", now, body))
			h.Del(tc.drop)

			require.ErrorIs(t, v.Verify(h, body), ErrMissingHeader)
		})
	}
}

func TestSvixVerifier_WrongDeliveryID(t *testing.T) {
	v, err := NewSvixVerifier(testSvixSecret(t))
	require.NoError(t, err)

	// The delivery id participates in the digest: a signature minted for one
	// id must not verify under another.
	body := []byte("{}")
	now := time.Now()
	h := svixHeaders("msg_other", now, v.Sign("msg_1", now, body))

	require.ErrorIs(t, v.Verify(h, body), ErrInvalidSignature)
}

func TestSvixVerifier_ExpiredTimestamp(t *testing.T) {
	v, err := NewSvixVerifier(testSvixSecret(t))
	require.NoError(t, err)

	body := []byte("{}")
	old := time.Now().Add(-DefaultTolerance - time.Minute)
	h := svixHeaders("msg_1", old, v.Sign("msg_1", old, body))

	require.ErrorIs(t, v.Verify(h, body), ErrTimestampExpired)
}

func TestSvixVerifier_MultipleSignatureEntries(t *testing.T) {
	v, err := NewSvixVerifier(testSvixSecret(t))
	require.NoError(t, err)

	body := []byte("{}")
	now := time.Now()
	sig := "v2,AAAA " + v.Sign("msg_1", now, body) + " v1,BBBB"
	h := svixHeaders("msg_1", now, sig)

	require.NoError(t, v.Verify(h, body))
}
