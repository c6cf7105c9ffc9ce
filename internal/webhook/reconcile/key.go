package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// derivedKey builds a ledger key for providers that do not stamp deliveries
// with an explicit event id: variant type plus its decoded fields. Identical
// redeliveries collapse onto one key; a redelivery with different data gets a
// fresh key and re-applies, which is safe because every repository write is
// conditional or idempotent.
func derivedKey(ev any) string {
	payload, err := json.Marshal(ev)
	if err != nil {
		// Event variants are plain structs; this cannot happen in practice.
		payload = []byte(fmt.Sprintf("%+v", ev))
	}
	h := sha256.New()
	fmt.Fprintf(h, "%T\x00", ev)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
