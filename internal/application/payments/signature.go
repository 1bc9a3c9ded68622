package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const signatureTolerance = 5 * time.Minute

// VerifySignature checks a Stripe-Signature header ("t=<unix>,v1=<hex>[,v1=...]")
// against payload and the endpoint secret.
func VerifySignature(payload []byte, sigHeader, secret string, now time.Time) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if !hmac.Equal([]byte(sig), []byte(expected)) {
			continue
		}
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return errors.New("invalid timestamp")
		}
		diff := now.Sub(time.Unix(ts, 0))
		if diff < 0 {
			diff = -diff
		}
		if diff > signatureTolerance {
			return errors.New("timestamp too old")
		}
		return nil
	}
	return errors.New("signature mismatch")
}
