package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Derive computes the device token for an identity under the installation
// secret. The token is an HMAC-SHA256 of the identity id keyed by the
// secret, hex encoded. Same inputs always produce the same token; tokens
// for different identity ids under the same secret differ with
// overwhelming probability.
//
// The token is never stored server-side: the client holds it in a cookie
// and the server recomputes the expected value on every request.
func Derive(identityID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(identityID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the presented token is exactly the token Derive
// would produce for the identity under the secret. No truncation, no
// case folding: a token hex-encoded with uppercase digits does not verify.
func Verify(presented, identityID, secret string) bool {
	if presented == "" {
		return false
	}
	decoded, err := hex.DecodeString(presented)
	if err != nil {
		return false
	}
	// Reject altered casing up front; DecodeString accepts both cases
	// but re-encoding is canonical lowercase.
	if hex.EncodeToString(decoded) != presented {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(identityID))
	return hmac.Equal(decoded, mac.Sum(nil))
}
