package signing

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// HMACSHA256 returns HMAC-SHA256(key, msg).
func HMACSHA256(key, msg []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(msg)
	return m.Sum(nil)
}

// HMACSHA1Base64 returns the standard base64 encoding of HMAC-SHA1(key, msg).
func HMACSHA1Base64(key, msg []byte) string {
	m := hmac.New(sha1.New, key)
	m.Write(msg)
	return base64.StdEncoding.EncodeToString(m.Sum(nil))
}

// SHA256Hex returns the lower-case hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HexLower is hex.EncodeToString; kept here so callers read in signing terms.
func HexLower(b []byte) string {
	return hex.EncodeToString(b)
}

// DeriveSigningKey runs the HMAC chain seed -> date -> region -> service -> terminator.
// Each step is keyed by the previous output, so a derived key is only good for one
// calendar day and one region/service pair.
func DeriveSigningKey(seed, date, region, service, terminator string) []byte {
	k := HMACSHA256([]byte(seed), []byte(date))
	k = HMACSHA256(k, []byte(region))
	k = HMACSHA256(k, []byte(service))
	return HMACSHA256(k, []byte(terminator))
}
