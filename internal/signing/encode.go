// Package signing holds the request-signing primitives used by the remote object store:
// percent-encoding, canonical query strings, keyed-hash helpers, the derived-key presign
// algorithm and the RPC signature used for temporary-credential requests.
package signing

import (
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// PercentEncode escapes s per RFC 3986. Unreserved characters are kept as-is.
// A slash is kept only when encodeSlash is false, which is what object paths need.
func PercentEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || (c == '/' && !encodeSlash) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// CanonicalQuery sorts params by key and joins the encoded pairs with "&".
func CanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, PercentEncode(k, true)+"="+PercentEncode(params[k], true))
	}
	return strings.Join(pairs, "&")
}
