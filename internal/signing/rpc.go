package signing

import "strings"

// RPCStringToSign returns METHOD&%2F&<encoded canonical query>.
func RPCStringToSign(method string, params map[string]string) string {
	return strings.ToUpper(method) + "&" + PercentEncode("/", true) + "&" + PercentEncode(CanonicalQuery(params), true)
}

// SignRPC signs an RPC-style parameter map with HMAC-SHA1 keyed by secret+"&".
// The caller adds the result as the "Signature" parameter; params must not contain it yet.
func SignRPC(method string, params map[string]string, secret string) string {
	return HMACSHA1Base64([]byte(secret+"&"), []byte(RPCStringToSign(method, params)))
}
