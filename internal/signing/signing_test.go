package signing

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		encodeSlash bool
		want        string
	}{
		{name: "unreserved untouched", in: "AZaz09-_.~", encodeSlash: true, want: "AZaz09-_.~"},
		{name: "path keeps slash", in: "中 a/b~", encodeSlash: false, want: "%E4%B8%AD%20a/b~"},
		{name: "value encodes slash", in: "中 a/b~", encodeSlash: true, want: "%E4%B8%AD%20a%2Fb~"},
		{name: "reserved characters", in: "a+b=c&d:e", encodeSlash: true, want: "a%2Bb%3Dc%26d%3Ae"},
		{name: "empty", in: "", encodeSlash: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentEncode(tt.in, tt.encodeSlash))
		})
	}
}

func TestCanonicalQuery(t *testing.T) {
	got := CanonicalQuery(map[string]string{
		"b":     "2",
		"a":     "x/y",
		"a b":   "",
		"Upper": "v",
	})
	assert.Equal(t, "Upper=v&a=x%2Fy&a%20b=&b=2", got)
	assert.Equal(t, "", CanonicalQuery(nil))
}

func TestHashPrimitives(t *testing.T) {
	// RFC 4231 test case 2.
	assert.Equal(t,
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		HexLower(HMACSHA256([]byte("Jefe"), []byte("what do ya want for nothing?"))),
	)
	// RFC 2202 test case 2.
	assert.Equal(t, "7/zfauXrL6LSdBbV8YTfnCWafHk=", HMACSHA1Base64([]byte("Jefe"), []byte("what do ya want for nothing?")))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(nil))
}

func TestDeriveSigningKey(t *testing.T) {
	a := DeriveSigningKey("seed", "20240102", "cn-hangzhou", "oss", "aliyun_v4_request")
	b := DeriveSigningKey("seed", "20240103", "cn-hangzhou", "oss", "aliyun_v4_request")
	c := DeriveSigningKey("seed", "20240102", "cn-shanghai", "oss", "aliyun_v4_request")

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b, "key must change with the date")
	assert.NotEqual(t, a, c, "key must change with the region")
	assert.Equal(t, a, DeriveSigningKey("seed", "20240102", "cn-hangzhou", "oss", "aliyun_v4_request"))
}

func testSigner() V4Signer {
	return V4Signer{AccessKeyID: "LTAIexample", AccessKeySecret: "secretexample", Region: "cn-hangzhou"}
}

func testInput(method string) PresignInput {
	return PresignInput{
		Method:  method,
		Scheme:  "https",
		Host:    "share-files.oss-cn-hangzhou.aliyuncs.com",
		Bucket:  "share-files",
		Key:     "resources/x.pdf",
		Expires: 600 * time.Second,
		Now:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func signatureOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get(QuerySignature)
}

func TestV4Signer_Presign_KnownAnswer(t *testing.T) {
	got, err := testSigner().Presign(testInput("GET"))
	require.NoError(t, err)

	want := "https://share-files.oss-cn-hangzhou.aliyuncs.com/resources/x.pdf?" +
		"x-oss-additional-headers=host" +
		"&x-oss-credential=LTAIexample%2F20240102%2Fcn-hangzhou%2Foss%2Faliyun_v4_request" +
		"&x-oss-date=20240102T030405Z" +
		"&x-oss-expires=600" +
		"&x-oss-signature=392839fbb8c7ddfa28582a889481c7651050eb8c1bfccf60bf6857faa86b6d6a" +
		"&x-oss-signature-version=OSS4-HMAC-SHA256"
	assert.Equal(t, want, got)

	put, err := testSigner().Presign(testInput("PUT"))
	require.NoError(t, err)
	assert.Equal(t, "20883c2185f1979f9d2bb8487fb45a1800750243e2d8e0578bd60181b1409b9f", signatureOf(t, put))
}

func TestV4Signer_Presign_Determinism(t *testing.T) {
	s := testSigner()
	base := testInput("GET")

	first, err := s.Presign(base)
	require.NoError(t, err)
	second, err := s.Presign(base)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	baseSig := signatureOf(t, first)

	tests := []struct {
		name   string
		mutate func(in *PresignInput)
	}{
		{name: "method", mutate: func(in *PresignInput) { in.Method = "DELETE" }},
		{name: "path", mutate: func(in *PresignInput) { in.Key = "resources/y.pdf" }},
		{name: "expiry", mutate: func(in *PresignInput) { in.Expires = 601 * time.Second }},
		{name: "timestamp", mutate: func(in *PresignInput) { in.Now = in.Now.Add(time.Second) }},
		{name: "content disposition", mutate: func(in *PresignInput) {
			in.ResponseContentDisposition = `attachment; filename="x.pdf"`
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			got, err := s.Presign(in)
			require.NoError(t, err)
			assert.NotEqual(t, baseSig, signatureOf(t, got))
		})
	}
}

func TestV4Signer_Presign_UsesUTC(t *testing.T) {
	in := testInput("GET")
	utc, err := testSigner().Presign(in)
	require.NoError(t, err)

	in.Now = in.Now.In(time.FixedZone("UTC+8", 8*3600))
	local, err := testSigner().Presign(in)
	require.NoError(t, err)

	assert.Equal(t, utc, local)
}

func TestV4Signer_Presign_ContentDisposition(t *testing.T) {
	in := testInput("GET")
	in.ResponseContentDisposition = `attachment; filename="x.pdf"`

	got, err := testSigner().Presign(in)
	require.NoError(t, err)
	assert.Contains(t, got, "response-content-disposition=attachment%3B%20filename%3D%22x.pdf%22")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, `attachment; filename="x.pdf"`, u.Query().Get(QueryContentDisposition))
}

func TestV4Signer_Presign_Errors(t *testing.T) {
	in := testInput("GET")
	in.Key = ""
	_, err := testSigner().Presign(in)
	assert.Error(t, err)

	in = testInput("GET")
	in.Expires = 0
	_, err = testSigner().Presign(in)
	assert.Error(t, err)
}

func TestCanonicalRequest(t *testing.T) {
	in := testInput("get")
	in.Key = "dir/a b.txt"
	got := canonicalRequest(in, map[string]string{"x-oss-expires": "600"})

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "GET", lines[0])
	assert.Equal(t, "/share-files/dir/a%20b.txt", lines[1])
	assert.Equal(t, "x-oss-expires=600", lines[2])
	assert.Equal(t, "host:share-files.oss-cn-hangzhou.aliyuncs.com", lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "host", lines[5])
	assert.Equal(t, UnsignedPayload, lines[6])
}

func TestSignRPC(t *testing.T) {
	params := map[string]string{
		"Action":           "AssumeRole",
		"Format":           "JSON",
		"Version":          "2015-04-01",
		"AccessKeyId":      "testid",
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureVersion": "1.0",
		"SignatureNonce":   "3ee8c1b8-83d3-44af-a94f-4e0ad82fd6cf",
		"Timestamp":        "2016-02-23T12:46:24Z",
		"RoleArn":          "acs:ram::123:role/uploader",
	}

	assert.Equal(t,
		"GET&%2F&AccessKeyId%3Dtestid%26Action%3DAssumeRole%26Format%3DJSON"+
			"%26RoleArn%3Dacs%253Aram%253A%253A123%253Arole%252Fuploader"+
			"%26SignatureMethod%3DHMAC-SHA1%26SignatureNonce%3D3ee8c1b8-83d3-44af-a94f-4e0ad82fd6cf"+
			"%26SignatureVersion%3D1.0%26Timestamp%3D2016-02-23T12%253A46%253A24Z%26Version%3D2015-04-01",
		RPCStringToSign("get", params),
	)
	assert.Equal(t, "QNfQmj4bkN95L18I2y/Ps5pJyAY=", SignRPC("GET", params, "testsecret"))
}
