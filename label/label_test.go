package label

import (
	"bytes"
	"testing"
	"time"

	"github.com/bluesky-social/labeld/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLabel(t *testing.T) *Label {
	t.Helper()
	return &Label{
		SourceDID: "did:example:labeler",
		URI:       "at://did:example:alice/app.bsky.feed.post/3kabc",
		Val:       "spam",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Version:   ATProtoLabelVersion,
	}
}

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }

func TestVerifySyntax(t *testing.T) {
	assert := assert.New(t)

	lbl := testLabel(t)
	assert.NoError(lbl.VerifySyntax())

	withCID := testLabel(t)
	withCID.CID = strptr("bafyreidfayvfuwqa7qlnopdjiqrxzs6blmoeu4rujcjtnci5beludirz2a")
	assert.NoError(withCID.VerifySyntax())

	withExp := testLabel(t)
	withExp.ExpiresAt = strptr(time.Now().UTC().Add(time.Hour).Format(time.RFC3339))
	withExp.Negated = boolptr(true)
	assert.NoError(withExp.VerifySyntax())

	badVersion := testLabel(t)
	badVersion.Version = 2
	assert.Error(badVersion.VerifySyntax())

	emptyVal := testLabel(t)
	emptyVal.Val = ""
	assert.Error(emptyVal.VerifySyntax())

	badCID := testLabel(t)
	badCID.CID = strptr("not-a-cid")
	assert.Error(badCID.VerifySyntax())

	badCts := testLabel(t)
	badCts.CreatedAt = "yesterday"
	assert.Error(badCts.VerifySyntax())

	badExp := testLabel(t)
	badExp.ExpiresAt = strptr("tomorrow")
	assert.Error(badExp.VerifySyntax())

	badSrc := testLabel(t)
	badSrc.SourceDID = "example.com"
	assert.Error(badSrc.VerifySyntax())

	emptyURI := testLabel(t)
	emptyURI.URI = ""
	assert.Error(emptyURI.VerifySyntax())
}

func TestUnsignedBytesExcludesSig(t *testing.T) {
	lbl := testLabel(t)
	before, err := lbl.UnsignedBytes()
	require.NoError(t, err)

	lbl.Sig = []byte{0xde, 0xad, 0xbe, 0xef}
	after, err := lbl.UnsignedBytes()
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestSignAndVerify(t *testing.T) {
	priv, err := crypto.GeneratePrivateKeyK256()
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)

	lbl := testLabel(t)
	require.NoError(t, lbl.Sign(priv))
	require.NotEmpty(t, lbl.Sig)

	assert.NoError(t, lbl.VerifySignature(pub))

	tampered := *lbl
	tampered.Val = "porn"
	assert.Error(t, tampered.VerifySignature(pub))

	otherPriv, err := crypto.GeneratePrivateKeyK256()
	require.NoError(t, err)
	otherPub, err := otherPriv.PublicKey()
	require.NoError(t, err)
	assert.Error(t, lbl.VerifySignature(otherPub))
}

func TestLabelCBORRoundTrip(t *testing.T) {
	lbl := testLabel(t)
	lbl.CID = strptr("bafyreidfayvfuwqa7qlnopdjiqrxzs6blmoeu4rujcjtnci5beludirz2a")
	lbl.ExpiresAt = strptr(time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339))
	lbl.Negated = boolptr(true)
	lbl.Sig = []byte{1, 2, 3, 4}

	buf := new(bytes.Buffer)
	require.NoError(t, lbl.MarshalCBOR(buf))

	var out Label
	require.NoError(t, out.UnmarshalCBOR(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, *lbl, out)
}

func TestLabelCBORCanonicalKeyOrder(t *testing.T) {
	lbl := testLabel(t)
	lbl.CID = strptr("bafyreidfayvfuwqa7qlnopdjiqrxzs6blmoeu4rujcjtnci5beludirz2a")
	lbl.ExpiresAt = strptr("2027-01-01T00:00:00Z")
	lbl.Negated = boolptr(true)
	lbl.Sig = []byte{1, 2, 3, 4}

	buf := new(bytes.Buffer)
	require.NoError(t, lbl.MarshalCBOR(buf))
	enc := buf.Bytes()

	// map keys must appear in DAG-CBOR canonical order
	keys := []string{"cid", "cts", "exp", "neg", "sig", "src", "uri", "val", "ver"}
	last := -1
	for _, key := range keys {
		idx := bytes.Index(enc, []byte(key))
		require.GreaterOrEqual(t, idx, 0, "key %q missing from encoding", key)
		assert.Greater(t, idx, last, "key %q out of order", key)
		last = idx
	}
}

func TestLabelCBORRoundTripMinimal(t *testing.T) {
	lbl := testLabel(t)

	buf := new(bytes.Buffer)
	require.NoError(t, lbl.MarshalCBOR(buf))

	var out Label
	require.NoError(t, out.UnmarshalCBOR(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, *lbl, out)
	assert.Nil(t, out.CID)
	assert.Nil(t, out.Negated)
	assert.Nil(t, out.Sig)
}
