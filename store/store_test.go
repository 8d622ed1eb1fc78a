package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/bluesky-social/labeld/crypto"
	"github.com/bluesky-social/labeld/label"
	"github.com/bluesky-social/labeld/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// countingSigner wraps a real key and counts signing calls, to verify that
// backfill does not re-sign already-signed rows.
type countingSigner struct {
	inner *crypto.PrivateKeyK256
	calls atomic.Int64
}

func (s *countingSigner) HashAndSign(content []byte) ([]byte, error) {
	s.calls.Add(1)
	return s.inner.HashAndSign(content)
}

func setupStore(t testing.TB) (*Store, *countingSigner) {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.sqlite?cache=shared&mode=rwc")))
	require.NoError(t, err)

	tx := db.Exec("PRAGMA journal_mode=WAL;")
	require.NoError(t, tx.Error)

	key, err := crypto.GeneratePrivateKeyK256()
	require.NoError(t, err)
	signer := &countingSigner{inner: key}

	st, err := NewStore(db, signer, nil)
	require.NoError(t, err)
	return st, signer
}

func testLabel(uri, val string) *label.Label {
	return &label.Label{
		SourceDID: "did:example:labeler",
		URI:       uri,
		Val:       val,
		CreatedAt: "2024-05-01T00:00:00Z",
		Version:   1,
	}
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st, _ := setupStore(t)

	var lastID uint64
	for i := 0; i < 5; i++ {
		recs, err := st.Append(ctx, []*label.Label{
			testLabel(fmt.Sprintf("at://did:example:alice/app.bsky.feed.post/%d", i), "spam"),
		})
		require.NoError(t, err)
		require.Equal(t, 1, len(recs))
		assert.Greater(recs[0].ID, lastID)
		assert.NotNil(recs[0].Sig)
		lastID = recs[0].ID
	}

	head, err := st.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(int64(lastID), head)
}

func TestAppendBatchOrdering(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)

	recs, err := st.Append(ctx, []*label.Label{
		testLabel("at://did:example:alice/app.bsky.feed.post/1", "spam"),
		testLabel("at://did:example:alice/app.bsky.feed.post/1", "rude"),
		testLabel("at://did:example:bob/app.bsky.feed.post/2", "spam"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, len(recs))
	assert.Less(t, recs[0].ID, recs[1].ID)
	assert.Less(t, recs[1].ID, recs[2].ID)
}

func TestScanFromPagination(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st, _ := setupStore(t)

	for i := 0; i < 10; i++ {
		_, err := st.Append(ctx, []*label.Label{
			testLabel(fmt.Sprintf("at://did:example:alice/app.bsky.feed.post/%d", i), "spam"),
		})
		require.NoError(t, err)
	}

	// walk the full log in pages of 3; union must be complete, in order,
	// with no overlap
	var seen []uint64
	cursor := int64(0)
	for {
		recs, err := st.ScanFrom(ctx, cursor, 3)
		require.NoError(t, err)
		if len(recs) == 0 {
			break
		}
		for _, rec := range recs {
			seen = append(seen, rec.ID)
		}
		cursor = int64(recs[len(recs)-1].ID)
	}

	require.Equal(t, 10, len(seen))
	for i := 1; i < len(seen); i++ {
		assert.Greater(seen[i], seen[i-1])
	}
}

func TestScanFilteredPatterns(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st, _ := setupStore(t)

	uris := []string{
		"at://did:example:alice/app.bsky.feed.post/1",
		"at://did:example:alice/app.bsky.feed.post/2",
		"at://did:example:alice/app.bsky.actor.profile/self",
		"at://did:example:bob/app.bsky.feed.post/1",
		"at://did:example:under_score/app.bsky.feed.post/1",
	}
	for _, uri := range uris {
		_, err := st.Append(ctx, []*label.Label{testLabel(uri, "spam")})
		require.NoError(t, err)
	}

	// exact match
	recs, err := st.ScanFiltered(ctx, []string{"at://did:example:bob/app.bsky.feed.post/1"}, nil, 0, 50)
	require.NoError(t, err)
	require.Equal(t, 1, len(recs))
	assert.Equal("at://did:example:bob/app.bsky.feed.post/1", recs[0].URI)

	// trailing-wildcard prefix match
	recs, err = st.ScanFiltered(ctx, []string{"at://did:example:alice/app.bsky.feed.post/*"}, nil, 0, 50)
	require.NoError(t, err)
	assert.Equal(2, len(recs))

	// multiple patterns union
	recs, err = st.ScanFiltered(ctx, []string{
		"at://did:example:alice/*",
		"at://did:example:bob/app.bsky.feed.post/1",
	}, nil, 0, 50)
	require.NoError(t, err)
	assert.Equal(4, len(recs))

	// bare "*" disables filtering
	recs, err = st.ScanFiltered(ctx, []string{"*"}, nil, 0, 50)
	require.NoError(t, err)
	assert.Equal(5, len(recs))

	// interior wildcard rejected
	_, err = st.ScanFiltered(ctx, []string{"at://did:example:*/app.bsky.feed.post/1"}, nil, 0, 50)
	assert.ErrorIs(err, ErrInvalidPattern)

	// underscore in a stored uri is not a LIKE wildcard: a pattern with a
	// literal underscore matches only that row
	recs, err = st.ScanFiltered(ctx, []string{"at://did:example:under_score/*"}, nil, 0, 50)
	require.NoError(t, err)
	require.Equal(t, 1, len(recs))
	assert.Equal("at://did:example:under_score/app.bsky.feed.post/1", recs[0].URI)

	// and the underscore does not match an arbitrary character
	recs, err = st.ScanFiltered(ctx, []string{"at://did:example:underXscore/*"}, nil, 0, 50)
	require.NoError(t, err)
	assert.Equal(0, len(recs))
}

func TestScanFilteredSources(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st, _ := setupStore(t)

	other := testLabel("at://did:example:alice/app.bsky.feed.post/1", "spam")
	other.SourceDID = "did:example:other"
	_, err := st.Append(ctx, []*label.Label{
		testLabel("at://did:example:alice/app.bsky.feed.post/1", "spam"),
		other,
	})
	require.NoError(t, err)

	recs, err := st.ScanFiltered(ctx, nil, []string{"did:example:other"}, 0, 50)
	require.NoError(t, err)
	require.Equal(t, 1, len(recs))
	assert.Equal("did:example:other", recs[0].Src)

	recs, err = st.ScanFiltered(ctx, nil, []string{"*"}, 0, 50)
	require.NoError(t, err)
	assert.Equal(2, len(recs))

	recs, err = st.ScanFiltered(ctx, nil, []string{"did:example:nobody"}, 0, 50)
	require.NoError(t, err)
	assert.Equal(0, len(recs))
}

func TestEnsureSignedIdempotent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st, signer := setupStore(t)

	// insert an unsigned row directly, simulating a legacy or interrupted
	// write
	rec := LabelRecord{
		Src: "did:example:labeler",
		URI: "at://did:example:alice/app.bsky.feed.post/1",
		Val: "spam",
		Cts: "2024-05-01T00:00:00Z",
		Ver: 1,
	}
	require.NoError(t, st.db.Create(&rec).Error)

	require.NoError(t, st.EnsureSigned(ctx, &rec))
	require.NotNil(t, rec.Sig)
	firstSig := append([]byte{}, rec.Sig...)
	callsAfterBackfill := signer.calls.Load()

	// already signed in memory: no-op
	require.NoError(t, st.EnsureSigned(ctx, &rec))
	assert.Equal(callsAfterBackfill, signer.calls.Load())
	assert.Equal(firstSig, rec.Sig)

	// freshly loaded row sees the persisted signature and does not re-sign
	var reloaded LabelRecord
	require.NoError(t, st.db.First(&reloaded, rec.ID).Error)
	require.NoError(t, st.EnsureSigned(ctx, &reloaded))
	assert.Equal(callsAfterBackfill, signer.calls.Load())
	assert.Equal(firstSig, reloaded.Sig)
}

func TestSignatureVerifies(t *testing.T) {
	ctx := context.Background()
	st, signer := setupStore(t)

	recs, err := st.Append(ctx, []*label.Label{
		testLabel("at://did:example:alice/app.bsky.feed.post/1", "spam"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, len(recs))

	pub, err := signer.inner.PublicKey()
	require.NoError(t, err)

	lbl := recs[0].Label()
	require.NoError(t, lbl.VerifySignature(pub))
}

func TestPlaybackEmitsSignedFrames(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st, _ := setupStore(t)

	for i := 0; i < 4; i++ {
		_, err := st.Append(ctx, []*label.Label{
			testLabel(fmt.Sprintf("at://did:example:alice/app.bsky.feed.post/%d", i), "spam"),
		})
		require.NoError(t, err)
	}

	var seqs []int64
	err := st.Playback(ctx, 1, func(evt *stream.LabelStreamEvent) error {
		require.NotNil(t, evt.Labels)
		require.Equal(t, 1, len(evt.Labels.Labels))
		assert.NotNil(evt.Labels.Labels[0].Sig)
		seqs = append(seqs, evt.Labels.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal([]int64{2, 3, 4}, seqs)

	head, err := st.HeadSequence(ctx)
	require.NoError(t, err)
	assert.Equal(int64(4), head)
}
