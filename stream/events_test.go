package stream

import (
	"bytes"
	"testing"

	"github.com/bluesky-social/labeld/label"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsFrameRoundTrip(t *testing.T) {
	assert := assert.New(t)

	neg := true
	evt := LabelStreamEvent{
		Labels: &LabelBatch{
			Seq: 42,
			Labels: []*label.Label{
				{
					SourceDID: "did:example:labeler",
					URI:       "at://did:example:alice/app.bsky.feed.post/3k2a",
					Val:       "spam",
					CreatedAt: "2024-05-01T00:00:00Z",
					Version:   1,
					Sig:       []byte{1, 2, 3, 4},
				},
				{
					SourceDID: "did:example:labeler",
					URI:       "at://did:example:bob/app.bsky.feed.post/3k2b",
					Val:       "rude",
					Negated:   &neg,
					CreatedAt: "2024-05-01T00:00:01Z",
					Version:   1,
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, evt.Serialize(&buf))

	var out LabelStreamEvent
	require.NoError(t, out.Deserialize(bytes.NewReader(buf.Bytes())))

	require.NotNil(t, out.Labels)
	assert.Nil(out.Error)
	assert.Nil(out.Info)
	assert.Equal(int64(42), out.Labels.Seq)
	require.Equal(t, 2, len(out.Labels.Labels))
	assert.Equal("spam", out.Labels.Labels[0].Val)
	assert.Equal([]byte{1, 2, 3, 4}, out.Labels.Labels[0].Sig)
	require.NotNil(t, out.Labels.Labels[1].Negated)
	assert.True(*out.Labels.Labels[1].Negated)

	seq, ok := out.GetSequence()
	assert.True(ok)
	assert.Equal(int64(42), seq)
}

func TestErrorFrameRoundTrip(t *testing.T) {
	assert := assert.New(t)

	evt := LabelStreamEvent{
		Error: &ErrorFrame{
			Error:   "FutureCursor",
			Message: "requested cursor is ahead of stream head",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, evt.Serialize(&buf))

	var out LabelStreamEvent
	require.NoError(t, out.Deserialize(bytes.NewReader(buf.Bytes())))
	require.NotNil(t, out.Error)
	assert.Equal("FutureCursor", out.Error.Error)
	assert.Equal("requested cursor is ahead of stream head", out.Error.Message)

	_, ok := out.GetSequence()
	assert.False(ok)
}

func TestInfoFrameRoundTrip(t *testing.T) {
	assert := assert.New(t)

	evt := LabelStreamEvent{
		Info: &InfoFrame{Name: "OutdatedCursor"},
	}

	var buf bytes.Buffer
	require.NoError(t, evt.Serialize(&buf))

	var out LabelStreamEvent
	require.NoError(t, out.Deserialize(bytes.NewReader(buf.Bytes())))
	require.NotNil(t, out.Info)
	assert.Equal("OutdatedCursor", out.Info.Name)
}

func TestPreserialize(t *testing.T) {
	assert := assert.New(t)

	evt := LabelStreamEvent{
		Labels: &LabelBatch{Seq: 7, Labels: []*label.Label{
			{SourceDID: "did:example:labeler", URI: "at://x", Val: "ok", CreatedAt: "2024-05-01T00:00:00Z", Version: 1},
		}},
	}
	require.NoError(t, evt.Preserialize())

	var buf bytes.Buffer
	require.NoError(t, evt.Serialize(&buf))
	assert.Equal(buf.Bytes(), evt.Preserialized)
}

func TestDeserializeRejectsUnknownOp(t *testing.T) {
	var buf bytes.Buffer
	hdr := EventHeader{Op: 99}
	require.NoError(t, hdr.MarshalCBOR(&buf))

	var out LabelStreamEvent
	err := out.Deserialize(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
