// Package stream implements the binary framing used on the label
// subscription websocket: a DAG-CBOR header followed by a DAG-CBOR body.
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bluesky-social/labeld/label"

	cbg "github.com/whyrusleeping/cbor-gen"
)

const (
	EvtKindErrorFrame = -1
	EvtKindMessage    = 1
)

type EventHeader struct {
	Op      int64  `json:"op" cborgen:"op"`
	MsgType string `json:"t,omitempty" cborgen:"t,omitempty"`
}

// ErrorFrame terminates a stream with a machine-readable error name.
type ErrorFrame struct {
	Error   string `json:"error" cborgen:"error"`
	Message string `json:"message,omitempty" cborgen:"message,omitempty"`
}

// InfoFrame carries a non-fatal notice to the consumer.
type InfoFrame struct {
	Name    string `json:"name" cborgen:"name"`
	Message string `json:"message,omitempty" cborgen:"message,omitempty"`
}

// LabelBatch is the "#labels" message body: one or more signed labels
// sharing a single sequence number.
type LabelBatch struct {
	Seq    int64          `json:"seq" cborgen:"seq"`
	Labels []*label.Label `json:"labels" cborgen:"labels"`
}

// LabelStreamEvent is a single frame on the label subscription stream.
// Exactly one of the message fields is set.
type LabelStreamEvent struct {
	Error  *ErrorFrame
	Info   *InfoFrame
	Labels *LabelBatch

	// cached serialization for fan-out
	Preserialized []byte `json:"-" cborgen:"-"`
}

type cborMarshaler interface {
	MarshalCBOR(w io.Writer) error
}

func (evt *LabelStreamEvent) Serialize(wc io.Writer) error {
	header := EventHeader{Op: EvtKindMessage}
	var obj cborMarshaler

	switch {
	case evt.Error != nil:
		header.Op = EvtKindErrorFrame
		obj = evt.Error
	case evt.Info != nil:
		header.MsgType = "#info"
		obj = evt.Info
	case evt.Labels != nil:
		header.MsgType = "#labels"
		obj = evt.Labels
	default:
		return fmt.Errorf("unrecognized event kind")
	}

	cborWriter := cbg.NewCborWriter(wc)
	if err := header.MarshalCBOR(cborWriter); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return obj.MarshalCBOR(cborWriter)
}

func (evt *LabelStreamEvent) Deserialize(r io.Reader) error {
	var header EventHeader
	if err := header.UnmarshalCBOR(r); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	switch header.Op {
	case EvtKindMessage:
		switch header.MsgType {
		case "#labels":
			var batch LabelBatch
			if err := batch.UnmarshalCBOR(r); err != nil {
				return fmt.Errorf("reading labels event: %w", err)
			}
			evt.Labels = &batch
		case "#info":
			var info InfoFrame
			if err := info.UnmarshalCBOR(r); err != nil {
				return fmt.Errorf("reading info frame: %w", err)
			}
			evt.Info = &info
		default:
			return fmt.Errorf("unrecognized message type: %q", header.MsgType)
		}
	case EvtKindErrorFrame:
		var errframe ErrorFrame
		if err := errframe.UnmarshalCBOR(r); err != nil {
			return err
		}
		evt.Error = &errframe
	default:
		return fmt.Errorf("unrecognized event stream type: %d", header.Op)
	}
	return nil
}

var ErrNoSeq = errors.New("event has no sequence number")

// serialize content into Preserialized cache
func (evt *LabelStreamEvent) Preserialize() error {
	if evt.Preserialized != nil {
		return nil
	}
	var buf bytes.Buffer
	if err := evt.Serialize(&buf); err != nil {
		return err
	}
	evt.Preserialized = buf.Bytes()
	return nil
}

func (evt *LabelStreamEvent) GetSequence() (int64, bool) {
	switch {
	case evt == nil:
		return -1, false
	case evt.Labels != nil:
		return evt.Labels.Seq, true
	case evt.Info != nil:
		return -1, false
	case evt.Error != nil:
		return -1, false
	default:
		return -1, false
	}
}
