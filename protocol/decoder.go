package protocol

import (
	"errors"
	"io"
)

// Message is one validated frame
type Message struct {
	Length   uint8
	Sequence uint8
	Payload  []byte // Frame data without header/trailer
	CRC      uint16
}

// ID decodes the message ID without consuming the payload
func (m *Message) ID() (uint32, error) {
	data := m.Payload
	return DecodeVLQUint(&data)
}

// Body returns the payload after the message ID
func (m *Message) Body() ([]byte, error) {
	data := m.Payload
	if _, err := DecodeVLQUint(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// Decoder pulls frames out of a byte stream, resynchronising on the 0x7E
// trailer after corruption.
type Decoder struct {
	r     io.Reader
	input *FifoBuffer
	buf   []byte

	isSynchronized bool
	lastSeq        int

	// Statistics
	Frames         uint64 // Valid frames returned
	CRCErrors      uint64 // Frames dropped on CRC mismatch
	Resyncs        uint64 // Times the decoder lost framing
	SeqGaps        uint64 // Frames missing according to sequence numbers
	BytesDiscarded uint64 // Bytes skipped while resynchronising
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:              r,
		input:          NewFifoBuffer(1024),
		buf:            make([]byte, 256),
		isSynchronized: true,
		lastSeq:        -1,
	}
}

// Next returns the next valid frame. It returns io.EOF when the reader is
// exhausted and no complete frame remains.
func (d *Decoder) Next() (*Message, error) {
	for {
		if msg := d.parse(); msg != nil {
			return msg, nil
		}

		n, err := d.r.Read(d.buf[:min(len(d.buf), d.input.Free())])
		if n > 0 {
			d.input.Write(d.buf[:n])
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
	}
}

// parse extracts at most one frame from the input buffer
func (d *Decoder) parse() *Message {
	data := d.input.Data()
	var msg *Message

	for len(data) > 0 && msg == nil {
		if !d.isSynchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos >= 0 {
				d.BytesDiscarded += uint64(syncPos + 1)
				data = data[syncPos+1:]
				d.isSynchronized = true
			} else {
				d.BytesDiscarded += uint64(len(data))
				data = nil
			}
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.loseSync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.loseSync()
			continue
		}

		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.loseSync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.CRCErrors++
			d.loseSync()
			continue
		}

		payload := make([]byte, msgLen-MessageHeaderSize-MessageTrailerSize)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		msg = &Message{
			Length:   uint8(msgLen),
			Sequence: seq,
			Payload:  payload,
			CRC:      frameCRC,
		}
		data = data[msgLen:]
		d.trackSequence(seq)
		d.Frames++
	}

	consumed := d.input.Available() - len(data)
	if consumed > 0 {
		d.input.Pop(consumed)
	}
	return msg
}

func (d *Decoder) loseSync() {
	d.isSynchronized = false
	d.Resyncs++
}

// trackSequence counts frames lost between two sequence numbers (mod 16)
func (d *Decoder) trackSequence(seq uint8) {
	n := int(seq & MessageSeqMask)
	if d.lastSeq >= 0 {
		expected := (d.lastSeq + 1) & MessageSeqMask
		d.SeqGaps += uint64((n - expected) & MessageSeqMask)
	}
	d.lastSeq = n
}
