package protocol

const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
)

// Reporter frames outgoing messages on the board side. It is used from the
// foreground loop only and never from an exception handler.
type Reporter struct {
	seq    uint8
	output *ScratchOutput
	flush  func([]byte)
}

// NewReporter creates a Reporter that hands every finished frame to flush
func NewReporter(flush func([]byte)) *Reporter {
	return &Reporter{
		seq:    MessageDest,
		output: NewScratchOutput(),
		flush:  flush,
	}
}

// EncodeFrame wraps whatever frameData writes in a header and trailer,
// flushes it and advances the sequence number.
func (r *Reporter) EncodeFrame(frameData func(output OutputBuffer)) {
	r.output.Reset()
	cursor := r.output.CurPosition()

	// Length placeholder and sequence
	r.output.Output([]byte{0, r.seq})
	frameData(r.output)

	changed := len(r.output.DataSince(cursor))
	r.output.Update(cursor, uint8(changed+MessageTrailerSize))

	crc := CRC16(r.output.DataSince(cursor))
	r.output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	r.seq = ((r.seq + 1) & MessageSeqMask) | MessageDest

	if r.flush != nil {
		r.flush(r.output.Result())
	}
}

// SendConfig reports how the timer was programmed
func (r *Reporter) SendConfig(c TickConfig) {
	r.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, MsgTickConfig)
		c.Encode(output)
	})
}

// SendReport reports the tick counter after one loop iteration
func (r *Reporter) SendReport(rep TickReport) {
	r.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, MsgTickReport)
		rep.Encode(output)
	})
}

// Reset restarts the sequence numbering
func (r *Reporter) Reset() {
	r.seq = MessageDest
	r.output.Reset()
}
