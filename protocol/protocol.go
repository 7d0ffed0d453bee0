// Package protocol frames the tick reports a board sends to the host monitor.
//
// A frame is laid out as
//
//	len | seq | payload... | crc16 hi | crc16 lo | 0x7E
//
// where len counts the whole frame, seq carries 0x10 in the high nibble and a
// 4-bit sequence number in the low nibble, and the payload is a VLQ message
// ID followed by VLQ-encoded fields.
package protocol

// Version of the report format
const Version = "1"

// Protocol constants
const (
	MessageMax = 512 // Scratch output capacity

	// Message sequence masks
	MessageSeqMask  = 0x0F
	MessageSeqShift = 4
)

// Message IDs carried as the first VLQ of every payload
const (
	MsgTickConfig = 0
	MsgTickReport = 1
)
