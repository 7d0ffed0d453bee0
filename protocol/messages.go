package protocol

// MaxBoardName bounds the board string so a config frame fits MessageLengthMax
const MaxBoardName = 32

// TickConfig describes the timer setup: tick_config interval_ms=%u
// clock_hz=%u reload=%u mode=%c tickint=%c board=%s
type TickConfig struct {
	IntervalMs uint32
	ClockHz    uint32
	Reload     uint32
	Mode       uint8
	TickInt    uint8 // 1 when the SysTick exception advances the counter
	Board      string
}

func (c *TickConfig) Encode(output OutputBuffer) {
	EncodeVLQUint(output, c.IntervalMs)
	EncodeVLQUint(output, c.ClockHz)
	EncodeVLQUint(output, c.Reload)
	EncodeVLQUint(output, uint32(c.Mode))
	EncodeVLQUint(output, uint32(c.TickInt))
	board := c.Board
	if len(board) > MaxBoardName {
		board = board[:MaxBoardName]
	}
	EncodeVLQString(output, board)
}

func (c *TickConfig) Decode(data *[]byte) error {
	var err error
	if c.IntervalMs, err = DecodeVLQUint(data); err != nil {
		return err
	}
	if c.ClockHz, err = DecodeVLQUint(data); err != nil {
		return err
	}
	if c.Reload, err = DecodeVLQUint(data); err != nil {
		return err
	}
	mode, err := DecodeVLQUint(data)
	if err != nil {
		return err
	}
	c.Mode = uint8(mode)
	tickint, err := DecodeVLQUint(data)
	if err != nil {
		return err
	}
	c.TickInt = uint8(tickint)
	c.Board, err = DecodeVLQString(data)
	return err
}

// TickReport is sent once per loop: tick_report seq=%u start=%u ticks=%u
// delay_ms=%u waited=%u
type TickReport struct {
	Seq     uint32 // Loop iteration
	Start   uint32 // Tick counter before the delay
	Ticks   uint32 // Tick counter after the delay
	DelayMs uint32 // Requested delay
	Waited  uint32 // Whole ticks the delay waited for
}

func (r *TickReport) Encode(output OutputBuffer) {
	EncodeVLQUint(output, r.Seq)
	EncodeVLQUint(output, r.Start)
	EncodeVLQUint(output, r.Ticks)
	EncodeVLQUint(output, r.DelayMs)
	EncodeVLQUint(output, r.Waited)
}

func (r *TickReport) Decode(data *[]byte) error {
	var err error
	if r.Seq, err = DecodeVLQUint(data); err != nil {
		return err
	}
	if r.Start, err = DecodeVLQUint(data); err != nil {
		return err
	}
	if r.Ticks, err = DecodeVLQUint(data); err != nil {
		return err
	}
	if r.DelayMs, err = DecodeVLQUint(data); err != nil {
		return err
	}
	r.Waited, err = DecodeVLQUint(data)
	return err
}
