package can

// Packet is a transmit descriptor. The application owns the value and keeps
// writing payload bytes into Data between service ticks; an Instance holds
// only the pointer. IntervalMS zero means "send once, immediately,
// un-scheduled"; a non-zero interval resends every IntervalMS while the
// packet stays scheduled.
type Packet struct {
	ID         uint32
	Extended   bool
	RTR        bool
	FD         bool
	DLC        uint8
	Data       [8]byte
	IntervalMS uint32

	// driver-owned
	lastTx    uint32
	scheduled bool
}

// NewPacket builds a transmit descriptor with a zeroed payload.
func NewPacket(id, intervalMS uint32, dlc uint8) *Packet {
	return &Packet{ID: id, IntervalMS: intervalMS, DLC: dlc}
}

// Scheduled reports whether the packet is currently in a transmit schedule.
func (p *Packet) Scheduled() bool { return p.scheduled }

func (p *Packet) frame() Frame {
	return Frame{
		ID:       p.ID,
		Extended: p.Extended,
		RTR:      p.RTR,
		FD:       p.FD,
		Len:      p.DLC,
		Data:     p.Data,
	}
}
