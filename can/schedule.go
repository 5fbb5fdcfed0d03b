package can

import "fmt"

// AddTx submits a packet for transmission. IntervalMS zero sends once,
// immediately, without entering the schedule. A non-zero interval appends
// the packet to the periodic schedule; re-adding a packet that is already
// scheduled just refreshes its interval and keeps the schedule count
// unchanged.
func (in *Instance) AddTx(p *Packet) error {
	if !in.Initialized() {
		return ErrInstanceNull
	}
	if p == nil {
		return ErrInvalidParam
	}
	if p.DLC > 8 {
		return fmt.Errorf("dlc %d: %w", p.DLC, ErrInvalidParam)
	}

	if p.IntervalMS == 0 {
		return in.sendNow(p)
	}

	for _, have := range in.schedule {
		if have == p {
			have.scheduled = true
			return nil
		}
	}
	if len(in.schedule) >= in.schedCap {
		return ErrBufferFull
	}
	p.lastTx = in.clk.NowMS()
	p.scheduled = true
	in.schedule = append(in.schedule, p)
	return nil
}

// RemoveTx takes a previously scheduled packet out of the schedule,
// preserving the relative order of the remaining entries.
func (in *Instance) RemoveTx(p *Packet) error {
	if !in.Initialized() {
		return ErrInstanceNull
	}
	if p == nil {
		return ErrInvalidParam
	}
	for i, have := range in.schedule {
		if have == p {
			have.scheduled = false
			in.schedule = append(in.schedule[:i], in.schedule[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ScheduleLen reports the number of packets in the periodic schedule.
func (in *Instance) ScheduleLen() int {
	if in == nil {
		return 0
	}
	return len(in.schedule)
}

// Service fires every scheduled packet whose interval has elapsed. Call it
// at least as often as the tightest interval among the registered packets
// to bound transmit jitter. Packets due in the same tick fire back to back
// in schedule-insertion order.
//
// The last-transmission stamp advances only on a successful send, so a
// transient transmit failure is retried on the very next tick instead of
// waiting out a full interval.
func (in *Instance) Service() {
	if !in.Initialized() {
		return
	}
	now := in.clk.NowMS()
	for _, p := range in.schedule {
		if p == nil || !p.scheduled || p.IntervalMS == 0 {
			continue
		}
		if now-p.lastTx >= p.IntervalMS {
			if err := in.sendNow(p); err == nil {
				p.lastTx = now
			}
		}
	}
}

// sendNow is the one-shot transmit path: translate the packet, pre-check
// mailbox availability, submit. It never blocks waiting for a slot.
func (in *Instance) sendNow(p *Packet) error {
	if in.transport == nil {
		return ErrInstanceNull
	}
	if in.transport.FreeTxSlots() == 0 {
		return ErrBusy
	}
	if err := in.transport.Send(p.frame()); err != nil {
		return err
	}
	return nil
}
