//go:build linux

package driver

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/LoveWonYoung/cancore/can"
)

// SocketCAN adapts a Linux SocketCAN interface to can.Transport. The kernel
// exposes a single receive stream, which this adapter presents as FIFO0;
// FIFO1 is always empty. Delivery is polled: reads are non-blocking and
// pulled during Pending/Receive, so the core's Poll pass drives ingestion.
type SocketCAN struct {
	name     string
	fd       int
	fdFrames bool

	mu      sync.Mutex
	started bool
	queue   []can.Frame
	filters map[int]unix.CanFilter

	log *slog.Logger
}

// Wire sizes of struct can_frame and struct canfd_frame.
const (
	classicFrameSize = 16
	fdFrameSize      = 72
)

// NewSocketCAN opens a classic CAN raw socket bound to the named interface.
func NewSocketCAN(ifname string) (*SocketCAN, error) {
	return newSocket(ifname, false)
}

// NewSocketCANFD opens a raw socket with CAN-FD frames enabled. It accepts
// and emits both framings; this is the FD peripheral family.
func NewSocketCANFD(ifname string) (*SocketCAN, error) {
	return newSocket(ifname, true)
}

func newSocket(ifname string, fdFrames bool) (*SocketCAN, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", ifname, err)
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if fdFrames {
		if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 1); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("enable fd frames: %w", err)
		}
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", ifname, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	return &SocketCAN{
		name:     ifname,
		fd:       fd,
		fdFrames: fdFrames,
		filters:  make(map[int]unix.CanFilter),
		log:      slog.Default().With("iface", ifname),
	}, nil
}

// Start marks the adapter ready. The socket is live from construction.
func (s *SocketCAN) Start() error {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.log.Debug("socketcan started", "fd_frames", s.fdFrames)
	return nil
}

// Close releases the socket.
func (s *SocketCAN) Close() error {
	return unix.Close(s.fd)
}

// Send writes one frame. Kernel queue exhaustion surfaces as can.ErrBusy.
func (s *SocketCAN) Send(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.FD && !s.fdFrames {
		return fmt.Errorf("fd frame on classic socket: %w", can.ErrInvalidParam)
	}
	buf := marshalFrame(f, s.fdFrames && f.FD)
	if _, err := unix.Write(s.fd, buf); err != nil {
		if err == unix.ENOBUFS || err == unix.EAGAIN {
			return can.ErrBusy
		}
		return fmt.Errorf("write %s: %v: %w", s.name, err, can.ErrTransport)
	}
	return nil
}

// FreeTxSlots always reports one: the kernel queues transmissions and
// exhaustion is reported by Send instead.
func (s *SocketCAN) FreeTxSlots() int { return 1 }

// Pending pulls everything currently readable into the adapter queue and
// reports its depth. Only FIFO0 carries traffic.
func (s *SocketCAN) Pending(q can.FIFO) int {
	if q != can.FIFO0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill()
	return len(s.queue)
}

// Receive pops the oldest queued frame.
func (s *SocketCAN) Receive(q can.FIFO) (can.Frame, error) {
	if q != can.FIFO0 {
		return can.Frame{}, can.ErrBufferEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		s.fill()
	}
	if len(s.queue) == 0 {
		return can.Frame{}, can.ErrBufferEmpty
	}
	f := s.queue[0]
	s.queue = s.queue[1:]
	return f, nil
}

// fill drains the socket without blocking. Called under s.mu.
func (s *SocketCAN) fill() {
	var buf [fdFrameSize]byte
	for {
		n, err := unix.Read(s.fd, buf[:])
		if err != nil || n < classicFrameSize {
			return
		}
		f, err := unmarshalFrame(buf[:n])
		if err != nil {
			s.log.Warn("dropping malformed frame", "err", err)
			continue
		}
		s.queue = append(s.queue, f)
	}
}

// ConfigureFilter programs one acceptance filter bank through
// CAN_RAW_FILTER. A zero mask removes the bank; no configured bank means
// accept-all.
func (s *SocketCAN) ConfigureFilter(bank int, id, mask uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mask == 0 {
		delete(s.filters, bank)
	} else {
		s.filters[bank] = unix.CanFilter{Id: id, Mask: mask}
	}
	if len(s.filters) == 0 {
		// Reset to the kernel default: one accept-all filter.
		return unix.SetsockoptCanRawFilter(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER,
			[]unix.CanFilter{{Id: 0, Mask: 0}})
	}
	flt := make([]unix.CanFilter, 0, len(s.filters))
	for _, f := range s.filters {
		flt = append(flt, f)
	}
	return unix.SetsockoptCanRawFilter(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, flt)
}

// NotifyPending is accepted but never fired: this adapter is polled.
func (s *SocketCAN) NotifyPending(func(can.FIFO)) {}

// marshalFrame encodes the SocketCAN wire layout: little-endian id with
// EFF/RTR flags, length byte, padding, then data. FD frames use the
// 72-byte canfd_frame layout.
func marshalFrame(f can.Frame, fd bool) []byte {
	id := f.ID
	if f.Extended {
		id |= unix.CAN_EFF_FLAG
	}
	if f.RTR {
		id |= unix.CAN_RTR_FLAG
	}
	size := classicFrameSize
	if fd {
		size = fdFrameSize
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:], f.Data[:f.Len])
	return buf
}

func unmarshalFrame(buf []byte) (can.Frame, error) {
	var f can.Frame
	if len(buf) < classicFrameSize {
		return f, fmt.Errorf("short frame (%d bytes): %w", len(buf), can.ErrTransport)
	}
	id := binary.LittleEndian.Uint32(buf[0:4])
	f.Extended = id&unix.CAN_EFF_FLAG != 0
	f.RTR = id&unix.CAN_RTR_FLAG != 0
	f.FD = len(buf) == fdFrameSize
	if f.Extended {
		f.ID = id & unix.CAN_EFF_MASK
	} else {
		f.ID = id & unix.CAN_SFF_MASK
	}
	f.Len = buf[4]
	if f.Len > 8 {
		// FD payloads beyond the classic 8 bytes are out of scope for the
		// mailbox layer; truncate to the window the tables hold.
		f.Len = 8
	}
	copy(f.Data[:], buf[8:8+f.Len])
	return f, nil
}
