package session

import "sync"

// DefaultChannelBuffer bounds the outbound queue of a push channel so a
// slow client can never stall game-state mutations for the opponent.
const DefaultChannelBuffer = 16

// Channel is the server side of one player's push stream. Game logic
// enqueues serialized frames; the transport drains Frames until the channel
// is closed and then ends the stream.
type Channel struct {
	frames chan []byte
	once   sync.Once
}

// NewChannel returns a channel with the default outbound buffer.
func NewChannel() *Channel {
	return NewChannelSize(DefaultChannelBuffer)
}

// NewChannelSize returns a channel with an explicit outbound buffer size.
func NewChannelSize(buffer int) *Channel {
	return &Channel{frames: make(chan []byte, buffer)}
}

// Send enqueues a frame without blocking. It reports false when the buffer
// is full or the channel has been closed; the frame is dropped either way.
func (c *Channel) Send(frame []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.frames <- frame:
		return true
	default:
		return false
	}
}

// Frames exposes the outbound queue to the transport. The channel is closed
// by the coordinator when the game completes, never by the client.
func (c *Channel) Frames() <-chan []byte {
	return c.frames
}

// Close terminates the stream. Safe to call more than once.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.frames) })
}
