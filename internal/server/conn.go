package server

import (
	"context"
	"errors"
	"io"
	"net"

	"golang.org/x/time/rate"

	"kvflow/internal/command"
	"kvflow/internal/logger"
	"kvflow/internal/resp"
	"kvflow/internal/store"
)

const readChunkSize = 4096

// conn handles one client socket: it accumulates partial reads into a
// single growing buffer and retries decoding against it, since a RESP
// frame routinely spans more than one TCP read. Each conn owns its own
// rate.Limiter, so one connection issuing commands as fast as it can
// doesn't borrow headroom from another's bucket.
type conn struct {
	nc      net.Conn
	store   *store.Store
	metrics *Metrics
	limiter *rate.Limiter
}

func newConn(nc net.Conn, s *store.Store, m *Metrics, ratePerSec float64) *conn {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec))
	}
	return &conn{nc: nc, store: s, metrics: m, limiter: limiter}
}

// serve runs the read/decode/dispatch/write loop until the connection
// closes or a malformed request/unknown command is seen, at which point
// the socket is closed without writing an error frame — the current
// wire contract has no error-frame path for this.
func (c *conn) serve(ctx context.Context) {
	defer c.nc.Close()

	var buf []byte
	chunk := make([]byte, readChunkSize)

	for {
		frame, rest, err := resp.Decode(buf)
		switch {
		case err == nil:
			buf = rest
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return
				}
			}
			if !c.handle(frame) {
				return
			}
			continue

		case errors.Is(err, resp.ErrIncomplete):
			// Fall through to read more bytes below.

		default:
			logger.Debug("server: malformed request from %s: %v", c.nc.RemoteAddr(), err)
			return
		}

		n, readErr := c.nc.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if readErr != nil {
			if readErr != io.EOF {
				logger.Debug("server: read error from %s: %v", c.nc.RemoteAddr(), readErr)
			}
			return
		}
	}
}

// handle dispatches one decoded request and writes its response. It
// returns false when the connection must be closed (unknown command or
// invalid arguments).
func (c *conn) handle(frame resp.Frame) bool {
	respFrame, err := command.Dispatch(c.store, frame)
	if err != nil {
		c.metrics.CommandsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return false
	}
	c.metrics.CommandsTotal.WithLabelValues("ok").Inc()

	encoded, err := resp.Encode(respFrame)
	if err != nil {
		logger.Error("server: failed to encode response for %s: %v", c.nc.RemoteAddr(), err)
		return false
	}
	if _, err := c.nc.Write(encoded); err != nil {
		logger.Debug("server: write error to %s: %v", c.nc.RemoteAddr(), err)
		return false
	}
	return true
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, command.ErrInvalidArguments):
		return "invalid_arguments"
	default:
		return "error"
	}
}
