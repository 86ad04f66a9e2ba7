// Package command turns a decoded request frame into a store operation
// and a response frame. Dispatch is the single entry point a connection
// handler calls per request.
package command

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"kvflow/internal/resp"
	"kvflow/internal/store"
)

// ErrUnknownCommand means the first request element named no recognized
// command.
var ErrUnknownCommand = errors.New("command: unknown command")

// ErrInvalidArguments means the request's shape or argument values don't
// satisfy a recognized command's arity or option grammar.
var ErrInvalidArguments = errors.New("command: invalid arguments")

// Dispatch executes req against s and returns the response frame to
// write back. A non-nil error means the request was malformed or named
// an unrecognized command; per the wire contract there is no error
// frame for this — the caller must close the connection without
// writing anything.
func Dispatch(s *store.Store, req resp.Frame) (resp.Frame, error) {
	args, err := requestArgs(req)
	if err != nil {
		return resp.Frame{}, err
	}
	if len(args) == 0 {
		return resp.Frame{}, ErrInvalidArguments
	}

	name := strings.ToUpper(args[0])
	// CONFIG GET/CONFIG SET are two words; every other command is one.
	if name == "CONFIG" {
		if len(args) < 2 {
			return resp.Frame{}, ErrUnknownCommand
		}
		return dispatchConfig(s, strings.ToUpper(args[1]), args)
	}

	switch name {
	case "PING":
		if len(args) != 1 {
			return resp.Frame{}, ErrInvalidArguments
		}
		return resp.SimpleString("PONG"), nil

	case "ECHO":
		if len(args) != 2 {
			return resp.Frame{}, ErrInvalidArguments
		}
		return resp.BulkStringFrom(args[1]), nil

	case "GET":
		if len(args) != 2 {
			return resp.Frame{}, ErrInvalidArguments
		}
		return getFrame(s, args[1]), nil

	case "SET":
		return dispatchSet(s, args)

	default:
		return resp.Frame{}, ErrUnknownCommand
	}
}

func dispatchConfig(s *store.Store, sub string, args []string) (resp.Frame, error) {
	switch sub {
	case "GET":
		if len(args) != 3 {
			return resp.Frame{}, ErrInvalidArguments
		}
		return getFrame(s, args[2]), nil
	case "SET":
		if len(args) != 4 {
			return resp.Frame{}, ErrInvalidArguments
		}
		s.Set(args[2], args[3])
		return resp.SimpleString("OK"), nil
	default:
		return resp.Frame{}, ErrUnknownCommand
	}
}

func dispatchSet(s *store.Store, args []string) (resp.Frame, error) {
	switch len(args) {
	case 3:
		s.Set(args[1], args[2])
		return resp.SimpleString("OK"), nil

	case 5:
		opt := strings.ToUpper(args[3])
		n, parseErr := strconv.ParseInt(args[4], 10, 64)

		switch opt {
		case "EX", "PX":
			if parseErr != nil || n < 0 {
				return resp.Frame{}, ErrInvalidArguments
			}
			ttl := time.Duration(n) * time.Second
			if opt == "PX" {
				ttl = time.Duration(n) * time.Millisecond
			}
			s.SetEX(args[1], args[2], ttl)
			return resp.SimpleString("OK"), nil

		default:
			// Unrecognized option: silently no-op the expiry rather than
			// error, preserving forward compatibility with option
			// keywords this layer doesn't know about yet.
			s.Set(args[1], args[2])
			return resp.SimpleString("OK"), nil
		}

	default:
		return resp.Frame{}, ErrInvalidArguments
	}
}

func getFrame(s *store.Store, key string) resp.Frame {
	val, ok := s.Get(key)
	if !ok {
		return resp.NullBulk()
	}
	return resp.BulkStringFrom(val)
}

// requestArgs extracts the command name and arguments as strings. A
// top-level Array must have every element be a BulkString naming the
// command or an argument. A top-level non-Array frame is interpreted
// per the source's scalar compatibility quirk: SimpleString becomes
// ECHO of its text, and Integer/Double/Boolean become GET of their
// textual form.
func requestArgs(req resp.Frame) ([]string, error) {
	switch req.Kind {
	case resp.KindArray:
		args := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			if item.Kind != resp.KindBulkString || item.IsNullBulk() {
				return nil, ErrInvalidArguments
			}
			args = append(args, string(item.Bulk))
		}
		return args, nil

	case resp.KindSimpleString:
		return []string{"ECHO", req.Str}, nil

	case resp.KindInteger:
		return []string{"GET", strconv.FormatInt(req.Int, 10)}, nil

	case resp.KindDouble:
		return []string{"GET", strconv.FormatFloat(req.Double, 'g', -1, 64)}, nil

	case resp.KindBoolean:
		if req.Bool {
			return []string{"GET", "true"}, nil
		}
		return []string{"GET", "false"}, nil

	default:
		return nil, ErrInvalidArguments
	}
}
