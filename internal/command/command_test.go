package command

import (
	"testing"

	"kvflow/internal/resp"
	"kvflow/internal/store"
)

func req(parts ...string) resp.Frame {
	items := make([]resp.Frame, len(parts))
	for i, p := range parts {
		items[i] = resp.BulkStringFrom(p)
	}
	return resp.Array(items)
}

func TestPing(t *testing.T) {
	s := store.New(4)
	f, err := Dispatch(s, req("PING"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Kind != resp.KindSimpleString || f.Str != "PONG" {
		t.Fatalf("got %+v", f)
	}
}

func TestPingCaseInsensitive(t *testing.T) {
	s := store.New(4)
	f, err := Dispatch(s, req("ping"))
	if err != nil || f.Str != "PONG" {
		t.Fatalf("got %+v, %v", f, err)
	}
}

func TestEcho(t *testing.T) {
	s := store.New(4)
	f, err := Dispatch(s, req("ECHO", "hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Kind != resp.KindBulkString || string(f.Bulk) != "hello" {
		t.Fatalf("got %+v", f)
	}
}

func TestSetThenGet(t *testing.T) {
	s := store.New(4)
	if _, err := Dispatch(s, req("SET", "k", "v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	f, err := Dispatch(s, req("GET", "k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(f.Bulk) != "v" {
		t.Fatalf("got %+v", f)
	}
}

func TestGetMissingReturnsNullBulk(t *testing.T) {
	s := store.New(4)
	f, err := Dispatch(s, req("GET", "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsNullBulk() {
		t.Fatalf("expected null bulk, got %+v", f)
	}
}

func TestSetWithPXExpires(t *testing.T) {
	s := store.New(4)
	if _, err := Dispatch(s, req("SET", "k", "v", "PX", "0")); err != nil {
		t.Fatalf("set: %v", err)
	}
	f, err := Dispatch(s, req("GET", "k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !f.IsNullBulk() {
		t.Fatalf("expected immediate expiry via PX 0, got %+v", f)
	}
}

func TestSetWithUnknownOptionIsSilentNoExpiry(t *testing.T) {
	s := store.New(4)
	if _, err := Dispatch(s, req("SET", "k", "v", "NX", "1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := Dispatch(s, req("GET", "k"))
	if err != nil || string(f.Bulk) != "v" {
		t.Fatalf("expected value preserved with no expiry, got %+v, %v", f, err)
	}
}

func TestSetWithBadNIsInvalidArguments(t *testing.T) {
	s := store.New(4)
	_, err := Dispatch(s, req("SET", "k", "v", "EX", "notanumber"))
	if err != ErrInvalidArguments {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestConfigGetSet(t *testing.T) {
	s := store.New(4)
	s.Set("dir", "/data")
	f, err := Dispatch(s, req("CONFIG", "GET", "dir"))
	if err != nil || string(f.Bulk) != "/data" {
		t.Fatalf("got %+v, %v", f, err)
	}

	if _, err := Dispatch(s, req("CONFIG", "SET", "dbfilename", "snap.db")); err != nil {
		t.Fatalf("config set: %v", err)
	}
	val, ok := s.Get("dbfilename")
	if !ok || val != "snap.db" {
		t.Fatalf("got (%q, %v)", val, ok)
	}
}

func TestUnknownCommandCloses(t *testing.T) {
	s := store.New(4)
	_, err := Dispatch(s, req("FROBNICATE"))
	if err != ErrUnknownCommand {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestWrongArityIsInvalidArguments(t *testing.T) {
	s := store.New(4)
	_, err := Dispatch(s, req("GET"))
	if err != ErrInvalidArguments {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestScalarSimpleStringMapsToEcho(t *testing.T) {
	s := store.New(4)
	f, err := Dispatch(s, resp.SimpleString("hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(f.Bulk) != "hi" {
		t.Fatalf("got %+v", f)
	}
}

func TestScalarIntegerMapsToGet(t *testing.T) {
	s := store.New(4)
	s.Set("42", "the-answer")
	f, err := Dispatch(s, resp.Integer(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(f.Bulk) != "the-answer" {
		t.Fatalf("got %+v", f)
	}
}

func TestArrayWithNonBulkElementRejected(t *testing.T) {
	s := store.New(4)
	_, err := Dispatch(s, resp.Array([]resp.Frame{resp.Integer(1)}))
	if err != ErrInvalidArguments {
		t.Fatalf("expected ErrInvalidArguments for non-bulk array element, got %v", err)
	}
}
