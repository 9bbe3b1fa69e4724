// Package protocol defines greppy's daemon wire format: a 4-byte
// big-endian length prefix followed by a JSON payload, deliberately
// simple since every request/response is tiny and simplicity over the
// wire matters more than byte count here.
package protocol

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// MaxFrameSize bounds a single frame so a corrupt length prefix can
// never cause an unbounded allocation.
const MaxFrameSize = 64 << 20 // 64 MiB

// Method names the fixed set of daemon operations.
type Method string

const (
	MethodSearch     Method = "search"
	MethodIndex      Method = "index"
	MethodIndexWatch Method = "index_watch"
	MethodStatus     Method = "status"
	MethodList       Method = "list"
	MethodForget     Method = "forget"
	MethodPing       Method = "ping"
	MethodStop       Method = "stop"
)

// Request is one client call. ID correlates it with its Response; a
// client that leaves ID empty gets one assigned by NewRequest.
type Request struct {
	ID     string          `json:"id"`
	Method Method          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a Request with a generated correlation ID and
// params marshaled from v.
func NewRequest(method Method, v interface{}) (Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Request{}, fmt.Errorf("marshaling params: %w", err)
	}
	return Request{ID: uuid.NewString(), Method: method, Params: data}, nil
}

// ErrorBody carries the discriminated error kind and a human-readable
// message for a failed Response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response shares its Request's ID and carries either Data or Error,
// never both.
type Response struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

// NewOKResponse builds a successful response with data marshaled from v.
func NewOKResponse(id string, v interface{}) (Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling response data: %w", err)
	}
	return Response{ID: id, OK: true, Data: data}, nil
}

// NewErrorResponse builds a failed response carrying kind and message.
func NewErrorResponse(id, kind, message string) Response {
	return Response{ID: id, OK: false, Error: &ErrorBody{Kind: kind, Message: message}}
}

// WriteFrame writes one length-prefixed JSON payload to w.
func WriteFrame(w io.Writer, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling frame: %w", err)
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and unmarshals its
// JSON payload into v.
func ReadFrame(r *bufio.Reader, v interface{}) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds maximum of %d", size, MaxFrameSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}
