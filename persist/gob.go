package persist

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/horazont/maniaclab/mlerr"
)

// Encode serializes wl with encoding/gob, the stdlib stand-in for a
// generated protobuf wire format.
func Encode(w io.Writer, wl WireLevel) error {
	return gob.NewEncoder(w).Encode(wl)
}

// Decode parses a WireLevel previously written by Encode. A malformed
// stream is reported as *mlerr.InvalidInput.
func Decode(r io.Reader) (WireLevel, error) {
	var wl WireLevel
	if err := gob.NewDecoder(r).Decode(&wl); err != nil {
		return WireLevel{}, &mlerr.InvalidInput{Op: "persist.Decode", Err: err}
	}
	return wl, nil
}

// Marshal is Encode into an in-memory buffer, convenient for tests and
// small save files.
func Marshal(wl WireLevel) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, wl); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is Decode from an in-memory buffer.
func Unmarshal(data []byte) (WireLevel, error) {
	return Decode(bytes.NewReader(data))
}
