package dbutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/chaisql/binrec"
	"github.com/chaisql/binrec/internal/schema"
	"github.com/cockroachdb/errors"
)

// ReadRecords reads json objects from r and converts them to records of s.
// The reader can be either a stream of json objects or an array of objects.
func ReadRecords(e *Env, s *binrec.Schema, r io.Reader, fn func(rec *binrec.Record) error) error {
	return readJSON(r, func(data []byte) error {
		rec, err := schema.RecordFromJSON(e.Registry, s, data)
		if err != nil {
			return err
		}

		return fn(rec)
	})
}

func readJSON(r io.Reader, fn func(data []byte) error) error {
	rd := bufio.NewReader(r)

	// read first non-white space byte to determine
	// whether we are reading from a json stream or
	// an array of json objects.
	c, err := readByteIgnoreWhitespace(rd)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	switch c {
	case '{': // json stream
		if err := rd.UnreadByte(); err != nil {
			return err
		}

		dec := json.NewDecoder(rd)
		for {
			var raw json.RawMessage
			err := dec.Decode(&raw)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}

			if err := fn(raw); err != nil {
				return err
			}
		}

	case '[': // Array of json objects
		if err := rd.UnreadByte(); err != nil {
			return err
		}

		dec := json.NewDecoder(rd)
		_, err := dec.Token()
		if err != nil {
			return err
		}

		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return err
			}

			if err := fn(raw); err != nil {
				return err
			}
		}

		t, err := dec.Token()
		if err != nil {
			return err
		}
		d, ok := t.(json.Delim)
		if !ok || d.String() != "]" {
			return fmt.Errorf("found %v, but expected ']'", t)
		}

	default:
		return fmt.Errorf("found %q, but expected '{' or '['", c)
	}

	return nil
}

func readByteIgnoreWhitespace(r *bufio.Reader) (byte, error) {
	var c byte
	var err error

	for {
		c, err = r.ReadByte()
		if err != nil {
			return c, err
		}

		if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
			break
		}
	}

	return c, nil
}

// writeJSONLine writes v as JSON to w, followed by a new line.
func writeJSONLine(w io.Writer, v any) error {
	data, err := binrec.MarshalJSON(v)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
