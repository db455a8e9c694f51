package dbutil

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"

	"github.com/chaisql/binrec"
	"github.com/cockroachdb/errors"
)

// Encode reads json objects from r, encodes them as records of s
// and writes the encoded records to w, back to back.
// If asHex is true, each record is written as a line of hexadecimal.
func Encode(e *Env, s *binrec.Schema, r io.Reader, w io.Writer, asHex bool) error {
	var buf []byte

	return ReadRecords(e, s, r, func(rec *binrec.Record) error {
		data, err := rec.Build()
		if err != nil {
			return err
		}

		if asHex {
			buf = hex.AppendEncode(buf[:0], data)
			buf = append(buf, '\n')
			data = buf
		}

		_, err = w.Write(data)
		return err
	})
}

// Decode parses the records of s read from r until the end of the input
// and writes them to w as json, one per line.
// If asHex is true, each line of r is expected to hold one record in hexadecimal.
func Decode(s *binrec.Schema, r io.Reader, w io.Writer, asHex bool) error {
	if asHex {
		return decodeHex(s, r, w)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var off int
	for off < len(data) {
		rec, n, err := s.ParseWithSize(data[off:])
		if err != nil {
			return errors.Wrapf(err, "record at offset %d", off)
		}
		if n == 0 {
			break
		}
		off += n

		if err := writeJSONLine(w, rec); err != nil {
			return err
		}
	}

	return nil
}

func decodeHex(s *binrec.Schema, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 64*1024*1024)

	var line int
	for sc.Scan() {
		line++

		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		data, err := hex.DecodeString(text)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}

		rec, n, err := s.ParseWithSize(data)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if n != len(data) {
			return errors.Newf("line %d: %d unexpected trailing bytes", line, len(data)-n)
		}

		if err := writeJSONLine(w, rec); err != nil {
			return err
		}
	}

	return sc.Err()
}
