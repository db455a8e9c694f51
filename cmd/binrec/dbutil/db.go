package dbutil

import (
	"context"
	"fmt"
	"io"

	"github.com/chaisql/binrec"
	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
)

// OpenDB is a helper function that opens the database at dbPath,
// resolving record names in the registry of e.
func OpenDB(e *Env, dbPath string) (*binrec.DB, error) {
	if dbPath == "" {
		dbPath = binrec.InMemory
	}

	return binrec.Open(dbPath, &binrec.Options{
		Registry: e.Registry,
		Logger:   e.Logger,
	})
}

// InsertJSON reads json objects from r and stores them as records of s.
// Records are stored atomically, the id of each record is written to w.
func InsertJSON(e *Env, db *binrec.DB, s *binrec.Schema, r io.Reader, w io.Writer) error {
	tb, err := db.Table(s.Name())
	if err != nil {
		return err
	}

	var recs []*binrec.Record
	err = ReadRecords(e, s, r, func(rec *binrec.Record) error {
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return err
	}

	ids, err := tb.InsertMany(recs...)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}

	return nil
}

// Get writes the record of s stored under id to w, as json.
func Get(db *binrec.DB, s *binrec.Schema, id string, w io.Writer) error {
	k, err := ksuid.Parse(id)
	if err != nil {
		return errors.Wrapf(err, "invalid id %q", id)
	}

	tb, err := db.Table(s.Name())
	if err != nil {
		return err
	}

	rec, err := tb.Get(k)
	if err != nil {
		if errors.Is(err, binrec.ErrRecordNotFound) {
			return errors.Newf("no %s record with id %s", s.Name(), id)
		}
		return err
	}

	return writeJSONLine(w, rec)
}

// Dump writes every record of the selected schemas to w, one json object per line:
//
//	{"id": "2Q...", "record": "Person", "value": {"name": "Bob", ...}}
func Dump(ctx context.Context, db *binrec.DB, w io.Writer, schemas ...*binrec.Schema) error {
	for _, s := range schemas {
		tb, err := db.Table(s.Name())
		if err != nil {
			return err
		}

		err = tb.Scan(ctx, func(id ksuid.KSUID, rec *binrec.Record) error {
			data, err := rec.MarshalJSON()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(w, "{\"id\":%q,\"record\":%q,\"value\":%s}\n", id.String(), s.Name(), data)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
