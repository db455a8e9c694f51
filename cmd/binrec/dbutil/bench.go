package dbutil

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/chaisql/binrec"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

type BenchOptions struct {
	// N is the number of records built and parsed by each worker.
	N int
	// Workers is the number of goroutines running concurrently.
	Workers int
}

type BenchResult struct {
	TotalRecords     int           `json:"totalRecords"`
	RecordSize       int           `json:"recordSize"`
	TotalDuration    time.Duration `json:"totalDuration"`
	AverageBuild     time.Duration `json:"averageBuild"`
	AverageParse     time.Duration `json:"averageParse"`
	RecordsPerSecond int           `json:"recordsPerSecond"`
}

// Bench builds and parses rec repeatedly, from opt.Workers goroutines,
// and writes the result to w as json.
// Every parsed record is compared with rec.
func Bench(ctx context.Context, rec *binrec.Record, w io.Writer, opt BenchOptions) (*BenchResult, error) {
	if opt.N <= 0 || opt.Workers <= 0 {
		return nil, errors.New("the number of records and workers must be positive")
	}

	want, err := rec.Build()
	if err != nil {
		return nil, err
	}

	s := rec.Schema()
	builds := make([]time.Duration, opt.Workers)
	parses := make([]time.Duration, opt.Workers)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < opt.Workers; i++ {
		i := i
		g.Go(func() error {
			for j := 0; j < opt.N; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				t := time.Now()
				data, err := rec.Build()
				builds[i] += time.Since(t)
				if err != nil {
					return err
				}

				t = time.Now()
				got, err := s.Parse(data)
				parses[i] += time.Since(t)
				if err != nil {
					return err
				}

				if !got.Equal(rec) {
					return errors.Newf("parsed record %s differs from %s", got, rec)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	var build, parse time.Duration
	for i := range builds {
		build += builds[i]
		parse += parses[i]
	}

	total := opt.N * opt.Workers
	res := BenchResult{
		TotalRecords:  total,
		RecordSize:    len(want),
		TotalDuration: elapsed,
		AverageBuild:  build / time.Duration(total),
		AverageParse:  parse / time.Duration(total),
	}
	if elapsed > 0 {
		res.RecordsPerSecond = int(float64(total) / elapsed.Seconds())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&res); err != nil {
		return nil, err
	}

	return &res, nil
}
