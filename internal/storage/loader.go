package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// rows (aligned to columns) and return the number of rows inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadRows appends rows through copyFn in batches of batchSize. A batchSize
// of zero or less sends every row in a single call, which backends execute as
// one transaction.
//
// It returns the total number of rows reported by copyFn and the first error
// encountered; rows from batches before a failing one are not rolled back.
func LoadRows(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("columns must not be empty")
	}
	if batchSize <= 0 || batchSize > len(rows) {
		batchSize = len(rows)
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)

	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			logrus.Errorf("loader: copy failed batch=%d inserted=%d total=%d err=%v", batches+1, n, total, err)
			return total, err
		}
		batches++
		logrus.Debugf("loader: batch #%d inserted=%d total_inserted=%d elapsed=%s",
			batches, n, total, time.Since(start).Truncate(time.Millisecond))
	}

	logrus.Infof("loader: done batches=%d total_inserted=%d elapsed=%s",
		batches, total, time.Since(start).Truncate(time.Millisecond))
	return total, nil
}
