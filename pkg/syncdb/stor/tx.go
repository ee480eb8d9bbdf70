package stor

import (
	"os"
	"strconv"
	"time"

	"github.com/jpillora/backoff"
	"gorm.io/gorm"
)

var txRetry int

func getTxRetry() int {
	if txRetry != 0 {
		return txRetry
	}

	txRetryCount64, err := strconv.ParseInt(os.Getenv("SEQSYNC_TX_RETRY"), 10, 32)
	if err != nil || txRetryCount64 < 3 {
		txRetryCount64 = 3
	}

	txRetry = int(txRetryCount64)

	return txRetry
}

// WithTxRetry runs fn in a transaction, retrying failed transactions. Stage
// mismatches, invalid transitions and missing rows are returned immediately.
func WithTxRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error

	retryCount := getTxRetry()
	b := &backoff.Backoff{
		Min:    50 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for i := 0; i < retryCount; i++ {
		err = db.Transaction(fn)
		if err == nil || !isRetryable(err) {
			return err
		}

		if i < retryCount-1 {
			time.Sleep(b.Duration())
		}
	}

	return err
}
