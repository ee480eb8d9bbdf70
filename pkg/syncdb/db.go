package syncdb

import (
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/jpillora/backoff"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteInMemoryDSN is a shared-cache in memory database, used by the tests.
const SqliteInMemoryDSN = "file::memory:?cache=shared"

func MakeDSNFromEnv() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		os.Getenv("DB_USERNAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_DATABASE"))
}

// redactedDSN is MakeDSNFromEnv without the password, for log messages.
func redactedDSN() string {
	return fmt.Sprintf("%s:***@tcp(%s:%s)/%s",
		os.Getenv("DB_USERNAME"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_DATABASE"))
}

const maxDBRetries = 5

// ConnectToDB attempts to open the database maxDBRetries times, backing off between
// attempts. driver is "mysql" (the default) or "sqlite", in which case dsn names
// the sqlite file. For mysql an empty dsn is built from the DB_* environment
// variables.
func ConnectToDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "", "mysql":
		if dsn == "" {
			dsn = MakeDSNFromEnv()
		}
		dialector = mysql.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = SqliteInMemoryDSN
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		db, err := gorm.Open(dialector, gormConfig)
		if err == nil {
			if err = pingDB(db); err == nil {
				return db, nil
			}
		}

		// b.Attempt() starts from zero
		attempt := b.Attempt() + 1
		if attempt >= maxDBRetries {
			return nil, fmt.Errorf("failed to open %s db (%s) after %d attempts: %w", driver, redactedDSN(), int(attempt), err)
		}

		d := b.Duration()
		log.Warnf("Failed to open db on attempt %.0f of %d, retrying in %s: %s", attempt, maxDBRetries, d, err)
		time.Sleep(d)
	}
}

func pingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// RunMigrations creates the tables the pipeline reads and writes. Production
// tables are owned by the upstream intake process, so this is only used for
// sqlite deployments and tests.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(&model.SyncRequest{}, &model.FinalDeliverable{}, &model.Sample{})
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB == nil {
		return
	}

	_ = sqlDB.Close()
}
