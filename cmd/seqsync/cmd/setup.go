package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/clog"
	"github.com/glbrc/seqsync/pkg/config"
	"github.com/glbrc/seqsync/pkg/lock"
	"github.com/glbrc/seqsync/pkg/notify"
	"github.com/glbrc/seqsync/pkg/pipeline"
	"github.com/glbrc/seqsync/pkg/syncdb"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	perrors "github.com/pkg/errors"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// env is everything a driver needs besides its remote clients.
type env struct {
	op       string
	cfg      *config.PipelineConfig
	creds    config.Credentials
	db       *gorm.DB
	requests stor.SyncRequestStor
	samples  stor.SampleStor
	lock     *lock.RunLock
	log      *log.Entry
}

type driver interface {
	Run(ctx context.Context) (pipeline.Summary, error)
}

// run sets up op and runs the driver build returns. Configuration problems and
// a held lock refuse the run. A fatal driver error is logged, the lock is
// released, and the process exits with status 1.
func run(op string, v *viper.Viper, build func(ctx context.Context, e *env) (driver, error)) {
	e, err := setup(op, v)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			clog.UsingCtx(op).Warnf("Refusing to run: %s", err)
		} else {
			clog.Fatal(op, "Refusing to run: %s", err)
		}
		os.Exit(1)
	}

	ctx := context.Background()
	err = func() error {
		d, err := build(ctx, e)
		if err != nil {
			return err
		}

		_, err = d.Run(ctx)
		return err
	}()

	if err != nil {
		clog.Fatal(op, "%s", err)
		e.close()
		os.Exit(1)
	}

	e.close()
}

func setup(op string, v *viper.Viper) (*env, error) {
	e, err := loadSettings(op, v)
	if err != nil {
		return nil, err
	}

	setupLogging(e.cfg)

	if e.lock, err = lock.NewRunLock(e.cfg.LockDir, op); err != nil {
		return nil, err
	}

	if err := e.lock.Acquire(); err != nil {
		return nil, err
	}

	if err := e.openStors(); err != nil {
		e.close()
		return nil, err
	}

	return e, nil
}

// loadSettings reads the dotenv file, the pipeline config, and the credentials
// op requires.
func loadSettings(op string, v *viper.Viper) (*env, error) {
	if v == nil {
		v = viper.New()
	}

	envFile := flags.envFile
	if envFile == "" {
		envFile = os.Getenv(config.KeyDotenvPath)
	}

	dotenv := config.NewDotenvConfig(envFile)
	if err := dotenv.Load(); err != nil {
		return nil, perrors.Wrapf(err, "unable to load credentials from %s", envFile)
	}
	config.SetConfig(dotenv)

	cfg, err := config.LoadPipelineConfig(v, flags.configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(op); err != nil {
		return nil, perrors.Wrapf(err, "invalid config %s", flags.configPath)
	}

	creds, err := config.LoadCredentials(dotenv, op)
	if err != nil {
		return nil, err
	}

	return &env{op: op, cfg: cfg, creds: creds, log: clog.UsingCtx(op)}, nil
}

func setupLogging(cfg *config.PipelineConfig) {
	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notify.Host != "" && cfg.Notify.To != "" {
		notifier = notify.NewSMTPNotifier(cfg.Notify)
	}

	h := clog.NewNotifyHandler(clog.NewHandler(os.Stdout), notifier)
	h.Mute(flags.noMail)
	clog.SetHandler(h)

	if flags.debug {
		clog.SetLevel(log.DebugLevel)
	}
}

// openStors connects to the database unless --no-db was given. Writes are
// discarded for --no-db-writes and for --fd-id runs without --force-db.
func (e *env) openStors() error {
	if flags.noDB {
		e.log.Info("Running without a database connection")
		e.requests = stor.NewDiscardingSyncRequestStor(nil)
		e.samples = stor.NoSampleStor{}
		return nil
	}

	db, err := connect(e.cfg.DBDriver)
	if err != nil {
		return err
	}

	e.db = db
	stors := stor.NewGormStors(db)
	e.requests = stors.SyncRequestStor
	e.samples = stors.SampleStor

	if flags.noDBWrites || (flags.fdID != "" && !flags.forceDB) {
		e.log.Info("Database writes disabled for this run")
		e.requests = stor.NewDiscardingSyncRequestStor(e.requests)
	}

	return nil
}

// connect opens the database. For sqlite DB_DATABASE names the file, and the
// tables are created when missing.
func connect(driver string) (*gorm.DB, error) {
	dsn := ""
	if driver == "sqlite" {
		dsn = os.Getenv("DB_DATABASE")
	}

	db, err := syncdb.ConnectToDB(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		if err := syncdb.RunMigrations(db); err != nil {
			syncdb.Close(db)
			return nil, perrors.Wrapf(err, "unable to create tables in %s", dsn)
		}
	}

	return db, nil
}

func (e *env) close() {
	syncdb.Close(e.db)
	if e.lock != nil {
		e.lock.Release()
	}
}

func (e *env) options() pipeline.Options {
	return pipeline.Options{
		Intervention: flags.intervention,
		FdID:         flags.fdID,
	}
}
