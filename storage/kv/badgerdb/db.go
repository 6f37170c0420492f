package badgerdb

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
)

// badgerLogger forwards badger's internal logs to the app logger. Info and debug are dropped.
type badgerLogger struct {
	logger core.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf("badger: "+format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}

// Open opens the key-value store backing carts: in memory when conf.Cart.InMemory is set,
// otherwise under conf.Cart.Dir.
func Open(conf *core.Config, logger core.Logger) (*badger.DB, error) {
	var opts badger.Options
	if conf.Cart.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if conf.Cart.Dir == "" {
			return nil, errors.New("cart directory is required for a persistent store")
		}
		if err := os.MkdirAll(conf.Cart.Dir, 0o750); err != nil {
			return nil, errors.Wrapf(err, "creating cart directory %s", conf.Cart.Dir)
		}
		opts = badger.DefaultOptions(conf.Cart.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger")
	}
	return db, nil
}
