package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists records in a badger database. Keys are
// exec/<len>:<workflow>/<started unix nanos, zero padded>/<record id>, so a
// reverse prefix scan yields newest first. The length keeps a workflow id that
// contains '/' from falling under another id's prefix.
type BadgerStore struct {
	db *badger.DB
}

// BadgerConfig configures OpenBadger. Path is ignored when InMemory is set.
type BadgerConfig struct {
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens (creating if needed) a badger-backed store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.Path == "":
		return nil, errors.New("history directory is required for a persistent store")
	default:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func recordPrefix(workflowID string) []byte {
	return fmt.Appendf(nil, "exec/%d:%s/", len(workflowID), workflowID)
}

func recordKey(rec Record) []byte {
	return fmt.Appendf(recordPrefix(rec.WorkflowID), "%020d/%s", rec.StartedAt.UnixNano(), rec.ID)
}

func (s *BadgerStore) Put(_ context.Context, rec Record) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec), val)
	})
	if err != nil {
		return fmt.Errorf("store record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *BadgerStore) List(ctx context.Context, workflowID string) ([]Record, error) {
	prefix := recordPrefix(workflowID)
	var out []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append(append([]byte(nil), prefix...), 0xff)); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", workflowID, err)
	}
	return out, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
