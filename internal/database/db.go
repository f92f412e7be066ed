package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fridgechef/internal/models"

	"go.uber.org/zap"
)

// Store is the persistence contract for fridge items. Implementations enforce
// name uniqueness with a store-level index and report violations as
// models.ErrConflict.
type Store interface {
	Insert(ctx context.Context, rec *models.IngredientRecord) error
	List(ctx context.Context, filter string) ([]models.IngredientRecord, error)
	DeleteByName(ctx context.Context, name string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options selects and tunes the backing store
type Options struct {
	URL      string
	Database string
}

// ErrMissingURL is returned when no connection string was configured
var ErrMissingURL = errors.New("database connection string is not configured")

// Open connects to the store named by the URL scheme: mongodb:// and
// mongodb+srv:// open MongoDB, postgres:// opens PostgreSQL and sqlite:// (or a
// bare file path) opens SQLite.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Store, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, ErrMissingURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	switch {
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		log.Info("opening document store", zap.String("driver", "mongodb"), zap.String("database", opts.Database))
		return OpenMongo(ctx, url, opts.Database)
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		log.Info("opening sql store", zap.String("driver", "postgres"))
		return OpenSQL(dialectPostgres, url)
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "sqlite3://"):
		path := url[strings.Index(url, "://")+3:]
		log.Info("opening sql store", zap.String("driver", "sqlite3"), zap.String("path", path))
		return OpenSQL(dialectSQLite, path)
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("unsupported database url scheme in %q", url)
	default:
		log.Info("opening sql store", zap.String("driver", "sqlite3"), zap.String("path", url))
		return OpenSQL(dialectSQLite, url)
	}
}
