package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fridgechef/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver (lib/pq)
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "postgres"
)

// fridgeItem is the relational row behind an IngredientRecord. There is no
// DeletedAt column so gorm deletes rows physically.
type fridgeItem struct {
	ID        uint    `gorm:"primary_key"`
	Name      string  `gorm:"type:varchar(255);not null;unique_index:idx_fridge_items_name"`
	Amount    float64 `gorm:"not null"`
	Unit      string  `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName sets the table name for fridgeItem
func (fridgeItem) TableName() string {
	return "fridge_items"
}

func (f fridgeItem) record() models.IngredientRecord {
	return models.IngredientRecord{
		ID:        strconv.FormatUint(uint64(f.ID), 10),
		Name:      f.Name,
		Quantity:  models.Quantity{Value: f.Amount, Unit: models.InventoryUnit(f.Unit)},
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// SQLStore keeps fridge items in a relational database through gorm
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL opens the database and migrates the fridge_items table
func OpenSQL(dialect, dsn string) (*SQLStore, error) {
	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == dialectSQLite {
		// One connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.DB().SetMaxOpenConns(1)
	}
	return NewSQLStore(db)
}

// NewSQLStore wraps an open gorm handle
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&fridgeItem{}).Error; err != nil {
		return nil, fmt.Errorf("failed to migrate fridge_items: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Insert creates a row, relying on the unique index to reject duplicates
func (s *SQLStore) Insert(ctx context.Context, rec *models.IngredientRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := fridgeItem{
		Name:      rec.Name,
		Amount:    rec.Quantity.Value,
		Unit:      string(rec.Quantity.Unit),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if err := s.db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", models.ErrConflict, rec.Name)
		}
		return fmt.Errorf("failed to insert fridge item: %w", err)
	}

	*rec = row.record()
	return nil
}

// List returns items newest first, optionally restricted to names containing filter
func (s *SQLStore) List(ctx context.Context, filter string) ([]models.IngredientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := s.db.Order("created_at desc").Order("id desc")
	if filter != "" {
		query = query.Where(`name LIKE ? ESCAPE '\'`, "%"+escapeLike(filter)+"%")
	}

	var rows []fridgeItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list fridge items: %w", err)
	}

	items := make([]models.IngredientRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.record())
	}
	return items, nil
}

// DeleteByName physically removes the item with the given normalized name
func (s *SQLStore) DeleteByName(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := s.db.Where("name = ?", name).Delete(&fridgeItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete fridge item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, name)
	}
	return nil
}

// Ping checks that the database is reachable
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.DB().PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
