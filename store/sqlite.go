package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// userRecord is the gorm row shape; the history ring travels as a JSON
// column to keep the schema to one table.
type userRecord struct {
	ID          int64 `gorm:"primaryKey"`
	Level       string
	Personality string
	HistoryJSON string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (userRecord) TableName() string { return "users" }

// SQLite is the embedded-database backing for deployments that outgrow the
// flat JSON document.
type SQLite struct {
	db *gorm.DB
}

func OpenSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = "superagent.db"
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, id int64) (User, bool, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("find user: %w", err)
	}
	u, err := fromRecord(rec)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *SQLite) Update(ctx context.Context, id int64, mutate func(*User)) (User, error) {
	var out User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec userRecord
		err := tx.Where("id = ?", id).First(&rec).Error
		var u User
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			u = NewUser(id)
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		default:
			u, err = fromRecord(rec)
			if err != nil {
				return err
			}
		}
		if mutate != nil {
			mutate(&u)
		}
		normalizeUser(&u, id)
		rec, err = toRecord(u)
		if err != nil {
			return err
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

func (s *SQLite) List(ctx context.Context) ([]User, error) {
	var recs []userRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]User, 0, len(recs))
	for _, rec := range recs {
		u, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func toRecord(u User) (userRecord, error) {
	historyJSON := ""
	if len(u.History) > 0 {
		b, err := json.Marshal(u.History)
		if err != nil {
			return userRecord{}, fmt.Errorf("encode history: %w", err)
		}
		historyJSON = string(b)
	}
	return userRecord{
		ID:          u.ID,
		Level:       string(u.Level),
		Personality: u.Personality,
		HistoryJSON: historyJSON,
	}, nil
}

func fromRecord(rec userRecord) (User, error) {
	u := User{
		ID:          rec.ID,
		Level:       Tier(rec.Level),
		Personality: rec.Personality,
	}
	if strings.TrimSpace(rec.HistoryJSON) != "" {
		if err := json.Unmarshal([]byte(rec.HistoryJSON), &u.History); err != nil {
			return User{}, fmt.Errorf("decode history for user %d: %w", rec.ID, err)
		}
	}
	normalizeUser(&u, rec.ID)
	return u, nil
}

func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
