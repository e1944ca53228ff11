// Package storage provides the SQLite implementation of the FoodStore interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mealgrid/foodsearch/internal/models"
)

// SQLiteStore implements FoodStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS foods (
		external_id TEXT PRIMARY KEY,
		barcode TEXT,
		name TEXT NOT NULL,
		brand TEXT,
		calories_per_100g REAL,
		protein_g REAL,
		carbs_g REAL,
		fat_g REAL,
		fiber_g REAL,
		sugar_g REAL,
		sodium_mg REAL,
		serving_size_g REAL,
		food_type TEXT NOT NULL DEFAULT 'generic',
		allergens TEXT,
		image_url TEXT,
		country TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_foods_name ON foods(name);
	CREATE INDEX IF NOT EXISTS idx_foods_country ON foods(country);
	`
	_, err := db.Exec(schema)
	return err
}

// SearchFoods returns one page of case-insensitive name matches and the total
// match count. Records scoped to another country are excluded; records with no
// country scope match everywhere.
func (s *SQLiteStore) SearchFoods(ctx context.Context, query, country string, limit, offset int) ([]*models.FoodRecord, int, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	where := `WHERE lower(name) LIKE ? AND (country = ? OR country = '')`

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM foods `+where, pattern, country,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count foods: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT external_id, barcode, name, brand,
		        calories_per_100g, protein_g, carbs_g, fat_g,
		        fiber_g, sugar_g, sodium_mg, serving_size_g,
		        food_type, allergens, image_url
		 FROM foods `+where+` ORDER BY name, external_id LIMIT ? OFFSET ?`,
		pattern, country, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	var records []*models.FoodRecord
	for rows.Next() {
		rec, err := scanFood(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func scanFood(rows *sql.Rows) (*models.FoodRecord, error) {
	var rec models.FoodRecord
	var barcode, brand, imageURL, foodType, allergensJSON sql.NullString
	var cal, protein, carbs, fat, fiber, sugar, sodium, servingG sql.NullFloat64
	if err := rows.Scan(
		&rec.ExternalID, &barcode, &rec.Name, &brand,
		&cal, &protein, &carbs, &fat,
		&fiber, &sugar, &sodium, &servingG,
		&foodType, &allergensJSON, &imageURL,
	); err != nil {
		return nil, fmt.Errorf("scan food: %w", err)
	}
	rec.Barcode = barcode.String
	rec.Brand = brand.String
	rec.ImageURL = imageURL.String
	rec.CaloriesPer100g = fromNull(cal)
	rec.ProteinG = fromNull(protein)
	rec.CarbsG = fromNull(carbs)
	rec.FatG = fromNull(fat)
	rec.FiberG = fromNull(fiber)
	rec.SugarG = fromNull(sugar)
	rec.SodiumMg = fromNull(sodium)
	rec.ServingSizeG = fromNull(servingG)
	rec.FoodType = models.FoodType(foodType.String)
	rec.Source = models.SourceCache
	if allergensJSON.String != "" {
		if err := json.Unmarshal([]byte(allergensJSON.String), &rec.Allergens); err != nil {
			return nil, fmt.Errorf("failed to unmarshal allergens: %w", err)
		}
	}
	return &rec, nil
}

// UpsertFoods inserts or refreshes records in one transaction. Existing rows
// keyed by external_id are overwritten with the incoming values.
func (s *SQLiteStore) UpsertFoods(ctx context.Context, records []*models.FoodRecord, country string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO foods (external_id, barcode, name, brand,
		                    calories_per_100g, protein_g, carbs_g, fat_g,
		                    fiber_g, sugar_g, sodium_mg, serving_size_g,
		                    food_type, allergens, image_url, country, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   barcode = excluded.barcode,
		   name = excluded.name,
		   brand = excluded.brand,
		   calories_per_100g = excluded.calories_per_100g,
		   protein_g = excluded.protein_g,
		   carbs_g = excluded.carbs_g,
		   fat_g = excluded.fat_g,
		   fiber_g = excluded.fiber_g,
		   sugar_g = excluded.sugar_g,
		   sodium_mg = excluded.sodium_mg,
		   serving_size_g = excluded.serving_size_g,
		   food_type = excluded.food_type,
		   allergens = excluded.allergens,
		   image_url = excluded.image_url,
		   country = excluded.country,
		   updated_at = excluded.updated_at`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range records {
		allergensJSON, err := json.Marshal(rec.Allergens)
		if err != nil {
			return fmt.Errorf("failed to marshal allergens: %w", err)
		}
		foodType := rec.FoodType
		if foodType == "" {
			foodType = models.FoodTypeGeneric
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ExternalID, rec.Barcode, rec.Name, rec.Brand,
			toNull(rec.CaloriesPer100g), toNull(rec.ProteinG), toNull(rec.CarbsG), toNull(rec.FatG),
			toNull(rec.FiberG), toNull(rec.SugarG), toNull(rec.SodiumMg), toNull(rec.ServingSizeG),
			string(foodType), string(allergensJSON), rec.ImageURL, country, now, now,
		); err != nil {
			return fmt.Errorf("upsert food %s: %w", rec.ExternalID, err)
		}
	}
	return tx.Commit()
}

// CountFoods returns the total number of mirrored records.
func (s *SQLiteStore) CountFoods(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toNull(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
