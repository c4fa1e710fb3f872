package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ittop-club/secret-santa-bot/internal/config"
)

// OpenPostgres connects with the discrete connection settings from config.
// TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey regardless of the driver.
func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		conf.Host, conf.User, conf.Password, conf.DB, conf.Port,
	)

	return OpenPostgresWithURL(dsn)
}

// OpenPostgresWithURL connects with a full DSN, e.g. from DATABASE_URL.
func OpenPostgresWithURL(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return gdb, nil
}

// OpenSQLite opens the file-backed fallback store.
func OpenSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return gdb, nil
}
