package db

import (
	"log"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewMockDB builds a gorm handle backed by sqlmock. Test support; callers
// pair it with NewDB to swap the shared instance.
func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing: true,
	})

	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

// GetMockDB swaps the shared instance for a mock and returns both handles.
func GetMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	gormDB, mock := NewMockDB()
	db = gormDB
	return gormDB, mock
}
