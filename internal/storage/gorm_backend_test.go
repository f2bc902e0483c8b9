package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormBackend_Postgres(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		mockBehavior func(mock sqlmock.Sqlmock)
		run          func(b *GormBackend) error
		expectedErr  error
		anyError     bool
	}{
		{
			name: "Load Not Found",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE record_key = $1`)).
					WithArgs("memeLikes", 1).
					WillReturnRows(sqlmock.NewRows([]string{"record_key", "value", "version"}))
			},
			run: func(b *GormBackend) error {
				_, ok, err := b.Load(ctx, "memeLikes")
				if ok {
					return errors.New("unexpected hit")
				}
				return err
			},
		},
		{
			name: "Load Database Error",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE record_key = $1`)).
					WillReturnError(errors.New("connection reset"))
			},
			run: func(b *GormBackend) error {
				_, _, err := b.Load(ctx, "memeLikes")
				return err
			},
			anyError: true,
		},
		{
			name: "Stale Version",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "records" SET`)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			run: func(b *GormBackend) error {
				_, err := b.Store(ctx, "memeLikes", []byte(`{}`), 4)
				return err
			},
			expectedErr: ErrVersionConflict,
		},
		{
			name: "Versioned Update",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "records" SET`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(b *GormBackend) error {
				v, err := b.Store(ctx, "memeLikes", []byte(`{}`), 4)
				if err == nil && v != 5 {
					return errors.New("expected version 5")
				}
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.mockBehavior(mock)

			err := tt.run(NewGormBackend(db))

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.anyError:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
