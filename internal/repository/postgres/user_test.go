package postgres

import (
	"fmt"
	"testing"

	"wordtrainer/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUserRepo_Load(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name: "two users",
			mockRows: sqlmock.NewRows([]string{"user_id", "data"}).
				AddRow(int64(123), []byte(`{"currentDay":"2025-01-01","mistakes":["gato"],"stats":{"correct":1,"incorrect":2}}`)).
				AddRow(int64(456), []byte(`{"currentDay":1}`)),
			expectedCount: 2,
		},
		{
			name:          "empty table",
			mockRows:      sqlmock.NewRows([]string{"user_id", "data"}),
			expectedCount: 0,
		},
		{
			name: "corrupt record",
			mockRows: sqlmock.NewRows([]string{"user_id", "data"}).
				AddRow(int64(123), []byte(`{not json`)),
			expectedError: true,
		},
		{
			name:          "query error",
			mockError:     fmt.Errorf("connection refused"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			query := "SELECT user_id, data FROM users"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WillReturnRows(tt.mockRows)
			}

			users, err := repo.Load()

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, users)
			} else {
				assert.NoError(t, err)
				assert.Len(t, users, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_LoadNormalizesRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, data FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "data"}).
			AddRow(int64(123), []byte(`{"currentDay":3,"mistakes":["pan","pan"]}`)))

	users, err := NewUserRepo(db).Load()

	assert.NoError(t, err)
	u := users[123]
	assert.Equal(t, domain.DayLabel{Seq: 3}, u.CurrentDay)
	assert.Equal(t, []string{"pan"}, u.Mistakes)
	assert.Equal(t, []string{}, u.WordsLearned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	users := domain.Users{
		456: domain.NewUserRecord(),
		123: domain.NewUserRecord(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(123), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(456), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users").
		WithArgs(pq.Array([]int64{123, 456})).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = repo.Save(users)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(123), sqlmock.AnyArg()).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	err = repo.Save(domain.Users{123: domain.NewUserRecord()})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
