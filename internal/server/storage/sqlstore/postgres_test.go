package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/storage"
)

func newPostgresWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, DialectPostgres), mock
}

func TestPostgres_CreateUser_UniqueViolation(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+users\s*\(.*\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8,\s*\$9\)\s*$`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := s.CreateUser(context.Background(), newTestUser("dup@example.com"))
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUser_DBError(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := s.CreateUser(context.Background(), newTestUser("x@example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert user")
	assert.NotErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestPostgres_GetUserByEmail(t *testing.T) {
	s, mock := newPostgresWithMock(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "role", "is_active", "created_at", "updated_at", "last_login",
	}).AddRow("u-1", "doc@example.com", "hash", "Dr Who", "DOCTOR", true, now, now, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`).
		WithArgs("doc@example.com").
		WillReturnRows(rows)

	got, err := s.GetUserByEmail(context.Background(), "doc@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, models.RoleDoctor, got.Role)
	assert.Nil(t, got.LastLogin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestPostgres_CreateStudy_ForeignKeyViolation(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+studies`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := s.CreateStudy(context.Background(), &models.Study{
		ID:        "s-1",
		PatientID: "missing",
		StudyDate: day(2024, 1, 1),
		Modality:  models.ModalityCT,
		BodyPart:  models.BodyPartHead,
		Status:    models.StudyPlanned,
	})
	assert.ErrorIs(t, err, storage.ErrPatientNotFound)
}

func TestPostgres_UpdatePatient_MRNConflict(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`(?s)UPDATE\s+patients\s+SET\s+mrn\s*=\s*\$1.*WHERE\s+id\s*=\s*\$6`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.UpdatePatient(context.Background(), &models.Patient{ID: "p-1", MRN: "taken"})
	assert.ErrorIs(t, err, storage.ErrMRNAlreadyExists)
}

func TestPostgres_ListStudies_Placeholders(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "study_date", "modality", "body_part", "description", "status", "created_at", "updated_at",
	}).AddRow("s-1", "p-1", day(2024, 1, 1), "MRI", "Head", "follow-up", "Completed", day(2024, 1, 1), day(2024, 1, 1))

	mock.ExpectQuery(`(?s)FROM\s+studies\s+WHERE\s+patient_id\s*=\s*\$1\s+AND\s+modality\s*=\s*\$2\s+ORDER\s+BY.*LIMIT\s+\$3\s+OFFSET\s+\$4$`).
		WithArgs("p-1", "MRI", 10, 5).
		WillReturnRows(rows)

	got, err := s.ListStudies(context.Background(), models.StudyFilter{
		PatientID: "p-1",
		Modality:  models.ModalityMRI,
		Skip:      5,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "follow-up", *got[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteImage_NotFound(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+images\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("img-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteImage(context.Background(), "img-1"), storage.ErrImageNotFound)
}

func TestPostgres_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	s := NewWithDB(db, DialectPostgres)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	require.Error(t, s.Ping(context.Background()))
}
