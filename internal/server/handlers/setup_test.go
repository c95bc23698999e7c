package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/medrecords/internal/crypto"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/accounts"
	"github.com/iudanet/medrecords/internal/server/blob"
	"github.com/iudanet/medrecords/internal/server/records"
	"github.com/iudanet/medrecords/internal/server/storage/sqlstore"
	"github.com/iudanet/medrecords/internal/server/token"
	"github.com/iudanet/medrecords/internal/server/upload"
	"github.com/iudanet/medrecords/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type testServer struct {
	store    *sqlstore.Storage
	tokens   *token.Service
	accounts *accounts.Service
	records  *records.Service
	blobs    *blob.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := setupTestLogger()

	store, err := sqlstore.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens, err := token.NewService(token.Config{Secret: []byte("handler-test-secret"), TTL: 30 * time.Minute}, logger)
	require.NoError(t, err)

	acc, err := accounts.NewService(store, crypto.NewPasswords(bcrypt.MinCost), tokens, logger, nil)
	require.NoError(t, err)

	blobs, err := blob.New(t.TempDir(), logger)
	require.NoError(t, err)
	require.NoError(t, blobs.EnsureRoot())

	rec := records.NewService(store, upload.NewValidator(upload.DefaultPolicy()), blobs, logger, nil)

	return &testServer{store: store, tokens: tokens, accounts: acc, records: rec, blobs: blobs}
}

func (s *testServer) mustUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u, err := s.accounts.CreateUser(context.Background(), accounts.NewUser{
		Email:    email,
		Password: "password123",
		FullName: "Test User",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) mustPatient(t *testing.T, mrn string) *models.Patient {
	t.Helper()
	p, err := s.records.CreatePatient(context.Background(), records.NewPatient{
		MRN:         mrn,
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: time.Date(1980, 5, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return p
}

func (s *testServer) mustStudy(t *testing.T, patientID string) *models.Study {
	t.Helper()
	st, err := s.records.CreateStudy(context.Background(), records.NewStudy{
		PatientID: patientID,
		StudyDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Modality:  models.ModalityMRI,
		BodyPart:  models.BodyPartChest,
	})
	require.NoError(t, err)
	return st
}

func (s *testServer) mustImage(t *testing.T, studyID string) *models.Image {
	t.Helper()
	img, err := s.records.UploadImage(context.Background(), studyID, "scan.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	return img
}

// jsonRequest builds a request with body encoded as JSON.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches user to the request context the way the auth middleware does.
func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(WithUser(req.Context(), user))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	return decodeBody[api.ErrorResponse](t, w)
}

func accountsUpdate(role *models.Role, active *bool) accounts.UserUpdate {
	return accounts.UserUpdate{Role: role, IsActive: active}
}
