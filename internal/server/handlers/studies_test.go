package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medrecords/pkg/api"
)

func TestStudyHandler_Create(t *testing.T) {
	srv := newTestServer(t)
	h := NewStudyHandler(setupTestLogger(), srv.records)
	p := srv.mustPatient(t, "MRN-ST")

	tests := []struct {
		body       api.StudyCreateRequest
		name       string
		wantStatus string
		wantCode   int
	}{
		{
			name:       "defaults to planned",
			body:       api.StudyCreateRequest{PatientID: p.ID, StudyDate: "2024-01-10", Modality: "CT", BodyPart: "Head"},
			wantCode:   http.StatusCreated,
			wantStatus: "Planned",
		},
		{
			name:       "explicit status",
			body:       api.StudyCreateRequest{PatientID: p.ID, StudyDate: "2024-01-10", Modality: "X-Ray", BodyPart: "Limbs", Status: "In Progress"},
			wantCode:   http.StatusCreated,
			wantStatus: "In Progress",
		},
		{
			name:     "unknown patient",
			body:     api.StudyCreateRequest{PatientID: "missing", StudyDate: "2024-01-10", Modality: "CT", BodyPart: "Head"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "missing patient id",
			body:     api.StudyCreateRequest{StudyDate: "2024-01-10", Modality: "CT", BodyPart: "Head"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad modality",
			body:     api.StudyCreateRequest{PatientID: p.ID, StudyDate: "2024-01-10", Modality: "PET", BodyPart: "Head"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad date",
			body:     api.StudyCreateRequest{PatientID: p.ID, StudyDate: "2024-13-10", Modality: "CT", BodyPart: "Head"},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Create(w, jsonRequest(t, http.MethodPost, "/api/v1/studies", tt.body))

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusCreated {
				resp := decodeBody[api.StudyResponse](t, w)
				assert.Equal(t, tt.wantStatus, resp.Status)
				assert.Equal(t, "2024-01-10", resp.StudyDate)
				assert.Equal(t, p.ID, resp.PatientID)
			}
		})
	}
}

func TestStudyHandler_ListFilters(t *testing.T) {
	srv := newTestServer(t)
	h := NewStudyHandler(setupTestLogger(), srv.records)
	p1 := srv.mustPatient(t, "MRN-F1")
	p2 := srv.mustPatient(t, "MRN-F2")
	srv.mustStudy(t, p1.ID)
	srv.mustStudy(t, p1.ID)
	srv.mustStudy(t, p2.ID)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{name: "all", query: "", wantCode: http.StatusOK, wantLen: 3},
		{name: "by patient", query: "?patient_id=" + p1.ID, wantCode: http.StatusOK, wantLen: 2},
		{name: "by modality", query: "?modality=MRI", wantCode: http.StatusOK, wantLen: 3},
		{name: "no match", query: "?modality=CT", wantCode: http.StatusOK, wantLen: 0},
		{name: "by status", query: "?status=Planned&limit=1", wantCode: http.StatusOK, wantLen: 1},
		{name: "unknown modality", query: "?modality=PET", wantCode: http.StatusBadRequest},
		{name: "bad limit", query: "?limit=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/studies"+tt.query, nil))

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusOK {
				assert.Len(t, decodeBody[[]api.StudyResponse](t, w), tt.wantLen)
			}
		})
	}
}

func TestStudyHandler_GetWithImages(t *testing.T) {
	srv := newTestServer(t)
	h := NewStudyHandler(setupTestLogger(), srv.records)
	st := srv.mustStudy(t, srv.mustPatient(t, "MRN-SI").ID)
	img := srv.mustImage(t, st.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/studies/"+st.ID, nil)
	req.SetPathValue("id", st.ID)
	w := httptest.NewRecorder()
	h.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.StudyWithImagesResponse](t, w)
	assert.Equal(t, st.ID, resp.ID)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, img.ID, resp.Images[0].ID)
	assert.NotContains(t, w.Body.String(), img.FilePath)
}

func TestStudyHandler_Update(t *testing.T) {
	srv := newTestServer(t)
	h := NewStudyHandler(setupTestLogger(), srv.records)
	st := srv.mustStudy(t, srv.mustPatient(t, "MRN-SU").ID)

	tests := []struct {
		body     api.StudyUpdateRequest
		name     string
		wantCode int
	}{
		{name: "status", body: api.StudyUpdateRequest{Status: ptr("Reviewed")}, wantCode: http.StatusOK},
		{name: "bad status", body: api.StudyUpdateRequest{Status: ptr("Lost")}, wantCode: http.StatusBadRequest},
		{name: "bad body part", body: api.StudyUpdateRequest{BodyPart: ptr("Tail")}, wantCode: http.StatusBadRequest},
		{name: "bad date", body: api.StudyUpdateRequest{StudyDate: ptr("soon")}, wantCode: http.StatusBadRequest},
		{name: "future date", body: api.StudyUpdateRequest{StudyDate: ptr("2999-01-01")}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, http.MethodPatch, "/api/v1/studies/"+st.ID, tt.body)
			req.SetPathValue("id", st.ID)
			w := httptest.NewRecorder()

			h.Update(w, req)

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}

	_, _, err := srv.records.GetStudy(t.Context(), st.ID)
	require.NoError(t, err)
}

func TestStudyHandler_DeleteRemovesFiles(t *testing.T) {
	srv := newTestServer(t)
	h := NewStudyHandler(setupTestLogger(), srv.records)
	st := srv.mustStudy(t, srv.mustPatient(t, "MRN-SD").ID)
	img := srv.mustImage(t, st.ID)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/studies/"+st.ID, nil)
	req.SetPathValue("id", st.ID)
	w := httptest.NewRecorder()
	h.Delete(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NoFileExists(t, img.FilePath)
}

func ptr[T any](v T) *T {
	return &v
}
