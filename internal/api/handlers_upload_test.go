// handlers_upload_test.go - Tests for upload handlers
package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/room-matcher/backend/internal/matcher"
	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/session"
	"github.com/room-matcher/backend/internal/testutil"
	"github.com/room-matcher/backend/internal/upload"
)

type uploadFixture struct {
	store    *testutil.MockStore
	recorder *testutil.MockRecorder
	parser   *testutil.MockParser
	handler  UploadHandler
}

func newUploadFixture(opts upload.Options, autoRun bool) *uploadFixture {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	coordinator := upload.NewCoordinator(store, recorder, parser, opts)

	sessionMgr := session.NewManager(&testutil.MockScorer{}, matcher.DefaultFallbacks(),
		matcher.Options{StageDelay: func() time.Duration { return 0 }})

	return &uploadFixture{
		store:    store,
		recorder: recorder,
		parser:   parser,
		handler:  NewUploadHandler(coordinator, sessionMgr, recorder, autoRun),
	}
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	writer.Close()

	return body, writer.FormDataContentType()
}

func TestUploadHandler_HandleUploadFile(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		opts       upload.Options
		wantStatus int
		wantErr    bool
		errCode    string
		errNotice  string
	}{
		{
			name:       "valid docx upload",
			filename:   "profile.docx",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "valid pdf upload",
			filename:   "profile.pdf",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "extension case-insensitive",
			filename:   "PROFILE.JPG",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid format",
			filename:   "notes.txt",
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
			errNotice:  "Invalid file format",
		},
		{
			name:       "forced parse failure",
			filename:   "profile.pdf",
			opts:       upload.Options{ForceParseError: true},
			wantStatus: http.StatusBadGateway,
			wantErr:    true,
			errCode:    "PIPELINE_ERROR",
			errNotice:  "File processing failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploadFixture(tt.opts, false)

			e := echo.New()
			body, contentType := multipartUpload(t, tt.filename, []byte("file content"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set(echo.HeaderContentType, contentType)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := f.handler.HandleUploadFile(c)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
				if apiErr.Notice != tt.errNotice {
					t.Errorf("expected notice %q, got %q", tt.errNotice, apiErr.Notice)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response uploadResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.File == nil || response.File.Name != tt.filename {
				t.Errorf("expected file metadata for %s", tt.filename)
			}
			if response.Profile == nil || response.Profile.ID == "" {
				t.Error("expected a parsed profile in the response")
			}
			if response.SessionID == "" {
				t.Error("expected a session ID in the response")
			}
		})
	}
}

func TestUploadHandler_NoFile(t *testing.T) {
	f := newUploadFixture(upload.Options{}, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := f.handler.HandleUploadFile(c)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "BAD_REQUEST" {
		t.Errorf("expected BAD_REQUEST, got %s", apiErr.Code)
	}
}

func TestUploadHandler_AutoRun(t *testing.T) {
	f := newUploadFixture(upload.Options{}, true)

	e := echo.New()
	body, contentType := multipartUpload(t, "profile.docx", []byte("file content"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.HandleUploadFile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var response uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !response.AutoRun {
		t.Error("expected autoRun flag in response")
	}
	if response.Run == nil {
		t.Fatal("expected the run started before the response was written")
	}
	if response.Run.ID == "" {
		t.Error("expected run ID")
	}
}

func TestUploadHandler_HandleRecentFiles(t *testing.T) {
	f := newUploadFixture(upload.Options{}, false)

	e := echo.New()

	// Empty history first.
	req := httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
	rec := httptest.NewRecorder()
	if err := f.handler.HandleRecentFiles(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var files []models.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected empty history, got %d files", len(files))
	}

	// Upload, then the history shows it.
	body, contentType := multipartUpload(t, "profile.pdf", []byte("x"))
	upReq := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	upReq.Header.Set(echo.HeaderContentType, contentType)
	if err := f.handler.HandleUploadFile(e.NewContext(upReq, httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
	if err := f.handler.HandleRecentFiles(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(files) != 1 || files[0].Name != "profile.pdf" {
		t.Errorf("expected the uploaded file in history, got %+v", files)
	}
}

func TestUploadHandler_HandleGetFile(t *testing.T) {
	f := newUploadFixture(upload.Options{}, false)
	e := echo.New()

	body, contentType := multipartUpload(t, "profile.pdf", []byte("x"))
	upReq := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	upReq.Header.Set(echo.HeaderContentType, contentType)
	upRec := httptest.NewRecorder()
	if err := f.handler.HandleUploadFile(e.NewContext(upReq, upRec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var response uploadResponse
	json.Unmarshal(upRec.Body.Bytes(), &response)

	tests := []struct {
		name    string
		fileID  string
		wantErr string
	}{
		{"existing file", response.File.ID, ""},
		{"missing id", "", "VALIDATION_ERROR"},
		{"unknown file", "does-not-exist", "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/files/:id", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.fileID)

			err := f.handler.HandleGetFile(c)

			if tt.wantErr != "" {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Code != tt.wantErr {
					t.Errorf("expected code %s, got %s", tt.wantErr, apiErr.Code)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got models.FileInfo
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if got.ID != tt.fileID {
				t.Errorf("expected file %s, got %s", tt.fileID, got.ID)
			}
		})
	}
}

func TestUploadHandler_HandleUploadRecords(t *testing.T) {
	f := newUploadFixture(upload.Options{}, false)
	e := echo.New()

	body, contentType := multipartUpload(t, "profile.pdf", []byte("x"))
	upReq := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	upReq.Header.Set(echo.HeaderContentType, contentType)
	if err := f.handler.HandleUploadFile(e.NewContext(upReq, httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/records", nil)
	rec := httptest.NewRecorder()
	if err := f.handler.HandleUploadRecords(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["name"] != "profile.pdf" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}
