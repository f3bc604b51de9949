package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
	"github.com/vsplit/vsplit/internal/export"
	"github.com/vsplit/vsplit/internal/ocr"
	"github.com/vsplit/vsplit/internal/parser"
	"github.com/vsplit/vsplit/internal/pipeline"
	"github.com/vsplit/vsplit/internal/repository"
	session "github.com/vsplit/vsplit/internal/services/session"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.Open(context.Background(),
		common.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "test.db")}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)

	sessionsRepo, err := repository.NewSessionRepository(store, nil)
	if err != nil {
		t.Fatalf("session repo: %v", err)
	}
	svc := session.NewService(sessionsRepo, repository.NewHistoryRepository(store, nil), nil)
	proc := pipeline.NewProcessor(nil, ocr.NewRecognizer(ocr.Config{}, nil), parser.New(nil))
	srv := New(svc, proc, nil, export.NewService(nil), store, nil)
	return srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestSession(t *testing.T, r *gin.Engine) entity.Session {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/sessions", map[string]bool{"sample": true})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", w.Code, w.Body.String())
	}
	var s entity.Session
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func TestHealth(t *testing.T) {
	r := testRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	r := testRouter(t)
	s := createTestSession(t, r)
	if len(s.ID) != 8 {
		t.Fatalf("share code = %q", s.ID)
	}
	if s.Bill == nil || len(s.Bill.Items) == 0 {
		t.Fatal("sample bill missing")
	}

	w := doJSON(t, r, http.MethodGet, "/v1/sessions/"+s.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get session: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/sessions/ZZZZ9999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing session status = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/v1/sessions/"+s.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete session: %d", w.Code)
	}
}

func TestMemberAndSelectionFlow(t *testing.T) {
	r := testRouter(t)
	s := createTestSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/v1/sessions/"+s.ID+"/members",
		map[string]string{"name": "Asha", "upiId": "asha@okbank"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add member: %d: %s", w.Code, w.Body.String())
	}
	var updated entity.Session
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	memberID := updated.Members[0].ID

	// Duplicate names conflict.
	w = doJSON(t, r, http.MethodPost, "/v1/sessions/"+s.ID+"/members",
		map[string]string{"name": "asha"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate member status = %d, want 409", w.Code)
	}

	itemID := updated.Bill.Items[0].ID
	path := fmt.Sprintf("/v1/sessions/%s/members/%s/selections/%d", s.ID, memberID, itemID)
	w = doJSON(t, r, http.MethodPost, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle selection: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/sessions/%s/members/%s/share", s.ID, memberID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("share: %d: %s", w.Code, w.Body.String())
	}
	var share struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &share); err != nil {
		t.Fatalf("decode share: %v", err)
	}
	if share.Total <= 0 {
		t.Fatalf("share total = %v, want > 0", share.Total)
	}

	// Payment toggle settles the lone member and records history.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/sessions/%s/members/%s/payment", s.ID, memberID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("payment toggle: %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
	var hist struct {
		Records []entity.HistoryRecord `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Records) != 1 {
		t.Fatalf("history records = %d, want 1", len(hist.Records))
	}
}

func TestSummaryAndExport(t *testing.T) {
	r := testRouter(t)
	s := createTestSession(t, r)
	doJSON(t, r, http.MethodPost, "/v1/sessions/"+s.ID+"/members", map[string]string{"name": "Asha"})

	w := doJSON(t, r, http.MethodGet, "/v1/sessions/"+s.ID+"/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: %d", w.Code)
	}
	var sum struct {
		MemberCount int `json:"memberCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.MemberCount != 1 {
		t.Fatalf("memberCount = %d", sum.MemberCount)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/sessions/"+s.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("export content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("export body empty")
	}
}

func TestMemberQR(t *testing.T) {
	r := testRouter(t)
	s := createTestSession(t, r)
	w := doJSON(t, r, http.MethodPost, "/v1/sessions/"+s.ID+"/members",
		map[string]string{"name": "Asha", "upiId": "asha@okbank"})
	var updated entity.Session
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	memberID := updated.Members[0].ID

	// A zero share cannot produce a payment link, so claim an item first.
	itemID := updated.Bill.Items[0].ID
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/v1/sessions/%s/members/%s/selections/%d", s.ID, memberID, itemID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle selection: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/sessions/%s/members/%s/qr", s.ID, memberID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("qr: %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("qr content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("qr body is not a PNG")
	}
}

func TestUploadValidation(t *testing.T) {
	r := testRouter(t)
	s := createTestSession(t, r)

	// Missing multipart field.
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+s.ID+"/receipt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field status = %d, want 400", w.Code)
	}

	// Disallowed extension.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "receipt.pdf")
	fw.Write([]byte("%PDF-1.4"))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+s.ID+"/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad extension status = %d, want 400: %s", w.Code, w.Body.String())
	}

	// Image extension but a declared non-image content type.
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="receipt.png"`)
	hdr.Set("Content-Type", "application/pdf")
	pw, _ := mw.CreatePart(hdr)
	pw.Write([]byte("%PDF-1.4"))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+s.ID+"/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad content type status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestHistoryLimitBounds(t *testing.T) {
	r := testRouter(t)

	for _, q := range []string{"?limit=1000000", "?limit=-5", "?limit=abc", ""} {
		w := doJSON(t, r, http.MethodGet, "/v1/history"+q, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("history %q status = %d, want 200: %s", q, w.Code, w.Body.String())
		}
		var hist struct {
			Records []entity.HistoryRecord `json:"records"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
			t.Fatalf("history %q: decode: %v", q, err)
		}
	}
}
