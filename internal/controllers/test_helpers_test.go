package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"supportdesk/internal/accounts"
	"supportdesk/internal/logging"
	"supportdesk/internal/middleware"
	"supportdesk/internal/storage"
	"supportdesk/internal/store"
	"supportdesk/internal/testutil"
	"supportdesk/internal/verification"
)

const testMaxUpload = 1024

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

type testEnv struct {
	db      *gorm.DB
	store   *store.Store
	codes   *verification.Service
	mailer  *testutil.Mailer
	uploads string
	router  *gin.Engine
}

func newTestEnv(t *testing.T, opts ...verification.Option) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := testutil.NewDB(t)
	st := store.New(gdb)
	mailer := &testutil.Mailer{}
	log := logging.Discard()
	codes := verification.NewService(st, mailer, log, opts...)

	uploads := filepath.Join(t.TempDir(), "uploads")
	photos, err := storage.NewLocal(uploads)
	if err != nil {
		t.Fatalf("storage.NewLocal: %v", err)
	}

	authn := accounts.NewAuthenticator(st)
	auth := NewAuthController(codes, authn, log)
	users := NewUserController(st, photos, testMaxUpload, log)
	support := NewSupportController(st, log)

	router := gin.New()
	router.POST("/api/register", auth.Register)
	router.POST("/api/verify", auth.Verify)
	router.POST("/api/login", auth.Login)
	router.GET("/api/user", users.GetUser)
	router.POST("/api/user/update", users.UpdateUser)
	router.GET("/api/solutions", support.ListSolutions)
	router.POST("/api/submit-issue", middleware.BasicAuthMiddleware(authn, "support", log), support.SubmitIssue)

	return &testEnv{db: gdb, store: st, codes: codes, mailer: mailer, uploads: uploads, router: router}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

type upload struct {
	filename string
	content  []byte
}

func (e *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, file *upload) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if file != nil {
		fw, err := writer.CreateFormFile("profilePhoto", file.filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(file.content); err != nil {
			t.Fatalf("fileWriter.Write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(req)
}

// registerVerified registers a user and consumes the emailed code.
func (e *testEnv) registerVerified(t *testing.T, username, email, password string) {
	t.Helper()
	resp := e.postJSON(t, "/api/register", map[string]string{
		"username": username,
		"password": password,
		"name":     "Test",
		"surname":  "User",
		"email":    email,
	})
	expectHTTP200(t, resp.Code)
	e.codes.Wait()

	resp = e.postJSON(t, "/api/verify", map[string]string{"email": email, "code": e.mailer.LastCode(t, email)})
	expectHTTP200(t, resp.Code)
}

func (e *testEnv) uploadedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.uploads)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func expectHTTP200(t *testing.T, status int) {
	t.Helper()
	mustStatus(t, status, http.StatusOK)
}
