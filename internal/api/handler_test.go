package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"

	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/store"
)

const testAdminSecret = "admin-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := database.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// 不可达的 Redis：登录限流应当放行而不是报错。
	redisClient := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = redisClient.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(log, db)
	RegisterRoutes(router, Deps{
		Store:  store.New(db),
		Hasher: auth.NewHasher(bcrypt.MinCost),
		Redis:  redisClient,
		Logger: log,
		API:    config.APIConfig{AdminSecret: testAdminSecret},
		Auth: config.AuthConfig{
			LoginRateLimitPerHour: 10,
			LoginLockThreshold:    5,
			LoginLockTTL:          time.Minute,
		},
	})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func idOf(t *testing.T, obj map[string]any) uint {
	t.Helper()
	id, ok := obj["id"].(float64)
	if !ok {
		t.Fatalf("missing id in %v", obj)
	}
	return uint(id)
}

func signupApplicant(t *testing.T, router *gin.Engine, username string) map[string]any {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/v1/auth/signup", gin.H{
		"username":  username,
		"password":  "password1",
		"email":     username + "@test",
		"phone":     "555)123-4567",
		"zip_code":  "12345",
		"applicant": gin.H{"first_name": "Jane", "last_name": "Doe"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	return body
}

func signupEmployer(t *testing.T, router *gin.Engine, username string) map[string]any {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/v1/auth/signup", gin.H{
		"username": username,
		"password": "password1",
		"email":    username + "@test",
		"employer": gin.H{"name": "Acme"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	return body
}

func TestSignup_CreatesUserWithProfile(t *testing.T) {
	router := newTestRouter(t)
	body := signupApplicant(t, router, "jane")

	if _, ok := body["password_hash"]; ok {
		t.Fatalf("password hash leaked: %v", body)
	}
	if body["zip_code"] != "12345" {
		t.Fatalf("zip_code = %v", body["zip_code"])
	}
	applicant, ok := body["applicant"].(map[string]any)
	if !ok {
		t.Fatalf("applicant missing: %v", body)
	}
	if applicant["first_name"] != "Jane" {
		t.Fatalf("first_name = %v", applicant["first_name"])
	}
	if _, ok := applicant["user"]; ok {
		t.Fatalf("applicant should not point back to user: %v", applicant)
	}
}

func TestSignup_ValidationAndConflict(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/v1/auth/signup", gin.H{
		"username": "bob",
		"password": "password1",
		"email":    "bob@test",
		"phone":    "123-456-7890",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", w.Code, w.Body.String())
	}
	if body["field"] != "phone" {
		t.Fatalf("field = %v", body["field"])
	}

	w, body = doJSON(t, router, http.MethodPost, "/v1/auth/signup", gin.H{
		"username": "bob",
		"password": "password1",
		"email":    "bob.test",
	})
	if w.Code != http.StatusUnprocessableEntity || body["field"] != "email" {
		t.Fatalf("expected 422 on email got %d body=%s", w.Code, w.Body.String())
	}

	signupEmployer(t, router, "acme")
	w, _ = doJSON(t, router, http.MethodPost, "/v1/auth/signup", gin.H{
		"username": "acme",
		"password": "password1",
		"email":    "other@test",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestLogin_VerifiesPasswordWithoutRedis(t *testing.T) {
	router := newTestRouter(t)
	signupApplicant(t, router, "jane")

	w, body := doJSON(t, router, http.MethodPost, "/v1/auth/login", gin.H{
		"username": "jane",
		"password": "password1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if body["username"] != "jane" {
		t.Fatalf("username = %v", body["username"])
	}

	w, _ = doJSON(t, router, http.MethodPost, "/v1/auth/login", gin.H{
		"username": "jane",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/v1/auth/login", gin.H{
		"username": "nobody",
		"password": "password1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user got %d", w.Code)
	}
}

func TestUpdateUser_PasswordChangeNeedsCurrentPassword(t *testing.T) {
	router := newTestRouter(t)
	user := signupApplicant(t, router, "jane")
	path := fmt.Sprintf("/v1/users/%d", idOf(t, user))

	w, _ := doJSON(t, router, http.MethodPatch, path, gin.H{"password": "new-password"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d body=%s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, router, http.MethodPatch, path, gin.H{
		"password":         "new-password",
		"current_password": "password1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	w, body := doJSON(t, router, http.MethodPatch, path, gin.H{"zip_code": "1234", "city": "Austin"})
	if w.Code != http.StatusUnprocessableEntity || body["field"] != "zip_code" {
		t.Fatalf("expected 422 on zip_code got %d body=%s", w.Code, w.Body.String())
	}

	w, body = doJSON(t, router, http.MethodGet, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if body["city"] != "" {
		t.Fatalf("city written despite failed update: %v", body["city"])
	}
}

func TestPasswordOverByteLimitIsValidationError(t *testing.T) {
	router := newTestRouter(t)
	// 30 个汉字共 90 字节，超过 bcrypt 的 72 字节上限。
	long := strings.Repeat("密", 30)

	w, body := doJSON(t, router, http.MethodPost, "/v1/auth/signup", gin.H{
		"username": "wei",
		"password": long,
		"email":    "wei@test",
	})
	if w.Code != http.StatusUnprocessableEntity || body["field"] != "password" {
		t.Fatalf("expected 422 on password got %d body=%s", w.Code, w.Body.String())
	}

	user := signupApplicant(t, router, "jane")
	w, body = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/users/%d", idOf(t, user)), gin.H{
		"password":         long,
		"current_password": "password1",
	})
	if w.Code != http.StatusUnprocessableEntity || body["field"] != "password" {
		t.Fatalf("expected 422 on password got %d body=%s", w.Code, w.Body.String())
	}
}

func TestPatchResponsesIncludeRelations(t *testing.T) {
	router := newTestRouter(t)
	employerUser := signupEmployer(t, router, "acme")
	applicantUser := signupApplicant(t, router, "jane")

	w, body := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/users/%d", idOf(t, applicantUser)), gin.H{"city": "Austin"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if applicant, ok := body["applicant"].(map[string]any); !ok || applicant["first_name"] != "Jane" {
		t.Fatalf("applicant missing from patch response: %v", body["applicant"])
	}

	_, category := doJSON(t, router, http.MethodPost, "/v1/jobcategories", gin.H{"category": "Retail"},
		"X-Admin-Secret", testAdminSecret)
	_, posting := doJSON(t, router, http.MethodPost, "/v1/jobpostings", gin.H{
		"employer_id":     idOf(t, employerUser["employer"].(map[string]any)),
		"job_category_id": idOf(t, category),
		"title":           "Cashier",
		"salary":          15.5,
		"remote":          database.RemoteHybrid,
	})

	w, body = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/jobpostings/%d", idOf(t, posting)), gin.H{"title": "Head Cashier"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if jc, ok := body["job_category"].(map[string]any); !ok || jc["category"] != "Retail" {
		t.Fatalf("job_category missing from patch response: %v", body["job_category"])
	}
	if emp, ok := body["employer"].(map[string]any); !ok || emp["name"] != "Acme" {
		t.Fatalf("employer missing from patch response: %v", body["employer"])
	}
}

func TestCategoryWritesRequireAdminSecret(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/v1/jobcategories", gin.H{"category": "Retail"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/v1/jobcategories", gin.H{"category": "Retail"},
		"X-Admin-Secret", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	w, body := doJSON(t, router, http.MethodPost, "/v1/jobcategories", gin.H{"category": "Retail"},
		"X-Admin-Secret", testAdminSecret)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if body["category"] != "Retail" {
		t.Fatalf("category = %v", body["category"])
	}

	w, body = doJSON(t, router, http.MethodGet, "/v1/jobcategories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if items, _ := body["items"].([]any); len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}
}

func TestPostingLifecycle(t *testing.T) {
	router := newTestRouter(t)
	employerUser := signupEmployer(t, router, "acme")
	applicantUser := signupApplicant(t, router, "jane")
	employerID := idOf(t, employerUser["employer"].(map[string]any))
	applicantID := idOf(t, applicantUser["applicant"].(map[string]any))

	_, category := doJSON(t, router, http.MethodPost, "/v1/jobcategories", gin.H{"category": "Retail"},
		"X-Admin-Secret", testAdminSecret)

	w, body := doJSON(t, router, http.MethodPost, "/v1/jobpostings", gin.H{
		"employer_id":     employerID,
		"job_category_id": idOf(t, category),
		"title":           "Cashier",
		"salary":          15.5,
		"remote":          "Sometimes",
	})
	if w.Code != http.StatusUnprocessableEntity || body["field"] != "remote" {
		t.Fatalf("expected 422 on remote got %d body=%s", w.Code, w.Body.String())
	}

	w, posting := doJSON(t, router, http.MethodPost, "/v1/jobpostings", gin.H{
		"employer_id":     employerID,
		"job_category_id": idOf(t, category),
		"title":           "Cashier",
		"salary":          15.5,
		"remote":          database.RemoteOnSite,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if posting["is_active"] != true {
		t.Fatalf("is_active = %v", posting["is_active"])
	}
	postingPath := fmt.Sprintf("/v1/jobpostings/%d", idOf(t, posting))

	w, app := doJSON(t, router, http.MethodPost, postingPath+"/applicants", gin.H{"applicant_id": applicantID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if app["status"] != database.StatusNew {
		t.Fatalf("status = %v", app["status"])
	}

	w, body = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/jobapplications/%d", idOf(t, app)), gin.H{"status": "hired"})
	if w.Code != http.StatusUnprocessableEntity || body["field"] != "status" {
		t.Fatalf("expected 422 on status got %d body=%s", w.Code, w.Body.String())
	}

	w, body = doJSON(t, router, http.MethodGet, postingPath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	apps, _ := body["job_applications"].([]any)
	if len(apps) != 1 {
		t.Fatalf("job_applications = %v", body["job_applications"])
	}
	if _, ok := apps[0].(map[string]any)["job_posting"]; ok {
		t.Fatalf("application should not point back to posting: %v", apps[0])
	}

	w, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/applicants/%d/favorites", applicantID), gin.H{"job_posting_id": idOf(t, posting)})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	w, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/applicants/%d/favorites", applicantID), gin.H{"job_posting_id": idOf(t, posting)})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate favorite got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodDelete, postingPath, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodGet, postingPath, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	w, body = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/applicants/%d/favorites", applicantID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if items, _ := body["items"].([]any); len(items) != 0 {
		t.Fatalf("favorites should cascade with the posting: %v", items)
	}
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/v1/users/abc", "/v1/jobpostings/0", "/v1/jobapplications/-1"} {
		w, _ := doJSON(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", path, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("expected healthy got %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Correlation-ID") == "" {
		t.Fatal("missing correlation id header")
	}
}
