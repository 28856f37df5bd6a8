package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/idempotency"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestAuthRequired(t *testing.T) {
	router := gin.New()
	router.Use(AuthRequired(testhelpers.TokenParserStub{}))
	router.GET("/", func(c *gin.Context) {})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	router = gin.New()
	router.Use(AuthRequired(testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}))
	router.GET("/", func(c *gin.Context) {})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", resp.Code)
	}

	router = gin.New()
	router.Use(AuthRequired(testhelpers.TokenParserStub{Err: context.DeadlineExceeded}))
	router.GET("/", func(c *gin.Context) {})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var storedID int64
	router = gin.New()
	router.Use(AuthRequired(testhelpers.TokenParserStub{ID: 42}))
	router.GET("/", func(c *gin.Context) {
		if v, ok := c.Get(UserIDContextKey); ok {
			storedID = v.(int64)
		}
		c.Status(http.StatusOK)
	})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if storedID != 42 {
		t.Fatalf("expected user id 42, got %d", storedID)
	}
}

func TestIdentify(t *testing.T) {
	var (
		userID any
		guest  any
	)
	router := gin.New()
	router.Use(Identify(testhelpers.TokenParserStub{ID: 7}))
	router.GET("/", func(c *gin.Context) {
		userID, _ = c.Get(UserIDContextKey)
		guest, _ = c.Get(GuestTokenContextKey)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected anonymous request to pass, got %d", resp.Code)
	}
	if userID != nil || guest != nil {
		t.Fatalf("expected no identity, got %v %v", userID, guest)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set(OrderTokenHeader, " guest-token ")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if userID != int64(7) {
		t.Fatalf("expected user 7, got %v", userID)
	}
	if guest != "guest-token" {
		t.Fatalf("expected trimmed guest token, got %v", guest)
	}

	router = gin.New()
	router.Use(Identify(testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid identity, got %d", resp.Code)
	}
}

func TestAuthRequiredReusesIdentity(t *testing.T) {
	calls := 0
	parser := testhelpers.TokenParserStub{ParseFn: func(string) (int64, error) {
		calls++
		return 3, nil
	}}
	router := gin.New()
	router.Use(Identify(parser))
	router.GET("/", AuthRequired(parser), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("expected token parsed once, got %d", calls)
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if token := extractToken(c); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}
	c.Request.Header.Del("Authorization")
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie"})
	if token := extractToken(c); token != "cookie" {
		t.Fatalf("expected token from cookie, got %q", token)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip body, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("data"))
	req.Header.Set("Content-Encoding", "br")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for unsupported encoding, got %d", resp.Code)
	}
}

func TestDecompressRequestLimitsBody(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(bytes.Repeat([]byte("a"), maxDecompressedBody+1))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var readErr error
	router.POST("/", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Encoding", "gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Fatalf("expected body limit error, got %v", readErr)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/orders/:number", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("kaput"))
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/R123456789", nil))
	out := buf.String()
	if !strings.Contains(out, `"order":"R123456789"`) || !strings.Contains(out, `"level":"INFO"`) {
		t.Fatalf("expected order attribute at info level, got %s", out)
	}

	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	out = buf.String()
	if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, "kaput") {
		t.Fatalf("expected error level with cause, got %s", out)
	}
}

func newIdempotentRouter(store idempotency.Store, status int, calls *int) *gin.Engine {
	router := gin.New()
	router.Use(Identify(testhelpers.TokenParserStub{ParseFn: func(token string) (int64, error) {
		if token == "alice" {
			return 1, nil
		}
		return 2, nil
	}}))
	router.Use(Idempotent(store, discardLogger()))
	handler := func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	}
	router.POST("/orders", handler)
	router.GET("/orders", handler)
	return router
}

func send(router *gin.Engine, method, token, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestIdempotentReplaysSuccess(t *testing.T) {
	calls := 0
	router := newIdempotentRouter(idempotency.NewMemoryStore(time.Minute), http.StatusCreated, &calls)
	key := testhelpers.RandomASCIIString(16, 32)

	first := send(router, http.MethodPost, "alice", key)
	second := send(router, http.MethodPost, "alice", key)

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replay of %d %s, got %d %s", first.Code, first.Body, second.Code, second.Body)
	}
	if second.Header().Get(ReplayedHeader) != "true" {
		t.Fatal("expected replay marker header")
	}
	if first.Header().Get(ReplayedHeader) != "" {
		t.Fatal("original response must not carry replay marker")
	}
	if ct := second.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json content type on replay, got %q", ct)
	}
}

func TestIdempotentScopesCallers(t *testing.T) {
	calls := 0
	router := newIdempotentRouter(idempotency.NewMemoryStore(time.Minute), http.StatusCreated, &calls)

	send(router, http.MethodPost, "alice", "same")
	resp := send(router, http.MethodPost, "bob", "same")
	if calls != 2 {
		t.Fatalf("expected separate callers to run separately, got %d calls", calls)
	}
	if resp.Header().Get(ReplayedHeader) != "" {
		t.Fatal("did not expect a replay for another caller")
	}
}

func TestIdempotentBypassesAnonymousCallers(t *testing.T) {
	calls := 0
	store := idempotency.NewMemoryStore(time.Minute)
	router := newIdempotentRouter(store, http.StatusCreated, &calls)

	first := send(router, http.MethodPost, "", "checkout-1")
	second := send(router, http.MethodPost, "", "checkout-1")

	if calls != 2 {
		t.Fatalf("expected each anonymous request to run, got %d calls", calls)
	}
	if second.Header().Get(ReplayedHeader) != "" || second.Body.String() == first.Body.String() {
		t.Fatalf("anonymous caller received a replay: %s", second.Body)
	}
}

func TestIdempotentSkipsFailuresAndOtherRequests(t *testing.T) {
	calls := 0
	router := newIdempotentRouter(idempotency.NewMemoryStore(time.Minute), http.StatusUnprocessableEntity, &calls)
	send(router, http.MethodPost, "alice", "k")
	send(router, http.MethodPost, "alice", "k")
	if calls != 2 {
		t.Fatalf("expected failed responses to be retried, got %d calls", calls)
	}

	calls = 0
	router = newIdempotentRouter(idempotency.NewMemoryStore(time.Minute), http.StatusOK, &calls)
	send(router, http.MethodGet, "alice", "k")
	send(router, http.MethodGet, "alice", "k")
	send(router, http.MethodPost, "alice", "")
	send(router, http.MethodPost, "alice", "")
	if calls != 4 {
		t.Fatalf("expected GET and keyless POST to bypass the store, got %d calls", calls)
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*idempotency.StoredResponse, error) {
	return nil, errors.New("redis down")
}

func (brokenStore) Save(context.Context, string, idempotency.StoredResponse) error {
	return errors.New("redis down")
}

func TestIdempotentToleratesStoreErrors(t *testing.T) {
	calls := 0
	router := newIdempotentRouter(brokenStore{}, http.StatusCreated, &calls)
	resp := send(router, http.MethodPost, "alice", "k")
	if resp.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("expected request to proceed despite store failure, got %d after %d calls", resp.Code, calls)
	}
}
