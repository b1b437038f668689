package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeTokenRepo struct {
	repository.AuthTokenRepository
	tokens map[string]*entity.AuthToken
	err    error
}

func (f *fakeTokenRepo) FindValid(_ context.Context, token string) (*entity.AuthToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens[token], nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	token := uuid.New()
	repo := &fakeTokenRepo{tokens: map[string]*entity.AuthToken{
		token.String(): {UserID: userID, Token: token, Role: "cashier"},
	}}

	var gotID uuid.UUID
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = utils.GetUserIDFromContext(r.Context())
		gotRole, _ = utils.GetRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Authenticate(repo, zap.NewNop())(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token.String(), http.StatusUnauthorized},
		{"unknown token", "Bearer " + uuid.NewString(), http.StatusUnauthorized},
		{"valid", "Bearer " + token.String(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tickets/my", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if gotID != userID || gotRole != "cashier" {
		t.Errorf("context carried %s/%q, want %s/cashier", gotID, gotRole, userID)
	}
}

func TestAuthenticate_RepositoryError(t *testing.T) {
	repo := &fakeTokenRepo{err: errors.New("db down")}
	h := Authenticate(repo, zap.NewNop())(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(zap.NewNop(), "admin", "cashier")(http.HandlerFunc(okHandler))

	tests := []struct {
		name string
		ctx  func(context.Context) context.Context
		want int
	}{
		{"anonymous", func(ctx context.Context) context.Context { return ctx }, http.StatusUnauthorized},
		{"viewer", func(ctx context.Context) context.Context {
			return utils.SetUserContext(ctx, uuid.New(), "viewer")
		}, http.StatusForbidden},
		{"cashier", func(ctx context.Context) context.Context {
			return utils.SetUserContext(ctx, uuid.New(), "cashier")
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
			req = req.WithContext(tt.ctx(req.Context()))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp := decode(t, rec); resp.Status {
		t.Error("status flag should be false")
	}
}

func TestLogger_PassesStatusThrough(t *testing.T) {
	h := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
}

type fakeScripter struct {
	redis.Scripter
	res   []interface{}
	err   error
	keys  []string
	calls int
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	f.calls++
	f.keys = keys
	return redis.NewCmdResult(f.res, f.err)
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.EvalSha(ctx, "", keys, args...)
}

func limiterConfig() utils.RateLimitConfig {
	return utils.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		Prefix:         "rl",
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := limiterConfig()
	cfg.Enabled = false
	rdb := &fakeScripter{}
	h := RateLimit(cfg, rdb, zap.NewNop())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", nil))

	if rec.Code != http.StatusOK || rdb.calls != 0 {
		t.Fatalf("status = %d, calls = %d; want pass-through", rec.Code, rdb.calls)
	}
}

func TestRateLimit_NilClient(t *testing.T) {
	h := RateLimit(limiterConfig(), nil, zap.NewNop())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_Allowed(t *testing.T) {
	rdb := &fakeScripter{res: []interface{}{int64(1), int64(4), int64(0)}}
	h := RateLimit(limiterConfig(), rdb, zap.NewNop())(http.HandlerFunc(okHandler))

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), userID, "viewer"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Errorf("remaining = %q, want 4", got)
	}
	wantKey := "rl:user:" + userID.String() + ":POST /api/tickets"
	if len(rdb.keys) != 1 || rdb.keys[0] != wantKey {
		t.Errorf("keys = %v, want [%s]", rdb.keys, wantKey)
	}
}

func TestRateLimit_Exhausted(t *testing.T) {
	rdb := &fakeScripter{res: []interface{}{int64(0), int64(0), int64(1500)}}
	h := RateLimit(limiterConfig(), rdb, zap.NewNop())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
}

func TestRateLimit_RedisErrorFailsOpen(t *testing.T) {
	rdb := &fakeScripter{err: errors.New("connection refused")}
	h := RateLimit(limiterConfig(), rdb, zap.NewNop())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
