package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.Expiration = 1

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func signToken(t *testing.T, method jwt.SigningMethod, role domain.Role) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(method, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "42",
		},
	})
	ss, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return ss
}

func TestResponseEnvelope(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.successResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), "成功", map[string]int{"n": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "成功", resp.Message)

	rec = httptest.NewRecorder()
	h.errorResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), "失败")
	assert.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "失败", resp.Message)
	assert.Nil(t, resp.Data)

	rec = httptest.NewRecorder()
	h.internalServerError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "服务器内部错误", decodeResponse(t, rec).Message)
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	req := struct {
		Name string `json:"name" validate:"required"`
	}{}
	err := h.validate.Struct(req)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "必填")

	rec = httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("格式错误"))
	assert.Equal(t, "格式错误", decodeResponse(t, rec).Message)
}

func TestReadOptionalJSON(t *testing.T) {
	h := newTestHandler(t)

	var v struct {
		Seed *int64 `json:"seed"`
	}
	assert.NoError(t, h.readOptionalJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &v))
	assert.Nil(t, v.Seed)

	assert.NoError(t, h.readOptionalJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seed": 3}`)), &v))
	require.NotNil(t, v.Seed)
	assert.Equal(t, int64(3), *v.Seed)

	assert.Error(t, h.readOptionalJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seed":`)), &v))
}

func TestRecoverer(t *testing.T) {
	h := newTestHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	h.recoverer(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t)

	var gotRole, gotSub string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = r.Context().Value(RoleCtxKey).(string)
		gotSub = r.Context().Value(SubCtxKey).(string)
		h.successResponse(w, r, "ok", nil)
	})

	tests := []struct {
		name    string
		cookie  string
		success bool
		message string
	}{
		{name: "未登录", message: "用户未登录"},
		{name: "令牌无效", cookie: "not-a-token", message: "无效的令牌"},
		{name: "签名算法不符", cookie: signToken(t, jwt.SigningMethodHS384, domain.RoleOrganizer), message: "无效的令牌"},
		{name: "有效令牌", cookie: signToken(t, jwt.SigningMethodHS256, domain.RoleOrganizer), success: true, message: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			h.auth(next).ServeHTTP(rec, req)

			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}

	assert.Equal(t, string(domain.RoleOrganizer), gotRole)
	assert.Equal(t, "42", gotSub)
}

func TestRequiredRole(t *testing.T) {
	h := newTestHandler(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.successResponse(w, r, "ok", nil)
	})
	mw := h.RequiredRole([]domain.Role{domain.RoleOrganizer})

	for role, allowed := range map[domain.Role]bool{domain.RoleOrganizer: true, domain.RoleReferee: false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), RoleCtxKey, string(role)))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		resp := decodeResponse(t, rec)
		assert.Equal(t, allowed, resp.Success, role)
		if !allowed {
			assert.Equal(t, "权限不足", resp.Message)
		}
	}
}

func TestTournamentMiddlewareRejectsInvalidID(t *testing.T) {
	h := newTestHandler(t)

	r := chi.NewRouter()
	r.With(h.tournament).Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("不应该到达这里")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tournaments/abc", nil))
	assert.Equal(t, "赛事ID无效", decodeResponse(t, rec).Message)
}

func TestLoginValidatesRequest(t *testing.T) {
	h := newTestHandler(t)
	h.RegisterRoutes()

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username": "admin"}`)))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "必填")
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	h := newTestHandler(t)
	h.RegisterRoutes()

	for _, path := range []string{"/my-info/", "/users/", "/tournaments/", "/tournaments/1/schedule/"} {
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, "用户未登录", decodeResponse(t, rec).Message, path)
	}
}

func withTournament(r *http.Request) *http.Request {
	t := &domain.Tournament{ID: 1, Name: "新生杯"}
	return r.WithContext(context.WithValue(r.Context(), TournamentCtx, t))
}

func TestGenerateScheduleValidatesParameters(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"克隆率超过 1", `{"cloneRate": 1.5}`},
		{"种群为 0", `{"populationSize": 0}`},
		{"权重为负", `{"restFairnessWeight": -1}`},
		{"请求体格式错误", `{"seed": "abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withTournament(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			rec := httptest.NewRecorder()
			h.GenerateSchedule(rec, req)
			assert.False(t, decodeResponse(t, rec).Success)
		})
	}
}

func TestSubmitScheduleValidatesMatches(t *testing.T) {
	h := newTestHandler(t)

	for _, body := range []string{
		`[]`,
		`[{"team1ID": 1, "team2ID": 2, "round": -1, "playgroundID": 1}]`,
		`[{"team1ID": 1, "round": 0, "playgroundID": 1}]`,
	} {
		req := withTournament(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		rec := httptest.NewRecorder()
		h.SubmitSchedule(rec, req)
		assert.False(t, decodeResponse(t, rec).Success, body)
	}
}

func TestUniqueViolationMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}, "用户名已存在"},
		{fmt.Errorf("插入失败: %w", &pgconn.PgError{Code: "23505", ConstraintName: "teams_tournament_id_name_key"}), "队名已存在"},
		{&pgconn.PgError{Code: "23505", ConstraintName: "playgrounds_tournament_id_name_key"}, "场地名称已存在"},
		{&pgconn.PgError{Code: "23505", ConstraintName: "unknown"}, ""},
		{errors.New("other"), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, uniqueViolationMessage(tt.err))
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("删除失败: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(errors.New("other")))
}

func TestCountRounds(t *testing.T) {
	assert.Equal(t, 0, countRounds(nil))
	assert.Equal(t, 3, countRounds([]*domain.Match{{Round: 0}, {Round: 2}, {Round: 1}}))
	assert.Equal(t, "schedule_lock_7", scheduleLockKey(7))
}

func TestIssueAndParseToken(t *testing.T) {
	h := newTestHandler(t)
	user := &domain.User{ID: 7, Role: domain.RoleReferee}

	cookie, err := h.issueToken(user, time.Now())
	require.NoError(t, err)
	assert.Equal(t, tokenCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)

	claims, err := h.parseToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleReferee), claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestIssueTokenSecureInProduction(t *testing.T) {
	h := newTestHandler(t)
	h.config.Environment = "production"

	cookie, err := h.issueToken(&domain.User{ID: 1, Role: domain.RoleOrganizer}, time.Now())
	require.NoError(t, err)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestParseTokenRejects(t *testing.T) {
	h := newTestHandler(t)

	// JWT.Expiration 为 1 小时，两小时前签发的令牌已经过期
	expired, err := h.issueToken(&domain.User{ID: 1, Role: domain.RoleOrganizer}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = h.parseToken(expired.Value)
	assert.Error(t, err)

	other := newTestHandler(t)
	other.config.JWT.Secret = "another-secret"
	foreign, err := other.issueToken(&domain.User{ID: 1, Role: domain.RoleOrganizer}, time.Now())
	require.NoError(t, err)
	_, err = h.parseToken(foreign.Value)
	assert.Error(t, err)

	noRole := signToken(t, jwt.SigningMethodHS256, "")
	_, err = h.parseToken(noRole)
	assert.Error(t, err)
}
