package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hire-match/internal/config"
	"hire-match/internal/delivery/http/dto"
	"hire-match/internal/domain/actor"
)

type envelope struct {
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *App
}

func testConfig() config.Config {
	return config.Config{
		App:     config.AppConfig{AppName: "hire-match-test", Environment: "test", HTTPPort: "0"},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		Guard:   config.GuardConfig{Backend: config.GuardLocal, LockTimeout: time.Second},
		JWT:     config.JWTConfig{Secret: "test-secret", Issuer: "hire-match", ExpiresIn: time.Hour},
		Scoring: config.ScoringConfig{SkillWeight: 0.6, CompensationWeight: 0.25, LocationWeight: 0.15},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c, err := NewContainer(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return &harness{t: t, app: New(c)}
}

func (h *harness) token(a actor.Actor) string {
	h.t.Helper()
	tok, err := h.app.Container.JWT.GenerateAccessToken(a)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path string, a *actor.Actor, body any) (int, envelope) {
	h.t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a != nil {
		req.Header.Set("Authorization", "Bearer "+h.token(*a))
	}

	resp, err := h.app.Fiber.Test(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(h.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (h *harness) seedBusiness() actor.Actor {
	h.t.Helper()
	biz := actor.Actor{ID: uuid.New(), Role: actor.RoleBusiness}
	status, _ := h.do(http.MethodPut, "/api/v1/me/business", &biz, dto.UpsertBusinessRequest{Name: "Acme", Location: "Berlin"})
	require.Equal(h.t, http.StatusOK, status)
	return biz
}

func (h *harness) seedProfessional() actor.Actor {
	h.t.Helper()
	pro := actor.Actor{ID: uuid.New(), Role: actor.RoleProfessional}
	status, _ := h.do(http.MethodPut, "/api/v1/me/professional", &pro, dto.UpsertProfessionalRequest{
		DisplayName:     "Dana",
		Skills:          []dto.SkillRequest{{Name: "Go", Level: "expert"}, {Name: "SQL", Level: "intermediate"}},
		Location:        "Berlin",
		MinCompensation: 70000,
	})
	require.Equal(h.t, http.StatusOK, status)
	return pro
}

func (h *harness) seedPosition(biz actor.Actor, capacity int) dto.PositionResponse {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/api/v1/positions", &biz, dto.CreatePositionRequest{
		Title:           "Backend Engineer",
		Location:        "Berlin",
		RequiredSkills:  []dto.RequiredSkillRequest{{Name: "Go", MinLevel: "advanced"}},
		CompensationMin: 60000,
		CompensationMax: 90000,
		Capacity:        capacity,
	})
	require.Equal(h.t, http.StatusCreated, status, env.Message)
	return decode[dto.PositionResponse](h.t, env)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env.Message)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.app.Fiber.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodGet, "/api/v1/me/applications", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthenticated", env.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/applications", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := h.app.Fiber.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	biz := h.seedBusiness()
	pro := h.seedProfessional()
	other := h.seedProfessional()
	pos := h.seedPosition(biz, 1)

	status, env := h.do(http.MethodGet, "/api/v1/matches/positions", &pro, nil)
	require.Equal(t, http.StatusOK, status)
	matches := decode[[]dto.PositionMatchResponse](t, env)
	require.Len(t, matches, 1)
	assert.Equal(t, pos.ID, matches[0].Position.ID)
	assert.Equal(t, 1, matches[0].Rank)
	assert.Nil(t, matches[0].Application)

	status, env = h.do(http.MethodPost, "/api/v1/positions/"+pos.ID.String()+"/applications", &pro, nil)
	require.Equal(t, http.StatusCreated, status, env.Message)
	app := decode[dto.ApplicationResponse](t, env)
	assert.Equal(t, "submitted", app.State)
	assert.Greater(t, app.ScoreSnapshot, 0.0)

	status, env = h.do(http.MethodPost, "/api/v1/positions/"+pos.ID.String()+"/applications", &pro, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_transition", env.Code)

	status, env = h.do(http.MethodPost, "/api/v1/positions/"+pos.ID.String()+"/applications", &other, nil)
	require.Equal(t, http.StatusCreated, status, env.Message)
	otherApp := decode[dto.ApplicationResponse](t, env)

	status, env = h.do(http.MethodGet, "/api/v1/matches/positions", &pro, nil)
	require.Equal(t, http.StatusOK, status)
	matches = decode[[]dto.PositionMatchResponse](t, env)
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].Application)
	assert.Equal(t, app.ID, matches[0].Application.ID)

	appPath := "/api/v1/applications/" + app.ID.String()

	status, env = h.do(http.MethodPost, appPath+"/accept", &pro, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/positions/"+pos.ID.String()+"/applicants", &biz, nil)
	require.Equal(t, http.StatusOK, status)
	applicants := decode[[]dto.ApplicantMatchResponse](t, env)
	assert.Len(t, applicants, 2)

	status, _ = h.do(http.MethodPost, appPath+"/review", &biz, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, appPath+"/accept", &biz, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	accepted := decode[dto.AcceptResponse](t, env)
	assert.Equal(t, "accepted", accepted.Application.State)
	assert.Equal(t, 0, accepted.Position.RemainingCapacity)
	assert.Equal(t, []uuid.UUID{otherApp.ID}, accepted.CascadeRejected)

	status, env = h.do(http.MethodGet, appPath+"/audit", &pro, nil)
	require.Equal(t, http.StatusOK, status)
	trail := decode[[]dto.AuditEntryResponse](t, env)
	require.Len(t, trail, 3)
	assert.Equal(t, "submit", trail[0].Event)
	assert.Equal(t, "accepted", trail[2].To)

	status, env = h.do(http.MethodGet, "/api/v1/applications/"+otherApp.ID.String(), &other, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rejected", decode[dto.ApplicationResponse](t, env).State)

	status, env = h.do(http.MethodGet, "/api/v1/applications/"+otherApp.ID.String(), &pro, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/professionals/"+pro.ID.String(), &biz, nil)
	require.Equal(t, http.StatusOK, status)
	view := decode[dto.ProfessionalResponse](t, env)
	require.NotNil(t, view.ActiveApplications)
	assert.Equal(t, 0, *view.ActiveApplications)
}

func TestWithdrawOverHTTP(t *testing.T) {
	h := newHarness(t)
	biz := h.seedBusiness()
	pro := h.seedProfessional()
	pos := h.seedPosition(biz, 2)

	status, env := h.do(http.MethodPost, "/api/v1/positions/"+pos.ID.String()+"/applications", &pro, nil)
	require.Equal(t, http.StatusCreated, status)
	app := decode[dto.ApplicationResponse](t, env)

	status, env = h.do(http.MethodPost, "/api/v1/applications/"+app.ID.String()+"/withdraw", &pro, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "withdrawn", decode[dto.ApplicationResponse](t, env).State)

	status, env = h.do(http.MethodPost, "/api/v1/applications/"+app.ID.String()+"/withdraw", &pro, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_transition", env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/me/applications", &pro, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]dto.ApplicationResponse](t, env), 1)
}

func TestPositionCatalogOverHTTP(t *testing.T) {
	h := newHarness(t)
	biz := h.seedBusiness()
	pos := h.seedPosition(biz, 1)
	base := "/api/v1/positions/" + pos.ID.String()

	status, env := h.do(http.MethodPost, base+"/pause", &biz, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paused", decode[dto.PositionResponse](t, env).Status)

	intruder := h.seedBusiness()
	status, env = h.do(http.MethodPost, base+"/reopen", &intruder, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", env.Code)

	status, env = h.do(http.MethodPost, base+"/reopen", &biz, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "open", decode[dto.PositionResponse](t, env).Status)

	status, env = h.do(http.MethodGet, "/api/v1/me/positions", &biz, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]dto.PositionResponse](t, env), 1)
}

func TestRequestValidation(t *testing.T) {
	h := newHarness(t)
	biz := h.seedBusiness()
	pro := h.seedProfessional()

	status, env := h.do(http.MethodPost, "/api/v1/positions", &biz, dto.CreatePositionRequest{Title: "No capacity"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", env.Code)

	status, env = h.do(http.MethodPost, "/api/v1/positions", &biz, dto.CreatePositionRequest{
		Title:          "Bad level",
		Capacity:       1,
		RequiredSkills: []dto.RequiredSkillRequest{{Name: "Go", MinLevel: "guru"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", env.Code)

	status, env = h.do(http.MethodPost, "/api/v1/applications/not-a-uuid/accept", &biz, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/matches/positions?min_score=2", &pro, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", env.Code)

	status, env = h.do(http.MethodPost, "/api/v1/positions/"+uuid.NewString()+"/applications", &pro, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", env.Code)
}

func TestListenAddr(t *testing.T) {
	addr, err := ListenAddr("8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)

	addr, err = ListenAddr(":9090")
	require.NoError(t, err)
	assert.Equal(t, ":9090", addr)

	_, err = ListenAddr("  ")
	assert.Error(t, err)
}

func TestNewContainerRejectsUnknownDrivers(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "sqlite"
	_, err := NewContainer(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Guard.Backend = "etcd"
	_, err = NewContainer(context.Background(), cfg, nil)
	assert.Error(t, err)
}
