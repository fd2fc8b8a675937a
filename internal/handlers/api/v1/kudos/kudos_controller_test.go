package kudos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kudospot/internal/middleware"
	"kudospot/internal/models"
	"kudospot/internal/response"
	"kudospot/internal/services"
)

// mockKudoService is a simplified mock implementation for testing
type mockKudoService struct {
	createdWith *services.CreateKudoRequest
	toggleKudo  int64
	toggleUser  int64
	failWith    error
}

func (m *mockKudoService) CreateKudo(ctx context.Context, req *services.CreateKudoRequest) (*models.Kudo, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.createdWith = req
	return &models.Kudo{
		ID:         7,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Message:    req.Message,
		Category:   req.Category,
		LikedBy:    []int64{},
	}, nil
}

func (m *mockKudoService) ListKudos(ctx context.Context) ([]*models.Kudo, error) {
	return []*models.Kudo{{ID: 2}, {ID: 1}}, nil
}

func (m *mockKudoService) ListUserKudos(ctx context.Context, userID int64) ([]*models.Kudo, error) {
	return []*models.Kudo{{ID: 1, ToUserID: userID}}, nil
}

func (m *mockKudoService) ToggleLike(ctx context.Context, kudoID, userID int64) (*models.Kudo, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.toggleKudo = kudoID
	m.toggleUser = userID
	return &models.Kudo{ID: kudoID, LikedBy: []int64{userID}}, nil
}

func (m *mockKudoService) GetStats(ctx context.Context, userID int64) (*services.StatsResponse, error) {
	return &services.StatsResponse{ReceivedCount: 3, GivenCount: 1}, nil
}

func newTestController(svc services.KudoService) *KudoController {
	sc := &services.ServiceCollection{KudoService: svc}
	return NewKudoController(sc, zap.NewNop(), response.NewBuilder(zap.NewNop()))
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.AuthContextKey, &middleware.AuthContext{UserID: 42})
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()
	var envelope response.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestCreateKudoSetsSenderFromAuth(t *testing.T) {
	mock := &mockKudoService{}
	controller := newTestController(mock)

	body := `{"to": 9, "message": "great work", "category": "Teamwork", "from": 1}`
	rec := httptest.NewRecorder()
	controller.CreateKudo(rec, authedRequest(http.MethodPost, "/api/v1/kudos", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, mock.createdWith)
	// The sender comes from the token, never the body.
	assert.Equal(t, int64(42), mock.createdWith.FromUserID)
	assert.Equal(t, int64(9), mock.createdWith.ToUserID)

	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
}

func TestCreateKudoRequiresAuth(t *testing.T) {
	controller := newTestController(&mockKudoService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/kudos", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	controller.CreateKudo(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateKudoBadJSON(t *testing.T) {
	controller := newTestController(&mockKudoService{})

	rec := httptest.NewRecorder()
	controller.CreateKudo(rec, authedRequest(http.MethodPost, "/api/v1/kudos", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Type)
}

func TestCreateKudoServiceErrorMapped(t *testing.T) {
	mock := &mockKudoService{failWith: services.NewNotFoundError("recipient user 9 not found")}
	controller := newTestController(mock)

	body := `{"to": 9, "message": "great work", "category": "Teamwork"}`
	rec := httptest.NewRecorder()
	controller.CreateKudo(rec, authedRequest(http.MethodPost, "/api/v1/kudos", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Type)
}

func TestToggleLikeParsesPathValue(t *testing.T) {
	mock := &mockKudoService{}
	controller := newTestController(mock)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/kudos/{id}/like", controller.ToggleLike)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/kudos/5/like", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), mock.toggleKudo)
	assert.Equal(t, int64(42), mock.toggleUser)
}

func TestToggleLikeInvalidID(t *testing.T) {
	controller := newTestController(&mockKudoService{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/kudos/{id}/like", controller.ToggleLike)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/kudos/abc/like", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsForCaller(t *testing.T) {
	controller := newTestController(&mockKudoService{})

	rec := httptest.NewRecorder()
	controller.GetStats(rec, authedRequest(http.MethodGet, "/api/v1/kudos/stats", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
}
