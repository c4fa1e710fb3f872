package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ittop-club/secret-santa-bot/internal/api/handler/v1/response"
	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/service"
)

type stubRegistry struct {
	stats        domain.Stats
	participants []domain.Participant
	err          error
}

func (s *stubRegistry) Stats(context.Context, int) (domain.Stats, error) {
	return s.stats, s.err
}

func (s *stubRegistry) ListActive(context.Context) ([]domain.Participant, error) {
	return s.participants, s.err
}

type stubDraw struct {
	created int
	pairs   []domain.AssignmentPair
	err     error
	cleared int
}

func (s *stubDraw) PerformDraw(context.Context, int) (int, error) {
	return s.created, s.err
}

func (s *stubDraw) ListPairs(context.Context, int) ([]domain.AssignmentPair, error) {
	return s.pairs, s.err
}

func (s *stubDraw) ClearPairs(context.Context, int) error {
	s.cleared++
	return s.err
}

type stubReveal struct {
	santaName string
	newly     bool
	revealed  int
	err       error
}

func (s *stubReveal) RevealOne(context.Context, int64, int, bool) (string, bool, error) {
	return s.santaName, s.newly, s.err
}

func (s *stubReveal) RevealAll(context.Context, int, bool) (int, error) {
	return s.revealed, s.err
}

type stubDispatch struct {
	sent        int
	notified    int
	revealCalls int
}

func (s *stubDispatch) NotifyAssignments(context.Context, int) (int, error) {
	return s.sent, nil
}

func (s *stubDispatch) NotifyReveals(context.Context, int, bool) (int, error) {
	s.revealCalls++
	return s.notified, nil
}

type handlerFixture struct {
	registry   *stubRegistry
	draw       *stubDraw
	reveal     *stubReveal
	dispatcher *stubDispatch
	router     *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		registry:   &stubRegistry{},
		draw:       &stubDraw{},
		reveal:     &stubReveal{},
		dispatcher: &stubDispatch{},
	}

	h := NewAdminHandler(f.registry, f.draw, f.reveal, f.dispatcher, func() int { return 2025 })

	f.router = gin.New()
	f.router.GET("/admin/stats", h.HandleGetStats)
	f.router.GET("/admin/participants", h.HandleGetParticipants)
	f.router.GET("/admin/pairs", h.HandleGetPairs)
	f.router.POST("/admin/draw", h.HandlePerformDraw)
	f.router.POST("/admin/notify", h.HandleNotify)
	f.router.POST("/admin/reveals", h.HandleRevealAll)
	f.router.POST("/admin/reveals/one", h.HandleRevealOne)
	f.router.DELETE("/admin/pairs", h.HandleClearPairs)

	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestHandleGetStats(t *testing.T) {
	f := newHandlerFixture(t)
	f.registry.stats = domain.Stats{TotalParticipants: 5, ActiveParticipants: 4, TotalPairs: 4, TotalRevealed: 1}

	rec := f.do(t, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, f.registry.stats, got)
}

func TestHandlePerformDraw(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.draw.created = 4

		rec := f.do(t, http.MethodPost, "/admin/draw", nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		var got response.DrawResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 2025, got.Year)
		assert.Equal(t, 4, got.PairsCreated)
	})

	t.Run("already drawn is a conflict", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.draw.err = service.ErrAlreadyDrawn

		rec := f.do(t, http.MethodPost, "/admin/draw", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("too few participants is unprocessable", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.draw.err = service.ErrNotEnoughParticipants

		rec := f.do(t, http.MethodPost, "/admin/draw", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.draw.err = errors.New("disk on fire")

		rec := f.do(t, http.MethodPost, "/admin/draw", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "disk on fire", "internal detail must not leak")
	})
}

func TestHandleRevealOne(t *testing.T) {
	t.Run("discloses the santa", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.reveal.santaName = "Anna Frost"
		f.reveal.newly = true

		rec := f.do(t, http.MethodPost, "/admin/reveals/one", map[string]any{"recipient_id": 42})
		require.Equal(t, http.StatusOK, rec.Code)

		var got response.RevealOneResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(42), got.RecipientID)
		assert.Equal(t, "Anna Frost", got.SantaName)
		assert.True(t, got.NewlyRevealed)
	})

	t.Run("unknown recipient is not found", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.reveal.err = service.ErrPairNotFound

		rec := f.do(t, http.MethodPost, "/admin/reveals/one", map[string]any{"recipient_id": 42})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing recipient id is a bad request", func(t *testing.T) {
		f := newHandlerFixture(t)

		rec := f.do(t, http.MethodPost, "/admin/reveals/one", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/admin/reveals/one", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRevealAll(t *testing.T) {
	t.Run("reveals and notifies", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.reveal.revealed = 3
		f.dispatcher.notified = 3

		rec := f.do(t, http.MethodPost, "/admin/reveals", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got response.RevealAllResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 3, got.Revealed)
		assert.Equal(t, 3, got.Notified)
		assert.Equal(t, 1, f.dispatcher.revealCalls)
	})

	t.Run("nothing to reveal skips notification", func(t *testing.T) {
		f := newHandlerFixture(t)

		rec := f.do(t, http.MethodPost, "/admin/reveals", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, f.dispatcher.revealCalls)
	})
}

func TestHandleClearPairs(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodDelete, "/admin/pairs", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, f.draw.cleared)
}
