package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ittop-club/secret-santa-bot/internal/api/handler/v1/request"
	"github.com/ittop-club/secret-santa-bot/internal/api/handler/v1/response"
	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/service"
)

type RegistryService interface {
	Stats(ctx context.Context, year int) (domain.Stats, error)
	ListActive(ctx context.Context) ([]domain.Participant, error)
}

type DrawService interface {
	PerformDraw(ctx context.Context, year int) (int, error)
	ListPairs(ctx context.Context, year int) ([]domain.AssignmentPair, error)
	ClearPairs(ctx context.Context, year int) error
}

type RevealService interface {
	RevealOne(ctx context.Context, recipientID int64, year int, byAdmin bool) (string, bool, error)
	RevealAll(ctx context.Context, year int, byAdmin bool) (int, error)
}

type DispatchService interface {
	NotifyAssignments(ctx context.Context, year int) (int, error)
	NotifyReveals(ctx context.Context, year int, byAdmin bool) (int, error)
}

// AdminHandler exposes the organizer's actions over REST, mirroring the
// chat admin panel for automation and dashboards.
type AdminHandler struct {
	registry   RegistryService
	draw       DrawService
	reveal     RevealService
	dispatcher DispatchService
	year       func() int
}

func NewAdminHandler(registry RegistryService, draw DrawService, reveal RevealService, dispatcher DispatchService, year func() int) *AdminHandler {
	return &AdminHandler{
		registry:   registry,
		draw:       draw,
		reveal:     reveal,
		dispatcher: dispatcher,
		year:       year,
	}
}

// HandleGetStats godoc
// @Summary      Get game statistics
// @Description  Returns participant, pair and reveal counters for the current year
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.Stats
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/stats [get]
// @Security     AdminToken
func (h *AdminHandler) HandleGetStats(ctx *gin.Context) {
	stats, err := h.registry.Stats(ctx.Request.Context(), h.year())
	if err != nil {
		err = fmt.Errorf("HandleGetStats -> h.registry.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// HandleGetParticipants godoc
// @Summary      List active participants
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.Participant
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/participants [get]
// @Security     AdminToken
func (h *AdminHandler) HandleGetParticipants(ctx *gin.Context) {
	participants, err := h.registry.ListActive(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleGetParticipants -> h.registry.ListActive -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, participants)
}

// HandleGetPairs godoc
// @Summary      List santa-recipient pairs
// @Description  Returns the joined pair view for the current year
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.AssignmentPair
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/pairs [get]
// @Security     AdminToken
func (h *AdminHandler) HandleGetPairs(ctx *gin.Context) {
	pairs, err := h.draw.ListPairs(ctx.Request.Context(), h.year())
	if err != nil {
		err = fmt.Errorf("HandleGetPairs -> h.draw.ListPairs -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, pairs)
}

// HandlePerformDraw godoc
// @Summary      Run the draw
// @Description  Assigns every active participant a recipient for the current year
// @Tags         admin
// @Produce      json
// @Success      201  {object}  response.DrawResponse
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/draw [post]
// @Security     AdminToken
func (h *AdminHandler) HandlePerformDraw(ctx *gin.Context) {
	year := h.year()

	created, err := h.draw.PerformDraw(ctx.Request.Context(), year)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyDrawn):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrNotEnoughParticipants),
			errors.Is(err, service.ErrDerangementNotFound):
			response.RenderErr(ctx, response.NewErr(http.StatusUnprocessableEntity, err))
		default:
			err = fmt.Errorf("HandlePerformDraw -> h.draw.PerformDraw -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.DrawResponse{
		Year:         year,
		PairsCreated: created,
	})
}

// HandleNotify godoc
// @Summary      Send pending assignment notifications
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.NotifyResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/notify [post]
// @Security     AdminToken
func (h *AdminHandler) HandleNotify(ctx *gin.Context) {
	year := h.year()

	sent, err := h.dispatcher.NotifyAssignments(ctx.Request.Context(), year)
	if err != nil {
		err = fmt.Errorf("HandleNotify -> h.dispatcher.NotifyAssignments -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NotifyResponse{
		Year: year,
		Sent: sent,
	})
}

// HandleRevealOne godoc
// @Summary      Reveal one recipient's santa
// @Description  Discloses the santa for one recipient; idempotent per recipient and year
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.RevealOneRequest  true  "Recipient"
// @Success      200    {object}  response.RevealOneResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /admin/reveals/one [post]
// @Security     AdminToken
func (h *AdminHandler) HandleRevealOne(ctx *gin.Context) {
	var input request.RevealOneRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	santaName, newly, err := h.reveal.RevealOne(ctx.Request.Context(), input.RecipientID, h.year(), true)
	if err != nil {
		if errors.Is(err, service.ErrPairNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("assignment", "recipient_id", input.RecipientID))
			return
		}

		err = fmt.Errorf("HandleRevealOne -> h.reveal.RevealOne -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.RevealOneResponse{
		RecipientID:   input.RecipientID,
		SantaName:     santaName,
		NewlyRevealed: newly,
	})
}

// HandleRevealAll godoc
// @Summary      Reveal every santa
// @Description  Discloses all unrevealed pairs for the current year and notifies recipients
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.RevealAllResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/reveals [post]
// @Security     AdminToken
func (h *AdminHandler) HandleRevealAll(ctx *gin.Context) {
	year := h.year()

	revealed, err := h.reveal.RevealAll(ctx.Request.Context(), year, true)
	if err != nil {
		err = fmt.Errorf("HandleRevealAll -> h.reveal.RevealAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	notified := 0
	if revealed > 0 {
		notified, err = h.dispatcher.NotifyReveals(ctx.Request.Context(), year, true)
		if err != nil {
			err = fmt.Errorf("HandleRevealAll -> h.dispatcher.NotifyReveals -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
	}

	ctx.JSON(http.StatusOK, response.RevealAllResponse{
		Year:     year,
		Revealed: revealed,
		Notified: notified,
	})
}

// HandleClearPairs godoc
// @Summary      Clear the year's pairs
// @Description  Deletes every assignment and reveal for the current year so the draw can be redone
// @Tags         admin
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/pairs [delete]
// @Security     AdminToken
func (h *AdminHandler) HandleClearPairs(ctx *gin.Context) {
	if err := h.draw.ClearPairs(ctx.Request.Context(), h.year()); err != nil {
		err = fmt.Errorf("HandleClearPairs -> h.draw.ClearPairs -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
