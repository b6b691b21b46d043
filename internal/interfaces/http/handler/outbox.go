package handler

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OutboxHandler exposes outbox inspection and dead letter management
type OutboxHandler struct {
	BaseHandler
	outboxRepo shared.OutboxRepository
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(outboxRepo shared.OutboxRepository) *OutboxHandler {
	return &OutboxHandler{outboxRepo: outboxRepo}
}

// OutboxEntryResponse represents an outbox entry in API responses
type OutboxEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toOutboxEntryResponse(e *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
	}
}

// GetStats godoc
// @Summary      Outbox status counts
// @Tags         outbox
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /system/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	counts, err := h.outboxRepo.CountByStatus(c.Request.Context())
	if err != nil {
		h.InternalError(c, "Failed to count outbox entries")
		return
	}

	h.Success(c, counts)
}

// outboxListQuery carries pagination for dead letter listing
type outboxListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetDeadLetterEntries godoc
// @Summary      List dead letter entries
// @Tags         outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response
// @Router       /system/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	var query outboxListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}

	entries, total, err := h.outboxRepo.FindDead(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		h.InternalError(c, "Failed to list dead letter entries")
		return
	}

	responses := make([]OutboxEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = toOutboxEntryResponse(e)
	}

	h.SuccessWithMeta(c, responses, total, query.Page, query.PageSize)
}

// RetryDeadLetterEntry godoc
// @Summary      Requeue a dead letter entry
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox entry ID"
// @Success      200 {object} dto.Response
// @Router       /system/outbox/dead/{id}/retry [post]
func (h *OutboxHandler) RetryDeadLetterEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid outbox entry ID")
		return
	}

	entry, err := h.outboxRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := entry.ResetForRetry(); err != nil {
		h.Conflict(c, err.Error())
		return
	}

	if err := h.outboxRepo.Update(c.Request.Context(), entry); err != nil {
		h.InternalError(c, "Failed to requeue entry")
		return
	}

	h.Success(c, toOutboxEntryResponse(entry))
}
