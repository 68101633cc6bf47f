package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
	"github.com/niranjan-aware/resonance-system/internal/pkg/response"
	"github.com/niranjan-aware/resonance-system/internal/repository"
)

type Handler struct {
	log         *repository.NotificationLogRepository
	verifyToken string
}

func NewHandler(log *repository.NotificationLogRepository, verifyToken string) *Handler {
	return &Handler{log: log, verifyToken: verifyToken}
}

// RegisterRoutes mounts the Meta webhook endpoints on the public group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/webhooks/whatsapp", h.VerifyWebhook)
	rg.POST("/webhooks/whatsapp", h.ReceiveWebhook)
}

// RegisterAdminRoutes exposes the per-reservation delivery history.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/reservations/:id/notifications", h.ListByReservation)
}

// VerifyWebhook answers the Meta subscription handshake: echo the challenge
// when the verify token matches.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		response.Error(c, http.StatusForbidden, "VERIFY_FAILED", "Webhook verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Statuses []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ReceiveWebhook applies delivery-status updates (sent/delivered/read/failed)
// to the attempt log. Always answers 200: Meta retries on anything else and
// a malformed entry will never become well-formed.
func (h *Handler) ReceiveWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusOK)
		return
	}

	ctx := c.Request.Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, st := range change.Value.Statuses {
				status := domain.DeliveryStatus(st.Status)
				switch status {
				case domain.DeliverySent, domain.DeliveryDelivered, domain.DeliveryRead, domain.DeliveryFailed:
				default:
					continue
				}
				err := h.log.UpdateStatusByMessageID(ctx, st.ID, status)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					logger.ErrorLogger.WithField("message_id", st.ID).Errorf("applying status callback: %v", err)
				}
			}
		}
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ListByReservation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return
	}

	records, err := h.log.ListByReservation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notification history")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications": records,
		"count":         len(records),
	})
}
