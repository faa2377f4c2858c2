package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
	"github.com/jwalitptl/mediqueue/pkg/messaging"
)

const defaultHeartbeat = 25 * time.Second

// Handler relays broker events to browsers as Server-Sent Events.
type Handler struct {
	broker    messaging.Broker
	heartbeat time.Duration
	logger    zerolog.Logger
}

func NewHandler(broker messaging.Broker, logger zerolog.Logger) *Handler {
	return &Handler{
		broker:    broker,
		heartbeat: defaultHeartbeat,
		logger:    logger.With().Str("component", "stream").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	r.Public.GET("/stream", h.Stream)
}

// Stream sends every event, or only those of ?doctor_id= when given.
// Events without a doctor (settings changes) always pass the filter.
func (h *Handler) Stream(c *gin.Context) {
	var filter *uuid.UUID
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithBadRequest(c, "invalid doctor_id")
			return
		}
		filter = &id
	}

	ctx := c.Request.Context()
	messages, err := h.broker.Subscribe(ctx, model.EventsChannel)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to subscribe to events")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, httputil.NewErrorResponse("event stream unavailable"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			var event model.Event
			if err := json.Unmarshal(msg, &event); err != nil {
				h.logger.Warn().Err(err).Msg("dropping malformed event")
				return true
			}
			if filter != nil && event.DoctorID != nil && *event.DoctorID != *filter {
				return true
			}
			c.SSEvent(event.Type, json.RawMessage(msg))
			return true
		}
	})
}
