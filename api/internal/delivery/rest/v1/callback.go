// PROVIDER WEBHOOK ROUTES

package v1

import (
	"net/http"

	"pesagate/api/internal/domain"
	"pesagate/api/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initCallbackRoutes(g *gin.RouterGroup) {
	g.POST("/mpesa/callback", h.providerCallback)
	g.GET("/mpesa/callback", h.callbackLiveness)
}

// POST /v1/mpesa/callback
//
// The provider must always get a 200 back, an error response would trigger
// a retry storm. Internal failures are logged and swallowed.
func (h *Handler) providerCallback(c *gin.Context) {
	meta := domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		URL:       h.config.PublicBaseUrl + c.Request.URL.Path,
	}

	payload, err := c.GetRawData()

	// audit trail for every delivery, parseable or not
	h.log.Info("callback delivery", logger.LS_CALLBACKS, false,
		"ip", meta.IP, "user_agent", meta.UserAgent, "bytes", len(payload), "uri", c.Request.RequestURI)

	if err == nil {
		// ingestion failures are logged inside, the ack never changes
		_, _ = h.services.Callbacks.Ingest(h.db, payload, meta)
	} else {
		h.log.TemplCallbackWarn("read callback body error: "+err.Error(), logger.GenErrorId(), meta.IP, nil)
	}

	c.JSON(http.StatusOK, responseCallbackAck{Success: true, Message: domain.MsgCallbackReceived})
}

// GET /v1/mpesa/callback
func (h *Handler) callbackLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, responseCallbackAck{Success: true, Message: "Callback endpoint is active"})
}
