package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/http/api"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api/control/packets"
)

// TestSender delivers the notification-settings probe mail.
type TestSender interface {
	SendTest(to string) error
}

type NotifyController struct {
	sender TestSender
}

func NewNotifyController(sender TestSender) *NotifyController {
	return &NotifyController{sender: sender}
}

func NotifyModule(sender TestSender) api.Module {
	ctl := NewNotifyController(sender)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/test-email", ctl.testEmail)
	})
}

func (n *NotifyController) testEmail(ctx *gin.Context) (any, *api.APIError) {
	var request packets.TestEmailRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := n.sender.SendTest(request.Email); err != nil {
		log.Error().Err(err).Str("to", request.Email).Msg("test email failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: err.Error()}
	}

	return gin.H{"message": "test email sent", "to": request.Email}, nil
}
