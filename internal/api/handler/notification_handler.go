package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

type NotificationFeed interface {
	Recent() []domain.Notification
}

type NotificationHandler struct {
	feed NotificationFeed
}

func NewNotificationHandler(feed NotificationFeed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List returns the most recent notifications, newest first.
//
// @Summary      Recent notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {array}  domain.Notification
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	items := h.feed.Recent()
	if items == nil {
		items = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, items)
}
