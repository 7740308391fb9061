package service

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/campus-lostfound/internal/goroutine"
	"github.com/ignatzorin/campus-lostfound/internal/logger"
)

// События, которые получают клиенты по WebSocket.
const (
	EventMatchSuggested = "match.suggested"
	EventClaimUpdated   = "claim.updated"
)

// Notifier доставляет события пользователю. Реализуется ws.Hub.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// notifyAsync отправляет событие в фоне, ошибки доставки только логируются.
func notifyAsync(n Notifier, userID uuid.UUID, event string, data any) {
	if n == nil {
		return
	}
	goroutine.SafeGo(func() {
		if err := n.BroadcastToUser(userID, event, data); err != nil {
			logger.WithComponent("notifier").WithFields(logrus.Fields{
				"user_id": userID,
				"event":   event,
			}).WithError(err).Warn("не удалось отправить событие")
		}
	})
}
