package listeners

import (
	"context"
	"fmt"

	"suraksha/internal/models"
	"suraksha/pkg/logger"
	"suraksha/pkg/notification"
	"suraksha/pkg/util"

	"go.uber.org/zap"
)

// InitSessionListeners wires the alert fan-out: every activated session
// alerts its snapshot contacts over SMS with a maps link when coordinates
// are known, and pushes to the user's companion devices.
func InitSessionListeners(sms *notification.SMS, push *notification.Push) {
	util.Sig().Connect(models.SigSessionCreate, func(sender any, params ...any) {
		session, ok := sender.(*models.EmergencySession)
		if !ok {
			return
		}

		mapsURL := ""
		if session.LocationLat != nil && session.LocationLng != nil {
			mapsURL = fmt.Sprintf("https://www.google.com/maps?q=%f,%f", *session.LocationLat, *session.LocationLng)
		}

		for _, contact := range session.EmergencyContacts {
			contact := contact
			go func() {
				err := sms.SendAlert(context.Background(), contact.Phone, contact.Name, mapsURL)
				if err != nil {
					logger.Warn("contact alert failed",
						zap.String("session", session.ID),
						zap.String("phone", contact.Phone),
						zap.Error(err))
				}
			}()
		}

		go func() {
			alias := fmt.Sprintf("user-%d", session.UserID)
			if err := push.SessionActivated(context.Background(), []string{alias}, session.ID, mapsURL); err != nil {
				logger.Warn("device push failed", zap.String("session", session.ID), zap.Error(err))
			}
		}()
	})
}
