package reminder

import (
	log "github.com/sirupsen/logrus"

	"github.com/duetplan/duetplan/pkg/event"
)

// Notifier delivers a due reminder to a user. Delivery channels (push,
// mail) plug in here; the default just writes a structured log line.
type Notifier interface {
	Notify(userUid string, e event.Event)
}

type LogNotifier struct{}

func (LogNotifier) Notify(userUid string, e event.Event) {
	log.WithFields(log.Fields{
		"user":  userUid,
		"event": e.ID,
		"time":  e.Time,
	}).Infof("Reminder: %s", e.Title)
}
