// Package narrate is the announcement sink for spoken/visible feedback.
// Announcements are fire-and-forget: they never block a ledger mutation and
// their failures are swallowed. A text-to-speech client would implement
// Announcer; the shipped implementations log or discard.
package narrate

import "github.com/sirupsen/logrus"

// Announcer receives one-line announcements about ledger activity.
type Announcer interface {
	Announce(text string)
}

// Log announces through a logrus logger.
type Log struct {
	Logger logrus.FieldLogger
}

func (l Log) Announce(text string) {
	if l.Logger == nil {
		return
	}
	l.Logger.WithField("announce", true).Info(text)
}

// Discard swallows all announcements.
type Discard struct{}

func (Discard) Announce(string) {}
