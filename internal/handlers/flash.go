package handlers

import (
	"errors"
	"fmt"

	"movie-ratings/internal/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"
)

// Severity is the level of a status message shown after a redirect.
type Severity uint8

const (
	SeveritySuccess Severity = iota + 1
	SeverityWarning
	SeverityDanger
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeveritySuccess, SeverityWarning, SeverityDanger:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown severity %d", uint8(s))
	}
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*s = SeveritySuccess
	case "warning":
		*s = SeverityWarning
	case "danger":
		*s = SeverityDanger
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// severityOf picks the message level for a failed service call.
func severityOf(err error) Severity {
	if errors.Is(err, services.ErrNotFound) {
		return SeverityWarning
	}
	return SeverityDanger
}

type Flash struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

const flashKey = "flashes"

// Flasher queues messages in the visitor's session until the next page render.
type Flasher struct {
	store  *session.Store
	logger *logrus.Logger
}

func NewFlasher(store *session.Store, logger *logrus.Logger) *Flasher {
	return &Flasher{store: store, logger: logger}
}

func (f *Flasher) Add(c *fiber.Ctx, severity Severity, message string) {
	sess, err := f.store.Get(c)
	if err != nil {
		f.logger.WithError(err).Warn("Failed to load session for flash message")
		return
	}

	flashes := decodeFlashes(sess.Get(flashKey))
	flashes = append(flashes, Flash{Severity: severity, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		f.logger.WithError(err).Warn("Failed to encode flash messages")
		return
	}

	sess.Set(flashKey, string(raw))
	if err := sess.Save(); err != nil {
		f.logger.WithError(err).Warn("Failed to save session")
	}
}

// Pop returns and clears the queued messages.
func (f *Flasher) Pop(c *fiber.Ctx) []Flash {
	sess, err := f.store.Get(c)
	if err != nil {
		f.logger.WithError(err).Warn("Failed to load session for flash message")
		return nil
	}

	flashes := decodeFlashes(sess.Get(flashKey))
	if len(flashes) == 0 {
		return nil
	}

	sess.Delete(flashKey)
	if err := sess.Save(); err != nil {
		f.logger.WithError(err).Warn("Failed to save session")
	}
	return flashes
}

func decodeFlashes(v interface{}) []Flash {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}
