package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// Notifier publishes workflow transitions for downstream consumers, such as
// the Telegram notification bot. Publishing is best effort and never blocks a
// workflow: failures are logged, not returned.
type Notifier interface {
	UserApproved(user models.User)
	UserRejected(user models.User, reason string)
	EventCreated(event models.Event)
	StudentRegistered(student models.User, event models.Event)
	StudentUnregistered(student models.User, event models.Event)
}

type natsNotifier struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

type notifierMessage struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// NewNotifier builds a NATS-backed notifier. A nil connection yields a no-op
// publisher so local setups can run without a broker.
func NewNotifier(conn *nats.Conn, subjectBase string, logger zerolog.Logger) Notifier {
	if subjectBase == "" {
		subjectBase = "eventhub"
	}

	return &natsNotifier{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *natsNotifier) UserApproved(user models.User) {
	n.publish("users.approved", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
	})
}

func (n *natsNotifier) UserRejected(user models.User, reason string) {
	n.publish("users.rejected", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"reason":  reason,
	})
}

func (n *natsNotifier) EventCreated(event models.Event) {
	n.publish("events.created", map[string]interface{}{
		"event_id":   event.ID,
		"title":      event.Title,
		"start_time": event.StartTime,
		"company_id": event.CompanyID,
	})
}

func (n *natsNotifier) StudentRegistered(student models.User, event models.Event) {
	n.publish("events.registered", map[string]interface{}{
		"event_id":   event.ID,
		"title":      event.Title,
		"student_id": student.ID,
		"email":      student.Email,
	})
}

func (n *natsNotifier) StudentUnregistered(student models.User, event models.Event) {
	n.publish("events.unregistered", map[string]interface{}{
		"event_id":   event.ID,
		"title":      event.Title,
		"student_id": student.ID,
		"email":      student.Email,
	})
}

func (n *natsNotifier) publish(kind string, payload interface{}) {
	if n.conn == nil {
		return
	}

	message := notifierMessage{Kind: kind, Payload: payload, SentAt: time.Now().UTC()}
	data, err := json.Marshal(message)
	if err != nil {
		n.logger.Error().Err(err).Str("kind", kind).Msg("failed to encode notification")
		return
	}

	subject := n.subjectBase + "." + kind
	if err := n.conn.Publish(subject, data); err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish notification")
	}
}
