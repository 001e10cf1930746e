package database

import (
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ConnectNATS dials the message broker used for workflow notifications. An
// empty URL is not an error: the notifier degrades to a no-op so the API can
// run without a broker.
func ConnectNATS(url string, logger zerolog.Logger) *nats.Conn {
	if url == "" {
		return nil
	}

	conn, err := nats.Connect(url, nats.Name("eventhub-api"))
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("nats unavailable, notifications disabled")
		return nil
	}

	return conn
}
