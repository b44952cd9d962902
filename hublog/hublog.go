// Package hublog defines the structured log events the dispatcher emits,
// in the zerolog idiom: one short helper per event kind, each building its
// own set of fields rather than passing a free-form message string around.
package hublog

import (
	"github.com/rs/zerolog"
)

// Nop returns a logger that discards everything, for a Hub constructed
// without an explicit WithLogger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Subscribed logs a new subscription at debug level.
func Subscribed(log zerolog.Logger, subID uint64, extID uint64, eventType string, kind string) {
	log.Debug().
		Uint64("sub_id", subID).
		Uint64("ext_id", extID).
		Str("event_type", eventType).
		Str("kind", kind).
		Msg("evhub: subscribed")
}

// TopicTagged logs that a subscription was tagged with a diagnostic Topic
// at debug level.
func TopicTagged(log zerolog.Logger, subID uint64, topic string) {
	log.Debug().
		Uint64("sub_id", subID).
		Str("topic", topic).
		Msg("evhub: topic tagged")
}

// Unsubscribed logs a subscription's deactivation at debug level.
func Unsubscribed(log zerolog.Logger, subID uint64, eventType string) {
	log.Debug().
		Uint64("sub_id", subID).
		Str("event_type", eventType).
		Msg("evhub: unsubscribed")
}

// SubEndEmitted logs that the terminal control envelope was delivered to an
// AsyncTask subscription's own queue.
func SubEndEmitted(log zerolog.Logger, subID uint64) {
	log.Debug().
		Uint64("sub_id", subID).
		Msg("evhub: sub_end emitted")
}

// PublishFailed logs, at warn level, a Publish call that returned
// ErrAllocFailed — every matching subscription's queue was full — since it
// represents real dropped work rather than a caller mistake. The dispatcher
// also uses it, with matched set to 1, when a sync or async handler returns
// an error.
func PublishFailed(log zerolog.Logger, eventType string, matched int, err error) {
	log.Warn().
		Str("event_type", eventType).
		Int("matched", matched).
		Err(err).
		Msg("evhub: publish failed to enqueue any matching subscriber")
}

// BadArgument logs a Publish call rejected for a malformed event type or
// oversized payload, at error level — this is always a caller bug.
func BadArgument(log zerolog.Logger, eventType string, err error) {
	log.Error().
		Str("event_type", eventType).
		Err(err).
		Msg("evhub: publish rejected a bad argument")
}
