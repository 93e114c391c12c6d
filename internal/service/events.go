package service

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Envelope type discriminators delivered over a connection. Payloads carry
// the entity fields alongside the "type" key.
const (
	EventConnectionConfirmed = "connection_confirmed"
	EventNewMessage          = "new_message"
	EventMessageEdited       = "message_edited"
	EventMessageDeleted      = "message_deleted"
	EventReactionAdded       = "reaction_added"
	EventReactionRemoved     = "reaction_removed"
	EventUserJoined          = "user_joined"
	EventUserLeft            = "user_left"
	EventTypingIndicator     = "typing_indicator"
	EventPresenceUpdate      = "presence_update"
	EventNotification        = "notification"
)

// Envelope flattens v's JSON fields into a {type, ...} payload ready for
// the registry. Marshal failures cannot happen for the entity types used
// here; they are logged and yield nil, which the hub drops.
func Envelope(eventType string, v interface{}) []byte {
	fields := map[string]interface{}{}
	if v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			logrus.WithError(err).WithField("event", eventType).Error("Failed to marshal envelope payload")
			return nil
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			logrus.WithError(err).WithField("event", eventType).Error("Failed to flatten envelope payload")
			return nil
		}
	}
	fields["type"] = eventType
	out, err := json.Marshal(fields)
	if err != nil {
		logrus.WithError(err).WithField("event", eventType).Error("Failed to marshal envelope")
		return nil
	}
	return out
}
