// Package events holds the topics and payloads exchanged over the event bus.
package events

import "time"

// Stream topics.
const (
	// MessageReceivedV1 carries every inbound chat message.
	MessageReceivedV1 = "step.message.received.v1"
	// ReplyRequestedV1 asks the chat transport to answer a message.
	ReplyRequestedV1 = "step.reply.requested.v1"
	// AwardsRequestedV1 triggers a medal run for one day.
	AwardsRequestedV1 = "step.awards.requested.v1"
	// AwardsPublishedV1 carries the medal summary of a finished run.
	AwardsPublishedV1 = "step.awards.published.v1"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "02.01.2006"

// MessageReceivedPayloadV1 is a chat message as delivered by the transport.
type MessageReceivedPayloadV1 struct {
	ChatID    int64     `json:"chat_id"`
	MessageID int64     `json:"message_id"`
	SenderID  int64     `json:"sender_id"`
	Username  string    `json:"username,omitempty"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
}

// ReplyRequestedPayloadV1 is a text answer to a chat message. A zero
// ReplyToMessageID posts a standalone message.
type ReplyRequestedPayloadV1 struct {
	ChatID           int64  `json:"chat_id"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
	Text             string `json:"text"`
}

// AwardsRequestedPayloadV1 asks for a medal run. An empty Date means
// yesterday in the award timezone.
type AwardsRequestedPayloadV1 struct {
	Date string `json:"date,omitempty"`
}

// AwardV1 is one medal in a published summary.
type AwardV1 struct {
	Identity string `json:"identity"`
	Rank     int    `json:"rank"`
	Medal    string `json:"medal"`
	Symbol   string `json:"symbol"`
	Steps    int    `json:"steps"`
}

// AwardsPublishedPayloadV1 is the outcome of a medal run.
type AwardsPublishedPayloadV1 struct {
	Date               string    `json:"date"`
	Text               string    `json:"text,omitempty"`
	Awards             []AwardV1 `json:"awards"`
	AnnotationFailures int       `json:"annotation_failures,omitempty"`
}
