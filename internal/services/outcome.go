package services

// Outcome classifies how the webhook pipeline disposed of an incoming event.
// Every event resolves to exactly one outcome; handlers and metrics key off
// the string form.
type Outcome int

const (
	// OutcomeSent: a reply was generated and delivered.
	OutcomeSent Outcome = iota

	// OutcomeIgnoredEvent: the event name was not a message upsert.
	OutcomeIgnoredEvent

	// OutcomeIgnoredType: the message type carries no usable text.
	OutcomeIgnoredType

	// OutcomeNoText: the message matched a text type but the text was empty.
	OutcomeNoText

	// OutcomeUnauthorized: the sender is not on the allow list.
	OutcomeUnauthorized

	// OutcomeNoTrigger: the text does not contain the trigger word.
	OutcomeNoTrigger

	// OutcomeAnswerFailed: retrieval or generation failed.
	OutcomeAnswerFailed

	// OutcomeDeliveryFailed: the answer was produced but could not be sent.
	OutcomeDeliveryFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeIgnoredEvent:
		return "ignored_event"
	case OutcomeIgnoredType:
		return "ignored_type"
	case OutcomeNoText:
		return "no_text"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeNoTrigger:
		return "no_trigger"
	case OutcomeAnswerFailed:
		return "answer_failed"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}
