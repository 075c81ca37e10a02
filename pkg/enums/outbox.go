package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateContract      OutboxAggregateType = "contract"
	AggregateProgressState OutboxAggregateType = "progress_state"
	AggregateQuote         OutboxAggregateType = "quote"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateContract,
	AggregateProgressState,
	AggregateQuote,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventProgressStateCreated   OutboxEventType = "progress_state_created"
	EventProgressStateFinalized OutboxEventType = "progress_state_finalized"
	EventProgressStateReopened  OutboxEventType = "progress_state_reopened"
	EventAmendmentIntegrated    OutboxEventType = "amendment_integrated"
	EventQuoteConverted         OutboxEventType = "quote_converted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventProgressStateCreated,
	EventProgressStateFinalized,
	EventProgressStateReopened,
	EventAmendmentIntegrated,
	EventQuoteConverted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
