package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column on outbox_events.
type OutboxAggregateType string

const (
	AggregateLead        OutboxAggregateType = "lead"
	AggregateVendor      OutboxAggregateType = "vendor"
	AggregateTransaction OutboxAggregateType = "transaction"
	AggregateBundle      OutboxAggregateType = "bundle"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateLead,
	AggregateVendor,
	AggregateTransaction,
	AggregateBundle,
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

// OutboxEventType maps to the event_type column on outbox_events.
type OutboxEventType string

const (
	EventLeadCreated          OutboxEventType = "lead_created"
	EventLeadPurchased        OutboxEventType = "lead_purchased"
	EventWalletDebited        OutboxEventType = "wallet_debited"
	EventWalletTopUp          OutboxEventType = "wallet_topup"
	EventCreditsDeducted      OutboxEventType = "credits_deducted"
	EventCreditsMigrated      OutboxEventType = "credits_migrated"
	EventBundlePurchased      OutboxEventType = "bundle_purchased"
	EventPurchaseRolledBack   OutboxEventType = "purchase_rolled_back"
	EventReconciliationNeeded OutboxEventType = "reconciliation_needed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventLeadCreated,
	EventLeadPurchased,
	EventWalletDebited,
	EventWalletTopUp,
	EventCreditsDeducted,
	EventCreditsMigrated,
	EventBundlePurchased,
	EventPurchaseRolledBack,
	EventReconciliationNeeded,
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
