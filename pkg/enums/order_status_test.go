package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusConfirmed, OrderStatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestCancelledReachableFromAnyNonTerminalStatus(t *testing.T) {
	t.Parallel()

	for _, status := range validOrderStatuses {
		if status.IsTerminal() {
			continue
		}
		if !status.CanTransitionTo(OrderStatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be allowed", status)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	t.Parallel()

	if !OrderStatusDelivered.IsTerminal() {
		t.Fatal("delivered should be terminal")
	}
	if !OrderStatusCancelled.IsTerminal() {
		t.Fatal("cancelled should be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("pending should not be terminal")
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	t.Parallel()

	if !PaymentStatusPending.CanTransitionTo(PaymentStatusPaid) {
		t.Fatal("pending -> paid should be allowed")
	}
	if !PaymentStatusPaid.CanTransitionTo(PaymentStatusRefunded) {
		t.Fatal("paid -> refunded should be allowed")
	}
	if PaymentStatusPending.CanTransitionTo(PaymentStatusRefunded) {
		t.Fatal("pending -> refunded should be rejected")
	}
	if PaymentStatusFailed.CanTransitionTo(PaymentStatusPaid) {
		t.Fatal("failed is terminal")
	}
}
