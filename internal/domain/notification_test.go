package domain

import "testing"

func TestNotificationType_Actionable(t *testing.T) {
	t.Parallel()

	actionable := []NotificationType{TypeHoldRequest, TypeTransactionOffer}
	for _, typ := range actionable {
		if !typ.Actionable() {
			t.Fatalf("expected %s actionable", typ)
		}
	}

	terminal := []NotificationType{
		TypeHoldRequestApproved,
		TypeHoldRequestRejected,
		TypeHoldExpired,
		TypeTransactionOfferApproved,
		TypeTransactionOfferRejected,
		TypeDealCompleted,
		TypeDealRejected,
	}
	for _, typ := range terminal {
		if typ.Actionable() {
			t.Fatalf("expected %s not actionable", typ)
		}
	}
}

func TestNotification_Resolved(t *testing.T) {
	t.Parallel()

	pending := Notification{Type: TypeHoldRequest}
	if pending.Resolved() {
		t.Fatal("expected pending hold request unresolved")
	}

	actioned := Notification{Type: TypeHoldRequest, ActionDone: true}
	if !actioned.Resolved() {
		t.Fatal("expected actioned hold request resolved")
	}

	informational := Notification{Type: TypeDealCompleted}
	if !informational.Resolved() {
		t.Fatal("expected informational notification resolved")
	}
}
