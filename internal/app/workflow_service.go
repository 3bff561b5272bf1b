package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gemhaus/marketplace-api/internal/clock"
	"github.com/gemhaus/marketplace-api/internal/domain"
)

// Decision is the terminal choice a recipient takes on an actionable
// notification.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// WorkflowService resolves actionable notifications: it applies the
// authoritative entity transition, the dependent product mutation, enriches
// with the acting user's profile, fans out the counterparty notification and
// terminal-marks the original. Every resolve runs inside one transaction.
type WorkflowService struct {
	tx            TxRunner
	notifications NotificationStore
	entities      EntityStore
	profiles      ProfileLookup
	clock         clock.Clock
	sweepBatch    int
}

const defaultSweepBatch = 100

func NewWorkflowService(tx TxRunner, notifications NotificationStore, entities EntityStore, profiles ProfileLookup, clk clock.Clock, opts ...WorkflowServiceOption) *WorkflowService {
	svc := &WorkflowService{
		tx:            tx,
		notifications: notifications,
		entities:      entities,
		profiles:      profiles,
		clock:         clk,
		sweepBatch:    defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type WorkflowServiceOption func(*WorkflowService)

// WithSweepBatchSize caps how many expired holds one sweep releases.
func WithSweepBatchSize(n int) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if n > 0 {
			s.sweepBatch = n
		}
	}
}

// ResolveResult reports the terminal-marked original notification and the
// notification emitted to the counterparty.
type ResolveResult struct {
	Notification domain.Notification
	Emitted      domain.Notification
}

// Resolve routes an approve/reject decision to the flow matching the
// notification's type. All authoritative checks re-run inside that flow's
// transaction; the read here only picks the route.
func (s *WorkflowService) Resolve(ctx context.Context, notificationID string, decision Decision, actorID string) (ResolveResult, error) {
	if !decision.valid() {
		return ResolveResult{}, domain.ErrInvalidDecision
	}

	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return ResolveResult{}, err
	}

	switch n.Type {
	case domain.TypeHoldRequest:
		return s.ResolveHoldRequest(ctx, ResolveHoldRequestInput{
			NotificationID: notificationID,
			Decision:       decision,
			ActorID:        actorID,
		})
	case domain.TypeTransactionOffer:
		return s.ResolveTransactionOffer(ctx, ResolveTransactionOfferInput{
			NotificationID: notificationID,
			Approve:        decision == DecisionApproved,
			ActorID:        actorID,
		})
	default:
		return ResolveResult{}, domain.ErrNotificationNotActionable
	}
}

type ResolveHoldRequestInput struct {
	NotificationID string
	Decision       Decision
	ActorID        string
}

func (s *WorkflowService) ResolveHoldRequest(ctx context.Context, in ResolveHoldRequestInput) (ResolveResult, error) {
	if in.ActorID == "" {
		return ResolveResult{}, domain.ErrMissingUserID
	}
	if !in.Decision.valid() {
		return ResolveResult{}, domain.ErrInvalidDecision
	}

	now := s.clock.Now()
	var result ResolveResult

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		n, err := s.notifications.GetForUpdate(txCtx, in.NotificationID)
		if err != nil {
			return err
		}
		if n.Type != domain.TypeHoldRequest {
			return domain.ErrNotificationNotActionable
		}
		if n.UserID != in.ActorID {
			return domain.ErrNotRecipient
		}
		if n.ActionDone {
			return domain.ErrNotificationActioned
		}
		if n.Data.HoldRequestID == "" || n.Data.BuyerID == "" {
			return domain.ErrMalformedPayload
		}

		status := domain.HoldStatusRejected
		if in.Decision == DecisionApproved {
			status = domain.HoldStatusApproved
		}

		hold, err := s.entities.ResolveHoldRequest(txCtx, n.Data.HoldRequestID, status)
		if err != nil {
			return err
		}

		productID := n.ProductID
		if productID == "" {
			productID = hold.ProductID
		}
		if in.Decision == DecisionApproved {
			// The product may have been sold or re-held while the request sat
			// pending; approving must not resurrect it.
			ok, err := s.entities.HoldProduct(txCtx, productID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrProductUnavailable
			}
		}

		seller, err := s.profiles.GetProfile(txCtx, in.ActorID)
		if err != nil {
			return err
		}

		outType := domain.TypeHoldRequestRejected
		outMsg := fmt.Sprintf("Your hold request for %s was rejected", n.Data.ProductTitle)
		if in.Decision == DecisionApproved {
			outType = domain.TypeHoldRequestApproved
			outMsg = fmt.Sprintf("Your hold request for %s was approved", n.Data.ProductTitle)
		}

		out := domain.Notification{
			ID:        newID(),
			UserID:    n.Data.BuyerID,
			Type:      outType,
			ProductID: productID,
			Data: domain.NotificationData{
				Message:         outMsg,
				HoldRequestID:   n.Data.HoldRequestID,
				ProductID:       productID,
				ProductTitle:    n.Data.ProductTitle,
				ProductImageURL: n.Data.ProductImageURL,
				BuyerID:         n.Data.BuyerID,
				SellerID:        in.ActorID,
				SellerName:      seller.FullName,
				SellerAvatarURL: seller.AvatarURL,
			},
			CreatedAt: now,
		}
		if in.Decision == DecisionApproved {
			out.Data.EndTime = hold.EndTime.UTC().Format(time.RFC3339)
		}
		if err := s.notifications.Insert(txCtx, out); err != nil {
			return err
		}

		// The hold flow keeps the original type; ActionDone alone disables
		// further action.
		data := n.Data
		data.Message = "Hold request rejected"
		if in.Decision == DecisionApproved {
			data.Message = "Hold request approved"
		}
		if err := s.notifications.MarkActioned(txCtx, n.ID, n.Type, data); err != nil {
			return err
		}

		n.ActionDone = true
		n.Data = data
		result = ResolveResult{Notification: n, Emitted: out}
		return nil
	})
	if err != nil {
		return ResolveResult{}, err
	}
	return result, nil
}

type ResolveTransactionOfferInput struct {
	NotificationID string
	Approve        bool
	ActorID        string
}

func (s *WorkflowService) ResolveTransactionOffer(ctx context.Context, in ResolveTransactionOfferInput) (ResolveResult, error) {
	if in.ActorID == "" {
		return ResolveResult{}, domain.ErrMissingUserID
	}

	now := s.clock.Now()
	var result ResolveResult

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		n, err := s.notifications.GetForUpdate(txCtx, in.NotificationID)
		if err != nil {
			return err
		}
		if n.Type != domain.TypeTransactionOffer {
			return domain.ErrNotificationNotActionable
		}
		if n.UserID != in.ActorID {
			return domain.ErrNotRecipient
		}
		if n.ActionDone {
			return domain.ErrNotificationActioned
		}
		if n.Data.TransactionID == "" || n.Data.SellerID == "" {
			return domain.ErrMalformedPayload
		}

		status := domain.TransactionStatusRejected
		if in.Approve {
			status = domain.TransactionStatusCompleted
		}

		tr, err := s.entities.ResolveTransaction(txCtx, n.Data.TransactionID, status)
		if err != nil {
			return err
		}

		// Older offer payloads may lack product_id; the transaction row is
		// the fallback. The guarded update already read it, so a missing
		// transaction fails the whole resolve instead of silently skipping
		// the product mutation.
		productID := n.Data.ProductID
		if productID == "" {
			productID = tr.ProductID
		}
		if in.Approve {
			if err := s.entities.UpdateProductStatus(txCtx, productID, domain.ProductStatusNotAvailable); err != nil {
				return err
			}
		}

		buyer, err := s.profiles.GetProfile(txCtx, in.ActorID)
		if err != nil {
			return err
		}

		outType := domain.TypeDealRejected
		outMsg := fmt.Sprintf("%s declined the deal for %s", displayName(buyer.FullName, "The buyer"), n.Data.ProductTitle)
		if in.Approve {
			outType = domain.TypeDealCompleted
			outMsg = fmt.Sprintf("%s accepted the deal for %s", displayName(buyer.FullName, "The buyer"), n.Data.ProductTitle)
		}

		out := domain.Notification{
			ID:        newID(),
			UserID:    n.Data.SellerID,
			Type:      outType,
			ProductID: productID,
			Data: domain.NotificationData{
				Message:         outMsg,
				TransactionID:   n.Data.TransactionID,
				ProductID:       productID,
				ProductTitle:    n.Data.ProductTitle,
				ProductImageURL: n.Data.ProductImageURL,
				BuyerID:         in.ActorID,
				SellerID:        n.Data.SellerID,
				BuyerName:       buyer.FullName,
				BuyerAvatarURL:  buyer.AvatarURL,
			},
			CreatedAt: now,
		}
		if err := s.notifications.Insert(txCtx, out); err != nil {
			return err
		}

		// Unlike the hold flow, a resolved offer is rewritten to its
		// terminal type.
		terminalType := domain.TypeTransactionOfferRejected
		data := n.Data
		data.Message = fmt.Sprintf("Deal rejected with %s", displayName(buyer.FullName, "the buyer"))
		if in.Approve {
			terminalType = domain.TypeTransactionOfferApproved
			data.Message = fmt.Sprintf("Deal completed with %s", displayName(buyer.FullName, "the buyer"))
		}
		if err := s.notifications.MarkActioned(txCtx, n.ID, terminalType, data); err != nil {
			return err
		}

		n.Type = terminalType
		n.ActionDone = true
		n.Data = data
		result = ResolveResult{Notification: n, Emitted: out}
		return nil
	})
	if err != nil {
		return ResolveResult{}, err
	}
	return result, nil
}

// ReleaseExpiredHolds returns products whose approved hold has passed its
// end time to available and notifies the buyer. Each release runs in its own
// transaction so one bad row does not poison the sweep; the first failure is
// reported after the remaining rows were attempted.
func (s *WorkflowService) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	now := s.clock.Now()

	holds, err := s.entities.ListExpiredHolds(ctx, now, s.sweepBatch)
	if err != nil {
		return 0, err
	}

	released := 0
	var firstErr error
	for _, hold := range holds {
		hold := hold
		err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
			product, err := s.entities.GetProduct(txCtx, hold.ProductID)
			if err != nil {
				return err
			}

			ok, err := s.entities.ReleaseProduct(txCtx, hold.ProductID)
			if err != nil {
				return err
			}
			if !ok {
				// Sold or already released since the list query ran.
				return nil
			}

			out := domain.Notification{
				ID:        newID(),
				UserID:    hold.BuyerID,
				Type:      domain.TypeHoldExpired,
				ProductID: hold.ProductID,
				Data: domain.NotificationData{
					Message:         fmt.Sprintf("Your hold on %s has expired", product.Title),
					HoldRequestID:   hold.ID,
					ProductID:       hold.ProductID,
					ProductTitle:    product.Title,
					ProductImageURL: product.ImageURL,
					BuyerID:         hold.BuyerID,
					SellerID:        product.SellerID,
					EndTime:         hold.EndTime.UTC().Format(time.RFC3339),
				},
				CreatedAt: now,
			}
			if err := s.notifications.Insert(txCtx, out); err != nil {
				return err
			}
			released++
			return nil
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release hold %s: %w", hold.ID, err)
		}
	}
	return released, firstErr
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
