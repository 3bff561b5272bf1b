package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gemhaus/marketplace-api/internal/clock"
	"github.com/gemhaus/marketplace-api/internal/domain"
)

// OfferService creates the pending records the workflow engine later
// resolves: hold requests from buyers and deal proposals from sellers. Each
// creation fans out the matching actionable notification.
type OfferService struct {
	tx            TxRunner
	notifications NotificationStore
	entities      EntityStore
	profiles      ProfileLookup
	clock         clock.Clock
	holdTTL       time.Duration
}

const defaultHoldTTL = 48 * time.Hour

func NewOfferService(tx TxRunner, notifications NotificationStore, entities EntityStore, profiles ProfileLookup, clk clock.Clock, opts ...OfferServiceOption) *OfferService {
	svc := &OfferService{
		tx:            tx,
		notifications: notifications,
		entities:      entities,
		profiles:      profiles,
		clock:         clk,
		holdTTL:       defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OfferServiceOption func(*OfferService)

// WithHoldTTL overrides how long an approved hold reserves a product.
func WithHoldTTL(d time.Duration) OfferServiceOption {
	return func(s *OfferService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type RequestHoldInput struct {
	ProductID string
	BuyerID   string
}

// RequestHold creates a pending hold request on an available product and
// notifies the seller.
func (s *OfferService) RequestHold(ctx context.Context, in RequestHoldInput) (domain.HoldRequest, error) {
	if in.ProductID == "" || in.BuyerID == "" {
		return domain.HoldRequest{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.HoldRequest

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.entities.GetProductForUpdate(txCtx, in.ProductID)
		if err != nil {
			return err
		}
		if product.Status != domain.ProductStatusAvailable {
			return domain.ErrProductUnavailable
		}

		hold := domain.HoldRequest{
			ID:        newID(),
			ProductID: in.ProductID,
			BuyerID:   in.BuyerID,
			Status:    domain.HoldStatusPending,
			EndTime:   now.Add(s.holdTTL),
			CreatedAt: now,
		}
		if err := s.entities.CreateHoldRequest(txCtx, hold); err != nil {
			return err
		}

		buyer, err := s.profiles.GetProfile(txCtx, in.BuyerID)
		if err != nil {
			return err
		}

		out := domain.Notification{
			ID:        newID(),
			UserID:    product.SellerID,
			Type:      domain.TypeHoldRequest,
			ProductID: product.ID,
			Data: domain.NotificationData{
				Message:         fmt.Sprintf("%s requested a hold on %s", displayName(buyer.FullName, "A buyer"), product.Title),
				HoldRequestID:   hold.ID,
				ProductID:       product.ID,
				ProductTitle:    product.Title,
				ProductImageURL: product.ImageURL,
				BuyerID:         in.BuyerID,
				SellerID:        product.SellerID,
				BuyerName:       buyer.FullName,
				BuyerAvatarURL:  buyer.AvatarURL,
				EndTime:         hold.EndTime.UTC().Format(time.RFC3339),
			},
			CreatedAt: now,
		}
		if err := s.notifications.Insert(txCtx, out); err != nil {
			return err
		}

		result = hold
		return nil
	})
	if err != nil {
		return domain.HoldRequest{}, err
	}
	return result, nil
}

type ProposeDealInput struct {
	ProductID string
	BuyerID   string
	SellerID  string
}

// ProposeDeal creates a pending transaction for a product and notifies the
// buyer with a transaction offer. The proposing seller must own the product;
// a product already sold cannot be offered again, while a held product can
// (a deal commonly follows an approved hold).
func (s *OfferService) ProposeDeal(ctx context.Context, in ProposeDealInput) (domain.Transaction, error) {
	if in.ProductID == "" || in.BuyerID == "" {
		return domain.Transaction{}, domain.ErrInvalidID
	}
	if in.SellerID == "" {
		return domain.Transaction{}, domain.ErrMissingUserID
	}

	now := s.clock.Now()
	var result domain.Transaction

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.entities.GetProductForUpdate(txCtx, in.ProductID)
		if err != nil {
			return err
		}
		if product.SellerID != in.SellerID {
			return domain.ErrNotProductSeller
		}
		if product.Status == domain.ProductStatusNotAvailable {
			return domain.ErrProductUnavailable
		}

		tr := domain.Transaction{
			ID:        newID(),
			ProductID: in.ProductID,
			SellerID:  in.SellerID,
			BuyerID:   in.BuyerID,
			Status:    domain.TransactionStatusPending,
			CreatedAt: now,
		}
		if err := s.entities.CreateTransaction(txCtx, tr); err != nil {
			return err
		}

		seller, err := s.profiles.GetProfile(txCtx, in.SellerID)
		if err != nil {
			return err
		}

		out := domain.Notification{
			ID:        newID(),
			UserID:    in.BuyerID,
			Type:      domain.TypeTransactionOffer,
			ProductID: product.ID,
			Data: domain.NotificationData{
				Message:         fmt.Sprintf("%s offered you a deal for %s", displayName(seller.FullName, "A seller"), product.Title),
				TransactionID:   tr.ID,
				ProductID:       product.ID,
				ProductTitle:    product.Title,
				ProductImageURL: product.ImageURL,
				BuyerID:         in.BuyerID,
				SellerID:        in.SellerID,
				SellerName:      seller.FullName,
				SellerAvatarURL: seller.AvatarURL,
			},
			CreatedAt: now,
		}
		if err := s.notifications.Insert(txCtx, out); err != nil {
			return err
		}

		result = tr
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return result, nil
}
