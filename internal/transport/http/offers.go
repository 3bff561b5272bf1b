package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gemhaus/marketplace-api/internal/app"
	"github.com/gemhaus/marketplace-api/internal/domain"
)

// HoldRequester is the minimal interface needed to create a hold request.
type HoldRequester interface {
	RequestHold(ctx context.Context, in app.RequestHoldInput) (domain.HoldRequest, error)
}

// DealProposer is the minimal interface needed to propose a deal.
type DealProposer interface {
	ProposeDeal(ctx context.Context, in app.ProposeDealInput) (domain.Transaction, error)
}

// HandleRequestHold serves POST /holds. The caller identified by X-User-ID
// is the buyer.
func HandleRequestHold(svc HoldRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req requestHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		buyerID := r.Header.Get(userIDHeader)
		if buyerID == "" {
			writeError(w, http.StatusBadRequest, codeUserIDRequired, domain.ErrMissingUserID.Error())
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "product_id is required")
			return
		}

		hold, err := svc.RequestHold(r.Context(), app.RequestHoldInput{
			ProductID: req.ProductID,
			BuyerID:   buyerID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := holdRequestResponse{
			ID:        hold.ID,
			ProductID: hold.ProductID,
			BuyerID:   hold.BuyerID,
			Status:    string(hold.Status),
			EndTime:   hold.EndTime,
			CreatedAt: hold.CreatedAt,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleProposeDeal serves POST /deals. The caller identified by X-User-ID
// is the seller.
func HandleProposeDeal(svc DealProposer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req proposeDealRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		sellerID := r.Header.Get(userIDHeader)
		if sellerID == "" {
			writeError(w, http.StatusBadRequest, codeUserIDRequired, domain.ErrMissingUserID.Error())
			return
		}
		if req.ProductID == "" || req.BuyerID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "product_id and buyer_id are required")
			return
		}

		tr, err := svc.ProposeDeal(r.Context(), app.ProposeDealInput{
			ProductID: req.ProductID,
			BuyerID:   req.BuyerID,
			SellerID:  sellerID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := transactionResponse{
			ID:        tr.ID,
			ProductID: tr.ProductID,
			SellerID:  tr.SellerID,
			BuyerID:   tr.BuyerID,
			Status:    string(tr.Status),
			CreatedAt: tr.CreatedAt,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type requestHoldRequest struct {
	ProductID string `json:"product_id"`
}

type holdRequestResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	BuyerID   string    `json:"buyer_id"`
	Status    string    `json:"status"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

type proposeDealRequest struct {
	ProductID string `json:"product_id"`
	BuyerID   string `json:"buyer_id"`
}

type transactionResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	SellerID  string    `json:"seller_id"`
	BuyerID   string    `json:"buyer_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
