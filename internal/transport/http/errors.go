package http

import (
	"encoding/json"
	"net/http"

	"github.com/gemhaus/marketplace-api/internal/domain"
)

const (
	codeMethodNotAllowed            = "method_not_allowed"
	codeNotFound                    = "not_found"
	codeInvalidRequestBody          = "invalid_request_body"
	codeInvalidID                   = "invalid_id"
	codeUserIDRequired              = "user_id_required"
	codeInvalidDecision             = "invalid_decision"
	codeMalformedPayload            = "malformed_payload"
	codeNotificationNotFound        = "notification_not_found"
	codeNotificationNotActionable   = "notification_not_actionable"
	codeNotificationActioned        = "notification_already_actioned"
	codeHoldNotFound                = "hold_not_found"
	codeHoldAlreadyResolved         = "hold_already_resolved"
	codeTransactionNotFound         = "transaction_not_found"
	codeTransactionAlreadyResolved  = "transaction_already_resolved"
	codeProductNotFound             = "product_not_found"
	codeProductUnavailable          = "product_unavailable"
	codeNotProductSeller            = "not_product_seller"
	codeForbidden                   = "forbidden"
	codeInternalError               = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps service errors to a status and machine-readable
// code: validation 400, missing records 404, lost races and illegal state
// transitions 409, ownership violations 403, everything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrMissingUserID:
		writeError(w, http.StatusBadRequest, codeUserIDRequired, err.Error())
	case domain.ErrInvalidDecision:
		writeError(w, http.StatusBadRequest, codeInvalidDecision, err.Error())
	case domain.ErrMalformedPayload:
		writeError(w, http.StatusBadRequest, codeMalformedPayload, err.Error())
	case domain.ErrNotificationNotFound:
		writeError(w, http.StatusNotFound, codeNotificationNotFound, err.Error())
	case domain.ErrHoldNotFound:
		writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
	case domain.ErrTransactionNotFound:
		writeError(w, http.StatusNotFound, codeTransactionNotFound, err.Error())
	case domain.ErrProductNotFound:
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case domain.ErrNotificationNotActionable:
		writeError(w, http.StatusConflict, codeNotificationNotActionable, err.Error())
	case domain.ErrNotificationActioned:
		writeError(w, http.StatusConflict, codeNotificationActioned, err.Error())
	case domain.ErrHoldAlreadyResolved:
		writeError(w, http.StatusConflict, codeHoldAlreadyResolved, err.Error())
	case domain.ErrTransactionAlreadyResolved:
		writeError(w, http.StatusConflict, codeTransactionAlreadyResolved, err.Error())
	case domain.ErrProductUnavailable:
		writeError(w, http.StatusConflict, codeProductUnavailable, err.Error())
	case domain.ErrNotRecipient:
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case domain.ErrNotProductSeller:
		writeError(w, http.StatusForbidden, codeNotProductSeller, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
