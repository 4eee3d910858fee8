/**
 * @description
 * This file contains the HTTP handlers for the connector's synchronous
 * validate-only surface. The pay-bill channel calls it to reconcile an
 * account before dispatching the asynchronous workflow.
 *
 * @dependencies
 * - encoding/json, io, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain: Pipeline service and payload types.
 */

package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payflow/ams-fineract-connector/internal/app"
	"github.com/payflow/ams-fineract-connector/internal/domain"
)

// PayBillHandlers holds the pipeline service the handlers drive.
type PayBillHandlers struct {
	service    *app.Service
	amsName    string
	amsEnabled bool
}

// NewPayBillHandlers creates a new instance of PayBillHandlers.
func NewPayBillHandlers(service *app.Service, amsName string, amsEnabled bool) *PayBillHandlers {
	return &PayBillHandlers{service: service, amsName: amsName, amsEnabled: amsEnabled}
}

// payBillValidationResponse is what the pay-bill channel receives back from
// the synchronous validate call.
type payBillValidationResponse struct {
	Reconciled                  bool                `json:"reconciled"`
	AmsName                     string              `json:"amsName"`
	AccountHoldingInstitutionId string              `json:"accountHoldingInstitutionId"`
	TransactionId               string              `json:"transactionId"`
	Amount                      float64             `json:"amount"`
	Currency                    string              `json:"currency"`
	Msisdn                      string              `json:"msisdn"`
	ClientName                  string              `json:"clientName,omitempty"`
	CustomData                  []domain.CustomData `json:"customData,omitempty"`
}

// ValidatePayBillHandler handles POST /api/v1/paybill/validate/{amsName}. The
// body is the pay-bill payload; the account holding institution travels in a
// request header.
func (h *PayBillHandlers) ValidatePayBillHandler(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "amsName") != h.amsName {
		http.Error(w, "Unknown AMS", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	payload, err := domain.PayBillPayload(body)
	if err != nil {
		log.Printf("level=warn component=api op=paybill_validate msg=\"undecodable pay-bill payload\" err=%v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	institutionID := r.Header.Get("accountHoldingInstitutionId")

	response := payBillValidationResponse{
		AmsName:                     h.amsName,
		AccountHoldingInstitutionId: institutionID,
	}

	if h.amsEnabled {
		result := h.service.ValidateTransfer(r.Context(), &app.TransferContext{
			AccountHoldingInstitutionID: institutionID,
			Payload:                     payload,
		})
		response.Reconciled = !result.Failed
		response.TransactionId = result.TransactionID
		response.Amount = result.Amount
		response.Currency = result.Currency
		response.Msisdn = result.Msisdn
		response.ClientName = result.ClientName
		response.CustomData = result.CustomData
	} else {
		// Disabled integration is reported as non-failure, matching the
		// asynchronous workers. The mapper still runs so the identity fields
		// come back; only the AMS call is skipped.
		response.Reconciled = true
		if req, err := payload.ToValidationRequest(""); err == nil {
			response.TransactionId = req.RemoteTransactionId
			response.Amount = req.Amount
			response.Currency = req.Currency
			response.Msisdn = req.PhoneNumber
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("level=error component=api op=paybill_validate msg=\"response encode failed\" err=%v", err)
	}
}
