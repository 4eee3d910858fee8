/**
 * @description
 * This file contains the core per-job pipeline: request mapping, the AMS
 * call, outcome classification, and the optional client-details enrichment.
 * The pipeline is stateless; every job owns its own TransferContext and
 * result bag, and stages run strictly in sequence.
 *
 * @dependencies
 * - context, encoding/json, log: Standard Go libraries.
 * - internal/domain, pkg/amsclient: Payload mapping and the AMS HTTP stage.
 */

package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/payflow/ams-fineract-connector/internal/domain"
	"github.com/payflow/ams-fineract-connector/pkg/amsclient"
)

// AMSGateway is the outbound surface the pipeline needs from the AMS HTTP
// stage.
type AMSGateway interface {
	ValidateTransfer(ctx context.Context, req *domain.ValidationRequest) (*amsclient.Response, error)
	ConfirmTransfer(ctx context.Context, req *domain.ConfirmationRequest) (*amsclient.Response, error)
	GetClientDetails(ctx context.Context, transactionID string) (*amsclient.Response, error)
}

// Service runs the transfer validation and settlement pipelines.
type Service struct {
	ams AMSGateway
}

// NewService creates the pipeline service.
func NewService(ams AMSGateway) *Service {
	return &Service{ams: ams}
}

// TransferContext is the unit of work threading through one job. It is
// created at job activation and discarded after completion.
type TransferContext struct {
	TransactionID               string
	AccountHoldingInstitutionID string
	ExternalID                  string
	UpstreamStatus              SettlementStatus
	Payload                     domain.TransferPayload
}

// ValidateTransfer runs the validation pipeline: map the inbound payload,
// call the AMS validation endpoint, classify, and optionally enrich with
// client details. Every failure mode folds into the returned result; the
// caller always gets a fully-populated result bag.
func (s *Service) ValidateTransfer(ctx context.Context, tc *TransferContext) *TransferResult {
	result := &TransferResult{
		TransactionID:               tc.TransactionID,
		AccountHoldingInstitutionID: tc.AccountHoldingInstitutionID,
	}

	req, err := tc.Payload.ToValidationRequest(tc.TransactionID)
	if err != nil {
		log.Printf("level=error component=pipeline op=validate transaction_id=%s msg=\"request mapping failed\" err=%v", tc.TransactionID, err)
		result.failMapping(err)
		return result
	}
	result.adoptIdentity(req)

	log.Printf("level=info component=pipeline op=validate transaction_id=%s account=%s amount=%v currency=%s msg=\"sending validation request\"",
		req.RemoteTransactionId, req.Account, req.Amount, req.Currency)

	resp, err := s.ams.ValidateTransfer(ctx, req)
	if err != nil {
		log.Printf("level=error component=pipeline op=validate transaction_id=%s msg=\"ams call failed\" err=%v", req.RemoteTransactionId, err)
		result.failTransport(err)
		return result
	}

	log.Printf("level=info component=pipeline op=validate transaction_id=%s status=%d msg=\"received validation response\"",
		req.RemoteTransactionId, resp.StatusCode)
	classifyValidation(resp, result)

	if !result.Failed && req.GetAccountDetails {
		s.enrichClientDetails(ctx, result)
	}

	return result
}

// SettleTransfer runs the settlement pipeline: map the inbound payload into a
// confirmation request, call the AMS confirmation endpoint, and classify. The
// settlement outcome additionally depends on the upstream transaction status.
func (s *Service) SettleTransfer(ctx context.Context, tc *TransferContext) *TransferResult {
	result := &TransferResult{
		TransactionID:               tc.TransactionID,
		AccountHoldingInstitutionID: tc.AccountHoldingInstitutionID,
	}

	req, err := tc.Payload.ToConfirmationRequest(tc.TransactionID, tc.ExternalID)
	if err != nil {
		log.Printf("level=error component=pipeline op=settle transaction_id=%s msg=\"request mapping failed\" err=%v", tc.TransactionID, err)
		result.failMapping(err)
		return result
	}
	result.adoptIdentity(&req.ValidationRequest)

	log.Printf("level=info component=pipeline op=settle transaction_id=%s receipt_id=%s msg=\"sending confirmation request\"",
		req.RemoteTransactionId, req.ReceiptId)

	resp, err := s.ams.ConfirmTransfer(ctx, req)
	if err != nil {
		log.Printf("level=error component=pipeline op=settle transaction_id=%s msg=\"ams call failed\" err=%v", req.RemoteTransactionId, err)
		result.failTransport(err)
		return result
	}

	log.Printf("level=info component=pipeline op=settle transaction_id=%s status=%d msg=\"received confirmation response\"",
		req.RemoteTransactionId, resp.StatusCode)
	classifySettlement(resp, tc.UpstreamStatus, result)

	return result
}

// enrichClientDetails fetches the payer display name and extra attributes
// after a successful validation. It can only add data: any fault, non-2xx
// status, or empty response list leaves the validation outcome untouched.
func (s *Service) enrichClientDetails(ctx context.Context, result *TransferResult) {
	resp, err := s.ams.GetClientDetails(ctx, result.TransactionID)
	if err != nil {
		log.Printf("level=warn component=pipeline op=client_details transaction_id=%s msg=\"ams call failed; skipping enrichment\" err=%v", result.TransactionID, err)
		return
	}
	if !resp.OK() {
		log.Printf("level=warn component=pipeline op=client_details transaction_id=%s status=%d msg=\"non-2xx response; skipping enrichment\"", result.TransactionID, resp.StatusCode)
		return
	}

	var details []domain.ClientDetails
	if err := json.Unmarshal(resp.Body, &details); err != nil {
		log.Printf("level=warn component=pipeline op=client_details transaction_id=%s msg=\"undecodable response; skipping enrichment\" err=%v", result.TransactionID, err)
		return
	}
	if len(details) == 0 {
		return
	}

	result.ClientName = details[0].ClientName()
	result.CustomData = details[0].ToCustomData()
}
