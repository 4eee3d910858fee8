/**
 * @description
 * This file implements the job worker harness. Two workers — transfer
 * validation and transfer settlement — pull activated jobs from the
 * orchestrator's queue, drive the pipeline, and complete each job with the
 * result variables the business process branches on. A job is always
 * completed: mapping faults, transport faults, and even panics inside the
 * pipeline convert into a failure-flagged completion, never an unacknowledged
 * job.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - internal/domain, pkg/jobqueue: Payload mapping and the job-queue contract.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/payflow/ams-fineract-connector/internal/domain"
	"github.com/payflow/ams-fineract-connector/pkg/jobqueue"
)

// Variable names shared with the orchestrator's BPMN processes.
const (
	VarTransactionID                    = "transactionId"
	VarChannelRequest                   = "channelRequest"
	VarPartyLookupFailed                = "partyLookupFailed"
	VarTransferSettlementFailed         = "transferSettlementFailed"
	VarErrorInformation                 = "errorInformation"
	VarErrorCode                        = "errorCode"
	VarErrorDescription                 = "errorDescription"
	VarExternalID                       = "externalId"
	VarTransactionFailed                = "transactionFailed"
	VarGetTransactionStatusResponseCode = "getTransactionStatusHttpCode"
	VarAccountHoldingInstitutionID      = "accountHoldingInstitutionId"
	VarAmount                           = "amount"
	VarCurrency                         = "currency"
	VarMsisdn                           = "msisdn"
	VarClientName                       = "clientName"
	VarCustomData                       = "customData"
)

const amsDisabledMessage = "AMS Local is disabled"

// jobTimeout bounds one whole pipeline run. The AMS client applies its own
// tighter per-call timeout underneath.
const jobTimeout = 30 * time.Second

// ValidationJobType and SettlementJobType build the job type names the
// workers subscribe to for a given AMS.
func ValidationJobType(amsName string) string { return "transfer-validation-" + amsName }

// SettlementJobType is the settlement counterpart of ValidationJobType.
func SettlementJobType(amsName string) string { return "transfer-settlement-" + amsName }

// Workers holds the two job handlers and the administrative enabled flag.
type Workers struct {
	service    *Service
	amsEnabled bool
}

// NewWorkers creates the worker harness. When amsEnabled is false both
// handlers short-circuit without touching the AMS.
func NewWorkers(service *Service, amsEnabled bool) *Workers {
	return &Workers{service: service, amsEnabled: amsEnabled}
}

// HandleValidationJob processes one activated transfer-validation job and
// returns the completion variables.
func (w *Workers) HandleValidationJob(job jobqueue.Job) (variables map[string]any) {
	logJobDetails(job)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("level=error component=worker job_type=%s job_key=%s msg=\"panic recovered; completing with failure\" panic=%v", job.Type, job.Key, rec)
			variables = panicVariables(job, VarPartyLookupFailed, rec)
		}
	}()

	if !w.amsEnabled {
		return disabledVariables(VarPartyLookupFailed)
	}

	tc, err := validationContextFromJob(job)
	if err != nil {
		result := &TransferResult{}
		result.failMapping(err)
		return completionVariables(job, result, VarPartyLookupFailed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result := w.service.ValidateTransfer(ctx, tc)
	return completionVariables(job, result, VarPartyLookupFailed)
}

// HandleSettlementJob processes one activated transfer-settlement job and
// returns the completion variables.
func (w *Workers) HandleSettlementJob(job jobqueue.Job) (variables map[string]any) {
	logJobDetails(job)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("level=error component=worker job_type=%s job_key=%s msg=\"panic recovered; completing with failure\" panic=%v", job.Type, job.Key, rec)
			variables = panicVariables(job, VarTransferSettlementFailed, rec)
		}
	}()

	if !w.amsEnabled {
		return disabledVariables(VarTransferSettlementFailed)
	}

	tc, err := settlementContextFromJob(job)
	if err != nil {
		result := &TransferResult{}
		result.failMapping(err)
		return completionVariables(job, result, VarTransferSettlementFailed)
	}

	// The upstream status code is a passthrough for the orchestrator; it is
	// surfaced here for correlation only.
	if code, ok := job.Variables[VarGetTransactionStatusResponseCode]; ok {
		log.Printf("level=info component=worker job_type=%s job_key=%s msg=\"upstream transaction status carried through\" %s=%v", job.Type, job.Key, VarGetTransactionStatusResponseCode, code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result := w.service.SettleTransfer(ctx, tc)
	return completionVariables(job, result, VarTransferSettlementFailed)
}

// validationContextFromJob builds a fresh TransferContext from a validation
// job's variable map.
func validationContextFromJob(job jobqueue.Job) (*TransferContext, error) {
	payload, err := channelPayloadFromVariables(job.Variables)
	if err != nil {
		return nil, err
	}
	transactionID, _ := job.Variables[VarTransactionID].(string)
	institutionID, _ := job.Variables[VarAccountHoldingInstitutionID].(string)

	return &TransferContext{
		TransactionID:               transactionID,
		AccountHoldingInstitutionID: institutionID,
		Payload:                     payload,
	}, nil
}

// settlementContextFromJob builds a fresh TransferContext from a settlement
// job's variable map. Settlement jobs additionally carry the external id and
// the upstream transaction outcome.
func settlementContextFromJob(job jobqueue.Job) (*TransferContext, error) {
	payload, err := channelPayloadFromVariables(job.Variables)
	if err != nil {
		return nil, err
	}
	transactionID, _ := job.Variables[VarTransactionID].(string)
	institutionID, _ := job.Variables[VarAccountHoldingInstitutionID].(string)
	externalID, _ := job.Variables[VarExternalID].(string)

	return &TransferContext{
		TransactionID:               transactionID,
		AccountHoldingInstitutionID: institutionID,
		ExternalID:                  externalID,
		UpstreamStatus:              SettlementStatusFromVariable(job.Variables[VarTransactionFailed]),
		Payload:                     payload,
	}, nil
}

func channelPayloadFromVariables(variables map[string]any) (domain.TransferPayload, error) {
	raw, ok := variables[VarChannelRequest].(string)
	if !ok || raw == "" {
		return domain.TransferPayload{}, &domain.MappingError{Field: VarChannelRequest, Reason: "variable is missing or not a string"}
	}
	return domain.ChannelPayload([]byte(raw))
}

// disabledVariables is the fixed completion reported while the AMS
// integration is administratively disabled. The flag is false: a disabled
// integration is informational, not a business failure.
func disabledVariables(flagKey string) map[string]any {
	return map[string]any{
		flagKey:             false,
		VarErrorInformation: amsDisabledMessage,
		VarErrorCode:        nil,
		VarErrorDescription: amsDisabledMessage,
	}
}

// completionVariables merges the result bag into the job's variables. The
// failure flag is always set; error variables only on failure; identity
// fields and enrichment data whenever present.
func completionVariables(job jobqueue.Job, result *TransferResult, flagKey string) map[string]any {
	variables := make(map[string]any, len(job.Variables)+8)
	for k, v := range job.Variables {
		variables[k] = v
	}

	variables[flagKey] = result.Failed
	if result.Failed {
		variables[VarErrorInformation] = result.ErrorInformation
		variables[VarErrorCode] = result.ErrorCode
		variables[VarErrorDescription] = result.ErrorDescription
	}

	if result.TransactionID != "" {
		variables[VarTransactionID] = result.TransactionID
	}
	if result.Currency != "" {
		variables[VarAmount] = result.Amount
		variables[VarCurrency] = result.Currency
	}
	if result.Msisdn != "" {
		variables[VarMsisdn] = result.Msisdn
	}
	if result.AccountHoldingInstitutionID != "" {
		variables[VarAccountHoldingInstitutionID] = result.AccountHoldingInstitutionID
	}
	if result.ClientName != "" {
		variables[VarClientName] = result.ClientName
	}
	if result.CustomData != nil {
		variables[VarCustomData] = result.CustomData
	}

	return variables
}

func panicVariables(job jobqueue.Job, flagKey string, rec any) map[string]any {
	result := &TransferResult{}
	result.failMapping(fmt.Errorf("pipeline panic: %v", rec))
	return completionVariables(job, result, flagKey)
}

func logJobDetails(job jobqueue.Job) {
	log.Printf("level=info component=worker msg=\"job started\" job_type=%s job_key=%s variables=%d", job.Type, job.Key, len(job.Variables))
}
