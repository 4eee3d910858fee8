/**
 * @description
 * This file implements the outcome classifier. It inspects the raw AMS
 * response (status code plus body) together with the upstream settlement
 * status and produces the result bag reported back to the orchestrator.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 */

package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/payflow/ams-fineract-connector/internal/domain"
	"github.com/payflow/ams-fineract-connector/pkg/amsclient"
)

// errorDescriptionKeys is the fixed priority order probed when extracting a
// human-readable error description from an AMS response body.
var errorDescriptionKeys = []string{"Message", "error", "errorDescription", "errorMessage", "description"}

const (
	fallbackErrorDescription  = "Internal Server Error"
	transportErrorDescription = "AMS connection error"
)

// SettlementStatus is the upstream transaction outcome tracked by the
// orchestrator. Settlement is fail-closed: anything other than an explicit
// success counts as failed.
type SettlementStatus int

const (
	SettlementUnknown SettlementStatus = iota
	SettlementSucceeded
	SettlementFailed
)

// SettlementStatusFromVariable decodes the orchestrator's transactionFailed
// variable. Only an explicit boolean is recognized; everything else is
// Unknown.
func SettlementStatusFromVariable(v any) SettlementStatus {
	failed, ok := v.(bool)
	if !ok {
		return SettlementUnknown
	}
	if failed {
		return SettlementFailed
	}
	return SettlementSucceeded
}

// Failed reports the boolean failure reading of the tri-state status.
func (s SettlementStatus) Failed() bool {
	return s != SettlementSucceeded
}

// TransferResult is the per-job result bag. The failure flag is always
// explicitly set before the job completes.
type TransferResult struct {
	Failed           bool
	ErrorInformation any
	ErrorCode        any
	ErrorDescription any

	TransactionID               string
	AccountHoldingInstitutionID string
	Amount                      float64
	Currency                    string
	Msisdn                      string
	ClientName                  string
	CustomData                  []domain.CustomData
}

// adoptIdentity propagates the mapped identity fields into the result. These
// travel back to the orchestrator regardless of the outcome.
func (r *TransferResult) adoptIdentity(req *domain.ValidationRequest) {
	r.TransactionID = req.RemoteTransactionId
	r.Amount = req.Amount
	r.Currency = req.Currency
	r.Msisdn = req.PhoneNumber
}

// failMapping records a malformed-payload failure. The error description
// names the violated field.
func (r *TransferResult) failMapping(err error) {
	r.Failed = true
	r.ErrorInformation = err.Error()
	var mapErr *domain.MappingError
	if errors.As(err, &mapErr) {
		r.ErrorDescription = mapErr.Field
	} else {
		r.ErrorDescription = fallbackErrorDescription
	}
}

// failTransport records a connect/timeout/DNS failure. There is no HTTP
// status to report, so the error code stays absent.
func (r *TransferResult) failTransport(err error) {
	r.Failed = true
	r.ErrorInformation = err.Error()
	r.ErrorDescription = transportErrorDescription
}

// classifyValidation interprets the AMS validation response. Exactly status
// 200 means the party lookup succeeded.
func classifyValidation(resp *amsclient.Response, result *TransferResult) {
	if resp.StatusCode == http.StatusOK {
		result.Failed = false
		return
	}
	result.Failed = true
	result.ErrorInformation = string(resp.Body)
	result.ErrorCode = resp.StatusCode
	result.ErrorDescription = parseErrorDescription(resp.Body)
}

// classifySettlement interprets the AMS confirmation response. A 200 response
// defers to the upstream settlement status; any other status fails outright.
func classifySettlement(resp *amsclient.Response, upstream SettlementStatus, result *TransferResult) {
	if resp.StatusCode == http.StatusOK {
		result.Failed = upstream.Failed()
	} else {
		result.Failed = true
	}
	if result.Failed {
		result.ErrorInformation = string(resp.Body)
		result.ErrorCode = resp.StatusCode
		result.ErrorDescription = parseErrorDescription(resp.Body)
	}
}

// parseErrorDescription best-effort extracts a description from a JSON error
// body. The first key in the priority list holding a non-empty string wins;
// anything unparsable falls back to a generic description.
func parseErrorDescription(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallbackErrorDescription
	}
	for _, key := range errorDescriptionKeys {
		if value, ok := payload[key].(string); ok && value != "" {
			return value
		}
	}
	return fallbackErrorDescription
}
