/**
 * @description
 * This file defines the pay-bill payload shape, originating from the
 * bill-payment channel, and its mapping into the canonical AMS requests.
 * Unlike the channel request, most fields on this path travel through the
 * generic custom-data tag list.
 *
 * @dependencies
 * - encoding/json, strconv, strings: Standard Go libraries.
 */

package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PayBillIdentifier is a single wrapped identifier value in the pay-bill
// payload.
type PayBillIdentifier struct {
	Value string `json:"value"`
}

// PayBillRequest is the inbound payload from the bill-payment channel.
type PayBillRequest struct {
	CustomData          []CustomData      `json:"customData"`
	PrimaryIdentifier   PayBillIdentifier `json:"primaryIdentifier"`
	SecondaryIdentifier PayBillIdentifier `json:"secondaryIdentifier"`
}

// ParsePayBillRequest decodes the pay-bill JSON body.
func ParsePayBillRequest(raw []byte) (*PayBillRequest, error) {
	var req PayBillRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, newMappingError("payBillRequest", err.Error())
	}
	return &req, nil
}

// ToValidationRequest maps the pay-bill payload into the canonical AMS
// validation payload. The remote transaction id, currency, amount and loan id
// all come out of the custom-data tag list; a missing or unparsable amount
// defaults to zero on this path.
func (r *PayBillRequest) ToValidationRequest() (*ValidationRequest, error) {
	req, err := r.identity()
	if err != nil {
		return nil, err
	}

	if loanID, ok := LookupCustomDataInt(r.CustomData, "loanId"); ok {
		req.LoanId = &loanID
	}
	if flag, ok := LookupCustomDataBool(r.CustomData, "getAccountDetails"); ok {
		req.GetAccountDetails = flag
	}

	return req, nil
}

// ToConfirmationRequest maps the pay-bill payload into the canonical AMS
// confirmation payload. The bill-payment channel supplies no settlement
// status or receipt id of its own.
func (r *PayBillRequest) ToConfirmationRequest() (*ConfirmationRequest, error) {
	identity, err := r.identity()
	if err != nil {
		return nil, err
	}
	return &ConfirmationRequest{ValidationRequest: *identity}, nil
}

func (r *PayBillRequest) identity() (*ValidationRequest, error) {
	transactionID, ok := LookupCustomData(r.CustomData, "transactionId")
	if !ok || strings.TrimSpace(transactionID) == "" {
		return nil, newMappingError("customData.transactionId", "transaction id is required")
	}
	if r.PrimaryIdentifier.Value == "" {
		return nil, newMappingError("primaryIdentifier.value", "account identifier is required")
	}
	if r.SecondaryIdentifier.Value == "" {
		return nil, newMappingError("secondaryIdentifier.value", "phone identifier is required")
	}

	currency, _ := LookupCustomData(r.CustomData, "currency")

	// Missing or unparsable amounts intentionally map to zero here, unlike the
	// channel-request path where they abort the job.
	var amount float64
	if raw, ok := LookupCustomData(r.CustomData, "amount"); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			amount = parsed
		}
	}

	return &ValidationRequest{
		RemoteTransactionId: transactionID,
		PhoneNumber:         r.SecondaryIdentifier.Value,
		Account:             r.PrimaryIdentifier.Value,
		Amount:              amount,
		Currency:            currency,
	}, nil
}
