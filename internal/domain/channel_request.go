/**
 * @description
 * This file defines the channel-request payload shape, originating from the
 * primary payment-initiation channel, and its mapping into the canonical AMS
 * requests. Two sections of the payload arrive in more than one shape: the
 * payer/payee identifier section is either an object or a non-empty list, and
 * the amount is either a bare numeric string with a sibling currency or a
 * nested {amount, currency} object. Both forms map to the same canonical
 * request.
 *
 * @dependencies
 * - bytes, encoding/json, errors, strconv, strings: Standard Go libraries.
 */

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ChannelRequest is the inbound payload from the payment-initiation channel.
type ChannelRequest struct {
	Payer      partySection    `json:"payer"`
	Payee      partySection    `json:"payee"`
	Amount     json.RawMessage `json:"amount"`
	Currency   string          `json:"currency"`
	ExternalId string          `json:"externalId"`
	CustomData []CustomData    `json:"customData"`
}

// ParseChannelRequest decodes the channel-request JSON carried in the job's
// variable map.
func ParseChannelRequest(raw []byte) (*ChannelRequest, error) {
	var req ChannelRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, newMappingError("channelRequest", err.Error())
	}
	return &req, nil
}

// ToValidationRequest maps the channel request into the canonical AMS
// validation payload. transactionID is the job's correlation id and becomes
// the remote transaction id.
func (r *ChannelRequest) ToValidationRequest(transactionID string) (*ValidationRequest, error) {
	req, err := r.identity(transactionID)
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

// ToConfirmationRequest maps the channel request into the canonical AMS
// confirmation payload. The status on this path is fixed to "successful";
// the receipt id is the orchestrator-supplied external id, falling back to
// the channel payload's own externalId field when absent.
func (r *ChannelRequest) ToConfirmationRequest(transactionID, externalID string) (*ConfirmationRequest, error) {
	identity, err := r.identity(transactionID)
	if err != nil {
		return nil, err
	}

	receiptID := externalID
	if receiptID == "" {
		receiptID = r.ExternalId
	}
	if receiptID == "" {
		return nil, newMappingError("externalId", "receipt id is required for settlement")
	}

	return &ConfirmationRequest{
		ValidationRequest: *identity,
		Status:            "successful",
		ReceiptId:         receiptID,
	}, nil
}

func (r *ChannelRequest) identity(transactionID string) (*ValidationRequest, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, newMappingError("transactionId", "transaction id is required")
	}

	phoneNumber, err := r.Payer.identifier("payer")
	if err != nil {
		return nil, err
	}
	account, err := r.Payee.identifier("payee")
	if err != nil {
		return nil, err
	}
	amount, currency, err := r.resolveAmount()
	if err != nil {
		return nil, err
	}

	return &ValidationRequest{
		RemoteTransactionId: transactionID,
		PhoneNumber:         phoneNumber,
		Account:             account,
		Amount:              amount,
		Currency:            currency,
	}, nil
}

// resolveAmount supports both amount shapes: a nested {amount, currency}
// object, or a bare numeric value paired with the sibling currency field.
func (r *ChannelRequest) resolveAmount() (float64, string, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, "", newMappingError("amount", "amount is required")
	}

	if raw[0] == '{' {
		var nested struct {
			Amount   json.RawMessage `json:"amount"`
			Currency string          `json:"currency"`
		}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return 0, "", newMappingError("amount", err.Error())
		}
		amount, err := parseDecimal(nested.Amount)
		if err != nil {
			return 0, "", newMappingError("amount.amount", err.Error())
		}
		if nested.Currency == "" {
			return 0, "", newMappingError("amount.currency", "currency is required")
		}
		return amount, nested.Currency, nil
	}

	amount, err := parseDecimal(raw)
	if err != nil {
		return 0, "", newMappingError("amount", err.Error())
	}
	if r.Currency == "" {
		return 0, "", newMappingError("currency", "currency is required")
	}
	return amount, r.Currency, nil
}

// parseDecimal reads a JSON number or a numeric string.
func parseDecimal(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errMissingValue
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Float64()
}

var errMissingValue = errors.New("value is missing")

// partySection is the payer/payee identifier section. It arrives either as
// {"partyIdInfo": {"partyIdentifier": ...}} or as a non-empty list
// [{"partyIdIdentifier": ...}], of which the first element wins.
type partySection struct {
	raw json.RawMessage
}

func (p *partySection) UnmarshalJSON(data []byte) error {
	p.raw = append(p.raw[:0], data...)
	return nil
}

func (p partySection) identifier(section string) (string, error) {
	raw := bytes.TrimSpace(p.raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", newMappingError(section, "identifier section is required")
	}

	if raw[0] == '[' {
		var entries []struct {
			PartyIdIdentifier string `json:"partyIdIdentifier"`
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return "", newMappingError(section, err.Error())
		}
		if len(entries) == 0 || entries[0].PartyIdIdentifier == "" {
			return "", newMappingError(section+".partyIdIdentifier", "identifier is required")
		}
		return entries[0].PartyIdIdentifier, nil
	}

	var wrapped struct {
		PartyIdInfo struct {
			PartyIdentifier string `json:"partyIdentifier"`
		} `json:"partyIdInfo"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return "", newMappingError(section, err.Error())
	}
	if wrapped.PartyIdInfo.PartyIdentifier == "" {
		return "", newMappingError(section+".partyIdInfo.partyIdentifier", "identifier is required")
	}
	return wrapped.PartyIdInfo.PartyIdentifier, nil
}
