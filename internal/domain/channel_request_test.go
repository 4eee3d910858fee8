package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

const channelRequestNestedAmount = `{
	"payer": {"partyIdInfo": {"partyIdentifier": "254708374149"}},
	"payee": {"partyIdInfo": {"partyIdentifier": "24450523"}},
	"amount": {"amount": "1250.50", "currency": "KES"},
	"externalId": "rcpt-889"
}`

const channelRequestBareAmount = `{
	"payer": {"partyIdInfo": {"partyIdentifier": "254708374149"}},
	"payee": {"partyIdInfo": {"partyIdentifier": "24450523"}},
	"amount": "1250.50",
	"currency": "KES",
	"externalId": "rcpt-889"
}`

func TestChannelRequest_ToValidationRequest(t *testing.T) {
	req, err := ParseChannelRequest([]byte(channelRequestNestedAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}

	validation, err := req.ToValidationRequest("tx-001")
	if err != nil {
		t.Fatalf("ToValidationRequest returned error: %v", err)
	}

	if validation.RemoteTransactionId != "tx-001" {
		t.Errorf("expected remote transaction id tx-001, got %q", validation.RemoteTransactionId)
	}
	if validation.PhoneNumber != "254708374149" {
		t.Errorf("expected payer identifier as phone, got %q", validation.PhoneNumber)
	}
	if validation.Account != "24450523" {
		t.Errorf("expected payee identifier as account, got %q", validation.Account)
	}
	if validation.Amount != 1250.50 {
		t.Errorf("expected amount 1250.50, got %v", validation.Amount)
	}
	if validation.Currency != "KES" {
		t.Errorf("expected currency KES, got %q", validation.Currency)
	}
	if validation.LoanId != nil {
		t.Errorf("expected no loan id, got %v", *validation.LoanId)
	}
	if validation.GetAccountDetails {
		t.Errorf("expected getAccountDetails to default to false")
	}
}

func TestChannelRequest_BothAmountFormsYieldIdenticalRequests(t *testing.T) {
	nested, err := ParseChannelRequest([]byte(channelRequestNestedAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest(nested) returned error: %v", err)
	}
	bare, err := ParseChannelRequest([]byte(channelRequestBareAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest(bare) returned error: %v", err)
	}

	fromNested, err := nested.ToValidationRequest("tx-001")
	if err != nil {
		t.Fatalf("ToValidationRequest(nested) returned error: %v", err)
	}
	fromBare, err := bare.ToValidationRequest("tx-001")
	if err != nil {
		t.Fatalf("ToValidationRequest(bare) returned error: %v", err)
	}

	if !reflect.DeepEqual(fromNested, fromBare) {
		t.Fatalf("expected identical canonical requests, got %+v vs %+v", fromNested, fromBare)
	}
}

func TestChannelRequest_MappingIsIdempotent(t *testing.T) {
	req, err := ParseChannelRequest([]byte(channelRequestNestedAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}

	first, err := req.ToValidationRequest("tx-001")
	if err != nil {
		t.Fatalf("first mapping returned error: %v", err)
	}
	second, err := req.ToValidationRequest("tx-001")
	if err != nil {
		t.Fatalf("second mapping returned error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("expected byte-identical canonical requests, got %s vs %s", firstJSON, secondJSON)
	}
}

func TestChannelRequest_ListShapedPartySections(t *testing.T) {
	payload := `{
		"payer": [{"partyIdIdentifier": "254700000001"}, {"partyIdIdentifier": "254700000002"}],
		"payee": [{"partyIdIdentifier": "10002"}],
		"amount": {"amount": 200, "currency": "TZS"}
	}`

	req, err := ParseChannelRequest([]byte(payload))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}
	validation, err := req.ToValidationRequest("tx-002")
	if err != nil {
		t.Fatalf("ToValidationRequest returned error: %v", err)
	}

	if validation.PhoneNumber != "254700000001" {
		t.Errorf("expected first list element to win, got %q", validation.PhoneNumber)
	}
	if validation.Account != "10002" {
		t.Errorf("expected payee list identifier, got %q", validation.Account)
	}
	if validation.Amount != 200 {
		t.Errorf("expected amount 200, got %v", validation.Amount)
	}
}

func TestChannelRequest_CustomDataSuppliesLoanIdAndAccountDetailsFlag(t *testing.T) {
	payload := `{
		"payer": {"partyIdInfo": {"partyIdentifier": "254708374149"}},
		"payee": {"partyIdInfo": {"partyIdentifier": "24450523"}},
		"amount": {"amount": "10", "currency": "KES"},
		"customData": [
			{"key": "loanId", "value": "5001"},
			{"key": "getAccountDetails", "value": "true"}
		]
	}`

	req, err := ParseChannelRequest([]byte(payload))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}
	validation, err := req.ToValidationRequest("tx-003")
	if err != nil {
		t.Fatalf("ToValidationRequest returned error: %v", err)
	}

	if validation.LoanId == nil || *validation.LoanId != 5001 {
		t.Errorf("expected loan id 5001, got %v", validation.LoanId)
	}
	if !validation.GetAccountDetails {
		t.Errorf("expected getAccountDetails true")
	}
}

func TestChannelRequest_InvalidLoanIdIsAbsentNotError(t *testing.T) {
	payload := `{
		"payer": {"partyIdInfo": {"partyIdentifier": "254708374149"}},
		"payee": {"partyIdInfo": {"partyIdentifier": "24450523"}},
		"amount": {"amount": "10", "currency": "KES"},
		"customData": [
			{"key": "loanId", "value": "not-a-number"},
			{"key": "getAccountDetails", "value": "maybe"}
		]
	}`

	req, err := ParseChannelRequest([]byte(payload))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}
	validation, err := req.ToValidationRequest("tx-004")
	if err != nil {
		t.Fatalf("ToValidationRequest returned error: %v", err)
	}

	if validation.LoanId != nil {
		t.Errorf("expected invalid loan id to be absent, got %v", *validation.LoanId)
	}
	if validation.GetAccountDetails {
		t.Errorf("expected unrecognized flag value to be ignored")
	}
}

func TestChannelRequest_MissingFieldsSurfaceMappingErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		field   string
	}{
		{
			name:    "missing amount",
			payload: `{"payer": {"partyIdInfo": {"partyIdentifier": "1"}}, "payee": {"partyIdInfo": {"partyIdentifier": "2"}}}`,
			field:   "amount",
		},
		{
			name:    "bare amount without sibling currency",
			payload: `{"payer": {"partyIdInfo": {"partyIdentifier": "1"}}, "payee": {"partyIdInfo": {"partyIdentifier": "2"}}, "amount": "10"}`,
			field:   "currency",
		},
		{
			name:    "nested amount without currency",
			payload: `{"payer": {"partyIdInfo": {"partyIdentifier": "1"}}, "payee": {"partyIdInfo": {"partyIdentifier": "2"}}, "amount": {"amount": "10"}}`,
			field:   "amount.currency",
		},
		{
			name:    "missing payer identifier",
			payload: `{"payer": {"partyIdInfo": {}}, "payee": {"partyIdInfo": {"partyIdentifier": "2"}}, "amount": {"amount": "10", "currency": "KES"}}`,
			field:   "payer.partyIdInfo.partyIdentifier",
		},
		{
			name:    "empty payee list",
			payload: `{"payer": {"partyIdInfo": {"partyIdentifier": "1"}}, "payee": [], "amount": {"amount": "10", "currency": "KES"}}`,
			field:   "payee.partyIdIdentifier",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ParseChannelRequest([]byte(tc.payload))
			if err != nil {
				t.Fatalf("ParseChannelRequest returned error: %v", err)
			}
			_, err = req.ToValidationRequest("tx-005")
			var mapErr *MappingError
			if !errors.As(err, &mapErr) {
				t.Fatalf("expected a MappingError, got %v", err)
			}
			if mapErr.Field != tc.field {
				t.Errorf("expected violated field %q, got %q", tc.field, mapErr.Field)
			}
		})
	}
}

func TestChannelRequest_EmptyTransactionIdIsRejected(t *testing.T) {
	req, err := ParseChannelRequest([]byte(channelRequestNestedAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}

	_, err = req.ToValidationRequest("  ")
	var mapErr *MappingError
	if !errors.As(err, &mapErr) || mapErr.Field != "transactionId" {
		t.Fatalf("expected transactionId mapping error, got %v", err)
	}
}

func TestChannelRequest_ToConfirmationRequest(t *testing.T) {
	req, err := ParseChannelRequest([]byte(channelRequestNestedAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}

	confirmation, err := req.ToConfirmationRequest("tx-006", "ext-123")
	if err != nil {
		t.Fatalf("ToConfirmationRequest returned error: %v", err)
	}

	if confirmation.Status != "successful" {
		t.Errorf("expected fixed status successful, got %q", confirmation.Status)
	}
	if confirmation.ReceiptId != "ext-123" {
		t.Errorf("expected orchestrator-supplied receipt id, got %q", confirmation.ReceiptId)
	}
	if confirmation.RemoteTransactionId != "tx-006" {
		t.Errorf("expected remote transaction id tx-006, got %q", confirmation.RemoteTransactionId)
	}
}

func TestChannelRequest_ConfirmationReceiptFallsBackToPayloadExternalId(t *testing.T) {
	req, err := ParseChannelRequest([]byte(channelRequestNestedAmount))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}

	confirmation, err := req.ToConfirmationRequest("tx-007", "")
	if err != nil {
		t.Fatalf("ToConfirmationRequest returned error: %v", err)
	}
	if confirmation.ReceiptId != "rcpt-889" {
		t.Errorf("expected fallback to payload externalId, got %q", confirmation.ReceiptId)
	}
}

func TestChannelRequest_ConfirmationWithoutAnyExternalIdFails(t *testing.T) {
	payload := `{
		"payer": {"partyIdInfo": {"partyIdentifier": "1"}},
		"payee": {"partyIdInfo": {"partyIdentifier": "2"}},
		"amount": {"amount": "10", "currency": "KES"}
	}`

	req, err := ParseChannelRequest([]byte(payload))
	if err != nil {
		t.Fatalf("ParseChannelRequest returned error: %v", err)
	}

	_, err = req.ToConfirmationRequest("tx-008", "")
	var mapErr *MappingError
	if !errors.As(err, &mapErr) || mapErr.Field != "externalId" {
		t.Fatalf("expected externalId mapping error, got %v", err)
	}
}

func TestValidationRequest_WireFieldNamesArePascalCase(t *testing.T) {
	loanID := int64(7)
	payload, err := json.Marshal(&ValidationRequest{
		RemoteTransactionId: "tx-wire",
		PhoneNumber:         "254700000001",
		Account:             "10002",
		Amount:              15,
		Currency:            "KES",
		LoanId:              &loanID,
		GetAccountDetails:   true,
	})
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}

	for _, key := range []string{"RemoteTransactionId", "PhoneNumber", "Account", "Amount", "Currency", "LoanId"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected wire field %q to be present in %s", key, payload)
		}
	}
	if _, ok := decoded["GetAccountDetails"]; ok {
		t.Errorf("getAccountDetails must not reach the wire: %s", payload)
	}
}
