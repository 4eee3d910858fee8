/**
 * @description
 * This file defines the canonical AMS request and response payloads. Field
 * names on the wire are PascalCase, matching the AMS validation and
 * confirmation API schemas.
 *
 * @dependencies
 * - encoding/json: Standard Go library.
 */

package domain

// ValidationRequest is the canonical AMS validation payload. Both inbound
// payload shapes map into this one struct.
type ValidationRequest struct {
	RemoteTransactionId string  `json:"RemoteTransactionId"`
	PhoneNumber         string  `json:"PhoneNumber"`
	Account             string  `json:"Account"`
	Amount              float64 `json:"Amount"`
	Currency            string  `json:"Currency"`
	LoanId              *int64  `json:"LoanId,omitempty"`

	// GetAccountDetails drives the client-details enrichment sub-stage and is
	// never sent to the AMS.
	GetAccountDetails bool `json:"-"`
}

// ConfirmationRequest extends the validation identity fields with the
// settlement status and the orchestrator-supplied receipt id.
type ConfirmationRequest struct {
	ValidationRequest

	Status    string `json:"Status,omitempty"`
	ReceiptId string `json:"ReceiptId,omitempty"`
}

// ClientDetails is one element of the AMS client-details response list.
type ClientDetails struct {
	TransactionId       string `json:"transactionId"`
	Amount              any    `json:"amount"`
	AccountNumber       string `json:"accountNumber"`
	PhoneNumber         string `json:"phoneNumber"`
	Provider            string `json:"provider"`
	ClientFirstname     string `json:"clientFirstname"`
	ClientLastname      string `json:"clientLastname"`
	ClientAccountNumber string `json:"clientAccountNumber"`
	ClientMobileNo      string `json:"clientMobileNo"`
}

// ClientName concatenates the payer display name.
func (d ClientDetails) ClientName() string {
	return d.ClientFirstname + " " + d.ClientLastname
}

// ToCustomData folds the client details into the nine-entry tag list carried
// back to the orchestrator.
func (d ClientDetails) ToCustomData() []CustomData {
	return []CustomData{
		{Key: "transactionId", Value: d.TransactionId},
		{Key: "amount", Value: d.Amount},
		{Key: "accountNumber", Value: d.AccountNumber},
		{Key: "phoneNumber", Value: d.PhoneNumber},
		{Key: "provider", Value: d.Provider},
		{Key: "clientFirstname", Value: d.ClientFirstname},
		{Key: "clientLastname", Value: d.ClientLastname},
		{Key: "clientAccountNumber", Value: d.ClientAccountNumber},
		{Key: "clientMobileNo", Value: d.ClientMobileNo},
	}
}
