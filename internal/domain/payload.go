package domain

// TransferPayload is the tagged union of the two inbound payload shapes.
// Exactly one variant is set per job; it is resolved once at the harness
// boundary and drives all request mapping for that job.
type TransferPayload struct {
	Channel *ChannelRequest
	PayBill *PayBillRequest
}

// ChannelPayload resolves the union to the channel-request variant.
func ChannelPayload(raw []byte) (TransferPayload, error) {
	req, err := ParseChannelRequest(raw)
	if err != nil {
		return TransferPayload{}, err
	}
	return TransferPayload{Channel: req}, nil
}

// PayBillPayload resolves the union to the pay-bill variant.
func PayBillPayload(raw []byte) (TransferPayload, error) {
	req, err := ParsePayBillRequest(raw)
	if err != nil {
		return TransferPayload{}, err
	}
	return TransferPayload{PayBill: req}, nil
}

// ToValidationRequest maps whichever variant is present into the canonical
// validation request. On the pay-bill path the remote transaction id comes
// from the payload itself rather than the job.
func (p TransferPayload) ToValidationRequest(transactionID string) (*ValidationRequest, error) {
	switch {
	case p.Channel != nil:
		return p.Channel.ToValidationRequest(transactionID)
	case p.PayBill != nil:
		return p.PayBill.ToValidationRequest()
	}
	return nil, newMappingError("channelRequest", "no inbound payload present")
}

// ToConfirmationRequest maps whichever variant is present into the canonical
// confirmation request.
func (p TransferPayload) ToConfirmationRequest(transactionID, externalID string) (*ConfirmationRequest, error) {
	switch {
	case p.Channel != nil:
		return p.Channel.ToConfirmationRequest(transactionID, externalID)
	case p.PayBill != nil:
		return p.PayBill.ToConfirmationRequest()
	}
	return nil, newMappingError("channelRequest", "no inbound payload present")
}
