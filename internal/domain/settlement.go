package domain

// SettlementRecord describes the payout owed to the originator of a
// successful order.
type SettlementRecord struct {
	OrderID        string
	Recipient      string
	TokenReceived  Token
	AmountReceived float64
}

// RejectionReason names why an order produced no settlement.
type RejectionReason string

const ReasonSlippage RejectionReason = "rejected_slippage"

// RejectionRecord is emitted for every order rejected by its slippage floor.
type RejectionRecord struct {
	OrderID     string
	RequesterID string
	Reason      RejectionReason
}
