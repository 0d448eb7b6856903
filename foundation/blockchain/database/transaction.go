package database

import "fmt"

// Tx is the transactional information between two parties. There is no
// signature or balance check, a transaction is accepted as submitted.
type Tx struct {
	Sender    string  `json:"sender"`    // Who is sending the value.
	Recipient string  `json:"recipient"` // Who is receiving the value.
	Amount    float64 `json:"amount"`    // Monetary value received from this transaction.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, amount float64) Tx {
	return Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Recipient, tx.Amount)
}

// canonical returns the transaction as a map so the JSON encoding has its
// keys in sorted order.
func (tx Tx) canonical() map[string]any {
	return map[string]any{
		"amount":    tx.Amount,
		"recipient": tx.Recipient,
		"sender":    tx.Sender,
	}
}
