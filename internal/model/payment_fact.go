package model

import "github.com/shopspring/decimal"

// PaymentFact 支付预言机返回的支付信息，不落库
type PaymentFact struct {
	TxHash          string          `json:"txHash"`
	SenderAddress   string          `json:"senderAddress"`
	ReceiverAddress string          `json:"receiverAddress"`
	InvoiceAmount   decimal.Decimal `json:"invoiceAmount"`
	InvoiceCurrency string          `json:"invoiceCurrency,omitempty"`
	// Memo 携带目标档位ID
	Memo    string `json:"memo"`
	ChainId int64  `json:"chainId,omitempty"`
}
