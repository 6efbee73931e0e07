package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/shopspring/decimal"
)

// HTTPClient 通过 HTTP 查询支付预言机，接口与 Yodl 的 GET /payments/{txHash} 兼容
type HTTPClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPClient 创建 HTTP 预言机客户端
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type paymentEnvelope struct {
	Payment *struct {
		TxHash          string `json:"txHash"`
		ChainId         int64  `json:"chainId"`
		SenderAddress   string `json:"senderAddress"`
		ReceiverAddress string `json:"receiverAddress"`
		InvoiceAmount   string `json:"invoiceAmount"`
		InvoiceCurrency string `json:"invoiceCurrency"`
		Memo            string `json:"memo"`
	} `json:"payment"`
}

// GetPayment 实现 Client 接口
func (c *HTTPClient) GetPayment(ctx context.Context, txHash string) (*model.PaymentFact, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/payments/" + url.PathEscape(txHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected oracle status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope paymentEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if envelope.Payment == nil {
		return nil, nil
	}

	amount, err := decimal.NewFromString(envelope.Payment.InvoiceAmount)
	if err != nil {
		return nil, fmt.Errorf("parse invoice amount %q: %w", envelope.Payment.InvoiceAmount, err)
	}

	hash := envelope.Payment.TxHash
	if hash == "" {
		hash = txHash
	}
	return &model.PaymentFact{
		TxHash:          hash,
		SenderAddress:   envelope.Payment.SenderAddress,
		ReceiverAddress: envelope.Payment.ReceiverAddress,
		InvoiceAmount:   amount,
		InvoiceCurrency: envelope.Payment.InvoiceCurrency,
		Memo:            envelope.Payment.Memo,
		ChainId:         envelope.Payment.ChainId,
	}, nil
}
