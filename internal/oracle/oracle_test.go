package oracle

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "0x8f5c2a1d3b4e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8"

func TestHTTPClient_GetPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/payments/" + testHash:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"payment":{"txHash":"` + testHash + `","chainId":8453,
				"senderAddress":"0xsender","receiverAddress":"0xreceiver",
				"invoiceAmount":"15.50","invoiceCurrency":"USD","memo":"tier-1"}}`))
		case "/api/v1/payments/0xbroken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/api/v1/", time.Second)

	fact, err := client.GetPayment(context.Background(), testHash)
	require.NoError(t, err)
	require.NotNil(t, fact)
	assert.Equal(t, "0xsender", fact.SenderAddress)
	assert.Equal(t, "0xreceiver", fact.ReceiverAddress)
	assert.Equal(t, "tier-1", fact.Memo)
	assert.Equal(t, int64(8453), fact.ChainId)
	assert.True(t, fact.InvoiceAmount.Equal(decimal.RequireFromString("15.5")))

	fact, err = client.GetPayment(context.Background(), "0xunknown")
	require.NoError(t, err)
	assert.Nil(t, fact)

	_, err = client.GetPayment(context.Background(), "0xbroken")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPClient(server.URL, 50*time.Millisecond)
	_, err := client.GetPayment(context.Background(), testHash)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_MalformedAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"payment":{"invoiceAmount":"lots","memo":"x"}}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, time.Second).GetPayment(context.Background(), testHash)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestStaticClient(t *testing.T) {
	client, err := NewStaticClientFromConfig([]config.StaticPayment{{
		TxHash:          "0xabc",
		SenderAddress:   "0xsender",
		ReceiverAddress: "0xreceiver",
		InvoiceAmount:   "10",
		Memo:            "tier",
	}})
	require.NoError(t, err)

	fact, err := client.GetPayment(context.Background(), "0xabc")
	require.NoError(t, err)
	require.NotNil(t, fact)
	assert.Equal(t, "tier", fact.Memo)

	fact, err = client.GetPayment(context.Background(), "0xdef")
	require.NoError(t, err)
	assert.Nil(t, fact)

	client.FailWith(ErrUnavailable)
	_, err = client.GetPayment(context.Background(), "0xabc")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewStaticClientFromConfig([]config.StaticPayment{{TxHash: "0x1", InvoiceAmount: "ten"}})
	assert.Error(t, err)
}

type fakeReceipts struct {
	receipt *types.Receipt
	err     error
	latest  uint64
}

func (f *fakeReceipts) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return f.receipt, f.err
}

func (f *fakeReceipts) BlockNumber(ctx context.Context) (uint64, error) {
	return f.latest, nil
}

func TestChainVerifiedClient(t *testing.T) {
	fact := model.PaymentFact{
		TxHash:          testHash,
		SenderAddress:   "0xsender",
		ReceiverAddress: "0xreceiver",
		InvoiceAmount:   decimal.NewFromInt(10),
		Memo:            "tier",
	}
	const (
		mainnetHash = "0x1111111111111111111111111111111111111111111111111111111111111111"
		baseHash    = "0x2222222222222222222222222222222222222222222222222222222222222222"
	)
	onMainnet := fact
	onMainnet.TxHash = mainnetHash
	onMainnet.ChainId = 1
	onBase := fact
	onBase.TxHash = baseHash
	onBase.ChainId = 8453
	next := NewStaticClient(fact, onMainnet, onBase, model.PaymentFact{TxHash: "not-a-hash"})

	tests := []struct {
		name      string
		txHash    string
		receipts  *fakeReceipts
		wantFact  bool
		wantError error
	}{
		{
			name:     "confirmed success",
			txHash:   testHash,
			receipts: &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}, latest: 102},
			wantFact: true,
		},
		{
			name:     "same chain",
			txHash:   mainnetHash,
			receipts: &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}, latest: 102},
			wantFact: true,
		},
		{
			// 回执查询不会被调用，链ID不符直接拒绝
			name:     "payment on another chain",
			txHash:   baseHash,
			receipts: &fakeReceipts{err: ethereum.NotFound},
		},
		{
			name:      "not enough confirmations",
			txHash:    testHash,
			receipts:  &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}, latest: 100},
			wantError: ErrUnavailable,
		},
		{
			name:     "reverted",
			txHash:   testHash,
			receipts: &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(100)}, latest: 200},
		},
		{
			name:      "receipt missing",
			txHash:    testHash,
			receipts:  &fakeReceipts{err: ethereum.NotFound},
			wantError: ErrUnavailable,
		},
		{
			name:      "rpc failure",
			txHash:    testHash,
			receipts:  &fakeReceipts{err: errors.New("connection refused")},
			wantError: ErrUnavailable,
		},
		{
			name:     "not an evm hash",
			txHash:   "not-a-hash",
			receipts: &fakeReceipts{},
		},
		{
			name:     "oracle has no record",
			txHash:   "0xmissing",
			receipts: &fakeReceipts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewChainVerifiedClient(next, tt.receipts, 1, 3)
			got, err := client.GetPayment(context.Background(), tt.txHash)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			if tt.wantFact {
				require.NotNil(t, got)
				assert.Equal(t, fact.Memo, got.Memo)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
