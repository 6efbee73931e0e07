package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/database/dbtest"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/MihkelJ/crowd-fund-yapp/internal/oracle"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const creator = "0x52908400098527886E0F7030069857D2E4169EE7"

func setup(t *testing.T) (*gin.Engine, *oracle.StaticClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	static := oracle.NewStaticClient()
	return Setup(db, logic.NewReconcileLogic(db, static, time.Second)), static
}

func post(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// createCampaign 创建目标 100、单个 10 档位的活动，返回活动ID和档位ID
func createCampaign(t *testing.T, r http.Handler) (string, string) {
	t.Helper()
	w := post(t, r, "/api/v1/campaigns", map[string]interface{}{
		"title":          "Neighbourhood mural",
		"description":    "Paint for the underpass",
		"goal":           100,
		"creatorAddress": creator,
		"tiers": []map[string]interface{}{
			{"title": "Brush", "description": "Name on the wall", "amount": 10, "emoji": "🖌️", "perk": "Credit"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	tier := data["tiers"].([]interface{})[0].(map[string]interface{})
	return data["id"].(string), tier["id"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := setup(t)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "crowdfund_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/callback", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCallback_ReconcilesPaymentIntoStats(t *testing.T) {
	r, static := setup(t)
	campaignId, tierId := createCampaign(t, r)

	static.Put(model.PaymentFact{
		TxHash:          "0xpaid",
		SenderAddress:   "0xbacker",
		ReceiverAddress: creator,
		InvoiceAmount:   decimal.NewFromInt(15),
		Memo:            tierId,
	})

	w := post(t, r, "/api/v1/callback", map[string]string{"txHash": "0xpaid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, campaignId, body["id"])
	assert.Len(t, body["tiers"], 1)

	w = get(r, "/api/v1/campaigns/"+campaignId)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]interface{})
	assert.Equal(t, float64(15), stats["raised"])
	assert.Equal(t, float64(15), stats["percentageRaised"])
	assert.Equal(t, float64(1), stats["backers"])
	byTier := stats["contributionsByTier"].([]interface{})
	require.Len(t, byTier, 1)
	assert.Equal(t, float64(1), byTier[0].(map[string]interface{})["count"])

	w = get(r, "/api/v1/campaigns/"+campaignId+"/contributions")
	require.Equal(t, http.StatusOK, w.Code)
	contributions := decode(t, w)["contributions"].([]interface{})
	require.Len(t, contributions, 1)
	assert.Equal(t, "0xpaid", contributions[0].(map[string]interface{})["transactionHash"])

	// 重复回调不会重复入账
	w = post(t, r, "/api/v1/callback", map[string]string{"txHash": "0xpaid"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Campaign not found or not valid", decode(t, w)["error"])
}

func TestCallback_Errors(t *testing.T) {
	r, static := setup(t)
	_, tierId := createCampaign(t, r)

	static.Put(model.PaymentFact{
		TxHash:          "0xcheap",
		SenderAddress:   "0xbacker",
		ReceiverAddress: creator,
		InvoiceAmount:   decimal.RequireFromString("9.5"),
		Memo:            tierId,
	})

	w := post(t, r, "/api/v1/callback", map[string]string{"txHash": "0xunknown"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Payment not found", decode(t, w)["error"])

	w = post(t, r, "/api/v1/callback", map[string]string{"txHash": "0xcheap"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount_too_low", decode(t, w)["code"])

	w = post(t, r, "/api/v1/callback", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_input", decode(t, w)["code"])

	static.FailWith(oracle.ErrUnavailable)
	w = post(t, r, "/api/v1/callback", map[string]string{"txHash": "0xcheap"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "oracle_unavailable", decode(t, w)["code"])
}

func TestCallback_ConcurrentIdenticalRequests(t *testing.T) {
	r, static := setup(t)
	campaignId, tierId := createCampaign(t, r)

	static.Put(model.PaymentFact{
		TxHash:          "0xrace",
		SenderAddress:   "0xbacker",
		ReceiverAddress: creator,
		InvoiceAmount:   decimal.NewFromInt(10),
		Memo:            tierId,
	})

	var wg sync.WaitGroup
	responses := make([]*httptest.ResponseRecorder, 2)
	for i := range responses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/callback", strings.NewReader(`{"txHash":"0xrace"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			responses[i] = w
		}(i)
	}
	wg.Wait()

	codes := []int{responses[0].Code, responses[1].Code}
	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusNotFound}, codes)
	for _, w := range responses {
		if w.Code == http.StatusNotFound {
			assert.Equal(t, "Campaign not found or not valid", decode(t, w)["error"])
		}
	}

	w := get(r, "/api/v1/campaigns/"+campaignId+"/contributions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["contributions"], 1)
}
