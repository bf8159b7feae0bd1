package sslcommerz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app/internal/usecase"
)

const (
	sandboxSessionURL = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveSessionURL    = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"
)

// Client はSSLCommerzのセッションAPIクライアント。
// usecase.PaymentGatewayを満たす。
type Client struct {
	storeID   string
	storePass string
	live      bool
	serverURL string
	httpc     *http.Client
}

func New(storeID, storePass string, live bool, serverURL string) *Client {
	return &Client{
		storeID:   storeID,
		storePass: storePass,
		live:      live,
		serverURL: strings.TrimRight(serverURL, "/"),
		httpc:     &http.Client{Timeout: 15 * time.Second},
	}
}

// セッションAPIの応答。必要なところだけ読む。
type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// CreateSession は決済セッションを作り、ゲートウェイのページURLを返す。
// success/fail/cancelはtranID入りの自APIコールバックに向ける。
func (c *Client) CreateSession(ctx context.Context, in usecase.GatewaySessionInput) (string, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePass)
	form.Set("total_amount", formatAmount(in.TotalAmount))
	form.Set("currency", "BDT")
	form.Set("tran_id", in.TransactionID)

	form.Set("success_url", fmt.Sprintf("%s/api/payment/success/%s", c.serverURL, in.TransactionID))
	form.Set("fail_url", fmt.Sprintf("%s/api/payment/fail/%s", c.serverURL, in.TransactionID))
	form.Set("cancel_url", fmt.Sprintf("%s/api/payment/cancel/%s", c.serverURL, in.TransactionID))

	form.Set("shipping_method", "Courier")
	form.Set("product_name", strings.Join(in.ProductNames, ", "))
	form.Set("product_category", "Fashion")
	form.Set("product_profile", "physical-goods")

	form.Set("cus_name", in.CustomerName)
	form.Set("cus_email", in.CustomerEmail)
	form.Set("cus_add1", in.Address)
	form.Set("cus_city", in.City)
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", in.CustomerPhone)

	form.Set("ship_name", in.CustomerName)
	form.Set("ship_add1", in.Address)
	form.Set("ship_city", in.City)
	form.Set("ship_country", "Bangladesh")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sessionURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("sslcommerz session request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sslcommerz session: unexpected status %d", res.StatusCode)
	}

	var body sessionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("sslcommerz session decode: %w", err)
	}

	if body.Status != "SUCCESS" || body.GatewayPageURL == "" {
		if body.FailedReason != "" {
			return "", fmt.Errorf("sslcommerz session failed: %s", body.FailedReason)
		}
		return "", fmt.Errorf("sslcommerz session failed: status=%s", body.Status)
	}

	return body.GatewayPageURL, nil
}

func (c *Client) sessionURL() string {
	if c.live {
		return liveSessionURL
	}
	return sandboxSessionURL
}

// 最小単位のint64を"123.45"形式にする
func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
