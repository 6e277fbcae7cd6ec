package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookinghub/constants"

	"github.com/goccy/go-json"
)

type RefundRequest struct {
	OrderID string  `json:"orderId"`
	TransID string  `json:"transId,omitempty"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"description"`
}

type RefundResult struct {
	ExternalRef string
}

// PaymentGateway là phía cổng thanh toán mà core gọi ra
type PaymentGateway interface {
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// NewPaymentGateway chọn ManualGateway khi không có endpoint hoàn tiền
func NewPaymentGateway(refundURL string, timeout time.Duration) PaymentGateway {
	if refundURL == "" {
		return ManualGateway{}
	}
	return NewHTTPRefundGateway(refundURL, timeout)
}

// HTTPRefundGateway gửi yêu cầu hoàn tiền dạng JSON tới một endpoint cấu hình sẵn
type HTTPRefundGateway struct {
	url    string
	client *http.Client
}

func NewHTTPRefundGateway(url string, timeout time.Duration) *HTTPRefundGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRefundGateway{url: url, client: &http.Client{Timeout: timeout}}
}

type refundResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	TransID    string `json:"transId"`
}

func (g *HTTPRefundGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call refund endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("refund endpoint returned %d: %s", resp.StatusCode, string(raw))
	}

	var out refundResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode refund response: %w", err)
	}
	if out.ResultCode != constants.PaymentResultSuccess {
		return nil, fmt.Errorf("refund rejected (%d): %s", out.ResultCode, out.Message)
	}
	return &RefundResult{ExternalRef: out.TransID}, nil
}

// ManualGateway ghi nhận hoàn tiền để chủ nhà xử lý thủ công
type ManualGateway struct{}

func (ManualGateway) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	return &RefundResult{ExternalRef: "manual-" + req.OrderID}, nil
}
