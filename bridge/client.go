package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestClient talks to an NFT bridge node over HTTP. A 4xx response to a
// transfer is a definitive settlement failure, everything else non-2xx is
// treated as transient.
type RestClient struct {
	http *resty.Client
}

func NewRestClient(endpoint, token string) *RestClient {
	c := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(20 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &RestClient{http: c}
}

func (rc *RestClient) ListDeposits(ctx context.Context, offset time.Time, limit int) ([]*Deposit, error) {
	params := map[string]string{
		"limit": fmt.Sprint(limit),
	}
	if !offset.IsZero() {
		params["offset"] = offset.UTC().Format(time.RFC3339Nano)
	}
	var deposits []*Deposit
	resp, err := rc.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&deposits).
		Get("/nft/deposits")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bridge: list deposits %s", resp.Status())
	}
	return deposits, nil
}

func (rc *RestClient) Transfer(ctx context.Context, req *TransferRequest) error {
	resp, err := rc.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/nft/transfers")
	if err != nil {
		return err
	}
	sc := resp.StatusCode()
	switch {
	case sc >= 200 && sc < 300:
		return nil
	case sc >= 400 && sc < 500:
		return &TransferFailedError{Reason: fmt.Sprintf("%s %s", resp.Status(), resp.String())}
	default:
		return fmt.Errorf("bridge: transfer %s", resp.Status())
	}
}
