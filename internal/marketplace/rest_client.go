package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

type RESTConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// NewRESTClient builds a client whose transport injects an OAuth2
// client-credentials token on every request.
func NewRESTClient(ctx context.Context, cfg RESTConfig) (*RESTClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("marketplace base URL is not set")
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = 60 * time.Second
	return &RESTClient{baseURL: cfg.BaseURL, httpClient: httpClient}, nil
}

type wireAmount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type wireLineItem struct {
	LineItemID        string     `json:"lineItemId"`
	SKU               string     `json:"sku"`
	Title             string     `json:"title"`
	Quantity          int        `json:"quantity"`
	Total             wireAmount `json:"total"`
	FulfillmentStatus string     `json:"lineItemFulfillmentStatus"`
}

type wireBuyer struct {
	Username string `json:"username"`
}

type wirePricingSummary struct {
	Total wireAmount `json:"total"`
}

type wireOrder struct {
	OrderID           string             `json:"orderId"`
	CreationDate      string             `json:"creationDate"`
	LastModifiedDate  string             `json:"lastModifiedDate"`
	FulfillmentStatus string             `json:"orderFulfillmentStatus"`
	PaymentStatus     string             `json:"orderPaymentStatus"`
	Buyer             wireBuyer          `json:"buyer"`
	PricingSummary    wirePricingSummary `json:"pricingSummary"`
	LineItems         []wireLineItem     `json:"lineItems"`
}

type wireOrderPage struct {
	Orders []wireOrder `json:"orders"`
	Total  int         `json:"total"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

type wireFulfillment struct {
	FulfillmentID          string `json:"fulfillmentId"`
	ShippedDate            string `json:"shippedDate"`
	ShipmentTrackingNumber string `json:"shipmentTrackingNumber"`
	ShippingCarrierCode    string `json:"shippingCarrierCode"`
}

type wireFulfillmentPage struct {
	Fulfillments []wireFulfillment `json:"fulfillments"`
}

type wireFee struct {
	Amount wireAmount `json:"amount"`
	Type   string     `json:"feeType"`
}

type wireTransaction struct {
	TransactionID string      `json:"transactionId"`
	Date          string      `json:"transactionDate"`
	OrderFees     []wireFee   `json:"orderFees"`
	Postage       *wireAmount `json:"totalShippingCost"`
}

type wireTransactionPage struct {
	Transactions []wireTransaction `json:"transactions"`
}

func (c *RESTClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("marketplace API %s returned %d: %s", path, resp.StatusCode, truncate(string(body), 256))
	}
	return json.Unmarshal(body, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(isoMillis, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (c *RESTClient) ListOrders(ctx context.Context, rng DateRange, limit, offset int) (*OrderPage, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("lastmodifieddate:[%s..%s]",
		rng.From.UTC().Format(isoMillis), rng.To.UTC().Format(isoMillis)))
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	var page wireOrderPage
	if err := c.get(ctx, "/sell/fulfillment/v1/order", q, &page); err != nil {
		return nil, err
	}

	out := &OrderPage{Total: page.Total, Offset: page.Offset, Limit: page.Limit}
	for _, wo := range page.Orders {
		created, err := parseDate(wo.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad creationDate %q: %w", wo.OrderID, wo.CreationDate, err)
		}
		modified, err := parseDate(wo.LastModifiedDate)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad lastModifiedDate %q: %w", wo.OrderID, wo.LastModifiedDate, err)
		}
		o := Order{
			OrderID:           wo.OrderID,
			CreationDate:      created,
			LastModifiedDate:  modified,
			FulfillmentStatus: wo.FulfillmentStatus,
			PaymentStatus:     wo.PaymentStatus,
			BuyerUsername:     wo.Buyer.Username,
			Currency:          wo.PricingSummary.Total.Currency,
			Total:             wo.PricingSummary.Total.Value,
		}
		for _, wl := range wo.LineItems {
			o.LineItems = append(o.LineItems, LineItem{
				LineItemID:        wl.LineItemID,
				SKU:               wl.SKU,
				Title:             wl.Title,
				Quantity:          wl.Quantity,
				Total:             wl.Total.Value,
				FulfillmentStatus: wl.FulfillmentStatus,
			})
		}
		out.Orders = append(out.Orders, o)
	}
	return out, nil
}

func (c *RESTClient) ListFulfillments(ctx context.Context, orderID string) ([]Fulfillment, error) {
	var page wireFulfillmentPage
	path := fmt.Sprintf("/sell/fulfillment/v1/order/%s/shipping_fulfillment", url.PathEscape(orderID))
	if err := c.get(ctx, path, nil, &page); err != nil {
		return nil, err
	}
	out := make([]Fulfillment, 0, len(page.Fulfillments))
	for _, wf := range page.Fulfillments {
		f := Fulfillment{
			FulfillmentID:  wf.FulfillmentID,
			Carrier:        wf.ShippingCarrierCode,
			TrackingNumber: wf.ShipmentTrackingNumber,
		}
		if wf.ShippedDate != "" {
			t, err := parseDate(wf.ShippedDate)
			if err != nil {
				return nil, fmt.Errorf("fulfillment %s: bad shippedDate %q: %w", wf.FulfillmentID, wf.ShippedDate, err)
			}
			f.ShippedDate = &t
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *RESTClient) GetTransactionFees(ctx context.Context, orderID string) (*FeeBreakdown, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("orderId:{%s}", orderID))
	var page wireTransactionPage
	if err := c.get(ctx, "/sell/finances/v1/transaction", q, &page); err != nil {
		return nil, err
	}
	if len(page.Transactions) == 0 {
		return nil, nil
	}
	wt := page.Transactions[0]
	fb := &FeeBreakdown{TransactionID: wt.TransactionID}
	if wt.Date != "" {
		if t, err := parseDate(wt.Date); err == nil {
			fb.SettledAt = &t
		}
	}
	for _, fee := range wt.OrderFees {
		v := fee.Amount.Value
		switch fee.Type {
		case "FINAL_VALUE_FEE_FIXED_PER_ORDER":
			fb.FinalValueFeeFixed = &v
		case "FINAL_VALUE_FEE":
			fb.FinalValueFeeVariable = &v
		case "REGULATORY_OPERATING_FEE":
			fb.RegulatoryFee = &v
		case "INTERNATIONAL_FEE":
			fb.InternationalFee = &v
		case "AD_FEE":
			fb.AdFee = &v
		}
	}
	if wt.Postage != nil {
		v := wt.Postage.Value
		fb.PostageCost = &v
	}
	return fb, nil
}
