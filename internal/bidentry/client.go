package bidentry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auctiondesk/internal/bids"
	"github.com/gavelworks/auctiondesk/internal/catalog"
	"github.com/gavelworks/auctiondesk/internal/inventory"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/types"
)

const errorBodyReadLimit int64 = 4096

// SaveBidRequest is the payload for recording a bid (or the no-bid marker).
type SaveBidRequest struct {
	AuctionID    uint            `json:"auction_id"`
	ItemID       uint            `json:"item_id"`
	BidderID     uint            `json:"bidder_id"`
	WinningPrice decimal.Decimal `json:"winning_price"`
	QuantityWon  int             `json:"quantity_won"`
	NoBid        bool            `json:"no_bid"`
	AllowSplit   bool            `json:"allow_split"`
}

// UpdateBidRequest carries the editable fields of an existing bid. Nil means
// leave unchanged.
type UpdateBidRequest struct {
	BidderID     *uint            `json:"bidder_id,omitempty"`
	WinningPrice *decimal.Decimal `json:"winning_price,omitempty"`
	QuantityWon  *int             `json:"quantity_won,omitempty"`
}

// API is the server surface the entry engine depends on. Tests swap in a
// stub; production uses Client.
type API interface {
	LookupItems(ctx context.Context, auctionID uint, term string) ([]catalog.ItemResult, error)
	LookupBidders(ctx context.Context, term string) ([]catalog.BidderResult, error)
	CheckInventory(ctx context.Context, auctionID, itemID uint) (*inventory.Snapshot, error)
	SaveBid(ctx context.Context, req SaveBidRequest) (*bids.BidSummary, error)
	UpdateBid(ctx context.Context, bidID uint, req UpdateBidRequest) (*bids.BidSummary, error)
	DeleteBid(ctx context.Context, bidID uint) error
	AuctionStatus(ctx context.Context, auctionID uint) (*bids.AuctionStatus, error)
}

// Client is the HTTP implementation of API over the bid service's routes.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures optional client behavior.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds an API client for the given server base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) LookupItems(ctx context.Context, auctionID uint, term string) ([]catalog.ItemResult, error) {
	q := url.Values{}
	q.Set("type", "item")
	q.Set("auction_id", strconv.FormatUint(uint64(auctionID), 10))
	q.Set("term", term)

	var payload struct {
		Results []catalog.ItemResult `json:"results"`
	}
	if err := c.get(ctx, "/api/v1/lookup?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *Client) LookupBidders(ctx context.Context, term string) ([]catalog.BidderResult, error) {
	q := url.Values{}
	q.Set("type", "bidder")
	q.Set("term", term)

	var payload struct {
		Results []catalog.BidderResult `json:"results"`
	}
	if err := c.get(ctx, "/api/v1/lookup?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *Client) CheckInventory(ctx context.Context, auctionID, itemID uint) (*inventory.Snapshot, error) {
	path := fmt.Sprintf("/api/v1/auctions/%d/items/%d/inventory", auctionID, itemID)
	var snapshot inventory.Snapshot
	if err := c.get(ctx, path, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) SaveBid(ctx context.Context, req SaveBidRequest) (*bids.BidSummary, error) {
	var summary bids.BidSummary
	if err := c.send(ctx, http.MethodPost, "/api/v1/bids", req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) UpdateBid(ctx context.Context, bidID uint, req UpdateBidRequest) (*bids.BidSummary, error) {
	var summary bids.BidSummary
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/bids/%d", bidID), req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) DeleteBid(ctx context.Context, bidID uint) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+fmt.Sprintf("/api/v1/bids/%d", bidID), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build delete request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute delete request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) AuctionStatus(ctx context.Context, auctionID uint) (*bids.AuctionStatus, error) {
	var status bids.AuctionStatus
	if err := c.get(ctx, fmt.Sprintf("/api/v1/auctions/%d/items", auctionID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	return c.do(httpReq, out)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	return c.do(httpReq, out)
}

func (c *Client) do(httpReq *http.Request, out any) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response payload")
	}
	return nil
}

// decodeError maps the server's error envelope back onto typed errors so the
// engine can distinguish "not part of this auction" from transport failures.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	code := pkgerrors.Code(envelope.Error.Code)
	switch code {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeNotInAuction,
		pkgerrors.CodeConflict, pkgerrors.CodeInventoryExhausted, pkgerrors.CodeStateConflict:
		return pkgerrors.New(code, envelope.Error.Message)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, envelope.Error.Message)
	}
}
