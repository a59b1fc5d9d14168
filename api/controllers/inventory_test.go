package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelworks/auctiondesk/internal/inventory"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

type stubInventoryService struct {
	snap *inventory.Snapshot
	err  error
}

func (s *stubInventoryService) Check(ctx context.Context, auctionID, itemID uint) (*inventory.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func newInventoryRequest(auctionID, itemID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auctions/"+auctionID+"/items/"+itemID+"/inventory", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("auctionID", auctionID)
	routeCtx.URLParams.Add("itemID", itemID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCheckInventorySuccess(t *testing.T) {
	svc := &stubInventoryService{snap: &inventory.Snapshot{
		ItemID: 10, AuctionID: 1,
		TotalQuantity: 3, AllocatedQuantity: 1, AvailableQuantity: 2, CanAddBid: true,
	}}
	req := newInventoryRequest("1", "10")
	rec := httptest.NewRecorder()

	CheckInventory(svc, testFlow(), testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data inventory.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.AvailableQuantity)
	assert.True(t, envelope.Data.CanAddBid)
}

func TestCheckInventoryNotInAuction(t *testing.T) {
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeNotInAuction, "item 99 not found or not part of this auction")}
	req := newInventoryRequest("1", "99")
	rec := httptest.NewRecorder()

	CheckInventory(svc, testFlow(), testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_IN_AUCTION")
}
