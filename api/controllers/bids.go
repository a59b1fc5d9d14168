package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auctiondesk/api/responses"
	"github.com/gavelworks/auctiondesk/api/validators"
	"github.com/gavelworks/auctiondesk/internal/bids"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/logger"
	"github.com/gavelworks/auctiondesk/pkg/metrics"
)

type saveBidRequest struct {
	AuctionID    uint            `json:"auction_id" validate:"required,min=1"`
	ItemID       uint            `json:"item_id" validate:"required,min=1"`
	BidderID     uint            `json:"bidder_id"`
	WinningPrice decimal.Decimal `json:"winning_price"`
	QuantityWon  int             `json:"quantity_won" validate:"omitempty,min=0"`
	NoBid        bool            `json:"no_bid"`
	AllowSplit   bool            `json:"allow_split"`
}

type updateBidRequest struct {
	BidderID     *uint            `json:"bidder_id,omitempty" validate:"omitempty,min=1"`
	WinningPrice *decimal.Decimal `json:"winning_price,omitempty"`
	QuantityWon  *int             `json:"quantity_won,omitempty" validate:"omitempty,min=1"`
}

// SaveBid records a winning bid (or the explicit no-bid marker) for an item
// within an auction. A save over an item that already has a bid updates that
// bid instead of creating a second row, unless the caller asks for a split.
func SaveBid(svc bids.Service, flow *metrics.BidFlowMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		var payload saveBidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		summary, err := svc.Save(r.Context(), bids.SaveInput{
			AuctionID:   payload.AuctionID,
			ItemID:      payload.ItemID,
			BidderID:    payload.BidderID,
			Price:       payload.WinningPrice,
			QuantityWon: payload.QuantityWon,
			NoBid:       payload.NoBid,
			AllowSplit:  payload.AllowSplit,
		})
		flow.ObserveMutation("save", err, time.Since(start))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

// UpdateBid edits an existing bid keyed by bid id.
func UpdateBid(svc bids.Service, flow *metrics.BidFlowMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		bidID, err := validators.ParseURLUint(chi.URLParam(r, "bidID"), "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		summary, err := svc.Update(r.Context(), bidID, bids.UpdateInput{
			BidderID:    payload.BidderID,
			Price:       payload.WinningPrice,
			QuantityWon: payload.QuantityWon,
		})
		flow.ObserveMutation("update", err, time.Since(start))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// DeleteBid removes a bid and frees its inventory. Deleting a bid that does
// not exist succeeds; the operation is idempotent.
func DeleteBid(svc bids.Service, flow *metrics.BidFlowMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		bidID, err := validators.ParseURLUint(chi.URLParam(r, "bidID"), "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		err = svc.Delete(r.Context(), bidID)
		flow.ObserveMutation("delete", err, time.Since(start))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
