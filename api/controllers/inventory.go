package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gavelworks/auctiondesk/api/responses"
	"github.com/gavelworks/auctiondesk/api/validators"
	"github.com/gavelworks/auctiondesk/internal/inventory"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/logger"
	"github.com/gavelworks/auctiondesk/pkg/metrics"
)

// CheckInventory reports an item's quantity position within an auction and
// any existing winning bids, driving the entry form's edit mode.
func CheckInventory(svc inventory.Service, flow *metrics.BidFlowMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		auctionID, err := validators.ParseURLUint(chi.URLParam(r, "auctionID"), "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseURLUint(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flow.ObserveInventoryCheck()

		snapshot, err := svc.Check(r.Context(), auctionID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
