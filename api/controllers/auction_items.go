package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gavelworks/auctiondesk/api/responses"
	"github.com/gavelworks/auctiondesk/api/validators"
	"github.com/gavelworks/auctiondesk/internal/bids"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/logger"
)

// ListAuctionItems returns the per-item bid status for every item in an
// auction, plus the running totals. Entry clients poll this to stay in sync
// with bids recorded at other stations.
func ListAuctionItems(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		auctionID, err := validators.ParseURLUint(chi.URLParam(r, "auctionID"), "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.ListAuctionItems(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
