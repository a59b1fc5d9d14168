package controllers

import (
	"net/http"
	"strings"

	"github.com/gavelworks/auctiondesk/api/responses"
	"github.com/gavelworks/auctiondesk/api/validators"
	"github.com/gavelworks/auctiondesk/internal/catalog"
	"github.com/gavelworks/auctiondesk/pkg/enums"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/logger"
	"github.com/gavelworks/auctiondesk/pkg/metrics"
)

type lookupResponse struct {
	Results any `json:"results"`
}

// Lookup serves the typeahead searches behind the Item and Bidder fields.
// Item lookups are scoped to one auction; bidder lookups are global.
func Lookup(svc catalog.Service, flow *metrics.BidFlowMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		kind, err := enums.ParseLookupKind(strings.TrimSpace(r.URL.Query().Get("type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lookup type"))
			return
		}
		term := r.URL.Query().Get("term")
		flow.ObserveLookup(kind.String())

		switch kind {
		case enums.LookupKindItem:
			auctionID, err := validators.ParseQueryUint(r, "auction_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			results, err := svc.SearchItems(r.Context(), auctionID, term)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, lookupResponse{Results: results})

		case enums.LookupKindBidder:
			results, err := svc.SearchBidders(r.Context(), term)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, lookupResponse{Results: results})
		}
	}
}
