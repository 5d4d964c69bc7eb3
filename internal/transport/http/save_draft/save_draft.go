package savedraft

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/draft"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	SaveDraft(ctx context.Context, data draft.Data, rawID string) (uuid.UUID, error)
}

// saveDraftRequest is the checkout form as typed so far plus the draft id from a previous save.
type saveDraftRequest struct {
	DraftID string `json:"draftId"`
	draft.Data
}

type saveDraftResponse struct {
	DraftID uuid.UUID `json:"draftId"`
}

// SaveDraft creates or replaces a checkout draft.
func SaveDraft(w http.ResponseWriter, r *http.Request, service service) {
	req := saveDraftRequest{}
	if err := httpio.Decode(r, &req); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	id, err := service.SaveDraft(r.Context(), req.Data, req.DraftID)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, saveDraftResponse{DraftID: id})
}
