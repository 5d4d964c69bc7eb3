package deletedraft

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	DeleteDraft(ctx context.Context, id uuid.UUID) error
}

// DeleteDraft removes a draft. Deleting an unknown draft still succeeds.
func DeleteDraft(w http.ResponseWriter, r *http.Request, service service) {
	id, err := httpio.PathID(r)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	if err := service.DeleteDraft(r.Context(), id); err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, map[string]uuid.UUID{"draftId": id})
}
