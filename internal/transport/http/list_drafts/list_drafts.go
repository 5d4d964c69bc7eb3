package listdrafts

import (
	"context"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/shopfront/orders/internal/service/models/draft"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	ListDrafts(ctx context.Context, limit int) ([]draft.Draft, error)
}

type queryDraftsRequest struct {
	Limit int `schema:"limit,omitempty"`
}

func ListDrafts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	query := &queryDraftsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	drafts, err := service.ListDrafts(r.Context(), query.Limit)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, drafts)
}
