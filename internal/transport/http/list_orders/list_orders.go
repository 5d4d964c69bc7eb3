package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	ListOrders(ctx context.Context, model order.ListModel) (order.Page, error)
}

type queryOrdersRequest struct {
	Status string `schema:"status,omitempty"`
	Phone  string `schema:"phone,omitempty"`
	Page   int    `schema:"page,omitempty"`
	Limit  int    `schema:"limit,omitempty"`
}

func (q *queryOrdersRequest) ToModel() order.ListModel {
	return order.ListModel{
		Status: q.Status,
		Phone:  q.Phone,
		Page:   q.Page,
		Limit:  q.Limit,
	}
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		slog.Error("Error decoding request", "error", err)
		httpio.BadRequest(w, err)

		return
	}

	page, err := service.ListOrders(r.Context(), query.ToModel())
	if err != nil {
		slog.Error("Error listing orders", "error", err)
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, page)
}
