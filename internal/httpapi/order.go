package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const msgOrderNotFound = "订单不存在"

type orderAPI struct {
	*Server
	responder
}

func (a orderAPI) routes(r *mux.Router) {
	r.HandleFunc("/parent/list", a.list).Methods(http.MethodGet)
	r.HandleFunc("/parent/{id}", a.detail).Methods(http.MethodGet)
	r.HandleFunc("/parent/{id}/cancel", a.cancel).Methods(http.MethodPost)
}

func (a orderAPI) list(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Order](r.Context(), a.store, model.CollectionOrders)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	result := all
	if status := strings.TrimSpace(q.Get("status")); status != "" {
		result = filter(result, func(o model.Order) bool { return o.Status == status })
	}
	if orderType := strings.TrimSpace(q.Get("orderType")); orderType != "" {
		result = filter(result, func(o model.Order) bool { return o.OrderType == orderType })
	}
	newestFirst(result, func(o model.Order) string { return o.CreatedAt })
	a.ok(w, paginate(result, readPage(q, defaultPageSize), true))
}

func (a orderAPI) detail(w http.ResponseWriter, r *http.Request) {
	o, err := getOne[model.Order](r.Context(), a.store, model.CollectionOrders, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgOrderNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, o)
}

func (a orderAPI) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !a.bind(w, r, &req, msgBadBody) {
		return
	}
	reason := orDefault(req.Reason, "用户取消")
	at := model.ISOTime(a.now())
	err := transition(r.Context(), a.store, model.CollectionOrders, mux.Vars(r)["id"],
		model.OrderMachine, model.OrderCancelled,
		func(o *model.Order) *string { return &o.Status },
		func(o *model.Order) {
			o.CancelReason = reason
			o.CancelledAt = at
		},
	)
	switch {
	case err == nil:
		a.ok(w, message{Message: "取消成功"})
	case errors.Is(err, sqlite.ErrNotFound):
		a.fail(w, http.StatusNotFound, msgOrderNotFound)
	case errors.Is(err, errTransitionRefused):
		a.fail(w, http.StatusBadRequest, msgCannotCancel)
	default:
		a.internal(w, r, err)
	}
}
