package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"companion_mock/internal/metrics"
	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const (
	msgExtensionNotFound = "延时申请不存在"
	msgExtensionInvalid  = "参数错误"

	// 预估接口使用固定的原结束时间。
	estimateDate    = "2024-05-15"
	estimateEndHour = 11.0
)

type extensionAPI struct {
	*Server
	responder
}

func (a extensionAPI) routes(r *mux.Router) {
	r.HandleFunc("/parent/estimate", a.estimate).Methods(http.MethodPost)
	r.HandleFunc("/parent/create", a.create).Methods(http.MethodPost)
	r.HandleFunc("/parent/list", a.list).Methods(http.MethodGet)
	r.HandleFunc("/parent/{id}", a.detail).Methods(http.MethodGet)
	r.HandleFunc("/parent/{id}/cancel", a.cancel).Methods(http.MethodPost)

	r.HandleFunc("/companion/pending", a.pending).Methods(http.MethodGet)
	r.HandleFunc("/companion/pending-count", a.pendingCount).Methods(http.MethodGet)
	r.HandleFunc("/companion/list", a.list).Methods(http.MethodGet)
	r.HandleFunc("/companion/{id}", a.detail).Methods(http.MethodGet)
	r.HandleFunc("/companion/{id}/confirm", a.confirm).Methods(http.MethodPost)
	r.HandleFunc("/companion/{id}/reject", a.reject).Methods(http.MethodPost)
}

type extensionRequest struct {
	OrderID        string  `json:"orderId" validate:"required"`
	ExtensionHours float64 `json:"extensionHours" validate:"required"`
	Remark         string  `json:"remark"`
}

type extensionEstimate struct {
	OrderID         string  `json:"orderId"`
	ExtensionHours  float64 `json:"extensionHours"`
	HourlyRate      float64 `json:"hourlyRate"`
	ExtensionFee    float64 `json:"extensionFee"`
	OriginalEndTime string  `json:"originalEndTime"`
	NewEndTime      string  `json:"newEndTime"`
}

func (a extensionAPI) estimate(w http.ResponseWriter, r *http.Request) {
	var req extensionRequest
	if !a.bind(w, r, &req, msgExtensionInvalid) {
		return
	}
	rate := a.cfg.Mock.ExtensionHourlyRate
	a.ok(w, extensionEstimate{
		OrderID:         req.OrderID,
		ExtensionHours:  req.ExtensionHours,
		HourlyRate:      rate,
		ExtensionFee:    rate * req.ExtensionHours,
		OriginalEndTime: estimateDate + " " + formatHours(estimateEndHour) + ":00",
		NewEndTime:      estimateDate + " " + formatHours(estimateEndHour+req.ExtensionHours) + ":00",
	})
}

// create does not require the order to exist; when it does, the order's
// display fields are copied onto the extension.
func (a extensionAPI) create(w http.ResponseWriter, r *http.Request) {
	var req extensionRequest
	if !a.bind(w, r, &req, msgExtensionInvalid) {
		return
	}
	ext := model.Extension{
		OrderID:        req.OrderID,
		ExtensionHours: req.ExtensionHours,
		ExtensionFee:   a.cfg.Mock.ExtensionHourlyRate * req.ExtensionHours,
		Status:         model.ExtensionPending,
		Remark:         req.Remark,
		CreatedAt:      model.ISOTime(a.now()),
	}
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		order, err := sqlite.Get[model.Order](tx, model.CollectionOrders, req.OrderID)
		switch {
		case err == nil:
			ext.OrderNo = order.OrderNo
			ext.CompanionName = order.CompanionName
			ext.ChildName = order.ChildName
			ext.ServiceDate = order.ServiceDate
		case !errors.Is(err, sqlite.ErrNotFound):
			return err
		}
		id, _, err := nextID(tx, model.CollectionExtensions, "ext")
		if err != nil {
			return err
		}
		ext.ID = id
		return sqlite.Put(tx, model.CollectionExtensions, ext.ID, ext)
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	metrics.EntitiesCreatedTotal.WithLabelValues(model.CollectionExtensions).Inc()
	a.ok(w, ext)
}

func (a extensionAPI) list(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Extension](r.Context(), a.store, model.CollectionExtensions)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	orderID := strings.TrimSpace(q.Get("orderId"))
	status := strings.TrimSpace(q.Get("status"))
	startDate := strings.TrimSpace(q.Get("startDate"))
	endDate := strings.TrimSpace(q.Get("endDate"))

	// serviceDate is YYYY-MM-DD, so string order is date order.
	result := filter(all, func(e model.Extension) bool {
		switch {
		case orderID != "" && e.OrderID != orderID:
			return false
		case status != "" && e.Status != status:
			return false
		case startDate != "" && e.ServiceDate < startDate:
			return false
		case endDate != "" && e.ServiceDate > endDate:
			return false
		}
		return true
	})
	newestFirst(result, func(e model.Extension) string { return e.CreatedAt })
	a.ok(w, paginate(result, readPage(q, defaultPageSize), true))
}

func (a extensionAPI) detail(w http.ResponseWriter, r *http.Request) {
	ext, err := getOne[model.Extension](r.Context(), a.store, model.CollectionExtensions, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgExtensionNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, ext)
}

func (a extensionAPI) pendingList(r *http.Request) ([]model.Extension, error) {
	all, err := listAll[model.Extension](r.Context(), a.store, model.CollectionExtensions)
	if err != nil {
		return nil, err
	}
	return filter(all, func(e model.Extension) bool { return e.Status == model.ExtensionPending }), nil
}

func (a extensionAPI) pending(w http.ResponseWriter, r *http.Request) {
	list, err := a.pendingList(r)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	one := 1
	a.ok(w, pageResult[model.Extension]{
		List:       list,
		Total:      len(list),
		Page:       1,
		Size:       len(list),
		TotalPages: &one,
	})
}

func (a extensionAPI) pendingCount(w http.ResponseWriter, r *http.Request) {
	list, err := a.pendingList(r)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, map[string]int{"count": len(list)})
}

func (a extensionAPI) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CancelReason string `json:"cancelReason"`
	}
	if !a.bind(w, r, &req, msgBadBody) {
		return
	}
	reason := orDefault(req.CancelReason, "用户取消")
	at := model.ISOTime(a.now())
	a.move(w, r, model.ExtensionCancelled, "取消成功", msgCannotCancel, func(e *model.Extension) {
		e.CancelReason = reason
		e.CancelledAt = at
	})
}

func (a extensionAPI) confirm(w http.ResponseWriter, r *http.Request) {
	at := model.ISOTime(a.now())
	a.move(w, r, model.ExtensionConfirmed, "确认成功", "当前状态不可确认", func(e *model.Extension) {
		e.ConfirmedAt = at
	})
}

func (a extensionAPI) reject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RejectReason string `json:"rejectReason"`
	}
	if !a.bind(w, r, &req, msgBadBody) {
		return
	}
	reason := orDefault(req.RejectReason, "陪伴官拒绝")
	at := model.ISOTime(a.now())
	a.move(w, r, model.ExtensionRejected, "拒绝成功", "当前状态不可拒绝", func(e *model.Extension) {
		e.RejectReason = reason
		e.RejectedAt = at
	})
}

func (a extensionAPI) move(w http.ResponseWriter, r *http.Request, target, okMsg, refusedMsg string, mutate func(*model.Extension)) {
	err := transition(r.Context(), a.store, model.CollectionExtensions, mux.Vars(r)["id"],
		model.ExtensionMachine, target,
		func(e *model.Extension) *string { return &e.Status },
		mutate,
	)
	switch {
	case err == nil:
		a.ok(w, message{Message: okMsg})
	case errors.Is(err, sqlite.ErrNotFound):
		a.fail(w, http.StatusNotFound, msgExtensionNotFound)
	case errors.Is(err, errTransitionRefused):
		a.fail(w, http.StatusBadRequest, refusedMsg)
	default:
		a.internal(w, r, err)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
