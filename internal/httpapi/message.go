package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

type messageAPI struct {
	*Server
	responder
}

func (a messageAPI) routes(r *mux.Router) {
	r.HandleFunc("/notifications", a.list).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread-count", a.unreadCount).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read-all", a.ack("全部标记已读成功")).Methods(http.MethodPost)
	r.HandleFunc("/notifications/read-by-type", a.ack("标记已读成功")).Methods(http.MethodPost)
	r.HandleFunc("/notifications/clear-read", a.ack("清除成功")).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}", a.detail).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", a.ack("标记已读成功")).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/handle-invite", a.handleInvite).Methods(http.MethodPost)
}

func (a messageAPI) list(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Notification](r.Context(), a.store, model.CollectionNotifications)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	result := all
	if typ := strings.TrimSpace(q.Get("type")); typ != "" {
		result = filter(result, func(n model.Notification) bool { return n.NotificationType == typ })
	}
	newestFirst(result, func(n model.Notification) string { return n.CreatedAt })
	a.ok(w, paginate(result, readPage(q, defaultPageSize), false))
}

type unreadCount struct {
	Total   int `json:"total"`
	System  int `json:"system"`
	Task    int `json:"task"`
	Order   int `json:"order"`
	Finance int `json:"finance"`
}

// unreadCount is recomputed from isRead on every call.
func (a messageAPI) unreadCount(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Notification](r.Context(), a.store, model.CollectionNotifications)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	var c unreadCount
	for _, n := range all {
		if n.IsRead {
			continue
		}
		c.Total++
		switch n.NotificationType {
		case model.NotificationSystem:
			c.System++
		case model.NotificationTask:
			c.Task++
		case model.NotificationOrder:
			c.Order++
		case model.NotificationFinance:
			c.Finance++
		}
	}
	a.ok(w, c)
}

// detail answers a missing notification with HTTP 200 and code 404.
func (a messageAPI) detail(w http.ResponseWriter, r *http.Request) {
	n, err := getOne[model.Notification](r.Context(), a.store, model.CollectionNotifications, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.softFail(w, http.StatusNotFound, "通知不存在")
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, n)
}

// ack acknowledges read-state requests without changing any notification.
func (a messageAPI) ack(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		a.okMessage(w, msg, nil)
	}
}

func (a messageAPI) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if !a.bind(w, r, &req, msgBadBody) {
		return
	}
	if req.Action == "ACCEPT" {
		a.okMessage(w, "已接受邀请", nil)
		return
	}
	a.okMessage(w, "已拒绝邀请", nil)
}
