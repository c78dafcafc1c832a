package httpapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

type adminAPI struct {
	*Server
	responder
}

func (a adminAPI) routes(r *mux.Router) {
	r.HandleFunc("/tags", a.listTags).Methods(http.MethodGet)
	r.HandleFunc("/tags/{id}", a.getTag).Methods(http.MethodGet)
}

func (a adminAPI) listTags(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Tag](r.Context(), a.store, model.CollectionTags)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	keyword := strings.ToLower(strings.TrimSpace(q.Get("keyword")))
	activeParam := strings.TrimSpace(q.Get("isActive"))
	// Any value other than "true" selects inactive tags.
	active := activeParam == "true"

	result := filter(all, func(t model.Tag) bool {
		switch {
		case category != "" && t.Category != category:
			return false
		case activeParam != "" && t.IsActive != active:
			return false
		case keyword != "" && !strings.Contains(strings.ToLower(t.Name), keyword):
			return false
		}
		return true
	})
	slices.SortStableFunc(result, func(x, y model.Tag) int { return x.SortOrder - y.SortOrder })
	a.ok(w, paginate(result, readPage(q, tagPageSize), false))
}

func (a adminAPI) getTag(w http.ResponseWriter, r *http.Request) {
	t, err := getOne[model.Tag](r.Context(), a.store, model.CollectionTags, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, "标签不存在")
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, t)
}
