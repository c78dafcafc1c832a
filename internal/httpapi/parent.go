package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"companion_mock/internal/metrics"
	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const (
	msgChildNotFound   = "萌娃不存在"
	msgAddressNotFound = "地址不存在"
)

type parentAPI struct {
	*Server
	responder
}

func (a parentAPI) routes(r *mux.Router) {
	r.HandleFunc("/profile", a.getProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile", a.updateProfile).Methods(http.MethodPut)

	r.HandleFunc("/children", a.listChildren).Methods(http.MethodGet)
	r.HandleFunc("/children", a.createChild).Methods(http.MethodPost)
	r.HandleFunc("/children/{id}", a.getChild).Methods(http.MethodGet)
	r.HandleFunc("/children/{id}", a.updateChild).Methods(http.MethodPut)
	r.HandleFunc("/children/{id}", a.deleteChild).Methods(http.MethodDelete)

	r.HandleFunc("/addresses", a.listAddresses).Methods(http.MethodGet)
	r.HandleFunc("/addresses", a.createAddress).Methods(http.MethodPost)
	r.HandleFunc("/addresses/{id}/default", a.setDefaultAddress).Methods(http.MethodPut)
	r.HandleFunc("/addresses/{id}", a.getAddress).Methods(http.MethodGet)
	r.HandleFunc("/addresses/{id}", a.updateAddress).Methods(http.MethodPut)
	r.HandleFunc("/addresses/{id}", a.deleteAddress).Methods(http.MethodDelete)

	r.HandleFunc("/companions", a.listCompanions).Methods(http.MethodGet)
	r.HandleFunc("/companions/{id}", a.getCompanion).Methods(http.MethodGet)

	r.HandleFunc("/wallet", a.wallet).Methods(http.MethodGet)
	r.HandleFunc("/calendar", a.calendar).Methods(http.MethodGet)
}

// ---- profile ----

func (a parentAPI) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := getValue[model.ParentProfile](r.Context(), a.store, model.KeyParentProfile)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, p)
}

func (a parentAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AvatarURL string `json:"avatarUrl"`
		Nickname  string `json:"nickname"`
	}
	if !a.bind(w, r, &req, msgBadBody) {
		return
	}
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		p, err := sqlite.MustValue[model.ParentProfile](tx, model.KeyParentProfile)
		if err != nil {
			return err
		}
		if req.AvatarURL != "" {
			p.Avatar = req.AvatarURL
		}
		if req.Nickname != "" {
			p.Nickname = req.Nickname
		}
		return sqlite.PutValue(tx, model.KeyParentProfile, p)
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, message{Message: "更新成功"})
}

// ---- children ----

func (a parentAPI) listChildren(w http.ResponseWriter, r *http.Request) {
	children, err := listAll[model.Child](r.Context(), a.store, model.CollectionChildren)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, children)
}

func (a parentAPI) getChild(w http.ResponseWriter, r *http.Request) {
	c, err := getOne[model.Child](r.Context(), a.store, model.CollectionChildren, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgChildNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, c)
}

func (a parentAPI) createChild(w http.ResponseWriter, r *http.Request) {
	var c model.Child
	if !a.bind(w, r, &c, msgBadBody) {
		return
	}
	c.Age = ageOn(c.Birthday, a.now().Year())
	c.Extra.Forget("id", "age")

	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		id, _, err := nextID(tx, model.CollectionChildren, "child")
		if err != nil {
			return err
		}
		c.ID = id
		return sqlite.Put(tx, model.CollectionChildren, c.ID, c)
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	metrics.EntitiesCreatedTotal.WithLabelValues(model.CollectionChildren).Inc()
	a.ok(w, idPayload{ID: c.ID})
}

// ageOn is the difference of calendar years; nil without a parseable birthday.
func ageOn(birthday string, year int) *int {
	if strings.TrimSpace(birthday) == "" {
		return nil
	}
	t := model.ParseTime(birthday)
	if t.IsZero() {
		return nil
	}
	age := year - t.Year()
	return &age
}

func (a parentAPI) updateChild(w http.ResponseWriter, r *http.Request) {
	body, ok := a.readBody(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		c, err := sqlite.Get[model.Child](tx, model.CollectionChildren, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &c); err != nil {
			return errBadBody
		}
		c.ID = id
		c.Extra.Forget("id")
		return sqlite.Put(tx, model.CollectionChildren, id, c)
	})
	a.answerUpdate(w, r, err, msgChildNotFound)
}

func (a parentAPI) deleteChild(w http.ResponseWriter, r *http.Request) {
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		return sqlite.Delete(tx, model.CollectionChildren, mux.Vars(r)["id"])
	})
	a.answerDelete(w, r, err, msgChildNotFound)
}

var errBadBody = errors.New("malformed request body")

func (a parentAPI) answerUpdate(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case err == nil:
		a.ok(w, message{Message: "更新成功"})
	case errors.Is(err, sqlite.ErrNotFound):
		a.fail(w, http.StatusNotFound, notFound)
	case errors.Is(err, errBadBody):
		a.fail(w, http.StatusBadRequest, msgBadBody)
	default:
		a.internal(w, r, err)
	}
}

func (a parentAPI) answerDelete(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case err == nil:
		a.ok(w, message{Message: "删除成功"})
	case errors.Is(err, sqlite.ErrNotFound):
		a.fail(w, http.StatusNotFound, notFound)
	default:
		a.internal(w, r, err)
	}
}

// ---- addresses ----

func (a parentAPI) listAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := listAll[model.Address](r.Context(), a.store, model.CollectionAddresses)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, addrs)
}

func (a parentAPI) getAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := getOne[model.Address](r.Context(), a.store, model.CollectionAddresses, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgAddressNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, addr)
}

func (a parentAPI) createAddress(w http.ResponseWriter, r *http.Request) {
	var addr model.Address
	if !a.bind(w, r, &addr, msgBadBody) {
		return
	}
	addr.Compose()
	addr.Extra.Forget("id", "fullAddress", "isDefault")

	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		id, _, err := nextID(tx, model.CollectionAddresses, "addr")
		if err != nil {
			return err
		}
		addr.ID = id
		if addr.IsDefault {
			if err := clearDefaultAddress(tx, ""); err != nil {
				return err
			}
		}
		return sqlite.Put(tx, model.CollectionAddresses, addr.ID, addr)
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	metrics.EntitiesCreatedTotal.WithLabelValues(model.CollectionAddresses).Inc()
	a.ok(w, idPayload{ID: addr.ID})
}

func (a parentAPI) updateAddress(w http.ResponseWriter, r *http.Request) {
	body, ok := a.readBody(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		addr, err := sqlite.Get[model.Address](tx, model.CollectionAddresses, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &addr); err != nil {
			return errBadBody
		}
		addr.ID = id
		addr.Compose()
		addr.Extra.Forget("id", "fullAddress", "isDefault")
		if addr.IsDefault {
			if err := clearDefaultAddress(tx, id); err != nil {
				return err
			}
		}
		return sqlite.Put(tx, model.CollectionAddresses, id, addr)
	})
	a.answerUpdate(w, r, err, msgAddressNotFound)
}

func (a parentAPI) deleteAddress(w http.ResponseWriter, r *http.Request) {
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		return sqlite.Delete(tx, model.CollectionAddresses, mux.Vars(r)["id"])
	})
	a.answerDelete(w, r, err, msgAddressNotFound)
}

func (a parentAPI) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		addr, err := sqlite.Get[model.Address](tx, model.CollectionAddresses, id)
		if err != nil {
			return err
		}
		if err := clearDefaultAddress(tx, id); err != nil {
			return err
		}
		addr.IsDefault = true
		return sqlite.Put(tx, model.CollectionAddresses, id, addr)
	})
	switch {
	case err == nil:
		a.ok(w, message{Message: "设置成功"})
	case errors.Is(err, sqlite.ErrNotFound):
		a.fail(w, http.StatusNotFound, msgAddressNotFound)
	default:
		a.internal(w, r, err)
	}
}

// clearDefaultAddress unsets isDefault on every address except keep.
func clearDefaultAddress(tx *sqlite.Tx, keep string) error {
	addrs, err := sqlite.All[model.Address](tx, model.CollectionAddresses)
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		if addr.ID == keep || !addr.IsDefault {
			continue
		}
		addr.IsDefault = false
		if err := sqlite.Put(tx, model.CollectionAddresses, addr.ID, addr); err != nil {
			return err
		}
	}
	return nil
}

// ---- companions ----

func (a parentAPI) listCompanions(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Companion](r.Context(), a.store, model.CollectionCompanions)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	result := filterCompanions(all, queryList(q, "tags"), queryList(q, "serviceTypes"))
	if radius, ok := queryFloat(q, "radius"); ok {
		result = filter(result, func(c model.Companion) bool { return c.Distance <= radius })
	}
	a.ok(w, paginate(result, readPage(q, defaultPageSize), true))
}

func (a parentAPI) getCompanion(w http.ResponseWriter, r *http.Request) {
	companionAPI(a).detail(w, r)
}

// ---- wallet & calendar ----

func (a parentAPI) wallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := getValue[model.ParentWallet](r.Context(), a.store, model.KeyParentWallet)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, wallet)
}

func (a parentAPI) calendar(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = a.now().Format("2006-01")
	}
	tpl, err := getValue[model.CalendarTemplate](r.Context(), a.store, model.KeyCalendar)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, tpl.ForMonth(month))
}
