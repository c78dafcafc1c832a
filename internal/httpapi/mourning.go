package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"companion_mock/internal/mourning"
)

type mourningAPI struct {
	*Server
	responder
}

func (a mourningAPI) routes(r *mux.Router) {
	r.HandleFunc("/status", a.status).Methods(http.MethodGet)
}

func (a mourningAPI) status(w http.ResponseWriter, _ *http.Request) {
	st := mourning.Check(a.now().Local())
	a.bus.Log("debug", "查询了哀悼日状态", map[string]any{"isMourningDay": st.IsMourningDay})
	a.ok(w, st)
}
