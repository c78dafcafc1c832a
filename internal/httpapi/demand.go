package httpapi

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"companion_mock/internal/metrics"
	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const (
	msgDemandNotFound = "需求不存在"
	msgCannotCancel   = "当前状态不可取消"
	defaultParentID   = "parent-001"
)

var recommendAvatars = []string{
	"https://api.dicebear.com/7.x/avataaars/svg?seed=1",
	"https://api.dicebear.com/7.x/avataaars/svg?seed=2",
}

type demandAPI struct {
	*Server
	responder
}

func (a demandAPI) routes(r *mux.Router) {
	r.HandleFunc("", a.create).Methods(http.MethodPost)
	r.HandleFunc("/", a.create).Methods(http.MethodPost)
	r.HandleFunc("/match", a.match).Methods(http.MethodGet)
	r.HandleFunc("/list", a.list).Methods(http.MethodGet)
	r.HandleFunc("/{id}", a.detail).Methods(http.MethodGet)
	r.HandleFunc("/{id}", a.cancel).Methods(http.MethodDelete)
}

type demandCreated struct {
	ID      string `json:"id"`
	TaskNo  string `json:"taskNo"`
	Message string `json:"message"`
}

func (a demandAPI) create(w http.ResponseWriter, r *http.Request) {
	var d model.Demand
	if !a.bind(w, r, &d, msgBadBody) {
		return
	}
	now := a.now()
	if d.ParentID == "" {
		d.ParentID = defaultParentID
		d.Extra.Forget("parentId")
	}
	d.Extra.Forget("id", "taskNo", "status", "companionName", "createdAt", "cancelledAt")
	d.Status = model.DemandPendingAssign
	d.CompanionName = nil
	d.CreatedAt = model.ISOTime(now)
	d.CancelledAt = ""

	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		id, n, err := nextID(tx, model.CollectionDemands, "demand")
		if err != nil {
			return err
		}
		d.ID = id
		d.TaskNo = fmt.Sprintf("TASK%s%03d", now.UTC().Format("20060102"), n)
		return sqlite.Put(tx, model.CollectionDemands, d.ID, d)
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	metrics.EntitiesCreatedTotal.WithLabelValues(model.CollectionDemands).Inc()
	a.ok(w, demandCreated{ID: d.ID, TaskNo: d.TaskNo, Message: "需求发布成功"})
}

func (a demandAPI) match(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Companion](r.Context(), a.store, model.CollectionCompanions)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	result := all
	if st := strings.TrimSpace(q.Get("serviceType")); st != "" {
		result = filter(result, func(c model.Companion) bool { return slices.Contains(c.ServiceTypes, st) })
	}
	if maxDistance, ok := queryFloat(q, "maxDistance"); ok {
		result = filter(result, func(c model.Companion) bool { return c.Distance <= maxDistance })
	}
	for i := range result {
		score := result[i].Score()
		result[i].MatchScore = &score
	}
	slices.SortStableFunc(result, func(x, y model.Companion) int {
		return *y.MatchScore - *x.MatchScore
	})
	a.ok(w, paginate(result, readPage(q, defaultPageSize), true))
}

// demandRow is the list projection of a demand.
type demandRow struct {
	ID                  string   `json:"id"`
	TaskNo              string   `json:"taskNo"`
	MatchStatus         string   `json:"matchStatus,omitempty"`
	ServiceItemsSummary string   `json:"serviceItemsSummary"`
	ChildrenNames       string   `json:"childrenNames"`
	Area                string   `json:"area"`
	CreatedAt           string   `json:"createdAt"`
	CreatedAtDesc       string   `json:"createdAtDesc"`
	RecommendCount      int      `json:"recommendCount"`
	RecommendAvatars    []string `json:"recommendAvatars"`
}

func (a demandAPI) list(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Demand](r.Context(), a.store, model.CollectionDemands)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	result := all
	if status := strings.TrimSpace(q.Get("status")); status != "" {
		result = filter(result, func(d model.Demand) bool { return d.Status == status })
	}
	newestFirst(result, func(d model.Demand) string { return d.CreatedAt })

	page := paginate(result, readPage(q, defaultPageSize), true)
	now := a.now()
	rows := make([]demandRow, 0, len(page.List))
	for _, d := range page.List {
		rows = append(rows, projectDemand(d, now))
	}
	a.ok(w, pageResult[demandRow]{
		List:       rows,
		Total:      page.Total,
		Page:       page.Page,
		Size:       page.Size,
		TotalPages: page.TotalPages,
	})
}

func projectDemand(d model.Demand, now time.Time) demandRow {
	items := make([]string, 0, len(d.ServiceItems))
	for _, it := range d.ServiceItems {
		items = append(items, it.Name)
	}
	names := make([]string, 0, len(d.Children))
	for _, c := range d.Children {
		names = append(names, c.ChildName)
	}
	row := demandRow{
		ID:                  d.ID,
		TaskNo:              d.TaskNo,
		MatchStatus:         d.MatchStatus,
		ServiceItemsSummary: strings.Join(items, "、"),
		ChildrenNames:       strings.Join(names, "、"),
		Area:                demandArea(d.AddressDetail),
		CreatedAt:           d.CreatedAt,
		CreatedAtDesc:       relativeDesc(model.ParseTime(d.CreatedAt), now),
		RecommendAvatars:    []string{},
	}
	if d.MatchStatus == model.MatchStatusMatched {
		row.RecommendCount = recommendCount(d.ID)
		row.RecommendAvatars = recommendAvatars
	}
	return row
}

// demandArea extracts the district from an address such as
// "北京市朝阳区建国路88号": the text after the first 市 up to 区.
func demandArea(detail string) string {
	_, rest, ok := strings.Cut(detail, "市")
	if !ok {
		return ""
	}
	rest, _, _ = strings.Cut(rest, "市")
	district, _, _ := strings.Cut(rest, "区")
	return district + "区"
}

// recommendCount is stable per demand so repeated reads agree.
func recommendCount(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()%5) + 1
}

func relativeDesc(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))
	switch {
	case minutes < 1:
		return "刚刚发布"
	case minutes < 60:
		return fmt.Sprintf("%d分钟前发布", minutes)
	case hours < 24:
		return fmt.Sprintf("%d小时前发布", hours)
	case days < 7:
		return fmt.Sprintf("%d天前发布", days)
	}
	local := t.In(now.Location())
	return fmt.Sprintf("%d/%d/%d", local.Year(), int(local.Month()), local.Day())
}

func (a demandAPI) detail(w http.ResponseWriter, r *http.Request) {
	d, err := getOne[model.Demand](r.Context(), a.store, model.CollectionDemands, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgDemandNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, d)
}

func (a demandAPI) cancel(w http.ResponseWriter, r *http.Request) {
	at := model.ISOTime(a.now())
	err := transition(r.Context(), a.store, model.CollectionDemands, mux.Vars(r)["id"],
		model.DemandMachine, model.DemandCancelled,
		func(d *model.Demand) *string { return &d.Status },
		func(d *model.Demand) { d.CancelledAt = at },
	)
	switch {
	case err == nil:
		a.ok(w, message{Message: "取消成功"})
	case errors.Is(err, sqlite.ErrNotFound):
		a.fail(w, http.StatusNotFound, msgDemandNotFound)
	case errors.Is(err, errTransitionRefused):
		a.fail(w, http.StatusBadRequest, msgCannotCancel)
	default:
		a.internal(w, r, err)
	}
}
