package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

// recommendLimit caps the companions recommended for one demand.
const recommendLimit = 20

type companionAPI struct {
	*Server
	responder
}

func (a companionAPI) routes(r *mux.Router) {
	r.HandleFunc("/list", a.list).Methods(http.MethodGet)
	r.HandleFunc("/service-types", a.serviceTypes).Methods(http.MethodGet)
	r.HandleFunc("/{id}", a.detail).Methods(http.MethodGet)
}

// filterCompanions keeps companions sharing at least one tag and one service
// type with the given lists. An empty list does not filter.
func filterCompanions(all []model.Companion, tags, serviceTypes []string) []model.Companion {
	return filter(all, func(c model.Companion) bool {
		if len(tags) > 0 && !c.HasAnyTag(tags) {
			return false
		}
		if len(serviceTypes) > 0 && !c.HasAnyServiceType(serviceTypes) {
			return false
		}
		return true
	})
}

func (a companionAPI) list(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.Companion](r.Context(), a.store, model.CollectionCompanions)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	result := filterCompanions(all, queryList(q, "tags"), queryList(q, "serviceTypes"))
	if strings.TrimSpace(q.Get("demandId")) != "" {
		slices.SortStableFunc(result, func(x, y model.Companion) int {
			rx, ry := x.Reputation(), y.Reputation()
			switch {
			case rx > ry:
				return -1
			case rx < ry:
				return 1
			}
			return 0
		})
		if len(result) > recommendLimit {
			result = result[:recommendLimit]
		}
	}
	a.ok(w, paginate(result, readPage(q, defaultPageSize), false))
}

type serviceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var serviceTypeCatalog = []serviceType{
	{"HOMEWORK", "作业辅导", "homework"},
	{"ACCOMPANY", "日常陪伴", "accompany"},
	{"TUTORING", "学科辅导", "tutoring"},
	{"INTEREST", "兴趣培养", "interest"},
	{"PICKUP", "接送服务", "pickup"},
}

func (a companionAPI) serviceTypes(w http.ResponseWriter, _ *http.Request) {
	a.ok(w, map[string]any{"list": serviceTypeCatalog})
}

type detailTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type detailService struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type detailGuarantee struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IconType    string `json:"iconType"`
}

type detailExperience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type detailReview struct {
	ID         string `json:"id"`
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	Rating     int    `json:"rating"`
	Content    string `json:"content"`
	CreateTime string `json:"createTime"`
}

// companionDetail is a stored companion plus the fixed profile sections shown
// on the detail page. Tags shadows the embedded string tags.
type companionDetail struct {
	model.Companion
	Tags        []detailTag        `json:"tags"`
	Services    []detailService    `json:"services"`
	Guarantees  []detailGuarantee  `json:"guarantees"`
	Experiences []detailExperience `json:"experiences"`
	Reviews     []detailReview     `json:"reviews"`
}

var (
	detailServices = []detailService{
		{"作业辅导", "专业辅导各科作业", "homework"},
		{"日常陪伴", "陪伴玩耍、阅读等", "accompany"},
	}
	detailGuarantees = []detailGuarantee{
		{"岗前培训", "通过平台专业培训", "training"},
		{"服务保险", "全程服务保障", "insurance"},
	}
	detailExperiences = []detailExperience{
		{"exp-1", "家教老师", "辅导小学生作业", "2023-09", "2024-06"},
	}
	detailReviews = []detailReview{
		{"review-1", "用户A", "https://api.dicebear.com/7.x/avataaars/svg?seed=user1", 5, "非常认真负责，孩子很喜欢", "2025-01-05T10:00:00.000Z"},
	}
)

func newCompanionDetail(c model.Companion) companionDetail {
	tags := make([]detailTag, 0, len(c.Tags))
	for i, name := range c.Tags {
		tags = append(tags, detailTag{ID: fmt.Sprintf("tag-%d", i+1), Name: name})
	}
	return companionDetail{
		Companion:   c,
		Tags:        tags,
		Services:    detailServices,
		Guarantees:  detailGuarantees,
		Experiences: detailExperiences,
		Reviews:     detailReviews,
	}
}

func (a companionAPI) detail(w http.ResponseWriter, r *http.Request) {
	c, err := getOne[model.Companion](r.Context(), a.store, model.CollectionCompanions, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, "陪伴官不存在")
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, newCompanionDetail(c))
}
