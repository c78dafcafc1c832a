package httpapi

import (
	"errors"
	"math"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"companion_mock/internal/metrics"
	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const recentReviewCount = 5

type reviewAPI struct {
	*Server
	responder
}

func (a reviewAPI) routes(r *mux.Router) {
	r.HandleFunc("/service", a.createService).Methods(http.MethodPost)
	r.HandleFunc("/child", a.createChild).Methods(http.MethodPost)
	r.HandleFunc("/my", a.mine).Methods(http.MethodGet)
	r.HandleFunc("/check/{orderId}", a.check).Methods(http.MethodGet)
	r.HandleFunc("/companion/{companionId}/stats", a.stats).Methods(http.MethodGet)
	r.HandleFunc("/companion/{companionId}", a.byCompanion).Methods(http.MethodGet)
	r.HandleFunc("/child/{childId}", a.byChild).Methods(http.MethodGet)
	r.HandleFunc("/{id}", a.detail).Methods(http.MethodGet)
}

type reviewRequest struct {
	OrderID   string   `json:"orderId" validate:"required"`
	Rating    int      `json:"rating" validate:"required,min=1,max=5"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Images    []string `json:"images"`
	Anonymous bool     `json:"anonymous"`
}

func (a reviewAPI) createService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		reviewRequest
		CompanionID string `json:"companionId"`
	}
	if !a.bind(w, r, &req, "评价参数不完整") {
		return
	}
	a.save(w, r, req.reviewRequest, model.ReviewTypeService, func(tx *sqlite.Tx, rv *model.Review) error {
		companionID := req.CompanionID
		if companionID == "" {
			order, err := sqlite.Get[model.Order](tx, model.CollectionOrders, req.OrderID)
			if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
				return err
			}
			companionID = order.CompanionID
		}
		if companionID == "" {
			return nil
		}
		c, err := sqlite.Get[model.Companion](tx, model.CollectionCompanions, companionID)
		switch {
		case err == nil:
			rv.Companion = &model.ReviewCompanion{ID: c.ID, Name: c.Name, Avatar: c.Avatar}
		case errors.Is(err, sqlite.ErrNotFound):
			rv.Companion = &model.ReviewCompanion{ID: companionID}
		default:
			return err
		}
		return nil
	})
}

func (a reviewAPI) createChild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		reviewRequest
		ChildID string `json:"childId"`
	}
	if !a.bind(w, r, &req, "评价参数不完整") {
		return
	}
	a.save(w, r, req.reviewRequest, model.ReviewTypeChild, func(tx *sqlite.Tx, rv *model.Review) error {
		if req.ChildID == "" {
			return nil
		}
		c, err := sqlite.Get[model.Child](tx, model.CollectionChildren, req.ChildID)
		switch {
		case err == nil:
			rv.Child = &model.ReviewChild{ID: c.ID, Name: c.Name}
		case errors.Is(err, sqlite.ErrNotFound):
			rv.Child = &model.ReviewChild{ID: req.ChildID}
		default:
			return err
		}
		return nil
	})
}

// save persists one review; attach fills the subject inside the same
// transaction.
func (a reviewAPI) save(w http.ResponseWriter, r *http.Request, req reviewRequest, reviewType string, attach func(*sqlite.Tx, *model.Review) error) {
	rv := model.Review{
		ReviewType: reviewType,
		OrderID:    req.OrderID,
		Rating:     req.Rating,
		Content:    req.Content,
		Tags:       req.Tags,
		Images:     req.Images,
		Anonymous:  req.Anonymous,
		CreatedAt:  model.ISOTime(a.now()),
	}
	err := a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		if err := attach(tx, &rv); err != nil {
			return err
		}
		id, _, err := nextID(tx, model.CollectionReviews, "review")
		if err != nil {
			return err
		}
		rv.ID = id
		return sqlite.Put(tx, model.CollectionReviews, rv.ID, rv)
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	metrics.EntitiesCreatedTotal.WithLabelValues(model.CollectionReviews).Inc()
	a.okMessage(w, "评价提交成功", idPayload{ID: rv.ID})
}

func (a reviewAPI) matching(r *http.Request, keep func(model.Review) bool) ([]model.Review, error) {
	all, err := listAll[model.Review](r.Context(), a.store, model.CollectionReviews)
	if err != nil {
		return nil, err
	}
	return filter(all, keep), nil
}

func (a reviewAPI) page(w http.ResponseWriter, r *http.Request, keep func(model.Review) bool) {
	result, err := a.matching(r, keep)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	newestFirst(result, func(rv model.Review) string { return rv.CreatedAt })
	a.ok(w, paginate(result, readPage(r.URL.Query(), defaultPageSize), false))
}

func (a reviewAPI) mine(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, func(rv model.Review) bool { return rv.ReviewType == model.ReviewTypeService })
}

func (a reviewAPI) byCompanion(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, forCompanion(mux.Vars(r)["companionId"]))
}

func (a reviewAPI) byChild(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["childId"]
	a.page(w, r, func(rv model.Review) bool {
		return rv.ReviewType == model.ReviewTypeChild && rv.Child != nil && rv.Child.ID == id
	})
}

func forCompanion(id string) func(model.Review) bool {
	return func(rv model.Review) bool {
		return rv.ReviewType == model.ReviewTypeService && rv.Companion != nil && rv.Companion.ID == id
	}
}

type reviewCheck struct {
	CanReview bool   `json:"canReview"`
	Reason    string `json:"reason,omitempty"`
	ReviewID  string `json:"reviewId,omitempty"`
}

func (a reviewAPI) check(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]
	existing, err := a.matching(r, func(rv model.Review) bool {
		return rv.ReviewType == model.ReviewTypeService && rv.OrderID == orderID
	})
	if err != nil {
		a.internal(w, r, err)
		return
	}
	if len(existing) == 0 {
		a.ok(w, reviewCheck{CanReview: true})
		return
	}
	a.ok(w, reviewCheck{Reason: "该订单已评价", ReviewID: existing[0].ID})
}

type reviewStats struct {
	CompanionID    string         `json:"companionId"`
	TotalReviews   int            `json:"totalReviews"`
	AverageRating  float64        `json:"averageRating"`
	GoodRate       float64        `json:"goodRate"`
	FiveStarCount  int            `json:"fiveStarCount"`
	FourStarCount  int            `json:"fourStarCount"`
	ThreeStarCount int            `json:"threeStarCount"`
	TwoStarCount   int            `json:"twoStarCount"`
	OneStarCount   int            `json:"oneStarCount"`
	RecentReviews  []model.Review `json:"recentReviews"`
}

// stats aggregates in insertion order; recentReviews is the first five.
func (a reviewAPI) stats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["companionId"]
	reviews, err := a.matching(r, forCompanion(id))
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, summarizeReviews(id, reviews))
}

func summarizeReviews(companionID string, reviews []model.Review) reviewStats {
	st := reviewStats{CompanionID: companionID, TotalReviews: len(reviews)}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
		switch rv.Rating {
		case 5:
			st.FiveStarCount++
		case 4:
			st.FourStarCount++
		case 3:
			st.ThreeStarCount++
		case 2:
			st.TwoStarCount++
		case 1:
			st.OneStarCount++
		}
	}
	if st.TotalReviews > 0 {
		st.AverageRating = round1(float64(sum) / float64(st.TotalReviews))
		good := st.FiveStarCount + st.FourStarCount
		st.GoodRate = round1(float64(good) / float64(st.TotalReviews) * 100)
	}
	st.RecentReviews = reviews[:min(recentReviewCount, len(reviews))]
	return st
}

// round1 rounds to one decimal the way toFixed(1) does in the browser: on
// the exact binary value, ties away from zero. 4.35 is stored just below
// 4.35 and so becomes 4.3.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e21 {
		return v
	}
	tenths := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	tenths.Mul(tenths, big.NewFloat(10))
	n, _ := tenths.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(tenths, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return math.Copysign(f/10, v)
}

// detail answers a missing review with HTTP 200 and code 404.
func (a reviewAPI) detail(w http.ResponseWriter, r *http.Request) {
	rv, err := getOne[model.Review](r.Context(), a.store, model.CollectionReviews, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.softFail(w, http.StatusNotFound, "评价不存在")
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, rv)
}
