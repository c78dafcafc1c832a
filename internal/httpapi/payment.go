package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const msgPackageNotFound = "课时包不存在"

type paymentAPI struct {
	*Server
	responder
}

func (a paymentAPI) routes(r *mux.Router) {
	r.HandleFunc("/wallet", a.wallet).Methods(http.MethodGet)
	r.HandleFunc("/recharge", a.recharge).Methods(http.MethodPost)
	r.HandleFunc("/order", a.payOrder).Methods(http.MethodPost)
	r.HandleFunc("/packages", a.packages).Methods(http.MethodGet)
	r.HandleFunc("/packages/{id}", a.packageDetail).Methods(http.MethodGet)
	r.HandleFunc("/purchase", a.purchase).Methods(http.MethodPost)
	r.HandleFunc("/records", a.records).Methods(http.MethodGet)
	r.HandleFunc("/records/{id}", a.recordDetail).Methods(http.MethodGet)
}

// payParams mimics the client-side payment SDK arguments. No provider is
// contacted and no confirmation ever arrives.
type payParams struct {
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"package"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}

type paymentResult struct {
	Message   string     `json:"message"`
	PaymentNo string     `json:"paymentNo"`
	PayParams *payParams `json:"payParams,omitempty"`
}

func (a paymentAPI) newPaymentNo() string {
	return "PAY" + unixMilli(a.now())
}

func (a paymentAPI) newPayParams() *payParams {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return &payParams{
		TimeStamp: strconv.FormatInt(a.now().Unix(), 10),
		NonceStr:  "mock_nonce_str_" + nonce,
		Package:   "prepay_id=mock_prepay_id",
		SignType:  "RSA",
		PaySign:   "mock_pay_sign",
	}
}

func (a paymentAPI) wallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := getValue[model.PaymentWallet](r.Context(), a.store, model.KeyPaymentWallet)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, wallet)
}

func (a paymentAPI) recharge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount" validate:"gt=0"`
	}
	if !a.bind(w, r, &req, "充值金额无效") {
		return
	}
	a.ok(w, paymentResult{
		Message:   "充值订单创建成功",
		PaymentNo: a.newPaymentNo(),
		PayParams: a.newPayParams(),
	})
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (a paymentAPI) payOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		checkoutRequest
		OrderID string `json:"orderId" validate:"required"`
	}
	if !a.bind(w, r, &req, "订单ID不能为空") {
		return
	}
	if req.PaymentMethod == model.PaymentMethodWallet {
		a.ok(w, paymentResult{Message: "支付成功", PaymentNo: a.newPaymentNo()})
		return
	}
	a.ok(w, paymentResult{
		Message:   "支付订单创建成功",
		PaymentNo: a.newPaymentNo(),
		PayParams: a.newPayParams(),
	})
}

func (a paymentAPI) packages(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.CoursePackage](r.Context(), a.store, model.CollectionCoursePackages)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	active := filter(all, func(p model.CoursePackage) bool { return p.Status == model.PackageActive })
	a.ok(w, map[string]any{"list": active})
}

func (a paymentAPI) packageDetail(w http.ResponseWriter, r *http.Request) {
	pkg, err := getOne[model.CoursePackage](r.Context(), a.store, model.CollectionCoursePackages, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgPackageNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, pkg)
}

// purchase checks the wallet balance for WALLET payments but leaves it
// unchanged.
func (a paymentAPI) purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		checkoutRequest
		CoursePackageID string `json:"coursePackageId" validate:"required"`
	}
	if !a.bind(w, r, &req, "课时包ID不能为空") {
		return
	}
	var (
		pkg    model.CoursePackage
		wallet model.PaymentWallet
	)
	err := a.store.View(r.Context(), func(tx *sqlite.Tx) error {
		var err error
		if pkg, err = sqlite.Get[model.CoursePackage](tx, model.CollectionCoursePackages, req.CoursePackageID); err != nil {
			return err
		}
		wallet, err = sqlite.MustValue[model.PaymentWallet](tx, model.KeyPaymentWallet)
		return err
	})
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, msgPackageNotFound)
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}

	if req.PaymentMethod == model.PaymentMethodWallet {
		if wallet.Balance < pkg.SalePrice {
			a.fail(w, http.StatusBadRequest, "余额不足")
			return
		}
		a.ok(w, paymentResult{Message: "购买成功", PaymentNo: a.newPaymentNo()})
		return
	}
	a.ok(w, paymentResult{
		Message:   "支付订单创建成功",
		PaymentNo: a.newPaymentNo(),
		PayParams: a.newPayParams(),
	})
}

func (a paymentAPI) records(w http.ResponseWriter, r *http.Request) {
	all, err := listAll[model.PaymentRecord](r.Context(), a.store, model.CollectionPaymentRecords)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	q := r.URL.Query()
	paymentType := strings.TrimSpace(q.Get("paymentType"))
	status := strings.TrimSpace(q.Get("status"))
	result := filter(all, func(p model.PaymentRecord) bool {
		return (paymentType == "" || p.PaymentType == paymentType) && (status == "" || p.Status == status)
	})
	newestFirst(result, func(p model.PaymentRecord) string { return p.CreatedAt })
	a.ok(w, paginate(result, readPage(q, defaultPageSize), true))
}

func (a paymentAPI) recordDetail(w http.ResponseWriter, r *http.Request) {
	rec, err := getOne[model.PaymentRecord](r.Context(), a.store, model.CollectionPaymentRecords, mux.Vars(r)["id"])
	if errors.Is(err, sqlite.ErrNotFound) {
		a.fail(w, http.StatusNotFound, "支付记录不存在")
		return
	}
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, rec)
}
