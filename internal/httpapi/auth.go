package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

const tokenTTLSeconds = 604800

type authAPI struct {
	*Server
	responder
}

func (a authAPI) routes(r *mux.Router) {
	r.HandleFunc("/wechat/parent", a.wechatLogin).Methods(http.MethodPost)
	r.HandleFunc("/sms/send", a.sendSMS).Methods(http.MethodPost)
	r.HandleFunc("/phone/bind", a.bindPhone).Methods(http.MethodPost)
	r.HandleFunc("/phone/bind-wechat", a.bindWechatPhone).Methods(http.MethodPost)
	r.HandleFunc("/identity/parent", a.verifyIdentity).Methods(http.MethodPost)
	r.HandleFunc("/token/refresh", a.refreshToken).Methods(http.MethodPost)
	r.HandleFunc("/logout", a.logout).Methods(http.MethodPost)
	r.HandleFunc("/me", a.me).Methods(http.MethodGet)
}

type wechatCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type loginResult struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresIn    int             `json:"expiresIn"`
	UserInfo     *model.AuthUser `json:"userInfo,omitempty"`
}

func (a authAPI) wechatLogin(w http.ResponseWriter, r *http.Request) {
	var req wechatCodeRequest
	if !a.bind(w, r, &req, "缺少code参数") {
		return
	}
	user, err := getValue[model.AuthUser](r.Context(), a.store, model.KeyAuthUser)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	ms := unixMilli(a.now())
	a.ok(w, loginResult{
		AccessToken:  "mock_access_token_" + ms,
		RefreshToken: "mock_refresh_token_" + ms,
		ExpiresIn:    tokenTTLSeconds,
		UserInfo:     &user,
	})
}

func (a authAPI) sendSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone" validate:"required"`
	}
	if !a.bind(w, r, &req, "手机号不能为空") {
		return
	}
	a.ok(w, message{Message: "验证码发送成功"})
}

func (a authAPI) bindPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone" validate:"required"`
		Code  string `json:"code" validate:"required"`
	}
	if !a.bind(w, r, &req, "参数不完整") {
		return
	}
	if req.Code != a.cfg.Mock.SMSCode {
		a.fail(w, http.StatusBadRequest, "验证码错误")
		return
	}
	if err := a.setPhone(r, req.Phone); err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, message{Message: "绑定成功"})
}

func (a authAPI) bindWechatPhone(w http.ResponseWriter, r *http.Request) {
	var req wechatCodeRequest
	if !a.bind(w, r, &req, "缺少code参数") {
		return
	}
	profile, err := getValue[model.ParentProfile](r.Context(), a.store, model.KeyParentProfile)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	if err := a.setPhone(r, profile.Phone); err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, message{Message: "绑定成功"})
}

func (a authAPI) setPhone(r *http.Request, phone string) error {
	return a.store.Update(r.Context(), func(tx *sqlite.Tx) error {
		user, err := sqlite.MustValue[model.AuthUser](tx, model.KeyAuthUser)
		if err != nil {
			return err
		}
		user.Phone = phone
		return sqlite.PutValue(tx, model.KeyAuthUser, user)
	})
}

func (a authAPI) verifyIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RealName string `json:"realName" validate:"required"`
		IDCard   string `json:"idCard" validate:"required"`
		Phone    string `json:"phone" validate:"required"`
	}
	if !a.bind(w, r, &req, "参数不完整") {
		return
	}
	a.ok(w, message{Message: "认证成功"})
}

func (a authAPI) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if !a.bind(w, r, &req, "缺少refreshToken") {
		return
	}
	ms := unixMilli(a.now())
	a.ok(w, loginResult{
		AccessToken:  "mock_new_access_token_" + ms,
		RefreshToken: "mock_new_refresh_token_" + ms,
		ExpiresIn:    tokenTTLSeconds,
	})
}

func (a authAPI) logout(w http.ResponseWriter, _ *http.Request) {
	a.ok(w, message{Message: "登出成功"})
}

func (a authAPI) me(w http.ResponseWriter, r *http.Request) {
	user, err := getValue[model.AuthUser](r.Context(), a.store, model.KeyAuthUser)
	if err != nil {
		a.internal(w, r, err)
		return
	}
	a.ok(w, map[string]string{
		"userId":   user.UserID,
		"userType": user.UserType,
		"openId":   "mock_open_id",
	})
}
