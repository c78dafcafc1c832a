package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Payload keys. Each route group answers with exactly one of them.
const (
	keyContext = "context"
	keyData    = "data"
)

const (
	msgNotFoundRoute = "接口不存在"
	msgInternal      = "服务器内部错误"
	msgBadBody       = "请求参数格式错误"
	msgBodyTooLarge  = "请求体过大"
	msgTooMany       = "请求过于频繁"
)

// envelope is the {code, message, <key>} wrapper of every API response.
type envelope struct {
	key     string
	code    int
	message *string
	payload any
}

func (e envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"code":`)
	code, _ := json.Marshal(e.code)
	buf.Write(code)

	buf.WriteString(`,"message":`)
	msg, err := json.Marshal(e.message)
	if err != nil {
		return nil, err
	}
	buf.Write(msg)

	key, _ := json.Marshal(e.key)
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	payload, err := json.Marshal(e.payload)
	if err != nil {
		return nil, err
	}
	buf.Write(payload)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// responder writes envelopes under one payload key.
type responder struct {
	key      string
	log      *zap.Logger
	validate *validator.Validate
}

func (o responder) ok(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, envelope{key: o.key, payload: payload})
}

func (o responder) okMessage(w http.ResponseWriter, message string, payload any) {
	writeJSON(w, http.StatusOK, envelope{key: o.key, message: &message, payload: payload})
}

// fail answers with an HTTP status mirrored in code.
func (o responder) fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{key: o.key, code: status, message: &message})
}

// softFail answers HTTP 200 with a non-zero code.
func (o responder) softFail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, http.StatusOK, envelope{key: o.key, code: code, message: &message})
}

func (o responder) internal(w http.ResponseWriter, r *http.Request, err error) {
	o.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	o.fail(w, http.StatusInternalServerError, msgInternal)
}

// readBody returns the raw request body, "{}" when empty. It reports false
// after answering the request itself.
func (o responder) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return []byte("{}"), true
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			o.fail(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return nil, false
		}
		o.fail(w, http.StatusBadRequest, msgBadBody)
		return nil, false
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []byte("{}"), true
	}
	return b, true
}

// bind decodes and validates the JSON body into dst. Any decode or validation
// failure is answered with HTTP 400 and invalidMsg.
func (o responder) bind(w http.ResponseWriter, r *http.Request, dst any, invalidMsg string) bool {
	b, ok := o.readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		o.fail(w, http.StatusBadRequest, invalidMsg)
		return false
	}
	if err := o.validate.Struct(dst); err != nil {
		o.fail(w, http.StatusBadRequest, invalidMsg)
		return false
	}
	return true
}

// message is the {message} payload of simple acknowledgements.
type message struct {
	Message string `json:"message"`
}

type idPayload struct {
	ID string `json:"id"`
}
