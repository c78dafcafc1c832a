package main

import (
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"path"
	"time"
)

// A stand-in for the old luxmall upstream. Point legacy.baseURL at it.
func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	mux.HandleFunc("/api/luxmall-infra/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := "file.bin"
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			if _, hdr, err := r.FormFile("file"); err == nil {
				name = path.Base(hdr.Filename)
			}
		}
		key := time.Now().Format("2006/1/2") + "/" + randHex(8) + "-" + name
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]any{
				"key": key,
				"url": "https://assets.example.com/upload/" + key,
			},
		})
	})

	mux.HandleFunc("/api/luxmall-infra/files/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]any{
				"key":  path.Base(r.URL.Path),
				"size": 1024,
			},
		})
	})

	mux.HandleFunc("/api/luxmall-staff/applet/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]any{
				"appId":       "wx_mock_applet",
				"version":     "1.0.0",
				"maintenance": false,
			},
		})
	})

	mux.HandleFunc("/api/luxmall-staff/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username == "" || body.Password == "" {
			writeStatus(w, http.StatusBadRequest, map[string]any{"success": false, "message": "账号或密码为空"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "staff_session", Value: randHex(16), Path: "/", HttpOnly: true})
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]any{
				"token":    "staff_token_" + randHex(8),
				"username": body.Username,
			},
		})
	})

	mux.HandleFunc("/api/luxmall-staff/auth/me", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("staff_session")
		if err != nil {
			writeStatus(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "未登录"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "data": map[string]any{"session": c.Value}})
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("legacy upstream listening on %s", *addr)
	log.Fatal(srv.ListenAndServe())
}

func writeJSON(w http.ResponseWriter, v any) {
	writeStatus(w, http.StatusOK, v)
}

func writeStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func randHex(n int) string {
	raw := make([]byte, n)
	_, _ = crand.Read(raw)
	return hex.EncodeToString(raw)
}
