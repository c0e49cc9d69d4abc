package handlers

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/agroflow/logicapture/internal/scanner"
	ws "github.com/agroflow/logicapture/internal/websocket"
	"github.com/agroflow/logicapture/web"
)

type pushRequest struct {
	Data string `json:"data"`
}

// scannerPush receives one payload from a mobile device and forwards it to
// the desktop session listening on the token. The payload is relayed
// verbatim; validation and normalization are the desktop's job.
func (r *Router) scannerPush(w http.ResponseWriter, req *http.Request) {
	token := mux.Vars(req)["token"]

	var body pushRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Data == "" {
		respondError(w, http.StatusUnprocessableEntity, "data is required")
		return
	}

	if !r.hub.Send(token, body.Data) {
		respondError(w, http.StatusNotFound, "No hay una sesión escuchando este token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// scannerWS subscribes the desktop session to its pairing token.
func (r *Router) scannerWS(w http.ResponseWriter, req *http.Request) {
	token := mux.Vars(req)["token"]
	if token == "" {
		respondError(w, http.StatusUnprocessableEntity, "token is required")
		return
	}
	ws.ServeWs(r.hub, token, w, req)
}

// pairingQR renders the pairing URL as a PNG. An optional host query
// parameter overrides the host baked into the URL for cross-device LAN
// addressing.
func (r *Router) pairingQR(w http.ResponseWriter, req *http.Request) {
	token := mux.Vars(req)["token"]

	scheme := "http"
	if req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	host := req.Host
	if h := req.URL.Query().Get("host"); h != "" {
		host = h
	} else if r.cfg.Scanner.PublicHost != "" {
		host = r.cfg.Scanner.PublicHost
	}

	size := 256
	if s, err := strconv.Atoi(req.URL.Query().Get("size")); err == nil && s >= 128 && s <= 1024 {
		size = s
	}

	png, err := scanner.EncodePairingQR(scheme, host, token, size)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// scannerPage serves the mobile capture page for any token, with the
// configured cooldown window substituted in.
func (r *Router) scannerPage(w http.ResponseWriter, req *http.Request) {
	staticFS, err := web.GetFileSystem()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Static assets unavailable")
		return
	}
	page, err := fs.ReadFile(staticFS, "scanner.html")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Capture page missing")
		return
	}
	page = bytes.ReplaceAll(page, []byte("{{COOLDOWN_MS}}"),
		[]byte(strconv.FormatInt(r.cfg.Scanner.Cooldown.Milliseconds(), 10)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
