package http

import (
	"net/http"
)

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.Info.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(serverVersion))
}
