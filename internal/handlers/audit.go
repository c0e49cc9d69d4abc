package handlers

import (
	"net/http"
	"strings"

	"github.com/agroflow/logicapture/internal/middleware"
	"github.com/agroflow/logicapture/internal/models"
)

// listAudit returns audit events, newest first. Non-administrators never
// see user-management events (USUARIO_*).
func (r *Router) listAudit(w http.ResponseWriter, req *http.Request) {
	limit := queryInt(req, "limit", 50)
	if limit > 500 {
		limit = 500
	}
	offset := queryInt(req, "offset", 0)

	q := r.db.Model(&models.AuditEvent{})

	if middleware.Role(req) != models.RoleAdmin {
		q = q.Where("action NOT LIKE ?", "USUARIO_%")
	}
	if user := strings.TrimSpace(req.URL.Query().Get("usuario")); user != "" {
		q = q.Where("username ILIKE ?", "%"+user+"%")
	}
	if action := strings.TrimSpace(req.URL.Query().Get("accion")); action != "" && action != "ALL" {
		q = q.Where("action = ?", action)
	}

	var events []models.AuditEvent
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list audit events")
		return
	}
	respondJSON(w, http.StatusOK, events)
}
