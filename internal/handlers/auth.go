package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/agroflow/logicapture/internal/middleware"
	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/utils"
)

type loginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"usuario"`
	Name        string `json:"nombre"`
	Role        string `json:"rol"`
}

// login validates credentials. Three failed attempts lock the account until
// an administrator unlocks it.
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(body.Username)
	if username == "" {
		respondError(w, http.StatusBadRequest, "Usuario requerido")
		return
	}

	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil || !user.Active {
		respondError(w, http.StatusUnauthorized, "Usuario o contraseña incorrectos")
		return
	}

	if user.Locked {
		respondError(w, http.StatusLocked, "Cuenta bloqueada por múltiples intentos fallidos. Contacte al administrador.")
		return
	}

	if !utils.CheckPasswordHash(body.Password, user.PasswordHash) {
		user.FailedAttempts++
		if user.FailedAttempts >= models.MaxLoginAttempts {
			user.Locked = true
			r.db.Save(&user)
			respondError(w, http.StatusLocked, "Cuenta bloqueada tras 3 intentos fallidos. Contacte al administrador.")
			return
		}
		r.db.Save(&user)
		respondError(w, http.StatusUnauthorized,
			fmt.Sprintf("Usuario o contraseña incorrectos. Intentos restantes: %d",
				models.MaxLoginAttempts-user.FailedAttempts))
		return
	}

	user.FailedAttempts = 0
	user.Locked = false
	r.db.Save(&user)

	token, err := utils.GenerateToken(&user, r.cfg.JWTSecret, r.cfg.JWTExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    user.Username,
		Name:        user.Name,
		Role:        user.Role,
	})
}

// me returns the authenticated user's profile.
func (r *Router) me(w http.ResponseWriter, req *http.Request) {
	var user models.User
	if err := r.db.Where("username = ?", middleware.Username(req)).First(&user).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "Usuario no encontrado")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	var users []models.User
	if err := r.db.Order("name").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"usuario"`
	Name     string `json:"nombre"`
	Password string `json:"password"`
	Role     string `json:"rol"`
}

func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	var body createUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(body.Username)
	if username == "" || len(strings.TrimSpace(body.Password)) < 6 {
		respondError(w, http.StatusBadRequest, "Usuario y contraseña (mínimo 6 caracteres) son obligatorios")
		return
	}

	var existing models.User
	if err := r.db.Where("username = ?", username).First(&existing).Error; err == nil {
		respondError(w, http.StatusBadRequest, "El nombre de usuario ya está en uso")
		return
	}

	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Username:     username,
		Name:         strings.TrimSpace(body.Name),
		Role:         strings.TrimSpace(body.Role),
		PasswordHash: hash,
		Active:       true,
	}
	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	r.auditUser(req, models.ActionUserCreate, fmt.Sprintf("alta de usuario %s (%s)", user.Username, user.Role))
	respondJSON(w, http.StatusOK, user)
}

// toggleUser flips a user's active flag. Deactivating yourself is rejected.
func (r *Router) toggleUser(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if user.Username == middleware.Username(req) {
		respondError(w, http.StatusBadRequest, "No puedes desactivar tu propia cuenta")
		return
	}

	user.Active = !user.Active
	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	state := "desactivado"
	if user.Active {
		state = "activado"
	}
	r.auditUser(req, models.ActionUserToggle, fmt.Sprintf("usuario %s %s", user.Username, state))
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "mensaje": "Usuario " + state + " correctamente"})
}

type resetPasswordRequest struct {
	NewPassword string `json:"nueva_password"`
}

func (r *Router) resetPassword(w http.ResponseWriter, req *http.Request) {
	username := strings.TrimSpace(mux.Vars(req)["username"])

	var body resetPasswordRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(strings.TrimSpace(body.NewPassword)) < 6 {
		respondError(w, http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres")
		return
	}

	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	hash, err := utils.HashPassword(strings.TrimSpace(body.NewPassword))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	user.PasswordHash = hash
	user.FailedAttempts = 0
	user.Locked = false
	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	r.auditUser(req, models.ActionUserReset, "restablecimiento de contraseña de "+user.Username)
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "mensaje": "Contraseña actualizada"})
}

func (r *Router) unlockUser(w http.ResponseWriter, req *http.Request) {
	username := strings.TrimSpace(mux.Vars(req)["username"])

	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	user.FailedAttempts = 0
	user.Locked = false
	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	r.auditUser(req, models.ActionUserUnlock, "desbloqueo de "+user.Username)
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "mensaje": "Usuario desbloqueado"})
}

// auditUser records a user-management event; these rows are only visible to
// administrators in the audit listing.
func (r *Router) auditUser(req *http.Request, action, reason string) {
	ev := models.AuditEvent{
		Action:   action,
		Reason:   reason,
		Username: middleware.Username(req),
	}
	if err := r.db.Create(&ev).Error; err != nil {
		// Audit failures must not fail the operation itself.
		log.Printf("⚠️  Audit write failed: %v", err)
	}
}
