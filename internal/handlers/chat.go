package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type chatRequest struct {
	Question string `json:"pregunta"`
}

func (r *Router) chatAnswer(w http.ResponseWriter, req *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	question := strings.TrimSpace(body.Question)
	if question == "" {
		respondError(w, http.StatusUnprocessableEntity, "Debes enviar una pregunta")
		return
	}

	answer, err := r.assistant.Answer(req.Context(), question)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "El asistente no pudo responder")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"respuesta": answer})
}
