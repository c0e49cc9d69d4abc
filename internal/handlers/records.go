package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/agroflow/logicapture/internal/middleware"
	"github.com/agroflow/logicapture/internal/records"
	"github.com/agroflow/logicapture/internal/services/sap"
)

// respondRecordError maps service errors onto HTTP statuses. Uniqueness
// conflicts answer 409 with the full duplicate list.
func respondRecordError(w http.ResponseWriter, err error) {
	var dup *records.DuplicateError
	if errors.As(err, &dup) {
		respondJSON(w, http.StatusConflict, map[string]interface{}{"duplicados": dup.Items})
		return
	}

	switch {
	case errors.Is(err, records.ErrNotFound):
		respondError(w, http.StatusNotFound, "Registro no encontrado")
	case errors.Is(err, records.ErrDriverNotFound):
		respondError(w, http.StatusNotFound, "Chofer no encontrado por DNI")
	case errors.Is(err, records.ErrVehicleNotFound):
		respondError(w, http.StatusNotFound, "Vehículo no encontrado para esa placa tracto")
	case errors.Is(err, records.ErrCarrierNotFound):
		respondError(w, http.StatusNotFound, "Transportista no encontrado")
	case errors.Is(err, records.ErrCarrierMissing):
		respondError(w, http.StatusUnprocessableEntity, "El vehículo no tiene transportista asociado")
	case errors.Is(err, records.ErrPlatesRequired):
		respondError(w, http.StatusUnprocessableEntity, "Debes enviar placa tracto y placa carreta")
	case errors.Is(err, records.ErrReasonRequired):
		respondError(w, http.StatusUnprocessableEntity, "Debes indicar un motivo")
	case errors.Is(err, records.ErrFieldNotEditable):
		respondError(w, http.StatusUnprocessableEntity, "Campo no editable")
	case errors.Is(err, records.ErrNotProcessed):
		respondError(w, http.StatusConflict, "Solo se permite sobre registros en estado PROCESADO")
	case errors.Is(err, records.ErrAnnulled):
		respondError(w, http.StatusConflict, "No se puede procesar un registro anulado")
	case errors.Is(err, records.ErrCarrierAmbiguous):
		respondError(w, http.StatusConflict, "Transportista ambiguo. Usa RUC o Código SAP.")
	default:
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func (r *Router) createRecord(w http.ResponseWriter, req *http.Request) {
	var in records.CreateInput
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := r.records.Create(req.Context(), in, middleware.Username(req))
	if err != nil {
		respondRecordError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (r *Router) processRecord(w http.ResponseWriter, req *http.Request) {
	id := pathID(req)

	already, err := r.records.Process(req.Context(), id, middleware.Username(req))
	if err != nil {
		respondRecordError(w, err)
		return
	}
	if already {
		respondJSON(w, http.StatusOK, map[string]string{"estado": "ya estaba procesado"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"estado": "procesado", "awbs_liberados": true})
}

type annulRequest struct {
	Reason string `json:"motivo"`
}

func (r *Router) annulRecord(w http.ResponseWriter, req *http.Request) {
	var body annulRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := r.records.Annul(req.Context(), pathID(req), body.Reason, middleware.Username(req)); err != nil {
		respondRecordError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"estado": "anulado", "awbs_liberados": true})
}

func (r *Router) editRecord(w http.ResponseWriter, req *http.Request) {
	var in records.EditInput
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := r.records.Edit(req.Context(), pathID(req), in, middleware.Username(req))
	if err != nil {
		respondRecordError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"registro_id": rec.ID,
		"campo":       in.Field,
		"estado":      rec.State,
	})
}

func (r *Router) sapRow(w http.ResponseWriter, req *http.Request) {
	rec, err := r.records.Get(req.Context(), pathID(req))
	if err != nil {
		respondRecordError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sap.RowFromRecord(rec))
}

type processedItem struct {
	RecordID    uint       `json:"registro_id"`
	State       string     `json:"estado"`
	ProcessedAt *time.Time `json:"processed_at"`
	sap.Row
}

func (r *Router) listProcessed(w http.ResponseWriter, req *http.Request) {
	day, err := time.Parse("2006-01-02", req.URL.Query().Get("fecha"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Parámetro fecha inválido (YYYY-MM-DD)")
		return
	}
	limit := queryInt(req, "limit", 200)
	offset := queryInt(req, "offset", 0)

	rows, total, err := r.records.ProcessedOn(req.Context(), day, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list processed records")
		return
	}

	items := make([]processedItem, 0, len(rows))
	for i := range rows {
		items = append(items, processedItem{
			RecordID:    rows[i].ID,
			State:       rows[i].State,
			ProcessedAt: rows[i].ProcessedAt,
			Row:         sap.RowFromRecord(&rows[i]),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (r *Router) listHistory(w http.ResponseWriter, req *http.Request) {
	from := queryDate(req, "desde")
	to := queryDate(req, "hasta")
	if !to.IsZero() {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	limit := queryInt(req, "limit", 10)
	offset := queryInt(req, "offset", 0)

	rows, total, err := r.records.History(req.Context(), from, to, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": rows, "total": total})
}

func (r *Router) dashboardStats(w http.ResponseWriter, req *http.Request) {
	to := queryDate(req, "hasta")
	if to.IsZero() {
		to = time.Now().UTC()
	}
	from := queryDate(req, "desde")
	if from.IsZero() {
		days := queryInt(req, "dias", 30)
		if days < 7 {
			days = 7
		}
		if days > 90 {
			days = 90
		}
		from = to.AddDate(0, 0, -days)
	}

	stats, err := r.records.Stats(req.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to aggregate stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type exportSapRequest struct {
	RecordIDs []uint `json:"registro_ids"`
}

// exportSapPDF renders a printable manifest of the selected records.
func (r *Router) exportSapPDF(w http.ResponseWriter, req *http.Request) {
	var body exportSapRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.RecordIDs) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "No se enviaron registro_ids válidos")
		return
	}

	rows, err := r.records.ByIDs(req.Context(), body.RecordIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}

	sapRows := make([]sap.Row, 0, len(rows))
	for i := range rows {
		sapRows = append(sapRows, sap.RowFromRecord(&rows[i]))
	}

	pdf, err := sap.ManifestPDF("Manifiesto SAP", sapRows)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	filename := fmt.Sprintf("sap_export_%s.pdf", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func pathID(req *http.Request) uint {
	id, _ := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	return uint(id)
}

func queryInt(req *http.Request, key string, def int) int {
	if v := req.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func queryDate(req *http.Request, key string) time.Time {
	if v := req.URL.Query().Get(key); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return time.Time{}
}
