package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/utils"
)

type createVehicleRequest struct {
	TractorPlate string `json:"placa_tracto"`
	TrailerPlate string `json:"placa_carreta"`
	Brand        string `json:"marca"`
	CertTractor  string `json:"cert_tracto"`
	CertTrailer  string `json:"cert_carreta"`
	VehicleCert  string `json:"cert_vehicular"`
	CarrierID    *uint  `json:"transportista_id"`
}

func (r *Router) createVehicle(w http.ResponseWriter, req *http.Request) {
	var body createVehicleRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tractor := utils.Normalize(body.TractorPlate)
	trailer := utils.Normalize(body.TrailerPlate)
	if tractor == "" {
		respondError(w, http.StatusUnprocessableEntity, "Placa tracto es obligatoria")
		return
	}

	plates := tractor
	if trailer != "" {
		plates = tractor + "/" + trailer
	}

	var existing models.Vehicle
	if err := r.db.Where("plates = ?", plates).First(&existing).Error; err == nil {
		respondError(w, http.StatusConflict, "Ya existe un vehículo con esas placas")
		return
	}

	// A combined certificate can be derived from the per-unit ones.
	cert := utils.Normalize(body.VehicleCert)
	if cert == "" {
		ct := utils.Normalize(body.CertTractor)
		cc := utils.Normalize(body.CertTrailer)
		switch {
		case ct != "" && cc != "":
			cert = ct + "/" + cc
		case ct != "":
			cert = ct
		case cc != "":
			cert = cc
		}
	}

	if body.CarrierID != nil {
		var carrier models.Carrier
		if err := r.db.First(&carrier, *body.CarrierID).Error; err != nil {
			respondError(w, http.StatusNotFound, "Transportista no encontrado")
			return
		}
	}

	vehicle := models.Vehicle{
		TractorPlate: tractor,
		TrailerPlate: trailer,
		Plates:       plates,
		Brand:        utils.Normalize(body.Brand),
		VehicleCert:  cert,
		CarrierID:    body.CarrierID,
	}
	if err := r.db.Create(&vehicle).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

func (r *Router) listVehicles(w http.ResponseWriter, req *http.Request) {
	limit := queryInt(req, "limit", 50)
	offset := queryInt(req, "offset", 0)

	var vehicles []models.Vehicle
	err := r.db.Preload("Carrier").
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&vehicles).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}
	respondJSON(w, http.StatusOK, vehicles)
}

// vehicleByPlates resolves a vehicle and its carrier from the tractor
// plate. The carrier always follows the tractor; a trailer registered to a
// different carrier only produces an alert flag.
func (r *Router) vehicleByPlates(w http.ResponseWriter, req *http.Request) {
	tractor := utils.Normalize(req.URL.Query().Get("tracto"))
	trailer := utils.Normalize(req.URL.Query().Get("carreta"))
	if tractor == "" {
		respondError(w, http.StatusUnprocessableEntity, "Placa tracto es obligatoria")
		return
	}

	var vehicle models.Vehicle
	err := r.db.Preload("Carrier").
		Where("tractor_plate = ?", tractor).First(&vehicle).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Vehículo no encontrado para esa placa tracto")
		return
	}

	trailerMismatch := false
	var trailerCarrier string
	if trailer != "" && vehicle.CarrierID != nil {
		var other models.Vehicle
		err := r.db.Preload("Carrier").
			Where("trailer_plate = ?", trailer).First(&other).Error
		if err == nil && other.CarrierID != nil && *other.CarrierID != *vehicle.CarrierID {
			trailerMismatch = true
			if other.Carrier != nil {
				trailerCarrier = other.Carrier.Name
			}
		}
	}

	plates := tractor
	if trailer != "" {
		plates = tractor + "/" + trailer
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":                               vehicle.ID,
		"placa_tracto":                     vehicle.TractorPlate,
		"placa_carreta":                    vehicle.TrailerPlate,
		"placas":                           plates,
		"marca":                            vehicle.Brand,
		"cert_vehicular":                   vehicle.VehicleCert,
		"transportista":                    vehicle.Carrier,
		"carreta_distinto_transportista":   trailerMismatch,
		"carreta_transportista_nombre":     trailerCarrier,
	})
}

type reassignCarrierRequest struct {
	CarrierID *uint `json:"transportista_id"`
}

// reassignVehicleCarrier associates or clears a vehicle's carrier.
func (r *Router) reassignVehicleCarrier(w http.ResponseWriter, req *http.Request) {
	var body reassignCarrierRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var vehicle models.Vehicle
	if err := r.db.First(&vehicle, mux.Vars(req)["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Vehículo no encontrado")
		return
	}

	if body.CarrierID != nil {
		var carrier models.Carrier
		if err := r.db.First(&carrier, *body.CarrierID).Error; err != nil {
			respondError(w, http.StatusNotFound, "Transportista no encontrado")
			return
		}
	}
	vehicle.CarrierID = body.CarrierID
	if err := r.db.Save(&vehicle).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}
