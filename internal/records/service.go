// Package records implements the operational record lifecycle: creation
// with duplicate validation against the uniqueness ledger, processing,
// annulment and controlled edits, all audited.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/utils"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDriverNotFound   = errors.New("driver not found for that DNI")
	ErrVehicleNotFound  = errors.New("vehicle not found for that tractor plate")
	ErrCarrierMissing   = errors.New("vehicle has no carrier assigned")
	ErrPlatesRequired   = errors.New("both tractor and trailer plates are required")
	ErrReasonRequired   = errors.New("a reason is required")
	ErrNotProcessed     = errors.New("only processed records allow this operation")
	ErrAnnulled         = errors.New("an annulled record cannot be processed")
	ErrFieldNotEditable = errors.New("field is not editable")
	ErrCarrierNotFound  = errors.New("carrier not found")
	ErrCarrierAmbiguous = errors.New("carrier is ambiguous, use RUC or SAP code")
)

// DuplicateError carries the uniqueness conflicts for a 409 response.
type DuplicateError struct {
	Items []models.DuplicateItem
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%d uniqueness conflicts", len(e.Items))
}

// Service owns record lifecycle operations.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput is the capture form as submitted. Groups arrive slash-joined.
type CreateInput struct {
	Booking      string `json:"booking"`
	OBeta        string `json:"o_beta"`
	AWB          string `json:"awb"`
	DAM          string `json:"dam"`
	DNI          string `json:"dni"`
	Plates       string `json:"placas"` // "TRACTO/CARRETA"
	Thermographs string `json:"termografos"`
	PSBeta       string `json:"ps_beta"`
	PSAduana     string `json:"ps_aduana"`
	PSOperador   string `json:"ps_operador"`
	Senasa       string `json:"senasa"`
	PSLinea      string `json:"ps_linea"`
}

// Create validates the input against catalogs and the uniqueness ledger,
// autocompletes positioning references from the booking, and persists the
// record with its ledger claims and audit event in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput, username string) (*models.Record, error) {
	var driver models.Driver
	if err := s.db.WithContext(ctx).Where("dni = ?", utils.Normalize(in.DNI)).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	plates := utils.SplitSlash(utils.Normalize(in.Plates))
	if len(plates) < 2 || plates[0] == "" || plates[1] == "" {
		return nil, ErrPlatesRequired
	}

	var vehicle models.Vehicle
	err := s.db.WithContext(ctx).Preload("Carrier").
		Where("tractor_plate = ?", plates[0]).First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	if vehicle.CarrierID == nil || vehicle.Carrier == nil {
		return nil, ErrCarrierMissing
	}

	// Autocomplete o_beta/awb/dam from the booking references.
	booking := utils.Normalize(in.Booking)
	oBeta := utils.Normalize(in.OBeta)
	awb := utils.Normalize(in.AWB)
	dam := utils.Normalize(in.DAM)
	if booking != "" {
		refs := s.refsByBooking(ctx, booking)
		if oBeta == "" {
			oBeta = refs.OBeta
		}
		if awb == "" {
			awb = refs.AWB
		}
		if dam == "" {
			dam = refs.DAM
		}
	}

	senasa := utils.Normalize(in.Senasa)
	psLinea := utils.Normalize(in.PSLinea)

	rec := &models.Record{
		OBeta:         oBeta,
		Booking:       booking,
		AWB:           awb,
		DAM:           dam,
		DriverID:      driver.ID,
		VehicleID:     vehicle.ID,
		CarrierID:     *vehicle.CarrierID,
		Thermographs:  utils.JoinSlash(utils.SplitSlash(utils.Normalize(in.Thermographs))),
		PSBeta:        utils.JoinSlash(utils.SplitSlash(utils.Normalize(in.PSBeta))),
		PSAduana:      utils.Normalize(in.PSAduana),
		PSOperador:    utils.Normalize(in.PSOperador),
		Senasa:        senasa,
		PSLinea:       psLinea,
		SenasaPSLinea: utils.BuildSenasaPSLinea(senasa, psLinea),
		State:         models.StatePending,
	}

	items := buildUniqueItems(rec)
	if dups := s.findDuplicates(ctx, items, ""); len(dups) > 0 {
		return nil, &DuplicateError{Items: dups}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if err := claimUnique(tx, rec.Reference(), items, username); err != nil {
			return err
		}
		return logEvent(tx, rec.ID, models.ActionCreate, nil, snapshot(rec), "", username)
	})
	if err != nil {
		return nil, err
	}

	rec.Driver = &driver
	rec.Vehicle = &vehicle
	rec.Carrier = vehicle.Carrier
	return rec, nil
}

// Process marks a pending record as processed and releases its current-type
// locks (the AWB container becomes reusable). Processing an already
// processed record is a no-op; an annulled one is an error.
func (s *Service) Process(ctx context.Context, id uint, username string) (already bool, err error) {
	var rec models.Record
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	switch rec.State {
	case models.StateProcessed:
		return true, nil
	case models.StateAnnulled:
		return false, ErrAnnulled
	}

	before := snapshot(&rec)
	now := time.Now().UTC()
	rec.State = models.StateProcessed
	rec.ProcessedAt = &now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		if err := releaseLocks(tx, rec.Reference(), now); err != nil {
			return err
		}
		return logEvent(tx, rec.ID, models.ActionProcess, before, snapshot(&rec), "", username)
	})
	return false, err
}

// Annul reverses a processed record (loaded into SAP by mistake, container
// never departed). A reason is mandatory and the AWB lock is released.
func (s *Service) Annul(ctx context.Context, id uint, reason, username string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	var rec models.Record
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if rec.State != models.StateProcessed {
		return ErrNotProcessed
	}

	before := snapshot(&rec)
	now := time.Now().UTC()
	rec.State = models.StateAnnulled
	rec.AnnulledAt = &now
	rec.AnnulledReason = reason

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		if err := releaseLocks(tx, rec.Reference(), now); err != nil {
			return err
		}
		return logEvent(tx, rec.ID, models.ActionAnnul, before, snapshot(&rec), reason, username)
	})
}

// Get loads a record with its associations.
func (s *Service) Get(ctx context.Context, id uint) (*models.Record, error) {
	var rec models.Record
	err := s.db.WithContext(ctx).
		Preload("Driver").Preload("Vehicle").Preload("Carrier").
		First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type bookingRefs struct {
	OBeta string
	AWB   string
	DAM   string
}

func (s *Service) refsByBooking(ctx context.Context, booking string) bookingRefs {
	var refs bookingRefs

	var pos models.BookingRef
	if err := s.db.WithContext(ctx).Where("booking = ?", booking).First(&pos).Error; err == nil {
		refs.OBeta = utils.Normalize(pos.OBeta)
		refs.AWB = utils.Normalize(pos.AWB)
	}
	var bd models.BookingDAM
	if err := s.db.WithContext(ctx).Where("booking = ?", booking).First(&bd).Error; err == nil {
		refs.DAM = utils.Normalize(bd.DAM)
	}
	return refs
}

// findDuplicates checks the ledger for each claimed item. Historic types
// block forever; current types only while in flight and within the voyage
// window. excludeRef skips the record's own claims during edits.
func (s *Service) findDuplicates(ctx context.Context, items []uniqueItem, excludeRef string) []models.DuplicateItem {
	var dups []models.DuplicateItem
	voyageLimit := time.Now().UTC().AddDate(0, 0, -models.AWBVoyageDays)

	for _, it := range items {
		q := s.db.WithContext(ctx).Model(&models.UniqueValue{}).
			Where("type = ? AND value = ?", it.Type, it.Value)
		if excludeRef != "" {
			q = q.Where("reference <> ?", excludeRef)
		}
		if it.Current {
			q = q.Where("current = ? AND used_at >= ?", true, voyageLimit)
		}

		var n int64
		if err := q.Count(&n).Error; err != nil || n == 0 {
			continue
		}

		msg := "Valor ya utilizado (bloqueado por unicidad)"
		if it.Current {
			msg = "Valor en uso actualmente (candado vigente)"
		}
		dups = append(dups, models.DuplicateItem{Type: it.Type, Value: it.Value, Message: msg})
	}
	return dups
}

func claimUnique(tx *gorm.DB, reference string, items []uniqueItem, username string) error {
	for _, it := range items {
		uv := models.UniqueValue{
			Type:      it.Type,
			Value:     it.Value,
			Reference: reference,
			Username:  username,
			Origin:    "registro",
			Current:   it.Current,
		}
		if err := tx.Create(&uv).Error; err != nil {
			return err
		}
	}
	return nil
}

// releaseLocks downgrades the record's current-type claims so the values
// can be reused.
func releaseLocks(tx *gorm.DB, reference string, at time.Time) error {
	currentTypes := make([]string, 0, len(models.CurrentTypes))
	for t := range models.CurrentTypes {
		currentTypes = append(currentTypes, t)
	}
	return tx.Model(&models.UniqueValue{}).
		Where("reference = ? AND type IN ? AND current = ?", reference, currentTypes, true).
		Updates(map[string]interface{}{"current": false, "released_at": at}).Error
}

// rebuildUnique replaces the record's ledger claims after an edit,
// revalidating collisions against everyone else's claims first.
func (s *Service) rebuildUnique(ctx context.Context, tx *gorm.DB, rec *models.Record, username string) error {
	items := buildUniqueItems(rec)
	if rec.State != models.StatePending {
		items = releaseCurrent(items)
	}

	if dups := s.findDuplicates(ctx, items, rec.Reference()); len(dups) > 0 {
		return &DuplicateError{Items: dups}
	}

	if err := tx.Where("reference = ?", rec.Reference()).
		Delete(&models.UniqueValue{}).Error; err != nil {
		return err
	}
	return claimUnique(tx, rec.Reference(), items, username)
}

func snapshot(r *models.Record) map[string]interface{} {
	snap := map[string]interface{}{
		"id":              r.ID,
		"estado":          r.State,
		"booking":         r.Booking,
		"o_beta":          r.OBeta,
		"awb":             r.AWB,
		"dam":             r.DAM,
		"chofer_id":       r.DriverID,
		"transportista_id": r.CarrierID,
		"termografos":     r.Thermographs,
		"ps_beta":         r.PSBeta,
		"ps_aduana":       r.PSAduana,
		"ps_operador":     r.PSOperador,
		"senasa":          r.Senasa,
		"ps_linea":        r.PSLinea,
		"senasa_ps_linea": r.SenasaPSLinea,
		"anulado_motivo":  r.AnnulledReason,
	}
	if r.ProcessedAt != nil {
		snap["processed_at"] = r.ProcessedAt.UTC().Format(time.RFC3339)
	}
	if r.AnnulledAt != nil {
		snap["anulado_at"] = r.AnnulledAt.UTC().Format(time.RFC3339)
	}
	return snap
}

func logEvent(tx *gorm.DB, recordID uint, action string, before, after map[string]interface{}, reason, username string) error {
	ev := models.AuditEvent{
		RecordID: &recordID,
		Action:   action,
		Reason:   reason,
		Username: username,
	}
	if before != nil {
		data, err := json.Marshal(before)
		if err != nil {
			return err
		}
		ev.Before = data
	}
	if after != nil {
		data, err := json.Marshal(after)
		if err != nil {
			return err
		}
		ev.After = data
	}
	return tx.Create(&ev).Error
}
