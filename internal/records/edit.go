package records

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/utils"
)

// Editable areas of a processed record. One area per edit, always audited.
const (
	EditBooking      = "booking"
	EditAWB          = "awb"
	EditDriverDNI    = "dni_chofer"
	EditCarrier      = "transportista"
	EditThermographs = "termografos"
	EditSeals        = "precintos"
)

// EditInput is one controlled edit. Data keys depend on the field: booking,
// awb, dni, needle (carrier RUC/SAP code/name), termografos, or any of the
// seal keys (ps_beta, ps_aduana, ps_operador, senasa, ps_linea).
type EditInput struct {
	Field  string            `json:"campo"`
	Data   map[string]string `json:"data"`
	Reason string            `json:"motivo"`
}

// Edit applies one controlled edit to a processed record, rebuilds its
// uniqueness claims and records the audit event.
func (s *Service) Edit(ctx context.Context, id uint, in EditInput, username string) (*models.Record, error) {
	var rec models.Record
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.State != models.StateProcessed {
		return nil, ErrNotProcessed
	}

	before := snapshot(&rec)
	data := in.Data
	if data == nil {
		data = map[string]string{}
	}

	switch strings.ToLower(strings.TrimSpace(in.Field)) {
	case EditBooking:
		booking := utils.Normalize(data["booking"])
		if booking == "" {
			return nil, ErrFieldNotEditable
		}
		// A booking change re-derives the positioning references.
		refs := s.refsByBooking(ctx, booking)
		rec.Booking = booking
		rec.OBeta = refs.OBeta
		rec.AWB = refs.AWB
		rec.DAM = refs.DAM

	case EditAWB:
		rec.AWB = utils.Normalize(data["awb"])

	case EditDriverDNI:
		dni := utils.Normalize(data["dni"])
		if dni == "" {
			return nil, ErrDriverNotFound
		}
		var driver models.Driver
		if err := s.db.WithContext(ctx).Where("dni = ?", dni).First(&driver).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDriverNotFound
			}
			return nil, err
		}
		rec.DriverID = driver.ID

	case EditCarrier:
		carrier, err := s.findCarrier(ctx, data["needle"])
		if err != nil {
			return nil, err
		}
		rec.CarrierID = carrier.ID

	case EditThermographs:
		rec.Thermographs = utils.JoinSlash(utils.SplitSlash(utils.Normalize(data["termografos"])))

	case EditSeals:
		if v, ok := data["ps_beta"]; ok {
			rec.PSBeta = utils.JoinSlash(utils.SplitSlash(utils.Normalize(v)))
		}
		if v, ok := data["ps_aduana"]; ok {
			rec.PSAduana = utils.Normalize(v)
		}
		if v, ok := data["ps_operador"]; ok {
			rec.PSOperador = utils.Normalize(v)
		}
		if v, ok := data["senasa"]; ok {
			rec.Senasa = utils.Normalize(v)
		}
		if v, ok := data["ps_linea"]; ok {
			rec.PSLinea = utils.Normalize(v)
		}
		rec.SenasaPSLinea = utils.BuildSenasaPSLinea(rec.Senasa, rec.PSLinea)

	default:
		return nil, ErrFieldNotEditable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		if err := s.rebuildUnique(ctx, tx, &rec, username); err != nil {
			return err
		}
		return logEvent(tx, rec.ID, models.ActionEdit, before, snapshot(&rec), in.Reason, username)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// findCarrier resolves a carrier by RUC, SAP code or name fragment. More
// than one match is an error; the caller must disambiguate.
func (s *Service) findCarrier(ctx context.Context, needle string) (*models.Carrier, error) {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return nil, ErrCarrierNotFound
	}

	var matches []models.Carrier
	err := s.db.WithContext(ctx).
		Where("ruc = ? OR sap_code = ? OR name ILIKE ?", needle, needle, "%"+needle+"%").
		Limit(6).Find(&matches).Error
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrCarrierNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrCarrierAmbiguous
	}
}
