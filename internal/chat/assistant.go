// Package chat answers operational questions about the day's records. It
// resolves the common questions with direct database counts and only falls
// back to the generative model for anything it does not recognize.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agroflow/logicapture/internal/models"
)

// Responder is the generative fallback. Nil disables it.
type Responder interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assistant answers free-text questions from the operations staff.
type Assistant struct {
	db *gorm.DB
	ai Responder
}

func NewAssistant(db *gorm.DB, ai Responder) *Assistant {
	return &Assistant{db: db, ai: ai}
}

type intent int

const (
	intentUnknown intent = iota
	intentPending
	intentProcessedToday
	intentAnnulled
	intentTotalToday
	intentTopCarrier
)

// matchIntent keyword-classifies a question. Matching is deliberately loose;
// staff phrase the same question many ways.
func matchIntent(question string) intent {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "pendiente"):
		return intentPending
	case strings.Contains(q, "procesado"):
		return intentProcessedToday
	case strings.Contains(q, "anulado"):
		return intentAnnulled
	case strings.Contains(q, "transportista") || strings.Contains(q, "empresa"):
		return intentTopCarrier
	case strings.Contains(q, "cuantos") || strings.Contains(q, "cuántos") ||
		strings.Contains(q, "total") || strings.Contains(q, "hoy"):
		return intentTotalToday
	default:
		return intentUnknown
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Answer resolves a question. Questions the keyword matcher does not
// understand go to the generative fallback with a compact stats context.
func (a *Assistant) Answer(ctx context.Context, question string) (string, error) {
	today := startOfDay(time.Now().UTC())

	switch matchIntent(question) {
	case intentPending:
		var n int64
		if err := a.db.WithContext(ctx).Model(&models.Record{}).
			Where("state = ?", models.StatePending).Count(&n).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("Hay %d registros pendientes.", n), nil

	case intentProcessedToday:
		var n int64
		if err := a.db.WithContext(ctx).Model(&models.Record{}).
			Where("state = ? AND processed_at >= ?", models.StateProcessed, today).
			Count(&n).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("Hoy se procesaron %d registros.", n), nil

	case intentAnnulled:
		var n int64
		if err := a.db.WithContext(ctx).Model(&models.Record{}).
			Where("state = ?", models.StateAnnulled).Count(&n).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("Hay %d registros anulados.", n), nil

	case intentTotalToday:
		var n int64
		if err := a.db.WithContext(ctx).Model(&models.Record{}).
			Where("registered_at >= ?", today).Count(&n).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("Hoy se registraron %d operaciones.", n), nil

	case intentTopCarrier:
		var row struct {
			Name string
			N    int64
		}
		err := a.db.WithContext(ctx).Model(&models.Record{}).
			Select("cat_carriers.name AS name, COUNT(*) AS n").
			Joins("JOIN cat_carriers ON cat_carriers.id = ope_records.carrier_id").
			Where("ope_records.registered_at >= ?", today).
			Group("cat_carriers.name").
			Order("n DESC").
			Limit(1).
			Scan(&row).Error
		if err != nil {
			return "", err
		}
		if row.Name == "" {
			return "Hoy todavía no hay registros con transportista.", nil
		}
		return fmt.Sprintf("El transportista con más registros hoy es %s (%d).", row.Name, row.N), nil
	}

	if a.ai == nil {
		return "Puedo responder sobre registros pendientes, procesados, anulados y transportistas del día.", nil
	}
	return a.aiFallback(ctx, question, today)
}

func (a *Assistant) aiFallback(ctx context.Context, question string, today time.Time) (string, error) {
	var pending, processed int64
	a.db.WithContext(ctx).Model(&models.Record{}).
		Where("state = ?", models.StatePending).Count(&pending)
	a.db.WithContext(ctx).Model(&models.Record{}).
		Where("state = ? AND processed_at >= ?", models.StateProcessed, today).Count(&processed)

	prompt := fmt.Sprintf(
		"Eres el asistente de operaciones de una agroexportadora. "+
			"Contexto actual: %d registros pendientes, %d procesados hoy. "+
			"Responde en una o dos frases, en español. Pregunta: %s",
		pending, processed, question,
	)
	return a.ai.GenerateContent(ctx, prompt)
}
