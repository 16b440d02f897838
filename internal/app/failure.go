package app

import (
	"errors"
	"fmt"

	"dudas-espanol/internal/ai"
)

// Failure is what the page shows when an exchange does not produce an answer.
type Failure struct {
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

func DescribeFailure(err error) Failure {
	var statusErr *ai.StatusError
	switch {
	case err == nil:
		return Failure{}
	case errors.Is(err, ErrMessageEmpty):
		return Failure{Message: "📝 Escribe tu consulta antes de enviarla."}
	case errors.Is(err, ErrMessageLong):
		return Failure{Message: fmt.Sprintf("📝 Tu consulta es demasiado larga (máximo %d caracteres).", MaxContentRunes)}
	case errors.As(err, &statusErr):
		return Failure{
			Message:    fmt.Sprintf("⚠️ Error en la solicitud: %d", statusErr.StatusCode),
			Details:    fmt.Sprintf("Detalles: %s", statusErr.Body),
			StatusCode: statusErr.StatusCode,
		}
	case errors.Is(err, ai.ErrEmptyContent):
		return Failure{Message: "⚠️ La respuesta del chatbot no contiene contenido."}
	default:
		return Failure{Message: fmt.Sprintf("❌ Ocurrió un error: %v", err)}
	}
}
