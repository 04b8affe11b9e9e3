package handler

import (
	"errors"
	"net/http"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// 业务错误码
const (
	CodeInvalidRequest  = 800001
	CodeSessionNotFound = 800002
	CodeValidation      = 800003
	CodeConflict        = 800004
	CodeLLMFailure      = 800005
	CodeInternal        = 800006
)

// writeError 把领域错误映射为 HTTP 状态码与业务错误码
func writeError(c *gin.Context, err error) {
	detail := err.Error()
	switch {
	case errors.Is(err, survey.ErrSessionNotFound):
		response.ErrorWithDetail(c, http.StatusNotFound, CodeSessionNotFound, "Sesión no encontrada", detail)
	case errors.Is(err, survey.ErrAnswerRequired):
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeValidation, "Por favor, selecciona una opción o escribe una respuesta.", detail)
	case errors.Is(err, survey.ErrEmailRequired):
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeValidation, "Por favor, introduce tu email para recibir el informe.", detail)
	case errors.Is(err, survey.ErrConsentRequired):
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeValidation, "Debes aceptar los términos para poder generar el informe.", detail)
	case errors.Is(err, survey.ErrStaleAnswer):
		response.ErrorWithDetail(c, http.StatusConflict, CodeConflict, "Esta pregunta ya fue respondida.", detail)
	case errors.Is(err, survey.ErrInvalidStage), errors.Is(err, survey.ErrNoCurrentQuestion):
		response.ErrorWithDetail(c, http.StatusConflict, CodeConflict, "Operación no permitida en este momento de la encuesta.", detail)
	case errors.Is(err, appSurvey.ErrGeneration):
		response.ErrorWithDetail(c, http.StatusBadGateway, CodeLLMFailure, "No se pudo obtener respuesta de la IA. Inténtalo de nuevo.", detail)
	default:
		response.ErrorWithDetail(c, http.StatusInternalServerError, CodeInternal, "Error interno", detail)
	}
}
