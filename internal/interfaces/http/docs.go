package http

import "github.com/swaggo/swag"

// apiDoc 在线文档；路由说明与 handler 上的注解保持一致
const apiDoc = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/surveys": {
            "get": {"tags": ["surveys"], "summary": "Listar sesiones", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["surveys"], "summary": "Crear sesión", "responses": {"200": {"description": "OK"}}}
        },
        "/surveys/{id}": {
            "get": {"tags": ["surveys"], "summary": "Consultar sesión", "responses": {"200": {"description": "OK"}, "404": {"description": "Sesión no encontrada"}}}
        },
        "/surveys/{id}/begin": {
            "post": {"tags": ["surveys"], "summary": "Empezar la encuesta", "responses": {"200": {"description": "OK"}}}
        },
        "/surveys/{id}/answers": {
            "post": {"tags": ["surveys"], "summary": "Responder la pregunta actual", "responses": {"200": {"description": "OK"}, "400": {"description": "Respuesta vacía"}, "409": {"description": "Pregunta no vigente"}, "502": {"description": "Fallo del modelo"}}}
        },
        "/surveys/{id}/contact": {
            "post": {"tags": ["surveys"], "summary": "Enviar email y consentimiento", "responses": {"200": {"description": "OK"}}}
        },
        "/surveys/{id}/report": {
            "post": {"tags": ["surveys"], "summary": "Generar el informe", "responses": {"200": {"description": "OK"}, "400": {"description": "Falta email o consentimiento"}, "502": {"description": "Fallo del modelo"}}}
        },
        "/surveys/{id}/reset": {
            "post": {"tags": ["surveys"], "summary": "Reiniciar la sesión", "responses": {"200": {"description": "OK"}}}
        },
        "/surveys/{id}/export": {
            "get": {"tags": ["surveys"], "summary": "Descargar JSON", "responses": {"200": {"description": "OK"}}}
        },
        "/catalog": {
            "get": {"tags": ["catalog"], "summary": "Catálogo actual", "responses": {"200": {"description": "OK"}}}
        },
        "/stats/llm": {
            "get": {"tags": ["stats"], "summary": "Estadísticas de llamadas al modelo", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "encuesta.ia API",
	Description:      "Encuesta conversacional de diagnóstico con IA",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  apiDoc,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
