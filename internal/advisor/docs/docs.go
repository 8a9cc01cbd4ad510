// Package docs registers the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/stock-analysis": {
            "post": {
                "description": "Run the full recommendation pipeline for a ticker and user profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stock-analysis"],
                "summary": "Analyse a stock",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "X-User-ID", "in": "header"},
                    {"description": "Analysis request", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/dto.StockAnalysisRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Recommendation"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/stock-analysis/async": {
            "post": {
                "description": "Queue the pipeline on the recommendation stream",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stock-analysis"],
                "summary": "Queue a stock analysis",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "X-User-ID", "in": "header"},
                    {"description": "Analysis request", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/http.AsyncAnalysisRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.AsyncAnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/stock-analysis/history": {
            "get": {
                "description": "Paged analysis history of the calling user, newest first",
                "produces": ["application/json"],
                "tags": ["stock-analysis"],
                "summary": "List past recommendations",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Page (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HistoryPage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/stock-analysis/latest/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stock-analysis"],
                "summary": "Latest recommendation for a ticker",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Ticker", "name": "ticker", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Recommendation"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/stock-analysis/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["stock-analysis"],
                "summary": "Delete a stored recommendation",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Recommendation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.UserProfile": {
            "type": "object",
            "properties": {
                "monthly_income": {"type": "number"},
                "monthly_expenses": {"type": "number"},
                "savings": {"type": "number"},
                "risk_tolerance": {"type": "string", "enum": ["low", "medium", "high"]},
                "time_horizon": {"type": "string", "enum": ["weeks", "months", "years"]},
                "current_portfolio": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "dto.StockAnalysisRequest": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "company_name": {"type": "string"},
                "user_profile": {"$ref": "#/definitions/dto.UserProfile"}
            }
        },
        "http.AsyncAnalysisRequest": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "company_name": {"type": "string"},
                "user_profile": {"$ref": "#/definitions/dto.UserProfile"},
                "telegram_id": {"type": "integer"}
            }
        },
        "dto.Recommendation": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "decision": {"type": "string", "enum": ["BUY", "HOLD", "SELL"]},
                "confidence": {"type": "number"},
                "suggested_quantity": {"type": "integer"},
                "rationale": {"type": "string"},
                "source": {"type": "string"},
                "caveats": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.AsyncAnalysisResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "message_id": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "dto.HistoryItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "ticker": {"type": "string"},
                "company_name": {"type": "string"},
                "decision": {"type": "string"},
                "confidence": {"type": "number"},
                "suggested_quantity": {"type": "integer"},
                "source": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "dto.HistoryPage": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.HistoryItem"}},
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stock Advisor API",
	Description:      "Stock recommendations from news sentiment, market signals and a personal risk budget.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
