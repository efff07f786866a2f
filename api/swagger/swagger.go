package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Wellness API",
        "description": "Wellness check-in scoring, sealed high-risk alerts, extra-credit ledger and therapist review board",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Roster validation, submissions and extra credit"},
        {"name": "Therapists", "description": "Review board, history export and sealed alert downloads"}
    ],
    "securityDefinitions": {
        "ApiKey": {"type": "apiKey", "in": "header", "name": "X-API-Key"},
        "Session": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Metrics exposition"}
                }
            }
        },
        "/api/v1/students/validate": {
            "post": {
                "tags": ["Students"],
                "summary": "Validate a student id against the roster",
                "security": [{"ApiKey": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ValidateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Student found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Student ID is required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student ID not recognized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analyze": {
            "post": {
                "tags": ["Students"],
                "summary": "Score a wellness submission",
                "security": [{"ApiKey": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Scores and flags", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty text, missing consent or too few words", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Classifier unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/extra-credit": {
            "post": {
                "tags": ["Students"],
                "summary": "Claim the one-time extra-credit point",
                "security": [{"ApiKey": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ExtraCreditRequest"}}
                ],
                "responses": {
                    "200": {"description": "Point awarded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student or class", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already claimed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/therapist/login": {
            "post": {
                "tags": ["Therapists"],
                "summary": "Sign in and receive a session token and cookie",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/therapist/logout": {
            "post": {
                "tags": ["Therapists"],
                "summary": "Sign out",
                "responses": {
                    "204": {"description": "Signed out"}
                }
            }
        },
        "/api/v1/therapist/dashboard": {
            "get": {
                "tags": ["Therapists"],
                "summary": "Role-scoped analysis history",
                "security": [{"Session": []}],
                "responses": {
                    "200": {"description": "History entries; meta.waiting is true when empty", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/therapist/history/export": {
            "get": {
                "tags": ["Therapists"],
                "summary": "Download the visible history",
                "security": [{"Session": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Export file"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/therapist/alerts/download/{token}": {
            "get": {
                "tags": ["Therapists"],
                "summary": "Download a sealed alert ciphertext",
                "security": [{"Session": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"in": "path", "name": "token", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Ciphertext bytes"},
                    "403": {"description": "Link expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Alert not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ValidateStudentRequest": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"}
            }
        },
        "AnalyzeRequest": {
            "type": "object",
            "required": ["student_id", "text", "consent"],
            "properties": {
                "student_id": {"type": "string"},
                "text": {"type": "string"},
                "consent": {"type": "boolean"}
            }
        },
        "ExtraCreditRequest": {
            "type": "object",
            "required": ["student_id", "class_key"],
            "properties": {
                "student_id": {"type": "string"},
                "class_key": {"type": "string"},
                "points": {"type": "integer", "default": 1}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
