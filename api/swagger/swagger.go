package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Alumni Mentorship API",
        "description": "Mentor capacity, FIFO waiting queue and notification mailbox for the alumni network",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Mentorship", "description": "Request, accept and reject mentorships"},
        {"name": "Alumni", "description": "Mentor availability and suggestions"},
        {"name": "Notifications", "description": "Per-user mailbox"}
    ],
    "paths": {
        "/health": {"get": {"summary": "Liveness", "security": [], "responses": {"200": {"description": "OK"}}}},
        "/ready": {"get": {"summary": "Readiness of Postgres and Redis", "security": [], "responses": {"200": {"description": "Ready"}, "503": {"description": "Degraded"}}}},
        "/mentorship/request/{alumniId}": {
            "post": {
                "tags": ["Mentorship"],
                "summary": "Request mentorship from an alumni (student)",
                "parameters": [{"name": "alumniId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "PENDING or QUEUED request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Mentor unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mentorship/{requestId}/accept": {
            "post": {
                "tags": ["Mentorship"],
                "summary": "Accept a pending request and promote the head of the queue (alumni)",
                "parameters": [{"name": "requestId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mentorship/{requestId}/reject": {
            "post": {
                "tags": ["Mentorship"],
                "summary": "Reject a pending request (alumni)",
                "parameters": [{"name": "requestId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mentorship/incoming": {"get": {"tags": ["Mentorship"], "summary": "Pending requests addressed to the caller (alumni)", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/mentorship/my-requests": {"get": {"tags": ["Mentorship"], "summary": "The caller's own requests (student)", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/mentorship/accepted": {"get": {"tags": ["Mentorship"], "summary": "Accepted mentees (alumni)", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/mentorship/queue": {"get": {"tags": ["Mentorship"], "summary": "Waiting queue in order (alumni)", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/mentorship/summary": {"get": {"tags": ["Mentorship"], "summary": "Counts per status and open slots (alumni)", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/mentorship/accepted/export": {
            "get": {
                "tags": ["Mentorship"],
                "summary": "Download the accepted mentee roster (alumni)",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "400": {"description": "Unknown format"}}
            }
        },
        "/alumni/{id}/availability": {
            "get": {
                "tags": ["Alumni"],
                "summary": "Mentorship availability of an alumni",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found"}}
            }
        },
        "/alumni/me/mentorship": {
            "put": {
                "tags": ["Alumni"],
                "summary": "Update the caller's mentorship settings (alumni)",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAvailabilityRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error"}}
            }
        },
        "/alumni/suggestions": {
            "get": {
                "tags": ["Alumni"],
                "summary": "Open mentors sharing a topic (student)",
                "parameters": [{"name": "topics", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "The caller's notifications, newest first",
                "parameters": [
                    {"name": "unread", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications/unread-count": {"get": {"tags": ["Notifications"], "summary": "Unread badge count", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
        "UpdateAvailabilityRequest": {
            "type": "object",
            "required": ["accepts_mentorship", "max_mentees"],
            "properties": {
                "accepts_mentorship": {"type": "boolean"},
                "max_mentees": {"type": "integer", "minimum": 0, "maximum": 50},
                "topics": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
