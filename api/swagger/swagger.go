package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Negative Records API",
        "description": "Exclusive access arbitration, unlock requests and credit-gated printing for shared negative records",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Authentication", "description": "Login and token identity"},
        {"name": "Records", "description": "Claim-or-view search, lock lookups and printing"},
        {"name": "Unlock Requests", "description": "Petitions to take over a record lock"},
        {"name": "Credits", "description": "Client credit ledger"},
        {"name": "Notifications", "description": "In-app inbox"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "security": [],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/search": {
            "get": {
                "tags": ["Records"],
                "summary": "Search records, locking unlocked matches to the caller",
                "parameters": [
                    {"name": "type", "in": "query", "required": true, "type": "string", "enum": ["Individual", "Company"]},
                    {"name": "firstName", "in": "query", "type": "string"},
                    {"name": "middleName", "in": "query", "type": "string"},
                    {"name": "lastName", "in": "query", "type": "string"},
                    {"name": "company", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No active client affiliation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{id}/lock-info": {
            "get": {
                "tags": ["Records"],
                "summary": "Lock state of a record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{id}/lock-history": {
            "get": {
                "tags": ["Records"],
                "summary": "Lock ownership history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{id}/print": {
            "post": {
                "tags": ["Records"],
                "summary": "Print a locked record, charging prepaid clients",
                "produces": ["application/pdf", "application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "json"]}
                ],
                "responses": {
                    "200": {"description": "Printable record"},
                    "402": {"description": "Insufficient credit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller does not hold the lock", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/unlock-requests": {
            "get": {
                "tags": ["Unlock Requests"],
                "summary": "List unlock requests",
                "parameters": [
                    {"name": "scope", "in": "query", "type": "string", "enum": ["mine", "incoming"]},
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated statuses"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Unlock Requests"],
                "summary": "Request the lock on a record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUnlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate pending request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/unlock-requests/{id}/review": {
            "patch": {
                "tags": ["Unlock Requests"],
                "summary": "Approve or deny an unlock request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewUnlockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/credits/topup": {
            "post": {
                "tags": ["Credits"],
                "summary": "Top up client credit",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TopUpRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/credits/{clientId}/transactions": {
            "get": {
                "tags": ["Credits"],
                "summary": "Client credit ledger",
                "parameters": [
                    {"name": "clientId", "in": "path", "required": true, "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "parameters": [
                    {"name": "unread", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateUnlockRequest": {
            "type": "object",
            "required": ["recordId"],
            "properties": {
                "recordId": {"type": "integer"},
                "reason": {"type": "string"}
            }
        },
        "ReviewUnlockRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["approved", "denied"]},
                "denialReason": {"type": "string"}
            }
        },
        "TopUpRequest": {
            "type": "object",
            "required": ["clientId", "amount"],
            "properties": {
                "clientId": {"type": "integer"},
                "amount": {"type": "integer"}
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
