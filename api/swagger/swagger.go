package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniTrack API",
        "description": "Tracks university applications per user on top of Supabase.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Sign-up, sign-in and sessions"},
        {"name": "Universities", "description": "Per-user application records"},
        {"name": "Dashboard", "description": "List view with status counts"},
        {"name": "Analytics", "description": "Aggregates over the caller's records"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"},
        {"name": "Navigation", "description": "Authenticated shell"},
        {"name": "Settings", "description": "Account details"}
    ],
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {
                    "200": {"description": "Session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Refresh a session",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}],
                "responses": {
                    "200": {"description": "Session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Refresh rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign out",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Redirect target", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "User", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/navigation": {
            "get": {
                "tags": ["Navigation"],
                "summary": "Navigation entries",
                "responses": {"200": {"description": "Items", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard with status counts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Dashboard", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/universities": {
            "get": {
                "tags": ["Universities"],
                "summary": "List the caller's universities, newest first",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Records", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Universities"],
                "summary": "Add a university",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UniversityDraft"}}],
                "responses": {
                    "201": {"description": "Created; meta.redirect names the next view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error; meta.state is ready-with-error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/universities/{id}": {
            "get": {
                "tags": ["Universities"],
                "summary": "Get a university",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Universities"],
                "summary": "Replace a university's fields",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UniversityDraft"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Universities"],
                "summary": "Delete a university",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/universities/{id}/form": {
            "get": {
                "tags": ["Universities"],
                "summary": "Prefill values for the edit form",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Draft", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found; meta.back names the way out", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Aggregates over the caller's universities",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an analytics export",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export via signed token",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"in": "path", "name": "token", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Account details",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/settings/account": {
            "delete": {
                "tags": ["Settings"],
                "summary": "Delete the account (not available)",
                "security": [{"BearerAuth": []}],
                "responses": {"501": {"description": "Not implemented", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/settings/export": {
            "post": {
                "tags": ["Settings"],
                "summary": "Export account data (not available)",
                "security": [{"BearerAuth": []}],
                "responses": {"501": {"description": "Not implemented", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "Credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {"refresh_token": {"type": "string"}}
        },
        "UniversityDraft": {
            "type": "object",
            "required": ["name", "country", "deadline", "scholarship_percentage", "application_fees"],
            "properties": {
                "name": {"type": "string", "maxLength": 200},
                "country": {"type": "string", "maxLength": 100},
                "deadline": {"type": "string", "format": "date"},
                "scholarship_percentage": {"type": "number", "minimum": 0, "maximum": 100},
                "application_fees": {"type": "number", "minimum": 0},
                "notes": {"type": "string", "maxLength": 5000},
                "status": {"type": "string", "enum": ["Applying", "Waiting", "Accepted", "Waitlisted", "Rejected"]}
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {"format": {"type": "string", "enum": ["csv", "pdf"]}}
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
