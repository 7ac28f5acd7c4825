// Package docs is generated by swaggo/swag from the handler annotations in
// internal/api. Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "description": "Authenticates an operator, sets the session cookies and returns both tokens.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logs an operator in",
                "parameters": [
                    {"description": "Login Credentials", "name": "loginRequest", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "403": {"description": "Account is not an operator", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/refreshToken": {
            "get": {
                "description": "Issues a new access token for a valid refresh token. The refresh token itself is not rotated.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh access token",
                "parameters": [
                    {"type": "string", "description": "Refresh token; the RefreshToken cookie is used when absent", "name": "Refresh-Token", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "401": {"description": "Invalid or expired refresh token", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}}}
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current operator",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Retrieves changes made by any operator since a given event ID.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get new events",
                "parameters": [
                    {"type": "integer", "description": "The ID of the last event received", "name": "since", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/images/{key}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "tags": ["images"],
                "summary": "Get an uploaded image",
                "parameters": [
                    {"type": "string", "description": "Image key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Image not found", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/{entity}/list": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every record of the entity, newest first.",
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "List records",
                "parameters": [
                    {"type": "string", "description": "user, hospital, donationRequest, donation, news, event, reward or faq", "name": "entity", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}}}
            }
        },
        "/{entity}/detail/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Get one record",
                "parameters": [
                    {"type": "string", "name": "entity", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/{entity}/create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "JSON body for most entities; news and event take multipart/form-data with a required image file.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Create a record",
                "parameters": [
                    {"type": "string", "name": "entity", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/{entity}/update/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Update a record",
                "parameters": [
                    {"type": "string", "name": "entity", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/{entity}/delete/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Delete a record",
                "parameters": [
                    {"type": "string", "name": "entity", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "409": {"description": "Still referenced", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/donation/updateStatus/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "VERIFY, REJECT (with rejectionReason) or CANCEL a pending donation, or DONATE a confirmed one.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Change donation status",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "change", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.StatusChange"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "409": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        },
        "/donationRequest/updateStatus/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "VERIFY an open request or CLOSE it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Change donation request status",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "change", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.StatusChange"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Envelope"}},
                    "409": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/api.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "api.Envelope": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 200},
                "data": {},
                "error": {"type": "string", "example": ""}
            }
        },
        "api.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "admin@lifeline.id"},
                "password": {"type": "string", "example": "password123"}
            }
        },
        "models.StatusChange": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["VERIFY", "REJECT", "CANCEL", "DONATE", "CLOSE"]},
                "rejectionReason": {"type": "string"},
                "updatedBy": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Lifeline Admin API",
	Description:      "Back office API for the Lifeline blood donation platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
