// Package docs holds the OpenAPI description served at /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/account/signin": {
            "post": {
                "tags": ["account"],
                "summary": "Sign in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/signInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorBody"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/account/create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["account"],
                "summary": "Create an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/createAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/account/roles": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["account"],
                "summary": "Assign roles",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/assignRolesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/assignRolesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/account/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["account"],
                "summary": "Current identity",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/roles": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["roles"],
                "summary": "List roles",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rolesResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["roles"],
                "summary": "Create a role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/createRoleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/roleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "errorBody": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "signInRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 100},
                "password": {"type": "string", "minLength": 6, "maxLength": 100}
            }
        },
        "tokenResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        },
        "createAccountRequest": {
            "type": "object",
            "required": ["username", "password", "roles"],
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 100},
                "password": {"type": "string", "minLength": 6, "maxLength": 100},
                "roles": {"type": "array", "minItems": 1, "items": {"type": "string"}}
            }
        },
        "account": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"}
            }
        },
        "accountResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/account"}}
        },
        "assignRolesRequest": {
            "type": "object",
            "required": ["username", "roles"],
            "properties": {
                "username": {"type": "string"},
                "roles": {"type": "array", "minItems": 1, "items": {"type": "string"}}
            }
        },
        "assignRolesResponse": {
            "type": "object",
            "properties": {"assigned": {"type": "boolean"}}
        },
        "meResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "token_id": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "createRoleRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string", "maxLength": 100}}
        },
        "role": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "roleResponse": {
            "type": "object",
            "properties": {"role": {"$ref": "#/definitions/role"}}
        },
        "rolesResponse": {
            "type": "object",
            "properties": {"roles": {"type": "array", "items": {"$ref": "#/definitions/role"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Identity Service API",
	Description:      "Accounts, roles and JWT access tokens.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
