// Package docs holds the Swagger document served under /swagger.
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
        "/users": {
            "get": {
                "description": "Returns one page of users, newest first.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 5)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Users page", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            },
            "post": {
                "description": "Accepts multipart/form-data (optionally with a profileImage file) or JSON.",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create user",
                "parameters": [
                    {"type": "string", "description": "First name", "name": "firstName", "in": "formData", "required": true},
                    {"type": "string", "description": "Last name", "name": "lastName", "in": "formData", "required": true},
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Mobile", "name": "mobile", "in": "formData", "required": true},
                    {"type": "string", "description": "M or F", "name": "gender", "in": "formData", "required": true},
                    {"type": "string", "description": "Active or Inactive", "name": "status", "in": "formData"},
                    {"type": "string", "description": "Location", "name": "location", "in": "formData", "required": true},
                    {"type": "file", "description": "jpeg or png avatar", "name": "profileImage", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "User created", "schema": {"$ref": "#/definitions/types.Response"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/types.Response"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/users/export/csv": {
            "get": {
                "description": "Downloads every user as CSV, ignoring pagination and search.",
                "produces": ["text/csv"],
                "tags": ["Users"],
                "summary": "Export users",
                "responses": {
                    "200": {"description": "users.csv", "schema": {"type": "file"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/users/search": {
            "get": {
                "description": "Case-insensitive substring search over first name, last name, full name, email, mobile and location.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Search users",
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 5)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Matching users page", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "User", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "User Not Found", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            },
            "put": {
                "description": "Updates only the supplied fields; a profileImage file replaces the stored avatar.",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Update user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "First name", "name": "firstName", "in": "formData"},
                    {"type": "string", "description": "Last name", "name": "lastName", "in": "formData"},
                    {"type": "string", "description": "Email", "name": "email", "in": "formData"},
                    {"type": "string", "description": "Mobile", "name": "mobile", "in": "formData"},
                    {"type": "string", "description": "M or F", "name": "gender", "in": "formData"},
                    {"type": "string", "description": "Active or Inactive", "name": "status", "in": "formData"},
                    {"type": "string", "description": "Location", "name": "location", "in": "formData"},
                    {"type": "file", "description": "jpeg or png avatar", "name": "profileImage", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "User updated", "schema": {"$ref": "#/definitions/types.Response"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "User Not Found", "schema": {"$ref": "#/definitions/types.Response"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Delete user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "User deleted", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "User Not Found", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        }
    },
    "definitions": {
        "types.Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "types.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string", "example": "User created"},
                "pagination": {"$ref": "#/definitions/types.Pagination"},
                "request_id": {"type": "string"},
                "success": {"type": "boolean", "example": true}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "User Records API",
	Description:      "Create, list, search, edit, delete and export user records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
