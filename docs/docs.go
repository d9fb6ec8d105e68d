// Package docs registers the OpenAPI description of /api/v1 with swag. It
// mirrors the handler annotations; regenerate with
// `swag init -g cmd/server/main.go` after changing them.
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
        "/auth/login": {
            "post": {
                "description": "Signs the admin in with Supabase Auth. The returned access token authorizes the customer write endpoints.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin login",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Ends the admin session. Succeeds for any valid access token; a failure to revoke the remote session is only logged.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/session": {
            "get": {
                "description": "Reports whether an admin is signed in",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SessionResponse"}}
                }
            }
        },
        "/customers": {
            "get": {
                "description": "Returns every customer in store order. search keeps the customers whose name contains it, ignoring case.",
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "List customers",
                "parameters": [
                    {"type": "string", "description": "Name filter", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CustomerListResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "description": "Uploads the attached photos one at a time, then stores the customer with their URLs. Accepts JSON or multipart/form-data (photos in \"files\").",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Create customer",
                "parameters": [
                    {
                        "description": "Customer",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.CustomerForm"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.CustomerListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/customers/{id}": {
            "put": {
                "security": [{"Bearer": []}],
                "description": "Overwrites every form field of the customer. Newly attached photos replace the stored ones unless IMAGE_POLICY=append.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Update customer",
                "parameters": [
                    {"type": "string", "description": "Customer ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Customer",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.CustomerForm"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CustomerListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"Bearer": []}],
                "description": "Permanently removes the customer. Uploaded photos stay in storage.",
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Delete customer",
                "parameters": [
                    {"type": "string", "description": "Customer ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CustomerListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/customers/{id}/export": {
            "get": {
                "description": "Downloads a one-page PDF summary named after the customer",
                "produces": ["application/pdf"],
                "tags": ["customers"],
                "summary": "Export customer as PDF",
                "parameters": [
                    {"type": "string", "description": "Customer ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Admin": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "expires_at": {"type": "string"},
                "id": {"type": "string"}
            }
        },
        "models.Customer": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "fabric": {"type": "string"},
                "id": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "invoice": {"$ref": "#/definitions/models.Invoice"},
                "measurements": {"type": "string"},
                "name": {"type": "string"},
                "outfitName": {"type": "string"}
            }
        },
        "models.CustomerForm": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "fabric": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "invoiceAmount": {"type": "string"},
                "invoicePaid": {"type": "boolean"},
                "measurements": {"type": "string"},
                "name": {"type": "string"},
                "outfitName": {"type": "string"}
            }
        },
        "models.CustomerListResponse": {
            "type": "object",
            "properties": {
                "customers": {"type": "array", "items": {"$ref": "#/definitions/models.Customer"}}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.Invoice": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "paid": {"type": "boolean"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "admin": {"$ref": "#/definitions/models.Admin"}
            }
        },
        "models.SessionResponse": {
            "type": "object",
            "properties": {
                "admin": {"$ref": "#/definitions/models.Admin"},
                "authenticated": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and the Supabase access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tailor Gallery API",
	Description:      "Admin backend for a tailoring business: customer records with measurements, outfit photos and invoices, a server-rendered gallery, and PDF export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
