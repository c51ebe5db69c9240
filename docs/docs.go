// Package docs registers the OpenAPI document served by the Swagger UI.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with the shared password",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}},
                    "401": {"description": "Invalid password", "schema": {"$ref": "#/definitions/respond.ErrorBody"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "End the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SessionResponse"}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SessionResponse"}}
                }
            }
        },
        "/api/articles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Filtered articles",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "region", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "source", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "category", "in": "query"},
                    {"minimum": 1, "type": "integer", "name": "days", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"minimum": 1, "type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.ArticlesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}},
                    "401": {"description": "Login required", "schema": {"$ref": "#/definitions/respond.ErrorBody"}},
                    "503": {"description": "Dataset not loaded", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}
                }
            }
        },
        "/api/views": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Sectioned view",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.ViewsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}
                }
            }
        },
        "/api/views/countries/{code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Government articles by country",
                "parameters": [
                    {"type": "string", "description": "Country code or _", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.CountryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}
                }
            }
        },
        "/api/filters/clear": {
            "post": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Clear filters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.ViewsResponse"}}
                }
            }
        },
        "/api/meta": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dataset metadata",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.MetaResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}
                }
            }
        },
        "/api/refresh": {
            "get": {
                "produces": ["application/json"],
                "tags": ["refresh"],
                "summary": "Refresh status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/refresh.Status"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["refresh"],
                "summary": "Start a refresh",
                "parameters": [
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/refresh.Request"}}
                ],
                "responses": {
                    "200": {"description": "A refresh is already running", "schema": {"$ref": "#/definitions/refresh.Status"}},
                    "202": {"description": "Refresh started", "schema": {"$ref": "#/definitions/refresh.Status"}},
                    "400": {"description": "Credential required", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}
                }
            }
        },
        "/api/refresh/credential": {
            "delete": {
                "tags": ["refresh"],
                "summary": "Forget the workflow credential",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Component health",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Unhealthy"}
                }
            }
        }
    },
    "definitions": {
        "respond.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "auth.loginRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "auth.SessionResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "expires_at": {"type": "string"}
            }
        },
        "dashboard.CategoryTag": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "color": {"type": "string"}
            }
        },
        "dashboard.ArticleDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "url": {"type": "string"},
                "section": {"type": "string", "enum": ["government", "other", "vendor"]},
                "region": {"type": "string"},
                "country": {"type": "string"},
                "countryName": {"type": "string"},
                "flag": {"type": "string"},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/dashboard.CategoryTag"}},
                "publishedAt": {"type": "string"},
                "publishedDate": {"type": "string"},
                "publishedRelative": {"type": "string"}
            }
        },
        "pagination.Metadata": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_more": {"type": "boolean"}
            }
        },
        "dashboard.ArticlesResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/dashboard.ArticleDTO"}},
                "pagination": {"$ref": "#/definitions/pagination.Metadata"},
                "hasActiveFilters": {"type": "boolean"},
                "lastUpdated": {"type": "string"},
                "crawlStatus": {"type": "string"}
            }
        },
        "view.CountryGroup": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "flag": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "dashboard.ViewsResponse": {
            "type": "object",
            "properties": {
                "hasActiveFilters": {"type": "boolean"},
                "total": {"type": "integer"},
                "government": {"type": "array", "items": {"$ref": "#/definitions/dashboard.ArticleDTO"}},
                "other": {"type": "array", "items": {"$ref": "#/definitions/dashboard.ArticleDTO"}},
                "vendor": {"type": "array", "items": {"$ref": "#/definitions/dashboard.ArticleDTO"}},
                "countries": {"type": "array", "items": {"$ref": "#/definitions/view.CountryGroup"}},
                "lastUpdated": {"type": "string"},
                "crawlStatus": {"type": "string"}
            }
        },
        "dashboard.CountryResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "flag": {"type": "string"},
                "articles": {"type": "array", "items": {"$ref": "#/definitions/dashboard.ArticleDTO"}}
            }
        },
        "dashboard.MetaResponse": {
            "type": "object",
            "properties": {
                "lastUpdated": {"type": "string"},
                "lastUpdatedRelative": {"type": "string"},
                "crawlStatus": {"type": "string"},
                "totalArticles": {"type": "integer"},
                "loadedAt": {"type": "string"},
                "loading": {"type": "boolean"}
            }
        },
        "refresh.Request": {
            "type": "object",
            "properties": {"credential": {"type": "string"}}
        },
        "refresh.Status": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["idle", "triggering", "waiting", "polling", "done", "failed"]},
                "refreshing": {"type": "boolean"},
                "run_status": {"type": "string"},
                "run_url": {"type": "string"},
                "attempt": {"type": "integer"},
                "max_attempts": {"type": "integer"},
                "message": {"type": "string"},
                "delta": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "eInvoice News Dashboard API",
	Description:      "Filtered e-invoicing news from the published crawl datasets, with an on-demand crawl refresh.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
