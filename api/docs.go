// Package api holds the OpenAPI description served at /swagger/.
package api

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
        "/v1/auth/remote/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Interactive login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "session_token, token_type, expires_in, user_id"},
                    "400": {"description": "invalid_request"},
                    "403": {"description": "access_denied"}
                }
            }
        },
        "/v1/auth/client": {
            "post": {
                "tags": ["Clients"],
                "summary": "Register a client application",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "client_key, client_secret (returned once)"},
                    "403": {"description": "forbidden"}
                }
            },
            "get": {
                "tags": ["Clients"],
                "summary": "List the caller's clients",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "clients"},
                    "403": {"description": "forbidden"}
                }
            }
        },
        "/v1/auth/authorize": {
            "get": {
                "tags": ["Auth"],
                "summary": "Consent screen data",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "client_key, redirect_uri, scopes, user"},
                    "403": {"description": "forbidden"}
                }
            },
            "post": {
                "tags": ["Auth"],
                "summary": "Consent decision",
                "consumes": ["application/x-www-form-urlencoded"],
                "responses": {
                    "302": {"description": "redirect with code or error=access_denied"},
                    "403": {"description": "forbidden"}
                }
            }
        },
        "/v1/auth/token": {
            "get": {
                "tags": ["Auth"],
                "summary": "Exchange an authorization code for an access token",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "access_token, token_type, expires_in, scope, refresh_token"},
                    "400": {"description": "invalid_request"},
                    "401": {"description": "invalid_client or invalid_grant"}
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the presented access token",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "revoked"},
                    "403": {"description": "forbidden"}
                }
            }
        },
        "/v1/data/user/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "user"},
                    "403": {"description": "forbidden"}
                }
            }
        },
        "/v1/data/user": {
            "get": {
                "tags": ["Users"],
                "summary": "List users (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "users"},
                    "401": {"description": "unauthorized"},
                    "403": {"description": "forbidden"}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a user (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "user"},
                    "401": {"description": "unauthorized"},
                    "403": {"description": "forbidden"}
                }
            }
        },
        "/v1/bootstrap": {
            "post": {
                "tags": ["System"],
                "summary": "Create the first admin account",
                "responses": {
                    "201": {"description": "admin user"},
                    "409": {"description": "already bootstrapped"}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "ok"},
                    "503": {"description": "degraded"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Rith Authentication Service API",
	Description:      "OAuth2 authorization-code and access-token lifecycle with role-based request authorization.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
