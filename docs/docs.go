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
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/profile": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Update profile",
                "parameters": [
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionSnapshot"}}}
            }
        },
        "/views/{path}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Open a view",
                "parameters": [
                    {"type": "string", "description": "View path", "name": "path", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "302": {"description": "Found"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/navigation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Dashboard navigation",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.navigationResponse"}}}
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Recent notifications",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Notification"}}}}
            }
        }
    },
    "definitions": {
        "domain.Notification": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "variant": {"type": "string", "enum": ["default", "destructive"]},
                "createdAt": {"type": "string"}
            }
        },
        "domain.SocialConnection": {
            "type": "object",
            "properties": {
                "platform": {"type": "string", "enum": ["youtube", "instagram", "tiktok", "twitter"]},
                "username": {"type": "string"},
                "followers": {"type": "integer"},
                "connected": {"type": "boolean"},
                "verified": {"type": "boolean"}
            }
        },
        "domain.UserProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["creator", "brand", "admin"]},
                "plan": {"type": "string", "enum": ["free", "starter", "growth", "pro", "business", "enterprise"]},
                "avatar": {"type": "string"},
                "bio": {"type": "string"},
                "company": {"type": "string"},
                "website": {"type": "string"},
                "location": {"type": "string"},
                "socialConnections": {"type": "array", "items": {"$ref": "#/definitions/domain.SocialConnection"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.SessionSnapshot": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["uninitialized", "loading", "anonymous", "authenticated"]},
                "profile": {"$ref": "#/definitions/domain.UserProfile"},
                "busy": {"type": "boolean"},
                "version": {"type": "integer"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "name", "password", "role"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string", "maxLength": 100},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["creator", "brand"]}
            }
        },
        "handler.updateProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "plan": {"type": "string", "enum": ["free", "starter", "growth", "pro", "business", "enterprise"]},
                "avatar": {"type": "string"},
                "bio": {"type": "string"},
                "company": {"type": "string"},
                "website": {"type": "string"},
                "location": {"type": "string"},
                "socialConnections": {"type": "array", "items": {"$ref": "#/definitions/domain.SocialConnection"}}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresAt": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "handler.profileResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "handler.viewResponse": {
            "type": "object",
            "properties": {
                "view": {"type": "string"},
                "path": {"type": "string"},
                "profile": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "handler.navigationResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "items": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {"type": "string"},
                            "path": {"type": "string"},
                            "protected": {"type": "boolean"},
                            "requiredRole": {"type": "string"},
                            "guestOnly": {"type": "boolean"}
                        }
                    }
                }
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "MatchBot Session API",
	Description:      "Session and access control for the creator/brand sponsorship app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
