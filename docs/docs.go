// Package docs registers the OpenAPI description served under /docs.
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
        "/builds": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["builds"],
                "summary": "Generate an alternate build",
                "parameters": [
                    {
                        "description": "Build request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CreateBuildRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/builder.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.APIError"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/middleware.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/middleware.APIError"}}
                }
            }
        },
        "/sets/{set}/inventory": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sets"],
                "summary": "Load a set inventory",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Set number, e.g. 75192 or 75192-1",
                        "name": "set",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/builder.Overview"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/middleware.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "models.Entry": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "models.Inventory": {
            "type": "object",
            "properties": {
                "total_parts": {"type": "integer"},
                "parts": {"type": "array", "items": {"$ref": "#/definitions/models.Entry"}},
                "by_category": {"type": "array", "items": {"$ref": "#/definitions/models.Entry"}},
                "by_color": {"type": "array", "items": {"$ref": "#/definitions/models.Entry"}}
            }
        },
        "models.ArchetypeScore": {
            "type": "object",
            "properties": {
                "archetype": {"type": "string", "enum": ["structure", "vehicle", "robot"]},
                "score": {"type": "integer"}
            }
        },
        "builder.Overview": {
            "type": "object",
            "properties": {
                "set_number": {"type": "string"},
                "inventory": {"$ref": "#/definitions/models.Inventory"},
                "sample": {"type": "array", "items": {"$ref": "#/definitions/models.Entry"}},
                "recommendations": {"type": "array", "items": {"type": "string"}},
                "scores": {"type": "array", "items": {"$ref": "#/definitions/models.ArchetypeScore"}},
                "best": {"type": "string"},
                "tied": {"type": "array", "items": {"type": "string"}},
                "available_sizes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "selection.Downgrade": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "builder.Result": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "overview": {"$ref": "#/definitions/builder.Overview"},
                "size": {"type": "string", "enum": ["small", "medium", "large"]},
                "downgrade": {"$ref": "#/definitions/selection.Downgrade"},
                "theme": {"type": "string"},
                "theme_from_scores": {"type": "boolean"},
                "selection": {"type": "array", "items": {"$ref": "#/definitions/models.Entry"}},
                "build": {"type": "string"},
                "guidance": {"type": "array", "items": {"type": "string"}},
                "guidance_warning": {"type": "string"}
            }
        },
        "handlers.CreateBuildRequest": {
            "type": "object",
            "required": ["set_number", "size"],
            "properties": {
                "set_number": {"type": "string"},
                "size": {"type": "string", "enum": ["small", "medium", "large"]},
                "build_type": {"type": "string"},
                "allow_downgrade": {"type": "boolean"}
            }
        },
        "middleware.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"},
                "retry_after_ms": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "LEGO Alternate Build Generator API",
	Description:      "Turns the parts of a LEGO set into an AI-generated alternate build.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
