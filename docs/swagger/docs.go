// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and JWT token"
        }
    },
    "paths": {
        "/users/{userId}/resources": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "List resources",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "class_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/resource.Resource"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/rest.errorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/rest.errorBody"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Create a resource",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/resource.CreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/resource.Resource"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.errorBody"}},
                    "422": {"description": "Malformed mind map content", "schema": {"$ref": "#/definitions/rest.errorBody"}}
                }
            }
        },
        "/users/{userId}/resources/{resourceId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Get a resource",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "resourceId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resource.Resource"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.errorBody"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "The whole content is replaced. Mind-map content must be a well formed graph.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["resources"],
                "summary": "Replace resource content",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "resourceId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/resource.UpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resource.Resource"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.errorBody"}},
                    "422": {"description": "Malformed mind map content", "schema": {"$ref": "#/definitions/rest.errorBody"}}
                }
            }
        },
        "/users/{userId}/resources/{resourceId}/generate-mindmap": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a graph from the prompt, or extends the existing nodes and edges when they are sent.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["mindmaps"],
                "summary": "Generate a mind map",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "resourceId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/rest.GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.GenerateResponse"}},
                    "400": {"description": "Empty prompt", "schema": {"$ref": "#/definitions/rest.errorBody"}},
                    "502": {"description": "Generation failed", "schema": {"$ref": "#/definitions/rest.errorBody"}},
                    "503": {"description": "Generation temporarily unavailable", "schema": {"$ref": "#/definitions/rest.errorBody"}}
                }
            }
        }
    },
    "definitions": {
        "mindmap.Node": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "data": {"type": "object", "properties": {"label": {"type": "string"}}},
                "position": {"type": "object", "properties": {"x": {"type": "number"}, "y": {"type": "number"}}}
            }
        },
        "mindmap.Edge": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "target": {"type": "string"}
            }
        },
        "mindmap.Content": {
            "type": "object",
            "properties": {
                "nodes": {"type": "array", "items": {"$ref": "#/definitions/mindmap.Node"}},
                "edges": {"type": "array", "items": {"$ref": "#/definitions/mindmap.Edge"}}
            }
        },
        "resource.Resource": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "class_id": {"type": "string"},
                "type": {"type": "string"},
                "name": {"type": "string"},
                "content": {"type": "object"},
                "class_name": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "resource.CreateRequest": {
            "type": "object",
            "required": ["class_id", "user_id", "type", "name"],
            "properties": {
                "class_id": {"type": "string"},
                "user_id": {"type": "string"},
                "type": {"type": "string"},
                "name": {"type": "string"},
                "content": {"type": "object"}
            }
        },
        "resource.UpdateRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "object"},
                "name": {"type": "string"}
            }
        },
        "rest.GenerateRequest": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string", "example": "Photosynthesis: light reactions, Calvin cycle"},
                "existing_nodes": {"type": "array", "items": {"$ref": "#/definitions/mindmap.Node"}},
                "existing_edges": {"type": "array", "items": {"$ref": "#/definitions/mindmap.Edge"}}
            }
        },
        "rest.GenerateResponse": {
            "type": "object",
            "properties": {
                "content": {"$ref": "#/definitions/mindmap.Content"}
            }
        },
        "rest.errorBody": {
            "type": "object",
            "properties": {
                "detail": {"type": "string", "example": "Resource not found"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Hackverse Mind Map API",
	Description:      "Study resources, mind-map persistence and mind-map generation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
