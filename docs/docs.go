// Package docs registers the OpenAPI description of the HTTP API with swag.
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
        "/parties": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "List parties with their derived ideology vectors",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/parties/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get a party and its candidates",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/candidates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "List candidates",
                "parameters": [{"type": "string", "name": "party", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/candidates/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get a candidate",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/timeline": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Electoral calendar sorted by date",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/lessons": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "List civic education lessons",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/lessons/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get a lesson",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/quiz/questions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Select a question subset",
                "parameters": [{"type": "integer", "name": "max", "in": "query"}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/quiz/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Create a quiz session and start it",
                "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/CreateSessionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/SessionState"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/quiz/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Get the state of a quiz session",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionState"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["quiz"],
                "summary": "Drop a quiz session",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/quiz/sessions/{id}/answers": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Answer the current question",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionState"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/quiz/sessions/{id}/reset": {
            "post": {
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Return a session to the intro phase",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionState"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/quiz/sessions/{id}/start": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Start a session that is in the intro phase",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionState"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/affinity/score": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["affinity"],
                "summary": "Score a complete answer sheet without a session",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoreRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/results/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["affinity"],
                "summary": "Re-rank a shared result",
                "parameters": [{"type": "string", "name": "token", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "category": {"type": "string"},
                "http_status": {"type": "integer"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {"max": {"type": "integer"}}
        },
        "AnswerRequest": {
            "type": "object",
            "properties": {"answer": {"type": "string", "enum": ["agree", "neutral", "disagree"]}}
        },
        "ScoreRequest": {
            "type": "object",
            "properties": {
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "question_id": {"type": "string"},
                            "answer": {"type": "string", "enum": ["agree", "neutral", "disagree"]}
                        }
                    }
                }
            }
        },
        "SessionState": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "phase": {"type": "string", "enum": ["intro", "questions", "results"]},
                "progress": {"type": "object"},
                "question": {"type": "object"},
                "outcome": {"type": "object"},
                "share_token": {"type": "string"},
                "share_expires_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Election Affinity API",
	Description:      "Party affinity quiz and election information.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
