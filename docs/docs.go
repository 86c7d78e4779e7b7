// Package docs holds the OpenAPI 2.0 document served at /swagger/*any. It
// follows the godoc annotations on the handlers; `go generate ./cmd/cuentos`
// rebuilds it with swag init.
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
        "/identity": {
            "get": {
                "description": "Returns the anonymous identity derived from the request signals (or the well-formed X-Voter-Fingerprint header).",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Meta"
                ],
                "summary": "Get my identity",
                "operationId": "getIdentity",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.IdentityResponse"
                        }
                    }
                }
            }
        },
        "/meta": {
            "get": {
                "description": "Lists categories and reaction types with display labels and emoji, plus story limits.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Meta"
                ],
                "summary": "Catalogs",
                "operationId": "getMeta",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.MetaResponse"
                        }
                    }
                }
            }
        },
        "/stories": {
            "get": {
                "description": "Returns at most one page of stories. Supports weak ETag via If-None-Match and may return 304.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Stories"
                ],
                "summary": "List stories",
                "operationId": "listStories",
                "parameters": [
                    {
                        "enum": [
                            "red_flags",
                            "confesiones",
                            "excusas",
                            "aprendizajes"
                        ],
                        "type": "string",
                        "description": "Category filter (empty = all)",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "enum": [
                            "recent",
                            "popular"
                        ],
                        "type": "string",
                        "default": "recent",
                        "description": "Sort order",
                        "name": "sort",
                        "in": "query"
                    },
                    {
                        "maximum": 50,
                        "minimum": 1,
                        "type": "integer",
                        "default": 50,
                        "description": "Max items (capped at page size)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Return 304 if ETag matches",
                        "name": "If-None-Match",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ListStoriesResponse"
                        },
                        "headers": {
                            "ETag": {
                                "type": "string",
                                "description": "Weak ETag for current result"
                            }
                        }
                    },
                    "304": {
                        "description": "Not Modified",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "Unknown category or sort",
                        "schema": {
                            "$ref": "#/definitions/handlers.ValidationErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "Creates an anonymous story. With an Idempotency-Key header, a retry returns the originally created story with 200 and Idempotent-Replayed: true.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Stories"
                ],
                "summary": "Post a story",
                "operationId": "createStory",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Client-generated key for safe retries",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "description": "Story payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateStoryRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Replayed",
                        "schema": {
                            "$ref": "#/definitions/domain.Story"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.Story"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/handlers.ValidationErrorResponse"
                        }
                    },
                    "429": {
                        "description": "Rate limited",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/stories/{id}/reaction": {
            "get": {
                "description": "Returns the caller's active reaction on a story, or null.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Reactions"
                ],
                "summary": "Get my reaction",
                "operationId": "getReaction",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Story ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Client-computed identity (64 hex chars)",
                        "name": "X-Voter-Fingerprint",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ReactionStateResponse"
                        }
                    },
                    "404": {
                        "description": "Story not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/stories/{id}/reactions": {
            "post": {
                "description": "Tapping the active reaction clears it, tapping another one switches to it, tapping with no reaction sets it.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Reactions"
                ],
                "summary": "Tap a reaction",
                "operationId": "toggleReaction",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Story ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Client-computed identity (64 hex chars)",
                        "name": "X-Voter-Fingerprint",
                        "in": "header"
                    },
                    {
                        "description": "Reaction tap",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ToggleReactionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ToggleReactionResponse"
                        }
                    },
                    "400": {
                        "description": "Unknown reaction type",
                        "schema": {
                            "$ref": "#/definitions/handlers.ValidationErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Story not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Another tap is in flight",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Store failure; state rolled back, retry",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.Category": {
            "type": "string",
            "enum": [
                "red_flags",
                "confesiones",
                "excusas",
                "aprendizajes"
            ],
            "x-enum-varnames": [
                "CategoryRedFlags",
                "CategoryConfesiones",
                "CategoryExcusas",
                "CategoryAprendizajes"
            ]
        },
        "domain.Counts": {
            "type": "object",
            "properties": {
                "clown": {
                    "type": "integer"
                },
                "red_flag": {
                    "type": "integer"
                },
                "wow": {
                    "type": "integer"
                }
            }
        },
        "domain.ReactionType": {
            "type": "string",
            "enum": [
                "red_flag",
                "clown",
                "wow"
            ],
            "x-enum-varnames": [
                "ReactionRedFlag",
                "ReactionClown",
                "ReactionWow"
            ]
        },
        "domain.Story": {
            "type": "object",
            "properties": {
                "category": {
                    "$ref": "#/definitions/domain.Category"
                },
                "content": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "reactions_clown": {
                    "type": "integer"
                },
                "reactions_red_flag": {
                    "type": "integer"
                },
                "reactions_wow": {
                    "type": "integer"
                },
                "total_reactions": {
                    "type": "integer"
                }
            }
        },
        "handlers.CatalogEntry": {
            "type": "object",
            "properties": {
                "emoji": {
                    "type": "string",
                    "example": "🚩"
                },
                "label": {
                    "type": "string",
                    "example": "Red Flags"
                },
                "value": {
                    "type": "string",
                    "example": "red_flags"
                }
            }
        },
        "handlers.CreateStoryRequest": {
            "type": "object",
            "required": [
                "category",
                "content"
            ],
            "properties": {
                "category": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.Category"
                        }
                    ],
                    "example": "confesiones"
                },
                "content": {
                    "description": "Content is trimmed before storage; 10 to 1000 characters.",
                    "type": "string",
                    "example": "Le dije que estaba en el tráfico y seguía en la ducha."
                }
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "not_found",
                    "description": "Stable, machine-readable code (see errors.go constants)"
                },
                "message": {
                    "type": "string",
                    "example": "story not found",
                    "description": "Human-readable message (safe to show to users)"
                },
                "request_id": {
                    "type": "string",
                    "example": "123e4567-e89b-12d3-a456-426614174000",
                    "description": "Correlates server logs and client errors"
                }
            }
        },
        "handlers.IdentityResponse": {
            "type": "object",
            "properties": {
                "identity": {
                    "type": "string",
                    "example": "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
                }
            }
        },
        "handlers.ListStoriesResponse": {
            "type": "object",
            "properties": {
                "stories": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Story"
                    }
                }
            }
        },
        "handlers.MetaResponse": {
            "type": "object",
            "properties": {
                "categories": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handlers.CatalogEntry"
                    }
                },
                "max_chars": {
                    "type": "integer"
                },
                "min_chars": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "reactions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handlers.CatalogEntry"
                    }
                }
            }
        },
        "handlers.ReactionStateResponse": {
            "type": "object",
            "properties": {
                "active": {
                    "$ref": "#/definitions/domain.ReactionType"
                },
                "story_id": {
                    "type": "string"
                }
            }
        },
        "handlers.ToggleReactionRequest": {
            "type": "object",
            "required": [
                "type"
            ],
            "properties": {
                "type": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.ReactionType"
                        }
                    ],
                    "example": "wow"
                }
            }
        },
        "handlers.ToggleReactionResponse": {
            "type": "object",
            "properties": {
                "active": {
                    "$ref": "#/definitions/domain.ReactionType"
                },
                "counts": {
                    "$ref": "#/definitions/domain.Counts"
                },
                "story": {
                    "description": "Story is re-read after the change so feeds can refresh in place.",
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.Story"
                        }
                    ]
                },
                "story_id": {
                    "type": "string"
                }
            }
        },
        "handlers.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "chars_left": {
                    "type": "integer",
                    "example": -12,
                    "description": "CharsLeft is max length minus the untrimmed length; negative when the\ncontent is too long. Only set for content errors."
                },
                "code": {
                    "description": "Stable, machine-readable code (see errors.go constants)",
                    "type": "string",
                    "example": "not_found"
                },
                "field": {
                    "type": "string",
                    "example": "content",
                    "description": "Field is the rejected input field."
                },
                "message": {
                    "description": "Human-readable message (safe to show to users)",
                    "type": "string",
                    "example": "story not found"
                },
                "request_id": {
                    "description": "Correlates server logs and client errors",
                    "type": "string",
                    "example": "123e4567-e89b-12d3-a456-426614174000"
                }
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
	Title:            "Cuentos API",
	Description:      "Anonymous stories with one reaction per visitor.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
