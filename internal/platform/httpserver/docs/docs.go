// Package docs holds the generated OpenAPI document served at /swagger/doc.json.
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
        "/api/rooms": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "List rooms the caller participates in",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RoomListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Create a room with a fresh join code",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CreateRoomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.CreateRoomResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/join": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Join a room by code",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.JoinRoomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RoomResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Fetch a room with its options",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RoomDetailResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["rooms"],
                "summary": "Delete a room with its options and votes",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}/options": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["options"],
                "summary": "Submit an option while the room collects",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.SubmitOptionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.OptionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}/voting/open": {
            "post": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Open voting (creator only)",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RoomResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}/voting/close": {
            "post": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Close voting (creator only)",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RoomResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}/vote": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Cast the caller's single vote",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CastVoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.VoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Read the ranked tally once voting is closed",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ResultsResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/rooms/{room_id}/tiebreaker": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Resolve a tie at random (creator only)",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "room_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/http.TiebreakerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.TiebreakerResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.CastVoteRequest": {
            "type": "object",
            "properties": {
                "option_id": {"type": "string"}
            }
        },
        "http.CreateRoomRequest": {
            "type": "object",
            "properties": {
                "capacity": {"type": "integer"},
                "description": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "http.CreateRoomResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "invite_path": {"type": "string"},
                "room_id": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.JoinRoomRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"}
            }
        },
        "http.OptionResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "option_id": {"type": "string"},
                "room_id": {"type": "string"},
                "submitted_by": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "http.ResultsResponse": {
            "type": "object",
            "properties": {
                "final_option": {"type": "string"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/http.TallyItem"}},
                "tiebreaker_method": {"type": "string"}
            }
        },
        "http.RoomDetailResponse": {
            "type": "object",
            "properties": {
                "options": {"type": "array", "items": {"$ref": "#/definitions/http.OptionResponse"}},
                "room": {"$ref": "#/definitions/http.RoomResponse"}
            }
        },
        "http.RoomListResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.RoomResponse"}}
            }
        },
        "http.RoomResponse": {
            "type": "object",
            "properties": {
                "capacity": {"type": "integer"},
                "code": {"type": "string"},
                "created_at": {"type": "string"},
                "creator_id": {"type": "string"},
                "description": {"type": "string"},
                "final_option": {"type": "string"},
                "participants": {"type": "array", "items": {"type": "string"}},
                "room_id": {"type": "string"},
                "state": {"type": "string"},
                "tiebreaker_method": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "http.SubmitOptionRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "http.TallyItem": {
            "type": "object",
            "properties": {
                "option_id": {"type": "string"},
                "text": {"type": "string"},
                "votes": {"type": "integer"}
            }
        },
        "http.TiebreakerRequest": {
            "type": "object",
            "properties": {
                "method": {"type": "string"}
            }
        },
        "http.TiebreakerResponse": {
            "type": "object",
            "properties": {
                "method": {"type": "string"},
                "winner": {"$ref": "#/definitions/http.TallyItem"}
            }
        },
        "http.VoteResponse": {
            "type": "object",
            "properties": {
                "option_id": {"type": "string"},
                "room_id": {"type": "string"},
                "vote_id": {"type": "string"},
                "voter_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quorum Room Voting API",
	Description:      "Room-based group decision service: join codes, option collection, single-vote tallies and randomized tiebreaks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
