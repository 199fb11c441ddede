// Package docs registers the OpenAPI document of the JSON API with swag.
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
        "/analytics": {
            "get": {
                "description": "Average rating (two decimals) and rating count per movie, highest average first",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Rating analytics",
                "responses": {
                    "200": {
                        "description": "Chart series",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.StandardResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.ChartData"}}}
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"$ref": "#/definitions/utils.StandardResponse"}
                    }
                }
            }
        },
        "/movies": {
            "get": {
                "description": "List movies sorted by title, optionally filtered by a case-insensitive title substring",
                "produces": ["application/json"],
                "tags": ["movies"],
                "summary": "List movies",
                "parameters": [
                    {"type": "string", "description": "Title contains", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "List of movies",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.StandardResponse"},
                                {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/models.Movie"}}}}
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"$ref": "#/definitions/utils.StandardResponse"}
                    }
                }
            }
        },
        "/movies/{id}": {
            "get": {
                "description": "Get a single movie and its ratings, newest first",
                "produces": ["application/json"],
                "tags": ["movies"],
                "summary": "Get movie by ID",
                "parameters": [
                    {"type": "string", "description": "Movie ID (24 hex characters)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "Movie details",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.StandardResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handlers.MovieWithRatings"}}}
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid movie ID",
                        "schema": {"$ref": "#/definitions/utils.StandardResponse"}
                    },
                    "404": {
                        "description": "Movie not found",
                        "schema": {"$ref": "#/definitions/utils.StandardResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.MovieWithRatings": {
            "type": "object",
            "properties": {
                "movie": {"$ref": "#/definitions/models.Movie"},
                "ratings": {"type": "array", "items": {"$ref": "#/definitions/models.Rating"}}
            }
        },
        "models.ChartData": {
            "type": "object",
            "properties": {
                "avg_values": {"type": "array", "items": {"type": "number"}},
                "count_values": {"type": "array", "items": {"type": "integer"}},
                "labels": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Movie": {
            "type": "object",
            "properties": {
                "genre": {"type": "string", "example": "Sci-Fi"},
                "id": {"type": "string"},
                "overview": {"type": "string"},
                "poster_url": {"type": "string"},
                "release_year": {"type": "integer", "example": 2010},
                "runtime": {"type": "integer", "example": 148},
                "title": {"type": "string", "example": "Inception"}
            }
        },
        "models.Rating": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "movie_id": {"type": "string"},
                "rating": {"type": "number", "example": 9.5},
                "timestamp": {"type": "string"},
                "user_id": {"type": "string", "example": "alice"}
            }
        },
        "utils.StandardResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Movie Ratings API",
	Description:      "Read-only JSON access to movies, their ratings and rating analytics",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
