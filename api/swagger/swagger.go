package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Derslik API",
        "description": "Lesson planner with placement checks, recurring series, calendar views and reminders",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Planner account sessions"},
        {"name": "Lessons", "description": "Lesson CRUD, placement gestures and recurring series"},
        {"name": "Calendar", "description": "Grid views and the ICS feed"},
        {"name": "Settings", "description": "Working hours, preferences and holidays"},
        {"name": "Students", "description": "Student roster"},
        {"name": "Exports", "description": "Schedule downloads"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate the planner account",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "seriesId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Lessons with pagination"}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Create a lesson",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflicting lesson"},
                    "422": {"description": "Slot unavailable"}
                }
            }
        },
        "/lessons/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Get a lesson",
                "responses": {"200": {"description": "Lesson"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Lessons"],
                "summary": "Update a lesson",
                "responses": {"200": {"description": "Updated"}, "409": {"description": "Conflicting lesson"}}
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a lesson",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/lessons/{id}/move": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Move a lesson to another slot",
                "responses": {
                    "200": {"description": "Moved"},
                    "409": {"description": "Conflicting lesson"},
                    "422": {"description": "Slot unavailable"}
                }
            }
        },
        "/lessons/series": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Create a recurring series",
                "responses": {
                    "201": {"description": "Series created, skipped instances listed"},
                    "422": {"description": "Pattern invalid or all instances unavailable"}
                }
            }
        },
        "/lessons/series/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List the lessons of a series",
                "responses": {"200": {"description": "Series instances in order"}}
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a whole series",
                "responses": {"200": {"description": "Deletion count"}, "404": {"description": "Unknown series"}}
            }
        },
        "/placements/resolve": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Resolve a placement gesture",
                "description": "A denial is part of the result payload, not an HTTP error.",
                "responses": {"200": {"description": "Placement result"}}
            }
        },
        "/calendar/view/{granularity}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Calendar grid view",
                "parameters": [
                    {"name": "granularity", "in": "path", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Grid cells with availability"}}
            }
        },
        "/calendar/feed.ics": {
            "get": {
                "tags": ["Calendar"],
                "summary": "ICS calendar feed",
                "produces": ["text/calendar"],
                "responses": {"200": {"description": "iCalendar payload"}}
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get schedule settings",
                "responses": {"200": {"description": "Decoded settings"}}
            }
        },
        "/settings/working-hours": {
            "put": {
                "tags": ["Settings"],
                "summary": "Replace the weekly working hours",
                "responses": {"200": {"description": "Updated"}, "422": {"description": "Inverted day window"}}
            }
        },
        "/settings/preferences": {
            "put": {
                "tags": ["Settings"],
                "summary": "Update planner preferences",
                "responses": {"200": {"description": "Updated"}}
            }
        },
        "/settings/holidays": {
            "get": {
                "tags": ["Settings"],
                "summary": "List custom holidays",
                "responses": {"200": {"description": "Custom holidays"}}
            },
            "post": {
                "tags": ["Settings"],
                "summary": "Add a custom holiday",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/settings/holidays/{id}": {
            "delete": {
                "tags": ["Settings"],
                "summary": "Remove a custom holiday",
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/settings/holidays/national": {
            "get": {
                "tags": ["Settings"],
                "summary": "National holidays for a year",
                "parameters": [{"name": "year", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "Resolved holiday table"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "Students"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create a student",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student",
                "responses": {"200": {"description": "Student"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student",
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/exports/schedule": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File payload"}}
            }
        },
        "/status": {
            "get": {
                "tags": ["Observability"],
                "summary": "System status snapshot",
                "responses": {"200": {"description": "Cache, request and denial counters"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
