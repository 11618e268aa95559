package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClinEd API",
        "description": "Clinical education administration API: cohorts, rotation templates, assignments and rotation generation",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Assignments", "description": "Cohort rotation assignment lifecycle and generation"},
        {"name": "Rotations", "description": "Generated student rotations"},
        {"name": "Cohorts", "description": "Cohorts and rosters"},
        {"name": "Templates", "description": "Rotation template catalog"},
        {"name": "Sites", "description": "Clinical site directory"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cohort-rotations": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List cohort rotation assignments",
                "parameters": [
                    {"name": "cohortId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["DRAFT", "PUBLISHED", "COMPLETED", "CANCELLED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/cohort-rotations/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Update assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Assignment no longer editable"}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete assignment without generated rotations",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Assignment has generated rotations"}
                }
            }
        },
        "/cohort-rotations/generate": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Generate rotations for an assignment",
                "description": "Idempotent fan-out: already placed students are skipped, per-student failures are reported without failing the run.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRotationsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generation summary", "schema": {"$ref": "#/definitions/GenerationSummary"}},
                    "404": {"description": "Assignment not found"},
                    "409": {"description": "Assignment is completed or cancelled"}
                }
            }
        },
        "/cohort-rotations/{id}/complete": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Mark published assignment as completed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Transition not allowed"}
                }
            }
        },
        "/cohort-rotations/{id}/cancel": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Cancel draft or published assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Transition not allowed"}
                }
            }
        },
        "/cohort-rotations/{id}/rotations": {
            "get": {
                "tags": ["Rotations"],
                "summary": "List rotations generated from one assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cohort-rotations/{id}/export": {
            "get": {
                "tags": ["Rotations"],
                "summary": "Export rotation schedule as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/rotations": {
            "get": {
                "tags": ["Rotations"],
                "summary": "List generated rotations",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "assignmentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs": {
            "get": {
                "tags": ["Programs"],
                "summary": "List active programs for a school",
                "parameters": [
                    {"name": "schoolId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{id}": {
            "get": {
                "tags": ["Programs"],
                "summary": "Get program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cohorts": {
            "get": {
                "tags": ["Cohorts"],
                "summary": "List cohorts",
                "parameters": [
                    {"name": "programId", "in": "query", "type": "string"},
                    {"name": "graduationYear", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Cohorts"],
                "summary": "Create cohort",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCohortRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cohorts/{id}": {
            "get": {
                "tags": ["Cohorts"],
                "summary": "Get cohort",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Cohorts"],
                "summary": "Update cohort",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCohortRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cohorts/{id}/roster": {
            "get": {
                "tags": ["Cohorts"],
                "summary": "Get cohort roster in enrollment order",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rotation-templates": {
            "get": {
                "tags": ["Templates"],
                "summary": "List rotation templates for a program",
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Templates"],
                "summary": "Create rotation template",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTemplateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rotation-templates/{id}": {
            "get": {
                "tags": ["Templates"],
                "summary": "Get rotation template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Templates"],
                "summary": "Update rotation template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTemplateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clinical-sites": {
            "get": {
                "tags": ["Sites"],
                "summary": "List active clinical sites",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sites"],
                "summary": "Register clinical site",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSiteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clinical-sites/{id}": {
            "get": {
                "tags": ["Sites"],
                "summary": "Get clinical site",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Sites"],
                "summary": "Update clinical site",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSiteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "cohortId": {"type": "string"},
                "rotationTemplateId": {"type": "string"},
                "clinicalSiteId": {"type": "string"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "requiredHours": {"type": "integer"},
                "maxStudents": {"type": "integer"},
                "notes": {"type": "string"}
            },
            "required": ["cohortId", "rotationTemplateId", "startDate", "endDate", "requiredHours"]
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "clinicalSiteId": {"type": "string"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "requiredHours": {"type": "integer"},
                "maxStudents": {"type": "integer"},
                "notes": {"type": "string"}
            }
        },
        "GenerateRotationsRequest": {
            "type": "object",
            "properties": {
                "cohortRotationAssignmentId": {"type": "string"}
            },
            "required": ["cohortRotationAssignmentId"]
        },
        "GenerationSummary": {
            "type": "object",
            "properties": {
                "created": {"type": "integer"},
                "skipped": {"type": "integer"},
                "errors": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GenerationError"}
                }
            }
        },
        "GenerationError": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "CreateCohortRequest": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"},
                "name": {"type": "string"},
                "graduationYear": {"type": "integer"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "capacity": {"type": "integer"}
            },
            "required": ["programId", "name", "startDate", "endDate", "capacity"]
        },
        "UpdateCohortRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "graduationYear": {"type": "integer"},
                "capacity": {"type": "integer"}
            }
        },
        "CreateTemplateRequest": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"},
                "specialty": {"type": "string"},
                "defaultDurationWeeks": {"type": "integer"},
                "defaultRequiredHours": {"type": "integer"},
                "defaultClinicalSiteId": {"type": "string"}
            },
            "required": ["programId", "specialty", "defaultDurationWeeks", "defaultRequiredHours"]
        },
        "UpdateTemplateRequest": {
            "type": "object",
            "properties": {
                "specialty": {"type": "string"},
                "defaultDurationWeeks": {"type": "integer"},
                "defaultRequiredHours": {"type": "integer"},
                "defaultClinicalSiteId": {"type": "string"}
            }
        },
        "CreateSiteRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "capacity": {"type": "integer"}
            },
            "required": ["name", "capacity"]
        },
        "UpdateSiteRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "capacity": {"type": "integer"},
                "active": {"type": "boolean"}
            }
        },
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
