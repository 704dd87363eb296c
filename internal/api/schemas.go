package api

import "proofdeck/internal/validation"

// Request schemas. Compiled once at package load; a malformed document is a
// programming error and panics on startup.

const uuidPattern = `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`

var paginationSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"page":  {"type": "integer", "minimum": 1, "default": 1},
		"limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 20}
	}
}`)

var albumParamsSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"albumID": {"type": "string", "pattern": "` + uuidPattern + `"}
	},
	"required": ["albumID"]
}`).WithMessages(map[string]string{
	"albumID": "albumID must be a UUID",
})

var photoParamsSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"albumID": {"type": "string", "pattern": "` + uuidPattern + `"},
		"photoID": {"type": "string", "pattern": "` + uuidPattern + `"}
	},
	"required": ["albumID", "photoID"]
}`).WithMessages(map[string]string{
	"albumID": "albumID must be a UUID",
	"photoID": "photoID must be a UUID",
})

var sharePhotoParamsSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"photoID": {"type": "string", "pattern": "` + uuidPattern + `"}
	},
	"required": ["photoID"]
}`).WithMessages(map[string]string{
	"photoID": "photoID must be a UUID",
})

var shareTokenParamsSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"token": {"type": "string", "minLength": 16, "maxLength": 128}
	},
	"required": ["token"]
}`).WithMessages(map[string]string{
	"token": "token is not a valid share token",
})

var createAlbumSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"title":            {"type": "string", "minLength": 1, "maxLength": 255},
		"description":      {"type": ["string", "null"], "maxLength": 2000},
		"event_start_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"event_end_date":   {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
	},
	"required": ["title"],
	"additionalProperties": false
}`).WithMessages(map[string]string{
	"event_start_date": "event_start_date must be a date in YYYY-MM-DD form",
	"event_end_date":   "event_end_date must be a date in YYYY-MM-DD form",
})

var updateAlbumSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"title":            {"type": "string", "minLength": 1, "maxLength": 255},
		"description":      {"type": ["string", "null"], "maxLength": 2000},
		"event_start_date": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"event_end_date":   {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
	},
	"minProperties": 1,
	"additionalProperties": false
}`).WithMessages(map[string]string{
	"minProperties":    "at least one field must be provided",
	"event_start_date": "event_start_date must be a date in YYYY-MM-DD form",
	"event_end_date":   "event_end_date must be a date in YYYY-MM-DD form",
})

var uploadRequestSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"filename":     {"type": "string", "minLength": 1, "maxLength": 255},
		"content_type": {"type": "string", "enum": ["image/jpeg", "image/png", "image/webp", "image/gif", "image/heic"]},
		"size_bytes":   {"type": "integer", "minimum": 1, "maximum": 104857600}
	},
	"required": ["filename", "content_type"],
	"additionalProperties": false
}`).WithMessages(map[string]string{
	"content_type": "content_type must be an image MIME type",
	"size_bytes":   "size_bytes must be between 1 byte and 100 MiB",
})

var confirmUploadSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"size_bytes": {"type": "integer", "minimum": 1, "maximum": 104857600}
	},
	"additionalProperties": false
}`).WithMessages(map[string]string{
	"size_bytes": "size_bytes must be between 1 byte and 100 MiB",
})

var proofSchema = validation.MustCompileJSON(`{
	"type": "object",
	"properties": {
		"status": {"type": "string", "enum": ["unreviewed", "approved", "rejected"]},
		"note":   {"type": "string", "maxLength": 1000, "default": ""}
	},
	"required": ["status"],
	"additionalProperties": false
}`).WithMessages(map[string]string{
	"status": "status must be one of unreviewed, approved, rejected",
})

// The batch proof body is validated in two stages: the shape schema checks
// structure and element types, then the limits schema enforces the batch cap
// separately so its message can differ from ordinary array errors.
var proofBatchPipeline = validation.MustPipeline(
	validation.MustCompileJSON(`{
		"type": "object",
		"properties": {
			"photo_ids": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "pattern": "`+uuidPattern+`"}
			},
			"status": {"type": "string", "enum": ["unreviewed", "approved", "rejected"]},
			"note":   {"type": "string", "maxLength": 1000, "default": ""}
		},
		"required": ["photo_ids", "status"],
		"additionalProperties": false
	}`).WithMessages(map[string]string{
		"status":    "status must be one of unreviewed, approved, rejected",
		"photo_ids": "photo_ids must be a non-empty array of photo UUIDs",
	}),
	validation.MustCompileJSON(`{
		"type": "object",
		"properties": {
			"photo_ids": {"type": "array", "maxItems": 100}
		}
	}`).WithMessages(map[string]string{
		"photo_ids": "photo_ids accepts at most 100 photos per request",
	}),
)
