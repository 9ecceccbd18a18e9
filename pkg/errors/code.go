package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 12000-12999: Catalog module errors (problems, contests, difficulty models)
// 13000-13999: User data errors (submissions, ratings, preferences)
// 17000-17999: Browse & Recommendation errors
// 18000-18999: Sync & Upstream errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102
	TransactionFailed   ErrorCode = 10103

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheMiss      ErrorCode = 10201
	CacheSetFailed ErrorCode = 10202

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Catalog Module Errors (12000-12999) ==========

	// Problems (12000-12099)
	ProblemNotFound    ErrorCode = 12000
	ProblemListFailed  ErrorCode = 12001
	ProblemStoreFailed ErrorCode = 12002

	// Contests (12100-12199)
	ContestNotFound    ErrorCode = 12100
	ContestStoreFailed ErrorCode = 12101

	// Difficulty models (12200-12299)
	ModelNotFound    ErrorCode = 12200
	ModelStoreFailed ErrorCode = 12201

	// ========== User Data Errors (13000-13999) ==========

	// Submissions (13000-13099)
	SubmissionQueryFailed ErrorCode = 13000
	SubmissionStoreFailed ErrorCode = 13001

	// Ratings (13100-13199)
	RatingNotFound    ErrorCode = 13100
	RatingStoreFailed ErrorCode = 13101

	// Preferences (13200-13299)
	PreferenceNotFound   ErrorCode = 13200
	PreferenceSaveFailed ErrorCode = 13201
	PreferenceForbidden  ErrorCode = 13202

	// ========== Browse & Recommendation Errors (17000-17999) ==========

	// Listing (17000-17099)
	InvalidListOption ErrorCode = 17000
	ListingFailed     ErrorCode = 17001

	// Recommendation (17100-17199)
	InvalidRecommendOption ErrorCode = 17100
	InvalidExcludeOption   ErrorCode = 17101
	RecommendFailed        ErrorCode = 17102

	// ========== Sync & Upstream Errors (18000-18999) ==========

	// Upstream fetch (18000-18099)
	UpstreamUnavailable ErrorCode = 18000
	UpstreamBadPayload  ErrorCode = 18001

	// Sync pipeline (18100-18199)
	SyncInProgress     ErrorCode = 18100
	SyncFailed         ErrorCode = 18101
	SnapshotFailed     ErrorCode = 18102
	RefreshEventFailed ErrorCode = 18103
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	RecordAlreadyExists: "Record already exists",
	TransactionFailed:   "Database transaction failed",

	// Cache
	CacheError:     "Cache operation failed",
	CacheMiss:      "Cache miss",
	CacheSetFailed: "Failed to set cache",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Catalog
	ProblemNotFound:    "Problem not found",
	ProblemListFailed:  "Failed to list problems",
	ProblemStoreFailed: "Failed to store problems",
	ContestNotFound:    "Contest not found",
	ContestStoreFailed: "Failed to store contests",
	ModelNotFound:      "Difficulty model not found",
	ModelStoreFailed:   "Failed to store difficulty models",

	// User data
	SubmissionQueryFailed: "Failed to query submissions",
	SubmissionStoreFailed: "Failed to store submissions",
	RatingNotFound:        "User rating not found",
	RatingStoreFailed:     "Failed to store user ratings",
	PreferenceNotFound:    "Preferences not found",
	PreferenceSaveFailed:  "Failed to save preferences",
	PreferenceForbidden:   "Cannot modify another user's preferences",

	// Browse & Recommendation
	InvalidListOption:      "Invalid listing option",
	ListingFailed:          "Failed to build problem listing",
	InvalidRecommendOption: "Invalid recommendation band",
	InvalidExcludeOption:   "Invalid exclusion option",
	RecommendFailed:        "Failed to build recommendations",

	// Sync & Upstream
	UpstreamUnavailable: "Upstream API is unavailable",
	UpstreamBadPayload:  "Upstream API returned a malformed payload",
	SyncInProgress:      "A sync run is already in progress",
	SyncFailed:          "Catalog sync failed",
	SnapshotFailed:      "Failed to archive catalog snapshot",
	RefreshEventFailed:  "Failed to publish refresh event",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == Unauthorized:
		return 401
	case c == Forbidden, c == PreferenceForbidden:
		return 403
	case c == NotFound, c == ProblemNotFound, c == ContestNotFound,
		c == ModelNotFound, c == RatingNotFound, c == PreferenceNotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == SyncInProgress:
		return 409
	case c == ServiceUnavailable, c == UpstreamUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == InvalidListOption,
		c == InvalidRecommendOption, c == InvalidExcludeOption:
		return 400
	default:
		return 500
	}
}
