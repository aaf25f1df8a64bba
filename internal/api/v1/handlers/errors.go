package handlers

import (
	"net/http"
	"strings"
)

// FailureKind is the error taxonomy surfaced to dashboard clients.
type FailureKind string

const (
	FailureCredentialMissing    FailureKind = "CREDENTIAL_MISSING"
	FailureQuotaExceeded        FailureKind = "QUOTA_EXCEEDED"
	FailureAuthRejected         FailureKind = "AUTH_REJECTED"
	FailureResourceNotFound     FailureKind = "RESOURCE_NOT_FOUND"
	FailureOracleResponseBroken FailureKind = "ORACLE_RESPONSE_INVALID"
	FailureUnclassified         FailureKind = "UNCLASSIFIED"
)

// ClassifyFetchError buckets a fetch failure by inspecting its message text.
// The oracle client does not surface structured status codes today, so the
// numeric codes are matched as substrings; revisit if that ever changes.
func ClassifyFetchError(err error) FailureKind {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "credential is not configured"):
		return FailureCredentialMissing
	case strings.Contains(msg, "429") || strings.Contains(lower, "quota") ||
		strings.Contains(lower, "resource_exhausted"):
		return FailureQuotaExceeded
	case strings.Contains(msg, "403") || strings.Contains(lower, "permission_denied"):
		return FailureAuthRejected
	case strings.Contains(msg, "404") || strings.Contains(lower, "not_found"):
		return FailureResourceNotFound
	case strings.Contains(lower, "reply is empty") || strings.Contains(lower, "not valid json"):
		return FailureOracleResponseBroken
	default:
		return FailureUnclassified
	}
}

type failureView struct {
	status int
	title  string
	detail string
}

var failureViews = map[FailureKind]failureView{
	FailureCredentialMissing: {
		status: http.StatusServiceUnavailable,
		title:  "Oracle Credential Missing",
		detail: "no AI oracle credential is configured; set GEMINI_API_KEY and restart the service",
	},
	FailureQuotaExceeded: {
		status: http.StatusTooManyRequests,
		title:  "Oracle Quota Exceeded",
		detail: "the AI oracle is rate limiting requests; try again later",
	},
	FailureAuthRejected: {
		status: http.StatusForbidden,
		title:  "Oracle Rejected Credential",
		detail: "the AI oracle rejected the configured credential; check its scope and origin restrictions",
	},
	FailureResourceNotFound: {
		status: http.StatusBadGateway,
		title:  "Oracle Model Not Found",
		detail: "the configured oracle model or endpoint does not exist; check GEMINI_MODEL and ORACLE_BASE_URL",
	},
	FailureOracleResponseBroken: {
		status: http.StatusBadGateway,
		title:  "Oracle Response Invalid",
		detail: "the AI oracle returned a reply that could not be parsed as weather data",
	},
	FailureUnclassified: {
		status: http.StatusInternalServerError,
		title:  "Weather Fetch Failed",
		detail: "", // raw message is used as the detail
	},
}

func respondWithFetchError(w http.ResponseWriter, err error) {
	kind := ClassifyFetchError(err)
	view := failureViews[kind]

	detail := view.detail
	if detail == "" {
		detail = err.Error()
	} else if kind == FailureQuotaExceeded && strings.Contains(err.Error(), "cooldown") {
		// surface the cooldown countdown when the breaker produced one
		detail = err.Error()
	}

	respondWithJSON(w, view.status, ErrorResponse{
		Errors: []Error{
			{
				Code:   string(kind),
				Detail: detail,
				Status: view.status,
				Title:  view.title,
			},
		},
	})
}
