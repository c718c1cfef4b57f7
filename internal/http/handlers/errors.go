package handlers

import (
	"context"
	"errors"
	"net/http"

	"padhai/internal/domain"
	"padhai/internal/videogen"
)

// statusClientClosedRequest is logged when the caller went away mid-generation.
const statusClientClosedRequest = 499

type quotaResponse struct {
	errorResponse
	NextSteps   []string `json:"nextSteps"`
	BillingLink string   `json:"billingLink"`
	RecordID    string   `json:"recordId,omitempty"`
}

// generationError writes the response for a failed generation and returns the
// status used.
func (a *App) generationError(w http.ResponseWriter, err error) int {
	var quotaErr *videogen.QuotaExceededError
	var failed *videogen.GenerationFailedError
	switch {
	case errors.As(err, &quotaErr):
		a.json(w, http.StatusTooManyRequests, quotaResponse{
			errorResponse: errorResponse{Error: "Quota exceeded", Message: quotaErr.Error()},
			NextSteps:     quotaErr.NextSteps,
			BillingLink:   videogen.QuotaRemediationURL,
			RecordID:      quotaErr.RecordID,
		})
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrConfiguration):
		a.error(w, http.StatusInternalServerError, "Configuration error", "Gemini API key is not configured")
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidPrompt):
		a.error(w, http.StatusBadRequest, "Invalid input", "Please provide a valid idea as a non-empty string")
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationTimeout):
		a.error(w, http.StatusGatewayTimeout, "Generation timeout", "Video generation did not finish in time, please try again")
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrMissingArtifact):
		a.error(w, http.StatusBadGateway, "Missing artifact", "Video generation finished without a downloadable video")
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStorageWrite):
		a.error(w, http.StatusInternalServerError, "Storage error", "Generated video could not be saved")
		return http.StatusInternalServerError
	case errors.As(err, &failed):
		a.error(w, http.StatusBadGateway, "Video generation failed", failed.Error())
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		a.error(w, http.StatusInternalServerError, "Video generation failed", "An unexpected error occurred")
		return http.StatusInternalServerError
	}
}
