package videogen

import (
	"fmt"
	"strings"

	"padhai/internal/domain"
)

// extractArtifact returns the first generated video of a finished job.
func extractArtifact(job *Job) (VideoRef, error) {
	if job == nil || !job.Done {
		return VideoRef{}, fmt.Errorf("%w: operation not finished", domain.ErrMissingArtifact)
	}
	if job.Result == nil || len(job.Result.Videos) == 0 {
		return VideoRef{}, fmt.Errorf("%w: no video in operation %q", domain.ErrMissingArtifact, job.OperationName)
	}
	ref := job.Result.Videos[0]
	if strings.TrimSpace(ref.URI) == "" && len(ref.Data) == 0 {
		if ref.InlineErr != nil {
			return VideoRef{}, fmt.Errorf("%w: inline video in operation %q is unreadable: %v", domain.ErrMissingArtifact, job.OperationName, ref.InlineErr)
		}
		return VideoRef{}, fmt.Errorf("%w: video reference in operation %q is empty", domain.ErrMissingArtifact, job.OperationName)
	}
	return ref, nil
}
