package stopper

import (
	"errors"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// logListError logs a listing failure, separating errors reported by
// the service from everything else.
func logListError(logger *zerolog.Logger, region string, err error) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		logger.Error().
			Err(err).
			Str("region", region).
			Str("error_code", apiErr.ErrorCode()).
			Str("error_fault", apiErr.ErrorFault().String()).
			Msg("service error listing instances")
		return
	}

	logger.Error().
		Err(err).
		Str("region", region).
		Msg("unexpected error listing instances")
}

func logStopError(logger *zerolog.Logger, id string, err error) {
	event := logger.Warn().Err(err).Str("instance_id", id)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		event = event.Str("error_code", apiErr.ErrorCode())
	}
	event.Msg("stop failed")
}
