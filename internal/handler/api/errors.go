package api

import (
	"context"
	"errors"

	models "SmartRental/internal/domain/models"
	xhttp "SmartRental/pkg/http"
)

// toAppError maps domain errors onto HTTP errors. Anything unrecognised is a 500.
func toAppError(err error) *xhttp.AppError {
	var (
		appErr  *xhttp.AppError
		missing *models.MissingArtifactError
		unknown *models.UnknownTypeError
		nf      *models.NotFoundError
		invalid *models.InvalidInputError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &missing):
		return xhttp.ServiceUnavailableError(missing.Error()).
			WithParam("artifact", missing.Artifact).
			WithError(err)
	case errors.As(err, &unknown):
		return xhttp.NotFoundError(unknown.Error()).
			WithParam("equipment_type", unknown.Type).
			WithError(err)
	case errors.As(err, &nf):
		return xhttp.NotFoundError(nf.Error()).WithError(err)
	case errors.As(err, &invalid):
		return xhttp.InvalidFieldError(invalid.Field, invalid.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return xhttp.ServiceUnavailableError("request timed out").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
