package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "solarsizing/internal/errors"
)

// bindAndValidate decodes the body into req and runs struct validation.
// Malformed bodies and failed rules both surface as validation errors.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ToHTTPError(apperrors.NewValidationError("body", "Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return apperrors.ToHTTPError(err)
	}
	return nil
}

func projectID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ToHTTPError(apperrors.NewValidationError("id", "id must be a positive integer"))
	}
	return uint(id), nil
}
