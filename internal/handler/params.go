package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

// dateParam parses the required "date" query parameter (YYYY-MM-DD).
func dateParam(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return date, nil
}

// granularityParam parses the optional "granularity" query parameter, e.g.
// "30m". Zero means "use the service default".
func granularityParam(c *gin.Context) (time.Duration, error) {
	raw := c.Query("granularity")
	if raw == "" {
		return 0, nil
	}
	granularity, err := time.ParseDuration(raw)
	if err != nil || granularity <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "granularity must be a positive duration")
	}
	return granularity, nil
}
