package handler

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/platform/middleware"
	"github.com/stayloop/service-booking/internal/platform/response"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// isoDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
var isoDate validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := bookingDomain.ParseDate(s)
	return err == nil
}

// RegisterValidators installs the custom binding rules on gin's validator.
// Repeated calls return the outcome of the first.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("isodate", isoDate); err != nil {
			registerErr = fmt.Errorf("failed to register isodate rule: %w", err)
		}
	})
	return registerErr
}

// pathID parses a positive integer path parameter. It writes a 400 and returns
// false when the value is not usable.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated user's ID or writes a 401.
func callerID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
	}
	return userID, ok
}

// statusQuery parses the optional status query parameter. An absent value yields nil.
func statusQuery(c *gin.Context) (*bookingDomain.BookingStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status, err := bookingDomain.ParseBookingStatus(raw)
	if err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}
	return &status, true
}
