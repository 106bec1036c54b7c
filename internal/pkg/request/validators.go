package request

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/turf-booking-backend/internal/schedule"
)

var registerOnce sync.Once

// RegisterValidators adds the "weekday" and "timerange" binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, err := schedule.ParseWeekday(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("timerange", func(fl validator.FieldLevel) bool {
			_, err := schedule.ParseTimeRange(fl.Field().String())
			return err == nil
		})
	})
}
