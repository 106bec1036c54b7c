package request

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type slotBody struct {
	Day  string  `binding:"required,weekday"`
	Time string  `binding:"required,timerange"`
	Opt  *string `binding:"omitempty,weekday"`
}

func TestRegisterValidators(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	assert.NoError(t, binding.Validator.ValidateStruct(&slotBody{Day: "Monday", Time: "09:00-10:00"}))
	assert.Error(t, binding.Validator.ValidateStruct(&slotBody{Day: "Moonday", Time: "09:00-10:00"}))
	assert.Error(t, binding.Validator.ValidateStruct(&slotBody{Day: "monday", Time: "10:00-09:00"}))

	bad := "someday"
	assert.Error(t, binding.Validator.ValidateStruct(&slotBody{Day: "monday", Time: "09:00-10:00", Opt: &bad}))
}

func TestListParams_Normalize(t *testing.T) {
	p := ListParams{}
	p.Normalize()
	assert.Equal(t, ListParams{Page: 1, Limit: 10}, p)
	assert.Equal(t, 0, p.Offset())

	p = ListParams{Page: 3, Limit: 500}
	p.Normalize()
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())
}
