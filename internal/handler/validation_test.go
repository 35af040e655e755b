package handler

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators_InstallsIsoDate(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators(), "second call reports the first outcome")

	type stay struct {
		Day string `binding:"required,isodate"`
	}

	tests := []struct {
		day   string
		valid bool
	}{
		{"2030-01-15", true},
		{"2030-01-15T10:00:00Z", true},
		{"15/01/2030", false},
		{"2030-02-30", false},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(stay{Day: tt.day})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
