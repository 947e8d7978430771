package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ReportID string  `json:"reportId" validate:"required,max=8"`
	Lat      float64 `json:"lat" validate:"latitude"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		req        sampleRequest
		wantFields map[string]string
	}{
		{
			name: "valid",
			req:  sampleRequest{ReportID: "r-1", Lat: 12.9},
		},
		{
			name:       "missing id",
			req:        sampleRequest{Lat: 12.9},
			wantFields: map[string]string{"reportId": "reportId is required"},
		},
		{
			name: "id too long and bad latitude",
			req:  sampleRequest{ReportID: "abcdefghij", Lat: 120},
			wantFields: map[string]string{
				"reportId": "reportId must be at most 8 characters long",
				"lat":      "lat must be a valid latitude (-90 to 90)",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.req)
			if tc.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			valErr, ok := err.(*ValidationError)
			require.True(t, ok)
			assert.True(t, valErr.HasErrors())
			assert.Equal(t, tc.wantFields, valErr.Errors)
		})
	}
}

func TestValidationError_ErrorIsSorted(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "a: first; b: second", err.Error())
}
