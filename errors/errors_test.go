package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyClassification(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		isConfig  bool
		isSchema  bool
		isQuality bool
	}{
		{
			name:     "configuration error",
			err:      NewConfigurationError("cutpoints not ascending: %v", []float64{10, 5}),
			isConfig: true,
		},
		{
			name:     "schema error",
			err:      NewSchemaError("column %q missing", "start"),
			isSchema: true,
		},
		{
			name:      "data quality error",
			err:       NewDataQualityError("no valid study windows"),
			isQuality: true,
		},
		{
			name:      "cohort mismatch wraps data quality",
			err:       Wrap(ErrCohortMismatch, "person p042 absent from timeline 2"),
			isQuality: true,
		},
		{
			name:      "empty input wraps data quality",
			err:       ErrEmptyInput,
			isQuality: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.isConfig, IsConfigurationError(tc.err))
			assert.Equal(t, tc.isSchema, IsSchemaError(tc.err))
			assert.Equal(t, tc.isQuality, IsDataQualityError(tc.err))
		})
	}
}

func TestWrappingPreservesClass(t *testing.T) {
	err := NewConfigurationError("unit %q is not a known divisor", "fortnight")
	wrapped := Wrap(err, "validate options")

	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsDataQualityError(wrapped))
	assert.Contains(t, wrapped.Error(), "fortnight")
}

func TestIsCohortMismatch(t *testing.T) {
	assert.True(t, IsCohortMismatch(Wrap(ErrCohortMismatch, "timeline 3")))
	assert.False(t, IsCohortMismatch(ErrEmptyInput))
	assert.False(t, IsCohortMismatch(nil))
}
