package version

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		pluginVersion string
		expectedCode  errors.ErrorCode
		errorContains string
	}{
		{name: "exact match", engineVersion: "1.2.0", pluginVersion: "1.2.0"},
		{name: "patch differs", engineVersion: "1.2.1", pluginVersion: "1.2.7"},
		{name: "v prefix", engineVersion: "v1.0.0", pluginVersion: "1.0.3"},
		{name: "engine is main", engineVersion: "main", pluginVersion: "3.1.0"},
		{name: "plugin is main", engineVersion: "1.0.0", pluginVersion: "main"},
		{
			name:          "minor differs",
			engineVersion: "1.3.0",
			pluginVersion: "1.2.0",
			expectedCode:  errors.ErrCodeVersionMismatch,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major differs",
			engineVersion: "2.0.0",
			pluginVersion: "1.2.0",
			expectedCode:  errors.ErrCodeVersionMismatch,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid plugin version",
			engineVersion: "1.0.0",
			pluginVersion: "not-a-version",
			expectedCode:  errors.ErrCodeInvalidVersion,
			errorContains: "invalid plugin version",
		},
		{
			name:          "invalid engine version",
			engineVersion: "garbage",
			pluginVersion: "1.0.0",
			expectedCode:  errors.ErrCodeInvalidVersion,
			errorContains: "invalid engine version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.engineVersion, tt.pluginVersion)
			if tt.errorContains == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, errors.HasCode(err, tt.expectedCode))
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
