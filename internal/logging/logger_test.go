package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-management-api/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{name: "json info", cfg: config.LogConfig{Level: "info", Format: "json"}},
		{name: "console debug", cfg: config.LogConfig{Level: "DEBUG", Format: "console"}},
		{name: "bad level", cfg: config.LogConfig{Level: "loud", Format: "json"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestStdLog(t *testing.T) {
	std := StdLog(zap.NewNop(), "gorm")
	require.NotNil(t, std)
	std.Printf("select %d", 1)
}
