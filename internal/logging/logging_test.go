package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "console info", level: "info", format: "console"},
		{name: "json debug", level: "debug", format: "json"},
		{name: "warn", level: "warn", format: "console"},
		{name: "error", level: "error", format: "json"},
		{name: "bad level", level: "loud", format: "console", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Error("New() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if logger == nil {
				t.Fatal("New() returned nil logger")
			}
			logger.Debug("probe")
		})
	}
}
