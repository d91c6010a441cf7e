package main

import (
	"testing"

	"github.com/san-kum/foodweb/internal/config"
)

func TestLyapunovHorizon(t *testing.T) {
	tests := []struct {
		name   string
		window int
		want   float64
	}{
		{"window", 1000, 100},
		{"whole run", 0, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Dt = 0.1
			cfg.Duration = 2000
			cfg.Window = tt.window
			if got := lyapunovHorizon(cfg); got != tt.want {
				t.Errorf("horizon = %v, want %v", got, tt.want)
			}
		})
	}
}
