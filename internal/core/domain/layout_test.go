package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/exportmap/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "DefaultStatePath",
			got:      domain.DefaultStatePath(),
			expected: ".exportmap",
		},
		{
			name:     "DefaultStorePath",
			got:      domain.DefaultStorePath(),
			expected: filepath.Join(".exportmap", "store"),
		},
		{
			name:     "DefaultDistPath",
			got:      domain.DefaultDistPath(),
			expected: filepath.Join(".exportmap", "dist"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
