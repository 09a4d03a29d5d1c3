// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/exportmap/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd and waits for it to exit.
	//
	// Streamed commands share a pseudo terminal, so everything arrives on stdout.
	// It returns an error carrying the exit code if the process fails.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error
}
