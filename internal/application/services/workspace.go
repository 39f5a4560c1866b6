// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/monoforge/monoforge/internal/application/dto"
	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
)

// loadWorkspace loads the workspace with property overrides.
// Loader errors that are not already typed become configuration errors.
func loadWorkspace(ctx context.Context, loader ports.WorkspaceLoader, opts dto.WorkspaceOptions) (*entities.Workspace, error) {
	ws, err := loader.LoadWorkspace(ctx, opts.WorkspacePath, opts.Properties)
	if err != nil {
		var cfgErr *apperrors.ConfigurationError
		var valErr *apperrors.ValidationError
		if errors.As(err, &cfgErr) || errors.As(err, &valErr) {
			return nil, err
		}
		return nil, apperrors.NewConfigurationError("workspace", "failed to load workspace", err)
	}
	return ws, nil
}

func responseMetadata(meta dto.RequestMetadata, start time.Time) dto.ResponseMetadata {
	return dto.ResponseMetadata{
		RequestID:   meta.RequestID,
		ProcessedAt: time.Now(),
		Duration:    time.Since(start),
	}
}
