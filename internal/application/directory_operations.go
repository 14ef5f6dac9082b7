package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/class-scheduler/internal/persistence"
)

// PutDisplayRecord adds or replaces the display record of a user and drops
// any cached copy, so the next enrichment reads the new name.
func (s *ClassService) PutDisplayRecord(ctx context.Context, record persistence.DisplayRecord) (err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "PutDisplayRecord", "user_id", record.ID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to store display record", err)
			return
		}
		logger.InfoContext(ctx, "display record stored")
	}()

	writer, ok := s.directory.(DirectoryWriter)
	if !ok {
		err = fmt.Errorf("user directory is read-only")
		return
	}

	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	vErr := &ValidationError{}
	if record.ID == "" {
		vErr.add("id", "is required")
	}
	if record.Name == "" {
		vErr.add("name", "is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = writer.PutDisplayRecord(ctx, record); err != nil {
		err = mapRepoError(err)
		return
	}
	s.names.Forget(record.ID)
	return
}
