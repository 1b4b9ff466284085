package scratch

import (
	"fmt"
	"os"
)

// Stager materializes a remotely stored file to a local path for the
// duration of one extraction. The real implementation lives with the
// enclosing application's file storage layer; the pipeline only needs
// this pair of operations.
type Stager interface {
	StageLocalCopy(remoteRef string) (string, error)
	Release(localPath string) error
}

// LocalStager is the passthrough implementation for files that are
// already on the local filesystem (CLI use, tests).
type LocalStager struct{}

func (LocalStager) StageLocalCopy(remoteRef string) (string, error) {
	if _, err := os.Stat(remoteRef); err != nil {
		return "", fmt.Errorf("staging %s: %w", remoteRef, err)
	}
	return remoteRef, nil
}

func (LocalStager) Release(string) error {
	return nil
}
