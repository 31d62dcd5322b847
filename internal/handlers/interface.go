package handlers

import (
	"losadmin/internal/storage"
)

// ArtifactSource reads back stored report artifacts.
type ArtifactSource interface {
	Open(name string) (storage.Artifact, bool)
}
