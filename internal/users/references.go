package users

import (
	"context"
	"strings"
)

// AvatarReferences exposes every stored avatar URL so media cleanup never
// removes a file a profile still points at.
type AvatarReferences struct {
	Repo ProfileRepository
}

// MediaReferences implements media.ReferenceSource.
func (a AvatarReferences) MediaReferences(ctx context.Context) ([]string, error) {
	if a.Repo == nil {
		return nil, ErrRepositoryRequired
	}
	profiles, err := a.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		if url := strings.TrimSpace(profile.AvatarURL); url != "" {
			out = append(out, url)
		}
	}
	return out, nil
}
