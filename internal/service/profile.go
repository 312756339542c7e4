package service

import (
	"context"

	"github.com/romboooo/distr-is/internal/domain"
)

// ResolveProfile fetches the role-specific details behind a user account.
// Accounts whose role carries no profile, and artist/label accounts that
// have not created one yet, resolve to NoProfile.
func ResolveProfile(ctx context.Context, user *domain.User, artists *ArtistService, labels *LabelService) (domain.Profile, error) {
	switch user.Role {
	case domain.RoleArtist:
		artist, err := artists.GetArtistByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if artist == nil {
			return domain.NoProfile{Role: user.Role}, nil
		}
		return domain.ArtistProfile{Artist: *artist}, nil
	case domain.RoleLabel:
		label, err := labels.GetLabelByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if label == nil {
			return domain.NoProfile{Role: user.Role}, nil
		}
		return domain.LabelProfile{Label: *label}, nil
	default:
		return domain.NoProfile{Role: user.Role}, nil
	}
}
