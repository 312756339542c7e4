package domain

// Profile is the role-specific detail record attached to a user account.
// It is a closed set: ArtistProfile for ARTIST users, LabelProfile for LABEL
// users, and NoProfile for everyone else (and for artist/label accounts that
// have not filled in their details yet). Callers switch on the concrete type.
type Profile interface {
	// Kind returns the role the profile belongs to
	Kind() Role

	profile() // sealed
}

// ArtistProfile wraps the artist details of an ARTIST user
type ArtistProfile struct {
	Artist Artist
}

func (ArtistProfile) Kind() Role { return RoleArtist }
func (ArtistProfile) profile() {}

// LabelProfile wraps the label details of a LABEL user
type LabelProfile struct {
	Label Label
}

func (LabelProfile) Kind() Role { return RoleLabel }
func (LabelProfile) profile() {}

// NoProfile marks a user without role-specific details
type NoProfile struct {
	Role Role
}

func (p NoProfile) Kind() Role { return p.Role }
func (NoProfile) profile() {}
