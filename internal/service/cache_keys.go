package service

import "fmt"

// Cache key prefixes for server resources. Keys are built as
// prefix + id [+ page parameters]; collection keys carry their page
// parameters so each page caches independently and prefix invalidation
// catches all of them at once.
const (
	// PrefixUsers is the prefix for user list pages (users:{page}:{size}:{role})
	PrefixUsers = "users:"

	// PrefixUser is the prefix for single users (user:{id})
	PrefixUser = "user:"

	// PrefixArtists is the prefix for artist list pages
	PrefixArtists = "artists:"

	// PrefixArtist is the prefix for single artists (artist:{id})
	PrefixArtist = "artist:"

	// PrefixArtistByUser is the prefix for artist-profile-of-user lookups
	PrefixArtistByUser = "artist-by-user:"

	// PrefixArtistsByLabel is the prefix for a label's artist roster
	PrefixArtistsByLabel = "artists-by-label:"

	// PrefixLabels is the prefix for label list pages
	PrefixLabels = "labels:"

	// PrefixLabel is the prefix for single labels (label:{id})
	PrefixLabel = "label:"

	// PrefixLabelByUser is the prefix for label-profile-of-user lookups
	PrefixLabelByUser = "label-by-user:"

	// PrefixRelease is the prefix for single releases (release:{id})
	PrefixRelease = "release:"

	// PrefixArtistReleases is the prefix for an artist's release pages
	// (artist-releases:{artistId}:{page}:{size})
	PrefixArtistReleases = "artist-releases:"

	// PrefixReleaseSongs is the prefix for a release's track list
	PrefixReleaseSongs = "release-songs:"

	// PrefixSong is the prefix for single songs (song:{id})
	PrefixSong = "song:"

	// PrefixReleaseCover is the prefix for release cover images
	PrefixReleaseCover = "release-cover:"

	// PrefixReleaseRoyalties is the prefix for a release's royalty pages
	PrefixReleaseRoyalties = "release-royalties:"

	// PrefixPendingReleases is the prefix for the moderation queue pages
	PrefixPendingReleases = "pending-releases:"

	// PrefixModerationHistory is the prefix for a release's decision history
	PrefixModerationHistory = "moderation-history:"

	// PrefixModeratorID is the prefix for moderator-id-of-user lookups
	PrefixModeratorID = "moderator-id:"
)

func keyUsers(page, size int, role string) string {
	return fmt.Sprintf("%s%d:%d:%s", PrefixUsers, page, size, role)
}

func keyUser(id int64) string { return fmt.Sprintf("%s%d", PrefixUser, id) }

func keyArtists(page, size int) string {
	return fmt.Sprintf("%s%d:%d", PrefixArtists, page, size)
}

func keyArtist(id int64) string { return fmt.Sprintf("%s%d", PrefixArtist, id) }

func keyArtistByUser(userID int64) string {
	return fmt.Sprintf("%s%d", PrefixArtistByUser, userID)
}

func keyArtistsByLabel(labelID int64) string {
	return fmt.Sprintf("%s%d", PrefixArtistsByLabel, labelID)
}

func keyLabels(page, size int) string {
	return fmt.Sprintf("%s%d:%d", PrefixLabels, page, size)
}

func keyLabel(id int64) string { return fmt.Sprintf("%s%d", PrefixLabel, id) }

func keyLabelByUser(userID int64) string {
	return fmt.Sprintf("%s%d", PrefixLabelByUser, userID)
}

func keyRelease(id int64) string { return fmt.Sprintf("%s%d", PrefixRelease, id) }

// artistReleasesPrefix narrows PrefixArtistReleases to one artist
func artistReleasesPrefix(artistID int64) string {
	return fmt.Sprintf("%s%d:", PrefixArtistReleases, artistID)
}

func keyArtistReleases(artistID int64, page, size int) string {
	return fmt.Sprintf("%s%d:%d", artistReleasesPrefix(artistID), page, size)
}

func keyReleaseSongs(releaseID int64) string {
	return fmt.Sprintf("%s%d", PrefixReleaseSongs, releaseID)
}

func keySong(id int64) string { return fmt.Sprintf("%s%d", PrefixSong, id) }

func keyReleaseCover(releaseID int64) string {
	return fmt.Sprintf("%s%d", PrefixReleaseCover, releaseID)
}

func keyReleaseRoyalties(releaseID int64, page, size int) string {
	return fmt.Sprintf("%s%d:%d:%d", PrefixReleaseRoyalties, releaseID, page, size)
}

func keyPendingReleases(page, size int) string {
	return fmt.Sprintf("%s%d:%d", PrefixPendingReleases, page, size)
}

func keyModerationHistory(releaseID int64) string {
	return fmt.Sprintf("%s%d", PrefixModerationHistory, releaseID)
}

func keyModeratorID(userID int64) string {
	return fmt.Sprintf("%s%d", PrefixModeratorID, userID)
}
