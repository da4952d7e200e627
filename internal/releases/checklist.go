package releases

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
)

const (
	// minReleaseLead is the shortest allowed gap between submission and the
	// scheduled release date: five full days.
	minReleaseLead = 120 * time.Hour

	// territoryWorldwide marks a release licensed everywhere.
	territoryWorldwide = "WW"
)

// splitTolerance bounds how far the release's split sum may drift from 100.
// Sums off by the full tolerance (99.99 or 100.01) are rejected.
var splitTolerance = decimal.RequireFromString("0.01")

var territoryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

var splitTarget = decimal.NewFromInt(100)

// ChecklistInput bundles everything the pre-submission checks inspect.
type ChecklistInput struct {
	Release *models.Release
	Artist  *models.Artist
	Tracks  []models.Track
	Splits  map[uuid.UUID][]models.SplitShare
	Now     time.Time
}

// RunChecklist evaluates every pre-submission condition and returns the full
// list of failures. All checks run independently so a single attempt surfaces
// everything the caller still has to fix. An empty result means the release
// is ready for review.
func RunChecklist(input ChecklistInput) []string {
	var failures []string

	failures = append(failures, checkBasicInfo(input.Release, input.Artist)...)
	failures = append(failures, checkTracks(input.Tracks)...)
	failures = append(failures, checkArtwork(input.Release)...)
	failures = append(failures, checkTerritories(input.Release)...)
	failures = append(failures, checkSplits(input.Tracks, input.Splits)...)
	failures = append(failures, checkReleaseDate(input.Release, input.Now)...)

	return failures
}

func checkBasicInfo(release *models.Release, artist *models.Artist) []string {
	var missing []string
	if strings.TrimSpace(release.Title) == "" {
		missing = append(missing, "title")
	}
	if release.ArtistID == uuid.Nil || artist == nil {
		missing = append(missing, "artist")
	}
	if !release.ReleaseType.IsValid() {
		missing = append(missing, "release type")
	}
	if release.PrimaryGenre == nil || strings.TrimSpace(*release.PrimaryGenre) == "" {
		missing = append(missing, "primary genre")
	}
	if release.ReleaseDate == nil {
		missing = append(missing, "release date")
	}
	if len(missing) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("basic info incomplete: missing %s", strings.Join(missing, ", "))}
}

func checkTracks(tracks []models.Track) []string {
	if len(tracks) == 0 {
		return []string{"release has no tracks"}
	}
	var failures []string
	for _, track := range tracks {
		if track.AudioKey == nil || strings.TrimSpace(*track.AudioKey) == "" {
			failures = append(failures, fmt.Sprintf("track %d has no audio file", track.TrackIndex))
		}
	}
	return failures
}

func checkArtwork(release *models.Release) []string {
	if release.ArtworkKey == nil || strings.TrimSpace(*release.ArtworkKey) == "" {
		return []string{"artwork is missing"}
	}
	return nil
}

func checkTerritories(release *models.Release) []string {
	if len(release.Territories) == 0 {
		return []string{"territories are empty; set country codes or WW for worldwide"}
	}
	var failures []string
	for _, territory := range release.Territories {
		if territory == territoryWorldwide {
			continue
		}
		if !territoryCodePattern.MatchString(territory) {
			failures = append(failures, fmt.Sprintf("territory %q is not a recognized code", territory))
		}
	}
	return failures
}

// checkSplits sums every share attached to the release's tracks; the shares
// form one release-wide pool, so the whole set must total 100.
func checkSplits(tracks []models.Track, splits map[uuid.UUID][]models.SplitShare) []string {
	sum := decimal.Zero
	for _, track := range tracks {
		for _, share := range splits[track.ID] {
			sum = sum.Add(share.Percent)
		}
	}
	if sum.Sub(splitTarget).Abs().GreaterThanOrEqual(splitTolerance) {
		return []string{fmt.Sprintf("splits sum to %s, expected 100", sum.String())}
	}
	return nil
}

func checkReleaseDate(release *models.Release, now time.Time) []string {
	if release.ReleaseDate == nil {
		// Reported by the basic info check already.
		return nil
	}
	if release.ReleaseDate.Before(now.Add(minReleaseLead)) {
		return []string{"release date must be at least 5 days in the future"}
	}
	return nil
}
