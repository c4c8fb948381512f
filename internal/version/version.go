// Package version describes the running release.
package version

// Set at build time with -ldflags "-X".
var (
	Version     = "0.35.0"
	ReleaseDate = "2025-10-03"
	ReleaseName = "Organizer Upgrades"
	Commit      = "unknown"
)

// Features lists what this release ships.
var Features = []string{
	"Six organizer collections with uniform create, read, update and delete",
	"Admin and viewer roles backed by shared secrets",
	"Session-bound CSRF protection on every write",
	"Idle session timeout with activity tracking",
	"Login throttling and global per-IP rate limits",
	"Cross-collection search and dashboard analytics",
	"JSON and CSV exports",
	"Compressed backups with retention",
}

// Info is the release description served by the API.
type Info struct {
	Version     string   `json:"version"`
	ReleaseDate string   `json:"release_date"`
	ReleaseName string   `json:"release_name"`
	Commit      string   `json:"commit"`
	Features    []string `json:"features"`
}

// Get returns the current release description.
func Get() Info {
	return Info{
		Version:     Version,
		ReleaseDate: ReleaseDate,
		ReleaseName: ReleaseName,
		Commit:      Commit,
		Features:    append([]string(nil), Features...),
	}
}
