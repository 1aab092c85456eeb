package version

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/mod/semver"
)

// Repo reads and writes version tags in a local git repository. Tag
// discovery shells out to git; no network or hosting API is involved.
type Repo struct {
	dir string
}

// NewRepo returns a Repo rooted at dir.
func NewRepo(dir string) *Repo {
	return &Repo{dir: dir}
}

// Tags lists all tags in the repository.
func (r *Repo) Tags() ([]string, error) {
	cmd := exec.Command("git", "tag", "--list")
	cmd.Dir = r.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w (output: %s)", err, string(output))
	}

	var tags []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

// CurrentVersion returns the highest semantic version tagged in the
// repository, without the prefix. Returns "0.0.0" when no version tags
// exist yet.
func (r *Repo) CurrentVersion(prefix string) (string, error) {
	tags, err := r.Tags()
	if err != nil {
		return "", err
	}

	latest := Latest(tags, prefix)
	if latest == "" {
		return "0.0.0", nil
	}
	return latest, nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repo) CreateTag(tag, message string) error {
	cmd := exec.Command("git", "tag", "-a", tag, "-m", message)
	cmd.Dir = r.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w (output: %s)", tag, err, string(output))
	}
	return nil
}

// Latest returns the highest semantic version among tags carrying the
// given prefix, stripped of that prefix. Tags that don't parse as semantic
// versions are ignored. Returns "" when nothing matches.
func Latest(tags []string, prefix string) string {
	var latest string
	var latestCanonical string

	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		raw := strings.TrimPrefix(tag, prefix)

		// semver package requires the "v" prefix for comparison
		canonical := "v" + raw
		if !semver.IsValid(canonical) {
			continue
		}

		if latest == "" || semver.Compare(canonical, latestCanonical) > 0 {
			latest = raw
			latestCanonical = canonical
		}
	}

	return latest
}
