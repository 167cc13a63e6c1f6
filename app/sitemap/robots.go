package sitemap

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

const RobotsFilename = "robots.txt"

type Robots struct {
	fs afero.Fs
}

func NewRobots(fs afero.Fs) *Robots {
	return &Robots{fs: fs}
}

// Register appends a "Sitemap: <url>" line for every url not already listed
// and rewrites the robots file. It returns the number of lines added.
func (r *Robots) Register(urls []string) (int, error) {
	data, err := afero.ReadFile(r.fs, RobotsFilename)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read %s: %w", RobotsFilename, err)
	}

	content := string(data)
	added := 0
	for _, url := range urls {
		line := "Sitemap: " + url
		if strings.Contains(content, line) {
			continue
		}
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += line + "\n"
		added++
	}

	if err := afero.WriteFile(r.fs, RobotsFilename, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", RobotsFilename, err)
	}

	return added, nil
}
