// Package library lists the media directory: recognized video files and
// their optional same-stem thumbnails.
package library

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".mkv":  {},
}

// Video describes one entry of the media directory. Thumbnail is the
// public static path of the like-named png beside the file, PNGData the
// same image inlined as a data URI; both empty when no thumbnail exists.
type Video struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
	PNGData   string `json:"pngData,omitempty"`
}

type Library struct {
	dir string
}

func New(dir string) *Library {
	return &Library{dir: dir}
}

func (l *Library) Dir() string { return l.dir }

// List scans the media directory. A read failure yields an empty list
// with a log entry, never an error to the caller.
func (l *Library) List() []Video {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		log.Error().Str("module", "library").Str("dir", l.dir).Err(err).Msg("cannot read media directory")
		return []Video{}
	}

	videos := make([]Video, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		videos = append(videos, l.describe(name))
	}
	return videos
}

func (l *Library) describe(name string) Video {
	v := Video{Name: name}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	thumb := stem + ".png"
	data, err := os.ReadFile(filepath.Join(l.dir, thumb))
	if err != nil {
		return v
	}
	v.Thumbnail = "/thumbnails/" + thumb
	v.PNGData = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	return v
}
