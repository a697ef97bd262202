// Package prefs reads the user's screenshot destination preferences.
package prefs

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

type Destination string

const (
	DestinationFolder  Destination = "folder"
	DestinationDropbox Destination = "dropbox"
)

type Preferences struct {
	Destination   Destination `yaml:"destination" plist:"ScreenshotDestination"`
	SaveFolder    string      `yaml:"save_folder" plist:"SaveFolder"`
	OfflineFolder string      `yaml:"offline_folder" plist:"OfflineDropboxSaveFolder"`
}

// Source is read once per save, so edits take effect on the next capture.
type Source interface {
	Load() (Preferences, error)
}

// Defaults saves into ~/Pictures/Screenshots.
func Defaults() Preferences {
	base := filepath.Join(homeDir(), "Pictures", "Screenshots")
	return Preferences{
		Destination:   DestinationFolder,
		SaveFolder:    base,
		OfflineFolder: filepath.Join(base, "Offline"),
	}
}

// File loads preferences from a .plist (defaults export) or .yaml file.
// A missing file yields Defaults.
type File struct {
	Path string
}

func (f File) Load() (Preferences, error) {
	p := Defaults()
	if f.Path == "" {
		return p, nil
	}
	data, err := os.ReadFile(expandHome(f.Path))
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read preferences: %w", err)
	}

	var loaded Preferences
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".plist":
		if _, err := plist.Unmarshal(data, &loaded); err != nil {
			return p, fmt.Errorf("decode preferences plist: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return p, fmt.Errorf("decode preferences yaml: %w", err)
		}
	default:
		return p, fmt.Errorf("unsupported preferences format %q", filepath.Ext(f.Path))
	}
	return merge(p, loaded)
}

func merge(base, loaded Preferences) (Preferences, error) {
	switch Destination(strings.ToLower(string(loaded.Destination))) {
	case "":
	case DestinationFolder:
		base.Destination = DestinationFolder
	case DestinationDropbox:
		base.Destination = DestinationDropbox
	default:
		return base, fmt.Errorf("unknown screenshot destination %q", loaded.Destination)
	}
	if loaded.SaveFolder != "" {
		base.SaveFolder = folderPath(loaded.SaveFolder)
	}
	if loaded.OfflineFolder != "" {
		base.OfflineFolder = folderPath(loaded.OfflineFolder)
	}
	return base, nil
}

// folderPath accepts plain paths and file:// URLs as stored by NSUserDefaults.
func folderPath(v string) string {
	if strings.HasPrefix(v, "file://") {
		if u, err := url.Parse(v); err == nil {
			v = u.Path
		}
	}
	return filepath.Clean(expandHome(v))
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}
