package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	p, err := File{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
	assert.Equal(t, DestinationFolder, p.Destination)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("destination: dropbox\nsave_folder: /tmp/shots\noffline_folder: /tmp/offline\n"), 0o644))

	p, err := File{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, Preferences{Destination: DestinationDropbox, SaveFolder: "/tmp/shots", OfflineFolder: "/tmp/offline"}, p)
}

func TestLoadPlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "com.screenotate.plist")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>ScreenshotDestination</key>
	<string>Folder</string>
	<key>SaveFolder</key>
	<string>file:///Users/omar/Screenshots/</string>
</dict>
</plist>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := File{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, DestinationFolder, p.Destination)
	assert.Equal(t, "/Users/omar/Screenshots", p.SaveFolder)
	assert.Equal(t, Defaults().OfflineFolder, p.OfflineFolder)
}

func TestLoadRejectsUnknownDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yml")
	require.NoError(t, os.WriteFile(path, []byte("destination: s3\n"), 0o644))

	_, err := File{Path: path}.Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := File{Path: path}.Load()
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Shots"), folderPath("~/Shots"))
}
