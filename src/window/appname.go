package window

import "strings"

// brandedNames maps lower-cased WM_CLASS class names of known browsers to the
// application names page resolution dispatches on.
var brandedNames = map[string]string{
	"google-chrome":           "Google Chrome",
	"google-chrome-beta":      "Google Chrome Beta",
	"google-chrome-unstable":  "Google Chrome Dev",
	"chromium":                "Chromium",
	"chromium-browser":        "Chromium",
	"firefox":                 "Firefox",
	"firefox-esr":             "Firefox",
	"firefoxdeveloperedition": "Firefox Developer Edition",
}

// ApplicationName returns the branded name for a WM_CLASS class, or class
// itself when it is not a known browser.
func ApplicationName(class string) string {
	if name, ok := brandedNames[strings.ToLower(class)]; ok {
		return name
	}
	return class
}
