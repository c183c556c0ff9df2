// Package service registers the web server as a macOS launchd user agent.
package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Label identifies the agent to launchd.
const Label = "com.spotify-concerts.serve"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
		<string>serve</string>
		<string>--log-file</string>
		<string>{{.LogDir}}/serve.log</string>
{{- if .Addr}}
		<string>--addr</string>
		<string>{{.Addr}}</string>
{{- end}}
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogDir}}/serve.out</string>
	<key>StandardErrorPath</key>
	<string>{{.LogDir}}/serve.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
</dict>
</plist>
`

// PlistConfig holds the configuration for generating a launchd plist
type PlistConfig struct {
	BinaryPath       string
	LogDir           string
	WorkingDirectory string
	Addr             string // optional listen address override
}

// GeneratePlist renders the agent definition.
func GeneratePlist(config PlistConfig) (string, error) {
	tmpl, err := template.New("plist").Parse(plistTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse plist template: %w", err)
	}

	data := struct {
		PlistConfig
		Label string
	}{config, Label}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute plist template: %w", err)
	}

	return buf.String(), nil
}

// PlistPath returns the path where the plist should be installed
func PlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// LogDir returns the default directory for server logs
func LogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "spotify-concerts", "logs"), nil
}

// Domain returns the launchctl domain of the current user.
func Domain() string {
	return fmt.Sprintf("gui/%d", os.Getuid())
}
