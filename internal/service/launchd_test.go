package service

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGeneratePlist(t *testing.T) {
	plist, err := GeneratePlist(PlistConfig{
		BinaryPath:       "/usr/local/bin/spotify-concerts",
		LogDir:           "/Users/test/.local/share/spotify-concerts/logs",
		WorkingDirectory: "/Users/test",
	})
	if err != nil {
		t.Fatalf("GeneratePlist() error = %v", err)
	}

	for _, want := range []string{
		"<string>com.spotify-concerts.serve</string>",
		"<string>/usr/local/bin/spotify-concerts</string>",
		"<string>serve</string>",
		"<string>/Users/test/.local/share/spotify-concerts/logs/serve.log</string>",
		"<string>/Users/test</string>",
	} {
		if !strings.Contains(plist, want) {
			t.Errorf("plist missing %q", want)
		}
	}
	if strings.Contains(plist, "--addr") {
		t.Error("plist has --addr without an override")
	}
}

func TestGeneratePlist_Addr(t *testing.T) {
	plist, err := GeneratePlist(PlistConfig{
		BinaryPath: "/bin/sc",
		LogDir:     "/tmp",
		Addr:       "127.0.0.1:9090",
	})
	if err != nil {
		t.Fatalf("GeneratePlist() error = %v", err)
	}
	if !strings.Contains(plist, "<string>--addr</string>\n\t\t<string>127.0.0.1:9090</string>") {
		t.Errorf("plist missing addr override:\n%s", plist)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("HOME", "/Users/test")

	plist, err := PlistPath()
	if err != nil {
		t.Fatalf("PlistPath() error = %v", err)
	}
	if want := filepath.Join("/Users/test", "Library", "LaunchAgents", "com.spotify-concerts.serve.plist"); plist != want {
		t.Errorf("PlistPath() = %q, want %q", plist, want)
	}

	logs, err := LogDir()
	if err != nil {
		t.Fatalf("LogDir() error = %v", err)
	}
	if !strings.HasSuffix(logs, filepath.Join("spotify-concerts", "logs")) {
		t.Errorf("LogDir() = %q", logs)
	}
}
