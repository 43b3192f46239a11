package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// editNote spawns an interactive editor on a scratch file and returns what
// the user wrote. The configured editor wins over $EDITOR; "vi" is the
// fallback.
func editNote(configured string) ([]byte, error) {
	editor := configured
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	tmp, err := os.CreateTemp("", "ansuz-note-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	defer os.Remove(name)

	// The editor value may carry arguments ("code --wait").
	parts := strings.Fields(editor)
	parts = append(parts, name)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor %q: %w", editor, err)
	}

	content, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read scratch file: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("empty note, aborting")
	}
	return content, nil
}
