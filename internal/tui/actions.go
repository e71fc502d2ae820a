package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/render"
	"corkboard/internal/service"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg"}

// paste pins the clipboard: image links and files become photos, anything
// else becomes a note.
func (m *Model) paste() {
	text, err := clipboard.ReadAll()
	if err != nil {
		m.fail(fmt.Errorf("read clipboard: %w", err))
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		m.flash("clipboard is empty")
		return
	}
	if looksLikeImage(text) {
		m.addPhoto(text, "")
		return
	}
	canvasW, rows := m.canvasSize()
	if _, err := m.board.AddNote(m.ctx, m.vp.toBoard(canvasW/2-12, rows/2-2), textToHTML(text)); err != nil {
		m.fail(err)
	}
}

func looksLikeImage(s string) bool {
	if strings.HasPrefix(s, "data:image/") {
		return true
	}
	if strings.ContainsAny(s, "\n") {
		return false
	}
	lower := strings.ToLower(s)
	if i := strings.IndexAny(lower, "?#"); i >= 0 && (strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) {
		lower = lower[:i]
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// addPhoto pins src, reading it from disk unless it is a URL or data URI.
func (m *Model) addPhoto(src, caption string) {
	if src == "" {
		return
	}
	if !strings.HasPrefix(src, "data:") && !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		uri, err := service.ImageDataURI(expandHome(src))
		if err != nil {
			m.fail(err)
			return
		}
		src = uri
	}
	canvasW, rows := m.canvasSize()
	if _, err := m.board.AddPhoto(m.ctx, m.vp.toBoard(canvasW/2-15, rows/2-4), src, caption); err != nil {
		m.fail(err)
	}
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func (m *Model) exportPath(ext string) string {
	return filepath.Join(m.exportDir, fmt.Sprintf("corkboard-%s.%s", time.Now().Format("20060102-150405"), ext))
}

func (m *Model) exportPNG() {
	path := m.exportPath("png")
	f, err := os.Create(path)
	if err != nil {
		m.fail(fmt.Errorf("export: %w", err))
		return
	}
	err = render.PNG(f, m.board.Scene(nil), 40)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		m.fail(fmt.Errorf("export: %w", err))
		return
	}
	log.Infof("[TUI] exported %s", path)
	m.flash("exported " + path)
}

func (m *Model) exportSVG() {
	path := m.exportPath("svg")
	if err := os.WriteFile(path, render.SVG(m.board.Scene(nil), 40), 0o644); err != nil {
		m.fail(fmt.Errorf("export: %w", err))
		return
	}
	m.flash("exported " + path)
}
