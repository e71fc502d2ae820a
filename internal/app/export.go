package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"corkboard/internal/config"
	"corkboard/internal/domain"
	"corkboard/internal/render"
	"corkboard/internal/service"
)

// ExportFormat picks the renderer for Export.
type ExportFormat string

const (
	FormatSVG ExportFormat = "svg"
	FormatPNG ExportFormat = "png"
)

// FormatForPath infers the export format from a file extension.
func FormatForPath(path string) (ExportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: cannot export to %q, use .svg or .png", domain.ErrInvalidInput, path)
}

// Export renders the stored board to w.
func Export(ctx context.Context, cfg *config.Config, w io.Writer, format ExportFormat, padding float64) error {
	a, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return a.Export(w, format, padding)
}

func (a *App) Export(w io.Writer, format ExportFormat, padding float64) error {
	sc := a.Board.Scene(nil)
	switch format {
	case FormatPNG:
		if err := render.PNG(w, sc, padding); err != nil {
			return fmt.Errorf("export png: %w", err)
		}
	case FormatSVG:
		if _, err := w.Write(render.SVG(sc, padding)); err != nil {
			return fmt.Errorf("export svg: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
	return nil
}

// ── snapshots ─────────────────────────────────────────────

// ListSnapshots prints the retained snapshots, newest first.
func ListSnapshots(ctx context.Context, cfg *config.Config, w io.Writer) error {
	a, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	snaps, err := a.Snapshots.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAKEN\tITEMS\tSTRINGS\tLABEL")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.ID, s.CreatedAt, s.Items, s.Links, s.Label)
	}
	return tw.Flush()
}

// SaveSnapshot records the board under label.
func SaveSnapshot(ctx context.Context, cfg *config.Config, label string, w io.Writer) error {
	a, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	snap, err := a.Snapshots.Save(ctx, label)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved snapshot %s (%d items, %d strings)\n", snap.ID, snap.Items, snap.Links)
	return nil
}

// RestoreSnapshot replaces the board with snapshot id. Unless yes is set
// the user is asked on in/out first.
func RestoreSnapshot(ctx context.Context, cfg *config.Config, id string, yes bool, in io.Reader, out io.Writer) error {
	a, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	confirmer := service.Confirmed
	if !yes {
		confirmer = promptConfirmer(in, out)
	}
	if err := a.Snapshots.Restore(ctx, id, confirmer); err != nil {
		return err
	}
	fmt.Fprintf(out, "restored snapshot %s\n", id)
	return nil
}

// promptConfirmer asks a yes/no question on a line-oriented terminal.
func promptConfirmer(in io.Reader, out io.Writer) service.Confirmer {
	return service.ConfirmFunc(func(_ context.Context, action, detail string) bool {
		fmt.Fprintf(out, "%s: %s [y/N] ", action, detail)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}
