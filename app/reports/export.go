// Package reports renders the request table for administrators who want it
// outside the app, and files the result on a storage disk.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/storage"
)

var header = []string{"id", "name", "email", "status", "kind", "items", "created_at"}

// Lister is the part of the request service an export needs.
type Lister interface {
	List(ctx context.Context, caller auth.Identity) ([]models.Request, error)
}

// WriteCSV writes one row per request in the given order. Items are joined
// with "; " so a row never spans columns.
func WriteCSV(w io.Writer, reqs []models.Request) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range reqs {
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Name,
			r.Email,
			string(r.Status),
			r.Description.Kind().String(),
			strings.Join(r.Description.Items(), "; "),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DefaultPath names an export by the time it was taken.
func DefaultPath(now time.Time) string {
	return "exports/requests-" + now.UTC().Format("20060102-150405") + ".csv"
}

// Export lists every request as caller and stores the CSV at path on disk.
// It returns the number of rows written.
func Export(ctx context.Context, src Lister, caller auth.Identity, disk storage.Disk, path string) (int, error) {
	reqs, err := src.List(ctx, caller)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reqs); err != nil {
		return 0, fmt.Errorf("export: encode: %w", err)
	}
	if err := disk.Put(ctx, path, &buf); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	logger.WithCtx(ctx).Info("requests exported", "rows", len(reqs), "path", path)
	return len(reqs), nil
}
