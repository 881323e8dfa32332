package records

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/FACorreiaa/go-user-records/internal/types"
)

const (
	ExportFilename    = "users.csv"
	ExportContentType = "text/csv"

	// exportTimeLayout is ISO-8601 in UTC with millisecond precision.
	exportTimeLayout = "2006-01-02T15:04:05.000Z"
)

// ExportColumns is the fixed CSV header, in column order.
var ExportColumns = []string{
	"firstName",
	"lastName",
	"email",
	"mobile",
	"gender",
	"status",
	"location",
	"profileImage",
	"createdAt",
}

func exportRow(rec types.Record) []string {
	return []string{
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.Mobile,
		string(rec.Gender),
		string(rec.Status),
		rec.Location,
		rec.ProfileImage,
		rec.CreatedAt.UTC().Format(exportTimeLayout),
	}
}

// WriteRecordsCSV writes the header followed by one row per record.
func WriteRecordsCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

