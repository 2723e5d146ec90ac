package phorest

import (
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

const dayFormat = "2006-01-02"

// SplitMonthlyRanges splits [fromDate, toDate] (inclusive) into
// consecutive sub-ranges of at most one calendar month each. The
// booking API rejects appointment queries spanning more than a month.
// Sub-ranges are contiguous, non-overlapping and cover the full range:
// each starts the day after the previous one's end, and ends at
// start + 1 month - 1 day, or at toDate, whichever comes first.
func SplitMonthlyRanges(fromDate, toDate string) ([]domain.DateRange, error) {
	start, err := time.Parse(dayFormat, fromDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "fromDate", Message: "expected YYYY-MM-DD"}
	}
	end, err := time.Parse(dayFormat, toDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "toDate", Message: "expected YYYY-MM-DD"}
	}
	if end.Before(start) {
		return nil, &domain.ErrValidation{Field: "toDate", Message: "must not precede fromDate"}
	}

	var ranges []domain.DateRange
	for cur := start; !cur.After(end); {
		chunkEnd := cur.AddDate(0, 1, -1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		ranges = append(ranges, domain.DateRange{
			From: cur.Format(dayFormat),
			To:   chunkEnd.Format(dayFormat),
		})
		cur = chunkEnd.AddDate(0, 0, 1)
	}
	return ranges, nil
}

// chunkIDs partitions ids into slices of at most size elements,
// preserving order.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		endIdx := i + size
		if endIdx > len(ids) {
			endIdx = len(ids)
		}
		chunks = append(chunks, ids[i:endIdx])
	}
	return chunks
}
