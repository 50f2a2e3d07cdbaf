package http

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/travelperks/dealdedup/internal/domain"
)

var csvHeader = []string{"kind", "vendor", "hq_deal", "json_title", "json_expiry", "score", "flags", "reasons"}

// writeReportCSV renders matched rows followed by needs-review rows
func writeReportCSV(c *gin.Context, report *domain.MatchReport) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="dealdedup-%s.csv"`, report.RunID))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	rows := append([][]string{csvHeader}, reportRows(report)...)
	if err := w.WriteAll(rows); err != nil {
		log.Printf("[HTTP] CSV export of run %s failed: %v", report.RunID, err)
	}
}

// reportRows flattens a report into CSV records
func reportRows(report *domain.MatchReport) [][]string {
	rows := make([][]string, 0, len(report.Matched)+len(report.NeedsReview))
	for _, results := range [][]domain.MatchResult{report.Matched, report.NeedsReview} {
		for _, r := range results {
			jsonTitle, jsonExpiry := "", ""
			if r.Counterpart != nil {
				jsonTitle = r.Counterpart.Title
				if r.Counterpart.ExpiryDate != nil {
					jsonExpiry = *r.Counterpart.ExpiryDate
				}
			}
			rows = append(rows, []string{
				string(r.Kind),
				r.HQDeal.Vendor,
				r.HQDeal.Title,
				jsonTitle,
				jsonExpiry,
				strconv.Itoa(r.Score),
				flagList(r.Flags),
				strings.Join(r.Reasons, "; "),
			})
		}
	}
	return rows
}

// flagList names the raised triage flags, pipe separated
func flagList(f domain.MatchFlags) string {
	var flags []string
	if f.NumberFlag {
		flags = append(flags, "number")
	}
	if f.DateFlag {
		flags = append(flags, "date")
	}
	if f.ExclusiveFlag {
		flags = append(flags, "exclusive")
	}
	return strings.Join(flags, "|")
}
