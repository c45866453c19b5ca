package assetapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
)

const auditDateLayout = "2006-01-02"

// ListAuditTrails exports the audit log, optionally bounded by date.
func (c *Client) ListAuditTrails(ctx context.Context, query service.AuditQuery) ([]entity.AuditLog, error) {
	path := "/export/audit-trails"
	if qs := auditQueryString(query); qs != "" {
		path += "?" + qs
	}

	var resp auditTrailResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.items(), nil
}

func auditQueryString(query service.AuditQuery) string {
	values := url.Values{}
	if !query.StartDate.IsZero() {
		values.Set("startDate", query.StartDate.UTC().Format(auditDateLayout))
	}
	if !query.EndDate.IsZero() {
		values.Set("endDate", query.EndDate.UTC().Format(auditDateLayout))
	}

	return values.Encode()
}

// ParseAuditDate parses the date format used by the audit export filter.
func ParseAuditDate(s string) (time.Time, error) {
	return time.Parse(auditDateLayout, s)
}
