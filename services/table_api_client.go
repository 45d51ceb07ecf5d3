package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/models"
)

// TableAPI is the remote table store used by the screen components.
type TableAPI interface {
	ListZones(ctx context.Context) ([]models.Zone, error)
	CreateTable(ctx context.Context, table models.NewTable) error
	ListTables(ctx context.Context) ([]models.RawTable, error)
	DeleteTable(ctx context.Context, id string) error
}

const (
	OpListZones   = "list_zones"
	OpCreateTable = "create_table"
	OpListTables  = "list_tables"
	OpDeleteTable = "delete_table"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// TableAPIClient handles calls to /api/<resource>/...
type TableAPIClient struct {
	baseURL    string
	resource   string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewTableAPIClient builds a client. A zero timeout means requests never time out.
func NewTableAPIClient(baseURL, resource string, timeout time.Duration, log *logrus.Logger) *TableAPIClient {
	return &TableAPIClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: resource,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: loggerOr(log),
	}
}

func (c *TableAPIClient) endpoint(action string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.baseURL, url.PathEscape(c.resource), action)
}

// ListZones -> GET /create, expects {"khuVuc": [...]}
func (c *TableAPIClient) ListZones(ctx context.Context) ([]models.Zone, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("create"), nil)
	if err != nil {
		return nil, err
	}

	var body models.ZoneListResponse
	if err := c.doJSON(OpListZones, req, &body); err != nil {
		return nil, err
	}

	zones := make([]models.Zone, 0, len(body.Zones))
	for _, z := range body.Zones {
		zones = append(zones, models.Zone{ID: z.ID.String(), DisplayName: z.DisplayName})
	}
	return zones, nil
}

// ListTables -> GET /all. Elements that fail to decode come back with DecodeErr set.
func (c *TableAPIClient) ListTables(ctx context.Context) ([]models.RawTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("all"), nil)
	if err != nil {
		return nil, err
	}

	// Elemen didecode satu per satu supaya satu record rusak tidak membuang seluruh list
	var elems []json.RawMessage
	if err := c.doJSON(OpListTables, req, &elems); err != nil {
		return nil, err
	}

	records := make([]models.RawTable, 0, len(elems))
	for i, elem := range elems {
		var rec models.RawTable
		if err := json.Unmarshal(elem, &rec); err != nil {
			rec.DecodeErr = fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CreateTable -> POST /create as multipart/form-data
func (c *TableAPIClient) CreateTable(ctx context.Context, table models.NewTable) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{models.FieldNumber, table.Number},
		{models.FieldSeatCount, strconv.Itoa(table.SeatCount)},
		{models.FieldZone, table.ZoneID},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("%s: write field %s: %w", OpCreateTable, f[0], err)
		}
	}

	if table.Image != nil {
		part, err := w.CreatePart(imagePartHeader(table.Image))
		if err != nil {
			return fmt.Errorf("%s: create image part: %w", OpCreateTable, err)
		}
		if _, err := part.Write(table.Image.Data); err != nil {
			return fmt.Errorf("%s: write image part: %w", OpCreateTable, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: close multipart: %w", OpCreateTable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("create"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.doJSON(OpCreateTable, req, nil)
}

// DeleteTable -> DELETE /delete?ma=<id>; any 2xx confirms the deletion
func (c *TableAPIClient) DeleteTable(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("ma", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("delete")+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.doJSON(OpDeleteTable, req, nil)
}

// doJSON sends req and, on 2xx, decodes the body into out when out is not nil.
func (c *TableAPIClient) doJSON(op string, req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.TableAPIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TableAPIRequestsTotal.WithLabelValues(op, "transport_error").Inc()
		c.log.WithError(err).WithField("operation", op).Error("table API request failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	fields := logrus.Fields{
		"operation": op,
		"method":    req.Method,
		"status":    resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TableAPIRequestsTotal.WithLabelValues(op, "http_error").Inc()
		apiErr := &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp),
		}
		c.log.WithFields(fields).WithField("message", apiErr.Message).Warn("table API returned an error")
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.TableAPIRequestsTotal.WithLabelValues(op, "decode_error").Inc()
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	metrics.TableAPIRequestsTotal.WithLabelValues(op, "ok").Inc()
	c.log.WithFields(fields).Debug("table API request done")
	return nil
}

// readErrorMessage prefers message/error/title from a JSON body, then the raw text.
func readErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "error", "title"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func imagePartHeader(img *models.ImageFile) textproto.MIMEHeader {
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		models.FieldImage, quoteEscaper.Replace(img.Filename)))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
