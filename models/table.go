package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Zone codes recognized by this deployment.
const (
	ZoneFloor1 = "KV001"
	ZoneFloor2 = "KV002"
	ZoneFloor3 = "KV003"
)

// RecognizedZones is the fixed, ordered set of zone codes offered by the form.
var RecognizedZones = []string{ZoneFloor1, ZoneFloor2, ZoneFloor3}

// FlexString accepts a JSON string or number and keeps its textual form.
// The table API is not consistent about quoting ids and table numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// RawTable is one record of GET /api/<resource>/all, as sent on the wire.
type RawTable struct {
	MaBan     FlexString `json:"maBan" validate:"required"`
	SoBan     FlexString `json:"soBan"`
	SoChoNgoi int        `json:"soChoNgoi" validate:"gte=1"`
	HinhAnh   string     `json:"hinhAnh"`
	MaKhuVuc  string     `json:"maKhuVuc" validate:"required"`

	// DecodeErr is set when this element of the list did not decode; fields
	// that did decode are kept for logging.
	DecodeErr error `json:"-" validate:"-"`
}

// Table is the validated shape held by the table browser.
type Table struct {
	ID        string   `json:"maBan"`
	Number    string   `json:"soBan"`
	SeatCount int      `json:"soChoNgoi"`
	Images    []string `json:"hinhAnh"`
	ZoneID    string   `json:"maKhuVuc"`
}

// ToTable -> converts a wire record, splitting the ';' delimited image list
func (r RawTable) ToTable() Table {
	return Table{
		ID:        strings.TrimSpace(r.MaBan.String()),
		Number:    r.SoBan.String(),
		SeatCount: r.SoChoNgoi,
		Images:    SplitImages(r.HinhAnh),
		ZoneID:    r.MaKhuVuc,
	}
}

// SplitImages splits the delimited image string, dropping blank segments.
func SplitImages(hinhAnh string) []string {
	images := []string{}
	for _, part := range strings.Split(hinhAnh, ";") {
		if part = strings.TrimSpace(part); part != "" {
			images = append(images, part)
		}
	}
	return images
}

// Zone is an entry of the supplemental zone list.
type Zone struct {
	ID          string `json:"id"`
	DisplayName string `json:"tenKhuVuc"`
}

// ZoneListResponse is the body of GET /api/<resource>/create.
type ZoneListResponse struct {
	Zones []struct {
		ID          FlexString `json:"id"`
		DisplayName string     `json:"tenKhuVuc"`
	} `json:"khuVuc"`
}

// NewTable carries the fields of a registration submit.
type NewTable struct {
	Number    string
	SeatCount int
	ZoneID    string
	Image     *ImageFile
}

// ImageFile is the single optional photo attached to a new table.
type ImageFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

func (f *ImageFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}
