package services

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/models"
)

var validate = validator.New()

// FloorBuckets maps each of the three floors to its tables in fetch order.
type FloorBuckets map[models.Floor][]models.Table

const (
	DropMalformed   = "malformed"
	DropUnknownZone = "unknown_zone"
)

// DroppedRecord is a fetched record that landed in no bucket.
type DroppedRecord struct {
	Record models.RawTable
	Reason string
	Err    error
}

// EmptyBuckets is the initial partition: all three floors present and empty.
func EmptyBuckets() FloorBuckets {
	b := make(FloorBuckets, len(models.Floors))
	for _, f := range models.Floors {
		b[f] = []models.Table{}
	}
	return b
}

// Partition validates the fetched records and groups them by exact zone code.
// Each record lands in at most one bucket; malformed records and unknown zone
// codes are returned as dropped.
func Partition(records []models.RawTable) (FloorBuckets, []DroppedRecord) {
	buckets := EmptyBuckets()
	var dropped []DroppedRecord

	for _, rec := range records {
		if rec.DecodeErr != nil {
			dropped = append(dropped, DroppedRecord{Record: rec, Reason: DropMalformed, Err: rec.DecodeErr})
			continue
		}
		if err := validate.Struct(rec); err != nil {
			dropped = append(dropped, DroppedRecord{Record: rec, Reason: DropMalformed, Err: err})
			continue
		}
		floor, ok := models.FloorForZone(rec.MaKhuVuc)
		if !ok {
			dropped = append(dropped, DroppedRecord{Record: rec, Reason: DropUnknownZone})
			continue
		}
		buckets[floor] = append(buckets[floor], rec.ToTable())
	}
	return buckets, dropped
}

// VisibleTables returns Floor_1 ++ Floor_2 ++ Floor_3 for FloorAll, otherwise
// exactly that bucket. The result is a fresh slice.
func VisibleTables(buckets FloorBuckets, floor models.Floor) []models.Table {
	if floor == models.FloorAll {
		out := []models.Table{}
		for _, f := range models.Floors {
			out = append(out, buckets[f]...)
		}
		return out
	}
	return append([]models.Table{}, buckets[floor]...)
}

// RemoveTable drops every table with the given id from all buckets.
func RemoveTable(buckets FloorBuckets, id string) (FloorBuckets, bool) {
	removed := false
	out := make(FloorBuckets, len(buckets))
	for floor, tables := range buckets {
		kept := make([]models.Table, 0, len(tables))
		for _, t := range tables {
			if t.ID == id {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		out[floor] = kept
	}
	return out, removed
}

func logDropped(log *logrus.Logger, dropped []DroppedRecord) {
	for _, d := range dropped {
		entry := log.WithFields(logrus.Fields{
			"reason":   d.Reason,
			"maBan":    d.Record.MaBan,
			"maKhuVuc": d.Record.MaKhuVuc,
		})
		if d.Err != nil {
			entry = entry.WithError(d.Err)
		}
		entry.Warn("table record dropped from every floor")
	}
}
