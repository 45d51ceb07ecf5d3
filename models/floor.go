package models

// Floor is a key of the browser's partition, or FloorAll for the unfiltered view.
type Floor string

const (
	Floor1   Floor = "Floor_1"
	Floor2   Floor = "Floor_2"
	Floor3   Floor = "Floor_3"
	FloorAll Floor = "All"
)

// Floors lists the partition buckets in display order.
var Floors = []Floor{Floor1, Floor2, Floor3}

var floorLabels = map[Floor]string{
	Floor1:   "Tầng 1",
	Floor2:   "Tầng 2",
	Floor3:   "Tầng 3",
	FloorAll: "Tất cả",
}

var zoneFloors = map[string]Floor{
	ZoneFloor1: Floor1,
	ZoneFloor2: Floor2,
	ZoneFloor3: Floor3,
}

// Valid reports whether f is one of the three buckets or FloorAll.
func (f Floor) Valid() bool {
	_, ok := floorLabels[f]
	return ok
}

// Label -> button text shown for the floor filter
func (f Floor) Label() string {
	return floorLabels[f]
}

// FloorForZone maps a zone code to its bucket. ok is false for unrecognized codes.
func FloorForZone(zoneID string) (Floor, bool) {
	f, ok := zoneFloors[zoneID]
	return f, ok
}

// ZoneFloorLabel is the floor shown in the detail pane. Anything that is not
// KV001 or KV002 reads as the third floor.
func ZoneFloorLabel(zoneID string) string {
	switch zoneID {
	case ZoneFloor1:
		return Floor1.Label()
	case ZoneFloor2:
		return Floor2.Label()
	default:
		return Floor3.Label()
	}
}
