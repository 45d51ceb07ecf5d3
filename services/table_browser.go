package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/models"
)

const ComponentBrowser = "browser"

// Messages shown by the browser. Both are blocking alerts.
const (
	MsgTableDeleted     = "Bàn đã được xóa thành công."
	MsgTableDeleteError = "Lỗi khi xóa bàn."
	MsgNoSelectionHint  = "Nhấn vào một bàn để xem chi tiết"
)

// TableView is one cell of the table grid.
type TableView struct {
	models.Table
	Selected bool `json:"selected"`
}

// TableDetail is the content of the detail pane.
type TableDetail struct {
	HasSelection bool          `json:"has_selection"`
	Hint         string        `json:"hint,omitempty"`
	Table        *models.Table `json:"table,omitempty"`
	FloorLabel   string        `json:"floor_label,omitempty"`
}

type FloorButton struct {
	Floor    models.Floor `json:"floor"`
	Label    string       `json:"label"`
	Count    int          `json:"count"`
	Selected bool         `json:"selected"`
}

// BrowserSnapshot is a read-only copy of the browser state.
type BrowserSnapshot struct {
	ID            string               `json:"id"`
	SelectedFloor models.Floor         `json:"selected_floor"`
	Floors        []FloorButton        `json:"floors"`
	Tables        []TableView          `json:"tables"`
	Selection     TableDetail          `json:"selection"`
	Notification  *models.Notification `json:"notification,omitempty"`
	Loading       bool                 `json:"loading"`
	Deleting      bool                 `json:"deleting"`
	LoadError     string               `json:"load_error,omitempty"`
}

// TableBrowser owns the state of one mounted table browser.
type TableBrowser struct {
	ID string

	api  TableAPI
	sink EventSink
	log  *logrus.Logger
	now  func() time.Time

	mu            sync.Mutex
	tables        FloorBuckets
	selectedFloor models.Floor
	selected      *models.Table
	notification  *models.Notification
	loading       bool
	loadErr       error
	deleting      bool
	// ids deleted while a load was in flight; filtered from that load's result
	deletedDuringLoad map[string]struct{}
}

func NewTableBrowser(id string, api TableAPI, sink EventSink, log *logrus.Logger) *TableBrowser {
	return &TableBrowser{
		ID:            id,
		api:           api,
		sink:          sink,
		log:           loggerOr(log),
		now:           time.Now,
		tables:        EmptyBuckets(),
		selectedFloor: models.FloorAll,
	}
}

// LoadTables -> fetch all tables and replace the partition.
// On failure the partition is left as it was and the error is only logged
// and recorded; nothing is shown to the user.
func (tb *TableBrowser) LoadTables(ctx context.Context) error {
	tb.beginLoad()

	records, err := tb.api.ListTables(ctx)

	var out outbox
	defer out.flush(tb.sink)
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.loading = false
	deleted := tb.deletedDuringLoad
	tb.deletedDuringLoad = nil

	if errors.Is(err, context.Canceled) {
		// Browser di-unmount saat load berjalan
		tb.log.WithField("browser", tb.ID).Debug("table load cancelled")
		return fmt.Errorf("load tables: %w", err)
	}
	if err != nil {
		tb.loadErr = err
		tb.log.WithError(err).WithField("browser", tb.ID).Error("failed to load tables")
		tb.record(&out, "load_tables", models.SeverityError, err.Error())
		return fmt.Errorf("load tables: %w", err)
	}

	buckets, dropped := Partition(records)
	logDropped(tb.log, dropped)
	for _, d := range dropped {
		metrics.DroppedTableRecords.WithLabelValues(d.Reason).Inc()
	}
	for id := range deleted {
		buckets, _ = RemoveTable(buckets, id)
	}

	tb.tables = buckets
	tb.loadErr = nil
	if tb.selected != nil && !tb.containsLocked(tb.selected.ID) {
		tb.selected = nil
	}

	tb.log.WithFields(logrus.Fields{
		"browser": tb.ID,
		"fetched": len(records),
		"dropped": len(dropped),
	}).Info("tables loaded")
	return nil
}

func (tb *TableBrowser) beginLoad() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.loading = true
	if tb.deletedDuringLoad == nil {
		tb.deletedDuringLoad = make(map[string]struct{})
	}
}

// SelectFloor -> set the floor filter; always clears the selection
func (tb *TableBrowser) SelectFloor(floor models.Floor) error {
	if !floor.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFloor, floor)
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.selectedFloor = floor
	tb.selected = nil
	return nil
}

// VisibleTables -> tables under the current floor filter
func (tb *TableBrowser) VisibleTables() []models.Table {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return VisibleTables(tb.tables, tb.selectedFloor)
}

// SelectTable -> select a table from the current view; no server call
func (tb *TableBrowser) SelectTable(id string) (models.Table, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	for _, t := range VisibleTables(tb.tables, tb.selectedFloor) {
		if t.ID == id {
			selected := t
			tb.selected = &selected
			return selected, nil
		}
	}
	return models.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, id)
}

// Selection -> detail pane content
func (tb *TableBrowser) Selection() TableDetail {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.selectionLocked()
}

// DeleteSelected -> delete the table shown in the detail pane
func (tb *TableBrowser) DeleteSelected(ctx context.Context) error {
	tb.mu.Lock()
	if tb.selected == nil {
		tb.mu.Unlock()
		return ErrNoSelection
	}
	id := tb.selected.ID
	tb.mu.Unlock()

	return tb.DeleteTable(ctx, id)
}

// DeleteTable -> DELETE the table remotely, then drop it from every floor.
// Only one delete may be outstanding per browser.
func (tb *TableBrowser) DeleteTable(ctx context.Context, id string) error {
	tb.mu.Lock()
	if tb.deleting {
		tb.mu.Unlock()
		return ErrOperationPending
	}
	tb.deleting = true
	tb.mu.Unlock()

	err := tb.api.DeleteTable(ctx, id)

	var out outbox
	defer out.flush(tb.sink)
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.deleting = false

	if err != nil {
		tb.log.WithError(err).WithFields(logrus.Fields{"browser": tb.ID, "maBan": id}).Error("failed to delete table")
		tb.notification = tb.alert(models.SeverityError, MsgTableDeleteError)
		tb.record(&out, "delete_table", models.SeverityError, fmt.Sprintf("%s (maBan=%s): %v", MsgTableDeleteError, id, err))
		return fmt.Errorf("delete table %s: %w", id, err)
	}

	tb.tables, _ = RemoveTable(tb.tables, id)
	if tb.deletedDuringLoad != nil {
		tb.deletedDuringLoad[id] = struct{}{}
	}
	tb.selected = nil
	tb.notification = tb.alert(models.SeveritySuccess, MsgTableDeleted)

	tb.log.WithFields(logrus.Fields{"browser": tb.ID, "maBan": id}).Info("table deleted")
	tb.record(&out, "delete_table", models.SeveritySuccess, fmt.Sprintf("%s (maBan=%s)", MsgTableDeleted, id))
	out.messages = append(out.messages, live.Message{
		Event:     live.EventTableDeleted,
		Component: ComponentBrowser,
		Data:      map[string]interface{}{"maBan": id},
	})
	return nil
}

// DismissNotification -> close the alert
func (tb *TableBrowser) DismissNotification() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.notification = nil
}

func (tb *TableBrowser) Snapshot() BrowserSnapshot {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	snap := BrowserSnapshot{
		ID:            tb.ID,
		SelectedFloor: tb.selectedFloor,
		Selection:     tb.selectionLocked(),
		Loading:       tb.loading,
		Deleting:      tb.deleting,
	}
	if tb.loadErr != nil {
		snap.LoadError = tb.loadErr.Error()
	}
	if tb.notification.Active(tb.now()) {
		n := *tb.notification
		snap.Notification = &n
	}

	for _, f := range append(append([]models.Floor{}, models.Floors...), models.FloorAll) {
		snap.Floors = append(snap.Floors, FloorButton{
			Floor:    f,
			Label:    f.Label(),
			Count:    len(VisibleTables(tb.tables, f)),
			Selected: f == tb.selectedFloor,
		})
	}

	snap.Tables = []TableView{}
	for _, t := range VisibleTables(tb.tables, tb.selectedFloor) {
		snap.Tables = append(snap.Tables, TableView{
			Table:    t,
			Selected: tb.selected != nil && tb.selected.ID == t.ID,
		})
	}
	return snap
}

func (tb *TableBrowser) selectionLocked() TableDetail {
	if tb.selected == nil {
		return TableDetail{Hint: MsgNoSelectionHint}
	}
	t := *tb.selected
	return TableDetail{
		HasSelection: true,
		Table:        &t,
		FloorLabel:   models.ZoneFloorLabel(t.ZoneID),
	}
}

func (tb *TableBrowser) containsLocked(id string) bool {
	for _, t := range VisibleTables(tb.tables, models.FloorAll) {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (tb *TableBrowser) alert(severity, message string) *models.Notification {
	return &models.Notification{
		Severity:  severity,
		Message:   message,
		Blocking:  true,
		CreatedAt: tb.now(),
	}
}

func (tb *TableBrowser) record(out *outbox, action, severity, message string) {
	out.entries = append(out.entries, models.ActivityLog{
		Component:  ComponentBrowser,
		InstanceID: tb.ID,
		Action:     action,
		Severity:   severity,
		Message:    message,
		CreatedAt:  tb.now(),
	})
}
