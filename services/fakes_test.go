package services

import (
	"context"
	"sync"

	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/models"
)

type fakeTableAPI struct {
	mu sync.Mutex

	zones     []models.Zone
	zonesErr  error
	tables    []models.RawTable
	listErr   error
	createErr error
	deleteErr error

	created []models.NewTable
	deleted []string
	calls   map[string]int

	// gates block the call until closed; started is signalled on entry
	listGate   chan struct{}
	deleteGate chan struct{}
	createGate chan struct{}
	started    chan string
}

func newFakeTableAPI() *fakeTableAPI {
	return &fakeTableAPI{calls: make(map[string]int)}
}

func (f *fakeTableAPI) enter(op string, gate chan struct{}) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- op
	}
	if gate != nil {
		<-gate
	}
}

func (f *fakeTableAPI) ListZones(ctx context.Context) ([]models.Zone, error) {
	f.enter(OpListZones, nil)
	return f.zones, f.zonesErr
}

func (f *fakeTableAPI) CreateTable(ctx context.Context, table models.NewTable) error {
	f.enter(OpCreateTable, f.createGate)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, table)
	return nil
}

func (f *fakeTableAPI) ListTables(ctx context.Context) ([]models.RawTable, error) {
	f.enter(OpListTables, f.listGate)
	return f.tables, f.listErr
}

func (f *fakeTableAPI) DeleteTable(ctx context.Context, id string) error {
	f.enter(OpDeleteTable, f.deleteGate)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTableAPI) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

type fakeSink struct {
	mu       sync.Mutex
	entries  []models.ActivityLog
	messages []live.Message
}

func (s *fakeSink) Record(entry models.ActivityLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *fakeSink) Publish(msg live.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *fakeSink) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.messages {
		out = append(out, m.Event)
	}
	return out
}

func raw(id, number string, seats int, images, zone string) models.RawTable {
	return models.RawTable{
		MaBan:     models.FlexString(id),
		SoBan:     models.FlexString(number),
		SoChoNgoi: seats,
		HinhAnh:   images,
		MaKhuVuc:  zone,
	}
}

// blockingSink holds every Record call until release is closed.
type blockingSink struct {
	entered chan string
	release chan struct{}
}

func newBlockingSink() *blockingSink {
	return &blockingSink{entered: make(chan string, 4), release: make(chan struct{})}
}

func (s *blockingSink) Record(entry models.ActivityLog) {
	s.entered <- entry.Action
	<-s.release
}

func (s *blockingSink) Publish(msg live.Message) {}
