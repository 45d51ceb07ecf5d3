package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/models"
)

const ComponentForm = "form"

// DefaultNotificationTTL matches the snackbar auto-hide of the screen.
const DefaultNotificationTTL = 6 * time.Second

const (
	MsgTableCreated    = "Thêm bàn thành công!"
	MsgSubmitErrPrefix = "Có lỗi xảy ra: "
	MsgZonesLoadError  = "Không thể tải danh sách khu vực"
)

// FormFields is the raw, unvalidated input of the registration form.
type FormFields struct {
	Number    string            `json:"soBan"`
	SeatCount string            `json:"soChoNgoi"`
	ZoneID    string            `json:"soKhuVuc"`
	Image     *models.ImageFile `json:"image,omitempty"`
}

type ZoneOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FormSnapshot struct {
	ID           string               `json:"id"`
	Fields       FormFields           `json:"fields"`
	ImageSize    int                  `json:"image_size"`
	ZoneOptions  []ZoneOption         `json:"zone_options"`
	Notification *models.Notification `json:"notification,omitempty"`
	Submitting   bool                 `json:"submitting"`
}

// submission is what the required/min constraints are checked against.
type submission struct {
	Number    string `validate:"required"`
	SeatCount int    `validate:"gte=1"`
}

// RegistrationForm owns the state of one mounted registration form.
type RegistrationForm struct {
	ID string

	api  TableAPI
	sink EventSink
	log  *logrus.Logger
	now  func() time.Time
	ttl  time.Duration

	mu           sync.Mutex
	fields       FormFields
	zones        []models.Zone
	notification *models.Notification
	submitting   bool
}

func NewRegistrationForm(id string, api TableAPI, sink EventSink, log *logrus.Logger, ttl time.Duration) *RegistrationForm {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &RegistrationForm{
		ID:    id,
		api:   api,
		sink:  sink,
		log:   loggerOr(log),
		now:   time.Now,
		ttl:   ttl,
		zones: []models.Zone{},
	}
}

// LoadZones -> fetch the supplemental zone list. On failure the list is
// emptied and an error snackbar is shown; the fixed zone codes stay selectable.
func (rf *RegistrationForm) LoadZones(ctx context.Context) error {
	zones, err := rf.api.ListZones(ctx)

	var out outbox
	defer out.flush(rf.sink)
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if err != nil {
		rf.zones = []models.Zone{}
		rf.notification = rf.snackbar(models.SeverityError, MsgZonesLoadError)
		rf.log.WithError(err).WithField("form", rf.ID).Error("failed to load zones")
		rf.record(&out, "load_zones", models.SeverityError, fmt.Sprintf("%s: %v", MsgZonesLoadError, err))
		return fmt.Errorf("load zones: %w", err)
	}

	rf.zones = zones
	return nil
}

// ZoneOptions -> KV001..KV003 first, then fetched zones not already listed
func (rf *RegistrationForm) ZoneOptions() []ZoneOption {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.zoneOptionsLocked()
}

// UpdateField -> merge one text field change
func (rf *RegistrationForm) UpdateField(name, value string) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	switch name {
	case models.FieldNumber:
		rf.fields.Number = value
	case models.FieldSeatCount:
		rf.fields.SeatCount = value
	case models.FieldZone:
		rf.fields.ZoneID = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetImage -> keep the first selected file only. An empty selection clears the image.
func (rf *RegistrationForm) SetImage(files []*models.ImageFile) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if len(files) == 0 {
		rf.fields.Image = nil
		return
	}
	if len(files) > 1 {
		rf.log.WithFields(logrus.Fields{"form": rf.ID, "discarded": len(files) - 1}).Debug("extra image files discarded")
	}
	rf.fields.Image = files[0]
}

// Submit -> check required fields, then POST the multipart payload.
// Validation failures never reach the network.
func (rf *RegistrationForm) Submit(ctx context.Context) error {
	rf.mu.Lock()
	if rf.submitting {
		rf.mu.Unlock()
		return ErrOperationPending
	}
	payload, err := rf.payloadLocked()
	if err != nil {
		rf.mu.Unlock()
		return err
	}
	rf.submitting = true
	rf.mu.Unlock()

	err = rf.api.CreateTable(ctx, payload)

	var out outbox
	defer out.flush(rf.sink)
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.submitting = false

	if err != nil {
		message := MsgSubmitErrPrefix + err.Error()
		rf.notification = rf.snackbar(models.SeverityError, message)
		rf.log.WithError(err).WithField("form", rf.ID).Error("failed to submit table")
		rf.record(&out, "create_table", models.SeverityError, message)
		return fmt.Errorf("create table: %w", err)
	}

	rf.fields = FormFields{}
	rf.notification = rf.snackbar(models.SeveritySuccess, MsgTableCreated)
	rf.log.WithFields(logrus.Fields{
		"form":  rf.ID,
		"soBan": payload.Number,
		"zone":  payload.ZoneID,
	}).Info("table registered")
	rf.record(&out, "create_table", models.SeveritySuccess, fmt.Sprintf("%s (soBan=%s)", MsgTableCreated, payload.Number))
	out.messages = append(out.messages, live.Message{
		Event:     live.EventTableCreated,
		Component: ComponentForm,
		Data: map[string]interface{}{
			"soBan":     payload.Number,
			"soChoNgoi": payload.SeatCount,
			"soKhuVuc":  payload.ZoneID,
		},
	})
	return nil
}

// DismissNotification -> close the snackbar
func (rf *RegistrationForm) DismissNotification() {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.notification = nil
}

func (rf *RegistrationForm) Snapshot() FormSnapshot {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	snap := FormSnapshot{
		ID:          rf.ID,
		Fields:      rf.fields,
		ImageSize:   rf.fields.Image.Size(),
		ZoneOptions: rf.zoneOptionsLocked(),
		Submitting:  rf.submitting,
	}
	if rf.notification.Active(rf.now()) {
		n := *rf.notification
		snap.Notification = &n
	}
	return snap
}

func (rf *RegistrationForm) payloadLocked() (models.NewTable, error) {
	seatText := strings.TrimSpace(rf.fields.SeatCount)
	if seatText == "" {
		return models.NewTable{}, validationError("%s is required", models.FieldSeatCount)
	}
	seats, err := strconv.Atoi(seatText)
	if err != nil {
		return models.NewTable{}, validationError("%s must be a whole number", models.FieldSeatCount)
	}

	sub := submission{Number: rf.fields.Number, SeatCount: seats}
	if err := validate.Struct(sub); err != nil {
		if rf.fields.Number == "" {
			return models.NewTable{}, validationError("%s is required", models.FieldNumber)
		}
		return models.NewTable{}, validationError("%s must be at least 1", models.FieldSeatCount)
	}

	return models.NewTable{
		Number:    rf.fields.Number,
		SeatCount: seats,
		ZoneID:    rf.fields.ZoneID,
		Image:     rf.fields.Image,
	}, nil
}

func (rf *RegistrationForm) zoneOptionsLocked() []ZoneOption {
	seen := make(map[string]bool)
	opts := make([]ZoneOption, 0, len(models.RecognizedZones)+len(rf.zones))
	for _, code := range models.RecognizedZones {
		seen[code] = true
		opts = append(opts, ZoneOption{Value: code, Label: code})
	}
	for _, z := range rf.zones {
		if z.ID == "" || seen[z.ID] {
			continue
		}
		seen[z.ID] = true
		label := z.DisplayName
		if label == "" {
			label = z.ID
		}
		opts = append(opts, ZoneOption{Value: z.ID, Label: label})
	}
	return opts
}

func (rf *RegistrationForm) snackbar(severity, message string) *models.Notification {
	now := rf.now()
	expires := now.Add(rf.ttl)
	return &models.Notification{
		Severity:  severity,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: &expires,
	}
}

func (rf *RegistrationForm) record(out *outbox, action, severity, message string) {
	out.entries = append(out.entries, models.ActivityLog{
		Component:  ComponentForm,
		InstanceID: rf.ID,
		Action:     action,
		Severity:   severity,
		Message:    message,
		CreatedAt:  rf.now(),
	})
}
