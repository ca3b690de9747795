package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Renal37/fuel-orders/internal/models"
	mock_models "github.com/Renal37/fuel-orders/internal/models/mocks"
	"github.com/Renal37/fuel-orders/internal/utils"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)

type recordedAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (r *recordedAudit) Record(entry models.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordedAudit) all() []models.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditEntry(nil), r.entries...)
}

func sessionWith(roles ...models.Role) *models.Session {
	expiry := testNow.Add(time.Hour)
	return &models.Session{Token: "token", Subject: "user@example.com", Roles: roles, Expiry: &expiry}
}

func newTestOrderService(backend models.OrderBackend) (*OrderService, *recordedAudit) {
	audit := &recordedAudit{}
	service := NewOrderService(backend, audit)
	service.now = func() time.Time { return testNow }
	return service, audit
}

func validSubmission() models.NewOrder {
	return models.NewOrder{
		TailNumber:          "A6-EUA",
		AirportIcao:         "OMDB",
		RequestedFuelVolume: 5000,
		DeliveryWindowStart: utils.NewTimestamp(testNow.Add(time.Hour)),
		DeliveryWindowEnd:   utils.NewTimestamp(testNow.Add(2 * time.Hour)),
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(o *models.NewOrder)
		wantFields []string
	}{
		{name: "valid", mutate: func(o *models.NewOrder) {}},
		{name: "blank tail number", mutate: func(o *models.NewOrder) { o.TailNumber = "  " }, wantFields: []string{"tailNumber"}},
		{name: "empty airport", mutate: func(o *models.NewOrder) { o.AirportIcao = "" }, wantFields: []string{"airportIcao"}},
		{name: "volume at bound", mutate: func(o *models.NewOrder) { o.RequestedFuelVolume = 1000 }, wantFields: []string{"requestedFuelVolume"}},
		{name: "volume just above bound", mutate: func(o *models.NewOrder) { o.RequestedFuelVolume = 1000.5 }},
		{
			name:       "end equals start",
			mutate:     func(o *models.NewOrder) { o.DeliveryWindowEnd = o.DeliveryWindowStart },
			wantFields: []string{"deliveryWindowEnd"},
		},
		{
			name:       "missing window",
			mutate:     func(o *models.NewOrder) { o.DeliveryWindowStart = utils.Timestamp{} },
			wantFields: []string{"deliveryWindowEnd"},
		},
		{
			name: "every check fails",
			mutate: func(o *models.NewOrder) {
				*o = models.NewOrder{RequestedFuelVolume: 10}
			},
			wantFields: []string{"tailNumber", "airportIcao", "requestedFuelVolume", "deliveryWindowEnd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validSubmission()
			tt.mutate(&order)

			err := ValidateSubmission(order)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, ErrInvalidInput)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestNormalizeSubmission(t *testing.T) {
	order := validSubmission()
	order.TailNumber = "  A6-EUA "
	order.AirportIcao = " omdb"

	normalized := NormalizeSubmission(order)

	assert.Equal(t, "A6-EUA", normalized.TailNumber)
	assert.Equal(t, "OMDB", normalized.AirportIcao)
}

func TestProposeAdvance(t *testing.T) {
	intent, err := ProposeAdvance("42", models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceIntent{OrderID: "42", From: models.StatusPending, To: models.StatusConfirmed}, intent)
	assert.Equal(t, "Are you sure you want to mark this order as CONFIRMED?", intent.Prompt())

	intent, err = ProposeAdvance("42", models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, intent.To)

	_, err = ProposeAdvance("42", models.StatusCompleted)
	assert.ErrorIs(t, err, ErrNoForwardTransition)

	_, err = ProposeAdvance("42", models.StatusCancelled)
	assert.ErrorIs(t, err, ErrNoForwardTransition)

	_, err = ProposeAdvance(" ", models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderServiceCreateOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	created := &models.Order{ID: "1", TailNumber: "A6-EUA", AirportIcao: "OMDB", Status: models.StatusPending}

	tests := []struct {
		name      string
		session   *models.Session
		order     func() models.NewOrder
		prepare   func(backend *mock_models.MockOrderBackend)
		wantErr   error
		wantAudit models.AuditOutcome
	}{
		{
			name:    "no session",
			session: nil,
			order:   validSubmission,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "wrong role",
			session: sessionWith(models.RoleOperationsManager),
			order:   validSubmission,
			wantErr: ErrForbidden,
		},
		{
			name:    "invalid submission",
			session: sessionWith(models.RoleAircraftOperator),
			order: func() models.NewOrder {
				o := validSubmission()
				o.RequestedFuelVolume = 0
				return o
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "start in the past",
			session: sessionWith(models.RoleAircraftOperator),
			order: func() models.NewOrder {
				o := validSubmission()
				o.DeliveryWindowStart = utils.NewTimestamp(testNow.Add(-time.Minute))
				return o
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "start within the current minute",
			session: sessionWith(models.RoleAircraftOperator),
			order: func() models.NewOrder {
				o := validSubmission()
				o.DeliveryWindowStart = utils.NewTimestamp(testNow.Truncate(time.Minute))
				return o
			},
			prepare: func(backend *mock_models.MockOrderBackend) {
				backend.EXPECT().CreateOrder(gomock.Any(), "token", gomock.Any()).Return(created, nil)
			},
			wantAudit: models.AuditOutcomeSucceeded,
		},
		{
			name:    "zone-less start is not checked against the server clock",
			session: sessionWith(models.RoleAircraftOperator),
			order: func() models.NewOrder {
				o := validSubmission()
				o.DeliveryWindowStart = mustParseTimestamp(t, "2026-02-28T20:00")
				o.DeliveryWindowEnd = mustParseTimestamp(t, "2026-02-28T22:00")
				return o
			},
			prepare: func(backend *mock_models.MockOrderBackend) {
				backend.EXPECT().CreateOrder(gomock.Any(), "token", gomock.Any()).Return(created, nil)
			},
			wantAudit: models.AuditOutcomeSucceeded,
		},
		{
			name:    "normalized order is sent",
			session: sessionWith(models.RoleAircraftOperator),
			order: func() models.NewOrder {
				o := validSubmission()
				o.AirportIcao = "omdb"
				return o
			},
			prepare: func(backend *mock_models.MockOrderBackend) {
				backend.EXPECT().CreateOrder(gomock.Any(), "token", validSubmission()).Return(created, nil)
			},
			wantAudit: models.AuditOutcomeSucceeded,
		},
		{
			name:    "backend failure",
			session: sessionWith(models.RoleAircraftOperator),
			order:   validSubmission,
			prepare: func(backend *mock_models.MockOrderBackend) {
				backend.EXPECT().CreateOrder(gomock.Any(), "token", gomock.Any()).Return(nil, errBackend)
			},
			wantErr:   errBackend,
			wantAudit: models.AuditOutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mock_models.NewMockOrderBackend(ctrl)
			if tt.prepare != nil {
				tt.prepare(backend)
			}

			service, audit := newTestOrderService(backend)

			order, err := service.CreateOrder(context.Background(), tt.session, tt.order())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, created, order)
			}

			entries := audit.all()
			if tt.wantAudit == "" {
				assert.Empty(t, entries)
				return
			}

			require.Len(t, entries, 1)
			assert.Equal(t, models.AuditActionCreate, entries[0].Action)
			assert.Equal(t, tt.wantAudit, entries[0].Outcome)
			assert.Equal(t, "user@example.com", entries[0].Actor)
		})
	}
}

var errBackend = errors.New("backend failed")

func TestOrderServiceListOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mock_models.NewMockOrderBackend(ctrl)
	service, _ := newTestOrderService(backend)
	manager := sessionWith(models.RoleOperationsManager)

	_, err := service.ListOrders(context.Background(), manager, models.OrderFilter{AirportIcao: "omdb"}, models.PageRequest{Size: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.ListOrders(context.Background(), manager, models.OrderFilter{}, models.PageRequest{Page: -1, Size: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.ListOrders(context.Background(), sessionWith(models.RoleAircraftOperator), models.OrderFilter{}, models.PageRequest{Size: 10})
	assert.ErrorIs(t, err, ErrForbidden)

	page := &models.Page[models.Order]{Content: []models.Order{{ID: "7"}}, Size: 10, TotalElements: 1, TotalPages: 1}
	backend.EXPECT().
		ListOrders(gomock.Any(), "token", models.OrderFilter{AirportIcao: "OMDB", TailNumber: "A6"}, models.PageRequest{Page: 0, Size: 10}).
		Return(page, nil)

	got, err := service.ListOrders(context.Background(), manager, models.OrderFilter{AirportIcao: "OMDB", TailNumber: " A6 "}, models.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, page, got)
}

func confirmWith(answer bool, err error) models.Confirmer {
	return models.ConfirmFunc(func(ctx context.Context, intent models.AdvanceIntent) (bool, error) {
		return answer, err
	})
}

func TestOrderServiceAdvanceStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pending := models.AdvanceIntent{OrderID: "9", From: models.StatusPending, To: models.StatusConfirmed}
	updated := &models.Order{ID: "9", Status: models.StatusConfirmed}
	errPrompt := errors.New("prompt closed")

	tests := []struct {
		name      string
		session   *models.Session
		intent    models.AdvanceIntent
		confirmer models.Confirmer
		prepare   func(backend *mock_models.MockOrderBackend)
		wantErr   error
		wantAudit models.AuditOutcome
	}{
		{
			name:      "operator cannot advance",
			session:   sessionWith(models.RoleAircraftOperator),
			intent:    pending,
			confirmer: confirmWith(true, nil),
			wantErr:   ErrForbidden,
		},
		{
			name:      "terminal status",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    models.AdvanceIntent{OrderID: "9", From: models.StatusCompleted, To: models.StatusCancelled},
			confirmer: confirmWith(true, nil),
			wantErr:   ErrNoForwardTransition,
		},
		{
			name:      "skipping a status",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    models.AdvanceIntent{OrderID: "9", From: models.StatusPending, To: models.StatusCompleted},
			confirmer: confirmWith(true, nil),
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "declined",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    pending,
			confirmer: confirmWith(false, nil),
			wantErr:   ErrAdvanceCancelled,
			wantAudit: models.AuditOutcomeCancelled,
		},
		{
			name:      "no confirmer",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    pending,
			wantErr:   ErrAdvanceCancelled,
			wantAudit: models.AuditOutcomeCancelled,
		},
		{
			name:      "confirmer failed",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    pending,
			confirmer: confirmWith(false, errPrompt),
			wantErr:   errPrompt,
		},
		{
			name:      "confirmed",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    pending,
			confirmer: confirmWith(true, nil),
			prepare: func(backend *mock_models.MockOrderBackend) {
				backend.EXPECT().UpdateStatus(gomock.Any(), "token", "9", models.StatusConfirmed).Return(updated, nil)
			},
			wantAudit: models.AuditOutcomeSucceeded,
		},
		{
			name:      "backend rejected",
			session:   sessionWith(models.RoleOperationsManager),
			intent:    pending,
			confirmer: confirmWith(true, nil),
			prepare: func(backend *mock_models.MockOrderBackend) {
				backend.EXPECT().UpdateStatus(gomock.Any(), "token", "9", models.StatusConfirmed).Return(nil, errBackend)
			},
			wantErr:   errBackend,
			wantAudit: models.AuditOutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mock_models.NewMockOrderBackend(ctrl)
			if tt.prepare != nil {
				tt.prepare(backend)
			}

			service, audit := newTestOrderService(backend)

			order, err := service.AdvanceStatus(context.Background(), tt.session, tt.intent, tt.confirmer)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, updated, order)
			}

			entries := audit.all()
			if tt.wantAudit == "" {
				assert.Empty(t, entries)
				return
			}

			require.Len(t, entries, 1)
			assert.Equal(t, models.AuditActionAdvance, entries[0].Action)
			assert.Equal(t, tt.wantAudit, entries[0].Outcome)
			assert.Equal(t, tt.intent.From, entries[0].FromStatus)
			assert.Equal(t, tt.intent.To, entries[0].ToStatus)
		})
	}
}

func TestOrderServiceAdvanceStatusRejectsDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mock_models.NewMockOrderBackend(ctrl)
	service, _ := newTestOrderService(backend)
	manager := sessionWith(models.RoleOperationsManager)
	intent := models.AdvanceIntent{OrderID: "9", From: models.StatusPending, To: models.StatusConfirmed}

	asked := make(chan struct{})
	answer := make(chan bool)
	slow := models.ConfirmFunc(func(ctx context.Context, intent models.AdvanceIntent) (bool, error) {
		close(asked)
		return <-answer, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := service.AdvanceStatus(context.Background(), manager, intent, slow)
		done <- err
	}()

	<-asked
	_, err := service.AdvanceStatus(context.Background(), manager, intent, confirmWith(true, nil))
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	answer <- false
	assert.ErrorIs(t, <-done, ErrAdvanceCancelled)
}

func mustParseTimestamp(t *testing.T, value string) utils.Timestamp {
	t.Helper()
	ts, err := utils.ParseTimestamp(value)
	require.NoError(t, err)
	return ts
}

func TestValidateWindowStart(t *testing.T) {
	assert.NoError(t, ValidateWindowStart(utils.NewTimestamp(testNow.Truncate(time.Minute)), testNow))
	assert.ErrorIs(t, ValidateWindowStart(utils.NewTimestamp(testNow.Add(-time.Minute)), testNow), ErrInvalidInput)
}

func TestOrderServiceSkipsAuditWhenContextExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithDeadline(context.Background(), testNow)
	defer cancel()

	backend := mock_models.NewMockOrderBackend(ctrl)
	backend.EXPECT().CreateOrder(gomock.Any(), "token", gomock.Any()).Return(nil, context.DeadlineExceeded)
	backend.EXPECT().UpdateStatus(gomock.Any(), "token", "9", models.StatusConfirmed).Return(nil, context.DeadlineExceeded)

	service, audit := newTestOrderService(backend)

	_, err := service.CreateOrder(ctx, sessionWith(models.RoleAircraftOperator), validSubmission())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	intent := models.AdvanceIntent{OrderID: "9", From: models.StatusPending, To: models.StatusConfirmed}
	_, err = service.AdvanceStatus(ctx, sessionWith(models.RoleOperationsManager), intent, confirmWith(true, nil))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Empty(t, audit.all())
}
