package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeInventoryRepo struct {
	variants    map[uint]*model.ProductVariant
	adjustments []model.StockAdjustment
	movements   map[uint][]model.StockMovement
	alerts      map[uint]*model.LowStockAlert
	nextAlertID uint
}

func newFakeInventoryRepo(variants ...*model.ProductVariant) *fakeInventoryRepo {
	f := &fakeInventoryRepo{
		variants:    map[uint]*model.ProductVariant{},
		movements:   map[uint][]model.StockMovement{},
		alerts:      map[uint]*model.LowStockAlert{},
		nextAlertID: 1,
	}
	for _, v := range variants {
		f.variants[v.VariantID] = v
	}
	return f
}

func (f *fakeInventoryRepo) ApplyAdjustment(ctx context.Context, adjustment *model.StockAdjustment) (*model.ProductVariant, error) {
	variant, ok := f.variants[adjustment.VariantID]
	if !ok {
		return nil, repodb.ErrVariantNotFound
	}
	if variant.StockQuantity+adjustment.Quantity < 0 {
		return nil, repodb.ErrNegativeStock
	}
	variant.StockQuantity += adjustment.Quantity
	f.adjustments = append(f.adjustments, *adjustment)
	f.movements[variant.VariantID] = append(f.movements[variant.VariantID], model.StockMovement{
		VariantID: variant.VariantID,
		Type:      model.MovementTypeAdjustment,
		Quantity:  adjustment.Quantity,
	})
	return variant, nil
}

func (f *fakeInventoryRepo) ListAdjustments(ctx context.Context) ([]model.StockAdjustment, error) {
	return f.adjustments, nil
}

func (f *fakeInventoryRepo) ListMovementsByVariant(ctx context.Context, variantID uint) ([]model.StockMovement, error) {
	return f.movements[variantID], nil
}

func (f *fakeInventoryRepo) GetActiveAlertByVariant(ctx context.Context, variantID uint) (*model.LowStockAlert, error) {
	for _, alert := range f.alerts {
		if alert.VariantID == variantID && alert.Status == model.AlertStatusActive {
			return alert, nil
		}
	}
	return nil, nil
}

func (f *fakeInventoryRepo) CreateAlert(ctx context.Context, alert *model.LowStockAlert) error {
	alert.AlertID = f.nextAlertID
	f.nextAlertID++
	f.alerts[alert.AlertID] = alert
	return nil
}

func (f *fakeInventoryRepo) GetAlertByID(ctx context.Context, alertID uint) (*model.LowStockAlert, error) {
	alert, ok := f.alerts[alertID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return alert, nil
}

func (f *fakeInventoryRepo) ListAlertsByStatus(ctx context.Context, status model.AlertStatus) ([]model.LowStockAlert, error) {
	var out []model.LowStockAlert
	for _, alert := range f.alerts {
		if alert.Status == status {
			out = append(out, *alert)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) AcknowledgeAlert(ctx context.Context, alertID, userID uint) error {
	if alert, ok := f.alerts[alertID]; ok {
		alert.Status = model.AlertStatusAcknowledged
		alert.AcknowledgedBy = &userID
	}
	return nil
}

func (f *fakeInventoryRepo) ResolveAlert(ctx context.Context, alertID uint) error {
	if alert, ok := f.alerts[alertID]; ok {
		alert.Status = model.AlertStatusResolved
	}
	return nil
}

func newInventoryService(repo *fakeInventoryRepo, variants *fakeVariantRepo) IInventoryService {
	return NewInventoryService(repo, variants, 10, nil)
}

func TestAdjust_OpensAlertAtThreshold(t *testing.T) {
	variant := variantPriced(1, "99.99", 15)
	repo := newFakeInventoryRepo(variant)
	svc := newInventoryService(repo, newFakeVariantRepo(variant))

	got, err := svc.Adjust(context.Background(), &model.StockAdjustment{
		VariantID: 1, Type: model.AdjustmentTypeOut, Quantity: -5, UserID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)

	alerts, err := svc.ListAlerts(context.Background(), model.AlertStatusActive)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, uint(1), alerts[0].VariantID)
	assert.Equal(t, 10, alerts[0].CurrentStock)
}

func TestAdjust_NoDuplicateActiveAlert(t *testing.T) {
	variant := variantPriced(1, "99.99", 10)
	repo := newFakeInventoryRepo(variant)
	svc := newInventoryService(repo, newFakeVariantRepo(variant))

	_, err := svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Type: model.AdjustmentTypeOut, Quantity: -1, UserID: 1})
	require.NoError(t, err)
	_, err = svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Type: model.AdjustmentTypeOut, Quantity: -1, UserID: 1})
	require.NoError(t, err)

	alerts, err := svc.ListAlerts(context.Background(), model.AlertStatusActive)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestAdjust_RestockResolvesAlert(t *testing.T) {
	variant := variantPriced(1, "99.99", 5)
	repo := newFakeInventoryRepo(variant)
	svc := newInventoryService(repo, newFakeVariantRepo(variant))

	_, err := svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Type: model.AdjustmentTypeOut, Quantity: -1, UserID: 1})
	require.NoError(t, err)
	_, err = svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Type: model.AdjustmentTypeIn, Quantity: 50, UserID: 1})
	require.NoError(t, err)

	active, err := svc.ListAlerts(context.Background(), model.AlertStatusActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	resolved, err := svc.ListAlerts(context.Background(), model.AlertStatusResolved)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestAdjust_RejectsNegativeResult(t *testing.T) {
	variant := variantPriced(1, "99.99", 3)
	repo := newFakeInventoryRepo(variant)
	svc := newInventoryService(repo, newFakeVariantRepo(variant))

	_, err := svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Type: model.AdjustmentTypeOut, Quantity: -5, UserID: 1})
	assert.Equal(t, apperr.ConflictCode, apperr.CodeOf(err))
	assert.Equal(t, 3, variant.StockQuantity)
}

func TestAdjust_ZeroQuantity(t *testing.T) {
	svc := newInventoryService(newFakeInventoryRepo(), newFakeVariantRepo())

	_, err := svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Quantity: 0, UserID: 1})
	assert.Equal(t, apperr.BadRequestCode, apperr.CodeOf(err))
}

func TestAdjust_UnknownVariant(t *testing.T) {
	svc := newInventoryService(newFakeInventoryRepo(), newFakeVariantRepo())

	_, err := svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 9, Quantity: 1, UserID: 1})
	assert.Equal(t, apperr.NotFoundCode, apperr.CodeOf(err))
}

func TestAcknowledgeAndResolveAlert(t *testing.T) {
	variant := variantPriced(1, "99.99", 10)
	repo := newFakeInventoryRepo(variant)
	svc := newInventoryService(repo, newFakeVariantRepo(variant))

	_, err := svc.Adjust(context.Background(), &model.StockAdjustment{VariantID: 1, Type: model.AdjustmentTypeOut, Quantity: -1, UserID: 1})
	require.NoError(t, err)

	alert, err := svc.AcknowledgeAlert(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusAcknowledged, alert.Status)
	require.NotNil(t, alert.AcknowledgedBy)
	assert.Equal(t, uint(7), *alert.AcknowledgedBy)

	// acknowledged 不能再 acknowledge
	_, err = svc.AcknowledgeAlert(context.Background(), 1, 7)
	assert.Equal(t, apperr.ConflictCode, apperr.CodeOf(err))

	alert, err = svc.ResolveAlert(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusResolved, alert.Status)

	// resolved 是終態
	_, err = svc.ResolveAlert(context.Background(), 1)
	assert.Equal(t, apperr.ConflictCode, apperr.CodeOf(err))
}

func TestStockLevels(t *testing.T) {
	low := variantPriced(1, "99.99", 3)
	ok := variantPriced(2, "49.99", 50)
	untracked := variantPriced(3, "19.99", 0)
	untracked.TrackInventory = false
	svc := newInventoryService(newFakeInventoryRepo(), newFakeVariantRepo(low, ok, untracked))

	levels, err := svc.StockLevels(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 2)

	byID := map[uint]StockLevel{}
	for _, l := range levels {
		byID[l.VariantID] = l
	}
	assert.True(t, byID[1].LowStock)
	assert.False(t, byID[2].LowStock)
}
