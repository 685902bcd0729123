package fulfillment_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/surtika-api/internal/application/fulfillment"
	"github.com/jhoicas/surtika-api/internal/application/inventory"
	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: stock + documentos bajo el mismo store, con rollback
// transaccional para probar el todo-o-nada del completado.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	batches   map[string]*entity.Batch
	details   map[string]*entity.InventoryDetail
	movements []*entity.InventoryMovement
	movByKey  map[string]string
	nextMovID int
	sales     map[string]*entity.SalesOrder
	stockOuts map[string]*entity.StockOutOrder
	products  map[string]*entity.Product
}

func newMemStore() *memStore {
	return &memStore{
		batches:   make(map[string]*entity.Batch),
		details:   make(map[string]*entity.InventoryDetail),
		movByKey:  make(map[string]string),
		sales:     make(map[string]*entity.SalesOrder),
		stockOuts: make(map[string]*entity.StockOutOrder),
		products:  make(map[string]*entity.Product),
	}
}

func (s *memStore) addProduct(id string) {
	s.products[id] = &entity.Product{ID: id, Code: "P-" + id, Name: "Producto " + id}
}

func (s *memStore) addBatch(id, productID string, onHand, onShelf int64, expiry *time.Time) {
	s.batches[id] = &entity.Batch{
		ID:         id,
		Code:       "C-" + id,
		ProductID:  productID,
		ExpiryDate: expiry,
		Status:     entity.BatchStatusActive,
		CostPrice:  decimal.NewFromInt(100),
		CreatedAt:  time.Now(),
	}
	s.details[id] = &entity.InventoryDetail{
		ID:              "det-" + id,
		BatchID:         id,
		QuantityOnHand:  decimal.NewFromInt(onHand),
		QuantityOnShelf: decimal.NewFromInt(onShelf),
	}
}

type storeSnapshot struct {
	details   map[string]entity.InventoryDetail
	sales     map[string]entity.SalesOrder
	stockOuts map[string]entity.StockOutOrder
	movCount  int
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		details:   make(map[string]entity.InventoryDetail, len(s.details)),
		sales:     make(map[string]entity.SalesOrder, len(s.sales)),
		stockOuts: make(map[string]entity.StockOutOrder, len(s.stockOuts)),
		movCount:  len(s.movements),
	}
	for id, d := range s.details {
		snap.details[id] = *d
	}
	for id, o := range s.sales {
		snap.sales[id] = *o
	}
	for id, o := range s.stockOuts {
		snap.stockOuts[id] = *o
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	for id, d := range snap.details {
		copied := d
		s.details[id] = &copied
	}
	s.sales = make(map[string]*entity.SalesOrder, len(snap.sales))
	for id, o := range snap.sales {
		copied := o
		s.sales[id] = &copied
	}
	s.stockOuts = make(map[string]*entity.StockOutOrder, len(snap.stockOuts))
	for id, o := range snap.stockOuts {
		copied := o
		s.stockOuts[id] = &copied
	}
	removed := s.movements[snap.movCount:]
	s.movements = s.movements[:snap.movCount]
	for _, m := range removed {
		delete(s.movByKey, m.CorrelationID+"|"+strconv.Itoa(m.LineNo))
	}
}

type memTxRunner struct{ store *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	if err := fn(&memBatchRepo{store: r.store}, &memMovementRepo{store: r.store}); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

func (r *memTxRunner) RunFulfillment(_ context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.InventoryMovementRepository,
	salesRepo repository.SalesOrderRepository,
	stockOutRepo repository.StockOutOrderRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(
		&memBatchRepo{store: r.store},
		&memMovementRepo{store: r.store},
		&memSalesRepo{store: r.store},
		&memStockOutRepo{store: r.store},
	)
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type memBatchRepo struct{ store *memStore }

func (r *memBatchRepo) Create(batch *entity.Batch) error {
	r.store.batches[batch.ID] = batch
	r.store.details[batch.ID] = &entity.InventoryDetail{ID: "det-" + batch.ID, BatchID: batch.ID}
	return nil
}

func (r *memBatchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := r.store.batches[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *memBatchRepo) GetByCode(code string) (*entity.Batch, error) {
	for _, b := range r.store.batches {
		if b.Code == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memBatchRepo) UpdateStatus(id, status string) error {
	b, ok := r.store.batches[id]
	if !ok {
		return domain.ErrBatchNotFound
	}
	b.Status = status
	return nil
}

func (r *memBatchRepo) ListEligibleByProduct(productID, source string) ([]entity.BatchStock, error) {
	var out []entity.BatchStock
	for id, b := range r.store.batches {
		if b.ProductID != productID || b.Status != entity.BatchStatusActive {
			continue
		}
		d := r.store.details[id]
		avail := d.QuantityOnShelf
		if source == "on_hand" {
			avail = d.QuantityOnHand
		}
		if avail.GreaterThan(decimal.Zero) {
			bc, dc := *b, *d
			out = append(out, entity.BatchStock{Batch: &bc, Detail: &dc})
		}
	}
	return out, nil
}

func (r *memBatchRepo) GetDetail(batchID string) (*entity.InventoryDetail, error) {
	d, ok := r.store.details[batchID]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *memBatchRepo) GetDetailForUpdate(batchID string) (*entity.InventoryDetail, error) {
	return r.GetDetail(batchID)
}

func (r *memBatchRepo) AdjustBalances(batchID string, deltaOnHand, deltaOnShelf decimal.Decimal) (*entity.InventoryDetail, error) {
	d, ok := r.store.details[batchID]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	newHand := d.QuantityOnHand.Add(deltaOnHand)
	newShelf := d.QuantityOnShelf.Add(deltaOnShelf)
	if newHand.IsNegative() || newShelf.IsNegative() {
		return nil, domain.ErrNegativeBalance
	}
	d.QuantityOnHand = newHand
	d.QuantityOnShelf = newShelf
	copied := *d
	return &copied, nil
}

type memMovementRepo struct{ store *memStore }

func (r *memMovementRepo) Append(m *entity.InventoryMovement) (string, error) {
	key := m.CorrelationID + "|" + strconv.Itoa(m.LineNo)
	if existing, ok := r.store.movByKey[key]; ok {
		return existing, nil
	}
	r.store.nextMovID++
	copied := *m
	copied.ID = "mov-" + strconv.Itoa(r.store.nextMovID)
	r.store.movements = append(r.store.movements, &copied)
	r.store.movByKey[key] = copied.ID
	return copied.ID, nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByBatch(batchID string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.store.movements {
		if m.BatchID == batchID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListByProduct(productID string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.store.movements {
		if b, ok := r.store.batches[m.BatchID]; ok && b.ProductID == productID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Reconcile(batchID string) (decimal.Decimal, decimal.Decimal, error) {
	dHand, dShelf := decimal.Zero, decimal.Zero
	for _, m := range r.store.movements {
		if m.BatchID == batchID {
			dHand = dHand.Add(m.DeltaOnHand)
			dShelf = dShelf.Add(m.DeltaOnShelf)
		}
	}
	return dHand, dShelf, nil
}

type memSalesRepo struct{ store *memStore }

func (r *memSalesRepo) Create(order *entity.SalesOrder) error {
	for _, o := range r.store.sales {
		if o.Code == order.Code {
			return domain.ErrDuplicate
		}
	}
	copied := *order
	r.store.sales[order.ID] = &copied
	return nil
}

func (r *memSalesRepo) GetByID(id string) (*entity.SalesOrder, error) {
	o, ok := r.store.sales[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (r *memSalesRepo) GetForUpdate(id string) (*entity.SalesOrder, error) {
	return r.GetByID(id)
}

func (r *memSalesRepo) UpdateStatus(id, expected, next string, completedAt *time.Time) (bool, error) {
	o, ok := r.store.sales[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = next
	if completedAt != nil {
		o.CompletedAt = completedAt
	}
	return true, nil
}

func (r *memSalesRepo) List(status string, _, _ int) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range r.store.sales {
		if status == "" || o.Status == status {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memStockOutRepo struct{ store *memStore }

func (r *memStockOutRepo) Create(order *entity.StockOutOrder) error {
	for _, o := range r.store.stockOuts {
		if o.Code == order.Code {
			return domain.ErrDuplicate
		}
	}
	copied := *order
	r.store.stockOuts[order.ID] = &copied
	return nil
}

func (r *memStockOutRepo) GetByID(id string) (*entity.StockOutOrder, error) {
	o, ok := r.store.stockOuts[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (r *memStockOutRepo) GetForUpdate(id string) (*entity.StockOutOrder, error) {
	return r.GetByID(id)
}

func (r *memStockOutRepo) UpdateStatus(id, expected, next string, completedAt *time.Time) (bool, error) {
	o, ok := r.store.stockOuts[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = next
	if completedAt != nil {
		o.CompletedAt = completedAt
	}
	return true, nil
}

func (r *memStockOutRepo) List(status string, _, _ int) ([]*entity.StockOutOrder, error) {
	var out []*entity.StockOutOrder
	for _, o := range r.store.stockOuts {
		if status == "" || o.Status == status {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *memProductRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func setup(t *testing.T) (*memStore, *fulfillment.UseCase) {
	t.Helper()
	store := newMemStore()
	runner := &memTxRunner{store: store}
	orch := inventory.NewMovementOrchestrator(runner)
	uc := fulfillment.NewUseCase(
		runner,
		&memProductRepo{store: store},
		&memSalesRepo{store: store},
		&memStockOutRepo{store: store},
		orch,
	)
	return store, uc
}

// createPendingSale crea una orden de venta y la lleva a pending.
func createPendingSale(t *testing.T, uc *fulfillment.UseCase, code string, lines []entity.OrderLine) *entity.SalesOrder {
	t.Helper()
	order, err := uc.CreateSalesOrder(context.Background(), fulfillment.CreateSalesOrderInput{
		Code:    code,
		ActorID: "vendedor-1",
		Lines:   lines,
	})
	require.NoError(t, err)
	require.NoError(t, uc.SubmitSalesOrder(context.Background(), order.ID))
	return order
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSalesOrder_EmpiezaEnDraftConTotal(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")

	order, err := uc.CreateSalesOrder(context.Background(), fulfillment.CreateSalesOrderInput{
		Code: "V-001",
		Lines: []entity.OrderLine{
			{ProductID: "p1", Quantity: qty(3), UnitPrice: decimal.NewFromInt(1500)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, order.Status)
	assert.Equal(t, "4500", order.Total.String())
	assert.NotEmpty(t, order.Lines[0].ID)
}

func TestCreateSalesOrder_Validaciones(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	ctx := context.Background()

	_, err := uc.CreateSalesOrder(ctx, fulfillment.CreateSalesOrderInput{Code: "V-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.CreateSalesOrder(ctx, fulfillment.CreateSalesOrderInput{
		Code:  "V-2",
		Lines: []entity.OrderLine{{ProductID: "p1", Quantity: qty(0)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.CreateSalesOrder(ctx, fulfillment.CreateSalesOrderInput{
		Code:  "V-3",
		Lines: []entity.OrderLine{{ProductID: "fantasma", Quantity: qty(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")
}

func TestTransiciones_SoloLasPermitidas(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	ctx := context.Background()

	order, err := uc.CreateSalesOrder(ctx, fulfillment.CreateSalesOrderInput{
		Code:  "V-001",
		Lines: []entity.OrderLine{{ProductID: "p1", Quantity: qty(1)}},
	})
	require.NoError(t, err)

	// draft -> approved no es válido (debe pasar por pending).
	err = uc.ApproveSalesOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, uc.SubmitSalesOrder(ctx, order.ID))
	require.NoError(t, uc.ApproveSalesOrder(ctx, order.ID))

	// Cancelar una orden aprobada sí es válido.
	require.NoError(t, uc.CancelSalesOrder(ctx, order.ID))

	// Estado terminal: nada más se permite.
	err = uc.SubmitSalesOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Completado de venta: FEFO sobre estante, todo-o-nada
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteSalesOrder_DescuentaPorFEFO(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	// Dos lotes: el que vence primero debe agotarse primero.
	store.addBatch("b-tarde", "p1", 0, 5, date("2026-03-01"))
	store.addBatch("b-pronto", "p1", 0, 3, date("2026-01-15"))

	order := createPendingSale(t, uc, "V-001", []entity.OrderLine{
		{ProductID: "p1", Quantity: qty(6), UnitPrice: decimal.NewFromInt(1000)},
	})

	report, err := uc.CompleteSalesOrder(context.Background(), order.ID, "vendedor-1")
	require.NoError(t, err)
	assert.Nil(t, report)

	assert.Equal(t, entity.OrderStatusCompleted, store.sales[order.ID].Status)
	require.NotNil(t, store.sales[order.ID].CompletedAt)

	// b-pronto agotado (3), el resto (3) de b-tarde.
	assert.Equal(t, "0", store.details["b-pronto"].QuantityOnShelf.String())
	assert.Equal(t, "2", store.details["b-tarde"].QuantityOnShelf.String())

	// Asientos OUT con correlación = ID del documento.
	require.Len(t, store.movements, 2)
	for _, m := range store.movements {
		assert.Equal(t, entity.MovementTypeOUT, m.Type)
		assert.Equal(t, order.ID, m.CorrelationID)
		assert.Equal(t, "venta V-001", m.Reason)
	}
}

func TestCompleteSalesOrder_FaltanteNoDescuentaNada(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	store.addProduct("p2")
	store.addBatch("b1", "p1", 0, 10, nil)
	store.addBatch("b2", "p2", 0, 1, nil)

	order := createPendingSale(t, uc, "V-002", []entity.OrderLine{
		{ProductID: "p1", Quantity: qty(5)},
		{ProductID: "p2", Quantity: qty(4)}, // solo hay 1
	})

	report, err := uc.CompleteSalesOrder(context.Background(), order.ID, "vendedor-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Reporte itemizado del faltante.
	require.NotNil(t, report)
	assert.Equal(t, order.ID, report.DocumentID)
	require.Len(t, report.Shortages, 1)
	assert.Equal(t, "p2", report.Shortages[0].ProductID)
	assert.Equal(t, "4", report.Shortages[0].Requested.String())
	assert.Equal(t, "1", report.Shortages[0].Available.String())

	// Nada se descontó, ni siquiera la línea satisfacible.
	assert.Equal(t, "10", store.details["b1"].QuantityOnShelf.String())
	assert.Equal(t, "1", store.details["b2"].QuantityOnShelf.String())
	assert.Empty(t, store.movements)
	assert.Equal(t, entity.OrderStatusPending, store.sales[order.ID].Status,
		"el estado no cambia en un completado rechazado")
}

func TestCompleteSalesOrder_TodosLosFaltantesEnUnReporte(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	store.addProduct("p2")
	// Ambos productos cortos: el reporte junta los dos, no corta en el primero.
	store.addBatch("b1", "p1", 0, 2, nil)
	store.addBatch("b2", "p2", 0, 1, nil)

	order := createPendingSale(t, uc, "V-003", []entity.OrderLine{
		{ProductID: "p1", Quantity: qty(5)},
		{ProductID: "p2", Quantity: qty(3)},
	})

	report, err := uc.CompleteSalesOrder(context.Background(), order.ID, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.NotNil(t, report)
	assert.Len(t, report.Shortages, 2, "cada línea corta aparece en el reporte")
}

func TestCompleteSalesOrder_RepetirDaAlreadyCompleted(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	store.addBatch("b1", "p1", 0, 10, nil)

	order := createPendingSale(t, uc, "V-004", []entity.OrderLine{
		{ProductID: "p1", Quantity: qty(4)},
	})

	_, err := uc.CompleteSalesOrder(context.Background(), order.ID, "")
	require.NoError(t, err)
	require.Len(t, store.movements, 1)

	// Segundo intento: error tipado, sin asientos ni descuentos nuevos.
	_, err = uc.CompleteSalesOrder(context.Background(), order.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Len(t, store.movements, 1, "el reintento no genera asientos")
	assert.Equal(t, "6", store.details["b1"].QuantityOnShelf.String(),
		"el reintento no vuelve a descontar")
}

func TestCompleteSalesOrder_DesdeDraftNoPermitido(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	store.addBatch("b1", "p1", 0, 10, nil)

	order, err := uc.CreateSalesOrder(context.Background(), fulfillment.CreateSalesOrderInput{
		Code:  "V-005",
		Lines: []entity.OrderLine{{ProductID: "p1", Quantity: qty(1)}},
	})
	require.NoError(t, err)

	_, err = uc.CompleteSalesOrder(context.Background(), order.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition,
		"draft no puede completarse directamente")
}

func TestCompleteSalesOrder_OrdenInexistente(t *testing.T) {
	_, uc := setup(t)
	_, err := uc.CompleteSalesOrder(context.Background(), "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Una orden sin líneas (dato preexistente: la creación las exige) se rechaza
// sin tocar estado ni libro.
func TestCompleteSalesOrder_SinLineasSeRechaza(t *testing.T) {
	store, uc := setup(t)
	store.sales["v-vacia"] = &entity.SalesOrder{
		ID:     "v-vacia",
		Code:   "V-VACIA",
		Status: entity.OrderStatusApproved,
	}

	report, err := uc.CompleteSalesOrder(context.Background(), "v-vacia", "")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Nil(t, report)
	assert.Equal(t, entity.OrderStatusApproved, store.sales["v-vacia"].Status, "el estado no cambia")
	assert.Empty(t, store.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestListSalesOrders_FiltraPorEstado(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	ctx := context.Background()

	lines := []entity.OrderLine{{ProductID: "p1", Quantity: qty(1)}}
	first, err := uc.CreateSalesOrder(ctx, fulfillment.CreateSalesOrderInput{Code: "V-001", Lines: lines})
	require.NoError(t, err)
	_, err = uc.CreateSalesOrder(ctx, fulfillment.CreateSalesOrderInput{Code: "V-002", Lines: lines})
	require.NoError(t, err)
	require.NoError(t, uc.SubmitSalesOrder(ctx, first.ID))

	pendientes, err := uc.ListSalesOrders(ctx, entity.OrderStatusPending, 20, 0)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, "V-001", pendientes[0].Code)

	todas, err := uc.ListSalesOrders(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	_, err = uc.ListSalesOrders(ctx, "bogus", 20, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "estado desconocido se rechaza")
}

func TestListStockOutOrders_FiltraPorEstado(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	ctx := context.Background()

	_, err := uc.CreateStockOutOrder(ctx, fulfillment.CreateStockOutOrderInput{
		Code:  "S-001",
		Lines: []entity.OrderLine{{ProductID: "p1", Quantity: qty(2)}},
	})
	require.NoError(t, err)

	borradores, err := uc.ListStockOutOrders(ctx, entity.OrderStatusDraft, 20, 0)
	require.NoError(t, err)
	require.Len(t, borradores, 1)
	assert.Equal(t, "S-001", borradores[0].Code)

	completadas, err := uc.ListStockOutOrders(ctx, entity.OrderStatusCompleted, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, completadas)
}

// ──────────────────────────────────────────────────────────────────────────────
// Completado de salida administrativa: FEFO sobre bodega
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteStockOutOrder_DebitaBodegaNoEstante(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	store.addBatch("b1", "p1", 8, 5, nil)

	ctx := context.Background()
	order, err := uc.CreateStockOutOrder(ctx, fulfillment.CreateStockOutOrderInput{
		Code:   "S-001",
		Reason: "donación",
		Lines:  []entity.OrderLine{{ProductID: "p1", Quantity: qty(6)}},
	})
	require.NoError(t, err)
	require.NoError(t, uc.SubmitStockOutOrder(ctx, order.ID))

	report, err := uc.CompleteStockOutOrder(ctx, order.ID, "bodeguero-1")
	require.NoError(t, err)
	assert.Nil(t, report)

	assert.Equal(t, "2", store.details["b1"].QuantityOnHand.String(), "la salida debita bodega")
	assert.Equal(t, "5", store.details["b1"].QuantityOnShelf.String(), "el estante queda intacto")

	require.Len(t, store.movements, 1)
	assert.Equal(t, "salida S-001: donación", store.movements[0].Reason)
}

func TestCompleteStockOutOrder_SoloCuentaBodega(t *testing.T) {
	store, uc := setup(t)
	store.addProduct("p1")
	// Mucho en estante pero poco en bodega: la salida administrativa debe faltar.
	store.addBatch("b1", "p1", 2, 50, nil)

	ctx := context.Background()
	order, err := uc.CreateStockOutOrder(ctx, fulfillment.CreateStockOutOrderInput{
		Code:  "S-002",
		Lines: []entity.OrderLine{{ProductID: "p1", Quantity: qty(10)}},
	})
	require.NoError(t, err)
	require.NoError(t, uc.SubmitStockOutOrder(ctx, order.ID))

	report, err := uc.CompleteStockOutOrder(ctx, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.NotNil(t, report)
	require.Len(t, report.Shortages, 1)
	assert.Equal(t, "2", report.Shortages[0].Available.String(),
		"solo el saldo de bodega cuenta para la salida")
}
