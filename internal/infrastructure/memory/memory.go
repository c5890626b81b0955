// Package memory implementa todos los puertos de persistencia sobre mapas en
// memoria. Es el sustrato de las pruebas de aplicación (incluidas las de
// concurrencia) y permite levantar el servicio sin PostgreSQL.
//
// Semántica transaccional: el TxRunner serializa las transacciones con un mutex
// (mismo orden total que los bloqueos de fila en PostgreSQL) y toma un snapshot
// del estado antes de ejecutar; si la función retorna error se restaura el
// snapshot (rollback). Las escrituras fuera de transacción toman ese mismo mutex,
// así nunca caen dentro de la ventana snapshot→restore de una transacción ajena
// (un rollback solo deshace lo escrito por su propia transacción). Para que el
// snapshot sea barato, los repositorios guardan y devuelven copias: las entradas
// de los mapas se tratan como inmutables.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// Store contiene todo el estado en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products      map[string]*entity.Product
	branches      map[string]*entity.Branch
	stock         map[string]*entity.StockRecord // clave sucursal|producto
	movements     []*entity.StockMovement
	sales         map[string]*entity.Sale
	saleLines     map[string][]*entity.SaleLine
	shifts        map[string]*entity.Shift
	cashMovements map[string][]*entity.CashMovement
	transfers     map[string]*entity.Transfer
	folios        map[string]int64 // clave sucursal|serie
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]*entity.Product),
		branches:      make(map[string]*entity.Branch),
		stock:         make(map[string]*entity.StockRecord),
		sales:         make(map[string]*entity.Sale),
		saleLines:     make(map[string][]*entity.SaleLine),
		shifts:        make(map[string]*entity.Shift),
		cashMovements: make(map[string][]*entity.CashMovement),
		transfers:     make(map[string]*entity.Transfer),
		folios:        make(map[string]int64),
	}
}

func stockKey(branchID, productID string) string { return branchID + "|" + productID }

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.BranchRepository        = (*BranchRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.ShiftRepository         = (*ShiftRepo)(nil)
	_ repository.TransferRepository      = (*TransferRepo)(nil)
	_ repository.FolioRepository         = (*FolioRepo)(nil)
)

// ── Seed (catálogo de solo lectura y estado inicial para pruebas/demo) ───────

// SeedProduct registra un producto de catálogo.
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.products[p.ID] = &c
}

// SeedBranch registra una sucursal.
func (s *Store) SeedBranch(b *entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	s.branches[b.ID] = &c
}

// SeedStock fija el snapshot de stock de un producto en una sucursal.
func (s *Store) SeedStock(branchID, productID string, quantity decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey(branchID, productID)] = &entity.StockRecord{
		BranchID:  branchID,
		ProductID: productID,
		Quantity:  quantity,
		Reserved:  decimal.Zero,
		UpdatedAt: time.Now(),
	}
}

// ── snapshot / restore ───────────────────────────────────────────────────────

type snapshot struct {
	stock         map[string]*entity.StockRecord
	movements     []*entity.StockMovement
	sales         map[string]*entity.Sale
	saleLines     map[string][]*entity.SaleLine
	shifts        map[string]*entity.Shift
	cashMovements map[string][]*entity.CashMovement
	transfers     map[string]*entity.Transfer
	folios        map[string]int64
}

func copyMap[V any](m map[string]V) map[string]V {
	c := make(map[string]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		stock:         copyMap(s.stock),
		movements:     s.movements[:len(s.movements):len(s.movements)],
		sales:         copyMap(s.sales),
		saleLines:     copyMap(s.saleLines),
		shifts:        copyMap(s.shifts),
		cashMovements: copyMap(s.cashMovements),
		transfers:     copyMap(s.transfers),
		folios:        copyMap(s.folios),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = snap.stock
	s.movements = snap.movements
	s.sales = snap.sales
	s.saleLines = snap.saleLines
	s.shifts = snap.shifts
	s.cashMovements = snap.cashMovements
	s.transfers = snap.transfers
	s.folios = snap.folios
}

// writeLock serializa una escritura fuera de transacción con las transacciones
// en curso; dentro de una transacción el TxRunner ya sostiene txMu. Devuelve la
// función de unlock para usar con defer.
func (s *Store) writeLock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// ── ProductRepo / BranchRepo (solo lectura) ──────────────────────────────────

// ProductRepo adaptador en memoria de repository.ProductRepository.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

// GetByID obtiene un producto por ID (nil si no existe).
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// BranchRepo adaptador en memoria de repository.BranchRepository.
type BranchRepo struct{ s *Store }

// NewBranchRepository construye el adaptador.
func NewBranchRepository(s *Store) *BranchRepo { return &BranchRepo{s: s} }

// GetByID obtiene una sucursal por ID (nil si no existe).
func (r *BranchRepo) GetByID(id string) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

// ── StockRepo ────────────────────────────────────────────────────────────────

// StockRepo adaptador en memoria de repository.StockRepository.
type StockRepo struct {
	s    *Store
	inTx bool
}

// NewStockRepository construye el adaptador.
func NewStockRepository(s *Store) *StockRepo { return &StockRepo{s: s} }

// Get obtiene el snapshot; si no existe devuelve un registro en cero.
func (r *StockRepo) Get(branchID, productID string) (*entity.StockRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.stock[stockKey(branchID, productID)]
	if !ok {
		return &entity.StockRecord{BranchID: branchID, ProductID: productID, Quantity: decimal.Zero, Reserved: decimal.Zero}, nil
	}
	c := *rec
	return &c, nil
}

// GetForUpdate equivale a Get: las transacciones ya están serializadas por el
// mutex del TxRunner.
func (r *StockRepo) GetForUpdate(branchID, productID string) (*entity.StockRecord, error) {
	return r.Get(branchID, productID)
}

// Upsert guarda una copia del registro.
func (r *StockRepo) Upsert(record *entity.StockRecord) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *record
	r.s.stock[stockKey(record.BranchID, record.ProductID)] = &c
	return nil
}

// ── StockMovementRepo ────────────────────────────────────────────────────────

// StockMovementRepo adaptador en memoria de repository.StockMovementRepository.
type StockMovementRepo struct {
	s    *Store
	inTx bool
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

// Create agrega el movimiento al ledger.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *movement
	r.s.movements = append(r.s.movements, &c)
	return nil
}

// ListByProduct lista el ledger de un producto en una sucursal, más reciente primero.
func (r *StockMovementRepo) ListByProduct(branchID, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.BranchID != branchID || m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		c := *m
		list = append(list, &c)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ── SaleRepo ─────────────────────────────────────────────────────────────────

// SaleRepo adaptador en memoria de repository.SaleRepository.
type SaleRepo struct {
	s    *Store
	inTx bool
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s: s} }

// Create persiste la venta.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *sale
	r.s.sales[sale.ID] = &c
	return nil
}

// CreateLine persiste una línea de venta.
func (r *SaleRepo) CreateLine(line *entity.SaleLine) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *line
	r.s.saleLines[line.SaleID] = append(r.s.saleLines[line.SaleID], &c)
	return nil
}

// GetByID obtiene una venta (nil si no existe).
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	c := *sale
	return &c, nil
}

// GetByIDForUpdate equivale a GetByID bajo la serialización del TxRunner.
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

// GetLines obtiene las líneas de una venta.
func (r *SaleRepo) GetLines(saleID string) ([]*entity.SaleLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lines := r.s.saleLines[saleID]
	out := make([]*entity.SaleLine, 0, len(lines))
	for _, l := range lines {
		c := *l
		out = append(out, &c)
	}
	return out, nil
}

// Update persiste la transición de estado de la venta.
func (r *SaleRepo) Update(sale *entity.Sale) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *sale
	r.s.sales[sale.ID] = &c
	return nil
}

// TotalsByShift suma totales de ventas completadas del turno por método de pago.
func (r *SaleRepo) TotalsByShift(shiftID string) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := map[string]decimal.Decimal{
		entity.PaymentEfectivo:      decimal.Zero,
		entity.PaymentTarjeta:       decimal.Zero,
		entity.PaymentTransferencia: decimal.Zero,
	}
	for _, sale := range r.s.sales {
		if sale.ShiftID != shiftID || sale.Status != entity.SaleCompletada {
			continue
		}
		totals[sale.PaymentMethod] = totals[sale.PaymentMethod].Add(sale.Total)
	}
	return totals, nil
}

// ── ShiftRepo ────────────────────────────────────────────────────────────────

// ShiftRepo adaptador en memoria de repository.ShiftRepository.
type ShiftRepo struct {
	s    *Store
	inTx bool
}

// NewShiftRepository construye el adaptador.
func NewShiftRepository(s *Store) *ShiftRepo { return &ShiftRepo{s: s} }

// Create persiste el turno; ErrConflict si la caja ya tiene un turno abierto
// (la verificación y la inserción comparten el lock, sin ventana de carrera).
func (r *ShiftRepo) Create(shift *entity.Shift) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.shifts {
		if existing.TillID == shift.TillID && existing.Status == entity.ShiftAbierto {
			return domain.ErrConflict
		}
	}
	c := *shift
	r.s.shifts[shift.ID] = &c
	return nil
}

// GetByID obtiene un turno (nil si no existe).
func (r *ShiftRepo) GetByID(id string) (*entity.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	shift, ok := r.s.shifts[id]
	if !ok {
		return nil, nil
	}
	c := *shift
	return &c, nil
}

// GetByIDForUpdate equivale a GetByID bajo la serialización del TxRunner.
func (r *ShiftRepo) GetByIDForUpdate(id string) (*entity.Shift, error) {
	return r.GetByID(id)
}

// GetOpenByTill devuelve el turno abierto de una caja, o nil.
func (r *ShiftRepo) GetOpenByTill(tillID string) (*entity.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, shift := range r.s.shifts {
		if shift.TillID == tillID && shift.Status == entity.ShiftAbierto {
			c := *shift
			return &c, nil
		}
	}
	return nil, nil
}

// Update persiste el turno.
func (r *ShiftRepo) Update(shift *entity.Shift) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shifts[shift.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *shift
	r.s.shifts[shift.ID] = &c
	return nil
}

// CreateCashMovement agrega un movimiento manual de caja.
func (r *ShiftRepo) CreateCashMovement(movement *entity.CashMovement) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *movement
	r.s.cashMovements[movement.ShiftID] = append(r.s.cashMovements[movement.ShiftID], &c)
	return nil
}

// ListCashMovements lista los movimientos manuales de un turno.
func (r *ShiftRepo) ListCashMovements(shiftID string) ([]*entity.CashMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	movements := r.s.cashMovements[shiftID]
	out := make([]*entity.CashMovement, 0, len(movements))
	for _, m := range movements {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

// ── TransferRepo ─────────────────────────────────────────────────────────────

// TransferRepo adaptador en memoria de repository.TransferRepository.
type TransferRepo struct {
	s    *Store
	inTx bool
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(s *Store) *TransferRepo { return &TransferRepo{s: s} }

// Create persiste el traslado.
func (r *TransferRepo) Create(transfer *entity.Transfer) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *transfer
	r.s.transfers[transfer.ID] = &c
	return nil
}

// GetByID obtiene un traslado (nil si no existe).
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	transfer, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	c := *transfer
	return &c, nil
}

// Transition compara-y-guarda: solo persiste si el estado actual sigue siendo el
// esperado; si otra transición ganó la carrera retorna ErrConflict.
func (r *TransferRepo) Transition(transfer *entity.Transfer, expectedStatus string) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.transfers[transfer.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Status != expectedStatus {
		return domain.ErrConflict
	}
	c := *transfer
	r.s.transfers[transfer.ID] = &c
	return nil
}

// ── FolioRepo ────────────────────────────────────────────────────────────────

// FolioRepo adaptador en memoria de repository.FolioRepository.
type FolioRepo struct {
	s    *Store
	inTx bool
}

// NewFolioRepository construye el adaptador.
func NewFolioRepository(s *Store) *FolioRepo { return &FolioRepo{s: s} }

// Next incrementa y devuelve el consecutivo de la sucursal+serie bajo el lock.
func (r *FolioRepo) Next(branchID, series string) (int64, error) {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := branchID + "|" + series
	r.s.folios[key]++
	return r.s.folios[key], nil
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// TxRunner serializa transacciones sobre el Store con snapshot/restore como
// rollback. Implementa los puertos TxRunner de stock, ventas, traslados y turnos.
// Los repositorios que entrega a fn van marcados como transaccionales: escriben
// sin retomar txMu, que el runner ya sostiene.
type TxRunner struct{ s *Store }

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (r *TxRunner) run(fn func() error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	snap := r.s.snapshot()
	if err := fn(); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// Run transacción del ledger de stock.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.run(func() error {
		return fn(&StockMovementRepo{s: r.s, inTx: true}, &StockRepo{s: r.s, inTx: true})
	})
}

// RunSale transacción de checkout/cancelación.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	folioRepo repository.FolioRepository,
	shiftRepo repository.ShiftRepository,
) error) error {
	return r.run(func() error {
		return fn(
			&StockMovementRepo{s: r.s, inTx: true},
			&StockRepo{s: r.s, inTx: true},
			&SaleRepo{s: r.s, inTx: true},
			&FolioRepo{s: r.s, inTx: true},
			&ShiftRepo{s: r.s, inTx: true},
		)
	})
}

// RunTransfer transacción de transiciones de traslado.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
) error) error {
	return r.run(func() error {
		return fn(&StockMovementRepo{s: r.s, inTx: true}, &StockRepo{s: r.s, inTx: true}, &TransferRepo{s: r.s, inTx: true})
	})
}

// RunShift transacción sobre un turno: cierre y movimientos manuales de caja
// comparten unidad de commit con el lock del turno.
func (r *TxRunner) RunShift(ctx context.Context, fn func(
	shiftRepo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.run(func() error {
		return fn(&ShiftRepo{s: r.s, inTx: true}, &SaleRepo{s: r.s, inTx: true})
	})
}
