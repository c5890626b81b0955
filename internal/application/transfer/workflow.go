// Package transfer implementa la máquina de estados de traslados entre
// sucursales. La reserva en origen se toma al solicitar, el débito físico ocurre
// al enviar (la reserva se consume con el débito) y el abono en destino al
// recibir. Toda transición se persiste de forma optimista: si otro actor ganó la
// carrera la transición pierde con ErrConflict.
package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// WorkflowUseCase opera el ciclo de vida de un traslado.
type WorkflowUseCase struct {
	txRunner     TransferTxRunner
	ledger       Ledger
	productRepo  repository.ProductRepository
	branchRepo   repository.BranchRepository
	transferRepo repository.TransferRepository
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	txRunner TransferTxRunner,
	ledger Ledger,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	transferRepo repository.TransferRepository,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		productRepo:  productRepo,
		branchRepo:   branchRepo,
		transferRepo: transferRepo,
	}
}

// RequestInput entrada para solicitar un traslado.
type RequestInput struct {
	ProductID      string
	Quantity       decimal.Decimal
	OriginBranchID string
	DestBranchID   string
	Reason         string
	RequesterID    string
}

// Request crea el traslado en estado solicitada y reserva la cantidad en la
// sucursal de origen. La reserva se valida contra el disponible al momento de la
// solicitud; el envío la vuelve a validar porque el stock pudo moverse entre
// aprobación y envío.
func (uc *WorkflowUseCase) Request(ctx context.Context, input RequestInput) (*entity.Transfer, error) {
	if input.ProductID == "" || input.OriginBranchID == "" || input.DestBranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.OriginBranchID == input.DestBranchID || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if product, err := uc.productRepo.GetByID(input.ProductID); err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	origin, _ := uc.branchRepo.GetByID(input.OriginBranchID)
	dest, _ := uc.branchRepo.GetByID(input.DestBranchID)
	if origin == nil || dest == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	transfer := &entity.Transfer{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		Quantity:       input.Quantity,
		OriginBranchID: input.OriginBranchID,
		DestBranchID:   input.DestBranchID,
		Status:         entity.TransferSolicitada,
		Reason:         input.Reason,
		RequestedBy:    input.RequesterID,
		RequestedAt:    now,
	}
	err := uc.txRunner.RunTransfer(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
	) error {
		if err := uc.ledger.ReserveInTx(stockRepo, input.OriginBranchID, input.ProductID, input.Quantity, now); err != nil {
			return err
		}
		return transferRepo.Create(transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// Approve transiciona solicitada → aprobada. Sin movimiento de stock.
func (uc *WorkflowUseCase) Approve(ctx context.Context, transferID, approverID string) (*entity.Transfer, error) {
	transfer, err := uc.get(transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != entity.TransferSolicitada {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	transfer.Status = entity.TransferAprobada
	transfer.ApprovedBy = approverID
	transfer.ApprovedAt = &now
	if err := uc.transferRepo.Transition(transfer, entity.TransferSolicitada); err != nil {
		return nil, err
	}
	return transfer, nil
}

// Ship transiciona aprobada → en_transito: libera la reserva en origen y debita
// la existencia física (un movimiento transferencia con delta negativo), en la
// misma transacción que el cambio de estado.
func (uc *WorkflowUseCase) Ship(ctx context.Context, transferID, shipperID string) (*entity.Transfer, error) {
	transfer, err := uc.get(transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != entity.TransferAprobada {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	err = uc.txRunner.RunTransfer(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
	) error {
		// La reserva se consume con el débito físico: primero se libera para que
		// la validación de disponible del movimiento no la cuente dos veces.
		if err := uc.ledger.ReleaseInTx(stockRepo, transfer.OriginBranchID, transfer.ProductID, transfer.Quantity, now); err != nil {
			return err
		}
		if _, err := uc.ledger.ApplyInTx(movRepo, stockRepo, stock.ApplyInput{
			BranchID:    transfer.OriginBranchID,
			ProductID:   transfer.ProductID,
			Type:        entity.MovementTransferencia,
			Delta:       transfer.Quantity.Neg(),
			ReferenceID: transfer.ID,
			ActorID:     shipperID,
		}, now); err != nil {
			return err
		}
		transfer.Status = entity.TransferEnTransito
		transfer.ShippedBy = shipperID
		transfer.ShippedAt = &now
		return transferRepo.Transition(transfer, entity.TransferAprobada)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// Receive transiciona en_transito → recibida (terminal): abona la existencia en
// la sucursal destino.
func (uc *WorkflowUseCase) Receive(ctx context.Context, transferID, receiverID string) (*entity.Transfer, error) {
	transfer, err := uc.get(transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != entity.TransferEnTransito {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	err = uc.txRunner.RunTransfer(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
	) error {
		if _, err := uc.ledger.ApplyInTx(movRepo, stockRepo, stock.ApplyInput{
			BranchID:    transfer.DestBranchID,
			ProductID:   transfer.ProductID,
			Type:        entity.MovementTransferencia,
			Delta:       transfer.Quantity,
			ReferenceID: transfer.ID,
			ActorID:     receiverID,
		}, now); err != nil {
			return err
		}
		transfer.Status = entity.TransferRecibida
		transfer.ReceivedBy = receiverID
		transfer.ReceivedAt = &now
		return transferRepo.Transition(transfer, entity.TransferEnTransito)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// Reject transiciona solicitada → rechazada (terminal) liberando la reserva.
// Sin movimiento físico de stock.
func (uc *WorkflowUseCase) Reject(ctx context.Context, transferID, reason, actorID string) (*entity.Transfer, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	transfer, err := uc.get(transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != entity.TransferSolicitada {
		return nil, domain.ErrConflict
	}
	return uc.closeReleasing(ctx, transfer, entity.TransferRechazada, reason)
}

// CancelTransfer transiciona solicitada|aprobada → cancelada (terminal) liberando
// la reserva. Una vez en_transito el traslado ya no puede cancelarse, solo
// recibirse.
func (uc *WorkflowUseCase) CancelTransfer(ctx context.Context, transferID, reason, actorID string) (*entity.Transfer, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	transfer, err := uc.get(transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != entity.TransferSolicitada && transfer.Status != entity.TransferAprobada {
		return nil, domain.ErrConflict
	}
	return uc.closeReleasing(ctx, transfer, entity.TransferCancelada, reason)
}

// GetTransfer obtiene un traslado por ID.
func (uc *WorkflowUseCase) GetTransfer(ctx context.Context, id string) (*entity.Transfer, error) {
	return uc.get(id)
}

func (uc *WorkflowUseCase) get(id string) (*entity.Transfer, error) {
	transfer, err := uc.transferRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

// closeReleasing cierra el traslado en un estado terminal sin movimiento físico,
// liberando la reserva de origen en la misma transacción.
func (uc *WorkflowUseCase) closeReleasing(ctx context.Context, transfer *entity.Transfer, terminal, reason string) (*entity.Transfer, error) {
	expected := transfer.Status
	now := time.Now()
	err := uc.txRunner.RunTransfer(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
	) error {
		if err := uc.ledger.ReleaseInTx(stockRepo, transfer.OriginBranchID, transfer.ProductID, transfer.Quantity, now); err != nil {
			return err
		}
		transfer.Status = terminal
		transfer.RejectionReason = reason
		transfer.ClosedAt = &now
		return transferRepo.Transition(transfer, expected)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}
