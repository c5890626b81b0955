package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
)

// El rollback de una transacción restaura solo sus propias escrituras: una
// escritura fuera de transacción lanzada en paralelo espera a que la
// transacción termine y sobrevive al rollback.
func TestTxRunner_RollbackNoBorraEscrituraConcurrente(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)

	errSimulado := errors.New("falla simulada")
	dentro := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), func(
			_ repository.StockMovementRepository,
			stockRepo repository.StockRepository,
		) error {
			close(dentro)
			if err := stockRepo.Upsert(&entity.StockRecord{
				BranchID: "suc-centro", ProductID: "prod-a",
				Quantity: decimal.NewFromInt(5), Reserved: decimal.Zero,
				UpdatedAt: time.Now(),
			}); err != nil {
				return err
			}
			time.Sleep(50 * time.Millisecond)
			return errSimulado
		})
	}()

	<-dentro
	// Mientras la transacción sigue en curso, Create debe bloquear hasta el
	// rollback y quedar fuera del snapshot restaurado.
	shifts := memory.NewShiftRepository(store)
	require.NoError(t, shifts.Create(&entity.Shift{
		ID: "turno-1", TillID: "caja-1", BranchID: "suc-centro", CashierID: "cajero-1",
		OpeningFloat: decimal.NewFromInt(500), Status: entity.ShiftAbierto, OpenedAt: time.Now(),
	}))

	require.ErrorIs(t, <-done, errSimulado)

	// El turno creado fuera de la transacción sobrevive.
	got, err := shifts.GetByID("turno-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.ShiftAbierto, got.Status)

	// La escritura de la transacción fallida sí se deshizo.
	rec, err := memory.NewStockRepository(store).Get("suc-centro", "prod-a")
	require.NoError(t, err)
	assert.True(t, rec.Quantity.IsZero())
}
