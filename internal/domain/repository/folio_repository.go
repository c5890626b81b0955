package repository

// FolioRepository asigna consecutivos de folio por sucursal y serie.
// Next incrementa y devuelve el siguiente número de forma atómica: dos checkouts
// concurrentes nunca reciben el mismo folio. La secuencia tolera huecos (un
// checkout abortado quema su número).
type FolioRepository interface {
	Next(branchID, series string) (int64, error)
}
