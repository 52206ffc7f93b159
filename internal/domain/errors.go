package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrCustomerNotFound = errors.New("cliente no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")

	// ErrConfirmRequired: el tiquete está agotado y el check-in requiere
	// confirmación explícita del staff (force=true). No es un fallo: es una
	// puerta de decisión del usuario y no deja ninguna mutación aplicada.
	ErrConfirmRequired = errors.New("tiquete agotado: se requiere confirmación")

	// ErrConfirmFlagMissing: las acciones destructivas (borrado individual o
	// por lote) exigen el flag de confirmación en dos pasos.
	ErrConfirmFlagMissing = errors.New("acción destructiva sin confirmación")
)
