package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrParentAlreadyLinked = errors.New("el representante ya tiene un estudiante vinculado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInsufficientFunds   = errors.New("saldo insuficiente")
)
