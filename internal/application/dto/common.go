package dto

// PageRequest parámetros de paginación de los listados del menú.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize acota Limit y Offset a valores usables (20 por página por defecto).
func (p *PageRequest) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse eco de la página solicitada en las respuestas de listado.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo estándar de error de la API: código estable para el
// cliente y mensaje legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
