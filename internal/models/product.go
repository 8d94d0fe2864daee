package models

// Producto is a flash-offer card shown in the home carousel.
type Producto struct {
	ID             int     `json:"id"`
	Nombre         string  `json:"nombre"`
	PrecioOriginal float64 `json:"precioOriginal"`
	PrecioOferta   float64 `json:"precioOferta"`
	Rating         float64 `json:"rating"`
	TiempoRestante string  `json:"tiempoRestante"`
	Imagen         string  `json:"imagen"`
	LinkDetalle    string  `json:"linkDetalle"`
}
