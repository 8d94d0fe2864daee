package store

import (
	"github.com/yourorg/pgpchub/internal/catalog"
	"github.com/yourorg/pgpchub/internal/models"
)

const (
	idEntidadHidalgo = 13
	entidadHidalgo   = "Hidalgo"
	idPaisMexico     = 1
	paisMexico       = "México"
)

type municipio struct {
	id     int
	nombre string
}

var (
	pachuca    = municipio{1, "Pachuca de Soto"}
	mineral    = municipio{2, "Mineral de la Reforma"}
	tulancingo = municipio{3, "Tulancingo de Bravo"}
	tizayuca   = municipio{4, "Tizayuca"}
)

// seedPostal: código postal -> municipio y colonias.
var seedPostal = []struct {
	cp        string
	municipio municipio
	colonias  []string
}{
	{"42000", pachuca, []string{"Centro", "Revolución", "Periodistas", "Electricistas", "Venta Prieta"}},
	{"42080", pachuca, []string{"Doctores", "Santa Julia", "Jardines de la Concepción"}},
	{"42100", mineral, []string{"Zona Plateada", "El Venado", "Pueblo Nuevo"}},
	{"42184", mineral, []string{"Fracc. Privadas del Álamo", "Fracc. La Providencia", "Fracc. Los Cedros"}},
	{"43600", tulancingo, []string{"Centro de Tulancingo", "Vicente Guerrero", "Felipe Ángeles"}},
	{"43830", tizayuca, []string{"Centro de Tizayuca", "Los Alcatraces", "Haciendas de Tizayuca"}},
}

// SeedColonias es el catálogo de colonias con ids consecutivos desde 1.
func SeedColonias() []models.Colonia {
	var out []models.Colonia
	id := 1
	for _, p := range seedPostal {
		for _, nombre := range p.colonias {
			out = append(out, models.Colonia{
				IDColonia:    id,
				Colonia:      nombre,
				CodigoPostal: p.cp,
				IDMunicipio:  p.municipio.id,
				Municipio:    p.municipio.nombre,
				IDEntidad:    idEntidadHidalgo,
				Entidad:      entidadHidalgo,
				IDPais:       idPaisMexico,
				Pais:         paisMexico,
			})
			id++
		}
	}
	return out
}

// SeedCombos son los catálogos del SAT que ofrece GetCombos.
func SeedCombos() []models.ComboItem {
	return []models.ComboItem{
		{Combo: models.ComboFormaPago, Valor: "01", Texto: "Efectivo"},
		{Combo: models.ComboFormaPago, Valor: "02", Texto: "Cheque nominativo"},
		{Combo: models.ComboFormaPago, Valor: "03", Texto: "Transferencia electrónica de fondos"},
		{Combo: models.ComboFormaPago, Valor: "04", Texto: "Tarjeta de crédito"},
		{Combo: models.ComboFormaPago, Valor: "28", Texto: "Tarjeta de débito"},
		{Combo: models.ComboFormaPago, Valor: "99", Texto: "Por definir"},
		{Combo: models.ComboMetodoPago, Valor: "PUE", Texto: "Pago en una sola exhibición"},
		{Combo: models.ComboMetodoPago, Valor: "PPD", Texto: "Pago en parcialidades o diferido"},
		{Combo: models.ComboRegimenFiscal, Valor: "601", Texto: "General de Ley Personas Morales"},
		{Combo: models.ComboRegimenFiscal, Valor: "605", Texto: "Sueldos y Salarios e Ingresos Asimilados a Salarios"},
		{Combo: models.ComboRegimenFiscal, Valor: "612", Texto: "Personas Físicas con Actividades Empresariales y Profesionales"},
		{Combo: models.ComboRegimenFiscal, Valor: "626", Texto: "Régimen Simplificado de Confianza"},
		{Combo: models.ComboUsoCfdi, Valor: "G01", Texto: "Adquisición de mercancías"},
		{Combo: models.ComboUsoCfdi, Valor: "G03", Texto: "Gastos en general"},
		{Combo: models.ComboUsoCfdi, Valor: "S01", Texto: "Sin efectos fiscales"},
	}
}

// SeedProductos son las ofertas flash iniciales.
func SeedProductos() []models.Producto {
	return catalog.DemoProducts()
}
