package models

// Combo names returned by DatosFacturacionClientes/GetCombos.
const (
	ComboFormaPago     = "FormaPago"
	ComboMetodoPago    = "MetodoPago"
	ComboRegimenFiscal = "RegimenFiscal"
	ComboUsoCfdi       = "UsoCfdi"
)

// ComboItem is one selectable invoicing code.
type ComboItem struct {
	Combo string `json:"combo"`
	Valor string `json:"valor"`
	Texto string `json:"texto"`
}

// DatoFacturacion is the fiscal data record of a customer. The text fields
// mirror the selected combo values.
type DatoFacturacion struct {
	IDCliente         string `json:"idCliente" validate:"required"`
	IDDatoFacturacion string `json:"idDatoFacturacion"`
	RazonSocial       string `json:"razonSocial" validate:"required,max=250"`
	RFC               string `json:"rfc" validate:"required,min=12,max=13"`
	Correo            string `json:"correo" validate:"required,email"`
	CPFiscal          string `json:"cpFiscal" validate:"required,len=5,numeric"`
	IDRegimen         string `json:"idRegimen" validate:"required"`
	Regimen           string `json:"regimen"`
	IDUsoCfdi         string `json:"idUsoCfdi" validate:"required"`
	UsoCfdi           string `json:"usoCfdi"`
	IDFormaPago       string `json:"idFormaPago" validate:"required"`
	FormaPago         string `json:"formaPago"`
	IDMetodoPago      string `json:"idMetodoPago" validate:"required"`
	MetodoPago        string `json:"metodoPago"`
}
