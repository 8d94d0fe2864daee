package models

// Direccion is a shipping address of a customer. Colony, municipality and
// state names are filled by the backend from IDCp.
type Direccion struct {
	IDCliente      string `json:"idCliente" validate:"required"`
	IDDireccion    string `json:"idDireccion"`
	AliasDireccion string `json:"aliasDireccion" validate:"required,max=50"`
	Calle          string `json:"calle" validate:"required,max=150"`
	NumExt         string `json:"numExt" validate:"required,max=20"`
	NumInt         string `json:"numInt" validate:"max=20"`
	CodigoPostal   string `json:"codigoPostal"`
	IDCp           int    `json:"idCp" validate:"required,gt=0"`
	Referencias    string `json:"referencias" validate:"max=250"`
	EsFiscal       bool   `json:"esFiscal"`
	Colonia        string `json:"colonia,omitempty"`
	IDMunicipio    int    `json:"idMunicipio,omitempty"`
	Municipio      string `json:"municipio,omitempty"`
	IDEntidad      int    `json:"idEntidad,omitempty"`
	Entidad        string `json:"entidad,omitempty"`
}

// Colonia is one postal-code lookup row.
type Colonia struct {
	IDColonia    int    `json:"idColonia"`
	Colonia      string `json:"colonia"`
	CodigoPostal string `json:"codigoPostal"`
	IDMunicipio  int    `json:"idMunicipio"`
	Municipio    string `json:"municipio"`
	IDEntidad    int    `json:"idEntidad"`
	Entidad      string `json:"entidad"`
	IDPais       int    `json:"idPais"`
	Pais         string `json:"pais"`
}
