package validation

import "github.com/yourorg/pgpchub/internal/models"

// ValidatePersonal valida los datos personales del cliente.
func ValidatePersonal(c models.Cliente) Errors {
	errs := Errors{}
	errs.AddErr(Required("nombres", c.Nombres, "El nombre es requerido"))
	errs.AddErr(Required("apellidoPaterno", c.ApellidoPaterno, "El apellido paterno es requerido"))
	errs.AddErr(Required("apellidoMaterno", c.ApellidoMaterno, "El apellido materno es requerido"))
	errs.AddErr(ValidatePhone("telefono", c.Telefono))
	return errs
}

// ValidateAddress valida una dirección de envío antes de guardarla.
func ValidateAddress(d models.Direccion) Errors {
	errs := Errors{}
	errs.AddErr(Required("aliasDireccion", d.AliasDireccion, "El alias de la dirección es requerido"))
	errs.AddErr(Required("calle", d.Calle, "La calle es requerida"))
	errs.AddErr(Required("numExt", d.NumExt, "El número exterior es requerido"))
	errs.AddErr(ValidatePostalCode("codigoPostal", d.CodigoPostal, "El código postal es requerido"))
	if d.IDCp <= 0 {
		errs.Add("idCp", "La colonia es requerida")
	}
	if d.IDMunicipio <= 0 && d.Municipio == "" {
		errs.Add("municipio", "El municipio es requerido")
	}
	return errs
}

// ValidateBilling valida los datos de facturación.
func ValidateBilling(f models.DatoFacturacion) Errors {
	errs := Errors{}
	errs.AddErr(Required("razonSocial", f.RazonSocial, "La razón social es requerida"))
	errs.AddErr(ValidateRFC("rfc", f.RFC))

	if err := Required("correo", f.Correo, "El correo de facturación es requerido"); err != nil {
		errs.AddErr(err)
	} else if !IsEmail(f.Correo) {
		errs.Add("correo", "El correo no es válido")
	}

	errs.AddErr(Required("idRegimen", f.IDRegimen, "El régimen fiscal es requerido"))
	errs.AddErr(ValidatePostalCode("cpFiscal", f.CPFiscal, "El código postal fiscal es requerido"))
	errs.AddErr(Required("idUsoCfdi", f.IDUsoCfdi, "El uso de CFDI es requerido"))
	errs.AddErr(Required("idFormaPago", f.IDFormaPago, "La forma de pago es requerida"))
	errs.AddErr(Required("idMetodoPago", f.IDMetodoPago, "El método de pago es requerido"))
	return errs
}
