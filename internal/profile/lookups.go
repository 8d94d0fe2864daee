package profile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/cache"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/validation"
)

// DefaultLookupTTL es lo que viven en caché combos y colonias.
const DefaultLookupTTL = 10 * time.Minute

const combosKey = "combos"

// ErrInvalidPostalCode se retorna si el código no tiene 5 dígitos.
var ErrInvalidPostalCode = errors.New("El código postal debe tener 5 dígitos")

var errNoColonias = errors.New("sin colonias")

// LookupError es una respuesta exito=false de un catálogo.
type LookupError struct {
	Endpoint string
	Message  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// Lookups son los catálogos de solo lectura (colonias por código postal y
// combos de facturación) con caché compartido entre formularios.
type Lookups struct {
	client   *apiclient.Client
	colonias *cache.Cache[[]models.Colonia]
	combos   *cache.Cache[Combos]
}

// NewLookups crea los cachés; ttl <= 0 usa DefaultLookupTTL.
func NewLookups(c *apiclient.Client, ttl time.Duration) *Lookups {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &Lookups{
		client:   c,
		colonias: cache.New[[]models.Colonia](ttl, 2*ttl),
		combos:   cache.New[Combos](ttl, 2*ttl),
	}
}

// Colonias consulta las colonias de un código postal de 5 dígitos.
func (l *Lookups) Colonias(ctx context.Context, cp string) ([]models.Colonia, error) {
	if !validation.IsPostalCode(cp) {
		return nil, ErrInvalidPostalCode
	}
	colonias, err := l.colonias.GetOrLoad(cp, func() ([]models.Colonia, error) {
		endpoint := EndpointColonias + url.PathEscape(cp)
		var resp apiclient.Respuesta[models.Colonia]
		if err := l.client.Get(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		if !resp.Exito {
			return nil, &LookupError{Endpoint: endpoint, Message: resp.MessageOr("código postal no encontrado")}
		}
		if len(resp.Data) == 0 {
			return nil, errNoColonias
		}
		return resp.Data, nil
	})
	// Una lista vacía no se guarda en caché.
	if errors.Is(err, errNoColonias) {
		return nil, nil
	}
	return colonias, err
}

// Combos consulta los catálogos de facturación ya separados por tipo.
func (l *Lookups) Combos(ctx context.Context) (Combos, error) {
	return l.combos.GetOrLoad(combosKey, func() (Combos, error) {
		var resp apiclient.Respuesta[models.ComboItem]
		if err := l.client.Get(ctx, EndpointCombos, &resp); err != nil {
			return Combos{}, err
		}
		if !resp.Exito {
			return Combos{}, &LookupError{Endpoint: EndpointCombos, Message: resp.MessageOr("no se pudieron cargar los catálogos")}
		}
		return SplitCombos(resp.Data), nil
	})
}

// Stats son las estadísticas de los dos cachés.
func (l *Lookups) Stats() (colonias, combos cache.Stats) {
	return l.colonias.GetStats(), l.combos.GetStats()
}

// Invalidate vacía ambos cachés.
func (l *Lookups) Invalidate() {
	l.colonias.Clear()
	l.combos.Clear()
}

func (l *Lookups) Stop() {
	l.colonias.Stop()
	l.combos.Stop()
}

// ============================================================================
// Código postal
// ============================================================================

// PostalInfo es el resultado de la cascada de código postal: las colonias
// para elegir y municipio/estado de solo lectura tomados de la primera.
type PostalInfo struct {
	Colonias    []models.Colonia
	IDMunicipio int
	Municipio   string
	IDEntidad   int
	Entidad     string
}

func NewPostalInfo(colonias []models.Colonia) PostalInfo {
	info := PostalInfo{Colonias: colonias}
	if len(colonias) > 0 {
		first := colonias[0]
		info.IDMunicipio = first.IDMunicipio
		info.Municipio = first.Municipio
		info.IDEntidad = first.IDEntidad
		info.Entidad = first.Entidad
	}
	return info
}

// Find busca la colonia por id.
func (p PostalInfo) Find(idColonia int) (models.Colonia, bool) {
	for _, c := range p.Colonias {
		if c.IDColonia == idColonia {
			return c, true
		}
	}
	return models.Colonia{}, false
}

// ============================================================================
// Combos de facturación
// ============================================================================

// Combos son los catálogos SAT que usa el formulario de facturación.
type Combos struct {
	FormasPago        []models.ComboItem
	MetodosPago       []models.ComboItem
	RegimenesFiscales []models.ComboItem
	UsosCfdi          []models.ComboItem
}

// SplitCombos separa la lista plana de GetCombos por el campo combo.
func SplitCombos(items []models.ComboItem) Combos {
	var c Combos
	for _, item := range items {
		switch item.Combo {
		case models.ComboFormaPago:
			c.FormasPago = append(c.FormasPago, item)
		case models.ComboMetodoPago:
			c.MetodosPago = append(c.MetodosPago, item)
		case models.ComboRegimenFiscal:
			c.RegimenesFiscales = append(c.RegimenesFiscales, item)
		case models.ComboUsoCfdi:
			c.UsosCfdi = append(c.UsosCfdi, item)
		}
	}
	return c
}

// ComboText es el texto del valor id; sin id es "No especificado" y si no
// existe en el catálogo se usa el id tal cual.
func ComboText(items []models.ComboItem, id string) string {
	if id == "" {
		return "No especificado"
	}
	for _, item := range items {
		if item.Valor == id {
			return item.Texto
		}
	}
	return id
}
