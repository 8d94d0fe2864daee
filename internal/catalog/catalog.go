package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
)

// EndpointFlashOffers lista los productos en oferta flash.
const EndpointFlashOffers = "Productos/OfertasFlash"

// GroupProducts parte items en páginas de size elementos; la última puede
// quedar incompleta. size < 1 se trata como 1.
func GroupProducts[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	groups := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, items[i:end])
	}
	return groups
}

// breakpoint es el ancho máximo (exclusivo) de un tamaño de pantalla.
type breakpoint struct {
	maxWidth int
	items    int
}

var breakpoints = []breakpoint{
	{576, 1},  // xs
	{768, 1},  // sm
	{952, 1},  // md
	{1200, 2}, // lg
	{1600, 3}, // xl
}

// ItemsPerSlide son las tarjetas por página según el ancho de la ventana.
func ItemsPerSlide(width int) int {
	for _, bp := range breakpoints {
		if width < bp.maxWidth {
			return bp.items
		}
	}
	return 4 // xxl
}

// DiscountPercent es el descuento redondeado de la oferta.
func DiscountPercent(p models.Producto) int {
	if p.PrecioOriginal <= 0 || p.PrecioOferta >= p.PrecioOriginal {
		return 0
	}
	return int(math.Round((1 - p.PrecioOferta/p.PrecioOriginal) * 100))
}

// RatingStars dibuja cinco estrellas: llenas, media y vacías.
func RatingStars(rating float64) string {
	var b strings.Builder
	for i := 0; i < 5; i++ {
		switch {
		case float64(i) < math.Floor(rating):
			b.WriteString("★")
		case float64(i) < rating:
			b.WriteString("⯪")
		default:
			b.WriteString("☆")
		}
	}
	return b.String()
}

// FormatPrice imprime "$1,290.00".
func FormatPrice(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, dec, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + dec
	if neg {
		out = "-" + out
	}
	return out
}

// ============================================================================
// Carrusel
// ============================================================================

// Carousel pagina productos según el ancho y da vuelta al llegar al final.
type Carousel struct {
	mu       sync.Mutex
	products []models.Producto
	perSlide int
	current  int
}

// NewCarousel arranca con el ancho dado.
func NewCarousel(products []models.Producto, width int) *Carousel {
	return &Carousel{products: products, perSlide: ItemsPerSlide(width)}
}

// SetProducts reemplaza los productos y regresa a la primera página.
func (c *Carousel) SetProducts(products []models.Producto) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.current = 0
}

// Resize recalcula tarjetas por página. La página actual se ajusta para
// seguir mostrando su primer producto.
func (c *Carousel) Resize(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := c.current * c.perSlide
	c.perSlide = ItemsPerSlide(width)
	c.current = first / c.perSlide
}

func (c *Carousel) PerSlide() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perSlide
}

func (c *Carousel) Slides() [][]models.Producto {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GroupProducts(c.products, c.perSlide)
}

// Current es el índice y contenido de la página visible.
func (c *Carousel) Current() (int, []models.Producto) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slides := GroupProducts(c.products, c.perSlide)
	if len(slides) == 0 {
		return 0, nil
	}
	return c.current, slides[c.current]
}

func (c *Carousel) Next() int {
	return c.move(1)
}

func (c *Carousel) Prev() int {
	return c.move(-1)
}

func (c *Carousel) move(step int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(GroupProducts(c.products, c.perSlide))
	if n == 0 {
		return 0
	}
	c.current = ((c.current+step)%n + n) % n
	return c.current
}

// ============================================================================
// Ofertas flash
// ============================================================================

// FlashOffers carga las ofertas del backend. Mientras no haya datos del
// servidor muestra el catálogo de demostración.
type FlashOffers struct {
	loader *apiclient.Loader[apiclient.Respuesta[models.Producto]]
}

func NewFlashOffers(c *apiclient.Client) *FlashOffers {
	return &FlashOffers{loader: apiclient.NewLoader[apiclient.Respuesta[models.Producto]](c, EndpointFlashOffers)}
}

func (f *FlashOffers) Load(ctx context.Context) error {
	return f.loader.Load(ctx)
}

func (f *FlashOffers) Loading() bool {
	return f.loader.Loading()
}

func (f *FlashOffers) Err() string {
	return f.loader.Err()
}

// Products son las ofertas del servidor, o DemoProducts si no hay.
func (f *FlashOffers) Products() []models.Producto {
	resp := f.loader.Data()
	if resp.Exito && len(resp.Data) > 0 {
		return resp.Data
	}
	return DemoProducts()
}

func (f *FlashOffers) Close() {
	f.loader.Close()
}

// DemoProducts es el catálogo fijo de la portada.
func DemoProducts() []models.Producto {
	return []models.Producto{
		{ID: 1, Nombre: "Mouse gamer RGB", PrecioOriginal: 1290, PrecioOferta: 890, Rating: 4.5, TiempoRestante: "00:15:42", Imagen: "/demoMouse.png", LinkDetalle: "/producto/1"},
		{ID: 2, Nombre: "Teclado mecánico", PrecioOriginal: 1990, PrecioOferta: 1450, Rating: 4, TiempoRestante: "01:05:20", Imagen: "/demoKeyboard.png", LinkDetalle: "/producto/2"},
		{ID: 3, Nombre: "Audífonos inalámbricos", PrecioOriginal: 990, PrecioOferta: 750, Rating: 4, TiempoRestante: "00:45:00", Imagen: "/demoMonitor.png", LinkDetalle: "/producto/3"},
		{ID: 4, Nombre: "Silla gamer", PrecioOriginal: 3990, PrecioOferta: 3450, Rating: 2.5, TiempoRestante: "01:05:20", Imagen: "/demoChair.png", LinkDetalle: "/producto/4"},
		{ID: 5, Nombre: "Control inalámbrico PS5 Genérico", PrecioOriginal: 3990, PrecioOferta: 3450, Rating: 5, TiempoRestante: "00:00:01", Imagen: "/demoControl.png", LinkDetalle: "/producto/5"},
		{ID: 6, Nombre: "Procesador AMD Threadripper 9000 Series", PrecioOriginal: 3990, PrecioOferta: 3450, Rating: 5, TiempoRestante: "01:05:20", Imagen: "/demoProcessor.png", LinkDetalle: "/producto/6"},
		{ID: 7, Nombre: "Headset gamer 7.1", PrecioOriginal: 2490, PrecioOferta: 1990, Rating: 4.5, TiempoRestante: "01:05:20", Imagen: "/demoHeadset.png", LinkDetalle: "/producto/7"},
		{ID: 8, Nombre: "Micrófono de condensador USB", PrecioOriginal: 1790, PrecioOferta: 1290, Rating: 4, TiempoRestante: "01:05:20", Imagen: "/demoMicrophone.png", LinkDetalle: "/producto/8"},
	}
}
