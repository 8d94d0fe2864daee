package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/yourorg/pgpchub/internal/debug"
	"github.com/yourorg/pgpchub/internal/handlers"
	"github.com/yourorg/pgpchub/internal/middleware"
)

// Options controla las rutas opcionales.
type Options struct {
	JWTSecret []byte
	// PhotoDir se sirve en /fotos cuando no está vacío.
	PhotoDir string
	// DevTools registra /api/dev (buzón y caché). Nunca en producción.
	DevTools bool
	// AuthLimit y APILimit son peticiones por minuto (0 = sin límite).
	AuthLimit int
	APILimit  int
}

func Register(app *fiber.App, h *handlers.Handler, opts Options) {
	// ============================================================================
	// API PÚBLICA
	// ============================================================================
	api := app.Group("/api")
	if opts.APILimit > 0 {
		api.Use(middleware.RateLimiter(opts.APILimit))
	}

	// Health check
	api.Get("/health", h.Health)

	// ============================================================================
	// USUARIOS (login, registro y códigos con rate limiting estricto)
	// ============================================================================
	strict := func(c *fiber.Ctx) error { return c.Next() }
	if opts.AuthLimit > 0 {
		strict = middleware.AuthRateLimiter(opts.AuthLimit)
	}
	usuarios := api.Group("/usuarios")
	usuarios.Post("/login", strict, h.Login)
	usuarios.Post("/agregar", strict, h.Register)
	usuarios.Post("/ConfirmarCorreo", strict, h.ConfirmEmail)
	usuarios.Post("/reenvioCodigo", strict, h.ResendCode)
	usuarios.Post("/recoveryPassword", strict, h.RecoveryPassword)
	usuarios.Post("/restablecerContrasenia", strict, h.ResetPassword)
	usuarios.Post("/verificarCodigo2FA", strict, h.Verify2FA)

	// Catálogos públicos
	api.Get("/CodigosPostales/ObtenerColonias/:cp", h.GetColonias)
	api.Get("/DatosFacturacionClientes/GetCombos", h.GetCombos)
	api.Get("/Productos/OfertasFlash", h.GetOfertasFlash)

	// ============================================================================
	// RUTAS PROTEGIDAS (requieren JWT)
	// ============================================================================
	auth := middleware.JWTAuth(opts.JWTSecret)

	usuarios.Post("/cambiarContrasenia", auth, h.ChangePassword)
	usuarios.Post("/configurar2FA", auth, h.Configure2FA)

	clientes := api.Group("/Clientes", auth)
	clientes.Get("/ObtenerPorIdUsuario/:id", h.GetClienteByUsuario)
	clientes.Post("/Actualizar", h.UpdateCliente)
	clientes.Post("/SubirFoto", h.UploadPhoto)

	direcciones := api.Group("/Direcciones", auth)
	direcciones.Get("/ObtenerDireccionesPorIdCte/:id", h.GetDirecciones)
	direcciones.Post("/Agregar", h.AddDireccion)
	direcciones.Post("/Actualizar", h.UpdateDireccion)
	direcciones.Delete("/Eliminar/:id", h.DeleteDireccion)

	facturacion := api.Group("/DatosFacturacionClientes")
	facturacion.Get("/ObtenerPorIdCliente/:id", auth, h.GetDatosFacturacion)
	facturacion.Post("/Agregar", auth, h.AddDatoFacturacion)
	facturacion.Post("/Actualizar", auth, h.UpdateDatoFacturacion)
	facturacion.Delete("/Eliminar/:id", auth, h.DeleteDatoFacturacion)

	if opts.PhotoDir != "" {
		app.Static("/fotos", opts.PhotoDir)
	}

	// ============================================================================
	// DEBUG DASHBOARD WEBSOCKET
	// ============================================================================
	api.Post("/debug/log", handlers.ReceiveClientLog)

	if opts.DevTools {
		dev := api.Group("/dev")
		dev.Get("/correos/:email", h.GetMailbox)
		dev.Get("/cache", h.GetCacheStats)
		dev.Delete("/cache", h.ClearCache)
	}

	app.Use("/ws/debug", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/debug", websocket.New(func(c *websocket.Conn) {
		debug.HandleWebSocketFiber(c)
	}))
}
