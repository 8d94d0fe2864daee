package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yourorg/pgpchub/internal/config"
	appdb "github.com/yourorg/pgpchub/internal/db"
	"github.com/yourorg/pgpchub/internal/debug"
	"github.com/yourorg/pgpchub/internal/handlers"
	"github.com/yourorg/pgpchub/internal/middleware"
	"github.com/yourorg/pgpchub/internal/otp"
	"github.com/yourorg/pgpchub/internal/routes"
	"github.com/yourorg/pgpchub/internal/store"
	"github.com/yourorg/pgpchub/internal/validation"
)

func main() {
	cfg := config.LoadServer()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuración inválida: %v", err)
	}
	debug.SetEnabled(cfg.DebugDashboard)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ============================================================================
	// ALMACÉN
	// ============================================================================
	st, closeStore := openStore(ctx, cfg.StoreDriver)
	defer closeStore()

	codes := otp.NewStore(cfg.OTPTTL)
	defer codes.Stop()

	h := handlers.New(handlers.Deps{
		Store:     st,
		OTP:       codes,
		Mailbox:   debug.NewMailbox(0),
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.JWTTTL,
		PhotoDir:  cfg.PhotoDir,
		Policy:    validation.PasswordPolicy{MinLength: cfg.PasswordMinLength},
	})
	defer h.Close()

	// ============================================================================
	// FIBER
	// ============================================================================
	app := fiber.New(fiber.Config{
		AppName:   "PGPC Hub API",
		BodyLimit: 6 * 1024 * 1024, // fotos de hasta 5MB más el multipart
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(middleware.DashboardLogger())

	routes.Register(app, h, routes.Options{
		JWTSecret: []byte(cfg.JWTSecret),
		PhotoDir:  cfg.PhotoDir,
		DevTools:  !cfg.IsProduction(),
		AuthLimit: 10,
		APILimit:  120,
	})

	if cfg.DebugDashboard {
		go middleware.Heartbeat(ctx, 30*time.Second)
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("🛑 Señal de terminación recibida, cerrando servidor...")
		stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}
	}()

	log.Printf("🚀 Servidor escuchando en :%s (store=%s, env=%s)", cfg.Port, cfg.StoreDriver, cfg.Env)
	if !cfg.IsProduction() {
		log.Println("📧 Buzón de desarrollo: GET /api/dev/correos/:email")
	}
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
	log.Println("✅ Servidor cerrado correctamente")
}

// openStore abre el almacén configurado. MySQL reintenta la conexión hasta
// que la base responda o ctx termine.
func openStore(ctx context.Context, driver string) (store.Store, func()) {
	if driver != "mysql" {
		log.Println("✅ Usando almacén en memoria")
		return store.NewMemory(), func() {}
	}

	dsn := appdb.DSN()
	for {
		db, err := appdb.Connect(dsn)
		if err == nil {
			err = appdb.EnsureSchema(db)
		}
		if err == nil {
			ms := store.NewMySQL(db)
			if err = ms.Seed(ctx); err == nil {
				log.Println("✅ Base de datos lista")
				return ms, func() { db.Close() }
			}
		}
		if db != nil {
			db.Close()
		}
		log.Printf("db error: %v (retrying in 5s)", err)
		select {
		case <-ctx.Done():
			log.Fatal("❌ No se pudo abrir la base de datos")
		case <-time.After(5 * time.Second):
		}
	}
}
