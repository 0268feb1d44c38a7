package main

import (
	"log"
	"strings"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/catalog"
	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"
	"uretim-backend/internal/production"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterPersonnelHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Get("/auth/teammates", auth.TeammatesHandler())

	// Katalog: uçak modelleri
	protected.Post("/aircrafts", catalog.CreateAircraftHandler())
	protected.Get("/aircrafts", catalog.ListAircraftsHandler())
	protected.Get("/aircrafts/:id", catalog.GetAircraftHandler())
	protected.Put("/aircrafts/:id", catalog.UpdateAircraftHandler())
	protected.Delete("/aircrafts/:id", catalog.DeleteAircraftHandler())
	protected.Get("/aircrafts/:id/requirements", catalog.ListAircraftRequirementsHandler())

	// Katalog: parça tipleri
	protected.Post("/part-types", catalog.CreatePartTypeHandler())
	protected.Get("/part-types", catalog.ListPartTypesHandler())
	protected.Put("/part-types/:id", catalog.UpdatePartTypeHandler())
	protected.Delete("/part-types/:id", catalog.DeletePartTypeHandler())

	// Katalog: takımlar
	protected.Post("/teams", catalog.CreateTeamHandler())
	protected.Get("/teams", catalog.ListTeamsHandler())
	protected.Get("/teams/:id", catalog.GetTeamHandler())
	protected.Put("/teams/:id", catalog.UpdateTeamHandler())
	protected.Delete("/teams/:id", catalog.DeleteTeamHandler())

	// Katalog: parça gereksinimleri
	protected.Post("/requirements", catalog.CreateRequirementHandler())
	protected.Get("/requirements", catalog.ListRequirementsHandler())
	protected.Put("/requirements/:id", catalog.UpdateRequirementHandler())
	protected.Delete("/requirements/:id", catalog.DeleteRequirementHandler())
	protected.Post("/requirements/import-excel", catalog.ImportRequirementsExcelHandler())

	// Üretim: parçalar ve stok
	protected.Post("/parts", production.CreatePartsHandler())
	protected.Get("/parts", production.ListPartsHandler())
	protected.Delete("/parts/:id", production.RetirePartHandler())
	protected.Post("/parts/:id/status", production.UpdatePartStatusHandler())
	protected.Get("/part-stocks", production.ListPartStocksHandler())

	// Montaj: yalnızca montaj takımı (asıl karar serviste, bu erken eleme)
	assembly := protected.Group("/produced-aircrafts")
	assembly.Get("", production.ListProducedAircraftsHandler())
	assembly.Post("", auth.RequireTeamRole(models.TeamRoleAssembly), production.AssembleHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
