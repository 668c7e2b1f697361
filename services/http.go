package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	_ "github.com/jigworks/jig_api/docs"
	"github.com/jigworks/jig_api/services/handlers"
	"github.com/jigworks/jig_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	context.DefaultService

	authSvc      *AuthService
	codeSvc      *CodeService
	playSvc      *PlayService
	rateLimitSvc *RateLimitService
	monitorSvc   *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.codeSvc = svc.Service(CODE_SVC).(*CodeService)
	svc.playSvc = svc.Service(PLAY_SVC).(*PlayService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitorSvc))
	app.Use(svc.rateLimitSvc.Middleware("api_general"))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	codeHandler := handlers.NewCodeHandler(svc.codeSvc)
	playHandler := handlers.NewPlayHandler(svc.playSvc)

	v1 := app.Group("/v1")

	auth := v1.Group("/auth", svc.rateLimitSvc.Middleware("auth"))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	codes := v1.Group("/jig/codes")

	// Anonymous learner endpoints; the instance token is the credential.
	codes.Post("/instance", svc.rateLimitSvc.Middleware("code_redeem"), playHandler.Redeem)
	codes.Post("/instance/complete", svc.rateLimitSvc.Middleware("instance_complete"), playHandler.Complete)

	requiredAuth := svc.authSvc.RequiredAuth()
	codes.Post("/", requiredAuth, svc.rateLimitSvc.Middleware("code_create"), codeHandler.CreateCode)
	codes.Get("/", requiredAuth, codeHandler.ListCodes)
	codes.Patch("/:code", requiredAuth, codeHandler.UpdateCodeName)
	codes.Get("/:code/sessions", requiredAuth, codeHandler.ListSessions)

	v1.Get("/jig/:jigId", requiredAuth, codeHandler.GetJig)

	svc.server = app

	log.WithField("port", svc.port).Info("HTTP server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
