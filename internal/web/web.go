package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	authservice "github.com/goserg/devconnector/auth/service"
	"github.com/goserg/devconnector/auth/storage"
	"github.com/goserg/devconnector/internal/service"
	"github.com/goserg/devconnector/internal/web/webpath"
)

const (
	userIDKey    = "user_id"
	requestIDKey = "request_id"
)

type Config struct {
	// TokenHeader is the request header that carries the session token.
	TokenHeader string
	Debug       bool
}

type Server struct {
	auth     *authservice.Service
	profiles *service.ProfileService
	app      *fiber.App
	cfg      Config
	log      *logrus.Entry
}

func New(l *logrus.Logger, cfg Config, authService *authservice.Service, profiles *service.ProfileService) *Server {
	server := Server{
		auth:     authService,
		profiles: profiles,
		cfg:      cfg,
		log:      l.WithField("from", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "devconnector",
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          server.handleError,
	})
	app.Use(
		requestid.New(requestid.Config{
			Generator:  uuid.NewString,
			ContextKey: requestIDKey,
		}),
		server.logRequests,
		recover.New(recover.Config{EnableStackTrace: cfg.Debug}),
	)

	app.Get(webpath.Health, server.handleHealth)

	app.Post(webpath.ApiUsers, server.handleRegister)
	app.Post(webpath.ApiAuth, server.handleLogin)
	app.Get(webpath.ApiAuth, server.requireAuth, server.handleMe)

	app.Get(webpath.ApiProfileMe, server.requireAuth, server.handleMyProfile)
	app.Post(webpath.ApiProfile, server.requireAuth, server.handleUpsertProfile)
	app.Get(webpath.ApiProfile, server.handleListProfiles)
	app.Get(webpath.ApiProfileByUser, server.handleProfileByUser)
	app.Delete(webpath.ApiProfile, server.requireAuth, server.handleDeleteAccount)

	app.Put(webpath.ApiExperience, server.requireAuth, server.handleAddExperience)
	app.Delete(webpath.ApiExperienceByID, server.requireAuth, server.handleRemoveExperience)
	app.Put(webpath.ApiEducation, server.requireAuth, server.handleAddEducation)
	app.Delete(webpath.ApiEducationByID, server.requireAuth, server.handleRemoveEducation)

	server.app = app
	return &server
}

func (s *Server) Serve(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requireAuth lets the request through only with a valid token and keeps
// the user id for the handlers.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	userID, err := s.auth.Authenticate(c.Get(s.cfg.TokenHeader))
	if err != nil {
		return err
	}
	c.Locals(userIDKey, userID)
	return c.Next()
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	chainErr := c.Next()
	if chainErr != nil {
		if err := c.App().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	entry := s.log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     c.Response().StatusCode(),
		"latency":    time.Since(start),
	})
	if userID := currentUser(c); userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	entry.Info("request")
	return nil
}

// handleError turns everything a handler returns into a response. Anything
// unrecognised is logged and hidden behind a generic 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(message{Msg: fiberErr.Message})
	case isValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(newErrorList(err))
	case errors.Is(err, authservice.ErrUserExists):
		return c.Status(fiber.StatusBadRequest).JSON(newErrorList(errors.New("User already exists")))
	case errors.Is(err, authservice.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(newErrorList(errors.New("Invalid Credentials")))
	case errors.Is(err, authservice.ErrNoToken):
		return c.Status(fiber.StatusUnauthorized).JSON(message{Msg: "No token, authorization denied"})
	case errors.Is(err, authservice.ErrTokenInvalid):
		return c.Status(fiber.StatusUnauthorized).JSON(message{Msg: "Token is not valid"})
	case errors.Is(err, service.ErrNoProfile):
		return c.Status(fiber.StatusBadRequest).JSON(message{Msg: "There is no profile for this user"})
	case errors.Is(err, service.ErrProfileNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(message{Msg: "Profile not found"})
	case errors.Is(err, service.ErrEntryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(message{Msg: "Entry not found"})
	case errors.Is(err, service.ErrNoUser), errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(message{Msg: "User not found"})
	}
	s.log.WithError(err).WithFields(logrus.Fields{
		"request_id": requestID(c),
		"method":     c.Method(),
		"path":       c.Path(),
	}).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(message{Msg: "Server Error"})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
