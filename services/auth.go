package services

import (
	"errors"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/model"
	"github.com/jigworks/jig_api/services/repositories"
	"github.com/jigworks/jig_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService covers the author-side account surface: register, login and
// the bearer-token middleware. Learners stay anonymous by design.
type AuthService struct {
	context.DefaultService

	jwtSvc   *JWTService
	sqlSvc   *PostgresService
	userRepo *repositories.UserRepository
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.userRepo = repositories.NewUserRepository(svc.sqlSvc.Db())
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	taken, err := svc.userRepo.ExistsByEmailOrUsername(req.Email, req.Username)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to check account availability")
	}
	if taken {
		return nil, shared.NewConflictError(errors.New("account exists"), "Email or username already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user, err := svc.userRepo.Create(&model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hashed),
		Role:     shared.RoleUser,
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create user")
	}

	log.WithField("user_id", user.ID).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.userRepo.GetByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
		}
		return nil, shared.NewInternalError(err, "Failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	user.LastLogin = time.Now()
	if err := svc.userRepo.UpdateLastLogin(user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return &dto.LoginResponse{
		TokenPair: *pair,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		LastLogin: user.LastLogin,
	}, nil
}

// RequiredAuth resolves the bearer token into user id and role locals.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Invalid JWT token")
		}

		user, err := svc.userRepo.GetByID(userID)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unknown user")
		}

		c.Locals(shared.UserID, user.ID)
		c.Locals(shared.UserRole, user.Role)
		return c.Next()
	}
}

func (svc *AuthService) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(shared.UserRole) != role {
			return shared.NewForbiddenError(errors.New("insufficient role"), "Forbidden")
		}
		return c.Next()
	}
}
