package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jigworks/jig_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
	RequireRole(role string) fiber.Handler
}

type CodeServiceInterface interface {
	CreateCode(ownerID string, isAdmin bool, req dto.CreateCodeRequest) (*dto.CodeResponse, error)
	ListCodes(ownerID string, page, limit int) (*dto.CodeListResponse, error)
	UpdateCodeName(ownerID string, isAdmin bool, code int, name string) error
	ListSessions(ownerID string, isAdmin bool, code int, page, limit int) (*dto.SessionListResponse, error)
	GetJig(ownerID string, isAdmin bool, jigID string) (*dto.JigResponse, error)
}

type PlayServiceInterface interface {
	Redeem(req dto.RedeemCodeRequest) (*dto.RedeemCodeResponse, error)
	Complete(req dto.CompleteInstanceRequest) error
}
