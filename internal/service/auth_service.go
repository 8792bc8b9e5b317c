package service

import (
	"context"
	"time"

	"collab-notepad-be/internal/config"
	"collab-notepad-be/internal/dto"
	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/pkg/apperrors"
	"collab-notepad-be/internal/repository/memory"
	"collab-notepad-be/internal/repository/specification"
	"collab-notepad-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	tokenRepo  *memory.RefreshTokenRepository
	jwtCfg     config.JWTConfig
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, tokenRepo *memory.RefreshTokenRepository, jwtCfg config.JWTConfig) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		tokenRepo:  tokenRepo,
		jwtCfg:     jwtCfg,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidationError("username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{Id: user.Id}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokenPair(user.Id)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error) {
	userId, ok := s.tokenRepo.Get(req.RefreshToken)
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Rotate: the presented token is single-use.
	s.tokenRepo.Delete(req.RefreshToken)

	return s.issueTokenPair(userId)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	s.tokenRepo.Delete(refreshToken)
	return nil
}

func (s *authService) issueTokenPair(userId uuid.UUID) (*dto.LoginResponse, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Duration(s.jwtCfg.AccessTTLMinutes) * time.Minute).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.NewString()
	s.tokenRepo.Save(refreshToken, userId)

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
