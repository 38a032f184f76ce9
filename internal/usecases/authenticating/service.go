package authenticating

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const minPasswordLength = 8

//go:generate mockgen -source=service.go -destination=mocks/authenticator_mock.go -package=mocks
type Authenticator interface {
	LoginUser(email, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

// operator é um usuário da API definido na configuração
type operator struct {
	email        string
	role         string
	passwordHash string
}

type Service struct {
	secret    []byte
	tokenTTL  time.Duration
	operators map[string]operator
	now       func() time.Time
}

func NewService(cfg *config.Config) *Service {
	s := &Service{
		secret:    []byte(cfg.Auth.Secret),
		tokenTTL:  cfg.Auth.TokenTTL,
		operators: make(map[string]operator),
		now:       time.Now,
	}

	s.addOperator(cfg.Auth.AdminEmail, cfg.Auth.AdminHash, domain.RoleAdmin)
	s.addOperator(cfg.Auth.AnalystEmail, cfg.Auth.AnalystHash, domain.RoleAnalyst)

	if len(s.operators) == 0 {
		log.L.Warn("Nenhum operador configurado, o login ficará indisponível")
	}

	return s
}

func (s *Service) addOperator(email, passwordHash, role string) {
	email = handleEmail(email)
	if email == "" || passwordHash == "" {
		return
	}

	s.operators[email] = operator{
		email:        email,
		role:         role,
		passwordHash: passwordHash,
	}
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

func (s *Service) LoginUser(email, password string) (string, error) {
	// Validação de entrada
	if email == "" || password == "" {
		return "", NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	email = handleEmail(email)

	user, ok := s.operators[email]
	if !ok {
		return "", NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, email, "Usuário não encontrado")
	}

	// Verificar senha
	if err := bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)); err != nil {
		return "", NewUserAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, email, "Senha incorreta")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	return token, nil
}

func (s *Service) generateJWT(user operator) (string, error) {
	now := s.now()
	claims := domain.Claims{
		UserEmail: user.email,
		UserRole:  user.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	if claims, ok := token.Claims.(*domain.Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
}

// HashPassword gera o hash bcrypt usado nas variáveis AUTH_*_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", NewAuthError(ErrWeakPassword, apiErrors.ErrInvalidRequest, fmt.Sprintf("a senha deve conter pelo menos %d caracteres", minPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}
