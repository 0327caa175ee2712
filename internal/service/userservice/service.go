package userservice

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/token"
)

// UserRepository define o contrato que este Serviço espera da camada de Persistência.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Service implementa a lógica de negócio da entidade User.
type Service struct {
	repo     UserRepository
	tokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do Serviço de Usuário.
func NewService(repo UserRepository, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		tokenSvc: tokenSvc,
		logger:   log,
	}
}

// validatePassword aplica a regra de força de senha do cadastro:
// mínimo de 8 caracteres, ao menos uma letra maiúscula e um dígito.
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperror.NewValidationError("A senha deve ter no mínimo 8 caracteres.")
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return apperror.NewValidationError("A senha deve conter ao menos uma letra maiúscula e um dígito.")
	}
	return nil
}

// Register registra um novo usuário no sistema.
// Faz o hashing da senha e valida unicidade de username e email.
func (s *Service) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	if len(registration.Username) < 3 || len(registration.Username) > 20 {
		return domain.User{}, apperror.NewValidationError("O username deve ter entre 3 e 20 caracteres.")
	}
	if registration.Email == "" {
		return domain.User{}, apperror.NewValidationError("O email é obrigatório.")
	}
	if err := validatePassword(registration.Password); err != nil {
		return domain.User{}, err
	}

	usernameTaken, err := s.repo.ExistsByUsername(ctx, registration.Username)
	if err != nil {
		return domain.User{}, err
	}
	if usernameTaken {
		return domain.User{}, apperror.NewConflictError(fmt.Sprintf("Já existe usuário cadastrado com o nome: %s", registration.Username))
	}

	emailTaken, err := s.repo.ExistsByEmail(ctx, registration.Email)
	if err != nil {
		return domain.User{}, err
	}
	if emailTaken {
		return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", registration.Email))
	}

	// Hashing da senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	now := time.Now().UTC()
	newUser := domain.User{
		ID:           uuid.NewString(),
		Username:     registration.Username,
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user, err := s.repo.Save(ctx, newUser)
	if err != nil {
		s.logger.Error("Falha ao salvar usuário no repositório.", err)
		return domain.User{}, err
	}

	s.logger.Info("Usuário cadastrado.", map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *Service) Login(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira Unauthorized para não dar dicas a invasores
		if _, ok := err.(*apperror.NotFoundError); ok {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	// Usuário inativo não autentica
	if user.Status == domain.StatusInactive {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// Compara a senha informada (texto puro) com o hash salvo no DB
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID})
	return tokenString, nil
}

// ListUsers retorna a projeção de listagem de todos os usuários.
func (s *Service) ListUsers(ctx context.Context) ([]domain.UserListing, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar usuários.", err)
		return nil, err
	}

	listings := make([]domain.UserListing, 0, len(users))
	for _, u := range users {
		listings = append(listings, domain.UserListing{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
			Status:   u.Status,
		})
	}

	return listings, nil
}

// UpdateUser aplica as alterações informadas a um usuário existente.
func (s *Service) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if update.Username != nil {
		if len(*update.Username) < 3 || len(*update.Username) > 20 {
			return domain.User{}, apperror.NewValidationError("O username deve ter entre 3 e 20 caracteres.")
		}
		user.Username = *update.Username
	}
	if update.Email != nil {
		if *update.Email == "" {
			return domain.User{}, apperror.NewValidationError("O email não pode ser vazio.")
		}
		user.Email = *update.Email
	}
	if update.Password != nil {
		if err := validatePassword(*update.Password); err != nil {
			return domain.User{}, err
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		s.logger.Error("Falha ao atualizar usuário no repositório.", err)
		return domain.User{}, err
	}

	return updated, nil
}

// DeleteUser remove um usuário do sistema.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Falha ao deletar usuário no repositório.", err)
		return err
	}

	s.logger.Info("Usuário removido.", map[string]interface{}{"user_id": id})
	return nil
}

// InactivateUser aplica a transição de status do usuário.
// Assim como nos produtos, a transição é unidirecional: somente INACTIVE é aceito.
func (s *Service) InactivateUser(ctx context.Context, id string, statusValue string) (domain.User, error) {
	status, err := domain.ParseStatus(statusValue)
	if err != nil {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s", statusValue))
	}
	if status != domain.StatusInactive {
		return domain.User{}, apperror.NewValidationError("O status só pode ser alterado para INACTIVE.")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.Status = domain.StatusInactive
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		s.logger.Error("Falha ao inativar usuário no repositório.", err)
		return domain.User{}, err
	}

	s.logger.Info("Usuário inativado.", map[string]interface{}{"user_id": updated.ID})
	return updated, nil
}

// PromoteToAdmin aplica a transição de papel do usuário.
// A promoção é unidirecional: o único papel aceito é ADMIN.
func (s *Service) PromoteToAdmin(ctx context.Context, id string, roleValue string) (domain.User, error) {
	role, err := domain.ParseRole(roleValue)
	if err != nil {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("Papel inválido: %s", roleValue))
	}
	if role != domain.RoleAdmin {
		return domain.User{}, apperror.NewValidationError("O papel só pode ser alterado para ADMIN.")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.Role = domain.RoleAdmin
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		s.logger.Error("Falha ao promover usuário no repositório.", err)
		return domain.User{}, err
	}

	s.logger.Info("Usuário promovido a ADMIN.", map[string]interface{}{"user_id": updated.ID})
	return updated, nil
}
