package userservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/token"
	"github.com/laurarebecasantos/convenience-store/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenService é uma implementação mock da interface TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

func newTestService(repo *MockUserRepository, tokenSvc *MockTokenService) *userservice.Service {
	return userservice.NewService(repo, tokenSvc, logger.NewLogger("debug"))
}

// TestRegister_Success testa o cadastro com hashing de senha e papel padrão USER.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	registration := domain.UserRegistration{
		Username: "laura",
		Email:    "laura@example.com",
		Password: "Senha123forte",
	}

	mockRepo.On("ExistsByUsername", mock.Anything, "laura").Return(false, nil)
	mockRepo.On("ExistsByEmail", mock.Anything, "laura@example.com").Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// A senha nunca é persistida em texto puro
		hashOK := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Senha123forte")) == nil
		return u.Role == domain.RoleUser && u.Status == domain.StatusActive && hashOK
	})).Return(domain.User{ID: "u1", Username: "laura", Role: domain.RoleUser}, nil)

	user, err := svc.Register(context.Background(), registration)

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	mockRepo.AssertExpectations(t)
}

// TestRegister_Fail_WeakPassword testa as regras de força de senha.
func TestRegister_Fail_WeakPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	ctx := context.Background()

	cases := []string{"curta1A", "semdigitoforte", "sem_maiuscula1"}
	for _, password := range cases {
		_, err := svc.Register(ctx, domain.UserRegistration{Username: "laura", Email: "l@e.com", Password: password})
		assert.Error(t, err, "password: %q", password)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}

	mockRepo.AssertNotCalled(t, "Save")
}

// TestRegister_Fail_DuplicateUsername testa o conflito de username.
func TestRegister_Fail_DuplicateUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	mockRepo.On("ExistsByUsername", mock.Anything, "laura").Return(true, nil)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Username: "laura", Email: "l@e.com", Password: "Senha123forte",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

// TestLogin_Success testa a autenticação com emissão de JWT.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Senha123forte"), bcrypt.DefaultCost)
	user := domain.User{
		ID:           "u1",
		Email:        "laura@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
	}

	mockRepo.On("FindByEmail", mock.Anything, "laura@example.com").Return(user, nil)
	mockToken.On("GenerateToken", "u1", "USER").Return("jwt-token", nil)

	tokenString, err := svc.Login(context.Background(), "laura@example.com", "Senha123forte")

	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", tokenString)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestLogin_Fail_WrongPassword testa senha incorreta.
func TestLogin_Fail_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Senha123forte"), bcrypt.DefaultCost)
	user := domain.User{ID: "u1", PasswordHash: string(hash), Status: domain.StatusActive}

	mockRepo.On("FindByEmail", mock.Anything, "laura@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), "laura@example.com", "errada")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockToken.AssertNotCalled(t, "GenerateToken")
}

// TestLogin_Fail_UnknownEmail testa que email inexistente vira Unauthorized,
// sem revelar ao chamador se a conta existe.
func TestLogin_Fail_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	mockRepo.On("FindByEmail", mock.Anything, "ninguem@example.com").
		Return(domain.User{}, apperror.NewNotFoundError("usuário não encontrado"))

	_, err := svc.Login(context.Background(), "ninguem@example.com", "Senha123forte")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestLogin_Fail_InactiveUser testa que usuário inativo não autentica.
func TestLogin_Fail_InactiveUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Senha123forte"), bcrypt.DefaultCost)
	user := domain.User{ID: "u1", PasswordHash: string(hash), Status: domain.StatusInactive}

	mockRepo.On("FindByEmail", mock.Anything, "laura@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), "laura@example.com", "Senha123forte")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockToken.AssertNotCalled(t, "GenerateToken")
}

// TestInactivateUser_Fail_Reactivation testa que a transição de status é unidirecional.
func TestInactivateUser_Fail_Reactivation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	_, err := svc.InactivateUser(context.Background(), "u1", "ACTIVE")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

// TestPromoteToAdmin_Success testa a promoção unidirecional para ADMIN.
func TestPromoteToAdmin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	user := domain.User{ID: "u1", Role: domain.RoleUser, Status: domain.StatusActive}
	mockRepo.On("FindByID", mock.Anything, "u1").Return(user, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleAdmin
	})).Return(domain.User{ID: "u1", Role: domain.RoleAdmin}, nil)

	updated, err := svc.PromoteToAdmin(context.Background(), "u1", "ADMIN")

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	mockRepo.AssertExpectations(t)
}

// TestPromoteToAdmin_Fail_Demotion testa que rebaixar para USER é rejeitado.
func TestPromoteToAdmin_Fail_Demotion(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newTestService(mockRepo, mockToken)

	_, err := svc.PromoteToAdmin(context.Background(), "u1", "USER")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}
