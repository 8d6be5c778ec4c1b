package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/skynetfrank/user-service/internal/auth"
	"github.com/skynetfrank/user-service/internal/entity"
	"github.com/skynetfrank/user-service/internal/repository"
	"github.com/skynetfrank/user-service/internal/usecase"
)

type stubRepo struct{ mock.Mock }

func (m *stubRepo) Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *stubRepo) GetByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *stubRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *stubRepo) GetActiveByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *stubRepo) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *stubRepo) Search(ctx context.Context, query string, skip, limit int64) ([]*entity.User, error) {
	args := m.Called(ctx, query, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}
func (m *stubRepo) Count(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}
func (m *stubRepo) ListSellers(ctx context.Context) ([]*entity.Seller, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Seller), args.Error(1)
}

type stubThrottle struct{ mock.Mock }

func (m *stubThrottle) FailedLoginAttempts(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}
func (m *stubThrottle) RecordFailedLogin(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
func (m *stubThrottle) ClearFailedLogins(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func newTestRouter(repo *stubRepo, throttle *stubThrottle) (*gin.Engine, *auth.JWTer) {
	gin.SetMode(gin.TestMode)
	jwter := &auth.JWTer{Secret: []byte("test-secret")}
	uc := usecase.NewUserUsecase(repo, throttle, jwter, nil, zap.NewNop())
	h := NewUserHandler(uc, zap.NewNop())
	return NewRouter(zap.NewNop(), h, jwter), jwter
}

func TestSignin_BadCredentials(t *testing.T) {
	repo := new(stubRepo)
	throttle := new(stubThrottle)
	r, _ := newTestRouter(repo, throttle)

	throttle.On("FailedLoginAttempts", mock.Anything, "ghost@example.com").Return(int64(0), nil)
	repo.On("GetActiveByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
	throttle.On("RecordFailedLogin", mock.Anything, "ghost@example.com").Return(nil)

	body := `{"email":"ghost@example.com","password":"whatever"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/signin", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestSignin_InvalidBody(t *testing.T) {
	r, _ := newTestRouter(new(stubRepo), new(stubThrottle))

	req := httptest.NewRequest(http.MethodPost, "/api/users/signin", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	repo := new(stubRepo)
	r, _ := newTestRouter(repo, new(stubThrottle))

	repo.On("Create", mock.Anything, mock.Anything).
		Return(primitive.NilObjectID, repository.ErrDuplicateEmail)

	body := `{"nombre":"Maria","apellido":"Perez","email":"taken@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_NeverLeaksPasswordHash(t *testing.T) {
	repo := new(stubRepo)
	r, _ := newTestRouter(repo, new(stubThrottle))

	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = primitive.NewObjectID()
		}).
		Return(primitive.NewObjectID(), nil)

	body := `{"nombre":"Maria","apellido":"Perez","email":"new@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"password"`)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, "new@example.com", resp["email"])
}

func TestList_RequiresAdminToken(t *testing.T) {
	r, _ := newTestRouter(new(stubRepo), new(stubThrottle))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestList_ReturnsPageShape(t *testing.T) {
	repo := new(stubRepo)
	r, jwter := newTestRouter(repo, new(stubThrottle))

	repo.On("Count", mock.Anything, "").Return(int64(25), nil)
	repo.On("Search", mock.Anything, "", int64(0), int64(10)).
		Return([]*entity.User{{ID: primitive.NewObjectID(), Email: "a@example.com"}}, nil)

	token, err := jwter.Issue(&entity.User{ID: primitive.NewObjectID(), IsAdmin: true})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Users []map[string]any `json:"users"`
		Page  int64            `json:"page"`
		Pages int64            `json:"pages"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Page)
	assert.Equal(t, int64(3), resp.Pages)
	assert.Len(t, resp.Users, 1)
}

func TestDeactivate_ProtectedUser(t *testing.T) {
	repo := new(stubRepo)
	r, jwter := newTestRouter(repo, new(stubThrottle))

	target := &entity.User{ID: primitive.NewObjectID(), IsActive: true, IsProtected: true}
	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)

	token, err := jwter.Issue(&entity.User{ID: primitive.NewObjectID(), IsAdmin: true})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+target.ID.Hex(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "protected")
}

func TestGetByID_NotFound(t *testing.T) {
	repo := new(stubRepo)
	r, _ := newTestRouter(repo, new(stubThrottle))

	oid := primitive.NewObjectID()
	repo.On("GetByID", mock.Anything, oid).Return(nil, repository.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+oid.Hex(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSellers_Projection(t *testing.T) {
	repo := new(stubRepo)
	r, jwter := newTestRouter(repo, new(stubThrottle))

	repo.On("ListSellers", mock.Anything).Return([]*entity.Seller{
		{ID: primitive.NewObjectID(), FirstName: "Ana", LastName: "Gomez", NationalID: "V1234567"},
	}, nil)

	token, err := jwter.Issue(&entity.User{ID: primitive.NewObjectID(), IsAdmin: true})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/vendedores", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, "Ana", resp[0]["nombre"])
	assert.NotContains(t, w.Body.String(), "email")
}
