package adapter

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skynetfrank/user-service/internal/entity"
	"github.com/skynetfrank/user-service/internal/repository"
	"github.com/skynetfrank/user-service/internal/usecase"
)

type UserHandler struct {
	usecase *usecase.UserUsecase
	logger  *zap.Logger
}

func NewUserHandler(ucase *usecase.UserUsecase, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		usecase: ucase,
		logger:  logger.Named("UserHandler"),
	}
}

// userResponse is the sanitized outward projection. The JSON keys follow the
// wire contract the frontend already speaks; the password hash never leaves
// the service.
type userResponse struct {
	ID          string `json:"_id"`
	FirstName   string `json:"nombre"`
	LastName    string `json:"apellido"`
	NationalID  string `json:"cedula,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"telefono,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
	IsSeller    bool   `json:"isVendedor"`
	IsActive    bool   `json:"isActive"`
	IsProtected bool   `json:"isProtected"`
	Token       string `json:"token,omitempty"`
}

func toUserResponse(u *entity.User, token string) userResponse {
	return userResponse{
		ID:          u.ID.Hex(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		NationalID:  u.NationalID,
		Email:       u.Email,
		Phone:       u.Phone,
		IsAdmin:     u.IsAdmin,
		IsSeller:    u.IsSeller,
		IsActive:    u.IsActive,
		IsProtected: u.IsProtected,
		Token:       token,
	}
}

type sellerResponse struct {
	ID         string `json:"_id"`
	FirstName  string `json:"nombre"`
	LastName   string `json:"apellido"`
	NationalID string `json:"cedula,omitempty"`
}

// respondError translates service failures into the HTTP contract: 400 for
// validation and business-rule conflicts, 401 for credentials, 404 for
// unknown ids, 409 for store-level duplicates, 429 when throttled, 500
// otherwise.
func (h *UserHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
	case errors.Is(err, usecase.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": err.Error()})
	case errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrProtectedUser),
		errors.Is(err, usecase.ErrSelfDeactivation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicateNationalID):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, usecase.ErrInvalidID):
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

// List handles GET /api/users?page&limit&search (admin).
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	search := c.Query("search")

	result, err := h.usecase.List(c.Request.Context(), page, limit, search)
	if err != nil {
		h.respondError(c, err)
		return
	}

	users := make([]userResponse, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toUserResponse(u, ""))
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "page": result.Page, "pages": result.Pages})
}

// ListSellers handles GET /api/users/vendedores (admin).
func (h *UserHandler) ListSellers(c *gin.Context) {
	sellers, err := h.usecase.ListSellers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]sellerResponse, 0, len(sellers))
	for _, s := range sellers {
		out = append(out, sellerResponse{
			ID:         s.ID.Hex(),
			FirstName:  s.FirstName,
			LastName:   s.LastName,
			NationalID: s.NationalID,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Signin handles POST /api/users/signin.
func (h *UserHandler) Signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "a valid email and a password are required"})
		return
	}
	user, token, err := h.usecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, token))
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		FirstName  string `json:"nombre"`
		LastName   string `json:"apellido"`
		NationalID string `json:"cedula"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Phone      string `json:"telefono"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	user, token, err := h.usecase.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, token))
}

// GetByID handles GET /api/users/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, ""))
}

// UpdateProfile handles PUT /api/users/profile (authenticated actor only).
// Pointer fields keep the absent-vs-empty distinction from the wire.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authorization token required"})
		return
	}

	var req struct {
		FirstName  *string `json:"nombre"`
		LastName   *string `json:"apellido"`
		NationalID *string `json:"cedula"`
		Email      *string `json:"email"`
		Phone      *string `json:"telefono"`
		Password   *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, token, err := h.usecase.UpdateProfile(c.Request.Context(), claims.UID, usecase.ProfileUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, token))
}

// AdminUpdate handles PUT /api/users/:id (admin).
func (h *UserHandler) AdminUpdate(c *gin.Context) {
	var req struct {
		FirstName *string `json:"nombre"`
		LastName  *string `json:"apellido"`
		Email     *string `json:"email"`
		IsAdmin   bool    `json:"isAdmin"`
		IsSeller  bool    `json:"isVendedor"`
		Password  *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := h.usecase.AdminEdit(c.Request.Context(), c.Param("id"), usecase.AdminUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsAdmin:   req.IsAdmin,
		IsSeller:  req.IsSeller,
		Password:  req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated", "user": toUserResponse(user, "")})
}

// Deactivate handles DELETE /api/users/:id (admin). Soft delete only.
func (h *UserHandler) Deactivate(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authorization token required"})
		return
	}
	user, err := h.usecase.Deactivate(c.Request.Context(), claims.UID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deactivated", "user": toUserResponse(user, "")})
}
