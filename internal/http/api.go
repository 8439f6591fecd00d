package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bank-identity/internal/domain"
	"bank-identity/internal/repository"
	"bank-identity/internal/service"
	"bank-identity/internal/token"
)

// Handler wires HTTP routes to the credential and claims services. It is the
// surface the downstream OIDC engine calls; it holds no session state.
type Handler struct {
	auth         service.AuthService
	claims       service.ClaimsService
	store        repository.CredentialStore
	issuer       *token.Issuer
	queryTimeout time.Duration
	logger       *logrus.Logger
}

func NewHandler(auth service.AuthService, claims service.ClaimsService, store repository.CredentialStore, issuer *token.Issuer, queryTimeout time.Duration, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:         auth,
		claims:       claims,
		store:        store,
		issuer:       issuer,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/authenticate", h.authenticate)
		api.GET("/subjects/:id", h.getSubject)
		api.POST("/claims", h.resolveClaims)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type authenticateRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	IssueToken bool   `json:"issue_token"`
}

type authenticateResponse struct {
	SubjectID string         `json:"subject_id"`
	Claims    []domain.Claim `json:"claims"`
	Token     string         `json:"token,omitempty"`
}

func (h *Handler) authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if violations := domain.ValidateLoginInput(req.Username, req.Password); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"violations": violations})
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	result, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := authenticateResponse{
		SubjectID: result.SubjectID,
		Claims:    result.Claims,
	}
	if req.IssueToken {
		signed, err := h.issuer.Issue(result.SubjectID, result.Claims)
		if err != nil {
			h.logger.WithError(err).Error("issue identity token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}
		resp.Token = signed
	}

	c.JSON(http.StatusOK, resp)
}

type subjectResponse struct {
	SubjectID   string `json:"subject_id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
}

func (h *Handler) getSubject(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.FindBySubjectID(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjectResponse{
		SubjectID:   user.SubjectID(),
		Username:    user.Username,
		Name:        user.FullName(),
		GivenName:   user.FirstName,
		FamilyName:  user.LastName,
		Email:       user.EmailAddress,
		DateOfBirth: user.DateOfBirth.Format("2006-01-02"),
	})
}

type resolveClaimsRequest struct {
	SubjectID           string   `json:"subject_id" binding:"required"`
	RequestedClaimTypes []string `json:"requested_claim_types"`
}

func (h *Handler) resolveClaims(c *gin.Context) {
	var req resolveClaimsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.FindBySubjectID(ctx, req.SubjectID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.writeError(c, err)
		return
	}

	// An unresolved subject gets an empty claim set; the caller treats it as
	// inactive rather than receiving a 404.
	claims, err := h.claims.ResolveClaims(ctx, user, req.RequestedClaimTypes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// storeContext bounds a request's store reads with the configured timeout.
func (h *Handler) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.queryTimeout)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, repository.ErrInvalidSubject):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject id"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrStoreUnavailable):
		h.logger.WithError(err).Warn("credential store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "credential store unavailable"})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
