package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diillson/gateway-admin-go/internal/app/route"
	"github.com/gin-gonic/gin"
	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
	"go.uber.org/zap"
)

// RouteHandler implementa os handlers administrativos de rotas
type RouteHandler struct {
	routeService *route.Service
	logger       *zap.Logger
}

// NewRouteHandler cria um novo handler de rotas
func NewRouteHandler(routeService *route.Service, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		logger:       logger,
	}
}

// CreateRoute registra uma nova rota
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var input route.CreateRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	created, err := h.routeService.CreateRoute(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, "Falha ao registrar rota", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetRoute retorna uma rota pelo ID
func (h *RouteHandler) GetRoute(c *gin.Context) {
	found, err := h.routeService.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Falha ao buscar rota", err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// ListRoutes lista as rotas, opcionalmente filtradas por ambiente
// (?environment=Production)
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	routes, err := h.routeService.ListRoutes(c.Request.Context(), c.Query("environment"))
	if err != nil {
		respondError(c, h.logger, "Falha ao listar rotas", err)
		return
	}

	c.JSON(http.StatusOK, routes)
}

// UpdateRoute substitui os campos mutáveis de uma rota
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	var input route.UpdateRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	updated, err := h.routeService.UpdateRoute(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, "Falha ao atualizar rota", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// SetRouteStatus ativa ou desativa uma rota (?active=true|false)
func (h *RouteHandler) SetRouteStatus(c *gin.Context) {
	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro 'active' é obrigatório (true|false)"})
		return
	}

	updated, err := h.routeService.SetRouteActive(c.Request.Context(), c.Param("id"), active, c.Query("updatedBy"))
	if err != nil {
		respondError(c, h.logger, "Falha ao alterar status da rota", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteRoute remove uma rota
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	if err := h.routeService.DeleteRoute(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "Falha ao excluir rota", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rota excluída com sucesso"})
}

// respondError traduz o erro para o código HTTP adequado e responde em JSON
func respondError(c *gin.Context, logger *zap.Logger, message string, err error) {
	status := pkgerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	var apiErr *pkgerrors.APIError
	if errors.As(err, &apiErr) {
		body := gin.H{"error": apiErr.Message}
		if apiErr.Details != nil {
			body["details"] = apiErr.Details
		}
		c.JSON(status, body)
		return
	}

	c.JSON(status, gin.H{"error": message})
}
