package http

import (
	"net/http"

	"github.com/diillson/gateway-admin-go/internal/app/version"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VersionHandler implementa os handlers do ciclo de vida de versões de
// configuração
type VersionHandler struct {
	versionService *version.Service
	logger         *zap.Logger
}

// NewVersionHandler cria um novo handler de versões
func NewVersionHandler(versionService *version.Service, logger *zap.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

// CreateVersion cria uma versão inativa com o snapshot de rotas
func (h *VersionHandler) CreateVersion(c *gin.Context) {
	var input version.CreateVersionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	created, err := h.versionService.CreateVersion(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, "Falha ao criar versão", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetVersion retorna uma versão pelo ID
func (h *VersionHandler) GetVersion(c *gin.Context) {
	found, err := h.versionService.GetVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Falha ao buscar versão", err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// ListVersions lista as versões, opcionalmente filtradas por ambiente
func (h *VersionHandler) ListVersions(c *gin.Context) {
	versions, err := h.versionService.ListVersions(c.Request.Context(), c.Query("environment"))
	if err != nil {
		respondError(c, h.logger, "Falha ao listar versões", err)
		return
	}

	c.JSON(http.StatusOK, versions)
}

// GetActiveVersion retorna a versão ativa do ambiente
func (h *VersionHandler) GetActiveVersion(c *gin.Context) {
	environment := c.Query("environment")
	if environment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro 'environment' é obrigatório"})
		return
	}

	active, err := h.versionService.GetActiveVersion(c.Request.Context(), environment)
	if err != nil {
		respondError(c, h.logger, "Falha ao buscar versão ativa", err)
		return
	}

	c.JSON(http.StatusOK, active)
}

// GetCompiledConfiguration retorna a configuração compilada do ambiente,
// como servida aos providers
func (h *VersionHandler) GetCompiledConfiguration(c *gin.Context) {
	environment := c.Query("environment")
	if environment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro 'environment' é obrigatório"})
		return
	}

	compiled, err := h.versionService.GetCompiledConfiguration(c.Request.Context(), environment)
	if err != nil {
		respondError(c, h.logger, "Falha ao compilar configuração", err)
		return
	}

	c.JSON(http.StatusOK, compiled)
}

// GetCompiledVersion compila o snapshot de uma versão específica, publicada
// ou não, para inspeção antes da publicação
func (h *VersionHandler) GetCompiledVersion(c *gin.Context) {
	compiled, err := h.versionService.GetCompiledVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Falha ao compilar versão", err)
		return
	}

	c.JSON(http.StatusOK, compiled)
}

// ValidateVersion valida o snapshot da versão
func (h *VersionHandler) ValidateVersion(c *gin.Context) {
	if err := h.versionService.ValidateVersion(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "Versão inválida", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

type updateDescriptionInput struct {
	Description string `json:"description"`
}

// UpdateDescription altera a descrição de uma versão
func (h *VersionHandler) UpdateDescription(c *gin.Context) {
	var input updateDescriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if err := h.versionService.UpdateDescription(c.Request.Context(), c.Param("id"), input.Description); err != nil {
		respondError(c, h.logger, "Falha ao atualizar descrição", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Descrição atualizada com sucesso"})
}

// AddRoute acrescenta uma rota ao snapshot de uma versão inativa
func (h *VersionHandler) AddRoute(c *gin.Context) {
	if err := h.versionService.AddRoute(c.Request.Context(), c.Param("id"), c.Param("routeId")); err != nil {
		respondError(c, h.logger, "Falha ao adicionar rota à versão", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rota adicionada à versão"})
}

// RemoveRoute remove uma rota do snapshot de uma versão inativa
func (h *VersionHandler) RemoveRoute(c *gin.Context) {
	if err := h.versionService.RemoveRoute(c.Request.Context(), c.Param("id"), c.Param("routeId")); err != nil {
		respondError(c, h.logger, "Falha ao remover rota da versão", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rota removida da versão"})
}

type publishInput struct {
	PublishedBy string `json:"publishedBy"`
}

// PublishVersion ativa a versão, desativando a anterior do ambiente
func (h *VersionHandler) PublishVersion(c *gin.Context) {
	var input publishInput
	// Corpo é opcional; publishedBy vazio vira "System"
	_ = c.ShouldBindJSON(&input)

	published, err := h.versionService.Publish(c.Request.Context(), c.Param("id"), input.PublishedBy)
	if err != nil {
		respondError(c, h.logger, "Falha ao publicar versão", err)
		return
	}

	c.JSON(http.StatusOK, published)
}

// UnpublishVersion desativa a versão; idempotente
func (h *VersionHandler) UnpublishVersion(c *gin.Context) {
	unpublished, err := h.versionService.Unpublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Falha ao despublicar versão", err)
		return
	}

	c.JSON(http.StatusOK, unpublished)
}

// DeleteVersion remove uma versão inativa
func (h *VersionHandler) DeleteVersion(c *gin.Context) {
	if err := h.versionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "Falha ao excluir versão", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Versão excluída com sucesso"})
}
