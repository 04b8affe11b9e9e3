package handler

import (
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/catalog"
	"github.com/encuestaia/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 问卷目录处理器
type CatalogHandler struct {
	store *catalog.Store
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// CatalogView 目录及其来源
type CatalogView struct {
	Source  catalog.Source  `json:"source"`
	Path    string          `json:"path,omitempty"`
	Catalog *survey.Catalog `json:"catalog"`
}

// Get 返回当前生效的目录
// @Summary 当前问卷目录
// @Tags 目录
// @Produce json
// @Success 200 {object} response.Response{data=CatalogView}
// @Router /catalog [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	view := CatalogView{
		Source:  h.store.Source(),
		Catalog: h.store.Current(),
	}
	if view.Source == catalog.SourceOverride {
		view.Path = h.store.Path()
	}
	response.Success(c, view)
}
