package v1

import (
	"net/http"
	"time"

	"alumni-prep-backend/internal/delivery/http/response"
	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/internal/usecase"
	"alumni-prep-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Directory is the read side of the alumni collection.
type Directory interface {
	Snapshot() []domain.CandidateProfile
	Stale() bool
}

type AlumniHandler struct {
	directory Directory
}

type DirectoryResponse struct {
	Alumni []domain.CandidateProfile `json:"alumni"`
	Stale  bool                      `json:"stale"`
}

func NewAlumniHandler(public *gin.RouterGroup, directory Directory) {
	handler := &AlumniHandler{directory: directory}

	public.GET("/alumni", handler.List)
	public.GET("/alumni/export", handler.Export)
}

// List godoc
// @Summary      Alumni directory
// @Description  Returns the last fetched alumni collection. stale is true when the last refresh failed.
// @Tags         alumni
// @Produce      json
// @Success      200  {object}  response.Response{data=DirectoryResponse}
// @Router       /alumni [get]
func (h *AlumniHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, "Alumni directory", DirectoryResponse{
		Alumni: domain.PublicProfiles(h.directory.Snapshot()),
		Stale:  h.directory.Stale(),
	})
}

// Export godoc
// @Summary      Export alumni directory
// @Description  Downloads the public directory as an Excel or CSV file.
// @Tags         alumni
// @Produce      application/octet-stream
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /alumni/export [get]
func (h *AlumniHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", usecase.ExportXLSX)
	if format != usecase.ExportXLSX && format != usecase.ExportCSV {
		c.Error(apperror.BadRequest("format must be xlsx or csv"))
		return
	}

	data, filename, err := usecase.ExportDirectory(h.directory.Snapshot(), format, time.Now())
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	contentType := "text/csv"
	if format == usecase.ExportXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
