package v1

import (
	"errors"
	"net/http"

	"alumni-prep-backend/internal/delivery/http/response"
	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/internal/usecase"
	"alumni-prep-backend/pkg/apperror"
	"alumni-prep-backend/pkg/horizon"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type PracticeHandler struct{}

// GeneratePracticeListRequest is the generator form. interview_date is
// YYYY-MM-DD and may be omitted.
type GeneratePracticeListRequest struct {
	InterviewDate string `json:"interview_date"`
	PrepLevel     string `json:"prep_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	TargetCompany string `json:"target_company"`
}

func NewPracticeHandler(session *gin.RouterGroup, write gin.HandlerFunc) {
	handler := &PracticeHandler{}

	session.GET("/practice-list", handler.GetState)
	session.POST("/practice-list", write, handler.Generate)
}

// GetState godoc
// @Summary      Current practice list
// @Description  Returns the last resolved list, whether a request is in flight, and the last failure.
// @Tags         practice
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=usecase.PracticeListState}
// @Router       /sessions/{id}/practice-list [get]
func (h *PracticeHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, "Practice list", currentSession(c).Practice.State())
}

// Generate godoc
// @Summary      Generate a practice list
// @Description  Sends the days left, tier and target company to the recommendation service and returns its ordered list unchanged.
// @Tags         practice
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Session ID"
// @Param        request  body      GeneratePracticeListRequest  true  "Generator form"
// @Success      200      {object}  response.Response{data=[]domain.PracticeListItem}
// @Failure      400      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Failure      504      {object}  response.Response
// @Router       /sessions/{id}/practice-list [post]
func (h *PracticeHandler) Generate(c *gin.Context) {
	var req GeneratePracticeListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.Error(apperror.BadRequest("prep_level must be beginner, intermediate or advanced"))
			return
		}
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	date, err := horizon.ParseDate(req.InterviewDate)
	if err != nil {
		c.Error(apperror.BadRequest("interview_date must be in YYYY-MM-DD format"))
		return
	}

	items, err := currentSession(c).Practice.Generate(c.Request.Context(), usecase.GenerateInput{
		InterviewDate: date,
		PrepLevel:     domain.PrepTier(req.PrepLevel),
		TargetCompany: req.TargetCompany,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTimeout) {
			c.Error(apperror.New(http.StatusGatewayTimeout, "The practice list service took too long to answer. Please try again.", err))
			return
		}
		c.Error(apperror.BadGateway("Could not generate a practice list. Please try again.", err))
		return
	}

	response.Success(c, http.StatusOK, "Practice list generated", items)
}
