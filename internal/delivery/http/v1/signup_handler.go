package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"alumni-prep-backend/internal/delivery/http/response"
	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/pkg/apperror"
	"alumni-prep-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type SignupHandler struct {
	maxPictureBytes int64
}

type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ValidationDetails is the 422 payload: codes per field plus display text.
type ValidationDetails struct {
	Errors   domain.ErrorMap   `json:"errors"`
	Messages map[string]string `json:"messages"`
}

// NewSignupHandler registers the signup routes on a group already scoped to
// /sessions/:id. write is applied to the routes that reach external stores.
func NewSignupHandler(session *gin.RouterGroup, write gin.HandlerFunc, maxPictureBytes int64) {
	handler := &SignupHandler{maxPictureBytes: maxPictureBytes}

	signup := session.Group("/signup")
	{
		signup.GET("", handler.GetState)
		signup.POST("/open", handler.Open)
		signup.POST("/close", handler.Close)
		signup.PATCH("/fields", handler.UpdateField)
		signup.POST("/picture", write, handler.AttachPicture)
		signup.DELETE("/picture", handler.RemovePicture)
		signup.POST("/submit", write, handler.Submit)
	}
}

// GetState godoc
// @Summary      Signup form state
// @Tags         signup
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=usecase.SignupState}
// @Failure      404  {object}  response.Response
// @Router       /sessions/{id}/signup [get]
func (h *SignupHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, "Signup form", currentSession(c).Signup.State())
}

// Open godoc
// @Summary      Open the signup form
// @Description  Shows the form. A draft left from an earlier close is kept.
// @Tags         signup
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=usecase.SignupState}
// @Router       /sessions/{id}/signup/open [post]
func (h *SignupHandler) Open(c *gin.Context) {
	form := currentSession(c).Signup
	form.Open()
	response.Success(c, http.StatusOK, "Signup form opened", form.State())
}

// Close godoc
// @Summary      Close the signup form
// @Description  Hides the form without discarding the draft.
// @Tags         signup
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=usecase.SignupState}
// @Failure      409  {object}  response.Response
// @Router       /sessions/{id}/signup/close [post]
func (h *SignupHandler) Close(c *gin.Context) {
	form := currentSession(c).Signup
	if err := form.Close(); err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Signup form closed", form.State())
}

// UpdateField godoc
// @Summary      Edit one draft field
// @Tags         signup
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Session ID"
// @Param        field  body      UpdateFieldRequest  true  "Field and new value"
// @Success      200    {object}  response.Response{data=usecase.SignupState}
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /sessions/{id}/signup/fields [patch]
func (h *SignupHandler) UpdateField(c *gin.Context) {
	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	form := currentSession(c).Signup
	if err := form.UpdateField(req.Field, req.Value); err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Field updated", form.State())
}

// AttachPicture godoc
// @Summary      Stage a profile picture
// @Description  The file is held with the draft and uploaded on submit. Replaces any earlier file.
// @Tags         signup
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Session ID"
// @Param        file  formData  file    true  "Picture"
// @Success      200   {object}  response.Response{data=usecase.SignupState}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Router       /sessions/{id}/signup/picture [post]
func (h *SignupHandler) AttachPicture(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("A file field named \"file\" is required"))
		return
	}
	if header.Size > h.maxPictureBytes {
		c.Error(apperror.New(http.StatusRequestEntityTooLarge, fmt.Sprintf("Picture must be at most %d bytes", h.maxPictureBytes), nil))
		return
	}

	f, err := header.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxPictureBytes+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	if len(data) == 0 {
		c.Error(apperror.BadRequest("Picture file is empty"))
		return
	}
	if int64(len(data)) > h.maxPictureBytes {
		c.Error(apperror.New(http.StatusRequestEntityTooLarge, fmt.Sprintf("Picture must be at most %d bytes", h.maxPictureBytes), nil))
		return
	}

	form := currentSession(c).Signup
	if err := form.AttachFile(domain.StagedFile{Name: header.Filename, Data: data}); err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Picture attached", form.State())
}

// RemovePicture godoc
// @Summary      Drop the staged picture
// @Tags         signup
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=usecase.SignupState}
// @Failure      409  {object}  response.Response
// @Router       /sessions/{id}/signup/picture [delete]
func (h *SignupHandler) RemovePicture(c *gin.Context) {
	form := currentSession(c).Signup
	if err := form.RemoveFile(); err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Picture removed", form.State())
}

// Submit godoc
// @Summary      Submit the signup
// @Description  Validates, uploads the staged picture, creates the record, then refreshes the directory.
// @Description  A 200 with a warning means the record was created but the directory could not be re-read.
// @Tags         signup
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      201  {object}  response.Response{data=usecase.SignupState}
// @Success      200  {object}  response.Response{data=usecase.SignupState}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response{error=ValidationDetails}
// @Failure      502  {object}  response.Response
// @Failure      504  {object}  response.Response
// @Router       /sessions/{id}/signup/submit [post]
func (h *SignupHandler) Submit(c *gin.Context) {
	form := currentSession(c).Signup

	err := form.Submit(c.Request.Context())
	switch {
	case err == nil:
		response.Success(c, http.StatusCreated, "Thank you for joining the alumni network!", form.State())
	case errors.Is(err, domain.ErrRefreshFailed):
		response.Success(c, http.StatusOK, "Your profile was saved, but the alumni list could not be refreshed. Please reload later.", form.State())
	default:
		c.Error(submitError(err))
	}
}

// formError maps the state-guard errors shared by every form operation.
func formError(err error) error {
	switch {
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return apperror.Conflict("A submission is already in progress")
	case errors.Is(err, domain.ErrFormClosed):
		return apperror.Conflict("The signup form is not open")
	}
	return apperror.New(http.StatusBadRequest, err.Error(), err)
}

func submitError(err error) error {
	var missing *domain.MissingFieldsError
	if errors.As(err, &missing) {
		return apperror.BadRequest("Please fill in the required fields").WithDetails(gin.H{"missing": missing.Fields})
	}

	var wfErr *domain.WorkflowError
	if !errors.As(err, &wfErr) {
		return formError(err)
	}

	timedOut := errors.Is(err, domain.ErrTimeout)
	switch wfErr.Kind {
	case domain.KindValidationFailed:
		return apperror.Unprocessable("Please fix the highlighted fields", ValidationDetails{
			Errors:   wfErr.Fields,
			Messages: validation.Describe(wfErr.Fields),
		})
	case domain.KindUploadFailed:
		if timedOut {
			return apperror.New(http.StatusGatewayTimeout, "The picture upload timed out. Please try again.", err)
		}
		return apperror.BadGateway("Failed to upload your picture. Please try again or submit without one.", err)
	case domain.KindPersistenceFailed:
		if timedOut {
			return apperror.New(http.StatusGatewayTimeout, "Saving your profile timed out. Please try again.", err)
		}
		return apperror.BadGateway("Failed to save your profile. Please try again.", err)
	}
	return apperror.Internal(err)
}
