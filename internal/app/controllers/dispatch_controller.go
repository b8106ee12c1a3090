package controllers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
)

// DispatchController serves the query-dispatch endpoints kept for older
// clients. The method and query parameters select the operation.
type DispatchController struct {
	authService       *services.AuthService
	userService       services.UserService
	topicService      services.TopicService
	assignmentService services.AssignmentService
	resourceService   services.ResourceService
	weekService       services.WeekService
}

// NewDispatchController creates a new dispatch controller
func NewDispatchController(
	authService *services.AuthService,
	userService services.UserService,
	topicService services.TopicService,
	assignmentService services.AssignmentService,
	resourceService services.ResourceService,
	weekService services.WeekService,
) *DispatchController {
	return &DispatchController{
		authService:       authService,
		userService:       userService,
		topicService:      topicService,
		assignmentService: assignmentService,
		resourceService:   resourceService,
		weekService:       weekService,
	}
}

// flexID accepts an identifier sent either as a JSON string or a JSON number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	*f = flexID(strings.Trim(string(b), `"`))
	return nil
}

func (f flexID) String() string { return strings.TrimSpace(string(f)) }

func methodNotAllowed(ctx *gin.Context) {
	middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrMethodNotAllowed, "Method not allowed"))
}

// firstOf returns the query parameter name, falling back to the body value.
func firstOf(ctx *gin.Context, name string, body flexID) string {
	if v := strings.TrimSpace(ctx.Query(name)); v != "" {
		return v
	}
	return body.String()
}

// numericID parses a required numeric identifier or reports it as missing/invalid.
func numericID(field, raw string) (int64, error) {
	if raw == "" {
		return 0, apperrors.NewMissingFieldError(field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("Invalid " + field + ": " + raw)
	}
	return id, nil
}

func requiredKey(field, raw string) (string, error) {
	if raw == "" {
		return "", apperrors.NewMissingFieldError(field)
	}
	return raw, nil
}

// bindBody decodes the body for writing methods; GET requests carry none.
func bindBody(ctx *gin.Context, obj interface{}) bool {
	if ctx.Request.Method == http.MethodGet {
		return true
	}
	return middleware.BindJSON(ctx, obj)
}

// adminMutation answers 403 when a non-admin tries to change course content.
func adminMutation(ctx *gin.Context, identity models.Identity) bool {
	switch ctx.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if !identity.IsAdmin() {
			middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("Admin access required"))
			return false
		}
	}
	return true
}

// respond writes the outcome of a dispatched operation.
func respond(ctx *gin.Context, status int, data interface{}, message string, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}

type discussionBody struct {
	ID      flexID  `json:"id"`
	TopicID flexID  `json:"topic_id"`
	ReplyID string  `json:"reply_id"`
	Subject *string `json:"subject"`
	Message *string `json:"message"`
	Text    string  `json:"text"`
}

// Discussion dispatches topic and reply operations
// @Summary Discussion dispatch endpoint
// @Description resource=topics|replies; GET, POST, PUT and DELETE select the operation
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource query string true "Target" Enums(topics, replies)
// @Param id query string false "Topic or reply id"
// @Param topic_id query string false "Topic id for replies"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Invalid or missing resource"
// @Failure 405 {object} dto.APIResponse "Method not allowed"
// @Router /discussion [get]
// @Router /discussion [post]
// @Router /discussion [put]
// @Router /discussion [delete]
func (c *DispatchController) Discussion(ctx *gin.Context) {
	resource := ctx.Query("resource")
	if resource != "topics" && resource != "replies" {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid or missing resource"))
		return
	}
	identity, found := actor(ctx)
	if !found {
		return
	}
	var body discussionBody
	if !bindBody(ctx, &body) {
		return
	}
	reqCtx := ctx.Request.Context()

	if resource == "topics" {
		switch ctx.Request.Method {
		case http.MethodGet:
			if key := strings.TrimSpace(ctx.Query("id")); key != "" {
				topic, err := c.topicService.GetTopic(reqCtx, key)
				respond(ctx, http.StatusOK, topic, "", err)
				return
			}
			topics, err := c.topicService.ListTopics(reqCtx, ctx.Request.URL.Query())
			respond(ctx, http.StatusOK, topics, "", err)
		case http.MethodPost:
			req := dto.CreateTopicRequest{TopicID: body.TopicID.String()}
			if body.Subject != nil {
				req.Subject = *body.Subject
			}
			if body.Message != nil {
				req.Message = *body.Message
			}
			topic, err := c.topicService.CreateTopic(reqCtx, identity, req)
			respond(ctx, http.StatusCreated, topic, "Topic created successfully", err)
		case http.MethodPut:
			key, err := requiredKey("topic_id", body.TopicID.String())
			if err != nil {
				middleware.HandleAPIError(ctx, err)
				return
			}
			topic, err := c.topicService.UpdateTopic(reqCtx, identity, key, dto.UpdateTopicRequest{Subject: body.Subject, Message: body.Message})
			respond(ctx, http.StatusOK, topic, "Topic updated successfully", err)
		case http.MethodDelete:
			key, err := requiredKey("id", firstOf(ctx, "id", body.ID))
			if err == nil {
				err = c.topicService.DeleteTopic(reqCtx, identity, key)
			}
			respond(ctx, http.StatusOK, nil, "Topic deleted successfully", err)
		default:
			methodNotAllowed(ctx)
		}
		return
	}

	switch ctx.Request.Method {
	case http.MethodGet:
		key, err := requiredKey("topic_id", strings.TrimSpace(ctx.Query("topic_id")))
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		replies, err := c.topicService.ListReplies(reqCtx, key)
		respond(ctx, http.StatusOK, replies, "", err)
	case http.MethodPost:
		key, err := requiredKey("topic_id", body.TopicID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		reply, err := c.topicService.CreateReply(reqCtx, identity, key, dto.CreateCommentRequest{ReplyID: body.ReplyID, Text: body.Text})
		respond(ctx, http.StatusCreated, reply, "Reply posted successfully", err)
	case http.MethodDelete:
		key, err := requiredKey("id", firstOf(ctx, "id", body.ID))
		if err == nil {
			err = c.topicService.DeleteReply(reqCtx, identity, key)
		}
		respond(ctx, http.StatusOK, nil, "Reply deleted successfully", err)
	default:
		methodNotAllowed(ctx)
	}
}

type adminBody struct {
	StudentID       flexID  `json:"student_id"`
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	Role            *string `json:"role"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

// Admin dispatches user management operations keyed by student id
// @Summary Admin dispatch endpoint
// @Description GET lists or reads, POST creates or changes a password (action=change_password), PUT updates, DELETE removes
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student id"
// @Param action query string false "change_password"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Admin access required"
// @Failure 405 {object} dto.APIResponse "Method not allowed"
// @Router /admin [get]
// @Router /admin [post]
// @Router /admin [put]
// @Router /admin [delete]
func (c *DispatchController) Admin(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var body adminBody
	if !bindBody(ctx, &body) {
		return
	}
	reqCtx := ctx.Request.Context()

	switch ctx.Request.Method {
	case http.MethodGet:
		if studentID := strings.TrimSpace(ctx.Query("student_id")); studentID != "" {
			user, err := c.userService.GetUserByStudentID(reqCtx, studentID)
			respond(ctx, http.StatusOK, user, "", err)
			return
		}
		users, err := c.userService.ListUsers(reqCtx, ctx.Request.URL.Query())
		respond(ctx, http.StatusOK, users, "", err)
	case http.MethodPost:
		if ctx.Query("action") == "change_password" {
			c.changePassword(ctx, body)
			return
		}
		req := dto.CreateUserRequest{StudentID: body.StudentID.String()}
		if body.Name != nil {
			req.Name = *body.Name
		}
		if body.Email != nil {
			req.Email = *body.Email
		}
		if body.Password != nil {
			req.Password = *body.Password
		}
		if body.Role != nil {
			req.Role = *body.Role
		}
		user, err := c.userService.CreateUser(reqCtx, req)
		respond(ctx, http.StatusCreated, user, "User created successfully", err)
	case http.MethodPut:
		user, err := c.lookupStudent(ctx, body.StudentID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		updated, err := c.userService.UpdateUser(reqCtx, user.ID, dto.UpdateUserRequest{
			Name:     body.Name,
			Email:    body.Email,
			Role:     body.Role,
			Password: body.Password,
		})
		respond(ctx, http.StatusOK, updated, "User updated successfully", err)
	case http.MethodDelete:
		user, err := c.lookupStudent(ctx, firstOf(ctx, "student_id", body.StudentID))
		if err == nil {
			err = c.userService.DeleteUser(reqCtx, identity, user.ID)
		}
		respond(ctx, http.StatusOK, nil, "User deleted successfully", err)
	default:
		methodNotAllowed(ctx)
	}
}

func (c *DispatchController) lookupStudent(ctx *gin.Context, studentID string) (*dto.UserResponse, error) {
	if studentID == "" {
		return nil, apperrors.NewMissingFieldError("student_id")
	}
	return c.userService.GetUserByStudentID(ctx.Request.Context(), studentID)
}

// changePassword verifies the student's current password before replacing it.
func (c *DispatchController) changePassword(ctx *gin.Context, body adminBody) {
	user, err := c.lookupStudent(ctx, body.StudentID.String())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	err = c.authService.ChangePassword(ctx.Request.Context(), models.Identity{ID: user.ID}, dto.ChangePasswordRequest{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
		ConfirmPassword: body.NewPassword,
	})
	respond(ctx, http.StatusOK, nil, "Password changed successfully", err)
}

type assignmentBody struct {
	ID           flexID    `json:"id"`
	AssignmentID flexID    `json:"assignment_id"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	DueDate      *string   `json:"due_date"`
	Files        *[]string `json:"files"`
	Text         string    `json:"text"`
}

// Assignments dispatches assignment and assignment comment operations
// @Summary Assignments dispatch endpoint
// @Description resource=assignments|comments; GET, POST, PUT and DELETE select the operation
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource query string true "Target" Enums(assignments, comments)
// @Param id query string false "Assignment or comment id"
// @Param assignment_id query string false "Assignment id for comments"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Invalid or missing resource"
// @Failure 405 {object} dto.APIResponse "Method not allowed"
// @Router /assignments [get]
// @Router /assignments [post]
// @Router /assignments [put]
// @Router /assignments [delete]
func (c *DispatchController) Assignments(ctx *gin.Context) {
	resource := ctx.Query("resource")
	if resource != "assignments" && resource != "comments" {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid or missing resource"))
		return
	}
	identity, found := actor(ctx)
	if !found {
		return
	}
	var body assignmentBody
	if !bindBody(ctx, &body) {
		return
	}
	reqCtx := ctx.Request.Context()

	if resource == "assignments" {
		if !adminMutation(ctx, identity) {
			return
		}
		switch ctx.Request.Method {
		case http.MethodGet:
			if raw := strings.TrimSpace(ctx.Query("id")); raw != "" {
				id, err := numericID("id", raw)
				if err != nil {
					middleware.HandleAPIError(ctx, err)
					return
				}
				assignment, err := c.assignmentService.GetAssignment(reqCtx, id)
				respond(ctx, http.StatusOK, assignment, "", err)
				return
			}
			assignments, err := c.assignmentService.ListAssignments(reqCtx, ctx.Request.URL.Query())
			respond(ctx, http.StatusOK, assignments, "", err)
		case http.MethodPost:
			req := dto.AssignmentRequest{}
			if body.Title != nil {
				req.Title = *body.Title
			}
			if body.Description != nil {
				req.Description = *body.Description
			}
			if body.DueDate != nil {
				req.DueDate = *body.DueDate
			}
			if body.Files != nil {
				req.Files = *body.Files
			}
			assignment, err := c.assignmentService.CreateAssignment(reqCtx, req)
			respond(ctx, http.StatusCreated, assignment, "Assignment created successfully", err)
		case http.MethodPut:
			id, err := numericID("id", body.ID.String())
			if err != nil {
				middleware.HandleAPIError(ctx, err)
				return
			}
			assignment, err := c.assignmentService.UpdateAssignment(reqCtx, id, dto.UpdateAssignmentRequest{
				Title:       body.Title,
				Description: body.Description,
				DueDate:     body.DueDate,
				Files:       body.Files,
			})
			respond(ctx, http.StatusOK, assignment, "Assignment updated successfully", err)
		case http.MethodDelete:
			id, err := numericID("id", firstOf(ctx, "id", body.ID))
			if err == nil {
				err = c.assignmentService.DeleteAssignment(reqCtx, id)
			}
			respond(ctx, http.StatusOK, nil, "Assignment deleted successfully", err)
		default:
			methodNotAllowed(ctx)
		}
		return
	}

	switch ctx.Request.Method {
	case http.MethodGet:
		id, err := numericID("assignment_id", strings.TrimSpace(ctx.Query("assignment_id")))
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		comments, err := c.assignmentService.ListComments(reqCtx, id)
		respond(ctx, http.StatusOK, comments, "", err)
	case http.MethodPost:
		id, err := numericID("assignment_id", body.AssignmentID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		comment, err := c.assignmentService.AddComment(reqCtx, identity, id, dto.CreateCommentRequest{Text: body.Text})
		respond(ctx, http.StatusCreated, comment, "Comment added successfully", err)
	case http.MethodDelete:
		id, err := numericID("id", strings.TrimSpace(ctx.Query("id")))
		if err == nil {
			err = c.assignmentService.DeleteComment(reqCtx, identity, id)
		}
		respond(ctx, http.StatusOK, nil, "Comment deleted successfully", err)
	default:
		methodNotAllowed(ctx)
	}
}

type resourceBody struct {
	ID          flexID  `json:"id"`
	ResourceID  flexID  `json:"resource_id"`
	CommentID   flexID  `json:"comment_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	Text        string  `json:"text"`
}

// Resources dispatches resource and resource comment operations
// @Summary Resources dispatch endpoint
// @Description action=comments|comment|delete_comment selects comment operations; without action the method maps to list/read/create/update/delete
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string false "Comment action" Enums(comments, comment, delete_comment)
// @Param id query string false "Resource id"
// @Param resource_id query string false "Resource id for comments"
// @Param comment_id query string false "Comment id"
// @Success 200 {object} dto.APIResponse
// @Failure 405 {object} dto.APIResponse "Method not allowed"
// @Router /resources [get]
// @Router /resources [post]
// @Router /resources [put]
// @Router /resources [delete]
func (c *DispatchController) Resources(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var body resourceBody
	if !bindBody(ctx, &body) {
		return
	}
	reqCtx := ctx.Request.Context()
	action := ctx.Query("action")
	if action == "" && !adminMutation(ctx, identity) {
		return
	}

	switch {
	case ctx.Request.Method == http.MethodGet && action == "comments":
		id, err := numericID("resource_id", strings.TrimSpace(ctx.Query("resource_id")))
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		comments, err := c.resourceService.ListComments(reqCtx, id)
		respond(ctx, http.StatusOK, comments, "", err)
	case ctx.Request.Method == http.MethodPost && action == "comment":
		id, err := numericID("resource_id", body.ResourceID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		comment, err := c.resourceService.AddComment(reqCtx, identity, id, dto.CreateCommentRequest{Text: body.Text})
		respond(ctx, http.StatusCreated, comment, "Comment added successfully", err)
	case ctx.Request.Method == http.MethodDelete && action == "delete_comment":
		id, err := numericID("comment_id", firstOf(ctx, "comment_id", body.CommentID))
		if err == nil {
			err = c.resourceService.DeleteComment(reqCtx, identity, id)
		}
		respond(ctx, http.StatusOK, nil, "Comment deleted successfully", err)
	case action != "":
		methodNotAllowed(ctx)
	case ctx.Request.Method == http.MethodGet:
		if raw := strings.TrimSpace(ctx.Query("id")); raw != "" {
			id, err := numericID("id", raw)
			if err != nil {
				middleware.HandleAPIError(ctx, err)
				return
			}
			resource, err := c.resourceService.GetResource(reqCtx, id)
			respond(ctx, http.StatusOK, resource, "", err)
			return
		}
		resources, err := c.resourceService.ListResources(reqCtx, ctx.Request.URL.Query())
		respond(ctx, http.StatusOK, resources, "", err)
	case ctx.Request.Method == http.MethodPost:
		req := dto.ResourceRequest{}
		if body.Title != nil {
			req.Title = *body.Title
		}
		if body.Description != nil {
			req.Description = *body.Description
		}
		if body.Link != nil {
			req.Link = *body.Link
		}
		resource, err := c.resourceService.CreateResource(reqCtx, req)
		respond(ctx, http.StatusCreated, resource, "Resource created successfully", err)
	case ctx.Request.Method == http.MethodPut:
		id, err := numericID("id", body.ID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		resource, err := c.resourceService.UpdateResource(reqCtx, id, dto.UpdateResourceRequest{
			Title:       body.Title,
			Description: body.Description,
			Link:        body.Link,
		})
		respond(ctx, http.StatusOK, resource, "Resource updated successfully", err)
	case ctx.Request.Method == http.MethodDelete:
		id, err := numericID("id", firstOf(ctx, "id", body.ID))
		if err == nil {
			err = c.resourceService.DeleteResource(reqCtx, id)
		}
		respond(ctx, http.StatusOK, nil, "Resource deleted successfully", err)
	default:
		methodNotAllowed(ctx)
	}
}

type weekBody struct {
	WeekID      flexID    `json:"week_id"`
	Title       *string   `json:"title"`
	StartDate   *string   `json:"start_date"`
	Description *string   `json:"description"`
	Links       *[]string `json:"links"`
	Text        string    `json:"text"`
}

// Weekly dispatches week and week comment operations
// @Summary Weekly dispatch endpoint
// @Description action=comments|comment|delete_comment selects comment operations; without action the method maps to list/read/create/update/delete
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string false "Comment action" Enums(comments, comment, delete_comment)
// @Param id query string false "Week id"
// @Param week_id query string false "Week id for comments"
// @Param comment_id query string false "Comment id"
// @Success 200 {object} dto.APIResponse
// @Failure 405 {object} dto.APIResponse "Method not allowed"
// @Router /weekly [get]
// @Router /weekly [post]
// @Router /weekly [put]
// @Router /weekly [delete]
func (c *DispatchController) Weekly(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var body weekBody
	if !bindBody(ctx, &body) {
		return
	}
	reqCtx := ctx.Request.Context()
	action := ctx.Query("action")
	if action == "" && !adminMutation(ctx, identity) {
		return
	}

	switch {
	case ctx.Request.Method == http.MethodGet && action == "comments":
		key, err := requiredKey("week_id", strings.TrimSpace(ctx.Query("week_id")))
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		comments, err := c.weekService.ListComments(reqCtx, key)
		respond(ctx, http.StatusOK, comments, "", err)
	case ctx.Request.Method == http.MethodPost && action == "comment":
		key, err := requiredKey("week_id", body.WeekID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		comment, err := c.weekService.AddComment(reqCtx, identity, key, dto.CreateCommentRequest{Text: body.Text})
		respond(ctx, http.StatusCreated, comment, "Comment added successfully", err)
	case ctx.Request.Method == http.MethodDelete && action == "delete_comment":
		id, err := numericID("comment_id", strings.TrimSpace(ctx.Query("comment_id")))
		if err == nil {
			err = c.weekService.DeleteComment(reqCtx, identity, id)
		}
		respond(ctx, http.StatusOK, nil, "Comment deleted successfully", err)
	case action != "":
		methodNotAllowed(ctx)
	case ctx.Request.Method == http.MethodGet:
		if key := strings.TrimSpace(ctx.Query("id")); key != "" {
			week, err := c.weekService.GetWeek(reqCtx, key)
			respond(ctx, http.StatusOK, week, "", err)
			return
		}
		weeks, err := c.weekService.ListWeeks(reqCtx, ctx.Request.URL.Query())
		respond(ctx, http.StatusOK, weeks, "", err)
	case ctx.Request.Method == http.MethodPost:
		req := dto.WeekRequest{WeekID: body.WeekID.String()}
		if body.Title != nil {
			req.Title = *body.Title
		}
		if body.StartDate != nil {
			req.StartDate = *body.StartDate
		}
		if body.Description != nil {
			req.Description = *body.Description
		}
		if body.Links != nil {
			req.Links = *body.Links
		}
		week, err := c.weekService.CreateWeek(reqCtx, req)
		respond(ctx, http.StatusCreated, week, "Week created successfully", err)
	case ctx.Request.Method == http.MethodPut:
		key, err := requiredKey("week_id", body.WeekID.String())
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		week, err := c.weekService.UpdateWeek(reqCtx, key, dto.UpdateWeekRequest{
			Title:       body.Title,
			StartDate:   body.StartDate,
			Description: body.Description,
			Links:       body.Links,
		})
		respond(ctx, http.StatusOK, week, "Week updated successfully", err)
	case ctx.Request.Method == http.MethodDelete:
		key, err := requiredKey("id", strings.TrimSpace(ctx.Query("id")))
		if err == nil {
			err = c.weekService.DeleteWeek(reqCtx, key)
		}
		respond(ctx, http.StatusOK, nil, "Week deleted successfully", err)
	default:
		methodNotAllowed(ctx)
	}
}
