// Package service exposes the address book over a REST API.
package service

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/excel"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/manager"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/model"
)

// Handler carries the collaborators of the HTTP layer.
type Handler struct {
	mgr *manager.Manager
	log *zap.SugaredLogger
}

// New creates a Handler on top of the contact manager.
func New(mgr *manager.Manager, log *zap.SugaredLogger) *Handler {
	return &Handler{mgr: mgr, log: log}
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints.
func (h *Handler) SetupHttpRouter(requestLogging bool) *gin.Engine {
	var router *gin.Engine
	if requestLogging {
		router = gin.Default()
	} else {
		router = gin.New()
		router.Use(gin.Recovery())
	}

	router.GET("/health", h.health)

	api := router.Group("/api/contacts")
	api.GET("", h.listContacts)
	api.GET("/bookmarked", h.listBookmarked)
	api.GET("/search", h.searchContacts)
	api.GET("/export/excel", h.exportExcel)
	api.POST("/import/excel", h.importExcel)
	api.GET("/:id", h.getContact)
	api.POST("", h.createContact)
	api.PUT("/:id", h.updateContact)
	api.DELETE("/:id", h.deleteContact)
	api.PUT("/:id/bookmark", h.bookmarkContact)
	api.DELETE("/:id/bookmark", h.unbookmarkContact)
	api.PATCH("/:id/bookmark/toggle", h.toggleBookmark)
	return router
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// abortWithError maps the error kinds raised by the manager to HTTP
// status codes. Unexpected errors are logged and surfaced generically
// so that store internals never leak to the caller.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	label := "Internal Server Error"
	message := "internal error, please try again later"
	switch {
	case manager.IsValidation(err):
		status = http.StatusBadRequest
		label = "Validation Error"
		message = err.Error()
	case manager.IsDuplicatePhone(err):
		status = http.StatusConflict
		label = "Conflict"
		message = err.Error()
	case manager.IsNotFound(err):
		status = http.StatusNotFound
		label = "Not Found"
		message = err.Error()
	default:
		h.log.Errorw("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, errorBody{
		Timestamp: time.Now(),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

// idParam parses the id path parameter.
func (h *Handler) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.abortWithError(c, manager.ValidationError{Field: "id", Reason: "invalid id parameter"})
		return 0, false
	}
	return id, true
}

// health responds with a static liveness message.
//
//	> curl "http://localhost:8080/health"
func (h *Handler) health(c *gin.Context) {
	c.String(http.StatusOK, "addressbook-service is running")
}

// listContacts responds with all contacts as JSON.
//
//	> curl "http://localhost:8080/api/contacts"
func (h *Handler) listContacts(c *gin.Context) {
	contacts, err := h.mgr.GetAll(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// listBookmarked responds with the bookmarked contacts as JSON.
//
//	> curl "http://localhost:8080/api/contacts/bookmarked"
func (h *Handler) listBookmarked(c *gin.Context) {
	contacts, err := h.mgr.GetBookmarked(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// searchContacts filters the contacts by the 'keyword' URL parameter,
// matching name and phone. The narrower 'name' and 'phone' parameters
// search a single field. A blank query returns all contacts.
//
//	> curl "http://localhost:8080/api/contacts/search?keyword=138"
//	> curl "http://localhost:8080/api/contacts/search?name=Bob"
func (h *Handler) searchContacts(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		contacts []model.Contact
		err      error
	)
	switch {
	case c.Query("keyword") != "":
		contacts, err = h.mgr.Search(ctx, c.Query("keyword"))
	case c.Query("name") != "":
		contacts, err = h.mgr.SearchByName(ctx, c.Query("name"))
	case c.Query("phone") != "":
		contacts, err = h.mgr.SearchByPhone(ctx, c.Query("phone"))
	default:
		contacts, err = h.mgr.GetAll(ctx)
	}
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// getContact responds with the contact whose id matches the request
// URL.
//
//	> curl "http://localhost:8080/api/contacts/56"
func (h *Handler) getContact(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	contact, err := h.mgr.GetByID(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// createContact inserts the contact specified in the request's JSON
// and responds with the full contact data including the assigned id.
//
//	> curl http://localhost:8080/api/contacts --request "POST" --header "Content-Type: application/json" --data '{"name": "Bob", "phone": "13800138000"}'
func (h *Handler) createContact(c *gin.Context) {
	var input model.Contact
	if err := c.ShouldBindJSON(&input); err != nil {
		h.abortWithError(c, manager.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	created, err := h.mgr.Create(c.Request.Context(), &input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// updateContact overwrites the contact whose id matches the request
// URL with the submitted JSON and responds with the new version.
//
//	> curl http://localhost:8080/api/contacts/56 --request "PUT" --header "Content-Type: application/json" --data '{"name": "Bob", "phone": "13800138000"}'
func (h *Handler) updateContact(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var input model.Contact
	if err := c.ShouldBindJSON(&input); err != nil {
		h.abortWithError(c, manager.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	updated, err := h.mgr.Update(c.Request.Context(), id, &input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteContact removes the contact whose id matches the request URL.
//
//	> curl http://localhost:8080/api/contacts/56 --request "DELETE"
func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.mgr.Delete(c.Request.Context(), id); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bookmarkContact marks the contact as bookmarked.
//
//	> curl http://localhost:8080/api/contacts/56/bookmark --request "PUT"
func (h *Handler) bookmarkContact(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	contact, err := h.mgr.Bookmark(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// unbookmarkContact clears the contact's bookmark flag.
//
//	> curl http://localhost:8080/api/contacts/56/bookmark --request "DELETE"
func (h *Handler) unbookmarkContact(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	contact, err := h.mgr.Unbookmark(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// toggleBookmark flips the contact's bookmark flag.
//
//	> curl http://localhost:8080/api/contacts/56/bookmark/toggle --request "PATCH"
func (h *Handler) toggleBookmark(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	contact, err := h.mgr.ToggleBookmark(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// exportExcel responds with all contacts as an xlsx attachment, or
// with 204 No Content when the address book is empty.
//
//	> curl "http://localhost:8080/api/contacts/export/excel" --output contacts.xlsx
func (h *Handler) exportExcel(c *gin.Context) {
	contacts, err := h.mgr.GetAll(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if len(contacts) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	data, err := excel.Encode(contacts)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	filename := fmt.Sprintf("contacts_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// importExcel reads an uploaded xlsx file and creates the contained
// contacts one by one. The response reports how many rows were
// imported and, per failed row, why it was rejected; a bad row never
// aborts the rest of the batch.
//
//	> curl http://localhost:8080/api/contacts/import/excel --request "POST" --form "file=@contacts.xlsx"
func (h *Handler) importExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.abortWithError(c, manager.ValidationError{Field: "file", Reason: "file must not be empty"})
		return
	}
	name := strings.ToLower(fileHeader.Filename)
	if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
		h.abortWithError(c, manager.ValidationError{Field: "file", Reason: "only Excel files (.xlsx, .xls) are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	defer file.Close()

	contacts, err := excel.Decode(file)
	if err != nil {
		h.abortWithError(c, manager.ValidationError{Field: "file", Reason: "file is not a readable Excel workbook"})
		return
	}
	if len(contacts) == 0 {
		h.abortWithError(c, manager.ValidationError{Field: "file", Reason: "no valid contact rows in file"})
		return
	}

	result := h.mgr.ImportAll(c.Request.Context(), contacts)
	c.JSON(http.StatusOK, result)
}
