package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/request"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reservedQuery are the list query keys that are not backend filters.
var reservedQuery = map[string]bool{
	"search": true, "columns": true, "page": true, "per_page": true, "format": true,
}

// forms builds the create and update body of each writable collection.
var forms = map[string]struct {
	create func() request.Form
	update func() request.Form
}{
	"cv": {
		create: func() request.Form { return &request.BranchRequest{} },
		update: func() request.Form { return &request.BranchRequest{} },
	},
	"karyawan": {
		create: func() request.Form { return &request.EmployeeRequest{} },
		update: func() request.Form { return &request.EmployeeUpdateRequest{} },
	},
	"pengeluaran": {
		create: func() request.Form { return &request.ExpenseRequest{} },
	},
}

// DirectoryHandler serves the back office lists, details and forms.
type DirectoryHandler struct {
	directoryService *service.DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// List renders one page of a collection, or the whole filtered list as a
// workbook with ?format=xlsx. Filters are passed as filter[column]=value.
func (h *DirectoryHandler) List(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := h.directoryService.Collection(name, service.OpList)
		if err != nil {
			response.Error(c, err)
			return
		}
		var q request.ListRequest
		if !bindQuery(c, &q) {
			return
		}
		req := listRequest(c, q)

		if q.Format == "xlsx" {
			data, err := col.Export(c.Request.Context(), GetToken(c), req)
			if err != nil {
				response.Error(c, err)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
			c.Data(http.StatusOK, xlsxContentType, data)
			return
		}

		view, err := col.List(c.Request.Context(), GetToken(c), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, col.Title()+" retrieved", view)
	}
}

// Get returns one record.
func (h *DirectoryHandler) Get(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := h.directoryService.Collection(name, service.OpGet)
		if err != nil {
			response.Error(c, err)
			return
		}
		record, err := col.Get(c.Request.Context(), GetToken(c), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, col.Title()+" retrieved", record)
	}
}

// Create validates the form and forwards it to the backend.
func (h *DirectoryHandler) Create(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := h.directoryService.Collection(name, service.OpCreate)
		if err != nil {
			response.Error(c, err)
			return
		}
		form := forms[name].create()
		if !bindJSON(c, form) {
			return
		}
		record, err := col.Create(c.Request.Context(), GetToken(c), form.Body())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, col.Title()+" berhasil ditambahkan", record)
	}
}

// Update validates the form and forwards it to the backend.
func (h *DirectoryHandler) Update(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := h.directoryService.Collection(name, service.OpUpdate)
		if err != nil {
			response.Error(c, err)
			return
		}
		form := forms[name].update()
		if !bindJSON(c, form) {
			return
		}
		record, err := col.Update(c.Request.Context(), GetToken(c), c.Param("id"), form.Body())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Notify(c, http.StatusOK, response.LevelSuccess, col.Title()+" berhasil diperbarui", record)
	}
}

// Delete removes a record once the caller confirms with ?confirm=true.
func (h *DirectoryHandler) Delete(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		confirmed := c.Query("confirm") == "true"
		err := h.directoryService.Delete(c.Request.Context(), GetToken(c), name, c.Param("id"), confirmed)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Notify(c, http.StatusOK, response.LevelSuccess, "Data berhasil dihapus", nil)
	}
}

// ApprovePendingStock moves a pending restock into stock.
func (h *DirectoryHandler) ApprovePendingStock(c *gin.Context) {
	if err := h.directoryService.ApprovePendingStock(c.Request.Context(), GetToken(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Notify(c, http.StatusOK, response.LevelSuccess, "Stok berhasil disetujui", nil)
}

// CreateCustomerReturn records a customer return.
func (h *DirectoryHandler) CreateCustomerReturn(c *gin.Context) {
	var req request.CustomerReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.directoryService.CreateCustomerReturn(c.Request.Context(), GetToken(c), req.ToEntity()); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Return berhasil dibuat", nil)
}

// listRequest splits the query into table controls, column filters and
// backend parameters.
func listRequest(c *gin.Context, q request.ListRequest) service.ListRequest {
	req := service.ListRequest{
		Search:  q.Search,
		Page:    q.Page,
		PerPage: q.PerPage,
		Filters: make(map[string]string),
		Extra:   url.Values{},
	}
	if q.Columns != "" {
		req.Columns = strings.Split(q.Columns, ",")
	}
	for key, values := range c.Request.URL.Query() {
		if reservedQuery[key] || len(values) == 0 {
			continue
		}
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			req.Filters[key[len("filter["):len(key)-1]] = values[0]
			continue
		}
		req.Extra[key] = values
	}
	return req
}
