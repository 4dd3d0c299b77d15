package handler

import (
	"net/http"
	"strings"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/response"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles receipt printing and the print journal.
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Rows serves the receipt of a transaction in the row format the bluetooth
// print app reads. The app calls it with the token in the query string, so
// errors are bare {"error": ...} objects rather than the API envelope.
func (h *ReceiptHandler) Rows(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ID parameter"})
		return
	}
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token parameter"})
		return
	}

	rows, err := h.receiptService.Rows(c.Request.Context(), token, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Print prints the receipt of any committed transaction, e.g. from the
// transaction history.
func (h *ReceiptHandler) Print(c *gin.Context) {
	channel, ok := printChannel(c)
	if !ok {
		return
	}
	outcome, err := h.receiptService.Dispatch(c.Request.Context(), GetToken(c), c.Param("id"), channel, RequestedBy(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Notify(c, http.StatusOK, response.LevelSuccess, service.MsgReprinted, outcome)
}

// Status reports the configured printer.
func (h *ReceiptHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.receiptService.Status(c.Request.Context()))
}

// History lists the print attempts of one transaction.
func (h *ReceiptHandler) History(c *gin.Context) {
	jobs, err := h.receiptService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Print history retrieved", jobs)
}

// Journal lists every print attempt, newest first.
func (h *ReceiptHandler) Journal(c *gin.Context) {
	var params pagination.PaginationParams
	if !bindQuery(c, &params) {
		return
	}
	jobs, meta, err := h.receiptService.Journal(c.Request.Context(), &params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Print journal retrieved", pagination.NewPaginatedResult(jobs, meta))
}
