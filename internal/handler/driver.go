package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargoride/internal/service"
)

// DriverHandler handles HTTP requests for drivers and their wallets.
type DriverHandler struct {
	walletService *service.WalletService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(walletService *service.WalletService) *DriverHandler {
	return &DriverHandler{walletService: walletService}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	driver, err := h.walletService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"id":    driver.ID,
		"name":  driver.Name,
		"phone": driver.Phone,
	})
}

// GetWallet handles GET /v1/drivers/:id/wallet
func (h *DriverHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletService.GetWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"driver_id": wallet.DriverID,
		"balance":   wallet.Balance,
	})
}
