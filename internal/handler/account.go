package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cargoride/internal/domain"
	"cargoride/internal/service"
)

// AccountHandler handles HTTP requests for corporate accounts and members.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest is the HTTP request body for business-account signup.
type CreateAccountRequest struct {
	Name           string   `json:"name" binding:"required"`
	OpeningBalance int64    `json:"opening_balance"`
	CreditLimit    int64    `json:"credit_limit"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`
	Tier           string   `json:"tier,omitempty"`
}

// AccountResponse is the HTTP response for account operations.
type AccountResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	AvailableBalance int64   `json:"available_balance"`
	ReservedBalance  int64   `json:"reserved_balance"`
	CreditLimit      int64   `json:"credit_limit"`
	CommissionRate   float64 `json:"commission_rate"`
	Tier             string  `json:"tier"`
	Active           bool    `json:"active"`
	CreatedAt        string  `json:"created_at"`
}

func accountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:               account.ID,
		Name:             account.Name,
		AvailableBalance: account.AvailableBalance,
		ReservedBalance:  account.ReservedBalance,
		CreditLimit:      account.CreditLimit,
		CommissionRate:   account.CommissionRate,
		Tier:             string(account.Tier),
		Active:           account.Active,
		CreatedAt:        account.CreatedAt.Format(time.RFC3339),
	}
}

// CreateAccount handles POST /v1/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), service.CreateAccountRequest{
		Name:           req.Name,
		OpeningBalance: req.OpeningBalance,
		CreditLimit:    req.CreditLimit,
		CommissionRate: req.CommissionRate,
		Tier:           domain.AccountTier(req.Tier),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, accountResponse(account))
}

// GetAccount handles GET /v1/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, accountResponse(account))
}

// GetBalances handles GET /v1/accounts/:id/balances
func (h *AccountHandler) GetBalances(c *gin.Context) {
	balances, err := h.accountService.GetBalances(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, balances)
}

// DeactivateAccount handles POST /v1/accounts/:id/deactivate
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "deactivated"})
}

// AddMemberRequest is the HTTP request body for enrolling a member.
type AddMemberRequest struct {
	Name            string `json:"name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	DailySpendLimit *int64 `json:"daily_spend_limit,omitempty"`
}

// MemberResponse is the HTTP response for member operations.
type MemberResponse struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	DailySpendLimit *int64 `json:"daily_spend_limit,omitempty"`
	Active          bool   `json:"active"`
}

func memberResponse(member *domain.Member) MemberResponse {
	return MemberResponse{
		ID:              member.ID,
		AccountID:       member.AccountID,
		Name:            member.Name,
		Phone:           member.Phone,
		DailySpendLimit: member.DailySpendLimit,
		Active:          member.Active,
	}
}

// AddMember handles POST /v1/accounts/:id/members
func (h *AccountHandler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	member, err := h.accountService.AddMember(c.Request.Context(), service.AddMemberRequest{
		AccountID:       c.Param("id"),
		Name:            req.Name,
		Phone:           req.Phone,
		DailySpendLimit: req.DailySpendLimit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, memberResponse(member))
}

// GetMembers handles GET /v1/accounts/:id/members
func (h *AccountHandler) GetMembers(c *gin.Context) {
	members, err := h.accountService.GetMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, memberResponse(member))
	}

	respondJSON(c, http.StatusOK, responses)
}

// UpdateMemberLimitRequest is the HTTP request body for a limit update.
// A null limit removes the cap.
type UpdateMemberLimitRequest struct {
	DailySpendLimit *int64 `json:"daily_spend_limit"`
}

// UpdateMemberLimit handles PUT /v1/members/:id/limit
func (h *AccountHandler) UpdateMemberLimit(c *gin.Context) {
	var req UpdateMemberLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.accountService.UpdateMemberLimit(c.Request.Context(), c.Param("id"), req.DailySpendLimit); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "updated"})
}
