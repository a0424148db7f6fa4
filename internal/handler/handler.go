package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/finledger/ledger-service/internal/repository"
	"github.com/finledger/ledger-service/internal/service"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), req.Name, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// CreateLiability handles liability creation
func (h *Handler) CreateLiability(w http.ResponseWriter, r *http.Request) {
	var input service.CreateLiabilityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	liability, err := h.svc.CreateLiability(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, liability)
}

// RecordPayment handles recording an actual payment against a liability
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	liabilityID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid liability id", http.StatusBadRequest)
		return
	}

	var input service.RecordPaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payment, err := h.svc.RecordPayment(r.Context(), liabilityID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// GetSchedule returns the reconciled amortization schedule for a liability
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	liabilityID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid liability id", http.StatusBadRequest)
		return
	}

	schedule, err := h.svc.GenerateAmortizationSchedule(liabilityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// PostCapitalization posts ledger transactions for capitalized interest
func (h *Handler) PostCapitalization(w http.ResponseWriter, r *http.Request) {
	liabilityID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid liability id", http.StatusBadRequest)
		return
	}

	posted, err := h.svc.PostCapitalizedInterest(liabilityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"posted": posted})
}

// GetAnalytics returns schedule-derived analytics for a liability
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	liabilityID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid liability id", http.StatusBadRequest)
		return
	}

	analytics, err := h.svc.GetLiabilityAnalytics(liabilityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
