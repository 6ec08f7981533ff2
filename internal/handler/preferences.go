package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/service"
)

type PreferencesHandler struct{ store service.PreferenceStore }

func NewPreferencesHandler(store service.PreferenceStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	p, err := h.store.Get(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreferencesResponse(p))
}

func (h *PreferencesHandler) Put(c *gin.Context) {
	var req dto.PreferencesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p := service.Preferences{ProfitMargin: req.ProfitMargin, LabourRate: req.LabourRate, Currency: req.Currency}
	if err := h.store.Set(c.Request.Context(), owner(c), p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreferencesResponse(p))
}

func toPreferencesResponse(p service.Preferences) dto.PreferencesResponse {
	return dto.PreferencesResponse{ProfitMargin: p.ProfitMargin, LabourRate: p.LabourRate, Currency: p.Currency}
}
