package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/cockpit/pkg/domain/services/forecast"
)

// ForecastRequest is the body of POST /api/v1/forecast
type ForecastRequest struct {
	History    []forecast.Point     `json:"history" binding:"required"`
	Periods    int                  `json:"periods"`
	Parameters *forecast.Parameters `json:"parameters"`
}

const defaultForecastPeriods = 6

// Forecast projects monthly demand from the posted history
func Forecast(c *gin.Context) {
	// fields missing from the posted parameters keep their defaults
	params := forecast.DefaultParameters()
	req := ForecastRequest{Parameters: &params}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Parameters != nil {
		params = *req.Parameters
	} else {
		params = forecast.DefaultParameters()
	}
	periods := req.Periods
	if periods == 0 {
		periods = defaultForecastPeriods
	}

	result, err := forecast.Forecast(req.History, periods, params)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, result)
}
