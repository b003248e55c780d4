package main

import (
	"net/http"
	"time"

	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"hms/src/utils"

	"github.com/gin-gonic/gin"
)

func overstayHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/overstays", func(ctx *gin.Context) {
			hotelId := ctx.GetUint("hotel")
			dbi := db.GetDb()
			var incidents []models.OverstayIncident
			err := dbi.
				Model(&models.OverstayIncident{}).
				Where("hotel_id = ?", hotelId).
				Where("status IN ?", []types.IncidentStatus{types.INCIDENT_OPEN, types.INCIDENT_ACKNOWLEDGED}).
				Preload("Booking").
				Order("detected_at asc").
				Find(&incidents).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": incidents, "count": len(incidents)})
		}).
		POST("/overstays/scan", func(ctx *gin.Context) {
			hotelId := ctx.GetUint("hotel")
			created, err := utils.DetectOverstays(hotelId, time.Now())
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": created, "count": len(created)})
		}).
		PUT("/overstays/:id/acknowledge", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.AcknowledgeIncidentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			incident, err := utils.AcknowledgeIncident(params.ID, actor, body.Note, body.Dismiss, time.Now())
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": incident})
		}).
		POST("/bookings/:id/extend", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ExtendStayRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			result, err := utils.ExtendStay(params.ID, actor, body, time.Now())
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		})
	return g
}
