package main

import (
	"net/http"
	"time"

	"hms/src/config"
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"hms/src/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps a core error to a stable HTTP shape. Conflict responses
// carry the conflicting booking ids and the suggestion list so clients can
// offer alternates.
func respondError(ctx *gin.Context, err error) {
	se := types.AsServiceError(err)
	if se == nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
		return
	}
	status := http.StatusUnprocessableEntity
	switch se.Code {
	case types.CodeInvalidInput:
		status = http.StatusBadRequest
	case types.CodeNotFound:
		status = http.StatusNotFound
	case types.CodeRoomOverlapConflict:
		status = http.StatusConflict
	}
	body := gin.H{"error": se.Message, "code": se.Code}
	if len(se.ConflictingBookingIDs) > 0 {
		body["conflicting_booking_ids"] = se.ConflictingBookingIDs
	}
	if se.Suggestions != nil {
		body["suggestions"] = se.Suggestions
	}
	ctx.JSON(status, body)
}

func roomHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rooms", func(ctx *gin.Context) {
			hotelId := ctx.GetUint("hotel")
			dbi := db.GetDb()
			var rooms []models.Room
			q := dbi.
				Model(&models.Room{}).
				Where(&models.Room{HotelID: hotelId})
			if status := ctx.Query("status"); status != "" {
				q = q.Where("status = ?", models.NormalizeRoomStatus(types.RoomStatus(status)))
			}
			if err := q.Order("number asc").Find(&rooms).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		}).
		PUT("/rooms/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.TransitionRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			room, err := utils.TransitionRoom(params.ID, types.RoomStatus(body.Status), actor, "housekeeping")
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": room})
		}).
		GET("/rooms/suggestions", func(ctx *gin.Context) {
			var query types.SuggestRoomsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkIn, err := time.Parse(config.DATE_PARSE_FORMAT, query.CheckIn)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkOut, err := time.Parse(config.DATE_PARSE_FORMAT, query.CheckOut)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			suggestions, err := utils.SuggestRooms(query.HotelID, checkIn, checkOut, query.RoomType)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": suggestions, "count": len(suggestions)})
		})
	return g
}
