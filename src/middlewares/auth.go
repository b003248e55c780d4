package middlewares

import (
	"log"
	"os"
	"strings"

	"hms/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// StaffAuthMiddleware resolves the opaque actor reference from the identity
// collaborator's token. Permission resolution happens upstream; the core
// only needs to know who performed a mutation.
func StaffAuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}
	if claims.Subject == "" {
		ctx.AbortWithStatus(401)
		return
	}

	ctx.Set("actor", claims.Subject)
	ctx.Set("username", claims.Username)
	ctx.Set("role", claims.Role)
	ctx.Set("hotel", claims.HotelID)
}
