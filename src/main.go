package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"hms/src/boot"
	"hms/src/config"
	"hms/src/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

var staydateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	return err == nil
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("staydate", staydateValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type"}
	r.Use(cors.New(corsConfig))

	registerValidators()

	api := r.Group(apiPrefix)
	api.Use(middlewares.StaffAuthMiddleware)
	roomHandlers(api)
	assignmentHandlers(api)
	occupancyHandlers(api)
	overstayHandlers(api)
	return r
}

func main() {
	boot.InitDb()
	boot.InitBroker()
	boot.InitScheduler()
	defer boot.StopScheduler()

	r := setupRouter()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(fmt.Sprintf(":%s", port))
}
