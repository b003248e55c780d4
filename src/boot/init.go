package boot

import (
	"log"
	"time"

	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/utils"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Hotel{},
		&models.Room{},
		&models.Booking{},
		&models.RoomGuest{},
		&models.OverstayIncident{},
		&models.BookingExtension{},
		&models.AuditEvent{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(
		"rooms-status",
		"rooms-occupancy",
		"bookings-assignment",
		"bookings-extension",
		"overstay-incidents",
	)
}

// InitScheduler registers the hourly overstay scan. The scan is catch-up
// safe, so a missed tick only delays detection until the next run.
func InitScheduler() {
	id, err := lib.CreateCronJob(ScanAllHotels, 1*time.Hour)
	if err != nil {
		log.Printf("Error registering overstay scan job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *id)
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

func ScanAllHotels() {
	dbi := db.GetDb()
	var hotelIDs []uint
	err := dbi.
		Model(&models.Hotel{}).
		Pluck("id", &hotelIDs).
		Error
	if err != nil {
		log.Printf("Error listing hotels for overstay scan: %s\n", err.Error())
		return
	}
	now := time.Now()
	for _, id := range hotelIDs {
		if _, err := utils.DetectOverstays(id, now); err != nil {
			log.Printf("Overstay scan failed for hotel %d: %s\n", id, err.Error())
		}
	}
}
