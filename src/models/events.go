package models

import (
	"log"
	"time"

	"hms/src/lib"
	"hms/src/types"
)

// Event envelope for the transport collaborator. Delivery and channel
// topology are out of scope here; the core only emits.
func publishEvent(clientId string, topic string, category string, eventType string, hotelID uint, payload types.JSONB) error {
	err := lib.KafkaProduceMessage(clientId, topic, map[string]any{
		"category":    category,
		"type":        eventType,
		"payload":     map[string]any(payload),
		"hotel_scope": hotelID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("Error on producing %s message: %s\n", eventType, err.Error())
		return err
	}
	return nil
}

func RoomStatusProducer(hotelID uint, roomID uint, status types.RoomStatus) error {
	return publishEvent("rooms_status_producer", "rooms-status", "room", "room.status_changed", hotelID, types.JSONB{
		"room_id": roomID,
		"status":  status,
	})
}

func BookingAssignedProducer(hotelID uint, bookingID uint, roomID uint, version uint) error {
	return publishEvent("bookings_assigned_producer", "bookings-assignment", "booking", "booking.room_assigned", hotelID, types.JSONB{
		"booking_id": bookingID,
		"room_id":    roomID,
		"version":    version,
	})
}

func BookingUnassignedProducer(hotelID uint, bookingID uint, roomID uint) error {
	return publishEvent("bookings_assigned_producer", "bookings-assignment", "booking", "booking.room_unassigned", hotelID, types.JSONB{
		"booking_id": bookingID,
		"room_id":    roomID,
	})
}

func OccupancyProducer(hotelID uint, roomID uint, bookingID uint, eventType string, changed types.JSONB) error {
	payload := types.JSONB{
		"room_id":    roomID,
		"booking_id": bookingID,
	}
	for k, v := range changed {
		payload[k] = v
	}
	return publishEvent("occupancy_producer", "rooms-occupancy", "occupancy", eventType, hotelID, payload)
}

func OverstayDetectedProducer(hotelID uint, incidentIDs []uint) error {
	return publishEvent("overstay_producer", "overstay-incidents", "overstay", "overstay.detected", hotelID, types.JSONB{
		"incident_ids": incidentIDs,
	})
}

func BookingExtendedProducer(hotelID uint, bookingID uint, extensionID uint, nightsAdded int) error {
	return publishEvent("bookings_extended_producer", "bookings-extension", "booking", "booking.stay_extended", hotelID, types.JSONB{
		"booking_id":   bookingID,
		"extension_id": extensionID,
		"nights_added": nightsAdded,
	})
}
