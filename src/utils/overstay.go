package utils

import (
	"log"
	"strings"
	"time"

	"hms/src/config"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalNoon resolves the checkout cutoff for a stay date in the hotel's
// timezone. time.Date handles DST days: noon local on any date is one
// specific UTC instant, even when the offset shifted that morning.
func LocalNoon(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), config.CHECKOUT_HOUR, 0, 0, 0, loc)
}

// PastLocalNoon is the single overstay predicate shared by detection and
// extension resolution, so the two cannot drift apart.
func PastLocalNoon(now time.Time, date time.Time, loc *time.Location) bool {
	return !now.Before(LocalNoon(date, loc))
}

// DetectOverstays flags every in-house booking in the hotel whose local-noon
// checkout threshold has passed and that has no active incident yet. The
// scan is catch-up safe at any cadence: the partial unique index on
// (booking, active status) makes double-creation impossible even when two
// scans race.
func DetectOverstays(hotelID uint, now time.Time) ([]uint, error) {
	dbi := db.GetDb()
	created := make([]uint, 0)
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var hotel models.Hotel
		if err := tx.Where("id = ?", hotelID).First(&hotel).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNotFound, "hotel [%d] not found", hotelID)
			}
			return err
		}
		loc, err := hotel.Location()
		if err != nil {
			return err
		}
		var candidates []models.Booking
		err = tx.
			Scopes(scopes.InHouse).
			Where("hotel_id = ?", hotelID).
			Where("check_out_date <= ?", dateOnly(now.In(loc))).
			Where("NOT EXISTS (SELECT 1 FROM overstay_incidents oi WHERE oi.booking_id = bookings.id AND oi.status IN ?)",
				[]types.IncidentStatus{types.INCIDENT_OPEN, types.INCIDENT_ACKNOWLEDGED}).
			Find(&candidates).
			Error
		if err != nil {
			return err
		}
		for _, b := range candidates {
			if !PastLocalNoon(now, b.CheckOutDate, loc) {
				continue
			}
			incident := models.OverstayIncident{
				BookingID:        b.ID,
				HotelID:          hotelID,
				Status:           types.INCIDENT_OPEN,
				DetectedAt:       now,
				ExpectedCheckOut: b.CheckOutDate,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&incident)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// A concurrent scan got there first.
				continue
			}
			audit := models.AuditEvent{
				EntityType: "overstay_incident",
				EntityID:   incident.ID,
				FromState:  "",
				ToState:    string(types.INCIDENT_OPEN),
				Actor:      "system",
				Source:     "overstay-scan",
			}
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
			created = append(created, incident.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		models.OverstayDetectedProducer(hotelID, created)
	}
	return created, nil
}

// AcknowledgeIncident records staff awareness (or dismissal). This is a pure
// audit update: it never touches the booking or the room. Re-acknowledging
// an acknowledged incident is a no-op.
func AcknowledgeIncident(incidentID uint, actor string, note string, dismiss bool, now time.Time) (*models.OverstayIncident, error) {
	dbi := db.GetDb()
	var incident models.OverstayIncident
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", incidentID).
			First(&incident).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNotFound, "incident [%d] not found", incidentID)
			}
			return err
		}
		if !incident.IsActive() {
			return types.NewServiceError(types.CodeInvalidTransition, "incident [%d] is already %s", incidentID, incident.Status)
		}
		if incident.Status == types.INCIDENT_ACKNOWLEDGED && !dismiss {
			return nil
		}
		from := incident.Status
		updates := map[string]any{}
		if dismiss {
			incident.Status = types.INCIDENT_DISMISSED
			incident.DismissedAt = &now
			incident.DismissedBy = actor
			updates["status"] = types.INCIDENT_DISMISSED
			updates["dismissed_at"] = now
			updates["dismissed_by"] = actor
		} else {
			incident.Status = types.INCIDENT_ACKNOWLEDGED
			incident.AcknowledgedAt = &now
			incident.AcknowledgedBy = actor
			updates["status"] = types.INCIDENT_ACKNOWLEDGED
			updates["acknowledged_at"] = now
			updates["acknowledged_by"] = actor
		}
		if note != "" {
			incident.AcknowledgedNote = note
			updates["acknowledged_note"] = note
		}
		if err := tx.
			Model(&models.OverstayIncident{}).
			Where("id = ?", incident.ID).
			Updates(updates).
			Error; err != nil {
			return err
		}
		audit := models.AuditEvent{
			EntityType: "overstay_incident",
			EntityID:   incident.ID,
			FromState:  string(from),
			ToState:    string(incident.Status),
			Actor:      actor,
			Source:     "overstay-acknowledge",
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func extensionResult(ext *models.BookingExtension, replayed bool) *types.ExtensionResult {
	return &types.ExtensionResult{
		ExtensionID:     ext.ID,
		BookingID:       ext.BookingID,
		OldCheckOutDate: ext.OldCheckOutDate.Format(config.DATE_PARSE_FORMAT),
		NewCheckOutDate: ext.NewCheckOutDate.Format(config.DATE_PARSE_FORMAT),
		NightsAdded:     ext.NightsAdded,
		Amount:          ext.Amount,
		Currency:        ext.Currency,
		PaymentIntentID: ext.PaymentIntentID,
		PaymentRequired: true,
		Status:          ext.Status,
		Replayed:        replayed,
	}
}

// ExtendStay moves the booking's checkout date forward after re-running the
// same conflict check assignment uses, over [old_checkout, new_checkout).
// Retries with the same idempotency key replay the first result with no new
// side effects. Extended nights are priced at the booking's original rate.
func ExtendStay(bookingID uint, actor string, params types.ExtendStayRequestBody, now time.Time) (*types.ExtensionResult, error) {
	dbi := db.GetDb()

	// Blank keys are "no key", never stored as empty string.
	var key *string
	if k := strings.TrimSpace(params.IdempotencyKey); k != "" {
		key = &k
	}
	if key != nil {
		var prior models.BookingExtension
		err := dbi.
			Where("booking_id = ? AND idempotency_key = ?", bookingID, *key).
			First(&prior).
			Error
		if err == nil {
			return extensionResult(&prior, true), nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	if (params.NewCheckOutDate == nil) == (params.AddNights == nil) {
		return nil, types.NewServiceError(types.CodeInvalidInput, "exactly one of new_check_out_date or add_nights is required")
	}
	var requestedDate time.Time
	if params.NewCheckOutDate != nil {
		parsed, err := time.Parse(config.DATE_PARSE_FORMAT, *params.NewCheckOutDate)
		if err != nil {
			return nil, types.NewServiceError(types.CodeInvalidInput, "new_check_out_date must be %s", config.DATE_PARSE_FORMAT)
		}
		requestedDate = parsed
	}

	var ext models.BookingExtension
	var booking models.Booking
	replayed := false
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&booking).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNotFound, "booking [%d] not found", bookingID)
			}
			return err
		}
		// Re-check the key now that the booking row is locked. A concurrent
		// retry that won the lock has already committed its extension, and
		// this read sees it; without the re-check the loser would re-price
		// and request a second payment intent only to hit the unique index.
		if key != nil {
			var prior models.BookingExtension
			err := tx.
				Where("booking_id = ? AND idempotency_key = ?", bookingID, *key).
				First(&prior).
				Error
			if err == nil {
				ext = prior
				replayed = true
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}
		if booking.CheckedOutAt != nil {
			return types.NewServiceError(types.CodeAlreadyCheckedOut, "booking %s already checked out", booking.ReferenceCode)
		}
		if booking.Status != types.BOOKING_CONFIRMED {
			return types.NewServiceError(types.CodeBookingStatusNotAssignable, "booking %s is %s", booking.ReferenceCode, booking.Status)
		}
		if booking.RoomID == nil {
			return types.NewServiceError(types.CodeNoAssignedRoom, "booking %s has no assigned room", booking.ReferenceCode)
		}
		oldCheckOut := booking.CheckOutDate
		target := requestedDate
		if params.AddNights != nil {
			target = oldCheckOut.AddDate(0, 0, *params.AddNights)
		}
		if !target.After(oldCheckOut) {
			return types.NewServiceError(types.CodeInvalidInput, "new checkout %s is not after current checkout %s",
				target.Format(config.DATE_PARSE_FORMAT), oldCheckOut.Format(config.DATE_PARSE_FORMAT))
		}

		var room models.Room
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", *booking.RoomID).
			First(&room).
			Error; err != nil {
			return err
		}
		conflicts, err := lockConflictingBookings(tx, room.ID, booking.ID, oldCheckOut, target)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			// Never auto-move the guest; surface alternates and stop.
			suggestions, serr := suggestRoomsTx(tx, booking.HotelID, booking.ID, booking.CheckInDate, target, booking.RoomType)
			if serr != nil {
				log.Printf("Error building room suggestions: %s\n", serr.Error())
			}
			return types.NewConflictError(bookingIDs(conflicts), suggestions)
		}

		nights := int(target.Sub(oldCheckOut).Hours() / 24)
		amount := booking.RatePerNight * float32(nights)
		ext = models.BookingExtension{
			BookingID:       booking.ID,
			OldCheckOutDate: oldCheckOut,
			NewCheckOutDate: target,
			NightsAdded:     nights,
			Amount:          amount,
			Currency:        booking.Currency,
			IdempotencyKey:  key,
			Status:          types.EXTENSION_PENDING_PAYMENT,
			RequestedBy:     actor,
		}
		// The extension row goes in before the payment intent: a failed
		// insert rolls back with no payment artifact in existence.
		if err := tx.Create(&ext).Error; err != nil {
			return err
		}
		intentId, err := lib.CreatePaymentIntent(amount, booking.Currency, map[string]string{
			"booking_reference": booking.ReferenceCode,
			"reason":            "stay-extension",
		})
		if err != nil {
			log.Printf("Error creating payment intent for booking %s: %s\n", booking.ReferenceCode, err.Error())
			return err
		}
		if err := tx.
			Model(&models.BookingExtension{}).
			Where("id = ?", ext.ID).
			Update("payment_intent_id", intentId).
			Error; err != nil {
			return err
		}
		ext.PaymentIntentID = &intentId
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("check_out_date", target).
			Error; err != nil {
			return err
		}
		booking.CheckOutDate = target
		audit := models.AuditEvent{
			EntityType: "booking",
			EntityID:   booking.ID,
			FromState:  oldCheckOut.Format(config.DATE_PARSE_FORMAT),
			ToState:    target.Format(config.DATE_PARSE_FORMAT),
			Actor:      actor,
			Source:     "stay-extension",
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}
		return resolveIncidentAfterExtension(tx, &booking, actor, now)
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return extensionResult(&ext, true), nil
	}
	models.BookingExtendedProducer(booking.HotelID, booking.ID, ext.ID, ext.NightsAdded)
	return extensionResult(&ext, false), nil
}

// resolveIncidentAfterExtension closes the booking's active incident when
// the new checkout date clears the noon predicate. Extending to later today
// but still past noon is still an overstay, so the incident stays open.
func resolveIncidentAfterExtension(tx *gorm.DB, booking *models.Booking, actor string, now time.Time) error {
	var incident models.OverstayIncident
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ? AND status IN ?", booking.ID,
			[]types.IncidentStatus{types.INCIDENT_OPEN, types.INCIDENT_ACKNOWLEDGED}).
		First(&incident).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	var hotel models.Hotel
	if err := tx.Where("id = ?", booking.HotelID).First(&hotel).Error; err != nil {
		return err
	}
	loc, err := hotel.Location()
	if err != nil {
		return err
	}
	if PastLocalNoon(now, booking.CheckOutDate, loc) {
		return nil
	}
	from := incident.Status
	if err := tx.
		Model(&models.OverstayIncident{}).
		Where("id = ?", incident.ID).
		Updates(map[string]any{
			"status":      types.INCIDENT_RESOLVED,
			"resolved_at": now,
			"resolved_by": actor,
		}).
		Error; err != nil {
		return err
	}
	audit := models.AuditEvent{
		EntityType: "overstay_incident",
		EntityID:   incident.ID,
		FromState:  string(from),
		ToState:    string(types.INCIDENT_RESOLVED),
		Actor:      actor,
		Source:     "stay-extension",
	}
	return tx.Create(&audit).Error
}
