// Command notifier drains the reservation event queue and writes an
// audit log of booking activity.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/study-room-reservation/internal/logging"
	"github.com/iliyamo/study-room-reservation/internal/queue"
)

func main() {
	_ = godotenv.Load()

	log := logging.New(os.Getenv("APP_ENV"))
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		log.Fatal().Msg("RABBITMQ_URL is required")
	}

	log.Info().Str("queue", queue.QueueName).Msg("consumer starting")
	queue.Consume(url, log, func(ev queue.ReservationEvent) error {
		log.Info().
			Str("event_id", ev.EventID).
			Str("action", ev.Action).
			Uint64("reservation_id", ev.ReservationID).
			Uint64("room_id", ev.RoomID).
			Str("room", ev.RoomName).
			Str("date", ev.Date).
			Str("slot", ev.StartTime+"-"+ev.EndTime).
			Str("booker", ev.Booker).
			Str("status", ev.Status).
			Msg("reservation event")
		return nil
	})
}
